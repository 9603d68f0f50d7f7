package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	healthCmd "github.com/driftsync/driftsync/cmd/health"
	resetCmd "github.com/driftsync/driftsync/cmd/reset"
	statusCmd "github.com/driftsync/driftsync/cmd/status"
	syncCmd "github.com/driftsync/driftsync/cmd/sync"
	"github.com/driftsync/driftsync/cmd/util"
	versionCmd "github.com/driftsync/driftsync/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info
// and above.
const verboseLogKey = "DRIFTSYNC_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "driftsync",
		Short:        "Sync the local document hub against its cloud mirrors",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		healthCmd.New(),
		resetCmd.New(),
		statusCmd.New(),
		syncCmd.New(),
		versionCmd.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
