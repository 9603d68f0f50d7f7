package status

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/cmd/util"
	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/config"
)

// New creates a new `status` command.
func New() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show circuit breaker state for every service",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(configPath); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to the driftsync config (default "+config.WorkspaceConfigPath+")")
	return cmd
}

func run(configPath string) error {
	cfg, err := config.ParseWorkspace(configPath)
	if err != nil {
		return err
	}

	reporter := breaker.NewReporter(breaker.NewStore(cfg.StateFile))
	return reporter.Report(os.Stdout)
}
