package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of driftsync",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("driftsync version: %s\n", version.Version)
		},
	}
}
