package health

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/cmd/util"
	"github.com/driftsync/driftsync/pkg/config"
	"github.com/driftsync/driftsync/pkg/probe"
)

// New creates a new `health` command.
func New() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe every configured cloud mount",
		Long: "Probe every configured cloud mount and report whether it's " +
			"responding.\nThis never mutates circuit breaker state.",
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

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := probe.New(log.StandardLogger())

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Service", "Mount", "Available"})
	for _, service := range cfg.Services {
		available := "no"
		if prober.Probe(ctx, service.Mount) {
			available = "yes"
		}
		table.Append([]string{service.Name, service.Mount, available})
	}
	table.Render()
	return nil
}
