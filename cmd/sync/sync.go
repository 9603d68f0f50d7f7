package sync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/cmd/util"
	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/config"
	"github.com/driftsync/driftsync/pkg/errors"
	"github.com/driftsync/driftsync/pkg/probe"
	"github.com/driftsync/driftsync/pkg/sync"
)

// New creates a new `sync` command.
func New() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the hub against every configured cloud mirror",
		Long: "Sync the local document hub against every configured cloud " +
			"mirror.\nServices are synced concurrently, and a failing " +
			"service doesn't stop the others. The command exits non-zero " +
			"if any service failed.",
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

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	// Exit the probe loops and tool invocations promptly when the driving
	// scheduler shuts us down.
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.StandardLogger()
	sync.CheckToolVersion(ctx, cfg, logger)

	store := breaker.NewStore(cfg.StateFile)
	executor := sync.NewExecutor(cfg, breaker.New(store, policy),
		probe.New(logger), logger)

	results := executor.SyncAll(ctx, cfg.Services)

	var failed int
	for _, result := range results {
		switch {
		case result.Success:
			fmt.Printf("%s: synced in %s\n", result.Service,
				result.Duration.Round(time.Millisecond))
		case result.Blocked:
			failed++
			fmt.Printf("%s: blocked by circuit breaker (see `driftsync status`)\n",
				result.Service)
		default:
			failed++
			fmt.Printf("%s: failed (%s)\n", result.Service, result.Kind)
		}
	}

	if failed > 0 {
		return errors.NewFriendlyError(
			"%d of %d services failed to sync.", failed, len(results))
	}
	return nil
}
