package reset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftsync/driftsync/cmd/util"
	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/config"
)

// New creates a new `reset-circuit-breakers` command.
func New() *cobra.Command {
	var configPath string
	var force bool
	cmd := &cobra.Command{
		Use:   "reset-circuit-breakers [service]",
		Short: "Force circuit breakers back to the closed state",
		Long: "Force the circuit breaker for the given service back to the " +
			"closed state.\nWithout a service argument, every known " +
			"service is reset.",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			if err := run(configPath, service, force); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to the driftsync config (default "+config.WorkspaceConfigPath+")")
	cmd.Flags().BoolVar(&force, "force", false,
		"reset all services without prompting")
	return cmd
}

func run(configPath, service string, force bool) error {
	cfg, err := config.ParseWorkspace(configPath)
	if err != nil {
		return err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	br := breaker.New(breaker.NewStore(cfg.StateFile), policy)

	if service != "" {
		if err := br.Reset(service); err != nil {
			return err
		}
		fmt.Printf("Reset circuit breaker for %q.\n", service)
		return nil
	}

	if !force {
		confirmed, err := util.PromptYesOrNo(
			"Reset circuit breakers for all services?")
		if err != nil {
			return err
		} else if !confirmed {
			return nil
		}
	}

	if err := br.ResetAll(); err != nil {
		return err
	}
	fmt.Println("Reset circuit breakers for all services.")
	return nil
}
