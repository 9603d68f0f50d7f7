package config

import (
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/errors"
)

const (
	// WorkspaceConfigPath is the default path to the driftsync config.
	WorkspaceConfigPath = "~/.driftsync.yaml"

	// DefaultStateFile is where circuit breaker state is persisted when the
	// config doesn't say otherwise.
	DefaultStateFile = "~/.driftsync/breakers.json"

	// InitialWorkspaceConfigVersion is the first version of the driftsync
	// config. Config files that do not specify a version will default to
	// this version.
	InitialWorkspaceConfigVersion = "v1alpha1"

	// SupportedWorkspaceConfigVersion is the supported version of the
	// driftsync config of the current binary.
	SupportedWorkspaceConfigVersion = "v1alpha1"
)

// Defaults applied when the config omits the corresponding tool fields.
const (
	DefaultToolCommand       = "unison"
	DefaultBaselineTimeout   = 300 * time.Second
	DefaultTimeoutMultiplier = 3
)

// Workspace is the top-level driftsync configuration.
type Workspace struct {
	Version string `json:"version,omitempty"`

	// Hub is the local directory tree mirrored against each remote.
	Hub string `json:"hub"`

	// StateFile is where circuit breaker state is persisted.
	StateFile string `json:"stateFile,omitempty"`

	Tool     Tool               `json:"tool,omitempty"`
	Services []Service          `json:"services"`
	Breakers map[string]Breaker `json:"breakers,omitempty"`
}

// Tool configures the external synchronization executable.
type Tool struct {
	// Command is the executable to invoke. Defaults to unison.
	Command string `json:"command,omitempty"`

	// BaselineTimeoutSeconds bounds the first invocation per attempt.
	BaselineTimeoutSeconds int `json:"baselineTimeout,omitempty"`

	Retry Retry `json:"retry,omitempty"`
}

// Retry configures the single escalated retry after a failed baseline
// invocation. The exact escalation parameters are deliberately config
// rather than constants.
type Retry struct {
	// TimeoutMultiplier scales the baseline timeout for the retry.
	TimeoutMultiplier int `json:"timeoutMultiplier,omitempty"`

	// PreferNewer makes the retry resolve conflicts toward the newer file.
	// Defaults to true.
	PreferNewer *bool `json:"preferNewer,omitempty"`
}

// Service is one cloud-backed mirror target.
type Service struct {
	// Name is the stable identity used as the circuit breaker key.
	Name string `json:"name"`

	// Mount is the path to the cloud-backed mount point.
	Mount string `json:"mount"`

	// Root is the directory under the mount that mirrors the hub. Empty
	// means the mount itself.
	Root string `json:"root,omitempty"`
}

// Breaker overrides the threshold and reset timeout for one error kind.
type Breaker struct {
	Threshold           int `json:"threshold,omitempty"`
	ResetTimeoutSeconds int `json:"resetTimeout,omitempty"`
}

func (w Workspace) getVersion() string {
	return w.Version
}

// ToolCommand returns the executable to invoke for syncs.
func (w Workspace) ToolCommand() string {
	if w.Tool.Command == "" {
		return DefaultToolCommand
	}
	return w.Tool.Command
}

// BaselineTimeout returns the bound on the first tool invocation.
func (w Workspace) BaselineTimeout() time.Duration {
	if w.Tool.BaselineTimeoutSeconds <= 0 {
		return DefaultBaselineTimeout
	}
	return time.Duration(w.Tool.BaselineTimeoutSeconds) * time.Second
}

// RetryTimeout returns the bound on the escalated retry invocation.
func (w Workspace) RetryTimeout() time.Duration {
	multiplier := w.Tool.Retry.TimeoutMultiplier
	if multiplier <= 0 {
		multiplier = DefaultTimeoutMultiplier
	}
	return w.BaselineTimeout() * time.Duration(multiplier)
}

// PreferNewer returns whether the escalated retry resolves conflicts toward
// the newer copy of a file.
func (w Workspace) PreferNewer() bool {
	if w.Tool.Retry.PreferNewer == nil {
		return true
	}
	return *w.Tool.Retry.PreferNewer
}

// Policy builds the breaker policy table: the stock defaults with the
// config's per-kind overrides applied on top.
func (w Workspace) Policy() (breaker.Policy, error) {
	policy := breaker.DefaultPolicy()
	for name, override := range w.Breakers {
		kind, ok := breaker.ParseKind(name)
		if !ok {
			return nil, errors.NewFriendlyError(
				"Unknown error kind %q in the breakers section.\n"+
					"Valid kinds are: %v.", name, breaker.Kinds)
		}

		rule := policy[kind]
		if override.Threshold > 0 {
			rule.Threshold = override.Threshold
		}
		if override.ResetTimeoutSeconds > 0 {
			rule.ResetTimeout = time.Duration(override.ResetTimeoutSeconds) * time.Second
		}
		policy[kind] = rule
	}
	return policy, nil
}

// homedirExpand will be overridden in mock tests.
var homedirExpand = homedir.Expand

// ParseWorkspace attempts to parse the Workspace config stored at path. An
// empty path means the default location.
func ParseWorkspace(path string) (Workspace, error) {
	if path == "" {
		var err error
		path, err = homedirExpand(WorkspaceConfigPath)
		if err != nil {
			return Workspace{}, errors.WithContext(err, "expand config path")
		}
	}

	config := Workspace{Version: InitialWorkspaceConfigVersion}
	if err := parseConfig(path, &config, SupportedWorkspaceConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Workspace{}, errors.NewFriendlyError("The driftsync config "+
				"file doesn't exist at %q. Please create it with your hub and "+
				"service definitions before syncing.", path)
		}
		return Workspace{}, errors.WithContext(err, "parse")
	}

	if err := config.expandPaths(filepath.Dir(path)); err != nil {
		return Workspace{}, err
	}

	if err := config.validate(); err != nil {
		return Workspace{}, err
	}
	return config, nil
}

// expandPaths expands `~` in every configured path, and evaluates relative
// paths relative to the config file's directory.
func (w *Workspace) expandPaths(configDir string) error {
	expand := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}

		expanded, err := homedirExpand(path)
		if err != nil {
			return "", errors.WithContext(err, "expand path")
		}

		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(configDir, expanded)
		}
		return expanded, nil
	}

	var err error
	if w.Hub, err = expand(w.Hub); err != nil {
		return err
	}

	if w.StateFile == "" {
		w.StateFile = DefaultStateFile
	}
	if w.StateFile, err = homedirExpand(w.StateFile); err != nil {
		return errors.WithContext(err, "expand state file path")
	}

	for i := range w.Services {
		if w.Services[i].Mount, err = expand(w.Services[i].Mount); err != nil {
			return err
		}
	}
	return nil
}

func (w Workspace) validate() error {
	if w.Hub == "" {
		return errors.MissingFieldError{Field: "hub"}
	}

	if len(w.Services) == 0 {
		return errors.NewFriendlyError(
			"No services are configured. Add at least one cloud mirror to " +
				"the services section.")
	}

	seen := map[string]bool{}
	for _, service := range w.Services {
		if service.Name == "" {
			return errors.MissingFieldError{Field: "services[].name"}
		}
		if service.Mount == "" {
			return errors.MissingFieldError{Field: "services[].mount"}
		}
		if seen[service.Name] {
			return errors.NewFriendlyError(
				"Service %q is defined more than once.", service.Name)
		}
		seen[service.Name] = true
	}
	return nil
}
