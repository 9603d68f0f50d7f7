package sync

import (
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/driftsync/driftsync/pkg/config"
)

// toolResult captures everything the classifier needs from one invocation
// of the external tool.
type toolResult struct {
	ExitCode int
	Output   string
	Err      error
}

// Succeeded reports whether the invocation completed cleanly.
func (r toolResult) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Mocked out for unit testing.
var runTool = runToolImpl

// runToolImpl invokes the external synchronization tool once, bounded by
// timeout. A timed-out run is reported with the timeout(1) exit code so
// that classification treats it like any other killed process.
func runToolImpl(ctx context.Context, timeout time.Duration,
	command string, args []string) toolResult {

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)
	output, err := cmd.CombinedOutput()

	result := toolResult{Output: string(output), Err: err}
	switch {
	case err == nil:
	case ctx.Err() == context.DeadlineExceeded:
		result.ExitCode = 124
	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// The tool couldn't be started at all.
			result.ExitCode = -1
		}
	}
	return result
}

// buildArgs assembles the tool invocation for one service. The baseline
// run syncs both roots batch-mode; the escalated retry additionally prefers
// the newer copy of conflicting files when the config says so.
func buildArgs(cfg config.Workspace, service config.Service, escalated bool) []string {
	remote := service.Mount
	if service.Root != "" {
		remote = filepath.Join(service.Mount, service.Root)
	}

	args := []string{cfg.Hub, remote, "-batch", "-auto", "-times"}
	if escalated {
		args = append(args, "-retry", "1")
		if cfg.PreferNewer() {
			args = append(args, "-prefer", "newer")
		}
	}
	return args
}
