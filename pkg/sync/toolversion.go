package sync

import (
	"context"
	"regexp"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"

	"github.com/driftsync/driftsync/pkg/config"
)

// minToolVersion is the oldest unison release whose CLI flags match what
// driftsync passes. Unison's archive format also changed at 2.51, so older
// releases can't talk to mirrors written by newer ones.
const minToolVersion = "2.51.0"

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// CheckToolVersion warns when the configured sync tool is older than the
// minimum supported release. Version probing is best-effort: a tool that
// prints an unparseable version string shouldn't block syncing, so every
// failure here is only logged.
func CheckToolVersion(ctx context.Context, cfg config.Workspace, log *logrus.Logger) {
	result := runTool(ctx, 10*time.Second, cfg.ToolCommand(), []string{"-version"})
	if result.Err != nil {
		log.WithError(result.Err).Debug("Failed to query sync tool version")
		return
	}

	match := versionPattern.FindString(result.Output)
	if match == "" {
		log.WithField("output", result.Output).Debug(
			"Couldn't find a version in the sync tool's output")
		return
	}

	current, err := goversion.NewVersion(match)
	if err != nil {
		log.WithError(err).Debug("Failed to parse sync tool version")
		return
	}

	minimum := goversion.Must(goversion.NewVersion(minToolVersion))
	if current.LessThan(minimum) {
		log.Warnf("The sync tool is at version %s, but driftsync is tested "+
			"against %s and newer. Syncing will proceed, but consider upgrading.",
			current, minimum)
	}
}
