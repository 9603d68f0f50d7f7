package sync

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/driftsync/driftsync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// hubSkeleton is the minimal directory layout the sync hub must have before
// the external tool runs against it.
var hubSkeleton = []string{
	"Inbox",
	"Archive",
	".driftsync",
}

// EnsureHub creates the hub directory skeleton if it's missing. It's
// idempotent, so it runs unconditionally before every attempt.
func EnsureHub(hub string) error {
	for _, dir := range hubSkeleton {
		if err := fs.MkdirAll(filepath.Join(hub, dir), 0755); err != nil {
			return errors.WithContext(err, "create hub directory")
		}
	}
	return nil
}
