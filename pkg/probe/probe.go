// Package probe checks whether the cloud-backed mounts driftsync syncs
// against are actually reachable before the sync tool is pointed at them.
// A FUSE mount with a wedged backend happily exists on disk while hanging
// every operation, so existence alone isn't proof of life; the probe also
// requires a directory listing to complete within a bound.
package probe

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// listTimeout bounds the directory listing used to check responsiveness.
const listTimeout = 10 * time.Second

// Defaults for WaitUntilAvailable.
const (
	DefaultMaxAttempts = 10
	DefaultInterval    = 5 * time.Second
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// Prober checks mount availability.
type Prober struct {
	clock clockwork.Clock
	log   *logrus.Logger
}

// New returns a prober that logs probe outcomes to log.
func New(log *logrus.Logger) *Prober {
	return &Prober{
		clock: clockwork.NewRealClock(),
		log:   log,
	}
}

// WithClock overrides the prober's clock. Used by tests.
func (p *Prober) WithClock(clock clockwork.Clock) *Prober {
	p.clock = clock
	return p
}

// Probe reports whether the mount exists and answers a directory listing
// within the listing timeout.
func (p *Prober) Probe(ctx context.Context, mount string) bool {
	if _, err := fs.Stat(mount); err != nil {
		p.log.WithError(err).WithField("mount", mount).Debug("Mount not present")
		return false
	}

	// The listing runs in its own goroutine because a hung mount blocks the
	// ReadDir call indefinitely. On timeout the goroutine is abandoned; it
	// holds no resources beyond the one stuck syscall.
	listed := make(chan error, 1)
	go func() {
		_, err := afero.ReadDir(fs, mount)
		listed <- err
	}()

	select {
	case err := <-listed:
		if err != nil {
			p.log.WithError(err).WithField("mount", mount).Debug("Mount listing failed")
			return false
		}
		return true
	case <-ctx.Done():
		return false
	case <-p.clock.After(listTimeout):
		p.log.WithField("mount", mount).Warn("Mount exists but isn't responding")
		return false
	}
}

// WaitUntilAvailable polls Probe up to maxAttempts times, sleeping interval
// between attempts. It returns true on the first positive probe, and false
// once the attempts are exhausted or ctx is cancelled. This is the only
// polling loop in the engine, and it's hard-bounded.
func (p *Prober) WaitUntilAvailable(ctx context.Context, mount string,
	maxAttempts int, interval time.Duration) bool {

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if p.Probe(ctx, mount) {
			return true
		}

		if attempt == maxAttempts {
			break
		}

		p.log.WithField("mount", mount).Debugf(
			"Mount unavailable, retrying in %s (attempt %d/%d)",
			interval, attempt, maxAttempts)

		select {
		case <-ctx.Done():
			return false
		case <-p.clock.After(interval):
		}
	}
	return false
}
