package sync

import (
	"context"
	goSync "sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/classify"
	"github.com/driftsync/driftsync/pkg/config"
	"github.com/driftsync/driftsync/pkg/probe"
)

// Result summarizes the attempt sequence for one service. It's not
// persisted; the durable outcome lives in the service's circuit.
type Result struct {
	Service string
	Success bool

	// Blocked means the circuit breaker refused the attempt before anything
	// else ran.
	Blocked bool

	// Kind is the classified cause when Success is false and the attempt
	// wasn't blocked.
	Kind breaker.ErrorKind

	ExitCode int
	Duration time.Duration
}

// Executor runs guarded sync attempts.
type Executor struct {
	cfg     config.Workspace
	breaker *breaker.Breaker
	prober  *probe.Prober
	log     *logrus.Logger
	clock   clockwork.Clock

	probeAttempts int
	probeInterval time.Duration
}

// NewExecutor returns an executor wired to the given breaker and prober.
func NewExecutor(cfg config.Workspace, br *breaker.Breaker, prober *probe.Prober,
	log *logrus.Logger) *Executor {

	return &Executor{
		cfg:           cfg,
		breaker:       br,
		prober:        prober,
		log:           log,
		clock:         clockwork.NewRealClock(),
		probeAttempts: probe.DefaultMaxAttempts,
		probeInterval: probe.DefaultInterval,
	}
}

// WithClock overrides the executor's clock. Used by tests.
func (e *Executor) WithClock(clock clockwork.Clock) *Executor {
	e.clock = clock
	return e
}

// SyncAll syncs every service concurrently. Each service owns exactly one
// circuit key and there's no shared mutable state between them, so the
// tasks don't synchronize with each other at all.
func (e *Executor) SyncAll(ctx context.Context, services []config.Service) []Result {
	results := make([]Result, len(services))

	var wg goSync.WaitGroup
	for i := range services {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.SyncService(ctx, services[i])
		}(i)
	}
	wg.Wait()

	return results
}

// SyncService runs the full guarded attempt sequence for one service:
// breaker gate, availability gate, hub skeleton, baseline invocation, and
// at most one escalated retry. The breaker hears the final outcome exactly
// once, no matter how many tool invocations happened.
func (e *Executor) SyncService(ctx context.Context, service config.Service) Result {
	start := e.clock.Now()
	log := e.log.WithField("service", service.Name)

	finish := func(result Result) Result {
		result.Service = service.Name
		result.Duration = e.clock.Now().Sub(start)
		return result
	}

	allowed, err := e.breaker.Allow(service.Name)
	if err != nil {
		log.WithError(err).Error("Failed to consult circuit breaker")
		return finish(Result{Kind: breaker.Unknown})
	}
	if !allowed {
		log.Warn("Sync blocked by circuit breaker")
		return finish(Result{Blocked: true})
	}

	if !e.prober.WaitUntilAvailable(ctx, service.Mount, e.probeAttempts, e.probeInterval) {
		log.WithField("mount", service.Mount).Error("Mount never became available")
		e.record(service.Name, false, breaker.Network)
		return finish(Result{Kind: breaker.Network})
	}

	if err := EnsureHub(e.cfg.Hub); err != nil {
		log.WithError(err).Error("Failed to create hub skeleton")
		e.record(service.Name, false, breaker.Configuration)
		return finish(Result{Kind: breaker.Configuration})
	}

	baseline := runTool(ctx, e.cfg.BaselineTimeout(),
		e.cfg.ToolCommand(), buildArgs(e.cfg, service, false))
	if baseline.Succeeded() {
		log.Info("Synced")
		e.record(service.Name, true, "")
		return finish(Result{Success: true})
	}

	kind := classify.Kind(baseline.ExitCode, baseline.Output)
	log.WithFields(logrus.Fields{
		"kind": kind,
		"exit": baseline.ExitCode,
	}).Warn("Sync failed, retrying with conservative strategy")

	if ctx.Err() != nil {
		// Cancelled mid-attempt. Record what we saw, but don't launch a
		// second invocation.
		e.record(service.Name, false, kind)
		return finish(Result{Kind: kind, ExitCode: baseline.ExitCode})
	}

	retry := runTool(ctx, e.cfg.RetryTimeout(),
		e.cfg.ToolCommand(), buildArgs(e.cfg, service, true))
	if retry.Succeeded() {
		log.Info("Synced on retry")
		e.record(service.Name, true, "")
		return finish(Result{Success: true})
	}

	kind = classify.Kind(retry.ExitCode, retry.Output)
	log.WithFields(logrus.Fields{
		"kind": kind,
		"exit": retry.ExitCode,
	}).Error("Sync failed after retry")
	e.record(service.Name, false, kind)
	return finish(Result{Kind: kind, ExitCode: retry.ExitCode})
}

func (e *Executor) record(service string, success bool, kind breaker.ErrorKind) {
	if err := e.breaker.RecordResult(service, success, kind); err != nil {
		e.log.WithError(err).WithField("service", service).Error(
			"Failed to persist circuit breaker state")
	}
}
