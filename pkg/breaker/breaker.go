// Package breaker implements the per-service circuit breaker that guards
// sync attempts against remotes that keep failing.
//
// Each service owns one Circuit persisted in a shared JSON state file. The
// circuit moves between three states: closed (attempts allowed), open
// (attempts refused until a cooldown elapses), and half-open (exactly one
// trial attempt allowed). The failure threshold and cooldown depend on the
// kind of the last error, so an expired credential backs the service off
// for an hour while a network blip only costs minutes.
package breaker

import (
	"github.com/jonboulle/clockwork"
)

// Breaker applies the state machine on top of the persisted store.
type Breaker struct {
	store  *Store
	policy Policy
	clock  clockwork.Clock
}

// New returns a breaker that reads and writes circuits through store and
// consults policy for thresholds and cooldowns.
func New(store *Store, policy Policy) *Breaker {
	return &Breaker{
		store:  store,
		policy: policy,
		clock:  clockwork.NewRealClock(),
	}
}

// WithClock overrides the breaker's clock. Used by tests.
func (b *Breaker) WithClock(clock clockwork.Clock) *Breaker {
	b.clock = clock
	return b
}

// Allow reports whether the given service may attempt a sync right now.
//
// Closed circuits always admit. Open circuits refuse until the reset
// timeout for the last error kind has elapsed; the first Allow call after
// that moves the circuit to half-open and admits exactly one trial. While
// half-open, further calls refuse, since the one trial is already out.
//
// The open-to-half-open transition is the only mutation Allow performs,
// and it's persisted before this function returns true.
func (b *Breaker) Allow(service string) (bool, error) {
	allowed := false
	_, err := b.store.Update(service, func(c Circuit) Circuit {
		switch c.State {
		case StateOpen:
			rule := b.policy.Rule(c.LastErrorKind)
			if !c.LastFailureTime.IsZero() &&
				b.clock.Now().Sub(c.LastFailureTime) >= rule.ResetTimeout {
				c.State = StateHalfOpen
				c.LastUpdated = b.clock.Now()
				allowed = true
			}
		case StateHalfOpen:
			// The single trial was already granted.
		default:
			allowed = true
		}
		return c
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// RecordResult applies the outcome of a sync attempt to the service's
// circuit and persists it.
//
// A success closes the circuit and zeroes the failure count. A failure
// increments the count, stamps the failure time and error kind, and opens
// the circuit when either the count reaches the threshold for the current
// error kind, or the failure happened during a half-open trial.
func (b *Breaker) RecordResult(service string, success bool, kind ErrorKind) error {
	if !success && kind == "" {
		kind = Unknown
	}

	now := b.clock.Now()
	_, err := b.store.Update(service, func(c Circuit) Circuit {
		c.LastUpdated = now

		if success {
			c.State = StateClosed
			c.FailureCount = 0
			return c
		}

		c.FailureCount++
		c.LastFailureTime = now
		c.LastErrorKind = kind

		rule := b.policy.Rule(kind)
		if c.State == StateHalfOpen || c.FailureCount >= rule.Threshold {
			c.State = StateOpen
		}
		return c
	})
	return err
}

// Reset forces the service's circuit back to its initial values regardless
// of its current state. It's the operator's escape hatch after fixing the
// underlying problem by hand.
func (b *Breaker) Reset(service string) error {
	now := b.clock.Now()
	_, err := b.store.Update(service, func(Circuit) Circuit {
		c := NewCircuit()
		c.LastUpdated = now
		return c
	})
	return err
}

// ResetAll resets every service known to the store.
func (b *Breaker) ResetAll() error {
	circuits, err := b.store.List()
	if err != nil {
		return err
	}

	for service := range circuits {
		if err := b.Reset(service); err != nil {
			return err
		}
	}
	return nil
}
