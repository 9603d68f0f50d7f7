package breaker

import "time"

// Rule is the breaker policy for a single ErrorKind.
type Rule struct {
	// Threshold is the consecutive-failure count that opens the circuit.
	Threshold int

	// ResetTimeout is how long an open circuit waits before allowing a
	// half-open trial.
	ResetTimeout time.Duration
}

// Policy maps each ErrorKind to its rule. It's constructed once at startup
// and never mutated afterwards.
type Policy map[ErrorKind]Rule

// DefaultPolicy returns the stock policy table. Kinds that can't succeed
// without external intervention (authentication, quota, configuration) get
// long cooldowns; transient and network failures are retried aggressively.
func DefaultPolicy() Policy {
	return Policy{
		Transient:      {Threshold: 8, ResetTimeout: 10 * time.Minute},
		Authentication: {Threshold: 3, ResetTimeout: time.Hour},
		Conflict:       {Threshold: 4, ResetTimeout: 30 * time.Minute},
		Quota:          {Threshold: 2, ResetTimeout: 2 * time.Hour},
		Network:        {Threshold: 5, ResetTimeout: 15 * time.Minute},
		Configuration:  {Threshold: 2, ResetTimeout: time.Hour},
		Permanent:      {Threshold: 1, ResetTimeout: 24 * time.Hour},
		PartialSync:    {Threshold: 5, ResetTimeout: 12 * time.Hour},
		Unknown:        {Threshold: 5, ResetTimeout: 30 * time.Minute},
	}
}

// Rule returns the rule for the given kind. Kinds without an explicit rule
// fall back to the Unknown rule.
func (p Policy) Rule(kind ErrorKind) Rule {
	if rule, ok := p[kind]; ok {
		return rule
	}
	return p[Unknown]
}
