package breaker

import (
	"encoding/json"
	"time"

	"github.com/driftsync/driftsync/pkg/errors"
)

// State is the admission state of a service circuit.
type State string

const (
	// StateClosed allows operations unconditionally.
	StateClosed State = "closed"

	// StateOpen refuses operations until the reset timeout elapses.
	StateOpen State = "open"

	// StateHalfOpen permits exactly one trial operation.
	StateHalfOpen State = "half-open"
)

// Circuit is the persisted breaker state for one service.
type Circuit struct {
	State        State
	FailureCount int

	// LastFailureTime is the zero time when the service has never failed.
	// It's set on every failure and only cleared by an explicit reset.
	LastFailureTime time.Time

	// LastErrorKind is empty until the first recorded failure.
	LastErrorKind ErrorKind

	LastUpdated time.Time
}

// NewCircuit returns the initial circuit for a service that has never been
// synced: closed, with no recorded failures.
func NewCircuit() Circuit {
	return Circuit{State: StateClosed}
}

// circuitJSON is the wire format of a Circuit. Timestamps are RFC 3339
// strings, with the empty string standing in for "never".
type circuitJSON struct {
	State           string `json:"state"`
	FailureCount    int    `json:"failure_count"`
	LastFailureTime string `json:"last_failure_time"`
	LastUpdated     string `json:"last_updated"`
	ErrorType       string `json:"error_type"`
}

// MarshalJSON implements json.Marshaler.
func (c Circuit) MarshalJSON() ([]byte, error) {
	return json.Marshal(circuitJSON{
		State:           string(c.State),
		FailureCount:    c.FailureCount,
		LastFailureTime: formatTime(c.LastFailureTime),
		LastUpdated:     formatTime(c.LastUpdated),
		ErrorType:       string(c.LastErrorKind),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var wire circuitJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch State(wire.State) {
	case StateClosed, StateOpen, StateHalfOpen:
	default:
		return errors.New("unrecognized circuit state: " + wire.State)
	}

	lastFailure, err := parseTime(wire.LastFailureTime)
	if err != nil {
		return errors.WithContext(err, "parse last failure time")
	}

	lastUpdated, err := parseTime(wire.LastUpdated)
	if err != nil {
		return errors.WithContext(err, "parse last updated time")
	}

	*c = Circuit{
		State:           State(wire.State),
		FailureCount:    wire.FailureCount,
		LastFailureTime: lastFailure,
		LastErrorKind:   ErrorKind(wire.ErrorType),
		LastUpdated:     lastUpdated,
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
