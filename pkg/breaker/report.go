package breaker

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Reporter renders the current circuit state for operators. It only ever
// reads from the store.
type Reporter struct {
	store *Store
}

// NewReporter returns a reporter backed by the given store.
func NewReporter(store *Store) Reporter {
	return Reporter{store: store}
}

// Report writes one table row per known service: state, failure count,
// last failure time, and the kind of the last error.
func (r Reporter) Report(out io.Writer) error {
	circuits, err := r.store.List()
	if err != nil {
		return err
	}

	if len(circuits) == 0 {
		fmt.Fprintln(out, "No services have been synced yet.")
		return nil
	}

	var services []string
	for service := range circuits {
		services = append(services, service)
	}
	sort.Strings(services)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Service", "State", "Failures", "Last Failure", "Last Error"})
	for _, service := range services {
		circuit := circuits[service]

		lastFailure := "never"
		if !circuit.LastFailureTime.IsZero() {
			lastFailure = circuit.LastFailureTime.UTC().Format(time.RFC3339)
		}

		lastError := "-"
		if circuit.LastErrorKind != "" {
			lastError = string(circuit.LastErrorKind)
		}

		table.Append([]string{
			service,
			string(circuit.State),
			fmt.Sprintf("%d", circuit.FailureCount),
			lastFailure,
			lastError,
		})
	}
	table.Render()
	return nil
}
