// Package sync orchestrates one guarded sync attempt per configured
// service.
//
// An attempt for a service runs through four gates in order: the circuit
// breaker must admit the service, the cloud mount must answer an
// availability probe, the local hub skeleton must exist, and only then is
// the external synchronization tool invoked. A failed invocation is
// classified and retried exactly once with a more conservative strategy (a
// longer timeout, preferring the newer copy of conflicting files). Whatever
// happens, the breaker hears about the final outcome exactly once per
// attempt sequence.
//
// Services are independent: they're synced concurrently, each owns its own
// circuit, and one blocked or failing service never prevents the others
// from syncing.
package sync
