package breaker

// ErrorKind buckets a sync failure by its cause. The kind picks the
// threshold and cooldown the breaker applies, since retrying an expired
// credential is pointless while retrying a network blip usually works.
type ErrorKind string

const (
	// Transient covers timeouts and killed processes.
	Transient ErrorKind = "transient"

	// Authentication covers expired or rejected credentials.
	Authentication ErrorKind = "authentication"

	// Conflict covers file locking and conflicting-update failures.
	Conflict ErrorKind = "conflict"

	// Quota covers storage quota and disk space failures.
	Quota ErrorKind = "quota"

	// Network covers unreachable mounts and connection failures.
	Network ErrorKind = "network"

	// Configuration covers misconfiguration of the tool or the hub.
	Configuration ErrorKind = "configuration"

	// Permanent covers failures that no amount of retrying fixes.
	Permanent ErrorKind = "permanent"

	// PartialSync covers runs where some, but not all, files synced.
	PartialSync ErrorKind = "partial-sync"

	// Unknown is the fallback when classification is ambiguous.
	Unknown ErrorKind = "unknown"
)

// Kinds lists every ErrorKind. The order matches the policy table in the
// documentation.
var Kinds = []ErrorKind{
	Transient,
	Authentication,
	Conflict,
	Quota,
	Network,
	Configuration,
	Permanent,
	PartialSync,
	Unknown,
}

// ParseKind returns the ErrorKind with the given name.
func ParseKind(name string) (ErrorKind, bool) {
	for _, kind := range Kinds {
		if string(kind) == name {
			return kind, true
		}
	}
	return "", false
}
