// Package classify maps a failed sync-tool invocation to an ErrorKind by
// inspecting its exit code and captured output.
package classify

import (
	"strings"

	"github.com/driftsync/driftsync/pkg/breaker"
)

// Exit codes produced when the tool was killed rather than failing on its
// own: 124 is the timeout(1) convention, 137 is 128+SIGKILL.
const (
	exitTimeout = 124
	exitKilled  = 137
)

// Exit code unison uses when some transfers were skipped but the run
// otherwise completed.
const exitPartial = 1

var authenticationVocabulary = []string{
	"permission denied",
	"access denied",
	"authentication",
	"unauthorized",
	"invalid credentials",
	"credential",
	"token expired",
	"login required",
	"forbidden",
}

var conflictVocabulary = []string{
	"conflicting updates",
	"conflict",
	"file is locked",
	"locked",
	"resource busy",
	"in use by another process",
}

var quotaVocabulary = []string{
	"quota exceeded",
	"quota",
	"no space left",
	"disk full",
	"insufficient storage",
	"storage limit",
	"out of space",
}

// Kind classifies a failed attempt. The checks run in a fixed order and the
// first match wins: output frequently matches several vocabularies at once
// (a quota failure can surface wrapped in an OS "permission denied"), so
// the unambiguous signatures are checked before the generic fallbacks.
//
//  1. Timeout or kill exit codes are transient no matter what was printed.
//  2. Exit 1 with credential vocabulary is an authentication failure.
//  3. Conflict and lock vocabulary.
//  4. Quota and disk-space vocabulary.
//  5. Exit 1 with none of the above is unison's partial-transfer exit.
//  6. Everything else is unknown rather than a classification error.
func Kind(exitCode int, output string) breaker.ErrorKind {
	lowered := strings.ToLower(output)

	if exitCode == exitTimeout || exitCode == exitKilled {
		return breaker.Transient
	}

	if exitCode == exitPartial && matchesAny(lowered, authenticationVocabulary) {
		return breaker.Authentication
	}

	if matchesAny(lowered, conflictVocabulary) {
		return breaker.Conflict
	}

	if matchesAny(lowered, quotaVocabulary) {
		return breaker.Quota
	}

	if exitCode == exitPartial {
		return breaker.PartialSync
	}

	return breaker.Unknown
}

func matchesAny(output string, vocabulary []string) bool {
	for _, phrase := range vocabulary {
		if strings.Contains(output, phrase) {
			return true
		}
	}
	return false
}
