package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftsync/driftsync/pkg/breaker"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		output   string
		exp      breaker.ErrorKind
	}{
		{
			name:     "TimeoutExitCode",
			exitCode: 124,
			output:   "",
			exp:      breaker.Transient,
		},
		{
			name:     "KilledExitCode",
			exitCode: 137,
			output:   "Killed",
			exp:      breaker.Transient,
		},
		{
			// A killed run is transient even when the partial output
			// matches another vocabulary.
			name:     "TimeoutBeatsQuotaText",
			exitCode: 124,
			output:   "quota exceeded",
			exp:      breaker.Transient,
		},
		{
			name:     "AuthenticationVocabulary",
			exitCode: 1,
			output:   "Fatal error: Permission denied (publickey).",
			exp:      breaker.Authentication,
		},
		{
			name:     "ExpiredToken",
			exitCode: 1,
			output:   "server replied: token expired, login required",
			exp:      breaker.Authentication,
		},
		{
			// Credential text only counts as an authentication failure on
			// exit 1. Other exits fall through to the later checks.
			name:     "CredentialTextOnOtherExit",
			exitCode: 2,
			output:   "permission denied",
			exp:      breaker.Unknown,
		},
		{
			name:     "ConflictVocabulary",
			exitCode: 2,
			output:   "Error: conflicting updates to file Inbox/report.pdf",
			exp:      breaker.Conflict,
		},
		{
			name:     "LockedFile",
			exitCode: 2,
			output:   "destination file is locked by another client",
			exp:      breaker.Conflict,
		},
		{
			name:     "QuotaVocabulary",
			exitCode: 2,
			output:   "write failed: no space left on device",
			exp:      breaker.Quota,
		},
		{
			// A quota error wrapped in an OS permission message: the quota
			// check still fires because the wrapper doesn't carry exit 1.
			name:     "QuotaWithPermissionWrapper",
			exitCode: 2,
			output:   "permission denied: storage limit reached, quota exceeded",
			exp:      breaker.Quota,
		},
		{
			// Conflict outranks quota when output matches both.
			name:     "ConflictBeatsQuota",
			exitCode: 2,
			output:   "conflicting updates: quota exceeded on remote",
			exp:      breaker.Conflict,
		},
		{
			name:     "PartialTransferExit",
			exitCode: 1,
			output:   "Synchronization incomplete: 3 items skipped",
			exp:      breaker.PartialSync,
		},
		{
			name:     "UnrecognizedFailure",
			exitCode: 3,
			output:   "Fatal error: unexpected internal condition",
			exp:      breaker.Unknown,
		},
		{
			name:     "ToolCouldNotStart",
			exitCode: -1,
			output:   "",
			exp:      breaker.Unknown,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, Kind(test.exitCode, test.output))
		})
	}
}
