package sync

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/pkg/config"
)

func TestCheckToolVersion(t *testing.T) {
	tests := []struct {
		name    string
		result  toolResult
		expWarn bool
	}{
		{
			name:   "NewEnough",
			result: toolResult{Output: "unison version 2.53.3 (ocaml 4.14.1)"},
		},
		{
			name:    "TooOld",
			result:  toolResult{Output: "unison version 2.48.4"},
			expWarn: true,
		},
		{
			name:   "NoVersionInOutput",
			result: toolResult{Output: "usage: unison [options]"},
		},
		{
			name:   "ToolMissing",
			result: toolResult{ExitCode: -1, Err: assert.AnError},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			tool := &fakeTool{results: []toolResult{test.result}}
			tool.install(t)

			logger, hook := newWarnCapturingLogger()
			CheckToolVersion(context.Background(), config.Workspace{}, logger)

			require.Len(t, tool.calls, 1)
			assert.Equal(t, "unison", tool.calls[0].command)
			assert.Equal(t, []string{"-version"}, tool.calls[0].args)

			warned := false
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.WarnLevel {
					warned = true
				}
			}
			assert.Equal(t, test.expWarn, warned)
		})
	}
}

func newWarnCapturingLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.WarnLevel)
	return logger, hook
}
