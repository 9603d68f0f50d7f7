package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/pkg/breaker"
	"github.com/driftsync/driftsync/pkg/errors"
)

const workspacePath = "/dir/driftsync.yaml"

func TestParseWorkspaceVersion(t *testing.T) {
	tests := []parseWorkspaceTest{
		{
			name: "EmptyVersionDefaults",
			config: `
hub: /data/hub
services:
- name: dropbox
  mount: /mnt/dropbox
`,
			expConfig: Workspace{
				Version:   InitialWorkspaceConfigVersion,
				Hub:       "/data/hub",
				StateFile: "/home/test/.driftsync/breakers.json",
				Services: []Service{
					{Name: "dropbox", Mount: "/mnt/dropbox"},
				},
			},
		},
		{
			name: "CorrectVersion",
			config: `
version: v1alpha1
hub: /data/hub
services:
- name: dropbox
  mount: /mnt/dropbox
`,
			expConfig: Workspace{
				Version:   SupportedWorkspaceConfigVersion,
				Hub:       "/data/hub",
				StateFile: "/home/test/.driftsync/breakers.json",
				Services: []Service{
					{Name: "dropbox", Mount: "/mnt/dropbox"},
				},
			},
		},
		{
			name:   "IncorrectVersion",
			config: "version: incorrect_version",
			expError: errors.WithContext(incompatibleVersionError{
				path:   workspacePath,
				exp:    SupportedWorkspaceConfigVersion,
				actual: "incorrect_version",
			}, "parse"),
		},
		{
			name: "ExtraFields",
			config: `
version: v1alpha1
extra: fields
`,
			expError: errors.WithContext(
				errors.NewFriendlyError(parseConfigErrTemplate, workspacePath,
					errors.New("error unmarshaling JSON: while decoding JSON: "+
						`json: unknown field "extra"`)),
				"parse"),
		},
		{
			// Version compatibility is checked before unknown fields so that
			// outdated binaries complain about the version, not the fields it
			// doesn't know about yet.
			name: "VersionCheckedBeforeFields",
			config: `
version: incorrect_version
extra: fields
`,
			expError: errors.WithContext(incompatibleVersionError{
				path:   workspacePath,
				exp:    SupportedWorkspaceConfigVersion,
				actual: "incorrect_version",
			}, "parse"),
		},
	}

	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestParseWorkspaceValidation(t *testing.T) {
	tests := []parseWorkspaceTest{
		{
			name: "MissingHub",
			config: `
services:
- name: dropbox
  mount: /mnt/dropbox
`,
			expError: errors.MissingFieldError{Field: "hub"},
		},
		{
			name:   "NoServices",
			config: "hub: /data/hub",
			expError: errors.NewFriendlyError(
				"No services are configured. Add at least one cloud mirror to " +
					"the services section."),
		},
		{
			name: "MissingServiceName",
			config: `
hub: /data/hub
services:
- mount: /mnt/dropbox
`,
			expError: errors.MissingFieldError{Field: "services[].name"},
		},
		{
			name: "MissingMount",
			config: `
hub: /data/hub
services:
- name: dropbox
`,
			expError: errors.MissingFieldError{Field: "services[].mount"},
		},
		{
			name: "DuplicateServiceNames",
			config: `
hub: /data/hub
services:
- name: dropbox
  mount: /mnt/dropbox
- name: dropbox
  mount: /mnt/other
`,
			expError: errors.NewFriendlyError(
				`Service "dropbox" is defined more than once.`),
		},
	}

	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestParseWorkspacePaths(t *testing.T) {
	tests := []parseWorkspaceTest{
		{
			// Relative paths are evaluated relative to the config file's
			// directory, not the process's working directory.
			name: "RelativeToConfigDir",
			config: `
hub: data/hub
services:
- name: dropbox
  mount: mounts/dropbox
`,
			expConfig: Workspace{
				Version:   InitialWorkspaceConfigVersion,
				Hub:       "/dir/data/hub",
				StateFile: "/home/test/.driftsync/breakers.json",
				Services: []Service{
					{Name: "dropbox", Mount: "/dir/mounts/dropbox"},
				},
			},
		},
		{
			name: "TildeExpansion",
			config: `
hub: ~/hub
stateFile: ~/state/breakers.json
services:
- name: dropbox
  mount: ~/mnt/dropbox
`,
			expConfig: Workspace{
				Version:   InitialWorkspaceConfigVersion,
				Hub:       "/home/test/hub",
				StateFile: "/home/test/state/breakers.json",
				Services: []Service{
					{Name: "dropbox", Mount: "/home/test/mnt/dropbox"},
				},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

type parseWorkspaceTest struct {
	name      string
	config    string
	expConfig Workspace
	expError  error
}

func (test parseWorkspaceTest) run(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(path string) (string, error) {
		if strings.HasPrefix(path, "~") {
			return "/home/test" + path[1:], nil
		}
		return path, nil
	}

	require.NoError(t, afero.WriteFile(fs, workspacePath,
		[]byte(test.config), 0644))

	config, err := ParseWorkspace(workspacePath)
	require.Equal(t, test.expError, err)

	if test.expError == nil {
		assert.Equal(t, test.expConfig, config)
	}
}

func TestParseWorkspaceMissingFile(t *testing.T) {
	fs = afero.NewMemMapFs()

	_, err := ParseWorkspace(workspacePath)
	assert.Equal(t, errors.NewFriendlyError("The driftsync config "+
		"file doesn't exist at %q. Please create it with your hub and "+
		"service definitions before syncing.", workspacePath), err)
}

func TestToolDefaults(t *testing.T) {
	var workspace Workspace
	assert.Equal(t, "unison", workspace.ToolCommand())
	assert.Equal(t, 300*time.Second, workspace.BaselineTimeout())
	assert.Equal(t, 900*time.Second, workspace.RetryTimeout())
	assert.True(t, workspace.PreferNewer())
}

func TestToolOverrides(t *testing.T) {
	preferNewer := false
	workspace := Workspace{
		Tool: Tool{
			Command:                "rclone",
			BaselineTimeoutSeconds: 60,
			Retry: Retry{
				TimeoutMultiplier: 2,
				PreferNewer:       &preferNewer,
			},
		},
	}

	assert.Equal(t, "rclone", workspace.ToolCommand())
	assert.Equal(t, 60*time.Second, workspace.BaselineTimeout())
	assert.Equal(t, 120*time.Second, workspace.RetryTimeout())
	assert.False(t, workspace.PreferNewer())
}

func TestPolicyOverrides(t *testing.T) {
	workspace := Workspace{
		Breakers: map[string]Breaker{
			"network": {Threshold: 10, ResetTimeoutSeconds: 60},
			"quota":   {Threshold: 7},
		},
	}

	policy, err := workspace.Policy()
	require.NoError(t, err)

	assert.Equal(t, breaker.Rule{
		Threshold:    10,
		ResetTimeout: time.Minute,
	}, policy[breaker.Network])

	// A partial override keeps the default for the untouched field.
	assert.Equal(t, 7, policy[breaker.Quota].Threshold)
	assert.Equal(t, 2*time.Hour, policy[breaker.Quota].ResetTimeout)

	// Kinds without overrides keep their defaults.
	assert.Equal(t, breaker.DefaultPolicy()[breaker.Transient],
		policy[breaker.Transient])
}

func TestPolicyUnknownKind(t *testing.T) {
	workspace := Workspace{
		Breakers: map[string]Breaker{
			"flaky": {Threshold: 1},
		},
	}

	_, err := workspace.Policy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unknown error kind "flaky"`)
}
