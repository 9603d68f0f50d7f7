package sync

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureHub(t *testing.T) {
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = afero.NewOsFs() })

	require.NoError(t, EnsureHub("/data/hub"))

	for _, dir := range []string{
		"/data/hub/Inbox",
		"/data/hub/Archive",
		"/data/hub/.driftsync",
	} {
		isDir, err := afero.IsDir(fs, dir)
		assert.NoError(t, err)
		assert.True(t, isDir, dir)
	}
}

func TestEnsureHubIdempotent(t *testing.T) {
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = afero.NewOsFs() })

	require.NoError(t, EnsureHub("/data/hub"))
	require.NoError(t, afero.WriteFile(fs,
		"/data/hub/Inbox/report.pdf", []byte("contents"), 0644))

	// A second run must not disturb existing contents.
	require.NoError(t, EnsureHub("/data/hub"))

	contents, err := afero.ReadFile(fs, "/data/hub/Inbox/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "contents", string(contents))
}
