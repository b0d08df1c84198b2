package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// Then: every user-facing command is registered
	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}
	for _, want := range []string{
		"search", "interact", "popular", "trending", "stats", "summary", "config", "version",
	} {
		assert.True(t, names[want], "should have %s command", want)
	}
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"search"})

	err := cmd.Execute()
	assert.Error(t, err, "search without a query should fail arg validation")
}

func TestInteractCmd_RejectsUnknownAction(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"interact", "Signal", "--action", "shrug"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported action")
}

func TestInteractCmd_AcceptsAllActions(t *testing.T) {
	t.Setenv("SEOULMATE_ANALYTICS_DIR", t.TempDir())

	for _, action := range []string{
		"click", "watchlist_add", "watchlist_remove", "rating", "view_details",
	} {
		cmd := NewRootCmd()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"interact", "Signal", "--action", action})
		assert.NoError(t, cmd.Execute(), "action %s should be accepted", action)
	}
}

func TestConfigInitCmd_WritesTemplate(t *testing.T) {
	// Given: a target path in a temp dir
	path := filepath.Join(t.TempDir(), "seoulmate.yaml")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, cmd.Execute())

	// Then: the file holds the annotated template
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog:")
	assert.Contains(t, string(data), "embeddings:")

	// And: a second init without --force refuses to overwrite
	cmd = NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", path})
	assert.Error(t, cmd.Execute())
}

func TestVersionCmd_PrintsBuildInfo(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "seoulmate")
}
