package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/stashgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stashgraph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_NoCommandPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-log-level", "debug"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "match PATH")
}

func TestParse_FlagsAroundCommand(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"-w", "flow.json", "match", "54:62:174", "-log-format", "json"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, shouldExit)

	assert.Equal(t, app.CmdMatch, cfg.Command)
	assert.Equal(t, []string{"54:62:174"}, cfg.Args)
	assert.Equal(t, "flow.json", cfg.WorkflowPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/", cfg.Namespace)
}

func TestParse_ConfigFileAndOverrides(t *testing.T) {
	path := writeConfig(t, `
log_level = "warn"
workflow  = "from-file.json"
server {
  url       = "http://127.0.0.1:8188"
  namespace = "/stash"
}
listen {
  port            = 9100
  resync_interval = "3s"
}
`)

	cfg, _, err := Parse([]string{"-config", path, "serve"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-file.json", cfg.WorkflowPath)
	assert.Equal(t, "http://127.0.0.1:8188", cfg.ServerURL)
	assert.Equal(t, "/stash", cfg.Namespace)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.ResyncInterval)

	cfg, _, err = Parse([]string{"-config", path, "-port", "9200", "-workflow", "cli.json", "-log-level", "ERROR", "-insecure", "serve"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, "cli.json", cfg.WorkflowPath)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestParse_RemoteCommands(t *testing.T) {
	cfg, _, err := Parse([]string{"continue", "54:62:174", "new text", "-port", "9100"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, app.CmdContinue, cfg.Command)
	assert.Equal(t, []string{"54:62:174", "new text"}, cfg.Args)
	assert.Equal(t, "http://127.0.0.1:9100", cfg.APIURL)

	cfg, _, err = Parse([]string{"-api", "http://backend:8188", "lists", "add", "faces"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8188", cfg.APIURL)
	assert.Equal(t, []string{"add", "faces"}, cfg.Args)

	cfg, _, err = Parse([]string{"-w", "flow.json", "-url", "http://localhost:8188", "listen", "-write"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, cfg.WriteBack)
}

func TestParse_Errors(t *testing.T) {
	badConfig := writeConfig(t, `listen {`)

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--this-is-not-a-valid-flag"}, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "resolve", "-w", "a.json"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "resolve", "-w", "a.json"}, wantMsg: "invalid log-level"},
		{name: "unknown command", args: []string{"dance"}, wantMsg: "unknown command"},
		{name: "match without path", args: []string{"-w", "a.json", "match"}, wantMsg: "exactly one PATH"},
		{name: "listen without url", args: []string{"-w", "a.json", "listen"}, wantMsg: "server URL is required"},
		{name: "continue without path", args: []string{"continue"}, wantMsg: "PATH and an optional TEXT"},
		{name: "lists bad action", args: []string{"lists", "rename", "x"}, wantMsg: "unknown action"},
		{name: "missing config file", args: []string{"-config", filepath.Join(t.TempDir(), "nope.hcl"), "serve"}, wantMsg: "failed to read config file"},
		{name: "broken config file", args: []string{"-config", badConfig, "serve"}, wantMsg: "failed to parse"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, shouldExit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
