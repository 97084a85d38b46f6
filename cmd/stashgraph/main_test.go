package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/specialistvlad/stashgraph/internal/app"
	"github.com/specialistvlad/stashgraph/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedWorkflow = "../../internal/workflow/testdata/nested.json"

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Match(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-w", nestedWorkflow, "match", "54:62:174"})

	require.NoError(t, err)
	assert.Equal(t, "54:62:174\tPromptStashPassthrough\n", out.String())
}

func TestRun_NoMatch(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-w", nestedWorkflow, "match", "1:2"})
	assert.ErrorIs(t, err, app.ErrNoMatch)
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "nil", err: nil, wantCode: 0},
		{name: "usage", err: &cli.ExitError{Code: 2, Message: "bad flag"}, wantCode: 2, wantMsg: "bad flag\n"},
		{name: "no match", err: fmt.Errorf("%w %q", app.ErrNoMatch, "1:2"), wantCode: 1},
		{name: "other", err: errors.New("boom"), wantCode: 1, wantMsg: "boom\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errW := &bytes.Buffer{}
			assert.Equal(t, tc.wantCode, exitCode(tc.err, errW))
			assert.Equal(t, tc.wantMsg, errW.String())
		})
	}
}
