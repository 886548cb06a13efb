package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"dlrho/internal/dlscan"
	"dlrho/internal/rho"
)

// runApp runs the app and returns the exit status it requested.
func runApp(t *testing.T, args ...string) int {
	t.Helper()
	code := 0
	oldExiter, oldErr := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(c int) { code = c }
	cli.ErrWriter = &bytes.Buffer{}
	defer func() { cli.OsExiter, cli.ErrWriter = oldExiter, oldErr }()

	if err := app.Run(append([]string{"dlog"}, args...)); err != nil {
		var ec cli.ExitCoder
		require.True(t, errors.As(err, &ec), "unexpected error %v", err)
	}
	return code
}

func TestExit(t *testing.T) {
	assert.NoError(t, exit(nil))

	var ec cli.ExitCoder
	err := exit(fmt.Errorf("solve: %w", rho.ErrNoCollision))
	require.True(t, errors.As(err, &ec))
	assert.Equal(t, dlscan.ExitNotFound, ec.ExitCode())

	err = exit(rho.ErrInvalidInput)
	require.True(t, errors.As(err, &ec))
	assert.Equal(t, dlscan.ExitFailure, ec.ExitCode())

	orig := cli.Exit("already", 7)
	assert.Equal(t, orig, exit(orig))
}

func TestVerifyCommand(t *testing.T) {
	assert.Equal(t, dlscan.ExitSolved, runApp(t, "verify", "--p", "107", "--a", "10", "--b", "64", "--x", "20"))
	assert.Equal(t, dlscan.ExitNotFound, runApp(t, "verify", "--p", "107", "--a", "10", "--b", "64", "--x", "21"))
	assert.Equal(t, dlscan.ExitFailure, runApp(t, "verify", "--p", "2", "--a", "1", "--b", "1", "--x", "0"))
}

func TestSolveCommandExitCodes(t *testing.T) {
	out := t.TempDir() + "/r.json"
	base := []string{"solve", "--p", "107", "--a", "10", "--b", "64", "--seed", "1", "--verbosity", "error", "--format", "json", "--out", out}
	assert.Equal(t, dlscan.ExitSolved, runApp(t, append(base, "--order", "53")...))
	assert.Equal(t, dlscan.ExitNotFound, runApp(t, append(base, "--order", "7")...))
	assert.Equal(t, dlscan.ExitFailure, runApp(t, append(base, "--branching", "spiral")...))
}

func TestExampleCommand(t *testing.T) {
	out := t.TempDir() + "/example.json"
	assert.Equal(t, dlscan.ExitSolved, runApp(t, "example", "--seed", "5", "--verbosity", "error", "--format", "json", "--out", out))
	assert.Equal(t, dlscan.ExitFailure, runApp(t, "example", "--verbosity", "error", "--format", "xml", "--out", out))
}

func TestDumpConfigValidates(t *testing.T) {
	assert.Equal(t, dlscan.ExitSolved, runApp(t, "dumpconfig", "--p", "107", "--a", "10", "--b", "64"))
	assert.Equal(t, dlscan.ExitFailure, runApp(t, "dumpconfig", "--p", "107", "--a", "10", "--b", "200"))
	assert.Equal(t, dlscan.ExitFailure, runApp(t, "dumpconfig", "--p", "107", "--a", "10", "--b", "64", "--branching", "spiral"))
}
