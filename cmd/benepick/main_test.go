package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "benepick version 0.1.0\n", out)
}

func TestPoliciesCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("BENEPICK_DB_PATH", filepath.Join(dir, "benepick.db"))

	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
policies:
  - policy_id: P001
    title: 청년 월세 한시 특별지원
    source_type: central
  - policy_id: P002
    title: 서울시 청년수당
    source_type: regional
    ctpv_nm: 서울특별시
`), 0o600))

	out, err := execute(t, "policies", "import", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 policies")

	out, err = execute(t, "policies", "count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestSessionLsOnEmptyBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := execute(t, "session", "ls")
	require.NoError(t, err)
	assert.Equal(t, "No active sessions found.\n", out)
}

func TestTryRejectsUnknownTrack(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "try", "bogus")
	assert.ErrorContains(t, err, "unknown track")
}
