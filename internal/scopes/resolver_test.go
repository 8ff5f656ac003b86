package scopes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTableYAML = `gmail:
  send:
    - https://www.googleapis.com/auth/gmail.send
  read:
    - https://www.googleapis.com/auth/gmail.readonly
youtube:
  write:
    - https://www.googleapis.com/auth/youtube.force-ssl
    - https://www.googleapis.com/auth/youtube.upload
`

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scopes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(writeTable(t, testTableYAML))
	require.NoError(t, err)

	assert.Len(t, table, 2)
	assert.Contains(t, table, "gmail")
	assert.Contains(t, table, "youtube")
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestLoadTable_Malformed(t *testing.T) {
	_, err := LoadTable(writeTable(t, "gmail: [not, a, profile, map]"))
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	table, err := LoadTable(writeTable(t, testTableYAML))
	require.NoError(t, err)

	scopeList, err := table.Resolve("gmail", "send")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/gmail.send"}, scopeList)
}

func TestResolve_PreservesOrder(t *testing.T) {
	table, err := LoadTable(writeTable(t, testTableYAML))
	require.NoError(t, err)

	scopeList, err := table.Resolve("youtube", "write")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.googleapis.com/auth/youtube.force-ssl",
		"https://www.googleapis.com/auth/youtube.upload",
	}, scopeList)
}

func TestResolve_UnknownAPI(t *testing.T) {
	table := Table{"gmail": {"send": {"scope-a"}}}

	_, err := table.Resolve("drive", "read")
	require.Error(t, err)

	var unknown *UnknownProfileError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "drive", unknown.API)
	assert.Equal(t, "read", unknown.Profile)
	assert.Contains(t, err.Error(), "drive")
	assert.Contains(t, err.Error(), "read")
}

func TestResolve_UnknownProfile(t *testing.T) {
	table := Table{"gmail": {"send": {"scope-a"}}}

	_, err := table.Resolve("gmail", "admin")
	var unknown *UnknownProfileError
	require.ErrorAs(t, err, &unknown)
}

func TestResolve_EmptyProfileIsError(t *testing.T) {
	// An empty scope list would silently grant nothing; treat it like an
	// undefined profile.
	table := Table{"gmail": {"send": {}}}

	_, err := table.Resolve("gmail", "send")
	var unknown *UnknownProfileError
	require.ErrorAs(t, err, &unknown)
}

func TestResolve_ReturnsCopy(t *testing.T) {
	table := Table{"gmail": {"send": {"scope-a", "scope-b"}}}

	first, err := table.Resolve("gmail", "send")
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := table.Resolve("gmail", "send")
	require.NoError(t, err)
	assert.Equal(t, []string{"scope-a", "scope-b"}, second)
}

func TestResolve_NilTable(t *testing.T) {
	var table Table
	_, err := table.Resolve("gmail", "send")
	var unknown *UnknownProfileError
	require.True(t, errors.As(err, &unknown))
}
