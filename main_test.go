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
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestExportThenRestore(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "books.txt"), []byte("Dune,Herbert,Chilton,1965,1,Borrowed,Asha\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "accounts.txt"), []byte("Admin,1,Librarian,\nAsha,2,Student,Dune:100,0\n"), 0o644))
	snapshot := filepath.Join(t.TempDir(), "snapshot.json")

	_, err := execute(t, "export", "--data-dir", src, "-o", snapshot)
	require.NoError(t, err)

	dst := t.TempDir()
	out, err := execute(t, "restore", snapshot, "--data-dir", dst)
	require.NoError(t, err)
	assert.Equal(t, "Restored 1 books and 2 accounts.\n", out)

	for _, name := range []string{"books.txt", "accounts.txt"} {
		want, err := os.ReadFile(filepath.Join(src, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestRestoreRejectsMissingSnapshot(t *testing.T) {
	_, err := execute(t, "restore", filepath.Join(t.TempDir(), "missing.json"), "--data-dir", t.TempDir())
	require.ErrorContains(t, err, "open snapshot")
}
