package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "email.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello from a file\n\n"), 0o600))

	got, err := readText("inline text", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline text", got)

	got, err = readText("", path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello from a file", got)

	got, err = readText("", "-", strings.NewReader("from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestReadText_Errors(t *testing.T) {
	_, err := readText("", "", nil)
	assert.EqualError(t, err, "no input provided")

	_, err = readText("text", "file.txt", nil)
	assert.Error(t, err)

	_, err = readText("", filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.ErrorContains(t, err, "failed to read input")
}
