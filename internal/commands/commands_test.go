package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/filecrypt/internal/commands"
	"github.com/idelchi/filecrypt/internal/config"
)

// Commands bind flags through the global viper instance, so these tests do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := commands.NewRootCommand(&config.Config{}, "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("cli round trip"), 0o600))

	_, err := execute(t, "encrypt", "-q", "--temp-dir", t.TempDir(), "--delete", plain)
	require.NoError(t, err)

	assert.NoFileExists(t, plain)
	assert.FileExists(t, filepath.Join(dir, "notes.enc"))
	assert.FileExists(t, filepath.Join(dir, "notes.key"))

	out, err := execute(t, "inspect", filepath.Join(dir, "notes.enc"))
	require.NoError(t, err)
	assert.Contains(t, out, "file-name: notes")

	_, err = execute(t, "decrypt", "-q", "--temp-dir", t.TempDir(), filepath.Join(dir, "notes.enc"))
	require.NoError(t, err)

	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "cli round trip", string(data))
}

func TestPasswordFromEnvironment(t *testing.T) {
	t.Setenv("FILECRYPT_PASSWORD", "hunter2")
	t.Setenv("FILECRYPT_OUTPUT_DIR", t.TempDir())

	dir := t.TempDir()
	plain := filepath.Join(dir, "env.txt")
	require.NoError(t, os.WriteFile(plain, []byte("from env"), 0o600))

	out, err := execute(t, "encrypt", "--show", plain)
	require.ErrorIs(t, err, cobraext.ErrExitGracefully)

	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "****", shown["password"])
	assert.NotEmpty(t, shown["output-dir"])

	// --show does not touch any file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExclusiveSecrets(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))

	_, err := execute(t, "decrypt", "-p", "hunter2", "-k", "x.key", plain)
	require.ErrorIs(t, err, config.ErrUsage)
	assert.Contains(t, err.Error(), "--password is mutually exclusive with --key-file")
}

func TestInvalidParallel(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))

	_, err := execute(t, "encrypt", "-j", "0", plain)
	require.ErrorIs(t, err, config.ErrUsage)
	assert.Contains(t, err.Error(), "--parallel must be 1 or greater")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(plain), "x.enc"))
}

func TestUnsupportedAlgorithmFlag(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))

	_, err := execute(t, "encrypt", "-q", "--algorithm", "xor", "--temp-dir", t.TempDir(), plain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestMissingArguments(t *testing.T) {
	_, err := execute(t, "encrypt")
	require.Error(t, err)
}
