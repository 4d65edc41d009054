package logic_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/encryption"
	"github.com/idelchi/filecrypt/internal/logic"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return logger
}

func baseConfig(t *testing.T, files ...string) *config.Config {
	t.Helper()

	return &config.Config{
		Algorithm: "AES",
		Parallel:  2,
		Quiet:     true,
		TempDir:   t.TempDir(),
		LogLevel:  "error",
		LogFormat: "text",
		Files:     files,
	}
}

func write(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRandomKeyEncryptDecrypt(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	plain := write(t, filepath.Join(src, "notes.txt"), "the quick brown fox")

	cfg := baseConfig(t, plain)
	cfg.OutputDir = out

	require.NoError(t, logic.Run(cfg, quietLogger()))

	container := filepath.Join(out, "notes.enc")
	assert.FileExists(t, container)
	assert.FileExists(t, filepath.Join(out, "notes.key"))

	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	restored := t.TempDir()

	cfg = baseConfig(t, container)
	cfg.Decrypt = true
	cfg.OutputDir = restored

	require.NoError(t, logic.Run(cfg, quietLogger()))

	data, err := os.ReadFile(filepath.Join(restored, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(data))
}

func TestPasswordEncryptDecryptInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "report.final.pdf"), "%PDF-1.7")

	cfg := baseConfig(t, plain)
	cfg.Password = "hunter2"
	cfg.Delete = true

	require.NoError(t, logic.Run(cfg, quietLogger()))

	container := filepath.Join(dir, "report.final.enc")
	assert.FileExists(t, container)
	assert.NoFileExists(t, filepath.Join(dir, "report.final.key"))
	assert.NoFileExists(t, plain)

	cfg = baseConfig(t, container)
	cfg.Decrypt = true
	cfg.Password = "hunter2"

	require.NoError(t, logic.Run(cfg, quietLogger()))

	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestDecryptRefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "notes.txt"), "original")

	cfg := baseConfig(t, plain)
	require.NoError(t, logic.Run(cfg, quietLogger()))

	write(t, plain, "changed")

	cfg = baseConfig(t, filepath.Join(dir, "notes.enc"))
	cfg.Decrypt = true

	err := logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, logic.ErrOutputExists)

	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))

	cfg.Force = true
	require.NoError(t, logic.Run(cfg, quietLogger()))

	data, err = os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestDecryptWithExplicitKeyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "data.bin"), "binary-ish")

	require.NoError(t, logic.Run(baseConfig(t, plain), quietLogger()))

	keyFile := filepath.Join(t.TempDir(), "moved.key")
	require.NoError(t, os.Rename(filepath.Join(dir, "data.key"), keyFile))

	out := t.TempDir()

	cfg := baseConfig(t, filepath.Join(dir, "data.enc"))
	cfg.Decrypt = true
	cfg.OutputDir = out

	err := logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, logic.ErrNoSecret)

	cfg.KeyFile = keyFile
	require.NoError(t, logic.Run(cfg, quietLogger()))

	data, err := os.ReadFile(filepath.Join(out, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, "binary-ish", string(data))
}

func TestDeleteRemovesSidecarAfterDecrypt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "notes.txt"), "content")

	cfg := baseConfig(t, plain)
	cfg.Delete = true
	require.NoError(t, logic.Run(cfg, quietLogger()))

	cfg = baseConfig(t, filepath.Join(dir, "notes.enc"))
	cfg.Decrypt = true
	cfg.Delete = true
	require.NoError(t, logic.Run(cfg, quietLogger()))

	assert.FileExists(t, plain)
	assert.NoFileExists(t, filepath.Join(dir, "notes.enc"))
	assert.NoFileExists(t, filepath.Join(dir, "notes.key"))
}

func TestDirectoryBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o700))

	write(t, filepath.Join(dir, "a.txt"), "a")
	write(t, filepath.Join(dir, "sub", "b.md"), "b")

	cfg := baseConfig(t, dir, filepath.Join(dir, "a.txt"))
	cfg.Password = "hunter2"
	cfg.Parallel = 4

	require.NoError(t, logic.Run(cfg, quietLogger()))

	assert.FileExists(t, filepath.Join(dir, "a.enc"))
	assert.FileExists(t, filepath.Join(dir, "sub", "b.enc"))

	// Walking again for decryption only picks up containers.
	out := t.TempDir()

	cfg = baseConfig(t, dir)
	cfg.Decrypt = true
	cfg.Password = "hunter2"
	cfg.OutputDir = out

	require.NoError(t, logic.Run(cfg, quietLogger()))

	assert.FileExists(t, filepath.Join(out, "a.txt"))
	assert.FileExists(t, filepath.Join(out, "b.md"))
}

func TestSameOutputFromTwoInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := write(t, filepath.Join(dir, "a.txt"), "text")
	second := write(t, filepath.Join(dir, "a.pdf"), "pdf")

	cfg := baseConfig(t, first, second)
	cfg.Password = "hunter2"

	err := logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, logic.ErrOutputClaimed)
	assert.FileExists(t, filepath.Join(dir, "a.enc"))
}

func TestPreserveTimestamps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "old.txt"), "old")

	past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(plain, past, past))

	cfg := baseConfig(t, plain)
	cfg.Password = "hunter2"
	cfg.PreserveTimestamps = true

	require.NoError(t, logic.Run(cfg, quietLogger()))

	info, err := os.Stat(filepath.Join(dir, "old.enc"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past))
}

func TestNotAContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "plain.enc"), "not a container\n")

	cfg := baseConfig(t, plain)
	cfg.Decrypt = true
	cfg.Password = "hunter2"

	err := logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, encryption.ErrMalformedHeader)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "photo.jpg"), "jpeg bytes")

	require.NoError(t, logic.Run(baseConfig(t, plain), quietLogger()))

	var buf bytes.Buffer

	require.NoError(t, logic.RunInspect(baseConfig(t, dir), &buf))

	var inspections []logic.Inspection
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &inspections))
	require.Len(t, inspections, 1)

	got := inspections[0]
	assert.Equal(t, "photo", got.FileName)
	assert.Equal(t, ".jpg", got.FileType)
	assert.Equal(t, "AES", got.EncryptionType)
	assert.Equal(t, filepath.Join(dir, "photo.key"), got.Sidecar)
	assert.Positive(t, got.Offset)

	write(t, filepath.Join(dir, "broken.enc"), "garbage")

	buf.Reset()
	require.Error(t, logic.RunInspect(baseConfig(t, dir), &buf))
	assert.Contains(t, buf.String(), "photo")
}

func TestAskWithEmptyPasswordIsRejected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := write(t, filepath.Join(dir, "notes.txt"), "secret notes")

	cfg := baseConfig(t, plain)
	cfg.Ask = true

	err := logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, encryption.ErrEmptyPassword)

	// No random key was generated in its place.
	assert.NoFileExists(t, filepath.Join(dir, "notes.enc"))
	assert.NoFileExists(t, filepath.Join(dir, "notes.key"))

	require.NoError(t, logic.Run(baseConfig(t, plain), quietLogger()))
	require.NoError(t, os.Remove(plain))

	cfg = baseConfig(t, filepath.Join(dir, "notes.enc"))
	cfg.Decrypt = true
	cfg.Ask = true

	// The sidecar key is not picked up silently either.
	err = logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, encryption.ErrEmptyPassword)
	assert.NoFileExists(t, plain)
}

func TestDecryptRefusesToOverwriteItself(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()

	// The header of out/x.enc names x.enc as the original file.
	plain := write(t, filepath.Join(src, "x.enc"), "looks like a container")

	cfg := baseConfig(t, plain)
	cfg.Password = "hunter2"
	cfg.OutputDir = out

	require.NoError(t, logic.Run(cfg, quietLogger()))

	container := filepath.Join(out, "x.enc")

	before, err := os.ReadFile(container)
	require.NoError(t, err)

	cfg = baseConfig(t, container)
	cfg.Decrypt = true
	cfg.Password = "hunter2"
	cfg.Force = true

	err = logic.Run(cfg, quietLogger())
	require.ErrorIs(t, err, logic.ErrOutputIsInput)

	after, err := os.ReadFile(container)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
