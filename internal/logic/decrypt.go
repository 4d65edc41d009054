package logic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/filecrypt/internal/encryption"
	"github.com/idelchi/filecrypt/internal/fileutil"
)

var (
	// ErrNoSecret is returned when a container has neither a password, a key file nor a sidecar key.
	ErrNoSecret = errors.New("no password, key file or sidecar key found")

	// ErrOutputIsInput is returned when a container would decrypt onto itself.
	ErrOutputIsInput = errors.New("output would overwrite the input container")
)

// secretForDecryption resolves the password, the key file, or the sidecar key next to container.
// The sidecar path is returned when it was used.
func (r *runner) secretForDecryption(container string) (encryption.Secret, string, error) {
	switch {
	case r.usesPassword():
		return encryption.Password(r.cfg.Password), "", nil
	case r.cfg.KeyFile != "":
		key, err := os.ReadFile(filepath.Clean(r.cfg.KeyFile))
		if err != nil {
			return encryption.Secret{}, "", fmt.Errorf("reading key file: %w", err)
		}

		return encryption.Key(string(key)), "", nil
	}

	sidecar := encryption.SidecarPath(container)

	key, err := os.ReadFile(sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		return encryption.Secret{}, "", fmt.Errorf("%w: looked for %q", ErrNoSecret, sidecar)
	}

	if err != nil {
		return encryption.Secret{}, "", fmt.Errorf("reading sidecar key: %w", err)
	}

	r.log.WithField("key", sidecar).Debug("using sidecar key")

	return encryption.Key(string(key)), sidecar, nil
}

// plaintextPath is <out>/<FileName><FileType>.
// The header name is reduced to a base name so a container cannot write outside the output directory.
func (r *runner) plaintextPath(file *encryption.EncryptedFile) string {
	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(file.OriginalName(), `\`, "/")))

	if name == "." || name == string(filepath.Separator) || name == "" {
		name = fileutil.Name(filepath.Base(file.Path()))
	}

	return filepath.Join(r.outputDir(file.Path()), name)
}

// isInput reports whether dest names the input file described by info.
func isInput(dest, input string, info fs.FileInfo) bool {
	if filepath.Clean(dest) == filepath.Clean(input) {
		return true
	}

	existing, err := os.Stat(dest)

	return err == nil && os.SameFile(info, existing)
}

// decryptFile decrypts the container at path into the output directory.
func (r *runner) decryptFile(path string) (res result) {
	info, err := os.Stat(path)
	if err != nil {
		return result{err: fmt.Errorf("stat input: %w", err)}
	}

	file, err := encryption.DescribeForDecryption(path)
	if err != nil {
		return result{err: err}
	}

	dest := r.plaintextPath(file)

	if isInput(dest, path, info) {
		return result{err: fmt.Errorf("%w: %q", ErrOutputIsInput, path)}
	}

	if err := r.reserve(path, dest); err != nil {
		return result{err: err}
	}

	secret, sidecar, err := r.secretForDecryption(path)
	if err != nil {
		return result{err: err}
	}

	dec, err := encryption.NewDecryptor(secret, file, r.options()...)
	if err != nil {
		return result{err: fmt.Errorf("creating decryptor: %w", err)}
	}

	out, err := dec.Decrypt(file)
	if err != nil {
		return result{err: fmt.Errorf("decrypting file: %w", err)}
	}

	defer func() {
		if err := fileutil.RemoveIfExists(out); err != nil {
			r.log.WithError(err).Warn("removing temporary plaintext")
		}
	}()

	if err := fileutil.CopyFile(out, dest); err != nil {
		return result{err: fmt.Errorf("saving result: %w", err)}
	}

	size, err := fileutil.FinalizeOutput(dest, r.cfg.PreserveTimestamps, info.ModTime())
	if err != nil {
		return result{err: fmt.Errorf("finalizing output: %w", err)}
	}

	res = result{output: dest, outputSize: size}
	if sidecar != "" {
		res.consumed = []string{sidecar}
	}

	return res
}
