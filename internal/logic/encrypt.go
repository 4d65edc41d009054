package logic

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/filecrypt/internal/encryption"
	"github.com/idelchi/filecrypt/internal/fileutil"
)

// usesPassword reports whether a password was given or prompted for.
// An empty prompted password stays a password so that it is rejected.
func (r *runner) usesPassword() bool {
	return r.cfg.Ask || r.cfg.Password != ""
}

// secretForEncryption uses the password when given, a fresh random key otherwise.
func (r *runner) secretForEncryption() encryption.Secret {
	if r.usesPassword() {
		return encryption.Password(r.cfg.Password)
	}

	return encryption.RandomKey()
}

// containerPath is <out>/<name>.enc, falling back to the full base name for dot files.
func (r *runner) containerPath(file *encryption.EncryptedFile) string {
	name := file.Name()
	if name == "" {
		name = file.OriginalName()
	}

	return filepath.Join(r.outputDir(file.Path()), name+containerExt)
}

// encryptFile encrypts path into the output directory.
// The temporary pair is always deleted, whether relocation succeeded or not.
func (r *runner) encryptFile(path string) result {
	info, err := os.Stat(path)
	if err != nil {
		return result{err: fmt.Errorf("stat input: %w", err)}
	}

	file, err := encryption.DescribeForEncryption(path)
	if err != nil {
		return result{err: err}
	}

	alg, err := encryption.ParseAlgorithm(r.cfg.Algorithm)
	if err != nil {
		return result{err: fmt.Errorf("%w: %w", encryption.ErrUnsupportedAlgorithm, err)}
	}

	dest := r.containerPath(file)
	secret := r.secretForEncryption()

	targets := []string{dest}
	if secret.Kind() == encryption.RandomKeyKind {
		targets = append(targets, encryption.SidecarPath(dest))
	}

	if err := r.reserve(path, targets...); err != nil {
		return result{err: err}
	}

	enc, err := encryption.NewEncryptor(alg, secret, r.options()...)
	if err != nil {
		return result{err: fmt.Errorf("creating encryptor: %w", err)}
	}

	pair, err := enc.Encrypt(file)
	if err != nil {
		return result{err: fmt.Errorf("encrypting file: %w", err)}
	}
	defer pair.Delete()

	moved, err := pair.Relocate(dest)
	if err != nil {
		return result{err: fmt.Errorf("saving results: %w", err)}
	}

	size, err := fileutil.FinalizeOutput(moved.Ciphertext, r.cfg.PreserveTimestamps, info.ModTime())
	if err != nil {
		return result{err: fmt.Errorf("finalizing output: %w", err)}
	}

	r.log.WithField("key", moved.Key).Debugf("encrypted %q", path)

	return result{output: moved.Ciphertext, outputSize: size}
}
