package encryption

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/filecrypt/internal/fileutil"
)

// TempResultPair holds the temporary outputs of one encryption.
// The key path is empty in password mode.
type TempResultPair struct {
	ciphertext string
	key        string
	log        logrus.FieldLogger
}

// Relocated lists the final locations written by Relocate.
type Relocated struct {
	// Ciphertext is the container path.
	Ciphertext string
	// Key is the exported key path, empty in password mode.
	Key string
}

// Ciphertext is the temporary container path.
func (p *TempResultPair) Ciphertext() string { return p.ciphertext }

// Key is the temporary key file path, if any.
func (p *TempResultPair) Key() (string, bool) { return p.key, p.key != "" }

// Delete removes both temporary files. It never fails and can be called repeatedly.
// It reports whether both paths are absent afterwards.
func (p *TempResultPair) Delete() bool {
	if p == nil {
		return true
	}

	ok := true

	for _, path := range []string{p.ciphertext, p.key} {
		if err := fileutil.RemoveIfExists(path); err != nil {
			p.logger().WithError(err).WithField("temp", path).Warn("removing temporary file")

			ok = false
		}
	}

	return ok
}

// Relocate copies the container to dest and, in random-key mode, the key to <dir(dest)>/<name(dest)>.key.
// The temporaries are left in place; call Delete afterwards.
func (p *TempResultPair) Relocate(dest string) (Relocated, error) {
	if p == nil || p.ciphertext == "" {
		return Relocated{}, errors.New("nothing to relocate")
	}

	if err := fileutil.CopyFile(p.ciphertext, dest); err != nil {
		return Relocated{}, ioError("relocating container", err)
	}

	moved := Relocated{Ciphertext: dest}

	if p.key == "" {
		return moved, nil
	}

	keyDest := SidecarPath(dest)

	if err := fileutil.CopyFile(p.key, keyDest); err != nil {
		if rerr := fileutil.RemoveIfExists(dest); rerr != nil {
			p.logger().WithError(rerr).WithField("path", dest).Warn("removing relocated container")
		}

		return Relocated{}, ioError("relocating key", err)
	}

	moved.Key = keyDest

	p.logger().WithFields(logrus.Fields{"container": dest, "key": keyDest}).Debug("relocated")

	return moved, nil
}

func (p *TempResultPair) logger() logrus.FieldLogger {
	if p.log == nil {
		return logrus.StandardLogger()
	}

	return p.log
}

// SidecarPath is the key file that belongs to the container at path.
func SidecarPath(path string) string {
	name := fileutil.Name(filepath.Base(path))

	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.key", name))
}
