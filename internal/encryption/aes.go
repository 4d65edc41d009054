package encryption

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/filecrypt/internal/fileutil"
)

// aesEncryptor is the AES-256-CBC Encryptor.
type aesEncryptor struct {
	session *cipherSession
	opts    options

	// exportKey writes the sidecar key in random-key mode.
	exportKey func(file *EncryptedFile) (string, error)
}

func newAESEncryptor(session *cipherSession, o options) *aesEncryptor {
	e := &aesEncryptor{session: session, opts: o}
	e.exportKey = e.writeKey

	return e
}

func (e *aesEncryptor) log(file *EncryptedFile) logrus.FieldLogger {
	return e.opts.logger.WithFields(logrus.Fields{
		"file": file.Path(),
		"mode": e.session.mode(),
	})
}

// Encrypt writes <name>-*.enc, and <name>-*.key in random-key mode, to the temp dir.
func (e *aesEncryptor) Encrypt(file *EncryptedFile) (*TempResultPair, error) {
	if e.session.decrypt {
		return nil, fmt.Errorf("%w: decryptor cannot encrypt", ErrInvalidMode)
	}

	if file.Algorithm() != "" {
		if err := supported(file.Algorithm()); err != nil {
			return nil, err
		}
	}

	if err := e.session.claim(); err != nil {
		return nil, err
	}
	defer e.session.wipe()

	log := e.log(file)
	log.Debug("encrypting")

	file.SetAlgorithm(AES)
	file.SetIV(e.session.ivBlob())

	ciphertext, err := e.writeContainer(file)
	if err != nil {
		return nil, err
	}

	pair := &TempResultPair{ciphertext: ciphertext, log: e.opts.logger}

	if !e.session.passwordMode {
		key, err := e.exportKey(file)
		if err != nil {
			pair.Delete()

			return nil, err
		}

		pair.key = key
	}

	log.WithField("output", ciphertext).Debug("encrypted")

	return pair, nil
}

// Decrypt writes <name>-*<ext> to the temp dir.
func (e *aesEncryptor) Decrypt(file *EncryptedFile) (string, error) {
	if !e.session.decrypt {
		return "", fmt.Errorf("%w: encryptor cannot decrypt", ErrInvalidMode)
	}

	if err := supported(file.Algorithm()); err != nil {
		return "", err
	}

	if err := e.session.claim(); err != nil {
		return "", err
	}
	defer e.session.wipe()

	log := e.log(file)
	log.WithField("offset", file.ByteOffset()).Debug("decrypting")

	out, err := e.writeOutput(file.Name(), file.Extension(), file.Path(), func(w *bufio.Writer, src *os.File) error {
		if err := skipFull(src, file.ByteOffset()); err != nil {
			return err
		}

		return pump(newStreamingWriter(w, e.session.stream()), src)
	})
	if err != nil {
		return "", err
	}

	log.WithField("output", out).Debug("decrypted")

	return out, nil
}

func (e *aesEncryptor) writeContainer(file *EncryptedFile) (string, error) {
	header, err := Header{
		FileName:  file.Name(),
		FileType:  file.Extension(),
		Algorithm: AES,
		IV:        file.IV(),
	}.MarshalText()
	if err != nil {
		return "", err
	}

	return e.writeOutput(file.Name(), ".enc", file.Path(), func(w *bufio.Writer, src *os.File) error {
		if _, err := w.Write(header); err != nil {
			return ioError("writing header", err)
		}

		return pump(newStreamingWriter(w, e.session.stream()), src)
	})
}

func (e *aesEncryptor) writeKey(file *EncryptedFile) (string, error) {
	encoded := fileutil.EncodeBase64(e.session.key)

	return e.writeOutput(file.Name(), ".key", "", func(w *bufio.Writer, _ *os.File) error {
		if _, err := w.WriteString(encoded); err != nil {
			return ioError("writing key", err)
		}

		return nil
	})
}

// writeOutput creates a locked temp file and fills it through body.
// When source is set it is opened under a shared lock and handed to body.
// The temp file is removed on any failure.
func (e *aesEncryptor) writeOutput(
	name, suffix, source string,
	body func(w *bufio.Writer, src *os.File) error,
) (_ string, err error) {
	out, err := fileutil.CreateTemp(e.opts.tempDir, name, suffix)
	if err != nil {
		return "", ioError("creating output", err)
	}

	tmp := out.Name()

	defer func() {
		if err == nil {
			return
		}

		out.Close() //nolint:errcheck,gosec

		if rerr := fileutil.RemoveIfExists(tmp); rerr != nil {
			e.opts.logger.WithError(rerr).WithField("temp", tmp).Warn("removing partial output")
		} else {
			e.opts.logger.WithField("temp", tmp).Debug("removed partial output")
		}
	}()

	outLock, err := fileutil.LockExclusive(out)
	if err != nil {
		return "", lockError(err)
	}
	defer outLock.Release() //nolint:errcheck

	var src *os.File

	if source != "" {
		src, err = os.Open(filepath.Clean(source))
		if err != nil {
			return "", ioError("opening input", err)
		}
		defer src.Close()

		srcLock, err := fileutil.LockShared(src)
		if err != nil {
			return "", lockError(err)
		}
		defer srcLock.Release() //nolint:errcheck
	}

	writer := bufio.NewWriterSize(out, bufferSize)

	if err = body(writer, src); err != nil {
		return "", err
	}

	if err = writer.Flush(); err != nil {
		return "", ioError("flushing output", err)
	}

	if err = outLock.Release(); err != nil {
		return "", ioError("unlocking output", err)
	}

	if err = out.Close(); err != nil {
		return "", ioError("closing output", err)
	}

	return tmp, nil
}
