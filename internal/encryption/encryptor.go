package encryption

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Encryptor turns one file into a container, or one container back into a file.
// Each Encryptor serves a single call.
type Encryptor interface {
	// Encrypt writes a container for file to a temporary location.
	Encrypt(file *EncryptedFile) (*TempResultPair, error)
	// Decrypt writes the plaintext of the container file to a temporary location and returns its path.
	Decrypt(file *EncryptedFile) (string, error)
}

// SecretKind selects how key material is obtained.
type SecretKind int

const (
	// RandomKeyKind generates a fresh key that is exported next to the container.
	RandomKeyKind SecretKind = iota + 1
	// PasswordKind derives the key from a password.
	PasswordKind
	// KeyKind uses an exported base64 key.
	KeyKind
)

func (k SecretKind) String() string {
	switch k {
	case RandomKeyKind:
		return "random-key"
	case PasswordKind:
		return "password"
	case KeyKind:
		return "key"
	default:
		return fmt.Sprintf("SecretKind(%d)", int(k))
	}
}

// Secret is the key source of an Encryptor. The zero value is invalid.
type Secret struct {
	kind  SecretKind
	value string
}

// RandomKey requests a freshly generated key.
func RandomKey() Secret { return Secret{kind: RandomKeyKind} }

// Password derives the key from password.
func Password(password string) Secret { return Secret{kind: PasswordKind, value: password} }

// Key uses a base64 encoded raw key, as written to a sidecar key file.
func Key(encoded string) Secret { return Secret{kind: KeyKind, value: encoded} }

// Kind reports the secret kind.
func (s Secret) Kind() SecretKind { return s.kind }

// String never prints the secret value.
func (s Secret) String() string {
	if s.value == "" {
		return s.kind.String()
	}

	return s.kind.String() + ":****"
}

// Option configures an Encryptor.
type Option func(*options)

type options struct {
	logger  logrus.FieldLogger
	tempDir string
	random  io.Reader
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTempDir sets where temporary outputs are created.
func WithTempDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.tempDir = dir
		}
	}
}

// WithRandom replaces the CSPRNG used for keys, IVs and salts.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:  logrus.StandardLogger(),
		tempDir: os.TempDir(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// NewEncryptor creates an Encryptor for one file.
// Only RandomKey and Password secrets can encrypt.
func NewEncryptor(alg Algorithm, secret Secret, opts ...Option) (Encryptor, error) {
	if err := supported(alg); err != nil {
		return nil, err
	}

	o := newOptions(opts)

	var (
		session *cipherSession
		err     error
	)

	switch secret.kind {
	case RandomKeyKind:
		session, err = newRandomKeySession(o)
	case PasswordKind:
		session, err = newPasswordSession(secret.value, o)
	default:
		return nil, fmt.Errorf("%w: %s secret cannot encrypt", ErrInvalidMode, secret.kind)
	}

	if err != nil {
		return nil, err
	}

	return newAESEncryptor(session, o), nil
}

// NewDecryptor creates an Encryptor that decrypts file, using the IV blob from its header.
// Only Password and Key secrets can decrypt.
func NewDecryptor(secret Secret, file *EncryptedFile, opts ...Option) (Encryptor, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file to decrypt", ErrInvalidMode)
	}

	if err := supported(file.Algorithm()); err != nil {
		return nil, err
	}

	o := newOptions(opts)

	var (
		session *cipherSession
		err     error
	)

	switch secret.kind {
	case PasswordKind:
		session, err = newPasswordDecryptSession(secret.value, file.IV())
	case KeyKind:
		session, err = newKeyDecryptSession(secret.value, file.IV())
	default:
		return nil, fmt.Errorf("%w: %s secret cannot decrypt", ErrInvalidMode, secret.kind)
	}

	if err != nil {
		return nil, err
	}

	return newAESEncryptor(session, o), nil
}

func supported(alg Algorithm) error {
	switch alg {
	case AES:
		return nil
	case Blowfish, XOR:
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrUnsupportedAlgorithm, alg)
	}
}
