package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"
)

// cipherSession is the key material and block cipher behind one Encryptor.
// It serves a single file; afterwards the key is wiped.
type cipherSession struct {
	key          []byte
	iv           []byte
	salt         []byte
	passwordMode bool
	decrypt      bool
	block        cipher.Block
	spent        bool
}

func newSession(key, iv, salt []byte, passwordMode, decrypt bool) (*cipherSession, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: creating cipher: %w", ErrCrypto, err)
	}

	return &cipherSession{
		key:          key,
		iv:           iv,
		salt:         salt,
		passwordMode: passwordMode,
		decrypt:      decrypt,
		block:        block,
	}, nil
}

// newRandomKeySession generates a fresh key, IV and salt for encryption.
// The salt only keeps the header shape uniform; it does not feed the key.
func newRandomKeySession(o options) (*cipherSession, error) {
	key, err := randomBytes(o.random, KeySize)
	if err != nil {
		return nil, err
	}

	iv, salt, err := freshIVAndSalt(o)
	if err != nil {
		return nil, err
	}

	return newSession(key, iv, salt, false, false)
}

// newPasswordSession derives an encryption key from password and a fresh salt.
func newPasswordSession(password string, o options) (*cipherSession, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	iv, salt, err := freshIVAndSalt(o)
	if err != nil {
		return nil, err
	}

	key, err := derivePasswordKey(password, salt)
	if err != nil {
		return nil, err
	}

	return newSession(key, iv, salt, true, false)
}

// newKeyDecryptSession uses an exported key and the IV from the header blob.
func newKeyDecryptSession(encodedKey, ivBlob string) (*cipherSession, error) {
	iv, _, err := splitIVBlob(ivBlob, false)
	if err != nil {
		return nil, err
	}

	key, err := decodeRawKey(encodedKey)
	if err != nil {
		return nil, err
	}

	return newSession(key, iv, nil, false, true)
}

// newPasswordDecryptSession re-derives the key from password and the salt in the header blob.
func newPasswordDecryptSession(password, ivBlob string) (*cipherSession, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	iv, salt, err := splitIVBlob(ivBlob, true)
	if err != nil {
		return nil, err
	}

	key, err := derivePasswordKey(password, salt)
	if err != nil {
		return nil, err
	}

	return newSession(key, iv, salt, true, true)
}

func freshIVAndSalt(o options) (iv, salt []byte, err error) {
	salt, err = randomBytes(o.random, SaltSize)
	if err != nil {
		return nil, nil, err
	}

	iv, err = randomBytes(o.random, IVSize)
	if err != nil {
		return nil, nil, err
	}

	return iv, salt, nil
}

func checkPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}

	return nil
}

// claim marks the session as used, failing if it already was.
func (s *cipherSession) claim() error {
	if s.spent {
		return ErrSessionSpent
	}

	s.spent = true

	return nil
}

// wipe drops the key material.
func (s *cipherSession) wipe() {
	clear(s.key)
	s.key = nil
	s.block = nil
}

func (s *cipherSession) ivBlob() string {
	salt := s.salt
	if salt == nil {
		salt = make([]byte, SaltSize)
	}

	return joinIVBlob(s.iv, salt)
}

func (s *cipherSession) stream() *cbcStream {
	if s.decrypt {
		return newCBCDecrypter(s.block, s.iv)
	}

	return newCBCEncrypter(s.block, s.iv)
}

func (s *cipherSession) mode() string {
	if s.passwordMode {
		return "password"
	}

	if s.decrypt {
		return "key"
	}

	return "random-key"
}
