package encryption

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader is returned when a file is not a readable container.
	ErrMalformedHeader = errors.New("unsupported file: malformed container header")
	// ErrNameMismatch is returned when a supplied name or extension does not match the real file name.
	ErrNameMismatch = errors.New("file name mismatch")
	// ErrLockContention is returned when an advisory lock is held by another process.
	ErrLockContention = errors.New("file is in use by another process")
	// ErrIO is returned for read, write, create and delete failures.
	ErrIO = errors.New("i/o failure")
	// ErrCrypto is returned for cipher setup and finalization failures, including a wrong secret.
	ErrCrypto = errors.New("cryptographic failure")
	// ErrUnsupportedAlgorithm is returned for algorithm tags without an implementation.
	ErrUnsupportedAlgorithm = errors.New("encryption algorithm not implemented")
	// ErrInvalidMode is returned when a secret kind does not fit the requested direction.
	ErrInvalidMode = errors.New("invalid secret mode")
	// ErrSessionSpent is returned when an Encryptor is used for a second file.
	ErrSessionSpent = errors.New("encryptor already used")
)

var (
	// ErrEmptyPassword is returned for empty or blank passwords.
	ErrEmptyPassword = fmt.Errorf("%w: empty password", ErrCrypto)
	// ErrInvalidPadding is returned when PKCS7 padding is malformed.
	ErrInvalidPadding = fmt.Errorf("%w: invalid padding", ErrCrypto)
	// ErrInvalidBlockSize is returned when encrypted data length is not aligned with AES block size.
	ErrInvalidBlockSize = fmt.Errorf("%w: ciphertext is not a multiple of block size", ErrCrypto)
)

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func headerError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedHeader, fmt.Sprintf(format, args...))
}
