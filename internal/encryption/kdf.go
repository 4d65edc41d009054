package encryption

import (
	"crypto/aes"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
	"golang.org/x/crypto/pbkdf2"

	"github.com/idelchi/filecrypt/internal/fileutil"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the CBC initialization vector length in bytes.
	IVSize = aes.BlockSize
	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 16
	// PBKDF2Iterations is the PBKDF2-HMAC-SHA256 iteration count.
	PBKDF2Iterations = 50000
)

// derivePasswordKey stretches password and salt into an AES-256 key.
func derivePasswordKey(password string, salt []byte) ([]byte, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New), nil
}

// decodeRawKey decodes a base64 exported key, as found in a sidecar key file.
func decodeRawKey(encoded string) ([]byte, error) {
	key, err := fileutil.DecodeBase64(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding key: %w", ErrCrypto, err)
	}

	return key, nil
}

// joinIVBlob encodes IV || salt for the header.
func joinIVBlob(iv, salt []byte) string {
	blob := make([]byte, 0, len(iv)+len(salt))
	blob = append(blob, iv...)
	blob = append(blob, salt...)

	return fileutil.EncodeBase64(blob)
}

// splitIVBlob decodes a header IV blob. The salt is only required when withSalt is set.
func splitIVBlob(encoded string, withSalt bool) (iv, salt []byte, err error) {
	blob, err := fileutil.DecodeBase64(encoded)
	if err != nil {
		return nil, nil, headerError("IV is not valid base64: %v", err)
	}

	need := IVSize
	if withSalt {
		need += SaltSize
	}

	if len(blob) < need {
		return nil, nil, headerError("IV holds %d bytes, need at least %d", len(blob), need)
	}

	iv = append([]byte(nil), blob[:IVSize]...)

	if withSalt {
		salt = append([]byte(nil), blob[IVSize:IVSize+SaltSize]...)
	}

	return iv, salt, nil
}

// randomBytes draws n bytes from r, or from the tink CSPRNG when r is nil.
func randomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		return random.GetRandomBytes(uint32(n)), nil //nolint:gosec // n is a small constant
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading random bytes: %w", ErrCrypto, err)
	}

	return buf, nil
}
