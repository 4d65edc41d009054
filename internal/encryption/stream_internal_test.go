package encryption

import (
	"bytes"
	"crypto/aes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlock(t *testing.T) []byte {
	t.Helper()

	return bytes.Repeat([]byte{0x42}, KeySize)
}

func TestPKCS7(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 1, 15, 16, 17, 32} {
		padded := pkcs7Pad(bytes.Repeat([]byte{'x'}, size), aes.BlockSize)

		assert.Zero(t, len(padded)%aes.BlockSize)
		assert.Greater(t, len(padded), size)

		unpadded, err := pkcs7Unpad(padded, aes.BlockSize)
		require.NoError(t, err)
		assert.Len(t, unpadded, size)
	}
}

func TestPKCS7Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrInvalidBlockSize},
		{"unaligned", make([]byte, 15), ErrInvalidBlockSize},
		{"zero pad byte", make([]byte, 16), ErrInvalidPadding},
		{"pad larger than block", append(make([]byte, 15), 17), ErrInvalidPadding},
		{"inconsistent pad", append(append(make([]byte, 13), 1, 2), 3), ErrInvalidPadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := pkcs7Unpad(tt.data, aes.BlockSize)
			require.ErrorIs(t, err, tt.err)
			require.ErrorIs(t, err, ErrCrypto)
		})
	}
}

func TestCBCStreamChunking(t *testing.T) {
	t.Parallel()

	block, err := aes.NewCipher(testBlock(t))
	require.NoError(t, err)

	iv := bytes.Repeat([]byte{0x01}, IVSize)
	plain := bytes.Repeat([]byte("0123456789"), 1000)

	var whole bytes.Buffer

	enc := newCBCEncrypter(block, iv)
	whole.Write(enc.Update(plain))

	final, err := enc.Final()
	require.NoError(t, err)
	whole.Write(final)

	// Feeding odd sized chunks must produce the same ciphertext.
	var chunked bytes.Buffer

	enc = newCBCEncrypter(block, iv)
	for i := 0; i < len(plain); i += 7 {
		chunked.Write(enc.Update(plain[i:min(i+7, len(plain))]))
	}

	final, err = enc.Final()
	require.NoError(t, err)
	chunked.Write(final)

	require.Equal(t, whole.Bytes(), chunked.Bytes())

	var decrypted bytes.Buffer

	dec := newCBCDecrypter(block, iv)
	for i := 0; i < whole.Len(); i += 5 {
		decrypted.Write(dec.Update(whole.Bytes()[i:min(i+5, whole.Len())]))
	}

	final, err = dec.Final()
	require.NoError(t, err)
	decrypted.Write(final)

	assert.Equal(t, plain, decrypted.Bytes())
}

func TestCBCStreamTruncated(t *testing.T) {
	t.Parallel()

	block, err := aes.NewCipher(testBlock(t))
	require.NoError(t, err)

	dec := newCBCDecrypter(block, make([]byte, IVSize))
	dec.Update(make([]byte, 20))

	_, err = dec.Final()
	require.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestSkipFullShortReads(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("h", 5000) + "payload"
	reader := iotest.OneByteReader(strings.NewReader(input))

	require.NoError(t, skipFull(reader, 5000))

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(rest))
}

func TestSkipFullUnexpectedEOF(t *testing.T) {
	t.Parallel()

	err := skipFull(iotest.HalfReader(strings.NewReader("short")), 10)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSplitIVBlob(t *testing.T) {
	t.Parallel()

	iv := bytes.Repeat([]byte{1}, IVSize)
	salt := bytes.Repeat([]byte{2}, SaltSize)

	gotIV, gotSalt, err := splitIVBlob(joinIVBlob(iv, salt), true)
	require.NoError(t, err)
	assert.Equal(t, iv, gotIV)
	assert.Equal(t, salt, gotSalt)

	_, _, err = splitIVBlob(joinIVBlob(iv, nil), true)
	require.ErrorIs(t, err, ErrMalformedHeader)

	_, _, err = splitIVBlob("!!not base64!!", false)
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDerivePasswordKey(t *testing.T) {
	t.Parallel()

	salt := bytes.Repeat([]byte{7}, SaltSize)

	first, err := derivePasswordKey("hunter2", salt)
	require.NoError(t, err)
	assert.Len(t, first, KeySize)

	second, err := derivePasswordKey("hunter2", salt)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = derivePasswordKey("  \t", salt)
	require.ErrorIs(t, err, ErrEmptyPassword)
	require.ErrorIs(t, err, ErrCrypto)
}

func TestSessionSpentAndWiped(t *testing.T) {
	t.Parallel()

	session, err := newRandomKeySession(newOptions(nil))
	require.NoError(t, err)

	key := session.key

	require.NoError(t, session.claim())
	session.wipe()

	assert.Equal(t, make([]byte, KeySize), key)
	require.ErrorIs(t, session.claim(), ErrSessionSpent)
}
