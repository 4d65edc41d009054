package encryption

import (
	"crypto/aes"
	"crypto/cipher"
)

// cbcStream is an incremental AES-CBC transform with PKCS7 padding.
// Update consumes any amount of input and returns the whole blocks that are ready;
// Final flushes the remainder, padding on encryption and unpadding on decryption.
type cbcStream struct {
	mode    cipher.BlockMode
	decrypt bool
	pending []byte
	out     []byte
}

func newCBCEncrypter(block cipher.Block, iv []byte) *cbcStream {
	return &cbcStream{mode: cipher.NewCBCEncrypter(block, iv)}
}

func newCBCDecrypter(block cipher.Block, iv []byte) *cbcStream {
	return &cbcStream{mode: cipher.NewCBCDecrypter(block, iv), decrypt: true}
}

// Update returns the output for every complete block buffered so far.
// The returned slice is only valid until the next call.
func (s *cbcStream) Update(data []byte) []byte {
	s.pending = append(s.pending, data...)

	ready := len(s.pending) / aes.BlockSize * aes.BlockSize

	// Decryption keeps the last full block back: it may carry the padding.
	if s.decrypt && ready == len(s.pending) {
		ready -= aes.BlockSize
	}

	if ready <= 0 {
		return nil
	}

	if cap(s.out) < ready {
		s.out = make([]byte, ready)
	}

	out := s.out[:ready]
	s.mode.CryptBlocks(out, s.pending[:ready])

	s.pending = append(s.pending[:0], s.pending[ready:]...)

	return out
}

// Final returns the last output of the stream.
func (s *cbcStream) Final() ([]byte, error) {
	defer func() { s.pending = s.pending[:0] }()

	if !s.decrypt {
		padded := pkcs7Pad(s.pending, aes.BlockSize)
		out := make([]byte, len(padded))
		s.mode.CryptBlocks(out, padded)

		return out, nil
	}

	if len(s.pending) != aes.BlockSize {
		return nil, ErrInvalidBlockSize
	}

	last := make([]byte, aes.BlockSize)
	s.mode.CryptBlocks(last, s.pending)

	return pkcs7Unpad(last, aes.BlockSize)
}
