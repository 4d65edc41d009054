package encryption

import (
	"fmt"
	"strings"
)

// Algorithm is the tag recorded in a container's EncryptionType header line.
type Algorithm string

const (
	// AES is AES-256 in CBC mode with PKCS7 padding.
	AES Algorithm = "AES"
	// Blowfish is reserved and has no implementation.
	Blowfish Algorithm = "BLOWFISH"
	// XOR is reserved and has no implementation.
	XOR Algorithm = "XOR"
)

// Algorithms lists every known tag.
func Algorithms() []Algorithm {
	return []Algorithm{AES, Blowfish, XOR}
}

// ParseAlgorithm resolves a tag case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, alg := range Algorithms() {
		if strings.EqualFold(s, string(alg)) {
			return alg, nil
		}
	}

	return "", fmt.Errorf("unknown encryption type %q", s)
}

func (a Algorithm) String() string {
	return string(a)
}
