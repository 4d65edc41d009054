package fileutil

import (
	"encoding/base64"
	"strings"
)

// SplitName splits a base file name at its last dot.
// The extension keeps its leading dot; a name without a dot has an empty extension.
func SplitName(base string) (name, ext string) {
	idx := strings.LastIndex(base, ".")
	if idx == -1 {
		return base, ""
	}

	return base[:idx], base[idx:]
}

// Name returns the part of base before its last dot.
func Name(base string) string {
	name, _ := SplitName(base)

	return name
}

// Extension returns the part of base from its last dot on, or "".
func Extension(base string) string {
	_, ext := SplitName(base)

	return ext
}

// EncodeBase64 encodes data with standard padded base64.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard padded base64.
func DecodeBase64(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data) //nolint:wrapcheck
}
