package encryption

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/filecrypt/internal/fileutil"
)

// EncryptedFile describes a file going through encryption or decryption.
// It owns nothing but a path.
type EncryptedFile struct {
	path       string
	name       string
	ext        string
	algorithm  Algorithm
	byteOffset int64
	iv         string
}

// NewEncryptedFile describes path for encryption.
// name and ext must equal what fileutil.SplitName derives from the base name of path.
func NewEncryptedFile(path, name, ext string, alg Algorithm) (*EncryptedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ioError("stat input", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %q is a directory", ErrIO, path)
	}

	wantName, wantExt := fileutil.SplitName(filepath.Base(path))

	if name != wantName {
		return nil, fmt.Errorf("%w: name %q does not match %q", ErrNameMismatch, name, wantName)
	}

	if ext != wantExt {
		return nil, fmt.Errorf("%w: extension %q does not match %q", ErrNameMismatch, ext, wantExt)
	}

	return &EncryptedFile{
		path:      path,
		name:      name,
		ext:       ext,
		algorithm: alg,
	}, nil
}

// DescribeForEncryption describes path for AES encryption using its own name and extension.
func DescribeForEncryption(path string) (*EncryptedFile, error) {
	name, ext := fileutil.SplitName(filepath.Base(path))

	return NewEncryptedFile(path, name, ext, AES)
}

// DescribeForDecryption reads the container header at path.
func DescribeForDecryption(path string) (*EncryptedFile, error) {
	header, err := ReadHeader(path)
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", path, err)
	}

	return &EncryptedFile{
		path:       path,
		name:       header.FileName,
		ext:        header.FileType,
		algorithm:  header.Algorithm,
		byteOffset: header.Offset,
		iv:         header.IV,
	}, nil
}

// Path is the file on disk.
func (f *EncryptedFile) Path() string { return f.path }

// Name is the display name without extension.
func (f *EncryptedFile) Name() string { return f.name }

// Extension includes the leading dot, or is empty.
func (f *EncryptedFile) Extension() string { return f.ext }

// Algorithm is the chosen or recorded algorithm tag.
func (f *EncryptedFile) Algorithm() Algorithm { return f.algorithm }

// ByteOffset is where the ciphertext starts. Zero unless a header was parsed.
func (f *EncryptedFile) ByteOffset() int64 { return f.byteOffset }

// IV is base64(IV || salt) as read from the header.
func (f *EncryptedFile) IV() string { return f.iv }

// SetAlgorithm changes the algorithm tag before encryption.
func (f *EncryptedFile) SetAlgorithm(alg Algorithm) { f.algorithm = alg }

// SetIV replaces the header IV blob.
func (f *EncryptedFile) SetIV(iv string) { f.iv = iv }

// OriginalName is the name the plaintext had before encryption.
func (f *EncryptedFile) OriginalName() string { return f.name + f.ext }

func (f *EncryptedFile) String() string {
	return fmt.Sprintf("EncryptedFile{path=%q name=%q ext=%q algorithm=%s offset=%d}",
		f.path, f.name, f.ext, f.algorithm, f.byteOffset)
}
