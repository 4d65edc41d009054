package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/idelchi/filecrypt/internal/fileutil"
)

const (
	headerBegin      = "BOF:"
	headerEnd        = "EOF"
	headerLineCount  = 6
	headerSeparator  = ":"
	maxHeaderLineLen = 4096

	keyFileName       = "FileName"
	keyFileType       = "FileType"
	keyEncryptionType = "EncryptionType"
	keyIV             = "IV"
)

// Header is the line-oriented text block at the start of every container.
type Header struct {
	FileName  string
	FileType  string
	Algorithm Algorithm
	// IV is base64(IV || salt).
	IV string
	// Offset is the position of the first ciphertext byte. Only set by decoding.
	Offset int64
}

// MarshalText encodes the fixed six-line header.
func (h Header) MarshalText() ([]byte, error) {
	fields := []struct{ key, value string }{
		{keyFileName, h.FileName},
		{keyFileType, h.FileType},
		{keyEncryptionType, h.Algorithm.String()},
		{keyIV, h.IV},
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s%d\n", headerBegin, headerLineCount)

	for _, field := range fields {
		if strings.ContainsAny(field.value, "\r\n") {
			return nil, headerError("%s value %q cannot contain a line break", field.key, field.value)
		}

		fmt.Fprintf(&buf, "%s%s%s\n", field.key, headerSeparator, field.value)
	}

	buf.WriteString(headerEnd + "\n")

	return buf.Bytes(), nil
}

// ReadHeader decodes the header of the container at path under a shared advisory lock.
func ReadHeader(path string) (Header, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	defer file.Close()

	lock, err := fileutil.LockShared(file)
	if err != nil {
		return Header{}, lockError(err)
	}
	defer lock.Release() //nolint:errcheck

	return ParseHeader(file)
}

// ParseHeader decodes a header from r.
// Offset is the number of bytes consumed through the EOF line, so both "\n" and "\r\n"
// terminated headers report the true ciphertext position.
//
//nolint:cyclop
func ParseHeader(r io.Reader) (Header, error) {
	reader := newLineReader(r)

	first, err := reader.next()
	if err != nil {
		return Header{}, err
	}

	if !strings.HasPrefix(first, headerBegin) {
		return Header{}, headerError("missing %q prefix", headerBegin)
	}

	count, err := strconv.Atoi(strings.TrimPrefix(first, headerBegin))
	if err != nil {
		return Header{}, headerError("invalid line count %q", strings.TrimPrefix(first, headerBegin))
	}

	if count < 2 { //nolint:mnd
		return Header{}, headerError("line count %d is too small", count)
	}

	properties := make(map[string]string)
	terminated := false

	for idx := 1; idx < count; idx++ {
		line, err := reader.next()
		if err != nil {
			return Header{}, err
		}

		if line == headerEnd {
			if idx < count-1 {
				return Header{}, headerError("expected %s at line %d but found it at line %d", headerEnd, count, idx+1)
			}

			terminated = true

			break
		}

		key, value, ok := strings.Cut(line, headerSeparator)
		if !ok {
			return Header{}, headerError("line %d is not a key:value record", idx+1)
		}

		properties[key] = value
	}

	if !terminated {
		return Header{}, headerError("no %s terminator at line %d", headerEnd, count)
	}

	for _, key := range []string{keyFileName, keyFileType, keyEncryptionType, keyIV} {
		if _, ok := properties[key]; !ok {
			return Header{}, headerError("missing %s property", key)
		}
	}

	alg, err := ParseAlgorithm(properties[keyEncryptionType])
	if err != nil {
		return Header{}, headerError("%v", err)
	}

	return Header{
		FileName:  properties[keyFileName],
		FileType:  properties[keyFileType],
		Algorithm: alg,
		IV:        properties[keyIV],
		Offset:    reader.offset,
	}, nil
}

// lineReader reads newline-terminated header lines and tracks the byte position.
type lineReader struct {
	br     *bufio.Reader
	offset int64
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, maxHeaderLineLen)}
}

func (lr *lineReader) next() (string, error) {
	line, err := lr.br.ReadSlice('\n')

	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return "", headerError("header line exceeds %d bytes", maxHeaderLineLen)
	case errors.Is(err, io.EOF) && len(line) == 0:
		return "", headerError("unexpected end of file inside header")
	case err != nil && !errors.Is(err, io.EOF):
		return "", fmt.Errorf("%w: reading header: %w", ErrMalformedHeader, err)
	}

	lr.offset += int64(len(line))

	// The final line of a file may lack its newline.
	text := strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
	if !utf8.ValidString(text) {
		return "", headerError("header line is not valid UTF-8")
	}

	return text, nil
}

// skipFull discards exactly n bytes from r.
// A single read may consume fewer bytes than requested, so progress is accumulated.
func skipFull(r io.Reader, n int64) error {
	const maxEmptyReads = 100

	bufPtr := getBuffer()
	defer putBuffer(bufPtr)

	buf := *bufPtr
	remaining := n
	empty := 0

	for remaining > 0 {
		chunk := buf
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		skipped, err := r.Read(chunk)
		remaining -= int64(skipped)

		if skipped == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				return ioError("skipping header", io.ErrNoProgress)
			}

			continue
		}

		empty = 0

		if errors.Is(err, io.EOF) {
			if remaining > 0 {
				return ioError("skipping header", io.ErrUnexpectedEOF)
			}

			break
		}

		if err != nil {
			return ioError("skipping header", err)
		}
	}

	return nil
}

func lockError(err error) error {
	if errors.Is(err, fileutil.ErrLocked) {
		return fmt.Errorf("%w: %w", ErrLockContention, err)
	}

	return ioError("locking file", err)
}
