package encryption

import (
	"errors"
	"fmt"
	"io"
)

// streamingWriter wraps an io.Writer with an incremental cipher transform.
type streamingWriter struct {
	w      io.Writer
	stream *cbcStream
	closed bool
}

// newStreamingWriter creates a writer that transforms data through stream before writing it to w.
func newStreamingWriter(w io.Writer, stream *cbcStream) *streamingWriter {
	return &streamingWriter{w: w, stream: stream}
}

// Write implements io.Writer, emitting every block the cipher has completed.
func (sw *streamingWriter) Write(data []byte) (int, error) {
	if sw.closed {
		return 0, errors.New("write to closed cipher stream")
	}

	if out := sw.stream.Update(data); len(out) > 0 {
		if _, err := sw.w.Write(out); err != nil {
			return 0, ioError("writing output", err)
		}
	}

	return len(data), nil
}

// Close implements io.Closer, writing the cipher's final block.
// A padding or alignment failure surfaces here.
func (sw *streamingWriter) Close() error {
	if sw.closed {
		return nil
	}

	sw.closed = true

	final, err := sw.stream.Final()
	if err != nil {
		return fmt.Errorf("finalizing cipher: %w", err)
	}

	if len(final) > 0 {
		if _, err := sw.w.Write(final); err != nil {
			return ioError("writing final block", err)
		}
	}

	return nil
}

// pump streams src through sw in bufferSize chunks and finalizes the cipher.
func pump(sw *streamingWriter, src io.Reader) error {
	bufPtr := getBuffer()
	defer putBuffer(bufPtr)

	buf := *bufPtr

	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := sw.Write(buf[:n]); werr != nil {
				return werr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return ioError("reading input", err)
		}
	}

	return sw.Close()
}
