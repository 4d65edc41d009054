package encryption

import (
	"sync"
)

// bufferSize is the fixed I/O chunk size of the streaming engine.
const bufferSize = 4096

// bufferPool provides a pool of reusable byte slices for file I/O operations.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, bufferSize)

		return &buf
	},
}

func getBuffer() *[]byte {
	buf, ok := bufferPool.Get().(*[]byte)
	if !ok {
		b := make([]byte, bufferSize)

		return &b
	}

	return buf
}

func putBuffer(buf *[]byte) {
	bufferPool.Put(buf)
}
