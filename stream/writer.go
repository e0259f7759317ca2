package stream

import (
	"io"
	"net"
	"sync"

	"github.com/indigo-web/framed"
)

// Writer frames payloads and writes them out. It's safe for concurrent use, messages are
// never interleaved.
type Writer struct {
	mu          sync.Mutex
	w           io.Writer
	contentType string
	header      []byte
}

// NewWriter returns a writer including contentType into every message, unless it's empty.
// The content type is expected to be checked by framed.CheckContentType beforehand.
func NewWriter(w io.Writer, contentType string) *Writer {
	return &Writer{
		w:           w,
		contentType: contentType,
		header:      make([]byte, 0, 128),
	}
}

func (w *Writer) WriteMessage(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.header = framed.AppendHeader(w.header[:0], len(payload), w.contentType)
	// net.Buffers turns into a single writev(2) call for connections
	bufs := net.Buffers{w.header, payload}
	_, err := bufs.WriteTo(w.w)

	return err
}
