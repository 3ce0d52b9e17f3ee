package telnet

import (
	"io"

	"telwire/pkg/telnet"
)

type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write escapes IAC bytes in p. The returned count refers to p, not to the
// bytes put on the wire.
func (w *Writer) Write(p []byte) (n int, err error) {
	if _, err := w.w.Write(telnet.EscapeIAC(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteEvent sends the raw bytes of an event unchanged.
func (w *Writer) WriteEvent(ev telnet.Event) (int, error) {
	return w.w.Write(ev.Bytes())
}
