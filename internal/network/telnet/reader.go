package telnet

import (
	"bytes"
	"io"

	"telwire/pkg/telnet"
)

// EventHandler receives everything the session produces that is not plain
// data, then gets a chance to write out queued replies.
type EventHandler interface {
	Receive(p []byte) []telnet.Event
	HandleEvent(ev telnet.Event)
	Flush() error
}

// Reader turns a raw telnet stream into plain user data. Control sequences
// are handed to the handler as they are parsed.
type Reader struct {
	r       io.Reader
	chunk   []byte
	dataBuf bytes.Buffer // Buffer for processed user data waiting to be read
	handler EventHandler
}

func NewReader(r io.Reader, handler EventHandler) *Reader {
	return &Reader{
		r:       r,
		chunk:   make([]byte, 4096),
		handler: handler,
	}
}

// Read blocks until plain data is available or the underlying reader fails.
func (r *Reader) Read(p []byte) (int, error) {
	for r.dataBuf.Len() == 0 {
		n, err := r.r.Read(r.chunk)
		if n > 0 {
			if ferr := r.process(r.chunk[:n]); ferr != nil {
				return 0, ferr
			}
		}
		if err != nil {
			if r.dataBuf.Len() > 0 {
				break
			}
			return 0, err
		}
	}
	return r.dataBuf.Read(p)
}

func (r *Reader) process(chunk []byte) error {
	for _, ev := range r.handler.Receive(chunk) {
		if data, ok := ev.(telnet.DataEvent); ok {
			r.dataBuf.Write(data.Text())
			continue
		}
		r.handler.HandleEvent(ev)
	}
	return r.handler.Flush()
}
