package h11

import "github.com/valyala/bytebufferpool"

var recvBufferPool bytebufferpool.Pool

// recvBuffer is the append-only receive buffer described in spec.md §2:
// bytes accumulate at the tail, a read cursor advances as the reader
// consumes them, and the whole buffer is periodically compacted so it
// doesn't grow without bound on a long-lived keep-alive connection.
//
// Grounded on fasthttp's bytebuffer.go: the same pooled ByteBuffer type
// fasthttp uses for request/response bodies backs this buffer too, since
// both are "accumulate then drain" byte buffers reused across many
// Connections in a long-lived server.
type recvBuffer struct {
	buf    *bytebufferpool.ByteBuffer
	cursor int
	eof    bool // peer called ReceiveData(nil): signals their EOF
}

func newRecvBuffer() *recvBuffer {
	return &recvBuffer{buf: recvBufferPool.Get()}
}

// append adds data to the tail of the buffer. A zero-length data marks
// peer EOF instead of appending anything.
func (b *recvBuffer) append(data []byte) {
	if len(data) == 0 {
		b.eof = true
		return
	}
	if b.buf == nil {
		return
	}
	b.buf.Write(data)
	b.maybeCompact()
}

// unread returns the bytes not yet consumed. It returns nil once the
// buffer has been released back to the pool.
func (b *recvBuffer) unread() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.B[b.cursor:]
}

// advance marks n bytes (from the start of unread()) as consumed.
func (b *recvBuffer) advance(n int) {
	if b.buf == nil {
		return
	}
	b.cursor += n
	if b.cursor > len(b.buf.B) {
		panic("h11: advance past end of receive buffer")
	}
}

// maybeCompact shifts unread bytes to the front of the backing array once
// the consumed prefix dominates it, so a connection that streams many
// small messages doesn't grow its buffer forever.
func (b *recvBuffer) maybeCompact() {
	if b.cursor == 0 {
		return
	}
	if b.cursor < 4096 && b.cursor*2 < len(b.buf.B) {
		return
	}
	remaining := len(b.buf.B) - b.cursor
	copy(b.buf.B, b.buf.B[b.cursor:])
	b.buf.B = b.buf.B[:remaining]
	b.cursor = 0
}

// release returns the backing buffer to the pool. The recvBuffer must not
// be used afterwards.
func (b *recvBuffer) release() {
	recvBufferPool.Put(b.buf)
	b.buf = nil
}
