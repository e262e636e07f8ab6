package h11test

import (
	"bytes"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/h11go"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// GzipBody compresses body and returns it alongside the Content-Encoding
// and Content-Length headers a real server would send for it. The engine
// itself never looks inside Content-Encoding (spec.md scopes content
// codings out entirely); this exists so h11test fixtures can exercise
// that the engine passes such headers through opaquely rather than
// silently dropping or rewriting them, the same "encode it like a real
// server would, then assert the bytes survive verbatim" role
// klauspost/compress plays when fasthttp's own tests build compressed
// response bodies.
func GzipBody(body []byte) (compressed []byte, headers *h11.Headers, err error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, nil, err
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}
	headers = h11.HeadersFromPairs(
		"Content-Encoding", "gzip",
		"Content-Length", strconv.Itoa(buf.Len()),
	)
	return buf.Bytes(), headers, nil
}

// UTF16LEHeaderValue re-encodes an ASCII header value as UTF-16LE bytes,
// producing a deliberately non-ASCII, non-UTF-8 byte string. spec.md §3
// requires header values to pass through as opaque bytes with no textual
// decoding; feeding one of these through a Connection and asserting the
// bytes come back unchanged is how h11test exercises that invariant
// against an implementation that might be tempted to assume UTF-8.
func UTF16LEHeaderValue(ascii string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	return transform.Bytes(enc.NewEncoder(), []byte(ascii))
}
