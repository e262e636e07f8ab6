package h11

import (
	"bytes"
	"math"

	"github.com/valyala/h11go/internal/headerlimits"
)

// chunkedState is the incremental chunked-transfer-coding reader's program
// counter. Each step consumes whatever is available and either produces
// one Event, asks for more data, or advances silently (e.g. after parsing
// a chunk-size line, which carries no event of its own).
type chunkedState uint8

const (
	chunkStateSize chunkedState = iota
	chunkStateData
	chunkStateDataCRLF
	chunkStateTrailer
	chunkStateDone
)

// chunkedReader decodes the chunked transfer-coding (RFC 7230 §4.1): one
// or more "chunk-size [chunk-ext] CRLF chunk-data CRLF" sequences, a
// terminating zero-size chunk, optional trailer fields, and a final CRLF.
// It is resumable: a single logical message may be decoded across many
// calls to step as bytes trickle in via ReceiveData.
type chunkedReader struct {
	state     chunkedState
	remaining int64 // bytes left in the chunk currently being read
}

func newChunkedReader() *chunkedReader {
	return &chunkedReader{state: chunkStateSize}
}

// step attempts to make one unit of progress against data (the buffer's
// currently unread bytes). consumed is always a prefix of data. When ev is
// nil and need is false and err is nil, the caller should re-invoke step
// with the remaining bytes advanced past consumed — this happens after
// purely-internal transitions like parsing a chunk-size line.
func (c *chunkedReader) step(data []byte, limits headerlimits.Limits) (ev *Event, consumed int, need bool, err error) {
	switch c.state {
	case chunkStateSize:
		line, n, found := findLine(data)
		if !found {
			if limits.ExceedsHeadBudget(len(data)) {
				return nil, 0, false, newRemoteProtocolError(400, "chunk size line exceeds %d bytes", limits.MaxHeaderBytes)
			}
			return nil, 0, true, nil
		}
		size, perr := parseChunkSizeLine(line)
		if perr != nil {
			return nil, 0, false, perr
		}
		if size == 0 {
			c.state = chunkStateTrailer
			return nil, n, false, nil
		}
		c.remaining = size
		c.state = chunkStateData
		return nil, n, false, nil

	case chunkStateData:
		if len(data) == 0 {
			return nil, 0, true, nil
		}
		n := int64(len(data))
		if n > c.remaining {
			n = c.remaining
		}
		payload := make([]byte, n)
		copy(payload, data[:n])
		c.remaining -= n
		if c.remaining == 0 {
			c.state = chunkStateDataCRLF
		}
		e := NewData(payload)
		return &e, int(n), false, nil

	case chunkStateDataCRLF:
		line, n, found := findLine(data)
		if !found {
			if limits.ExceedsHeadBudget(len(data)) {
				return nil, 0, false, newRemoteProtocolError(400, "missing CRLF after chunk data")
			}
			return nil, 0, true, nil
		}
		if len(line) != 0 {
			return nil, 0, false, newRemoteProtocolError(400, "malformed chunk terminator %q", line)
		}
		c.state = chunkStateSize
		return nil, n, false, nil

	case chunkStateTrailer:
		lines, n, ok := scanTrailerLines(data)
		if !ok {
			if limits.ExceedsHeadBudget(len(data)) {
				return nil, 0, false, newRemoteProtocolError(431, "chunked trailer block exceeds %d bytes", limits.MaxHeaderBytes)
			}
			return nil, 0, true, nil
		}
		trailers, perr := parseHeaderLines(lines)
		if perr != nil {
			return nil, 0, false, perr
		}
		if perr := validateTrailers(trailers); perr != nil {
			return nil, 0, false, perr
		}
		c.state = chunkStateDone
		e := NewEndOfMessage(trailers)
		return &e, n, false, nil

	default:
		return nil, 0, true, nil
	}
}

// scanTrailerLines is scanHeadLines without a leading start line: the
// chunked trailer block is just zero or more header lines terminated by a
// blank line.
func scanTrailerLines(data []byte) (lines [][]byte, consumed int, ok bool) {
	pos := 0
	for {
		line, n, found := findLine(data[pos:])
		if !found {
			return nil, 0, false
		}
		pos += n
		if len(line) == 0 {
			return lines, pos, true
		}
		lines = append(lines, line)
	}
}

// validateTrailers rejects trailer fields that would let a peer smuggle
// framing-relevant headers in after the fact, supplementing spec.md's
// grammar with the same class of defense fasthttp applies via
// ErrBadTrailer.
func validateTrailers(trailers *Headers) error {
	for _, f := range trailers.Fields() {
		if equalFoldASCII(f.Name, strTransferEncoding) ||
			equalFoldASCII(f.Name, strContentLength) ||
			equalFoldASCII(f.Name, strHost) {
			return newRemoteProtocolError(400, "forbidden trailer field %q", f.Name)
		}
	}
	return nil
}

func parseChunkSizeLine(line []byte) (int64, error) {
	line = trimOWS(line)
	if semi := bytes.IndexByte(line, ';'); semi >= 0 {
		line = trimOWS(line[:semi])
	}
	v, err := parseHexUint64(line)
	if err != nil {
		return 0, newRemoteProtocolError(400, "invalid chunk size: %s", err)
	}
	if v > uint64(math.MaxInt64) {
		return 0, newRemoteProtocolError(400, "chunk size too large")
	}
	return int64(v), nil
}
