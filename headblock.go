package h11

import (
	"bytes"

	"golang.org/x/net/http/httpguts"
)

// findLine locates the first line terminator in data and returns the line
// content without it plus the number of bytes consumed including the
// terminator. A bare LF is accepted leniently alongside CRLF, per
// spec.md's open question on line terminators (this module picks lenient
// acceptance on parse; the writer always emits CRLF).
func findLine(data []byte) (line []byte, consumed int, ok bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, 0, false
	}
	end := i
	if end > 0 && data[end-1] == '\r' {
		end--
	}
	return data[:end], i + 1, true
}

// scanHeadLines splits the start of data into a start line (request line or
// status line) followed by zero or more header lines, stopping at the
// first blank line. ok is false until that blank line has arrived.
//
// The scan restarts from byte 0 on every call; this is intentionally
// simple (matching h11's own "buffer the whole head before parsing"
// design) rather than resuming mid-scan, since the head block is bounded
// by maxHeaderBytes and so is cheap to rescan.
func scanHeadLines(data []byte) (startLine []byte, headerLines [][]byte, consumed int, ok bool) {
	pos := 0
	first := true
	for {
		line, n, found := findLine(data[pos:])
		if !found {
			return nil, nil, 0, false
		}
		pos += n
		if first {
			startLine = line
			first = false
			continue
		}
		if len(line) == 0 {
			return startLine, headerLines, pos, true
		}
		headerLines = append(headerLines, line)
	}
}

// parseHeaderLines turns already-split header lines into a Headers,
// rejecting obsolete line folding (spec.md §4.4) and invalid field
// names/values via golang.org/x/net/http/httpguts, the same RFC 7230
// grammar fasthttp's own header validation is checking by hand.
func parseHeaderLines(lines [][]byte) (*Headers, error) {
	h := NewHeaders()
	for _, line := range lines {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			return nil, newRemoteProtocolError(400, "obsolete line folding is not supported")
		}
		idx := bytes.IndexByte(line, ':')
		if idx <= 0 {
			return nil, newRemoteProtocolError(400, "malformed header line %q", line)
		}
		name := line[:idx]
		value := trimOWS(line[idx+1:])
		if !httpguts.ValidHeaderFieldName(string(name)) {
			return nil, newRemoteProtocolError(400, "invalid header field name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(string(value)) {
			return nil, newRemoteProtocolError(400, "invalid header field value for %q", name)
		}
		h.Add(name, value)
	}
	return h, nil
}

func parseHTTPVersion(v []byte) ([]byte, error) {
	switch {
	case bytes.Equal(v, strHTTP11):
		return []byte("1.1"), nil
	case bytes.Equal(v, strHTTP10):
		return []byte("1.0"), nil
	default:
		return nil, newRemoteProtocolError(505, "unsupported HTTP version %q", v)
	}
}

func isTokenChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

func isValidToken(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !isTokenChar(c) {
			return false
		}
	}
	return true
}

// isValidTarget rejects empty targets, SP, control bytes and DEL; every
// other byte, including non-ASCII, is passed through opaquely, per spec.md §3 ("no textual decoding
// beyond what RFC 7230 grammar requires").
func isValidTarget(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c <= 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}

func isValidReason(b []byte) bool {
	for _, c := range b {
		if c == ' ' || c == '\t' {
			continue
		}
		if c < 0x21 || c == 0x7f {
			return false
		}
	}
	return true
}

// parseRequestLine parses "METHOD SP request-target SP HTTP/1.x".
func parseRequestLine(line []byte) (method, target, version []byte, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return nil, nil, nil, newRemoteProtocolError(400, "no whitespace found in request line %q", line)
	}
	method = line[:sp1]
	if !isValidToken(method) {
		return nil, nil, nil, newRemoteProtocolError(400, "invalid method token %q", method)
	}
	rest := line[sp1+1:]
	if len(rest) > 0 && rest[0] == ' ' {
		return nil, nil, nil, newRemoteProtocolError(400, "extra whitespace in request line %q", line)
	}
	sp2 := bytes.LastIndexByte(rest, ' ')
	if sp2 < 0 {
		return nil, nil, nil, newRemoteProtocolError(400, "no whitespace before HTTP version in request line %q", line)
	}
	target = rest[:sp2]
	if !isValidTarget(target) {
		return nil, nil, nil, newRemoteProtocolError(400, "invalid request target %q", target)
	}
	if sp2+1 < len(rest) && rest[sp2+1] == ' ' {
		return nil, nil, nil, newRemoteProtocolError(400, "extra whitespace in request line %q", line)
	}
	version, err = parseHTTPVersion(rest[sp2+1:])
	if err != nil {
		return nil, nil, nil, err
	}
	return method, target, version, nil
}

// parseStatusLine parses "HTTP/1.x SP 3DIGIT SP reason".
func parseStatusLine(line []byte) (version []byte, status int, reason []byte, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return nil, 0, nil, newRemoteProtocolError(400, "no whitespace found in status line %q", line)
	}
	version, err = parseHTTPVersion(line[:sp1])
	if err != nil {
		return nil, 0, nil, err
	}
	rest := line[sp1+1:]
	if len(rest) < 3 {
		return nil, 0, nil, newRemoteProtocolError(400, "status code too short in %q", line)
	}
	code, perr := parseDecimalUint64(rest[:3])
	if perr != nil || code > 999 {
		return nil, 0, nil, newRemoteProtocolError(400, "invalid status code in %q", line)
	}
	status = int(code)
	switch {
	case len(rest) == 3:
		// empty reason is allowed
	case rest[3] != ' ':
		return nil, 0, nil, newRemoteProtocolError(400, "unexpected char after status code in %q", line)
	default:
		reason = rest[4:]
	}
	if !isValidReason(reason) {
		return nil, 0, nil, newRemoteProtocolError(400, "invalid reason phrase in %q", line)
	}
	return version, status, reason, nil
}
