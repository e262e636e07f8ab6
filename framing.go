package h11

// BodyFramingMode identifies how a message body is delimited on the wire.
type BodyFramingMode uint8

const (
	FramingNoBody BodyFramingMode = iota
	FramingFixed
	FramingChunked
	FramingCloseDelimited
)

func (m BodyFramingMode) String() string {
	switch m {
	case FramingNoBody:
		return "no-body"
	case FramingFixed:
		return "fixed"
	case FramingChunked:
		return "chunked"
	case FramingCloseDelimited:
		return "close-delimited"
	default:
		return "unknown"
	}
}

// BodyFraming is the computed framing for one message body.
type BodyFraming struct {
	Mode   BodyFramingMode
	Length int64 // meaningful only when Mode == FramingFixed
}

// transferEncodingIsChunked reports whether headers carries a
// Transfer-Encoding header whose last comma-separated token is "chunked"
// (case-insensitive), per spec.md §4.3 ("last value").
func transferEncodingIsChunked(h *Headers) (bool, error) {
	values := h.GetAll(string(strTransferEncoding))
	if len(values) == 0 {
		return false, nil
	}
	// Concatenate in wire order so that a last-token check spans repeated
	// header occurrences the same way it spans comma-joined values within
	// one occurrence.
	var last []byte
	for _, v := range values {
		tokens := splitTokenList(v)
		if len(tokens) > 0 {
			last = tokens[len(tokens)-1]
		}
	}
	return equalFoldASCII(last, strChunked), nil
}

// contentLength extracts a single, well-formed Content-Length value.
// ok is false when the header is absent; err is non-nil when it is
// present but malformed or duplicated with disagreeing values.
func contentLength(h *Headers) (n int64, ok bool, err error) {
	values := h.GetAll(string(strContentLength))
	if len(values) == 0 {
		return 0, false, nil
	}
	first, parseErr := parseDecimalUint64(trimOWS(values[0]))
	if parseErr != nil {
		return 0, false, newRemoteProtocolError(400, "invalid Content-Length: %s", parseErr)
	}
	for _, v := range values[1:] {
		n2, parseErr := parseDecimalUint64(trimOWS(v))
		if parseErr != nil || n2 != first {
			return 0, false, newRemoteProtocolError(400, "multiple disagreeing Content-Length headers")
		}
	}
	return int64(first), true, nil
}

// requestBodyFraming computes the request body framing per spec.md §4.3.
func requestBodyFraming(headers *Headers) (BodyFraming, error) {
	chunked, err := transferEncodingIsChunked(headers)
	if err != nil {
		return BodyFraming{}, err
	}
	if chunked {
		return BodyFraming{Mode: FramingChunked}, nil
	}
	n, ok, err := contentLength(headers)
	if err != nil {
		return BodyFraming{}, err
	}
	if ok {
		return BodyFraming{Mode: FramingFixed, Length: n}, nil
	}
	return BodyFraming{Mode: FramingNoBody}, nil
}

// responseBodyFraming computes the response body framing per spec.md §4.3.
func responseBodyFraming(requestMethod []byte, status int, headers *Headers) (BodyFraming, error) {
	isConnect := equalFoldASCII(requestMethod, strCONNECT)
	switch {
	case status >= 100 && status < 200:
		return BodyFraming{Mode: FramingNoBody}, nil
	case status == 204, status == 304:
		return BodyFraming{Mode: FramingNoBody}, nil
	case equalFoldASCII(requestMethod, strHEAD):
		return BodyFraming{Mode: FramingNoBody}, nil
	case isConnect && status >= 200 && status < 300:
		return BodyFraming{Mode: FramingNoBody}, nil
	}

	chunked, err := transferEncodingIsChunked(headers)
	if err != nil {
		return BodyFraming{}, err
	}
	if chunked {
		return BodyFraming{Mode: FramingChunked}, nil
	}
	n, ok, err := contentLength(headers)
	if err != nil {
		return BodyFraming{}, err
	}
	if ok {
		return BodyFraming{Mode: FramingFixed, Length: n}, nil
	}
	return BodyFraming{Mode: FramingCloseDelimited}, nil
}

// mustHaveNoFramingHeaders reports whether the given response status (in
// light of the request method) forbids Transfer-Encoding/Content-Length
// entirely, per spec.md §3's invariant on 1xx/204/CONNECT-2xx responses.
func mustHaveNoFramingHeaders(requestMethod []byte, status int) bool {
	if status >= 100 && status < 200 {
		return true
	}
	if status == 204 {
		return true
	}
	if equalFoldASCII(requestMethod, strCONNECT) && status >= 200 && status < 300 {
		return true
	}
	return false
}

// splitTokenList splits a comma-separated header value into trimmed,
// non-empty tokens.
func splitTokenList(v []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			tok := trimOWS(v[start:i])
			if len(tok) > 0 {
				out = append(out, tok)
			}
			start = i + 1
		}
	}
	return out
}

// trimOWS trims RFC 7230 optional whitespace (SP / HTAB) from both ends.
func trimOWS(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}

// connectionHasToken reports whether any Connection header (there may be
// several, and a single one may be comma-joined) contains token
// case-insensitively.
func connectionHasToken(h *Headers, token []byte) bool {
	for _, v := range h.GetAll(string(strConnection)) {
		for _, tok := range splitTokenList(v) {
			if equalFoldASCII(tok, token) {
				return true
			}
		}
	}
	return false
}

// expectsContinue reports whether the request carries a recognized
// Expect: 100-continue header. Unrecognized Expect tokens are ignored per
// spec.md §4.3.
func expectsContinue(h *Headers) bool {
	for _, v := range h.GetAll(string(strExpect)) {
		if equalFoldASCII(trimOWS(v), str100Continue) {
			return true
		}
	}
	return false
}
