package h11

import "github.com/valyala/h11go/internal/headerlimits"

// readerPhase is the incremental per-message parser's program counter.
type readerPhase uint8

const (
	phaseHead readerPhase = iota // parsing a request-line/status-line + headers
	phaseBody
	phaseIdle // message fully parsed; waiting for StartNextCycle
)

// msgReader incrementally parses the messages sent by one party —
// Requests if sourceRole is RoleClient, Informational/Final Responses if
// sourceRole is RoleServer — directly against the Connection's receive
// buffer. It produces exactly one Event per call to next, matching
// spec.md's "an event is returned only when its entire content is in the
// buffer" ordering guarantee (body Data excepted, which streams).
//
// Grounded on fasthttp's headerScanner (headerscanner.go), generalized
// from "the whole head is already buffered" into "resumable across
// ReceiveData calls": each call re-scans from the start of the unread
// buffer for the terminating blank line, bounded by limits.MaxHeaderBytes so the
// rescan cost stays proportional to the configured header-size limit.
type msgReader struct {
	sourceRole Role
	limits     headerlimits.Limits

	phase   readerPhase
	framing BodyFraming
	chunked *chunkedReader

	fixedRemaining int64
	closeDelimited bool
}

func newMsgReader(sourceRole Role, limits headerlimits.Limits) *msgReader {
	return &msgReader{sourceRole: sourceRole, limits: limits, phase: phaseHead}
}

func (r *msgReader) resetForNextMessage() {
	r.phase = phaseHead
	r.framing = BodyFraming{}
	r.chunked = nil
	r.fixedRemaining = 0
	r.closeDelimited = false
}

// next attempts to parse one Event out of data, the Connection's unread
// receive-buffer bytes. requestMethod is the method of the in-flight
// exchange; it is only consulted while parsing a response (sourceRole ==
// RoleServer), since response framing depends on it. eof reports whether
// the peer has signalled ReceiveData(nil).
//
// consumed bytes should be advanced on the caller's buffer regardless of
// whether an event was produced: in a chunked body, a chunk-size line or
// chunk terminator can be consumed just before the data runs out, in which
// case next reports needMore with a non-zero consumed and no event.
func (r *msgReader) next(data []byte, requestMethod []byte, eof bool) (ev Event, consumed int, needMore bool, err error) {
	switch r.phase {
	case phaseHead:
		return r.stepHead(data, requestMethod)
	case phaseBody:
		return r.stepBody(data, eof)
	default: // phaseIdle
		return Event{}, 0, true, nil
	}
}

func (r *msgReader) stepHead(data []byte, requestMethod []byte) (ev Event, consumed int, needMore bool, err error) {
	startLine, headerLines, n, ok := scanHeadLines(data)
	if !ok {
		if r.limits.ExceedsHeadBudget(len(data)) {
			return Event{}, 0, false, newRemoteProtocolError(431, "request/status line and headers exceed %d bytes", r.limits.MaxHeaderBytes)
		}
		return Event{}, 0, true, nil
	}

	headers, herr := parseHeaderLines(headerLines)
	if herr != nil {
		return Event{}, 0, false, herr
	}

	if r.sourceRole == RoleClient {
		method, target, version, perr := parseRequestLine(startLine)
		if perr != nil {
			return Event{}, 0, false, perr
		}
		framing, ferr := requestBodyFraming(headers)
		if ferr != nil {
			return Event{}, 0, false, ferr
		}
		r.framing = framing
		r.enterBodyPhase()
		return Event{Type: EventRequest, Method: method, Target: target, HTTPVersion: version, Headers: headers}, n, false, nil
	}

	version, status, reason, perr := parseStatusLine(startLine)
	if perr != nil {
		return Event{}, 0, false, perr
	}
	if mustHaveNoFramingHeaders(requestMethod, status) &&
		(headers.Has(string(strContentLength)) || headers.Has(string(strTransferEncoding))) {
		return Event{}, 0, false, newRemoteProtocolError(400,
			"response with status %d must not carry Content-Length/Transfer-Encoding", status)
	}
	if status < 200 {
		// Informational: no body, another head follows on the same wire.
		return Event{Type: EventInformationalResponse, StatusCode: status, HTTPVersion: version, Reason: reason, Headers: headers}, n, false, nil
	}
	framing, ferr := responseBodyFraming(requestMethod, status, headers)
	if ferr != nil {
		return Event{}, 0, false, ferr
	}
	r.framing = framing
	r.enterBodyPhase()
	return Event{Type: EventResponse, StatusCode: status, HTTPVersion: version, Reason: reason, Headers: headers}, n, false, nil
}

func (r *msgReader) enterBodyPhase() {
	r.phase = phaseBody
	switch r.framing.Mode {
	case FramingChunked:
		r.chunked = newChunkedReader()
	case FramingFixed:
		r.fixedRemaining = r.framing.Length
	case FramingCloseDelimited:
		r.closeDelimited = true
	case FramingNoBody:
	}
}

func (r *msgReader) stepBody(data []byte, eof bool) (ev Event, consumed int, needMore bool, err error) {
	switch r.framing.Mode {
	case FramingNoBody:
		r.phase = phaseIdle
		return NewEndOfMessage(nil), 0, false, nil

	case FramingFixed:
		if r.fixedRemaining == 0 {
			r.phase = phaseIdle
			return NewEndOfMessage(nil), 0, false, nil
		}
		if len(data) == 0 {
			return Event{}, 0, true, nil
		}
		n := int64(len(data))
		if n > r.fixedRemaining {
			n = r.fixedRemaining
		}
		payload := make([]byte, n)
		copy(payload, data[:n])
		r.fixedRemaining -= n
		return NewData(payload), int(n), false, nil

	case FramingChunked:
		total := 0
		for {
			evp, n, need, cerr := r.chunked.step(data[total:], r.limits)
			if cerr != nil {
				return Event{}, 0, false, cerr
			}
			total += n
			if need {
				return Event{}, total, true, nil
			}
			if evp != nil {
				if evp.Type == EventEndOfMessage {
					r.phase = phaseIdle
				}
				return *evp, total, false, nil
			}
			// Internal transition (e.g. a chunk-size line was consumed
			// but produced no event yet); loop with the advanced slice.
		}

	case FramingCloseDelimited:
		if len(data) > 0 {
			payload := make([]byte, len(data))
			copy(payload, data)
			return NewData(payload), len(data), false, nil
		}
		if eof {
			r.phase = phaseIdle
			return NewEndOfMessage(nil), 0, false, nil
		}
		return Event{}, 0, true, nil

	default:
		return Event{}, 0, true, nil
	}
}
