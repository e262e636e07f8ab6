package h11

import (
	"bytes"

	"golang.org/x/net/http/httpguts"
)

// writeRequest serializes a Request event, grounded on fasthttp's
// RequestHeader.writeHeader (http.go): request-line first, then every
// header field in caller-supplied order, then the blank line.
func (c *Connection) writeRequest(evt Event) ([]byte, error) {
	if !isValidToken(evt.Method) {
		return nil, newLocalProtocolError("invalid method %q", evt.Method)
	}
	if !isValidTarget(evt.Target) {
		return nil, newLocalProtocolError("invalid request target %q", evt.Target)
	}
	version := evt.HTTPVersion
	if len(version) == 0 {
		version = strVersion11
	}
	if !bytes.Equal(version, strVersion10) && !bytes.Equal(version, strVersion11) {
		return nil, newLocalProtocolError("unsupported HTTP version %q", version)
	}
	headers := evt.Headers
	if headers == nil {
		headers = NewHeaders()
	}
	if err := validateOutgoingHeaderNames(headers); err != nil {
		return nil, err
	}

	framing, ferr := requestBodyFraming(headers)
	if ferr != nil {
		return nil, toLocalError(ferr)
	}

	c.inFlight = exchangeInfo{
		method:     append([]byte(nil), evt.Method...),
		haveMethod: true,
		isConnect:  equalFoldASCII(evt.Method, strCONNECT),
	}
	c.ourFraming = framing
	c.ourHTTPVersion = version
	c.updateKeepAlive(version, headers)

	if expectsContinue(headers) {
		c.clientIsWaitingFor100Continue = true
	}

	finalHeaders := appendConnectionCloseIfNeeded(headers, c.keepAlive)

	out := make([]byte, 0, 256)
	out = append(out, evt.Method...)
	out = append(out, ' ')
	out = append(out, evt.Target...)
	out = append(out, " HTTP/"...)
	out = append(out, version...)
	out = append(out, strCRLF...)
	out = appendHeaderBlock(out, finalHeaders)
	return out, nil
}

// writeResponseHead serializes an InformationalResponse or Response event.
func (c *Connection) writeResponseHead(evt Event) ([]byte, error) {
	isInformational := evt.Type == EventInformationalResponse
	if isInformational {
		if evt.StatusCode < 100 || evt.StatusCode >= 200 {
			return nil, newLocalProtocolError("InformationalResponse status %d is not 1xx", evt.StatusCode)
		}
	} else if evt.StatusCode < 200 || evt.StatusCode > 999 {
		return nil, newLocalProtocolError("Response status %d is out of range", evt.StatusCode)
	}
	if !isValidReason(evt.Reason) {
		return nil, newLocalProtocolError("invalid reason phrase %q", evt.Reason)
	}

	version := evt.HTTPVersion
	if len(version) == 0 {
		version = strVersion11
	}
	if !bytes.Equal(version, strVersion10) && !bytes.Equal(version, strVersion11) {
		return nil, newLocalProtocolError("unsupported HTTP version %q", version)
	}
	headers := evt.Headers
	if headers == nil {
		headers = NewHeaders()
	}
	if err := validateOutgoingHeaderNames(headers); err != nil {
		return nil, err
	}

	requestMethod := c.inFlight.method
	if mustHaveNoFramingHeaders(requestMethod, evt.StatusCode) &&
		(headers.Has(string(strContentLength)) || headers.Has(string(strTransferEncoding))) {
		return nil, newLocalProtocolError("status %d responses must not carry Content-Length/Transfer-Encoding", evt.StatusCode)
	}

	c.ourHTTPVersion = version
	c.updateKeepAlive(version, headers)

	finalHeaders := headers
	if isInformational {
		if evt.StatusCode == 100 {
			c.theyAreWaitingFor100Continue = false
		}
	} else {
		c.theyAreWaitingFor100Continue = false
		framing, ferr := responseBodyFraming(requestMethod, evt.StatusCode, headers)
		if ferr != nil {
			return nil, toLocalError(ferr)
		}
		c.ourFraming = framing
		finalHeaders = appendConnectionCloseIfNeeded(headers, c.keepAlive)
	}
	c.inFlight.lastStatus = evt.StatusCode

	out := make([]byte, 0, 256)
	out = append(out, "HTTP/"...)
	out = append(out, version...)
	out = append(out, ' ')
	out = appendStatusCode(out, evt.StatusCode)
	out = append(out, ' ')
	out = append(out, evt.Reason...)
	out = append(out, strCRLF...)
	out = appendHeaderBlock(out, finalHeaders)
	return out, nil
}

// writeData serializes a Data event according to the framing established
// when the head was written.
func (c *Connection) writeData(evt Event) ([]byte, error) {
	switch c.ourFraming.Mode {
	case FramingChunked:
		out := make([]byte, 0, len(evt.Payload)+16)
		out = appendHexUint(out, uint64(len(evt.Payload)))
		out = append(out, strCRLF...)
		out = append(out, evt.Payload...)
		out = append(out, strCRLF...)
		return out, nil

	case FramingFixed:
		if int64(len(evt.Payload)) > c.ourFraming.Length {
			return nil, newLocalProtocolError("Data payload exceeds the declared Content-Length")
		}
		c.ourFraming.Length -= int64(len(evt.Payload))
		return append([]byte(nil), evt.Payload...), nil

	case FramingCloseDelimited:
		return append([]byte(nil), evt.Payload...), nil

	default: // FramingNoBody
		if len(evt.Payload) > 0 {
			return nil, newLocalProtocolError("cannot send Data on a message declared to have no body")
		}
		return []byte{}, nil
	}
}

// writeEndOfMessage serializes an EndOfMessage event, including trailers
// for chunked framing.
func (c *Connection) writeEndOfMessage(evt Event) ([]byte, error) {
	hasTrailers := evt.Trailers != nil && evt.Trailers.Len() > 0

	switch c.ourFraming.Mode {
	case FramingChunked:
		out := make([]byte, 0, 16)
		out = append(out, '0')
		out = append(out, strCRLF...)
		if hasTrailers {
			if err := validateTrailers(evt.Trailers); err != nil {
				return nil, toLocalError(err)
			}
			out = appendHeaderBlock(out, evt.Trailers)
		} else {
			out = append(out, strCRLF...)
		}
		return out, nil

	case FramingFixed:
		if c.ourFraming.Length != 0 {
			return nil, newLocalProtocolError("EndOfMessage sent with %d bytes of declared Content-Length still unwritten", c.ourFraming.Length)
		}
		if hasTrailers {
			return nil, newLocalProtocolError("trailers are only legal with chunked framing")
		}
		return []byte{}, nil

	default:
		if hasTrailers {
			return nil, newLocalProtocolError("trailers are only legal with chunked framing")
		}
		return []byte{}, nil
	}
}

func appendStatusCode(dst []byte, code int) []byte {
	return append(dst, byte('0'+code/100), byte('0'+(code/10)%10), byte('0'+code%10))
}

func appendHeaderBlock(dst []byte, h *Headers) []byte {
	for _, f := range h.Fields() {
		dst = append(dst, f.Name...)
		dst = append(dst, ':', ' ')
		dst = append(dst, f.Value...)
		dst = append(dst, strCRLF...)
	}
	dst = append(dst, strCRLF...)
	return dst
}

// validateOutgoingHeaderNames rejects non-ASCII and otherwise malformed
// header field names/values before they are ever written to the wire,
// using the same httpguts grammar the incoming-header parser enforces.
func validateOutgoingHeaderNames(h *Headers) error {
	for _, f := range h.Fields() {
		if !isASCII(f.Name) || !httpguts.ValidHeaderFieldName(string(f.Name)) {
			return newLocalProtocolError("invalid header field name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(string(f.Value)) {
			return newLocalProtocolError("invalid header field value for %q", f.Name)
		}
	}
	return nil
}

// appendConnectionCloseIfNeeded appends Connection: close when keepAlive is
// false and the caller did not already supply a Connection header, without
// mutating the caller's Headers.
func appendConnectionCloseIfNeeded(h *Headers, keepAlive bool) *Headers {
	if keepAlive || h.Has(string(strConnection)) {
		return h
	}
	out := h.Clone()
	out.Add(strConnection, strClose)
	return out
}

// toLocalError re-tags a RemoteProtocolError surfaced while validating our
// own outgoing framing (e.g. disagreeing Content-Length values) as a
// LocalProtocolError: it is our caller's mistake, not the peer's.
func toLocalError(err error) error {
	if rpe, ok := err.(*RemoteProtocolError); ok {
		return newLocalProtocolError("%s", rpe.Reason)
	}
	return err
}
