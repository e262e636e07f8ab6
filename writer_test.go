package h11

import (
	"strings"
	"testing"
)

func TestWriteRequestBasic(t *testing.T) {
	c := NewConnection(RoleClient)
	out, err := c.Send(NewRequest("GET", "/", "1.1", HeadersFromPairs("Host", "example.com")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestWriteRequestDefaultsToHTTP11(t *testing.T) {
	c := NewConnection(RoleClient)
	out, err := c.Send(NewRequest("GET", "/", "", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "GET / HTTP/1.1\r\n") {
		t.Fatalf("got %q", out)
	}
}

func TestWriteRequestHTTP10ForcesConnectionCloseHeader(t *testing.T) {
	c := NewConnection(RoleClient)
	out, err := c.Send(NewRequest("GET", "/", "1.0", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "Connection: close\r\n") {
		t.Fatalf("expected an injected Connection: close header, got %q", out)
	}
	if c.keepAlive {
		t.Fatalf("keepAlive should be false after an HTTP/1.0 request")
	}
}

func TestWriteRequestInvalidMethodIsRejected(t *testing.T) {
	c := NewConnection(RoleClient)
	if _, err := c.Send(NewRequest("G T", "/", "1.1", nil)); err == nil {
		t.Fatalf("expected an invalid method token to be rejected")
	}
	if c.OurState() != StateError {
		t.Fatalf("expected the connection to move to ERROR, got %s", c.OurState())
	}
}

func TestWriteResponseHeadDefaultsAndStatusLine(t *testing.T) {
	c := NewConnection(RoleServer)
	c.inFlight = exchangeInfo{method: []byte("GET"), haveMethod: true}
	c.ourState = StateSendResponse

	out, err := c.Send(NewResponse(200, "1.1", HeadersFromPairs("Content-Length", "0")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "HTTP/1.1 200 \r\n") {
		t.Fatalf("got %q", out)
	}
}

func TestWriteResponseRejectsContentLengthOn204(t *testing.T) {
	c := NewConnection(RoleServer)
	c.inFlight = exchangeInfo{method: []byte("GET"), haveMethod: true}
	c.ourState = StateSendResponse

	if _, err := c.Send(NewResponse(204, "1.1", HeadersFromPairs("Content-Length", "5"))); err == nil {
		t.Fatalf("expected Content-Length on a 204 response to be rejected")
	}
}

func TestWriteDataChunkedFraming(t *testing.T) {
	c := NewConnection(RoleClient)
	if _, err := c.Send(NewRequest("POST", "/", "1.1", HeadersFromPairs("Transfer-Encoding", "chunked"))); err != nil {
		t.Fatalf("request: %v", err)
	}
	out, err := c.Send(NewData([]byte("hello")))
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if string(out) != "5\r\nhello\r\n" {
		t.Fatalf("got %q", out)
	}
	out, err = c.Send(NewEndOfMessage(nil))
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if string(out) != "0\r\n\r\n" {
		t.Fatalf("got %q", out)
	}
}

func TestWriteDataFixedLengthOverrunIsRejected(t *testing.T) {
	c := NewConnection(RoleClient)
	if _, err := c.Send(NewRequest("POST", "/", "1.1", HeadersFromPairs("Content-Length", "2"))); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := c.Send(NewData([]byte("too long"))); err == nil {
		t.Fatalf("expected writing past the declared Content-Length to be rejected")
	}
}

func TestWriteEndOfMessageFixedLengthShortIsRejected(t *testing.T) {
	c := NewConnection(RoleClient)
	if _, err := c.Send(NewRequest("POST", "/", "1.1", HeadersFromPairs("Content-Length", "5"))); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := c.Send(NewData([]byte("ab"))); err != nil {
		t.Fatalf("data: %v", err)
	}
	if _, err := c.Send(NewEndOfMessage(nil)); err == nil {
		t.Fatalf("expected EndOfMessage with unwritten Content-Length bytes to be rejected")
	}
}

func TestWriteEndOfMessageTrailersOnlyLegalChunked(t *testing.T) {
	c := NewConnection(RoleClient)
	if _, err := c.Send(NewRequest("POST", "/", "1.1", HeadersFromPairs("Content-Length", "0"))); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := c.Send(NewEndOfMessage(HeadersFromPairs("X-Trailer", "x"))); err == nil {
		t.Fatalf("expected trailers on a fixed-length body to be rejected")
	}
}

func TestValidateOutgoingHeaderNamesRejectsControlBytesInValue(t *testing.T) {
	h := NewHeaders()
	h.Add([]byte("X-Bad"), []byte("line1\rline2"))
	if err := validateOutgoingHeaderNames(h); err == nil {
		t.Fatalf("expected an embedded CR in a header value to be rejected")
	}
}

func TestValidateOutgoingHeaderNamesRejectsNonTokenName(t *testing.T) {
	h := NewHeaders()
	h.Add([]byte("X Bad"), []byte("value"))
	if err := validateOutgoingHeaderNames(h); err == nil {
		t.Fatalf("expected a space in a header name to be rejected")
	}
}
