package h11

import (
	"testing"

	"github.com/valyala/h11go/internal/headerlimits"
)

func TestMsgReaderParsesRequestThenFixedBody(t *testing.T) {
	r := newMsgReader(RoleClient, headerlimits.New(0))
	data := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")

	ev, n, need, err := r.next(data, nil, false)
	if err != nil || need {
		t.Fatalf("head: ev=%+v n=%d need=%v err=%v", ev, n, need, err)
	}
	if ev.Type != EventRequest || string(ev.Method) != "POST" || string(ev.Target) != "/x" {
		t.Fatalf("unexpected request event: %+v", ev)
	}
	data = data[n:]

	ev, n, need, err = r.next(data, nil, false)
	if err != nil || need || ev.Type != EventData || string(ev.Payload) != "hello" {
		t.Fatalf("body: ev=%+v n=%d need=%v err=%v", ev, n, need, err)
	}
	data = data[n:]

	ev, _, need, err = r.next(data, nil, false)
	if err != nil || need || ev.Type != EventEndOfMessage {
		t.Fatalf("end: ev=%+v need=%v err=%v", ev, need, err)
	}
}

func TestMsgReaderNeedsMoreDataOnPartialHead(t *testing.T) {
	r := newMsgReader(RoleClient, headerlimits.New(0))
	_, _, need, err := r.next([]byte("GET / HTTP/1.1\r\nHost: x\r\n"), nil, false)
	if err != nil || !need {
		t.Fatalf("need=%v err=%v", need, err)
	}
}

func TestMsgReaderHeadTooLarge(t *testing.T) {
	r := newMsgReader(RoleClient, headerlimits.New(8))
	_, _, _, err := r.next([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n"), nil, false)
	if err == nil {
		t.Fatalf("expected an oversize head block to be rejected")
	}
	if rpe, ok := err.(*RemoteProtocolError); !ok || rpe.SuggestedStatus != 431 {
		t.Fatalf("got %#v, want RemoteProtocolError{SuggestedStatus: 431}", err)
	}
}

func TestMsgReaderInformationalResponseThenFinalResponse(t *testing.T) {
	r := newMsgReader(RoleServer, headerlimits.New(0))
	data := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")

	ev, n, need, err := r.next(data, []byte("GET"), false)
	if err != nil || need || ev.Type != EventInformationalResponse || ev.StatusCode != 100 {
		t.Fatalf("first: ev=%+v need=%v err=%v", ev, need, err)
	}
	data = data[n:]

	ev, n, need, err = r.next(data, []byte("GET"), false)
	if err != nil || need || ev.Type != EventResponse || ev.StatusCode != 200 {
		t.Fatalf("second: ev=%+v need=%v err=%v", ev, need, err)
	}
	data = data[n:]

	ev, _, need, err = r.next(data, []byte("GET"), false)
	if err != nil || need || ev.Type != EventEndOfMessage {
		t.Fatalf("third: ev=%+v need=%v err=%v", ev, need, err)
	}
}

func TestMsgReaderCloseDelimitedBodyEndsOnEOF(t *testing.T) {
	r := newMsgReader(RoleServer, headerlimits.New(0))
	data := []byte("HTTP/1.1 200 OK\r\n\r\nsome bytes")

	ev, n, _, err := r.next(data, []byte("GET"), false)
	if err != nil || ev.Type != EventResponse {
		t.Fatalf("head: ev=%+v err=%v", ev, err)
	}
	data = data[n:]

	ev, n, need, err := r.next(data, []byte("GET"), false)
	if err != nil || need || ev.Type != EventData || string(ev.Payload) != "some bytes" {
		t.Fatalf("body: ev=%+v need=%v err=%v", ev, need, err)
	}
	data = data[n:]

	ev, _, need, err = r.next(data, []byte("GET"), true)
	if err != nil || need || ev.Type != EventEndOfMessage {
		t.Fatalf("eof: ev=%+v need=%v err=%v", ev, need, err)
	}
}

func TestMsgReaderHeadRejectsFramingHeadersOn204(t *testing.T) {
	r := newMsgReader(RoleServer, headerlimits.New(0))
	data := []byte("HTTP/1.1 204 No Content\r\nContent-Length: 5\r\n\r\n")
	if _, _, _, err := r.next(data, []byte("GET"), false); err == nil {
		t.Fatalf("expected Content-Length on a 204 to be rejected")
	}
}

func TestMsgReaderNoBodyGoesStraightToEndOfMessage(t *testing.T) {
	r := newMsgReader(RoleServer, headerlimits.New(0))
	data := []byte("HTTP/1.1 204 No Content\r\n\r\n")
	ev, n, _, err := r.next(data, []byte("GET"), false)
	if err != nil || ev.Type != EventResponse {
		t.Fatalf("head: ev=%+v err=%v", ev, err)
	}
	data = data[n:]

	evFinal, _, needFinal, errFinal := r.next(data, []byte("GET"), false)
	if errFinal != nil || needFinal || evFinal.Type != EventEndOfMessage {
		t.Fatalf("end: ev=%+v need=%v err=%v", evFinal, needFinal, errFinal)
	}
}
