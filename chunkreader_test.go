package h11

import (
	"testing"

	"github.com/valyala/h11go/internal/headerlimits"
)

func drainChunked(t *testing.T, data []byte) []Event {
	t.Helper()
	r := newChunkedReader()
	limits := headerlimits.New(0)
	var events []Event
	pos := 0
	for {
		ev, n, need, err := r.step(data[pos:], limits)
		if err != nil {
			t.Fatalf("step error: %v", err)
		}
		pos += n
		if need {
			t.Fatalf("ran out of data mid-decode at offset %d", pos)
		}
		if ev != nil {
			events = append(events, *ev)
			if ev.Type == EventEndOfMessage {
				return events
			}
		}
	}
}

func TestChunkedReaderSingleChunk(t *testing.T) {
	events := drainChunked(t, []byte("5\r\nhello\r\n0\r\n\r\n"))
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (Data, EndOfMessage)", len(events))
	}
	if events[0].Type != EventData || string(events[0].Payload) != "hello" {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].Type != EventEndOfMessage {
		t.Fatalf("second event = %+v", events[1])
	}
}

func TestChunkedReaderMultipleChunks(t *testing.T) {
	events := drainChunked(t, []byte("3\r\nfoo\r\n3\r\nbar\r\n0\r\n\r\n"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if string(events[0].Payload) != "foo" || string(events[1].Payload) != "bar" {
		t.Fatalf("payloads = %q, %q", events[0].Payload, events[1].Payload)
	}
}

func TestChunkedReaderChunkExtensionIsStripped(t *testing.T) {
	events := drainChunked(t, []byte("5;ext=1\r\nhello\r\n0\r\n\r\n"))
	if len(events) != 2 || string(events[0].Payload) != "hello" {
		t.Fatalf("got %+v", events)
	}
}

func TestChunkedReaderTrailers(t *testing.T) {
	events := drainChunked(t, []byte("0\r\nX-Trailer: yes\r\n\r\n"))
	if len(events) != 1 || events[0].Type != EventEndOfMessage {
		t.Fatalf("got %+v", events)
	}
	v, ok := events[0].Trailers.Get("x-trailer")
	if !ok || string(v) != "yes" {
		t.Fatalf("trailer X-Trailer = %q, %v", v, ok)
	}
}

func TestChunkedReaderRejectsForbiddenTrailer(t *testing.T) {
	r := newChunkedReader()
	limits := headerlimits.New(0)
	data := []byte("0\r\nContent-Length: 5\r\n\r\n")
	_, n, _, err := r.step(data, limits)
	if err != nil {
		t.Fatalf("size line: %v", err)
	}
	if _, _, _, err := r.step(data[n:], limits); err == nil {
		t.Fatalf("expected a forbidden trailer field to be rejected")
	}
}

func TestChunkedReaderNeedsMoreDataMidChunk(t *testing.T) {
	r := newChunkedReader()
	limits := headerlimits.New(0)

	_, n, need, err := r.step([]byte("5\r\n"), limits)
	if err != nil || need || n != 3 {
		t.Fatalf("size line: n=%d need=%v err=%v", n, need, err)
	}

	// A partial chunk body still yields a Data event for what's available.
	ev, n, need, err := r.step([]byte("hel"), limits)
	if err != nil || need || ev == nil || string(ev.Payload) != "hel" {
		t.Fatalf("partial body: ev=%+v n=%d need=%v err=%v", ev, n, need, err)
	}

	// No bytes at all mid-chunk is the actual NEED_DATA case.
	_, _, need, err = r.step(nil, limits)
	if err != nil || !need {
		t.Fatalf("expected NEED_DATA on an empty read mid-chunk, got need=%v err=%v", need, err)
	}
}

func TestParseChunkSizeLineRejectsOverflow(t *testing.T) {
	if _, err := parseChunkSizeLine([]byte("ffffffffffffffff")); err == nil {
		t.Fatalf("expected a hex value exceeding MaxInt64 to be rejected")
	}
}
