package h11

import "testing"

func TestEventTypeString(t *testing.T) {
	cases := map[EventType]string{
		EventRequest:               "Request",
		EventResponse:              "Response",
		EventInformationalResponse: "InformationalResponse",
		EventData:                  "Data",
		EventEndOfMessage:          "EndOfMessage",
		EventConnectionClosed:      "ConnectionClosed",
		EventNeedData:              "NEED_DATA",
		EventPaused:                "PAUSED",
	}
	for evt, want := range cases {
		if got := evt.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", evt, got, want)
		}
	}
}

func TestNewRequestDefaultsNilHeaders(t *testing.T) {
	ev := NewRequest("GET", "/", "1.1", nil)
	if ev.Headers == nil {
		t.Fatalf("NewRequest left Headers nil")
	}
	if ev.Headers.Len() != 0 {
		t.Fatalf("NewRequest's default Headers is not empty: %v", ev.Headers.Fields())
	}
}

func TestNewEndOfMessageAllowsNilTrailers(t *testing.T) {
	ev := NewEndOfMessage(nil)
	if ev.Trailers != nil {
		t.Fatalf("NewEndOfMessage(nil).Trailers = %v, want nil", ev.Trailers)
	}
}
