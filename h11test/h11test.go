// Package h11test is a conformance harness for code embedding
// github.com/valyala/h11go: it drives a pair of Connections end to end
// (client Send -> bytes -> server ReceiveData/NextEvent, and back) and
// records the resulting Event trace for assertions, the way fasthttp's own
// test files build ad hoc request/response fixtures (args_test.go's
// testArgsString, header_test.go's table-driven wire fixtures) but
// promoted to an importable package since this module's whole purpose is
// to be embedded by other transport layers that want the same tooling.
package h11test

import (
	"fmt"

	"github.com/valyala/h11go"
)

// Trace is the recorded sequence of events produced by one side of a
// Run, in the order NextEvent returned them.
type Trace []h11.Event

// String renders the trace compactly for test failure messages.
func (t Trace) String() string {
	s := ""
	for i, ev := range t {
		if i > 0 {
			s += " -> "
		}
		s += ev.Type.String()
	}
	return s
}

// Exchange is one side's scripted actions in a Run: events to Send, in
// order, interleaved implicitly with whatever NextEvent calls are needed
// to drain the other side's output as it arrives.
type Exchange struct {
	Send []h11.Event
}

// Result holds both sides' recorded event traces after a Run.
type Result struct {
	ClientEvents Trace
	ServerEvents Trace
}

// Run drives client and server Connections through the given scripted
// Sends, relaying the produced bytes directly into the peer's
// ReceiveData (an in-process "loopback socket"), and collects every
// event each side observes via NextEvent. After each Send the peer is
// drained until it reports EventNeedData or EventPaused, or returns
// ConnectionClosed.
//
// The whole client script is sent first, then the whole server script;
// Run does not interleave the two or decide what to send next, so an
// exchange that needs the client to wait on the server mid-script (such
// as a 100-continue handshake) cannot be expressed in one Run.
func Run(client, server *h11.Connection, clientScript, serverScript Exchange) (Result, error) {
	var result Result

	relay := func(from, to *h11.Connection, evt h11.Event) error {
		out, err := from.Send(evt)
		if err != nil {
			return fmt.Errorf("h11test: send %s failed: %w", evt.Type, err)
		}
		if out != nil {
			if err := to.ReceiveData(out); err != nil {
				return fmt.Errorf("h11test: relay into peer failed: %w", err)
			}
		}
		return nil
	}

	drain := func(conn *h11.Connection, into *Trace) error {
		for {
			ev, err := conn.NextEvent()
			if err != nil {
				return fmt.Errorf("h11test: NextEvent failed: %w", err)
			}
			if ev.Type == h11.EventNeedData || ev.Type == h11.EventPaused {
				return nil
			}
			*into = append(*into, ev)
			if ev.Type == h11.EventConnectionClosed {
				return nil
			}
		}
	}

	for _, evt := range clientScript.Send {
		if err := relay(client, server, evt); err != nil {
			return result, err
		}
		if err := drain(server, &result.ServerEvents); err != nil {
			return result, err
		}
	}
	for _, evt := range serverScript.Send {
		if err := relay(server, client, evt); err != nil {
			return result, err
		}
		if err := drain(client, &result.ClientEvents); err != nil {
			return result, err
		}
	}
	return result, nil
}

// AssertEventTypes compares an observed Trace's event types against the
// expected sequence, returning a descriptive error on the first
// mismatch (or a length mismatch) rather than panicking, so it composes
// naturally with t.Fatal/t.Error in caller tests.
func AssertEventTypes(trace Trace, want ...h11.EventType) error {
	if len(trace) != len(want) {
		return fmt.Errorf("h11test: got %d events (%s), want %d", len(trace), trace, len(want))
	}
	for i, ev := range trace {
		if ev.Type != want[i] {
			return fmt.Errorf("h11test: event %d was %s, want %s (trace: %s)", i, ev.Type, want[i], trace)
		}
	}
	return nil
}
