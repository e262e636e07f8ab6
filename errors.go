package h11

import "fmt"

// LocalProtocolError is returned when the caller used the Connection API
// incorrectly: an event illegal in the current state, conflicting framing
// headers on an outgoing message, pipelining a second request as a client,
// and similar caller mistakes. Raising it moves both parties to StateError.
type LocalProtocolError struct {
	Reason string
}

func (e *LocalProtocolError) Error() string {
	return fmt.Sprintf("local protocol error: %s", e.Reason)
}

func newLocalProtocolError(format string, args ...interface{}) *LocalProtocolError {
	return &LocalProtocolError{Reason: fmt.Sprintf(format, args...)}
}

// RemoteProtocolError is returned when the peer violated HTTP: malformed
// bytes, impossible framing, an oversize header block, invalid chunk
// encoding, or EOF in the middle of a message whose length was known.
// Raising it moves both parties to StateError.
//
// SuggestedStatus is a best-effort HTTP status code (400, 431, 501, ...) a
// server caller may use to write a last-gasp error response before closing
// the socket. It is zero when no particular status is more appropriate than
// another.
type RemoteProtocolError struct {
	Reason          string
	SuggestedStatus int
}

func (e *RemoteProtocolError) Error() string {
	return fmt.Sprintf("remote protocol error: %s", e.Reason)
}

func newRemoteProtocolError(status int, format string, args ...interface{}) *RemoteProtocolError {
	return &RemoteProtocolError{Reason: fmt.Sprintf(format, args...), SuggestedStatus: status}
}
