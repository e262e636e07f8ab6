package h11

import (
	"bytes"

	"github.com/valyala/h11go/internal/headerlimits"
)

// exchangeInfo tracks the request method and response status of the
// exchange currently in flight, since several decisions (response body
// framing, CONNECT/Upgrade handoff) depend on both ends of the exchange
// rather than on either event alone.
type exchangeInfo struct {
	method     []byte
	haveMethod bool
	isConnect  bool
	lastStatus int
}

// Option configures a Connection at construction time.
type Option func(*Connection)

// WithMaxHeaderBytes bounds the size of a request/status line plus headers,
// and of a chunked trailer block. Exceeding it raises a RemoteProtocolError
// with SuggestedStatus 431 rather than buffering an unbounded head block.
func WithMaxHeaderBytes(n int) Option {
	return func(c *Connection) { c.limits = headerlimits.New(n) }
}

// Connection is a sans-I/O HTTP/1.1 protocol engine for one TCP connection.
// It owns no socket: callers feed it incoming bytes via ReceiveData and
// pull decoded Events via NextEvent, and hand it outgoing Events via Send
// to get back bytes to write. See doc.go for the full operating model.
//
// Grounded on fasthttp's separation of RequestHeader/Request parsing from
// net.Conn I/O (the Read methods take an io.Reader, but all size-limit and
// framing logic is conn-agnostic); this type goes one step further and
// removes the io.Reader dependency entirely.
type Connection struct {
	role Role

	ourState   PartyState
	theirState PartyState

	ourHTTPVersion   []byte
	theirHTTPVersion []byte

	ourFraming BodyFraming
	inFlight   exchangeInfo

	keepAlive bool

	clientIsWaitingFor100Continue bool
	theyAreWaitingFor100Continue  bool

	recvBuf *recvBuffer
	reader  *msgReader

	limits headerlimits.Limits

	err error
}

// NewConnection creates a Connection playing role, initially idle on both
// sides.
func NewConnection(role Role, opts ...Option) *Connection {
	c := &Connection{
		role:       role,
		ourState:   StateIdle,
		theirState: StateIdle,
		keepAlive:  true,
		limits:     headerlimits.New(0),
		recvBuf:    newRecvBuffer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reader = newMsgReader(role.other(), c.limits)
	return c
}

// OurRole reports which side of the connection this Connection plays.
func (c *Connection) OurRole() Role { return c.role }

// OurState reports this party's current state.
func (c *Connection) OurState() PartyState { return c.ourState }

// TheirState reports the believed state of the opposite party.
func (c *Connection) TheirState() PartyState { return c.theirState }

// TheirHTTPVersion reports the HTTP version the peer last announced, or
// nil if none has been seen yet.
func (c *Connection) TheirHTTPVersion() []byte { return c.theirHTTPVersion }

// ClientIsWaitingFor100Continue reports whether the client has sent a
// request with Expect: 100-continue and has not yet seen a response.
func (c *Connection) ClientIsWaitingFor100Continue() bool { return c.clientIsWaitingFor100Continue }

// TheyAreWaitingFor100Continue reports, for a server-role Connection,
// whether the client appears to be waiting on a 100 Continue before
// sending its request body.
func (c *Connection) TheyAreWaitingFor100Continue() bool { return c.theyAreWaitingFor100Continue }

// TrailingData returns bytes already received but not yet consumed by the
// protocol engine. It is only meaningful once a party has reached
// SWITCHED_PROTOCOL: everything after that point is opaque tunnel data the
// caller must relay itself.
func (c *Connection) TrailingData() []byte {
	if c.recvBuf == nil {
		return nil
	}
	return c.recvBuf.unread()
}

func (c *Connection) checkUsable() error {
	if c.err != nil {
		return c.err
	}
	return nil
}

// setError moves both parties to StateError and records err as the sticky
// failure reason for this Connection, matching spec.md's "no error is
// recovered internally" rule.
func (c *Connection) setError(err error) error {
	if c.err == nil {
		c.err = err
	}
	c.ourState = StateError
	c.theirState = StateError
	return err
}

// Send validates and serializes an outgoing event, advancing this party's
// state machine. It returns the bytes the caller should write to the
// socket. Sending ConnectionClosed produces no bytes.
func (c *Connection) Send(evt Event) ([]byte, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	if err := c.validateSendRole(evt); err != nil {
		return nil, c.setError(err)
	}
	next, terr := transitionFor(c.role, c.ourState, evt.Type, c.theirState)
	if terr != nil {
		return nil, c.setError(terr)
	}

	out, werr := c.writeEvent(evt)
	if werr != nil {
		return nil, c.setError(werr)
	}

	c.ourState = next

	if c.role == RoleClient && evt.Type == EventRequest {
		// Linked rule, mirrored for the sending side: the moment a request
		// is sent, the server's state (as this Connection models it) moves
		// out of IDLE too, since there is no separate NextEvent call on
		// this side to discover that fact later.
		theirNext, aerr := advanceServerOnRequest(c.theirState)
		if aerr != nil {
			return nil, c.setError(aerr)
		}
		c.theirState = theirNext
	}

	c.relink()

	if evt.Type == EventConnectionClosed {
		return nil, nil
	}
	return out, nil
}

func (c *Connection) validateSendRole(evt Event) error {
	switch evt.Type {
	case EventRequest:
		if c.role != RoleClient {
			return newLocalProtocolError("only a client may send a Request")
		}
	case EventInformationalResponse, EventResponse:
		if c.role != RoleServer {
			return newLocalProtocolError("only a server may send %s", evt.Type)
		}
	case EventData, EventEndOfMessage, EventConnectionClosed:
		// Either role may send these.
	default:
		return newLocalProtocolError("event type %s cannot be sent", evt.Type)
	}
	return nil
}

func (c *Connection) writeEvent(evt Event) ([]byte, error) {
	switch evt.Type {
	case EventRequest:
		return c.writeRequest(evt)
	case EventInformationalResponse, EventResponse:
		return c.writeResponseHead(evt)
	case EventData:
		return c.writeData(evt)
	case EventEndOfMessage:
		return c.writeEndOfMessage(evt)
	case EventConnectionClosed:
		return nil, nil
	default:
		return nil, newLocalProtocolError("event type %s cannot be sent", evt.Type)
	}
}

// ReceiveData feeds bytes received from the peer into the Connection.
// Passing a zero-length slice signals that the peer has closed its side of
// the socket (EOF).
func (c *Connection) ReceiveData(data []byte) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if c.theirState == StateClosed {
		return c.setError(newRemoteProtocolError(400, "received data after the peer already closed the connection"))
	}
	c.recvBuf.append(data)
	return nil
}

// NextEvent decodes and returns the next Event from previously received
// data. It returns EventNeedData when more bytes are required, and
// EventPaused once the peer is in MUST_CLOSE or SWITCHED_PROTOCOL (see
// isPaused).
func (c *Connection) NextEvent() (Event, error) {
	if err := c.checkUsable(); err != nil {
		return Event{}, err
	}
	if c.isPaused() {
		return pausedEvent, nil
	}
	if c.recvBuf == nil {
		// Both parties already reached CLOSED and released the buffer;
		// report the same terminal event again rather than panicking.
		return NewConnectionClosed(), nil
	}

	for {
		data := c.recvBuf.unread()
		ev, n, needMore, rerr := c.reader.next(data, c.inFlight.method, c.recvBuf.eof)
		if rerr != nil {
			return Event{}, c.setError(rerr)
		}
		if n > 0 {
			c.recvBuf.advance(n)
		}
		if needMore {
			if c.recvBuf.eof {
				if closable(c.theirState) {
					return c.commitTheirEvent(NewConnectionClosed())
				}
				return Event{}, c.setError(newRemoteProtocolError(400, "peer closed the connection unexpectedly"))
			}
			return needDataEvent, nil
		}
		return c.commitTheirEvent(ev)
	}
}

func (c *Connection) commitTheirEvent(evt Event) (Event, error) {
	theirRole := c.role.other()
	next, terr := transitionFor(theirRole, c.theirState, evt.Type, c.ourState)
	if terr != nil {
		return Event{}, c.setError(terr)
	}
	c.theirState = next

	if c.role == RoleServer && evt.Type == EventRequest {
		ourNext, aerr := advanceServerOnRequest(c.ourState)
		if aerr != nil {
			return Event{}, c.setError(aerr)
		}
		c.ourState = ourNext
	}

	c.onTheirEvent(evt)
	c.relink()
	return evt, nil
}

func (c *Connection) onTheirEvent(evt Event) {
	switch evt.Type {
	case EventRequest:
		c.theirHTTPVersion = evt.HTTPVersion
		c.inFlight = exchangeInfo{
			method:     append([]byte(nil), evt.Method...),
			haveMethod: true,
			isConnect:  equalFoldASCII(evt.Method, strCONNECT),
		}
		c.updateKeepAlive(evt.HTTPVersion, evt.Headers)
		if expectsContinue(evt.Headers) {
			c.theyAreWaitingFor100Continue = true
		}

	case EventInformationalResponse, EventResponse:
		c.theirHTTPVersion = evt.HTTPVersion
		c.updateKeepAlive(evt.HTTPVersion, evt.Headers)
		c.clientIsWaitingFor100Continue = false
		c.inFlight.lastStatus = evt.StatusCode
	}
}

// updateKeepAlive applies the one-way keep_alive downgrade: HTTP/1.0 or an
// explicit Connection: close anywhere in the exchange turns it off for
// good. It never turns back on.
func (c *Connection) updateKeepAlive(version []byte, headers *Headers) {
	if !c.keepAlive {
		return
	}
	if bytes.Equal(version, strVersion10) {
		c.keepAlive = false
		return
	}
	if headers != nil && connectionHasToken(headers, strClose) {
		c.keepAlive = false
	}
}

// StartNextCycle resets both parties to IDLE so a keep-alive connection can
// process its next request/response exchange. Both parties must be DONE.
func (c *Connection) StartNextCycle() error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if c.ourState != StateDone || c.theirState != StateDone {
		return c.setError(newLocalProtocolError(
			"StartNextCycle requires both parties to be DONE, got ours=%s theirs=%s", c.ourState, c.theirState))
	}
	c.ourState = StateIdle
	c.theirState = StateIdle
	c.inFlight = exchangeInfo{}
	c.ourFraming = BodyFraming{}
	c.reader.resetForNextMessage()
	return nil
}

// isPaused reports whether NextEvent should return PAUSED rather than
// attempt to parse further. This is judged from theirState, not ourState:
// theirState only reaches MUST_CLOSE once the *incoming* message has been
// read in full, so a response/request body already in flight is never cut
// short merely because our own send side finished and decided not to keep
// the connection alive. Once theirState gets there, there's no point
// reading a pipelined message we'll never answer. SWITCHED_PROTOCOL means
// the bytes in the receive buffer are no longer HTTP at all, and relink
// always applies it to both parties together.
func (c *Connection) isPaused() bool {
	return c.theirState == StateMustClose || c.theirState == StateSwitchedProtocol
}

// statePointers returns pointers to whichever of ourState/theirState
// belongs to the client and to the server respectively, so relink can
// apply client-only or server-only overlays without a role switch at every
// call site.
func (c *Connection) statePointers() (client, server *PartyState) {
	if c.role == RoleClient {
		return &c.ourState, &c.theirState
	}
	return &c.theirState, &c.ourState
}

// relink reconciles cross-party state after every single transition, per
// spec.md §4.2's note that the two state machines are not independent:
//   - a CONNECT request being sent/received promotes the client's
//     SEND_BODY into MIGHT_SWITCH_PROTOCOL;
//   - a 101 response, or a 2xx response to CONNECT, promotes both parties
//     straight to SWITCHED_PROTOCOL;
//   - once keep_alive is false, DONE decays into MUST_CLOSE;
//   - one party reaching CLOSED forces the other into MUST_CLOSE when the
//     other is DONE or IDLE;
//   - ERROR is sticky and contagious.
func (c *Connection) relink() {
	clientState, serverState := c.statePointers()

	if c.inFlight.isConnect && *clientState == StateSendBody {
		*clientState = StateMightSwitchProtocol
	}

	if c.inFlight.lastStatus != 0 {
		switched := c.inFlight.lastStatus == 101 ||
			(c.inFlight.isConnect && c.inFlight.lastStatus >= 200 && c.inFlight.lastStatus < 300)
		if switched {
			*clientState = StateSwitchedProtocol
			*serverState = StateSwitchedProtocol
		}
	}

	if !c.keepAlive {
		if *clientState == StateDone {
			*clientState = StateMustClose
		}
		if *serverState == StateDone {
			*serverState = StateMustClose
		}
	}

	if *clientState == StateClosed && (*serverState == StateDone || *serverState == StateIdle) {
		*serverState = StateMustClose
	}
	if *serverState == StateClosed && (*clientState == StateDone || *clientState == StateIdle) {
		*clientState = StateMustClose
	}

	if *clientState == StateError || *serverState == StateError {
		*clientState, *serverState = StateError, StateError
	}

	if *clientState == StateClosed && *serverState == StateClosed && c.recvBuf != nil {
		c.recvBuf.release()
		c.recvBuf = nil
	}
}
