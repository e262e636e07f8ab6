package h11

// Role identifies which side of the connection a party plays.
type Role uint8

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

func (r Role) other() Role {
	if r == RoleServer {
		return RoleClient
	}
	return RoleServer
}

// PartyState is the state of one party (ours or theirs) in a Connection.
type PartyState uint8

const (
	StateIdle PartyState = iota
	StateSendResponse // server only
	StateSendBody
	StateDone
	StateMustClose
	StateClosed
	StateError

	// Cross-cutting substates used for CONNECT / Upgrade handoff. They
	// stand in for SendBody/Done in the ordinary tables below; see relink.
	StateMightSwitchProtocol
	StateSwitchedProtocol
)

func (s PartyState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSendResponse:
		return "SEND_RESPONSE"
	case StateSendBody:
		return "SEND_BODY"
	case StateDone:
		return "DONE"
	case StateMustClose:
		return "MUST_CLOSE"
	case StateClosed:
		return "CLOSED"
	case StateError:
		return "ERROR"
	case StateMightSwitchProtocol:
		return "MIGHT_SWITCH_PROTOCOL"
	case StateSwitchedProtocol:
		return "SWITCHED_PROTOCOL"
	default:
		return "UNKNOWN"
	}
}

// closable reports whether a ConnectionClosed event is legal from this
// state, per the shared tail of both transition tables in spec.md §4.2.
func closable(s PartyState) bool {
	switch s {
	case StateDone, StateMustClose, StateClosed, StateError:
		return true
	default:
		return false
	}
}

// clientTransition advances the state machine followed by whichever party
// is acting as the HTTP client (spec.md §4.2, "Client" table).
func clientTransition(cur PartyState, evt EventType) (PartyState, error) {
	switch {
	case evt == EventConnectionClosed && closable(cur):
		return StateClosed, nil
	case cur == StateIdle && evt == EventRequest:
		return StateSendBody, nil
	case (cur == StateSendBody || cur == StateMightSwitchProtocol) && evt == EventData:
		return cur, nil
	case (cur == StateSendBody || cur == StateMightSwitchProtocol) && evt == EventEndOfMessage:
		return StateDone, nil
	default:
		return cur, newLocalProtocolError("client cannot send %s while in state %s", evt, cur)
	}
}

// serverTransition advances the state machine followed by whichever party
// is acting as the HTTP server (spec.md §4.2, "Server" table). clientState
// is the state the opposite party (the client) is currently believed to be
// in; it is not consulted here, since the SEND_RESPONSE linked precondition
// is applied by advanceServerOnRequest.
func serverTransition(cur PartyState, evt EventType, clientState PartyState) (PartyState, error) {
	switch {
	case evt == EventConnectionClosed && closable(cur):
		return StateClosed, nil
	case cur == StateIdle && evt == EventInformationalResponse:
		return cur, newLocalProtocolError("server cannot respond before the request line has been read")
	case cur == StateIdle && evt == EventResponse:
		return cur, newLocalProtocolError("server cannot respond before the request line has been read")
	case cur == StateIdle:
		// A transition into SendResponse is driven by the *client*
		// reaching SendBody (i.e. its request line being fully parsed),
		// not by an event the server itself sends; see advanceServerOnRequest.
		return cur, newLocalProtocolError("server cannot send %s while in state %s", evt, cur)
	case cur == StateSendResponse && evt == EventInformationalResponse:
		return StateSendResponse, nil
	case cur == StateSendResponse && evt == EventResponse:
		return StateSendBody, nil
	case cur == StateSendBody && evt == EventData:
		return StateSendBody, nil
	case cur == StateSendBody && evt == EventEndOfMessage:
		return StateDone, nil
	default:
		_ = clientState
		return cur, newLocalProtocolError("server cannot send %s while in state %s", evt, cur)
	}
}

// advanceServerOnRequest implements the linked rule: "moving to
// SEND_RESPONSE requires the client to have moved to SEND_BODY in the same
// tick." It is invoked when a server-role Connection observes (via
// NextEvent) that the client has sent a Request, and when a client-role
// Connection sends a Request (advancing its view of the server).
func advanceServerOnRequest(cur PartyState) (PartyState, error) {
	if cur != StateIdle {
		return cur, newLocalProtocolError("received a second request before the first completed (pipelining is not supported)")
	}
	return StateSendResponse, nil
}

// transitionFor resolves which table governs a party playing the given
// role.
func transitionFor(role Role, cur PartyState, evt EventType, other PartyState) (PartyState, error) {
	if role == RoleClient {
		return clientTransition(cur, evt)
	}
	return serverTransition(cur, evt, other)
}
