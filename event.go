package h11

// EventType tags the variant held by an Event.
type EventType uint8

const (
	// EventRequest is a client->server request line plus headers.
	EventRequest EventType = iota
	// EventInformationalResponse is a server->client 1xx response.
	EventInformationalResponse
	// EventResponse is a server->client response with status >= 200.
	EventResponse
	// EventData is a chunk of message body, either direction.
	EventData
	// EventEndOfMessage terminates a message body, carrying any trailers.
	EventEndOfMessage
	// EventConnectionClosed announces that a party has closed its side of
	// the connection.
	EventConnectionClosed

	// EventNeedData is a read-only sentinel: NextEvent needs more bytes.
	EventNeedData
	// EventPaused is a read-only sentinel: NextEvent will not make
	// progress until the caller takes some other action (see Connection's
	// PAUSED documentation).
	EventPaused
)

func (t EventType) String() string {
	switch t {
	case EventRequest:
		return "Request"
	case EventInformationalResponse:
		return "InformationalResponse"
	case EventResponse:
		return "Response"
	case EventData:
		return "Data"
	case EventEndOfMessage:
		return "EndOfMessage"
	case EventConnectionClosed:
		return "ConnectionClosed"
	case EventNeedData:
		return "NEED_DATA"
	case EventPaused:
		return "PAUSED"
	default:
		return "Unknown"
	}
}

// Event is a tagged union of every message h11 can send or receive.
// Only the fields relevant to Type are meaningful; others are left zero.
type Event struct {
	Type EventType

	// Request fields.
	Method      []byte
	Target      []byte
	HTTPVersion []byte // "1.0" or "1.1", never includes "HTTP/"
	Headers     *Headers

	// InformationalResponse / Response fields (HTTPVersion and Headers
	// above are reused for these too).
	StatusCode int
	Reason     []byte

	// Data fields.
	Payload []byte

	// EndOfMessage fields.
	Trailers *Headers
}

// NewRequest builds a Request event. headers may be nil, meaning empty.
func NewRequest(method, target string, httpVersion string, headers *Headers) Event {
	if headers == nil {
		headers = NewHeaders()
	}
	return Event{
		Type:        EventRequest,
		Method:      []byte(method),
		Target:      []byte(target),
		HTTPVersion: []byte(httpVersion),
		Headers:     headers,
	}
}

// NewInformationalResponse builds a 1xx response event.
func NewInformationalResponse(status int, httpVersion string, headers *Headers) Event {
	if headers == nil {
		headers = NewHeaders()
	}
	return Event{
		Type:        EventInformationalResponse,
		StatusCode:  status,
		HTTPVersion: []byte(httpVersion),
		Headers:     headers,
	}
}

// NewResponse builds a >=200 response event.
func NewResponse(status int, httpVersion string, headers *Headers) Event {
	if headers == nil {
		headers = NewHeaders()
	}
	return Event{
		Type:        EventResponse,
		StatusCode:  status,
		HTTPVersion: []byte(httpVersion),
		Headers:     headers,
	}
}

// NewData builds a body-chunk event.
func NewData(payload []byte) Event {
	return Event{Type: EventData, Payload: payload}
}

// NewEndOfMessage builds an end-of-message event. trailers may be nil.
func NewEndOfMessage(trailers *Headers) Event {
	return Event{Type: EventEndOfMessage, Trailers: trailers}
}

// NewConnectionClosed builds a ConnectionClosed event.
func NewConnectionClosed() Event {
	return Event{Type: EventConnectionClosed}
}

var needDataEvent = Event{Type: EventNeedData}
var pausedEvent = Event{Type: EventPaused}
