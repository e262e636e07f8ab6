package h11

import "strings"

// HeaderField is a single (name, value) pair as it appeared on the wire.
// Names are compared case-insensitively but stored in their received case.
type HeaderField struct {
	Name  []byte
	Value []byte
}

// Headers is an ordered sequence of header fields with case-insensitive
// name lookup. Order is preserved (RFC order matters, e.g. for repeated
// Set-Cookie fields), so the primary representation is the raw ordered
// slice rather than a map keyed by name; a lowercase-keyed index is built
// lazily on first lookup and extended with any fields appended since the
// previous lookup.
//
// Modeled on fasthttp's header/argsKV representation (an ordered []argsKV
// plus on-demand lookup) rather than Go's net/textproto MIMEHeader map.
type Headers struct {
	fields  []HeaderField
	index   map[string][]int
	indexed int
}

// NewHeaders returns an empty Headers.
func NewHeaders() *Headers {
	return &Headers{}
}

// HeadersFromPairs builds a Headers from literal name/value string pairs,
// for constructing outgoing events in tests and example code.
func HeadersFromPairs(pairs ...string) *Headers {
	if len(pairs)%2 != 0 {
		panic("h11: HeadersFromPairs requires an even number of arguments")
	}
	h := NewHeaders()
	for i := 0; i < len(pairs); i += 2 {
		h.Add([]byte(pairs[i]), []byte(pairs[i+1]))
	}
	return h
}

// Add appends a header field, preserving any existing fields of the same
// name.
func (h *Headers) Add(name, value []byte) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Len returns the number of header fields.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Fields returns the underlying ordered slice of fields. Callers must not
// mutate it.
func (h *Headers) Fields() []HeaderField {
	if h == nil {
		return nil
	}
	return h.fields
}

func (h *Headers) rebuildIndex() {
	if h.index == nil {
		h.index = make(map[string][]int, len(h.fields))
	}
	for i := h.indexed; i < len(h.fields); i++ {
		key := lowerASCIICopy(h.fields[i].Name)
		h.index[key] = append(h.index[key], i)
	}
	h.indexed = len(h.fields)
}

func lowerASCIICopy(b []byte) string {
	// strings.ToLower also lowers non-ASCII letters; header names are ASCII
	// tokens per RFC 7230, so for them this is a plain ASCII lowercase.
	return strings.ToLower(string(b))
}

// Get returns the first value stored under name (case-insensitive), and
// whether it was present.
func (h *Headers) Get(name string) ([]byte, bool) {
	if h == nil {
		return nil, false
	}
	h.rebuildIndex()
	idxs, ok := h.index[strings.ToLower(name)]
	if !ok || len(idxs) == 0 {
		return nil, false
	}
	return h.fields[idxs[0]].Value, true
}

// GetAll returns every value stored under name (case-insensitive), in
// wire order.
func (h *Headers) GetAll(name string) [][]byte {
	if h == nil {
		return nil
	}
	h.rebuildIndex()
	idxs := h.index[strings.ToLower(name)]
	if len(idxs) == 0 {
		return nil
	}
	out := make([][]byte, len(idxs))
	for i, idx := range idxs {
		out[i] = h.fields[idx].Value
	}
	return out
}

// Has reports whether any field with the given name (case-insensitive) is
// present.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Clone returns a deep-enough copy (new slice and index, same underlying
// byte slices) suitable for storing across Connection calls.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return nil
	}
	out := &Headers{fields: make([]HeaderField, len(h.fields))}
	copy(out.fields, h.fields)
	return out
}
