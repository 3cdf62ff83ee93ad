package resp

import (
	"strconv"
	"strings"
)

// Reply is a decoded server reply. The set of implementations is closed:
// Nil, Integer, String, Error and Array.
type Reply interface {
	// Text returns the single-line text form of the reply.
	Text() string
	isReply()
}

// Nil is the null bulk string or null array.
type Nil struct{}

// Integer is a ":" reply.
type Integer int64

// String is a simple ("+") or bulk ("$") string reply.
type String string

// Error is a "-" reply sent by the server.
type Error string

// Array is a "*" reply.
type Array []Reply

func (Nil) isReply()     {}
func (Integer) isReply() {}
func (String) isReply()  {}
func (Error) isReply()   {}
func (Array) isReply()   {}

func (Nil) Text() string { return "(nil)" }

func (i Integer) Text() string { return strconv.FormatInt(int64(i), 10) }

func (s String) Text() string { return string(s) }

func (e Error) Text() string { return string(e) }

// Text renders nested elements inline, e.g. "[a, 1, (nil)]".
func (a Array) Text() string {
	parts := make([]string, len(a))
	for i, r := range a {
		parts[i] = r.Text()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Error lets a server error reply be returned as a Go error.
func (e Error) Error() string { return string(e) }

// IsNil reports whether r is a Nil reply (or a nil interface).
func IsNil(r Reply) bool {
	if r == nil {
		return true
	}
	_, ok := r.(Nil)
	return ok
}
