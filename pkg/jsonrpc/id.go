package jsonrpc

import (
	"bytes"
	"errors"
	"strconv"
)

var ErrInvalidID = errors.New("id must be a string, a number or null")

/*
ID is a request id held as the exact JSON the client sent, so a response
echoes it byte for byte whatever its size or spelling. The zero value is the
null id.
*/
type ID struct {
	raw RawMessage
}

// NullID returns the id used when the request had none or was unreadable.
func NullID() ID {
	return ID{}
}

// NewID encodes value as an id. Values that cannot be encoded give the null id.
func NewID(value any) ID {
	raw, err := Marshal(value)
	if err != nil {
		return NullID()
	}

	id, err := parseID(raw)
	if err != nil {
		return NullID()
	}

	return id
}

func parseID(raw []byte) (ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ID{}, nil
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := Unmarshal(raw, &s); err != nil {
			return ID{}, ErrInvalidID
		}
	case c == '-' || (c >= '0' && c <= '9'):
		if !Valid(raw) {
			return ID{}, ErrInvalidID
		}
	default:
		return ID{}, ErrInvalidID
	}

	return ID{raw: append(RawMessage(nil), raw...)}, nil
}

func (id ID) IsNil() bool {
	return len(id.raw) == 0
}

/*
Value decodes the id for inspection: a string, an int64 when the number fits,
otherwise a float64. Use the ID itself, not Value, to answer a request.
*/
func (id ID) Value() any {
	if id.IsNil() {
		return nil
	}

	if id.raw[0] == '"' {
		var s string
		_ = Unmarshal(id.raw, &s)
		return s
	}

	if n, err := strconv.ParseInt(string(id.raw), 10, 64); err == nil {
		return n
	}

	f, _ := strconv.ParseFloat(string(id.raw), 64)
	return f
}

// String returns the id as written on the wire, for logs.
func (id ID) String() string {
	if id.IsNil() {
		return "null"
	}
	return string(id.raw)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNil() {
		return []byte("null"), nil
	}
	return id.raw, nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	parsed, err := parseID(data)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
