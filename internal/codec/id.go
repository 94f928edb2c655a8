package codec

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ID is a JSON-RPC request/response id. The wire type (string or integer)
// is preserved end-to-end: spec.md's P3 and its Open Question on id
// encoding both require that a numeric id is never silently stringified.
type ID struct {
	set      bool
	isString bool
	str      string
	num      int64
}

// StringID builds a string-valued ID.
func StringID(s string) ID { return ID{set: true, isString: true, str: s} }

// IntID builds an integer-valued ID.
func IntID(n int64) ID { return ID{set: true, num: n} }

// IsZero reports whether the ID is unset (e.g. a notification has no id).
func (id ID) IsZero() bool { return !id.set }

// IsString reports whether the ID's wire representation is a JSON string.
func (id ID) IsString() bool { return id.isString }

// String renders the id for logs and map keys; it does not affect the
// wire representation, which MarshalJSON controls separately.
func (id ID) String() string {
	if !id.set {
		return ""
	}
	if id.isString {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

// Key returns a collision-safe map key that distinguishes the string id
// "1" from the integer id 1.
func (id ID) Key() string {
	if id.isString {
		return "s:" + id.str
	}
	return "n:" + strconv.FormatInt(id.num, 10)
}

// Equal reports whether two ids are the same wire value.
func (id ID) Equal(other ID) bool {
	return id.set == other.set &&
		id.isString == other.isString &&
		id.str == other.str &&
		id.num == other.num
}

// MarshalJSON renders the id using its original JSON type.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	if id.isString {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

// UnmarshalJSON accepts a JSON string or number, recording which it was.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID{set: true, isString: true, str: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		i, err := n.Int64()
		if err != nil {
			return errors.New("id: integer out of range")
		}
		*id = ID{set: true, num: i}
		return nil
	}

	return errors.New("id must be a string or a number")
}
