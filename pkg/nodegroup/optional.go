package nodegroup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Optional is the optionality mode of a link.
// The integer values are the wire encoding.
type Optional int

const (
	// OptionalReverse lets the query match when the source side is missing.
	OptionalReverse Optional = -1
	// NotOptional requires the link to match.
	NotOptional Optional = 0
	// OptionalForward lets the query match when the target side is missing.
	OptionalForward Optional = 1
)

// Modes lists every valid Optional value in presentation order.
var Modes = []Optional{NotOptional, OptionalForward, OptionalReverse}

var optionalNames = map[Optional]string{
	NotOptional:     "none",
	OptionalForward: "forward",
	OptionalReverse: "reverse",
}

// Valid reports whether o is one of the three defined modes.
func (o Optional) Valid() bool {
	_, ok := optionalNames[o]
	return ok
}

// String returns "none", "forward" or "reverse".
func (o Optional) String() string {
	if name, ok := optionalNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Optional(%d)", int(o))
}

// ParseOptional accepts a mode name or its wire integer.
func ParseOptional(s string) (Optional, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for o, name := range optionalNames {
		if s == name {
			return o, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Optional(n).Valid() {
		return Optional(n), nil
	}
	return NotOptional, errors.New(errors.ErrCodeInvalidOptional, "unknown optional mode %q (want none, forward or reverse)", s)
}

// MarshalJSON encodes the mode as its wire integer.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidOptional, "cannot encode %s", o)
	}
	return strconv.AppendInt(nil, int64(o), 10), nil
}

// UnmarshalJSON decodes a wire integer, rejecting anything outside the three modes.
func (o *Optional) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptional, err, "decode optional mode")
	}
	if !Optional(n).Valid() {
		return errors.New(errors.ErrCodeInvalidOptional, "optional mode %d out of range", n)
	}
	*o = Optional(n)
	return nil
}
