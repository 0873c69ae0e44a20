package jsonb

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/tidwall/gjson"
)

// Parse decodes a JSON document into the binary model. Scalar roots are
// returned as typed scalar values directly; object and array roots become
// Binary values referencing the decoded container tree.
//
// Container offsets record the position of each container's raw text in
// data, which the executor uses to derive stable .keyvalue() identifiers.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("jsonb: invalid JSON text")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseString is Parse for a string input.
func ParseString(data string) (Value, error) {
	return Parse([]byte(data))
}

// MustParse is Parse but panics on invalid input. Intended for tests and
// examples.
func MustParse(data string) Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func fromResult(res gjson.Result) Value {
	switch res.Type {
	case gjson.Null:
		return Null()
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.String:
		return String(res.Str)
	case gjson.Number:
		return Number(parseDecimal(res.Raw))
	case gjson.JSON:
		c := &Container{object: res.IsObject(), offset: res.Index}
		res.ForEach(func(key, value gjson.Result) bool {
			if c.object {
				c.keys = append(c.keys, key.Str)
			}
			c.vals = append(c.vals, fromResult(value))
			return true
		})
		return Binary(c)
	}
	return Null()
}

// parseDecimal converts raw JSON number text to a decimal, preserving the
// full precision of the input. gjson has already validated the syntax.
func parseDecimal(raw string) *apd.Decimal {
	d, _, err := apd.NewFromString(raw)
	if err != nil {
		// Unreachable for validated input; keep a zero rather than panic.
		return apd.New(0, 0)
	}
	return d
}
