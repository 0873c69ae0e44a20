package exec

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/gistol/sqljson/pkg/jsonb"
)

// ItemType classifies an SQL/JSON item flowing between path nodes. Unlike
// jsonb.Kind it resolves Binary references to Object or Array, and it covers
// the in-memory datetime variant.
type ItemType int

const (
	TypeNull ItemType = iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeDatetime
)

// Item is a single SQL/JSON item: a jsonb value or a virtual datetime value
// produced by the .datetime() method.
type Item struct {
	val jsonb.Value
	dt  *DateTime
}

func newItem(v jsonb.Value) *Item {
	return &Item{val: v}
}

func newDatetimeItem(dt *DateTime) *Item {
	return &Item{dt: dt}
}

// Type reports the item's classification. Binary containers report
// TypeObject or TypeArray; scalars are never hidden inside a container.
func (it *Item) Type() ItemType {
	if it.dt != nil {
		return TypeDatetime
	}
	switch it.val.Kind() {
	case jsonb.KindBool:
		return TypeBool
	case jsonb.KindNumber:
		return TypeNumber
	case jsonb.KindString:
		return TypeString
	case jsonb.KindBinary:
		if it.val.Container().IsObject() {
			return TypeObject
		}
		return TypeArray
	default:
		return TypeNull
	}
}

// TypeName returns the .type() spelling of the item's type.
func (it *Item) TypeName() string {
	switch it.Type() {
	case TypeNull:
		return "null"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeDatetime:
		return it.dt.typeName()
	}
	return "unknown"
}

// Value returns the underlying jsonb value. For datetime items the value is
// the ISO rendering as a string, matching the serialization rule for the
// virtual variant.
func (it *Item) Value() jsonb.Value {
	if it.dt != nil {
		return jsonb.String(it.dt.ISOString())
	}
	return it.val
}

// Datetime returns the datetime payload, or nil for ordinary items.
func (it *Item) Datetime() *DateTime {
	return it.dt
}

// String renders the item as compact JSON.
func (it *Item) String() string {
	return it.Value().String()
}

// container returns the referenced container when the item is a Binary
// value.
func (it *Item) container() *jsonb.Container {
	if it.dt == nil && it.val.Kind() == jsonb.KindBinary {
		return it.val.Container()
	}
	return nil
}

// asNumber returns the numeric payload, reporting false on any other type.
func (it *Item) asNumber() (*apd.Decimal, bool) {
	if it.dt == nil && it.val.Kind() == jsonb.KindNumber {
		return it.val.Decimal(), true
	}
	return nil, false
}

// asString returns the string payload, reporting false on any other type.
func (it *Item) asString() (string, bool) {
	if it.dt == nil && it.val.Kind() == jsonb.KindString {
		return it.val.Str(), true
	}
	return "", false
}

// arraySize returns the length of an array item, or -1 when the item is not
// an array.
func (it *Item) arraySize() int {
	if c := it.container(); c != nil && c.IsArray() {
		return c.Len()
	}
	return -1
}

// copy returns a detached shallow copy of the item.
func (it *Item) copy() *Item {
	dup := *it
	return &dup
}

// unquoteText renders the item the way text output does: strings unquoted,
// datetimes in ISO form, everything else as its JSON encoding.
func (it *Item) unquoteText() string {
	if it.dt != nil {
		return it.dt.ISOString()
	}
	if s, ok := it.asString(); ok {
		return s
	}
	return it.val.String()
}
