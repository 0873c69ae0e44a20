// Package jsonb implements the binary JSON document model consumed by the
// SQL/JSON path executor.
//
// A document is decoded once into a tree of containers; path evaluation then
// borrows values from the tree without re-parsing. The model mirrors the
// usual jsonb split: scalars are always carried as typed values, while
// objects and arrays are referenced through a Binary container value.
//
// # Example
//
//	doc, err := jsonb.Parse([]byte(`{"a":{"b":[1,2,3]}}`))
//	c := doc.Container()
//	v, ok := c.Lookup("a")
package jsonb

import (
	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull is the JSON null scalar.
	KindNull Kind = iota
	// KindBool is a JSON boolean scalar.
	KindBool
	// KindNumber is a JSON number scalar, carried as an arbitrary-precision
	// decimal.
	KindNumber
	// KindString is a JSON string scalar.
	KindString
	// KindBinary is a reference to an object or array container.
	KindBinary
)

// Value is a single JSON datum: a typed scalar or a reference to a container.
//
// A Binary value never holds a scalar; Parse and the container builders
// unwrap scalars eagerly, so path logic can rely on scalar kinds being
// directly inspectable.
type Value struct {
	kind Kind
	b    bool
	num  *apd.Decimal
	str  string
	bin  *Container
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value holding d. The decimal is borrowed, not
// copied.
func Number(d *apd.Decimal) Value { return Value{kind: KindNumber, num: d} }

// NumberFromInt64 returns a numeric value for i.
func NumberFromInt64(i int64) Value {
	return Value{kind: KindNumber, num: apd.New(i, 0)}
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Binary returns a value referencing the container c.
func Binary(c *Container) Value { return Value{kind: KindBinary, bin: c} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null scalar.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Decimal returns the numeric payload. Valid only for KindNumber.
func (v Value) Decimal() *apd.Decimal { return v.num }

// Str returns the string payload. Valid only for KindString.
func (v Value) Str() string { return v.str }

// Container returns the referenced container. Valid only for KindBinary.
func (v Value) Container() *Container { return v.bin }

// IsObject reports whether v references an object container.
func (v Value) IsObject() bool { return v.kind == KindBinary && v.bin.object }

// IsArray reports whether v references an array container.
func (v Value) IsArray() bool { return v.kind == KindBinary && !v.bin.object }

// Container is an object or array decoded from a document, or synthesized
// during evaluation. Object fields keep document order.
type Container struct {
	object bool
	offset int
	keys   []string
	vals   []Value
}

// Field is a key/value pair used to synthesize object containers.
type Field struct {
	Key string
	Val Value
}

// NewObject synthesizes an object container from fields, preserving order.
// Synthesized containers have offset 0.
func NewObject(fields ...Field) *Container {
	c := &Container{object: true}
	for _, f := range fields {
		c.keys = append(c.keys, f.Key)
		c.vals = append(c.vals, f.Val)
	}
	return c
}

// NewArray synthesizes an array container from elems.
func NewArray(elems ...Value) *Container {
	return &Container{vals: elems}
}

// IsObject reports whether c is an object.
func (c *Container) IsObject() bool { return c.object }

// IsArray reports whether c is an array.
func (c *Container) IsArray() bool { return !c.object }

// Len returns the number of fields or elements.
func (c *Container) Len() int { return len(c.vals) }

// Offset returns the byte offset of the container's raw text within the
// buffer it was parsed from, or 0 for synthesized containers.
func (c *Container) Offset() int { return c.offset }

// Key returns the i-th object key in document order.
func (c *Container) Key(i int) string { return c.keys[i] }

// Val returns the i-th field value or element.
func (c *Container) Val(i int) Value { return c.vals[i] }

// Elem returns the i-th array element, reporting false when i is out of
// range.
func (c *Container) Elem(i int) (Value, bool) {
	if i < 0 || i >= len(c.vals) {
		return Value{}, false
	}
	return c.vals[i], true
}

// Lookup finds the value of an object key, reporting false when the key is
// absent. The first occurrence wins when a document carries duplicates.
func (c *Container) Lookup(key string) (Value, bool) {
	for i, k := range c.keys {
		if k == key {
			return c.vals[i], true
		}
	}
	return Value{}, false
}

// Token identifies an iteration event.
type Token int

const (
	// Done signals the end of iteration.
	Done Token = iota
	// KeyToken carries an object key as a string value.
	KeyToken
	// ValueToken carries the object value for the preceding key.
	ValueToken
	// ElemToken carries an array element.
	ElemToken
)

// Iterator walks a container in document order, emitting KeyToken/ValueToken
// pairs for objects and ElemToken events for arrays.
type Iterator struct {
	c       *Container
	i       int
	pending bool
}

// Iterate returns a fresh iterator over c.
func (c *Container) Iterate() *Iterator {
	return &Iterator{c: c}
}

// Next returns the next event and its value. After Done the value is the
// zero Value.
func (it *Iterator) Next() (Token, Value) {
	if it.c.object {
		if it.pending {
			it.pending = false
			v := it.c.vals[it.i]
			it.i++
			return ValueToken, v
		}
		if it.i >= len(it.c.keys) {
			return Done, Value{}
		}
		it.pending = true
		return KeyToken, String(it.c.keys[it.i])
	}
	if it.i >= len(it.c.vals) {
		return Done, Value{}
	}
	v := it.c.vals[it.i]
	it.i++
	return ElemToken, v
}
