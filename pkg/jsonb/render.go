package jsonb

import (
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/pretty"
)

// AppendJSON appends the compact JSON encoding of v to dst.
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		return strconv.AppendBool(dst, v.b)
	case KindNumber:
		return append(dst, v.num.Text('f')...)
	case KindString:
		return appendQuoted(dst, v.str)
	case KindBinary:
		return v.bin.AppendJSON(dst)
	}
	return dst
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	return string(v.AppendJSON(nil))
}

// AppendJSON appends the compact JSON encoding of c to dst.
func (c *Container) AppendJSON(dst []byte) []byte {
	if c.object {
		dst = append(dst, '{')
		for i, k := range c.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, k)
			dst = append(dst, ':')
			dst = c.vals[i].AppendJSON(dst)
		}
		return append(dst, '}')
	}
	dst = append(dst, '[')
	for i, e := range c.vals {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = e.AppendJSON(dst)
	}
	return append(dst, ']')
}

// String returns the compact JSON encoding of c.
func (c *Container) String() string {
	return string(c.AppendJSON(nil))
}

// Pretty returns an indented rendering of c for human consumption.
func (c *Container) Pretty() string {
	return string(pretty.Pretty(c.AppendJSON(nil)))
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string literal. Newline, carriage return
// and tab use their short escapes, other control characters are escaped with
// \uXXXX; invalid UTF-8 bytes are replaced with U+FFFD.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			switch {
			case b == '"':
				dst = append(dst, '\\', '"')
			case b == '\\':
				dst = append(dst, '\\', '\\')
			case b == '\n':
				dst = append(dst, '\\', 'n')
			case b == '\r':
				dst = append(dst, '\\', 'r')
			case b == '\t':
				dst = append(dst, '\\', 't')
			case b < 0x20:
				dst = append(dst, '\\', 'u', '0', '0',
					hexDigits[b>>4], hexDigits[b&0xf])
			default:
				dst = append(dst, b)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, `�`...)
			i++
			continue
		}
		dst = append(dst, s[i:i+size]...)
		i += size
	}
	return append(dst, '"')
}
