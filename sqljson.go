// Package sqljson executes SQL/JSON path programs over JSON documents.
//
// The package is the convenience surface over the execution engine in
// pkg/exec: it accepts raw JSON text, runs a compiled path program, and
// converts results back to plain Go values.
//
// # Quick Start
//
//	// $.a.b[1]
//	p := path.Lax(path.Root(), path.Key("a"), path.Key("b"),
//	    path.IndexArray(path.IndexAt(1)))
//
//	items, err := sqljson.Query(ctx, p, []byte(`{"a":{"b":[1,2,3]}}`))
//
//	ok, err := sqljson.Exists(ctx, p, []byte(`{"a":{"b":[1,2,3]}}`))
//
// # Modes
//
// A program carries its own lax/strict flag (path.Lax / path.Strict). Lax
// mode auto-wraps scalars, auto-unwraps arrays and treats structural
// mismatches as empty results; strict mode reports them as errors.
//
// # Errors
//
// Suppressible execution errors carry an SQLSTATE code (see exec.Error).
// The exec.WithSilent option converts them into SQL NULL answers: Exists
// and Match return exec.ErrNull, the query functions return empty results.
//
// For detailed documentation, see:
//   - Path programs: github.com/gistol/sqljson/pkg/path
//   - Executor: github.com/gistol/sqljson/pkg/exec
//   - Document model: github.com/gistol/sqljson/pkg/jsonb
package sqljson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gistol/sqljson/pkg/exec"
	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// Version returns the current version of the module.
func Version() string {
	return "1.0.0"
}

// Doc is any accepted document form: raw JSON as []byte or string, or a
// pre-parsed jsonb.Value.
type Doc any

func docValue(doc Doc) (jsonb.Value, error) {
	switch d := doc.(type) {
	case jsonb.Value:
		return d, nil
	case []byte:
		return jsonb.Parse(d)
	case string:
		return jsonb.Parse([]byte(d))
	default:
		return jsonb.Value{}, fmt.Errorf("sqljson: unsupported document type %T", doc)
	}
}

// Exists reports whether the path selects at least one item from the
// document. With exec.WithSilent, a suppressed error yields exec.ErrNull.
func Exists(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) (bool, error) {
	v, err := docValue(doc)
	if err != nil {
		return false, err
	}
	return exec.New(opts...).Exists(ctx, p, v)
}

// Match evaluates a predicate check expression against the document and
// returns its boolean answer. A non-singleton-boolean result is an error,
// or exec.ErrNull with exec.WithSilent.
func Match(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) (bool, error) {
	v, err := docValue(doc)
	if err != nil {
		return false, err
	}
	return exec.New(opts...).Match(ctx, p, v)
}

// Query returns all items the path selects from the document, one Go value
// per item: nil, bool, json.Number, string, []any or map[string]any.
// Datetime items render as ISO strings.
func Query(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) ([]any, error) {
	v, err := docValue(doc)
	if err != nil {
		return nil, err
	}
	seq, err := exec.New(opts...).Query(ctx, p, v)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, seq.Length())
	iter := seq.Iterate()
	for it := iter.Next(); it != nil; it = iter.Next() {
		out = append(out, decodeValue(it.Value()))
	}
	return out, nil
}

// QueryArray returns the selected items wrapped into a JSON array.
func QueryArray(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) ([]byte, error) {
	v, err := docValue(doc)
	if err != nil {
		return nil, err
	}
	return exec.New(opts...).QueryArray(ctx, p, v)
}

// QueryFirst returns the first selected item as a Go value, or nil when
// the path selects nothing.
func QueryFirst(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) (any, error) {
	v, err := docValue(doc)
	if err != nil {
		return nil, err
	}
	it, err := exec.New(opts...).First(ctx, p, v)
	if err != nil || it == nil {
		return nil, err
	}
	return decodeValue(it.Value()), nil
}

// QueryFirstText returns the first selected item rendered as text, with
// scalar strings unquoted. The boolean result reports whether an item
// existed.
func QueryFirstText(ctx context.Context, p *path.Path, doc Doc, opts ...exec.Option) (string, bool, error) {
	v, err := docValue(doc)
	if err != nil {
		return "", false, err
	}
	return exec.New(opts...).FirstText(ctx, p, v)
}

// decodeValue converts a jsonb value to a plain Go value. Numbers become
// json.Number to preserve their full precision.
func decodeValue(v jsonb.Value) any {
	switch v.Kind() {
	case jsonb.KindBool:
		return v.Bool()
	case jsonb.KindNumber:
		return json.Number(v.Decimal().Text('f'))
	case jsonb.KindString:
		return v.Str()
	case jsonb.KindBinary:
		c := v.Container()
		if c.IsObject() {
			m := make(map[string]any, c.Len())
			for i := 0; i < c.Len(); i++ {
				m[c.Key(i)] = decodeValue(c.Val(i))
			}
			return m
		}
		arr := make([]any, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			arr = append(arr, decodeValue(c.Val(i)))
		}
		return arr
	default:
		return nil
	}
}
