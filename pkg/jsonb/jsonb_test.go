package jsonb_test

import (
	"strings"
	"testing"

	"github.com/gistol/sqljson/pkg/jsonb"
)

func parse(t *testing.T, data string) jsonb.Value {
	t.Helper()
	v, err := jsonb.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse(%q): %v", data, err)
	}
	return v
}

func TestParseScalars(t *testing.T) {
	for _, tc := range []struct {
		json string
		kind jsonb.Kind
	}{
		{`null`, jsonb.KindNull},
		{`true`, jsonb.KindBool},
		{`false`, jsonb.KindBool},
		{`42`, jsonb.KindNumber},
		{`-3.14`, jsonb.KindNumber},
		{`"hello"`, jsonb.KindString},
	} {
		v := parse(t, tc.json)
		if v.Kind() != tc.kind {
			t.Errorf("Parse(%s): kind = %v, want %v", tc.json, v.Kind(), tc.kind)
		}
	}
}

func TestParseScalarRootUnwrapped(t *testing.T) {
	// A scalar root must never hide behind a Binary container.
	v := parse(t, `"scalar"`)
	if v.Kind() == jsonb.KindBinary {
		t.Fatal("scalar root parsed as binary container")
	}
	if v.Str() != "scalar" {
		t.Errorf("Str() = %q, want %q", v.Str(), "scalar")
	}
}

func TestParseNumberPrecision(t *testing.T) {
	v := parse(t, `0.30000000000000000000000000000000000001`)
	if got := v.Decimal().Text('f'); got != "0.30000000000000000000000000000000000001" {
		t.Errorf("number lost precision: %s", got)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := jsonb.Parse([]byte(`{"a":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestObjectLookup(t *testing.T) {
	v := parse(t, `{"a": 1, "b": {"c": true}, "d": null}`)
	if !v.IsObject() {
		t.Fatal("root is not an object")
	}
	c := v.Container()

	if got, ok := c.Lookup("a"); !ok || got.Kind() != jsonb.KindNumber {
		t.Errorf("Lookup(a) = %v, %v", got, ok)
	}
	if got, ok := c.Lookup("d"); !ok || !got.IsNull() {
		t.Errorf("Lookup(d) = %v, %v", got, ok)
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported ok")
	}

	b, _ := c.Lookup("b")
	if !b.IsObject() {
		t.Fatal("b is not an object")
	}
	if inner, ok := b.Container().Lookup("c"); !ok || !inner.Bool() {
		t.Errorf("b.c = %v, %v", inner, ok)
	}
}

func TestArrayElem(t *testing.T) {
	v := parse(t, `[10, 20, 30]`)
	if !v.IsArray() {
		t.Fatal("root is not an array")
	}
	c := v.Container()
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if e, ok := c.Elem(1); !ok || e.Decimal().String() != "20" {
		t.Errorf("Elem(1) = %v, %v", e, ok)
	}
	if _, ok := c.Elem(3); ok {
		t.Error("Elem(3) reported ok")
	}
	if _, ok := c.Elem(-1); ok {
		t.Error("Elem(-1) reported ok")
	}
}

func TestIterateObject(t *testing.T) {
	v := parse(t, `{"x": 1, "y": 2}`)
	it := v.Container().Iterate()

	var events []jsonb.Token
	var keys []string
	for {
		tok, val := it.Next()
		if tok == jsonb.Done {
			break
		}
		events = append(events, tok)
		if tok == jsonb.KeyToken {
			keys = append(keys, val.Str())
		}
	}

	want := []jsonb.Token{jsonb.KeyToken, jsonb.ValueToken, jsonb.KeyToken, jsonb.ValueToken}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
	if keys[0] != "x" || keys[1] != "y" {
		t.Errorf("keys = %v, want [x y] (document order)", keys)
	}
}

func TestIterateArray(t *testing.T) {
	v := parse(t, `[1, 2, 3]`)
	it := v.Container().Iterate()
	count := 0
	for {
		tok, _ := it.Next()
		if tok == jsonb.Done {
			break
		}
		if tok != jsonb.ElemToken {
			t.Fatalf("unexpected token %v", tok)
		}
		count++
	}
	if count != 3 {
		t.Errorf("iterated %d elements, want 3", count)
	}
}

func TestContainerOffsets(t *testing.T) {
	doc := `{"k":{"a":1,"b":2},"arr":[1,2]}`
	v := parse(t, doc)

	k, _ := v.Container().Lookup("k")
	if got, want := k.Container().Offset(), strings.Index(doc, `{"a"`); got != want {
		t.Errorf("offset of k = %d, want %d", got, want)
	}
	arr, _ := v.Container().Lookup("arr")
	if got, want := arr.Container().Offset(), strings.Index(doc, `[1,2]`); got != want {
		t.Errorf("offset of arr = %d, want %d", got, want)
	}
}

func TestSynthesizedContainers(t *testing.T) {
	obj := jsonb.NewObject(
		jsonb.Field{Key: "key", Val: jsonb.String("a")},
		jsonb.Field{Key: "value", Val: jsonb.NumberFromInt64(1)},
	)
	if !obj.IsObject() || obj.Len() != 2 || obj.Offset() != 0 {
		t.Errorf("NewObject: IsObject=%v Len=%d Offset=%d", obj.IsObject(), obj.Len(), obj.Offset())
	}
	if v, ok := obj.Lookup("key"); !ok || v.Str() != "a" {
		t.Errorf("Lookup(key) = %v, %v", v, ok)
	}

	arr := jsonb.NewArray(jsonb.Bool(true), jsonb.Null())
	if !arr.IsArray() || arr.Len() != 2 {
		t.Errorf("NewArray: IsArray=%v Len=%d", arr.IsArray(), arr.Len())
	}
}

func TestRender(t *testing.T) {
	for _, tc := range []struct {
		json string
		want string
	}{
		{`{"a": 1, "b": [true, null, "x"]}`, `{"a":1,"b":[true,null,"x"]}`},
		{`[1.5, -2, 0.001]`, `[1.5,-2,0.001]`},
		{`{"s": "line\nbreak \"q\""}`, `{"s":"line\nbreak \"q\""}`},
		{`[]`, `[]`},
		{`{}`, `{}`},
	} {
		v := parse(t, tc.json)
		if got := v.String(); got != tc.want {
			t.Errorf("render %s = %s, want %s", tc.json, got, tc.want)
		}
	}
}
