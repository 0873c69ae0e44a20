package sqljson_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/gistol/sqljson"
	"github.com/gistol/sqljson/pkg/exec"
	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

var ctx = context.Background()

func TestQueryDecodesValues(t *testing.T) {
	data := `{"n":1.5,"s":"x","b":true,"z":null,"arr":[1,2],"obj":{"k":"v"}}`

	for _, tc := range []struct {
		key  string
		want any
	}{
		{"n", json.Number("1.5")},
		{"s", "x"},
		{"b", true},
		{"z", nil},
		{"arr", []any{json.Number("1"), json.Number("2")}},
		{"obj", map[string]any{"k": "v"}},
	} {
		p := path.Lax(path.Root(), path.Key(tc.key))
		got, err := sqljson.Query(ctx, p, data)
		if err != nil {
			t.Fatalf("Query(%s): %v", tc.key, err)
		}
		if len(got) != 1 || !reflect.DeepEqual(got[0], tc.want) {
			t.Errorf("Query(%s) = %#v, want [%#v]", tc.key, got, tc.want)
		}
	}
}

func TestDocumentForms(t *testing.T) {
	p := path.Lax(path.Root(), path.Key("a"))

	for _, d := range []sqljson.Doc{
		`{"a":1}`,
		[]byte(`{"a":1}`),
		jsonb.MustParse(`{"a":1}`),
	} {
		ok, err := sqljson.Exists(ctx, p, d)
		if err != nil || !ok {
			t.Errorf("Exists(%T) = %v, %v", d, ok, err)
		}
	}

	if _, err := sqljson.Exists(ctx, p, 42); err == nil {
		t.Error("unsupported document type accepted")
	}
}

func TestExistsAndMatch(t *testing.T) {
	data := `{"a":1,"b":"x"}`

	p := path.Lax(path.Root(), path.Key("a"))
	ok, err := sqljson.Exists(ctx, p, data)
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}

	pred := path.Lax(path.Binary(path.OpEqual,
		path.Chain(path.Root(), path.Key("b")), path.String("x")))
	ok, err = sqljson.Match(ctx, pred, data)
	if err != nil || !ok {
		t.Errorf("Match = %v, %v", ok, err)
	}
}

func TestQueryArrayAndFirst(t *testing.T) {
	data := `{"a":[10,20,30]}`
	p := path.Lax(path.Root(), path.Key("a"), path.AnyArray())

	arr, err := sqljson.QueryArray(ctx, p, data)
	if err != nil || string(arr) != `[10,20,30]` {
		t.Errorf("QueryArray = %s, %v", arr, err)
	}

	first, err := sqljson.QueryFirst(ctx, p, data)
	if err != nil || first != json.Number("10") {
		t.Errorf("QueryFirst = %#v, %v", first, err)
	}

	none, err := sqljson.QueryFirst(ctx, path.Lax(path.Root(), path.Key("x")), data)
	if err != nil || none != nil {
		t.Errorf("QueryFirst on empty = %#v, %v", none, err)
	}

	s, ok, err := sqljson.QueryFirstText(ctx,
		path.Lax(path.Root(), path.Key("a"), path.IndexArray(path.IndexAt(0))), data)
	if err != nil || !ok || s != "10" {
		t.Errorf("QueryFirstText = %q, %v, %v", s, ok, err)
	}
}

func TestSilentOption(t *testing.T) {
	p := path.Strict(path.Root(), path.Key("missing"))

	if _, err := sqljson.Query(ctx, p, `{}`); err == nil {
		t.Error("strict missing member did not error")
	}

	got, err := sqljson.Query(ctx, p, `{}`, exec.WithSilent(true))
	if err != nil || len(got) != 0 {
		t.Errorf("silent Query = %v, %v", got, err)
	}

	_, err = sqljson.Exists(ctx, p, `{}`, exec.WithSilent(true))
	if !errors.Is(err, exec.ErrNull) {
		t.Errorf("silent Exists err = %v, want ErrNull", err)
	}
}

func TestDatetimeComparisonThroughPredicate(t *testing.T) {
	data := `{"from":"2024-01-30","to":"2024-01-31"}`
	pred := path.Lax(path.Binary(path.OpLess,
		path.Chain(path.Root(), path.Key("from"), path.Datetime()),
		path.Chain(path.Root(), path.Key("to"), path.Datetime())))

	ok, err := sqljson.Match(ctx, pred, data)
	if err != nil || !ok {
		t.Errorf("Match = %v, %v", ok, err)
	}
}

func TestDatetimeRendersAsISOString(t *testing.T) {
	p := path.Lax(path.Root(), path.Datetime())
	got, err := sqljson.Query(ctx, p, `"2024-01-31 12:00:00"`)
	if err != nil || len(got) != 1 || got[0] != "2024-01-31T12:00:00" {
		t.Errorf("Query = %#v, %v", got, err)
	}
}
