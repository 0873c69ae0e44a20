package exec

import (
	"testing"
	"time"
)

func mustParseDT(t *testing.T, tpl, input string) *DateTime {
	t.Helper()
	dt, err := tryParseDatetime(tpl, input, nil)
	if err != nil {
		t.Fatalf("tryParseDatetime(%q, %q): %v", tpl, input, err)
	}
	return dt
}

func TestTemplateParsing(t *testing.T) {
	for _, tc := range []struct {
		tpl, input string
		kind       DateTimeKind
		iso        string
	}{
		{"yyyy-mm-dd", "2024-01-31", DateKind, "2024-01-31"},
		{"dd/mm/yyyy", "31/01/2024", DateKind, "2024-01-31"},
		{"HH24:MI:SS", "12:34:56", TimeKind, "12:34:56"},
		{"yyyy-mm-dd HH24:MI:SS", "2024-01-31 12:00:00", TimestampKind, "2024-01-31T12:00:00"},
		{"yyyy-mm-dd HH24:MI:SS TZH", "2024-01-31 12:00:00 +05", TimestampTZKind, "2024-01-31T12:00:00+05:00"},
		{"yyyy-mm-dd HH24:MI:SS TZH:TZM", "2024-01-31 12:00:00 -03:30", TimestampTZKind, "2024-01-31T12:00:00-03:30"},
		{"HH24:MI:SS TZH", "07:00:00 +01", TimeTZKind, "07:00:00+01:00"},
		{"yyyy-mm-dd HH24:MI:SS.MS", "2024-01-31 12:00:00.250", TimestampKind, "2024-01-31T12:00:00.25"},
	} {
		dt := mustParseDT(t, tc.tpl, tc.input)
		if dt.Kind() != tc.kind {
			t.Errorf("%q: kind = %v, want %v", tc.input, dt.Kind(), tc.kind)
		}
		if got := dt.ISOString(); got != tc.iso {
			t.Errorf("%q: ISOString = %q, want %q", tc.input, got, tc.iso)
		}
	}
}

func TestTemplateParsingErrors(t *testing.T) {
	for _, tc := range []struct{ tpl, input string }{
		{"yyyy-mm-dd", "2024-13-01"},      // month out of range
		{"yyyy-mm-dd", "2024-02-30"},      // day out of range
		{"HH24:MI:SS", "25:00:00"},        // hour out of range
		{"yyyy-mm-dd", "2024/01/31"},      // separator mismatch
		{"yyyy-mm-dd", "2024-01-31 extra"},
		{"yyyy-mm-dd HH24:MI:SS", "2024-01-31"},
		{"yyyy-qq-dd", "2024-01-31"}, // unknown template field
	} {
		if _, err := tryParseDatetime(tc.tpl, tc.input, nil); err == nil {
			t.Errorf("tryParseDatetime(%q, %q) unexpectedly succeeded", tc.tpl, tc.input)
		}
	}
}

func TestTemplateSpaceMatchesISOSeparator(t *testing.T) {
	dt := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS", "2024-01-31T12:00:00")
	if dt.Kind() != TimestampKind {
		t.Errorf("kind = %v, want timestamp", dt.Kind())
	}
}

func TestISOTemplateList(t *testing.T) {
	for _, tc := range []struct {
		input string
		name  string
	}{
		{"2024-01-31 12:00:00 +05:30", "timestamp with time zone"},
		{"2024-01-31 12:00:00 +05", "timestamp with time zone"},
		{"2024-01-31 12:00:00", "timestamp without time zone"},
		{"2024-01-31", "date"},
		{"12:00:00 +05:30", "time with time zone"},
		{"12:00:00 +05", "time with time zone"},
		{"12:00:00", "time without time zone"},
	} {
		var dt *DateTime
		var err error
		for _, tpl := range isoTemplates {
			if dt, err = tryParseDatetime(tpl, tc.input, nil); err == nil {
				break
			}
		}
		if err != nil {
			t.Errorf("%q: no ISO template matched", tc.input)
			continue
		}
		if got := dt.typeName(); got != tc.name {
			t.Errorf("%q: type = %q, want %q", tc.input, got, tc.name)
		}
	}
}

func TestDefaultZoneResolver(t *testing.T) {
	resolve := func(time.Time) (int32, bool) { return -3600, true } // +01:00
	dt, err := tryParseDatetime("yyyy-mm-dd HH24:MI:SS", "2024-01-31 12:00:00", resolve)
	if err != nil {
		t.Fatal(err)
	}
	// The default zone fills the tz field without promoting the kind.
	if dt.Kind() != TimestampKind {
		t.Errorf("kind = %v, want timestamp", dt.Kind())
	}
	if dt.tz != -3600 {
		t.Errorf("tz = %d, want -3600", dt.tz)
	}
}

func TestCompareDatetimeSameKind(t *testing.T) {
	a := mustParseDT(t, "yyyy-mm-dd", "2024-01-30")
	b := mustParseDT(t, "yyyy-mm-dd", "2024-01-31")
	if cmp, ok := compareDatetime(a, b); !ok || cmp >= 0 {
		t.Errorf("date compare = %d, %v", cmp, ok)
	}

	x := mustParseDT(t, "HH24:MI:SS", "11:00:00")
	y := mustParseDT(t, "HH24:MI:SS", "12:00:00")
	if cmp, ok := compareDatetime(x, y); !ok || cmp >= 0 {
		t.Errorf("time compare = %d, %v", cmp, ok)
	}
}

func TestCompareDatetimeCoercions(t *testing.T) {
	date := mustParseDT(t, "yyyy-mm-dd", "2024-01-31")
	ts := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS", "2024-01-31 00:00:00")
	if cmp, ok := compareDatetime(date, ts); !ok || cmp != 0 {
		t.Errorf("date vs timestamp = %d, %v, want equal", cmp, ok)
	}

	// Equal instants in different zones.
	a := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS TZH", "2024-01-31 12:00:00 +05")
	b := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS TZH", "2024-01-31 07:00:00 +00")
	if cmp, ok := compareDatetime(a, b); !ok || cmp != 0 {
		t.Errorf("tstz compare = %d, %v, want equal", cmp, ok)
	}

	tz := mustParseDT(t, "HH24:MI:SS TZH", "12:00:00 +01")
	utc := mustParseDT(t, "HH24:MI:SS TZH", "11:00:00 +00")
	if cmp, ok := compareDatetime(tz, utc); !ok || cmp != 0 {
		t.Errorf("timetz compare = %d, %v, want equal", cmp, ok)
	}
}

func TestCompareDatetimeErrors(t *testing.T) {
	date := mustParseDT(t, "yyyy-mm-dd", "2024-01-31")
	tm := mustParseDT(t, "HH24:MI:SS", "12:00:00")
	if _, ok := compareDatetime(date, tm); ok {
		t.Error("date vs time compared without error")
	}

	// A naive timestamp cannot be coerced to timestamptz without a zone.
	ts := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS", "2024-01-31 12:00:00")
	tstz := mustParseDT(t, "yyyy-mm-dd HH24:MI:SS TZH", "2024-01-31 12:00:00 +00")
	if _, ok := compareDatetime(ts, tstz); ok {
		t.Error("naive timestamp coerced without a zone")
	}

	// With a zone recorded on the item, the coercion works.
	resolve := func(time.Time) (int32, bool) { return 0, true }
	tsZoned, err := tryParseDatetime("yyyy-mm-dd HH24:MI:SS", "2024-01-31 12:00:00", resolve)
	if err != nil {
		t.Fatal(err)
	}
	if cmp, ok := compareDatetime(tsZoned, tstz); !ok || cmp != 0 {
		t.Errorf("zoned timestamp vs tstz = %d, %v, want equal", cmp, ok)
	}

	tmNaive := mustParseDT(t, "HH24:MI:SS", "12:00:00")
	tmTz := mustParseDT(t, "HH24:MI:SS TZH", "12:00:00 +00")
	if _, ok := compareDatetime(tmNaive, tmTz); ok {
		t.Error("naive time coerced without a zone")
	}
}

func TestOffsetSuffix(t *testing.T) {
	for _, tc := range []struct {
		west int32
		want string
	}{
		{-3600, "+01:00"},
		{0, "+00:00"},
		{12600, "-03:30"},
	} {
		if got := offsetSuffix(tc.west); got != tc.want {
			t.Errorf("offsetSuffix(%d) = %q, want %q", tc.west, got, tc.want)
		}
	}
}
