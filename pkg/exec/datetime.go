package exec

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateTimeKind tags the temporal type carried by a datetime item.
type DateTimeKind int

const (
	DateKind DateTimeKind = iota
	TimeKind
	TimeTZKind
	TimestampKind
	TimestampTZKind
)

// noTimezone marks a datetime without a usable timezone offset. Coercions
// that need one fail when they meet it.
const noTimezone = int32(math.MinInt32)

// DateTime is the virtual temporal item produced by .datetime(). It exists
// only in memory; serialization renders it as an ISO string.
//
// The tz field follows the internal convention of seconds west of UTC (the
// negation of the ISO offset). It is retained even for kinds that do not
// display it, because cross-type comparison may need it for coercion.
type DateTime struct {
	kind DateTimeKind
	wall time.Time // wall-clock fields for date/timestamp kinds, in UTC location
	usec int64     // microseconds since midnight for time kinds
	tz   int32     // seconds west of UTC, or noTimezone
}

// Kind reports the temporal type.
func (dt *DateTime) Kind() DateTimeKind { return dt.kind }

func (dt *DateTime) typeName() string {
	switch dt.kind {
	case DateKind:
		return "date"
	case TimeKind:
		return "time without time zone"
	case TimeTZKind:
		return "time with time zone"
	case TimestampKind:
		return "timestamp without time zone"
	default:
		return "timestamp with time zone"
	}
}

// ISOString renders the value in ISO 8601 form.
func (dt *DateTime) ISOString() string {
	switch dt.kind {
	case DateKind:
		return dt.wall.Format("2006-01-02")
	case TimestampKind:
		return dt.wall.Format("2006-01-02T15:04:05.999999")
	case TimestampTZKind:
		return dt.wall.Format("2006-01-02T15:04:05.999999") + offsetSuffix(dt.tz)
	case TimeKind:
		return timeOfDayString(dt.usec)
	default:
		return timeOfDayString(dt.usec) + offsetSuffix(dt.tz)
	}
}

func timeOfDayString(usec int64) string {
	sec := usec / 1e6
	frac := usec % 1e6
	s := fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec/60%60, sec%60)
	if frac != 0 {
		s += strings.TrimRight(fmt.Sprintf(".%06d", frac), "0")
	}
	return s
}

// offsetSuffix renders a seconds-west offset as the ISO east-positive
// "+HH:MM" form.
func offsetSuffix(tzWest int32) string {
	east := -int(tzWest)
	sign := "+"
	if east < 0 {
		sign = "-"
		east = -east
	}
	return fmt.Sprintf("%s%02d:%02d", sign, east/3600, east/60%60)
}

func (dt *DateTime) wallMicro() int64 {
	return dt.wall.UnixMicro()
}

// instantMicro converts a date/timestamp kind to an absolute instant,
// reporting false when the needed timezone is unavailable.
func (dt *DateTime) instantMicro() (int64, bool) {
	if dt.tz == noTimezone {
		return 0, false
	}
	return dt.wallMicro() + int64(dt.tz)*1e6, true
}

// utcTimeMicro converts a time kind to microseconds on the UTC clock,
// reporting false when the needed timezone is unavailable.
func (dt *DateTime) utcTimeMicro() (int64, bool) {
	if dt.tz == noTimezone {
		return 0, false
	}
	return dt.usec + int64(dt.tz)*1e6, true
}

// compareDatetime orders two datetime items following the cross-type
// coercion table: date and timestamp kinds compare among themselves
// (promoting to an absolute instant when either side carries a zone), time
// kinds likewise, and the two families are not comparable. The second
// result is false when the pair is uncomparable or a required timezone is
// missing.
func compareDatetime(a, b *DateTime) (int, bool) {
	aTime := a.kind == TimeKind || a.kind == TimeTZKind
	bTime := b.kind == TimeKind || b.kind == TimeTZKind
	if aTime != bTime {
		return 0, false
	}

	if aTime {
		if a.kind == TimeTZKind || b.kind == TimeTZKind {
			av, ok := a.utcTimeMicro()
			if !ok {
				return 0, false
			}
			bv, ok := b.utcTimeMicro()
			if !ok {
				return 0, false
			}
			return compareInt64(av, bv), true
		}
		return compareInt64(a.usec, b.usec), true
	}

	if a.kind == TimestampTZKind || b.kind == TimestampTZKind {
		av, ok := a.instantMicro()
		if !ok {
			return 0, false
		}
		bv, ok := b.instantMicro()
		if !ok {
			return 0, false
		}
		return compareInt64(av, bv), true
	}
	return compareInt64(a.wallMicro(), b.wallMicro()), true
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// isoTemplates is the fixed list of formats tried by .datetime() when no
// template argument is given; the first successful parse wins.
var isoTemplates = []string{
	"yyyy-mm-dd HH24:MI:SS TZH:TZM",
	"yyyy-mm-dd HH24:MI:SS TZH",
	"yyyy-mm-dd HH24:MI:SS",
	"yyyy-mm-dd",
	"HH24:MI:SS TZH:TZM",
	"HH24:MI:SS TZH",
	"HH24:MI:SS",
}

type dtField int

const (
	fLiteral dtField = iota
	fYYYY
	fMM
	fDD
	fHH24
	fMI
	fSS
	fMS
	fUS
	fTZH
	fTZM
)

type dtToken struct {
	field dtField
	lit   byte
}

var templateFields = []struct {
	name  string
	field dtField
	width int
}{
	{"HH24", fHH24, 2},
	{"YYYY", fYYYY, 4},
	{"TZH", fTZH, 2},
	{"TZM", fTZM, 2},
	{"MM", fMM, 2},
	{"DD", fDD, 2},
	{"MI", fMI, 2},
	{"SS", fSS, 2},
	{"MS", fMS, 3},
	{"US", fUS, 6},
}

func fieldWidth(f dtField) int {
	for _, tf := range templateFields {
		if tf.field == f {
			return tf.width
		}
	}
	return 0
}

// scanTemplate tokenizes a datetime template. Field names match
// case-insensitively; any other character is a literal separator.
func scanTemplate(tpl string) ([]dtToken, error) {
	var toks []dtToken
	upper := strings.ToUpper(tpl)
	i := 0
scan:
	for i < len(tpl) {
		for _, tf := range templateFields {
			if strings.HasPrefix(upper[i:], tf.name) {
				toks = append(toks, dtToken{field: tf.field})
				i += len(tf.name)
				continue scan
			}
		}
		c := tpl[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			return nil, fmt.Errorf("unrecognized datetime template field at %q", tpl[i:])
		}
		toks = append(toks, dtToken{field: fLiteral, lit: c})
		i++
	}
	return toks, nil
}

type dtFields struct {
	year, mon, day    int
	hour, min, sec    int
	usec              int
	hasDate, hasTime  bool
	hasTZ             bool
	tzWest            int32
}

// parseByTemplate matches input against the token sequence. The whole input
// must be consumed. A space literal also matches the ISO 'T' separator.
func parseByTemplate(toks []dtToken, input string) (dtFields, error) {
	var f dtFields
	pos := 0
	tzSign := 1

	readDigits := func(width int) (int, error) {
		start := pos
		for pos < len(input) && pos-start < width &&
			input[pos] >= '0' && input[pos] <= '9' {
			pos++
		}
		if pos == start {
			return 0, fmt.Errorf("expected digits at offset %d", start)
		}
		n := 0
		for _, c := range []byte(input[start:pos]) {
			n = n*10 + int(c-'0')
		}
		return n, nil
	}

	for _, tok := range toks {
		switch tok.field {
		case fLiteral:
			if pos >= len(input) {
				return f, fmt.Errorf("unexpected end of input")
			}
			c := input[pos]
			if c != tok.lit && !(tok.lit == ' ' && c == 'T') {
				return f, fmt.Errorf("separator mismatch at offset %d", pos)
			}
			pos++
		case fTZH:
			if pos < len(input) && (input[pos] == '+' || input[pos] == '-') {
				if input[pos] == '-' {
					tzSign = -1
				}
				pos++
			}
			h, err := readDigits(2)
			if err != nil {
				return f, err
			}
			f.hasTZ = true
			f.tzWest = int32(-tzSign * h * 3600)
		case fTZM:
			m, err := readDigits(2)
			if err != nil {
				return f, err
			}
			f.tzWest += int32(-tzSign * m * 60)
		default:
			n, err := readDigits(fieldWidth(tok.field))
			if err != nil {
				return f, err
			}
			switch tok.field {
			case fYYYY:
				f.year, f.hasDate = n, true
			case fMM:
				f.mon, f.hasDate = n, true
			case fDD:
				f.day, f.hasDate = n, true
			case fHH24:
				f.hour, f.hasTime = n, true
			case fMI:
				f.min, f.hasTime = n, true
			case fSS:
				f.sec, f.hasTime = n, true
			case fMS:
				f.usec += n * 1000
				f.hasTime = true
			case fUS:
				f.usec += n
				f.hasTime = true
			}
		}
	}
	if pos != len(input) {
		return f, fmt.Errorf("trailing characters at offset %d", pos)
	}
	return f, nil
}

func (f *dtFields) validate() error {
	if f.hasDate {
		if f.mon < 1 || f.mon > 12 || f.day < 1 || f.day > 31 {
			return fmt.Errorf("date field out of range")
		}
		w := time.Date(f.year, time.Month(f.mon), f.day, 0, 0, 0, 0, time.UTC)
		if w.Year() != f.year || int(w.Month()) != f.mon || w.Day() != f.day {
			return fmt.Errorf("date field out of range")
		}
	}
	if f.hasTime {
		if f.hour > 23 || f.min > 59 || f.sec > 59 {
			return fmt.Errorf("time field out of range")
		}
	}
	if f.hasTZ {
		if f.tzWest < -15*3600 || f.tzWest > 15*3600 {
			return fmt.Errorf("timezone offset out of range")
		}
	}
	if !f.hasDate && !f.hasTime {
		return fmt.Errorf("template carries no datetime fields")
	}
	return nil
}

// tzResolver supplies a default seconds-west offset for a parsed wall-clock
// value when the input text carries no zone of its own.
type tzResolver func(wall time.Time) (int32, bool)

// tryParseDatetime parses input against the template and builds the
// datetime item. The resulting kind is decided by the fields the input
// provided: date+time+zone is a timestamptz, date+time a timestamp, a bare
// date or time keeps its own kind, and a time with zone is a timetz.
func tryParseDatetime(tpl, input string, resolve tzResolver) (*DateTime, error) {
	toks, err := scanTemplate(tpl)
	if err != nil {
		return nil, err
	}
	f, err := parseByTemplate(toks, input)
	if err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	dt := &DateTime{tz: noTimezone}
	if f.hasDate {
		dt.wall = time.Date(f.year, time.Month(f.mon), f.day,
			f.hour, f.min, f.sec, f.usec*1000, time.UTC)
	} else {
		dt.usec = int64(f.hour)*3600e6 + int64(f.min)*60e6 +
			int64(f.sec)*1e6 + int64(f.usec)
	}

	switch {
	case f.hasTZ:
		dt.tz = f.tzWest
	case resolve != nil:
		if tz, ok := resolve(dt.wall); ok {
			dt.tz = tz
		}
	}

	switch {
	case f.hasDate && f.hasTime && f.hasTZ:
		dt.kind = TimestampTZKind
	case f.hasDate && f.hasTime:
		dt.kind = TimestampKind
	case f.hasDate:
		dt.kind = DateKind
	case f.hasTZ:
		dt.kind = TimeTZKind
	default:
		dt.kind = TimeKind
	}
	return dt, nil
}
