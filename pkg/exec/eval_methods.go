package exec

import (
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// executeNumericItemMethod implements .abs(), .floor() and .ceiling().
func (c *execContext) executeNumericItemMethod(n *path.Node, jb *Item, found *ValueList, unwrap bool) (execResult, error) {
	if unwrap && jb.Type() == TypeArray {
		return c.executeItemUnwrapTargetArray(n, jb, found, false)
	}

	num, ok := jb.asNumber()
	if !ok {
		return c.raise(newError(ErrNonNumericItem,
			"SQL/JSON item is not a numeric value",
			"jsonpath item method "+n.Op().String()+
				" can only be applied to a numeric value"))
	}

	var out apd.Decimal
	var err error
	switch n.Op() {
	case path.OpAbs:
		out.Abs(num)
	case path.OpFloor:
		_, err = numericCtx.Floor(&out, num)
	default:
		_, err = numericCtx.Ceil(&out, num)
	}
	if err != nil {
		return c.raise(mapNumericErr(err))
	}

	if !n.HasNext() && found == nil {
		return execOK, nil
	}
	return c.executeNextItem(n, nil, newItem(jsonb.Number(&out)), found, false)
}

// executeDoubleMethod implements .double(): numbers must be representable
// as IEEE-754 doubles, strings are parsed as doubles, infinities are
// rejected.
func (c *execContext) executeDoubleMethod(n *path.Node, jb *Item, found *ValueList, unwrap bool) (execResult, error) {
	if unwrap && jb.Type() == TypeArray {
		return c.executeItemUnwrapTargetArray(n, jb, found, false)
	}

	var out *Item
	switch jb.Type() {
	case TypeNumber:
		f, err := jb.val.Decimal().Float64()
		if err != nil || math.IsInf(f, 0) {
			return c.raise(newError(ErrNonNumericItem,
				"SQL/JSON item is not a numeric value",
				"jsonpath item method .double() can only be applied to a numeric value"))
		}
		out = jb
	case TypeString:
		f, err := strconv.ParseFloat(jb.val.Str(), 64)
		if err != nil || math.IsInf(f, 0) {
			return c.raise(newError(ErrNonNumericItem,
				"SQL/JSON item is not a numeric value",
				"jsonpath item method .double() can only be applied to a numeric value"))
		}
		var d apd.Decimal
		if _, err := d.SetFloat64(f); err != nil {
			return c.raise(newError(ErrNonNumericItem,
				"SQL/JSON item is not a numeric value", err.Error()))
		}
		out = newItem(jsonb.Number(&d))
	default:
		return c.raise(newError(ErrNonNumericItem,
			"SQL/JSON item is not a numeric value",
			"jsonpath item method .double() can only be applied to a string or numeric value"))
	}

	return c.executeNextItem(n, nil, out, found, true)
}

// executeDatetimeMethod implements .datetime([template [, timezone]]).
//
// With a template the input must match it exactly. Without one, a fixed
// list of ISO formats is tried in order. The optional timezone argument is
// either a zone name or a signed offset in seconds (negated to the internal
// seconds-west convention); it supplies a default zone for values whose
// text carries none.
func (c *execContext) executeDatetimeMethod(n *path.Node, jb *Item, found *ValueList, unwrap bool) (execResult, error) {
	if unwrap && jb.Type() == TypeArray {
		return c.executeItemUnwrapTargetArray(n, jb, found, false)
	}

	input, ok := jb.asString()
	if !ok {
		return c.raise(newError(ErrInvalidDatetimeArg,
			"invalid argument for SQL/JSON datetime function",
			"jsonpath item method .datetime() is applied to not a string"))
	}

	resolve, r, err := c.datetimeZoneResolver(n, jb)
	if err != nil || r == execError {
		return r, err
	}
	if resolve == nil && c.tz != nil {
		loc := c.tz
		resolve = func(wall time.Time) (int32, bool) {
			return locationOffsetWest(loc, wall), true
		}
	}

	var dt *DateTime
	if n.Left() != nil {
		tpl := n.Left().Text()
		if tpl != "" {
			parsed, perr := tryParseDatetime(tpl, input, resolve)
			if perr != nil {
				return c.raise(newError(ErrInvalidDatetimeArg,
					"invalid argument for SQL/JSON datetime function",
					perr.Error()))
			}
			dt = parsed
		}
	}

	if dt == nil {
		// Try to recognize one of the ISO formats.
		for _, tpl := range isoTemplates {
			if parsed, perr := tryParseDatetime(tpl, input, resolve); perr == nil {
				dt = parsed
				break
			}
		}
		if dt == nil {
			return c.raise(newError(ErrInvalidDatetimeArg,
				"invalid argument for SQL/JSON datetime function",
				"unrecognized datetime format").
				WithHint("use datetime template argument for explicit format specification"))
		}
	}

	if !n.HasNext() && found == nil {
		return execOK, nil
	}
	return c.executeNextItem(n, nil, newDatetimeItem(dt), found, false)
}

// datetimeZoneResolver evaluates the optional timezone argument of
// .datetime(). The argument must be a singleton string zone name or an
// integer offset in seconds.
func (c *execContext) datetimeZoneResolver(n *path.Node, jb *Item) (tzResolver, execResult, error) {
	arg := n.Right()
	if arg == nil {
		return nil, execOK, nil
	}

	var tzseq ValueList
	res, err := c.executeItem(arg, jb, &tzseq)
	if err != nil || res == execError {
		return nil, res, err
	}

	badArg := func() (tzResolver, execResult, error) {
		r, err := c.raise(newError(ErrInvalidDatetimeArg,
			"invalid argument for SQL/JSON datetime function",
			"timezone argument of jsonpath item method .datetime() is not a singleton string or number"))
		return nil, r, err
	}

	if tzseq.Length() != 1 {
		return badArg()
	}
	tzval := tzseq.Head()

	if name, ok := tzval.asString(); ok {
		loc, lerr := time.LoadLocation(name)
		if lerr != nil {
			r, err := c.raise(newError(ErrInvalidDatetimeArg,
				"invalid argument for SQL/JSON datetime function",
				"time zone "+strconv.Quote(name)+" not recognized"))
			return nil, r, err
		}
		return func(wall time.Time) (int32, bool) {
			return locationOffsetWest(loc, wall), true
		}, execOK, nil
	}

	num, ok := tzval.asNumber()
	if !ok {
		return badArg()
	}
	secs, ok := truncateToInt32(num)
	if !ok || int32(secs) == noTimezone {
		r, err := c.raise(newError(ErrInvalidDatetimeArg,
			"invalid argument for SQL/JSON datetime function",
			"timezone argument of jsonpath item method .datetime() is out of integer range"))
		return nil, r, err
	}
	// The argument is an ISO east-positive offset; internally offsets are
	// kept as seconds west of UTC.
	west := int32(-secs)
	return func(time.Time) (int32, bool) {
		return west, true
	}, execOK, nil
}

// locationOffsetWest resolves the seconds-west offset of a named zone at
// the given wall-clock time.
func locationOffsetWest(loc *time.Location, wall time.Time) int32 {
	local := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
	_, east := local.Zone()
	return int32(-east)
}

// keyValueIDMultiplier separates the base object id from the container
// offset in generated .keyvalue() identifiers: the first round decimal
// number greater than the maximal container offset.
const keyValueIDMultiplier = int64(10000000000)

// executeKeyValueMethod implements .keyvalue().
//
// The method returns a sequence of the object's key-value pairs as objects
// '{"key": k, "value": v, "id": id}'. The id identifies the source object:
// id = 10^10 * base_object_id + offset_of_object_within_base. Each emitted
// pair object becomes the base object for any chained .keyvalue(), under a
// freshly allocated id.
func (c *execContext) executeKeyValueMethod(n *path.Node, jb *Item, found *ValueList) (execResult, error) {
	cont := jb.container()
	if cont == nil || !cont.IsObject() {
		return c.raise(newError(ErrObjectNotFound,
			"JSON object not found",
			"jsonpath item method .keyvalue() can only be applied to an object"))
	}

	if cont.Len() == 0 {
		return execNotFound, nil // no key-value pairs
	}

	hasNext := n.HasNext()

	// Construct the object id from its base object and offset inside it.
	offset := int64(cont.Offset())
	if c.baseObject.jbc != nil {
		offset -= int64(c.baseObject.jbc.Offset())
		if offset < 0 {
			offset = int64(cont.Offset())
		}
	}
	id := int64(c.baseObject.id)*keyValueIDMultiplier + offset
	idVal := jsonb.NumberFromInt64(id)

	res := execNotFound
	for i := 0; i < cont.Len(); i++ {
		res = execOK
		if !hasNext && found == nil {
			break
		}

		obj := jsonb.NewObject(
			jsonb.Field{Key: "key", Val: jsonb.String(cont.Key(i))},
			jsonb.Field{Key: "value", Val: cont.Val(i)},
			jsonb.Field{Key: "id", Val: idVal},
		)
		pair := newItem(jsonb.Binary(obj))

		prevBase := c.setBaseObject(pair, c.lastGeneratedObjectID)
		c.lastGeneratedObjectID++

		r, err := c.executeNextItem(n, nil, pair, found, true)
		c.baseObject = prevBase

		if err != nil || r == execError {
			return r, err
		}
		if r == execOK && found == nil {
			break
		}
		res = r
	}

	return res, nil
}
