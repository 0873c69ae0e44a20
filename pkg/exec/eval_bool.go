package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// executeBoolItem evaluates a boolean-valued path expression. Errors inside
// a predicate never escape: every failing operand evaluation collapses to
// unknown, the third logic value.
func (c *execContext) executeBoolItem(n *path.Node, jb *Item, canHaveNext bool) ternary {
	if !canHaveNext && n.HasNext() {
		// The parser never chains items after a nested predicate; treat it
		// as an unknown result rather than guessing.
		return ternUnknown
	}

	switch n.Op() {
	case path.OpAnd:
		res := c.executeBoolItem(n.Left(), jb, false)
		if res == ternFalse {
			return ternFalse
		}
		// The standard requires the second operand to be checked even when
		// the first is unknown.
		res2 := c.executeBoolItem(n.Right(), jb, false)
		if res2 == ternTrue {
			return res
		}
		return res2

	case path.OpOr:
		res := c.executeBoolItem(n.Left(), jb, false)
		if res == ternTrue {
			return ternTrue
		}
		res2 := c.executeBoolItem(n.Right(), jb, false)
		if res2 == ternFalse {
			return res
		}
		return res2

	case path.OpNot:
		switch c.executeBoolItem(n.Arg(), jb, false) {
		case ternUnknown:
			return ternUnknown
		case ternTrue:
			return ternFalse
		default:
			return ternTrue
		}

	case path.OpIsUnknown:
		if c.executeBoolItem(n.Arg(), jb, false) == ternUnknown {
			return ternTrue
		}
		return ternFalse

	case path.OpEqual, path.OpNotEqual, path.OpLess, path.OpGreater,
		path.OpLessOrEqual, path.OpGreaterOrEqual:
		return c.executePredicate(n, n.Left(), n.Right(), jb, true,
			c.execComparison, nil)

	case path.OpStartsWith:
		return c.executePredicate(n, n.Left(), n.Right(), jb, false,
			execStartsWith, nil)

	case path.OpLikeRegex:
		lrc := &likeRegexContext{}
		return c.executePredicate(n, n.Left(), nil, jb, false,
			c.execLikeRegex, lrc)

	case path.OpExists:
		arg := n.Arg()
		if c.strictAbsenceOfErrors() {
			// In strict mode a complete list of values is needed to check
			// that there are no errors at all.
			var vals ValueList
			res := c.executeItemOptUnwrapResultNoThrow(arg, jb, false, &vals)
			if res == execError {
				return ternUnknown
			}
			if vals.IsEmpty() {
				return ternFalse
			}
			return ternTrue
		}
		res := c.executeItemOptUnwrapResultNoThrowProbe(arg, jb)
		switch res {
		case execError:
			return ternUnknown
		case execOK:
			return ternTrue
		default:
			return ternFalse
		}

	default:
		return ternUnknown
	}
}

// executeItemOptUnwrapResultNoThrowProbe is the existence probe form: no
// sink sequence, stop at the first satisfying item.
func (c *execContext) executeItemOptUnwrapResultNoThrowProbe(n *path.Node, jb *Item) execResult {
	saved := c.throwErrors
	c.throwErrors = false
	res, err := c.executeItemOptUnwrapResult(n, jb, false, nil)
	c.throwErrors = saved
	if err != nil {
		return execError
	}
	return res
}

// executeNestedBoolItem evaluates a filter predicate with the current
// SQL/JSON item pushed onto the '@' stack.
func (c *execContext) executeNestedBoolItem(n *path.Node, jb *Item) ternary {
	var entry itemStackEntry
	c.pushItem(&entry, jb)
	res := c.executeBoolItem(n, jb, false)
	c.popItem()
	return res
}

// predicateCallback checks one left/right item pair.
type predicateCallback func(pred *path.Node, lv, rv *Item, param any) ternary

// executePredicate executes a unary or binary predicate.
//
// Predicates have existence semantics: pairs of items from the left and
// right operand sequences are checked, and true is returned as soon as any
// pair satisfies the condition. In strict mode all pairs still need to be
// examined to observe the absence of errors; any error makes the whole
// predicate unknown.
func (c *execContext) executePredicate(pred, larg, rarg *path.Node, jb *Item, unwrapRightArg bool, exec predicateCallback, param any) ternary {
	var lseq, rseq ValueList

	// The left argument is always auto-unwrapped.
	if c.executeItemOptUnwrapResultNoThrow(larg, jb, true, &lseq) == execError {
		return ternUnknown
	}
	if rarg != nil {
		// The right argument is conditionally auto-unwrapped.
		if c.executeItemOptUnwrapResultNoThrow(rarg, jb, unwrapRightArg, &rseq) == execError {
			return ternUnknown
		}
	}

	errored := false
	found := false

	liter := lseq.Iterate()
	for lval := liter.Next(); lval != nil; lval = liter.Next() {
		riter := rseq.Iterate()
		var rval *Item
		first := true
		if rarg != nil {
			rval = riter.Next()
		}

		for rarg != nil && rval != nil || rarg == nil && first {
			switch exec(pred, lval, rval, param) {
			case ternUnknown:
				if c.strictAbsenceOfErrors() {
					return ternUnknown
				}
				errored = true
			case ternTrue:
				if !c.strictAbsenceOfErrors() {
					return ternTrue
				}
				found = true
			}
			first = false
			if rarg != nil {
				rval = riter.Next()
			}
		}
	}

	if found { // possible only in strict mode
		return ternTrue
	}
	if errored { // possible only in lax mode
		return ternUnknown
	}
	return ternFalse
}

// execStartsWith checks whether the 'whole' string starts with the
// 'initial' string. Non-string operands make the pair unknown.
func execStartsWith(_ *path.Node, whole, initial *Item, _ any) ternary {
	w, ok := whole.asString()
	if !ok {
		return ternUnknown
	}
	i, ok := initial.asString()
	if !ok {
		return ternUnknown
	}
	if strings.HasPrefix(w, i) {
		return ternTrue
	}
	return ternFalse
}

// likeRegexContext caches the compiled pattern across the pairs of one
// like_regex predicate evaluation.
type likeRegexContext struct {
	re  *regexp.Regexp
	bad bool
}

// execLikeRegex matches a string item against the predicate's compile-time
// pattern. Non-string items make the pair unknown.
func (c *execContext) execLikeRegex(pred *path.Node, str, _ *Item, param any) ternary {
	s, ok := str.asString()
	if !ok {
		return ternUnknown
	}

	lrc := param.(*likeRegexContext)
	if lrc.bad {
		return ternUnknown
	}
	if lrc.re == nil {
		re, err := c.compileRegex(pred)
		if err != nil {
			lrc.bad = true
			return ternUnknown
		}
		lrc.re = re
	}

	if lrc.re.MatchString(s) {
		return ternTrue
	}
	return ternFalse
}

// compileRegex translates the predicate's pattern and flags into a Go
// regular expression, consulting the shared cache first.
func (c *execContext) compileRegex(pred *path.Node) (*regexp.Regexp, error) {
	pattern, flags := pred.Regex()
	compile := func() (*regexp.Regexp, error) {
		return regexp.Compile(goRegexPattern(pattern, flags))
	}
	if c.regexes == nil {
		return compile()
	}
	key := fmt.Sprintf("%d\x00%s", flags, pattern)
	return c.regexes.GetOrCompute(key, compile)
}

// goRegexPattern renders the SQL/JSON flag letters onto a Go pattern. By
// default '.' matches newline; the 'm' flag switches to line-sensitive
// matching unless 's' restores dot-all.
func goRegexPattern(pattern string, flags path.RegexFlags) string {
	if flags&path.RegexQuote != 0 {
		pattern = regexp.QuoteMeta(pattern)
	} else if flags&path.RegexWSpace != 0 {
		pattern = stripExpandedWhitespace(pattern)
	}

	mode := ""
	if flags&path.RegexICase != 0 {
		mode += "i"
	}
	if flags&path.RegexMLine != 0 && flags&path.RegexDotAll == 0 {
		mode += "m"
	} else {
		mode += "s"
	}
	return "(?" + mode + ")" + pattern
}

// stripExpandedWhitespace implements the 'x' flag: whitespace and #-to-EOL
// comments outside character classes are ignored.
func stripExpandedWhitespace(pattern string) string {
	var b strings.Builder
	inClass := false
	escaped := false
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if escaped {
			b.WriteByte(ch)
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			b.WriteByte(ch)
			escaped = true
		case '[':
			inClass = true
			b.WriteByte(ch)
		case ']':
			inClass = false
			b.WriteByte(ch)
		case ' ', '\t', '\n', '\r':
			if inClass {
				b.WriteByte(ch)
			}
		case '#':
			if inClass {
				b.WriteByte(ch)
				continue
			}
			for i+1 < len(pattern) && pattern[i+1] != '\n' {
				i++
			}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// appendBoolResult converts a predicate's tri-state outcome to a JSON item
// (true, false, or null for unknown) and executes the next path item.
func (c *execContext) appendBoolResult(n *path.Node, found *ValueList, res ternary) (execResult, error) {
	if !n.HasNext() && found == nil {
		return execOK, nil // found singleton boolean value
	}

	var v *Item
	if res == ternUnknown {
		v = newItem(jsonb.Null())
	} else {
		v = newItem(jsonb.Bool(res == ternTrue))
	}
	return c.executeNextItem(n, nil, v, found, true)
}
