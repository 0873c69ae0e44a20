package path

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Constructors for building path programs. Each call allocates a fresh node;
// a node must appear in at most one program.

// Root returns a '$' accessor.
func Root() *Node { return &Node{op: OpRoot} }

// Current returns an '@' accessor.
func Current() *Node { return &Node{op: OpCurrent} }

// Key returns a '.name' member accessor.
func Key(name string) *Node { return &Node{op: OpKey, str: name} }

// AnyKey returns a '.*' wildcard member accessor.
func AnyKey() *Node { return &Node{op: OpAnyKey} }

// AnyArray returns a '[*]' wildcard element accessor.
func AnyArray() *Node { return &Node{op: OpAnyArray} }

// Last returns the 'last' subscript item.
func Last() *Node { return &Node{op: OpLast} }

// IndexArray returns a '[s, ...]' accessor over the given subscripts.
func IndexArray(subs ...Subscript) *Node {
	return &Node{op: OpIndexArray, subs: subs}
}

// Index returns a single-expression subscript entry.
func Index(expr *Node) Subscript { return Subscript{From: expr} }

// IndexAt returns a constant single-index subscript entry.
func IndexAt(i int64) Subscript { return Subscript{From: Integer(i)} }

// Range returns a 'from TO to' subscript entry.
func Range(from, to *Node) Subscript { return Subscript{From: from, To: to} }

// Any returns a '.**{first,last}' accessor. Use AnyUnbounded for an open
// upper bound; Any(0, AnyUnbounded) is plain '.**'.
func Any(first, last uint32) *Node {
	return &Node{op: OpAny, anyFirst: first, anyLast: last}
}

// Filter returns a '?(pred)' filter over the given predicate subtree.
func Filter(pred *Node) *Node { return &Node{op: OpFilter, arg: pred} }

// Variable returns a '$name' variable reference.
func Variable(name string) *Node { return &Node{op: OpVariable, str: name} }

// Null returns the 'null' literal.
func Null() *Node { return &Node{op: OpNull} }

// Bool returns a boolean literal.
func Bool(b bool) *Node { return &Node{op: OpBool, boolean: b} }

// String returns a string literal.
func String(s string) *Node { return &Node{op: OpString, str: s} }

// Number returns a numeric literal from decimal text. Panics on malformed
// input; literals come from a parser or test code, where the text is fixed.
func Number(text string) *Node {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		panic("path: malformed numeric literal " + text)
	}
	return &Node{op: OpNumeric, num: d}
}

// Integer returns an integer numeric literal.
func Integer(i int64) *Node {
	return &Node{op: OpNumeric, num: apd.New(i, 0)}
}

// Binary returns a binary arithmetic or comparison node. op must be one of
// the OpAdd..OpMod or OpEqual..OpGreaterOrEqual kinds.
func Binary(op Op, left, right *Node) *Node {
	return &Node{op: op, left: left, right: right}
}

// Unary returns a unary '+expr' or '-expr' node.
func Unary(op Op, arg *Node) *Node { return &Node{op: op, arg: arg} }

// And returns a 'left && right' predicate.
func And(left, right *Node) *Node {
	return &Node{op: OpAnd, left: left, right: right}
}

// Or returns a 'left || right' predicate.
func Or(left, right *Node) *Node {
	return &Node{op: OpOr, left: left, right: right}
}

// Not returns a '!(pred)' predicate.
func Not(pred *Node) *Node { return &Node{op: OpNot, arg: pred} }

// IsUnknown returns a '(pred) is unknown' predicate.
func IsUnknown(pred *Node) *Node { return &Node{op: OpIsUnknown, arg: pred} }

// Exists returns an 'exists(expr)' predicate.
func Exists(expr *Node) *Node { return &Node{op: OpExists, arg: expr} }

// StartsWith returns a 'whole starts with initial' predicate.
func StartsWith(whole, initial *Node) *Node {
	return &Node{op: OpStartsWith, left: whole, right: initial}
}

// LikeRegex returns an 'expr like_regex pattern flag fs' predicate. fs is
// the flag string as written in the path text, e.g. "i" or "sx".
func LikeRegex(expr *Node, pattern, fs string) *Node {
	var flags RegexFlags
	for _, r := range fs {
		switch r {
		case 'i':
			flags |= RegexICase
		case 's':
			flags |= RegexDotAll
		case 'm':
			flags |= RegexMLine
		case 'x':
			flags |= RegexWSpace
		case 'q':
			flags |= RegexQuote
		}
	}
	return &Node{op: OpLikeRegex, left: expr, pattern: pattern, flags: flags}
}

// Method returns an argument-less item method node: OpType, OpSize, OpAbs,
// OpFloor, OpCeiling, OpDouble or OpKeyValue.
func Method(op Op) *Node { return &Node{op: op} }

// Datetime returns a '.datetime()' method node with no template.
func Datetime() *Node { return &Node{op: OpDatetime} }

// DatetimeTemplate returns a '.datetime(template)' method node. The optional
// tz argument is the timezone subtree (a string zone name or an integer
// offset in seconds).
func DatetimeTemplate(template string, tz *Node) *Node {
	return &Node{op: OpDatetime, left: String(template), right: tz}
}

// Chain links items left to right into one accessor chain and returns the
// head. Each item's Next is set to its successor; already-linked tails are
// preserved, so Chain(a, Chain(b, c)) equals Chain(a, b, c).
func Chain(items ...*Node) *Node {
	if len(items) == 0 {
		return nil
	}
	for i := 0; i < len(items)-1; i++ {
		tail := items[i]
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = items[i+1]
	}
	return items[0]
}

// Lax returns a lax-mode program rooted at the chained items.
func Lax(items ...*Node) *Path { return New(Chain(items...), true) }

// Strict returns a strict-mode program rooted at the chained items.
func Strict(items ...*Node) *Path { return New(Chain(items...), false) }

// DebugString renders a rough, non-parseable sketch of the program for logs
// and test failure messages.
func (p *Path) DebugString() string {
	var b strings.Builder
	if !p.lax {
		b.WriteString("strict ")
	}
	for n := p.root; n != nil; n = n.next {
		b.WriteString(n.op.String())
		if n.op == OpKey || n.op == OpVariable {
			b.WriteByte('(')
			b.WriteString(n.str)
			b.WriteByte(')')
		}
		if n.next != nil {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
