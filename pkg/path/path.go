// Package path defines the compiled SQL/JSON path program consumed by the
// executor: an immutable tree of path items plus a read-only cursor surface
// over it.
//
// The package does not parse path text. A front-end parser (or test code)
// builds programs with the constructor functions in build.go and links
// accessor chains with Chain.
package path

import (
	"github.com/cockroachdb/apd/v3"
)

// Op identifies the kind of a path item.
type Op int

const (
	// Literals.
	OpNull Op = iota
	OpString
	OpNumeric
	OpBool

	// Boolean predicates.
	OpAnd
	OpOr
	OpNot
	OpIsUnknown
	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessOrEqual
	OpGreaterOrEqual
	OpExists
	OpStartsWith
	OpLikeRegex

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPlus
	OpMinus

	// Accessors.
	OpAnyArray
	OpAnyKey
	OpIndexArray
	OpAny
	OpKey
	OpCurrent
	OpRoot
	OpVariable
	OpFilter
	OpLast

	// Item methods.
	OpType
	OpSize
	OpAbs
	OpFloor
	OpCeiling
	OpDouble
	OpDatetime
	OpKeyValue
)

var opNames = map[Op]string{
	OpNull: "null", OpString: "string", OpNumeric: "numeric", OpBool: "bool",
	OpAnd: "&&", OpOr: "||", OpNot: "!", OpIsUnknown: "is unknown",
	OpEqual: "==", OpNotEqual: "!=", OpLess: "<", OpGreater: ">",
	OpLessOrEqual: "<=", OpGreaterOrEqual: ">=", OpExists: "exists",
	OpStartsWith: "starts with", OpLikeRegex: "like_regex",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpPlus: "+", OpMinus: "-",
	OpAnyArray: "[*]", OpAnyKey: ".*", OpIndexArray: "[subscript]",
	OpAny: ".**", OpKey: ".key", OpCurrent: "@", OpRoot: "$",
	OpVariable: "$variable", OpFilter: "?()", OpLast: "last",
	OpType: ".type()", OpSize: ".size()", OpAbs: ".abs()",
	OpFloor: ".floor()", OpCeiling: ".ceiling()", OpDouble: ".double()",
	OpDatetime: ".datetime()", OpKeyValue: ".keyvalue()",
}

// String returns the operator's path-language spelling.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "unknown"
}

// RegexFlags holds the like_regex flag letters converted at compile time.
type RegexFlags uint8

const (
	// RegexICase is the 'i' flag: case-insensitive matching.
	RegexICase RegexFlags = 1 << iota
	// RegexDotAll is the 's' flag: '.' matches newline.
	RegexDotAll
	// RegexMLine is the 'm' flag: '^' and '$' match at line boundaries.
	RegexMLine
	// RegexWSpace is the 'x' flag: ignore whitespace in the pattern.
	RegexWSpace
	// RegexQuote is the 'q' flag: the pattern is a literal string.
	RegexQuote
)

// Subscript is one entry of an [subscript, ...] accessor: a single index
// expression, or a from/to range when To is non-nil.
type Subscript struct {
	From *Node
	To   *Node
}

// Node is one immutable item of a compiled path program. A node may carry a
// literal payload, argument subtrees, and a link to the next item in an
// accessor chain.
type Node struct {
	op    Op
	next  *Node
	arg   *Node // single argument (filter, exists, !, is unknown, unary +/-)
	left  *Node
	right *Node

	str     string // key name, string literal, variable name
	num     *apd.Decimal
	boolean bool

	subs []Subscript // OpIndexArray

	anyFirst uint32 // OpAny lower bound; 0 means the item itself
	anyLast  uint32 // OpAny upper bound; AnyUnbounded for no limit

	pattern string // OpLikeRegex
	flags   RegexFlags
}

// AnyUnbounded is the .** upper bound meaning "no depth limit".
const AnyUnbounded = ^uint32(0)

// Op reports the node kind.
func (n *Node) Op() Op { return n.op }

// Next returns the chained item to the right of this one, or nil.
func (n *Node) Next() *Node { return n.next }

// HasNext reports whether a chained item follows this one.
func (n *Node) HasNext() bool { return n.next != nil }

// Arg returns the single argument subtree of filter, exists, !, is unknown
// and unary arithmetic nodes.
func (n *Node) Arg() *Node { return n.arg }

// Left returns the left argument subtree of binary nodes. For OpLikeRegex it
// is the matched expression.
func (n *Node) Left() *Node { return n.left }

// Right returns the right argument subtree of binary nodes. For OpDatetime
// it is the optional timezone argument.
func (n *Node) Right() *Node { return n.right }

// Text returns the string payload of string literals, key accessors and
// variable references.
func (n *Node) Text() string { return n.str }

// Numeric returns the numeric literal payload.
func (n *Node) Numeric() *apd.Decimal { return n.num }

// Bool returns the boolean literal payload.
func (n *Node) Bool() bool { return n.boolean }

// NumSubscripts reports the number of subscript entries of an OpIndexArray
// node.
func (n *Node) NumSubscripts() int { return len(n.subs) }

// SubscriptAt returns the i-th subscript entry.
func (n *Node) SubscriptAt(i int) Subscript { return n.subs[i] }

// AnyBounds returns the depth bounds of an OpAny node.
func (n *Node) AnyBounds() (first, last uint32) { return n.anyFirst, n.anyLast }

// Regex returns the compile-time pattern and flags of an OpLikeRegex node.
func (n *Node) Regex() (pattern string, flags RegexFlags) {
	return n.pattern, n.flags
}

// Path is a complete compiled path program: the head of the item chain plus
// the lax/strict mode flag recorded by the parser.
type Path struct {
	root *Node
	lax  bool
}

// New returns a program rooted at head. lax selects lax-mode semantics;
// false selects strict mode.
func New(head *Node, lax bool) *Path {
	return &Path{root: head, lax: lax}
}

// Root returns the first item of the program.
func (p *Path) Root() *Node { return p.root }

// IsLax reports whether the program runs under lax semantics.
func (p *Path) IsLax() bool { return p.lax }

// IsPredicate reports whether the program's outermost item is a boolean
// predicate, i.e. the program is a predicate check expression.
func (p *Path) IsPredicate() bool {
	if p.root == nil {
		return false
	}
	switch p.root.op {
	case OpAnd, OpOr, OpNot, OpIsUnknown, OpEqual, OpNotEqual, OpLess,
		OpGreater, OpLessOrEqual, OpGreaterOrEqual, OpExists, OpStartsWith,
		OpLikeRegex:
		return true
	}
	return false
}
