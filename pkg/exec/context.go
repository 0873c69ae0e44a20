package exec

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/text/collate"

	"github.com/gistol/sqljson/pkg/cache"
	"github.com/gistol/sqljson/pkg/jsonb"
)

// Vars resolves named path variables ($name).
//
// Lookup returns the variable's value, the container it derives from (the
// variable's base object, used by .keyvalue()), the base object id, and
// whether the variable exists. Count reports the number of variable base
// objects, which seeds the generated-object id counter.
type Vars interface {
	Lookup(name string) (val jsonb.Value, base *jsonb.Container, id int, ok bool)
	Count() int
}

// objectVars serves variables from a single jsonb object; every variable
// shares that object as its base, with id 1.
type objectVars struct {
	c *jsonb.Container
}

// NewVars builds a Vars resolver from a jsonb value, which must be an
// object.
func NewVars(v jsonb.Value) (Vars, error) {
	if !v.IsObject() {
		return nil, newError(ErrInvalidParameter,
			"invalid jsonpath variables", "variables must be a JSON object")
	}
	return objectVars{c: v.Container()}, nil
}

// MustVars is NewVars over JSON text, panicking on malformed input.
// Intended for tests and examples.
func MustVars(data string) Vars {
	v, err := jsonb.Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	vars, err := NewVars(v)
	if err != nil {
		panic(err)
	}
	return vars
}

func (o objectVars) Lookup(name string) (jsonb.Value, *jsonb.Container, int, bool) {
	v, ok := o.c.Lookup(name)
	if !ok {
		return jsonb.Value{}, nil, -1, false
	}
	return v, o.c, 1, true
}

func (o objectVars) Count() int { return 1 }

// baseObjectInfo identifies the object a .keyvalue() result derives from.
type baseObjectInfo struct {
	jbc *jsonb.Container
	id  int
}

// itemStackEntry is one frame of the '@' stack. Frames live in local
// variables of the pushing call; the stack itself is just the chain of
// parent pointers.
type itemStackEntry struct {
	item   *Item
	parent *itemStackEntry
}

// execContext carries the whole state of one evaluation. It is created per
// top-level call and never shared.
type execContext struct {
	ctx  context.Context
	vars Vars

	root  *Item
	stack *itemStackEntry

	baseObject            baseObjectInfo
	lastGeneratedObjectID int

	// innermostArraySize is the length of the array whose subscript is
	// currently being evaluated; -1 outside any subscript context. It
	// supplies the value of 'last'.
	innermostArraySize int

	laxMode               bool
	ignoreStructuralErrors bool
	throwErrors           bool

	depth    int
	maxDepth int

	collator *collate.Collator
	tz       *time.Location
	regexes  *cache.Cache[*regexp.Regexp]

	logger *slog.Logger
	debug  bool
}

// strict/lax is decomposed into independent switches so .** and exists()
// can adjust one without the others.
func (c *execContext) strictAbsenceOfErrors() bool { return !c.laxMode }
func (c *execContext) autoUnwrap() bool            { return c.laxMode }
func (c *execContext) autoWrap() bool              { return c.laxMode }

func (c *execContext) pushItem(entry *itemStackEntry, it *Item) {
	entry.item = it
	entry.parent = c.stack
	c.stack = entry
}

func (c *execContext) popItem() {
	c.stack = c.stack.parent
}

// setBaseObject records it as the current base object under the given id
// and returns the previous base for restoration.
func (c *execContext) setBaseObject(it *Item, id int) baseObjectInfo {
	prev := c.baseObject
	c.baseObject = baseObjectInfo{jbc: it.container(), id: id}
	return prev
}

// enter guards each recursion step: it enforces the depth ceiling and polls
// the caller's cancellation hook. Its errors are hard errors, never
// suppressed by silent mode.
func (c *execContext) enter() error {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		return newError(ErrStatementTooComplex,
			"jsonpath recursion limit exceeded", "")
	}
	if c.ctx != nil {
		if err := c.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *execContext) exit() {
	c.depth--
}

// raise reports a suppressible execution error: returned to the caller when
// errors are being thrown, swallowed into a bare error status otherwise.
func (c *execContext) raise(err *Error) (execResult, error) {
	if c.throwErrors {
		return execError, err
	}
	return execError, nil
}
