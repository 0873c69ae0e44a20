// Package exec implements the SQL/JSON path executor: a tree-walking
// interpreter over compiled path programs evaluating against the binary
// JSON document model.
//
// The executor supports:
//   - Accessors (.key, .*, [*], [subscripts], .**, filters) with lax-mode
//     auto-wrapping and auto-unwrapping
//   - Tri-state predicate logic (true, false, unknown)
//   - Arbitrary-precision arithmetic over singleton numeric operands
//   - Item methods (.type(), .size(), .abs(), .floor(), .ceiling(),
//     .double(), .datetime(), .keyvalue())
//   - Cancellation via context.Context and a recursion-depth guard
//
// # Example
//
//	e := exec.New(exec.WithSilent(true))
//	ok, err := e.Exists(ctx, p, doc)
//
// Each call owns its evaluation state; an Evaluator is safe for concurrent
// use.
package exec

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/text/collate"

	"github.com/gistol/sqljson/pkg/cache"
	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// execResult is the status of evaluating one path item.
type execResult int

const (
	execOK execResult = iota
	execNotFound
	execError
)

// ternary is the three-valued result of predicate evaluation. It is never
// collapsed to a Go bool before the outermost match, filter or exists site.
type ternary int

const (
	ternFalse ternary = iota
	ternTrue
	ternUnknown
)

// Evaluator executes compiled path programs against documents.
type Evaluator struct {
	opts evalOptions
}

type evalOptions struct {
	vars     Vars
	silent   bool
	collator *collate.Collator
	tz       *time.Location
	maxDepth int
	logger   *slog.Logger
	debug    bool
	regexes  *cache.Cache[*regexp.Regexp]
}

// Option configures an Evaluator.
type Option func(*evalOptions)

// WithVars supplies named variables referenced by the path as $name.
func WithVars(v Vars) Option {
	return func(o *evalOptions) { o.vars = v }
}

// WithSilent suppresses suppressible execution errors: Exists and Match
// report ErrNull, Query and its variants report an empty result. Hard
// errors (cancellation, recursion limit, undefined variables) are still
// returned.
func WithSilent(silent bool) Option {
	return func(o *evalOptions) { o.silent = silent }
}

// WithCollator installs a collation handle used for string ordering in
// comparison predicates. Equality always uses exact byte comparison; with
// no collator, ordering does too.
func WithCollator(c *collate.Collator) Option {
	return func(o *evalOptions) { o.collator = c }
}

// WithTZ supplies a default time zone for .datetime() parsing, used when
// the input string carries no zone and the method has no explicit timezone
// argument.
func WithTZ(loc *time.Location) Option {
	return func(o *evalOptions) { o.tz = loc }
}

// WithMaxDepth sets the recursion-depth ceiling. Zero or negative disables
// the guard.
func WithMaxDepth(depth int) Option {
	return func(o *evalOptions) { o.maxDepth = depth }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *evalOptions) { o.logger = logger }
}

// WithDebug enables debug logging of each evaluation's entry (its mode and
// whether it is an existence probe). Results are not logged.
func WithDebug(enabled bool) Option {
	return func(o *evalOptions) { o.debug = enabled }
}

// WithRegexCache installs a shared cache for compiled like_regex patterns.
func WithRegexCache(c *cache.Cache[*regexp.Regexp]) Option {
	return func(o *evalOptions) { o.regexes = c }
}

// defaultRegexes memoises compiled patterns for evaluators created without
// an explicit cache.
var defaultRegexes = cache.New[*regexp.Regexp](256)

// New creates an Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	options := evalOptions{
		maxDepth: 10000,
		regexes:  defaultRegexes,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return &Evaluator{opts: options}
}

// Exists reports whether the path returns at least one item for the
// document. When the answer is SQL NULL (a suppressed error in silent
// mode), it returns false and ErrNull.
func (e *Evaluator) Exists(ctx context.Context, p *path.Path, doc jsonb.Value) (bool, error) {
	res, err := e.executePath(ctx, p, doc, nil)
	if err != nil {
		return false, err
	}
	if res == execError {
		return false, ErrNull
	}
	return res == execOK, nil
}

// Match evaluates a predicate check expression and returns its boolean
// result. A result that is not a singleton boolean yields an error, or
// ErrNull in silent mode; a singleton null (unknown) yields ErrNull.
func (e *Evaluator) Match(ctx context.Context, p *path.Path, doc jsonb.Value) (bool, error) {
	var found ValueList
	if _, err := e.executePath(ctx, p, doc, &found); err != nil {
		return false, err
	}
	if found.Length() == 1 {
		switch it := found.Head(); it.Type() {
		case TypeBool:
			return it.val.Bool(), nil
		case TypeNull:
			return false, ErrNull
		}
	}
	if !e.opts.silent {
		return false, newError(ErrSingletonRequired,
			"singleton SQL/JSON item required",
			"expression should return a singleton boolean")
	}
	return false, ErrNull
}

// Query returns the sequence of all items the path selects from the
// document. In silent mode a suppressed error yields an empty sequence.
func (e *Evaluator) Query(ctx context.Context, p *path.Path, doc jsonb.Value) (*ValueList, error) {
	var found ValueList
	res, err := e.executePath(ctx, p, doc, &found)
	if err != nil {
		return nil, err
	}
	if res == execError {
		return &ValueList{}, nil
	}
	return &found, nil
}

// QueryArray returns the selected items wrapped into a JSON array.
func (e *Evaluator) QueryArray(ctx context.Context, p *path.Path, doc jsonb.Value) ([]byte, error) {
	found, err := e.Query(ctx, p, doc)
	if err != nil {
		return nil, err
	}
	out := []byte{'['}
	iter := found.Iterate()
	for it := iter.Next(); it != nil; it = iter.Next() {
		if len(out) > 1 {
			out = append(out, ',')
		}
		out = it.Value().AppendJSON(out)
	}
	return append(out, ']'), nil
}

// First returns the first selected item, or nil when the path selects
// nothing.
func (e *Evaluator) First(ctx context.Context, p *path.Path, doc jsonb.Value) (*Item, error) {
	found, err := e.Query(ctx, p, doc)
	if err != nil {
		return nil, err
	}
	return found.Head(), nil
}

// FirstText returns the first selected item rendered as text, with scalar
// strings unquoted. The boolean result reports whether an item existed.
func (e *Evaluator) FirstText(ctx context.Context, p *path.Path, doc jsonb.Value) (string, bool, error) {
	it, err := e.First(ctx, p, doc)
	if err != nil || it == nil {
		return "", false, err
	}
	return it.unquoteText(), true, nil
}

// executePath is the evaluation entry point. The document root becomes both
// '$' and the initial '@'. In strict mode an existence probe still has to
// materialise the full sequence, because every error must be observed
// before the answer is reported.
func (e *Evaluator) executePath(ctx context.Context, p *path.Path, doc jsonb.Value, result *ValueList) (execResult, error) {
	if p == nil || p.Root() == nil {
		return execError, newError(ErrInvalidParameter,
			"invalid jsonpath", "path program is empty")
	}

	root := newItem(doc)
	c := &execContext{
		ctx:                    ctx,
		vars:                   e.opts.vars,
		root:                   root,
		laxMode:                p.IsLax(),
		ignoreStructuralErrors: p.IsLax(),
		throwErrors:            !e.opts.silent,
		innermostArraySize:     -1,
		maxDepth:               e.opts.maxDepth,
		collator:               e.opts.collator,
		tz:                     e.opts.tz,
		regexes:                e.opts.regexes,
		logger:                 e.opts.logger,
		debug:                  e.opts.debug,
	}
	c.lastGeneratedObjectID = 1
	if c.vars != nil {
		c.lastGeneratedObjectID = 1 + c.vars.Count()
	}

	var rootEntry itemStackEntry
	c.pushItem(&rootEntry, root)

	if c.debug {
		c.logger.Debug("jsonpath evaluation",
			slog.Bool("lax", c.laxMode),
			slog.Bool("probe", result == nil))
	}

	if c.strictAbsenceOfErrors() && result == nil {
		var vals ValueList
		res, err := c.executeItem(p.Root(), root, &vals)
		if err != nil || res == execError {
			return execError, err
		}
		if vals.IsEmpty() {
			return execNotFound, nil
		}
		return execOK, nil
	}

	return c.executeItem(p.Root(), root, result)
}
