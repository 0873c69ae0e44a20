package exec

import (
	"fmt"

	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// executeItem evaluates one path item with automatic unwrapping of the
// current item in lax mode.
func (c *execContext) executeItem(n *path.Node, jb *Item, found *ValueList) (execResult, error) {
	return c.executeItemOptUnwrapTarget(n, jb, found, c.autoUnwrap())
}

// executeItemOptUnwrapTarget is the main dispatch: it walks the path item
// tree, finds the relevant parts of the document and evaluates expressions
// over them. When unwrap is true the current item is unwrapped if it is an
// array.
func (c *execContext) executeItemOptUnwrapTarget(n *path.Node, jb *Item, found *ValueList, unwrap bool) (execResult, error) {
	if err := c.enter(); err != nil {
		return execError, err
	}
	defer c.exit()

	res := execNotFound

	switch op := n.Op(); op {
	case path.OpAnd, path.OpOr, path.OpNot, path.OpIsUnknown,
		path.OpEqual, path.OpNotEqual, path.OpLess, path.OpGreater,
		path.OpLessOrEqual, path.OpGreaterOrEqual,
		path.OpExists, path.OpStartsWith, path.OpLikeRegex:
		st := c.executeBoolItem(n, jb, true)
		return c.appendBoolResult(n, found, st)

	case path.OpKey:
		key := n.Text()
		switch {
		case jb.Type() == TypeObject:
			v, ok := jb.container().Lookup(key)
			if ok {
				return c.executeNextItem(n, nil, newItem(v), found, false)
			}
			if !c.ignoreStructuralErrors {
				return c.raise(newError(ErrMemberNotFound,
					"JSON object does not contain the specified key",
					fmt.Sprintf("JSON object does not contain key %q", key)))
			}
		case unwrap && jb.Type() == TypeArray:
			return c.executeItemUnwrapTargetArray(n, jb, found, false)
		case !c.ignoreStructuralErrors:
			return c.raise(newError(ErrMemberNotFound,
				"JSON object does not contain the specified key",
				"jsonpath member accessor can only be applied to an object"))
		}

	case path.OpRoot:
		prevBase := c.setBaseObject(c.root, 0)
		res, err := c.executeNextItem(n, nil, c.root, found, true)
		c.baseObject = prevBase
		return res, err

	case path.OpCurrent:
		return c.executeNextItem(n, nil, c.stack.item, found, true)

	case path.OpAnyArray:
		switch {
		case jb.Type() == TypeArray:
			var next *path.Node
			if n.HasNext() {
				next = n.Next()
			}
			return c.executeAnyItem(next, jb.container(), found,
				1, 1, 1, false, c.autoUnwrap())
		case c.autoWrap():
			return c.executeNextItem(n, nil, jb, found, true)
		case !c.ignoreStructuralErrors:
			return c.raise(newError(ErrArrayNotFound,
				"JSON array not found",
				"jsonpath wildcard array accessor can only be applied to an array"))
		}

	case path.OpIndexArray:
		return c.executeIndexArray(n, jb, found)

	case path.OpLast:
		if c.innermostArraySize < 0 {
			return execError, newError(ErrInvalidParameter,
				"evaluating jsonpath LAST outside of array subscript", "")
		}
		if !n.HasNext() && found == nil {
			return execOK, nil
		}
		last := newItem(jsonb.NumberFromInt64(int64(c.innermostArraySize - 1)))
		return c.executeNextItem(n, nil, last, found, false)

	case path.OpAnyKey:
		switch {
		case jb.Type() == TypeObject:
			var next *path.Node
			if n.HasNext() {
				next = n.Next()
			}
			return c.executeAnyItem(next, jb.container(), found,
				1, 1, 1, false, c.autoUnwrap())
		case unwrap && jb.Type() == TypeArray:
			return c.executeItemUnwrapTargetArray(n, jb, found, false)
		case !c.ignoreStructuralErrors:
			return c.raise(newError(ErrObjectNotFound,
				"JSON object not found",
				"jsonpath wildcard member accessor can only be applied to an object"))
		}

	case path.OpAdd, path.OpSub, path.OpMul, path.OpDiv, path.OpMod:
		return c.executeBinaryArithmExpr(n, jb, found)

	case path.OpPlus, path.OpMinus:
		return c.executeUnaryArithmExpr(n, jb, found)

	case path.OpFilter:
		if unwrap && jb.Type() == TypeArray {
			return c.executeItemUnwrapTargetArray(n, jb, found, false)
		}
		st := c.executeNestedBoolItem(n.Arg(), jb)
		if st != ternTrue {
			return execNotFound, nil
		}
		return c.executeNextItem(n, nil, jb, found, true)

	case path.OpAny:
		first, last := n.AnyBounds()
		// Try the current item itself before descending.
		if first == 0 {
			saved := c.ignoreStructuralErrors
			c.ignoreStructuralErrors = true
			r, err := c.executeNextItem(n, n.Next(), jb, found, true)
			c.ignoreStructuralErrors = saved
			if err != nil || r == execError {
				return r, err
			}
			res = r
			if res == execOK && found == nil {
				return res, nil
			}
		}
		if cont := jb.container(); cont != nil {
			var next *path.Node
			if n.HasNext() {
				next = n.Next()
			}
			return c.executeAnyItem(next, cont, found,
				1, first, last, true, c.autoUnwrap())
		}

	case path.OpNull, path.OpBool, path.OpNumeric, path.OpString,
		path.OpVariable:
		if !n.HasNext() && found == nil {
			return execOK, nil
		}
		prevBase := c.baseObject
		v, err := c.getPathItem(n)
		if err != nil {
			return execError, err
		}
		res, err := c.executeNextItem(n, nil, v, found, n.HasNext())
		c.baseObject = prevBase
		return res, err

	case path.OpType:
		v := newItem(jsonb.String(jb.TypeName()))
		return c.executeNextItem(n, nil, v, found, true)

	case path.OpSize:
		size := jb.arraySize()
		if size < 0 {
			if !c.autoWrap() {
				if !c.ignoreStructuralErrors {
					return c.raise(newError(ErrArrayNotFound,
						"JSON array not found",
						"jsonpath item method .size() can only be applied to an array"))
				}
				break
			}
			size = 1
		}
		v := newItem(jsonb.NumberFromInt64(int64(size)))
		return c.executeNextItem(n, nil, v, found, false)

	case path.OpAbs, path.OpFloor, path.OpCeiling:
		return c.executeNumericItemMethod(n, jb, found, unwrap)

	case path.OpDouble:
		return c.executeDoubleMethod(n, jb, found, unwrap)

	case path.OpDatetime:
		return c.executeDatetimeMethod(n, jb, found, unwrap)

	case path.OpKeyValue:
		if unwrap && jb.Type() == TypeArray {
			return c.executeItemUnwrapTargetArray(n, jb, found, false)
		}
		return c.executeKeyValueMethod(n, jb, found)

	default:
		return execError, newError(ErrInvalidParameter,
			"unrecognized jsonpath item type", op.String())
	}

	return res, nil
}

// executeIndexArray implements the [subscript, ...] accessor. Each
// subscript is an independent path expression; 'last' inside it resolves
// against the target array's size.
func (c *execContext) executeIndexArray(n *path.Node, jb *Item, found *ValueList) (execResult, error) {
	if jb.Type() != TypeArray && !c.autoWrap() {
		if c.ignoreStructuralErrors {
			return execNotFound, nil
		}
		return c.raise(newError(ErrArrayNotFound,
			"JSON array not found",
			"jsonpath array accessor can only be applied to an array"))
	}

	size := jb.arraySize()
	singleton := size < 0
	if singleton {
		size = 1
	}

	savedSize := c.innermostArraySize
	c.innermostArraySize = size
	defer func() { c.innermostArraySize = savedSize }()

	res := execNotFound
	hasNext := n.HasNext()

	for i := 0; i < n.NumSubscripts(); i++ {
		sub := n.SubscriptAt(i)

		indexFrom, r, err := c.getArrayIndex(sub.From, jb)
		if err != nil || r == execError {
			return r, err
		}
		indexTo := indexFrom
		if sub.To != nil {
			indexTo, r, err = c.getArrayIndex(sub.To, jb)
			if err != nil || r == execError {
				return r, err
			}
		}

		if !c.ignoreStructuralErrors &&
			(indexFrom < 0 || indexFrom > indexTo || indexTo >= size) {
			return c.raise(newError(ErrInvalidSubscript,
				"invalid SQL/JSON subscript",
				"jsonpath array subscript is out of bounds"))
		}
		if indexFrom < 0 {
			indexFrom = 0
		}
		if indexTo >= size {
			indexTo = size - 1
		}

		res = execNotFound

		for index := indexFrom; index <= indexTo; index++ {
			var v *Item
			copyItem := false
			if singleton {
				v = jb
				copyItem = true
			} else {
				ev, ok := jb.container().Elem(index)
				if !ok {
					continue
				}
				v = newItem(ev)
			}

			if !hasNext && found == nil {
				return execOK, nil
			}

			res, err = c.executeNextItem(n, nil, v, found, copyItem)
			if err != nil || res == execError {
				return res, err
			}
			if res == execOK && found == nil {
				return res, nil
			}
		}
	}

	return res, nil
}

// executeItemUnwrapTargetArray unwraps the current array item and executes
// the path item for each of its elements.
func (c *execContext) executeItemUnwrapTargetArray(n *path.Node, jb *Item, found *ValueList, unwrapElements bool) (execResult, error) {
	cont := jb.container()
	if cont == nil || !cont.IsArray() {
		return execError, newError(ErrInvalidParameter,
			"invalid jsonb array value type", "")
	}
	return c.executeAnyItem(n, cont, found, 1, 1, 1, false, unwrapElements)
}

// executeNextItem executes the next path item if any, otherwise appends the
// produced value to the sink sequence.
func (c *execContext) executeNextItem(cur, next *path.Node, v *Item, found *ValueList, copyItem bool) (execResult, error) {
	var hasNext bool
	switch {
	case cur == nil:
		hasNext = next != nil
	case next != nil:
		hasNext = cur.HasNext()
	default:
		next = cur.Next()
		hasNext = next != nil
	}

	if hasNext {
		return c.executeItem(next, v, found)
	}

	if found != nil {
		if copyItem {
			found.appendCopy(v)
		} else {
			found.Append(v)
		}
	}
	return execOK, nil
}

// executeItemOptUnwrapResult is executeItem with automatic unwrapping of
// each array in the resulting sequence in lax mode.
func (c *execContext) executeItemOptUnwrapResult(n *path.Node, jb *Item, unwrap bool, found *ValueList) (execResult, error) {
	if unwrap && c.autoUnwrap() {
		var seq ValueList
		res, err := c.executeItem(n, jb, &seq)
		if err != nil || res == execError {
			return res, err
		}
		iter := seq.Iterate()
		for it := iter.Next(); it != nil; it = iter.Next() {
			if it.Type() == TypeArray {
				if _, err := c.executeItemUnwrapTargetArray(nil, it, found, false); err != nil {
					return execError, err
				}
			} else {
				found.Append(it)
			}
		}
		return execOK, nil
	}
	return c.executeItem(n, jb, found)
}

// executeItemOptUnwrapResultNoThrow is executeItemOptUnwrapResult with
// error suppression.
func (c *execContext) executeItemOptUnwrapResultNoThrow(n *path.Node, jb *Item, unwrap bool, found *ValueList) execResult {
	saved := c.throwErrors
	c.throwErrors = false
	res, err := c.executeItemOptUnwrapResult(n, jb, unwrap, found)
	c.throwErrors = saved
	if err != nil {
		return execError
	}
	return res
}

// getPathItem converts a scalar or variable path node to an item.
func (c *execContext) getPathItem(n *path.Node) (*Item, error) {
	switch n.Op() {
	case path.OpNull:
		return newItem(jsonb.Null()), nil
	case path.OpBool:
		return newItem(jsonb.Bool(n.Bool())), nil
	case path.OpNumeric:
		return newItem(jsonb.Number(n.Numeric())), nil
	case path.OpString:
		return newItem(jsonb.String(n.Text())), nil
	case path.OpVariable:
		return c.getVariable(n.Text())
	}
	return nil, newError(ErrInvalidParameter,
		"unexpected jsonpath item type", n.Op().String())
}

// getVariable resolves a $name reference. An unknown variable is a hard
// error regardless of silent mode.
func (c *execContext) getVariable(name string) (*Item, error) {
	if c.vars == nil {
		return nil, newError(ErrUndefinedObject,
			fmt.Sprintf("cannot find jsonpath variable %q", name), "")
	}
	v, base, id, ok := c.vars.Lookup(name)
	if !ok {
		return nil, newError(ErrUndefinedObject,
			fmt.Sprintf("cannot find jsonpath variable %q", name), "")
	}
	if id > 0 {
		c.baseObject = baseObjectInfo{jbc: base, id: id}
	}
	return newItem(v), nil
}

// getArrayIndex evaluates an array subscript expression and truncates the
// resulting numeric item to an int.
func (c *execContext) getArrayIndex(n *path.Node, jb *Item) (int, execResult, error) {
	var found ValueList
	res, err := c.executeItem(n, jb, &found)
	if err != nil || res == execError {
		return 0, res, err
	}

	if found.Length() != 1 {
		r, err := c.raise(newError(ErrInvalidSubscript,
			"invalid SQL/JSON subscript",
			"jsonpath array subscript is not a singleton numeric value"))
		return 0, r, err
	}
	num, ok := found.Head().asNumber()
	if !ok {
		r, err := c.raise(newError(ErrInvalidSubscript,
			"invalid SQL/JSON subscript",
			"jsonpath array subscript is not a singleton numeric value"))
		return 0, r, err
	}

	idx, ok := truncateToInt32(num)
	if !ok {
		r, err := c.raise(newError(ErrInvalidSubscript,
			"invalid SQL/JSON subscript",
			"jsonpath array subscript is out of integer range"))
		return 0, r, err
	}
	return idx, execOK, nil
}
