package exec

import (
	"math"

	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// executeAnyItem drives the container-iterating accessors: .** descent as
// well as the .* and [*] wildcards (with first == last == 1). Sub-items
// whose depth falls within [first, last] are fed to the next path item, or
// collected when the chain ends here. The walk is pre-order document order.
func (c *execContext) executeAnyItem(n *path.Node, jbc *jsonb.Container, found *ValueList, level, first, last uint32, ignoreStructural, unwrapNext bool) (execResult, error) {
	if err := c.enter(); err != nil {
		return execError, err
	}
	defer c.exit()

	res := execNotFound
	if level > last {
		return res, nil
	}

	it := jbc.Iterate()
	for {
		tok, v := it.Next()
		if tok == jsonb.Done {
			break
		}
		if tok == jsonb.KeyToken {
			tok, v = it.Next()
		}
		if tok != jsonb.ValueToken && tok != jsonb.ElemToken {
			continue
		}

		item := newItem(v)

		// The all-leaves form requests only non-container sub-items
		// irrespective of depth.
		if level >= first ||
			(first == math.MaxUint32 && last == math.MaxUint32 &&
				v.Kind() != jsonb.KindBinary) {
			if n != nil {
				var r execResult
				var err error
				if ignoreStructural {
					saved := c.ignoreStructuralErrors
					c.ignoreStructuralErrors = true
					r, err = c.executeItemOptUnwrapTarget(n, item, found, unwrapNext)
					c.ignoreStructuralErrors = saved
				} else {
					r, err = c.executeItemOptUnwrapTarget(n, item, found, unwrapNext)
				}
				if err != nil || r == execError {
					return r, err
				}
				res = r
				if res == execOK && found == nil {
					return res, nil
				}
			} else if found != nil {
				found.appendCopy(item)
				res = execOK
			} else {
				return execOK, nil
			}
		}

		if level < last && v.Kind() == jsonb.KindBinary {
			r, err := c.executeAnyItem(n, v.Container(), found,
				level+1, first, last, ignoreStructural, unwrapNext)
			if err != nil || r == execError {
				return r, err
			}
			if r == execOK {
				res = r
				if found == nil {
					return res, nil
				}
			}
		}
	}

	return res, nil
}
