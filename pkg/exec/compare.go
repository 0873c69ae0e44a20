package exec

import (
	"github.com/gistol/sqljson/pkg/path"
)

// execComparison is the predicate callback for the six comparison
// operators.
func (c *execContext) execComparison(cmp *path.Node, lv, rv *Item, _ any) ternary {
	return c.compareItems(cmp.Op(), lv, rv)
}

// compareItems orders two SQL/JSON items under a comparison operator.
//
// Items of different types are not comparable and yield unknown, except
// that a null on one side makes equality false and inequality true.
// Composite items are never comparable.
func (c *execContext) compareItems(op path.Op, a, b *Item) ternary {
	ta, tb := a.Type(), b.Type()

	if ta != tb {
		if ta == TypeNull || tb == TypeNull {
			// Equality and order comparison of nulls to non-nulls returns
			// always false, but inequality comparison returns true.
			if op == path.OpNotEqual {
				return ternTrue
			}
			return ternFalse
		}
		return ternUnknown
	}

	var cmp int
	switch ta {
	case TypeNull:
		cmp = 0
	case TypeBool:
		switch {
		case a.val.Bool() == b.val.Bool():
			cmp = 0
		case a.val.Bool():
			cmp = 1
		default:
			cmp = -1
		}
	case TypeNumber:
		cmp = a.val.Decimal().Cmp(b.val.Decimal())
	case TypeString:
		sa, sb := a.val.Str(), b.val.Str()
		if op == path.OpEqual || op == path.OpNotEqual {
			if (sa == sb) == (op == path.OpEqual) {
				return ternTrue
			}
			return ternFalse
		}
		cmp = c.compareStrings(sa, sb)
	case TypeDatetime:
		var ok bool
		cmp, ok = compareDatetime(a.dt, b.dt)
		if !ok {
			return ternUnknown
		}
	default:
		return ternUnknown // non-scalars are not comparable
	}

	var res bool
	switch op {
	case path.OpEqual:
		res = cmp == 0
	case path.OpNotEqual:
		res = cmp != 0
	case path.OpLess:
		res = cmp < 0
	case path.OpGreater:
		res = cmp > 0
	case path.OpLessOrEqual:
		res = cmp <= 0
	case path.OpGreaterOrEqual:
		res = cmp >= 0
	default:
		return ternUnknown
	}

	if res {
		return ternTrue
	}
	return ternFalse
}

// compareStrings orders strings through the installed collation handle,
// falling back to byte order.
func (c *execContext) compareStrings(a, b string) int {
	if c.collator != nil {
		return c.collator.CompareString(a, b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
