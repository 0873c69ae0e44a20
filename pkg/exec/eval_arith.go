package exec

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/gistol/sqljson/pkg/jsonb"
	"github.com/gistol/sqljson/pkg/path"
)

// numericCtx drives all arbitrary-precision arithmetic. Traps are enabled,
// so division by zero and overflow surface as errors.
var numericCtx = apd.BaseContext.WithPrecision(38)

// mapNumericErr classifies an apd error as a suppressible execution error.
func mapNumericErr(err error) *Error {
	msg := err.Error()
	if strings.Contains(msg, "division by zero") {
		return newError(ErrDivisionByZero, "division by zero", "")
	}
	return newError(ErrNumericOutOfRange, "numeric value out of range", msg)
}

// truncateToInt32 truncates a decimal toward zero and reports whether it
// fits an int32.
func truncateToInt32(d *apd.Decimal) (int, bool) {
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	i, err := integ.Int64()
	if err != nil || i > 1<<31-1 || i < -(1<<31) {
		return 0, false
	}
	return int(i), true
}

func binaryArithmOp(op path.Op) func(res, l, r *apd.Decimal) error {
	return func(res, l, r *apd.Decimal) error {
		var err error
		switch op {
		case path.OpAdd:
			_, err = numericCtx.Add(res, l, r)
		case path.OpSub:
			_, err = numericCtx.Sub(res, l, r)
		case path.OpMul:
			_, err = numericCtx.Mul(res, l, r)
		case path.OpDiv:
			_, err = numericCtx.Quo(res, l, r)
			if err == nil {
				// Drop the trailing zeros of the fixed-precision quotient.
				res.Reduce(res)
			}
		default:
			_, err = numericCtx.Rem(res, l, r)
		}
		return err
	}
}

// executeBinaryArithmExpr executes a binary arithmetic expression on
// singleton numeric operands. Array operands are automatically unwrapped in
// lax mode.
func (c *execContext) executeBinaryArithmExpr(n *path.Node, jb *Item, found *ValueList) (execResult, error) {
	var lseq, rseq ValueList

	// By the standard only operands of multiplicative expressions are
	// unwrapped; the original extends it to all binary arithmetic, and so
	// does this executor.
	res, err := c.executeItemOptUnwrapResult(n.Left(), jb, true, &lseq)
	if err != nil || res == execError {
		return res, err
	}
	res, err = c.executeItemOptUnwrapResult(n.Right(), jb, true, &rseq)
	if err != nil || res == execError {
		return res, err
	}

	lnum, lok := singletonNumber(&lseq)
	if !lok {
		return c.raise(newError(ErrSingletonRequired,
			"singleton SQL/JSON item required",
			"left operand of binary jsonpath operator "+n.Op().String()+
				" is not a singleton numeric value"))
	}
	rnum, rok := singletonNumber(&rseq)
	if !rok {
		return c.raise(newError(ErrSingletonRequired,
			"singleton SQL/JSON item required",
			"right operand of binary jsonpath operator "+n.Op().String()+
				" is not a singleton numeric value"))
	}

	var out apd.Decimal
	if err := binaryArithmOp(n.Op())(&out, lnum, rnum); err != nil {
		return c.raise(mapNumericErr(err))
	}

	if !n.HasNext() && found == nil {
		return execOK, nil
	}

	v := newItem(jsonb.Number(&out))
	return c.executeNextItem(n, nil, v, found, false)
}

func singletonNumber(seq *ValueList) (*apd.Decimal, bool) {
	if seq.Length() != 1 {
		return nil, false
	}
	return seq.Head().asNumber()
}

// executeUnaryArithmExpr executes a unary arithmetic expression for each
// numeric item in its operand's sequence. The array operand is
// automatically unwrapped in lax mode.
func (c *execContext) executeUnaryArithmExpr(n *path.Node, jb *Item, found *ValueList) (execResult, error) {
	var seq ValueList
	res, err := c.executeItemOptUnwrapResult(n.Arg(), jb, true, &seq)
	if err != nil || res == execError {
		return res, err
	}

	res = execNotFound
	hasNext := n.HasNext()

	iter := seq.Iterate()
	for val := iter.Next(); val != nil; val = iter.Next() {
		num, ok := val.asNumber()
		if ok {
			if found == nil && !hasNext {
				return execOK, nil
			}
		} else {
			if found == nil && !hasNext {
				continue // skip non-numerics in a pure existence probe
			}
			return c.raise(newError(ErrNumberNotFound,
				"SQL/JSON number not found",
				"operand of unary jsonpath operator "+n.Op().String()+
					" is not a numeric value"))
		}

		out := val
		if n.Op() == path.OpMinus {
			var neg apd.Decimal
			neg.Neg(num)
			out = newItem(jsonb.Number(&neg))
		}

		r, err := c.executeNextItem(n, nil, out, found, false)
		if err != nil || r == execError {
			return r, err
		}
		if r == execOK {
			if found == nil {
				return execOK, nil
			}
			res = execOK
		}
	}

	return res, nil
}
