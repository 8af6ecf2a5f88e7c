package runtime

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
)

// DivisionPlaces is the number of decimal places kept by division and by
// negative powers.
const DivisionPlaces = 32

// maxExactPower bounds the integer powers computed exactly; larger ones go
// through float64 like fractional powers.
const maxExactPower = 1 << 10

func (c *collector) numbers(es []Expression, st *EvaluateState) ([]decimal.Decimal, error) {
	vals, err := c.evalAll(es, st)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = mustNumber(v)
	}
	return out, nil
}

func (c *collector) addSubtract(n *decl.AddSubtractExpression, st *EvaluateState) (Value, error) {
	nums, err := c.numbers(n.Operands, st)
	if err != nil {
		return Value{}, err
	}
	total := nums[0]
	for i, op := range n.Ops {
		if op == decl.OpSubtract {
			total = total.Sub(nums[i+1])
		} else {
			total = total.Add(nums[i+1])
		}
	}
	return decl.NumberValue(total), nil
}

func (c *collector) times(n *decl.TimesExpression, st *EvaluateState) (Value, error) {
	nums, err := c.numbers(n.Operands, st)
	if err != nil {
		return Value{}, err
	}
	product := decimal.NewFromInt(1)
	for _, d := range nums {
		product = product.Mul(d)
	}
	return decl.NumberValue(product), nil
}

func (c *collector) divide(n *decl.DivideExpression, st *EvaluateState) (Value, error) {
	nums, err := c.numbers([]Expression{n.Left, n.Right}, st)
	if err != nil {
		return Value{}, err
	}
	q, err := Divide(nums[0], nums[1])
	if err != nil {
		return Value{}, err
	}
	return decl.NumberValue(q), nil
}

func (c *collector) raise(n *decl.RaiseExpression, st *EvaluateState) (Value, error) {
	nums, err := c.numbers([]Expression{n.Left, n.Right}, st)
	if err != nil {
		return Value{}, err
	}
	p, err := Raise(nums[0], nums[1])
	if err != nil {
		return Value{}, err
	}
	return decl.NumberValue(p), nil
}

// Divide divides to DivisionPlaces decimal places.
func Divide(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, userErrorf(ErrDivideByZero, "cannot divide %s by zero", a)
	}
	return a.DivRound(b, DivisionPlaces), nil
}

// Raise computes base^exp.  Whole powers are exact; other powers are
// computed in floating point.
func Raise(base, exp decimal.Decimal) (decimal.Decimal, error) {
	if exp.IsInteger() && exp.Abs().LessThanOrEqual(decimal.NewFromInt(maxExactPower)) {
		n := exp.IntPart()
		if n < 0 && base.IsZero() {
			return decimal.Zero, userErrorf(ErrInvalidPower, "zero cannot be raised to the negative power %s", exp)
		}
		p := powInt(base, abs(n))
		if n < 0 {
			return decimal.NewFromInt(1).DivRound(p, DivisionPlaces), nil
		}
		return p, nil
	}
	b, _ := base.Float64()
	e, _ := exp.Float64()
	r := math.Pow(b, e)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return decimal.Zero, userErrorf(ErrInvalidPower, "cannot raise %s to the power %s", base, exp)
	}
	return decimal.NewFromFloat(r), nil
}

func powInt(base decimal.Decimal, n int64) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func mustNumber(v Value) decimal.Decimal {
	d, err := v.GetNumber()
	core.EnsureNoErr(err, "expected a number")
	return d
}
