package functions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/runtime"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

func numberFunctions() []*loader.FunctionDefinition {
	return []*loader.FunctionDefinition{
		simple("abs", "The absolute value of a number.", numberToNumber, func(args []Value) (Value, error) {
			n, err := args[0].GetNumber()
			if err != nil {
				return Value{}, err
			}
			return decl.NumberValue(n.Abs()), nil
		}),
		simple("round", "Rounds to the nearest whole number, halves away from zero.", numberToNumber, func(args []Value) (Value, error) {
			n, err := args[0].GetNumber()
			if err != nil {
				return Value{}, err
			}
			return decl.NumberValue(n.Round(0)), nil
		}),
		simple("round decimal", "Rounds to the given number of decimal places.", roundDecimalScheme, func(args []Value) (Value, error) {
			n, err := args[0].GetNumber()
			if err != nil {
				return Value{}, err
			}
			places, err := wholeNumber(args[1])
			if err != nil {
				return Value{}, err
			}
			return decl.NumberValue(n.Round(int32(places))), nil
		}),
		simple("sum", "Adds up a list of numbers.", listToNumber, func(args []Value) (Value, error) {
			nums, err := numberList(args[0])
			if err != nil {
				return Value{}, err
			}
			return decl.NumberValue(decimal.Sum(decimal.Zero, nums...)), nil
		}),
		simple("average", "The mean of a non-empty list of numbers.", listToNumber, func(args []Value) (Value, error) {
			nums, err := numberList(args[0])
			if err != nil {
				return Value{}, err
			}
			if len(nums) == 0 {
				return Value{}, fmt.Errorf("cannot average an empty list: %w", ErrEmptyList)
			}
			avg, err := runtime.Divide(decimal.Sum(decimal.Zero, nums...), decimal.NewFromInt(int64(len(nums))))
			if err != nil {
				return Value{}, err
			}
			return decl.NumberValue(avg), nil
		}),
	}
}

// roundDecimalScheme is (Number{u}, Number) -> Number{u}.
func roundDecimalScheme() loader.FunctionScheme {
	u := units.Fresh()
	return loader.FunctionScheme{
		Type:     types.Function(types.Number(u), types.Number(u), types.PlainNumber()),
		UnitVars: map[string]units.UnitExp{"u": u},
	}
}

// listToNumber is [Number{u}] -> Number{u}.
func listToNumber() loader.FunctionScheme {
	u := units.Fresh()
	return loader.FunctionScheme{
		Type:     types.Function(types.Number(u), types.List(types.Number(u))),
		UnitVars: map[string]units.UnitExp{"u": u},
	}
}

func numberList(v Value) ([]decimal.Decimal, error) {
	items, err := v.GetList()
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, len(items))
	for i, item := range items {
		if out[i], err = item.GetNumber(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// wholeNumber reads an int that fits comfortably in an int32.
func wholeNumber(v Value) (int, error) {
	n, err := v.GetNumber()
	if err != nil {
		return 0, err
	}
	if !n.IsInteger() || n.Abs().GreaterThan(decimal.NewFromInt(1<<20)) {
		return 0, fmt.Errorf("%s: %w", n, ErrNotInteger)
	}
	return int(n.IntPart()), nil
}
