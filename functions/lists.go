package functions

import (
	"fmt"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/types"
)

func listFunctions() []*loader.FunctionDefinition {
	return []*loader.FunctionDefinition{
		simple("count", "The number of items in a list.", countScheme, func(args []Value) (Value, error) {
			items, err := args[0].GetList()
			if err != nil {
				return Value{}, err
			}
			return decl.IntValue(int64(len(items))), nil
		}),
		simple("minimum", "The smallest item of a non-empty list.", extremeScheme, func(args []Value) (Value, error) {
			return extreme(args[0], -1)
		}),
		simple("maximum", "The largest item of a non-empty list.", extremeScheme, func(args []Value) (Value, error) {
			return extreme(args[0], 1)
		}),
		simple("element", "The item at a position of a list, counting from 1.", elementScheme, func(args []Value) (Value, error) {
			items, err := args[0].GetList()
			if err != nil {
				return Value{}, err
			}
			i, err := wholeNumber(args[1])
			if err != nil {
				return Value{}, err
			}
			if i < 1 || i > len(items) {
				return Value{}, fmt.Errorf("element %d of a list of %d: %w", i, len(items), ErrIndex)
			}
			return items[i-1], nil
		}),
		simple("map", "Applies a function to every item of a list.", mapScheme, func(args []Value) (Value, error) {
			items, err := args[0].GetList()
			if err != nil {
				return Value{}, err
			}
			out := make([]Value, len(items))
			for i, item := range items {
				if out[i], err = callFunction(args[1], item); err != nil {
					return Value{}, err
				}
			}
			return decl.ListValue(out), nil
		}),
		simple("filter", "Keeps the items of a list for which the function gives true.", predicateScheme(true), func(args []Value) (Value, error) {
			var out []Value
			err := eachTest(args, func(item Value, keep bool) bool {
				if keep {
					out = append(out, item)
				}
				return true
			})
			if err != nil {
				return Value{}, err
			}
			return decl.ListValue(out), nil
		}),
		simple("any", "Whether the function gives true for any item of a list.", predicateScheme(false), func(args []Value) (Value, error) {
			found := false
			err := eachTest(args, func(_ Value, ok bool) bool {
				found = ok
				return !ok
			})
			return decl.BoolValue(found), err
		}),
		simple("all", "Whether the function gives true for every item of a list.", predicateScheme(false), func(args []Value) (Value, error) {
			all := true
			err := eachTest(args, func(_ Value, ok bool) bool {
				all = ok
				return ok
			})
			return decl.BoolValue(all), err
		}),
		simple("not", "Swaps true and false.", fixed(types.Function(types.BoolType, types.BoolType)), func(args []Value) (Value, error) {
			b, err := args[0].GetBool()
			if err != nil {
				return Value{}, err
			}
			return decl.BoolValue(!b), nil
		}),
	}
}

// countScheme is [t] -> Number.
func countScheme() loader.FunctionScheme {
	t := types.NewMutVar()
	return loader.FunctionScheme{Type: types.Function(types.PlainNumber(), types.List(t)), TypeVars: map[string]*types.MutVar{"t": t}}
}

// extremeScheme is [t] -> t for a comparable t.
func extremeScheme() loader.FunctionScheme {
	t := types.NewMutVar(types.Comparable)
	return loader.FunctionScheme{Type: types.Function(t, types.List(t)), TypeVars: map[string]*types.MutVar{"t": t}}
}

// elementScheme is ([t], Number) -> t.
func elementScheme() loader.FunctionScheme {
	t := types.NewMutVar()
	return loader.FunctionScheme{Type: types.Function(t, types.List(t), types.PlainNumber()), TypeVars: map[string]*types.MutVar{"t": t}}
}

// mapScheme is ([a], a -> b) -> [b].
func mapScheme() loader.FunctionScheme {
	a, b := types.NewMutVar(), types.NewMutVar()
	return loader.FunctionScheme{
		Type:     types.Function(types.List(b), types.List(a), types.Function(b, a)),
		TypeVars: map[string]*types.MutVar{"a": a, "b": b},
	}
}

// predicateScheme is ([a], a -> Boolean) -> [a] when keepList is set and
// ([a], a -> Boolean) -> Boolean otherwise.
func predicateScheme(keepList bool) func() loader.FunctionScheme {
	return func() loader.FunctionScheme {
		a := types.NewMutVar()
		var result types.TypeExp = types.BoolType
		if keepList {
			result = types.List(a)
		}
		return loader.FunctionScheme{
			Type:     types.Function(result, types.List(a), types.Function(types.BoolType, a)),
			TypeVars: map[string]*types.MutVar{"a": a},
		}
	}
}

// eachTest calls the predicate args[1] on the items of args[0] until visit
// returns false.
func eachTest(args []Value, visit func(item Value, ok bool) bool) error {
	items, err := args[0].GetList()
	if err != nil {
		return err
	}
	for _, item := range items {
		r, err := callFunction(args[1], item)
		if err != nil {
			return err
		}
		ok, err := r.GetBool()
		if err != nil {
			return err
		}
		if !visit(item, ok) {
			return nil
		}
	}
	return nil
}

// extreme returns the item that compares as dir (-1 smallest, 1 largest).
func extreme(list Value, dir int) (Value, error) {
	items, err := list.GetList()
	if err != nil {
		return Value{}, err
	}
	if len(items) == 0 {
		return Value{}, fmt.Errorf("no items to choose from: %w", ErrEmptyList)
	}
	best := items[0]
	for _, item := range items[1:] {
		c, err := item.Compare(best)
		if err != nil {
			return Value{}, err
		}
		if c*dir > 0 {
			best = item
		}
	}
	return best, nil
}
