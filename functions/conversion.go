package functions

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/runtime"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

func (l *Library) conversionFunctions() []*loader.FunctionDefinition {
	return []*loader.FunctionDefinition{
		simple("to text", "Writes a value as text, the way it would be written in a formula.", toTextScheme, func(args []Value) (Value, error) {
			return decl.TextValue(args[0].String()), nil
		}),
		{
			Name:     "from text to",
			Synopsis: "Reads a value of the given type from text.",
			Scheme:   fromTextScheme,
			MakeValue: func(b loader.Bindings) (decl.FunctionValue, error) {
				t, ok := b.Type("t")
				if !ok || !types.IsConcrete(t) {
					return nil, fmt.Errorf("from text to needs a known type, found %s", t)
				}
				return &native{name: "from text to", arity: 2, fn: func(args []Value) (Value, error) {
					s, err := args[1].GetText()
					if err != nil {
						return Value{}, err
					}
					return l.ReadValue(t, s)
				}}, nil
			},
		},
		simple("as unit", "Gives a plain number the given unit.", asUnitScheme, func(args []Value) (Value, error) {
			return args[1], nil
		}),
		simple("strip units", "Removes the unit from a number.", stripScheme, func(args []Value) (Value, error) {
			return args[0], nil
		}),
	}
}

// toTextScheme is t -> Text.
func toTextScheme() loader.FunctionScheme {
	t := types.NewMutVar(types.Showable)
	return loader.FunctionScheme{Type: types.Function(types.TextType, t), TypeVars: map[string]*types.MutVar{"t": t}}
}

// fromTextScheme is (Type{t}, Text) -> t.
func fromTextScheme() loader.FunctionScheme {
	t := types.NewMutVar(types.Readable)
	return loader.FunctionScheme{Type: types.Function(t, types.TypeOf(t), types.TextType), TypeVars: map[string]*types.MutVar{"t": t}}
}

// asUnitScheme is (Unit{u}, Number) -> Number{u}.
func asUnitScheme() loader.FunctionScheme {
	u := units.Fresh()
	return loader.FunctionScheme{
		Type:     types.Function(types.Number(u), types.UnitOf(u), types.PlainNumber()),
		UnitVars: map[string]units.UnitExp{"u": u},
	}
}

// stripScheme is Number{u} -> Number.
func stripScheme() loader.FunctionScheme {
	u := units.Fresh()
	return loader.FunctionScheme{Type: types.Function(types.PlainNumber(), types.Number(u)), UnitVars: map[string]units.UnitExp{"u": u}}
}

// ReadValue reads text as a value of type t.  Numbers may be written
// without their unit, text without quotes and dates in their literal
// content form (2024-01-31).  Anything else is read as a formula without
// column or function references, eg Is((1, "a")).
func (l *Library) ReadValue(t types.TypeExp, text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	switch tt := types.Prune(t).(type) {
	case types.NumTypeExp:
		if d, err := decimal.NewFromString(trimmed); err == nil {
			return decl.NumberValue(d), nil
		}
	case types.PrimitiveTypeExp:
		if tt.Kind == types.KindText && !strings.HasPrefix(trimmed, `"`) {
			return decl.TextValue(text), nil
		}
		if tt.Kind.IsTemporal() {
			if tv, err := decl.ParseTemporal(tt.Kind, trimmed); err == nil {
				return decl.TemporalValue(tv), nil
			}
		}
	}
	return l.readFormula(t, trimmed)
}

func (l *Library) readFormula(t types.TypeExp, text string) (Value, error) {
	fail := func(reason any) (Value, error) {
		return Value{}, fmt.Errorf("%w: %q as %s: %v", ErrCannotRead, text, t, reason)
	}
	e, err := parser.ParseExpression(text)
	if err != nil {
		return fail(err)
	}
	d := loader.NewDiagnostics()
	checked, err := loader.NewChecker(nil, d).Check(e, loader.NewTypeState(l.types, l.units, nil))
	if err != nil {
		return fail(d.Err())
	}
	if _, terr := types.Unify(checked.Type, t); terr != nil {
		return fail(terr.Message)
	}
	res, err := runtime.NewEvaluator(checked).Evaluate(runtime.NewEvaluateState(l.types, false))
	if err != nil {
		return fail(err)
	}
	return res.Value, nil
}
