// Package functions is the standard function library of the formula
// language.
package functions

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

type Value = decl.Value

var (
	ErrEmptyList   = errors.New("empty list")
	ErrIndex       = errors.New("index out of range")
	ErrNotInteger  = errors.New("not a whole number")
	ErrInvalidDate = errors.New("invalid date")
	ErrCannotRead  = errors.New("cannot read value")
)

// Library is a set of function definitions.  It implements
// loader.FunctionLookup.
type Library struct {
	types *types.TypeManager
	units *units.UnitManager
	defs  map[string]*loader.FunctionDefinition
}

// NewLibrary returns a library holding every standard function.  The
// managers are used by functions that read values from text.
func NewLibrary(tm *types.TypeManager, um *units.UnitManager) *Library {
	if tm == nil {
		tm = types.NewTypeManager()
	}
	if um == nil {
		um = units.NewUnitManager()
	}
	l := &Library{types: tm, units: um, defs: map[string]*loader.FunctionDefinition{}}
	for _, group := range [][]*loader.FunctionDefinition{numberFunctions(), listFunctions(), textFunctions(), l.conversionFunctions(), temporalFunctions()} {
		for _, d := range group {
			l.Register(d)
		}
	}
	return l
}

// Register adds a definition, replacing any with the same name.
func (l *Library) Register(d *loader.FunctionDefinition) {
	l.defs[d.Name] = d
}

func (l *Library) Lookup(name string) *loader.FunctionDefinition { return l.defs[name] }

// AllFunctions lists the definitions by name.
func (l *Library) AllFunctions() []*loader.FunctionDefinition {
	out := make([]*loader.FunctionDefinition, 0, len(l.defs))
	for _, d := range l.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *loader.FunctionDefinition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Signature renders a definition's type using the names of its type and
// unit variables, eg "[Number{u}] -> Number{u}".
func Signature(d *loader.FunctionDefinition) string {
	s := d.Scheme()
	var pairs [][2]string
	for name, v := range s.TypeVars {
		pairs = append(pairs, [2]string{v.String(), name})
	}
	for name, u := range s.UnitVars {
		pairs = append(pairs, [2]string{u.String(), name})
	}
	// Longer placeholders first so that _t1 does not match inside _t12.
	slices.SortFunc(pairs, func(a, b [2]string) int { return len(b[0]) - len(a[0]) })
	var args []string
	for _, p := range pairs {
		args = append(args, p[0], p[1])
	}
	return strings.NewReplacer(args...).Replace(s.Type.String())
}

// native is a function implemented in Go.
type native struct {
	name  string
	arity int
	fn    func(args []Value) (Value, error)
}

func (n *native) Name() string { return n.name }

func (n *native) Call(args []Value) (Value, error) {
	if len(args) != n.arity {
		return Value{}, fmt.Errorf("%s expects %d argument(s) but was given %d", n.name, n.arity, len(args))
	}
	return n.fn(args)
}

// simple defines a function whose implementation does not depend on the
// types it is used at.
func simple(name, synopsis string, scheme func() loader.FunctionScheme, fn func(args []Value) (Value, error)) *loader.FunctionDefinition {
	return &loader.FunctionDefinition{
		Name:     name,
		Synopsis: synopsis,
		Scheme:   scheme,
		MakeValue: func(loader.Bindings) (decl.FunctionValue, error) {
			return &native{name: name, arity: arityOf(scheme()), fn: fn}, nil
		},
	}
}

func arityOf(s loader.FunctionScheme) int {
	if ft, ok := s.Type.(types.FunctionTypeExp); ok {
		return len(ft.Params)
	}
	return 0
}

// --- common schemes ---

func fixed(t types.TypeExp) func() loader.FunctionScheme {
	return func() loader.FunctionScheme { return loader.FunctionScheme{Type: t} }
}

// numberToNumber is Number{u} -> Number{u}.
func numberToNumber() loader.FunctionScheme {
	u := units.Fresh()
	n := types.Number(u)
	return loader.FunctionScheme{Type: types.Function(n, n), UnitVars: map[string]units.UnitExp{"u": u}}
}

// --- argument access; the checker guarantees the kinds ---

func callFunction(f Value, args ...Value) (Value, error) {
	fn, err := f.GetFunction()
	if err != nil {
		return Value{}, err
	}
	return fn.Call(args)
}
