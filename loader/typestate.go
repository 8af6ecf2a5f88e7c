package loader

import (
	"fmt"
	"maps"
	"slices"

	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// ImplicitArgName is the variable name the ? placeholder is bound to while
// checking the operator that contains it.
const ImplicitArgName = "?"

// TypeState is the environment the checker threads through an expression.
// It is immutable: every method that changes it returns a new TypeState and
// leaves the receiver alone, so that branches of a match can each extend
// the same starting state.
//
// A variable maps to a list of candidate types.  Usually there is one.  More
// than one means the variable was bound in several alternatives of a match
// clause, and its uses have to reconcile the candidates.
type TypeState struct {
	preTypes  map[string]TypeExp
	variables map[string][]TypeExp
	// partial holds names bound by some but not all alternatives of a
	// clause.  They are not visible to the clause's outcome.
	partial map[string]bool

	typeManager *types.TypeManager
	unitManager *units.UnitManager
	functions   FunctionLookup
}

// NewTypeState creates an empty state over the given registries.
func NewTypeState(tm *types.TypeManager, um *units.UnitManager, fl FunctionLookup) *TypeState {
	if tm == nil {
		tm = types.NewTypeManager()
	}
	if um == nil {
		um = units.NewUnitManager()
	}
	return &TypeState{
		preTypes:    map[string]TypeExp{},
		variables:   map[string][]TypeExp{},
		partial:     map[string]bool{},
		typeManager: tm,
		unitManager: um,
		functions:   fl,
	}
}

func (s *TypeState) TypeManager() *types.TypeManager { return s.typeManager }
func (s *TypeState) UnitManager() *units.UnitManager { return s.unitManager }
func (s *TypeState) Functions() FunctionLookup       { return s.functions }

func (s *TypeState) copy() *TypeState {
	out := *s
	out.preTypes = maps.Clone(s.preTypes)
	out.variables = maps.Clone(s.variables)
	out.partial = maps.Clone(s.partial)
	return &out
}

// Add binds a new variable.  A name that is already bound is reported via
// onError and nil is returned.
func (s *TypeState) Add(name string, t TypeExp, onError func(msg string)) *TypeState {
	if _, ok := s.variables[name]; ok {
		if onError != nil {
			onError(fmt.Sprintf("duplicate variable name: %s", name))
		}
		return nil
	}
	out := s.copy()
	out.variables[name] = []TypeExp{t}
	delete(out.partial, name)
	return out
}

// AddPreType records a type given with :: ahead of the definition that binds
// the variable.
func (s *TypeState) AddPreType(name string, t TypeExp, onError func(msg string)) *TypeState {
	if _, ok := s.preTypes[name]; ok {
		if onError != nil {
			onError(fmt.Sprintf("duplicate type declaration for %s", name))
		}
		return nil
	}
	if _, ok := s.variables[name]; ok {
		if onError != nil {
			onError(fmt.Sprintf("the type of %s must be declared before %s is defined", name, name))
		}
		return nil
	}
	out := s.copy()
	out.preTypes[name] = t
	return out
}

// AddImplicitLambda binds the ? placeholder.  An inner placeholder shadows
// an outer one.
func (s *TypeState) AddImplicitLambda(t TypeExp) *TypeState {
	out := s.copy()
	out.variables[ImplicitArgName] = []TypeExp{t}
	return out
}

// FindVarType returns the candidate types of a variable, or nil if it is
// not bound.
func (s *TypeState) FindVarType(name string) []TypeExp {
	return s.variables[name]
}

// PartiallyBound reports whether name was bound by only some of the
// alternatives merged by Intersect.
func (s *TypeState) PartiallyBound(name string) bool {
	return s.partial[name]
}

// PreType returns the declared type of a variable not yet defined.
func (s *TypeState) PreType(name string) (TypeExp, bool) {
	t, ok := s.preTypes[name]
	return t, ok
}

// ClearPreType forgets a declared type once its variable is defined.
func (s *TypeState) ClearPreType(name string) *TypeState {
	if _, ok := s.preTypes[name]; !ok {
		return s
	}
	out := s.copy()
	delete(out.preTypes, name)
	return out
}

// PendingPreTypes lists declared types whose variables were never defined.
func (s *TypeState) PendingPreTypes() []string {
	return slices.Sorted(maps.Keys(s.preTypes))
}

// Variables lists the bound variable names, sorted.
func (s *TypeState) Variables() []string {
	return slices.Sorted(maps.Keys(s.variables))
}

// Intersect merges the states produced by the alternatives of one match
// clause.  A variable bound by every alternative keeps each distinct
// candidate type.  A variable bound by only some of them is dropped and
// remembered as partially bound, since the alternative that matches at
// run time may not have bound it.
func Intersect(states ...*TypeState) *TypeState {
	if len(states) == 0 {
		return nil
	}
	out := states[0].copy()
	for _, st := range states[1:] {
		for name, ts := range st.variables {
			if existing, ok := out.variables[name]; ok {
				out.variables[name] = appendDistinct(slices.Clone(existing), ts)
			} else {
				out.variables[name] = ts
			}
		}
		for name := range st.partial {
			out.partial[name] = true
		}
		for name, t := range st.preTypes {
			if _, ok := out.preTypes[name]; !ok {
				out.preTypes[name] = t
			}
		}
	}
	for name := range out.variables {
		for _, st := range states {
			if _, ok := st.variables[name]; !ok {
				delete(out.variables, name)
				out.partial[name] = true
				break
			}
		}
	}
	return out
}

// appendDistinct skips candidates that are the very same type, as happens
// for variables bound before the match.
func appendDistinct(list []TypeExp, more []TypeExp) []TypeExp {
	for _, t := range more {
		dup := false
		for _, e := range list {
			if sameTypeExp(e, t) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, t)
		}
	}
	return list
}

func sameTypeExp(a, b TypeExp) bool {
	va, okA := a.(*types.MutVar)
	vb, okB := b.(*types.MutVar)
	if okA || okB {
		return okA && okB && va == vb
	}
	return types.IsConcrete(a) && types.IsConcrete(b) && types.Resolve(a).String() == types.Resolve(b).String()
}

// FreshTypeVar returns a new unbound type variable.
func (s *TypeState) FreshTypeVar(classes ...types.TypeClasses) *types.MutVar {
	return types.NewMutVar(classes...)
}

// FreshUnitVar returns a new unbound unit variable as a unit.
func (s *TypeState) FreshUnitVar() units.UnitExp {
	return units.Fresh()
}
