package types

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/units"
)

// TypeError describes a failed unification.  Types holds the competing
// types so that callers can render them or build fixes from them.
type TypeError struct {
	Message string
	Types   []TypeExp
}

func (e *TypeError) Error() string {
	return e.Message
}

func mismatch(a, b TypeExp) *TypeError {
	return &TypeError{
		Message: fmt.Sprintf("type mismatch: %s vs %s", Resolve(a).String(), Resolve(b).String()),
		Types:   []TypeExp{a, b},
	}
}

// Unify makes a and b equal by binding variables, returning the unified
// type.  On failure some variables may already have been bound.
func Unify(a, b TypeExp) (TypeExp, *TypeError) {
	result, err := unifyPruned(Prune(a), Prune(b))
	if err != nil {
		return nil, err
	}
	// Merging two records can produce a type that neither side had.  Point
	// the variables that led to the old records at the merged one.
	if _, ok := result.(RecordTypeExp); ok {
		rebind(a, result)
		rebind(b, result)
	}
	return result, nil
}

func rebind(t TypeExp, result TypeExp) {
	var last *MutVar
	for {
		v, ok := t.(*MutVar)
		if !ok || v.bound == nil {
			break
		}
		last = v
		t = v.bound
	}
	if last != nil && !occurs(last, result) {
		last.bound = result
	}
}

func unifyPruned(a, b TypeExp) (TypeExp, *TypeError) {
	if va, ok := a.(*MutVar); ok {
		if vb, ok := b.(*MutVar); ok && va == vb {
			return a, nil
		}
		return bind(va, b)
	}
	if vb, ok := b.(*MutVar); ok {
		return bind(vb, a)
	}

	switch ta := a.(type) {
	case NumTypeExp:
		tb, ok := b.(NumTypeExp)
		if !ok {
			return nil, mismatch(a, b)
		}
		if err := units.Unify(ta.Unit, tb.Unit); err != nil {
			return nil, &TypeError{
				Message: fmt.Sprintf("unit mismatch: %s vs %s", a.String(), b.String()),
				Types:   []TypeExp{a, b},
			}
		}
		return ta, nil
	case PrimitiveTypeExp:
		tb, ok := b.(PrimitiveTypeExp)
		if !ok || ta.Kind != tb.Kind {
			return nil, mismatch(a, b)
		}
		return ta, nil
	case ListTypeExp:
		tb, ok := b.(ListTypeExp)
		if !ok {
			return nil, mismatch(a, b)
		}
		elem, err := Unify(ta.Elem, tb.Elem)
		if err != nil {
			return nil, wrapMismatch(a, b, err)
		}
		return ListTypeExp{Elem: elem}, nil
	case RecordTypeExp:
		tb, ok := b.(RecordTypeExp)
		if !ok {
			return nil, mismatch(a, b)
		}
		return unifyRecords(ta, tb)
	case TaggedTypeExp:
		tb, ok := b.(TaggedTypeExp)
		if !ok || ta.Name != tb.Name || len(ta.Operands) != len(tb.Operands) {
			return nil, mismatch(a, b)
		}
		operands := make([]TypeOperand, len(ta.Operands))
		for i, oa := range ta.Operands {
			ob := tb.Operands[i]
			if oa.IsUnit != ob.IsUnit {
				return nil, mismatch(a, b)
			}
			if oa.IsUnit {
				if err := units.Unify(oa.Unit, ob.Unit); err != nil {
					return nil, mismatch(a, b)
				}
				operands[i] = oa
				continue
			}
			t, err := Unify(oa.Type, ob.Type)
			if err != nil {
				return nil, wrapMismatch(a, b, err)
			}
			operands[i] = TypeOperand{Type: t}
		}
		def := ta.Def
		if def == nil {
			def = tb.Def
		}
		return TaggedTypeExp{Name: ta.Name, Operands: operands, Def: def}, nil
	case FunctionTypeExp:
		tb, ok := b.(FunctionTypeExp)
		if !ok {
			return nil, mismatch(a, b)
		}
		if len(ta.Params) != len(tb.Params) {
			return nil, &TypeError{
				Message: fmt.Sprintf("function takes %d parameter(s) but %d were expected", len(ta.Params), len(tb.Params)),
				Types:   []TypeExp{a, b},
			}
		}
		params := make([]TypeExp, len(ta.Params))
		for i := range ta.Params {
			p, err := Unify(ta.Params[i], tb.Params[i])
			if err != nil {
				return nil, wrapMismatch(a, b, err)
			}
			params[i] = p
		}
		result, err := Unify(ta.Result, tb.Result)
		if err != nil {
			return nil, wrapMismatch(a, b, err)
		}
		return FunctionTypeExp{Params: params, Result: result}, nil
	}
	return nil, mismatch(a, b)
}

// wrapMismatch reports the outer types while keeping the inner detail.
func wrapMismatch(a, b TypeExp, inner *TypeError) *TypeError {
	return &TypeError{
		Message: fmt.Sprintf("type mismatch: %s vs %s (%s)", Resolve(a).String(), Resolve(b).String(), inner.Message),
		Types:   []TypeExp{a, b},
	}
}

func bind(v *MutVar, t TypeExp) (TypeExp, *TypeError) {
	if occurs(v, t) {
		return nil, &TypeError{
			Message: fmt.Sprintf("cannot construct infinite type: %s occurs in %s", v.String(), t.String()),
			Types:   []TypeExp{v, t},
		}
	}
	if err := RequireClasses(t, v.classes); err != nil {
		return nil, err
	}
	v.bound = t
	return t, nil
}

func unifyRecords(a, b RecordTypeExp) (TypeExp, *TypeError) {
	if a.Complete && b.Complete && len(a.Fields) != len(b.Fields) {
		return nil, mismatch(a, b)
	}
	// Fields each side requires from the other.
	check := func(from, to RecordTypeExp) *TypeError {
		if !to.Complete {
			return nil
		}
		for name := range from.Fields {
			if _, ok := to.Fields[name]; !ok {
				return &TypeError{
					Message: fmt.Sprintf("record %s has no field %s", Resolve(to).String(), name),
					Types:   []TypeExp{a, b},
				}
			}
		}
		return nil
	}
	if err := check(a, b); err != nil {
		return nil, err
	}
	if err := check(b, a); err != nil {
		return nil, err
	}

	fields := make(map[string]TypeExp, len(a.Fields)+len(b.Fields))
	for name, ft := range a.Fields {
		fields[name] = ft
	}
	for name, ft := range b.Fields {
		existing, ok := fields[name]
		if !ok {
			fields[name] = ft
			continue
		}
		unified, err := Unify(existing, ft)
		if err != nil {
			return nil, &TypeError{
				Message: fmt.Sprintf("field %s: %s", name, err.Message),
				Types:   []TypeExp{a, b},
			}
		}
		fields[name] = unified
	}
	return RecordTypeExp{Fields: fields, Complete: a.Complete || b.Complete}, nil
}

// IndexedTypeError is a TypeError attributed to one item of a UnifyAll call.
type IndexedTypeError struct {
	Index int
	Err   *TypeError
}

// UnifyAll unifies a list of types left to right.  A failure does not stop
// the walk: the running type is kept and the remaining items are still
// unified against it, so every mismatching item gets its own error.
func UnifyAll(ts ...TypeExp) (TypeExp, []IndexedTypeError) {
	if len(ts) == 0 {
		return NewMutVar(), nil
	}
	acc := ts[0]
	var errs []IndexedTypeError
	for i := 1; i < len(ts); i++ {
		unified, err := Unify(acc, ts[i])
		if err != nil {
			errs = append(errs, IndexedTypeError{Index: i, Err: err})
			continue
		}
		acc = unified
	}
	return acc, errs
}

// Strings renders types for messages.
func Strings(ts []TypeExp) string {
	return strings.Join(gfn.Map(ts, func(t TypeExp) string { return Resolve(t).String() }), ", ")
}
