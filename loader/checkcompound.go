package loader

import (
	"fmt"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

// checkItems checks a list of siblings.  In a pattern the state is threaded
// from left to right so that a name bound twice is a repeated match; as an
// expression the state is unchanged.  It returns false if any item failed.
func (c *Checker) checkItems(items []Expression, state *TypeState, kind ExpressionKind, loc LocationInfo) ([]TypeExp, *TypeState, bool) {
	if kind != KindPattern {
		ts := c.checkOperands(items, state, loc)
		return ts, state, ts != nil
	}
	out := make([]TypeExp, len(items))
	cur, ok := state, true
	for i, item := range items {
		res := c.CheckNode(item, cur, KindPattern, loc)
		if res == nil {
			ok = false
			continue
		}
		out[i] = res.Type
		cur = res.State
	}
	return out, cur, ok
}

func (c *Checker) requireBool(e Expression, t TypeExp, what string) bool {
	if _, err := types.Unify(t, types.BoolType); err != nil {
		c.report(e, fmt.Sprintf("%s must be a Boolean, found %s", what, types.Resolve(t)))
		return false
	}
	return true
}

// --- collections ---

func (c *Checker) checkArray(n *decl.ArrayExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	opTypes, next, ok := c.checkItems(n.Items, state, kind, UnitConstrained)
	if !ok {
		return nil
	}
	elem, ok := c.unifyOperands(n.Items, opTypes, state.FreshTypeVar(), c.unitHook(n.Items, opTypes))
	if !ok {
		return nil
	}
	return c.ok(types.List(elem), next)
}

func (c *Checker) checkRecord(n *decl.RecordExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	values := make([]Expression, len(n.Fields))
	seen := map[string]bool{}
	dup := false
	for i, f := range n.Fields {
		if seen[f.Name] {
			c.report(n, fmt.Sprintf("duplicate field name: %s", f.Name))
			dup = true
		}
		seen[f.Name] = true
		values[i] = f.Value
	}
	opTypes, next, ok := c.checkItems(values, state, kind, UnitDefault)
	if !ok || dup {
		return nil
	}
	fields := make(map[string]TypeExp, len(n.Fields))
	for i, f := range n.Fields {
		fields[f.Name] = opTypes[i]
	}
	return c.ok(types.Record(fields), next)
}

func (c *Checker) checkTuple(n *decl.TupleExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	opTypes, next, ok := c.checkItems(n.Items, state, kind, UnitDefault)
	if !ok {
		return nil
	}
	return c.ok(types.Tuple(opTypes...), next)
}

// checkFieldAccess only needs the target to have the field; other fields
// are left open.
func (c *Checker) checkFieldAccess(n *decl.FieldAccessExpression, state *TypeState) *CheckedExp {
	return c.withImplicitLambda(n, []Expression{n.Target}, state, func(st *TypeState) *CheckedExp {
		target := c.CheckNode(n.Target, st, KindExpression, UnitDefault)
		if target == nil {
			return nil
		}
		field := st.FreshTypeVar()
		if _, err := types.Unify(target.Type, types.OpenRecord(map[string]TypeExp{n.Field: field})); err != nil {
			return c.errorf(n, "%s has no field %s", types.Resolve(target.Type), n.Field)
		}
		return c.ok(field, state)
	})
}

// --- control flow ---

// checkIf makes pattern bindings of the condition visible in @then only.
func (c *Checker) checkIf(n *decl.IfThenElseExpression, state *TypeState) *CheckedExp {
	cond := c.CheckNode(n.Condition, state, KindExpression, UnitDefault)
	thenState := state
	condOK := cond != nil && c.requireBool(n.Condition, cond.Type, "the condition of @if")
	if cond != nil {
		thenState = cond.State
	}
	then := c.CheckNode(n.Then, thenState, KindExpression, UnitDefault)
	els := c.CheckNode(n.Else, state, KindExpression, UnitDefault)
	if !condOK || then == nil || els == nil {
		return nil
	}
	t, err := types.Unify(then.Type, els.Type)
	if err != nil {
		return c.errorf(n.Else, "@then and @else have different types: %s and %s", types.Resolve(then.Type), types.Resolve(els.Type))
	}
	return c.ok(t, state)
}

// checkMatch checks each alternative from the state before the match, then
// merges the alternatives of a clause with Intersect for its outcome.  Each
// pattern is unified with the matched value as soon as it is checked, so
// that uses of its variables in guards and outcomes see the value's type.
func (c *Checker) checkMatch(n *decl.MatchExpression, state *TypeState) *CheckedExp {
	if len(n.Clauses) == 0 {
		return c.errorf(n, "@match needs at least one @case")
	}
	scrutinee := c.CheckNode(n.Expression, state, KindExpression, UnitDefault)
	if scrutinee == nil {
		return nil
	}

	ok := true
	var outcomes []Expression
	var outcomeTypes []TypeExp
	for _, clause := range n.Clauses {
		var alts []*TypeState
		for _, alt := range clause.Patterns {
			pr := c.CheckNode(alt.Pattern, state, KindPattern, UnitConstrained)
			if pr == nil {
				ok = false
				continue
			}
			if _, err := types.Unify(scrutinee.Type, pr.Type); err != nil {
				c.report(alt.Pattern, fmt.Sprintf("pattern %s does not fit the value being matched: %s",
					decl.Save(alt.Pattern, decl.ToDisplay), err.Message))
				if lit, isLit := alt.Pattern.(*decl.NumericLiteral); isLit && c.constrained[lit.ID()] {
					c.offerFixes(lit, unitFix(lit, scrutinee.Type))
				}
				ok = false
				continue
			}
			st := pr.State
			if alt.Guard != nil {
				g := c.CheckNode(alt.Guard, st, KindExpression, UnitDefault)
				if g == nil || !c.requireBool(alt.Guard, g.Type, "a guard") {
					ok = false
					continue
				}
				st = g.State
			}
			alts = append(alts, st)
		}
		if len(alts) == 0 {
			continue
		}
		out := c.CheckNode(clause.Outcome, Intersect(alts...), KindExpression, UnitDefault)
		if out == nil {
			ok = false
			continue
		}
		outcomes = append(outcomes, clause.Outcome)
		outcomeTypes = append(outcomeTypes, out.Type)
	}
	if !ok {
		return nil
	}

	result, errs := types.UnifyAll(outcomeTypes...)
	for _, ie := range errs {
		c.report(outcomes[ie.Index], fmt.Sprintf("outcome has type %s but earlier outcomes have type %s",
			types.Resolve(outcomeTypes[ie.Index]), types.Resolve(result)))
	}
	if len(errs) > 0 {
		return nil
	}
	return c.ok(result, state)
}

// checkDefine walks the items in order.  A type given with :: is held as a
// pre-type until the definition that binds the variable; each definition's
// value is checked before its pattern, so a name cannot refer to itself.
func (c *Checker) checkDefine(n *decl.DefineExpression, state *TypeState) *CheckedExp {
	cur, ok := state, true
	var declared []*decl.HasTypeExpression
	for _, item := range n.Items {
		if h := item.Type; h != nil {
			t, fine := c.typeOfHasType(h, cur)
			if !fine {
				ok = false
				continue
			}
			next := cur.AddPreType(h.Var.Name(), t, func(msg string) { c.report(h, msg) })
			if next == nil {
				ok = false
				continue
			}
			declared = append(declared, h)
			cur = next
			continue
		}

		def := item.Definition
		value := c.CheckNode(def.Value, cur, KindExpression, UnitDefault)
		pattern := c.CheckNode(def.Pattern, cur, KindPattern, UnitDefault)
		if pattern == nil {
			ok = false
			continue
		}
		next := pattern.State
		for _, name := range c.declaredIn(def.Pattern) {
			next = next.ClearPreType(name)
		}
		cur = next
		if value == nil {
			ok = false
			continue
		}
		if _, err := types.Unify(pattern.Type, value.Type); err != nil {
			c.report(def.Value, fmt.Sprintf("cannot define %s as %s: %s",
				decl.Save(def.Pattern, decl.ToDisplay), decl.Save(def.Value, decl.ToDisplay), err.Message))
			if lit, isLit := def.Value.(*decl.NumericLiteral); isLit {
				c.offerFixes(lit, unitFix(lit, pattern.Type))
			}
			ok = false
		}
	}
	for _, h := range declared {
		if _, pending := cur.PreType(h.Var.Name()); pending {
			c.report(h, fmt.Sprintf("type given for %s but %s is never defined", h.Var.Name(), h.Var.Name()))
			ok = false
		}
	}
	body := c.CheckNode(n.Body, cur, KindExpression, UnitDefault)
	if !ok || body == nil {
		return nil
	}
	return c.ok(body.Type, state)
}

// typeOfHasType reads the type{..} of a :: declaration.
func (c *Checker) typeOfHasType(h *decl.HasTypeExpression, state *TypeState) (TypeExp, bool) {
	lit, isLit := h.Type.(*decl.TypeLiteral)
	if !isLit {
		c.report(h, fmt.Sprintf("the type of %s must be written as type{...}", h.Var.Name()))
		return nil, false
	}
	t, err := decl.ToType(lit.Type, decl.TypeSyntaxEnv{Types: state.TypeManager(), Units: state.UnitManager()})
	if err != nil {
		c.report(lit, err.Error())
		return nil, false
	}
	c.recordType(h, t)
	return t, true
}

func (c *Checker) checkLambda(n *decl.LambdaExpression, state *TypeState) *CheckedExp {
	params, cur, ok := c.checkItems(n.Params, state, KindPattern, UnitDefault)
	body := c.CheckNode(n.Body, cur, KindExpression, UnitDefault)
	if !ok || body == nil {
		return nil
	}
	return c.ok(types.Function(body.Type, params...), state)
}

// --- calls ---

func (c *Checker) checkCall(n *decl.CallExpression, state *TypeState, kind ExpressionKind, loc LocationInfo) *CheckedExp {
	if ref, isTag := c.calledTag(n); isTag {
		if kind == KindPattern {
			return c.checkTagCall(n, ref, state, kind, loc)
		}
		return c.withImplicitLambda(n, n.Args, state, func(st *TypeState) *CheckedExp {
			res := c.checkTagCall(n, ref, st, kind, loc)
			if res == nil {
				return nil
			}
			return c.ok(res.Type, state)
		})
	}
	if kind == KindPattern {
		return c.checkValuePattern(n, state, loc)
	}
	return c.withImplicitLambda(n, n.Args, state, func(st *TypeState) *CheckedExp {
		fn := c.CheckNode(n.Function, st, KindExpression, UnitDefault)
		argTypes := c.checkOperands(n.Args, st, UnitDefault)
		if fn == nil || argTypes == nil {
			return nil
		}
		result, ok := c.applyFunction(n, fn.Type, argTypes)
		if !ok {
			return nil
		}
		return c.ok(result, state)
	})
}

// applyFunction unifies a function type with the argument types.  When the
// function's shape is known each argument is reported on its own.
func (c *Checker) applyFunction(n *decl.CallExpression, fnType TypeExp, argTypes []TypeExp) (TypeExp, bool) {
	name := decl.Save(n.Function, decl.ToDisplay)
	ft, known := types.Prune(fnType).(types.FunctionTypeExp)
	if !known {
		result := types.NewMutVar()
		if _, err := types.Unify(fnType, types.Function(result, argTypes...)); err != nil {
			c.report(n.Function, fmt.Sprintf("%s is not a function: %s", name, err.Message))
			return nil, false
		}
		return result, true
	}
	if len(ft.Params) != len(argTypes) {
		c.report(n, fmt.Sprintf("%s expects %d argument(s) but was given %d", name, len(ft.Params), len(argTypes)))
		return nil, false
	}
	ok := true
	for i, p := range ft.Params {
		if _, err := types.Unify(p, argTypes[i]); err != nil {
			c.report(n.Args[i], fmt.Sprintf("argument %d of %s: %s", i+1, name, err.Message))
			ok = false
		}
	}
	return ft.Result, ok
}

func (c *Checker) calledTag(n *decl.CallExpression) (*Resolution, bool) {
	id, ok := n.Function.(*decl.IdentExpression)
	if !ok {
		return nil, false
	}
	res := c.ann.Resolution(id.ID())
	return res, res != nil && res.Kind == ResolvedTag
}

// checkTagCall checks Tag(inner).  Several arguments are taken as one
// tuple.  In a pattern the arguments are themselves patterns.
func (c *Checker) checkTagCall(n *decl.CallExpression, ref *Resolution, state *TypeState, kind ExpressionKind, loc LocationInfo) *CheckedExp {
	if ref.Err != nil {
		return c.errorf(n.Function, "%v", ref.Err)
	}
	inst := ref.Tag.Def.Instantiate()
	tag := inst.Tags[ref.Tag.Index]
	if tag.Inner == nil {
		return c.errorf(n, "tag %s has no value, so it is written without brackets", tag.Name)
	}
	if len(n.Args) == 0 {
		return c.errorf(n, "tag %s needs a value", tag.Name)
	}
	argTypes, next, ok := c.checkItems(n.Args, state, kind, loc)
	if !ok {
		return nil
	}
	inner := argTypes[0]
	if len(argTypes) > 1 {
		inner = types.Tuple(argTypes...)
	}
	if _, err := types.Unify(tag.Inner, inner); err != nil {
		at := Expression(n)
		if len(n.Args) == 1 {
			at = n.Args[0]
		}
		return c.errorf(at, "%s expects %s but was given %s", tag.Name, types.Resolve(tag.Inner), types.Resolve(inner))
	}
	c.recordType(n.Function, types.Function(inst.Type, tag.Inner))
	c.ann.MarkTagCall(n.ID())
	return c.ok(inst.Type, next)
}
