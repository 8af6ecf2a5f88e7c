package loader

import (
	"errors"
	"fmt"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

// ExpressionKind says whether a node is checked as a value or as a pattern
// that may bind variables.
type ExpressionKind int

const (
	KindExpression ExpressionKind = iota
	KindPattern
)

func (k ExpressionKind) String() string {
	if k == KindPattern {
		return "pattern"
	}
	return "expression"
}

// LocationInfo tells a numeric literal how its unit is constrained by the
// position it appears in.
type LocationInfo int

const (
	// UnitDefault: a bare literal is a scalar.
	UnitDefault LocationInfo = iota
	// UnitConstrained: the literal must agree with the units of its
	// siblings, eg in + or <.  A mismatch offers to change its unit.
	UnitConstrained
	// UnitModifying: the literal scales the unit, as in * and /.
	UnitModifying
)

// CheckedExp is the result of checking one node: its type and the state
// that follows it.  The state only differs from the input for patterns and
// for nodes that pass pattern bindings on.
type CheckedExp struct {
	Type  TypeExp
	State *TypeState
}

// Checked is a successfully checked tree.  The annotations are needed to
// evaluate it.
type Checked struct {
	Expr        Expression
	Kind        ExpressionKind
	Type        TypeExp
	State       *TypeState
	Annotations *Annotations
}

// Checker type checks expression trees.  A Checker may be reused but not
// shared between goroutines.
type Checker struct {
	columns ColumnLookup
	sink    ErrorSink

	ann         *Annotations
	errors      int
	constrained map[NodeID]bool
}

// NewChecker creates a checker.  columns may be nil for expressions that
// do not refer to tables.  A nil sink collects into a fresh Diagnostics.
func NewChecker(columns ColumnLookup, sink ErrorSink) *Checker {
	if sink == nil {
		sink = NewDiagnostics()
	}
	return &Checker{columns: columns, sink: sink}
}

// Sink returns the sink the checker reports to.
func (c *Checker) Sink() ErrorSink { return c.sink }

// Check resolves and checks expr as a value.  Problems are reported to the
// sink and the returned error wraps ErrCheckFailed.  An internal error is
// returned as a *core.InternalError.
func (c *Checker) Check(expr Expression, state *TypeState) (*Checked, error) {
	return c.check(expr, state, KindExpression)
}

// CheckPattern checks expr as a pattern, for use with Evaluator.Match.
func (c *Checker) CheckPattern(expr Expression, state *TypeState) (*Checked, error) {
	return c.check(expr, state, KindPattern)
}

func (c *Checker) check(expr Expression, state *TypeState, kind ExpressionKind) (out *Checked, err error) {
	defer core.RecoverInternal(&err)
	defer stopOnTooManyErrors(&err)
	if expr == nil || state == nil {
		return nil, core.NewInternalError("check needs an expression and a state")
	}
	c.ann = NewAnnotations()
	c.errors = 0
	c.constrained = map[NodeID]bool{}

	r := NewResolver(c.columns, state, c.ann)
	if kind == KindPattern {
		r.resolvePattern(expr, scopeOf(state))
	} else {
		r.Resolve(expr, state)
	}

	res := c.CheckNode(expr, state, kind, UnitDefault)
	if res == nil && c.errors == 0 {
		core.Internalf("check of %s failed without reporting an error", decl.Save(expr, decl.ToDisplay))
	}
	if res == nil || c.errors > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrCheckFailed, c.errors)
	}
	return &Checked{Expr: expr, Kind: kind, Type: types.Resolve(res.Type), State: res.State, Annotations: c.ann}, nil
}

// stopOnTooManyErrors turns the panic raised by a sink that has reached its
// error limit back into an error.
func stopOnTooManyErrors(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, ErrTooManyErrors) {
		*errp = e
		return
	}
	panic(r)
}

func scopeOf(state *TypeState) scope {
	sc := scope{}
	for _, v := range state.Variables() {
		sc = sc.with(v)
	}
	return sc
}

// CheckNode checks one node.  It returns nil if the node failed, in which
// case at least one error has been reported.
func (c *Checker) CheckNode(e Expression, state *TypeState, kind ExpressionKind, loc LocationInfo) *CheckedExp {
	var out *CheckedExp
	if kind == KindPattern && !patternCapable(e) {
		out = c.checkValuePattern(e, state, loc)
	} else {
		out = c.checkNode(e, state, kind, loc)
	}
	if out == nil {
		return nil
	}
	out.Type = c.recordType(e, out.Type)
	return out
}

func (c *Checker) recordType(e Expression, t TypeExp) TypeExp {
	t = c.sink.RecordType(e, t)
	return c.ann.SetType(e.ID(), t)
}

// patternCapable lists the nodes that mean something of their own in a
// pattern.  Anything else in a pattern is a value the matched value is
// compared with.
func patternCapable(e Expression) bool {
	switch e.(type) {
	case *decl.IdentExpression, *decl.MatchAnythingExpression, *decl.TupleExpression, *decl.RecordExpression,
		*decl.ArrayExpression, *decl.StringConcatExpression, *decl.PlusMinusPatternExpression, *decl.CallExpression,
		*decl.NumericLiteral, *decl.StringLiteral, *decl.BooleanLiteral, *decl.TemporalLiteral:
		return true
	}
	return false
}

func (c *Checker) checkValuePattern(e Expression, state *TypeState, loc LocationInfo) *CheckedExp {
	res := c.checkNode(e, state, KindExpression, loc)
	if res == nil {
		return nil
	}
	if err := types.RequireClasses(res.Type, types.Equatable); err != nil {
		return c.errorf(e, "cannot match against %s: %s", decl.Save(e, decl.ToDisplay), err.Message)
	}
	return c.ok(res.Type, state)
}

func (c *Checker) checkNode(e Expression, state *TypeState, kind ExpressionKind, loc LocationInfo) *CheckedExp {
	switch n := e.(type) {
	case *decl.NumericLiteral:
		return c.checkNumber(n, state, loc)
	case *decl.StringLiteral:
		return c.ok(types.TextType, state)
	case *decl.BooleanLiteral:
		return c.ok(types.BoolType, state)
	case *decl.TemporalLiteral:
		t, err := decl.ParseTemporal(n.Kind, n.Content)
		if err != nil {
			return c.errorf(n, "%v", err)
		}
		c.ann.SetTemporal(n.ID(), t)
		return c.ok(types.Primitive(n.Kind), state)
	case *decl.UnitLiteral:
		u, err := decl.ToUnit(n.Unit, decl.ManagerUnits(state.UnitManager()))
		if err != nil {
			return c.errorf(n, "%v", err)
		}
		c.ann.SetUnitValue(n.ID(), u)
		return c.ok(types.UnitOf(u), state)
	case *decl.TypeLiteral:
		t, err := decl.ToType(n.Type, decl.TypeSyntaxEnv{Types: state.TypeManager(), Units: state.UnitManager()})
		if err != nil {
			return c.errorf(n, "%v", err)
		}
		c.ann.SetTypeValue(n.ID(), t)
		return c.ok(types.TypeOf(t), state)
	case *decl.IdentExpression:
		return c.checkIdent(n, state, kind)
	case *decl.AddSubtractExpression:
		return c.checkAddSubtract(n, state)
	case *decl.TimesExpression:
		return c.checkTimes(n, state)
	case *decl.DivideExpression:
		return c.checkDivide(n, state)
	case *decl.RaiseExpression:
		return c.checkRaise(n, state)
	case *decl.ComparisonExpression:
		return c.checkComparison(n, state)
	case *decl.EqualExpression:
		return c.checkEqual(n, state)
	case *decl.NotEqualExpression:
		return c.checkNotEqual(n, state)
	case *decl.AndExpression:
		return c.checkAnd(n, state)
	case *decl.OrExpression:
		return c.checkOr(n, state)
	case *decl.StringConcatExpression:
		return c.checkConcat(n, state, kind)
	case *decl.PlusMinusPatternExpression:
		return c.checkPlusMinus(n, state, kind)
	case *decl.HasTypeExpression:
		return c.errorf(n, "type declarations are only allowed in @define")
	case *decl.CallExpression:
		return c.checkCall(n, state, kind, loc)
	case *decl.ArrayExpression:
		return c.checkArray(n, state, kind)
	case *decl.RecordExpression:
		return c.checkRecord(n, state, kind)
	case *decl.TupleExpression:
		return c.checkTuple(n, state, kind)
	case *decl.FieldAccessExpression:
		return c.checkFieldAccess(n, state)
	case *decl.IfThenElseExpression:
		return c.checkIf(n, state)
	case *decl.MatchExpression:
		return c.checkMatch(n, state)
	case *decl.DefineExpression:
		return c.checkDefine(n, state)
	case *decl.LambdaExpression:
		return c.checkLambda(n, state)
	case *decl.ImplicitLambdaArg:
		cands := state.FindVarType(ImplicitArgName)
		if len(cands) == 0 {
			return c.errorf(n, "? can only be used directly as an operand, a function argument or the target of #")
		}
		return c.ok(cands[0], state)
	case *decl.MatchAnythingExpression:
		if kind != KindPattern {
			return c.errorf(n, "_ can only be used in a pattern")
		}
		return c.ok(state.FreshTypeVar(), state)
	case *decl.InvalidOperatorExpression:
		return c.checkInvalidOperators(n, state)
	case *decl.InvalidIdentExpression:
		return c.errorf(n, "unrecognised: %s", n.Text)
	}
	core.Internalf("cannot check %T", e)
	return nil
}

// --- reporting ---

func (c *Checker) ok(t TypeExp, state *TypeState) *CheckedExp {
	return &CheckedExp{Type: t, State: state}
}

func (c *Checker) report(node Expression, msg string) {
	c.errors++
	c.sink.RecordError(node, msg)
}

// errorf reports an error at node and returns nil for the caller to pass up.
func (c *Checker) errorf(node Expression, format string, args ...any) *CheckedExp {
	c.report(node, fmt.Sprintf(format, args...))
	return nil
}

func (c *Checker) offerFixes(node Expression, ctors ...func() (QuickFix, error)) {
	if fixes := buildFixes(ctors...); len(fixes) > 0 {
		c.sink.RecordQuickFixes(node, fixes)
	}
}

// --- literals and identifiers ---

func (c *Checker) checkNumber(n *decl.NumericLiteral, state *TypeState, loc LocationInfo) *CheckedExp {
	if n.Unit == nil {
		if loc == UnitConstrained {
			c.constrained[n.ID()] = true
		}
		return c.ok(types.PlainNumber(), state)
	}
	u, err := decl.ToUnit(n.Unit, decl.ManagerUnits(state.UnitManager()))
	if err != nil {
		return c.errorf(n, "%v", err)
	}
	if loc == UnitConstrained {
		c.constrained[n.ID()] = true
	}
	return c.ok(types.Number(u), state)
}

func (c *Checker) checkIdent(n *decl.IdentExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	res := c.ann.Resolution(n.ID())
	if res == nil {
		core.Internalf("identifier %s was not resolved", decl.Save(n, decl.ToFile))
	}
	var t TypeExp
	switch res.Kind {
	case ResolvedVariable:
		return c.checkVariable(n, state, kind)
	case ResolvedColumn:
		if res.Column == nil {
			return c.errorf(n, "no such column: %s", n.Name())
		}
		if res.Column.Information != "" {
			c.sink.RecordInformation(n, res.Column.Information)
		}
		t = res.Column.Type
		if res.Column.WholeColumn {
			t = types.List(t)
		}
	case ResolvedTable:
		if res.Table == nil {
			return c.errorf(n, "no such table: %s", n.Name())
		}
		fields := map[string]TypeExp{}
		for _, col := range res.Table.ColumnNames() {
			fields[col] = res.Table.ColumnType(col)
		}
		t = types.List(types.Record(fields))
	case ResolvedTag:
		if res.Err != nil {
			return c.errorf(n, "%v", res.Err)
		}
		inst := res.Tag.Def.Instantiate()
		tag := inst.Tags[res.Tag.Index]
		if tag.Inner == nil {
			t = inst.Type
		} else if kind == KindPattern {
			return c.errorf(n, "tag %s has a value, so it must be matched as %s(...)", tag.Name, tag.Name)
		} else {
			t = types.Function(inst.Type, tag.Inner)
		}
	case ResolvedFunction:
		if res.Function == nil {
			return c.errorf(n, "no such function: %s", n.Name())
		}
		if kind == KindPattern {
			return c.errorf(n, "a function cannot be used as a pattern")
		}
		inst := res.Function.Instantiate()
		c.ann.SetFunction(n.ID(), inst)
		return c.ok(inst.Type(), state)
	}
	if kind == KindPattern {
		if err := types.RequireClasses(t, types.Equatable); err != nil {
			return c.errorf(n, "cannot match against %s: %s", n.Name(), err.Message)
		}
	}
	return c.ok(t, state)
}

// checkVariable handles a variable use or, in a pattern, a name not yet
// bound, which the pattern then declares.
func (c *Checker) checkVariable(n *decl.IdentExpression, state *TypeState, kind ExpressionKind) *CheckedExp {
	name := n.Name()
	if len(n.Parts) > 1 {
		return c.errorf(n, "unknown name: %s", decl.Save(n, decl.ToDisplay))
	}
	cands := state.FindVarType(name)
	if kind == KindPattern && cands == nil {
		t, ok := state.PreType(name)
		if !ok {
			t = state.FreshTypeVar()
		}
		next := state.Add(name, t, func(msg string) { c.report(n, msg) })
		if next == nil {
			return nil
		}
		c.ann.MarkDeclaration(n.ID())
		return c.ok(t, next)
	}
	if cands == nil {
		if state.PartiallyBound(name) {
			return c.errorf(n, "%s is not bound in every alternative of this @case", name)
		}
		return c.errorf(n, "unknown name: %s", name)
	}
	t := cands[0]
	if len(cands) > 1 {
		unified, errs := types.UnifyAll(cands...)
		if len(errs) > 0 {
			return c.errorf(n, "%s has differing types in different branches: %s", name, types.Strings(cands))
		}
		t = unified
	}
	if kind == KindPattern {
		if err := types.RequireClasses(t, types.Equatable); err != nil {
			return c.errorf(n, "cannot match against %s: %s", name, err.Message)
		}
	}
	return c.ok(t, state)
}

// declaredIn lists the variables a checked pattern declares.
func (c *Checker) declaredIn(pattern Expression) []string {
	return decl.Fold(pattern, []string(nil), func(acc []string, e Expression) []string {
		if id, ok := e.(*decl.IdentExpression); ok && c.ann.IsDeclaration(id.ID()) {
			acc = append(acc, id.Name())
		}
		return acc
	})
}
