package runtime

import (
	"errors"
	"fmt"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
)

// Evaluator runs a checked expression.  The checked tree and its
// annotations are only read, so one Evaluator may be used from several
// goroutines as long as each passes its own EvaluateState.
type Evaluator struct {
	checked *loader.Checked
	ann     *loader.Annotations
}

func NewEvaluator(checked *loader.Checked) *Evaluator {
	return &Evaluator{checked: checked, ann: checked.Annotations}
}

// Evaluate computes the value of a checked expression.  Problems with the
// formula are returned as *EvaluationError, broken invariants as
// *core.InternalError.
func (ev *Evaluator) Evaluate(state *EvaluateState) (res *ValueResult, err error) {
	defer core.RecoverInternal(&err)
	if ev.checked.Kind != loader.KindExpression {
		return nil, core.NewInternalError("cannot evaluate the pattern %s", ev.checked.Expr)
	}
	return ev.evaluate(ev.checked.Expr, state)
}

// Match matches value against a checked pattern.  On success the result's
// state holds the variables the pattern binds.
func (ev *Evaluator) Match(value Value, state *EvaluateState) (res *ValueResult, err error) {
	defer core.RecoverInternal(&err)
	if ev.checked.Kind != loader.KindPattern {
		return nil, core.NewInternalError("%s was not checked as a pattern", ev.checked.Expr)
	}
	return ev.match(ev.checked.Expr, value, state)
}

// EvaluateColumn evaluates the expression once for each of rows rows,
// stopping at the first error.
func (ev *Evaluator) EvaluateColumn(state *EvaluateState, rows int) ([]Value, error) {
	out := make([]Value, 0, rows)
	for row := range rows {
		res, err := ev.Evaluate(state.WithRow(row))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, res.Value)
	}
	return out, nil
}

// evaluate is the entry for every node: a node marked as an implicit
// lambda becomes a function of ?, anything else is evaluated directly.
func (ev *Evaluator) evaluate(e Expression, st *EvaluateState) (*ValueResult, error) {
	if ev.ann.IsImplicitLambda(e.ID()) {
		fn := &implicitLambda{ev: ev, expr: e, state: st}
		return &ValueResult{Value: decl.FunctionVal(fn), State: st, Expr: e}, nil
	}
	return ev.evaluateNode(e, st)
}

func (ev *Evaluator) evaluateNode(e Expression, st *EvaluateState) (*ValueResult, error) {
	c := &collector{ev: ev}
	v, next, err := c.node(e, st)
	if err != nil {
		return nil, withFrame(err, e, c.children)
	}
	return c.result(e, next, v, ExplainValue), nil
}

func (ev *Evaluator) match(e Expression, v Value, st *EvaluateState) (*ValueResult, error) {
	c := &collector{ev: ev}
	ok, next, err := c.pattern(e, v, st)
	if err != nil {
		return nil, withFrame(err, e, c.children)
	}
	if !ok {
		next = st
	}
	return c.result(e, next, decl.BoolValue(ok), ExplainMatch), nil
}

// collector gathers the child results of one node for its explanation.
type collector struct {
	ev        *Evaluator
	children  []*ValueResult
	locations []ExplanationLocation
}

func (c *collector) result(e Expression, st *EvaluateState, v Value, kind ExplanationKind) *ValueResult {
	r := &ValueResult{Value: v, State: st, Expr: e, kind: kind}
	if st.RecordExplanation() {
		r.children, r.locations = c.children, c.locations
	}
	return r
}

func (c *collector) add(r *ValueResult) *ValueResult {
	c.children = append(c.children, r)
	return r
}

// evalResult evaluates a child and keeps its result.
func (c *collector) evalResult(e Expression, st *EvaluateState) (*ValueResult, error) {
	r, err := c.ev.evaluate(e, st)
	if err != nil {
		return nil, err
	}
	return c.add(r), nil
}

func (c *collector) eval(e Expression, st *EvaluateState) (Value, error) {
	r, err := c.evalResult(e, st)
	if err != nil {
		return Value{}, err
	}
	return r.Value, nil
}

func (c *collector) evalAll(es []Expression, st *EvaluateState) ([]Value, error) {
	out := make([]Value, len(es))
	for i, e := range es {
		v, err := c.eval(e, st)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// matchChild matches a sub-pattern and keeps its result.
func (c *collector) matchChild(e Expression, v Value, st *EvaluateState) (bool, *EvaluateState, error) {
	r, err := c.ev.match(e, v, st)
	if err != nil {
		return false, nil, err
	}
	c.add(r)
	return r.Matched(), r.State, nil
}

func (c *collector) node(e Expression, st *EvaluateState) (Value, *EvaluateState, error) {
	switch n := e.(type) {
	case *decl.NumericLiteral:
		return decl.NumberValue(n.Value), st, nil
	case *decl.StringLiteral:
		return decl.TextValue(n.Value), st, nil
	case *decl.BooleanLiteral:
		return decl.BoolValue(n.Value), st, nil
	case *decl.TemporalLiteral:
		t, ok := c.ev.ann.Temporal(n.ID())
		if !ok {
			core.Internalf("temporal literal %s was not checked", n)
		}
		return decl.TemporalValue(t), st, nil
	case *decl.UnitLiteral:
		u, ok := c.ev.ann.UnitValue(n.ID())
		if !ok {
			core.Internalf("unit literal %s was not checked", n)
		}
		return decl.UnitVal(u), st, nil
	case *decl.TypeLiteral:
		t, ok := c.ev.ann.TypeValue(n.ID())
		if !ok {
			core.Internalf("type literal %s was not checked", n)
		}
		return decl.TypeVal(t), st, nil
	case *decl.IdentExpression:
		v, err := c.ident(n, st)
		return v, st, err
	case *decl.AddSubtractExpression:
		v, err := c.addSubtract(n, st)
		return v, st, err
	case *decl.TimesExpression:
		v, err := c.times(n, st)
		return v, st, err
	case *decl.DivideExpression:
		v, err := c.divide(n, st)
		return v, st, err
	case *decl.RaiseExpression:
		v, err := c.raise(n, st)
		return v, st, err
	case *decl.ComparisonExpression:
		v, err := c.comparison(n, st)
		return v, st, err
	case *decl.EqualExpression:
		return c.equal(n, st)
	case *decl.NotEqualExpression:
		vals, err := c.evalAll([]Expression{n.Left, n.Right}, st)
		if err != nil {
			return Value{}, nil, err
		}
		return decl.BoolValue(!vals[0].Equals(vals[1])), st, nil
	case *decl.AndExpression:
		return c.and(n, st)
	case *decl.OrExpression:
		for _, op := range n.Operands {
			v, err := c.eval(op, st)
			if err != nil {
				return Value{}, nil, err
			}
			if mustBool(v) {
				return decl.BoolValue(true), st, nil
			}
		}
		return decl.BoolValue(false), st, nil
	case *decl.StringConcatExpression:
		vals, err := c.evalAll(n.Operands, st)
		if err != nil {
			return Value{}, nil, err
		}
		var out string
		for _, v := range vals {
			out += mustText(v)
		}
		return decl.TextValue(out), st, nil
	case *decl.CallExpression:
		v, err := c.call(n, st)
		return v, st, err
	case *decl.ArrayExpression:
		vals, err := c.evalAll(n.Items, st)
		if err != nil {
			return Value{}, nil, err
		}
		return decl.ListValue(vals), st, nil
	case *decl.RecordExpression:
		names := make([]string, len(n.Fields))
		fields := make(map[string]Value, len(n.Fields))
		for i, f := range n.Fields {
			v, err := c.eval(f.Value, st)
			if err != nil {
				return Value{}, nil, err
			}
			names[i] = f.Name
			fields[f.Name] = v
		}
		return decl.RecordVal(names, fields), st, nil
	case *decl.TupleExpression:
		vals, err := c.evalAll(n.Items, st)
		if err != nil {
			return Value{}, nil, err
		}
		return decl.TupleVal(vals...), st, nil
	case *decl.FieldAccessExpression:
		target, err := c.eval(n.Target, st)
		if err != nil {
			return Value{}, nil, err
		}
		v, err := target.GetField(n.Field)
		core.EnsureNoErr(err, "field access %s", n)
		return v, st, nil
	case *decl.IfThenElseExpression:
		cond, err := c.evalResult(n.Condition, st)
		if err != nil {
			return Value{}, nil, err
		}
		branch, next := n.Else, st
		if mustBool(cond.Value) {
			branch, next = n.Then, cond.State
		}
		v, err := c.eval(branch, next)
		return v, st, err
	case *decl.MatchExpression:
		v, err := c.matchExpr(n, st)
		return v, st, err
	case *decl.DefineExpression:
		v, err := c.define(n, st)
		return v, st, err
	case *decl.LambdaExpression:
		return decl.FunctionVal(&lambdaValue{ev: c.ev, node: n, state: st}), st, nil
	case *decl.ImplicitLambdaArg:
		v, ok := st.Get(ImplicitArgName)
		if !ok {
			core.Internalf("? evaluated outside of an implicit lambda")
		}
		return v, st, nil
	}
	core.Internalf("cannot evaluate %T %s", e, e)
	return Value{}, nil, nil
}

func (c *collector) ident(n *decl.IdentExpression, st *EvaluateState) (Value, error) {
	res := c.ev.ann.Resolution(n.ID())
	if res == nil {
		core.Internalf("identifier %s was not resolved", n)
	}
	switch res.Kind {
	case loader.ResolvedVariable:
		if c.ev.ann.IsDeclaration(n.ID()) {
			core.Internalf("pattern variable %s evaluated as a value", n.Name())
		}
		v, ok := st.Get(n.Name())
		if !ok {
			core.Internalf("variable %s is not bound", n.Name())
		}
		return v, nil
	case loader.ResolvedColumn:
		return c.column(res.Column, st)
	case loader.ResolvedTable:
		return c.table(res.Table)
	case loader.ResolvedTag:
		tag := res.Tag.Tag()
		if tag.Inner == nil {
			return decl.TaggedVal(res.Tag.Def.Name, res.Tag.Index, tag.Name, nil), nil
		}
		return decl.FunctionVal(&tagConstructor{ref: res}), nil
	case loader.ResolvedFunction:
		return c.function(n)
	}
	core.Internalf("identifier %s has unknown resolution %v", n, res.Kind)
	return Value{}, nil
}

func (c *collector) column(fc *loader.FoundColumn, st *EvaluateState) (Value, error) {
	if fc == nil {
		core.Internalf("missing column passed the type check")
	}
	if fc.Data == nil {
		return Value{}, userErrorf(ErrNotFound, "column %s of table %s has no data", fc.Column, fc.Table)
	}
	if fc.WholeColumn {
		c.locations = append(c.locations, ExplanationLocation{Table: fc.Table, Column: fc.Column, Row: -1})
		return columnValues(fc.Data)
	}
	row, ok := st.Row()
	if !ok {
		return Value{}, userErrorf(ErrNoRow, "%s refers to a row of %s, but there is no current row", fc.Column, fc.Table)
	}
	c.locations = append(c.locations, ExplanationLocation{Table: fc.Table, Column: fc.Column, Row: row})
	v, err := fc.Data.Get(row)
	if err != nil {
		return Value{}, dataError(err)
	}
	return v, nil
}

func columnValues(data loader.ColumnData) (Value, error) {
	n, err := data.Len()
	if err != nil {
		return Value{}, dataError(err)
	}
	items := make([]Value, n)
	for i := range n {
		if items[i], err = data.Get(i); err != nil {
			return Value{}, dataError(err)
		}
	}
	return decl.ListValue(items), nil
}

// table reads a whole table as a list of records, one per row.
func (c *collector) table(t loader.FoundTable) (Value, error) {
	if t == nil {
		core.Internalf("missing table passed the type check")
	}
	rows, err := t.RowCount()
	if err != nil {
		return Value{}, dataError(err)
	}
	names := t.ColumnNames()
	cols := make([][]Value, len(names))
	for i, name := range names {
		data := t.Column(name)
		if data == nil {
			return Value{}, userErrorf(ErrNotFound, "column %s of table %s has no data", name, t.Name())
		}
		v, err := columnValues(data)
		if err != nil {
			return Value{}, err
		}
		cols[i], _ = v.GetList()
		c.locations = append(c.locations, ExplanationLocation{Table: t.Name(), Column: name, Row: -1})
	}
	out := make([]Value, rows)
	for r := range rows {
		fields := make(map[string]Value, len(names))
		for i, name := range names {
			if r >= len(cols[i]) {
				return Value{}, userErrorf(ErrNotFound, "column %s of table %s has no row %d", name, t.Name(), r)
			}
			fields[name] = cols[i][r]
		}
		out[r] = decl.RecordVal(names, fields)
	}
	return decl.ListValue(out), nil
}

// dataError passes internal errors on and treats anything else from the
// table store as a problem with the formula's data.
func dataError(err error) error {
	var ee *EvaluationError
	if core.IsInternal(err) || errors.As(err, &ee) {
		return err
	}
	return &EvaluationError{Message: err.Error(), Cause: err}
}

func (c *collector) function(n *decl.IdentExpression) (Value, error) {
	inst := c.ev.ann.Function(n.ID())
	if inst == nil {
		core.Internalf("function %s was not instantiated", n.Name())
	}
	fv, err := inst.Value()
	if err != nil {
		return Value{}, dataError(fmt.Errorf("%s: %w", n.Name(), err))
	}
	return decl.FunctionVal(fv), nil
}

func (c *collector) call(n *decl.CallExpression, st *EvaluateState) (Value, error) {
	if c.ev.ann.IsTagCall(n.ID()) {
		res := c.ev.ann.Resolution(n.Function.ID())
		args, err := c.evalAll(n.Args, st)
		if err != nil {
			return Value{}, err
		}
		return (&tagConstructor{ref: res}).Call(args)
	}
	fnVal, err := c.eval(n.Function, st)
	if err != nil {
		return Value{}, err
	}
	args, err := c.evalAll(n.Args, st)
	if err != nil {
		return Value{}, err
	}
	fn, err := fnVal.GetFunction()
	core.EnsureNoErr(err, "calling %s", n.Function)

	if rc, ok := fn.(resultCaller); ok && st.RecordExplanation() {
		r, err := rc.callResult(args)
		if err != nil {
			return Value{}, err
		}
		call := *r
		call.kind = ExplainCallImplicit
		c.add(&call)
		return r.Value, nil
	}
	v, err := fn.Call(args)
	if err != nil {
		return Value{}, dataError(err)
	}
	return v, nil
}

func (c *collector) comparison(n *decl.ComparisonExpression, st *EvaluateState) (Value, error) {
	vals, err := c.evalAll(n.Operands, st)
	if err != nil {
		return Value{}, err
	}
	result := true
	for i, op := range n.Ops {
		cmp, err := vals[i].Compare(vals[i+1])
		core.EnsureNoErr(err, "comparing %s", n)
		switch op {
		case decl.OpLessThan:
			result = result && cmp < 0
		case decl.OpLessThanOrEqual:
			result = result && cmp <= 0
		case decl.OpGreaterThan:
			result = result && cmp > 0
		case decl.OpGreaterThanOrEqual:
			result = result && cmp >= 0
		}
	}
	return decl.BoolValue(result), nil
}

// equal compares all operands.  With a trailing pattern the values must
// all be equal and then match the pattern, whose bindings are passed on.
func (c *collector) equal(n *decl.EqualExpression, st *EvaluateState) (Value, *EvaluateState, error) {
	values := n.Operands
	if n.LastIsPattern {
		values = n.Operands[:len(n.Operands)-1]
	}
	vals, err := c.evalAll(values, st)
	if err != nil {
		return Value{}, nil, err
	}
	for i := 1; i < len(vals); i++ {
		if !vals[0].Equals(vals[i]) {
			return decl.BoolValue(false), st, nil
		}
	}
	if !n.LastIsPattern {
		return decl.BoolValue(true), st, nil
	}
	ok, next, err := c.matchChild(n.Operands[len(n.Operands)-1], vals[0], st)
	if err != nil || !ok {
		return decl.BoolValue(false), st, err
	}
	return decl.BoolValue(true), next, nil
}

// and stops at the first false operand.  Bindings made by a =~ operand are
// visible to the operands after it.
func (c *collector) and(n *decl.AndExpression, st *EvaluateState) (Value, *EvaluateState, error) {
	cur := st
	for _, op := range n.Operands {
		r, err := c.evalResult(op, cur)
		if err != nil {
			return Value{}, nil, err
		}
		if !mustBool(r.Value) {
			return decl.BoolValue(false), st, nil
		}
		cur = r.State
	}
	return decl.BoolValue(true), cur, nil
}

func (c *collector) matchExpr(n *decl.MatchExpression, st *EvaluateState) (Value, error) {
	v, err := c.eval(n.Expression, st)
	if err != nil {
		return Value{}, err
	}
	for _, clause := range n.Clauses {
		for _, alt := range clause.Patterns {
			ok, bound, err := c.matchChild(alt.Pattern, v, st)
			if err != nil {
				return Value{}, err
			}
			if !ok {
				continue
			}
			if alt.Guard != nil {
				g, err := c.eval(alt.Guard, bound)
				if err != nil {
					return Value{}, err
				}
				if !mustBool(g) {
					continue
				}
			}
			return c.eval(clause.Outcome, bound)
		}
	}
	return Value{}, userErrorf(ErrNoMatch, "no case matched %s in %s", v, decl.Save(n, decl.ToDisplay))
}

// define binds each definition in turn and stops at the first one whose
// value does not fit its pattern.
func (c *collector) define(n *decl.DefineExpression, st *EvaluateState) (Value, error) {
	cur := st
	for _, item := range n.Items {
		d := item.Definition
		if d == nil {
			continue
		}
		v, err := c.eval(d.Value, cur)
		if err != nil {
			return Value{}, err
		}
		ok, next, err := c.matchChild(d.Pattern, v, cur)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, userErrorf(ErrDefineMismatch, "%s does not match %s", v, decl.Save(d.Pattern, decl.ToDisplay))
		}
		cur = next
	}
	return c.eval(n.Body, cur)
}

func mustBool(v Value) bool {
	b, err := v.GetBool()
	core.EnsureNoErr(err, "expected a Boolean")
	return b
}

func mustText(v Value) string {
	s, err := v.GetText()
	core.EnsureNoErr(err, "expected text")
	return s
}
