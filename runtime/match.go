package runtime

import (
	"strings"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
)

// pattern matches v against a pattern node.  A failed match is not an
// error; the returned state is only meaningful when it succeeded.
func (c *collector) pattern(e Expression, v Value, st *EvaluateState) (bool, *EvaluateState, error) {
	switch n := e.(type) {
	case *decl.MatchAnythingExpression:
		return true, st, nil
	case *decl.IdentExpression:
		if c.ev.ann.IsDeclaration(n.ID()) {
			return true, st.Add(n.Name(), v), nil
		}
	case *decl.TupleExpression:
		rec, err := v.GetRecord()
		core.EnsureNoErr(err, "matching tuple %s", n)
		if len(rec.Names) != len(n.Items) {
			return false, st, nil
		}
		return c.patterns(n.Items, func(i int) Value { return rec.Fields[rec.Names[i]] }, st)
	case *decl.RecordExpression:
		rec, err := v.GetRecord()
		core.EnsureNoErr(err, "matching record %s", n)
		cur := st
		for _, f := range n.Fields {
			fv, ok := rec.Fields[f.Name]
			if !ok {
				return false, st, nil
			}
			matched, next, err := c.matchChild(f.Value, fv, cur)
			if err != nil || !matched {
				return false, st, err
			}
			cur = next
		}
		return true, cur, nil
	case *decl.ArrayExpression:
		items, err := v.GetList()
		core.EnsureNoErr(err, "matching list %s", n)
		if len(items) != len(n.Items) {
			return false, st, nil
		}
		return c.patterns(n.Items, func(i int) Value { return items[i] }, st)
	case *decl.CallExpression:
		if c.ev.ann.IsTagCall(n.ID()) {
			return c.tagPattern(n, v, st)
		}
	case *decl.StringConcatExpression:
		return c.textPattern(n, mustText(v), st)
	case *decl.PlusMinusPatternExpression:
		nums, err := c.numbers([]Expression{n.Left, n.Right}, st)
		if err != nil {
			return false, st, err
		}
		diff := mustNumber(v).Sub(nums[0]).Abs()
		return diff.LessThanOrEqual(nums[1].Abs()), st, nil
	}
	other, err := c.eval(e, st)
	if err != nil {
		return false, st, err
	}
	return v.Equals(other), st, nil
}

// patterns matches items left to right, threading bindings and stopping at
// the first failure.
func (c *collector) patterns(items []Expression, value func(i int) Value, st *EvaluateState) (bool, *EvaluateState, error) {
	cur := st
	for i, item := range items {
		ok, next, err := c.matchChild(item, value(i), cur)
		if err != nil || !ok {
			return false, st, err
		}
		cur = next
	}
	return true, cur, nil
}

func (c *collector) tagPattern(n *decl.CallExpression, v Value, st *EvaluateState) (bool, *EvaluateState, error) {
	res := c.ev.ann.Resolution(n.Function.ID())
	tv, err := v.GetTagged()
	core.EnsureNoErr(err, "matching tag %s", n)
	if tv.Index != res.Tag.Index {
		return false, st, nil
	}
	if tv.Inner == nil {
		core.Internalf("tag %s matched with a value but has none", tv.Tag)
	}
	if len(n.Args) == 1 {
		return c.patterns(n.Args, func(int) Value { return *tv.Inner }, st)
	}
	rec, err := tv.Inner.GetRecord()
	core.EnsureNoErr(err, "matching tag %s", n)
	if len(rec.Names) != len(n.Args) {
		return false, st, nil
	}
	return c.patterns(n.Args, func(i int) Value { return rec.Fields[rec.Names[i]] }, st)
}

// textPattern splits s around the literal parts of a ; pattern.  A binder
// before a literal takes the text up to the leftmost occurrence of that
// literal; a trailing binder takes the rest.
func (c *collector) textPattern(n *decl.StringConcatExpression, s string, st *EvaluateState) (bool, *EvaluateState, error) {
	cur := st
	pos := 0
	var pending Expression
	bind := func(b Expression, text string) {
		if id, ok := b.(*decl.IdentExpression); ok {
			cur = cur.Add(id.Name(), decl.TextValue(text))
		}
	}
	for _, op := range n.Operands {
		if c.isBinder(op) {
			pending = op
			continue
		}
		lit, err := c.eval(op, cur)
		if err != nil {
			return false, st, err
		}
		part := mustText(lit)
		rest := s[pos:]
		if pending != nil {
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false, st, nil
			}
			bind(pending, rest[:idx])
			pending = nil
			pos += idx + len(part)
			continue
		}
		if !strings.HasPrefix(rest, part) {
			return false, st, nil
		}
		pos += len(part)
	}
	if pending != nil {
		bind(pending, s[pos:])
		return true, cur, nil
	}
	return pos == len(s), cur, nil
}

func (c *collector) isBinder(e Expression) bool {
	switch n := e.(type) {
	case *decl.MatchAnythingExpression:
		return true
	case *decl.IdentExpression:
		return c.ev.ann.IsDeclaration(n.ID())
	}
	return false
}

// --- function values ---

// resultCaller is implemented by functions written in the formula
// language, whose calls can be explained.
type resultCaller interface {
	callResult(args []Value) (*ValueResult, error)
}

// lambdaValue is an @function closed over the state it was created in.
type lambdaValue struct {
	ev    *Evaluator
	node  *decl.LambdaExpression
	state *EvaluateState
}

func (l *lambdaValue) Name() string { return decl.Save(l.node, decl.ToDisplay) }

func (l *lambdaValue) Call(args []Value) (v Value, err error) {
	defer core.RecoverInternal(&err)
	r, err := l.callResult(args)
	if err != nil {
		return Value{}, err
	}
	return r.Value, nil
}

func (l *lambdaValue) callResult(args []Value) (*ValueResult, error) {
	if len(args) != len(l.node.Params) {
		return nil, userErrorf(ErrWrongArguments, "%s expects %d argument(s) but was given %d", l.Name(), len(l.node.Params), len(args))
	}
	st := l.state
	for i, p := range l.node.Params {
		m, err := l.ev.match(p, args[i], st)
		if err != nil {
			return nil, err
		}
		if !m.Matched() {
			return nil, userErrorf(ErrNoMatch, "%s does not match the parameter %s of %s", args[i], decl.Save(p, decl.ToDisplay), l.Name())
		}
		st = m.State
	}
	return l.ev.evaluate(l.node.Body, st)
}

// implicitLambda is an expression containing ?, called with the value for ?.
type implicitLambda struct {
	ev    *Evaluator
	expr  Expression
	state *EvaluateState
}

func (f *implicitLambda) Name() string { return decl.Save(f.expr, decl.ToDisplay) }

func (f *implicitLambda) Call(args []Value) (v Value, err error) {
	defer core.RecoverInternal(&err)
	r, err := f.callResult(args)
	if err != nil {
		return Value{}, err
	}
	return r.Value, nil
}

func (f *implicitLambda) callResult(args []Value) (*ValueResult, error) {
	if len(args) != 1 {
		return nil, userErrorf(ErrWrongArguments, "%s expects 1 argument but was given %d", f.Name(), len(args))
	}
	return f.ev.evaluateNode(f.expr, f.state.Add(ImplicitArgName, args[0]))
}

// tagConstructor builds a tagged value from its payload.  Several
// arguments make a tuple payload.
type tagConstructor struct {
	ref *loader.Resolution
}

func (t *tagConstructor) Name() string { return t.ref.Tag.Tag().Name }

func (t *tagConstructor) Call(args []Value) (Value, error) {
	if len(args) == 0 {
		return Value{}, userErrorf(ErrWrongArguments, "tag %s needs a value", t.Name())
	}
	inner := args[0]
	if len(args) > 1 {
		inner = decl.TupleVal(args...)
	}
	return decl.TaggedVal(t.ref.Tag.Def.Name, t.ref.Tag.Index, t.Name(), &inner), nil
}
