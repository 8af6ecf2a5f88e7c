package decl

// MapChildren rebuilds e with every direct child passed through f.  If f
// returns every child unchanged, e itself is returned; otherwise the result
// is a new node (with a new id) sharing the unchanged children.
func MapChildren(e Expression, f func(Expression) Expression) Expression {
	changed := false
	m := func(c Expression) Expression {
		if c == nil {
			return nil
		}
		r := f(c)
		if r != c {
			changed = true
		}
		return r
	}
	ms := func(cs []Expression) []Expression {
		out := make([]Expression, len(cs))
		for i, c := range cs {
			out[i] = m(c)
		}
		return out
	}
	info := func() NodeInfo { return NodeInfo{StartPos: e.Pos(), StopPos: e.End()} }

	var out Expression
	switch n := e.(type) {
	case *NumericLiteral, *StringLiteral, *BooleanLiteral, *TemporalLiteral, *UnitLiteral,
		*TypeLiteral, *IdentExpression, *ImplicitLambdaArg, *MatchAnythingExpression,
		*InvalidIdentExpression:
		return e
	case *AddSubtractExpression:
		out = &AddSubtractExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands), Ops: n.Ops}
	case *TimesExpression:
		out = &TimesExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands)}
	case *DivideExpression:
		out = &DivideExpression{ExprBase: ExprBase{NodeInfo: info()}, Left: m(n.Left), Right: m(n.Right)}
	case *RaiseExpression:
		out = &RaiseExpression{ExprBase: ExprBase{NodeInfo: info()}, Left: m(n.Left), Right: m(n.Right)}
	case *ComparisonExpression:
		out = &ComparisonExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands), Ops: n.Ops}
	case *EqualExpression:
		out = &EqualExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands), LastIsPattern: n.LastIsPattern}
	case *NotEqualExpression:
		out = &NotEqualExpression{ExprBase: ExprBase{NodeInfo: info()}, Left: m(n.Left), Right: m(n.Right)}
	case *AndExpression:
		out = &AndExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands)}
	case *OrExpression:
		out = &OrExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands)}
	case *StringConcatExpression:
		out = &StringConcatExpression{ExprBase: ExprBase{NodeInfo: info()}, Operands: ms(n.Operands)}
	case *PlusMinusPatternExpression:
		out = &PlusMinusPatternExpression{ExprBase: ExprBase{NodeInfo: info()}, Left: m(n.Left), Right: m(n.Right)}
	case *HasTypeExpression:
		v, _ := m(n.Var).(*IdentExpression)
		if v == nil {
			// The variable of a type declaration can only be replaced by
			// another identifier.
			v = n.Var
		}
		out = &HasTypeExpression{ExprBase: ExprBase{NodeInfo: info()}, Var: v, Type: m(n.Type)}
	case *CallExpression:
		out = &CallExpression{ExprBase: ExprBase{NodeInfo: info()}, Function: m(n.Function), Args: ms(n.Args)}
	case *ArrayExpression:
		out = &ArrayExpression{ExprBase: ExprBase{NodeInfo: info()}, Items: ms(n.Items)}
	case *RecordExpression:
		fields := make([]RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = RecordField{Name: f.Name, Value: m(f.Value)}
		}
		out = &RecordExpression{ExprBase: ExprBase{NodeInfo: info()}, Fields: fields}
	case *TupleExpression:
		out = &TupleExpression{ExprBase: ExprBase{NodeInfo: info()}, Items: ms(n.Items)}
	case *FieldAccessExpression:
		out = &FieldAccessExpression{ExprBase: ExprBase{NodeInfo: info()}, Target: m(n.Target), Field: n.Field}
	case *IfThenElseExpression:
		out = &IfThenElseExpression{ExprBase: ExprBase{NodeInfo: info()}, Condition: m(n.Condition), Then: m(n.Then), Else: m(n.Else)}
	case *MatchExpression:
		clauses := make([]MatchClause, len(n.Clauses))
		for i, c := range n.Clauses {
			pats := make([]MatchPattern, len(c.Patterns))
			for j, p := range c.Patterns {
				pats[j] = MatchPattern{Pattern: m(p.Pattern), Guard: m(p.Guard)}
			}
			clauses[i] = MatchClause{Patterns: pats, Outcome: m(c.Outcome)}
		}
		out = &MatchExpression{ExprBase: ExprBase{NodeInfo: info()}, Expression: m(n.Expression), Clauses: clauses}
	case *DefineExpression:
		items := make([]DefineItem, len(n.Items))
		for i, it := range n.Items {
			if it.Type != nil {
				ht, ok := m(it.Type).(*HasTypeExpression)
				if !ok {
					ht = it.Type
				}
				items[i] = DefineItem{Type: ht}
			} else {
				items[i] = DefineItem{Definition: &Definition{Pattern: m(it.Definition.Pattern), Value: m(it.Definition.Value)}}
			}
		}
		out = &DefineExpression{ExprBase: ExprBase{NodeInfo: info()}, Items: items, Body: m(n.Body)}
	case *LambdaExpression:
		out = &LambdaExpression{ExprBase: ExprBase{NodeInfo: info()}, Params: ms(n.Params), Body: m(n.Body)}
	case *InvalidOperatorExpression:
		out = &InvalidOperatorExpression{ExprBase: ExprBase{NodeInfo: info()}, Items: ms(n.Items)}
	default:
		return e
	}
	if !changed {
		return e
	}
	return out
}

// Children returns the direct sub-expressions of e in source order.
func Children(e Expression) []Expression {
	var out []Expression
	MapChildren(e, func(c Expression) Expression {
		out = append(out, c)
		return c
	})
	return out
}

// Walk visits e and its descendants in pre-order.  Returning false from fn
// skips the node's children.
func Walk(e Expression, fn func(Expression) bool) {
	if !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Fold combines every node of the tree in pre-order.
func Fold[A any](e Expression, acc A, fn func(A, Expression) A) A {
	acc = fn(acc, e)
	for _, c := range Children(e) {
		acc = Fold(c, acc, fn)
	}
	return acc
}

// Find returns the node with the given id, or nil.
func Find(root Expression, id NodeID) Expression {
	var found Expression
	Walk(root, func(e Expression) bool {
		if found != nil {
			return false
		}
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// Replace returns root with the node whose id is target swapped for
// replacement.  Subtrees not on the path to target are shared with the
// input; if target does not occur, root itself is returned.
func Replace(root Expression, target NodeID, replacement Expression) Expression {
	if root.ID() == target {
		return replacement
	}
	return MapChildren(root, func(c Expression) Expression {
		return Replace(c, target, replacement)
	})
}

// identsIn collects identifiers in the given namespace.
func identsIn(e Expression, ns Namespace) []*IdentExpression {
	return Fold(e, []*IdentExpression(nil), func(acc []*IdentExpression, n Expression) []*IdentExpression {
		if id, ok := n.(*IdentExpression); ok && id.Namespace == ns {
			acc = append(acc, id)
		}
		return acc
	})
}

// VariableReferences returns identifiers written without a namespace.  Until
// resolution these may still turn out to be columns, tables, tags or
// functions; see the resolver for the resolved view.
func VariableReferences(e Expression) []*IdentExpression { return identsIn(e, NamespaceNone) }

// ColumnReferences returns identifiers written as column\..
func ColumnReferences(e Expression) []*IdentExpression { return identsIn(e, NamespaceColumn) }

// TableReferences returns identifiers written as table\..
func TableReferences(e Expression) []*IdentExpression { return identsIn(e, NamespaceTable) }
