package loader

import (
	"errors"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

// scope is the set of variable names visible at a point in the tree.  It is
// never modified in place.
type scope map[string]bool

func (s scope) with(name string) scope {
	if s[name] {
		return s
	}
	out := make(scope, len(s)+1)
	for k := range s {
		out[k] = true
	}
	out[name] = true
	return out
}

func (s scope) union(other scope) scope {
	out := s
	for k := range other {
		out = out.with(k)
	}
	return out
}

// Resolver decides what every identifier in a tree refers to, before any
// checking.  Unqualified names are tried as a local variable, then a
// column, a table, a tag and a function; the first match wins.  In a
// pattern only variables and tags are considered, and any other name is
// taken to be a variable the pattern declares.
type Resolver struct {
	columns   ColumnLookup
	typeMgr   *types.TypeManager
	functions FunctionLookup
	ann       *Annotations
}

func NewResolver(columns ColumnLookup, state *TypeState, ann *Annotations) *Resolver {
	return &Resolver{columns: columns, typeMgr: state.TypeManager(), functions: state.Functions(), ann: ann}
}

// Resolve records a Resolution for every identifier in e.  Variables
// already bound in state are visible throughout.
func (r *Resolver) Resolve(e Expression, state *TypeState) {
	sc := scope{}
	for _, v := range state.Variables() {
		sc = sc.with(v)
	}
	r.resolve(e, sc, false)
}

// resolve returns the scope that follows e, which differs from sc only for
// patterns and for operators that pass pattern bindings on (=~, & and the
// condition of @if).
func (r *Resolver) resolve(e Expression, sc scope, pattern bool) scope {
	if pattern {
		return r.resolvePattern(e, sc)
	}
	switch n := e.(type) {
	case *decl.IdentExpression:
		r.resolveIdent(n, sc, false)
	case *decl.EqualExpression:
		last := len(n.Operands) - 1
		for i, o := range n.Operands {
			if i == last && n.LastIsPattern {
				return r.resolve(o, sc, true)
			}
			r.resolve(o, sc, false)
		}
	case *decl.AndExpression:
		cur := sc
		for _, o := range n.Operands {
			cur = r.resolve(o, cur, false)
		}
		return cur
	case *decl.IfThenElseExpression:
		inner := r.resolve(n.Condition, sc, false)
		r.resolve(n.Then, inner, false)
		r.resolve(n.Else, sc, false)
	case *decl.MatchExpression:
		r.resolve(n.Expression, sc, false)
		for _, clause := range n.Clauses {
			merged := sc
			for _, p := range clause.Patterns {
				alt := r.resolve(p.Pattern, sc, true)
				if p.Guard != nil {
					alt = r.resolve(p.Guard, alt, false)
				}
				merged = merged.union(alt)
			}
			r.resolve(clause.Outcome, merged, false)
		}
	case *decl.DefineExpression:
		cur := sc
		for _, item := range n.Items {
			if item.Type != nil {
				r.resolveVarName(item.Type.Var)
				continue
			}
			r.resolve(item.Definition.Value, cur, false)
			cur = r.resolve(item.Definition.Pattern, cur, true)
		}
		r.resolve(n.Body, cur, false)
	case *decl.LambdaExpression:
		cur := sc
		for _, p := range n.Params {
			cur = r.resolve(p, cur, true)
		}
		r.resolve(n.Body, cur, false)
	case *decl.HasTypeExpression:
		r.resolveVarName(n.Var)
	default:
		for _, c := range decl.Children(e) {
			r.resolve(c, sc, false)
		}
	}
	return sc
}

func (r *Resolver) resolvePattern(e Expression, sc scope) scope {
	switch n := e.(type) {
	case *decl.IdentExpression:
		return r.resolveIdent(n, sc, true)
	case *decl.TupleExpression, *decl.RecordExpression, *decl.ArrayExpression, *decl.StringConcatExpression:
		cur := sc
		for _, c := range decl.Children(e) {
			cur = r.resolvePattern(c, cur)
		}
		return cur
	case *decl.CallExpression:
		r.resolve(n.Function, sc, false)
		if res := r.ann.Resolution(n.Function.ID()); res != nil && res.Kind == ResolvedTag {
			cur := sc
			for _, a := range n.Args {
				cur = r.resolvePattern(a, cur)
			}
			return cur
		}
		for _, a := range n.Args {
			r.resolve(a, sc, false)
		}
		return sc
	case *decl.MatchAnythingExpression:
		return sc
	}
	// Anything else in a pattern is a value to compare against.
	r.resolve(e, sc, false)
	return sc
}

func (r *Resolver) resolveVarName(id *decl.IdentExpression) {
	r.ann.SetResolution(id.ID(), &Resolution{Kind: ResolvedVariable})
}

func (r *Resolver) resolveIdent(id *decl.IdentExpression, sc scope, pattern bool) scope {
	res := r.lookup(id, sc, pattern)
	core.Debug("resolved %s as %s", decl.Save(id, decl.ToFile), res.Kind)
	r.ann.SetResolution(id.ID(), res)
	if pattern && res.Kind == ResolvedVariable && len(id.Parts) == 1 {
		return sc.with(id.Name())
	}
	return sc
}

func (r *Resolver) lookup(id *decl.IdentExpression, sc scope, pattern bool) *Resolution {
	name, qual := id.Name(), id.Qualifier()
	switch id.Namespace {
	case decl.NamespaceColumn:
		return &Resolution{Kind: ResolvedColumn, Column: r.column(qual, name)}
	case decl.NamespaceTable:
		return &Resolution{Kind: ResolvedTable, Table: r.table(name)}
	case decl.NamespaceTag:
		ref, err := r.typeMgr.FindTag(qual, name)
		if err != nil {
			return &Resolution{Kind: ResolvedTag, Err: err}
		}
		return &Resolution{Kind: ResolvedTag, Tag: ref}
	case decl.NamespaceFunction:
		return &Resolution{Kind: ResolvedFunction, Function: r.function(name)}
	}

	if len(id.Parts) == 1 && sc[name] {
		return &Resolution{Kind: ResolvedVariable}
	}
	if !pattern {
		if col := r.column(qual, name); col != nil {
			return &Resolution{Kind: ResolvedColumn, Column: col}
		}
		if qual == "" {
			if t := r.table(name); t != nil {
				return &Resolution{Kind: ResolvedTable, Table: t}
			}
		}
	}
	ref, err := r.typeMgr.FindTag(qual, name)
	if err == nil {
		return &Resolution{Kind: ResolvedTag, Tag: ref}
	}
	if errors.Is(err, types.ErrAmbiguousTag) {
		return &Resolution{Kind: ResolvedTag, Err: err}
	}
	if !pattern && qual == "" {
		if f := r.function(name); f != nil {
			return &Resolution{Kind: ResolvedFunction, Function: f}
		}
	}
	return &Resolution{Kind: ResolvedVariable}
}

func (r *Resolver) column(table, column string) *FoundColumn {
	if r.columns == nil {
		return nil
	}
	return r.columns.GetColumn(table, column)
}

func (r *Resolver) table(name string) FoundTable {
	if r.columns == nil {
		return nil
	}
	return r.columns.GetTable(name)
}

func (r *Resolver) function(name string) *FunctionDefinition {
	if r.functions == nil {
		return nil
	}
	return r.functions.Lookup(name)
}
