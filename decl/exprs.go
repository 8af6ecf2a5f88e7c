package decl

import (
	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/types"
)

// --- Literals ---

// NumericLiteral is a number with an optional unit, eg 3{m/s}.
type NumericLiteral struct {
	ExprBase
	Value decimal.Decimal
	Unit  UnitExpression // nil when no unit was written
}

type StringLiteral struct {
	ExprBase
	Value string
}

type BooleanLiteral struct {
	ExprBase
	Value bool
}

// TemporalLiteral is date{..}, time{..} and friends.  Content is kept as
// written and parsed during checking.
type TemporalLiteral struct {
	ExprBase
	Kind    types.PrimitiveKind
	Content string
}

// UnitLiteral is unit{..}, a unit used as a value (eg for "as unit").
type UnitLiteral struct {
	ExprBase
	Unit UnitExpression
}

// TypeLiteral is type{..}, a type used as a value (eg for "from text to").
type TypeLiteral struct {
	ExprBase
	Type TypeExpression
}

// --- Identifiers ---

// IdentExpression names a variable, column, table, tag or function.  Parts
// has more than one entry for qualified names such as a tag with its type
// (Optional\Is) or a column with its table.
type IdentExpression struct {
	ExprBase
	Namespace Namespace
	Parts     []string
}

// Name is the last part, the name being referred to.
func (i *IdentExpression) Name() string {
	if len(i.Parts) == 0 {
		return ""
	}
	return i.Parts[len(i.Parts)-1]
}

// Qualifier is everything before the name, eg the type of a tag.
func (i *IdentExpression) Qualifier() string {
	if len(i.Parts) < 2 {
		return ""
	}
	return i.Parts[len(i.Parts)-2]
}

// --- Operators ---

type AddSubtractOp int

const (
	OpAdd AddSubtractOp = iota
	OpSubtract
)

func (o AddSubtractOp) String() string {
	if o == OpSubtract {
		return "-"
	}
	return "+"
}

// AddSubtractExpression is a chain like a + b - c.  len(Ops) is one less
// than len(Operands).
type AddSubtractExpression struct {
	ExprBase
	Operands []Expression
	Ops      []AddSubtractOp
}

type TimesExpression struct {
	ExprBase
	Operands []Expression
}

type DivideExpression struct {
	ExprBase
	Left, Right Expression
}

type RaiseExpression struct {
	ExprBase
	Left, Right Expression
}

type ComparisonOp int

const (
	OpLessThan ComparisonOp = iota
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

var comparisonSymbols = [...]string{"<", "<=", ">", ">="}

func (o ComparisonOp) String() string { return comparisonSymbols[o] }

// IsLess reports whether the operator belongs to the < / <= direction.
func (o ComparisonOp) IsLess() bool { return o == OpLessThan || o == OpLessThanOrEqual }

// ComparisonExpression is a chain like a < b <= c.  All operators face
// the same direction.
type ComparisonExpression struct {
	ExprBase
	Operands []Expression
	Ops      []ComparisonOp
}

// EqualExpression is a = b = c.  With LastIsPattern the final operand is a
// pattern matched against the others (a =~ p).
type EqualExpression struct {
	ExprBase
	Operands      []Expression
	LastIsPattern bool
}

type NotEqualExpression struct {
	ExprBase
	Left, Right Expression
}

type AndExpression struct {
	ExprBase
	Operands []Expression
}

type OrExpression struct {
	ExprBase
	Operands []Expression
}

// StringConcatExpression is a ; b.  As a pattern it splits text around
// literal parts.
type StringConcatExpression struct {
	ExprBase
	Operands []Expression
}

// PlusMinusPatternExpression matches numbers within a tolerance: x ± 0.5.
type PlusMinusPatternExpression struct {
	ExprBase
	Left, Right Expression
}

// HasTypeExpression declares the type of a variable inside @define.
type HasTypeExpression struct {
	ExprBase
	Var  *IdentExpression
	Type Expression // normally a TypeLiteral
}

// --- Compound ---

type CallExpression struct {
	ExprBase
	Function Expression
	Args     []Expression
}

type ArrayExpression struct {
	ExprBase
	Items []Expression
}

type RecordField struct {
	Name  string
	Value Expression
}

type RecordExpression struct {
	ExprBase
	Fields []RecordField
}

// TupleExpression is a record with positional fields named "1".."n".
type TupleExpression struct {
	ExprBase
	Items []Expression
}

// FieldAccessExpression is target#field.
type FieldAccessExpression struct {
	ExprBase
	Target Expression
	Field  string
}

type IfThenElseExpression struct {
	ExprBase
	Condition, Then, Else Expression
}

// MatchPattern is one alternative of a clause, with an optional guard.
type MatchPattern struct {
	Pattern Expression
	Guard   Expression
}

// MatchClause is @case p1 @orcase p2 ... @then outcome.
type MatchClause struct {
	Patterns []MatchPattern
	Outcome  Expression
}

type MatchExpression struct {
	ExprBase
	Expression Expression
	Clauses    []MatchClause
}

// Definition binds a pattern to a value inside @define.
type Definition struct {
	Pattern Expression
	Value   Expression
}

// DefineItem is either a type declaration or a definition.
type DefineItem struct {
	Type       *HasTypeExpression
	Definition *Definition
}

type DefineExpression struct {
	ExprBase
	Items []DefineItem
	Body  Expression
}

// LambdaExpression is @function(params) @then body @endfunction.  The
// params are patterns.
type LambdaExpression struct {
	ExprBase
	Params []Expression
	Body   Expression
}

// ImplicitLambdaArg is the ? placeholder.
type ImplicitLambdaArg struct {
	ExprBase
}

// MatchAnythingExpression is the _ wildcard pattern.
type MatchAnythingExpression struct {
	ExprBase
}

// --- Error recovery ---

// InvalidOperatorExpression keeps operands and operators that could not be
// combined, eg mixing + and * without brackets.  Operators appear as
// InvalidIdentExpression items.
type InvalidOperatorExpression struct {
	ExprBase
	Items []Expression
}

// InvalidIdentExpression is unparseable or unfinished text.
type InvalidIdentExpression struct {
	ExprBase
	Text string
}

func (e *NumericLiteral) String() string             { return Save(e, ToDisplay) }
func (e *StringLiteral) String() string              { return Save(e, ToDisplay) }
func (e *BooleanLiteral) String() string             { return Save(e, ToDisplay) }
func (e *TemporalLiteral) String() string            { return Save(e, ToDisplay) }
func (e *UnitLiteral) String() string                { return Save(e, ToDisplay) }
func (e *TypeLiteral) String() string                { return Save(e, ToDisplay) }
func (e *IdentExpression) String() string            { return Save(e, ToDisplay) }
func (e *AddSubtractExpression) String() string      { return Save(e, ToDisplay) }
func (e *TimesExpression) String() string            { return Save(e, ToDisplay) }
func (e *DivideExpression) String() string           { return Save(e, ToDisplay) }
func (e *RaiseExpression) String() string            { return Save(e, ToDisplay) }
func (e *ComparisonExpression) String() string       { return Save(e, ToDisplay) }
func (e *EqualExpression) String() string            { return Save(e, ToDisplay) }
func (e *NotEqualExpression) String() string         { return Save(e, ToDisplay) }
func (e *AndExpression) String() string              { return Save(e, ToDisplay) }
func (e *OrExpression) String() string               { return Save(e, ToDisplay) }
func (e *StringConcatExpression) String() string     { return Save(e, ToDisplay) }
func (e *PlusMinusPatternExpression) String() string { return Save(e, ToDisplay) }
func (e *HasTypeExpression) String() string          { return Save(e, ToDisplay) }
func (e *CallExpression) String() string             { return Save(e, ToDisplay) }
func (e *ArrayExpression) String() string            { return Save(e, ToDisplay) }
func (e *RecordExpression) String() string           { return Save(e, ToDisplay) }
func (e *TupleExpression) String() string            { return Save(e, ToDisplay) }
func (e *FieldAccessExpression) String() string      { return Save(e, ToDisplay) }
func (e *IfThenElseExpression) String() string       { return Save(e, ToDisplay) }
func (e *MatchExpression) String() string            { return Save(e, ToDisplay) }
func (e *DefineExpression) String() string           { return Save(e, ToDisplay) }
func (e *LambdaExpression) String() string           { return Save(e, ToDisplay) }
func (e *ImplicitLambdaArg) String() string          { return Save(e, ToDisplay) }
func (e *MatchAnythingExpression) String() string    { return Save(e, ToDisplay) }
func (e *InvalidOperatorExpression) String() string  { return Save(e, ToDisplay) }
func (e *InvalidIdentExpression) String() string     { return Save(e, ToDisplay) }

// IsOperator reports whether e is one of the infix operator kinds, which
// need brackets when nested.
func IsOperator(e Expression) bool {
	switch e.(type) {
	case *AddSubtractExpression, *TimesExpression, *DivideExpression, *RaiseExpression,
		*ComparisonExpression, *EqualExpression, *NotEqualExpression, *AndExpression,
		*OrExpression, *StringConcatExpression, *PlusMinusPatternExpression, *HasTypeExpression:
		return true
	}
	return false
}
