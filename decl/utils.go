package decl

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Helpers to create simple AST nodes, used by quick fixes and tests.

// NewNumber builds a numeric literal from its text.  The text must be a
// valid decimal.
func NewNumber(text string, unit UnitExpression) *NumericLiteral {
	return &NumericLiteral{Value: decimal.RequireFromString(text), Unit: unit}
}

func NewString(val string) *StringLiteral { return &StringLiteral{Value: val} }
func NewBool(val bool) *BooleanLiteral    { return &BooleanLiteral{Value: val} }

// NewIdent builds an identifier.  A name containing backslashes is split
// into parts, eg NewIdent(NamespaceTag, `Optional\Is`).  Names are NFC
// normalised, as the parser does.
func NewIdent(ns Namespace, name string) *IdentExpression {
	return &IdentExpression{Namespace: ns, Parts: strings.Split(norm.NFC.String(name), `\`)}
}

func NewVar(name string) *IdentExpression { return NewIdent(NamespaceNone, name) }

func NewCall(fn Expression, args ...Expression) *CallExpression {
	return &CallExpression{Function: fn, Args: args}
}

// NewAddSubtract builds an all-addition chain.
func NewAddSubtract(operands ...Expression) *AddSubtractExpression {
	ops := make([]AddSubtractOp, len(operands)-1)
	return &AddSubtractExpression{Operands: operands, Ops: ops}
}

// NewUnit builds unit syntax for a single named unit.
func NewUnit(name string) UnitExpression { return &SingleUnitExpression{Name: name} }

// WithUnit returns a fresh literal with a different unit, used by the unit
// fixes.
func (n *NumericLiteral) WithUnit(unit UnitExpression) *NumericLiteral {
	return &NumericLiteral{ExprBase: ExprBase{NodeInfo: n.NodeInfo}, Value: n.Value, Unit: unit}
}
