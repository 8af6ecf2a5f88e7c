package parser

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/decl"
)

// ChainedExpr is a run of operands separated by operators, as read from the
// source before operator families are checked.  Mixing operators from
// different families needs brackets; a chain that does not is kept as an
// InvalidOperatorExpression so that it can still be saved and edited.
type ChainedExpr struct {
	ExprBase
	Children  []Expression
	Operators []string

	// Expression after operators have been taken into account
	UnchainedExpr Expression
}

func (c *ChainedExpr) String() string {
	return fmt.Sprintf("(%s)", strings.Join(gfn.Map(c.Children, func(e Expression) string { return e.String() }), ", "))
}

// operatorFamily groups operators that may appear together in one chain.
type operatorFamily int

const (
	familyAddSubtract operatorFamily = iota
	familyTimes
	familyDivide
	familyRaise
	familyComparison
	familyEqual
	familyNotEqual
	familyAnd
	familyOr
	familyConcat
	familyPlusMinus
	familyHasType
)

var operatorFamilies = map[string]operatorFamily{
	"+": familyAddSubtract, "-": familyAddSubtract,
	"*": familyTimes,
	"/": familyDivide,
	"^": familyRaise,
	"<": familyComparison, "<=": familyComparison, ">": familyComparison, ">=": familyComparison,
	"=": familyEqual, "=~": familyEqual,
	"<>": familyNotEqual,
	"&":  familyAnd,
	"|":  familyOr,
	";":  familyConcat,
	"±":  familyPlusMinus,
	"::": familyHasType,
}

// binaryOnly families take exactly two operands.
var binaryOnly = map[operatorFamily]bool{
	familyDivide:    true,
	familyRaise:     true,
	familyNotEqual:  true,
	familyPlusMinus: true,
	familyHasType:   true,
}

// Unchain converts the chain into a single operator node, or into an
// InvalidOperatorExpression when the operators cannot be combined.  The
// result is stored in c.UnchainedExpr.
func (c *ChainedExpr) Unchain() {
	if c == nil {
		return
	}
	if len(c.Children) == 0 || len(c.Children) != len(c.Operators)+1 {
		c.UnchainedExpr = nil
		return
	}
	if len(c.Operators) == 0 {
		c.UnchainedExpr = c.Children[0]
		return
	}
	if out := c.combine(); out != nil {
		c.UnchainedExpr = out
		return
	}
	c.UnchainedExpr = c.invalid()
}

func (c *ChainedExpr) info() NodeInfo {
	return NodeInfo{StartPos: c.Children[0].Pos(), StopPos: c.Children[len(c.Children)-1].End()}
}

// combine builds the operator node, or returns nil if the operators do not
// form one family.
func (c *ChainedExpr) combine() Expression {
	family, ok := operatorFamilies[c.Operators[0]]
	if !ok {
		return nil
	}
	for _, op := range c.Operators[1:] {
		if operatorFamilies[op] != family {
			return nil
		}
	}
	if binaryOnly[family] && len(c.Operators) != 1 {
		return nil
	}
	ni := c.info()
	left, right := c.Children[0], c.Children[len(c.Children)-1]

	switch family {
	case familyAddSubtract:
		ops := gfn.Map(c.Operators, func(op string) decl.AddSubtractOp {
			if op == "-" {
				return decl.OpSubtract
			}
			return decl.OpAdd
		})
		return &decl.AddSubtractExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children, Ops: ops}
	case familyTimes:
		return &decl.TimesExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children}
	case familyDivide:
		return &decl.DivideExpression{ExprBase: ExprBase{NodeInfo: ni}, Left: left, Right: right}
	case familyRaise:
		return &decl.RaiseExpression{ExprBase: ExprBase{NodeInfo: ni}, Left: left, Right: right}
	case familyComparison:
		ops := gfn.Map(c.Operators, comparisonOp)
		for _, op := range ops[1:] {
			if op.IsLess() != ops[0].IsLess() {
				return nil
			}
		}
		return &decl.ComparisonExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children, Ops: ops}
	case familyEqual:
		for _, op := range c.Operators[:len(c.Operators)-1] {
			if op == "=~" {
				return nil
			}
		}
		return &decl.EqualExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children, LastIsPattern: c.Operators[len(c.Operators)-1] == "=~"}
	case familyNotEqual:
		return &decl.NotEqualExpression{ExprBase: ExprBase{NodeInfo: ni}, Left: left, Right: right}
	case familyAnd:
		return &decl.AndExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children}
	case familyOr:
		return &decl.OrExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children}
	case familyConcat:
		return &decl.StringConcatExpression{ExprBase: ExprBase{NodeInfo: ni}, Operands: c.Children}
	case familyPlusMinus:
		return &decl.PlusMinusPatternExpression{ExprBase: ExprBase{NodeInfo: ni}, Left: left, Right: right}
	case familyHasType:
		v, ok := left.(*decl.IdentExpression)
		if !ok {
			return nil
		}
		return &decl.HasTypeExpression{ExprBase: ExprBase{NodeInfo: ni}, Var: v, Type: right}
	}
	return nil
}

func comparisonOp(op string) decl.ComparisonOp {
	switch op {
	case "<=":
		return decl.OpLessThanOrEqual
	case ">":
		return decl.OpGreaterThan
	case ">=":
		return decl.OpGreaterThanOrEqual
	}
	return decl.OpLessThan
}

// invalid keeps the operands and operators as written.
func (c *ChainedExpr) invalid() Expression {
	items := make([]Expression, 0, len(c.Children)+len(c.Operators))
	for i, child := range c.Children {
		if i > 0 {
			items = append(items, &decl.InvalidIdentExpression{Text: c.Operators[i-1]})
		}
		items = append(items, child)
	}
	return &decl.InvalidOperatorExpression{ExprBase: ExprBase{NodeInfo: c.info()}, Items: items}
}
