package parser

import "github.com/eponymouse/columnal-sub000/decl"

type NodeInfo = decl.NodeInfo
type ExprBase = decl.ExprBase
type Expression = decl.Expression

type UnitExpression = decl.UnitExpression
type TypeExpression = decl.TypeExpression
