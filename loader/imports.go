package loader

import (
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

type NodeID = decl.NodeID
type Expression = decl.Expression
type IdentExpression = decl.IdentExpression
type Value = decl.Value
type TypeExp = types.TypeExp
