package runtime

import (
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
)

type Expression = decl.Expression
type Value = decl.Value
type Env[T any] = decl.Env[T]
type NodeID = decl.NodeID

// ImplicitArgName is the variable the ? placeholder is bound to.
const ImplicitArgName = loader.ImplicitArgName
