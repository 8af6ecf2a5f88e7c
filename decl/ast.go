package decl

import (
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/eponymouse/columnal-sub000/core"
)

// --- Interfaces ---

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() int       // Starting position (for error reporting)
	End() int       // Ending position
	String() string // String representation for debugging/printing
}

// --- Base Struct ---

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct{ StartPos, StopPos int }

func (n *NodeInfo) Pos() int { return n.StartPos }
func (n *NodeInfo) End() int { return n.StopPos }

// NodeID identifies one node occurrence.  Two structurally equal nodes have
// different ids; replacement and annotations are keyed by id.
type NodeID uint64

var nodeIDs core.CounterIDGen

// Expression is the closed set of expression node kinds.  Every kind is a
// pointer to one of the structs in exprs.go.
type Expression interface {
	Node
	ID() NodeID
	exprNode() // Marker method for expressions
}

// ExprBase carries position and identity.  The id is assigned on first use
// so that nodes can be built with plain struct literals.
type ExprBase struct {
	NodeInfo
	id atomic.Uint64
}

func (e *ExprBase) exprNode() {}

func (e *ExprBase) ID() NodeID {
	if id := e.id.Load(); id != 0 {
		return NodeID(id)
	}
	e.id.CompareAndSwap(0, nodeIDs.NextID())
	return NodeID(e.id.Load())
}

// Namespace qualifies an identifier.
type Namespace int

const (
	NamespaceNone Namespace = iota
	NamespaceColumn
	NamespaceTable
	NamespaceTag
	NamespaceFunction
)

var namespaceKeywords = [...]string{"", "column", "table", "tag", "function"}

func (n Namespace) String() string {
	if n == NamespaceNone {
		return "none"
	}
	return namespaceKeywords[n]
}

// Keyword is the prefix written before the backslash in saved text.
func (n Namespace) Keyword() string { return namespaceKeywords[n] }

// NamespaceByKeyword is the inverse of Keyword.
func NamespaceByKeyword(kw string) (Namespace, bool) {
	for i, k := range namespaceKeywords {
		if i > 0 && k == kw {
			return Namespace(i), true
		}
	}
	return NamespaceNone, false
}

// ValidIdent reports whether s is a single identifier: words of letters,
// digits and underscores, not starting with a digit, joined by single
// spaces.
func ValidIdent(s string) bool {
	if s == "" || s != strings.TrimSpace(s) || strings.Contains(s, "  ") {
		return false
	}
	for i, r := range s {
		switch {
		case r == ' ', r == '_':
		case isLetter(r):
		case isDigit(r):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !reservedWords[s]
}

var reservedWords = map[string]bool{"true": true, "false": true}

func isLetter(r rune) bool { return unicode.IsLetter(r) }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
