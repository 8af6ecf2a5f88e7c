package runtime

import (
	"github.com/eponymouse/columnal-sub000/core"
)

// ValueResult is the outcome of evaluating or matching one node.  State is
// the state after the node, which only differs from the input for patterns
// and for nodes that pass pattern bindings on (=~ and &).
//
// The child results are only kept when the state records explanations, so
// bulk evaluation does not hold on to the whole evaluation tree.
type ValueResult struct {
	Value Value
	State *EvaluateState
	Expr  Expression

	kind      ExplanationKind
	children  []*ValueResult
	locations []ExplanationLocation
}

// Matched is the outcome of a pattern match.
func (r *ValueResult) Matched() bool {
	b, err := r.Value.GetBool()
	return err == nil && b
}

// MakeExplanation builds the explanation of this result.  Children are
// built when first asked for.  It is an error to ask for an explanation of
// a result evaluated without RecordExplanation.
func (r *ValueResult) MakeExplanation() (*Explanation, error) {
	if r.State == nil || !r.State.RecordExplanation() {
		return nil, core.NewInternalError("explanation requested for %s, which was evaluated without recording", r.Expr)
	}
	return newExplanation(r), nil
}
