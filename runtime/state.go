package runtime

import (
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

// EvaluateState is the environment of one evaluation: the variables in
// scope, the row being computed and whether explanations are recorded.
// Like the type state it is never changed in place, so branches can
// extend it independently.  Distinct goroutines must use distinct states.
type EvaluateState struct {
	vars              *Env[Value]
	row               int
	hasRow            bool
	recordExplanation bool
	typeManager       *types.TypeManager
}

// NewEvaluateState creates a state without a row.
func NewEvaluateState(tm *types.TypeManager, recordExplanation bool) *EvaluateState {
	if tm == nil {
		tm = types.NewTypeManager()
	}
	return &EvaluateState{vars: decl.NewEnv[Value](nil), recordExplanation: recordExplanation, typeManager: tm}
}

func (s *EvaluateState) TypeManager() *types.TypeManager { return s.typeManager }

// RecordExplanation reports whether results evaluated in this state can
// build explanations.
func (s *EvaluateState) RecordExplanation() bool { return s.recordExplanation }

// Row returns the current row, if there is one.
func (s *EvaluateState) Row() (int, bool) { return s.row, s.hasRow }

// WithRow returns a copy of the state positioned at row.
func (s *EvaluateState) WithRow(row int) *EvaluateState {
	out := *s
	out.row, out.hasRow = row, true
	return &out
}

// Add binds a variable in a new state.
func (s *EvaluateState) Add(name string, v Value) *EvaluateState {
	out := *s
	out.vars = s.vars.Extend(map[string]Value{name: v})
	return &out
}

// Get looks a variable up.
func (s *EvaluateState) Get(name string) (Value, bool) {
	return s.vars.Get(name)
}

// Variables lists the names bound so far, innermost first.
func (s *EvaluateState) Variables() []string {
	return s.vars.Names()
}
