package runtime

import (
	"errors"
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/decl"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNoRow          = errors.New("no row to evaluate against")
	ErrNoMatch        = errors.New("no case matched")
	ErrDivideByZero   = errors.New("division by zero")
	ErrInvalidPower   = errors.New("invalid power")
	ErrDefineMismatch = errors.New("definition does not match")
	ErrWrongArguments = errors.New("wrong number of arguments")
)

// FrameValue is a child of a frame that had already been evaluated when
// the error happened.
type FrameValue struct {
	Expr  Expression
	Value Value
}

// Frame is one enclosing expression of an evaluation error.
type Frame struct {
	Expr   Expression
	Values []FrameValue
}

// EvaluationError is a problem with the formula found while evaluating
// it, such as a division by zero or a match with no matching case.
// Frames run from the innermost expression outwards.
type EvaluationError struct {
	Message string
	Cause   error
	Frames  []Frame
}

func (e *EvaluationError) Error() string {
	return e.Message
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// Render shows the message and where it happened, with the values that
// led there.
func (e *EvaluationError) Render() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, f := range e.Frames {
		fmt.Fprintf(&sb, "\n  inside %s", decl.Save(f.Expr, decl.ToDisplay))
		if len(f.Values) > 0 {
			parts := gfn.Map(f.Values, func(v FrameValue) string {
				return fmt.Sprintf("%s = %s", decl.Save(v.Expr, decl.ToDisplay), v.Value.String())
			})
			fmt.Fprintf(&sb, " where %s", strings.Join(parts, ", "))
		}
	}
	return sb.String()
}

// userErrorf builds an EvaluationError wrapping one of the sentinels above.
func userErrorf(cause error, format string, args ...any) *EvaluationError {
	return &EvaluationError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// withFrame adds e as the next enclosing frame of an evaluation error.
// Other errors pass through unchanged.
func withFrame(err error, e Expression, done []*ValueResult) error {
	var ee *EvaluationError
	if !errors.As(err, &ee) {
		return err
	}
	f := Frame{Expr: e}
	for _, r := range done {
		if r.kind == ExplainMatch || isLiteral(r.Expr) {
			continue
		}
		f.Values = append(f.Values, FrameValue{Expr: r.Expr, Value: r.Value})
	}
	ee.Frames = append(ee.Frames, f)
	return ee
}

func isLiteral(e Expression) bool {
	switch e.(type) {
	case *decl.NumericLiteral, *decl.StringLiteral, *decl.BooleanLiteral, *decl.TemporalLiteral:
		return true
	}
	return false
}
