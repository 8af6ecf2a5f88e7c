package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eponymouse/columnal-sub000/decl"
)

var (
	ErrCheckFailed   = errors.New("expression has errors")
	ErrTooManyErrors = errors.New("too many errors")
)

// ErrorSink receives what the checker finds out about individual nodes.
// Nothing recorded here changes the outcome of a check.
type ErrorSink interface {
	RecordError(node Expression, msg string)
	RecordQuickFixes(node Expression, fixes []QuickFix)
	RecordInformation(node Expression, msg string)
	// RecordType is told the type of every node that checked successfully
	// and returns the type the checker should carry on with.
	RecordType(node Expression, t TypeExp) TypeExp
}

// CheckError is a problem located at one node.
type CheckError struct {
	Node     NodeID
	Pos, End int
	Text     string // the node as displayed
	Msg      string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%d-%d: %s", e.Pos, e.End, e.Msg)
}

// Information is a note attached to a node.
type Information struct {
	Node NodeID
	Msg  string
}

// Diagnostics is the default ErrorSink.  It collects errors, quick fixes,
// notes and types per node.
type Diagnostics struct {
	Errors      []*CheckError
	Information []Information

	// Max errors before we panic
	// 0 => no limit
	MaxErrors int

	fixes     map[NodeID][]QuickFix
	fixOrder  []NodeID
	nodeTypes map[NodeID]TypeExp
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		fixes:     map[NodeID][]QuickFix{},
		nodeTypes: map[NodeID]TypeExp{},
	}
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

func (d *Diagnostics) PrintErrors() {
	d.WriteErrors(os.Stderr)
}

func (d *Diagnostics) WriteErrors(w io.Writer) {
	for _, err := range d.Errors {
		fmt.Fprintln(w, err)
	}
}

// Err joins the collected errors, or returns nil.
func (d *Diagnostics) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(d.Errors))
	for i, e := range d.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Errorf records a formatted error and returns false so that callers can
// write `return d.Errorf(...)`.
func (d *Diagnostics) Errorf(node Expression, format string, args ...any) bool {
	d.RecordError(node, fmt.Sprintf(format, args...))
	return false
}

func (d *Diagnostics) RecordError(node Expression, msg string) {
	err := &CheckError{Node: node.ID(), Pos: node.Pos(), End: node.End(), Text: decl.Save(node, decl.ToDisplay), Msg: msg}
	d.Errors = append(d.Errors, err)
	if d.MaxErrors > 0 && len(d.Errors) >= d.MaxErrors {
		panic(fmt.Errorf("%w: %w", ErrTooManyErrors, err))
	}
}

func (d *Diagnostics) RecordQuickFixes(node Expression, fixes []QuickFix) {
	if len(fixes) == 0 {
		return
	}
	id := node.ID()
	if _, ok := d.fixes[id]; !ok {
		d.fixOrder = append(d.fixOrder, id)
	}
	d.fixes[id] = append(d.fixes[id], fixes...)
}

func (d *Diagnostics) RecordInformation(node Expression, msg string) {
	d.Information = append(d.Information, Information{Node: node.ID(), Msg: msg})
}

func (d *Diagnostics) RecordType(node Expression, t TypeExp) TypeExp {
	if old, ok := d.nodeTypes[node.ID()]; ok {
		return old
	}
	d.nodeTypes[node.ID()] = t
	return t
}

// FixesFor returns the quick fixes recorded against a node.
func (d *Diagnostics) FixesFor(id NodeID) []QuickFix {
	return d.fixes[id]
}

// AllFixes returns every recorded fix in the order the nodes were reported.
func (d *Diagnostics) AllFixes() []QuickFix {
	var out []QuickFix
	for _, id := range d.fixOrder {
		out = append(out, d.fixes[id]...)
	}
	return out
}

// TypeOf returns the recorded type of a node.
func (d *Diagnostics) TypeOf(id NodeID) (TypeExp, bool) {
	t, ok := d.nodeTypes[id]
	return t, ok
}
