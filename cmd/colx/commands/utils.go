package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/runtime"
	"github.com/eponymouse/columnal-sub000/tables"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	fixLabel   = color.New(color.FgYellow)
	noteLabel  = color.New(color.FgCyan)
)

// openStore loads the tables named by --tables or COLX_TABLES.  With
// neither, formulas are checked against an empty store.
func openStore() (*tables.Store, error) {
	path := tablesPath
	if path == "" {
		path = os.Getenv("COLX_TABLES")
	}
	var store *tables.Store
	if path == "" {
		store = tables.NewStore(nil, nil)
	} else {
		var err error
		if store, err = tables.LoadFile(path); err != nil {
			return nil, err
		}
		slog.Debug("loaded tables", "path", path, "tables", store.TableNames())
	}
	if tableName != "" {
		if err := store.SetCurrent(tableName); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// checkFormula parses and checks text against the store.  Problems are
// written to w and errReported is returned.
func checkFormula(w io.Writer, store *tables.Store, text string) (*loader.Checked, *loader.Diagnostics, error) {
	e, err := parser.ParseExpression(text)
	if err != nil {
		errorLabel.Fprint(w, "syntax error: ")
		fmt.Fprintln(w, err)
		return nil, nil, errReported
	}
	d := loader.NewDiagnostics()
	checked, err := loader.NewChecker(store, d).Check(e, store.TypeState())
	if err != nil {
		if !errors.Is(err, loader.ErrCheckFailed) {
			return nil, d, err
		}
		printDiagnostics(w, d)
		return nil, d, errReported
	}
	return checked, d, nil
}

func printDiagnostics(w io.Writer, d *loader.Diagnostics) {
	for _, e := range d.Errors {
		errorLabel.Fprint(w, "error: ")
		fmt.Fprintf(w, "%s: %s\n", e.Text, e.Msg)
		for _, fix := range d.FixesFor(e.Node) {
			fixLabel.Fprint(w, "  fix: ")
			fmt.Fprintln(w, fix.Title)
		}
	}
	printNotes(w, d)
}

func printNotes(w io.Writer, d *loader.Diagnostics) {
	for _, info := range d.Information {
		noteLabel.Fprint(w, "note: ")
		fmt.Fprintln(w, info.Msg)
	}
}

// reportEvaluation writes an evaluation error with its frames.  Anything
// other than a user error is returned as is.
func reportEvaluation(w io.Writer, err error) error {
	var ee *runtime.EvaluationError
	if !errors.As(err, &ee) {
		return err
	}
	slog.Info("evaluation failed", "error", ee.Message)
	errorLabel.Fprint(w, "error: ")
	fmt.Fprintln(w, ee.Render())
	return errReported
}

// evaluateState starts an evaluation, at --row when one was given.
func evaluateState(store *tables.Store, record bool) *runtime.EvaluateState {
	st := runtime.NewEvaluateState(store.Types(), record)
	if rowIndex >= 0 {
		st = st.WithRow(rowIndex)
	}
	return st
}
