package loader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

var testUnits = units.NewUnitManager()

type fakeColumn struct{ values []Value }

func (c *fakeColumn) Len() (int, error) { return len(c.values), nil }

func (c *fakeColumn) Get(row int) (Value, error) {
	if row < 0 || row >= len(c.values) {
		return Value{}, fmt.Errorf("row %d out of range", row)
	}
	return c.values[row], nil
}

type fakeTable struct {
	name    string
	columns []string
	types   map[string]TypeExp
	data    map[string]*fakeColumn
}

func (t *fakeTable) Name() string                   { return t.name }
func (t *fakeTable) ColumnNames() []string          { return t.columns }
func (t *fakeTable) ColumnType(name string) TypeExp { return t.types[name] }

func (t *fakeTable) Column(name string) ColumnData {
	if c, ok := t.data[name]; ok {
		return c
	}
	return nil
}

func (t *fakeTable) RowCount() (int, error) {
	for _, c := range t.data {
		return c.Len()
	}
	return 0, nil
}

// fakeLookup holds two tables.  Expressions belong to Sales; Rates can only
// be reached as whole columns.
type fakeLookup struct {
	current string
	tables  map[string]*fakeTable
}

func newFakeLookup() *fakeLookup {
	usd := types.Number(testUnits.MustLookup("USD"))
	return &fakeLookup{
		current: "Sales",
		tables: map[string]*fakeTable{
			"Sales": {
				name:    "Sales",
				columns: []string{"Item", "Price"},
				types:   map[string]TypeExp{"Item": types.TextType, "Price": usd},
				data: map[string]*fakeColumn{
					"Item":  {values: []Value{decl.TextValue("tea"), decl.TextValue("cake")}},
					"Price": {values: []Value{decl.IntValue(2), decl.IntValue(3)}},
				},
			},
			"Rates": {
				name:    "Rates",
				columns: []string{"Rate"},
				types:   map[string]TypeExp{"Rate": types.PlainNumber()},
				data:    map[string]*fakeColumn{"Rate": {values: []Value{decl.IntValue(1)}}},
			},
		},
	}
}

func (l *fakeLookup) GetColumn(table, column string) *FoundColumn {
	whole := table != "" && table != l.current
	if table == "" {
		table = l.current
	}
	t, ok := l.tables[table]
	if !ok {
		return nil
	}
	ct, ok := t.types[column]
	if !ok {
		return nil
	}
	fc := &FoundColumn{Table: table, Column: column, Type: ct, WholeColumn: whole, Data: t.data[column]}
	if whole {
		fc.Information = fmt.Sprintf("%s is the whole column from %s", column, table)
	}
	return fc
}

func (l *fakeLookup) GetTable(table string) FoundTable {
	if t, ok := l.tables[table]; ok {
		return t
	}
	return nil
}

func (l *fakeLookup) AvailableColumnReferences() []ColumnReference {
	var out []ColumnReference
	for _, name := range l.AvailableTableReferences() {
		for _, col := range l.tables[name].columns {
			out = append(out, ColumnReference{Table: name, Column: col})
		}
	}
	return out
}

func (l *fakeLookup) AvailableTableReferences() []string { return []string{"Rates", "Sales"} }

type fakeFunctions map[string]*FunctionDefinition

func (f fakeFunctions) Lookup(name string) *FunctionDefinition { return f[name] }

func (f fakeFunctions) AllFunctions() []*FunctionDefinition {
	var out []*FunctionDefinition
	for _, d := range f {
		out = append(out, d)
	}
	return out
}

func newFakeFunctions() fakeFunctions {
	return fakeFunctions{
		"abs": {
			Name: "abs",
			Scheme: func() FunctionScheme {
				u := units.Fresh()
				return FunctionScheme{Type: types.Function(types.Number(u), types.Number(u)), UnitVars: map[string]units.UnitExp{"u": u}}
			},
			MakeValue: func(Bindings) (decl.FunctionValue, error) { return nil, nil },
		},
		"count": {
			Name: "count",
			Scheme: func() FunctionScheme {
				t := types.NewMutVar()
				return FunctionScheme{Type: types.Function(types.PlainNumber(), types.List(t)), TypeVars: map[string]*types.MutVar{"t": t}}
			},
			MakeValue: func(Bindings) (decl.FunctionValue, error) { return nil, nil },
		},
	}
}

func newTestState() *TypeState {
	return NewTypeState(nil, testUnits, newFakeFunctions())
}

func mustParse(t *testing.T, text string) Expression {
	t.Helper()
	e, err := parser.ParseExpression(text)
	require.NoError(t, err, "parsing %s", text)
	return e
}

// checkText parses and checks text as an expression of the Sales table.
func checkText(t *testing.T, text string) (*Checked, *Diagnostics, error) {
	t.Helper()
	defer core.QuietTest(t)()
	d := NewDiagnostics()
	checked, err := NewChecker(newFakeLookup(), d).Check(mustParse(t, text), newTestState())
	return checked, d, err
}

func errorMessages(d *Diagnostics) []string {
	out := make([]string, len(d.Errors))
	for i, e := range d.Errors {
		out[i] = e.Msg
	}
	return out
}

func fixTitles(d *Diagnostics) []string {
	var out []string
	for _, f := range d.AllFixes() {
		out = append(out, f.Title)
	}
	return out
}
