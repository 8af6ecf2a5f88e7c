package runtime

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

var testUnits = units.NewUnitManager()

type listColumn []Value

func (c listColumn) Len() (int, error) { return len(c), nil }

func (c listColumn) Get(row int) (Value, error) {
	if row < 0 || row >= len(c) {
		return Value{}, fmt.Errorf("row %d is out of range", row)
	}
	return c[row], nil
}

// salesTable is the table test expressions belong to.
type salesTable struct{}

var salesData = map[string]listColumn{
	"Item":  {decl.TextValue("tea"), decl.TextValue("cake")},
	"Price": {decl.IntValue(2), decl.IntValue(3)},
}

func (salesTable) Name() string           { return "Sales" }
func (salesTable) ColumnNames() []string  { return []string{"Item", "Price"} }
func (salesTable) RowCount() (int, error) { return 2, nil }

func (salesTable) ColumnType(name string) types.TypeExp {
	if name == "Price" {
		return types.Number(testUnits.MustLookup("USD"))
	}
	return types.TextType
}

func (salesTable) Column(name string) loader.ColumnData {
	if c, ok := salesData[name]; ok {
		return c
	}
	return nil
}

// salesLookup resolves columns of Sales.  A column qualified with the table
// name reads the whole column.
type salesLookup struct{}

func (salesLookup) GetColumn(table, column string) *loader.FoundColumn {
	if table != "" && table != "Sales" {
		return nil
	}
	data, ok := salesData[column]
	if !ok {
		return nil
	}
	return &loader.FoundColumn{Table: "Sales", Column: column, Type: salesTable{}.ColumnType(column), WholeColumn: table == "Sales", Data: data}
}

func (salesLookup) GetTable(table string) loader.FoundTable {
	if table == "Sales" {
		return salesTable{}
	}
	return nil
}

func (salesLookup) AvailableColumnReferences() []loader.ColumnReference {
	return []loader.ColumnReference{{Table: "Sales", Column: "Item"}, {Table: "Sales", Column: "Price"}}
}

func (salesLookup) AvailableTableReferences() []string { return []string{"Sales"} }

type testFunctions map[string]*loader.FunctionDefinition

func (f testFunctions) Lookup(name string) *loader.FunctionDefinition { return f[name] }

func (f testFunctions) AllFunctions() []*loader.FunctionDefinition {
	var out []*loader.FunctionDefinition
	for _, d := range f {
		out = append(out, d)
	}
	return out
}

type callFunc struct {
	name string
	fn   func(args []Value) (Value, error)
}

func (c *callFunc) Name() string                     { return c.name }
func (c *callFunc) Call(args []Value) (Value, error) { return c.fn(args) }

// apply(f, x) calls f with x, which is enough to exercise function values
// built by the evaluator.
var functionLib = testFunctions{
	"apply": {
		Name: "apply",
		Scheme: func() loader.FunctionScheme {
			a, b := types.NewMutVar(), types.NewMutVar()
			return loader.FunctionScheme{
				Type:     types.Function(b, types.Function(b, a), a),
				TypeVars: map[string]*types.MutVar{"a": a, "b": b},
			}
		},
		MakeValue: func(loader.Bindings) (decl.FunctionValue, error) {
			return &callFunc{name: "apply", fn: func(args []Value) (Value, error) {
				f, err := args[0].GetFunction()
				if err != nil {
					return Value{}, err
				}
				return f.Call(args[1:])
			}}, nil
		},
	},
	"fail": {
		Name: "fail",
		Scheme: func() loader.FunctionScheme {
			return loader.FunctionScheme{Type: types.Function(types.PlainNumber(), types.TextType)}
		},
		MakeValue: func(loader.Bindings) (decl.FunctionValue, error) {
			return &callFunc{name: "fail", fn: func(args []Value) (Value, error) {
				s, _ := args[0].GetText()
				return Value{}, fmt.Errorf("failed: %s", s)
			}}, nil
		},
	},
}

func checkedText(t *testing.T, text string) *loader.Checked {
	t.Helper()
	defer core.QuietTest(t)()
	e, err := parser.ParseExpression(text)
	require.NoError(t, err, "parsing %s", text)
	d := loader.NewDiagnostics()
	checked, err := loader.NewChecker(salesLookup{}, d).Check(e, loader.NewTypeState(nil, testUnits, functionLib))
	require.NoError(t, err, "checking %s: %v", text, d.Err())
	return checked
}

// evalText checks and evaluates text at row 0 of Sales.
func evalText(t *testing.T, text string, record bool) (*ValueResult, error) {
	t.Helper()
	st := NewEvaluateState(nil, record).WithRow(0)
	return NewEvaluator(checkedText(t, text)).Evaluate(st)
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
