package tables

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/runtime"
)

const shopFixture = `
units:
  - name: GBP
  - name: crate
    description: a crate of twelve
aliases:
  quid: GBP
types:
  - name: Size
    tags:
      - name: Small
      - name: Large
      - name: Custom
        inner: Number{m}
tables:
  - name: Sales
    columns:
      - name: Item
        type: Text
        values: [tea, cake, "scone"]
      - name: Price
        type: Number{GBP}
        values: [2, "3.10", 1.5]
      - name: Size
        type: Size
        values: [Small, Large, "Custom(3{m})"]
      - name: Discount
        type: Optional(Number)
        values: [None, "Is(0.5)", None]
  - name: Rates
    columns:
      - name: Rate
        type: Number
        values: [1, 2, 3, 4]
`

func loadShop(t *testing.T) *Store {
	t.Helper()
	s, err := Load([]byte(shopFixture))
	require.NoError(t, err)
	return s
}

func evalAt(t *testing.T, s *Store, text string, row int) (string, error) {
	t.Helper()
	defer core.QuietTest(t)()
	e, err := parser.ParseExpression(text)
	require.NoError(t, err)
	d := loader.NewDiagnostics()
	checked, err := loader.NewChecker(s, d).Check(e, s.TypeState())
	require.NoError(t, err, "checking %s: %v", text, d.Err())
	res, err := runtime.NewEvaluator(checked).Evaluate(runtime.NewEvaluateState(s.Types(), false).WithRow(row))
	if err != nil {
		return "", err
	}
	return res.Value.String(), nil
}

func TestLoad(t *testing.T) {
	s := loadShop(t)
	assert.Equal(t, []string{"Sales", "Rates"}, s.TableNames())
	assert.Equal(t, "Sales", s.Current().Name())

	sales := s.Table("Sales")
	rows, err := sales.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{"Item", "Price", "Size", "Discount"}, sales.ColumnNames())
	assert.Equal(t, "Number{GBP}", sales.ColumnType("Price").String())
	assert.Equal(t, "Optional(Number)", sales.ColumnType("Discount").String())

	v, err := sales.Column("Price").Get(1)
	require.NoError(t, err)
	assert.Equal(t, "3.1", v.String())
	v, err = sales.Column("Size").Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Custom(3)", v.String())

	_, err = s.Units().Lookup("quid")
	assert.NoError(t, err)
	crate, err := s.Units().Lookup("crate")
	require.NoError(t, err)
	assert.Equal(t, "a crate of twelve", crate.Description)
	gbp, err := s.Units().Lookup("GBP")
	require.NoError(t, err)
	assert.Equal(t, "British pound", gbp.Description)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		want    string
	}{
		{"unknown field", "tables: []\nextra: 1\n", "unknown field"},
		{"bad type", "tables:\n  - name: T\n    columns:\n      - name: A\n        type: Nope\n        values: []\n", "Nope"},
		{"bad value", "tables:\n  - name: T\n    columns:\n      - name: A\n        type: Number\n        values: [abc]\n", "row 0"},
		{"ragged", "tables:\n  - name: T\n    columns:\n      - name: A\n        type: Number\n        values: [1]\n      - name: B\n        type: Number\n        values: [1, 2]\n", "rows"},
		{"duplicate table", "tables:\n  - name: T\n    columns: []\n  - name: T\n    columns: []\n", "duplicate"},
		{"bad current", "current: X\ntables: []\n", "no such table"},
		{"built-in unit redescribed", "units:\n  - name: GBP\n    description: pound sterling\ntables: []\n", "unit already declared"},
		{"unit named like an alias", "units:\n  - name: metre\ntables: []\n", "unit already declared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.fixture))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestColumnLookup(t *testing.T) {
	s := loadShop(t)

	same := s.GetColumn("", "Price")
	require.NotNil(t, same)
	assert.False(t, same.WholeColumn)
	assert.Equal(t, "Sales", same.Table)

	qualified := s.GetColumn("Sales", "Price")
	require.NotNil(t, qualified)
	assert.False(t, qualified.WholeColumn)

	other := s.GetColumn("Rates", "Rate")
	require.NotNil(t, other)
	assert.True(t, other.WholeColumn)
	assert.NotEmpty(t, other.Information)

	assert.Nil(t, s.GetColumn("", "Rate"))
	assert.Nil(t, s.GetColumn("Nope", "Rate"))
	assert.Nil(t, s.GetTable("Nope"))
	assert.Equal(t, []string{"Rates", "Sales"}, s.AvailableTableReferences())
	assert.Len(t, s.AvailableColumnReferences(), 5)

	require.NoError(t, s.SetCurrent("Rates"))
	assert.True(t, s.GetColumn("Sales", "Price").WholeColumn)
	assert.True(t, errors.Is(s.SetCurrent("Nope"), ErrNoSuchTable))
}

func TestEvaluateAgainstStore(t *testing.T) {
	s := loadShop(t)
	tests := []struct {
		expr string
		row  int
		want string
	}{
		{"Price * 2", 1, "6.2"},
		{"Price > 2{GBP}", 0, "false"},
		{`Item ; "!"`, 2, `"scone!"`},
		{"sum(column\\Rates\\Rate)", 0, "10"},
		{"count(table\\Rates)", 0, "4"},
		{"@match Size @case Small @then 1 @case Large @then 2 @case Custom(n) @then strip units(n) @endmatch", 2, "3"},
		{"@match Discount @case Is(d) @then d @case None @then 0 @endmatch", 1, "0.5"},
		{"element(column\\Rates\\Rate, 2) + 1", 0, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalAt(t, s, tt.expr, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopFixture), 0o644))
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.NotNil(t, s.Table("Rates"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAddColumn(t *testing.T) {
	s := NewStore(nil, nil)
	tbl, err := s.AddTable("T")
	require.NoError(t, err)
	_, err = tbl.AddColumn("A", nil, []Value{{}, {}})
	require.NoError(t, err)
	_, err = tbl.AddColumn("A", nil, nil)
	assert.True(t, errors.Is(err, ErrDuplicate))
	_, err = tbl.AddColumn("B", nil, []Value{{}})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	_, err = tbl.Column("A").Get(2)
	assert.Error(t, err)
}
