// Package tables is a small in-memory table store.  It gives formulas
// their column and table references and is loaded from YAML fixtures.
package tables

import (
	"errors"
	"fmt"
	"slices"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/functions"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

type Value = decl.Value

var (
	ErrDuplicate      = errors.New("duplicate name")
	ErrNoSuchTable    = errors.New("no such table")
	ErrLengthMismatch = errors.New("column length mismatch")
)

// Column is a typed list of values.
type Column struct {
	Name   string
	Type   types.TypeExp
	Values []Value
}

func (c *Column) Len() (int, error) { return len(c.Values), nil }

func (c *Column) Get(row int) (Value, error) {
	if row < 0 || row >= len(c.Values) {
		return Value{}, fmt.Errorf("row %d of column %s (%d rows)", row, c.Name, len(c.Values))
	}
	return c.Values[row], nil
}

// Table is a named set of columns of equal length.
type Table struct {
	name    string
	columns []*Column
}

func (t *Table) Name() string { return t.name }

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

func (t *Table) ColumnType(name string) types.TypeExp {
	if c := t.find(name); c != nil {
		return c.Type
	}
	return nil
}

func (t *Table) Column(name string) loader.ColumnData {
	if c := t.find(name); c != nil {
		return c
	}
	return nil
}

func (t *Table) RowCount() (int, error) {
	if len(t.columns) == 0 {
		return 0, nil
	}
	return len(t.columns[0].Values), nil
}

// AddColumn appends a column.  Every column of a table has the same
// number of rows.
func (t *Table) AddColumn(name string, typ types.TypeExp, values []Value) (*Column, error) {
	if t.find(name) != nil {
		return nil, fmt.Errorf("column %s in table %s: %w", name, t.name, ErrDuplicate)
	}
	if rows, _ := t.RowCount(); len(t.columns) > 0 && rows != len(values) {
		return nil, fmt.Errorf("column %s has %d rows but table %s has %d: %w", name, len(values), t.name, rows, ErrLengthMismatch)
	}
	c := &Column{Name: name, Type: typ, Values: values}
	t.columns = append(t.columns, c)
	return c, nil
}

func (t *Table) find(name string) *Column {
	for _, c := range t.columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Store holds tables along with the unit and tagged type registries their
// column types use.  A formula belongs to the current table: its
// unqualified column references read the row being evaluated, while
// columns of other tables are read whole, as lists.
type Store struct {
	types   *types.TypeManager
	units   *units.UnitManager
	library *functions.Library
	tables  []*Table
	current string
}

// NewStore creates an empty store.  Nil registries get the defaults.
func NewStore(tm *types.TypeManager, um *units.UnitManager) *Store {
	if tm == nil {
		tm = types.NewTypeManager()
	}
	if um == nil {
		um = units.NewUnitManager()
	}
	return &Store{types: tm, units: um, library: functions.NewLibrary(tm, um)}
}

func (s *Store) Types() *types.TypeManager { return s.types }
func (s *Store) Units() *units.UnitManager { return s.units }

// Functions is the standard library over the store's registries.
func (s *Store) Functions() *functions.Library { return s.library }

// TypeState starts type checking against the store.
func (s *Store) TypeState() *loader.TypeState {
	return loader.NewTypeState(s.types, s.units, s.library)
}

// AddTable creates an empty table.  The first table added becomes the
// current one.
func (s *Store) AddTable(name string) (*Table, error) {
	if s.Table(name) != nil {
		return nil, fmt.Errorf("table %s: %w", name, ErrDuplicate)
	}
	t := &Table{name: name}
	s.tables = append(s.tables, t)
	if s.current == "" {
		s.current = name
	}
	return t, nil
}

func (s *Store) Table(name string) *Table {
	for _, t := range s.tables {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (s *Store) TableNames() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.name
	}
	return out
}

// Current is the table formulas belong to, or nil in an empty store.
func (s *Store) Current() *Table { return s.Table(s.current) }

func (s *Store) SetCurrent(name string) error {
	if s.Table(name) == nil {
		return fmt.Errorf("%s: %w", name, ErrNoSuchTable)
	}
	s.current = name
	return nil
}

// --- loader.ColumnLookup ---

func (s *Store) GetColumn(table, column string) *loader.FoundColumn {
	sameRow := table == "" || table == s.current
	if table == "" {
		table = s.current
	}
	t := s.Table(table)
	if t == nil {
		return nil
	}
	c := t.find(column)
	if c == nil {
		return nil
	}
	fc := &loader.FoundColumn{Table: t.name, Column: c.Name, Type: c.Type, WholeColumn: !sameRow, Data: c}
	if !sameRow {
		fc.Information = fmt.Sprintf("%s is in another table, so the whole column is used", c.Name)
	}
	return fc
}

func (s *Store) GetTable(table string) loader.FoundTable {
	if t := s.Table(table); t != nil {
		return t
	}
	return nil
}

func (s *Store) AvailableColumnReferences() []loader.ColumnReference {
	var out []loader.ColumnReference
	for _, t := range s.tables {
		for _, c := range t.columns {
			out = append(out, loader.ColumnReference{Table: t.name, Column: c.Name})
		}
	}
	return out
}

func (s *Store) AvailableTableReferences() []string {
	return slices.Sorted(slices.Values(s.TableNames()))
}
