package loader

import (
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// ColumnData gives access to the values of one column.
type ColumnData interface {
	Len() (int, error)
	Get(row int) (Value, error)
}

// FoundColumn is the answer to a column lookup.  Type is the type of one
// cell.  When WholeColumn is set the reference stands for the entire
// column as a list, which is how columns of other tables are referred to.
type FoundColumn struct {
	Table       string
	Column      string
	Type        TypeExp
	WholeColumn bool
	Data        ColumnData

	// Information is shown alongside the reference, eg why a whole column
	// is used.
	Information string
}

// FoundTable is the answer to a table lookup.
type FoundTable interface {
	Name() string
	ColumnNames() []string
	ColumnType(name string) TypeExp
	Column(name string) ColumnData
	RowCount() (int, error)
}

// ColumnReference names one column for enumeration.
type ColumnReference struct {
	Table, Column string
}

// ColumnLookup is how expressions reach table data.  An empty table name
// means the table the expression belongs to.
type ColumnLookup interface {
	GetColumn(table, column string) *FoundColumn
	GetTable(table string) FoundTable
	AvailableColumnReferences() []ColumnReference
	AvailableTableReferences() []string
}

// Bindings are the resolved values of a function instance's type and unit
// variables, keyed by the names used in its scheme.
type Bindings struct {
	Types map[string]TypeExp
	Units map[string]units.UnitExp
}

// Type returns a type binding, resolved.
func (b Bindings) Type(name string) (TypeExp, bool) {
	t, ok := b.Types[name]
	if !ok {
		return nil, false
	}
	return types.Resolve(t), true
}

// Unit returns a unit binding, pruned.
func (b Bindings) Unit(name string) (units.UnitExp, bool) {
	u, ok := b.Units[name]
	if !ok {
		return units.UnitExp{}, false
	}
	return u.Prune(), true
}

// FunctionScheme is a function type over named type and unit variables.
// Each instantiation gets its own variables.
type FunctionScheme struct {
	Type     TypeExp
	TypeVars map[string]*types.MutVar
	UnitVars map[string]units.UnitExp
}

// FunctionDefinition describes one standard function.
type FunctionDefinition struct {
	Name     string
	Synopsis string

	// Scheme builds the function's type with fresh variables.
	Scheme func() FunctionScheme

	// MakeValue builds the callable once the variables are known.
	MakeValue func(b Bindings) (decl.FunctionValue, error)
}

// FunctionInstance is one use of a function with its own variables.
type FunctionInstance struct {
	Def    *FunctionDefinition
	Scheme FunctionScheme
}

// Instantiate creates an instance with fresh type and unit variables.
func (d *FunctionDefinition) Instantiate() *FunctionInstance {
	return &FunctionInstance{Def: d, Scheme: d.Scheme()}
}

// Type is the instance's function type.
func (i *FunctionInstance) Type() TypeExp { return i.Scheme.Type }

// Bindings reads the current state of the instance's variables.
func (i *FunctionInstance) Bindings() Bindings {
	b := Bindings{Types: map[string]TypeExp{}, Units: map[string]units.UnitExp{}}
	for name, v := range i.Scheme.TypeVars {
		b.Types[name] = v
	}
	for name, u := range i.Scheme.UnitVars {
		b.Units[name] = u
	}
	return b
}

// Value builds the callable for this instance.
func (i *FunctionInstance) Value() (decl.FunctionValue, error) {
	return i.Def.MakeValue(i.Bindings())
}

// FunctionLookup is the standard library as seen by the checker.
type FunctionLookup interface {
	Lookup(name string) *FunctionDefinition
	AllFunctions() []*FunctionDefinition
}
