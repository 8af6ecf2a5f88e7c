package loader

import (
	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// ResolutionKind says what an identifier refers to.
type ResolutionKind int

const (
	ResolvedVariable ResolutionKind = iota
	ResolvedColumn
	ResolvedTable
	ResolvedTag
	ResolvedFunction
)

var resolutionNames = [...]string{"variable", "column", "table", "tag", "function"}

func (k ResolutionKind) String() string { return resolutionNames[k] }

// Resolution is the outcome of resolving one identifier.  Only the field
// for its Kind is set; a nil Column, Table or Function means the name was
// written with that namespace but nothing by that name exists.  Err is set
// for tags that could not be found.
type Resolution struct {
	Kind     ResolutionKind
	Column   *FoundColumn
	Table    FoundTable
	Tag      types.TagRef
	Function *FunctionDefinition
	Err      error
}

// Annotations is the side table filled in by resolution and checking.
// Every entry is written at most once per node; the evaluator reads it.
type Annotations struct {
	types        map[NodeID]TypeExp
	resolutions  map[NodeID]*Resolution
	functions    map[NodeID]*FunctionInstance
	declarations map[NodeID]bool
	lambdas      map[NodeID]TypeExp
	tagCalls     map[NodeID]bool
	temporals    map[NodeID]decl.Temporal
	typeValues   map[NodeID]TypeExp
	unitValues   map[NodeID]units.UnitExp
}

func NewAnnotations() *Annotations {
	return &Annotations{
		types:        map[NodeID]TypeExp{},
		resolutions:  map[NodeID]*Resolution{},
		functions:    map[NodeID]*FunctionInstance{},
		declarations: map[NodeID]bool{},
		lambdas:      map[NodeID]TypeExp{},
		tagCalls:     map[NodeID]bool{},
		temporals:    map[NodeID]decl.Temporal{},
		typeValues:   map[NodeID]TypeExp{},
		unitValues:   map[NodeID]units.UnitExp{},
	}
}

// setOnce stores v unless the node already has an entry, in which case the
// first entry wins.
func setOnce[V any](m map[NodeID]V, id NodeID, v V, what string) V {
	if old, ok := m[id]; ok {
		core.Warn("%s of node %d recorded twice, keeping the first", what, id)
		return old
	}
	m[id] = v
	return v
}

func (a *Annotations) SetType(id NodeID, t TypeExp) TypeExp { return setOnce(a.types, id, t, "type") }

// Type returns the checked type of a node, resolved.
func (a *Annotations) Type(id NodeID) (TypeExp, bool) {
	t, ok := a.types[id]
	if !ok {
		return nil, false
	}
	return types.Resolve(t), true
}

func (a *Annotations) SetResolution(id NodeID, r *Resolution) *Resolution {
	return setOnce(a.resolutions, id, r, "resolution")
}

func (a *Annotations) Resolution(id NodeID) *Resolution { return a.resolutions[id] }

func (a *Annotations) SetFunction(id NodeID, f *FunctionInstance) {
	setOnce(a.functions, id, f, "function instance")
}

func (a *Annotations) Function(id NodeID) *FunctionInstance { return a.functions[id] }

// MarkDeclaration records that a pattern identifier binds a new variable.
func (a *Annotations) MarkDeclaration(id NodeID) { setOnce(a.declarations, id, true, "declaration") }

func (a *Annotations) IsDeclaration(id NodeID) bool { return a.declarations[id] }

// MarkImplicitLambda records that a node containing ? is a function of the
// given argument type.
func (a *Annotations) MarkImplicitLambda(id NodeID, arg TypeExp) {
	setOnce(a.lambdas, id, arg, "implicit lambda")
}

func (a *Annotations) IsImplicitLambda(id NodeID) bool {
	_, ok := a.lambdas[id]
	return ok
}

// MarkTagCall records that a call constructs a tagged value.
func (a *Annotations) MarkTagCall(id NodeID) { setOnce(a.tagCalls, id, true, "tag call") }

func (a *Annotations) IsTagCall(id NodeID) bool { return a.tagCalls[id] }

func (a *Annotations) SetTemporal(id NodeID, t decl.Temporal) { setOnce(a.temporals, id, t, "temporal") }

func (a *Annotations) Temporal(id NodeID) (decl.Temporal, bool) {
	t, ok := a.temporals[id]
	return t, ok
}

func (a *Annotations) SetTypeValue(id NodeID, t TypeExp) { setOnce(a.typeValues, id, t, "type value") }

func (a *Annotations) TypeValue(id NodeID) (TypeExp, bool) {
	t, ok := a.typeValues[id]
	return t, ok
}

func (a *Annotations) SetUnitValue(id NodeID, u units.UnitExp) {
	setOnce(a.unitValues, id, u, "unit value")
}

func (a *Annotations) UnitValue(id NodeID) (units.UnitExp, bool) {
	u, ok := a.unitValues[id]
	return u, ok
}
