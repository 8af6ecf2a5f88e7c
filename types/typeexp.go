package types

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/units"
)

// TypeExp is a node of the unification based type representation.  The set
// of implementations is closed: NumTypeExp, PrimitiveTypeExp, ListTypeExp,
// RecordTypeExp, TaggedTypeExp, FunctionTypeExp and *MutVar.
type TypeExp interface {
	String() string
	typeExp()
}

// PrimitiveKind enumerates the non-numeric scalar types.
type PrimitiveKind int

const (
	KindBoolean PrimitiveKind = iota
	KindText
	KindDate
	KindDateYM
	KindTime
	KindDateTime
	KindDateTimeZoned
)

var primitiveNames = [...]string{"Boolean", "Text", "Date", "DateYM", "Time", "DateTime", "DateTimeZoned"}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return "Unknown"
}

// IsTemporal reports whether the kind is one of the date/time kinds.
func (k PrimitiveKind) IsTemporal() bool {
	return k >= KindDate
}

// PrimitiveKindByName is the inverse of PrimitiveKind.String.
func PrimitiveKindByName(name string) (PrimitiveKind, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return PrimitiveKind(i), true
		}
	}
	return 0, false
}

// NumTypeExp is a number carrying a unit.
type NumTypeExp struct {
	Unit units.UnitExp
}

// PrimitiveTypeExp covers booleans, text and the temporal kinds.
type PrimitiveTypeExp struct {
	Kind PrimitiveKind
}

// ListTypeExp is a homogeneous list.
type ListTypeExp struct {
	Elem TypeExp
}

// RecordTypeExp maps field names to types.  A record that is not Complete
// is "open": it only states fields that must be present.
type RecordTypeExp struct {
	Fields   map[string]TypeExp
	Complete bool
}

// TypeOperand is an argument of a tagged type; either a type or a unit.
type TypeOperand struct {
	Type   TypeExp
	Unit   units.UnitExp
	IsUnit bool
}

// TaggedTypeExp is an instance of a declared tagged (sum) type.
type TaggedTypeExp struct {
	Name     string
	Operands []TypeOperand
	Def      *TaggedTypeDefinition
}

// FunctionTypeExp is a function of fixed arity.
type FunctionTypeExp struct {
	Params []TypeExp
	Result TypeExp
}

func (NumTypeExp) typeExp()       {}
func (PrimitiveTypeExp) typeExp() {}
func (ListTypeExp) typeExp()      {}
func (RecordTypeExp) typeExp()    {}
func (TaggedTypeExp) typeExp()    {}
func (FunctionTypeExp) typeExp()  {}

var (
	BoolType          = PrimitiveTypeExp{Kind: KindBoolean}
	TextType          = PrimitiveTypeExp{Kind: KindText}
	DateType          = PrimitiveTypeExp{Kind: KindDate}
	DateYMType        = PrimitiveTypeExp{Kind: KindDateYM}
	TimeType          = PrimitiveTypeExp{Kind: KindTime}
	DateTimeType      = PrimitiveTypeExp{Kind: KindDateTime}
	DateTimeZonedType = PrimitiveTypeExp{Kind: KindDateTimeZoned}
)

// Names reserved for the types of type{..} and unit{..} literals.
const (
	TypeValueName = "Type"
	UnitValueName = "Unit"
)

// --- Factory Functions ---

// Number returns the numeric type with the given unit.
func Number(u units.UnitExp) TypeExp {
	return NumTypeExp{Unit: u}
}

// PlainNumber is the scalar number type.
func PlainNumber() TypeExp {
	return NumTypeExp{Unit: units.Scalar()}
}

func Primitive(kind PrimitiveKind) TypeExp {
	return PrimitiveTypeExp{Kind: kind}
}

func List(elem TypeExp) TypeExp {
	if elem == nil {
		panic("List element type cannot be nil")
	}
	return ListTypeExp{Elem: elem}
}

// Record builds a closed record type.
func Record(fields map[string]TypeExp) TypeExp {
	return RecordTypeExp{Fields: fields, Complete: true}
}

// OpenRecord builds a record type that only requires the given fields.
func OpenRecord(fields map[string]TypeExp) TypeExp {
	return RecordTypeExp{Fields: fields, Complete: false}
}

// Tuple builds a closed record whose fields are named "1".."n".
func Tuple(items ...TypeExp) TypeExp {
	fields := make(map[string]TypeExp, len(items))
	for i, t := range items {
		fields[strconv.Itoa(i+1)] = t
	}
	return Record(fields)
}

func Function(result TypeExp, params ...TypeExp) TypeExp {
	if result == nil {
		panic("Function result type cannot be nil")
	}
	return FunctionTypeExp{Params: params, Result: result}
}

// TypeOf is the type of a type{..} literal describing t.
func TypeOf(t TypeExp) TypeExp {
	return TaggedTypeExp{Name: TypeValueName, Operands: []TypeOperand{{Type: t}}}
}

// UnitOf is the type of a unit{..} literal describing u.
func UnitOf(u units.UnitExp) TypeExp {
	return TaggedTypeExp{Name: UnitValueName, Operands: []TypeOperand{{Unit: u, IsUnit: true}}}
}

// TypeOperandOf wraps a type as a tagged type operand.
func TypeOperandOf(t TypeExp) TypeOperand { return TypeOperand{Type: t} }

// UnitOperandOf wraps a unit as a tagged type operand.
func UnitOperandOf(u units.UnitExp) TypeOperand { return TypeOperand{Unit: u, IsUnit: true} }

// IsTuple reports whether the record's fields are exactly "1".."n".
func (r RecordTypeExp) IsTuple() bool {
	if !r.Complete || len(r.Fields) < 2 {
		return false
	}
	for i := range len(r.Fields) {
		if _, ok := r.Fields[strconv.Itoa(i+1)]; !ok {
			return false
		}
	}
	return true
}

// FieldNames returns the record's field names in display order: numeric
// positions first in order, then names alphabetically.
func (r RecordTypeExp) FieldNames() []string {
	return SortFieldNames(slices.Collect(maps.Keys(r.Fields)))
}

// SortFieldNames orders record field names for display and saving.
func SortFieldNames(names []string) []string {
	sort.Slice(names, func(i, j int) bool {
		ni, ei := strconv.Atoi(names[i])
		nj, ej := strconv.Atoi(names[j])
		if ei == nil && ej == nil {
			return ni < nj
		}
		if (ei == nil) != (ej == nil) {
			return ei == nil
		}
		return names[i] < names[j]
	})
	return names
}

// --- String rendering ---

func (n NumTypeExp) String() string {
	p := n.Unit.Prune()
	if p.IsScalar() {
		return "Number"
	}
	return fmt.Sprintf("Number{%s}", p.String())
}

func (p PrimitiveTypeExp) String() string { return p.Kind.String() }

func (l ListTypeExp) String() string { return fmt.Sprintf("[%s]", l.Elem.String()) }

func (r RecordTypeExp) String() string {
	names := r.FieldNames()
	if r.IsTuple() {
		return fmt.Sprintf("(%s)", strings.Join(gfn.Map(names, func(n string) string { return r.Fields[n].String() }), ", "))
	}
	parts := gfn.Map(names, func(n string) string { return fmt.Sprintf("%s: %s", n, r.Fields[n].String()) })
	if !r.Complete {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (o TypeOperand) String() string {
	if o.IsUnit {
		return fmt.Sprintf("{%s}", o.Unit.String())
	}
	return o.Type.String()
}

func (t TaggedTypeExp) String() string {
	if len(t.Operands) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(gfn.Map(t.Operands, func(o TypeOperand) string { return o.String() }), ", "))
}

func (f FunctionTypeExp) String() string {
	if len(f.Params) == 1 {
		return fmt.Sprintf("%s -> %s", paramString(f.Params[0]), f.Result.String())
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(gfn.Map(f.Params, func(t TypeExp) string { return t.String() }), ", "), f.Result.String())
}

func paramString(t TypeExp) string {
	if _, ok := Prune(t).(FunctionTypeExp); ok {
		return "(" + t.String() + ")"
	}
	return t.String()
}

// --- Mutable variables ---

var varIDs core.CounterIDGen

// MutVar is a type unification slot.  Once bound it stands for its binding;
// Prune follows the chain of bindings.
type MutVar struct {
	id      uint64
	bound   TypeExp
	classes TypeClasses
}

func (*MutVar) typeExp() {}

// NewMutVar creates a fresh unbound variable with the given requirements.
func NewMutVar(classes ...TypeClasses) *MutVar {
	v := &MutVar{id: varIDs.NextID()}
	for _, c := range classes {
		v.classes |= c
	}
	return v
}

func (v *MutVar) ID() uint64             { return v.id }
func (v *MutVar) Classes() TypeClasses   { return v.classes }
func (v *MutVar) Bound() (TypeExp, bool) { return v.bound, v.bound != nil }

func (v *MutVar) String() string {
	if v.bound != nil {
		return v.bound.String()
	}
	return core.Label("_t", v.id)
}

// Prune follows bound variables until reaching a concrete type or an unbound
// variable.
func Prune(t TypeExp) TypeExp {
	for {
		v, ok := t.(*MutVar)
		if !ok || v.bound == nil {
			return t
		}
		t = v.bound
	}
}

// Resolve prunes t and everything inside it, so that the result contains
// no bound variables.  Unbound variables remain.
func Resolve(t TypeExp) TypeExp {
	switch tt := Prune(t).(type) {
	case NumTypeExp:
		return NumTypeExp{Unit: tt.Unit.Prune()}
	case ListTypeExp:
		return ListTypeExp{Elem: Resolve(tt.Elem)}
	case RecordTypeExp:
		fields := make(map[string]TypeExp, len(tt.Fields))
		for k, f := range tt.Fields {
			fields[k] = Resolve(f)
		}
		return RecordTypeExp{Fields: fields, Complete: tt.Complete}
	case TaggedTypeExp:
		return TaggedTypeExp{Name: tt.Name, Def: tt.Def, Operands: gfn.Map(tt.Operands, resolveOperand)}
	case FunctionTypeExp:
		return FunctionTypeExp{Params: gfn.Map(tt.Params, Resolve), Result: Resolve(tt.Result)}
	default:
		return tt
	}
}

func resolveOperand(o TypeOperand) TypeOperand {
	if o.IsUnit {
		return TypeOperand{Unit: o.Unit.Prune(), IsUnit: true}
	}
	return TypeOperand{Type: Resolve(o.Type)}
}

// IsConcrete reports whether the resolved type has no free type or unit
// variables.
func IsConcrete(t TypeExp) bool {
	switch tt := Prune(t).(type) {
	case *MutVar:
		return false
	case NumTypeExp:
		return len(tt.Unit.FreeVars()) == 0
	case ListTypeExp:
		return IsConcrete(tt.Elem)
	case RecordTypeExp:
		if !tt.Complete {
			return false
		}
		for _, f := range tt.Fields {
			if !IsConcrete(f) {
				return false
			}
		}
		return true
	case TaggedTypeExp:
		for _, o := range tt.Operands {
			if o.IsUnit && len(o.Unit.FreeVars()) > 0 || !o.IsUnit && !IsConcrete(o.Type) {
				return false
			}
		}
		return true
	case FunctionTypeExp:
		for _, p := range tt.Params {
			if !IsConcrete(p) {
				return false
			}
		}
		return IsConcrete(tt.Result)
	default:
		return true
	}
}

// occurs reports whether v appears anywhere inside t.
func occurs(v *MutVar, t TypeExp) bool {
	switch tt := Prune(t).(type) {
	case *MutVar:
		return tt == v
	case ListTypeExp:
		return occurs(v, tt.Elem)
	case RecordTypeExp:
		for _, f := range tt.Fields {
			if occurs(v, f) {
				return true
			}
		}
	case TaggedTypeExp:
		for _, o := range tt.Operands {
			if !o.IsUnit && occurs(v, o.Type) {
				return true
			}
		}
	case FunctionTypeExp:
		for _, p := range tt.Params {
			if occurs(v, p) {
				return true
			}
		}
		return occurs(v, tt.Result)
	}
	return false
}
