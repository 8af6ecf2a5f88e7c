package types

import (
	"errors"
	"fmt"
	"sort"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/units"
)

var (
	ErrUnknownType   = errors.New("unknown type")
	ErrDuplicateType = errors.New("type already declared")
	ErrUnknownTag    = errors.New("unknown tag")
	ErrAmbiguousTag  = errors.New("ambiguous tag")
	ErrTypeArguments = errors.New("wrong number of type arguments")
)

// OptionalTypeName is the built-in tagged type None | Is(t).
const OptionalTypeName = "Optional"

// ParamRef stands for a type parameter inside a tag's inner type.  It only
// appears in definitions; instantiation replaces it.
type ParamRef struct {
	Name string
}

func (ParamRef) typeExp()         {}
func (p ParamRef) String() string { return p.Name }

// TagDefinition is one alternative of a tagged type.  Inner is nil for
// tags without a payload.
type TagDefinition struct {
	Name  string
	Inner TypeExp
}

// TaggedTypeDefinition declares a tagged type with its parameters and tags.
type TaggedTypeDefinition struct {
	Name       string
	TypeParams []string
	UnitParams []string
	Tags       []TagDefinition

	unitVars []*units.UnitVar
}

// NewTaggedTypeDefinition creates a definition without tags.  Unit
// parameters get placeholder variables that tag types can refer to via
// UnitParam.
func NewTaggedTypeDefinition(name string, typeParams, unitParams []string) *TaggedTypeDefinition {
	d := &TaggedTypeDefinition{Name: name, TypeParams: typeParams, UnitParams: unitParams}
	for range unitParams {
		d.unitVars = append(d.unitVars, units.NewUnitVar())
	}
	return d
}

// AddTag appends a tag and returns the definition for chaining.
func (d *TaggedTypeDefinition) AddTag(name string, inner TypeExp) *TaggedTypeDefinition {
	d.Tags = append(d.Tags, TagDefinition{Name: name, Inner: inner})
	return d
}

// TypeParam returns the placeholder for a type parameter.
func (d *TaggedTypeDefinition) TypeParam(name string) (TypeExp, bool) {
	for _, p := range d.TypeParams {
		if p == name {
			return ParamRef{Name: name}, true
		}
	}
	return nil, false
}

// UnitParam returns the placeholder for a unit parameter.
func (d *TaggedTypeDefinition) UnitParam(name string) (units.UnitExp, bool) {
	for i, p := range d.UnitParams {
		if p == name {
			return units.OfVar(d.unitVars[i]), true
		}
	}
	return units.UnitExp{}, false
}

// TagIndex returns the position of the named tag, or -1.
func (d *TaggedTypeDefinition) TagIndex(name string) int {
	for i, t := range d.Tags {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// Arity is the number of operands an application needs.
func (d *TaggedTypeDefinition) Arity() int {
	return len(d.TypeParams) + len(d.UnitParams)
}

// TaggedInstance is a definition applied to operands: the tagged type
// itself and the tags with their inner types substituted.
type TaggedInstance struct {
	Type TaggedTypeExp
	Tags []TagDefinition
}

// Instantiate applies the definition to fresh variables.
func (d *TaggedTypeDefinition) Instantiate() TaggedInstance {
	operands := make([]TypeOperand, 0, d.Arity())
	for range d.TypeParams {
		operands = append(operands, TypeOperand{Type: NewMutVar()})
	}
	for range d.UnitParams {
		operands = append(operands, TypeOperand{Unit: units.Fresh(), IsUnit: true})
	}
	inst, err := d.Apply(operands)
	core.EnsureNoErr(err, "instantiating %s", d.Name)
	return inst
}

// Apply substitutes operands for the parameters.  Type parameters come
// first, then unit parameters.
func (d *TaggedTypeDefinition) Apply(operands []TypeOperand) (TaggedInstance, error) {
	if len(operands) != d.Arity() {
		return TaggedInstance{}, fmt.Errorf("%w: %s takes %d, got %d", ErrTypeArguments, d.Name, d.Arity(), len(operands))
	}
	typeSub := map[string]TypeExp{}
	unitSub := map[*units.UnitVar]units.UnitExp{}
	for i, name := range d.TypeParams {
		if operands[i].IsUnit {
			return TaggedInstance{}, fmt.Errorf("%w: %s expects a type for %s", ErrTypeArguments, d.Name, name)
		}
		typeSub[name] = operands[i].Type
	}
	for i, v := range d.unitVars {
		op := operands[len(d.TypeParams)+i]
		if !op.IsUnit {
			return TaggedInstance{}, fmt.Errorf("%w: %s expects a unit for %s", ErrTypeArguments, d.Name, d.UnitParams[i])
		}
		unitSub[v] = op.Unit
	}
	tags := make([]TagDefinition, len(d.Tags))
	for i, t := range d.Tags {
		tags[i] = TagDefinition{Name: t.Name}
		if t.Inner != nil {
			tags[i].Inner = substitute(t.Inner, typeSub, unitSub)
		}
	}
	return TaggedInstance{
		Type: TaggedTypeExp{Name: d.Name, Operands: operands, Def: d},
		Tags: tags,
	}, nil
}

func substitute(t TypeExp, typeSub map[string]TypeExp, unitSub map[*units.UnitVar]units.UnitExp) TypeExp {
	switch tt := Prune(t).(type) {
	case ParamRef:
		if r, ok := typeSub[tt.Name]; ok {
			return r
		}
		return tt
	case NumTypeExp:
		return NumTypeExp{Unit: tt.Unit.Substitute(unitSub)}
	case ListTypeExp:
		return ListTypeExp{Elem: substitute(tt.Elem, typeSub, unitSub)}
	case RecordTypeExp:
		fields := make(map[string]TypeExp, len(tt.Fields))
		for k, f := range tt.Fields {
			fields[k] = substitute(f, typeSub, unitSub)
		}
		return RecordTypeExp{Fields: fields, Complete: tt.Complete}
	case TaggedTypeExp:
		ops := make([]TypeOperand, len(tt.Operands))
		for i, o := range tt.Operands {
			if o.IsUnit {
				ops[i] = TypeOperand{Unit: o.Unit.Substitute(unitSub), IsUnit: true}
			} else {
				ops[i] = TypeOperand{Type: substitute(o.Type, typeSub, unitSub)}
			}
		}
		return TaggedTypeExp{Name: tt.Name, Operands: ops, Def: tt.Def}
	case FunctionTypeExp:
		params := make([]TypeExp, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = substitute(p, typeSub, unitSub)
		}
		return FunctionTypeExp{Params: params, Result: substitute(tt.Result, typeSub, unitSub)}
	default:
		return tt
	}
}

// TagRef identifies one tag of one definition.
type TagRef struct {
	Def   *TaggedTypeDefinition
	Index int
}

func (r TagRef) Tag() TagDefinition { return r.Def.Tags[r.Index] }

// TypeManager is the registry of tagged types.
type TypeManager struct {
	defs map[string]*TaggedTypeDefinition
}

// NewTypeManager returns a registry holding the built-in Optional type.
func NewTypeManager() *TypeManager {
	m := &TypeManager{defs: map[string]*TaggedTypeDefinition{}}
	opt := NewTaggedTypeDefinition(OptionalTypeName, []string{"t"}, nil)
	opt.AddTag("None", nil).AddTag("Is", ParamRef{Name: "t"})
	m.defs[opt.Name] = opt
	return m
}

// Declare registers a definition.  The Type and Unit names are reserved
// for type-level values.
func (m *TypeManager) Declare(def *TaggedTypeDefinition) error {
	if def.Name == TypeValueName || def.Name == UnitValueName {
		return fmt.Errorf("%w: %s is reserved", ErrDuplicateType, def.Name)
	}
	if _, ok := PrimitiveKindByName(def.Name); ok || def.Name == "Number" {
		return fmt.Errorf("%w: %s is a built-in type", ErrDuplicateType, def.Name)
	}
	if _, ok := m.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, def.Name)
	}
	m.defs[def.Name] = def
	return nil
}

// Lookup finds a definition by name.
func (m *TypeManager) Lookup(name string) (*TaggedTypeDefinition, error) {
	if d, ok := m.defs[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

// FindTag finds a tag by name, optionally restricted to one type.  An
// unqualified tag name must be unique across all declared types.
func (m *TypeManager) FindTag(typeName, tag string) (TagRef, error) {
	if typeName != "" {
		d, err := m.Lookup(typeName)
		if err != nil {
			return TagRef{}, err
		}
		if i := d.TagIndex(tag); i >= 0 {
			return TagRef{Def: d, Index: i}, nil
		}
		return TagRef{}, fmt.Errorf("%w: %s\\%s", ErrUnknownTag, typeName, tag)
	}
	var found []TagRef
	for _, d := range m.All() {
		if i := d.TagIndex(tag); i >= 0 {
			found = append(found, TagRef{Def: d, Index: i})
		}
	}
	switch len(found) {
	case 0:
		return TagRef{}, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	case 1:
		return found[0], nil
	}
	return TagRef{}, fmt.Errorf("%w: %s is declared by %s and %s", ErrAmbiguousTag, tag, found[0].Def.Name, found[1].Def.Name)
}

// All returns the definitions sorted by name.
func (m *TypeManager) All() []*TaggedTypeDefinition {
	out := make([]*TaggedTypeDefinition, 0, len(m.defs))
	for _, d := range m.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Optional returns Optional(t).
func (m *TypeManager) Optional(t TypeExp) TaggedTypeExp {
	inst, err := m.defs[OptionalTypeName].Apply([]TypeOperand{{Type: t}})
	core.EnsureNoErr(err, "applying Optional")
	return inst.Type
}
