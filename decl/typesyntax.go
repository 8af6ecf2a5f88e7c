package decl

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// TypeExpression is the written form of a type, as inside type{..}.
type TypeExpression interface {
	String() string
	typeExpr()
}

// NumberTypeExpression is Number or Number{unit}.
type NumberTypeExpression struct {
	Unit UnitExpression
}

type PrimitiveTypeExpression struct {
	Kind types.PrimitiveKind
}

type ListTypeExpression struct {
	Elem TypeExpression
}

type RecordTypeField struct {
	Name string
	Type TypeExpression
}

type RecordTypeExpression struct {
	Fields []RecordTypeField
}

type TupleTypeExpression struct {
	Items []TypeExpression
}

// TypeArgument is a type or, when Unit is set, a unit written as {u}.
type TypeArgument struct {
	Type TypeExpression
	Unit UnitExpression
}

// TaggedTypeExpression applies a tagged type to arguments.  Without
// arguments it can also name a type parameter.
type TaggedTypeExpression struct {
	Name string
	Args []TypeArgument
}

func (*NumberTypeExpression) typeExpr()    {}
func (*PrimitiveTypeExpression) typeExpr() {}
func (*ListTypeExpression) typeExpr()      {}
func (*RecordTypeExpression) typeExpr()    {}
func (*TupleTypeExpression) typeExpr()     {}
func (*TaggedTypeExpression) typeExpr()    {}

func (t *NumberTypeExpression) String() string {
	if t.Unit == nil {
		return "Number"
	}
	return "Number{" + t.Unit.String() + "}"
}

func (t *PrimitiveTypeExpression) String() string { return t.Kind.String() }
func (t *ListTypeExpression) String() string      { return "[" + t.Elem.String() + "]" }

func (t *RecordTypeExpression) String() string {
	return "(" + strings.Join(gfn.Map(t.Fields, func(f RecordTypeField) string {
		return f.Name + ": " + f.Type.String()
	}), ", ") + ")"
}

func (t *TupleTypeExpression) String() string {
	return "(" + strings.Join(gfn.Map(t.Items, func(i TypeExpression) string { return i.String() }), ", ") + ")"
}

func (a TypeArgument) String() string {
	if a.Unit != nil {
		return "{" + a.Unit.String() + "}"
	}
	return a.Type.String()
}

func (t *TaggedTypeExpression) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "(" + strings.Join(gfn.Map(t.Args, TypeArgument.String), ", ") + ")"
}

// TypeSyntaxEnv holds what is needed to turn type syntax into a TypeExp.
// Params is set while converting the tags of a definition so that its
// parameters can be referred to.
type TypeSyntaxEnv struct {
	Types  *types.TypeManager
	Units  *units.UnitManager
	Params *types.TaggedTypeDefinition
}

func (env TypeSyntaxEnv) resolveUnit(name string) (units.UnitExp, error) {
	if env.Params != nil {
		if u, ok := env.Params.UnitParam(name); ok {
			return u, nil
		}
	}
	return ManagerUnits(env.Units)(name)
}

// ToType evaluates the type syntax.
func ToType(e TypeExpression, env TypeSyntaxEnv) (types.TypeExp, error) {
	switch t := e.(type) {
	case *NumberTypeExpression:
		if t.Unit == nil {
			return types.PlainNumber(), nil
		}
		u, err := ToUnit(t.Unit, env.resolveUnit)
		if err != nil {
			return nil, err
		}
		return types.Number(u), nil
	case *PrimitiveTypeExpression:
		return types.Primitive(t.Kind), nil
	case *ListTypeExpression:
		elem, err := ToType(t.Elem, env)
		if err != nil {
			return nil, err
		}
		return types.List(elem), nil
	case *RecordTypeExpression:
		fields := make(map[string]types.TypeExp, len(t.Fields))
		for _, f := range t.Fields {
			if _, dup := fields[f.Name]; dup {
				return nil, fmt.Errorf("duplicate field %s", f.Name)
			}
			ft, err := ToType(f.Type, env)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = ft
		}
		return types.Record(fields), nil
	case *TupleTypeExpression:
		items := make([]types.TypeExp, len(t.Items))
		for i, it := range t.Items {
			var err error
			if items[i], err = ToType(it, env); err != nil {
				return nil, err
			}
		}
		return types.Tuple(items...), nil
	case *TaggedTypeExpression:
		if env.Params != nil && len(t.Args) == 0 {
			if p, ok := env.Params.TypeParam(t.Name); ok {
				return p, nil
			}
		}
		if env.Params != nil && t.Name == env.Params.Name {
			return nil, fmt.Errorf("type %s cannot refer to itself", t.Name)
		}
		def, err := env.Types.Lookup(t.Name)
		if err != nil {
			return nil, err
		}
		operands := make([]types.TypeOperand, len(t.Args))
		for i, a := range t.Args {
			if a.Unit != nil {
				u, err := ToUnit(a.Unit, env.resolveUnit)
				if err != nil {
					return nil, err
				}
				operands[i] = types.UnitOperandOf(u)
				continue
			}
			at, err := ToType(a.Type, env)
			if err != nil {
				return nil, err
			}
			operands[i] = types.TypeOperandOf(at)
		}
		inst, err := def.Apply(operands)
		if err != nil {
			return nil, err
		}
		return inst.Type, nil
	}
	return nil, fmt.Errorf("unknown type syntax %T", e)
}

// TypeSyntaxOf writes a concrete type back as syntax.
func TypeSyntaxOf(t types.TypeExp) (TypeExpression, error) {
	switch tt := types.Prune(t).(type) {
	case types.NumTypeExp:
		if tt.Unit.Prune().IsScalar() {
			return &NumberTypeExpression{}, nil
		}
		u, err := UnitSyntaxOf(tt.Unit)
		if err != nil {
			return nil, err
		}
		return &NumberTypeExpression{Unit: u}, nil
	case types.PrimitiveTypeExp:
		return &PrimitiveTypeExpression{Kind: tt.Kind}, nil
	case types.ListTypeExp:
		elem, err := TypeSyntaxOf(tt.Elem)
		if err != nil {
			return nil, err
		}
		return &ListTypeExpression{Elem: elem}, nil
	case types.RecordTypeExp:
		if !tt.Complete {
			return nil, fmt.Errorf("record type %s is not fully known", tt.String())
		}
		names := tt.FieldNames()
		if tt.IsTuple() {
			items := make([]TypeExpression, len(names))
			for i, n := range names {
				var err error
				if items[i], err = TypeSyntaxOf(tt.Fields[n]); err != nil {
					return nil, err
				}
			}
			return &TupleTypeExpression{Items: items}, nil
		}
		out := &RecordTypeExpression{}
		for _, n := range names {
			ft, err := TypeSyntaxOf(tt.Fields[n])
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, RecordTypeField{Name: n, Type: ft})
		}
		return out, nil
	case types.TaggedTypeExp:
		out := &TaggedTypeExpression{Name: tt.Name}
		for _, o := range tt.Operands {
			if o.IsUnit {
				u, err := UnitSyntaxOf(o.Unit)
				if err != nil {
					return nil, err
				}
				out.Args = append(out.Args, TypeArgument{Unit: u})
				continue
			}
			at, err := TypeSyntaxOf(o.Type)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, TypeArgument{Type: at})
		}
		return out, nil
	}
	return nil, fmt.Errorf("type %s cannot be written down", t.String())
}

func typeSyntaxEqual(a, b TypeExpression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// tupleFieldName is the record field name of the i'th tuple item.
func tupleFieldName(i int) string { return strconv.Itoa(i + 1) }
