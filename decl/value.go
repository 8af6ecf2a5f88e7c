package decl

import (
	"cmp"
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

// ValueKind tags the Go representation held in a Value.
type ValueKind int

const (
	NilKind ValueKind = iota
	NumberKind
	BooleanKind
	TextKind
	TemporalKind
	ListKind
	RecordKind
	TaggedKind
	FunctionKind
	TypeKind
	UnitKind
)

var kindNames = [...]string{"Nil", "Number", "Boolean", "Text", "Temporal", "List", "Record", "Tagged", "Function", "Type", "Unit"}

func (k ValueKind) String() string { return kindNames[k] }

// Value wraps a Go value with its kind.
//
//	Number   decimal.Decimal
//	Boolean  bool
//	Text     string
//	Temporal Temporal
//	List     []Value
//	Record   *RecordValue
//	Tagged   *TaggedValue
//	Function FunctionValue
//	Type     types.TypeExp
//	Unit     units.UnitExp
type Value struct {
	Kind  ValueKind
	Value any // The underlying Go value
}

// RecordValue keeps fields in display order.
type RecordValue struct {
	Names  []string
	Fields map[string]Value
}

// TaggedValue is one alternative of a tagged type.  Inner is nil for tags
// without a payload.
type TaggedValue struct {
	TypeName string
	Index    int
	Tag      string
	Inner    *Value
}

// FunctionValue is a callable value: a standard function instance or a
// lambda closed over its environment.
type FunctionValue interface {
	Call(args []Value) (Value, error)
	Name() string
}

func (r Value) IsNil() bool {
	return r.Kind == NilKind
}

// --- Constructors ---

func NumberValue(d decimal.Decimal) Value { return Value{Kind: NumberKind, Value: d} }
func IntValue(i int64) Value              { return NumberValue(decimal.NewFromInt(i)) }
func BoolValue(b bool) Value              { return Value{Kind: BooleanKind, Value: b} }
func TextValue(s string) Value            { return Value{Kind: TextKind, Value: s} }
func TemporalValue(t Temporal) Value      { return Value{Kind: TemporalKind, Value: t} }
func ListValue(items []Value) Value       { return Value{Kind: ListKind, Value: items} }
func FunctionVal(f FunctionValue) Value   { return Value{Kind: FunctionKind, Value: f} }
func TypeVal(t types.TypeExp) Value       { return Value{Kind: TypeKind, Value: t} }
func UnitVal(u units.UnitExp) Value       { return Value{Kind: UnitKind, Value: u} }

// RecordVal builds a record; names gives the field order.
func RecordVal(names []string, fields map[string]Value) Value {
	return Value{Kind: RecordKind, Value: &RecordValue{Names: names, Fields: fields}}
}

// TupleVal builds a record with fields "1".."n".
func TupleVal(items ...Value) Value {
	names := make([]string, len(items))
	fields := make(map[string]Value, len(items))
	for i, v := range items {
		names[i] = tupleFieldName(i)
		fields[names[i]] = v
	}
	return RecordVal(names, fields)
}

// TaggedVal builds a tagged value.  inner may be nil.
func TaggedVal(typeName string, index int, tag string, inner *Value) Value {
	return Value{Kind: TaggedKind, Value: &TaggedValue{TypeName: typeName, Index: index, Tag: tag, Inner: inner}}
}

// --- Custom getter methods

func (r Value) mismatch(want ValueKind) error {
	return fmt.Errorf("type mismatch: cannot get %s, value is %s", want, r.Kind)
}

func (r Value) GetNumber() (decimal.Decimal, error) {
	if r.Kind != NumberKind {
		return decimal.Zero, r.mismatch(NumberKind)
	}
	val, ok := r.Value.(decimal.Decimal)
	if !ok {
		return decimal.Zero, fmt.Errorf("internal error: Number value is not a decimal (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetBool() (bool, error) {
	if r.Kind != BooleanKind {
		return false, r.mismatch(BooleanKind)
	}
	val, ok := r.Value.(bool)
	if !ok {
		return false, fmt.Errorf("internal error: Boolean value is not Go bool (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetText() (string, error) {
	if r.Kind != TextKind {
		return "", r.mismatch(TextKind)
	}
	val, ok := r.Value.(string)
	if !ok {
		return "", fmt.Errorf("internal error: Text value is not Go string (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetTemporal() (Temporal, error) {
	if r.Kind != TemporalKind {
		return Temporal{}, r.mismatch(TemporalKind)
	}
	val, ok := r.Value.(Temporal)
	if !ok {
		return Temporal{}, fmt.Errorf("internal error: Temporal value is not Temporal (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetList() ([]Value, error) {
	if r.Kind != ListKind {
		return nil, r.mismatch(ListKind)
	}
	if r.Value == nil {
		return nil, nil
	}
	val, ok := r.Value.([]Value)
	if !ok {
		return nil, fmt.Errorf("internal error: List value is not Go []Value (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetRecord() (*RecordValue, error) {
	if r.Kind != RecordKind {
		return nil, r.mismatch(RecordKind)
	}
	val, ok := r.Value.(*RecordValue)
	if !ok {
		return nil, fmt.Errorf("internal error: Record value is not *RecordValue (%T)", r.Value)
	}
	return val, nil
}

// GetField returns one field of a record value.
func (r Value) GetField(name string) (Value, error) {
	rec, err := r.GetRecord()
	if err != nil {
		return Value{}, err
	}
	v, ok := rec.Fields[name]
	if !ok {
		return Value{}, fmt.Errorf("record has no field %s", name)
	}
	return v, nil
}

func (r Value) GetTagged() (*TaggedValue, error) {
	if r.Kind != TaggedKind {
		return nil, r.mismatch(TaggedKind)
	}
	val, ok := r.Value.(*TaggedValue)
	if !ok {
		return nil, fmt.Errorf("internal error: Tagged value is not *TaggedValue (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetFunction() (FunctionValue, error) {
	if r.Kind != FunctionKind {
		return nil, r.mismatch(FunctionKind)
	}
	val, ok := r.Value.(FunctionValue)
	if !ok {
		return nil, fmt.Errorf("internal error: Function value is not FunctionValue (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetType() (types.TypeExp, error) {
	if r.Kind != TypeKind {
		return nil, r.mismatch(TypeKind)
	}
	val, ok := r.Value.(types.TypeExp)
	if !ok {
		return nil, fmt.Errorf("internal error: Type value is not TypeExp (%T)", r.Value)
	}
	return val, nil
}

func (r Value) GetUnit() (units.UnitExp, error) {
	if r.Kind != UnitKind {
		return units.UnitExp{}, r.mismatch(UnitKind)
	}
	val, ok := r.Value.(units.UnitExp)
	if !ok {
		return units.UnitExp{}, fmt.Errorf("internal error: Unit value is not UnitExp (%T)", r.Value)
	}
	return val, nil
}

// --- Comparison ---

// Equals compares two values structurally.  Numbers compare by value, so
// 1.0 equals 1.  Functions are never equal.
func (r Value) Equals(other Value) bool {
	c, err := r.Compare(other)
	return err == nil && c == 0
}

// Compare orders two values of the same kind.  Lists compare
// lexicographically, records field by field in order, tagged values by
// tag position and then payload.
func (r Value) Compare(other Value) (int, error) {
	if r.Kind != other.Kind {
		return 0, fmt.Errorf("cannot compare %s with %s", r.Kind, other.Kind)
	}
	switch r.Kind {
	case NilKind:
		return 0, nil
	case NumberKind:
		return r.Value.(decimal.Decimal).Cmp(other.Value.(decimal.Decimal)), nil
	case BooleanKind:
		a, b := r.Value.(bool), other.Value.(bool)
		switch {
		case a == b:
			return 0, nil
		case !a:
			return -1, nil
		}
		return 1, nil
	case TextKind:
		return cmp.Compare(r.Value.(string), other.Value.(string)), nil
	case TemporalKind:
		return r.Value.(Temporal).Compare(other.Value.(Temporal)), nil
	case ListKind:
		a, _ := r.GetList()
		b, _ := other.GetList()
		for i := 0; i < len(a) && i < len(b); i++ {
			c, err := a[i].Compare(b[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		return cmp.Compare(len(a), len(b)), nil
	case RecordKind:
		a, b := r.Value.(*RecordValue), other.Value.(*RecordValue)
		if len(a.Names) != len(b.Names) {
			return 0, fmt.Errorf("cannot compare records with different fields")
		}
		for _, n := range a.Names {
			bv, ok := b.Fields[n]
			if !ok {
				return 0, fmt.Errorf("cannot compare records with different fields")
			}
			c, err := a.Fields[n].Compare(bv)
			if err != nil || c != 0 {
				return c, err
			}
		}
		return 0, nil
	case TaggedKind:
		a, b := r.Value.(*TaggedValue), other.Value.(*TaggedValue)
		if a.TypeName != b.TypeName {
			return 0, fmt.Errorf("cannot compare %s with %s", a.TypeName, b.TypeName)
		}
		if a.Index != b.Index {
			return cmp.Compare(a.Index, b.Index), nil
		}
		if a.Inner == nil || b.Inner == nil {
			return 0, nil
		}
		return a.Inner.Compare(*b.Inner)
	case TypeKind:
		if types.Resolve(r.Value.(types.TypeExp)).String() == types.Resolve(other.Value.(types.TypeExp)).String() {
			return 0, nil
		}
		return 0, fmt.Errorf("types cannot be ordered")
	case UnitKind:
		if r.Value.(units.UnitExp).Equal(other.Value.(units.UnitExp)) {
			return 0, nil
		}
		return 0, fmt.Errorf("units cannot be ordered")
	}
	return 0, fmt.Errorf("%s values cannot be compared", r.Kind)
}

// String renders the value in literal syntax, so that a value printed by
// an explanation reads like the expression that would produce it.
func (r Value) String() string {
	switch r.Kind {
	case NilKind:
		return "<nil>"
	case NumberKind:
		return r.Value.(decimal.Decimal).String()
	case BooleanKind:
		if r.Value.(bool) {
			return "true"
		}
		return "false"
	case TextKind:
		return QuoteText(r.Value.(string))
	case TemporalKind:
		return r.Value.(Temporal).Literal()
	case ListKind:
		items, _ := r.GetList()
		return "[" + strings.Join(gfn.Map(items, Value.String), ", ") + "]"
	case RecordKind:
		rec := r.Value.(*RecordValue)
		if isTupleNames(rec.Names) {
			return "(" + strings.Join(gfn.Map(rec.Names, func(n string) string { return rec.Fields[n].String() }), ", ") + ")"
		}
		return "(" + strings.Join(gfn.Map(rec.Names, func(n string) string { return n + ": " + rec.Fields[n].String() }), ", ") + ")"
	case TaggedKind:
		t := r.Value.(*TaggedValue)
		if t.Inner == nil {
			return t.Tag
		}
		inner := t.Inner.String()
		if t.Inner.Kind == RecordKind {
			return t.Tag + inner
		}
		return t.Tag + "(" + inner + ")"
	case FunctionKind:
		return "<function " + r.Value.(FunctionValue).Name() + ">"
	case TypeKind:
		return "type{" + types.Resolve(r.Value.(types.TypeExp)).String() + "}"
	case UnitKind:
		return "unit{" + r.Value.(units.UnitExp).String() + "}"
	}
	return fmt.Sprintf("<%s>", r.Kind)
}

func isTupleNames(names []string) bool {
	if len(names) < 2 {
		return false
	}
	for i, n := range names {
		if n != tupleFieldName(i) {
			return false
		}
	}
	return true
}

// QuoteText writes text as a string literal.
func QuoteText(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
