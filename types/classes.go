package types

import (
	"fmt"
	"strings"
)

// TypeClasses is a set of requirements a type variable places on whatever
// it is eventually bound to.
type TypeClasses uint8

const (
	Equatable TypeClasses = 1 << iota
	Comparable
	Readable
	Showable

	NoClasses TypeClasses = 0
)

var classNames = []struct {
	c    TypeClasses
	name string
}{
	{Equatable, "Equatable"},
	{Comparable, "Comparable"},
	{Readable, "Readable"},
	{Showable, "Showable"},
}

func (c TypeClasses) Has(other TypeClasses) bool { return c&other == other }

func (c TypeClasses) String() string {
	var names []string
	for _, cn := range classNames {
		if c&cn.c != 0 {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// RequireClasses checks that t satisfies the given classes.  Unbound
// variables inside t accumulate the requirement instead.
func RequireClasses(t TypeExp, classes TypeClasses) *TypeError {
	if classes == NoClasses {
		return nil
	}
	switch tt := Prune(t).(type) {
	case *MutVar:
		tt.classes |= classes
		return nil
	case NumTypeExp, PrimitiveTypeExp:
		return nil
	case ListTypeExp:
		return RequireClasses(tt.Elem, classes)
	case RecordTypeExp:
		for _, name := range tt.FieldNames() {
			if err := RequireClasses(tt.Fields[name], classes); err != nil {
				return err
			}
		}
		return nil
	case TaggedTypeExp:
		if tt.Name == TypeValueName || tt.Name == UnitValueName {
			return classError(tt, classes)
		}
		for _, o := range tt.Operands {
			if o.IsUnit {
				continue
			}
			if err := RequireClasses(o.Type, classes); err != nil {
				return err
			}
		}
		return nil
	case FunctionTypeExp:
		return classError(tt, classes)
	}
	return classError(t, classes)
}

func classError(t TypeExp, classes TypeClasses) *TypeError {
	return &TypeError{
		Message: fmt.Sprintf("type %s is not %s", t.String(), classes.String()),
		Types:   []TypeExp{t},
	}
}
