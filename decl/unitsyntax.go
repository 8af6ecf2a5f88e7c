package decl

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/units"
)

// UnitExpression is the written form of a unit, as it appears in 3{m/s}
// or unit{kg}.  It is resolved against a UnitManager by ToUnit.
type UnitExpression interface {
	String() string
	unitExpr()
}

type SingleUnitExpression struct {
	Name string
}

// UnitIntLiteral only appears as the 1 in 1/s.
type UnitIntLiteral struct {
	Value int
}

type UnitTimesExpression struct {
	Operands []UnitExpression
}

type UnitDivideExpression struct {
	Left, Right UnitExpression
}

type UnitRaiseExpression struct {
	Base  UnitExpression
	Power int
}

func (*SingleUnitExpression) unitExpr() {}
func (*UnitIntLiteral) unitExpr()       {}
func (*UnitTimesExpression) unitExpr()  {}
func (*UnitDivideExpression) unitExpr() {}
func (*UnitRaiseExpression) unitExpr()  {}

func (u *SingleUnitExpression) String() string { return u.Name }
func (u *UnitIntLiteral) String() string       { return strconv.Itoa(u.Value) }

func (u *UnitTimesExpression) String() string {
	return strings.Join(gfn.Map(u.Operands, func(o UnitExpression) string {
		switch o.(type) {
		case *UnitTimesExpression, *UnitDivideExpression:
			return "(" + o.String() + ")"
		}
		return o.String()
	}), "*")
}

func (u *UnitDivideExpression) String() string {
	left, right := u.Left.String(), u.Right.String()
	if _, ok := u.Left.(*UnitDivideExpression); ok {
		left = "(" + left + ")"
	}
	switch u.Right.(type) {
	case *UnitTimesExpression, *UnitDivideExpression:
		right = "(" + right + ")"
	}
	return left + "/" + right
}

func (u *UnitRaiseExpression) String() string {
	base := u.Base.String()
	if _, ok := u.Base.(*SingleUnitExpression); !ok {
		base = "(" + base + ")"
	}
	return fmt.Sprintf("%s^%d", base, u.Power)
}

// UnitResolver maps a unit name to its meaning.
type UnitResolver func(name string) (units.UnitExp, error)

// ManagerUnits resolves names against a UnitManager.
func ManagerUnits(m *units.UnitManager) UnitResolver {
	return func(name string) (units.UnitExp, error) {
		u, err := m.Lookup(name)
		if err != nil {
			return units.UnitExp{}, err
		}
		return units.Of(u), nil
	}
}

// ToUnit evaluates the unit syntax.
func ToUnit(e UnitExpression, resolve UnitResolver) (units.UnitExp, error) {
	switch u := e.(type) {
	case *SingleUnitExpression:
		return resolve(u.Name)
	case *UnitIntLiteral:
		if u.Value != 1 {
			return units.UnitExp{}, fmt.Errorf("only 1 may appear as a number in a unit, not %d", u.Value)
		}
		return units.Scalar(), nil
	case *UnitTimesExpression:
		out := units.Scalar()
		for _, o := range u.Operands {
			v, err := ToUnit(o, resolve)
			if err != nil {
				return units.UnitExp{}, err
			}
			out = out.Times(v)
		}
		return out, nil
	case *UnitDivideExpression:
		l, err := ToUnit(u.Left, resolve)
		if err != nil {
			return units.UnitExp{}, err
		}
		r, err := ToUnit(u.Right, resolve)
		if err != nil {
			return units.UnitExp{}, err
		}
		return l.Divide(r), nil
	case *UnitRaiseExpression:
		b, err := ToUnit(u.Base, resolve)
		if err != nil {
			return units.UnitExp{}, err
		}
		return b.Raise(u.Power), nil
	}
	return units.UnitExp{}, fmt.Errorf("unknown unit syntax %T", e)
}

// UnitSyntaxOf writes a concrete unit back as syntax.  It fails if the unit
// still has free variables.
func UnitSyntaxOf(u units.UnitExp) (UnitExpression, error) {
	p := u.Prune()
	if vars := p.FreeVars(); len(vars) > 0 {
		return nil, fmt.Errorf("unit %s is not fully known", p.String())
	}
	var num, den []UnitExpression
	for _, b := range p.Bases() {
		power := p.Power(b)
		single := &SingleUnitExpression{Name: b.BaseName()}
		if power > 0 {
			num = append(num, raised(single, power))
		} else {
			den = append(den, raised(single, -power))
		}
	}
	top := product(num)
	if top == nil {
		top = &UnitIntLiteral{Value: 1}
	}
	if len(den) == 0 {
		return top, nil
	}
	return &UnitDivideExpression{Left: top, Right: product(den)}, nil
}

func raised(u UnitExpression, power int) UnitExpression {
	if power == 1 {
		return u
	}
	return &UnitRaiseExpression{Base: u, Power: power}
}

func product(us []UnitExpression) UnitExpression {
	switch len(us) {
	case 0:
		return nil
	case 1:
		return us[0]
	}
	return &UnitTimesExpression{Operands: us}
}

func unitSyntaxEqual(a, b UnitExpression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
