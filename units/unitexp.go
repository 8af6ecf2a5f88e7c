package units

import (
	"fmt"
	"sort"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/eponymouse/columnal-sub000/core"
)

// Base is one factor of a UnitExp: either a declared SingleUnit or a UnitVar.
type Base interface {
	BaseName() string
	unitBase()
}

// SingleUnit is a declared base unit such as "m" or "USD".
type SingleUnit struct {
	Name        string
	Description string
}

func (s *SingleUnit) BaseName() string { return s.Name }
func (s *SingleUnit) unitBase()        {}
func (s *SingleUnit) String() string   { return s.Name }

var varIDs core.CounterIDGen

// UnitVar is a unification slot for a unit.  It is bound at most once.
type UnitVar struct {
	id    uint64
	bound *UnitExp
}

// NewUnitVar creates a fresh unbound unit variable.
func NewUnitVar() *UnitVar {
	return &UnitVar{id: varIDs.NextID()}
}

func (v *UnitVar) ID() uint64          { return v.id }
func (v *UnitVar) BaseName() string    { return core.Label("_u", v.id) }
func (v *UnitVar) unitBase()           {}
func (v *UnitVar) String() string      { return v.BaseName() }
func (v *UnitVar) IsBound() bool       { return v.bound != nil }
func (v *UnitVar) Bound() (UnitExp, bool) {
	if v.bound == nil {
		return UnitExp{}, false
	}
	return *v.bound, true
}

// UnitExp is a product of bases raised to non-zero integer powers.  The
// zero value is the scalar unit.  UnitExps are immutable: every operation
// returns a new value.
type UnitExp struct {
	powers map[Base]int
}

// Scalar returns the dimensionless unit.
func Scalar() UnitExp { return UnitExp{} }

// Of returns the unit consisting of a single declared unit.
func Of(u *SingleUnit) UnitExp {
	return UnitExp{powers: map[Base]int{u: 1}}
}

// OfVar returns the unit consisting of a single variable.
func OfVar(v *UnitVar) UnitExp {
	return UnitExp{powers: map[Base]int{v: 1}}
}

// Fresh is a shortcut for OfVar(NewUnitVar()).
func Fresh() UnitExp {
	return OfVar(NewUnitVar())
}

func (u UnitExp) with(extra map[Base]int, scale int) UnitExp {
	out := make(map[Base]int, len(u.powers)+len(extra))
	for b, p := range u.powers {
		out[b] = p
	}
	for b, p := range extra {
		out[b] += p * scale
		if out[b] == 0 {
			delete(out, b)
		}
	}
	return UnitExp{powers: out}
}

// Times multiplies two units, summing the powers of equal bases.
func (u UnitExp) Times(other UnitExp) UnitExp {
	return u.with(other.powers, 1)
}

// Divide divides u by other.
func (u UnitExp) Divide(other UnitExp) UnitExp {
	return u.with(other.powers, -1)
}

// Raise raises the unit to an integer power.
func (u UnitExp) Raise(power int) UnitExp {
	if power == 0 {
		return Scalar()
	}
	out := make(map[Base]int, len(u.powers))
	for b, p := range u.powers {
		out[b] = p * power
	}
	return UnitExp{powers: out}
}

// RootOf takes the n-th root of the unit, which only exists if every power
// is divisible by n.
func (u UnitExp) RootOf(n int) (UnitExp, bool) {
	if n == 0 {
		return UnitExp{}, false
	}
	out := make(map[Base]int, len(u.powers))
	for b, p := range u.powers {
		if p%n != 0 {
			return UnitExp{}, false
		}
		out[b] = p / n
	}
	return UnitExp{powers: out}, true
}

// IsScalar reports whether the unit is dimensionless (without pruning).
func (u UnitExp) IsScalar() bool {
	return len(u.powers) == 0
}

// Prune substitutes every bound variable with its binding, recursively.
func (u UnitExp) Prune() UnitExp {
	out := UnitExp{}
	for b, p := range u.powers {
		if v, ok := b.(*UnitVar); ok && v.bound != nil {
			out = out.Times(v.bound.Prune().Raise(p))
		} else {
			out = out.Times(UnitExp{powers: map[Base]int{b: p}})
		}
	}
	return out
}

// Substitute replaces the given variables, leaving every other base alone.
func (u UnitExp) Substitute(sub map[*UnitVar]UnitExp) UnitExp {
	out := UnitExp{}
	for b, p := range u.Prune().powers {
		if v, ok := b.(*UnitVar); ok {
			if repl, ok := sub[v]; ok {
				out = out.Times(repl.Raise(p))
				continue
			}
		}
		out = out.Times(UnitExp{powers: map[Base]int{b: p}})
	}
	return out
}

// Power returns the power of a base in the (unpruned) unit.
func (u UnitExp) Power(b Base) int {
	return u.powers[b]
}

// Bases returns the bases of the unit in canonical order.
func (u UnitExp) Bases() []Base {
	out := make([]Base, 0, len(u.powers))
	for b := range u.powers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BaseName() < out[j].BaseName() })
	return out
}

// FreeVars returns the unbound variables of the pruned unit, ordered by id.
func (u UnitExp) FreeVars() []*UnitVar {
	var out []*UnitVar
	for b := range u.Prune().powers {
		if v, ok := b.(*UnitVar); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Contains reports whether v occurs in the pruned unit.
func (u UnitExp) Contains(v *UnitVar) bool {
	_, ok := u.Prune().powers[v]
	return ok
}

// Equal compares two units after pruning.
func (u UnitExp) Equal(other UnitExp) bool {
	return u.Divide(other).Prune().IsScalar()
}

// String renders the pruned unit canonically: positive powers first, then a
// single "/" followed by the denominator, eg "kg*m/s^2" or "1/s".
func (u UnitExp) String() string {
	p := u.Prune()
	if p.IsScalar() {
		return "1"
	}
	var num, den []string
	for _, b := range p.Bases() {
		power := p.powers[b]
		if power > 0 {
			num = append(num, renderPower(b.BaseName(), power))
		} else {
			den = append(den, renderPower(b.BaseName(), -power))
		}
	}
	top := "1"
	if len(num) > 0 {
		top = strings.Join(num, "*")
	}
	if len(den) == 0 {
		return top
	}
	bottom := strings.Join(den, "*")
	if len(den) > 1 {
		bottom = "(" + bottom + ")"
	}
	return top + "/" + bottom
}

func renderPower(name string, power int) string {
	if power == 1 {
		return name
	}
	return fmt.Sprintf("%s^%d", name, power)
}

// UnitMismatch is returned when two units cannot be unified.
type UnitMismatch struct {
	A, B UnitExp
}

func (m *UnitMismatch) Error() string {
	return fmt.Sprintf("unit %s does not match %s", m.A.String(), m.B.String())
}

// Unify makes a and b equal by binding unit variables.  The two are divided
// and the remainder must reduce to the scalar unit.  A free variable whose
// power divides every other power in the remainder is bound to the matching
// root of the rest; if no variable qualifies the units do not unify.
func Unify(a, b UnitExp) error {
	ratio := a.Divide(b).Prune()
	if ratio.IsScalar() {
		return nil
	}
	vars := ratio.FreeVars()
	sort.SliceStable(vars, func(i, j int) bool {
		return abs(ratio.powers[vars[i]]) < abs(ratio.powers[vars[j]])
	})
	for _, v := range vars {
		power := ratio.powers[v]
		rest := ratio.Divide(UnitExp{powers: map[Base]int{v: power}})
		// v^power * rest = 1  =>  v = rest^(-1/power)
		root, ok := rest.Raise(-1).RootOf(power)
		if !ok || root.Contains(v) {
			continue
		}
		v.bound = &root
		core.Debug("unit var %s bound to %s", v.BaseName(), root.String())
		return nil
	}
	return &UnitMismatch{A: a.Prune(), B: b.Prune()}
}

// UnifyAll unifies every unit with the first, stopping at the first mismatch.
func UnifyAll(us ...UnitExp) error {
	for i := 1; i < len(us); i++ {
		if err := Unify(us[0], us[i]); err != nil {
			return err
		}
	}
	return nil
}

// Names renders a list of units for messages.
func Names(us []UnitExp) string {
	return strings.Join(gfn.Map(us, func(u UnitExp) string { return u.String() }), ", ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
