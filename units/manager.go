package units

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
)

var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrDuplicateUnit = errors.New("unit already declared")
	ErrInvalidName   = errors.New("invalid unit name")
)

// UnitManager is the registry of declared base units and aliases.
type UnitManager struct {
	units   map[string]*SingleUnit
	aliases map[string]string
}

var builtInUnits = []struct{ name, description string }{
	{"m", "metre"},
	{"km", "kilometre"},
	{"cm", "centimetre"},
	{"s", "second"},
	{"min", "minute"},
	{"h", "hour"},
	{"day", "day"},
	{"g", "gram"},
	{"kg", "kilogram"},
	{"l", "litre"},
	{"K", "kelvin"},
	{"A", "ampere"},
	{"mol", "mole"},
	{"cd", "candela"},
	{"USD", "US dollar"},
	{"GBP", "British pound"},
	{"EUR", "Euro"},
}

var builtInAliases = map[string]string{
	"metre":  "m",
	"meter":  "m",
	"second": "s",
	"hour":   "h",
	"litre":  "l",
	"liter":  "l",
}

// NewUnitManager returns a registry preloaded with the built-in units.
func NewUnitManager() *UnitManager {
	m := &UnitManager{
		units:   map[string]*SingleUnit{},
		aliases: map[string]string{},
	}
	for _, u := range builtInUnits {
		m.units[u.name] = &SingleUnit{Name: u.name, Description: u.description}
	}
	for alias, target := range builtInAliases {
		m.aliases[alias] = target
	}
	return m
}

// ValidUnitName reports whether name can be used as a unit name.
func ValidUnitName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if unicode.IsLetter(r) || r == '_' || r == '$' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// DeclareUnit adds a new base unit.
func (m *UnitManager) DeclareUnit(name, description string) (*SingleUnit, error) {
	if !ValidUnitName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := m.units[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateUnit, name)
	}
	if _, ok := m.aliases[name]; ok {
		return nil, fmt.Errorf("%w: %s (alias)", ErrDuplicateUnit, name)
	}
	u := &SingleUnit{Name: name, Description: description}
	m.units[name] = u
	return u, nil
}

// EnsureUnit declares a base unit unless one with the same name already
// exists.  An existing unit is accepted when description is empty or
// matches its own.
func (m *UnitManager) EnsureUnit(name, description string) (*SingleUnit, error) {
	if u, ok := m.units[name]; ok {
		if description != "" && description != u.Description {
			return nil, fmt.Errorf("%w: %s is %q, not %q", ErrDuplicateUnit, name, u.Description, description)
		}
		return u, nil
	}
	return m.DeclareUnit(name, description)
}

// DeclareAlias makes alias refer to the already declared unit target.
func (m *UnitManager) DeclareAlias(alias, target string) error {
	if !ValidUnitName(alias) {
		return fmt.Errorf("%w: %q", ErrInvalidName, alias)
	}
	if _, ok := m.units[alias]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, alias)
	}
	if _, err := m.Lookup(target); err != nil {
		return err
	}
	m.aliases[alias] = m.canonicalName(target)
	return nil
}

func (m *UnitManager) canonicalName(name string) string {
	if target, ok := m.aliases[name]; ok {
		return target
	}
	return name
}

// Lookup finds a unit by name, following aliases.
func (m *UnitManager) Lookup(name string) (*SingleUnit, error) {
	if u, ok := m.units[m.canonicalName(name)]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
}

// IsAlias reports whether name is an alias rather than a declared unit.
func (m *UnitManager) IsAlias(name string) bool {
	_, ok := m.aliases[name]
	return ok
}

// All returns the declared units sorted by name.
func (m *UnitManager) All() []*SingleUnit {
	out := make([]*SingleUnit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MustLookup is Lookup for units that are known to exist, such as the
// built-ins used by tests and the function library.
func (m *UnitManager) MustLookup(name string) UnitExp {
	u, err := m.Lookup(name)
	if err != nil {
		panic(err)
	}
	return Of(u)
}
