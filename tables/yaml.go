package tables

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/parser"
	"github.com/eponymouse/columnal-sub000/types"
)

// A fixture file looks like:
//
//	units:
//	  - name: crate
//	    description: a crate of twelve
//	  - name: GBP
//	types:
//	  - name: Shape
//	    unitParams: [u]
//	    tags:
//	      - name: Circle
//	        inner: Number{u}
//	      - name: Blob
//	tables:
//	  - name: Sales
//	    columns:
//	      - name: Price
//	        type: Number{GBP}
//	        values: [2, "3.10"]
//
// Listing a built-in unit such as GBP is allowed as long as any description
// given agrees with the built-in one.
//
// Cells are read the way "from text to" reads text, so Optional cells are
// written Is(2) or None and exact decimals are best quoted.
type fixture struct {
	Current string            `json:"current,omitempty"`
	Units   []unitFixture     `json:"units,omitempty"`
	Aliases map[string]string `json:"aliases,omitempty"`
	Types   []typeFixture     `json:"types,omitempty"`
	Tables  []tableFixture    `json:"tables"`
}

type unitFixture struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type typeFixture struct {
	Name       string       `json:"name"`
	TypeParams []string     `json:"typeParams,omitempty"`
	UnitParams []string     `json:"unitParams,omitempty"`
	Tags       []tagFixture `json:"tags"`
}

type tagFixture struct {
	Name  string `json:"name"`
	Inner string `json:"inner,omitempty"`
}

type tableFixture struct {
	Name    string          `json:"name"`
	Columns []columnFixture `json:"columns"`
}

type columnFixture struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Values []cell `json:"values"`
}

// cell is a value as written in the fixture: a string's content, or the
// literal text of a number or boolean.
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = cell(s)
		return nil
	}
	*c = cell(data)
	return nil
}

// LoadFile reads a YAML fixture into a new store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	core.Debug("loaded %d tables from %s", len(s.tables), path)
	return s, nil
}

// Load reads a YAML fixture into a new store.  Units are declared first,
// then tagged types, then the tables in order.
func Load(data []byte) (*Store, error) {
	var f fixture
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}
	s := NewStore(nil, nil)
	for _, u := range f.Units {
		if _, err := s.units.EnsureUnit(u.Name, u.Description); err != nil {
			return nil, err
		}
	}
	for alias, target := range f.Aliases {
		if err := s.units.DeclareAlias(alias, target); err != nil {
			return nil, err
		}
	}
	for _, tf := range f.Types {
		if err := s.declareType(tf); err != nil {
			return nil, fmt.Errorf("type %s: %w", tf.Name, err)
		}
	}
	for _, tf := range f.Tables {
		if err := s.loadTable(tf); err != nil {
			return nil, err
		}
	}
	if f.Current != "" {
		if err := s.SetCurrent(f.Current); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) declareType(tf typeFixture) error {
	def := types.NewTaggedTypeDefinition(tf.Name, tf.TypeParams, tf.UnitParams)
	for _, tag := range tf.Tags {
		var inner types.TypeExp
		if tag.Inner != "" {
			t, err := s.parseType(tag.Inner, def)
			if err != nil {
				return fmt.Errorf("tag %s: %w", tag.Name, err)
			}
			inner = t
		}
		def.AddTag(tag.Name, inner)
	}
	return s.types.Declare(def)
}

func (s *Store) loadTable(tf tableFixture) error {
	t, err := s.AddTable(tf.Name)
	if err != nil {
		return err
	}
	for _, cf := range tf.Columns {
		typ, err := s.parseType(cf.Type, nil)
		if err != nil {
			return fmt.Errorf("column %s\\%s: %w", tf.Name, cf.Name, err)
		}
		values := make([]Value, len(cf.Values))
		for i, c := range cf.Values {
			if values[i], err = s.library.ReadValue(typ, string(c)); err != nil {
				return fmt.Errorf("column %s\\%s row %d: %w", tf.Name, cf.Name, i, err)
			}
		}
		if _, err := t.AddColumn(cf.Name, typ, values); err != nil {
			return err
		}
	}
	return nil
}

// parseType reads type syntax against the store's registries.  params is
// the definition being declared, if any, so its parameters can be named.
func (s *Store) parseType(text string, params *types.TaggedTypeDefinition) (types.TypeExp, error) {
	syn, err := parser.ParseType(text)
	if err != nil {
		return nil, err
	}
	return decl.ToType(syn, decl.TypeSyntaxEnv{Types: s.types, Units: s.units, Params: params})
}
