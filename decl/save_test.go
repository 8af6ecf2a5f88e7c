package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

func sampleTree() (*IfThenElseExpression, *AddSubtractExpression) {
	sum := &AddSubtractExpression{
		Operands: []Expression{NewNumber("1", nil), NewIdent(NamespaceColumn, "Price"), NewNumber("3", NewUnit("m"))},
		Ops:      []AddSubtractOp{OpAdd, OpSubtract},
	}
	cond := &EqualExpression{Operands: []Expression{NewVar("x"), NewString("a")}}
	return &IfThenElseExpression{Condition: cond, Then: sum, Else: NewNumber("0", nil)}, sum
}

func TestSave(t *testing.T) {
	tree, _ := sampleTree()
	assert.Equal(t, `@if (x = "a") @then (1 + column\Price - 3{m}) @else 0 @endif`, Save(tree, ToFile))
	assert.Equal(t, `@if x = "a" @then 1 + Price - 3{m} @else 0 @endif`, Save(tree, ToDisplay))
	assert.Equal(t, Save(tree, ToDisplay), tree.String())
}

func TestSaveBrackets(t *testing.T) {
	inner := &TimesExpression{Operands: []Expression{NewNumber("2", nil), NewVar("x")}}
	outer := NewAddSubtract(NewNumber("1", nil), inner)
	assert.Equal(t, "1 + (2 * x)", Save(outer, ToDisplay))
	assert.Equal(t, "1 + (2 * x)", Save(outer, ToFile))

	call := NewCall(NewIdent(NamespaceFunction, "abs"), outer)
	assert.Equal(t, `function\abs((1 + (2 * x)))`, Save(call, ToFile))
	assert.Equal(t, `abs(1 + (2 * x))`, Save(call, ToDisplay))

	field := &FieldAccessExpression{Target: outer, Field: "a"}
	assert.Equal(t, "(1 + (2 * x))#a", Save(field, ToDisplay))
}

func TestSaveForms(t *testing.T) {
	tests := []struct {
		name     string
		e        Expression
		expected string
	}{
		{"tag", NewIdent(NamespaceTag, `Optional\Is`), `tag\Optional\Is`},
		{"text escapes", NewString("say \"hi\"\n"), `"say \"hi\"\n"`},
		{"temporal", &TemporalLiteral{Kind: types.KindDate, Content: "2020-01-02"}, "date{2020-01-02}"},
		{"unit", &UnitLiteral{Unit: &UnitDivideExpression{Left: NewUnit("m"), Right: &UnitRaiseExpression{Base: NewUnit("s"), Power: 2}}}, "unit{m/s^2}"},
		{"type", &TypeLiteral{Type: &TaggedTypeExpression{Name: "Optional", Args: []TypeArgument{{Type: &NumberTypeExpression{Unit: NewUnit("m")}}}}}, "type{Optional(Number{m})}"},
		{"record", &RecordExpression{Fields: []RecordField{{"a", NewNumber("1", nil)}, {"b", NewBool(true)}}}, "(a: 1, b: true)"},
		{"tuple", &TupleExpression{Items: []Expression{NewNumber("1", nil), &MatchAnythingExpression{}}}, "(1, _)"},
		{"array", &ArrayExpression{Items: []Expression{NewNumber("-1.5", nil)}}, "[-1.5]"},
		{"pattern equal", &EqualExpression{Operands: []Expression{NewVar("x"), NewVar("y")}, LastIsPattern: true}, "x =~ y"},
		{"comparison", &ComparisonExpression{Operands: []Expression{NewNumber("1", nil), NewVar("x"), NewNumber("5", nil)}, Ops: []ComparisonOp{OpLessThan, OpLessThanOrEqual}}, "1 < x <= 5"},
		{"plus minus", &PlusMinusPatternExpression{Left: NewNumber("1", nil), Right: NewNumber("0.5", nil)}, "1 ± 0.5"},
		{"lambda", &LambdaExpression{Params: []Expression{NewVar("x")}, Body: &TimesExpression{Operands: []Expression{NewVar("x"), NewVar("x")}}}, "@function(x) @then (x * x) @endfunction"},
		{"implicit", NewCall(NewIdent(NamespaceFunction, "map"), NewVar("xs"), NewAddSubtract(&ImplicitLambdaArg{}, NewNumber("1", nil))), `function\map(xs, (? + 1))`},
		{"define", &DefineExpression{
			Items: []DefineItem{
				{Type: &HasTypeExpression{Var: NewVar("x"), Type: &TypeLiteral{Type: &NumberTypeExpression{}}}},
				{Definition: &Definition{Pattern: NewVar("x"), Value: NewNumber("5", nil)}},
			},
			Body: NewVar("x"),
		}, "@define x :: type{Number}, x = 5 @then x @enddefine"},
		{"match", &MatchExpression{
			Expression: NewVar("v"),
			Clauses: []MatchClause{
				{Patterns: []MatchPattern{{Pattern: NewVar("n"), Guard: &ComparisonExpression{Operands: []Expression{NewVar("n"), NewNumber("5", nil)}, Ops: []ComparisonOp{OpGreaterThan}}}, {Pattern: NewNumber("0", nil)}}, Outcome: NewBool(true)},
				{Patterns: []MatchPattern{{Pattern: &MatchAnythingExpression{}}}, Outcome: NewBool(false)},
			},
		}, "@match v @case n @given (n > 5) @orcase 0 @then true @case _ @then false @endmatch"},
		{"invalid", &InvalidOperatorExpression{Items: []Expression{NewNumber("1", nil), &InvalidIdentExpression{Text: "+"}, NewNumber("2", nil)}}, `@invalidops(1, @unfinished "+", 2)`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Save(tc.e, ToFile))
		})
	}
}

func TestEqualIgnoresIdentity(t *testing.T) {
	a, _ := sampleTree()
	b, _ := sampleTree()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, Equal(a, b))
	assert.Equal(t, Hash(a), Hash(b))

	b.Else = NewNumber("0.0", nil)
	assert.True(t, Equal(a, b), "numbers compare by value")

	b.Else = NewNumber("1", nil)
	assert.False(t, Equal(a, b))
	assert.NotEqual(t, Hash(a), Hash(b))

	assert.False(t, Equal(NewVar("x"), NewIdent(NamespaceColumn, "x")))
	assert.False(t, Equal(NewNumber("1", NewUnit("m")), NewNumber("1", nil)))
}

func TestReplace(t *testing.T) {
	tree, sum := sampleTree()
	price := sum.Operands[1]

	t.Run("with itself", func(t *testing.T) {
		out := Replace(tree, price.ID(), price)
		assert.Same(t, tree, out)
	})

	t.Run("missing id", func(t *testing.T) {
		out := Replace(tree, NodeID(^uint64(0)), NewVar("nope"))
		assert.Same(t, tree, out)
	})

	t.Run("swaps exactly one occurrence", func(t *testing.T) {
		out := Replace(tree, price.ID(), NewNumber("10", nil))
		assert.Equal(t, `@if (x = "a") @then (1 + 10 - 3{m}) @else 0 @endif`, Save(out, ToFile))
		ite := out.(*IfThenElseExpression)
		assert.Same(t, tree.Condition, ite.Condition, "untouched subtrees are shared")
		assert.Same(t, tree.Else, ite.Else)
		assert.NotSame(t, tree.Then, ite.Then)
		// The input is unchanged.
		assert.Contains(t, Save(tree, ToFile), `column\Price`)
	})

	t.Run("root", func(t *testing.T) {
		repl := NewVar("y")
		assert.Same(t, repl, Replace(tree, tree.ID(), repl))
	})
}

func TestWalkAndFold(t *testing.T) {
	tree, _ := sampleTree()
	count := Fold(tree, 0, func(n int, _ Expression) int { return n + 1 })
	// if, equal, x, "a", sum, 1, Price, 3{m}, 0
	assert.Equal(t, 9, count)

	assert.Len(t, ColumnReferences(tree), 1)
	assert.Equal(t, "x", VariableReferences(tree)[0].Name())
	assert.Empty(t, TableReferences(tree))

	var kinds []string
	Walk(tree, func(e Expression) bool {
		if _, ok := e.(*AddSubtractExpression); ok {
			kinds = append(kinds, "sum")
			return false
		}
		return true
	})
	assert.Equal(t, []string{"sum"}, kinds)

	cond := tree.Condition
	assert.Same(t, cond, Find(tree, cond.ID()))
	assert.Nil(t, Find(tree, NodeID(^uint64(0))))
}

func TestUnitAndTypeSyntax(t *testing.T) {
	mgr := units.NewUnitManager()
	kgm := &UnitDivideExpression{
		Left:  &UnitTimesExpression{Operands: []UnitExpression{NewUnit("kg"), NewUnit("m")}},
		Right: &UnitRaiseExpression{Base: NewUnit("s"), Power: 2},
	}
	assert.Equal(t, "kg*m/s^2", kgm.String())
	u, err := ToUnit(kgm, ManagerUnits(mgr))
	require.NoError(t, err)
	assert.Equal(t, "kg*m/s^2", u.String())

	back, err := UnitSyntaxOf(u)
	require.NoError(t, err)
	assert.Equal(t, "kg*m/s^2", back.String())

	perSecond, err := UnitSyntaxOf(units.Scalar().Divide(mgr.MustLookup("s")))
	require.NoError(t, err)
	assert.Equal(t, "1/s", perSecond.String())

	_, err = ToUnit(NewUnit("furlong"), ManagerUnits(mgr))
	assert.ErrorIs(t, err, units.ErrUnknownUnit)

	_, err = UnitSyntaxOf(units.Fresh())
	assert.Error(t, err)

	env := TypeSyntaxEnv{Types: types.NewTypeManager(), Units: mgr}
	syntax := &RecordTypeExpression{Fields: []RecordTypeField{
		{Name: "speed", Type: &NumberTypeExpression{Unit: &UnitDivideExpression{Left: NewUnit("m"), Right: NewUnit("s")}}},
		{Name: "label", Type: &TaggedTypeExpression{Name: "Optional", Args: []TypeArgument{{Type: &PrimitiveTypeExpression{Kind: types.KindText}}}}},
	}}
	assert.Equal(t, "(speed: Number{m/s}, label: Optional(Text))", syntax.String())
	ty, err := ToType(syntax, env)
	require.NoError(t, err)
	assert.Equal(t, "(label: Optional(Text), speed: Number{m/s})", ty.String())

	again, err := TypeSyntaxOf(ty)
	require.NoError(t, err)
	assert.Equal(t, "(label: Optional(Text), speed: Number{m/s})", again.String())

	_, err = ToType(&TaggedTypeExpression{Name: "Nope"}, env)
	assert.ErrorIs(t, err, types.ErrUnknownType)
	_, err = ToType(&TaggedTypeExpression{Name: "Optional"}, env)
	assert.ErrorIs(t, err, types.ErrTypeArguments)
}
