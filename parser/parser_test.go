package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/decl"
)

func mustParse(t *testing.T, text string) Expression {
	t.Helper()
	e, err := ParseExpression(text)
	require.NoError(t, err, "parsing %s", text)
	require.NotNil(t, e)
	return e
}

// Every input here is already in canonical saved form, so saving the parse
// must give back the input exactly.
func TestRoundTripCanonical(t *testing.T) {
	inputs := []string{
		`1 + 2 - 3`,
		`column\Price * 3{m/s^2}`,
		`@if (x = "a") @then (1 + column\Price - 3{m}) @else 0 @endif`,
		`@match v @case (n, _) @given (n > 5) @orcase 0 @then true @case _ @then false @endmatch`,
		`@define x :: type{Number{m}}, x = 5{m} @then (x * 2) @enddefine`,
		`function\map(xs, (? + 1))`,
		`@function(x) @then (x * x) @endfunction`,
		`(a: 1, b: [true, false])`,
		`tag\Optional\Is(5)`,
		`(1, 2)#1`,
		`column\Person#name`,
		`x =~ (y ; "b")`,
		`date{2020-01-02} < datetime{2020-01-02 10:00}`,
		`type{Optional((a: Number{m}, b: [Text]))}`,
		`type{(Number, Text)}`,
		`unit{kg*m/s^2}`,
		`@invalidops(1, @unfinished "+", 2, @unfinished "*", 3)`,
		`1 ± 0.5`,
		`-1.5 + x`,
		`1 - -2`,
		`1 < x <= 5`,
		`a <> b`,
		`a & b & c`,
		`a | b`,
		`"a" ; "b\n"`,
		`2 ^ 3`,
		`6 / 2`,
		`[]`,
		`table\Sales`,
		`function\round decimal(3.14159, 2)`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e := mustParse(t, in)
			saved := decl.Save(e, decl.ToFile)
			assert.Equal(t, in, saved)

			again := mustParse(t, saved)
			assert.True(t, decl.Equal(e, again), "re-parse of %s differs", saved)
			assert.Equal(t, saved, decl.Save(again, decl.ToFile))
		})
	}
}

// Trees built directly must survive save then parse.
func TestRoundTripTrees(t *testing.T) {
	trees := []Expression{
		&decl.IfThenElseExpression{
			Condition: &decl.EqualExpression{Operands: []Expression{decl.NewVar("x"), decl.NewString("a")}},
			Then: &decl.AddSubtractExpression{
				Operands: []Expression{decl.NewNumber("1", nil), decl.NewIdent(decl.NamespaceColumn, "Price"), decl.NewNumber("3", decl.NewUnit("m"))},
				Ops:      []decl.AddSubtractOp{decl.OpAdd, decl.OpSubtract},
			},
			Else: decl.NewNumber("0", nil),
		},
		decl.NewCall(decl.NewIdent(decl.NamespaceFunction, "abs"),
			decl.NewAddSubtract(decl.NewNumber("1", nil), &decl.TimesExpression{Operands: []Expression{decl.NewNumber("2", nil), decl.NewVar("x")}})),
		&decl.MatchExpression{
			Expression: &decl.TupleExpression{Items: []Expression{decl.NewNumber("1", nil), decl.NewNumber("2", nil)}},
			Clauses: []decl.MatchClause{
				{Patterns: []decl.MatchPattern{{
					Pattern: &decl.TupleExpression{Items: []Expression{decl.NewVar("n"), &decl.MatchAnythingExpression{}}},
					Guard:   &decl.ComparisonExpression{Operands: []Expression{decl.NewVar("n"), decl.NewNumber("5", nil)}, Ops: []decl.ComparisonOp{decl.OpGreaterThan}},
				}}, Outcome: decl.NewNumber("0", nil)},
				{Patterns: []decl.MatchPattern{{
					Pattern: &decl.TupleExpression{Items: []Expression{decl.NewVar("n"), &decl.MatchAnythingExpression{}}},
				}}, Outcome: decl.NewVar("n")},
			},
		},
		&decl.RecordExpression{Fields: []decl.RecordField{
			{Name: "total", Value: &decl.DivideExpression{Left: decl.NewVar("a"), Right: decl.NewNumber("2", decl.NewUnit("s"))}},
			{Name: "unit", Value: &decl.UnitLiteral{Unit: &decl.UnitRaiseExpression{Base: decl.NewUnit("s"), Power: -1}}},
		}},
		&decl.HasTypeExpression{Var: decl.NewVar("x"), Type: &decl.TypeLiteral{Type: &decl.ListTypeExpression{Elem: &decl.NumberTypeExpression{}}}},
		&decl.StringConcatExpression{Operands: []Expression{decl.NewString("e\u0301"), decl.NewString("\u00e9"), decl.NewVar("cafe\u0301")}},
	}
	for _, tree := range trees {
		saved := decl.Save(tree, decl.ToFile)
		t.Run(saved, func(t *testing.T) {
			parsed := mustParse(t, saved)
			assert.True(t, decl.Equal(tree, parsed), "parsed %s", decl.Save(parsed, decl.ToFile))
			assert.Equal(t, saved, decl.Save(parsed, decl.ToFile))
		})
	}
}

func TestDisplayFormParses(t *testing.T) {
	e := mustParse(t, "abs(1 + (2 * x))")
	assert.Equal(t, "abs(1 + (2 * x))", decl.Save(e, decl.ToDisplay))
	assert.Equal(t, "abs((1 + (2 * x)))", decl.Save(e, decl.ToFile))

	call, ok := e.(*decl.CallExpression)
	require.True(t, ok)
	assert.Equal(t, decl.NamespaceNone, call.Function.(*decl.IdentExpression).Namespace)
}

func TestMixedOperatorsAreInvalid(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", `@invalidops(1, @unfinished "+", 2, @unfinished "*", 3)`},
		{"1 < 2 > 3", `@invalidops(1, @unfinished "<", 2, @unfinished ">", 3)`},
		{"a =~ b = c", `@invalidops(a, @unfinished "=~", b, @unfinished "=", c)`},
		{"a / b / c", `@invalidops(a, @unfinished "/", b, @unfinished "/", c)`},
		{"1 :: type{Number}", `@invalidops(1, @unfinished "::", type{Number})`},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			e := mustParse(t, tc.input)
			_, ok := e.(*decl.InvalidOperatorExpression)
			require.True(t, ok, "got %T", e)
			assert.Equal(t, tc.expected, decl.Save(e, decl.ToFile))
		})
	}
}

func TestParseShapes(t *testing.T) {
	e := mustParse(t, "x + 10")
	sum, ok := e.(*decl.AddSubtractExpression)
	require.True(t, ok)
	assert.Equal(t, 0, sum.Pos())
	assert.Equal(t, 6, sum.End())
	assert.Equal(t, 4, sum.Operands[1].Pos())

	cmp := mustParse(t, "a >= b > c").(*decl.ComparisonExpression)
	assert.Equal(t, []decl.ComparisonOp{decl.OpGreaterThanOrEqual, decl.OpGreaterThan}, cmp.Ops)

	eq := mustParse(t, "a = b =~ c").(*decl.EqualExpression)
	assert.True(t, eq.LastIsPattern)
	assert.Len(t, eq.Operands, 3)

	def := mustParse(t, "@define (a, b) = (1, 2) @then a @enddefine").(*decl.DefineExpression)
	require.Len(t, def.Items, 1)
	require.NotNil(t, def.Items[0].Definition)
	_, isTuple := def.Items[0].Definition.Pattern.(*decl.TupleExpression)
	assert.True(t, isTuple)

	bracketed := mustParse(t, "((x))")
	assert.IsType(t, &decl.IdentExpression{}, bracketed)

	num := mustParse(t, "3.50{m}").(*decl.NumericLiteral)
	assert.Equal(t, "3.5", num.Value.String())
	assert.Equal(t, "m", num.Unit.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"@if x @then y", "expected @else"},
		{"(1, ", "expected an expression"},
		{"3{m", "expected }"},
		{"1 2", "unexpected NUMBER"},
		{"- 1", "expected a number after '-'"},
		{"@define x @then x @enddefine", "expected a definition or type declaration"},
		{"@match x @endmatch", "expected @case"},
		{"@function() @then 1 @endfunction", "at least one parameter"},
		{`"abc`, "unterminated string"},
		{"unit{m^1.5}", "whole numbers"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseExpression(tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestParseUnitAndType(t *testing.T) {
	units := []string{"m", "kg*m/s^2", "1/s", "m^-2", "(kg*m)^2", "(m/s)/s"}
	for _, in := range units {
		u, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, u.String())
	}
	u, err := ParseUnit("m/s/s")
	require.NoError(t, err)
	assert.Equal(t, "(m/s)/s", u.String())

	typesIn := []string{"Number", "Number{m/s}", "Text", "Boolean", "[Date]", "(a: Number, b: Text)", "(Number, Text)", "Optional(Number{m})", "Measurement({m}, Text)", "Either"}
	for _, in := range typesIn {
		ty, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, ty.String())
	}
	_, err = ParseType("(Number")
	assert.Error(t, err)
}
