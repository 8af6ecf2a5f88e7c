package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
)

func TestCheckTypes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 - 3", "Number"},
		{"3{m} + 4{m}", "Number{m}"},
		{"6{m} / 2{s}", "Number{m/s}"},
		{"2{m} ^ 2", "Number{m^2}"},
		{"4{m^2} ^ (1 / 2)", "Number{m}"},
		{"2 ^ 0.5", "Number"},
		{`"a" ; "b"`, "Text"},
		{"1 < 2 <= 3", "Boolean"},
		{"1 = 1 = 1", "Boolean"},
		{"1 <> 2", "Boolean"},
		{"true & false & true", "Boolean"},
		{"false | true", "Boolean"},
		{"[1, 2, 3]", "[Number]"},
		{"(a: 1, b: true)", "(a: Number, b: Boolean)"},
		{`(1, "x")#1`, "Number"},
		{"@if true @then 1{m} @else 2{m} @endif", "Number{m}"},
		{"Is(5)", "Optional(Number)"},
		{`tag\Optional\Is("a")`, "Optional(Text)"},
		{"@define x = 5 @then (x + 1) @enddefine", "Number"},
		{"@define (a, b) = (1, \"x\") @then b @enddefine", "Text"},
		{"@define x :: type{Number{m}}, x = 5{m} @then (x * 2) @enddefine", "Number{m}"},
		{"@function(x) @then (x + 1) @endfunction", "Number -> Number"},
		{"? + 1", "Number -> Number"},
		{"?#name", ""},
		{"abs(3{m})", "Number{m}"},
		{"count([true])", "Number"},
		{`column\Price * 2`, "Number{USD}"},
		{"Price", "Number{USD}"},
		{`column\Rates\Rate`, "[Number]"},
		{`table\Sales`, "[(Item: Text, Price: Number{USD})]"},
		{`"abc" =~ (x ; "c")`, "Boolean"},
		{"@match 3 @case 1 @orcase 2 @then true @case n @given (n > 2) @then false @case _ @then true @endmatch", "Boolean"},
		{"@match (1, 2) @case (n, _) @given (n > 5) @then 0 @case (n, _) @then n @endmatch", "Number"},
		{"@if (Is(3) =~ Is(n)) @then n @else 0 @endif", "Number"},
		{"(5 =~ (4 ± 1)) | false", "Boolean"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			checked, d, err := checkText(t, tc.input)
			require.NoError(t, err, "errors: %v", errorMessages(d))
			require.NotNil(t, checked)
			if tc.expected != "" {
				assert.Equal(t, tc.expected, checked.Type.String())
			}
		})
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"foo + 1", "unknown name: foo"},
		{`column\Nope`, "no such column: Nope"},
		{`table\Nope`, "no such table: Nope"},
		{`function\nope(1)`, "no such function: nope"},
		{"?", "? can only be used directly"},
		{"1 + true", "type mismatch"},
		{"1{m} ^ 0.5", "can only be raised to a whole number"},
		{"@if 1 @then 2 @else 3 @endif", "condition of @if must be a Boolean"},
		{`@if true @then 1 @else "a" @endif`, "@then and @else have different types"},
		{"(a: 1, a: 2)", "duplicate field name: a"},
		{"(a: 1)#b", "has no field b"},
		{"abs(1, 2)", "abs expects 1 argument(s) but was given 2"},
		{`abs("x")`, "argument 1 of abs"},
		{"None(1)", "tag None has no value"},
		{"@match Is(1) @case Is @then 1 @endmatch", "tag Is has a value"},
		{"1 ± 2", "± can only be used in a pattern"},
		{`@match "a" @case 1 @then true @endmatch`, "does not fit the value being matched"},
		{"@match 1 @case _ @then 1 @case _ @then true @endmatch", "outcome has type Boolean"},
		{"@define x :: type{Number}, y = 1 @then y @enddefine", "type given for x but x is never defined"},
		{"@define x = 1, x :: type{Number} @then x @enddefine", "the type of x must be declared before x is defined"},
		{"@define x :: type{Number}, x :: type{Text}, x = 1 @then x @enddefine", "duplicate type declaration for x"},
		{`@define x :: type{Text}, x = 1 @then x @enddefine`, "cannot define x as 1"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			checked, d, err := checkText(t, tc.input)
			require.ErrorIs(t, err, ErrCheckFailed)
			assert.Nil(t, checked)
			require.True(t, d.HasErrors())
			assert.Contains(t, d.Err().Error(), tc.msg)
		})
	}
}

func TestTypeDeclarationOutsideDefine(t *testing.T) {
	defer core.QuietTest(t)()
	e := &decl.HasTypeExpression{Var: decl.NewVar("x"), Type: &decl.TypeLiteral{Type: &decl.NumberTypeExpression{}}}
	d := NewDiagnostics()
	_, err := NewChecker(nil, d).Check(e, newTestState())
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Equal(t, []string{"type declarations are only allowed in @define"}, errorMessages(d))
}

func TestUnitMismatchOffersFix(t *testing.T) {
	e := mustParse(t, "3{m} + 3")
	d := NewDiagnostics()
	_, err := NewChecker(nil, d).Check(e, newTestState())
	require.ErrorIs(t, err, ErrCheckFailed)
	require.Len(t, d.Errors, 1)

	titles := fixTitles(d)
	require.NotEmpty(t, titles)
	assert.Contains(t, titles, "Change 3 to 3{m}")
	assert.Contains(t, titles, "Remove the unit from 3{m}")

	var change QuickFix
	for _, f := range d.AllFixes() {
		if f.Title == "Change 3 to 3{m}" {
			change = f
		}
	}
	fixed, err := change.Apply(e)
	require.NoError(t, err)
	assert.Equal(t, "3{m} + 3{m}", decl.Save(fixed, decl.ToDisplay))

	checked, err := NewChecker(nil, nil).Check(fixed, newTestState())
	require.NoError(t, err)
	assert.Equal(t, "Number{m}", checked.Type.String())
}

func TestDefineLiteralOffersUnit(t *testing.T) {
	_, d, err := checkText(t, "@define x :: type{Number{m}}, x = 5 @then x @enddefine")
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, fixTitles(d), "Change 5 to 5{m}")
}

func TestTextAdditionOffersConcat(t *testing.T) {
	e := mustParse(t, `"a" + "b"`)
	d := NewDiagnostics()
	_, err := NewChecker(nil, d).Check(e, newTestState())
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Len(t, d.Errors, 2)

	var concat []QuickFix
	for _, f := range d.AllFixes() {
		if f.Title == "Use ; to join text" {
			concat = append(concat, f)
		}
	}
	require.Len(t, concat, 1)
	fixed, err := concat[0].Apply(e)
	require.NoError(t, err)
	assert.Equal(t, `"a" ; "b"`, decl.Save(fixed, decl.ToDisplay))
}

func TestMixedOperatorsOfferBrackets(t *testing.T) {
	e := mustParse(t, "1 + 2 * 3")
	d := NewDiagnostics()
	_, err := NewChecker(nil, d).Check(e, newTestState())
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, d.Err().Error(), "cannot be mixed without brackets")

	fixes := d.FixesFor(e.ID())
	require.Len(t, fixes, 1)
	fixed, err := fixes[0].Apply(e)
	require.NoError(t, err)
	assert.Equal(t, "1 + (2 * 3)", decl.Save(fixed, decl.ToDisplay))
}

func TestTextPatternRejectsAdjacentVariables(t *testing.T) {
	for _, input := range []string{
		`"abc" =~ (x ; y)`,
		`"abc" =~ (_ ; y)`,
		`"abc" =~ ("a" ; x ; _)`,
	} {
		t.Run(input, func(t *testing.T) {
			_, d, err := checkText(t, input)
			require.ErrorIs(t, err, ErrCheckFailed)
			assert.Contains(t, errorMessages(d), "cannot match two variables/wildcards next to each other in a text pattern")
		})
	}

	_, _, err := checkText(t, `"abc" =~ (x ; "b" ; y)`)
	assert.NoError(t, err)
}

func TestPatternIntersection(t *testing.T) {
	// The outcomes disagree: the first clause gives a Boolean, the second the
	// number bound to n.
	_, d, err := checkText(t, "@match (1, 2) @case (n, _) @given (n > 5) @then true @case (n, _) @then n @endmatch")
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, d.Err().Error(), "outcome has type Number but earlier outcomes have type Boolean")

	// Alternatives may bind the same name with different types as long as
	// it is not used.
	checked, _, err := checkText(t, `@match (1, "a") @case (n, _) @orcase (_, n) @then 0 @endmatch`)
	require.NoError(t, err)
	assert.Equal(t, "Number", checked.Type.String())

	_, d, err = checkText(t, `@match (1, "a") @case (n, _) @orcase (_, n) @then n @endmatch`)
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, d.Err().Error(), "n has differing types in different branches")

	checked, _, err = checkText(t, `@match (1, 2) @case (n, _) @orcase (_, n) @then n @endmatch`)
	require.NoError(t, err)
	assert.Equal(t, "Number", checked.Type.String())
}

func TestVariableBoundInSomeAlternatives(t *testing.T) {
	_, d, err := checkText(t, "@match 2 @case x @given x > 5 @orcase 2 @then x @endmatch")
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, d.Err().Error(), "x is not bound in every alternative of this @case")

	// unused, or bound by every alternative, is fine
	_, _, err = checkText(t, "@match 2 @case x @given x > 5 @orcase 2 @then 0 @endmatch")
	require.NoError(t, err)
	checked, _, err := checkText(t, "@match (2, 3) @case (x, 1) @orcase (1, x) @then x @case _ @then 0 @endmatch")
	require.NoError(t, err)
	assert.Equal(t, "Number", checked.Type.String())

	// the next clause starts afresh
	_, d, err = checkText(t, "@match 2 @case x @given x > 5 @orcase 2 @then 0 @case _ @then x @endmatch")
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, d.Err().Error(), "unknown name: x")
}

func TestRepeatedPatternVariableIsEquality(t *testing.T) {
	checked, _, err := checkText(t, "@match (1, 1) @case (n, n) @then true @case _ @then false @endmatch")
	require.NoError(t, err)

	tuple := checked.Expr.(*decl.MatchExpression).Clauses[0].Patterns[0].Pattern.(*decl.TupleExpression)
	first, second := tuple.Items[0].(*decl.IdentExpression), tuple.Items[1].(*decl.IdentExpression)
	assert.True(t, checked.Annotations.IsDeclaration(first.ID()))
	assert.False(t, checked.Annotations.IsDeclaration(second.ID()))
}

func TestImplicitLambdaAnnotations(t *testing.T) {
	checked, _, err := checkText(t, "count([1, 2]) + ?")
	require.NoError(t, err)
	assert.Equal(t, "Number -> Number", checked.Type.String())
	assert.True(t, checked.Annotations.IsImplicitLambda(checked.Expr.ID()))

	checked, _, err = checkText(t, "abs(?)")
	require.NoError(t, err)
	assert.True(t, checked.Annotations.IsImplicitLambda(checked.Expr.ID()))
}

func TestResolutionOrder(t *testing.T) {
	checked, _, err := checkText(t, "@define Price = 1 @then Price @enddefine")
	require.NoError(t, err)
	body := checked.Expr.(*decl.DefineExpression).Body
	assert.Equal(t, ResolvedVariable, checked.Annotations.Resolution(body.ID()).Kind)

	checked, _, err = checkText(t, "Price + 1{USD}")
	require.NoError(t, err)
	price := checked.Expr.(*decl.AddSubtractExpression).Operands[0]
	res := checked.Annotations.Resolution(price.ID())
	require.Equal(t, ResolvedColumn, res.Kind)
	assert.Equal(t, "Sales", res.Column.Table)

	checked, _, err = checkText(t, "abs")
	require.NoError(t, err)
	assert.Equal(t, ResolvedFunction, checked.Annotations.Resolution(checked.Expr.ID()).Kind)
	assert.NotNil(t, checked.Annotations.Function(checked.Expr.ID()))
}

func TestWholeColumnInformation(t *testing.T) {
	_, d, err := checkText(t, `column\Rates\Rate`)
	require.NoError(t, err)
	require.Len(t, d.Information, 1)
	assert.Contains(t, d.Information[0].Msg, "whole column")
}

func TestCheckPatternBindsVariables(t *testing.T) {
	defer core.QuietTest(t)()
	checked, err := NewChecker(nil, nil).CheckPattern(mustParse(t, "(a, Is(b))"), newTestState())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, checked.State.Variables())
	assert.Equal(t, KindPattern, checked.Kind)
}

func TestRecordTypeKeepsFirst(t *testing.T) {
	d := NewDiagnostics()
	lit := decl.NewNumber("1", nil)
	_, err := NewChecker(nil, d).Check(lit, newTestState())
	require.NoError(t, err)
	recorded, ok := d.TypeOf(lit.ID())
	require.True(t, ok)
	assert.Equal(t, "Number", recorded.String())
}

func TestMaxErrorsStopsTheCheck(t *testing.T) {
	defer core.QuietTest(t)()
	d := NewDiagnostics()
	d.MaxErrors = 1
	_, err := NewChecker(nil, d).Check(mustParse(t, "a + b + c"), newTestState())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyErrors)
}
