package runtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/parser"
)

func TestEvaluateValues(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"1 + 2 - 3", "0"},
		{"2 * 3{m}", "6"},
		{"7 / 2", "3.5"},
		{"1 / 3", "0.33333333333333333333333333333333"},
		{"2 ^ 10", "1024"},
		{"2 ^ -2", "0.25"},
		{"4 ^ 0.5", "2"},
		{`"a" ; "b"`, `"ab"`},
		{"1 < 2 <= 2", "true"},
		{"3 > 2 > 2", "false"},
		{"1 = 1 = 1", "true"},
		{"1 <> 1", "false"},
		{"[1, 2]", "[1, 2]"},
		{"(a: 1, b: true)#b", "true"},
		{`(1, "x")#1`, "1"},
		{"Is(5)", "Is(5)"},
		{"None", "None"},
		{"@match Is(3) @case None @then 0 @case Is(x) @then x @endmatch", "3"},
		{`@define (a, b) = (1, "x") @then b @enddefine`, `"x"`},
		{"@define x :: type{Number{m}}, x = 5{m} @then (x * 2) @enddefine", "10"},
		{`"abc" =~ (x ; "c")`, "true"},
		{`@if ("abc" =~ (x ; "c")) @then x @else "" @endif`, `"ab"`},
		{`@if ("a-b" =~ (x ; "-" ; y)) @then (y ; x) @else "" @endif`, `"ba"`},
		{`@if ("a-b" =~ ("b" ; y)) @then y @else "none" @endif`, `"none"`},
		{"(5 =~ (4 ± 1)) | false", "true"},
		{"6 =~ (4 ± 1)", "false"},
		{"[1, 2] =~ [a, 2]", "true"},
		{"@match (1, 1) @case (a, a) @then true @case _ @then false @endmatch", "true"},
		{"@match (1, 2) @case (a, a) @then true @case _ @then false @endmatch", "false"},
		{"@match 3 @case 1 @orcase 2 @then true @case n @given (n > 2) @then false @case _ @then true @endmatch", "false"},
		{"Price * 2", "4"},
		{`column\Sales\Price`, "[2, 3]"},
		{`table\Sales`, `[(Item: "tea", Price: 2), (Item: "cake", Price: 3)]`},
		{"apply((? + 1), 2)", "3"},
		{"apply(@function(x) @then (x + 1) @endfunction, 4)", "5"},
		{"@define f = (? ; \"!\") @then f(\"hi\") @enddefine", `"hi!"`},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			res, err := evalText(t, tc.expr, false)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Value.String())
		})
	}
}

func TestPatternIntersectionEvaluates(t *testing.T) {
	res, err := evalText(t, "@match (1, 2) @case (n, _) @given (n > 5) @then 0 @case (n, _) @then n @endmatch", false)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Value.String())
}

func TestAlternativesBindingDifferentNames(t *testing.T) {
	// a checked tree never reaches an unbound variable: this one is rejected
	// before evaluation
	e, err := parser.ParseExpression("@match 2 @case x @given x > 5 @orcase 2 @then x @endmatch")
	require.NoError(t, err)
	_, err = loader.NewChecker(salesLookup{}, loader.NewDiagnostics()).Check(e, loader.NewTypeState(nil, testUnits, functionLib))
	assert.ErrorIs(t, err, loader.ErrCheckFailed)
	assert.False(t, core.IsInternal(err))

	res, err := evalText(t, "@match (2, 1) @case (x, 1) @orcase (1, x) @then x @case _ @then 0 @endmatch", false)
	require.NoError(t, err)
	assert.Equal(t, "2", res.Value.String())
	res, err = evalText(t, "@match (1, 3) @case (x, 1) @orcase (1, x) @then x @case _ @then 0 @endmatch", false)
	require.NoError(t, err)
	assert.Equal(t, "3", res.Value.String())
}

func TestShortCircuit(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"@if false @then (1 / 0) @else 5 @endif", "5"},
		{"false & ((1 / 0) = 0)", "false"},
		{"true | ((1 / 0) = 0)", "true"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			res, err := evalText(t, tc.expr, false)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Value.String())
		})
	}

	_, err := evalText(t, "@if true @then (1 / 0) @else 5 @endif", false)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestEvaluationErrors(t *testing.T) {
	tests := []struct {
		expr    string
		cause   error
		message string
	}{
		{"1 / 0", ErrDivideByZero, "cannot divide 1 by zero"},
		{"0 ^ -1", ErrInvalidPower, "zero cannot be raised"},
		{"(0 - 4) ^ 0.5", ErrInvalidPower, "cannot raise -4 to the power 0.5"},
		{"@match 3 @case 1 @then true @endmatch", ErrNoMatch, "no case matched 3 in @match 3"},
		{"@define (a, 2) = (1, 3) @then a @enddefine", ErrDefineMismatch, "(1, 3) does not match (a, 2)"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := evalText(t, tc.expr, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.cause)
			assert.Contains(t, err.Error(), tc.message)
			assert.False(t, core.IsInternal(err))
		})
	}
}

func TestEvaluationErrorFrames(t *testing.T) {
	_, err := evalText(t, "@define x = 0 @then (5 / x) @enddefine", false)
	var ee *EvaluationError
	require.True(t, errors.As(err, &ee))
	require.Len(t, ee.Frames, 2)
	assert.Contains(t, ee.Render(), "inside 5 / x where x = 0")
	assert.IsType(t, &decl.DefineExpression{}, ee.Frames[1].Expr)
}

func TestFunctionErrorsAreUserErrors(t *testing.T) {
	_, err := evalText(t, `fail("boom")`, false)
	var ee *EvaluationError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "failed: boom", ee.Message)
}

func TestColumnNeedsRow(t *testing.T) {
	ev := NewEvaluator(checkedText(t, "Price * 2"))
	_, err := ev.Evaluate(NewEvaluateState(nil, false))
	assert.ErrorIs(t, err, ErrNoRow)

	res, err := ev.Evaluate(NewEvaluateState(nil, false).WithRow(1))
	require.NoError(t, err)
	assert.Equal(t, "6", res.Value.String())

	_, err = ev.Evaluate(NewEvaluateState(nil, false).WithRow(5))
	assert.ErrorContains(t, err, "row 5 is out of range")
}

func TestEvaluateColumn(t *testing.T) {
	ev := NewEvaluator(checkedText(t, "Price * 2"))
	values, err := ev.EvaluateColumn(NewEvaluateState(nil, false), 2)
	require.NoError(t, err)
	assert.Equal(t, "[4, 6]", decl.ListValue(values).String())

	_, err = ev.EvaluateColumn(NewEvaluateState(nil, false), 3)
	assert.ErrorContains(t, err, "row 2")
}

func TestConcurrentEvaluation(t *testing.T) {
	ev := NewEvaluator(checkedText(t, `@define (a, b) = (Price, Item) @then (b ; "!") @enddefine`))
	var wg sync.WaitGroup
	results := make([]string, 2)
	for row := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ev.Evaluate(NewEvaluateState(nil, false).WithRow(row))
			if err == nil {
				results[row] = res.Value.String()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{`"tea!"`, `"cake!"`}, results)
}

func TestFunctionValues(t *testing.T) {
	res, err := evalText(t, "? + 1", false)
	require.NoError(t, err)
	fn, err := res.Value.GetFunction()
	require.NoError(t, err)
	v, err := fn.Call([]Value{decl.IntValue(2)})
	require.NoError(t, err)
	assert.Equal(t, "3", v.String())

	res, err = evalText(t, "@function(x) @then (x + 1) @endfunction", false)
	require.NoError(t, err)
	fn, err = res.Value.GetFunction()
	require.NoError(t, err)
	_, err = fn.Call(nil)
	assert.ErrorIs(t, err, ErrWrongArguments)
}

func TestMatchEntryPoint(t *testing.T) {
	defer core.QuietTest(t)()
	e, err := parser.ParseExpression("(a, _)")
	require.NoError(t, err)
	checked, err := loader.NewChecker(nil, nil).CheckPattern(e, loader.NewTypeState(nil, testUnits, functionLib))
	require.NoError(t, err)

	ev := NewEvaluator(checked)
	res, err := ev.Match(decl.TupleVal(decl.IntValue(1), decl.TextValue("x")), NewEvaluateState(nil, false))
	require.NoError(t, err)
	assert.True(t, res.Matched())
	a, ok := res.State.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", a.String())

	_, err = ev.Evaluate(NewEvaluateState(nil, false))
	assert.True(t, core.IsInternal(err))
}

func TestRaise(t *testing.T) {
	p, err := Raise(decimalOf(t, "1.5"), decimalOf(t, "3"))
	require.NoError(t, err)
	assert.Equal(t, "3.375", p.String())

	p, err = Raise(decimalOf(t, "10"), decimalOf(t, "-3"))
	require.NoError(t, err)
	assert.Equal(t, "0.001", p.String())

	_, err = Raise(decimalOf(t, "-8"), decimalOf(t, "0.5"))
	assert.ErrorIs(t, err, ErrInvalidPower)
}

func TestEvaluateColumnInBatches(t *testing.T) {
	ev := NewEvaluator(checkedText(t, `Item ; "!"`))
	var mu sync.Mutex
	batches := map[int]int{}
	values, err := ev.EvaluateColumnInBatches(NewEvaluateState(nil, false), 2, 1, 4, func(batch int, vals []Value) {
		mu.Lock()
		defer mu.Unlock()
		batches[batch] = len(vals)
	})
	require.NoError(t, err)
	assert.Equal(t, `["tea!", "cake!"]`, decl.ListValue(values).String())
	assert.Equal(t, map[int]int{0: 1, 1: 1}, batches)

	_, err = ev.EvaluateColumnInBatches(NewEvaluateState(nil, false), 3, 2, 2, nil)
	assert.ErrorContains(t, err, "row 2")
}
