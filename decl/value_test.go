package decl

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/types"
	"github.com/eponymouse/columnal-sub000/units"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "3.5", NumberValue(decimal.RequireFromString("3.50")).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, `"a\"b"`, TextValue(`a"b`).String())
	assert.Equal(t, "[1, 2]", ListValue([]Value{IntValue(1), IntValue(2)}).String())
	assert.Equal(t, "(1, \"x\")", TupleVal(IntValue(1), TextValue("x")).String())
	assert.Equal(t, "(b: 1, a: 2)", RecordVal([]string{"b", "a"}, map[string]Value{"a": IntValue(2), "b": IntValue(1)}).String())
	inner := IntValue(5)
	assert.Equal(t, "Is(5)", TaggedVal("Optional", 1, "Is", &inner).String())
	assert.Equal(t, "None", TaggedVal("Optional", 0, "None", nil).String())
	assert.Equal(t, "type{[Text]}", TypeVal(types.List(types.TextType)).String())
	assert.Equal(t, "unit{m}", UnitVal(units.NewUnitManager().MustLookup("m")).String())
}

func TestValueGetters(t *testing.T) {
	n, err := IntValue(4).GetNumber()
	require.NoError(t, err)
	assert.True(t, n.Equal(decimal.NewFromInt(4)))

	_, err = IntValue(4).GetText()
	assert.ErrorContains(t, err, "type mismatch")

	b, err := BoolValue(true).GetBool()
	require.NoError(t, err)
	assert.True(t, b)

	f, err := TupleVal(IntValue(1), IntValue(2)).GetField("2")
	require.NoError(t, err)
	assert.Equal(t, "2", f.String())
	_, err = TupleVal(IntValue(1), IntValue(2)).GetField("3")
	assert.Error(t, err)

	items, err := ListValue(nil).GetList()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		expected int
	}{
		{"numbers by value", NumberValue(decimal.RequireFromString("1.0")), IntValue(1), 0},
		{"numbers", IntValue(1), IntValue(2), -1},
		{"false before true", BoolValue(false), BoolValue(true), -1},
		{"text", TextValue("b"), TextValue("a"), 1},
		{"list prefix", ListValue([]Value{IntValue(1)}), ListValue([]Value{IntValue(1), IntValue(0)}), -1},
		{"list element", ListValue([]Value{IntValue(2)}), ListValue([]Value{IntValue(1), IntValue(0)}), 1},
		{"tuple", TupleVal(IntValue(1), IntValue(3)), TupleVal(IntValue(1), IntValue(2)), 1},
		{"tag order", TaggedVal("Optional", 0, "None", nil), TaggedVal("Optional", 1, "Is", &Value{Kind: NumberKind, Value: decimal.Zero}), -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := tc.a.Compare(tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, c)
		})
	}

	_, err := IntValue(1).Compare(TextValue("1"))
	assert.Error(t, err)
	assert.False(t, IntValue(1).Equals(TextValue("1")))
}

func TestTemporal(t *testing.T) {
	d, err := ParseTemporal(types.KindDate, "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "date{2024-02-29}", d.Literal())

	_, err = ParseTemporal(types.KindDate, "2023-02-29")
	assert.Error(t, err)

	tm, err := ParseTemporal(types.KindTime, "10:30:15.5")
	require.NoError(t, err)
	assert.Equal(t, "10:30:15.5", tm.Content())

	z, err := ParseTemporal(types.KindDateTimeZoned, "2024-01-01 12:00:00 +01:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 12:00:00 +01:00", z.Content())

	london, err := ParseTemporal(types.KindDateTimeZoned, "2024-01-01 11:00:00 Europe/London")
	require.NoError(t, err)
	assert.Equal(t, 0, z.Compare(london))

	ym, err := ParseTemporal(types.KindDateYM, "2024-03")
	require.NoError(t, err)
	later, _ := ParseTemporal(types.KindDateYM, "2024-11")
	c, err := TemporalValue(ym).Compare(TemporalValue(later))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	k, ok := TemporalKindByKeyword("datetimezoned")
	assert.True(t, ok)
	assert.Equal(t, types.KindDateTimeZoned, k)
}
