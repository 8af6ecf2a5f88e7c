package functions

import (
	"fmt"
	"time"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/types"
)

func temporalFunctions() []*loader.FunctionDefinition {
	return []*loader.FunctionDefinition{
		simple("year", "The year of a date.", fixed(types.Function(types.PlainNumber(), types.DateType)), func(args []Value) (Value, error) {
			t, err := args[0].GetTemporal()
			if err != nil {
				return Value{}, err
			}
			return decl.IntValue(int64(t.Time.Year())), nil
		}),
		simple("date from ymd", "Makes a date from a year, month and day.", fixed(types.Function(types.DateType, types.PlainNumber(), types.PlainNumber(), types.PlainNumber())), func(args []Value) (Value, error) {
			var parts [3]int
			for i := range parts {
				n, err := wholeNumber(args[i])
				if err != nil {
					return Value{}, err
				}
				parts[i] = n
			}
			d := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)
			if d.Year() != parts[0] || int(d.Month()) != parts[1] || d.Day() != parts[2] {
				return Value{}, fmt.Errorf("%04d-%02d-%02d: %w", parts[0], parts[1], parts[2], ErrInvalidDate)
			}
			return decl.TemporalValue(decl.Temporal{Kind: types.KindDate, Time: d}), nil
		}),
	}
}
