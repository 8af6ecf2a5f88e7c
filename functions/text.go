package functions

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/loader"
	"github.com/eponymouse/columnal-sub000/types"
)

var textToText = fixed(types.Function(types.TextType, types.TextType))

func textFunctions() []*loader.FunctionDefinition {
	return []*loader.FunctionDefinition{
		simple("text length", "The number of characters in a text.", fixed(types.Function(types.PlainNumber(), types.TextType)), func(args []Value) (Value, error) {
			s, err := args[0].GetText()
			if err != nil {
				return Value{}, err
			}
			return decl.IntValue(int64(utf8.RuneCountInString(norm.NFC.String(s)))), nil
		}),
		// A Caser keeps state, so each call gets its own.
		textFunction("upper case", "Converts text to upper case.", func(s string) (string, error) {
			return cases.Upper(language.Und).String(s), nil
		}),
		textFunction("lower case", "Converts text to lower case.", func(s string) (string, error) {
			return cases.Lower(language.Und).String(s), nil
		}),
		textFunction("trim", "Removes spaces from the start and end of a text.", func(s string) (string, error) {
			return strings.TrimSpace(s), nil
		}),
		textFunction("remove accents", "Removes accents, eg é becomes e.", removeAccents),
	}
}

func textFunction(name, synopsis string, fn func(string) (string, error)) *loader.FunctionDefinition {
	return simple(name, synopsis, textToText, func(args []Value) (Value, error) {
		s, err := args[0].GetText()
		if err != nil {
			return Value{}, err
		}
		out, err := fn(s)
		if err != nil {
			return Value{}, err
		}
		return decl.TextValue(out), nil
	})
}

func removeAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	output, _, err := transform.String(t, s)
	return output, err
}
