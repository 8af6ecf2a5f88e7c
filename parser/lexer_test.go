package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eponymouse/columnal-sub000/decl"
)

// Helper struct for expected token properties
type expectedToken struct {
	tok       int    // Token type
	text      string // Raw token text as scanned by lexer
	startPos  int    // Expected start byte offset
	endPos    int    // Expected end byte offset
	startLine int    // Expected start line
	startCol  int    // Expected start column
}

// Helper function to run lexer tests
func runLexerTest(t *testing.T, input string, expectedTokens []expectedToken) *Lexer {
	t.Helper()
	lexer := NewLexer(strings.NewReader(input))
	lval := &SymType{}

	for i, exp := range expectedTokens {
		tok := lexer.Lex(lval)
		line, col := lexer.Position()
		expTokStr := TokenString(exp.tok)
		assert.Equal(t, exp.tok, tok, "Test %d: Token type mismatch. Expected %s, got %s ('%s')", i, expTokStr, TokenString(tok), lexer.Text())
		assert.Equal(t, exp.text, lexer.Text(), "Test %d: Token text mismatch for %s.", i, expTokStr)
		assert.Equal(t, exp.startPos, lexer.Pos(), "Test %d: Token startPos mismatch for %s.", i, expTokStr)
		assert.Equal(t, exp.endPos, lexer.End(), "Test %d: Token endPos mismatch for %s.", i, expTokStr)
		assert.Equal(t, exp.startLine, line, "Test %d: Token startLine mismatch for %s.", i, expTokStr)
		assert.Equal(t, exp.startCol, col, "Test %d: Token startCol mismatch for %s.", i, expTokStr)
	}
	finalTok := lexer.Lex(lval)
	assert.Equal(t, eof, finalTok, "Expected EOF after all tokens, got %s ('%s')", TokenString(finalTok), lexer.Text())
	assert.NoError(t, lexer.LastError())
	return lexer
}

// lexAll returns the token kinds of input, up to EOF.
func lexAll(t *testing.T, input string) (toks []int, vals []SymType) {
	t.Helper()
	lexer := NewLexer(strings.NewReader(input))
	for {
		var lval SymType
		tok := lexer.Lex(&lval)
		if tok == eof {
			return
		}
		toks = append(toks, tok)
		vals = append(vals, lval)
		require.Less(t, len(toks), 1000, "lexer is not making progress")
	}
}

func TestLexer_KeywordsAndIdentifiers(t *testing.T) {
	input := `@if x @then column\Price @else text length @endif`
	runLexerTest(t, input, []expectedToken{
		{IF, "@if", 0, 3, 1, 1},
		{IDENTIFIER, "x", 4, 5, 1, 5},
		{THEN, "@then", 6, 11, 1, 7},
		{IDENTIFIER, `column\Price`, 12, 24, 1, 13},
		{ELSE, "@else", 25, 30, 1, 26},
		{IDENTIFIER, "text length", 31, 42, 1, 32},
		{ENDIF, "@endif", 43, 49, 1, 44},
	})
}

func TestLexer_Literals(t *testing.T) {
	input := `12 3.25 "a\"b" true false date{2020-01-02} type{ unit{`
	runLexerTest(t, input, []expectedToken{
		{NUMBER, "12", 0, 2, 1, 1},
		{NUMBER, "3.25", 3, 7, 1, 4},
		{STRING, `"a\"b"`, 8, 14, 1, 9},
		{TRUE, "true", 15, 19, 1, 16},
		{FALSE, "false", 20, 25, 1, 21},
		{TEMPORAL, "date{2020-01-02}", 26, 42, 1, 27},
		{TYPE_OPEN, "type{", 43, 48, 1, 44},
		{UNIT_OPEN, "unit{", 49, 54, 1, 50},
	})

	_, vals := lexAll(t, `"a\"b\\\n" datetimezoned{2020-01-02 10:00:00 Europe/London}`)
	require.Len(t, vals, 2)
	assert.Equal(t, "a\"b\\\n", vals[0].sval)
	assert.Equal(t, "datetimezoned", vals[1].kw)
	assert.Equal(t, "2020-01-02 10:00:00 Europe/London", vals[1].sval)
}

func TestLexer_OperatorsAndPunctuation(t *testing.T) {
	toks, _ := lexAll(t, `+ - * / ^ ; = =~ <> < <= > >= & | ± +- :: # ? _ , : ( ) [ ] { }`)
	assert.Equal(t, []int{
		PLUS, MINUS, TIMES, DIVIDE, RAISE, CONCAT, EQ, PATTERN_EQ, NEQ, LT, LTE, GT, GTE,
		AND, OR, PLUSMINUS, PLUSMINUS, HASTYPE, HASH, QUESTION, UNDERSCORE, COMMA, COLON,
		LPAREN, RPAREN, LSQUARE, RSQUARE, LBRACE, RBRACE,
	}, toks)
}

func TestLexer_Identifiers(t *testing.T) {
	tests := []struct {
		input string
		ns    decl.Namespace
		parts []string
	}{
		{"x", decl.NamespaceNone, []string{"x"}},
		{"round decimal", decl.NamespaceNone, []string{"round decimal"}},
		{`column\Unit Price`, decl.NamespaceColumn, []string{"Unit Price"}},
		{`table\Sales`, decl.NamespaceTable, []string{"Sales"}},
		{`tag\Optional\Is`, decl.NamespaceTag, []string{"Optional", "Is"}},
		{`Optional\None`, decl.NamespaceNone, []string{"Optional", "None"}},
		{`function\abs`, decl.NamespaceFunction, []string{"abs"}},
		{"column", decl.NamespaceNone, []string{"column"}},
		{"_tmp2", decl.NamespaceNone, []string{"_tmp2"}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			toks, vals := lexAll(t, tc.input)
			require.Equal(t, []int{IDENTIFIER}, toks)
			assert.Equal(t, tc.ns, vals[0].namespace)
			assert.Equal(t, tc.parts, vals[0].parts)
		})
	}

	// Two spaces end an identifier.
	toks, _ := lexAll(t, "a  b")
	assert.Equal(t, []int{IDENTIFIER, IDENTIFIER}, toks)

	// Reserved words and literal openers are never part of an identifier.
	wordTests := []struct {
		input string
		toks  []int
	}{
		{"x true", []int{IDENTIFIER, TRUE}},
		{"true x", []int{TRUE, IDENTIFIER}},
		{"false _", []int{FALSE, UNDERSCORE}},
		{"a date{2020-01-02}", []int{IDENTIFIER, TEMPORAL}},
		{"a type{Number}", []int{IDENTIFIER, TYPE_OPEN, IDENTIFIER, RBRACE}},
		{"a unit{m}", []int{IDENTIFIER, UNIT_OPEN, IDENTIFIER, RBRACE}},
		{"start date", []int{IDENTIFIER}},
		{"truest value", []int{IDENTIFIER}},
	}
	for _, tc := range wordTests {
		t.Run(tc.input, func(t *testing.T) {
			toks, _ := lexAll(t, tc.input)
			assert.Equal(t, tc.toks, toks)
		})
	}
}

func TestLexer_NormalisesIdentifiersToNFC(t *testing.T) {
	_, vals := lexAll(t, "cafe\u0301 \"e\u0301\"")
	require.Len(t, vals, 2)
	assert.Equal(t, []string{"caf\u00e9"}, vals[0].parts)
	// text is kept as written
	assert.Equal(t, "e\u0301", vals[1].sval)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`"abc`, "unterminated string"},
		{`date{2020`, "unterminated date literal"},
		{`@nope`, "unknown keyword @nope"},
		{`"\q"`, "invalid escape"},
		{"~", "unexpected character"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			lexer := NewLexer(strings.NewReader(tc.input))
			var lval SymType
			assert.Equal(t, ILLEGAL, lexer.Lex(&lval))
			require.Error(t, lexer.LastError())
			assert.Contains(t, lexer.LastError().Error(), tc.msg)
		})
	}
}
