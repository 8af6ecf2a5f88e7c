package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/eponymouse/columnal-sub000/core"
	"github.com/eponymouse/columnal-sub000/decl"
)

// Ensure EOF is defined
const eof = 0

// Token kinds.
const (
	NUMBER = iota + 1
	STRING
	IDENTIFIER
	TEMPORAL  // date{..} and friends; the content is the token's sval
	TYPE_OPEN // type{
	UNIT_OPEN // unit{
	TRUE
	FALSE

	IF
	THEN
	ELSE
	ENDIF
	MATCH
	CASE
	GIVEN
	ORCASE
	ENDMATCH
	DEFINE
	ENDDEFINE
	FUNCTION
	ENDFUNCTION
	INVALIDOPS
	UNFINISHED

	PLUS
	MINUS
	TIMES
	DIVIDE
	RAISE
	CONCAT
	EQ
	PATTERN_EQ
	NEQ
	LT
	LTE
	GT
	GTE
	AND
	OR
	PLUSMINUS
	HASTYPE
	HASH
	QUESTION
	UNDERSCORE
	COMMA
	COLON
	LPAREN
	RPAREN
	LSQUARE
	RSQUARE
	LBRACE
	RBRACE

	ILLEGAL
)

var keywords = map[string]int{
	"if":          IF,
	"then":        THEN,
	"else":        ELSE,
	"endif":       ENDIF,
	"match":       MATCH,
	"case":        CASE,
	"given":       GIVEN,
	"orcase":      ORCASE,
	"endmatch":    ENDMATCH,
	"define":      DEFINE,
	"enddefine":   ENDDEFINE,
	"function":    FUNCTION,
	"endfunction": ENDFUNCTION,
	"invalidops":  INVALIDOPS,
	"unfinished":  UNFINISHED,
}

var tokenNames = map[int]string{
	eof:         "EOF",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	IDENTIFIER:  "IDENTIFIER",
	TEMPORAL:    "TEMPORAL",
	TYPE_OPEN:   "type{",
	UNIT_OPEN:   "unit{",
	TRUE:        "true",
	FALSE:       "false",
	IF:          "@if",
	THEN:        "@then",
	ELSE:        "@else",
	ENDIF:       "@endif",
	MATCH:       "@match",
	CASE:        "@case",
	GIVEN:       "@given",
	ORCASE:      "@orcase",
	ENDMATCH:    "@endmatch",
	DEFINE:      "@define",
	ENDDEFINE:   "@enddefine",
	FUNCTION:    "@function",
	ENDFUNCTION: "@endfunction",
	INVALIDOPS:  "@invalidops",
	UNFINISHED:  "@unfinished",
	PLUS:        "+",
	MINUS:       "-",
	TIMES:       "*",
	DIVIDE:      "/",
	RAISE:       "^",
	CONCAT:      ";",
	EQ:          "=",
	PATTERN_EQ:  "=~",
	NEQ:         "<>",
	LT:          "<",
	LTE:         "<=",
	GT:          ">",
	GTE:         ">=",
	AND:         "&",
	OR:          "|",
	PLUSMINUS:   "±",
	HASTYPE:     "::",
	HASH:        "#",
	QUESTION:    "?",
	UNDERSCORE:  "_",
	COMMA:       ",",
	COLON:       ":",
	LPAREN:      "(",
	RPAREN:      ")",
	LSQUARE:     "[",
	RSQUARE:     "]",
	LBRACE:      "{",
	RBRACE:      "}",
	ILLEGAL:     "ILLEGAL",
}

// TokenString returns a readable name for a token kind.
func TokenString(tok int) string {
	if s, ok := tokenNames[tok]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", tok)
}

// SymType carries the semantic value of the last token.
type SymType struct {
	sval      string   // number text, decoded string or temporal content
	kw        string   // keyword of a TEMPORAL token, eg date
	parts     []string // identifier parts, split on `\`
	namespace decl.Namespace
	pos, end  int
}

// Lexer structure
type Lexer struct {
	lookaheadRunes  []rune
	lookaheadWidths []int
	reader          *bufio.Reader
	buf             bytes.Buffer // Temporary buffer for scanned text
	pos             int          // Current byte offset from the beginning of the input
	lastError       error

	// Position tracking for the current token
	tokenStartPos  int
	tokenStartLine int
	tokenStartCol  int
	tokenText      string

	// Current line and column (rune-based) in the input
	line int
	col  int
}

// NewLexer creates a new lexer.  Identifiers are NFC normalised so that
// they compare by their composed form; text literals are kept as written.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		line:   1,
		col:    1,
	}
}

// Error records an error at the current token.
func (l *Lexer) Error(s string) {
	l.lastError = fmt.Errorf("error at line %d, col %d near '%s': %s", l.tokenStartLine, l.tokenStartCol, l.tokenText, s)
	core.Debug("lexer: %v", l.lastError)
}

// LastError returns the most recent error.
func (l *Lexer) LastError() error { return l.lastError }

// Pos returns the start byte offset of the most recently lexed token.
func (l *Lexer) Pos() int { return l.tokenStartPos }

// End returns the end byte offset after lexing the most recent token.
func (l *Lexer) End() int { return l.pos }

// Text returns the raw text of the most recently lexed token.
func (l *Lexer) Text() string { return l.tokenText }

// Position returns the line and column where the last token started.
func (l *Lexer) Position() (line, col int) { return l.tokenStartLine, l.tokenStartCol }

// --- Rune Reading Helpers (with line/col tracking) ---

func (l *Lexer) read() (r rune, width int) {
	if l.peek() == eof {
		return eof, 0
	}
	r, width = l.lookaheadRunes[0], l.lookaheadWidths[0]
	l.lookaheadRunes, l.lookaheadWidths = l.lookaheadRunes[1:], l.lookaheadWidths[1:]
	l.updatePosition(r, width)
	l.buf.WriteRune(r)
	return r, width
}

func (l *Lexer) updatePosition(r rune, width int) {
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peek() rune { return l.peekN(0) }

func (l *Lexer) peekN(nthchar int) rune {
	l.ensureLookAhead(nthchar + 1)
	if nthchar >= len(l.lookaheadRunes) {
		return eof
	}
	return l.lookaheadRunes[nthchar]
}

func (l *Lexer) ensureLookAhead(numchars int) int {
	for len(l.lookaheadRunes) < numchars {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			break
		}
		l.lookaheadRunes = append(l.lookaheadRunes, r)
		l.lookaheadWidths = append(l.lookaheadWidths, width)
	}
	return len(l.lookaheadRunes)
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.peek()) {
		l.read()
	}
}

func isWordStart(r rune) bool { return unicode.IsLetter(r) || r == '_' || r == '$' }
func isWordChar(r rune) bool {
	return isWordStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc)
}

// Lex scans the next token into lval and returns its kind.
func (l *Lexer) Lex(lval *SymType) int {
	l.skipWhitespace()
	l.buf.Reset()
	l.tokenStartPos = l.pos
	l.tokenStartLine, l.tokenStartCol = l.line, l.col
	*lval = SymType{pos: l.pos}

	tok := l.scan(lval)
	l.tokenText = l.buf.String()
	lval.end = l.pos
	return tok
}

func (l *Lexer) scan(lval *SymType) int {
	ch := l.peek()
	switch {
	case ch == eof:
		return eof
	case isDigit(ch):
		return l.scanNumber(lval)
	case isWordStart(ch):
		return l.scanIdentifierOrKeyword(lval)
	case ch == '"':
		return l.scanString(lval)
	case ch == '@':
		l.read()
		l.buf.Reset()
		for isWordChar(l.peek()) {
			l.read()
		}
		word := l.buf.String()
		l.buf.Reset()
		l.buf.WriteString("@" + word)
		if tok, ok := keywords[word]; ok {
			return tok
		}
		l.Error(fmt.Sprintf("unknown keyword @%s", word))
		return ILLEGAL
	}

	l.read()
	switch ch {
	case '+':
		if l.peek() == '-' {
			l.read()
			return PLUSMINUS
		}
		return PLUS
	case '±':
		return PLUSMINUS
	case '-':
		return MINUS
	case '*':
		return TIMES
	case '/':
		return DIVIDE
	case '^':
		return RAISE
	case ';':
		return CONCAT
	case '=':
		if l.peek() == '~' {
			l.read()
			return PATTERN_EQ
		}
		return EQ
	case '<':
		switch l.peek() {
		case '>':
			l.read()
			return NEQ
		case '=':
			l.read()
			return LTE
		}
		return LT
	case '>':
		if l.peek() == '=' {
			l.read()
			return GTE
		}
		return GT
	case '&':
		return AND
	case '|':
		return OR
	case ':':
		if l.peek() == ':' {
			l.read()
			return HASTYPE
		}
		return COLON
	case '#':
		return HASH
	case '?':
		return QUESTION
	case ',':
		return COMMA
	case '(':
		return LPAREN
	case ')':
		return RPAREN
	case '[':
		return LSQUARE
	case ']':
		return RSQUARE
	case '{':
		return LBRACE
	case '}':
		return RBRACE
	}
	l.Error(fmt.Sprintf("unexpected character %q", ch))
	return ILLEGAL
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) scanNumber(lval *SymType) int {
	for isDigit(l.peek()) {
		l.read()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.read()
		for isDigit(l.peek()) {
			l.read()
		}
	}
	lval.sval = l.buf.String()
	return NUMBER
}

// scanWord reads one run of word characters.
func (l *Lexer) scanWord() string {
	start := l.buf.Len()
	for isWordChar(l.peek()) {
		l.read()
	}
	return l.buf.String()[start:]
}

var reservedWords = map[string]bool{"true": true, "false": true, "_": true}

// startsToken reports whether the word at lookahead offset n is one that
// cannot continue an identifier: a reserved word, or a literal opener
// directly followed by a brace.
func (l *Lexer) startsToken(n int) bool {
	end := n
	for isWordChar(l.peekN(end)) {
		end++
	}
	word := string(l.lookaheadRunes[n:end])
	if reservedWords[word] {
		return true
	}
	if l.peekN(end) != '{' {
		return false
	}
	if word == "type" || word == "unit" {
		return true
	}
	_, ok := decl.TemporalKindByKeyword(word)
	return ok
}

// scanIdentifierOrKeyword reads an identifier.  An identifier is words
// joined by single spaces; parts are separated by backslashes, and a
// leading namespace keyword selects the namespace.
func (l *Lexer) scanIdentifierOrKeyword(lval *SymType) int {
	first := l.scanWord()

	// Literal openers must be followed immediately by a brace.
	if l.peek() == '{' {
		switch first {
		case "type":
			l.read()
			return TYPE_OPEN
		case "unit":
			l.read()
			return UNIT_OPEN
		}
		if _, ok := decl.TemporalKindByKeyword(first); ok {
			l.read()
			start := l.buf.Len()
			for l.peek() != '}' {
				if l.peek() == eof {
					l.Error("unterminated " + first + " literal")
					return ILLEGAL
				}
				l.read()
			}
			lval.sval = l.buf.String()[start:]
			l.read()
			lval.kw = first
			return TEMPORAL
		}
	}

	if reservedWords[first] {
		switch first {
		case "true":
			return TRUE
		case "false":
			return FALSE
		}
		return UNDERSCORE
	}

	var parts []string
	part := first
	for {
		for l.peek() == ' ' && isWordStart(l.peekN(1)) && !l.startsToken(1) {
			l.read()
			part += " " + l.scanWord()
		}
		parts = append(parts, part)
		if l.peek() != '\\' || !isWordStart(l.peekN(1)) {
			break
		}
		l.read()
		part = l.scanWord()
	}

	for i, p := range parts {
		parts[i] = norm.NFC.String(p)
	}
	if len(parts) > 1 {
		if ns, ok := decl.NamespaceByKeyword(parts[0]); ok {
			lval.namespace = ns
			parts = parts[1:]
		}
	}
	lval.parts = parts
	return IDENTIFIER
}

func (l *Lexer) scanString(lval *SymType) int {
	l.read() // opening quote
	var out []rune
	for {
		ch, _ := l.read()
		switch ch {
		case eof:
			l.Error("unterminated string")
			return ILLEGAL
		case '"':
			lval.sval = string(out)
			return STRING
		case '\\':
			esc, _ := l.read()
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '"', '\\':
				out = append(out, esc)
			default:
				l.Error(fmt.Sprintf("invalid escape \\%c", esc))
				return ILLEGAL
			}
		default:
			out = append(out, ch)
		}
	}
}
