package parser

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/shopspring/decimal"

	"github.com/eponymouse/columnal-sub000/decl"
	"github.com/eponymouse/columnal-sub000/types"
)

// ParseExpression parses a complete expression in the save syntax.
func ParseExpression(text string) (Expression, error) {
	p := NewLLParser(NewLexer(strings.NewReader(text)))
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != eof {
		return nil, p.Errorf("unexpected %s after expression", p.describePeeked())
	}
	return e, nil
}

// ParseUnit parses unit syntax such as m/s^2.
func ParseUnit(text string) (UnitExpression, error) {
	p := NewLLParser(NewLexer(strings.NewReader(text)))
	u, err := p.ParseUnit()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != eof {
		return nil, p.Errorf("unexpected %s after unit", p.describePeeked())
	}
	return u, nil
}

// ParseType parses type syntax such as Optional(Number{m}).
func ParseType(text string) (TypeExpression, error) {
	p := NewLLParser(NewLexer(strings.NewReader(text)))
	t, err := p.ParseType()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != eof {
		return nil, p.Errorf("unexpected %s after type", p.describePeeked())
	}
	return t, nil
}

type LLParser struct {
	lexer            *Lexer
	peekedTokenValue *SymType
	peekedToken      int
	lastEnd          int // end offset of the last consumed token

	PanicOnError bool
	Errors       []error
}

func NewLLParser(lexer *Lexer) *LLParser {
	return &LLParser{lexer: lexer}
}

func (p *LLParser) Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if lexErr := p.lexer.LastError(); lexErr != nil && p.peekedToken == ILLEGAL {
		err = lexErr
	}
	p.Errors = append(p.Errors, err)
	if p.PanicOnError {
		panic(err)
	}
	return err
}

func (p *LLParser) Advance() int {
	p.PeekToken()
	last := p.peekedToken
	p.lastEnd = p.peekedTokenValue.end
	p.peekedTokenValue = nil
	p.peekedToken = -1
	return last
}

func (p *LLParser) PeekToken() int {
	if p.peekedTokenValue == nil {
		p.peekedTokenValue = &SymType{}
		p.peekedToken = p.lexer.Lex(p.peekedTokenValue)
	}
	return p.peekedToken
}

func (p *LLParser) describePeeked() string {
	tok := p.PeekToken()
	if tok == eof {
		return "end of input"
	}
	if text := p.lexer.Text(); text != "" && text != TokenString(tok) {
		return fmt.Sprintf("%s (%s)", TokenString(tok), text)
	}
	return TokenString(tok)
}

// Expect checks if the current peeked token is one of the expected tokens.
// It does NOT advance.
func (p *LLParser) Expect(tokensIn ...int) (foundToken int, err error) {
	peekedToken := p.PeekToken()
	for _, tok := range tokensIn {
		if tok == peekedToken {
			return tok, nil
		}
	}
	if len(tokensIn) == 1 {
		return -1, p.Errorf("expected %s, found %s", TokenString(tokensIn[0]), p.describePeeked())
	}
	expected := gfn.Map(tokensIn, func(t int) string { return TokenString(t) })
	return -1, p.Errorf("expected one of [%s], found %s", strings.Join(expected, ", "), p.describePeeked())
}

// AdvanceIf expects one of the given tokens and advances if found.
// Returns the matched token type and its semantic value.
func (p *LLParser) AdvanceIf(tokensIn ...int) (foundToken int, tokenValue *SymType, err error) {
	if _, err = p.Expect(tokensIn...); err != nil {
		return -1, nil, err
	}
	foundToken = p.peekedToken
	tokenValue = p.peekedTokenValue
	p.Advance()
	return
}

// --- Expressions ---

var chainOperators = map[int]string{
	PLUS: "+", MINUS: "-", TIMES: "*", DIVIDE: "/", RAISE: "^", CONCAT: ";",
	EQ: "=", PATTERN_EQ: "=~", NEQ: "<>", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
	AND: "&", OR: "|", PLUSMINUS: "±", HASTYPE: "::",
}

// ParseExpression parses an operand chain.
func (p *LLParser) ParseExpression() (Expression, error) {
	first, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return p.parseChain(first)
}

// parseChain continues a chain whose first operand has been read.
func (p *LLParser) parseChain(first Expression) (Expression, error) {
	chain := &ChainedExpr{Children: []Expression{first}}
	for {
		op, ok := chainOperators[p.PeekToken()]
		if !ok {
			break
		}
		p.Advance()
		next, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		chain.Children = append(chain.Children, next)
		chain.Operators = append(chain.Operators, op)
	}
	chain.Unchain()
	return chain.UnchainedExpr, nil
}

func (p *LLParser) parseOperand() (Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(e)
}

// parsePostfix reads calls and field accesses following an operand.
func (p *LLParser) parsePostfix(e Expression) (Expression, error) {
	for {
		switch p.PeekToken() {
		case LPAREN:
			p.Advance()
			args, err := p.parseExpressionList(RPAREN)
			if err != nil {
				return nil, err
			}
			e = &decl.CallExpression{ExprBase: ExprBase{NodeInfo: p.span(e.Pos())}, Function: e, Args: args}
		case HASH:
			p.Advance()
			tok, val, err := p.AdvanceIf(IDENTIFIER, NUMBER)
			if err != nil {
				return nil, err
			}
			field := val.sval
			if tok == IDENTIFIER {
				if len(val.parts) != 1 || val.namespace != decl.NamespaceNone {
					return nil, p.Errorf("invalid field name %s", strings.Join(val.parts, `\`))
				}
				field = val.parts[0]
			}
			e = &decl.FieldAccessExpression{ExprBase: ExprBase{NodeInfo: p.span(e.Pos())}, Target: e, Field: field}
		default:
			return e, nil
		}
	}
}

// span is the node info from start to the end of the last consumed token.
func (p *LLParser) span(start int) NodeInfo {
	return NodeInfo{StartPos: start, StopPos: p.lastEnd}
}

// parseExpressionList reads comma separated expressions up to and including
// the closing token.  The opening token has been consumed.
func (p *LLParser) parseExpressionList(closing int) ([]Expression, error) {
	var out []Expression
	if p.PeekToken() == closing {
		p.Advance()
		return out, nil
	}
	for {
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		tok, _, err := p.AdvanceIf(COMMA, closing)
		if err != nil {
			return nil, err
		}
		if tok == closing {
			return out, nil
		}
	}
}

func (p *LLParser) parsePrimary() (Expression, error) {
	tok := p.PeekToken()
	val := p.peekedTokenValue
	start := val.pos

	switch tok {
	case NUMBER:
		p.Advance()
		return p.parseNumber(val.sval, start)
	case MINUS:
		p.Advance()
		if p.PeekToken() != NUMBER || p.peekedTokenValue.pos != p.lastEnd {
			return nil, p.Errorf("expected a number after '-', found %s", p.describePeeked())
		}
		numVal := p.peekedTokenValue
		p.Advance()
		return p.parseNumber("-"+numVal.sval, start)
	case STRING:
		p.Advance()
		return &decl.StringLiteral{ExprBase: ExprBase{NodeInfo: p.span(start)}, Value: val.sval}, nil
	case TRUE, FALSE:
		p.Advance()
		return &decl.BooleanLiteral{ExprBase: ExprBase{NodeInfo: p.span(start)}, Value: tok == TRUE}, nil
	case TEMPORAL:
		p.Advance()
		kind, _ := decl.TemporalKindByKeyword(val.kw)
		return &decl.TemporalLiteral{ExprBase: ExprBase{NodeInfo: p.span(start)}, Kind: kind, Content: val.sval}, nil
	case TYPE_OPEN:
		p.Advance()
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.AdvanceIf(RBRACE); err != nil {
			return nil, err
		}
		return &decl.TypeLiteral{ExprBase: ExprBase{NodeInfo: p.span(start)}, Type: t}, nil
	case UNIT_OPEN:
		p.Advance()
		u, err := p.ParseUnit()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.AdvanceIf(RBRACE); err != nil {
			return nil, err
		}
		return &decl.UnitLiteral{ExprBase: ExprBase{NodeInfo: p.span(start)}, Unit: u}, nil
	case IDENTIFIER:
		p.Advance()
		return p.identFrom(val), nil
	case QUESTION:
		p.Advance()
		return &decl.ImplicitLambdaArg{ExprBase: ExprBase{NodeInfo: p.span(start)}}, nil
	case UNDERSCORE:
		p.Advance()
		return &decl.MatchAnythingExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}}, nil
	case LSQUARE:
		p.Advance()
		items, err := p.parseExpressionList(RSQUARE)
		if err != nil {
			return nil, err
		}
		return &decl.ArrayExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}, Items: items}, nil
	case LPAREN:
		p.Advance()
		return p.parseBracketed(start)
	case IF:
		return p.parseIf()
	case MATCH:
		return p.parseMatch()
	case DEFINE:
		return p.parseDefine()
	case FUNCTION:
		return p.parseFunction()
	case INVALIDOPS:
		p.Advance()
		if _, _, err := p.AdvanceIf(LPAREN); err != nil {
			return nil, err
		}
		items, err := p.parseExpressionList(RPAREN)
		if err != nil {
			return nil, err
		}
		return &decl.InvalidOperatorExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}, Items: items}, nil
	case UNFINISHED:
		p.Advance()
		_, text, err := p.AdvanceIf(STRING)
		if err != nil {
			return nil, err
		}
		return &decl.InvalidIdentExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}, Text: text.sval}, nil
	}
	return nil, p.Errorf("expected an expression, found %s", p.describePeeked())
}

func (p *LLParser) identFrom(val *SymType) *decl.IdentExpression {
	return &decl.IdentExpression{
		ExprBase:  ExprBase{NodeInfo: NodeInfo{StartPos: val.pos, StopPos: val.end}},
		Namespace: val.namespace,
		Parts:     val.parts,
	}
}

// parseNumber builds a numeric literal, reading a unit if a brace follows
// the number directly.
func (p *LLParser) parseNumber(text string, start int) (Expression, error) {
	value, err := decimal.NewFromString(text)
	if err != nil {
		return nil, p.Errorf("invalid number %s: %v", text, err)
	}
	lit := &decl.NumericLiteral{Value: value}
	if p.PeekToken() == LBRACE && p.peekedTokenValue.pos == p.lastEnd {
		p.Advance()
		if lit.Unit, err = p.ParseUnit(); err != nil {
			return nil, err
		}
		if _, _, err := p.AdvanceIf(RBRACE); err != nil {
			return nil, err
		}
	}
	lit.NodeInfo = NodeInfo{StartPos: start, StopPos: p.lastEnd}
	return lit, nil
}

// parseBracketed reads what follows an open bracket: a record, a tuple or
// a bracketed expression.
func (p *LLParser) parseBracketed(start int) (Expression, error) {
	var first Expression
	if p.PeekToken() == IDENTIFIER {
		val := p.peekedTokenValue
		p.Advance()
		if p.PeekToken() == COLON && val.namespace == decl.NamespaceNone && len(val.parts) == 1 {
			return p.parseRecord(start, val.parts[0])
		}
		e, err := p.parsePostfix(p.identFrom(val))
		if err != nil {
			return nil, err
		}
		if first, err = p.parseChain(e); err != nil {
			return nil, err
		}
	} else {
		var err error
		if first, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}

	tok, _, err := p.AdvanceIf(RPAREN, COMMA)
	if err != nil {
		return nil, err
	}
	if tok == RPAREN {
		return first, nil
	}
	rest, err := p.parseExpressionList(RPAREN)
	if err != nil {
		return nil, err
	}
	return &decl.TupleExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}, Items: append([]Expression{first}, rest...)}, nil
}

// parseRecord reads fields after the first field name.
func (p *LLParser) parseRecord(start int, firstName string) (Expression, error) {
	out := &decl.RecordExpression{}
	name := firstName
	for {
		if _, _, err := p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, decl.RecordField{Name: name, Value: value})
		tok, _, err := p.AdvanceIf(COMMA, RPAREN)
		if err != nil {
			return nil, err
		}
		if tok == RPAREN {
			break
		}
		_, val, err := p.AdvanceIf(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if len(val.parts) != 1 || val.namespace != decl.NamespaceNone {
			return nil, p.Errorf("invalid field name %s", strings.Join(val.parts, `\`))
		}
		name = val.parts[0]
	}
	out.NodeInfo = NodeInfo{StartPos: start, StopPos: p.lastEnd}
	return out, nil
}

func (p *LLParser) parseIf() (Expression, error) {
	start := p.peekedTokenValue.pos
	p.Advance()
	out := &decl.IfThenElseExpression{}
	var err error
	if out.Condition, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(THEN); err != nil {
		return nil, err
	}
	if out.Then, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(ELSE); err != nil {
		return nil, err
	}
	if out.Else, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(ENDIF); err != nil {
		return nil, err
	}
	out.NodeInfo = NodeInfo{StartPos: start, StopPos: p.lastEnd}
	return out, nil
}

func (p *LLParser) parseMatch() (Expression, error) {
	start := p.peekedTokenValue.pos
	p.Advance()
	out := &decl.MatchExpression{}
	var err error
	if out.Expression, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, err = p.Expect(CASE); err != nil {
		return nil, err
	}
	for p.PeekToken() == CASE {
		p.Advance()
		var clause decl.MatchClause
		for {
			var pat decl.MatchPattern
			if pat.Pattern, err = p.ParseExpression(); err != nil {
				return nil, err
			}
			if p.PeekToken() == GIVEN {
				p.Advance()
				if pat.Guard, err = p.ParseExpression(); err != nil {
					return nil, err
				}
			}
			clause.Patterns = append(clause.Patterns, pat)
			tok, _, err := p.AdvanceIf(ORCASE, THEN)
			if err != nil {
				return nil, err
			}
			if tok == THEN {
				break
			}
		}
		if clause.Outcome, err = p.ParseExpression(); err != nil {
			return nil, err
		}
		out.Clauses = append(out.Clauses, clause)
	}
	if _, _, err = p.AdvanceIf(ENDMATCH); err != nil {
		return nil, err
	}
	out.NodeInfo = NodeInfo{StartPos: start, StopPos: p.lastEnd}
	return out, nil
}

// parseDefine reads @define items.  Items are read as expressions: a type
// declaration is a :: expression and a definition is a two operand =.
func (p *LLParser) parseDefine() (Expression, error) {
	start := p.peekedTokenValue.pos
	p.Advance()
	out := &decl.DefineExpression{}
	for {
		item, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		switch it := item.(type) {
		case *decl.HasTypeExpression:
			out.Items = append(out.Items, decl.DefineItem{Type: it})
		case *decl.EqualExpression:
			if len(it.Operands) != 2 || it.LastIsPattern {
				return nil, p.Errorf("expected a single definition, found %s", decl.Save(item, decl.ToDisplay))
			}
			out.Items = append(out.Items, decl.DefineItem{Definition: &decl.Definition{Pattern: it.Operands[0], Value: it.Operands[1]}})
		default:
			return nil, p.Errorf("expected a definition or type declaration in @define, found %s", decl.Save(item, decl.ToDisplay))
		}
		tok, _, err := p.AdvanceIf(COMMA, THEN)
		if err != nil {
			return nil, err
		}
		if tok == THEN {
			break
		}
	}
	var err error
	if out.Body, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(ENDDEFINE); err != nil {
		return nil, err
	}
	out.NodeInfo = NodeInfo{StartPos: start, StopPos: p.lastEnd}
	return out, nil
}

func (p *LLParser) parseFunction() (Expression, error) {
	start := p.peekedTokenValue.pos
	p.Advance()
	if _, _, err := p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseExpressionList(RPAREN)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, p.Errorf("a function needs at least one parameter")
	}
	if _, _, err = p.AdvanceIf(THEN); err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(ENDFUNCTION); err != nil {
		return nil, err
	}
	return &decl.LambdaExpression{ExprBase: ExprBase{NodeInfo: p.span(start)}, Params: params, Body: body}, nil
}

// --- Units ---

// ParseUnit reads: term ('/' term)*, term: factor ('*' factor)*,
// factor: base ('^' '-'? int)?, base: name | 1 | '(' unit ')'.
func (p *LLParser) ParseUnit() (UnitExpression, error) {
	out, err := p.parseUnitTerm()
	if err != nil {
		return nil, err
	}
	for p.PeekToken() == DIVIDE {
		p.Advance()
		right, err := p.parseUnitTerm()
		if err != nil {
			return nil, err
		}
		out = &decl.UnitDivideExpression{Left: out, Right: right}
	}
	return out, nil
}

func (p *LLParser) parseUnitTerm() (UnitExpression, error) {
	first, err := p.parseUnitFactor()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != TIMES {
		return first, nil
	}
	operands := []UnitExpression{first}
	for p.PeekToken() == TIMES {
		p.Advance()
		next, err := p.parseUnitFactor()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return &decl.UnitTimesExpression{Operands: operands}, nil
}

func (p *LLParser) parseUnitFactor() (UnitExpression, error) {
	base, err := p.parseUnitBase()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != RAISE {
		return base, nil
	}
	p.Advance()
	sign := ""
	if p.PeekToken() == MINUS {
		p.Advance()
		sign = "-"
	}
	_, num, err := p.AdvanceIf(NUMBER)
	if err != nil {
		return nil, err
	}
	power, err := strconv.Atoi(sign + num.sval)
	if err != nil {
		return nil, p.Errorf("unit powers must be whole numbers, not %s", num.sval)
	}
	return &decl.UnitRaiseExpression{Base: base, Power: power}, nil
}

func (p *LLParser) parseUnitBase() (UnitExpression, error) {
	tok, val, err := p.AdvanceIf(IDENTIFIER, NUMBER, LPAREN)
	if err != nil {
		return nil, err
	}
	switch tok {
	case IDENTIFIER:
		if len(val.parts) != 1 || val.namespace != decl.NamespaceNone || strings.Contains(val.parts[0], " ") {
			return nil, p.Errorf("invalid unit name %s", strings.Join(val.parts, `\`))
		}
		return &decl.SingleUnitExpression{Name: val.parts[0]}, nil
	case NUMBER:
		n, err := strconv.Atoi(val.sval)
		if err != nil {
			return nil, p.Errorf("invalid number in unit: %s", val.sval)
		}
		return &decl.UnitIntLiteral{Value: n}, nil
	}
	inner, err := p.ParseUnit()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}
	return inner, nil
}

// --- Types ---

// ParseType reads type syntax: Number, Number{unit}, a primitive name,
// [T], (name: T, ..), (T, U, ..) or a tagged type Name(args) where each
// argument is a type or {unit}.
func (p *LLParser) ParseType() (TypeExpression, error) {
	tok, val, err := p.AdvanceIf(IDENTIFIER, LSQUARE, LPAREN)
	if err != nil {
		return nil, err
	}
	switch tok {
	case IDENTIFIER:
		return p.parseNamedType(val)
	case LSQUARE:
		elem, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.AdvanceIf(RSQUARE); err != nil {
			return nil, err
		}
		return &decl.ListTypeExpression{Elem: elem}, nil
	}

	// Bracketed: record, tuple or a bracketed type.
	if p.PeekToken() == IDENTIFIER {
		name := p.peekedTokenValue
		p.Advance()
		if p.PeekToken() == COLON {
			return p.parseRecordType(name)
		}
		first, err := p.parseNamedType(name)
		if err != nil {
			return nil, err
		}
		return p.parseTupleTypeRest(first)
	}
	first, err := p.ParseType()
	if err != nil {
		return nil, err
	}
	return p.parseTupleTypeRest(first)
}

func (p *LLParser) parseNamedType(val *SymType) (TypeExpression, error) {
	if len(val.parts) != 1 || val.namespace != decl.NamespaceNone {
		return nil, p.Errorf("invalid type name %s", strings.Join(val.parts, `\`))
	}
	name := val.parts[0]
	if name == "Number" {
		if p.PeekToken() != LBRACE {
			return &decl.NumberTypeExpression{}, nil
		}
		p.Advance()
		u, err := p.ParseUnit()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.AdvanceIf(RBRACE); err != nil {
			return nil, err
		}
		return &decl.NumberTypeExpression{Unit: u}, nil
	}
	if kind, ok := types.PrimitiveKindByName(name); ok {
		return &decl.PrimitiveTypeExpression{Kind: kind}, nil
	}
	out := &decl.TaggedTypeExpression{Name: name}
	if p.PeekToken() != LPAREN {
		return out, nil
	}
	p.Advance()
	for {
		if p.PeekToken() == LBRACE {
			p.Advance()
			u, err := p.ParseUnit()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.AdvanceIf(RBRACE); err != nil {
				return nil, err
			}
			out.Args = append(out.Args, decl.TypeArgument{Unit: u})
		} else {
			t, err := p.ParseType()
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, decl.TypeArgument{Type: t})
		}
		tok, _, err := p.AdvanceIf(COMMA, RPAREN)
		if err != nil {
			return nil, err
		}
		if tok == RPAREN {
			return out, nil
		}
	}
}

func (p *LLParser) parseRecordType(first *SymType) (TypeExpression, error) {
	out := &decl.RecordTypeExpression{}
	nameVal := first
	for {
		if len(nameVal.parts) != 1 || nameVal.namespace != decl.NamespaceNone {
			return nil, p.Errorf("invalid field name %s", strings.Join(nameVal.parts, `\`))
		}
		if _, _, err := p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, decl.RecordTypeField{Name: nameVal.parts[0], Type: t})
		tok, _, err := p.AdvanceIf(COMMA, RPAREN)
		if err != nil {
			return nil, err
		}
		if tok == RPAREN {
			return out, nil
		}
		if _, nameVal, err = p.AdvanceIf(IDENTIFIER); err != nil {
			return nil, err
		}
	}
}

// parseTupleTypeRest continues after the first item inside brackets.
func (p *LLParser) parseTupleTypeRest(first TypeExpression) (TypeExpression, error) {
	tok, _, err := p.AdvanceIf(COMMA, RPAREN)
	if err != nil {
		return nil, err
	}
	if tok == RPAREN {
		return first, nil
	}
	out := &decl.TupleTypeExpression{Items: []TypeExpression{first}}
	for {
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, t)
		tok, _, err := p.AdvanceIf(COMMA, RPAREN)
		if err != nil {
			return nil, err
		}
		if tok == RPAREN {
			return out, nil
		}
	}
}
