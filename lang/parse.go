package lang

import (
	"context"
	"log/slog"
	"slices"
)

// ParseString parses a build script.
func ParseString(ctx context.Context, source string, opts ...Option) (*AST, error) {
	ast := new(AST)

	applyOptions(ast, opts...)

	tokens := Tokenize(source)

	ast.logger.TraceContext(ctx, "tokenized",
		slog.String("source", ast.name),
		slog.Int("source_bytes", len(source)),
		slog.Int("token_count", len(tokens)))

	p := &parser{tokens: tokens, name: ast.name, source: source}

	stmts, err := p.program()
	if err != nil {
		return nil, err
	}

	ast.Statements = stmts

	ast.logger.TraceContext(ctx, "parse complete",
		slog.String("source", ast.name),
		slog.Int("statement_count", len(stmts)))

	return ast, nil
}

// ParseExpression parses source as a single expression. Surrounding newlines
// are allowed; anything after the expression is an error.
func ParseExpression(source string) (Expr, error) {
	p := &parser{tokens: Tokenize(source), source: source}

	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != EOF {
		return nil, p.fail(tok, EOF.String())
	}

	return e, nil
}

// parser is a recursive-descent parser over a token slice. Lookahead skips
// newlines; statement ends are checked against the raw stream.
type parser struct {
	tokens []Token
	pos    int
	name   string
	source string
}

func (p *parser) fail(tok Token, expected string) error {
	return &ParseError{
		Token:    tok,
		Expected: expected,
		Name:     p.name,
		Source:   p.source,
	}
}

// raw returns the token at the cursor without skipping newlines.
func (p *parser) raw() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}

	return p.tokens[len(p.tokens)-1]
}

// peekN returns the n-th token at or after the cursor, skipping newlines.
func (p *parser) peekN(n int) Token {
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].Kind == Newline {
			continue
		}

		if n == 0 {
			return p.tokens[i]
		}

		n--
	}

	return p.tokens[len(p.tokens)-1]
}

func (p *parser) peek() Token { return p.peekN(0) }

func (p *parser) skipNewlines() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == Newline {
		p.pos++
	}
}

// advance consumes and returns the next non-newline token. EOF is never
// consumed.
func (p *parser) advance() Token {
	p.skipNewlines()

	tok := p.raw()
	if tok.Kind != EOF {
		p.pos++
	}

	return tok
}

func (p *parser) match(kinds ...Kind) (Token, bool) {
	tok := p.peek()
	if slices.Contains(kinds, tok.Kind) {
		return p.advance(), true
	}

	return tok, false
}

func (p *parser) expect(kind Kind) (Token, error) {
	tok, ok := p.match(kind)
	if !ok {
		return tok, p.fail(tok, kind.String())
	}

	return tok, nil
}

// expectEnd requires the logical line to end here.
func (p *parser) expectEnd() error {
	tok := p.raw()
	if tok.Kind != Newline && tok.Kind != EOF {
		return p.fail(tok, "end of line")
	}

	p.skipNewlines()

	return nil
}

func (p *parser) program() ([]Stmt, error) {
	var stmts []Stmt

	p.skipNewlines()

	for p.peek().Kind != EOF {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)
	}

	return stmts, nil
}

// block parses statements until one of the terminators.
func (p *parser) block(expected string, terminators ...Kind) ([]Stmt, error) {
	stmts := []Stmt{}

	for {
		tok := p.peek()
		if slices.Contains(terminators, tok.Kind) {
			return stmts, nil
		}

		if tok.Kind == EOF {
			return nil, p.fail(tok, expected)
		}

		s, err := p.statement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)
	}
}

func (p *parser) statement() (Stmt, error) {
	tok := p.peek()

	switch tok.Kind {
	case If:
		return p.ifStatement()
	case Foreach:
		return p.foreachStatement()
	case Break:
		p.advance()

		return &BreakStmt{Pos: tok.Pos}, p.expectEnd()
	case Continue:
		p.advance()

		return &ContinueStmt{Pos: tok.Pos}, p.expectEnd()
	}

	e, err := p.expression()
	if err != nil {
		return nil, err
	}

	if id, ok := e.(*Ident); ok {
		if op, ok := p.match(Assign, AddAssign); ok {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}

			if err := p.expectEnd(); err != nil {
				return nil, err
			}

			if op.Kind == AddAssign {
				return &AddAssignStmt{Name: id.Name, Value: value, Pos: id.Pos}, nil
			}

			return &AssignStmt{Name: id.Name, Value: value, Pos: id.Pos}, nil
		}
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return &ExprStmt{Expr: e}, nil
}

func (p *parser) conditional() (Branch, error) {
	cond, err := p.expression()
	if err != nil {
		return Branch{}, err
	}

	if err := p.expectEnd(); err != nil {
		return Branch{}, err
	}

	body, err := p.block(Endif.String(), Elif, Else, Endif)
	if err != nil {
		return Branch{}, err
	}

	return Branch{Cond: cond, Body: body}, nil
}

func (p *parser) ifStatement() (Stmt, error) {
	tok := p.advance()

	s := &IfStmt{Pos: tok.Pos}

	for {
		branch, err := p.conditional()
		if err != nil {
			return nil, err
		}

		s.Branches = append(s.Branches, branch)

		if _, ok := p.match(Elif); !ok {
			break
		}
	}

	if _, ok := p.match(Else); ok {
		if err := p.expectEnd(); err != nil {
			return nil, err
		}

		body, err := p.block(Endif.String(), Endif)
		if err != nil {
			return nil, err
		}

		s.Else = body
	}

	if _, err := p.expect(Endif); err != nil {
		return nil, err
	}

	return s, p.expectEnd()
}

func (p *parser) foreachStatement() (Stmt, error) {
	tok := p.advance()

	name, err := p.expect(Identifier)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	body, err := p.block(Endforeach.String(), Endforeach)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Endforeach); err != nil {
		return nil, err
	}

	return &ForeachStmt{
		Var:      name.Text,
		Iterable: iterable,
		Body:     body,
		Pos:      tok.Pos,
	}, p.expectEnd()
}

func (p *parser) expression() (Expr, error) { return p.ternary() }

func (p *parser) ternary() (Expr, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}

	if _, ok := p.match(Question); !ok {
		return cond, nil
	}

	then, err := p.expression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	otherwise, err := p.expression()
	if err != nil {
		return nil, err
	}

	return &Ternary{
		Cond: cond, Then: then, Else: otherwise, Pos: cond.Position(),
	}, nil
}

// binary parses a left-associative chain of the given operators.
func (p *parser) binary(
	operand func() (Expr, error),
	kinds ...Kind,
) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.match(kinds...)
		if !ok {
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &BinaryOp{
			Op: binaryOperator[tok.Kind], Left: left, Right: right, Pos: tok.Pos,
		}
	}
}

func (p *parser) or() (Expr, error) { return p.binary(p.and, Or) }

func (p *parser) and() (Expr, error) { return p.binary(p.membership, And) }

// membership parses a single, non-associative in or not in test.
func (p *parser) membership() (Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}

	var op Operator

	tok := p.peek()

	switch {
	case tok.Kind == In:
		p.advance()

		op = OpIn
	case tok.Kind == Not && p.peekN(1).Kind == In:
		p.advance()
		p.advance()

		op = OpNotIn
	default:
		return left, nil
	}

	right, err := p.equality()
	if err != nil {
		return nil, err
	}

	return &BinaryOp{Op: op, Left: left, Right: right, Pos: tok.Pos}, nil
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, Eq, Ne)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.additive, Lt, Le, Gt, Ge)
}

func (p *parser) additive() (Expr, error) {
	return p.binary(p.multiplicative, Plus, Minus)
}

func (p *parser) multiplicative() (Expr, error) {
	return p.binary(p.unary, Star, Slash, Percent)
}

func (p *parser) unary() (Expr, error) {
	tok, ok := p.match(Not, Minus)
	if !ok {
		return p.postfix()
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}

	op := OpNeg
	if tok.Kind == Not {
		op = OpNot
	}

	return &UnaryOp{Op: op, Operand: operand, Pos: tok.Pos}, nil
}

func (p *parser) postfix() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch tok := p.peek(); tok.Kind {
		case LParen:
			id, ok := e.(*Ident)
			if !ok {
				return nil, p.fail(tok, "operator")
			}

			p.advance()

			args, kwargs, err := p.arguments()
			if err != nil {
				return nil, err
			}

			e = &FunctionCall{Name: id.Name, Args: args, Kwargs: kwargs, Pos: id.Pos}

		case LBracket:
			p.advance()

			index, err := p.expression()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(RBracket); err != nil {
				return nil, err
			}

			e = &Subscript{Target: e, Index: index, Pos: tok.Pos}

		case Dot:
			p.advance()

			name, err := p.expect(Identifier)
			if err != nil {
				return nil, err
			}

			call := &MethodCall{Receiver: e, Name: name.Text, Pos: name.Pos}

			if _, ok := p.match(LParen); ok {
				call.Args, call.Kwargs, err = p.arguments()
				if err != nil {
					return nil, err
				}
			}

			e = call

		default:
			return e, nil
		}
	}
}

func (p *parser) primary() (Expr, error) {
	tok := p.advance()

	switch tok.Kind {
	case String:
		return &StringLit{Value: tok.Text, Pos: tok.Pos}, nil
	case FString:
		return &FStringLit{Value: tok.Text, Pos: tok.Pos}, nil
	case Integer:
		return &IntegerLit{Value: tok.Int, Pos: tok.Pos}, nil
	case True, False:
		return &BooleanLit{Value: tok.Kind == True, Pos: tok.Pos}, nil
	case Identifier:
		return &Ident{Name: tok.Text, Pos: tok.Pos}, nil
	case LParen:
		e, err := p.expression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}

		return e, nil
	case LBracket:
		return p.array(tok)
	case LBrace:
		return p.dict(tok)
	}

	return nil, p.fail(tok, "expression")
}

// list parses comma-separated items up to and including the closing
// delimiter. A trailing comma is allowed.
func (p *parser) list(closing Kind, item func() error) error {
	if _, ok := p.match(closing); ok {
		return nil
	}

	for {
		if err := item(); err != nil {
			return err
		}

		if _, ok := p.match(Comma); !ok {
			_, err := p.expect(closing)

			return err
		}

		if _, ok := p.match(closing); ok {
			return nil
		}
	}
}

func (p *parser) array(open Token) (Expr, error) {
	arr := &ArrayLit{Elements: []Expr{}, Pos: open.Pos}

	err := p.list(RBracket, func() error {
		e, err := p.expression()
		if err != nil {
			return err
		}

		arr.Elements = append(arr.Elements, e)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return arr, nil
}

func (p *parser) dict(open Token) (Expr, error) {
	dict := &DictLit{Entries: []DictEntry{}, Pos: open.Pos}

	err := p.list(RBrace, func() error {
		key, ok := p.match(String, FString, Identifier)
		if !ok {
			return p.fail(key, "dict key")
		}

		if _, err := p.expect(Colon); err != nil {
			return err
		}

		value, err := p.expression()
		if err != nil {
			return err
		}

		i := slices.IndexFunc(dict.Entries, func(e DictEntry) bool {
			return e.Key == key.Text
		})
		if i >= 0 {
			dict.Entries[i].Value = value
		} else {
			dict.Entries = append(dict.Entries, DictEntry{Key: key.Text, Value: value})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return dict, nil
}

// arguments parses a call's arguments after the opening parenthesis.
// Positional arguments must precede named ones.
func (p *parser) arguments() ([]Expr, []Kwarg, error) {
	args := []Expr{}

	var kwargs []Kwarg

	err := p.list(RParen, func() error {
		if tok := p.peek(); tok.Kind == Identifier && p.peekN(1).Kind == Colon {
			p.advance()
			p.advance()

			value, err := p.expression()
			if err != nil {
				return err
			}

			i := slices.IndexFunc(kwargs, func(k Kwarg) bool { return k.Name == tok.Text })
			if i >= 0 {
				kwargs[i].Value = value
			} else {
				kwargs = append(kwargs, Kwarg{Name: tok.Text, Value: value})
			}

			return nil
		}

		if len(kwargs) > 0 {
			return p.fail(p.peek(), "keyword argument")
		}

		value, err := p.expression()
		if err != nil {
			return err
		}

		args = append(args, value)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return args, kwargs, nil
}
