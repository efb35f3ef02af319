package lang

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// lexer converts source text into tokens. It never fails: characters that
// cannot start a token are skipped.
type lexer struct {
	input  []rune
	pos    int // index into input
	offset int // byte offset of input[pos]
	line   int
	col    int
}

func newLexer(source string) *lexer {
	return &lexer{
		input: []rune(source),
		line:  1,
		col:   1,
	}
}

// Tokenize returns the tokens of source. The result always ends with an
// [EOF] token.
func Tokenize(source string) []Token {
	return newLexer(source).tokenize()
}

func (l *lexer) position() Position {
	return Position{Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *lexer) peek() (rune, bool) { return l.peekAt(0) }

func (l *lexer) peekAt(n int) (rune, bool) {
	if l.pos+n >= len(l.input) {
		return 0, false
	}

	return l.input[l.pos+n], true
}

func (l *lexer) next() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}

	r := l.input[l.pos]
	l.pos++
	l.offset += utf8.RuneLen(r)

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r, true
}

func (l *lexer) is(r rune) bool {
	c, ok := l.peek()

	return ok && c == r
}

func (l *lexer) isAt(n int, r rune) bool {
	c, ok := l.peekAt(n)

	return ok && c == r
}

func (l *lexer) isQuoteAt(n int) bool {
	return l.isAt(n, '\'') || l.isAt(n, '"')
}

func (l *lexer) skipBlank() {
	for l.is(' ') || l.is('\t') || l.is('\r') {
		l.next()
	}
}

func (l *lexer) tokenize() []Token {
	var tokens []Token

	emit := func(pos Position, kind Kind) {
		tokens = append(tokens, Token{Kind: kind, Pos: pos})
	}

	for {
		l.skipBlank()

		pos := l.position()

		ch, ok := l.peek()
		if !ok {
			emit(pos, EOF)

			return tokens
		}

		switch {
		case ch == '\n':
			for l.is('\n') {
				l.next()
			}

			emit(pos, Newline)

		case ch == '#':
			for {
				c, ok := l.next()
				if !ok || c == '\n' {
					break
				}
			}

			emit(pos, Newline)

		case ch == '\'' || ch == '"':
			var text string
			if l.isAt(1, ch) && l.isAt(2, ch) {
				l.next()
				l.next()
				l.next()

				text = l.readMultiline(ch)
			} else {
				l.next()

				text = l.readString(ch)
			}

			tokens = append(tokens, Token{Kind: String, Text: text, Pos: pos})

		case ch == 'f' && l.isQuoteAt(1):
			l.next()
			quote, _ := l.next()
			tokens = append(tokens, Token{
				Kind: FString, Text: l.readString(quote), Pos: pos,
			})

		case ch == 'r' && l.isQuoteAt(1):
			l.next()
			quote, _ := l.next()
			tokens = append(tokens, Token{
				Kind: String, Text: l.readRaw(quote), Pos: pos,
			})

		case ch >= '0' && ch <= '9':
			tokens = append(tokens, Token{
				Kind: Integer, Int: l.readNumber(), Pos: pos,
			})

		case ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
			name := l.readIdentifier()
			if kind, ok := keywords[name]; ok {
				emit(pos, kind)
			} else {
				tokens = append(tokens, Token{Kind: Identifier, Text: name, Pos: pos})
			}

		default:
			l.next()

			if kind, ok := l.operator(ch); ok {
				emit(pos, kind)
			}
		}
	}
}

// operator classifies the operator or delimiter starting with ch, which has
// already been consumed.
func (l *lexer) operator(ch rune) (Kind, bool) {
	follow := func(second rune, pair, single Kind) Kind {
		if l.is(second) {
			l.next()

			return pair
		}

		return single
	}

	switch ch {
	case '+':
		return follow('=', AddAssign, Plus), true
	case '-':
		return Minus, true
	case '*':
		return Star, true
	case '/':
		return Slash, true
	case '%':
		return Percent, true
	case '=':
		return follow('=', Eq, Assign), true
	case '!':
		if l.is('=') {
			l.next()

			return Ne, true
		}

		return 0, false
	case '<':
		return follow('=', Le, Lt), true
	case '>':
		return follow('=', Ge, Gt), true
	case '?':
		return Question, true
	case ':':
		return Colon, true
	case '(':
		return LParen, true
	case ')':
		return RParen, true
	case '[':
		return LBracket, true
	case ']':
		return RBracket, true
	case '{':
		return LBrace, true
	case '}':
		return RBrace, true
	case ',':
		return Comma, true
	case '.':
		return Dot, true
	}

	return 0, false
}

func (l *lexer) readIdentifier() string {
	var sb strings.Builder

	for {
		c, ok := l.peek()
		if !ok || !(c == '_' || unicode.IsLetter(c) || unicode.IsNumber(c)) {
			break
		}

		l.next()
		sb.WriteRune(c)
	}

	return sb.String()
}

// readDigits consumes digits accepted by valid, dropping '_' separators.
func (l *lexer) readDigits(valid func(rune) bool) string {
	var sb strings.Builder

	for {
		c, ok := l.peek()
		if !ok || (c != '_' && !valid(c)) {
			break
		}

		l.next()

		if c != '_' {
			sb.WriteRune(c)
		}
	}

	return sb.String()
}

func isDecimal(r rune) bool { return r >= '0' && r <= '9' }
func isOctal(r rune) bool   { return r >= '0' && r <= '7' }
func isBinary(r rune) bool  { return r == '0' || r == '1' }

func isHex(r rune) bool {
	return isDecimal(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// readNumber reads an integer literal. Literals that do not fit in 64 bits
// or have no digits after a radix prefix evaluate to 0.
func (l *lexer) readNumber() int64 {
	parse := func(s string, base int) int64 {
		n, err := strconv.ParseInt(s, base, 64)
		if err != nil {
			return 0
		}

		return n
	}

	var prefix string

	if l.is('0') {
		l.next()

		prefix = "0"

		c, _ := l.peek()
		switch c {
		case 'x', 'X':
			l.next()

			return parse(l.readDigits(isHex), 16)
		case 'o', 'O':
			l.next()

			return parse(l.readDigits(isOctal), 8)
		case 'b', 'B':
			l.next()

			return parse(l.readDigits(isBinary), 2)
		}
	}

	return parse(prefix+l.readDigits(isDecimal), 10)
}

// readHex consumes up to n hexadecimal digits.
func (l *lexer) readHex(n int) string {
	var sb strings.Builder

	for range n {
		c, ok := l.peek()
		if !ok || !isHex(c) {
			break
		}

		l.next()
		sb.WriteRune(c)
	}

	return sb.String()
}

// readString reads a single-line string body after its opening quote,
// processing escapes. An unterminated string ends at EOF.
func (l *lexer) readString(quote rune) string {
	var sb strings.Builder

	for {
		c, ok := l.next()
		if !ok || c == quote {
			return sb.String()
		}

		if c != '\\' {
			sb.WriteRune(c)

			continue
		}

		c, ok = l.next()
		if !ok {
			return sb.String()
		}

		sb.WriteRune(l.escape(c))
	}
}

// escape decodes the escape sequence introduced by c. Invalid numeric
// escapes yield c itself.
func (l *lexer) escape(c rune) rune {
	codePoint := func(digits string, bits int) rune {
		n, err := strconv.ParseUint(digits, 16, bits)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return c
		}

		return rune(n)
	}

	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case 'x':
		return codePoint(l.readHex(2), 8)
	case 'u':
		return codePoint(l.readHex(4), 32)
	case 'U':
		return codePoint(l.readHex(8), 32)
	}

	if isDecimal(c) {
		digits := string(c)

		for range 2 {
			d, ok := l.peek()
			if !ok || !isOctal(d) {
				break
			}

			l.next()

			digits += string(d)
		}

		n, err := strconv.ParseUint(digits, 8, 8)
		if err != nil {
			return c
		}

		return rune(n)
	}

	// \\ \' \" and unknown escapes keep the escaped character.
	return c
}

// readRaw reads a raw string body: no escapes, ends at the quote.
func (l *lexer) readRaw(quote rune) string {
	var sb strings.Builder

	for {
		c, ok := l.next()
		if !ok || c == quote {
			return sb.String()
		}

		sb.WriteRune(c)
	}
}

// readMultiline reads a triple-quoted string body. Only line continuations
// are processed: a backslash before a newline removes both, along with the
// indentation of the next line.
func (l *lexer) readMultiline(quote rune) string {
	var sb strings.Builder

	quotes := 0

	for {
		c, ok := l.next()
		if !ok {
			break
		}

		if c == quote {
			quotes++
			if quotes == 3 {
				return sb.String()
			}

			continue
		}

		for ; quotes > 0; quotes-- {
			sb.WriteRune(quote)
		}

		if c == '\\' && l.is('\n') {
			l.next()

			for l.is(' ') || l.is('\t') {
				l.next()
			}

			continue
		}

		sb.WriteRune(c)
	}

	for ; quotes > 0; quotes-- {
		sb.WriteRune(quote)
	}

	return sb.String()
}
