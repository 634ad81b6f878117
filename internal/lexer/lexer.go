// Package lexer turns PHP source into a lossless token buffer and back.
//
// Every byte of the input, whitespace and comments included, ends up in
// exactly one token, so Render(Tokenize(src)) == src for any input the lexer
// accepts.
package lexer

import (
	"fmt"
	"strings"

	"github.com/gnolang/condfix/internal/token"
)

const openTag = "<?php"

// fragmentPrologue is prepended to synthesized code so it lexes in PHP mode.
const fragmentPrologue = openTag + " "

// Lexer tokenizes PHP code. It holds no state between calls.
type Lexer struct{}

func New() *Lexer {
	return &Lexer{}
}

// Tokenize performs lexical analysis on src.
func (*Lexer) Tokenize(src string) (*token.Buffer, error) {
	return Tokenize(src)
}

// Fragment tokenizes a piece of PHP code that has no open tag, such as the
// synthesized text "true === ", and returns tokens ready for insertion.
func (*Lexer) Fragment(code string) (*token.Buffer, error) {
	return Fragment(code)
}

// Tokenize performs lexical analysis on src.
func Tokenize(src string) (*token.Buffer, error) {
	l := &lexer{src: src, line: 1, col: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return token.NewBuffer(l.tokens), nil
}

// Render concatenates the buffer back to source text.
func Render(b *token.Buffer) string {
	return b.Code()
}

// Fragment tokenizes code as if it followed an open tag, then strips the
// open tag so only the tokens of code remain. Positions are reset since the
// tokens do not come from the file being fixed.
func Fragment(code string) (*token.Buffer, error) {
	buf, err := Tokenize(fragmentPrologue + code)
	if err != nil {
		return nil, fmt.Errorf("tokenizing fragment %q: %w", code, err)
	}

	toks := buf.Tokens()
	if len(toks) == 0 || toks[0].Kind != token.KindOpenTag {
		return nil, fmt.Errorf("tokenizing fragment %q: missing prologue", code)
	}

	out := make([]token.Token, 0, len(toks)-1)
	for _, t := range toks[1:] {
		out = append(out, token.New(t.Kind, t.Text))
	}
	return token.NewBuffer(out), nil
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int

	tokens []token.Token
	// braces records, for every open `{`, whether it opened a dynamic
	// property name (`$a->{...}`).
	braces []bool
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		if err := l.lexHTML(); err != nil {
			return err
		}
		if l.pos >= len(l.src) {
			break
		}
		if err := l.lexPHP(); err != nil {
			return err
		}
	}
	return nil
}

// emit appends a token spanning the next n bytes and advances past them.
func (l *lexer) emit(kind token.Kind, n int) {
	text := l.src[l.pos : l.pos+n]
	l.tokens = append(l.tokens, token.Token{Kind: kind, Text: text, Line: l.line, Col: l.col})
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	l.pos += n
}

func (l *lexer) hasPrefix(prefix string) bool {
	return strings.HasPrefix(l.src[l.pos:], prefix)
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// lexHTML consumes inline HTML up to and including the next open tag.
func (l *lexer) lexHTML() error {
	rest := l.src[l.pos:]
	idx, tagLen, kind := findOpenTag(rest)
	if idx < 0 {
		l.emit(token.KindInlineHTML, len(rest))
		return nil
	}
	if idx > 0 {
		l.emit(token.KindInlineHTML, idx)
	}

	n := tagLen
	if kind == token.KindOpenTag {
		// the open tag owns a single trailing whitespace character
		switch {
		case l.pos+n+1 < len(l.src) && l.src[l.pos+n] == '\r' && l.src[l.pos+n+1] == '\n':
			n += 2
		case l.pos+n < len(l.src) && isSpace(l.src[l.pos+n]):
			n++
		}
	}
	l.emit(kind, n)
	return nil
}

func findOpenTag(s string) (int, int, token.Kind) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '<' || s[i+1] != '?' {
			continue
		}
		if strings.HasPrefix(s[i:], "<?=") {
			return i, 3, token.KindOpenTagWithEcho
		}
		if len(s) >= i+len(openTag) && strings.EqualFold(s[i:i+len(openTag)], openTag) {
			end := i + len(openTag)
			if end == len(s) || isSpace(s[end]) {
				return i, len(openTag), token.KindOpenTag
			}
		}
	}
	return -1, 0, 0
}

// lexPHP consumes PHP code until a close tag or the end of input.
func (l *lexer) lexPHP() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case l.hasPrefix("?>"):
			n := 2
			if l.peek(2) == '\n' {
				n++
			} else if l.peek(2) == '\r' && l.peek(3) == '\n' {
				n += 2
			}
			l.emit(token.KindCloseTag, n)
			return nil

		case isSpace(c):
			n := 0
			for l.pos+n < len(l.src) && isSpace(l.src[l.pos+n]) {
				n++
			}
			l.emit(token.KindWhitespace, n)

		case l.hasPrefix("#["):
			l.emit(token.KindAttributeOpen, 2)

		case c == '#' || l.hasPrefix("//"):
			l.emit(token.KindComment, l.lineCommentLen())

		case l.hasPrefix("/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return l.errorf("unterminated comment")
			}
			kind := token.KindComment
			if l.hasPrefix("/**") && isSpace(l.peek(3)) {
				kind = token.KindDocComment
			}
			l.emit(kind, end+4)

		case c == '$' && isIdentStart(l.peek(1)):
			l.emit(token.KindVariable, 1+l.identLen(1))

		case isIdentStart(c):
			n := l.identLen(0)
			l.emit(l.classifyWord(l.src[l.pos:l.pos+n]), n)

		case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
			l.emit(token.KindNumber, l.numberLen())

		case c == '\'':
			n, err := l.quotedLen('\'', false)
			if err != nil {
				return err
			}
			l.emit(token.KindConstantString, n)

		case c == '"' || c == '`':
			n, err := l.quotedLen(c, true)
			if err != nil {
				return err
			}
			l.emit(token.KindConstantString, n)

		case l.hasPrefix("<<<"):
			n, err := l.heredocLen()
			if err != nil {
				return err
			}
			l.emit(token.KindHeredoc, n)

		case c == '(' && l.castLen() > 0:
			l.emit(token.KindCast, l.castLen())

		case c == '{':
			dynamic := l.prevMeaningfulIs(token.KindObjectOperator, token.KindNullsafeObjectOperator)
			l.braces = append(l.braces, dynamic)
			if dynamic {
				l.emit(token.KindDynamicPropBraceOpen, 1)
			} else {
				l.emit(token.KindChar, 1)
			}

		case c == '}':
			dynamic := false
			if len(l.braces) > 0 {
				dynamic = l.braces[len(l.braces)-1]
				l.braces = l.braces[:len(l.braces)-1]
			}
			if dynamic {
				l.emit(token.KindDynamicPropBraceClose, 1)
			} else {
				l.emit(token.KindChar, 1)
			}

		default:
			if kind, n, ok := matchOperator(l.src[l.pos:]); ok {
				l.emit(kind, n)
				continue
			}
			if c == '\\' {
				l.emit(token.KindNsSeparator, 1)
				continue
			}
			if strings.IndexByte(singleChars, c) < 0 {
				return l.errorf("unexpected character %q", c)
			}
			l.emit(token.KindChar, 1)
		}
	}
	return nil
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d col %d: %s: %w", l.line, l.col, fmt.Sprintf(format, args...), token.ErrMalformedInput)
}

// lineCommentLen measures a `//` or `#` comment. The comment stops before
// the newline or a close tag.
func (l *lexer) lineCommentLen() int {
	n := 0
	for l.pos+n < len(l.src) {
		c := l.src[l.pos+n]
		if c == '\n' || c == '\r' {
			break
		}
		if c == '?' && l.pos+n+1 < len(l.src) && l.src[l.pos+n+1] == '>' {
			break
		}
		n++
	}
	return n
}

func (l *lexer) identLen(offset int) int {
	n := offset
	for l.pos+n < len(l.src) && isIdentChar(l.src[l.pos+n]) {
		n++
	}
	return n - offset
}

func (l *lexer) numberLen() int {
	s := l.src[l.pos:]
	n := 0
	if len(s) > 1 && s[0] == '0' && strings.ContainsRune("xXbBoO", rune(s[1])) {
		n = 2
		for n < len(s) && (isHexDigit(s[n]) || s[n] == '_') {
			n++
		}
		return n
	}
	for n < len(s) && (isDigit(s[n]) || s[n] == '_') {
		n++
	}
	if n < len(s) && s[n] == '.' && (n+1 >= len(s) || s[n+1] != '.') {
		n++
		for n < len(s) && (isDigit(s[n]) || s[n] == '_') {
			n++
		}
	}
	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}
		if m < len(s) && isDigit(s[m]) {
			n = m
			for n < len(s) && isDigit(s[n]) {
				n++
			}
		}
	}
	return n
}

// quotedLen measures a quoted string starting at the current position.
// Interpolating strings may embed `{$expr}` sections holding nested quotes.
func (l *lexer) quotedLen(quote byte, interpolating bool) (int, error) {
	s := l.src[l.pos:]
	for n := 1; n < len(s); n++ {
		switch c := s[n]; {
		case c == '\\':
			n++
		case c == quote:
			return n + 1, nil
		case interpolating && c == '{' && n+1 < len(s) && s[n+1] == '$':
			end, err := embeddedExprEnd(s, n)
			if err != nil {
				return 0, l.errorf("unterminated string interpolation")
			}
			n = end
		}
	}
	return 0, l.errorf("unterminated string")
}

// embeddedExprEnd returns the index of the `}` closing the interpolation
// that opens at s[start].
func embeddedExprEnd(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		case '\'', '"':
			q := s[i]
			i++
			for i < len(s) && s[i] != q {
				if s[i] == '\\' {
					i++
				}
				i++
			}
		}
	}
	return 0, fmt.Errorf("unterminated interpolation")
}

func (l *lexer) heredocLen() (int, error) {
	s := l.src[l.pos:]
	n := 3
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	quote := byte(0)
	if n < len(s) && (s[n] == '\'' || s[n] == '"') {
		quote = s[n]
		n++
	}
	start := n
	for n < len(s) && isIdentChar(s[n]) {
		n++
	}
	label := s[start:n]
	if label == "" {
		return 0, l.errorf("invalid heredoc label")
	}
	if quote != 0 {
		if n >= len(s) || s[n] != quote {
			return 0, l.errorf("unterminated heredoc label")
		}
		n++
	}

	// the closing label is the first line whose content, after optional
	// indentation, starts with the label not followed by an identifier char
	for {
		nl := strings.IndexByte(s[n:], '\n')
		if nl < 0 {
			return 0, l.errorf("unterminated heredoc %s", label)
		}
		n += nl + 1
		m := n
		for m < len(s) && (s[m] == ' ' || s[m] == '\t') {
			m++
		}
		if strings.HasPrefix(s[m:], label) {
			end := m + len(label)
			if end == len(s) || !isIdentChar(s[end]) {
				return end, nil
			}
		}
	}
}

var castTypes = map[string]bool{
	"int": true, "integer": true, "bool": true, "boolean": true,
	"float": true, "double": true, "real": true, "string": true,
	"binary": true, "array": true, "object": true, "unset": true,
}

// castLen returns the length of a cast such as `(int)` at the current
// position, or zero.
func (l *lexer) castLen() int {
	s := l.src[l.pos:]
	n := 1
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	start := n
	for n < len(s) && isIdentChar(s[n]) {
		n++
	}
	if !castTypes[strings.ToLower(s[start:n])] {
		return 0
	}
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	if n >= len(s) || s[n] != ')' {
		return 0
	}
	return n + 1
}

func (l *lexer) prevMeaningfulIs(kinds ...token.Kind) bool {
	for i := len(l.tokens) - 1; i >= 0; i-- {
		t := l.tokens[i]
		if !t.IsMeaningful() {
			continue
		}
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
	return false
}

// classifyWord maps an identifier to its keyword kind. Names used as
// members, constants or declarations stay plain identifiers.
func (l *lexer) classifyWord(word string) token.Kind {
	kind, ok := keywords[strings.ToLower(word)]
	if !ok {
		return token.KindString
	}
	if l.prevMeaningfulIs(token.KindObjectOperator, token.KindNullsafeObjectOperator, token.KindDoubleColon, token.KindFunction) {
		return token.KindString
	}
	return kind
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
