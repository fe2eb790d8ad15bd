package nix

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Tokenize splits src into tokens. It never fails: bytes it does not
// recognize become single-rune [KindOther] tokens, and literals or comments
// missing their closing delimiter extend to end of input and are flagged
// [Token.Unterminated].
//
// The concatenated Text of the returned tokens is always equal to src.
func Tokenize(src string) []Token {
	toks := make([]Token, 0, len(src)/4+1)

	for tok := range Lex(src) {
		toks = append(toks, tok)
	}

	return toks
}

// Lex returns an iterator over the tokens of src in source order.
func Lex(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		lx := lexer{src: src}

		for lx.pos < len(src) {
			if !yield(lx.next()) {
				return
			}
		}
	}
}

type lexer struct {
	src string
	pos int
}

// emit returns the token spanning from start to the current position.
func (lx *lexer) emit(kind Kind, start int, ok bool) Token {
	return Token{
		Kind:         kind,
		Span:         Span{Start: start, End: lx.pos},
		Text:         lx.src[start:lx.pos],
		Unterminated: !ok,
	}
}

func (lx *lexer) has(prefix string) bool {
	return strings.HasPrefix(lx.src[lx.pos:], prefix)
}

// next scans one token starting at lx.pos. The caller guarantees that input
// remains.
func (lx *lexer) next() Token {
	start := lx.pos
	c := lx.src[lx.pos]

	switch {
	case isSpace(c):
		for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
			lx.pos++
		}

		return lx.emit(KindWhitespace, start, true)

	case c == '#':
		if i := strings.IndexByte(lx.src[lx.pos:], '\n'); i >= 0 {
			lx.pos += i
		} else {
			lx.pos = len(lx.src)
		}

		return lx.emit(KindComment, start, true)

	case lx.has("/*"):
		if i := strings.Index(lx.src[lx.pos+2:], "*/"); i >= 0 {
			lx.pos += i + 4

			return lx.emit(KindComment, start, true)
		}

		lx.pos = len(lx.src)

		return lx.emit(KindComment, start, false)

	case c == '"', lx.has("''"), lx.has("${"):
		kind := KindString

		switch c {
		case '\'':
			kind = KindIndString
		case '$':
			kind = KindInterp
		}

		end, ok := scanQuoted(lx.src, lx.pos)
		lx.pos = end

		return lx.emit(kind, start, ok)
	}

	if n := scanURI(lx.src[lx.pos:]); n > 0 {
		lx.pos += n

		return lx.emit(KindURI, start, true)
	}

	if n := scanPath(lx.src[lx.pos:]); n > 0 {
		lx.pos += n

		return lx.emit(KindPath, start, true)
	}

	switch {
	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentContinue(lx.src[lx.pos]) {
			lx.pos++
		}

		tok := lx.emit(KindIdent, start, true)

		switch {
		case tok.Text == "true", tok.Text == "false":
			tok.Kind = KindBool
		case tok.Text == "null":
			tok.Kind = KindNull
		case keywords[tok.Text]:
			tok.Kind = KindKeyword
		}

		return tok

	case isDigit(c):
		lx.scanNumber()

		return lx.emit(KindNumber, start, true)

	case lx.has("..."):
		lx.pos += 3

		return lx.emit(KindEllipsis, start, true)
	}

	for _, op := range operators {
		if lx.has(op) {
			lx.pos += len(op)

			return lx.emit(KindOperator, start, true)
		}
	}

	if kind, ok := punctuation[c]; ok {
		lx.pos++

		return lx.emit(kind, start, true)
	}

	_, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size

	return lx.emit(KindOther, start, true)
}

func (lx *lexer) scanNumber() {
	digits := func() {
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}

	digits()

	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' &&
		isDigit(lx.src[lx.pos+1]) {
		lx.pos++
		digits()
	}

	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		i := lx.pos + 1
		if i < len(lx.src) && (lx.src[i] == '+' || lx.src[i] == '-') {
			i++
		}

		if i < len(lx.src) && isDigit(lx.src[i]) {
			lx.pos = i
			digits()
		}
	}
}

// operators are matched longest first.
var operators = []string{
	"==", "!=", "<=", ">=", "->", "//", "++", "&&", "||",
	"+", "-", "*", "/", "<", ">", "!",
}

var punctuation = map[byte]Kind{
	'{': KindLBrace,
	'}': KindRBrace,
	'[': KindLBracket,
	']': KindRBracket,
	'(': KindLParen,
	')': KindRParen,
	'=': KindAssign,
	';': KindSemi,
	':': KindColon,
	'.': KindDot,
	',': KindComma,
	'@': KindAt,
	'?': KindQuestion,
}

// quote frames tracked by scanQuoted.
const (
	frameString   = '"'
	frameIndented = '\''
	frameInterp   = '{'
)

type frame struct {
	kind  byte
	depth int
}

// scanQuoted returns the offset just past the string, indented string or
// interpolation starting at src[i], following nested interpolations and the
// strings inside them. It reports false if src ends first.
func scanQuoted(src string, i int) (int, bool) {
	var stack []frame

	switch {
	case src[i] == '"':
		stack = append(stack, frame{kind: frameString})
		i++
	case strings.HasPrefix(src[i:], "''"):
		stack = append(stack, frame{kind: frameIndented})
		i += 2
	default: // "${"
		stack = append(stack, frame{kind: frameInterp})
		i += 2
	}

	for i < len(src) {
		top := &stack[len(stack)-1]
		rest := src[i:]

		switch top.kind {
		case frameString:
			switch {
			case rest[0] == '\\':
				i += 2
			case rest[0] == '"':
				stack = stack[:len(stack)-1]
				i++
			case strings.HasPrefix(rest, "$${"):
				i += 3
			case strings.HasPrefix(rest, "${"):
				stack = append(stack, frame{kind: frameInterp})
				i += 2
			default:
				i++
			}

		case frameIndented:
			switch {
			case strings.HasPrefix(rest, "'''"), strings.HasPrefix(rest, "''$"):
				i += 3
			case strings.HasPrefix(rest, "''\\"):
				i += 4
			case strings.HasPrefix(rest, "''"):
				stack = stack[:len(stack)-1]
				i += 2
			case strings.HasPrefix(rest, "$${"):
				i += 3
			case strings.HasPrefix(rest, "${"):
				stack = append(stack, frame{kind: frameInterp})
				i += 2
			default:
				i++
			}

		case frameInterp:
			switch {
			case rest[0] == '{':
				top.depth++
				i++
			case rest[0] == '}':
				if top.depth == 0 {
					stack = stack[:len(stack)-1]
				} else {
					top.depth--
				}

				i++
			case rest[0] == '"':
				stack = append(stack, frame{kind: frameString})
				i++
			case strings.HasPrefix(rest, "''"):
				stack = append(stack, frame{kind: frameIndented})
				i += 2
			case rest[0] == '#':
				if j := strings.IndexByte(rest, '\n'); j >= 0 {
					i += j
				} else {
					i = len(src)
				}
			case strings.HasPrefix(rest, "/*"):
				j := strings.Index(rest[2:], "*/")
				if j < 0 {
					return len(src), false
				}

				i += j + 4
			default:
				i++
			}
		}

		if len(stack) == 0 {
			return min(i, len(src)), true
		}
	}

	return len(src), false
}

// scanPath returns the length of a path literal at the start of s, or 0.
// Recognized forms are relative and absolute paths containing at least one
// slash (./a, ../a, a/b, /a), home paths (~/a) and search paths (<a/b>).
func scanPath(s string) int {
	if s == "" {
		return 0
	}

	if s[0] == '<' {
		n := 1
		for n < len(s) && (isPathChar(s[n]) || s[n] == '/') {
			n++
		}

		if n > 1 && n < len(s) && s[n] == '>' && s[1] != '/' && s[n-1] != '/' {
			return n + 1
		}

		return 0
	}

	n := 0
	if s[0] == '~' {
		n = 1
		if len(s) < 2 || s[1] != '/' {
			return 0
		}
	} else {
		for n < len(s) && isPathChar(s[n]) {
			n++
		}
	}

	segments := 0

	for n+1 < len(s) && s[n] == '/' && isPathChar(s[n+1]) {
		n++
		for n < len(s) && isPathChar(s[n]) {
			n++
		}

		segments++
	}

	if segments == 0 {
		return 0
	}

	return n
}

// scanURI returns the length of a URI literal (scheme:rest) at the start of
// s, or 0.
func scanURI(s string) int {
	if s == "" || !isAlpha(s[0]) {
		return 0
	}

	n := 1
	for n < len(s) && (isAlpha(s[n]) || isDigit(s[n]) ||
		s[n] == '+' || s[n] == '-' || s[n] == '.') {
		n++
	}

	if n >= len(s) || s[n] != ':' {
		return 0
	}

	n++
	rest := n

	for n < len(s) && strings.IndexByte(uriChars, s[n]) >= 0 {
		n++
	}

	if n == rest {
		return 0
	}

	return n
}

const uriChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789%/?:@&=+$,-_.!~*'"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool { return isAlpha(c) || c == '_' }

func isIdentContinue(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '\'' || c == '-'
}

func isPathChar(c byte) bool {
	return isAlpha(c) || isDigit(c) ||
		c == '.' || c == '_' || c == '-' || c == '+'
}
