package nix

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind classifies a [Token].
type Kind int

const (
	KindOther      Kind = iota // other
	KindWhitespace             // whitespace
	KindComment                // comment
	KindIdent                  // identifier
	KindKeyword                // keyword
	KindBool                   // bool
	KindNull                   // null
	KindNumber                 // number
	KindString                 // string
	KindIndString              // indented string
	KindInterp                 // interpolation
	KindPath                   // path
	KindURI                    // uri
	KindLBrace                 // {
	KindRBrace                 // }
	KindLBracket               // [
	KindRBracket               // ]
	KindLParen                 // (
	KindRParen                 // )
	KindAssign                 // =
	KindSemi                   // ;
	KindColon                  // :
	KindDot                    // .
	KindComma                  // ,
	KindAt                     // @
	KindQuestion               // ?
	KindEllipsis               // ...
	KindOperator               // operator
	KindEOF                    // end of input
)

var kindNames = [...]string{
	KindOther:      "other",
	KindWhitespace: "whitespace",
	KindComment:    "comment",
	KindIdent:      "identifier",
	KindKeyword:    "keyword",
	KindBool:       "bool",
	KindNull:       "null",
	KindNumber:     "number",
	KindString:     "string",
	KindIndString:  "indented string",
	KindInterp:     "interpolation",
	KindPath:       "path",
	KindURI:        "uri",
	KindLBrace:     "{",
	KindRBrace:     "}",
	KindLBracket:   "[",
	KindRBracket:   "]",
	KindLParen:     "(",
	KindRParen:     ")",
	KindAssign:     "=",
	KindSemi:       ";",
	KindColon:      ":",
	KindDot:        ".",
	KindComma:      ",",
	KindAt:         "@",
	KindQuestion:   "?",
	KindEllipsis:   "...",
	KindOperator:   "operator",
	KindEOF:        "end of input",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindNames[k]
}

// keywords are the reserved words of the expression language.
// true, false and null are lexed separately as literals.
var keywords = map[string]bool{
	"assert":  true,
	"else":    true,
	"if":      true,
	"in":      true,
	"inherit": true,
	"let":     true,
	"or":      true,
	"rec":     true,
	"then":    true,
	"with":    true,
}

// Token is a single lexeme and the span it occupies in the source.
type Token struct {
	Text string
	Span Span
	Kind Kind

	// Unterminated is set on strings, interpolations and block comments that
	// reached end of input before their closing delimiter.
	Unterminated bool
}

// IsTrivia reports whether t carries no syntax (whitespace or comment).
func (t Token) IsTrivia() bool {
	return t.Kind == KindWhitespace || t.Kind == KindComment
}

// Is reports whether t is the keyword or identifier word.
func (t Token) Is(word string) bool {
	return (t.Kind == KindKeyword || t.Kind == KindIdent) && t.Text == word
}

// Unquote decodes a double-quoted string token.
// It reports false for any other token kind and for strings containing an
// interpolation, whose value cannot be known without evaluation.
func (t Token) Unquote() (string, bool) {
	if t.Kind != KindString || t.Unterminated || len(t.Text) < 2 {
		return "", false
	}

	body := t.Text[1 : len(t.Text)-1]

	var b strings.Builder

	b.Grow(len(body))

	for i := 0; i < len(body); {
		switch {
		case body[i] == '\\' && i+1 < len(body):
			switch c := body[i+1]; c {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				_, size := utf8.DecodeRuneInString(body[i+1:])
				b.WriteString(body[i+1 : i+1+size])
				i += size - 1
			}

			i += 2

		case strings.HasPrefix(body[i:], "$${"):
			b.WriteString("${")

			i += 3

		case strings.HasPrefix(body[i:], "${"):
			return "", false

		default:
			b.WriteByte(body[i])

			i++
		}
	}

	return b.String(), true
}
