package nix

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type lexeme struct {
	Kind Kind
	Text string
}

func significant(src string) []lexeme {
	var out []lexeme

	for tok := range Lex(src) {
		if !tok.IsTrivia() {
			out = append(out, lexeme{tok.Kind, tok.Text})
		}
	}

	return out
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []lexeme
	}{
		{
			name: "binding",
			src:  `a.b = "x";`,
			want: []lexeme{
				{KindIdent, "a"}, {KindDot, "."}, {KindIdent, "b"},
				{KindAssign, "="}, {KindString, `"x"`}, {KindSemi, ";"},
			},
		},
		{
			name: "identifier with quote and dash",
			src:  `foo-bar' baz_1`,
			want: []lexeme{{KindIdent, "foo-bar'"}, {KindIdent, "baz_1"}},
		},
		{
			name: "literals and keywords",
			src:  `true false null rec let in or`,
			want: []lexeme{
				{KindBool, "true"}, {KindBool, "false"}, {KindNull, "null"},
				{KindKeyword, "rec"}, {KindKeyword, "let"}, {KindKeyword, "in"},
				{KindKeyword, "or"},
			},
		},
		{
			name: "numbers",
			src:  `42 1.5 2e10 3.0E-2`,
			want: []lexeme{
				{KindNumber, "42"}, {KindNumber, "1.5"},
				{KindNumber, "2e10"}, {KindNumber, "3.0E-2"},
			},
		},
		{
			name: "relative path",
			src:  `./hardware-configuration.nix`,
			want: []lexeme{{KindPath, "./hardware-configuration.nix"}},
		},
		{
			name: "paths",
			src:  `../a/b /etc/nixos a/b ~/src <nixpkgs> <nixpkgs/lib>`,
			want: []lexeme{
				{KindPath, "../a/b"}, {KindPath, "/etc/nixos"},
				{KindPath, "a/b"}, {KindPath, "~/src"},
				{KindPath, "<nixpkgs>"}, {KindPath, "<nixpkgs/lib>"},
			},
		},
		{
			name: "uri",
			src:  `https://example.com/x?y=1`,
			want: []lexeme{{KindURI, "https://example.com/x?y=1"}},
		},
		{
			name: "lambda is not a uri",
			src:  `pkgs: pkgs`,
			want: []lexeme{
				{KindIdent, "pkgs"}, {KindColon, ":"}, {KindIdent, "pkgs"},
			},
		},
		{
			name: "interpolation with nested string",
			src:  `"a ${b + "}"} c"`,
			want: []lexeme{{KindString, `"a ${b + "}"} c"`}},
		},
		{
			name: "escaped quote",
			src:  `"say \"hi\"" x`,
			want: []lexeme{{KindString, `"say \"hi\""`}, {KindIdent, "x"}},
		},
		{
			name: "indented string escapes",
			src:  `''a ''${x} ''' b'' y`,
			want: []lexeme{{KindIndString, `''a ''${x} ''' b''`}, {KindIdent, "y"}},
		},
		{
			name: "interpolated key",
			src:  `${name} = { };`,
			want: []lexeme{
				{KindInterp, "${name}"}, {KindAssign, "="},
				{KindLBrace, "{"}, {KindRBrace, "}"}, {KindSemi, ";"},
			},
		},
		{
			name: "operators",
			src:  `a // b ++ c == !d -1`,
			want: []lexeme{
				{KindIdent, "a"}, {KindOperator, "//"}, {KindIdent, "b"},
				{KindOperator, "++"}, {KindIdent, "c"}, {KindOperator, "=="},
				{KindOperator, "!"}, {KindIdent, "d"}, {KindOperator, "-"},
				{KindNumber, "1"},
			},
		},
		{
			name: "formals",
			src:  `{ pkgs ? null, ... }@args:`,
			want: []lexeme{
				{KindLBrace, "{"}, {KindIdent, "pkgs"}, {KindQuestion, "?"},
				{KindNull, "null"}, {KindComma, ","}, {KindEllipsis, "..."},
				{KindRBrace, "}"}, {KindAt, "@"}, {KindIdent, "args"},
				{KindColon, ":"},
			},
		},
		{
			name: "other runes",
			src:  "é`",
			want: []lexeme{{KindOther, "é"}, {KindOther, "`"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, significant(tt.src)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestTokenize_Trivia(t *testing.T) {
	src := "# head\n{ /* inline */ }\n"

	want := []lexeme{
		{KindComment, "# head"},
		{KindWhitespace, "\n"},
		{KindLBrace, "{"},
		{KindWhitespace, " "},
		{KindComment, "/* inline */"},
		{KindWhitespace, " "},
		{KindRBrace, "}"},
		{KindWhitespace, "\n"},
	}

	var got []lexeme
	for _, tok := range Tokenize(src) {
		got = append(got, lexeme{tok.Kind, tok.Text})
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_Unterminated(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind Kind
	}{
		{"string", `a = "abc`, KindString},
		{"string in interpolation", `"${ "x }`, KindString},
		{"indented string", `''abc`, KindIndString},
		{"interpolation", `${ a`, KindInterp},
		{"block comment", `/* abc`, KindComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.src)
			last := toks[len(toks)-1]

			if last.Kind != tt.kind || !last.Unterminated {
				t.Errorf("last token = %+v, want unterminated %v", last, tt.kind)
			}

			if last.Span.End != len(tt.src) {
				t.Errorf("last token ends at %d, want %d", last.Span.End, len(tt.src))
			}
		})
	}
}

func checkRoundTrip(t *testing.T, src string) {
	t.Helper()

	var (
		b   strings.Builder
		end int
	)

	for _, tok := range Tokenize(src) {
		if tok.Span.Start != end {
			t.Fatalf("token %+v starts at %d, want %d", tok, tok.Span.Start, end)
		}

		if tok.Span.Empty() {
			t.Fatalf("empty token %+v", tok)
		}

		if tok.Text != src[tok.Span.Start:tok.Span.End] {
			t.Fatalf("token text %q does not match its span %v", tok.Text, tok.Span)
		}

		b.WriteString(tok.Text)

		end = tok.Span.End
	}

	if got := b.String(); got != src {
		t.Fatalf("round trip = %q, want %q", got, src)
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	for _, src := range []string{
		"",
		sampleConfig,
		"{ a = \"${x}\"; /* c */ b = ''\n  y\n''; }",
		"\xff\xfe invalid utf-8",
		"'' unterminated ${",
		"<<>> ~ ~/ ./ .. / //",
	} {
		t.Run("", func(t *testing.T) { checkRoundTrip(t, src) })
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add(sampleConfig)
	f.Add(`"a ${b} \" c" ''x''${y}'' ${ { } }`)
	f.Add("/* x */ # y\n<nixpkgs> https://a.b/c ./d")

	f.Fuzz(checkRoundTrip)
}

func TestToken_Unquote(t *testing.T) {
	tests := []struct {
		src  string
		want string
		ok   bool
	}{
		{`"plain"`, "plain", true},
		{`"a\nb\tc"`, "a\nb\tc", true},
		{`"q\"q"`, `q"q`, true},
		{`"\${x}"`, "${x}", true},
		{`"$${x}"`, "${x}", true},
		{`"\q"`, "q", true},
		{`"${x}"`, "", false},
		{`"a ${x} b"`, "", false},
		{`''text''`, "", false},
		{`ident`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := Tokenize(tt.src)
			if len(toks) != 1 {
				t.Fatalf("Tokenize(%q) = %d tokens", tt.src, len(toks))
			}

			got, ok := toks[0].Unquote()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Unquote() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindIdent:  "identifier",
		KindRBrace: "}",
		KindEOF:    "end of input",
		Kind(-1):   "Kind(-1)",
		Kind(99):   "Kind(99)",
	}

	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
