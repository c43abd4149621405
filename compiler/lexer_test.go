package compiler

import "testing"

func lexTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, err := Lex(src, "<test>")
	if err != nil {
		t.Fatalf("Lex(%q) error: %v", src, err)
	}
	var out []TokenType
	for _, tok := range toks {
		if tok.Type == TOK_EOF {
			continue
		}
		out = append(out, tok.Type)
	}
	return out
}

func assertTypes(t *testing.T, src string, want []TokenType) {
	t.Helper()
	got := lexTypes(t, src)
	if len(got) != len(want) {
		t.Fatalf("src %q: got %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("src %q: token %d: got %s, want %s", src, i, got[i], want[i])
		}
	}
}

func TestLexIdentifiersAndKeywords(t *testing.T) {
	assertTypes(t, "let x = 1;", []TokenType{TOK_IDENTIFIER, TOK_IDENTIFIER, TOK_OPERATOR, TOK_INTEGER, TOK_OPERATOR})
}

func TestLexIntegerLiteral(t *testing.T) {
	toks, err := Lex("42", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_INTEGER || toks[0].Lexeme != "42" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexSignedInteger(t *testing.T) {
	toks, err := Lex("-7", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_INTEGER || toks[0].Lexeme != "-7" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexBareMinusIsOperator(t *testing.T) {
	toks, err := Lex("- x", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_OPERATOR || toks[0].Lexeme != "-" {
		t.Fatalf("got %+v, want a bare minus operator", toks[0])
	}
}

func TestLexDecimalLiteral(t *testing.T) {
	toks, err := Lex("3.14", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_DECIMAL || toks[0].Lexeme != "3.14" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexDecimalWithExponent(t *testing.T) {
	toks, err := Lex("6.02e23", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_DECIMAL || toks[0].Lexeme != "6.02e23" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexDotNotFollowedByDigitIsNotDecimal(t *testing.T) {
	// `1.` has no digit after the dot, so the dot does not start a
	// fractional part and is lexed as a separate operator token.
	toks, err := Lex("1.end", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_INTEGER || toks[0].Lexeme != "1" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Type != TOK_OPERATOR || toks[1].Lexeme != "." {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexExponentRequiresDigits(t *testing.T) {
	_, err := Lex("10e", "<test>")
	if err == nil {
		t.Fatalf("expected an error for a dangling exponent, got none")
	}
}

func TestLexLeadingDotAloneIsNotANumber(t *testing.T) {
	// A lone `.1` is not a recognized number start (no leading digit),
	// so `.` lexes as an operator and `1` as a separate integer.
	toks, err := Lex(".1", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_OPERATOR || toks[0].Lexeme != "." {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Type != TOK_INTEGER || toks[1].Lexeme != "1" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexCharacterLiteralPreservesRawSpelling(t *testing.T) {
	toks, err := Lex(`'a'`, "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_CHARACTER || toks[0].Lexeme != `'a'` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexCharacterLiteralEscapePreservesRawSpelling(t *testing.T) {
	toks, err := Lex(`'\n'`, "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_CHARACTER || toks[0].Lexeme != `'\n'` {
		t.Fatalf("got raw lexeme %q, want the escape preserved undecoded", toks[0].Lexeme)
	}
}

func TestLexUnknownEscapeIsAcceptedByLexer(t *testing.T) {
	// The lexer does not judge whether \q is a recognized escape; that
	// decision belongs to the parser's literal-decoding step.
	toks, err := Lex(`"a\qb"`, "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_STRING || toks[0].Lexeme != `"a\qb"` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexStringLiteralPreservesRawSpelling(t *testing.T) {
	toks, err := Lex(`"hello\nworld"`, "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Type != TOK_STRING || toks[0].Lexeme != `"hello\nworld"` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err := Lex(`"unterminated`, "<test>")
	if err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("got %T (%v), want *LexError", err, err)
	}
}

func TestLexNewlineInsideStringFails(t *testing.T) {
	_, err := Lex("\"a\nb\"", "<test>")
	if err == nil {
		t.Fatalf("expected an error for a newline inside a string literal")
	}
}

func TestLexLineComment(t *testing.T) {
	assertTypes(t, "1 // a comment\n2", []TokenType{TOK_INTEGER, TOK_INTEGER})
}

func TestLexComparisonOperators(t *testing.T) {
	assertTypes(t, "< <= > >= == !=", []TokenType{
		TOK_OPERATOR, TOK_OPERATOR, TOK_OPERATOR, TOK_OPERATOR, TOK_OPERATOR, TOK_OPERATOR,
	})
	toks, _ := Lex("<= == !=", "<test>")
	want := []string{"<=", "==", "!="}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Fatalf("token %d: got %q, want %q", i, toks[i].Lexeme, w)
		}
	}
}

func TestLexPositionTracking(t *testing.T) {
	toks, err := Lex("let\nx", "<test>")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}
	if toks[0].Line != 1 || toks[0].Column != 1 {
		t.Fatalf("got line %d col %d for first token", toks[0].Line, toks[0].Column)
	}
	if toks[1].Line != 2 || toks[1].Column != 1 {
		t.Fatalf("got line %d col %d for second token", toks[1].Line, toks[1].Column)
	}
}
