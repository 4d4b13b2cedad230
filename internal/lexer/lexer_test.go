package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `var x = 5;
x = x + 10;
`

	tests := []struct {
		expectedType   TokenType
		expectedLexeme string
	}{
		{VAR, "var"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{IDENT, "x"},
		{PLUS, "+"},
		{NUMBER, "10"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (lexeme=%q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `and or class else false for fun if nil print return super this
		true var while continue break try catch throw export`

	expected := []TokenType{
		AND, OR, CLASS, ELSE, FALSE, FOR, FUN, IF, NIL, PRINT, RETURN, SUPER, THIS,
		TRUE, VAR, WHILE, CONTINUE, BREAK, TRY, CATCH, THROW, EXPORT, EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected %s, got %s (%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = == != < <= > >= ! += -= *= /= & && | || ^ ~`
	expected := []TokenType{
		PLUS, MINUS, STAR, SLASH, PERCENT, ASSIGN, EQ, NOT_EQ, LESS, LESS_EQ,
		GREATER, GREATER_EQ, BANG, PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ,
		AMP, AMP_AMP, PIPE, PIPE_PIPE, CARET, TILDE, EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected %s, got %s (%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"123", 123},
		{"1.5", 1.5},
		{"0.25", 0.25},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != NUMBER {
			t.Fatalf("input %q: expected NUMBER, got %s", tt.input, tok.Type)
		}
		if tok.Literal.Num != tt.expected {
			t.Fatalf("input %q: expected %v, got %v", tt.input, tt.expected, tok.Literal.Num)
		}
	}
}

func TestStrings(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal.Str != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", tok.Literal.Str)
	}
}

func TestMultilineString(t *testing.T) {
	l := New("\"line one\nline two\"")
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal.Str != "line one\nline two" {
		t.Fatalf("unexpected literal: %q", tok.Literal.Str)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated string error")
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New(`@`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors()))
	}
}

func TestComments(t *testing.T) {
	input := `// line comment
var x = 1; /* block
comment */ var y = 2;`

	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}

	expected := []TokenType{VAR, IDENT, ASSIGN, NUMBER, SEMICOLON, VAR, IDENT, ASSIGN, NUMBER, SEMICOLON, EOF}
	if len(types) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(types), types)
	}
	for i, want := range expected {
		if types[i] != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, types[i])
		}
	}
}

func TestScanTokensAccumulatesErrors(t *testing.T) {
	l := New(`var x = @; var y = $;`)
	l.ScanTokens()
	if len(l.Errors()) != 2 {
		t.Fatalf("expected 2 accumulated errors, got %d", len(l.Errors()))
	}
}
