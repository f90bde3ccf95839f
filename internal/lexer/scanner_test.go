package lexer

import "testing"

func scanTypes(src string) []TokenType {
	s := NewScanner(src)
	toks := s.ScanTokens()
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestKeywordsAndIdents(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []TokenType
	}{
		{"print statement", `PRINT X`, []TokenType{TokenPrint, TokenIdent, TokenEOF}},
		{"print hash split", `PRINT#1`, []TokenType{TokenPrint, TokenHash, TokenNumber, TokenEOF}},
		{"rem eats to eol", "REM hi\nPRINT 1", []TokenType{TokenRem, TokenNewline, TokenPrint, TokenNumber, TokenEOF}},
		{"apostrophe comment", "PRINT 1 ' trailing\nEND", []TokenType{TokenPrint, TokenNumber, TokenApos, TokenNewline, TokenEnd, TokenEOF}},
		{"string literal", `PRINT "hi"`, []TokenType{TokenPrint, TokenString, TokenEOF}},
		{"builtin fn is ident", `PRINT LEFT$(A$,1)`, []TokenType{TokenPrint, TokenIdent, TokenLParen, TokenIdent, TokenComma, TokenNumber, TokenRParen, TokenEOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanTypes(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %s, want %s (full: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantNumber float64
		wantIsD    bool
		wantFrac   bool
	}{
		{"plain integer", "42", 42, false, false},
		{"fractional", "3.14", 3.14, false, true},
		{"e exponent", "1E10", 1e10, false, true},
		{"d exponent forces double", "1D10", 1e10, true, true},
		{"leading dot", ".5", 0.5, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(tt.src)
			toks := s.ScanTokens()
			if toks[0].Type != TokenNumber {
				t.Fatalf("expected NUMBER, got %s", toks[0].Type)
			}
			if toks[0].Number != tt.wantNumber {
				t.Errorf("got %v, want %v", toks[0].Number, tt.wantNumber)
			}
			if toks[0].IsDExp != tt.wantIsD {
				t.Errorf("IsDExp got %v, want %v", toks[0].IsDExp, tt.wantIsD)
			}
			if toks[0].HasFrac != tt.wantFrac {
				t.Errorf("HasFrac got %v, want %v", toks[0].HasFrac, tt.wantFrac)
			}
		})
	}
}

func TestHexAndOctalLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"hex", "&HFF", 255},
		{"octal with O", "&O17", 15},
		{"bare octal", "&17", 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(tt.src)
			toks := s.ScanTokens()
			if toks[0].Type != TokenNumber {
				t.Fatalf("expected NUMBER, got %s", toks[0].Type)
			}
			if toks[0].Number != tt.want {
				t.Errorf("got %v, want %v", toks[0].Number, tt.want)
			}
		})
	}
}

func TestTypeSuffixes(t *testing.T) {
	s := NewScanner("A$ = B%")
	toks := s.ScanTokens()
	if toks[0].Suffix != '$' {
		t.Errorf("got suffix %q, want $", toks[0].Suffix)
	}
	if toks[2].Suffix != '%' {
		t.Errorf("got suffix %q, want %%", toks[2].Suffix)
	}
}

func TestUnterminatedStringIsLexerError(t *testing.T) {
	s := NewScanner("PRINT \"no closing quote")
	s.ScanTokens()
	if len(s.Errors) == 0 {
		t.Error("expected a lexer error for unterminated string")
	}
}

func TestNewlineTracksLineAndColumn(t *testing.T) {
	s := NewScanner("10 PRINT 1\n20 END")
	toks := s.ScanTokens()
	var end Token
	for _, tok := range toks {
		if tok.Type == TokenEnd {
			end = tok
		}
	}
	if end.Line != 2 {
		t.Errorf("got line %d, want 2", end.Line)
	}
	if end.Column != 4 {
		t.Errorf("got column %d, want 4", end.Column)
	}
}
