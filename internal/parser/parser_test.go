package parser

import (
	"testing"

	"mbasic/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return prog
}

func firstStmt(t *testing.T, prog *ast.Program) ast.Stmt {
	t.Helper()
	if len(prog.Lines) == 0 || len(prog.Lines[0].Stmts) == 0 {
		t.Fatalf("expected at least one statement")
	}
	return prog.Lines[0].Stmts[0]
}

func TestParseLetAndExpressionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"implicit let", "10 X = 1"},
		{"explicit let", "10 LET X = 1"},
		{"arithmetic precedence", "10 X = 2 + 3 * 4"},
		{"negative power binds tighter on right", "10 X = 2 ^ -2"},
		{"comparison chain", "10 X = 1 < 2"},
		{"string concat", `10 X$ = "a" + "b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseOK(t, tt.src)
			stmt := firstStmt(t, prog)
			if _, ok := stmt.(*ast.LetStmt); !ok {
				t.Errorf("got %T, want *ast.LetStmt", stmt)
			}
		})
	}
}

func TestNegativePowerParsesAsNegateOfPower(t *testing.T) {
	// -2^2 should parse as -(2^2), i.e. a Unary wrapping a Binary ^.
	prog := parseOK(t, "10 X = -2 ^ 2")
	let := firstStmt(t, prog).(*ast.LetStmt)
	un, ok := let.Value.(*ast.Unary)
	if !ok {
		t.Fatalf("got %T, want *ast.Unary", let.Value)
	}
	if un.Op != "-" {
		t.Errorf("got op %q, want -", un.Op)
	}
	if _, ok := un.X.(*ast.Binary); !ok {
		t.Errorf("got %T for unary operand, want *ast.Binary (the ^)", un.X)
	}
}

func TestParseForNextAndWhileWend(t *testing.T) {
	prog := parseOK(t, "10 FOR I = 1 TO 10 STEP 2\n20 NEXT I\n30 WHILE I < 5\n40 WEND")
	if len(prog.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(prog.Lines))
	}
	if _, ok := prog.Lines[0].Stmts[0].(*ast.ForStmt); !ok {
		t.Errorf("line 10: got %T, want *ast.ForStmt", prog.Lines[0].Stmts[0])
	}
	if _, ok := prog.Lines[1].Stmts[0].(*ast.NextStmt); !ok {
		t.Errorf("line 20: got %T, want *ast.NextStmt", prog.Lines[1].Stmts[0])
	}
	if _, ok := prog.Lines[2].Stmts[0].(*ast.WhileStmt); !ok {
		t.Errorf("line 30: got %T, want *ast.WhileStmt", prog.Lines[2].Stmts[0])
	}
	if _, ok := prog.Lines[3].Stmts[0].(*ast.WendStmt); !ok {
		t.Errorf("line 40: got %T, want *ast.WendStmt", prog.Lines[3].Stmts[0])
	}
}

func TestParseMultiStatementLine(t *testing.T) {
	prog := parseOK(t, "10 X = 1 : Y = 2 : PRINT X")
	if len(prog.Lines[0].Stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Lines[0].Stmts))
	}
}

func TestParseErrorRecoveryResynchronizesAtNextLine(t *testing.T) {
	// line 10 has a deliberately malformed FOR (missing TO); line 20 must
	// still be parsed.
	prog, err := Parse("10 FOR I = 1\n20 PRINT \"ok\"")
	if err == nil {
		t.Fatal("expected a parse error on line 10")
	}
	if len(prog.Lines) < 2 || prog.Lines[len(prog.Lines)-1].Number != 20 {
		t.Fatalf("expected line 20 to still be present: %+v", prog.Lines)
	}
}

func TestDefTypePass(t *testing.T) {
	prog := parseOK(t, "10 DEFINT A-C\n20 DEFSTR Z")
	if prog.DefType['a'] != 0 { // TInteger == 0
		t.Errorf("expected a-c mapped to TInteger")
	}
	if prog.DefType['z'] == 0 {
		t.Errorf("expected z mapped to TString (nonzero VarType)")
	}
}

func TestParseFnCall(t *testing.T) {
	prog := parseOK(t, "10 DEF FNDOUBLE(X) = X * 2\n20 Y = FNDOUBLE(5)")
	let := prog.Lines[1].Stmts[0].(*ast.LetStmt)
	call, ok := let.Value.(*ast.Call)
	if !ok {
		t.Fatalf("got %T, want *ast.Call", let.Value)
	}
	if call.Name != "fndouble" {
		t.Errorf("got name %q, want fndouble", call.Name)
	}
}

func TestParseArrayRefVsCallAmbiguity(t *testing.T) {
	// A(1) is a Call node in the grammar (the parser can't distinguish an
	// array reference from a function call without the DIM table, which
	// only exists at runtime); resolution happens in interp.evalCall.
	prog := parseOK(t, "10 X = A(1)")
	let := prog.Lines[0].Stmts[0].(*ast.LetStmt)
	if _, ok := let.Value.(*ast.Call); !ok {
		t.Errorf("got %T, want *ast.Call", let.Value)
	}
}

func TestParseGotoGosubReturn(t *testing.T) {
	prog := parseOK(t, "10 GOTO 100\n20 GOSUB 200\n30 RETURN")
	g, ok := prog.Lines[0].Stmts[0].(*ast.GotoStmt)
	if !ok || g.Line != 100 {
		t.Errorf("got %+v, want GotoStmt{Line:100}", prog.Lines[0].Stmts[0])
	}
	gs, ok := prog.Lines[1].Stmts[0].(*ast.GosubStmt)
	if !ok || gs.Line != 200 {
		t.Errorf("got %+v, want GosubStmt{Line:200}", prog.Lines[1].Stmts[0])
	}
	if _, ok := prog.Lines[2].Stmts[0].(*ast.ReturnStmt); !ok {
		t.Errorf("got %T, want *ast.ReturnStmt", prog.Lines[2].Stmts[0])
	}
}
