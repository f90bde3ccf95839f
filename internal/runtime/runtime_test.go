package runtime

import (
	"testing"

	"mbasic/internal/ast"
	"mbasic/internal/values"
)

func TestStatementTableLoadAndNext(t *testing.T) {
	tbl := NewStatementTable()
	tbl.Load(&ast.Program{Lines: []ast.Line{
		{Number: 10, Stmts: []ast.Stmt{&ast.EndStmt{}}},
		{Number: 20, Stmts: []ast.Stmt{&ast.StopStmt{}, &ast.EndStmt{}}},
	}})

	first, ok := tbl.First()
	if !ok || first != (Addr{Line: 10, Stmt: 0}) {
		t.Fatalf("got %v, want {10 0}", first)
	}

	next, ok := tbl.Next(first)
	if !ok || next != (Addr{Line: 20, Stmt: 0}) {
		t.Fatalf("got %v, want {20 0}", next)
	}

	next2, ok := tbl.Next(next)
	if !ok || next2 != (Addr{Line: 20, Stmt: 1}) {
		t.Fatalf("got %v, want {20 1}", next2)
	}

	if _, ok := tbl.Next(next2); ok {
		t.Error("expected Next past the last statement to report ok=false")
	}
}

func TestStatementTableFindLine(t *testing.T) {
	tbl := NewStatementTable()
	tbl.Load(&ast.Program{Lines: []ast.Line{
		{Number: 10, Stmts: []ast.Stmt{&ast.EndStmt{}}},
	}})
	if _, ok := tbl.FindLine(999); ok {
		t.Error("expected FindLine to report ok=false for an absent line")
	}
	addr, ok := tbl.FindLine(10)
	if !ok || addr != (Addr{Line: 10, Stmt: 0}) {
		t.Errorf("got %v, %v; want {10 0}, true", addr, ok)
	}
}

func TestStatementTableSetLineMerge(t *testing.T) {
	tbl := NewStatementTable()
	tbl.Load(&ast.Program{Lines: []ast.Line{
		{Number: 10, Stmts: []ast.Stmt{&ast.EndStmt{}}},
		{Number: 30, Stmts: []ast.Stmt{&ast.EndStmt{}}},
	}})
	// MERGE-style replace: same line number, new statement list, plus an
	// all-new line inserted between the existing two.
	tbl.SetLine(10, []ast.Stmt{&ast.StopStmt{}}, "10 STOP")
	tbl.SetLine(20, []ast.Stmt{&ast.EndStmt{}}, "20 END")

	if got := tbl.Lines(); len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("got %v, want [10 20 30]", got)
	}
	stmt, ok := tbl.Get(Addr{Line: 10, Stmt: 0})
	if !ok {
		t.Fatal("expected statement at 10.0")
	}
	if _, ok := stmt.(*ast.StopStmt); !ok {
		t.Errorf("got %T, want *ast.StopStmt (replaced by SetLine)", stmt)
	}
}

func TestRequireLineUndefined(t *testing.T) {
	tbl := NewStatementTable()
	tbl.Load(&ast.Program{Lines: []ast.Line{{Number: 10, Stmts: []ast.Stmt{&ast.EndStmt{}}}}})
	if _, err := tbl.RequireLine(999, 10, 0); err == nil {
		t.Error("expected UndefinedLineNumber for a GOTO target that doesn't exist")
	}
}

func TestScalarAutoInitAndCoercion(t *testing.T) {
	r := New()
	v := r.GetScalar("X%")
	if v.Kind != values.KInteger {
		t.Errorf("got kind %v, want KInteger (auto-init from %% suffix)", v.Kind)
	}

	if err := r.SetScalar("X%", values.Double(3.7), 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.GetScalar("X%")
	if got.Num != 4 {
		t.Errorf("got %v, want 4 (round-to-even narrowing into INTEGER)", got.Num)
	}
}

func TestSetScalarTypeMismatch(t *testing.T) {
	r := New()
	if err := r.SetScalar("A$", values.Int(1), 10, 0); err == nil {
		t.Error("expected type mismatch assigning a number to a string-suffixed scalar")
	}
}

func TestDimArrayDuplicateDefinition(t *testing.T) {
	r := New()
	if err := r.DimArray("A", []int{10}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.DimArray("A", []int{10}, 20, 0); err == nil {
		t.Error("expected DuplicateDefinition on a second DIM of the same array")
	}
}

func TestAutoDimArrayDefaultsToUpperBound10(t *testing.T) {
	r := New()
	a := r.AutoDimArray("B", 1)
	if _, err := a.Get([]int{10}, 10, 0); err != nil {
		t.Errorf("expected index 10 to be in bounds for an auto-dimensioned array: %v", err)
	}
	if _, err := a.Get([]int{11}, 10, 0); err == nil {
		t.Error("expected index 11 to be out of bounds for an auto-dimensioned array")
	}
}

func TestArrayOptionBaseAffectsBounds(t *testing.T) {
	r := New()
	r.OptionBase = 1
	if err := r.DimArray("C", []int{5}, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := r.GetArrayIfExists("C")
	if _, err := a.Get([]int{0}, 10, 0); err == nil {
		t.Error("expected index 0 to be out of range under OPTION BASE 1")
	}
	if _, err := a.Get([]int{5}, 10, 0); err != nil {
		t.Errorf("expected index 5 in bounds under OPTION BASE 1: %v", err)
	}
}

func TestForStackPushPopNesting(t *testing.T) {
	r := New()
	r.PushFor("I", &ForRecord{End: 10, Step: 1})
	r.PushFor("J", &ForRecord{End: 5, Step: 1})

	v, ok := r.InnermostFor()
	if !ok || v != "J" {
		t.Fatalf("got %q, want J (most recently pushed)", v)
	}
	r.PopFor("J")
	v, ok = r.InnermostFor()
	if !ok || v != "I" {
		t.Fatalf("got %q, want I after popping J", v)
	}
	r.PopFor("I")
	if _, ok := r.InnermostFor(); ok {
		t.Error("expected no innermost FOR after popping both")
	}
}

func TestGosubWhileStackInteraction(t *testing.T) {
	r := New()
	r.PushGosub(Addr{Line: 20, Stmt: 0})
	r.PushWhile(Addr{Line: 10, Stmt: 0})

	// a GOSUB boundary abandons any WHILE frames above the matching GOSUB
	// when RETURN pops back through it.
	ret, ok := r.PopGosub()
	if !ok || ret != (Addr{Line: 20, Stmt: 0}) {
		t.Fatalf("got %v, want {20 0}", ret)
	}
	if _, ok := r.PopWhile(); ok {
		t.Error("expected the WHILE frame to have been discarded by PopGosub")
	}
}

func TestLoadProgramPreservesScalarsAndArrays(t *testing.T) {
	r := New()
	r.SetScalar("X", values.Single(42), 10, 0)
	r.DimArray("A", []int{3}, 10, 0)

	r.LoadProgram(&ast.Program{Lines: []ast.Line{{Number: 10, Stmts: []ast.Stmt{&ast.EndStmt{}}}}})

	if v := r.GetScalar("X"); v.Num != 42 {
		t.Errorf("got %v, want 42 (LoadProgram must not touch Scalars)", v.Num)
	}
	if _, ok := r.GetArrayIfExists("A"); !ok {
		t.Error("expected array A to survive LoadProgram")
	}
}
