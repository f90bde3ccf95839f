package runtime

import (
	"sort"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
)

// StatementTable is the append-only, ordered, addressable flattening of a
// Program (spec §3/§9): the single owner of statement nodes for the life of
// a run. PCs name statements by (line, stmt-index), never by pointer.
type StatementTable struct {
	lines     []int // sorted ascending
	linePos   map[int]int
	stmts     map[Addr]ast.Stmt
	stmtCount map[int]int
	source    map[int]string
}

func NewStatementTable() *StatementTable {
	return &StatementTable{
		linePos:   make(map[int]int),
		stmts:     make(map[Addr]ast.Stmt),
		stmtCount: make(map[int]int),
		source:    make(map[int]string),
	}
}

// Load populates the table from a parsed Program, in source order.
func (t *StatementTable) Load(p *ast.Program) {
	for _, ln := range p.Lines {
		t.SetLine(ln.Number, ln.Stmts, ln.Source)
	}
}

// SetLine adds or replaces a whole line; used both by initial load and by
// MERGE, which the table "owns... for the remainder of the run" (spec §3).
func (t *StatementTable) SetLine(number int, stmts []ast.Stmt, source string) {
	if _, exists := t.linePos[number]; !exists {
		t.lines = append(t.lines, number)
		sort.Ints(t.lines)
		t.rebuildPositions()
	}
	t.stmtCount[number] = len(stmts)
	t.source[number] = source
	for i, s := range stmts {
		t.stmts[Addr{Line: number, Stmt: i}] = s
	}
}

func (t *StatementTable) rebuildPositions() {
	t.linePos = make(map[int]int, len(t.lines))
	for i, ln := range t.lines {
		t.linePos[ln] = i
	}
}

// First returns the address of the very first statement, or ok=false for
// an empty program (caller should halt with EndHalt).
func (t *StatementTable) First() (Addr, bool) {
	if len(t.lines) == 0 {
		return Addr{}, false
	}
	return Addr{Line: t.lines[0], Stmt: 0}, true
}

// FindLine locates the first statement of line n via binary search
// (O(log L), spec §3).
func (t *StatementTable) FindLine(n int) (Addr, bool) {
	i := sort.SearchInts(t.lines, n)
	if i >= len(t.lines) || t.lines[i] != n {
		return Addr{}, false
	}
	return Addr{Line: n, Stmt: 0}, true
}

// Next returns the statement immediately after pc in program order:
// O(1) within a line, O(1) amortized across the line-position map at a
// line boundary.
func (t *StatementTable) Next(pc Addr) (Addr, bool) {
	if pc.Stmt+1 < t.stmtCount[pc.Line] {
		return Addr{Line: pc.Line, Stmt: pc.Stmt + 1}, true
	}
	pos, ok := t.linePos[pc.Line]
	if !ok || pos+1 >= len(t.lines) {
		return Addr{}, false
	}
	return Addr{Line: t.lines[pos+1], Stmt: 0}, true
}

// Get fetches the statement at addr.
func (t *StatementTable) Get(addr Addr) (ast.Stmt, bool) {
	s, ok := t.stmts[addr]
	return s, ok
}

// SourceOf returns the original text of a line, for diagnostics.
func (t *StatementTable) SourceOf(line int) string { return t.source[line] }

// StmtCount returns how many statements line has (0 if the line is absent).
func (t *StatementTable) StmtCount(line int) int { return t.stmtCount[line] }

// Lines returns the sorted line numbers, for LIST-style consumers.
func (t *StatementTable) Lines() []int { return t.lines }

// RequireLine resolves a GOTO/GOSUB/THEN target, raising UndefinedLineNumber
// if absent.
func (t *StatementTable) RequireLine(n, atLine, atStmt int) (Addr, error) {
	a, ok := t.FindLine(n)
	if !ok {
		return Addr{}, berrors.New(berrors.UndefinedLineNumber, atLine, atStmt)
	}
	return a, nil
}
