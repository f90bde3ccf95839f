package runtime

import (
	"mbasic/internal/ast"
	"mbasic/internal/values"
)

// LoadProgram builds a Runtime's program-derived state from a parsed Program
// (spec §4.3): the StatementTable, the DATA pool, the DEF FN table, and the
// DEFtype map. It does not reset variables/files/stacks — callers that want
// a clean slate should call ClearState first (or use a fresh Runtime).
func (r *Runtime) LoadProgram(p *ast.Program) {
	r.Table = NewStatementTable()
	r.Table.Load(p)

	r.DefType = p.DefType
	if r.DefType == nil {
		r.DefType = make(map[byte]values.VarType)
	}

	r.Data = NewDataPool()
	for _, line := range p.Lines {
		for _, stmt := range line.Stmts {
			if d, ok := stmt.(*ast.DataStmt); ok {
				r.Data.AddLine(line.Number, d.Items)
			}
		}
	}

	r.Functions = make(map[string]*ast.DefFnStmt)
	for _, line := range p.Lines {
		for _, stmt := range line.Stmts {
			if fn, ok := stmt.(*ast.DefFnStmt); ok {
				r.Functions[fn.Name] = fn
			}
		}
	}

	if first, ok := r.Table.First(); ok {
		r.PC = first
		r.Reason = Running
	} else {
		r.PC = Addr{}
		r.Reason = EndHalt
	}
}
