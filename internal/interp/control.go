package interp

import (
	"time"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

// execStmtList runs a one-line IF branch's nested statements in place,
// propagating a jump the moment any of them sets PC itself (spec §4.2 one
// line IF/THEN/ELSE note).
func (ip *Interp) execStmtList(stmts []ast.Stmt) (bool, error) {
	for _, st := range stmts {
		jumped, err := ip.exec(st)
		if err != nil {
			return false, err
		}
		if jumped || ip.RT.Reason != runtime.Running {
			return true, nil
		}
	}
	return false, nil
}

func (ip *Interp) execIf(s *ast.IfStmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()
	cond, err := ip.eval(s.Cond)
	if err != nil {
		return false, err
	}
	if values.ToBool(cond) {
		if s.ThenGoto != 0 {
			target, err := rt.Table.RequireLine(s.ThenGoto, line, si)
			if err != nil {
				return false, err
			}
			rt.PC = target
			return true, nil
		}
		return ip.execStmtList(s.ThenStmts)
	}
	if s.ElseGoto != 0 {
		target, err := rt.Table.RequireLine(s.ElseGoto, line, si)
		if err != nil {
			return false, err
		}
		rt.PC = target
		return true, nil
	}
	if s.ElseStmts != nil {
		return ip.execStmtList(s.ElseStmts)
	}
	return false, nil
}

// execFor sets up the loop variable and its ForRecord, then — if the
// initial bound is already past End — skips straight to the statement
// following the matching NEXT without ever running the body (spec §4.5).
func (ip *Interp) execFor(s *ast.ForStmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()

	fromV, err := ip.eval(s.From)
	if err != nil {
		return false, err
	}
	toV, err := ip.eval(s.To)
	if err != nil {
		return false, err
	}
	step := 1.0
	if s.Step != nil {
		stepV, err := ip.eval(s.Step)
		if err != nil {
			return false, err
		}
		step = values.ToNumber(stepV)
	}

	if err := ip.assignLValue(ast.LValue{Name: s.Var}, fromV, line, si); err != nil {
		return false, err
	}

	body, hasBody := rt.Table.Next(rt.PC)
	rec := &runtime.ForRecord{End: values.ToNumber(toV), Step: step}
	if hasBody {
		rec.ResumePC = body
	} else {
		rec.ResumePC = rt.PC
	}
	rt.PushFor(s.Var, rec)

	cur := values.ToNumber(rt.GetScalar(s.Var))
	past := (step >= 0 && cur > rec.End) || (step < 0 && cur < rec.End)
	if !past {
		return false, nil
	}

	rt.PopFor(s.Var)
	nextAddr, err := ip.findMatchingNext(rt.PC)
	if err != nil {
		return false, err
	}
	after, ok := rt.Table.Next(nextAddr)
	if !ok {
		rt.Reason = runtime.EndHalt
		return true, nil
	}
	rt.PC = after
	return true, nil
}

// execNext advances each named loop variable (or the innermost active one
// for a bare NEXT) by its Step, jumping back into the body on the first one
// still in range, falling through to the next named variable otherwise
// (spec §4.5's NEXT I,J sequential-close semantics).
func (ip *Interp) execNext(s *ast.NextStmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()

	vars := s.Vars
	if len(vars) == 0 {
		v, ok := rt.InnermostFor()
		if !ok {
			return false, berrors.New(berrors.NextWithoutFor, line, si)
		}
		vars = []string{v}
	}

	for _, v := range vars {
		rec, ok := rt.ForRecord(v)
		if !ok {
			return false, berrors.New(berrors.NextWithoutFor, line, si)
		}
		cur := values.ToNumber(rt.GetScalar(v)) + rec.Step
		if err := ip.assignLValue(ast.LValue{Name: v}, wrapNumeric(rt.ResolvedType(v), cur), line, si); err != nil {
			return false, err
		}
		done := (rec.Step >= 0 && cur > rec.End) || (rec.Step < 0 && cur < rec.End)
		if !done {
			rt.PC = rec.ResumePC
			return true, nil
		}
		rt.PopFor(v)
	}
	return false, nil
}

func (ip *Interp) execWhile(s *ast.WhileStmt) (bool, error) {
	rt := ip.RT
	cond, err := ip.eval(s.Cond)
	if err != nil {
		return false, err
	}
	if values.ToBool(cond) {
		rt.PushWhile(rt.PC)
		return false, nil
	}
	wendAddr, err := ip.findMatchingWend(rt.PC)
	if err != nil {
		return false, err
	}
	after, ok := rt.Table.Next(wendAddr)
	if !ok {
		rt.Reason = runtime.EndHalt
		return true, nil
	}
	rt.PC = after
	return true, nil
}

// findMatchingNext scans forward from a FOR statement for its NEXT,
// tracking nested-FOR depth; any depth-0 NEXT is treated as the match
// regardless of which variable it names — compound `NEXT I,J` skip-ahead
// isn't distinguished from a bare NEXT here.
func (ip *Interp) findMatchingNext(start runtime.Addr) (runtime.Addr, error) {
	rt := ip.RT
	depth := 0
	addr := start
	for {
		next, ok := rt.Table.Next(addr)
		if !ok {
			return runtime.Addr{}, berrors.New(berrors.ForWithoutNext, start.Line, start.Stmt)
		}
		addr = next
		stmt, _ := rt.Table.Get(addr)
		switch stmt.(type) {
		case *ast.ForStmt:
			depth++
		case *ast.NextStmt:
			if depth == 0 {
				return addr, nil
			}
			depth--
		}
	}
}

func (ip *Interp) findMatchingWend(start runtime.Addr) (runtime.Addr, error) {
	rt := ip.RT
	depth := 0
	addr := start
	for {
		next, ok := rt.Table.Next(addr)
		if !ok {
			return runtime.Addr{}, berrors.New(berrors.WhileWithoutWend, start.Line, start.Stmt)
		}
		addr = next
		stmt, _ := rt.Table.Get(addr)
		switch stmt.(type) {
		case *ast.WhileStmt:
			depth++
		case *ast.WendStmt:
			if depth == 0 {
				return addr, nil
			}
			depth--
		}
	}
}

func (ip *Interp) execOnGoto(s *ast.OnGotoStmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()
	v, err := ip.eval(s.Expr)
	if err != nil {
		return false, err
	}
	n := int(values.ToNumber(v))
	if n < 1 || n > len(s.Targets) {
		return false, nil
	}
	target, err := rt.Table.RequireLine(s.Targets[n-1], line, si)
	if err != nil {
		return false, err
	}
	if s.IsGosub {
		ret, hasRet := rt.Table.Next(rt.PC)
		if !hasRet {
			ret = runtime.Addr{Line: -1}
		}
		rt.PushGosub(ret)
	}
	rt.PC = target
	return true, nil
}

// execResume implements RESUME / RESUME NEXT / RESUME n (spec §4.5), all of
// which first clear the trap's InError latch. While the latch is set a
// fault inside the handler is fatal rather than re-trapped; clearing it
// re-arms trapping for the resumed code.
func (ip *Interp) execResume(s *ast.ResumeStmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()
	if !rt.InError {
		return false, berrors.New(berrors.ResumeWithoutError, line, si)
	}
	rt.InError = false

	if s.Next {
		after, ok := rt.Table.Next(rt.ErrorPC)
		if !ok {
			rt.Reason = runtime.EndHalt
			return true, nil
		}
		rt.PC = after
		return true, nil
	}
	if s.Line != 0 {
		target, err := rt.Table.RequireLine(s.Line, line, si)
		if err != nil {
			return false, err
		}
		rt.PC = target
		return true, nil
	}
	rt.PC = rt.ErrorPC
	return true, nil
}

func (ip *Interp) execRandomize(s *ast.RandomizeStmt) error {
	rt := ip.RT
	if s.Seed == nil {
		rt.Rand.Seed(time.Now().UnixNano())
		return nil
	}
	v, err := ip.eval(s.Seed)
	if err != nil {
		return err
	}
	rt.Rand.Seed(int64(values.ToNumber(v)))
	return nil
}
