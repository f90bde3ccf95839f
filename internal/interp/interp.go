// Package interp is the tick-driven statement executor (spec §4.5/§4.9):
// one call to Step runs exactly one statement and leaves the Runtime's PC
// and Reason describing what to do next. Run is a convenience loop around
// Step for callers that don't need per-tick control (breakpoints, a
// debugger UI, cooperative scheduling with other work).
package interp

import (
	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/ports"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

// Interp ties a Runtime's state to the outside world through the two
// narrow ports (spec §6); everything it does is a pure function of that
// triple, so swapping Console/FS for a test double or a different driver
// doesn't touch this package.
type Interp struct {
	RT      *runtime.Runtime
	Console ports.ConsolePort
	FS      ports.FileSystemPort
}

func New(rt *runtime.Runtime, console ports.ConsolePort, fs ports.FileSystemPort) *Interp {
	return &Interp{RT: rt, Console: console, FS: fs}
}

func (ip *Interp) pos() (int, int) { return ip.RT.PC.Line, ip.RT.PC.Stmt }

// Step executes the single statement at RT.PC. On return, RT.Reason says
// whether the program is still RUNNING (in which case RT.PC now names the
// next statement) or has stopped for some other reason — END, STOP, a
// breakpoint, a trapped-or-fatal error, or a pending INPUT.
func (ip *Interp) Step() {
	rt := ip.RT
	if rt.Reason != runtime.Running {
		return
	}
	if rt.BreakRequested.Load() {
		rt.BreakRequested.Store(false)
		rt.Reason = runtime.BreakHalt
		return
	}
	if rt.Breakpoints[rt.PC] {
		rt.Reason = runtime.Breakpoint
		return
	}
	stmt, ok := rt.Table.Get(rt.PC)
	if !ok {
		rt.Reason = runtime.EndHalt
		return
	}
	jumped, err := ip.exec(stmt)
	if err != nil {
		ip.trap(err)
		return
	}
	if rt.Reason != runtime.Running {
		return
	}
	if jumped {
		return
	}
	nxt, ok := rt.Table.Next(rt.PC)
	if !ok {
		rt.Reason = runtime.EndHalt
		return
	}
	rt.PC = nxt
}

// Run steps until the program stops running or maxSteps ticks have
// elapsed (0 means unbounded); it returns the reason execution is no
// longer RUNNING.
func (ip *Interp) Run(maxSteps int) runtime.Reason {
	for i := 0; maxSteps == 0 || i < maxSteps; i++ {
		if ip.RT.Reason != runtime.Running {
			break
		}
		ip.Step()
	}
	return ip.RT.Reason
}

// trap routes a statement-level error through ON ERROR GOTO if one is
// armed and we're not already inside a handler; otherwise it's fatal.
func (ip *Interp) trap(err error) {
	rt := ip.RT
	be, ok := err.(*berrors.BasicError)
	if !ok {
		rt.Reason = runtime.ErrorHalt
		return
	}
	rt.ErrCode = int(be.Code)
	rt.ErrLine = rt.PC.Line
	if rt.ErrHandlerLine == 0 || rt.InError {
		rt.Reason = runtime.ErrorHalt
		return
	}
	rt.InError = true
	rt.ErrorPC = rt.PC
	target, e2 := rt.Table.RequireLine(rt.ErrHandlerLine, rt.PC.Line, rt.PC.Stmt)
	if e2 != nil {
		rt.Reason = runtime.ErrorHalt
		return
	}
	rt.PC = target
}

// exec runs one statement, returning jumped=true when it already set
// RT.PC itself (a jump, a halt, or a nested one-line-IF branch that
// jumped), in which case Step must not also advance to Table.Next.
func (ip *Interp) exec(stmt ast.Stmt) (bool, error) {
	rt := ip.RT
	line, si := ip.pos()

	switch s := stmt.(type) {
	case *ast.CommentStmt, *ast.DefFnStmt, *ast.DefTypeStmt:
		return false, nil

	case *ast.LetStmt:
		v, err := ip.eval(s.Value)
		if err != nil {
			return false, err
		}
		return false, ip.assignLValue(s.Target, v, line, si)

	case *ast.PrintStmt:
		return false, ip.execPrint(s)

	case *ast.WriteStmt:
		return false, ip.execWrite(s)

	case *ast.InputStmt:
		return false, ip.execInput(s)

	case *ast.IfStmt:
		return ip.execIf(s)

	case *ast.ForStmt:
		return ip.execFor(s)

	case *ast.NextStmt:
		return ip.execNext(s)

	case *ast.WhileStmt:
		return ip.execWhile(s)

	case *ast.WendStmt:
		loopPC, ok := rt.PopWhile()
		if !ok {
			return false, berrors.New(berrors.WendWithoutWhile, line, si)
		}
		rt.PC = loopPC
		return true, nil

	case *ast.GotoStmt:
		target, err := rt.Table.RequireLine(s.Line, line, si)
		if err != nil {
			return false, err
		}
		rt.PC = target
		return true, nil

	case *ast.GosubStmt:
		ret, hasRet := rt.Table.Next(rt.PC)
		if !hasRet {
			ret = runtime.Addr{Line: -1}
		}
		target, err := rt.Table.RequireLine(s.Line, line, si)
		if err != nil {
			return false, err
		}
		rt.PushGosub(ret)
		rt.PC = target
		return true, nil

	case *ast.ReturnStmt:
		ret, ok := rt.PopGosub()
		if !ok {
			return false, berrors.New(berrors.ReturnWithoutGosub, line, si)
		}
		if s.Line != 0 {
			target, err := rt.Table.RequireLine(s.Line, line, si)
			if err != nil {
				return false, err
			}
			rt.PC = target
			return true, nil
		}
		if ret.Line == -1 {
			rt.Reason = runtime.EndHalt
			return true, nil
		}
		rt.PC = ret
		return true, nil

	case *ast.OnGotoStmt:
		return ip.execOnGoto(s)

	case *ast.OnErrorStmt:
		rt.ErrHandlerLine = s.Line
		return false, nil

	case *ast.ResumeStmt:
		return ip.execResume(s)

	case *ast.DataStmt:
		return false, nil

	case *ast.ReadStmt:
		for _, t := range s.Targets {
			v, err := rt.Data.Read(line, si)
			if err != nil {
				return false, err
			}
			if err := ip.assignLValue(t, v, line, si); err != nil {
				return false, err
			}
		}
		return false, nil

	case *ast.RestoreStmt:
		rt.Data.Restore(s.Line)
		return false, nil

	case *ast.DimStmt:
		for _, d := range s.Decls {
			dims, err := ip.evalIndices(d.Dims)
			if err != nil {
				return false, err
			}
			if err := rt.DimArray(d.Name, dims, line, si); err != nil {
				return false, err
			}
		}
		return false, nil

	case *ast.EraseStmt:
		for _, n := range s.Names {
			rt.EraseArray(n)
		}
		return false, nil

	case *ast.ClearStmt:
		rt.ClearState()
		return false, nil

	case *ast.SwapStmt:
		av, err := ip.readLValue(s.A)
		if err != nil {
			return false, err
		}
		bv, err := ip.readLValue(s.B)
		if err != nil {
			return false, err
		}
		if err := ip.assignLValue(s.A, bv, line, si); err != nil {
			return false, err
		}
		return false, ip.assignLValue(s.B, av, line, si)

	case *ast.OptionBaseStmt:
		if rt.OptionBaseSet || len(rt.Arrays) > 0 {
			return false, berrors.New(berrors.DuplicateDefinition, line, si)
		}
		rt.OptionBase = s.Base
		rt.OptionBaseSet = true
		return false, nil

	case *ast.RandomizeStmt:
		return false, ip.execRandomize(s)

	case *ast.TronStmt:
		rt.Trace = true
		return false, nil
	case *ast.TroffStmt:
		rt.Trace = false
		return false, nil

	case *ast.WidthStmt:
		w, err := ip.eval(s.Width)
		if err != nil {
			return false, err
		}
		ip.Console.SetWidth(int(values.ToNumber(w)))
		return false, nil

	case *ast.ClsStmt:
		ip.Console.ClearScreen()
		return false, nil

	case *ast.PokeStmt, *ast.OutStmt, *ast.WaitStmt, *ast.CallStmt:
		// Hardware-proximate statements with no addressable memory/IO in
		// this environment; evaluate operands for side-effect parity
		// (e.g. a divide-by-zero in the address expression still faults)
		// and otherwise no-op.
		return false, ip.evalOperandsForEffect(stmt)

	case *ast.ErrorStmt:
		v, err := ip.eval(s.Code)
		if err != nil {
			return false, err
		}
		return false, berrors.New(berrors.Code(int(values.ToNumber(v))), line, si)

	case *ast.EndStmt:
		rt.Reason = runtime.EndHalt
		return true, nil

	case *ast.StopStmt:
		rt.Reason = runtime.StopHalt
		return true, nil

	case *ast.OpenStmt:
		return false, ip.execOpen(s)
	case *ast.CloseStmt:
		return false, ip.execClose(s)
	case *ast.FieldStmt:
		return false, ip.execField(s)
	case *ast.GetStmt:
		return false, ip.execGet(s)
	case *ast.PutStmt:
		return false, ip.execPut(s)
	case *ast.LsetStmt:
		return false, ip.execLset(s)
	case *ast.MidAssignStmt:
		return false, ip.execMidAssign(s)
	case *ast.KillStmt:
		return false, ip.execKill(s)
	case *ast.NameStmt:
		return false, ip.execName(s)

	case *ast.ChainStmt:
		rt.ChainRequest = ip.chainFromStmt(s)
		rt.Reason = runtime.EndHalt
		return true, nil
	case *ast.RunStmt:
		rt.ChainRequest = ip.chainFromRun(s)
		rt.Reason = runtime.EndHalt
		return true, nil
	case *ast.MergeStmt:
		rt.ChainRequest = &runtime.ChainRequest{Filename: ip.evalString(s.Path), Merge: true}
		rt.Reason = runtime.EndHalt
		return true, nil
	case *ast.CommonStmt:
		rt.Common = append(rt.Common, s.Names...)
		return false, nil
	}
	return false, berrors.Newf(berrors.Internal, line, si, "unhandled statement %T", stmt)
}

func (ip *Interp) evalOperandsForEffect(stmt ast.Stmt) error {
	var exprs []ast.Expr
	switch s := stmt.(type) {
	case *ast.PokeStmt:
		exprs = []ast.Expr{s.Addr, s.Value}
	case *ast.OutStmt:
		exprs = []ast.Expr{s.Port, s.Value}
	case *ast.WaitStmt:
		exprs = []ast.Expr{s.Addr, s.Mask}
	case *ast.CallStmt:
		exprs = s.Args
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if _, err := ip.eval(e); err != nil {
			return err
		}
	}
	return nil
}
