package interp

import (
	"errors"
	"strings"
	"syscall"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/ports"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

func modeFor(word string, line, stmt int) (ports.OpenMode, error) {
	switch strings.ToUpper(word) {
	case "INPUT":
		return ports.ModeInput, nil
	case "OUTPUT":
		return ports.ModeOutput, nil
	case "APPEND":
		return ports.ModeAppend, nil
	case "RANDOM", "R":
		return ports.ModeRandom, nil
	}
	return 0, berrors.New(berrors.BadFileMode, line, stmt)
}

// execOpen implements both classic and modern OPEN forms (spec §4.7).
func (ip *Interp) execOpen(s *ast.OpenStmt) error {
	rt := ip.RT
	line, si := ip.pos()

	fv, err := ip.eval(s.FileNum)
	if err != nil {
		return err
	}
	n := int(values.ToNumber(fv))
	if n < 1 || n > runtime.MaxFileNumber {
		return berrors.New(berrors.BadFileNumber, line, si)
	}
	if _, exists := rt.Files[n]; exists {
		return berrors.New(berrors.FileAlreadyOpen, line, si)
	}

	pv, err := ip.eval(s.Path)
	if err != nil {
		return err
	}
	path := pv.Str
	if path == "" {
		return berrors.New(berrors.BadFileName, line, si)
	}

	mode, err := modeFor(s.Mode, line, si)
	if err != nil {
		return err
	}

	recLen := 128
	if s.RecLen != nil {
		rv, err := ip.eval(s.RecLen)
		if err != nil {
			return err
		}
		recLen = int(values.ToNumber(rv))
	}

	handle, oerr := ip.FS.Open(path, mode, recLen)
	if oerr != nil {
		return berrors.Wrap(berrors.FileNotFound, line, si, oerr, path)
	}
	rt.Files[n] = &runtime.OpenFile{
		Handle:     handle,
		Mode:       mode,
		Path:       path,
		RecLen:     recLen,
		FieldSpecs: make(map[string]runtime.FieldSpec),
	}
	return nil
}

func (ip *Interp) execClose(s *ast.CloseStmt) error {
	rt := ip.RT
	if len(s.Files) == 0 {
		for _, n := range rt.OpenFilesSorted() {
			_ = rt.Files[n].Handle.Close()
			delete(rt.Files, n)
		}
		return nil
	}
	for _, e := range s.Files {
		v, err := ip.eval(e)
		if err != nil {
			return err
		}
		n := int(values.ToNumber(v))
		if f, ok := rt.Files[n]; ok {
			_ = f.Handle.Close()
			delete(rt.Files, n)
		}
	}
	return nil
}

func (ip *Interp) refreshFieldVars(f *runtime.OpenFile) error {
	line, si := ip.pos()
	for _, spec := range f.FieldSpecs {
		end := spec.Offset + spec.Width
		if end > len(f.FieldBuf) {
			end = len(f.FieldBuf)
		}
		text := string(f.FieldBuf[spec.Offset:end])
		if err := ip.RT.SetScalar(spec.Name, values.Str(text), line, si); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interp) execField(s *ast.FieldStmt) error {
	rt := ip.RT
	line, si := ip.pos()

	fv, err := ip.eval(s.FileNum)
	if err != nil {
		return err
	}
	f, ok := rt.Files[int(values.ToNumber(fv))]
	if !ok {
		return berrors.New(berrors.BadFileNumber, line, si)
	}

	total := 0
	specs := make(map[string]runtime.FieldSpec, len(s.Fields))
	for _, fd := range s.Fields {
		wv, err := ip.eval(fd.Width)
		if err != nil {
			return err
		}
		w := int(values.ToNumber(wv))
		specs[runtime.StoreKey(fd.VarName)] = runtime.FieldSpec{Name: fd.VarName, Offset: total, Width: w}
		total += w
	}
	f.RecLen = total
	f.FieldBuf = make([]byte, total)
	for i := range f.FieldBuf {
		f.FieldBuf[i] = ' '
	}
	f.FieldSpecs = specs
	return ip.refreshFieldVars(f)
}

func (ip *Interp) fileAndRecord(fileExpr, recExpr ast.Expr) (*runtime.OpenFile, int, error) {
	rt := ip.RT
	line, si := ip.pos()
	fv, err := ip.eval(fileExpr)
	if err != nil {
		return nil, 0, err
	}
	f, ok := rt.Files[int(values.ToNumber(fv))]
	if !ok {
		return nil, 0, berrors.New(berrors.BadFileNumber, line, si)
	}
	rec := f.CurrentRecord + 1
	if recExpr != nil {
		rv, err := ip.eval(recExpr)
		if err != nil {
			return nil, 0, err
		}
		rec = int(values.ToNumber(rv))
	}
	if rec < 1 {
		return nil, 0, berrors.New(berrors.BadRecordNumber, line, si)
	}
	return f, rec, nil
}

func (ip *Interp) execGet(s *ast.GetStmt) error {
	line, si := ip.pos()
	f, rec, err := ip.fileAndRecord(s.FileNum, s.Rec)
	if err != nil {
		return err
	}
	if err := f.Handle.SeekRecord(rec, f.RecLen); err != nil {
		return berrors.Wrap(berrors.DiskIOError, line, si, err, "GET")
	}
	buf := make([]byte, f.RecLen)
	nRead, rerr := f.Handle.ReadRaw(buf)
	if rerr != nil {
		return berrors.Wrap(berrors.DiskIOError, line, si, rerr, "GET")
	}
	for i := nRead; i < len(buf); i++ {
		buf[i] = ' '
	}
	f.FieldBuf = buf
	f.CurrentRecord = rec
	return ip.refreshFieldVars(f)
}

func (ip *Interp) execPut(s *ast.PutStmt) error {
	line, si := ip.pos()
	f, rec, err := ip.fileAndRecord(s.FileNum, s.Rec)
	if err != nil {
		return err
	}
	if err := f.Handle.SeekRecord(rec, f.RecLen); err != nil {
		return berrors.Wrap(berrors.DiskIOError, line, si, err, "PUT")
	}
	buf := make([]byte, f.RecLen)
	copy(buf, f.FieldBuf)
	for i := len(f.FieldBuf); i < len(buf); i++ {
		buf[i] = ' '
	}
	if n, werr := f.Handle.WriteRaw(buf); werr != nil {
		if errors.Is(werr, syscall.ENOSPC) {
			return berrors.WrapDiskFull(line, si, werr, int64(n))
		}
		return berrors.Wrap(berrors.DiskIOError, line, si, werr, "PUT")
	}
	f.CurrentRecord = rec
	return f.Handle.Flush()
}

func padField(s string, width int, right bool) []byte {
	buf := make([]byte, width)
	for i := range buf {
		buf[i] = ' '
	}
	b := []byte(s)
	if len(b) > width {
		b = b[:width]
	}
	if right {
		copy(buf[width-len(b):], b)
	} else {
		copy(buf, b)
	}
	return buf
}

// execLset implements LSET/RSET: if the target names a FIELD-declared
// variable, write the padded/truncated bytes into that file's buffer and
// republish the scalar; otherwise it behaves as a plain string assignment
// (spec §4.5/§4.7).
func (ip *Interp) execLset(s *ast.LsetStmt) error {
	rt := ip.RT
	line, si := ip.pos()
	v, err := ip.eval(s.Value)
	if err != nil {
		return err
	}
	key := runtime.StoreKey(s.Target.Name)
	for _, f := range rt.Files {
		spec, ok := f.FieldSpecs[key]
		if !ok {
			continue
		}
		padded := padField(v.Str, spec.Width, s.Right)
		copy(f.FieldBuf[spec.Offset:spec.Offset+spec.Width], padded)
		return rt.SetScalar(s.Target.Name, values.Str(string(padded)), line, si)
	}
	return rt.SetScalar(s.Target.Name, v, line, si)
}

// execMidAssign implements `MID$(v,s[,l]) = e`: replace bytes in place
// without ever growing v (spec §4.5).
func (ip *Interp) execMidAssign(s *ast.MidAssignStmt) error {
	line, si := ip.pos()
	cur, err := ip.readLValue(s.Target)
	if err != nil {
		return err
	}
	startV, err := ip.eval(s.Start)
	if err != nil {
		return err
	}
	start := int(values.ToNumber(startV))
	if start < 1 {
		return berrors.New(berrors.IllegalFunctionCall, line, si)
	}
	ev, err := ip.eval(s.Value)
	if err != nil {
		return err
	}
	repl := ev.Str
	if s.Length != nil {
		lv, err := ip.eval(s.Length)
		if err != nil {
			return err
		}
		if n := int(values.ToNumber(lv)); n < len(repl) {
			repl = repl[:n]
		}
	}
	base := []byte(cur.Str)
	if start > len(base) {
		return nil
	}
	end := start - 1 + len(repl)
	if end > len(base) {
		end = len(base)
		repl = repl[:end-(start-1)]
	}
	copy(base[start-1:end], repl)
	return ip.assignLValue(s.Target, values.Str(string(base)), line, si)
}

func (ip *Interp) execKill(s *ast.KillStmt) error {
	line, si := ip.pos()
	path := ip.evalString(s.Path)
	if err := ip.FS.Remove(path); err != nil {
		return berrors.Wrap(berrors.FileNotFound, line, si, err, path)
	}
	return nil
}

func (ip *Interp) execName(s *ast.NameStmt) error {
	line, si := ip.pos()
	oldPath := ip.evalString(s.Old)
	newPath := ip.evalString(s.New)
	if err := ip.FS.Rename(oldPath, newPath); err != nil {
		return berrors.Wrap(berrors.FileNotFound, line, si, err, oldPath)
	}
	return nil
}

// chainFromStmt/chainFromRun build the request the outer driver consumes
// after a CHAIN/RUN halts execution (spec §4.5/§6); the interpreter itself
// never reloads a program.
func (ip *Interp) chainFromStmt(s *ast.ChainStmt) *runtime.ChainRequest {
	req := &runtime.ChainRequest{
		Filename: ip.evalString(s.Path),
		Merge:    s.Merge,
		KeepAll:  s.All,
		KeepVars: true,
		Delete:   s.Delete,
		RunID:    ip.RT.RunID.String(),
	}
	if s.Line != nil {
		if v, err := ip.eval(s.Line); err == nil {
			req.StartLine = int(values.ToNumber(v))
			req.HasStartLine = true
		}
	}
	return req
}

func (ip *Interp) chainFromRun(s *ast.RunStmt) *runtime.ChainRequest {
	req := &runtime.ChainRequest{
		KeepAll: s.R,
		RunID:   ip.RT.RunID.String(),
	}
	if s.Path != nil {
		req.Filename = ip.evalString(s.Path)
	}
	if s.Line != nil {
		if v, err := ip.eval(s.Line); err == nil {
			req.StartLine = int(values.ToNumber(v))
			req.HasStartLine = true
		}
	}
	return req
}
