package interp

import (
	"math"
	"strings"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

// eval evaluates an expression node to a Value (spec §4.6).
func (ip *Interp) eval(e ast.Expr) (values.Value, error) {
	rt := ip.RT
	line, si := ip.pos()

	switch n := e.(type) {
	case *ast.NumberLit:
		return numberLitValue(n), nil

	case *ast.StringLit:
		return values.Str(n.Value), nil

	case *ast.VarRef:
		lname := strings.ToLower(n.Name)
		switch lname {
		case "err":
			return values.Int(int16(rt.ErrCode)), nil
		case "erl":
			return values.Int(int16(rt.ErrLine)), nil
		}
		return rt.GetScalar(n.Name), nil

	case *ast.ArrayRef:
		return ip.evalArrayRef(n.Name, n.Indices)

	case *ast.Unary:
		x, err := ip.eval(n.X)
		if err != nil {
			return values.Value{}, err
		}
		return evalUnary(n.Op, x, line, si)

	case *ast.Binary:
		l, err := ip.eval(n.L)
		if err != nil {
			return values.Value{}, err
		}
		r, err := ip.eval(n.R)
		if err != nil {
			return values.Value{}, err
		}
		return evalBinary(n.Op, l, r, line, si)

	case *ast.Call:
		return ip.evalCall(n)
	}
	return values.Value{}, berrors.Newf(berrors.Internal, line, si, "unhandled expression %T", e)
}

// evalString evaluates e and widens it to a Go string via MBASIC's normal
// stringification (used by statements that take a bare path/expr where a
// string is expected, e.g. CHAIN/MERGE/KILL/NAME path operands).
func (ip *Interp) evalString(e ast.Expr) string {
	if e == nil {
		return ""
	}
	v, err := ip.eval(e)
	if err != nil {
		return ""
	}
	if v.IsString() {
		return v.Str
	}
	return values.Stringify(v)
}

func numberLitValue(n *ast.NumberLit) values.Value {
	switch n.Suffix {
	case '%':
		return values.IntF(n.Value)
	case '!':
		return values.Single(n.Value)
	case '#':
		return values.Double(n.Value)
	}
	if n.IsDExp {
		return values.Double(n.Value)
	}
	if n.HasFrac {
		return values.Single(n.Value)
	}
	return values.IntF(n.Value)
}

// resultType implements §4.4's numeric widening: Double beats Single beats
// Integer; String never participates (callers check that first).
func resultType(a, b values.Value) values.VarType {
	ta, tb := a.Type(), b.Type()
	if ta == values.TDouble || tb == values.TDouble {
		return values.TDouble
	}
	if ta == values.TSingle || tb == values.TSingle {
		return values.TSingle
	}
	return values.TInteger
}

func wrapNumeric(t values.VarType, f float64) values.Value {
	switch t {
	case values.TInteger:
		return values.IntF(f)
	case values.TDouble:
		return values.Double(f)
	default:
		return values.Single(f)
	}
}

func toInt16(f float64) int16 {
	r := math.Round(f)
	if r > 32767 {
		r = 32767
	}
	if r < -32768 {
		r = -32768
	}
	return int16(r)
}

func evalUnary(op string, x values.Value, line, stmt int) (values.Value, error) {
	switch op {
	case "-":
		if x.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		return wrapNumeric(x.Type(), -values.ToNumber(x)), nil
	case "+":
		if x.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		return x, nil
	case "NOT":
		return values.Int(^toInt16(values.ToNumber(x))), nil
	}
	return values.Value{}, berrors.Newf(berrors.Internal, line, stmt, "unknown unary operator %q", op)
}

func evalBinary(op string, l, r values.Value, line, stmt int) (values.Value, error) {
	switch op {
	case "+":
		if l.IsString() || r.IsString() {
			if l.IsString() != r.IsString() {
				return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
			}
			return values.Concat(l, r, line, stmt)
		}
		t := resultType(l, r)
		return wrapNumeric(t, values.ToNumber(l)+values.ToNumber(r)), nil

	case "-", "*", "/":
		if l.IsString() || r.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		t := resultType(l, r)
		lf, rf := values.ToNumber(l), values.ToNumber(r)
		switch op {
		case "-":
			return wrapNumeric(t, lf-rf), nil
		case "*":
			return wrapNumeric(t, lf*rf), nil
		default:
			if rf == 0 {
				return values.Value{}, berrors.New(berrors.DivisionByZero, line, stmt)
			}
			return wrapNumeric(t, lf/rf), nil
		}

	case "\\":
		if l.IsString() || r.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		a, b := int64(math.Round(values.ToNumber(l))), int64(math.Round(values.ToNumber(r)))
		if b == 0 {
			return values.Value{}, berrors.New(berrors.DivisionByZero, line, stmt)
		}
		return values.IntF(float64(a / b)), nil

	case "MOD":
		if l.IsString() || r.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		a, b := int64(math.Round(values.ToNumber(l))), int64(math.Round(values.ToNumber(r)))
		if b == 0 {
			return values.Value{}, berrors.New(berrors.DivisionByZero, line, stmt)
		}
		return values.IntF(float64(a % b)), nil

	case "^":
		if l.IsString() || r.IsString() {
			return values.Value{}, berrors.New(berrors.TypeMismatch, line, stmt)
		}
		t := resultType(l, r)
		return wrapNumeric(t, math.Pow(values.ToNumber(l), values.ToNumber(r))), nil

	case "=", "<>", "<", ">", "<=", ">=":
		cmp, err := values.Compare(l, r, line, stmt)
		if err != nil {
			return values.Value{}, err
		}
		var truth bool
		switch op {
		case "=":
			truth = cmp == 0
		case "<>":
			truth = cmp != 0
		case "<":
			truth = cmp < 0
		case ">":
			truth = cmp > 0
		case "<=":
			truth = cmp <= 0
		case ">=":
			truth = cmp >= 0
		}
		return values.Bool(truth), nil

	case "AND", "OR", "XOR", "EQV", "IMP":
		li, ri := toInt16(values.ToNumber(l)), toInt16(values.ToNumber(r))
		var res int16
		switch op {
		case "AND":
			res = li & ri
		case "OR":
			res = li | ri
		case "XOR":
			res = li ^ ri
		case "EQV":
			res = ^(li ^ ri)
		case "IMP":
			res = ^li | ri
		}
		return values.Int(res), nil
	}
	return values.Value{}, berrors.Newf(berrors.Internal, line, stmt, "unknown binary operator %q", op)
}

// --- lvalues and arrays -------------------------------------------------------

func (ip *Interp) evalIndices(exprs []ast.Expr) ([]int, error) {
	idx := make([]int, len(exprs))
	for i, e := range exprs {
		v, err := ip.eval(e)
		if err != nil {
			return nil, err
		}
		if v.IsString() {
			line, si := ip.pos()
			return nil, berrors.New(berrors.TypeMismatch, line, si)
		}
		idx[i] = int(math.Round(values.ToNumber(v)))
	}
	return idx, nil
}

func (ip *Interp) evalArrayRef(name string, indexExprs []ast.Expr) (values.Value, error) {
	rt := ip.RT
	line, si := ip.pos()
	idx, err := ip.evalIndices(indexExprs)
	if err != nil {
		return values.Value{}, err
	}
	arr, ok := rt.GetArrayIfExists(name)
	if !ok {
		arr = rt.AutoDimArray(name, len(idx))
	}
	return arr.Get(idx, line, si)
}

func (ip *Interp) assignLValue(lv ast.LValue, v values.Value, line, stmt int) error {
	rt := ip.RT
	if lv.Indices == nil {
		return rt.SetScalar(lv.Name, v, line, stmt)
	}
	idx, err := ip.evalIndices(lv.Indices)
	if err != nil {
		return err
	}
	arr, ok := rt.GetArrayIfExists(lv.Name)
	if !ok {
		arr = rt.AutoDimArray(lv.Name, len(idx))
	}
	cv, err := values.CoerceTo(v, arr.Type, line, stmt)
	if err != nil {
		return err
	}
	return arr.Set(idx, cv, line, stmt)
}

func (ip *Interp) readLValue(lv ast.LValue) (values.Value, error) {
	rt := ip.RT
	line, si := ip.pos()
	if lv.Indices == nil {
		return rt.GetScalar(lv.Name), nil
	}
	idx, err := ip.evalIndices(lv.Indices)
	if err != nil {
		return values.Value{}, err
	}
	arr, ok := rt.GetArrayIfExists(lv.Name)
	if !ok {
		arr = rt.AutoDimArray(lv.Name, len(idx))
	}
	return arr.Get(idx, line, si)
}

// evalCall dispatches a name(args) expression: a user DEF FN first, then a
// built-in, and finally an (implicitly auto-dimensioned) array reference —
// the same three-way ambiguity the grammar leaves unresolved on purpose
// (spec §4.2 FN-detection note).
func (ip *Interp) evalCall(n *ast.Call) (values.Value, error) {
	rt := ip.RT
	if fn, ok := rt.Functions[n.Name]; ok {
		return ip.callDefFn(fn, n.Args)
	}
	if b, ok := builtins[n.Name]; ok {
		return b(ip, n.Args)
	}
	return ip.evalArrayRef(n.Name, n.Args)
}

func (ip *Interp) callDefFn(fn *ast.DefFnStmt, argExprs []ast.Expr) (values.Value, error) {
	rt := ip.RT
	line, si := ip.pos()
	if len(argExprs) != len(fn.Params) {
		return values.Value{}, berrors.New(berrors.IllegalFunctionCall, line, si)
	}
	saved := make(map[string]values.Value, len(fn.Params))
	hadSaved := make(map[string]bool, len(fn.Params))
	for i, pname := range fn.Params {
		argVal, err := ip.eval(argExprs[i])
		if err != nil {
			return values.Value{}, err
		}
		key := runtime.StoreKey(pname)
		if old, ok := rt.Scalars[key]; ok {
			saved[key] = old
			hadSaved[key] = true
		}
		if err := rt.SetScalar(pname, argVal, line, si); err != nil {
			return values.Value{}, err
		}
	}
	result, err := ip.eval(fn.Body)
	for _, pname := range fn.Params {
		key := runtime.StoreKey(pname)
		if hadSaved[key] {
			rt.Scalars[key] = saved[key]
		} else {
			delete(rt.Scalars, key)
		}
	}
	return result, err
}
