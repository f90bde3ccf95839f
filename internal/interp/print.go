package interp

import (
	"math"
	"strconv"
	"strings"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

// fileFor resolves a #n file expression (nil means console) to its open
// entry, raising BadFileNumber for an unopened number.
func (ip *Interp) fileFor(fileExpr ast.Expr) (*runtime.OpenFile, error) {
	if fileExpr == nil {
		return nil, nil
	}
	v, err := ip.eval(fileExpr)
	if err != nil {
		return nil, err
	}
	n := int(values.ToNumber(v))
	f, ok := ip.RT.Files[n]
	if !ok {
		line, si := ip.pos()
		return nil, berrors.New(berrors.BadFileNumber, line, si)
	}
	return f, nil
}

// execPrint implements PRINT/LPRINT/PRINT USING (spec §4.5/§4.2): no printer
// port exists in this environment, so LPRINT is routed to the same console
// sink as PRINT (a deliberate simplification — see DESIGN.md).
func (ip *Interp) execPrint(s *ast.PrintStmt) error {
	f, err := ip.fileFor(s.File)
	if err != nil {
		return err
	}
	localCol := 0

	getCol := func() int {
		if f == nil {
			return ip.Console.GetColumn()
		}
		return localCol
	}
	write := func(text string) error {
		if f == nil {
			ip.Console.Print(text)
			return nil
		}
		for _, ch := range text {
			if ch == '\n' {
				localCol = 0
			} else {
				localCol++
			}
		}
		return f.Handle.Write(text)
	}
	newline := func() error { return write("\n") }

	if s.Using != nil {
		fv, err := ip.eval(s.Using)
		if err != nil {
			return err
		}
		var vals []values.Value
		for _, it := range s.Items {
			if it.Expr == nil {
				continue
			}
			v, err := ip.eval(it.Expr)
			if err != nil {
				return err
			}
			vals = append(vals, v)
		}
		return write(formatUsing(fv.Str, vals))
	}

	for i, it := range s.Items {
		if it.Expr != nil {
			if call, ok := it.Expr.(*ast.Call); ok && strings.EqualFold(call.Name, "tab") {
				target, err := ip.evalTabTarget(call.Args)
				if err != nil {
					return err
				}
				if cur := getCol(); target > cur {
					if err := write(strings.Repeat(" ", target-cur)); err != nil {
						return err
					}
				}
			} else {
				v, err := ip.eval(it.Expr)
				if err != nil {
					return err
				}
				if err := write(values.Stringify(v)); err != nil {
					return err
				}
			}
		}
		last := i == len(s.Items)-1
		switch it.Sep {
		case ast.SepSemi:
			// no gap
		case ast.SepComma:
			cur := getCol()
			target := ((cur / 14) + 1) * 14
			if err := write(strings.Repeat(" ", target-cur)); err != nil {
				return err
			}
		case ast.SepNone:
			if !last {
				if err := write(" "); err != nil {
					return err
				}
			}
		case ast.SepEnd:
			return newline()
		}
		if last && (it.Sep == ast.SepSemi || it.Sep == ast.SepComma) {
			return nil
		}
	}
	return newline()
}

func (ip *Interp) evalTabTarget(args []ast.Expr) (int, error) {
	if len(args) != 1 {
		line, si := ip.pos()
		return 0, berrors.New(berrors.IllegalFunctionCall, line, si)
	}
	v, err := ip.eval(args[0])
	if err != nil {
		return 0, err
	}
	return int(values.ToNumber(v)), nil
}

// execWrite implements WRITE/WRITE #n: comma-separated, string items quoted,
// trailing newline (spec §4.7).
func (ip *Interp) execWrite(s *ast.WriteStmt) error {
	f, err := ip.fileFor(s.File)
	if err != nil {
		return err
	}
	parts := make([]string, len(s.Items))
	for i, e := range s.Items {
		v, err := ip.eval(e)
		if err != nil {
			return err
		}
		if v.IsString() {
			parts[i] = `"` + v.Str + `"`
		} else {
			parts[i] = strings.TrimSpace(values.FormatNumber(v))
		}
	}
	out := strings.Join(parts, ",") + "\n"
	if f == nil {
		ip.Console.Print(out)
		return nil
	}
	return f.Handle.Write(out)
}

// execInput implements INPUT/LINE INPUT, console and file forms (spec
// §4.5): a missing value just leaves later targets unassigned ("assign what
// we have", §9 open question resolved that way).
func (ip *Interp) execInput(s *ast.InputStmt) error {
	rt := ip.RT
	line, si := ip.pos()

	f, err := ip.fileFor(s.File)
	if err != nil {
		return err
	}

	var rawLine string
	if f == nil {
		prompt := ""
		if s.PromptExpr != nil {
			pv, err := ip.eval(s.PromptExpr)
			if err != nil {
				return err
			}
			prompt = pv.Str
		} else if !s.NoQMark && !s.LineInput {
			prompt = "? "
		}
		rawLine, err = ip.Console.Input(prompt)
		if err != nil {
			return berrors.Wrap(berrors.DiskIOError, line, si, err, "INPUT")
		}
	} else {
		l, ok, err := f.Handle.ReadLine()
		if err != nil {
			return berrors.Wrap(berrors.DiskIOError, line, si, err, "INPUT")
		}
		if !ok {
			return berrors.New(berrors.InputPastEnd, line, si)
		}
		rawLine = l
	}

	if s.LineInput {
		if len(s.Vars) == 0 {
			return nil
		}
		return ip.assignLValue(s.Vars[0], values.Str(rawLine), line, si)
	}

	fields := strings.Split(rawLine, ",")
	for i, lv := range s.Vars {
		if i >= len(fields) {
			break
		}
		text := strings.TrimSpace(fields[i])
		text = strings.Trim(text, `"`)
		var v values.Value
		if rt.ResolvedType(lv.Name) == values.TString {
			v = values.Str(text)
		} else {
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				n = 0
			}
			v = values.Single(n)
		}
		if err := ip.assignLValue(lv, v, line, si); err != nil {
			return err
		}
	}
	return nil
}

// --- PRINT USING -------------------------------------------------------

// formatUsing expands fmt over vals per §4.2's PRINT USING rule, reapplying
// the whole format string each time more values remain than fields consumed
// one pass (classic MBASIC's multi-value wraparound), ending with one
// newline for the whole statement.
func formatUsing(fmtStr string, vals []values.Value) string {
	var out strings.Builder
	vi := 0
	if len(vals) == 0 {
		out.WriteString(formatUsingPass(fmtStr, nil, &vi))
	}
	for vi < len(vals) {
		start := vi
		out.WriteString(formatUsingPass(fmtStr, vals, &vi))
		if vi == start {
			break
		}
	}
	out.WriteString("\n")
	return out.String()
}

func formatUsingPass(fmtStr string, vals []values.Value, vi *int) string {
	var out strings.Builder
	next := func() values.Value {
		if *vi < len(vals) {
			v := vals[*vi]
			*vi++
			return v
		}
		return values.Value{}
	}
	isFieldChar := func(b byte) bool {
		switch b {
		case '#', ',', '.', '+', '-', '$', '*', '^':
			return true
		}
		return false
	}

	i, n := 0, len(fmtStr)
	for i < n {
		c := fmtStr[i]
		switch {
		case c == '_':
			if i+1 < n {
				out.WriteByte(fmtStr[i+1])
				i += 2
			} else {
				i++
			}

		case c == '!':
			v := next()
			if len(v.Str) > 0 {
				out.WriteByte(v.Str[0])
			}
			i++

		case c == '&':
			out.WriteString(next().Str)
			i++

		case c == '\\':
			j := i + 1
			for j < n && fmtStr[j] == ' ' {
				j++
			}
			if j < n && fmtStr[j] == '\\' {
				width := (j - i - 1) + 2
				out.WriteString(padStringField(next().Str, width))
				i = j + 1
			} else {
				out.WriteByte(c)
				i++
			}

		case isFieldChar(c):
			j := i
			for j < n && isFieldChar(fmtStr[j]) {
				j++
			}
			spec := fmtStr[i:j]
			out.WriteString(formatNumericField(spec, values.ToNumber(next())))
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func padStringField(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatNumericField renders one #.##-style field spec. Supported: digit
// count before/after '.', ',' thousands grouping, leading '$'/'*' fill,
// leading/trailing '+'/'-' sign slot, '^' for exponential notation. Not
// bit-exact with MBASIC's field scanner (explicitly not required).
func formatNumericField(spec string, f float64) string {
	if strings.Contains(spec, "^") {
		decDigits := strings.Count(spec, "#") - 1
		if decDigits < 0 {
			decDigits = 0
		}
		return strconv.FormatFloat(f, 'E', decDigits, 64)
	}

	dotIdx := strings.IndexByte(spec, '.')
	var intDigits, decDigits int
	if dotIdx >= 0 {
		intDigits = strings.Count(spec[:dotIdx], "#")
		decDigits = strings.Count(spec[dotIdx+1:], "#")
	} else {
		intDigits = strings.Count(spec, "#")
	}
	useCommas := strings.Contains(spec, ",")
	dollar := strings.Contains(spec, "$")
	star := strings.Contains(spec, "*")
	trailingMinus := strings.HasSuffix(spec, "-")
	trailingPlus := strings.HasSuffix(spec, "+")
	leadingPlus := strings.HasPrefix(spec, "+")

	neg := f < 0
	mag := math.Abs(f)
	body := strconv.FormatFloat(mag, 'f', decDigits, 64)
	if useCommas {
		body = insertThousands(body)
	}

	width := intDigits + decDigits
	if decDigits > 0 {
		width++
	}
	if useCommas && intDigits > 3 {
		width += (intDigits - 1) / 3
	}
	padChar := byte(' ')
	if star {
		padChar = '*'
	}
	for len(body) < width {
		body = string(padChar) + body
	}
	if dollar {
		body = "$" + body
	}

	switch {
	case neg && trailingMinus:
		return body + "-"
	case neg:
		return "-" + body
	case trailingPlus:
		return body + "+"
	case leadingPlus:
		return "+" + body
	default:
		return " " + body
	}
}

func insertThousands(s string) string {
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	n := len(intPart)
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}
	res := b.String()
	if neg {
		res = "-" + res
	}
	if len(parts) == 2 {
		res += "." + parts[1]
	}
	return res
}
