package interp

import (
	"strings"
	"testing"

	"mbasic/internal/parser"
	"mbasic/internal/ports"
	"mbasic/internal/runtime"
)

// fakeConsole is an in-memory ConsolePort for end-to-end tests: it captures
// everything written to Print and tracks the same column state the real
// StdConsole does, without touching a terminal.
type fakeConsole struct {
	out    strings.Builder
	column int
	width  int
}

func newFakeConsole() *fakeConsole { return &fakeConsole{width: 80} }

func (c *fakeConsole) Print(text string) {
	c.out.WriteString(text)
	for _, r := range text {
		switch r {
		case '\n':
			c.column = 0
		default:
			c.column++
		}
	}
}
func (c *fakeConsole) Input(prompt string) (string, error) { return "", nil }
func (c *fakeConsole) Inkey() (byte, bool)                 { return 0, false }
func (c *fakeConsole) GetColumn() int                       { return c.column }
func (c *fakeConsole) SetColumn(n int)                      { c.column = n }
func (c *fakeConsole) GetWidth() int                        { return c.width }
func (c *fakeConsole) SetWidth(n int)                       { c.width = n }
func (c *fakeConsole) ClearScreen()                         { c.column = 0 }

// noFileSystem is a FileSystemPort stub for programs that do no file I/O.
type noFileSystem struct{}

func (noFileSystem) Open(path string, mode ports.OpenMode, recLen int) (ports.FileHandle, error) {
	panic("no file I/O expected in this test")
}
func (noFileSystem) Exists(path string) bool          { return false }
func (noFileSystem) Remove(path string) error         { return nil }
func (noFileSystem) Rename(old, new string) error     { return nil }

// runProgram parses and runs src to completion (or maxSteps ticks),
// returning the console output and the final halt reason.
func runProgram(t *testing.T, src string, maxSteps int) (string, runtime.Reason, *Interp) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	rt := runtime.New()
	rt.LoadProgram(prog)
	console := newFakeConsole()
	ip := New(rt, console, noFileSystem{})
	reason := ip.Run(maxSteps)
	return console.out.String(), reason, ip
}

func TestForNextInvariant(t *testing.T) {
	out, reason, _ := runProgram(t, "10 FOR I = 1 TO 3\n20 PRINT I;\n30 NEXT I\n40 END", 1000)
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt", reason)
	}
	if got := strings.TrimSpace(out); got != "1  2  3" {
		t.Errorf("got %q, want %q", got, "1  2  3")
	}
}

func TestForSkipsBodyWhenFromExceedsTo(t *testing.T) {
	out, _, _ := runProgram(t, "10 FOR I = 5 TO 1\n20 PRINT \"body\"\n30 NEXT I\n40 PRINT \"after\"", 1000)
	if strings.Contains(out, "body") {
		t.Error("expected FOR with FROM > TO to skip the loop body entirely")
	}
	if !strings.Contains(out, "after") {
		t.Error("expected execution to continue after the loop")
	}
}

func TestWhileWendInvariant(t *testing.T) {
	out, reason, _ := runProgram(t, "10 I = 1\n20 WHILE I <= 3\n30 PRINT I;\n40 I = I + 1\n50 WEND\n60 END", 1000)
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt", reason)
	}
	if got := strings.TrimSpace(out); got != "1  2  3" {
		t.Errorf("got %q, want %q", got, "1  2  3")
	}
}

func TestWhileSkipsBodyWhenConditionFalseAtEntry(t *testing.T) {
	out, _, _ := runProgram(t, "10 I = 10\n20 WHILE I < 5\n30 PRINT \"body\"\n40 WEND\n50 PRINT \"after\"", 1000)
	if strings.Contains(out, "body") {
		t.Error("expected WHILE false at entry to skip the loop body entirely")
	}
	if !strings.Contains(out, "after") {
		t.Error("expected execution to continue after the loop")
	}
}

func TestGosubReturnBalance(t *testing.T) {
	out, reason, _ := runProgram(t, "10 GOSUB 100\n20 PRINT \"back\"\n30 END\n100 PRINT \"in sub\"\n110 RETURN", 1000)
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt", reason)
	}
	if !strings.Contains(out, "in sub") || !strings.Contains(out, "back") {
		t.Errorf("got %q, want both %q and %q", out, "in sub", "back")
	}
}

func TestOnErrorGotoTraps(t *testing.T) {
	out, reason, ip := runProgram(t, "10 ON ERROR GOTO 100\n20 X = 1/0\n30 END\n100 PRINT \"trapped\"\n110 RESUME NEXT", 1000)
	_ = out
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt after trapped error resumes", reason)
	}
	if ip.RT.InError {
		t.Error("expected InError cleared after RESUME")
	}
	if !strings.Contains(out, "trapped") {
		t.Errorf("got %q, want it to contain %q", out, "trapped")
	}
}

func TestUntrappedErrorHalts(t *testing.T) {
	_, reason, ip := runProgram(t, "10 X = 1/0\n20 END", 1000)
	if reason != runtime.ErrorHalt {
		t.Fatalf("got reason %v, want ErrorHalt", reason)
	}
	if ip.RT.ErrCode == 0 {
		t.Error("expected ErrCode to be set on an untrapped error")
	}
}

func TestPrintCommaPadsToNext14ColumnZoneWithSpaces(t *testing.T) {
	out, _, _ := runProgram(t, `10 PRINT "AB",`, 1000)
	// "AB" (2 cols) then pad with spaces to column 14: 12 spaces, no tab byte.
	if strings.ContainsRune(out, '\t') {
		t.Errorf("got %q, contains a literal tab byte; comma separator must pad with spaces", out)
	}
	want := "AB" + strings.Repeat(" ", 12)
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestPrintImplicitSeparatorIsOneSpace(t *testing.T) {
	out, _, _ := runProgram(t, `10 PRINT "A" "B"`, 1000)
	if strings.TrimRight(out, "\n") != "A B" {
		t.Errorf("got %q, want %q (implicit single-space separator)", out, "A B")
	}
}

func TestCallStatementIsInert(t *testing.T) {
	out, reason, _ := runProgram(t, "10 CALL FOO(1,2)\n20 PRINT \"ran\"\n30 END", 1000)
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt (CALL must be inert, not raise an error)", reason)
	}
	if !strings.Contains(out, "ran") {
		t.Errorf("got %q, want it to contain %q", out, "ran")
	}
}

func TestCallStatementStillEvaluatesOperandsForEffect(t *testing.T) {
	_, reason, ip := runProgram(t, "10 CALL FOO(1/0)\n20 END", 1000)
	if reason != runtime.ErrorHalt {
		t.Fatalf("got reason %v, want ErrorHalt (divide-by-zero in a CALL operand must still fault)", reason)
	}
	_ = ip
}

func TestLeftRightDollarNegativeLengthIsIllegalFunctionCall(t *testing.T) {
	_, reason, _ := runProgram(t, `10 X$ = LEFT$("hello", -1)`, 1000)
	if reason != runtime.ErrorHalt {
		t.Fatalf("got reason %v, want ErrorHalt for LEFT$ with n < 0", reason)
	}
}

func TestLeftDollarNBeyondLengthReturnsWholeString(t *testing.T) {
	out, reason, _ := runProgram(t, `10 PRINT LEFT$("hi", 50)`, 1000)
	if reason != runtime.EndHalt {
		t.Fatalf("got reason %v, want EndHalt", reason)
	}
	if !strings.Contains(out, "hi") {
		t.Errorf("got %q, want it to contain %q", out, "hi")
	}
}
