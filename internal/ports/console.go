package ports

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// StdConsole is the default ConsolePort: stdin/stdout, with column and
// width tracking maintained by the port itself (spec §6).
type StdConsole struct {
	out    io.Writer
	in     *bufio.Reader
	column int
	width  int
}

// NewStdConsole builds a console bound to os.Stdin/os.Stdout. The default
// width is 80 when stdout isn't a real terminal (a redirected/piped run),
// matching classic MBASIC's assumption for non-interactive output.
func NewStdConsole() *StdConsole {
	width := 80
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		width = 80 // no portable ioctl in the stdlib; keep MBASIC's classic default
	}
	return &StdConsole{out: os.Stdout, in: bufio.NewReader(os.Stdin), width: width}
}

func (c *StdConsole) Print(text string) {
	fmt.Fprint(c.out, text)
	for _, r := range text {
		switch r {
		case '\n':
			c.column = 0
		case '\t':
			c.column = ((c.column / 14) + 1) * 14
		default:
			c.column++
		}
	}
}

func (c *StdConsole) Input(prompt string) (string, error) {
	if prompt != "" {
		c.Print(prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	c.column = 0
	return line, nil
}

// Inkey never has a byte ready on the default console: non-blocking raw
// key polling needs a terminal mode switch the core does not manage
// (spec §1 Out of scope: keyboard polling for INKEY$ belongs to the
// driver). A driver wiring a real terminal substitutes its own ConsolePort.
func (c *StdConsole) Inkey() (byte, bool) { return 0, false }

func (c *StdConsole) GetColumn() int   { return c.column }
func (c *StdConsole) SetColumn(n int)  { c.column = n }
func (c *StdConsole) GetWidth() int    { return c.width }
func (c *StdConsole) SetWidth(n int)   { c.width = n }
func (c *StdConsole) ClearScreen() {
	fmt.Fprint(c.out, "\x1b[2J\x1b[H")
	c.column = 0
}
