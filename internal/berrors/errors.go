// Package berrors defines the MBASIC error taxonomy: lex/parse errors with
// source positions, and the tagged runtime BasicError carried out-of-band
// from the normal expression-return path (never as a plain string).
package berrors

import (
	"fmt"

	"github.com/dustin/go-humanize"
	pkgerrors "github.com/pkg/errors"
)

// Code is one of the wire-visible MBASIC error codes (spec §7).
type Code int

const (
	NextWithoutFor      Code = 1
	SyntaxErr           Code = 2
	ReturnWithoutGosub  Code = 3
	OutOfData           Code = 4
	IllegalFunctionCall Code = 5
	Overflow            Code = 6
	OutOfMemory         Code = 7
	UndefinedLineNumber Code = 8
	SubscriptOutOfRange Code = 9
	DuplicateDefinition Code = 10
	DivisionByZero      Code = 11
	IllegalDirect       Code = 12
	TypeMismatch        Code = 13
	OutOfStringSpace    Code = 14
	StringTooLong       Code = 15
	CantContinue        Code = 17
	UndefinedUserFunc   Code = 18
	NoResume            Code = 19
	ResumeWithoutError  Code = 20
	MissingOperand      Code = 22
	LineBufferOverflow  Code = 23
	ForWithoutNext      Code = 26
	WhileWithoutWend    Code = 29
	WendWithoutWhile    Code = 30
	FieldOverflow       Code = 50
	Internal            Code = 51
	BadFileNumber       Code = 52
	FileNotFound        Code = 53
	BadFileMode         Code = 54
	FileAlreadyOpen     Code = 55
	DiskIOError         Code = 57
	FileAlreadyExists   Code = 58
	DiskFull            Code = 61
	InputPastEnd        Code = 62
	BadRecordNumber     Code = 63
	BadFileName         Code = 64
	DirectStatementFile Code = 66
	TooManyFiles        Code = 67
)

// messages holds the canonical MBASIC message text per code. Custom text
// (e.g. ERROR$ lookups, file-specific detail) is layered on via NewErrorf.
var messages = map[Code]string{
	NextWithoutFor:      "NEXT without FOR",
	SyntaxErr:           "Syntax error",
	ReturnWithoutGosub:  "RETURN without GOSUB",
	OutOfData:           "Out of DATA",
	IllegalFunctionCall: "Illegal function call",
	Overflow:            "Overflow",
	OutOfMemory:         "Out of memory",
	UndefinedLineNumber: "Undefined line number",
	SubscriptOutOfRange: "Subscript out of range",
	DuplicateDefinition: "Duplicate definition",
	DivisionByZero:      "Division by zero",
	IllegalDirect:       "Illegal direct",
	TypeMismatch:        "Type mismatch",
	OutOfStringSpace:    "Out of string space",
	StringTooLong:       "String too long",
	CantContinue:        "Can't continue",
	UndefinedUserFunc:   "Undefined user function",
	NoResume:            "No RESUME",
	ResumeWithoutError:  "RESUME without error",
	MissingOperand:      "Missing operand",
	LineBufferOverflow:  "Line buffer overflow",
	ForWithoutNext:      "FOR without NEXT",
	WhileWithoutWend:    "WHILE without WEND",
	WendWithoutWhile:    "WEND without WHILE",
	FieldOverflow:       "Field overflow",
	Internal:            "Internal error",
	BadFileNumber:       "Bad file number",
	FileNotFound:        "File not found",
	BadFileMode:         "Bad file mode",
	FileAlreadyOpen:     "File already open",
	DiskIOError:         "Disk I/O error",
	FileAlreadyExists:   "File already exists",
	DiskFull:            "Disk full",
	InputPastEnd:        "Input past end",
	BadRecordNumber:     "Bad record number",
	BadFileName:         "Bad file name",
	DirectStatementFile: "Direct statement in file",
	TooManyFiles:        "Too many files",
}

// MessageFor returns the canonical MBASIC text for code, or a generic
// fallback for codes (legal in the taxonomy but) this implementation never
// raises on its own (e.g. 16, 21).
func MessageFor(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return fmt.Sprintf("Unprintable error %d", int(code))
}

// BasicError is a trapped-or-fatal runtime error: {code, message, at_pc}
// per spec §7. Line/Stmt identify the statement-table address the error
// occurred at; a value of -1 means "no program position" (e.g. errors
// raised before a program is loaded).
type BasicError struct {
	Code    Code
	Message string
	Line    int
	Stmt    int
	cause   error
}

func (e *BasicError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("?%s in %d", e.Message, e.Line)
	}
	return fmt.Sprintf("?%s", e.Message)
}

func (e *BasicError) Unwrap() error { return e.cause }

// New builds a BasicError with the canonical message for code.
func New(code Code, line, stmt int) *BasicError {
	return &BasicError{Code: code, Message: MessageFor(code), Line: line, Stmt: stmt}
}

// Newf builds a BasicError with custom message text (still tagged by code),
// used for ERROR-statement-raised codes and file-path-specific detail.
func Newf(code Code, line, stmt int, format string, args ...interface{}) *BasicError {
	return &BasicError{Code: code, Message: fmt.Sprintf(format, args...), Line: line, Stmt: stmt}
}

// Wrap lifts an underlying error (typically from the filesystem port) into
// a BasicError, preserving the cause via pkg/errors so %+v on the result
// still shows the originating stack.
func Wrap(code Code, line, stmt int, cause error, context string) *BasicError {
	wrapped := pkgerrors.Wrap(cause, context)
	return &BasicError{Code: code, Message: MessageFor(code) + ": " + context, Line: line, Stmt: stmt, cause: wrapped}
}

// WrapDiskFull builds a DiskFull BasicError noting how much was written
// before the underlying write failed, in human-readable form (e.g. "2.1 kB")
// rather than a raw byte count, for the benefit of whoever reads the trapped
// message back via ERROR$/PRINT.
func WrapDiskFull(line, stmt int, cause error, written int64) *BasicError {
	wrapped := pkgerrors.Wrap(cause, "write")
	msg := fmt.Sprintf("%s (%s written before failure)", MessageFor(DiskFull), humanize.Bytes(uint64(written)))
	return &BasicError{Code: DiskFull, Message: msg, Line: line, Stmt: stmt, cause: wrapped}
}

// LexerError reports a lexical failure with its source position.
type LexerError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// ParseError reports a syntactic failure with its source position.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}
