// Package runtime holds all per-run mutable interpreter state: the
// variable store, DATA cursor, FOR/WHILE/GOSUB stacks, file table, field
// buffers, error state, ERR/ERL, OPTION BASE, the DEFtype map, trace flag,
// and breakpoints (spec §3/§5).
package runtime

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/atomic"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/values"
)

// ExecKind tags one frame of the shared GOSUB/WHILE execution stack
// (spec §3 Exec stack entry).
type ExecKind int

const (
	ExecGosub ExecKind = iota
	ExecWhile
)

type ExecEntry struct {
	Kind     ExecKind
	ReturnPC Addr // meaningful for ExecGosub
	LoopPC   Addr // meaningful for ExecWhile: re-evaluated on WEND
}

// ForRecord is one active FOR loop's continuation state (spec §3).
type ForRecord struct {
	ResumePC Addr
	End      float64
	Step     float64
}

// ChainRequest is the record published when CHAIN/RUN halts execution,
// for the outer driver to act on (spec §6).
type ChainRequest struct {
	Filename     string
	StartLine    int
	HasStartLine bool
	KeepVars     bool
	KeepAll      bool
	Merge        bool
	Delete       bool
	RunID        string
}

// Runtime is all state belonging to one program execution (spec §5: "All
// mutable state ... belongs to one Runtime and is mutated only by the
// interpreter in the current tick").
type Runtime struct {
	RunID uuid.UUID

	Scalars map[string]values.Value
	Arrays  map[string]*Array
	DefType map[byte]values.VarType

	OptionBase    int
	OptionBaseSet bool

	Table *StatementTable
	Data  *DataPool

	forStack   []string
	forRecords map[string]*ForRecord

	ExecStack []ExecEntry

	Files map[int]*OpenFile

	Functions map[string]*ast.DefFnStmt
	fnDepth   map[string]int

	Common []string

	ErrHandlerLine  int
	ErrHandlerGosub bool
	InError         bool
	ErrorPC         Addr
	ErrCode         int
	ErrLine         int

	Trace          bool
	Breakpoints    map[Addr]bool
	BreakRequested *atomic.Bool

	PC     Addr
	Reason Reason

	Rand     *rand.Rand
	LastRand float64

	ChainRequest *ChainRequest
}

func New() *Runtime {
	r := &Runtime{
		RunID:          uuid.New(),
		Scalars:        make(map[string]values.Value),
		Arrays:         make(map[string]*Array),
		DefType:        make(map[byte]values.VarType),
		OptionBase:     0,
		forRecords:     make(map[string]*ForRecord),
		Files:          make(map[int]*OpenFile),
		Functions:      make(map[string]*ast.DefFnStmt),
		fnDepth:        make(map[string]int),
		Breakpoints:    make(map[Addr]bool),
		BreakRequested: atomic.NewBool(false),
		Rand:           rand.New(rand.NewSource(1)),
		Data:           NewDataPool(),
	}
	return r
}

// --- scalars -------------------------------------------------------

// GetScalar reads a scalar, auto-initializing it to its resolved type's
// zero value on first access (spec §3).
func (r *Runtime) GetScalar(name string) values.Value {
	key := StoreKey(name)
	if v, ok := r.Scalars[key]; ok {
		return v
	}
	base, suffix := SplitIdent(name)
	t := ResolveType(base, suffix, r.DefType)
	v := values.ZeroOf(t)
	r.Scalars[key] = v
	return v
}

// SetScalar coerces v to name's resolved type and stores it.
func (r *Runtime) SetScalar(name string, v values.Value, line, stmt int) error {
	base, suffix := SplitIdent(name)
	t := ResolveType(base, suffix, r.DefType)
	cv, err := values.CoerceTo(v, t, line, stmt)
	if err != nil {
		return err
	}
	r.Scalars[StoreKey(name)] = cv
	return nil
}

// ResolvedType returns the VarType name would resolve to right now.
func (r *Runtime) ResolvedType(name string) values.VarType {
	base, suffix := SplitIdent(name)
	return ResolveType(base, suffix, r.DefType)
}

// --- arrays -------------------------------------------------------

func arrayKey(name string) string { return StoreKey(name) }

// DimArray creates name as a dims-shaped array, raising DuplicateDefinition
// if it already exists (spec §3).
func (r *Runtime) DimArray(name string, dims []int, line, stmt int) error {
	key := arrayKey(name)
	if _, exists := r.Arrays[key]; exists {
		return berrors.New(berrors.DuplicateDefinition, line, stmt)
	}
	base, suffix := SplitIdent(name)
	t := ResolveType(base, suffix, r.DefType)
	r.Arrays[key] = NewArray(t, r.OptionBase, dims)
	return nil
}

// AutoDimArray implicitly dimensions name to upper bound 10 on every axis
// on first subscript reference with no prior DIM (spec §3).
func (r *Runtime) AutoDimArray(name string, numDims int) *Array {
	key := arrayKey(name)
	if a, ok := r.Arrays[key]; ok {
		return a
	}
	dims := make([]int, numDims)
	for i := range dims {
		dims[i] = 10
	}
	base, suffix := SplitIdent(name)
	t := ResolveType(base, suffix, r.DefType)
	a := NewArray(t, r.OptionBase, dims)
	r.Arrays[key] = a
	return a
}

func (r *Runtime) GetArrayIfExists(name string) (*Array, bool) {
	a, ok := r.Arrays[arrayKey(name)]
	return a, ok
}

func (r *Runtime) EraseArray(name string) { delete(r.Arrays, arrayKey(name)) }

// --- FOR / NEXT -------------------------------------------------------

func (r *Runtime) PushFor(v string, rec *ForRecord) {
	r.forRecords[StoreKey(v)] = rec
	r.forStack = append(r.forStack, v)
}

func (r *Runtime) ForRecord(v string) (*ForRecord, bool) {
	rec, ok := r.forRecords[StoreKey(v)]
	return rec, ok
}

// InnermostFor returns the variable name, as passed to PushFor, of the most
// recently pushed FOR, for a bare NEXT (spec §4.5).
func (r *Runtime) InnermostFor() (string, bool) {
	if len(r.forStack) == 0 {
		return "", false
	}
	return r.forStack[len(r.forStack)-1], true
}

func (r *Runtime) PopFor(v string) {
	key := StoreKey(v)
	delete(r.forRecords, key)
	for i := len(r.forStack) - 1; i >= 0; i-- {
		if StoreKey(r.forStack[i]) == key {
			r.forStack = append(r.forStack[:i], r.forStack[i+1:]...)
			return
		}
	}
}

// --- GOSUB / WHILE exec stack -------------------------------------------------------

func (r *Runtime) PushGosub(returnPC Addr) {
	r.ExecStack = append(r.ExecStack, ExecEntry{Kind: ExecGosub, ReturnPC: returnPC})
}

func (r *Runtime) PushWhile(loopPC Addr) {
	r.ExecStack = append(r.ExecStack, ExecEntry{Kind: ExecWhile, LoopPC: loopPC})
}

// PopGosub pops entries down through (and including) the nearest GOSUB
// frame, discarding any WHILE frames above it (§4.5: "the loop context for
// them is abandoned when crossing a GOSUB boundary").
func (r *Runtime) PopGosub() (Addr, bool) {
	for i := len(r.ExecStack) - 1; i >= 0; i-- {
		if r.ExecStack[i].Kind == ExecGosub {
			ret := r.ExecStack[i].ReturnPC
			r.ExecStack = r.ExecStack[:i]
			return ret, true
		}
	}
	return Addr{}, false
}

// PopWhile pops the nearest WHILE frame (for WEND).
func (r *Runtime) PopWhile() (Addr, bool) {
	for i := len(r.ExecStack) - 1; i >= 0; i-- {
		if r.ExecStack[i].Kind == ExecWhile {
			loop := r.ExecStack[i].LoopPC
			r.ExecStack = append(r.ExecStack[:i], r.ExecStack[i+1:]...)
			return loop, true
		}
	}
	return Addr{}, false
}

// --- CLEAR -------------------------------------------------------

// ClearState implements the CLEAR statement: drop variables/arrays (but not
// ERR%/ERL%), close all files, reset the exec/FOR/data state; user
// functions and breakpoints survive (spec §4.5).
func (r *Runtime) ClearState() {
	r.Scalars = make(map[string]values.Value)
	r.Arrays = make(map[string]*Array)
	r.forStack = nil
	r.forRecords = make(map[string]*ForRecord)
	r.ExecStack = nil
	r.Data.cursor = 0
	for _, f := range r.openFilesSorted() {
		_ = f.Handle.Close()
	}
	r.Files = make(map[int]*OpenFile)
	r.InError = false
	r.ErrHandlerLine = 0
}

// openFilesSorted returns open file entries ordered by file number, so
// CLOSE-all/CLEAR behave deterministically.
func (r *Runtime) openFilesSorted() []*OpenFile {
	nums := lo.Keys(r.Files)
	sort.Ints(nums)
	return lo.Map(nums, func(n int, _ int) *OpenFile { return r.Files[n] })
}

// OpenFilesSorted is the exported form, used by CLOSE with no arguments.
func (r *Runtime) OpenFilesSorted() []int {
	nums := lo.Keys(r.Files)
	sort.Ints(nums)
	return nums
}
