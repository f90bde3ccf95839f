package runtime

import (
	"mbasic/internal/berrors"
	"mbasic/internal/values"
)

// Array is the backing store for one DIMensioned (or implicitly
// dimensioned) array variable (spec §3 Array store).
type Array struct {
	Type values.VarType
	Dims []int // inclusive upper bound per axis
	Base int   // 0 or 1, from OPTION BASE at the time of creation
	Data []values.Value
}

func NewArray(typ values.VarType, base int, dims []int) *Array {
	size := 1
	for _, d := range dims {
		size *= (d - base + 1)
	}
	data := make([]values.Value, size)
	zero := values.ZeroOf(typ)
	for i := range data {
		data[i] = zero
	}
	return &Array{Type: typ, Dims: dims, Base: base, Data: data}
}

// offset flattens a multi-dimensional index into Data, row-major, checking
// bounds against Base..Dims[k] inclusive per axis (spec §3 Index space).
func (a *Array) offset(idx []int, line, stmt int) (int, error) {
	if len(idx) != len(a.Dims) {
		return 0, berrors.New(berrors.SubscriptOutOfRange, line, stmt)
	}
	off := 0
	for k, i := range idx {
		if i < a.Base || i > a.Dims[k] {
			return 0, berrors.New(berrors.SubscriptOutOfRange, line, stmt)
		}
		off = off*(a.Dims[k]-a.Base+1) + (i - a.Base)
	}
	return off, nil
}

func (a *Array) Get(idx []int, line, stmt int) (values.Value, error) {
	off, err := a.offset(idx, line, stmt)
	if err != nil {
		return values.Value{}, err
	}
	return a.Data[off], nil
}

func (a *Array) Set(idx []int, v values.Value, line, stmt int) error {
	off, err := a.offset(idx, line, stmt)
	if err != nil {
		return err
	}
	a.Data[off] = v
	return nil
}
