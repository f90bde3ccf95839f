package runtime

import (
	"strconv"
	"strings"

	"mbasic/internal/ast"
	"mbasic/internal/berrors"
	"mbasic/internal/values"
)

// DataPool is the single ordered sequence of DATA values collected across
// the whole program, with a line-indexed RESTORE table and a READ cursor
// (spec §3 Data pool, §4.3 step 2).
type DataPool struct {
	Values    []values.Value
	lineStart map[int]int
	cursor    int
}

func NewDataPool() *DataPool {
	return &DataPool{lineStart: make(map[int]int)}
}

// AddLine appends one DATA statement's items, recording lineStart the first
// time a given line contributes DATA (usually its only DATA statement).
func (d *DataPool) AddLine(line int, items []ast.DataItem) {
	if _, seen := d.lineStart[line]; !seen {
		d.lineStart[line] = len(d.Values)
	}
	for _, it := range items {
		d.Values = append(d.Values, parseDataItem(it))
	}
}

// parseDataItem converts one DATA token's raw text into a Value: quoted
// text is always a string; unquoted text parses as a number if it looks
// like one, else is kept verbatim as a string (spec §4.3 step 2).
func parseDataItem(it ast.DataItem) values.Value {
	if it.Quoted {
		return values.Str(it.Text)
	}
	text := strings.TrimSpace(it.Text)
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return values.Double(f)
	}
	return values.Str(text)
}

// Read advances the cursor and returns the next pooled value, or
// OutOfData if exhausted.
func (d *DataPool) Read(line, stmt int) (values.Value, error) {
	if d.cursor >= len(d.Values) {
		return values.Value{}, berrors.New(berrors.OutOfData, line, stmt)
	}
	v := d.Values[d.cursor]
	d.cursor++
	return v, nil
}

// Restore resets the cursor to the start of line (or 0 for a bare RESTORE,
// i.e. line == 0).
func (d *DataPool) Restore(line int) {
	if line == 0 {
		d.cursor = 0
		return
	}
	if off, ok := d.lineStart[line]; ok {
		d.cursor = off
	}
}
