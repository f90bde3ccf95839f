package runtime

import "mbasic/internal/ports"

// FieldSpec locates one FIELD-declared variable's window inside a record
// buffer (spec §3 Field buffer).
type FieldSpec struct {
	Name   string // original declared spelling, for re-publishing to scalars
	Offset int
	Width  int
}

// OpenFile is one entry in the file table: 1..15 -> open handle plus, for
// RANDOM files, its record length and field buffer (spec §3 File table).
type OpenFile struct {
	Handle        ports.FileHandle
	Mode          ports.OpenMode
	Path          string
	RecLen        int
	FieldBuf      []byte
	FieldSpecs    map[string]FieldSpec // var name -> (offset, width)
	CurrentRecord int
}

const MaxFileNumber = 15
