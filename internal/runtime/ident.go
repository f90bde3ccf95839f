package runtime

import (
	"strings"

	"mbasic/internal/values"
)

// SplitIdent separates a trailing type-suffix character from an
// identifier's base name (spec §3 Identifier naming). suffix is 0 if none
// was written.
func SplitIdent(name string) (base string, suffix byte) {
	if name == "" {
		return name, 0
	}
	last := name[len(name)-1]
	if last == '%' || last == '!' || last == '#' || last == '$' {
		return name[:len(name)-1], last
	}
	return name, 0
}

// SuffixType maps a literal suffix character to its VarType.
func SuffixType(suffix byte) values.VarType {
	switch suffix {
	case '%':
		return values.TInteger
	case '!':
		return values.TSingle
	case '#':
		return values.TDouble
	case '$':
		return values.TString
	}
	return values.TSingle
}

// ResolveType implements §3's identifier-type rule: suffix if present,
// else the DEFtype map for the base name's first letter, else SINGLE.
func ResolveType(base string, suffix byte, defType map[byte]values.VarType) values.VarType {
	if suffix != 0 {
		return SuffixType(suffix)
	}
	if base == "" {
		return values.TSingle
	}
	first := base[0]
	if first >= 'A' && first <= 'Z' {
		first += 'a' - 'A'
	}
	if t, ok := defType[first]; ok {
		return t
	}
	return values.TSingle
}

// StoreKey is the normalized storage key for a scalar or array cell: same
// base name with different suffixes are distinct cells (spec §3), so the
// literal suffix character (or its absence) is part of the key.
func StoreKey(name string) string {
	base, suffix := SplitIdent(name)
	key := strings.ToLower(base) + "\x00"
	if suffix != 0 {
		key += string(suffix)
	}
	return key
}
