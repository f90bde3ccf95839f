package values

import (
	"strings"
	"testing"
)

func TestCoerceTo(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		to      VarType
		want    Value
		wantErr bool
	}{
		{"int to double", Int(5), TDouble, Double(5), false},
		{"double narrows to int", Double(3.6), TInteger, Int(4), false},
		{"overflow clamps high", Double(100000), TInteger, Int(32767), false},
		{"overflow clamps low", Double(-100000), TInteger, Int(-32768), false},
		{"string to string", Str("hi"), TString, Str("hi"), false},
		{"string to numeric is type mismatch", Str("hi"), TInteger, Value{}, true},
		{"numeric to string is type mismatch", Int(1), TString, Value{}, true},
		{"single truncates precision", Double(1.0 / 3.0), TSingle, Single(1.0 / 3.0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceTo(tt.in, tt.to, 10, 0)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind != tt.want.Kind || !NumericEqual(got.Num, tt.want.Num) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConcatIgnoresNumericOperand(t *testing.T) {
	got, err := Concat(Str("a"), Int(5), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str != "a" {
		t.Errorf("got %q, want %q", got.Str, "a")
	}
	got, err = Concat(Int(5), Str("b"), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str != "b" {
		t.Errorf("got %q, want %q", got.Str, "b")
	}
}

func TestConcatStringTooLong(t *testing.T) {
	a := Str(strings.Repeat("a", 200))
	b := Str(strings.Repeat("b", 100))
	if _, err := Concat(a, b, 10, 0); err == nil {
		t.Error("expected StringTooLong error for a 300-byte concatenation")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"positive integer", Int(5), " 5 "},
		{"negative integer", Int(-5), "-5 "},
		{"zero", Int(0), " 0 "},
		{"single fraction trims trailing zeros", Single(2.5), " 2.5 "},
		{"double precision", Double(1.0 / 4.0), " 0.25 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumber(tt.v); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompareTypeMismatch(t *testing.T) {
	if _, err := Compare(Str("a"), Int(1), 10, 0); err == nil {
		t.Error("expected type mismatch comparing string to number")
	}
}

func TestCompareNumericFuzz(t *testing.T) {
	a := Single(1.0 / 3.0)
	b := Double(1.0 / 3.0)
	cmp, err := Compare(a, b, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp != 0 {
		t.Errorf("expected float32/float64 widening artifacts to compare equal, got %d", cmp)
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nonzero int", Int(1), true},
		{"zero int", Int(0), false},
		{"nonempty string", Str("x"), true},
		{"empty string", Str(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToBool(tt.v); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewStringTooLong(t *testing.T) {
	long := make([]byte, MaxStringLen+1)
	if _, err := NewString(string(long), 10, 0); err == nil {
		t.Error("expected StringTooLong error")
	}
	if _, err := NewString("short", 10, 0); err != nil {
		t.Errorf("unexpected error for valid string: %v", err)
	}
}
