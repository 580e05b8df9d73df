package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseDecode,
				Kind:     KindTypeMismatch,
				Path:     []string{"user", "address", "zip"},
				Expected: "int",
				Found:    "text",
				Detail:   "cannot convert",
			},
			contains: []string{"[decode]", "type_mismatch", "user.address.zip", "expected int, found text", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfRange,
			},
			contains: []string{"[decode]", "out_of_range"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindAllocation,
				Detail: "host full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "allocation", "host full", "caused by", "underlying error"},
		},
		{
			name: "indexed path",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindFieldMissing,
				Path:  []string{"items", "[2]", "tags", "{k}"},
			},
			contains: []string{"at items[2].tags{k}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a.b"},
		{[]string{"[0]"}, "[0]"},
		{[]string{"a", "[0]", "b"}, "a[0].b"},
		{[]string{"m", "{x}", "[1]"}, "m{x}[1]"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindCustom,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfRange}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseEncode, Kind: KindTypeMismatch}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), target) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", FieldMissing(PhaseDecode, nil, "b"))
	kind, ok := KindOf(err)
	if !ok || kind != KindFieldMissing {
		t.Errorf("KindOf = %v, %v; want field_missing, true", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should report false for plain errors")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf should report false for nil")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindTypeMismatch).
		Path("user", "name").
		Expected("text").
		Found("int").
		Name("name").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "text", "int").
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.Expected != "text" {
		t.Errorf("Expected = %v, want 'text'", err.Expected)
	}
	if err.Found != "int" {
		t.Errorf("Found = %v, want 'int'", err.Found)
	}
	if err.Name != "name" {
		t.Errorf("Name = %v, want 'name'", err.Name)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected text, got int" {
		t.Errorf("Detail = %v, want 'expected text, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseDecode, []string{"field"}, "int", "text")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Expected != "int" || err.Found != "text" {
			t.Errorf("Expected=%v Found=%v", err.Expected, err.Found)
		}
	})

	t.Run("FieldMissing", func(t *testing.T) {
		err := FieldMissing(PhaseDecode, []string{"record"}, "name")
		if err.Kind != KindFieldMissing || err.Name != "name" {
			t.Errorf("Kind = %v Name = %v", err.Kind, err.Name)
		}
	})

	t.Run("FieldUnknown", func(t *testing.T) {
		err := FieldUnknown(PhaseDecode, []string{"record"}, "extra")
		if err.Kind != KindFieldUnknown || err.Name != "extra" {
			t.Errorf("Kind = %v Name = %v", err.Kind, err.Name)
		}
	})

	t.Run("UnknownVariant", func(t *testing.T) {
		err := UnknownVariant(PhaseDecode, nil, "Z")
		if err.Kind != KindUnknownVariant || err.Name != "Z" {
			t.Errorf("Kind = %v Name = %v", err.Kind, err.Name)
		}
	})

	t.Run("InvalidVariant", func(t *testing.T) {
		err := InvalidVariant(PhaseDecode, []string{"status"}, "mapping must hold exactly one entry")
		if err.Kind != KindInvalidVariant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidVariant)
		}
	})

	t.Run("ArityMismatch", func(t *testing.T) {
		err := ArityMismatch(PhaseDecode, nil, 2, 3)
		if err.Kind != KindArityMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindArityMismatch)
		}
		if err.Expected != "2" || err.Found != "3" {
			t.Errorf("Expected=%v Found=%v", err.Expected, err.Found)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		err := OutOfRange(PhaseDecode, []string{"val"}, "300", "uint8")
		if err.Kind != KindOutOfRange {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfRange)
		}
		if err.Value != "300" {
			t.Errorf("Value = %v, want 300", err.Value)
		}
		if !strings.Contains(err.Detail, "uint8") {
			t.Errorf("Detail = %v, should name target type", err.Detail)
		}
	})

	t.Run("InvalidChar", func(t *testing.T) {
		err := InvalidChar(PhaseDecode, nil, "ab")
		if err.Kind != KindInvalidChar {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidChar)
		}
	})

	t.Run("UnhashableKey", func(t *testing.T) {
		cause := errors.New("unhashable type: list")
		err := UnhashableKey(PhaseEncode, nil, "list", cause)
		if err.Kind != KindUnhashableKey || !errors.Is(err, cause) {
			t.Errorf("Kind = %v Cause = %v", err.Kind, err.Cause)
		}
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		cause := errors.New("duplicate mapping key: 1.0")
		err := DuplicateKey(PhaseEncode, []string{"{1}"}, "1.0", cause)
		if err.Kind != KindDuplicateKey || !errors.Is(err, cause) {
			t.Errorf("Kind = %v Cause = %v", err.Kind, err.Cause)
		}
		if !strings.Contains(err.Error(), "duplicate_key at {1}") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseEncode, nil, errors.New("too large"))
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
	})

	t.Run("Custom", func(t *testing.T) {
		err := Custom(PhaseDecode, nil, "bad date", nil)
		if err.Kind != KindCustom || err.Detail != "bad date" {
			t.Errorf("Kind = %v Detail = %v", err.Kind, err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseCompile, nil, "channel types")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseDecode, []string{"ptr"}, "*User")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
		if err.Expected != "*User" {
			t.Errorf("Expected = %v, want '*User'", err.Expected)
		}
	})

	t.Run("DepthExceeded", func(t *testing.T) {
		err := DepthExceeded(PhaseEncode, nil, 512)
		if err.Kind != KindDepthExceeded || err.Value != 512 {
			t.Errorf("Kind = %v Value = %v", err.Kind, err.Value)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseHost, KindAllocation, cause, "outer")
		if !errors.Is(err, cause) {
			t.Error("Wrap should preserve the cause chain")
		}
	})
}
