package lang

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", NewError("boom"), "boom"},
		{"wrapped", NewError("boom").Wrap(errors.New("cause")), "boom: cause"},
		{"cause only", WrapError(errors.New("cause")), "cause"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_IsSentinel(t *testing.T) {
	derived := ErrReadInput.With(slog.String("k", "v")).Wrap(errors.New("x"))

	if !errors.Is(derived, ErrReadInput) {
		t.Error("derived error should match its sentinel")
	}

	if errors.Is(derived, ErrUnexpectedToken) {
		t.Error("derived error should not match another sentinel")
	}
}

func TestWrapError_ReusesError(t *testing.T) {
	base := NewError("base")
	if got := WrapError(base); got != base {
		t.Error("WrapError should return an existing *Error unchanged")
	}
}

func TestError_LogValue(t *testing.T) {
	err := NewError("boom").
		Wrap(errors.New("cause")).
		With(slog.Int("line", 3))

	attrs := err.LogValue().Group()

	want := map[string]string{"error": "boom", "cause": "cause", "line": "3"}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attrs, got %d", len(want), len(attrs))
	}

	for _, a := range attrs {
		if want[a.Key] != a.Value.String() {
			t.Errorf("attr %s = %q, want %q", a.Key, a.Value.String(), want[a.Key])
		}
	}
}

func TestError_WithDoesNotMutate(t *testing.T) {
	base := NewError("base").With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))

	if n := len(base.LogValue().Group()); n != 2 {
		t.Errorf("base error gained attributes: %d", n)
	}
}
