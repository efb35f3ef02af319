package lang

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestParseReader_Caches(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const source = "project('demo')\nx = 1\n"

	first, err := ParseReader(t.Context(), strings.NewReader(source))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseReader(t.Context(), strings.NewReader(source))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(first.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(first.Statements))
	}

	// Cached results share their statements.
	if first.Statements[0] != second.Statements[0] {
		t.Error("expected cached statements to be reused")
	}

	if first == second {
		t.Error("expected a fresh AST per call")
	}
}

func TestParseReader_NameIsPartOfKey(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const source = "x = ("

	_, errA := ParseReader(t.Context(), strings.NewReader(source), WithName("a/meson.build"))
	_, errB := ParseReader(t.Context(), strings.NewReader(source), WithName("b/meson.build"))

	if errA == nil || errB == nil {
		t.Fatal("expected parse errors")
	}

	if !strings.Contains(errA.Error(), "a/meson.build") ||
		!strings.Contains(errB.Error(), "b/meson.build") {
		t.Errorf("errors should name their own source:\n%v\n%v", errA, errB)
	}
}

func TestParseReader_Bounded(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const first = "x = 0\n"

	if _, err := ParseReader(t.Context(), strings.NewReader(first)); err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for i := 1; i <= MaxCachedParses+10; i++ {
		source := fmt.Sprintf("x = %d\n", i)

		if _, err := ParseReader(t.Context(), strings.NewReader(source)); err != nil {
			t.Fatalf("parse %q: %v", source, err)
		}

		if n := CachedParses(); n > MaxCachedParses {
			t.Fatalf("cache holds %d parses after %d sources", n, i+1)
		}
	}

	if n := CachedParses(); n != MaxCachedParses {
		t.Errorf("cache holds %d parses, want %d", n, MaxCachedParses)
	}

	ast, err := ParseReader(t.Context(), strings.NewReader(first))
	if err != nil {
		t.Fatalf("reparse of evicted source: %v", err)
	}

	if len(ast.Statements) != 1 {
		t.Errorf("expected 1 statement, got %d", len(ast.Statements))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(t.Context(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("expected ErrReadInput, got %v", err)
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
