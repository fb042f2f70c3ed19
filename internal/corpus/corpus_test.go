package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/shakesearch/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse blank pairs", "a\n\nb\n\nc", "a\nb\nc"},
		{"dedent common indent", "    a\n    b", "a\nb"},
		{"keep relative indent", "  a\n    b", "a\n  b"},
		{"crlf", "a\r\nb", "a\nb"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNew_Lines(t *testing.T) {
	c, err := New("To be, or not to be\n\nthat is the question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Lines()[1] != "that is the question" {
		t.Errorf("Lines()[1] = %q", c.Lines()[1])
	}
}

func TestNew_Empty(t *testing.T) {
	_, err := New("  \n\n  ")
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "works.txt")
	if err := os.WriteFile(path, []byte("HAMLET\nOPHELIA\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lines()[0] != "HAMLET" {
		t.Errorf("Lines()[0] = %q", c.Lines()[0])
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLineBounds(t *testing.T) {
	text := "first\nsecond line\nthird"

	tests := []struct {
		off        int
		start, end int
	}{
		{0, 0, 5},
		{3, 0, 5},
		{6, 6, 17},
		{10, 6, 17},
		{18, 18, 23},
		{len(text), 18, 23},
		{-4, 0, 5},
	}
	for _, tc := range tests {
		start, end := LineBounds(text, tc.off)
		if start != tc.start || end != tc.end {
			t.Errorf("LineBounds(%d) = [%d,%d), want [%d,%d)", tc.off, start, end, tc.start, tc.end)
		}
	}
}
