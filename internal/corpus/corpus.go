// Package corpus loads the text that shakesearch matches against.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/kailas-cloud/shakesearch/internal/domain"
)

// Corpus is a normalized body of text and its lines.
type Corpus struct {
	text  string
	lines []string
}

// Load reads and normalizes the corpus file at path.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return New(string(data))
}

// New normalizes raw text into a Corpus.
func New(raw string) (*Corpus, error) {
	text := Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyCorpus
	}
	return &Corpus{
		text:  text,
		lines: strings.Split(text, "\n"),
	}, nil
}

// Normalize collapses blank-line pairs and strips the indentation common to every line.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n\n", "\n")
	return dedent.Dedent(s)
}

// Text returns the whole normalized text.
func (c *Corpus) Text() string { return c.text }

// Lines returns the normalized text split on newlines.
func (c *Corpus) Lines() []string { return c.lines }

// Len returns the number of lines.
func (c *Corpus) Len() int { return len(c.lines) }

// LineBounds returns the [start, end) byte range of the line in text containing off.
func LineBounds(text string, off int) (start, end int) {
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}
	start = strings.LastIndexByte(text[:off], '\n') + 1
	end = strings.IndexByte(text[off:], '\n')
	if end == -1 {
		end = len(text)
	} else {
		end += off
	}
	return start, end
}
