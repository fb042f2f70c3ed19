package searchui

import (
	"fmt"
	"io"
)

// TextDocument writes each render to a terminal. Layout classes have no
// textual form and are ignored.
type TextDocument struct {
	w     io.Writer
	label string
	rows  []string
}

// NewTextDocument returns a document printing to w.
func NewTextDocument(w io.Writer) *TextDocument {
	return &TextDocument{w: w}
}

// AddClass is a no-op.
func (d *TextDocument) AddClass(string, string) {}

// RemoveClass is a no-op.
func (d *TextDocument) RemoveClass(string, string) {}

// SetText records the count label.
func (d *TextDocument) SetText(id, text string) {
	if id == IDResultNumber {
		d.label = text
	}
}

// ClearRows drops pending rows.
func (d *TextDocument) ClearRows(string) {
	d.rows = d.rows[:0]
}

// AppendRow queues a row.
func (d *TextDocument) AppendRow(_, cell string) {
	d.rows = append(d.rows, cell)
}

// Flush prints the label and rows collected since the last flush.
func (d *TextDocument) Flush() error {
	if _, err := fmt.Fprintln(d.w, d.label); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	for _, row := range d.rows {
		if _, err := fmt.Fprintln(d.w, row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	d.rows = d.rows[:0]
	return nil
}
