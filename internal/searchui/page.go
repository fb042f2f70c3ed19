package searchui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"slices"
	"strings"
	"sync"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Static returns the stylesheet and other assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is an in-memory search page. It implements Document and renders to
// HTML with every text value escaped.
type Page struct {
	mu      sync.Mutex
	query   string
	classes map[string][]string
	texts   map[string]string
	rows    map[string][]string
}

// NewPage returns a page in the initial state with query prefilled in the form.
func NewPage(query string) *Page {
	return &Page{
		query: query,
		classes: map[string][]string{
			IDSearch:       {"section", classFullHeight},
			IDSearchColumn: {"column", classNarrowColumn},
		},
		texts: map[string]string{},
		rows:  map[string][]string{},
	}
}

// AddClass adds class to element id once.
func (p *Page) AddClass(id, class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.classes[id], class) {
		p.classes[id] = append(p.classes[id], class)
	}
}

// RemoveClass removes class from element id if present.
func (p *Page) RemoveClass(id, class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes[id] = slices.DeleteFunc(p.classes[id], func(c string) bool { return c == class })
}

// SetText replaces the text content of element id.
func (p *Page) SetText(id, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[id] = text
}

// ClearRows removes every row of table body id.
func (p *Page) ClearRows(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows[id] = p.rows[id][:0:0]
}

// AppendRow appends a single-cell row to table body id.
func (p *Page) AppendRow(id, cell string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows[id] = append(p.rows[id], cell)
}

// HasClass reports whether element id carries class.
func (p *Page) HasClass(id, class string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.classes[id], class)
}

// Text returns the text content of element id.
func (p *Page) Text(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texts[id]
}

// Rows returns a copy of the rows of table body id.
func (p *Page) Rows(id string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.rows[id])
}

// State reports whether the page has rendered results yet.
func (p *Page) State() State {
	if p.HasClass(IDSearch, classFullHeight) {
		return StateInitial
	}
	return StateResults
}

type pageView struct {
	Query             string
	State             string
	SearchClass       string
	SearchColumnClass string
	ResultNumber      string
	Rows              []string
	ShowResults       bool
}

// WriteHTML renders the page.
func (p *Page) WriteHTML(w io.Writer) error {
	state := p.State()

	p.mu.Lock()
	view := pageView{
		Query:             p.query,
		State:             state.String(),
		SearchClass:       strings.Join(p.classes[IDSearch], " "),
		SearchColumnClass: strings.Join(p.classes[IDSearchColumn], " "),
		ResultNumber:      p.texts[IDResultNumber],
		Rows:              slices.Clone(p.rows[IDTableBody]),
		ShowResults:       state == StateResults,
	}
	p.mu.Unlock()

	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
