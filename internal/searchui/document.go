// Package searchui implements the search page controller: it turns a submitted
// form into one /search request and reflects the result lines into a document.
package searchui

// Element ids the hosting document must provide.
const (
	IDForm         = "form"
	IDQuery        = "query"
	IDSearch       = "search"
	IDSearchColumn = "search-column"
	IDResultNumber = "result-number"
	IDTableBody    = "table-body"
)

// QueryField is the form field holding the search query.
const QueryField = "query"

// Document is the part of the page the controller mutates.
// Implementations must tolerate repeated AddClass/RemoveClass calls.
type Document interface {
	AddClass(id, class string)
	RemoveClass(id, class string)
	SetText(id, text string)
	ClearRows(id string)
	// AppendRow appends a single-cell row. cell is plain text, never markup.
	AppendRow(id, cell string)
}

// State is the visible state of a search page.
type State int

const (
	// StateInitial is the full-height landing layout with no rows.
	StateInitial State = iota
	// StateResults is the shrunk layout with zero or more rows.
	StateResults
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}
