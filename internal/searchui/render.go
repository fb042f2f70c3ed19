package searchui

import (
	"net/url"
	"strconv"
)

// Layout classes toggled by the first render.
const (
	classFullHeight       = "height-100"
	classSearchTransition = "search-transition"
	classSectionPadding   = "section-padding"
	classNarrowColumn     = "is-6"
	classWideColumn       = "is-8"
	classColumnTransition = "search-column-transition"
)

// BuildQuery returns the request target for a submitted form.
func BuildQuery(form url.Values) string {
	return "/search?q=" + url.QueryEscape(form.Get(QueryField))
}

// CountLabel returns the result count text, e.g. "1 line found", "3 lines found".
func CountLabel(n int) string {
	noun := "lines"
	if n == 1 {
		noun = "line"
	}
	return strconv.Itoa(n) + " " + noun + " found"
}

// Render reflects results into doc. The previous rows are always replaced.
func Render(doc Document, results []string) {
	doc.RemoveClass(IDSearch, classFullHeight)
	doc.AddClass(IDSearch, classSearchTransition)
	doc.AddClass(IDSearch, classSectionPadding)

	doc.RemoveClass(IDSearchColumn, classNarrowColumn)
	doc.AddClass(IDSearchColumn, classWideColumn)
	doc.AddClass(IDSearchColumn, classColumnTransition)

	doc.SetText(IDResultNumber, CountLabel(len(results)))

	doc.ClearRows(IDTableBody)
	for _, line := range results {
		doc.AppendRow(IDTableBody, line)
	}
}
