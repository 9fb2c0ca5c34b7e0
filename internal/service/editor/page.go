package editor

import (
	"github.com/Dahbi-Dev/Excel-easy/internal/model"
)

// Row is one displayed record with its position in the full list.
type Row struct {
	Index   int               `json:"index"`
	Editing bool              `json:"editing"`
	Values  map[string]string `json:"values"`
}

// Page is one window of rows.
type Page struct {
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Paginate cuts the rows at indices (positions into the table's list) into a
// page. Rows are rendered for display unless raw is set; the editing row is
// always returned raw.
func (t *Table) Paginate(indices []int, p model.Pagination, raw bool) Page {
	p = p.Normalize()
	start, end := p.Bounds(len(indices))

	rows := make([]Row, 0, end-start)
	for _, i := range indices[start:end] {
		r := t.records[i]
		editing := i == t.editing
		var values map[string]string
		if raw || editing {
			values = rawValues(r)
		} else {
			values = Display(r)
		}
		rows = append(rows, Row{Index: i, Editing: editing, Values: values})
	}

	return Page{
		Columns:  t.Columns(),
		Rows:     rows,
		Total:    len(indices),
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

// AllIndices returns 0..Len()-1.
func (t *Table) AllIndices() []int {
	out := make([]int, len(t.records))
	for i := range out {
		out[i] = i
	}
	return out
}

func rawValues(r model.Record) map[string]string {
	out := make(map[string]string, len(r.Fields()))
	for _, name := range r.Fields() {
		out[name] = r.Get(name)
	}
	return out
}
