// Package editor holds the record list behind the table view and its
// per-row Viewing/Editing state machine.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	"github.com/Dahbi-Dev/Excel-easy/pkg/dateutil"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
)

// Placeholder is shown for empty cells.
const Placeholder = "N/A"

// noRow marks the absence of an editing row.
const noRow = -1

// Column describes one header cell and how it is edited.
type Column struct {
	Name    string          `json:"name"`
	Kind    model.FieldKind `json:"kind"`
	Options []string        `json:"options,omitempty"`
}

// Table owns the record list. It is not safe for concurrent use; the
// workspace serialises access.
type Table struct {
	store   *storage.Adapter
	log     *logger.Logger
	records model.RecordList
	editing int
}

func NewTable(store *storage.Adapter, log *logger.Logger) *Table {
	if log == nil {
		log = logger.Nop()
	}
	return &Table{store: store, log: log, editing: noRow}
}

// Load reads the persisted list and resumes an interrupted edit.
func (t *Table) Load(ctx context.Context) {
	var records model.RecordList
	if t.store.Load(ctx, storage.KeyPatients, &records) {
		t.records = records
	}
	t.Resume(ctx)
}

// Resume restores the editing row from the recovery slot. The stored index is
// trusted as-is; the snapshot is not compared with the current row. An index
// outside the list cannot be edited and the slot is dropped.
func (t *Table) Resume(ctx context.Context) {
	var backup model.EditingBackup
	if !t.store.Load(ctx, storage.KeyEditingBackup, &backup) {
		return
	}
	if backup.RowIndex < 0 || backup.RowIndex >= len(t.records) {
		t.log.Warn("discarding editing backup outside record list",
			"row", backup.RowIndex, "records", len(t.records))
		t.store.Remove(ctx, storage.KeyEditingBackup)
		return
	}
	t.editing = backup.RowIndex
}

// Records returns the current list. Callers must not modify it.
func (t *Table) Records() model.RecordList {
	return t.records
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Editing returns the row in Editing state.
func (t *Table) Editing() (int, bool) {
	return t.editing, t.editing != noRow
}

// Replace swaps in a new list (an import) and persists it. Any edit in
// progress is abandoned.
func (t *Table) Replace(ctx context.Context, records model.RecordList) {
	if records == nil {
		records = model.RecordList{}
	}
	t.records = records
	t.clearEditing(ctx)
	t.persist(ctx)
}

// Append adds a record at the end and persists the list.
func (t *Table) Append(ctx context.Context, r model.Record) int {
	t.records = append(t.records, r)
	t.persist(ctx)
	return len(t.records) - 1
}

// BeginEdit moves row i to Editing, writing the recovery slot first.
func (t *Table) BeginEdit(ctx context.Context, i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	t.store.Save(ctx, storage.KeyEditingBackup, model.EditingBackup{
		RowIndex: i,
		Data:     t.records[i].Clone(),
	})
	t.editing = i
	return nil
}

// UpdateField changes a field of the row being edited.
func (t *Table) UpdateField(i int, field, value string) error {
	if err := t.check(i); err != nil {
		return err
	}
	if t.editing != i {
		return apperrors.Conflict(fmt.Sprintf("row %d is not being edited", i))
	}
	if strings.TrimSpace(field) == "" {
		return apperrors.Validation(map[string]string{"field": "field name is required"})
	}
	if !model.IsOption(field, value) {
		return apperrors.Validation(map[string]string{
			field: fmt.Sprintf("%q is not an allowed value", value),
		})
	}
	t.records[i].Set(field, value)
	return nil
}

// Save ends editing of row i, persisting the whole list and clearing the
// recovery slot.
func (t *Table) Save(ctx context.Context, i int) error {
	if err := t.check(i); err != nil {
		return err
	}
	if t.editing != i {
		return apperrors.Conflict(fmt.Sprintf("row %d is not being edited", i))
	}
	t.clearEditing(ctx)
	t.persist(ctx)
	return nil
}

// Delete removes row i and persists immediately. Indices after i shift down
// by one, including the editing row.
func (t *Table) Delete(ctx context.Context, i int) error {
	if err := t.check(i); err != nil {
		return err
	}

	next := make(model.RecordList, 0, len(t.records)-1)
	next = append(next, t.records[:i]...)
	next = append(next, t.records[i+1:]...)
	t.records = next

	switch {
	case t.editing == i:
		t.clearEditing(ctx)
	case t.editing > i:
		t.editing--
		t.store.Save(ctx, storage.KeyEditingBackup, model.EditingBackup{
			RowIndex: t.editing,
			Data:     t.records[t.editing].Clone(),
		})
	}

	t.persist(ctx)
	return nil
}

// AddColumn adds an empty field to every record. Existing fields are left alone.
func (t *Table) AddColumn(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation(map[string]string{"name": "column name is required"})
	}
	for i := range t.records {
		if !t.records[i].Has(name) {
			t.records[i].Set(name, "")
		}
	}
	t.persist(ctx)
	return nil
}

// Columns describes the header, taken from the first record.
func (t *Table) Columns() []Column {
	return ColumnsOf(t.records)
}

// ColumnsOf describes the header of any list.
func ColumnsOf(records model.RecordList) []Column {
	names := records.Columns()
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Kind: model.KindOf(name), Options: model.Options[name]}
	}
	return cols
}

// Display renders a record for viewing: dates through the normalizer, empty
// cells as the placeholder.
func Display(r model.Record) map[string]string {
	out := make(map[string]string, len(r.Fields()))
	for _, name := range r.Fields() {
		out[name] = DisplayValue(name, r.Get(name))
	}
	return out
}

// DisplayValue renders a single cell.
func DisplayValue(field, value string) string {
	if value == "" {
		return Placeholder
	}
	if model.IsDateLike(field) {
		return dateutil.Normalize(value)
	}
	return value
}

func (t *Table) check(i int) error {
	if i < 0 || i >= len(t.records) {
		return apperrors.NotFound(fmt.Sprintf("row %d", i), nil)
	}
	return nil
}

func (t *Table) clearEditing(ctx context.Context) {
	if t.editing == noRow {
		return
	}
	t.editing = noRow
	t.store.Remove(ctx, storage.KeyEditingBackup)
}

func (t *Table) persist(ctx context.Context) {
	t.store.Save(ctx, storage.KeyPatients, t.records)
}
