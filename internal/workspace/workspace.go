// Package workspace holds the application state of one client: its record
// table, entry form, search session, upload status and gate flag. Every
// operation on a workspace is serialised by the workspace lock.
package workspace

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/editor"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/entry"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/importer"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/search"
	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
)

// State is the client-visible summary of a workspace.
type State struct {
	ID             string             `json:"id"`
	Loading        bool               `json:"loading"`
	UploadStatus   model.UploadStatus `json:"upload_status"`
	FileName       string             `json:"file_name,omitempty"`
	Records        int                `json:"records"`
	Visible        int                `json:"visible"`
	EditingRow     *int               `json:"editing_row,omitempty"`
	Filter         model.FilterState  `json:"filter"`
	GateOpen       bool               `json:"gate_open"`
	DraftAvailable bool               `json:"draft_available"`
	Form           entry.State        `json:"form"`
}

type Workspace struct {
	mu sync.Mutex

	id       string
	store    *storage.Adapter
	table    *editor.Table
	form     *entry.Form
	importer *importer.Service
	gate     *gate.Service
	log      *logger.Logger

	filter       model.FilterState
	uploadStatus model.UploadStatus
	fileName     string
	loading      atomic.Bool
	closed       bool
}

// ID returns the workspace identifier.
func (w *Workspace) ID() string {
	return w.id
}

// Loading reports whether an import is in progress. It does not wait for the
// workspace lock.
func (w *Workspace) Loading() bool {
	return w.loading.Load()
}

// State summarises the workspace.
func (w *Workspace) State(ctx context.Context) State {
	loading := w.loading.Load()

	w.mu.Lock()
	defer w.mu.Unlock()

	st := State{
		ID:             w.id,
		Loading:        loading,
		UploadStatus:   w.uploadStatus,
		FileName:       w.fileName,
		Records:        w.table.Len(),
		Visible:        len(search.Indices(w.table.Records(), w.filter)),
		Filter:         w.filter.Clone(),
		GateOpen:       w.gate.IsOpen(ctx, w.store),
		DraftAvailable: w.form.Peek(ctx),
		Form:           w.form.State(),
	}
	if i, ok := w.table.Editing(); ok {
		st.EditingRow = &i
	}
	return st
}

// Import replaces the record list with the decoded workbook. On failure the
// list is left unchanged and the upload status records the error.
func (w *Workspace) Import(ctx context.Context, fileName string, r io.Reader) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.loading.Store(true)
	defer w.loading.Store(false)

	w.fileName = fileName
	records, err := w.importer.Import(r)
	if err != nil {
		w.uploadStatus = model.UploadError
		return 0, err
	}

	w.table.Replace(ctx, records)
	w.uploadStatus = model.UploadSuccess
	w.log.Info("workspace records replaced", "file", fileName, "records", len(records))
	return len(records), nil
}

// ResetUpload clears the upload status and file name.
func (w *Workspace) ResetUpload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.uploadStatus = model.UploadNone
	w.fileName = ""
}

// Rows pages over the whole list.
func (w *Workspace) Rows(p model.Pagination, raw bool) editor.Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.Paginate(w.table.AllIndices(), p, raw)
}

// Search pages over the records passing the current filter state. Row
// indices refer to the full list.
func (w *Workspace) Search(p model.Pagination, raw bool) editor.Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.Paginate(search.Indices(w.table.Records(), w.filter), p, raw)
}

// SetQuery replaces the free-text query.
func (w *Workspace) SetQuery(q string) model.FilterState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.Query = q
	return w.filter.Clone()
}

// ToggleFilter adds field=value, or removes it when already active.
func (w *Workspace) ToggleFilter(field, value string) (model.FilterState, error) {
	if !model.IsCategorical(field) {
		return model.FilterState{}, apperrors.Validation(map[string]string{
			"field": fmt.Sprintf("%q cannot be filtered by value", field),
		})
	}
	if value == "" || !model.IsOption(field, value) {
		return model.FilterState{}, apperrors.Validation(map[string]string{
			field: fmt.Sprintf("%q is not an allowed value", value),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.Toggle(field, value)
	return w.filter.Clone(), nil
}

// SetRange sets or clears the date range of a range-filterable field.
func (w *Workspace) SetRange(field string, r model.DateRange) (model.FilterState, error) {
	if !isRangeField(field) {
		return model.FilterState{}, apperrors.Validation(map[string]string{
			"field": fmt.Sprintf("%q cannot be filtered by date range", field),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.SetRange(field, r)
	return w.filter.Clone(), nil
}

// ResetFilter clears the search session.
func (w *Workspace) ResetFilter() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.Reset()
}

// Columns describes the table header.
func (w *Workspace) Columns() []editor.Column {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.Columns()
}

// AddColumn adds an empty field to every record.
func (w *Workspace) AddColumn(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.AddColumn(ctx, name)
}

// BeginEdit moves row i to Editing.
func (w *Workspace) BeginEdit(ctx context.Context, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.BeginEdit(ctx, i)
}

// UpdateField edits a field of the editing row.
func (w *Workspace) UpdateField(i int, field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.UpdateField(i, field, value)
}

// SaveRow ends editing of row i.
func (w *Workspace) SaveRow(ctx context.Context, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.Save(ctx, i)
}

// DeleteRow removes row i.
func (w *Workspace) DeleteRow(ctx context.Context, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.table.Delete(ctx, i)
}

// ExportList returns a copy of the records in the current view.
func (w *Workspace) ExportList() model.RecordList {
	w.mu.Lock()
	defer w.mu.Unlock()
	return search.Filter(w.table.Records(), w.filter).Clone()
}

// DraftAvailable reports whether a stored entry draft exists.
func (w *Workspace) DraftAvailable(ctx context.Context) bool {
	return w.form.Peek(ctx)
}

// OpenForm shows the entry form, resuming the stored draft when asked.
func (w *Workspace) OpenForm(ctx context.Context, useDraft bool) entry.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.Open(ctx, useDraft, w.table.Records())
}

// ChangeField edits the entry draft.
func (w *Workspace) ChangeField(field, value string) (entry.State, error) {
	return w.form.Change(field, value)
}

// Prefill copies the patient at index into the entry draft.
func (w *Workspace) Prefill(index int) (entry.State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	records := w.table.Records()
	if index < 0 || index >= len(records) {
		return entry.State{}, apperrors.NotFound(fmt.Sprintf("row %d", index), nil)
	}
	return w.form.Prefill(records[index])
}

// PrefillPatient copies the patient with this identity into the entry draft.
func (w *Workspace) PrefillPatient(lastName, firstName, birthDate string) (int, entry.State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	records := w.table.Records()
	index := entry.FindExisting(records, lastName, firstName, birthDate)
	if index < 0 {
		return -1, entry.State{}, apperrors.NotFound("patient", nil)
	}
	state, err := w.form.Prefill(records[index])
	return index, state, err
}

// SubmitForm validates the draft and appends it to the list.
func (w *Workspace) SubmitForm(ctx context.Context) (int, model.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, err := w.form.Submit(ctx)
	if err != nil {
		return 0, model.Record{}, err
	}
	return w.table.Append(ctx, rec), rec, nil
}

// CloseForm hides the entry form.
func (w *Workspace) CloseForm(ctx context.Context, saveDraft bool) {
	w.form.Close(ctx, saveDraft)
}

// ExistingPatients labels every record for the prefill picker.
func (w *Workspace) ExistingPatients() []entry.Option {
	w.mu.Lock()
	defer w.mu.Unlock()
	return entry.ExistingOptions(w.table.Records())
}

// Login opens the gate.
func (w *Workspace) Login(ctx context.Context, password string) error {
	return w.gate.Login(ctx, w.store, password)
}

// Logout closes the gate.
func (w *Workspace) Logout(ctx context.Context) {
	w.gate.Logout(ctx, w.store)
}

// GateOpen reports the gate flag.
func (w *Workspace) GateOpen(ctx context.Context) bool {
	return w.gate.IsOpen(ctx, w.store)
}

func isRangeField(field string) bool {
	for _, f := range model.DateRangeFields {
		if f == field {
			return true
		}
	}
	return false
}
