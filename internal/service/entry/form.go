// Package entry is the new-patient form: draft handling with debounced
// autosave, prefill from an existing patient, and required-field validation.
package entry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	"github.com/Dahbi-Dev/Excel-easy/pkg/dateutil"
	"github.com/Dahbi-Dev/Excel-easy/pkg/debounce"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
	"github.com/Dahbi-Dev/Excel-easy/pkg/validator"
)

// DefaultAutosaveDelay is the idle period before a dirty draft is stored.
const DefaultAutosaveDelay = time.Second

// State is a snapshot of the form.
type State struct {
	Open   bool              `json:"open"`
	Dirty  bool              `json:"dirty"`
	Draft  model.Record      `json:"draft"`
	Errors map[string]string `json:"errors,omitempty"`
	// AutosavePending is set while a change waits for the idle period.
	AutosavePending bool `json:"autosave_pending"`
}

// Option is an existing patient offered for prefill.
type Option struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Form is safe for concurrent use; the autosave callback runs on its own
// goroutine and takes only the form's lock.
type Form struct {
	mu       sync.Mutex
	store    *storage.Adapter
	log      *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validator
	timer    *debounce.Timer

	draft  model.Record
	open   bool
	dirty  bool
	errors map[string]string
}

// NewForm creates a closed form. delay <= 0 selects DefaultAutosaveDelay.
func NewForm(store *storage.Adapter, delay time.Duration, log *logger.Logger, m *metrics.Metrics) *Form {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Form{
		store:    store,
		log:      log,
		metrics:  m,
		validate: validator.New(),
		timer:    debounce.New(delay),
	}
}

// Peek reports whether a stored draft is waiting to be resumed.
func (f *Form) Peek(ctx context.Context) bool {
	var draft model.Record
	return f.store.Load(ctx, storage.KeyFormDraft, &draft)
}

// Open shows the form. With useDraft a stored draft is resumed and the form
// starts dirty; otherwise any stored draft is discarded and the form starts
// from a new record numbered after records.
func (f *Form) Open(ctx context.Context, useDraft bool, records model.RecordList) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timer.Cancel()
	f.errors = nil
	f.open = true

	if useDraft {
		var draft model.Record
		if f.store.Load(ctx, storage.KeyFormDraft, &draft) {
			f.draft = draft
			f.dirty = true
			return f.stateLocked()
		}
	} else {
		f.store.Remove(ctx, storage.KeyFormDraft)
	}

	f.draft = model.Record{
		IPP:              strconv.Itoa(f.nextIPP(ctx, records)),
		ConsultationDate: dateutil.Today(),
	}
	f.dirty = false
	return f.stateLocked()
}

// Change sets a draft field, marks the form dirty, clears that field's error
// and restarts the autosave countdown.
func (f *Form) Change(field, value string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return State{}, apperrors.Conflict("entry form is not open")
	}
	if strings.TrimSpace(field) == "" {
		return State{}, apperrors.Validation(map[string]string{"field": "field name is required"})
	}
	if !model.IsOption(field, value) {
		return State{}, apperrors.Validation(map[string]string{
			field: fmt.Sprintf("%q is not an allowed value", value),
		})
	}

	f.draft.Set(field, value)
	delete(f.errors, field)
	f.markDirtyLocked()
	return f.stateLocked(), nil
}

// Prefill copies the identity of an existing patient into the draft. The
// consultation date is kept; optional fields are copied only when set.
func (f *Form) Prefill(existing model.Record) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return State{}, apperrors.Conflict("entry form is not open")
	}

	f.draft.LastName = existing.LastName
	f.draft.FirstName = existing.FirstName
	f.draft.BirthDate = existing.BirthDate
	f.draft.IDNumber = existing.IDNumber
	for _, name := range []string{
		model.FieldSex,
		model.FieldIDType,
		model.FieldInsurer,
		model.FieldAddress,
		model.FieldPhone,
	} {
		if v := existing.Get(name); v != "" {
			f.draft.Set(name, v)
		}
	}

	f.markDirtyLocked()
	return f.stateLocked(), nil
}

// Submit validates the draft. On success the stored draft is removed, the
// form closes and the new record is returned for appending.
func (f *Form) Submit(ctx context.Context) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return model.Record{}, apperrors.Conflict("entry form is not open")
	}

	if errs := f.check(f.draft); len(errs) > 0 {
		f.errors = errs
		f.countSubmission("invalid")
		return model.Record{}, apperrors.Validation(errs)
	}

	f.timer.Cancel()
	f.store.Remove(ctx, storage.KeyFormDraft)
	if n, err := strconv.Atoi(strings.TrimSpace(f.draft.IPP)); err == nil {
		f.store.Save(ctx, storage.KeyLastIPP, n)
	}

	rec := f.draft.Clone()
	f.reset()
	f.countSubmission("created")
	f.log.Info("patient record submitted", "ipp", rec.IPP)
	return rec, nil
}

// Close hides the form. A dirty draft is stored when saveDraft is set and
// discarded otherwise.
func (f *Form) Close(ctx context.Context, saveDraft bool) {
	f.timer.Cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.open && f.dirty {
		if saveDraft {
			f.store.Save(ctx, storage.KeyFormDraft, f.draft)
		} else {
			f.store.Remove(ctx, storage.KeyFormDraft)
		}
	}
	f.reset()
}

// State returns a snapshot of the form.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

// ExistingOptions labels every record for the existing-patient picker.
func ExistingOptions(records model.RecordList) []Option {
	out := make([]Option, len(records))
	for i, r := range records {
		out[i] = Option{
			Index: i,
			Label: fmt.Sprintf("%s %s (%s) (%s)", r.LastName, r.FirstName, r.IDNumber, r.BirthDate),
		}
	}
	return out
}

// FindExisting returns the index of the patient with this identity, or -1.
func FindExisting(records model.RecordList, lastName, firstName, birthDate string) int {
	return records.FindPatient(lastName, firstName, birthDate)
}

// nextIPP is one past the larger of the last assigned number and the highest
// numeric IPP in records.
func (f *Form) nextIPP(ctx context.Context, records model.RecordList) int {
	last := 0
	f.store.Load(ctx, storage.KeyLastIPP, &last)
	for _, r := range records {
		if n, err := strconv.Atoi(strings.TrimSpace(r.IPP)); err == nil && n > last {
			last = n
		}
	}
	return last + 1
}

func (f *Form) markDirtyLocked() {
	f.dirty = true
	f.timer.Schedule(f.autosave)
}

func (f *Form) autosave() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open || !f.dirty {
		return
	}
	if f.store.Save(context.Background(), storage.KeyFormDraft, f.draft) && f.metrics != nil {
		f.metrics.DraftAutosaves.Inc()
	}
}

func (f *Form) reset() {
	f.open = false
	f.dirty = false
	f.draft = model.Record{}
	f.errors = nil
}

func (f *Form) stateLocked() State {
	var errs map[string]string
	if len(f.errors) > 0 {
		errs = make(map[string]string, len(f.errors))
		for k, v := range f.errors {
			errs[k] = v
		}
	}
	return State{
		Open:            f.open,
		Dirty:           f.dirty,
		Draft:           f.draft.Clone(),
		Errors:          errs,
		AutosavePending: f.timer.Pending(),
	}
}

func (f *Form) countSubmission(status string) {
	if f.metrics != nil {
		f.metrics.Submissions.WithLabelValues(status).Inc()
	}
}
