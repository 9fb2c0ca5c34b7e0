package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/memory"
	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
)

func newTable(t *testing.T, names ...string) (*Table, *storage.Adapter) {
	t.Helper()
	store := storage.NewAdapter(memory.NewStore(), "test", nil, nil)
	table := NewTable(store, nil)

	records := make(model.RecordList, len(names))
	for i, n := range names {
		records[i] = model.Record{LastName: n}
	}
	table.Replace(context.Background(), records)
	return table, store
}

func backup(t *testing.T, store *storage.Adapter) (model.EditingBackup, bool) {
	t.Helper()
	var b model.EditingBackup
	ok := store.Load(context.Background(), storage.KeyEditingBackup, &b)
	return b, ok
}

func TestEditLifecycle(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A", "B")

	require.NoError(t, table.BeginEdit(ctx, 1))
	row, ok := table.Editing()
	assert.True(t, ok)
	assert.Equal(t, 1, row)

	b, ok := backup(t, store)
	require.True(t, ok)
	assert.Equal(t, 1, b.RowIndex)
	assert.Equal(t, "B", b.Data.LastName)

	require.NoError(t, table.UpdateField(1, model.FieldFirstName, "Omar"))
	require.NoError(t, table.Save(ctx, 1))

	_, ok = table.Editing()
	assert.False(t, ok)
	_, ok = backup(t, store)
	assert.False(t, ok)

	var persisted model.RecordList
	require.True(t, store.Load(ctx, storage.KeyPatients, &persisted))
	assert.Equal(t, "Omar", persisted[1].FirstName)
}

func TestUpdateFieldRequiresEditingRow(t *testing.T) {
	ctx := context.Background()
	table, _ := newTable(t, "A", "B")

	err := table.UpdateField(0, model.FieldLastName, "x")
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	require.NoError(t, table.BeginEdit(ctx, 1))
	err = table.UpdateField(0, model.FieldLastName, "x")
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	err = table.UpdateField(1, model.FieldSex, "X")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	err = table.UpdateField(5, model.FieldLastName, "x")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.True(t, apperrors.Is(table.Save(ctx, 0), apperrors.ErrConflict))
}

func TestDeleteEditingRow(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A", "B", "C")

	require.NoError(t, table.BeginEdit(ctx, 1))
	require.NoError(t, table.Delete(ctx, 1))

	_, ok := table.Editing()
	assert.False(t, ok)
	_, ok = backup(t, store)
	assert.False(t, ok)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "C", table.Records()[1].LastName)
}

func TestDeleteBeforeEditingRowShiftsIndex(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A", "B", "C")

	require.NoError(t, table.BeginEdit(ctx, 2))
	require.NoError(t, table.Delete(ctx, 0))

	row, ok := table.Editing()
	assert.True(t, ok)
	assert.Equal(t, 1, row)
	assert.Equal(t, "C", table.Records()[row].LastName)

	b, ok := backup(t, store)
	require.True(t, ok)
	assert.Equal(t, 1, b.RowIndex)
}

func TestDeleteAfterEditingRowKeepsIndex(t *testing.T) {
	ctx := context.Background()
	table, _ := newTable(t, "A", "B", "C")

	require.NoError(t, table.BeginEdit(ctx, 0))
	require.NoError(t, table.Delete(ctx, 2))

	row, ok := table.Editing()
	assert.True(t, ok)
	assert.Equal(t, 0, row)
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A", "B")
	require.NoError(t, table.BeginEdit(ctx, 1))

	// A fresh table over the same storage picks up the interrupted edit.
	reloaded := NewTable(store, nil)
	reloaded.Load(ctx)
	assert.Equal(t, 2, reloaded.Len())
	row, ok := reloaded.Editing()
	assert.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestResumeDiscardsOutOfRangeBackup(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A")
	store.Save(ctx, storage.KeyEditingBackup, model.EditingBackup{RowIndex: 4})

	table.Resume(ctx)
	_, ok := table.Editing()
	assert.False(t, ok)
	_, ok = backup(t, store)
	assert.False(t, ok)
}

func TestReplaceAbandonsEdit(t *testing.T) {
	ctx := context.Background()
	table, store := newTable(t, "A")
	require.NoError(t, table.BeginEdit(ctx, 0))

	table.Replace(ctx, nil)
	_, ok := table.Editing()
	assert.False(t, ok)
	_, ok = backup(t, store)
	assert.False(t, ok)
	assert.NotNil(t, table.Records())
}

func TestAddColumn(t *testing.T) {
	ctx := context.Background()
	table, _ := newTable(t, "A", "B")
	require.NoError(t, table.BeginEdit(ctx, 0))
	require.NoError(t, table.UpdateField(0, "NOTE", "urgent"))

	require.NoError(t, table.AddColumn(ctx, " NOTE "))
	require.NoError(t, table.AddColumn(ctx, "SUIVI"))

	assert.Equal(t, "urgent", table.Records()[0].Get("NOTE"))
	assert.True(t, table.Records()[1].Has("NOTE"))

	cols := table.Columns()
	assert.Equal(t, "SUIVI", cols[len(cols)-1].Name)
	assert.Equal(t, model.FieldKindText, cols[len(cols)-1].Kind)

	err := table.AddColumn(ctx, "  ")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestColumnsDescribeKinds(t *testing.T) {
	cols := ColumnsOf(nil)
	require.Len(t, cols, len(model.CanonicalFields))
	assert.Equal(t, model.FieldKindDate, cols[0].Kind)
	assert.Equal(t, model.FieldKindSelect, cols[4].Kind)
	assert.Equal(t, model.Options[model.FieldSex], cols[4].Options)
}

func TestDisplay(t *testing.T) {
	r := model.Record{LastName: "Alaoui", BirthDate: "1990-01-31"}
	values := Display(r)

	assert.Equal(t, "Alaoui", values[model.FieldLastName])
	assert.Equal(t, "31/01/1990", values[model.FieldBirthDate])
	assert.Equal(t, Placeholder, values[model.FieldPhone])
	assert.Equal(t, Placeholder, values[model.FieldConsultationDate])
	assert.Equal(t, "inconnue", DisplayValue(model.FieldBirthDate, "inconnue"))
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()
	table, _ := newTable(t, "A", "", "C")
	require.NoError(t, table.BeginEdit(ctx, 2))

	page := table.Paginate(table.AllIndices(), model.Pagination{Page: 1, PageSize: 2}, false)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, Placeholder, page.Rows[1].Values[model.FieldLastName])

	page = table.Paginate([]int{2}, model.Pagination{}, false)
	require.Len(t, page.Rows, 1)
	assert.True(t, page.Rows[0].Editing)
	assert.Equal(t, 2, page.Rows[0].Index)
	assert.Equal(t, "", page.Rows[0].Values[model.FieldPhone])
}
