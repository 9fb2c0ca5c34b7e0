package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleIsSelfInverse(t *testing.T) {
	var f FilterState
	f.Toggle(FieldSex, "F")
	assert.Equal(t, "F", f.Filters[FieldSex])
	assert.False(t, f.IsEmpty())

	f.Toggle(FieldSex, "F")
	assert.True(t, f.IsEmpty())
	assert.Nil(t, f.Filters)
}

func TestToggleReplacesValue(t *testing.T) {
	var f FilterState
	f.Toggle(FieldSex, "F")
	f.Toggle(FieldSex, "M")
	assert.Equal(t, "M", f.Filters[FieldSex])
}

func TestSetRange(t *testing.T) {
	var f FilterState
	f.SetRange(FieldBirthDate, DateRange{Start: "1990-01-01"})
	assert.False(t, f.IsEmpty())

	f.SetRange(FieldBirthDate, DateRange{})
	assert.True(t, f.IsEmpty())
}

func TestCloneIsIndependent(t *testing.T) {
	f := FilterState{Query: "x"}
	f.Toggle(FieldSex, "F")
	c := f.Clone()
	c.Toggle(FieldSex, "F")

	assert.Equal(t, "F", f.Filters[FieldSex])
	assert.Empty(t, c.Filters)
}

func TestPaginationBounds(t *testing.T) {
	start, end := Pagination{Page: 2, PageSize: 10}.Bounds(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	start, end = Pagination{Page: 9, PageSize: 10}.Bounds(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)

	p := Pagination{PageSize: 1000}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
}
