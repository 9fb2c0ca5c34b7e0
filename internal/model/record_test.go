package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJSONKeepsFieldOrder(t *testing.T) {
	var r Record
	r.Set(FieldLastName, "Alaoui")
	r.Set("NOTE", "suivi")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"DATE DE CONSULTATION":"","N° IPP":""`))
	assert.True(t, strings.HasSuffix(s, `"NOTE":"suivi"}`))
}

func TestRecordUnmarshalNumbersAsText(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"N° IPP": 12, "Nom": "Bennani", "TELEPHONE": null, "EXTRA": true}`), &r)
	require.NoError(t, err)

	assert.Equal(t, "12", r.IPP)
	assert.Equal(t, "Bennani", r.LastName)
	assert.Equal(t, "", r.Phone)
	assert.Equal(t, "true", r.Get("EXTRA"))
	assert.Equal(t, "EXTRA", r.Fields()[len(CanonicalFields)])
}

func TestRecordUnmarshalRejectsNested(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`{"Nom": {"a": 1}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &r))
}

func TestRecordCloneIsDeep(t *testing.T) {
	var r Record
	r.Set("NOTE", "a")
	c := r.Clone()
	c.Set("NOTE", "b")

	assert.Equal(t, "a", r.Get("NOTE"))
	assert.Equal(t, "b", c.Get("NOTE"))
}

func TestRecordIsBlank(t *testing.T) {
	assert.True(t, Record{LastName: "  "}.IsBlank())
	assert.False(t, Record{Phone: "0600000000"}.IsBlank())
}

func TestFindPatient(t *testing.T) {
	list := RecordList{
		{LastName: "A", FirstName: "B", BirthDate: "1990-01-01"},
		{LastName: "C", FirstName: "D", BirthDate: "2000-01-01"},
	}
	assert.Equal(t, 1, list.FindPatient("C", "D", "2000-01-01"))
	assert.Equal(t, -1, list.FindPatient("C", "D", "2000-01-02"))
}

func TestColumns(t *testing.T) {
	assert.Equal(t, CanonicalFields, RecordList(nil).Columns())
}
