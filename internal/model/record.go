package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Record is one patient/appointment entry: the 17 canonical fields plus any
// columns added at runtime. The zero value is an empty record.
type Record struct {
	ConsultationDate string
	IPP              string
	LastName         string
	FirstName        string
	Sex              string
	BirthDate        string
	IDType           string
	IDNumber         string
	CivilStatus      string
	Insurer          string
	Address          string
	Phone            string
	GuardianLastName string
	GuardianFirst    string
	GuardianID       string
	Schedule         string
	Activity         string

	extra     map[string]string
	extraKeys []string
}

func (r *Record) core(name string) *string {
	switch name {
	case FieldConsultationDate:
		return &r.ConsultationDate
	case FieldIPP:
		return &r.IPP
	case FieldLastName:
		return &r.LastName
	case FieldFirstName:
		return &r.FirstName
	case FieldSex:
		return &r.Sex
	case FieldBirthDate:
		return &r.BirthDate
	case FieldIDType:
		return &r.IDType
	case FieldIDNumber:
		return &r.IDNumber
	case FieldCivilStatus:
		return &r.CivilStatus
	case FieldInsurer:
		return &r.Insurer
	case FieldAddress:
		return &r.Address
	case FieldPhone:
		return &r.Phone
	case FieldGuardianLastName:
		return &r.GuardianLastName
	case FieldGuardianFirst:
		return &r.GuardianFirst
	case FieldGuardianID:
		return &r.GuardianID
	case FieldSchedule:
		return &r.Schedule
	case FieldActivity:
		return &r.Activity
	}
	return nil
}

// Get returns the value of a field; unknown fields read as "".
func (r Record) Get(name string) string {
	if p := r.core(name); p != nil {
		return *p
	}
	return r.extra[name]
}

// Has reports whether the record carries the field.
func (r Record) Has(name string) bool {
	if isCanonical(name) {
		return true
	}
	_, ok := r.extra[name]
	return ok
}

// Set assigns a field, adding it as an extension column when it is not canonical.
func (r *Record) Set(name, value string) {
	if p := r.core(name); p != nil {
		*p = value
		return
	}
	if r.extra == nil {
		r.extra = make(map[string]string)
	}
	if _, ok := r.extra[name]; !ok {
		r.extraKeys = append(r.extraKeys, name)
	}
	r.extra[name] = value
}

// Fields returns the field names in display order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(CanonicalFields)+len(r.extraKeys))
	names = append(names, CanonicalFields...)
	return append(names, r.extraKeys...)
}

// IsBlank reports whether every field is empty after trimming.
func (r Record) IsBlank() bool {
	for _, name := range r.Fields() {
		if strings.TrimSpace(r.Get(name)) != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	c := r
	c.extra = nil
	c.extraKeys = nil
	for _, k := range r.extraKeys {
		c.Set(k, r.extra[k])
	}
	return c
}

// SamePatient reports whether two records identify the same person
// (exact last name, first name and birth date).
func (r Record) SamePatient(o Record) bool {
	return r.LastName == o.LastName &&
		r.FirstName == o.FirstName &&
		r.BirthDate == o.BirthDate
}

// MarshalJSON writes a flat object keyed by field name, in display order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Get(name))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object. Numbers and booleans keep their literal
// text, null reads as "".
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		value, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, value)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("nested values are not supported")
	default:
		return string(trimmed), nil
	}
}

// RecordList is the ordered collection of records; order is display order.
type RecordList []Record

// Clone returns a deep copy of the list.
func (l RecordList) Clone() RecordList {
	if l == nil {
		return nil
	}
	out := make(RecordList, len(l))
	for i, r := range l {
		out[i] = r.Clone()
	}
	return out
}

// Columns returns the header taken from the first record, or the canonical
// layout when the list is empty.
func (l RecordList) Columns() []string {
	if len(l) == 0 {
		return append([]string(nil), CanonicalFields...)
	}
	return l[0].Fields()
}

// FindPatient returns the index of the first record matching the identity of
// last name, first name and birth date, or -1.
func (l RecordList) FindPatient(lastName, firstName, birthDate string) int {
	probe := Record{LastName: lastName, FirstName: firstName, BirthDate: birthDate}
	for i, r := range l {
		if r.SamePatient(probe) {
			return i
		}
	}
	return -1
}
