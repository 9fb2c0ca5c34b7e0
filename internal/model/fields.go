package model

import "strings"

// Canonical field names, in import/export column order.
const (
	FieldConsultationDate = "DATE DE CONSULTATION"
	FieldIPP              = "N° IPP"
	FieldLastName         = "Nom"
	FieldFirstName        = "Prenom"
	FieldSex              = "Sexe"
	FieldBirthDate        = "DATE DE NAISSANCE"
	FieldIDType           = "TYPE DE PIECE ID"
	FieldIDNumber         = "N° PIECE ID"
	FieldCivilStatus      = "E - CIVIL"
	FieldInsurer          = "COMPAGNIE D'ASSURANCE"
	FieldAddress          = "ADRESSE"
	FieldPhone            = "TELEPHONE"
	FieldGuardianLastName = "PARENT_NOM"
	FieldGuardianFirst    = "PARENT_PRENOM"
	FieldGuardianID       = "PARENT_CIN"
	FieldSchedule         = "AGENDA"
	FieldActivity         = "ACTIVITE"
)

// CanonicalFields is the fixed 17-column layout shared by import and export.
var CanonicalFields = []string{
	FieldConsultationDate,
	FieldIPP,
	FieldLastName,
	FieldFirstName,
	FieldSex,
	FieldBirthDate,
	FieldIDType,
	FieldIDNumber,
	FieldCivilStatus,
	FieldInsurer,
	FieldAddress,
	FieldPhone,
	FieldGuardianLastName,
	FieldGuardianFirst,
	FieldGuardianID,
	FieldSchedule,
	FieldActivity,
}

// SearchableFields are matched by the free-text query.
var SearchableFields = []string{
	FieldLastName,
	FieldFirstName,
	FieldIDNumber,
	FieldGuardianID,
}

// DateRangeFields are the fields that accept a date-range constraint.
var DateRangeFields = []string{
	FieldConsultationDate,
	FieldBirthDate,
}

// Options lists the allowed values of every categorical field.
var Options = map[string][]string{
	FieldSex:         {"M", "F"},
	FieldIDType:      {"CIN", "PASSEPORT", "CARTE DE SEJOUR", "EXTRAIT DE NAISSANCE", "AUTRE"},
	FieldCivilStatus: {"CELIBATAIRE", "MARIE(E)", "DIVORCE(E)", "VEUF(VE)"},
	FieldInsurer: {
		"CNSS", "CNOPS", "AMO", "RAMED", "AXA", "WAFA ASSURANCE",
		"SAHAM", "ATLANTA", "RMA", "SANS",
	},
	FieldSchedule: {"CONSULTATION", "CONTROLE", "URGENCE", "TELECONSULTATION"},
	FieldActivity: {"MEDECINE GENERALE", "PEDIATRIE", "GYNECOLOGIE", "CARDIOLOGIE", "DERMATOLOGIE"},
}

// FieldKind tells how a column is edited.
type FieldKind string

const (
	FieldKindText   FieldKind = "text"
	FieldKindSelect FieldKind = "select"
	FieldKindDate   FieldKind = "date"
)

// IsCategorical reports whether the field edits as a single select.
func IsCategorical(name string) bool {
	_, ok := Options[name]
	return ok
}

// IsDateLike reports whether the field holds a date; any name containing DATE does.
func IsDateLike(name string) bool {
	return strings.Contains(name, "DATE")
}

// KindOf returns the edit kind of a field name.
func KindOf(name string) FieldKind {
	switch {
	case IsCategorical(name):
		return FieldKindSelect
	case IsDateLike(name):
		return FieldKindDate
	default:
		return FieldKindText
	}
}

// IsOption reports whether value is allowed for a categorical field.
// Non-categorical fields accept anything.
func IsOption(name, value string) bool {
	opts, ok := Options[name]
	if !ok || value == "" {
		return true
	}
	for _, o := range opts {
		if o == value {
			return true
		}
	}
	return false
}

func isCanonical(name string) bool {
	return canonicalIndex(name) >= 0
}

func canonicalIndex(name string) int {
	for i, f := range CanonicalFields {
		if f == name {
			return i
		}
	}
	return -1
}
