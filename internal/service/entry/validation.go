package entry

import (
	"github.com/Dahbi-Dev/Excel-easy/internal/model"
)

// submission carries the checked fields of a draft.
type submission struct {
	LastName         string `field:"Nom" validate:"notblank"`
	FirstName        string `field:"Prenom" validate:"notblank"`
	Sex              string `field:"Sexe" validate:"required"`
	BirthDate        string `field:"DATE DE NAISSANCE" validate:"required"`
	ConsultationDate string `field:"DATE DE CONSULTATION" validate:"required"`
	IDType           string `field:"TYPE DE PIECE ID" validate:"required"`
	IDNumber         string `field:"N° PIECE ID" validate:"notblank"`
	Insurer          string `field:"COMPAGNIE D'ASSURANCE" validate:"required"`
	Phone            string `field:"TELEPHONE" validate:"omitempty,phone"`
}

var messages = map[string]string{
	model.FieldLastName:         "Le nom est requis",
	model.FieldFirstName:        "Le prénom est requis",
	model.FieldSex:              "Le sexe est requis",
	model.FieldBirthDate:        "La date de naissance est requise",
	model.FieldConsultationDate: "La date de consultation est requise",
	model.FieldIDType:           "Le type de pièce d'identité est requis",
	model.FieldIDNumber:         "Le numéro de pièce d'identité est requis",
	model.FieldInsurer:          "La compagnie d'assurance est requise",
	model.FieldPhone:            "Le numéro de téléphone n'est pas valide",
}

// check returns a message per failing field, or nil.
func (f *Form) check(r model.Record) map[string]string {
	failed, err := f.validate.Struct(submission{
		LastName:         r.LastName,
		FirstName:        r.FirstName,
		Sex:              r.Sex,
		BirthDate:        r.BirthDate,
		ConsultationDate: r.ConsultationDate,
		IDType:           r.IDType,
		IDNumber:         r.IDNumber,
		Insurer:          r.Insurer,
		Phone:            r.Phone,
	})
	if err != nil {
		f.log.Error(err, "entry validation failed to run")
		return map[string]string{"submit": "Une erreur est survenue lors de l'enregistrement"}
	}
	if len(failed) == 0 {
		return nil
	}
	out := make(map[string]string, len(failed))
	for field := range failed {
		out[field] = messages[field]
	}
	return out
}
