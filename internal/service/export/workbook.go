// Package export renders a record list as a workbook or a paged document, and
// can deliver either one by mail.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
)

// Format is an export file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// File names handed to the client.
const (
	WorkbookName = "data.xlsx"
	DocumentName = "data.pdf"
	SheetName    = "Sheet1"
)

// ParseFormat accepts "xlsx" or "pdf".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatXLSX, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FileName returns the attachment name of the format.
func (f Format) FileName() string {
	if f == FormatPDF {
		return DocumentName
	}
	return WorkbookName
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// columnWidths are in Excel character units, one per canonical field.
var columnWidths = []float64{
	20, // DATE DE CONSULTATION
	10, // N° IPP
	18, // Nom
	18, // Prenom
	6,  // Sexe
	18, // DATE DE NAISSANCE
	16, // TYPE DE PIECE ID
	16, // N° PIECE ID
	12, // E - CIVIL
	22, // COMPAGNIE D'ASSURANCE
	30, // ADRESSE
	15, // TELEPHONE
	18, // PARENT_NOM
	18, // PARENT_PRENOM
	14, // PARENT_CIN
	12, // AGENDA
	14, // ACTIVITE
}

// Workbook writes list to a single-sheet workbook with the canonical header.
// Values are written as stored.
func Workbook(list model.RecordList) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range model.CanonicalFields {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return nil, fmt.Errorf("set width of %s: %w", col, err)
		}
		if err := f.SetCellStr(SheetName, col+"1", name); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for r, rec := range list {
		for i, name := range model.CanonicalFields {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStr(SheetName, cell, rec.Get(name)); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
