package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
)

// Document layout, in millimetres.
const (
	docFontSize   = 8
	docLeft       = 10.0
	docColumnStep = 15.0
	docTop        = 10.0
	docHeaderGap  = 10.0
	docRowStep    = 5.0
	docPageLimit  = 200.0
)

// Document renders list as a landscape A4 table. The header is printed once,
// at the top of the first page; a new page starts whenever the cursor reaches
// the page limit.
func Document(list model.RecordList) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", docFontSize)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	y := docTop
	for i, rec := range list {
		if i == 0 {
			for c, name := range model.CanonicalFields {
				pdf.Text(columnX(c), y, tr(name))
			}
			y += docHeaderGap
		}

		for c, name := range model.CanonicalFields {
			pdf.Text(columnX(c), y, tr(rec.Get(name)))
		}
		y += docRowStep

		if y >= docPageLimit {
			pdf.AddPage()
			y = docTop
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func columnX(i int) float64 {
	return docLeft + float64(i)*docColumnStep
}
