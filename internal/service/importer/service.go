package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/pkg/dateutil"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
)

type Service struct {
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewService(log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{log: log, metrics: m}
}

// Import decodes the first worksheet of a workbook into records. Row 0 is the
// header and is ignored; blank rows are dropped; cells map positionally onto
// the canonical fields. Any decode failure returns a Decode error and no
// records.
func (s *Service) Import(r io.Reader) (model.RecordList, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		s.count("error")
		s.log.Error(err, "error processing file")
		return nil, apperrors.Decode(err)
	}

	records := MapRows(rows)

	s.count("success")
	if s.metrics != nil {
		s.metrics.ImportedRecords.Add(float64(len(records)))
	}
	s.log.Info("spreadsheet imported", "records", len(records))
	return records, nil
}

// MapRows turns raw rows (header first) into records.
func MapRows(rows [][]string) model.RecordList {
	if len(rows) == 0 {
		return model.RecordList{}
	}

	records := make(model.RecordList, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		position := len(records) + 1

		var rec model.Record
		for i, field := range model.CanonicalFields {
			rec.Set(field, cell(row, i))
		}
		if rec.IPP == "" {
			rec.IPP = strconv.Itoa(position)
		}
		records = append(records, rec)
	}
	return records
}

func readFirstSheet(r io.Reader) (rows [][]string, err error) {
	// malformed archives have been known to panic inside the decoder
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("decode workbook: %v", p)
		}
	}()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err = f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	resolveDateCells(rows, raw)
	return rows, nil
}

// resolveDateCells replaces the rendered text of date-styled cells in date
// columns with DD/MM/YYYY. The default rendering of a date cell is mm-dd-yy,
// which loses the century and the day/month order.
func resolveDateCells(rows, raw [][]string) {
	for r := 1; r < len(rows) && r < len(raw); r++ {
		for i, field := range model.CanonicalFields {
			if !model.IsDateLike(field) || i >= len(rows[r]) || i >= len(raw[r]) {
				continue
			}
			shown, value := strings.TrimSpace(rows[r][i]), strings.TrimSpace(raw[r][i])
			if shown == value {
				continue
			}
			serial, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			if t, ok := dateutil.FromSerial(serial); ok {
				rows[r][i] = t.Format(dateutil.DisplayLayout)
			}
		}
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *Service) count(status string) {
	if s.metrics != nil {
		s.metrics.ImportsTotal.WithLabelValues(status).Inc()
	}
}
