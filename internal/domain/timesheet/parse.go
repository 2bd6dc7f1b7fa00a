package timesheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseUpload decodes an uploaded timesheet, choosing the decoder from the
// file extension. The header row is skipped in both formats.
func ParseUpload(filename string, r io.Reader) ([]RawRecord, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func ParseCSV(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []RawRecord
	first := true
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %w", ErrUnreadableFile, err)
		}
		if first {
			first = false
			continue
		}
		if blankRow(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, recordFromFields(line, fields))
	}
	return records, nil
}

func ParseXLSX(r io.Reader) ([]RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrUnreadableFile, sheets[0], err)
	}

	var records []RawRecord
	for i := 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		records = append(records, recordFromFields(i+1, rows[i]))
	}
	return records, nil
}

func recordFromFields(row int, fields []string) RawRecord {
	if len(fields) < minUploadColumns+1 {
		padded := make([]string, minUploadColumns+1)
		copy(padded, fields)
		fields = padded
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return RawRecord{
		Row:           row,
		ExternalID:    fields[0],
		Name:          fields[1],
		Date:          fields[2],
		ClockIn:       fields[3],
		ClockOut:      fields[4],
		TotalHours:    fields[5],
		BreakTime:     fields[6],
		OvertimeHours: fields[7],
		Status:        fields[8],
		Notes:         fields[9],
	}
}

func blankRow(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
