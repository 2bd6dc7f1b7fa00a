package timesheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Employee ID,Name,Date,Clock In,Clock Out,Total Hours,Break Time,Overtime Hours,Status,Notes
CV001,Ana Tavares,2024-03-04,08:00,17:00,8,1,0,regular,
,,,,,,,,,

CV002,Joao Lopes,2024-03-05,Day Off,Day Off,0,0,0,Day Off,"vacation, approved"
`

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "CV001", records[0].ExternalID)
	assert.Equal(t, "08:00", records[0].ClockIn)
	assert.Equal(t, "", records[0].Notes)

	assert.Equal(t, 5, records[1].Row)
	assert.Equal(t, "Day Off", records[1].Status)
	assert.Equal(t, "vacation, approved", records[1].Notes)
}

func TestParseCSVShortRowIsPadded(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("header\nCV001,Ana,2024-03-04\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-03-04", records[0].Date)
	assert.Empty(t, records[0].Status)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Employee ID", "Name", "Date", "Clock In", "Clock Out", "Total Hours", "Break Time", "Overtime Hours", "Status", "Notes"},
		{"CV001", "Ana Tavares", "2024-03-04", "08:00", "18:00", 10, 1, 2, "regular"},
		{},
		{"CV002", "Joao Lopes", "2024-03-05", "Day Off", "Day Off", 0, 0, 0, "dayoff", "sick"},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := ParseUpload("march.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "10", records[0].TotalHours)
	assert.Equal(t, 4, records[1].Row)
	assert.Equal(t, "sick", records[1].Notes)
}

func TestParseUploadRejectsUnknownExtension(t *testing.T) {
	_, err := ParseUpload("march.pdf", strings.NewReader(""))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseUploadRejectsCorruptWorkbook(t *testing.T) {
	_, err := ParseUpload("march.xlsx", strings.NewReader("not a zip archive"))
	if !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("expected ErrUnreadableFile, got %v", err)
	}
}
