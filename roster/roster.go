/*
Package roster reads employee rosters from spreadsheets.

PURPOSE:
  Turns an uploaded .xlsx or .csv file into career.RosterRow values.
  Only columns are located here; cell content is interpreted later by
  career.ClassifyRoster so that a bad cell excludes one row, not the file.

COLUMNS:
  REF    employee identifier
  fanti  admission date (Excel serial, ISO or slash dates)
  CD     organizational level, 14..30
  Header names are matched case-insensitively and may appear in any order.
  Extra columns are ignored.

SEE ALSO:
  - career/roster.go: Row classification
  - api/handlers.go: Multipart upload
*/
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/warp/career-simulator/career"
	"github.com/xuri/excelize/v2"
)

// Header names.
const (
	ColumnID        = "REF"
	ColumnAdmission = "fanti"
	ColumnLevel     = "CD"
)

var (
	// ErrEmptyRoster is returned when the file has no header row.
	ErrEmptyRoster = errors.New("roster is empty")

	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("roster column missing")

	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
	ErrUnsupportedFormat = errors.New("unsupported roster format")
)

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Open reads a roster file, choosing the reader by extension.
func Open(path string) ([]career.RosterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

// Read dispatches on the file name extension.
func Read(name string, r io.Reader) ([]career.RosterRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	case ".csv":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ReadXLSX reads the first worksheet of a workbook.
// Date cells are returned as raw serials and decoded by ParseDate.
func ReadXLSX(r io.Reader) ([]career.RosterRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrEmptyRoster)
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheetName, err)
	}
	return fromRows(rows)
}

// ReadCSV reads a comma or semicolon separated roster.
func ReadCSV(r io.Reader) ([]career.RosterRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return fromRows(rows)
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

type columns struct {
	id, admission, level int
}

func fromRows(rows [][]string) ([]career.RosterRow, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]career.RosterRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		out = append(out, career.RosterRow{
			Line:          i + 2,
			ID:            cellValue(row, cols.id),
			AdmissionDate: cellValue(row, cols.admission),
			Level:         cellValue(row, cols.level),
		})
	}
	return out, nil
}

func locateColumns(header []string) (columns, error) {
	cols := columns{id: -1, admission: -1, level: -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case normalizeHeader(ColumnID):
			cols.id = i
		case normalizeHeader(ColumnAdmission):
			cols.admission = i
		case normalizeHeader(ColumnLevel):
			cols.level = i
		}
	}

	var missing []string
	if cols.id < 0 {
		missing = append(missing, ColumnID)
	}
	if cols.admission < 0 {
		missing = append(missing, ColumnAdmission)
	}
	if cols.level < 0 {
		missing = append(missing, ColumnLevel)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// =============================================================================
// DATES
// =============================================================================

// Serial range accepted as an Excel date: 1900-01-01 through 9999-12-31.
const (
	minSerial = 1
	maxSerial = 2958465
)

// serialPattern is a plain decimal serial. ParseFloat alone would also
// accept NaN, Inf, hex floats and digit separators.
var serialPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseDate accepts Excel serial numbers in addition to the text layouts
// understood by career.ParseDate. Time of day is discarded.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !serialPattern.MatchString(value) {
		return career.ParseDate(value)
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if !(serial >= minSerial && serial <= maxSerial) {
			return time.Time{}, fmt.Errorf("date serial %v out of range", serial)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return career.ParseDate(value)
}
