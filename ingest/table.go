/*
Package ingest converts published datasets into engine series.

PURPOSE:
  The wage index, price index, lending rates and statutory floors are
  published as spreadsheets and CSV exports whose headers, separators and
  encodings vary from one release to the next. This package reads them into
  a plain Table, resolves logical columns through a declarative alias table,
  and builds the sorted series a Snapshot carries.

SOURCES:
  CSV   - ',', ';' or tab separated, UTF-8 or Latin-1
  XLSX  - first sheet, raw cell values (date serials converted)
  YAML  - statutory floors with norm text and link

ROW POLICY:
  Rows whose date or value cannot be read are dropped and counted in the
  Report. A missing required column fails the whole dataset.

USAGE:
  t, err := ingest.ReadFile("data/ripte.csv")
  series, report, err := ingest.BuildWageIndex(t)

SEE ALSO:
  - columns.go: alias table and resolution order
  - builders.go: per-dataset row conversion
  - loader.go: directory import into a repository
*/
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Format identifies a source encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported dataset file %q", path)
}

// ParseFormat reads a format name as given by an API caller.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "tsv", "txt":
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported dataset format %q", s)
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a header plus string rows, whatever the source format.
type Table struct {
	Header []string
	Rows   [][]string

	// DateSerials is set for spreadsheets, whose date cells arrive as
	// day serial numbers.
	DateSerials bool
}

// Cell returns row[col] trimmed, or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadFile opens path and reads it according to its extension.
func ReadFile(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatYAML {
		return nil, fmt.Errorf("%s: YAML sources hold floors, use ReadFloorsYAML", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if format == FormatXLSX {
		return ReadXLSX(f)
	}
	return ReadCSV(f)
}

// =============================================================================
// CSV
// =============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a delimited export. The delimiter is sniffed from the header
// line; bytes that are not valid UTF-8 are decoded as Latin-1.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode latin-1: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return newTable(records, false)
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the first
// non-empty line. Ties keep that order.
func sniffDelimiter(data []byte) rune {
	var header string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			header = line
			break
		}
	}

	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t'} {
		if n := strings.Count(header, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// =============================================================================
// XLSX
// =============================================================================

// ReadXLSX reads the first sheet of a workbook with raw cell values.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return newTable(rows, true)
}

// newTable takes the first non-empty record as header and drops blank rows.
func newTable(records [][]string, serials bool) (*Table, error) {
	t := &Table{DateSerials: serials}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Header == nil {
		return nil, fmt.Errorf("dataset has no header row")
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
