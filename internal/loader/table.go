package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawTable is the format-independent shape every parser produces: a
// normalized header plus one map per row keyed by column name.
type RawTable struct {
	Header []string
	Rows   []map[string]string
}

// normalizeColumn canonicalizes a column name for binding: lowercased,
// trimmed, inner spaces collapsed to underscores and common Spanish
// accents stripped, so "Precio Unitario" and "precio_unitario" bind the
// same field.
func normalizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
		" ", "_",
	)
	return replacer.Replace(name)
}

// newRawTable builds a RawTable from a header row and data rows. Cells
// beyond the header width are dropped; short rows are padded with "".
func newRawTable(header []string, rows [][]string) *RawTable {
	normalized := make([]string, len(header))
	for i, col := range header {
		normalized[i] = normalizeColumn(col)
	}

	table := &RawTable{Header: normalized}
	for _, row := range rows {
		record := make(map[string]string, len(normalized))
		for i, col := range normalized {
			if i < len(row) {
				record[col] = strings.TrimSpace(row[i])
			} else {
				record[col] = ""
			}
		}
		table.Rows = append(table.Rows, record)
	}
	return table
}

// HasColumn reports whether the table contains the given column.
func (t *RawTable) HasColumn(name string) bool {
	for _, col := range t.Header {
		if col == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the table.
func (t *RawTable) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
}

// excelEpoch is day zero of the 1900 date system used by Excel serial
// numbers, already adjusted for the fictitious 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate parses a cell into a date. Accepts the textual layouts and
// Excel serial numbers.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	// Excel serial number, e.g. 45231 or 45231.5.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		days := math.Floor(serial)
		frac := serial - days
		ts := excelEpoch.AddDate(0, 0, int(days))
		return ts.Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseFloat parses a numeric cell, tolerating a decimal comma.
func parseFloat(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty number")
	}
	if strings.Contains(value, ",") && !strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", ".")
	}
	return strconv.ParseFloat(value, 64)
}

// parseInt parses an integer cell. Floats with a zero fraction are
// accepted because Excel and JSON both deliver integers as floats.
func parseInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty integer")
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return int(f), nil
}
