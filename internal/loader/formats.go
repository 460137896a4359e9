package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "aurelion/internal/errors"
)

// utf8BOM is prepended by Excel when saving CSV as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readRawTable opens the file and parses it with the parser matching its
// extension. Returns the table and the detected format name.
func readRawTable(path string, requiredColumns []string) (*RawTable, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		table, err := readExcel(path, requiredColumns)
		return table, "xlsx", err
	case ".csv":
		table, err := readCSV(path)
		return table, "csv", err
	case ".json":
		table, err := readJSON(path)
		return table, "json", err
	case ".jsonl":
		table, err := readJSONL(path)
		return table, "jsonl", err
	default:
		return nil, "", apperrors.NewUnsupportedFormatError(path)
	}
}

// readExcel extracts the first sheet whose header row contains the
// required columns. Sheets that parse but do not look like the expected
// table (summary sheets, chart sheets) are skipped.
func readExcel(path string, requiredColumns []string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		table := newRawTable(rows[0], rows[1:])
		if len(table.MissingColumns(requiredColumns)) == 0 {
			return table, nil
		}
	}

	return nil, fmt.Errorf("no sheet in %s contains columns %v", filepath.Base(path), requiredColumns)
}

// readCSV parses a CSV file, tolerating a UTF-8 BOM and ragged rows.
func readCSV(path string) (*RawTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file %s has no header row", filepath.Base(path))
	}

	return newRawTable(records[0], records[1:]), nil
}

// readJSON parses a JSON array of flat objects.
func readJSON(path string) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var objects []map[string]interface{}
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}

	return tableFromObjects(objects), nil
}

// readJSONL parses a file with one JSON object per line.
func readJSONL(path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var objects []map[string]interface{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("failed to parse JSON on line %d: %w", line, err)
		}
		objects = append(objects, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return tableFromObjects(objects), nil
}

// tableFromObjects flattens decoded JSON objects into a RawTable. The
// header is the sorted union of keys so ragged objects still bind.
func tableFromObjects(objects []map[string]interface{}) *RawTable {
	seen := map[string]bool{}
	var header []string
	for _, obj := range objects {
		for key := range obj {
			norm := normalizeColumn(key)
			if !seen[norm] {
				seen[norm] = true
				header = append(header, norm)
			}
		}
	}
	sort.Strings(header)

	table := &RawTable{Header: header}
	for _, obj := range objects {
		byNorm := make(map[string]interface{}, len(obj))
		for key, value := range obj {
			byNorm[normalizeColumn(key)] = value
		}
		record := make(map[string]string, len(header))
		for _, col := range header {
			record[col] = stringifyJSONValue(byNorm[col])
		}
		table.Rows = append(table.Rows, record)
	}
	return table
}

// stringifyJSONValue renders a decoded JSON value as a cell string.
// Whole floats print without an exponent or trailing zeros so they can
// round-trip through the integer parser.
func stringifyJSONValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
