package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// table is one parsed CSV input: a header plus data rows keyed by column name.
type table struct {
	file   string
	header []string
	rows   []map[string]string
}

// readTable parses a CSV file into column-keyed rows. A UTF-8 BOM on the
// first header cell is stripped. Short rows leave their trailing columns
// empty rather than failing, matching how spreadsheet exports behave.
func readTable(path string) (*table, error) {
	file := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StructuralError{File: file, Message: fmt.Sprintf("CSV not found: %s", path)}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &StructuralError{File: file, Message: "CSV has no header"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	t := &table{file: file, header: header}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// requireColumns validates that the header carries every required column.
// This runs for all inputs before any database write.
func (t *table) requireColumns(required ...string) error {
	have := make(map[string]struct{}, len(t.header))
	for _, col := range t.header {
		have[col] = struct{}{}
	}
	var missing []string
	for _, col := range required {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &StructuralError{
			File:    t.file,
			Message: fmt.Sprintf("CSV missing columns %v", missing),
		}
	}
	return nil
}

// requireRows validates that the table has at least one data row. The images
// input may legitimately be empty; locations and properties may not.
func (t *table) requireRows() error {
	if len(t.rows) == 0 {
		return &StructuralError{File: t.file, Message: "CSV is empty (no rows)"}
	}
	return nil
}

// get returns the trimmed value of a column in a row.
func get(row map[string]string, col string) string {
	return strings.TrimSpace(row[col])
}

// parseBool accepts the tolerant boolean vocabulary used by the image input:
// true/false, 1/0, yes/no, y/n, case-insensitive. The empty string is false.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: '%s' (use true/false)", value)
}
