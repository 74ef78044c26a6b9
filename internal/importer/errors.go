package importer

import "fmt"

// StructuralError reports a problem with an input file as a whole: missing
// file, no header, no data rows, or missing required columns. Structural
// failures abort the run before any database mutation.
type StructuralError struct {
	File    string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// RowError reports a rejected data row with its source file and 1-based line
// number. The header counts as line 1, so data rows start at line 2.
type RowError struct {
	File    string
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.File, e.Line, e.Message)
}

func rowErrorf(file string, line int, format string, args ...interface{}) *RowError {
	return &RowError{File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}
