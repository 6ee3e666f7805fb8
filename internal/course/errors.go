package course

import "fmt"

// FileAccessError reports a dataset that cannot be opened or read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access dataset %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// MalformedRecordError reports a row that could not be converted into a
// Record. Column is empty when the row as a whole is invalid (wrong field
// count).
type MalformedRecordError struct {
	Line   int    // 1-indexed line number in the file, 0 if unknown
	Column string // Column header name
	Value  string // Offending raw value
	Reason string
	Err    error // Underlying conversion error, if any
}

func (e *MalformedRecordError) Error() string {
	prefix := "malformed record"
	if e.Line > 0 {
		prefix = fmt.Sprintf("malformed record at line %d", e.Line)
	}
	if e.Column == "" {
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", prefix, e.Column, e.Value, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
