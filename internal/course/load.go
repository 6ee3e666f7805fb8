package course

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextCheckInterval is how often (in rows) Load checks for cancellation.
var ContextCheckInterval = 100

// maxLineSize bounds a single dataset line.
const maxLineSize = 1 << 20

// Load parses every data row from r. The first line is the header and is
// skipped; blank lines are ignored. Parsing stops at the first malformed row
// and no records are returned in that case.
func Load(ctx context.Context, r io.Reader, catalog *Catalog) ([]Record, error) {
	scanner := bufio.NewScanner(newBOMSkippingReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum == 1 {
			continue
		}
		if lineNum%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("load cancelled at line %d: %w", lineNum, err)
			}
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line, lineNum, catalog)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &MalformedRecordError{
				Line:   lineNum + 1,
				Reason: fmt.Sprintf("line longer than %d bytes", maxLineSize),
				Err:    err,
			}
		}
		return nil, fmt.Errorf("read dataset after line %d: %w", lineNum, err)
	}
	return records, nil
}

// LoadFile opens path and parses it with Load. Open and read failures are
// reported as *FileAccessError.
func LoadFile(ctx context.Context, path string, catalog *Catalog) ([]Record, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	counter := &countingReader{r: f}
	records, err := Load(ctx, counter, catalog)
	if err != nil {
		if isReadError(err) {
			return nil, &FileAccessError{Path: path, Err: err}
		}
		return nil, err
	}

	slog.Debug("dataset loaded",
		"path", path,
		"rows", len(records),
		"bytes", counter.bytesRead,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

// isReadError reports whether err came from the underlying reader rather than
// from row parsing or cancellation.
func isReadError(err error) bool {
	var malformed *MalformedRecordError
	if errors.As(err, &malformed) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
