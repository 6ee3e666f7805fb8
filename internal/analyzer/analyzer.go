package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/coursestats/internal/course"
)

// Analyzer runs course reports against a Source. It is safe for concurrent
// use when its Source is.
type Analyzer struct {
	source  Source
	catalog *course.Catalog
}

// New creates an Analyzer reading from source with an empty catalog.
func New(source Source) *Analyzer {
	return &Analyzer{
		source:  source,
		catalog: course.NewCatalog(),
	}
}

// Catalog returns the distinct course numbers and instructors registered by
// every load so far.
func (a *Analyzer) Catalog() *course.Catalog {
	return a.catalog
}

// Records returns the current record set. The slice is shared and must not
// be modified.
func (a *Analyzer) Records(ctx context.Context) ([]course.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := a.source.Records(ctx, a.catalog)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// run loads the records, applies fn and records metrics under name.
func run[T any](ctx context.Context, a *Analyzer, name string, fn func([]course.Record) (T, error)) (T, error) {
	start := time.Now()
	var zero T

	records, err := a.Records(ctx)
	if err != nil {
		observe(name, start, err)
		return zero, err
	}
	result, err := fn(records)
	observe(name, start, err)
	if err != nil {
		return zero, err
	}
	return result, nil
}
