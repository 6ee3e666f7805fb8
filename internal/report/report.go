// Package report renders analyzer results as plain text.
//
// Maps are written as "key == value" lines and lists as one title per line.
// List values inside a map use bracket notation ("[a, b]"), with an
// instructor's course lists nested as "[[independent...], [co-taught...]]".
package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/config"
)

// Counts writes one "key == value" line per entry, keys ascending.
func Counts(w io.Writer, counts map[string]int) error {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s == %d\n", k, counts[k]); err != nil {
			return err
		}
	}
	return nil
}

// KeyCounts writes ordered counts, keeping the given order.
func KeyCounts(w io.Writer, counts []analyzer.KeyCount) error {
	for _, kc := range counts {
		if _, err := fmt.Fprintf(w, "%s == %d\n", kc.Key, kc.Participants); err != nil {
			return err
		}
	}
	return nil
}

// Instructors writes each instructor's independent and co-taught titles,
// instructors ascending.
func Instructors(w io.Writer, courses map[string]analyzer.InstructorCourses) error {
	names := make([]string, 0, len(courses))
	for name := range courses {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		ic := courses[name]
		if _, err := fmt.Fprintf(w, "%s == [%s, %s]\n", name, bracket(ic.Independent), bracket(ic.CoTaught)); err != nil {
			return err
		}
	}
	return nil
}

// Titles writes one title per line.
func Titles(w io.Writer, titles []string) error {
	for _, t := range titles {
		if _, err := io.WriteString(w, t+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func bracket(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// Run executes all six queries against a and writes them as titled
// sections separated by blank lines. Query arguments come from cfg.
func Run(ctx context.Context, w io.Writer, a *analyzer.Analyzer, cfg config.ReportConfig) error {
	by, err := analyzer.ParseMetric(cfg.TopBy)
	if err != nil {
		return err
	}

	sections := []struct {
		title  string
		render func() error
	}{
		{"Participants by institution", func() error {
			counts, err := a.ParticipantsByInstitution(ctx)
			if err != nil {
				return err
			}
			return Counts(w, counts)
		}},
		{"Participants by institution and subject", func() error {
			counts, err := a.ParticipantsByInstitutionSubject(ctx)
			if err != nil {
				return err
			}
			return KeyCounts(w, counts)
		}},
		{"Courses by instructor", func() error {
			courses, err := a.CoursesByInstructor(ctx)
			if err != nil {
				return err
			}
			return Instructors(w, courses)
		}},
		{fmt.Sprintf("Top %d courses by %s", cfg.TopK, by), func() error {
			titles, err := a.TopCourses(ctx, cfg.TopK, by)
			if err != nil {
				return err
			}
			return Titles(w, titles)
		}},
		{fmt.Sprintf("Courses matching %q (audited >= %g%%, hours <= %g)",
			cfg.SearchSubject, cfg.SearchMinAudited, cfg.SearchMaxHours), func() error {
			titles, err := a.SearchCourses(ctx, cfg.SearchSubject, cfg.SearchMinAudited, cfg.SearchMaxHours)
			if err != nil {
				return err
			}
			return Titles(w, titles)
		}},
		{fmt.Sprintf("Recommended for age=%d gender=%d bachelor=%d",
			cfg.RecommendAge, cfg.RecommendGender, cfg.RecommendBachelor), func() error {
			titles, err := a.RecommendCourses(ctx, cfg.RecommendAge, cfg.RecommendGender, cfg.RecommendBachelor)
			if err != nil {
				return err
			}
			return Titles(w, titles)
		}},
	}

	for i, s := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "## %s\n", s.title); err != nil {
			return err
		}
		if err := s.render(); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(s.title), err)
		}
	}
	return nil
}
