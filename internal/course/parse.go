package course

// parse.go converts raw dataset lines into Records.
//
// Rows are split on commas that are not inside a double-quoted segment.
// Quotes are kept by SplitLine and removed per column: title, instructors and
// subject drop every double quote, title is additionally trimmed. Institution
// and course number are used verbatim.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SplitLine splits a raw line on commas outside double quotes. The returned
// fields still contain their quote characters. Trailing empty fields are
// preserved.
func SplitLine(line string) []string {
	fields := make([]string, 0, NumColumns)
	inQuotes := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

// ParseLine converts one raw data line into a Record. lineNum is used only
// for error reporting. When catalog is non-nil and the row parses, its
// course number and instructors are registered.
func ParseLine(line string, lineNum int, catalog *Catalog) (Record, error) {
	fields := SplitLine(line)
	if len(fields) != NumColumns {
		return Record{}, &MalformedRecordError{
			Line:   lineNum,
			Reason: fmt.Sprintf("row has %d columns, expected %d", len(fields), NumColumns),
		}
	}

	p := fieldParser{fields: fields, line: lineNum}
	r := Record{
		Institution:  fields[ColInstitution],
		CourseNumber: fields[ColCourseNumber],
		LaunchDate:   p.date(ColLaunchDate),
		Title:        strings.TrimSpace(unquote(fields[ColTitle])),
		Instructors:  unquote(fields[ColInstructors]),
		Subject:      unquote(fields[ColSubject]),

		Year:                  p.integer(ColYear),
		HonorCodeCertificates: p.integer(ColHonorCodeCertificates),
		Participants:          p.integer(ColParticipants),
		Audited:               p.integer(ColAudited),
		Certified:             p.integer(ColCertified),

		AuditedPct:                  p.number(ColAuditedPct),
		CertifiedPct:                p.number(ColCertifiedPct),
		CertifiedOfAuditedPct:       p.number(ColCertifiedOfAuditedPct),
		PlayedVideoPct:              p.number(ColPlayedVideoPct),
		PostedInForumPct:            p.number(ColPostedInForumPct),
		GradeAboveZeroPct:           p.number(ColGradeAboveZeroPct),
		TotalCourseHours:            p.number(ColTotalCourseHours),
		MedianHoursForCertification: p.number(ColMedianHoursForCertification),
		MedianAge:                   p.number(ColMedianAge),
		MalePct:                     p.number(ColMalePct),
		FemalePct:                   p.number(ColFemalePct),
		BachelorOrHigherPct:         p.number(ColBachelorOrHigherPct),
	}
	if p.err != nil {
		return Record{}, p.err
	}

	// A single token means no comma at all.
	r.Independent = !strings.Contains(r.Instructors, ",")

	if catalog != nil {
		catalog.Register(r)
	}
	return r, nil
}

func unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// fieldParser converts typed columns and keeps the first failure so a row
// can be parsed in one expression and checked once.
type fieldParser struct {
	fields []string
	line   int
	err    error
}

func (p *fieldParser) fail(col int, reason string, err error) {
	if p.err != nil {
		return
	}
	p.err = &MalformedRecordError{
		Line:   p.line,
		Column: ColumnNames[col],
		Value:  p.fields[col],
		Reason: reason,
		Err:    err,
	}
}

func (p *fieldParser) integer(col int) int {
	v, err := strconv.Atoi(p.fields[col])
	if err != nil {
		p.fail(col, "invalid integer", err)
		return 0
	}
	return v
}

func (p *fieldParser) number(col int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.fields[col]), 64)
	if err != nil {
		p.fail(col, "invalid number", err)
		return 0
	}
	return v
}

func (p *fieldParser) date(col int) time.Time {
	t, err := time.Parse(LaunchDateLayout, strings.TrimSpace(p.fields[col]))
	if err != nil {
		p.fail(col, "invalid date (want MM/DD/YYYY)", err)
		return time.Time{}
	}
	return t
}
