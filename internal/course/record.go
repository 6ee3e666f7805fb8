package course

import (
	"strconv"
	"strings"
	"time"
)

// LaunchDateLayout is the layout of the launch date column (MM/DD/YYYY).
// Single-digit months and days are accepted as well.
const LaunchDateLayout = "1/2/2006"

// Column positions in a dataset row.
const (
	ColInstitution = iota
	ColCourseNumber
	ColLaunchDate
	ColTitle
	ColInstructors
	ColSubject
	ColYear
	ColHonorCodeCertificates
	ColParticipants
	ColAudited
	ColCertified
	ColAuditedPct
	ColCertifiedPct
	ColCertifiedOfAuditedPct
	ColPlayedVideoPct
	ColPostedInForumPct
	ColGradeAboveZeroPct
	ColTotalCourseHours
	ColMedianHoursForCertification
	ColMedianAge
	ColMalePct
	ColFemalePct
	ColBachelorOrHigherPct

	NumColumns
)

// ColumnNames holds the header name of every column, indexed by position.
var ColumnNames = [NumColumns]string{
	"Institution",
	"Course Number",
	"Launch Date",
	"Course Title",
	"Instructors",
	"Course Subject",
	"Year",
	"Honor Code Certificates",
	"Participants (Course Content Accessed)",
	"Audited (> 50% Course Content Accessed)",
	"Certified",
	"% Audited",
	"% Certified",
	"% Certified of > 50% Course Content Accessed",
	"% Played Video",
	"% Posted in Forum",
	"% Grade Higher Than Zero",
	"Total Course Hours (Thousands)",
	"Median Hours for Certification",
	"Median Age",
	"% Male",
	"% Female",
	"% Bachelor's Degree or Higher",
}

// Record is one course offering. Percentages keep the 0-100 scale of the
// source file.
type Record struct {
	Institution  string
	CourseNumber string
	LaunchDate   time.Time
	Title        string
	Instructors  string // Raw comma-separated list, quotes removed
	Subject      string

	Year                  int
	HonorCodeCertificates int
	Participants          int
	Audited               int
	Certified             int

	AuditedPct                  float64
	CertifiedPct                float64
	CertifiedOfAuditedPct       float64
	PlayedVideoPct              float64
	PostedInForumPct            float64
	GradeAboveZeroPct           float64
	TotalCourseHours            float64
	MedianHoursForCertification float64
	MedianAge                   float64
	MalePct                     float64
	FemalePct                   float64
	BachelorOrHigherPct         float64

	// Independent is true when the course has a single instructor of record.
	Independent bool
}

// InstructorTokens splits a raw instructors field on commas and trims each
// token. Empty tokens are kept, so "Ann, " yields "Ann" and "".
func InstructorTokens(raw string) []string {
	parts := splitInstructors(raw)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// splitInstructors splits on commas and drops trailing empty fields. A field
// with no comma is always a single token, even when empty.
func splitInstructors(raw string) []string {
	parts := strings.Split(raw, ",")
	if len(parts) == 1 {
		return parts
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// isAffiliation reports whether an instructor token is an affiliation
// annotation rather than a plain instructor name.
func isAffiliation(token string) bool {
	return strings.Contains(token, "(")
}

// Fields returns the record as dataset columns in file order. Free-text
// columns containing a comma are wrapped in double quotes so the result
// parses back into an equal Record.
func (r Record) Fields() []string {
	f := make([]string, NumColumns)
	f[ColInstitution] = r.Institution
	f[ColCourseNumber] = r.CourseNumber
	f[ColLaunchDate] = r.LaunchDate.Format("01/02/2006")
	f[ColTitle] = quoteIfNeeded(r.Title)
	f[ColInstructors] = quoteIfNeeded(r.Instructors)
	f[ColSubject] = quoteIfNeeded(r.Subject)
	f[ColYear] = strconv.Itoa(r.Year)
	f[ColHonorCodeCertificates] = strconv.Itoa(r.HonorCodeCertificates)
	f[ColParticipants] = strconv.Itoa(r.Participants)
	f[ColAudited] = strconv.Itoa(r.Audited)
	f[ColCertified] = strconv.Itoa(r.Certified)
	f[ColAuditedPct] = formatFloat(r.AuditedPct)
	f[ColCertifiedPct] = formatFloat(r.CertifiedPct)
	f[ColCertifiedOfAuditedPct] = formatFloat(r.CertifiedOfAuditedPct)
	f[ColPlayedVideoPct] = formatFloat(r.PlayedVideoPct)
	f[ColPostedInForumPct] = formatFloat(r.PostedInForumPct)
	f[ColGradeAboveZeroPct] = formatFloat(r.GradeAboveZeroPct)
	f[ColTotalCourseHours] = formatFloat(r.TotalCourseHours)
	f[ColMedianHoursForCertification] = formatFloat(r.MedianHoursForCertification)
	f[ColMedianAge] = formatFloat(r.MedianAge)
	f[ColMalePct] = formatFloat(r.MalePct)
	f[ColFemalePct] = formatFloat(r.FemalePct)
	f[ColBachelorOrHigherPct] = formatFloat(r.BachelorOrHigherPct)
	return f
}

// Line joins Fields into a dataset line.
func (r Record) Line() string {
	return strings.Join(r.Fields(), ",")
}

func quoteIfNeeded(s string) string {
	if strings.Contains(s, ",") {
		return `"` + s + `"`
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
