// Package templates holds the HTML components served by the web package.
// The *_templ.go files are generated from the .templ sources with templ generate.
package templates

import (
	"strconv"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
)

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	CourseNumbers int
	Instructors   int
	Institutions  []analyzer.KeyCount
	Subjects      []analyzer.KeyCount
	TopMetric     string
	TopCourses    []string
}

func (d DashboardData) summary() string {
	return strconv.Itoa(d.CourseNumbers) + " course numbers, " + strconv.Itoa(d.Instructors) + " instructors"
}
