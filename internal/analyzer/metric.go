package analyzer

import "github.com/JonMunkholm/coursestats/internal/course"

// Metric selects the ranking value for TopCourses.
type Metric int

const (
	MetricHours Metric = iota + 1
	MetricParticipants
)

// ParseMetric converts "hours" or "participants" to a Metric. Matching is
// exact; anything else is an *InvalidArgumentError.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "hours":
		return MetricHours, nil
	case "participants":
		return MetricParticipants, nil
	default:
		return 0, &InvalidArgumentError{Arg: "by", Value: s, Reason: "must be one of: hours, participants"}
	}
}

func (m Metric) String() string {
	switch m {
	case MetricHours:
		return "hours"
	case MetricParticipants:
		return "participants"
	default:
		return "unknown"
	}
}

// value returns the record's ranking value, or false for an unknown metric.
func (m Metric) value(r course.Record) (float64, bool) {
	switch m {
	case MetricHours:
		return r.TotalCourseHours, true
	case MetricParticipants:
		return float64(r.Participants), true
	default:
		return 0, false
	}
}
