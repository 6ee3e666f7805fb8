package analyzer

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/JonMunkholm/coursestats/internal/course"
)

// RecommendLimit is the maximum number of titles RecommendCourses returns.
const RecommendLimit = 10

// KeyCount is one "institution-subject" participant total.
type KeyCount struct {
	Key          string `json:"key"`
	Participants int    `json:"participants"`
}

// InstructorCourses lists the titles an instructor teaches alone and with
// others. Both lists are sorted by title and free of duplicates.
type InstructorCourses struct {
	Independent []string `json:"independent"`
	CoTaught    []string `json:"coTaught"`
}

// ParticipantsByInstitution sums participants per institution.
func (a *Analyzer) ParticipantsByInstitution(ctx context.Context) (map[string]int, error) {
	return run(ctx, a, "participants_by_institution", func(records []course.Record) (map[string]int, error) {
		counts := make(map[string]int)
		for _, r := range records {
			counts[r.Institution] += r.Participants
		}
		return counts, nil
	})
}

// ParticipantsByInstitutionSubject sums participants per "institution-subject"
// key, ordered by total descending and then by key ascending.
func (a *Analyzer) ParticipantsByInstitutionSubject(ctx context.Context) ([]KeyCount, error) {
	return run(ctx, a, "participants_by_institution_subject", func(records []course.Record) ([]KeyCount, error) {
		sums := make(map[string]int)
		for _, r := range records {
			sums[r.Institution+"-"+r.Subject] += r.Participants
		}

		out := make([]KeyCount, 0, len(sums))
		for k, v := range sums {
			out = append(out, KeyCount{Key: k, Participants: v})
		}
		slices.SortFunc(out, func(x, y KeyCount) int {
			if c := cmp.Compare(y.Participants, x.Participants); c != 0 {
				return c
			}
			return strings.Compare(x.Key, y.Key)
		})
		return out, nil
	})
}

// CoursesByInstructor lists, for every registered instructor, the titles of
// independent and co-taught courses they appear in.
func (a *Analyzer) CoursesByInstructor(ctx context.Context) (map[string]InstructorCourses, error) {
	return run(ctx, a, "courses_by_instructor", func(records []course.Record) (map[string]InstructorCourses, error) {
		byTitle := slices.Clone(records)
		slices.SortStableFunc(byTitle, func(x, y course.Record) int {
			return strings.Compare(x.Title, y.Title)
		})

		names := a.catalog.Instructors()
		out := make(map[string]InstructorCourses, len(names))
		for _, name := range names {
			out[name] = InstructorCourses{Independent: []string{}, CoTaught: []string{}}
		}

		for _, r := range byTitle {
			seen := make(map[string]struct{})
			for _, tok := range course.InstructorTokens(r.Instructors) {
				if _, dup := seen[tok]; dup {
					continue
				}
				seen[tok] = struct{}{}

				ic, ok := out[tok]
				if !ok {
					continue
				}
				if r.Independent {
					ic.Independent = appendIfNew(ic.Independent, r.Title)
				} else {
					ic.CoTaught = appendIfNew(ic.CoTaught, r.Title)
				}
				out[tok] = ic
			}
		}
		return out, nil
	})
}

// TopCourses returns the first k distinct titles ranked by metric, highest
// first. Records with equal values keep their dataset order.
func (a *Analyzer) TopCourses(ctx context.Context, k int, by Metric) ([]string, error) {
	if k < 1 {
		return nil, &InvalidArgumentError{Arg: "k", Value: k, Reason: "must be at least 1"}
	}
	if _, ok := by.value(course.Record{}); !ok {
		return nil, &InvalidArgumentError{Arg: "by", Value: by, Reason: "must be one of: hours, participants"}
	}

	return run(ctx, a, "top_courses", func(records []course.Record) ([]string, error) {
		ranked := slices.Clone(records)
		slices.SortStableFunc(ranked, func(x, y course.Record) int {
			xv, _ := by.value(x)
			yv, _ := by.value(y)
			return cmp.Compare(yv, xv)
		})

		titles := make([]string, len(ranked))
		for i, r := range ranked {
			titles[i] = r.Title
		}
		return distinct(titles, k), nil
	})
}

// SearchCourses returns the sorted distinct titles whose subject contains
// subject (case-insensitive), with an audited percentage of at least
// minAudited and at most maxHours total course hours.
func (a *Analyzer) SearchCourses(ctx context.Context, subject string, minAudited, maxHours float64) ([]string, error) {
	return run(ctx, a, "search_courses", func(records []course.Record) ([]string, error) {
		needle := strings.ToLower(subject)

		titles := []string{}
		for _, r := range records {
			if !strings.Contains(strings.ToLower(r.Subject), needle) {
				continue
			}
			if r.AuditedPct < minAudited || r.TotalCourseHours > maxHours {
				continue
			}
			titles = append(titles, r.Title)
		}
		slices.Sort(titles)
		return slices.Compact(titles), nil
	})
}

// scoredCourse is the recommendation view of one course number: the most
// recently launched offering plus demographic means over all offerings.
type scoredCourse struct {
	title      string
	meanAge    float64
	meanMale   float64
	meanDegree float64
	similarity float64
}

// RecommendCourses ranks courses by how closely their audience matches the
// given age, gender (1 = male) and degree (1 = bachelor or higher) and
// returns at most RecommendLimit distinct titles, closest first.
func (a *Analyzer) RecommendCourses(ctx context.Context, age, gender, bachelor int) ([]string, error) {
	if gender != 0 && gender != 1 {
		return nil, &InvalidArgumentError{Arg: "gender", Value: gender, Reason: "must be 0 or 1"}
	}
	if bachelor != 0 && bachelor != 1 {
		return nil, &InvalidArgumentError{Arg: "bachelor", Value: bachelor, Reason: "must be 0 or 1"}
	}

	return run(ctx, a, "recommend_courses", func(records []course.Record) ([]string, error) {
		scored := scoreCourses(groupByCourseNumber(records), float64(age), float64(gender*100), float64(bachelor*100))

		slices.SortFunc(scored, func(x, y scoredCourse) int {
			if c := cmp.Compare(x.similarity, y.similarity); c != 0 {
				return c
			}
			return strings.Compare(x.title, y.title)
		})

		titles := make([]string, len(scored))
		for i, s := range scored {
			titles[i] = s.title
		}
		return distinct(titles, RecommendLimit), nil
	})
}

// groupByCourseNumber buckets records by course number, keeping dataset
// order inside each bucket.
func groupByCourseNumber(records []course.Record) map[string][]course.Record {
	groups := make(map[string][]course.Record)
	for _, r := range records {
		groups[r.CourseNumber] = append(groups[r.CourseNumber], r)
	}
	return groups
}

func scoreCourses(groups map[string][]course.Record, age, male, degree float64) []scoredCourse {
	scored := make([]scoredCourse, 0, len(groups))
	for _, members := range groups {
		slices.SortStableFunc(members, func(x, y course.Record) int {
			return y.LaunchDate.Compare(x.LaunchDate)
		})

		var sumAge, sumMale, sumDegree float64
		for _, m := range members {
			sumAge += m.MedianAge
			sumMale += m.MalePct
			sumDegree += m.BachelorOrHigherPct
		}
		n := float64(len(members))
		s := scoredCourse{
			title:      members[0].Title,
			meanAge:    sumAge / n,
			meanMale:   sumMale / n,
			meanDegree: sumDegree / n,
		}
		s.similarity = square(age-s.meanAge) + square(male-s.meanMale) + square(degree-s.meanDegree)
		scored = append(scored, s)
	}
	return scored
}

func square(x float64) float64 { return x * x }

// distinct returns the first occurrence of each title in order, stopping
// after limit titles. limit <= 0 means no limit.
func distinct(titles []string, limit int) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if limit > 0 && len(out) == limit {
			break
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// appendIfNew appends title unless it is already the last element. Callers
// feed titles in sorted order, so equal titles are adjacent.
func appendIfNew(titles []string, title string) []string {
	if n := len(titles); n > 0 && titles[n-1] == title {
		return titles
	}
	return append(titles, title)
}
