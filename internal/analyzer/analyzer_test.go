package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/coursestats/internal/course"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/courses.csv"

const header = "Institution,Course Number,Launch Date,Course Title,Instructors,Course Subject,Year," +
	"Honor Code Certificates,Participants (Course Content Accessed),Audited (> 50% Course Content Accessed)," +
	"Certified,% Audited,% Certified,% Certified of > 50% Course Content Accessed,% Played Video," +
	"% Posted in Forum,% Grade Higher Than Zero,Total Course Hours (Thousands),Median Hours for Certification," +
	"Median Age,% Male,% Female,% Bachelor's Degree or Higher"

// row describes the columns the queries read; everything else gets filler.
type row struct {
	inst, num, date, title, instructors, subject string
	participants                                 int
	audited, hours, age, male, degree            float64
}

func (r row) line() string {
	return fmt.Sprintf(`%s,%s,%s,"%s","%s","%s",1,1,%d,10,5,%g,1.5,2.5,80,10,20,%g,50,%g,%g,%g,%g`,
		r.inst, r.num, r.date, r.title, r.instructors, r.subject,
		r.participants, r.audited, r.hours, r.age, r.male, 100-r.male, r.degree)
}

func dataset(rows ...row) []byte {
	lines := []string{header}
	for _, r := range rows {
		lines = append(lines, r.line())
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func fixtureAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return New(NewFileSource(fixturePath, false))
}

func TestParticipantsByInstitution(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.ParticipantsByInstitution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"MITx":     237784,
		"HarvardX": 310651,
	}, got)

	total := 0
	for _, v := range got {
		total += v
	}
	assert.Equal(t, 548435, total, "totals must add up to all participants in the dataset")
}

func TestParticipantsByInstitutionSubject(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.ParticipantsByInstitutionSubject(context.Background())
	require.NoError(t, err)

	want := []KeyCount{
		{Key: "HarvardX-Computer Science", Participants: 169621},
		{Key: "MITx-Computer Science", Participants: 132920},
		{Key: "HarvardX-Humanities, History, Design, Religion, and Education", Participants: 79750},
		{Key: "MITx-Science, Technology, Engineering, and Mathematics", Participants: 65105},
		{Key: "HarvardX-Government, Health, and Social Science", Participants: 61280},
		{Key: "MITx-Government, Health, and Social Science", Participants: 39759},
	}
	assert.Equal(t, want, got)
}

func TestParticipantsByInstitutionSubject_TieBreakByKey(t *testing.T) {
	a := New(NewBytesSource(dataset(
		row{inst: "Zeta", num: "Z1", date: "01/01/2015", title: "Z", instructors: "A", subject: "Math", participants: 100},
		row{inst: "Alpha", num: "A1", date: "01/01/2015", title: "A", instructors: "B", subject: "Math", participants: 100},
		row{inst: "Alpha", num: "A2", date: "01/01/2015", title: "B", instructors: "C", subject: "Art", participants: 50},
		row{inst: "Alpha", num: "A3", date: "01/01/2015", title: "C", instructors: "D", subject: "Art", participants: 50},
		row{inst: "Mid", num: "M1", date: "01/01/2015", title: "M", instructors: "E", subject: "Art", participants: 100},
	)))

	got, err := a.ParticipantsByInstitutionSubject(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []KeyCount{
		{Key: "Alpha-Art", Participants: 100},
		{Key: "Alpha-Math", Participants: 100},
		{Key: "Mid-Art", Participants: 100},
		{Key: "Zeta-Math", Participants: 100},
	}, got)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ordered := prev.Participants > cur.Participants ||
			(prev.Participants == cur.Participants && prev.Key <= cur.Key)
		assert.True(t, ordered, "entries %d and %d out of order", i-1, i)
	}
}

func TestCoursesByInstructor(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.CoursesByInstructor(context.Background())
	require.NoError(t, err)

	csp := "Introduction to Computer Science and Programming"
	cs := "Introduction to Computer Science"
	want := map[string]InstructorCourses{
		"Khurram Afridi":    {Independent: []string{"Circuits and Electronics"}, CoTaught: []string{}},
		"David Malan":       {Independent: []string{}, CoTaught: []string{cs}},
		"Nate Hardison":     {Independent: []string{}, CoTaught: []string{cs}},
		"Rob Bowden":        {Independent: []string{}, CoTaught: []string{cs}},
		"Michael Sandel":    {Independent: []string{"Justice"}, CoTaught: []string{}},
		"Esther Duflo":      {Independent: []string{}, CoTaught: []string{"The Challenges of Global Poverty"}},
		"Eric Grimson":      {Independent: []string{csp}, CoTaught: []string{csp}},
		"John Guttag":       {Independent: []string{}, CoTaught: []string{csp}},
		"Earl Francis Cook": {Independent: []string{}, CoTaught: []string{"Health in Numbers"}},
		"Marcello Pagano":   {Independent: []string{}, CoTaught: []string{"Health in Numbers"}},
	}
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Abhijit Banerjee (MIT Economics)")
}

func TestCoursesByInstructor_SortedAndDeduplicated(t *testing.T) {
	a := New(NewBytesSource(dataset(
		row{inst: "X", num: "1", date: "01/01/2015", title: "Zoology", instructors: "Ann, Bob", subject: "S"},
		row{inst: "X", num: "2", date: "01/01/2015", title: "Algebra", instructors: "Ann", subject: "S"},
		row{inst: "X", num: "2", date: "01/01/2016", title: "Algebra", instructors: "Ann", subject: "S"},
		row{inst: "X", num: "3", date: "01/01/2015", title: "Botany", instructors: "Bob, Ann", subject: "S"},
		row{inst: "X", num: "4", date: "01/01/2015", title: "Chemistry", instructors: "Ann", subject: "S"},
	)))

	got, err := a.CoursesByInstructor(context.Background())
	require.NoError(t, err)

	assert.Equal(t, InstructorCourses{
		Independent: []string{"Algebra", "Chemistry"},
		CoTaught:    []string{"Botany", "Zoology"},
	}, got["Ann"])
	assert.Equal(t, InstructorCourses{
		Independent: []string{},
		CoTaught:    []string{"Botany", "Zoology"},
	}, got["Bob"])
}

func TestCoursesByInstructor_BlankTokens(t *testing.T) {
	a := New(NewBytesSource(dataset(
		row{inst: "X", num: "1", date: "01/01/2015", title: "Solo", instructors: "", subject: "S"},
		row{inst: "X", num: "2", date: "01/01/2015", title: "Pair", instructors: "Ann, ", subject: "S"},
	)))

	got, err := a.CoursesByInstructor(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, InstructorCourses{
		Independent: []string{"Solo"},
		CoTaught:    []string{"Pair"},
	}, got[""])
	assert.Equal(t, InstructorCourses{
		Independent: []string{},
		CoTaught:    []string{"Pair"},
	}, got["Ann"])
}

func TestTopCourses(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		k    int
		by   Metric
		want []string
	}{
		{
			name: "hours top 3",
			k:    3,
			by:   MetricHours,
			want: []string{"Introduction to Computer Science and Programming", "Health in Numbers", "Justice"},
		},
		{
			name: "hours beyond distinct titles",
			k:    10,
			by:   MetricHours,
			want: []string{
				"Introduction to Computer Science and Programming",
				"Health in Numbers",
				"Justice",
				"Introduction to Computer Science",
				"Circuits and Electronics",
				"The Challenges of Global Poverty",
			},
		},
		{
			name: "participants top 5",
			k:    5,
			by:   MetricParticipants,
			want: []string{
				"Introduction to Computer Science",
				"Justice",
				"Introduction to Computer Science and Programming",
				"Health in Numbers",
				"The Challenges of Global Poverty",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.TopCourses(ctx, tt.k, tt.by)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.k)
		})
	}
}

func TestTopCourses_TiesKeepDatasetOrder(t *testing.T) {
	a := New(NewBytesSource(dataset(
		row{inst: "X", num: "1", date: "01/01/2015", title: "Second", instructors: "A", subject: "S", participants: 10},
		row{inst: "X", num: "2", date: "01/01/2015", title: "First", instructors: "A", subject: "S", participants: 10},
		row{inst: "X", num: "3", date: "01/01/2015", title: "Second", instructors: "A", subject: "S", participants: 30},
	)))

	got, err := a.TopCourses(context.Background(), 5, MetricParticipants)
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, got)
}

func TestTopCourses_InvalidArguments(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx := context.Background()

	_, err := a.TopCourses(ctx, 0, MetricHours)
	var argErr *InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "k", argErr.Arg)

	_, err = a.TopCourses(ctx, 3, Metric(42))
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "by", argErr.Arg)
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"hours", MetricHours, false},
		{"participants", MetricParticipants, false},
		{"Hours", 0, true},
		{"", 0, true},
		{"certified", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				var argErr *InvalidArgumentError
				require.ErrorAs(t, err, &argErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestSearchCourses(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		subject    string
		minAudited float64
		maxHours   float64
		want       []string
	}{
		{
			name:       "computer",
			subject:    "computer",
			minAudited: 20,
			maxHours:   1000,
			want:       []string{"Introduction to Computer Science and Programming"},
		},
		{
			name:       "case-insensitive subject",
			subject:    "SCIENCE",
			minAudited: 10,
			maxHours:   1100,
			want: []string{
				"Circuits and Electronics",
				"Health in Numbers",
				"Introduction to Computer Science and Programming",
				"The Challenges of Global Poverty",
			},
		},
		{
			name:       "thresholds are inclusive",
			subject:    "science",
			minAudited: 20.3,
			maxHours:   412.1,
			want:       []string{"The Challenges of Global Poverty"},
		},
		{
			name:       "no match",
			subject:    "astronomy",
			minAudited: 0,
			maxHours:   1e9,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.SearchCourses(ctx, tt.subject, tt.minAudited, tt.maxHours)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.IsIncreasing(t, got)
		})
	}
}

func TestRecommendCourses(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx := context.Background()

	tests := []struct {
		name                  string
		age, gender, bachelor int
		want                  []string
	}{
		{
			name: "young male graduate",
			age:  25, gender: 1, bachelor: 1,
			want: []string{
				"Circuits and Electronics",
				"Introduction to Computer Science",
				"Introduction to Computer Science and Programming",
				"Justice",
				"The Challenges of Global Poverty",
				"Health in Numbers",
			},
		},
		{
			name: "female graduate",
			age:  30, gender: 0, bachelor: 1,
			want: []string{
				"Health in Numbers",
				"The Challenges of Global Poverty",
				"Justice",
				"Introduction to Computer Science",
				"Introduction to Computer Science and Programming",
				"Circuits and Electronics",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.RecommendCourses(ctx, tt.age, tt.gender, tt.bachelor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendCourses_RepresentativeIsMostRecent(t *testing.T) {
	// X averages to age 35 and scores 0 + 2500 + 2500 = 5000.
	// Y scores 15^2 + 2500 + 2500 = 5225.
	a := New(NewBytesSource(dataset(
		row{inst: "I", num: "X", date: "01/01/2015", title: "X Old", instructors: "A", subject: "S", age: 30, male: 50, degree: 50},
		row{inst: "I", num: "Y", date: "06/01/2015", title: "Y Course", instructors: "A", subject: "S", age: 20, male: 50, degree: 50},
		row{inst: "I", num: "X", date: "01/01/2016", title: "X New", instructors: "A", subject: "S", age: 40, male: 50, degree: 50},
	)))

	got, err := a.RecommendCourses(context.Background(), 35, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"X New", "Y Course"}, got)
}

func TestRecommendCourses_TieBreakDedupAndLimit(t *testing.T) {
	var rows []row
	// Twelve identical audiences so every score ties and titles decide.
	for i := 0; i < 12; i++ {
		rows = append(rows, row{
			inst: "I", num: fmt.Sprintf("N%02d", i), date: "01/01/2015",
			title:       fmt.Sprintf("Course %c", 'L'-i),
			instructors: "A", subject: "S", age: 30, male: 50, degree: 50,
		})
	}
	// A different course number sharing a title only appears once.
	rows = append(rows, row{
		inst: "I", num: "DUP", date: "01/01/2015", title: "Course A",
		instructors: "A", subject: "S", age: 30, male: 50, degree: 50,
	})

	a := New(NewBytesSource(dataset(rows...)))
	got, err := a.RecommendCourses(context.Background(), 30, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Course A", "Course B", "Course C", "Course D", "Course E",
		"Course F", "Course G", "Course H", "Course I", "Course J",
	}, got)
	assert.Len(t, got, RecommendLimit)
}

func TestRecommendCourses_InvalidFlags(t *testing.T) {
	a := fixtureAnalyzer(t)

	_, err := a.RecommendCourses(context.Background(), 25, 2, 1)
	var argErr *InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "gender", argErr.Arg)

	_, err = a.RecommendCourses(context.Background(), 25, 1, -1)
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "bachelor", argErr.Arg)
}

func TestQueriesDoNotMutateSharedRecords(t *testing.T) {
	a := New(NewFileSource(fixturePath, true))
	ctx := context.Background()

	before, err := a.Records(ctx)
	require.NoError(t, err)
	order := make([]string, len(before))
	for i, r := range before {
		order[i] = r.CourseNumber + "|" + r.LaunchDate.Format(course.LaunchDateLayout)
	}

	_, err = a.CoursesByInstructor(ctx)
	require.NoError(t, err)
	_, err = a.TopCourses(ctx, 3, MetricHours)
	require.NoError(t, err)
	_, err = a.RecommendCourses(ctx, 25, 1, 1)
	require.NoError(t, err)

	after, err := a.Records(ctx)
	require.NoError(t, err)
	for i, r := range after {
		assert.Equal(t, order[i], r.CourseNumber+"|"+r.LaunchDate.Format(course.LaunchDateLayout))
	}
}

func TestCatalogPersistsAcrossCalls(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx := context.Background()

	_, err := a.ParticipantsByInstitution(ctx)
	require.NoError(t, err)
	numbers, instructors := a.Catalog().Counts()
	assert.Equal(t, 6, numbers)
	assert.Equal(t, 10, instructors)

	_, err = a.SearchCourses(ctx, "", 0, 1e9)
	require.NoError(t, err)
	numbers2, instructors2 := a.Catalog().Counts()
	assert.Equal(t, numbers, numbers2)
	assert.Equal(t, instructors, instructors2)
}

func TestFileSource_MissingFile(t *testing.T) {
	for _, cache := range []bool{false, true} {
		t.Run(fmt.Sprintf("cache=%v", cache), func(t *testing.T) {
			a := New(NewFileSource(filepath.Join(t.TempDir(), "missing.csv"), cache))

			_, err := a.ParticipantsByInstitution(context.Background())
			var fileErr *course.FileAccessError
			require.ErrorAs(t, err, &fileErr)
			assert.True(t, errors.Is(err, os.ErrNotExist))
			assert.Equal(t, "FILE001", MapError(err).Code)
		})
	}
}

func TestFileSource_MalformedRowAbortsQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	data := dataset(row{inst: "I", num: "1", date: "01/01/2015", title: "T", instructors: "A", subject: "S"})
	data = append(data, []byte("I,2,13/45/2015,T2,A,S,1,1,x,1,1,1,1,1,1,1,1,1,1,1,1,1,1\n")...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	a := New(NewFileSource(path, false))
	got, err := a.TopCourses(context.Background(), 3, MetricParticipants)
	assert.Nil(t, got)

	var malformed *course.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 3, malformed.Line)
	assert.Equal(t, "VAL001", MapError(err).Code)
}

func TestFileSource_CacheInvalidatesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	first := dataset(row{inst: "Old", num: "1", date: "01/01/2015", title: "T", instructors: "A", subject: "S", participants: 5})
	require.NoError(t, os.WriteFile(path, first, 0o644))

	src := NewFileSource(path, true)
	a := New(src)
	ctx := context.Background()

	got, err := a.ParticipantsByInstitution(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Old": 5}, got)

	second := dataset(
		row{inst: "New", num: "1", date: "01/01/2015", title: "T", instructors: "A", subject: "S", participants: 7},
		row{inst: "New", num: "2", date: "01/01/2015", title: "U", instructors: "B", subject: "S", participants: 8},
	)
	require.NoError(t, os.WriteFile(path, second, 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	got, err = a.ParticipantsByInstitution(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"New": 15}, got)
}

func TestFileSource_SharedLoadSurvivesCancelledCaller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.csv")
	data := dataset(row{inst: "MITx", num: "1", date: "01/01/2015", title: "T", instructors: "A", subject: "S", participants: 5})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	src := NewFileSource(path, true)
	started := make(chan struct{})
	release := make(chan struct{})
	var loads atomic.Int32
	src.loadFile = func(ctx context.Context, path string, catalog *course.Catalog) ([]course.Record, error) {
		if loads.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return course.LoadFile(ctx, path, catalog)
	}
	a := New(src)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := a.ParticipantsByInstitution(firstCtx)
		firstErr <- err
	}()
	<-started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		counts map[string]int
		err    error
	}
	second := make(chan result, 1)
	go func() {
		got, err := a.ParticipantsByInstitution(context.Background())
		second <- result{got, err}
	}()
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, map[string]int{"MITx": 5}, res.counts)
	assert.Equal(t, int32(1), loads.Load())
}

func TestQueriesHonorCancelledContext(t *testing.T) {
	a := fixtureAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ParticipantsByInstitution(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "REQ001", MapError(err).Code)
}
