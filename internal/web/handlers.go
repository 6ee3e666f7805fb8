package web

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/logging"
	"github.com/JonMunkholm/coursestats/internal/store"
	"github.com/JonMunkholm/coursestats/internal/web/templates"
)

type countsResponse[T any] struct {
	Counts T `json:"counts"`
}

type instructorsResponse struct {
	Instructors map[string]analyzer.InstructorCourses `json:"instructors"`
}

type titlesResponse struct {
	Titles []string `json:"titles"`
}

type catalogResponse struct {
	CourseNumbers int `json:"courseNumbers"`
	Instructors   int `json:"instructors"`
}

type batchesResponse struct {
	Batches []store.ArchiveResult `json:"batches"`
}

// ----------------------------------------------------------------------------
// Reports
// ----------------------------------------------------------------------------

func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	counts, err := s.analyzer.ParticipantsByInstitution(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countsResponse[map[string]int]{Counts: counts})
}

func (s *Server) handleInstitutionSubjects(w http.ResponseWriter, r *http.Request) {
	counts, err := s.analyzer.ParticipantsByInstitutionSubject(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countsResponse[[]analyzer.KeyCount]{Counts: counts})
}

func (s *Server) handleInstructors(w http.ResponseWriter, r *http.Request) {
	courses, err := s.analyzer.CoursesByInstructor(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructorsResponse{Instructors: courses})
}

func (s *Server) handleTopCourses(w http.ResponseWriter, r *http.Request) {
	req, err := parseTopCourses(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	by, err := analyzer.ParseMetric(req.By)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	titles, err := s.analyzer.TopCourses(r.Context(), req.K, by)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titlesResponse{Titles: titles})
}

func (s *Server) handleSearchCourses(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchCourses(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	titles, err := s.analyzer.SearchCourses(r.Context(), req.Subject, req.MinAudited, req.MaxHours)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titlesResponse{Titles: titles})
}

func (s *Server) handleRecommendCourses(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommend(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	titles, err := s.analyzer.RecommendCourses(r.Context(), req.Age, req.Gender, req.Bachelor)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titlesResponse{Titles: titles})
}

// handleCatalog loads the dataset first so the counts cover at least the
// current file.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if _, err := s.analyzer.Records(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	numbers, instructors := s.analyzer.Catalog().Counts()
	writeJSON(w, http.StatusOK, catalogResponse{CourseNumbers: numbers, Instructors: instructors})
}

// ----------------------------------------------------------------------------
// Archive
// ----------------------------------------------------------------------------

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if s.archiver == nil {
		respondMessage(w, r, errArchiveDisabled, statusFor(errArchiveDisabled.Code))
		return
	}

	records, err := s.analyzer.Records(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.archiver.Archive(r.Context(), records)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "batch_id", result.BatchID).Info("archive created", "rows", result.Rows)
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	if s.archiver == nil {
		respondMessage(w, r, errArchiveDisabled, statusFor(errArchiveDisabled.Code))
		return
	}

	req, err := parseBatches(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	batches, err := s.archiver.Batches(r.Context(), req.Limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchesResponse{Batches: batches})
}

// ----------------------------------------------------------------------------
// Pages
// ----------------------------------------------------------------------------

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byInstitution, err := s.analyzer.ParticipantsByInstitution(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	subjects, err := s.analyzer.ParticipantsByInstitutionSubject(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	by, err := analyzer.ParseMetric(s.cfg.Report.TopBy)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	top, err := s.analyzer.TopCourses(ctx, s.cfg.Report.TopK, by)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	numbers, instructors := s.analyzer.Catalog().Counts()
	data := templates.DashboardData{
		CourseNumbers: numbers,
		Instructors:   instructors,
		Institutions:  sortedCounts(byInstitution),
		Subjects:      subjects,
		TopMetric:     by.String(),
		TopCourses:    top,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render dashboard", "error", err)
	}
}

// sortedCounts orders a count map by participants descending, then name.
func sortedCounts(m map[string]int) []analyzer.KeyCount {
	out := make([]analyzer.KeyCount, 0, len(m))
	for k, v := range m {
		out = append(out, analyzer.KeyCount{Key: k, Participants: v})
	}
	slices.SortFunc(out, func(a, b analyzer.KeyCount) int {
		if c := cmp.Compare(b.Participants, a.Participants); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
