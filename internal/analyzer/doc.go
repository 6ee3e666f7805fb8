// Package analyzer answers the fixed set of course dataset reports.
//
// Every query pulls the full record set from a [Source] on each call and
// computes its result without mutating the records:
//
//   - [Analyzer.ParticipantsByInstitution]: participant totals per institution
//   - [Analyzer.ParticipantsByInstitutionSubject]: totals per "institution-subject",
//     ordered by total descending then key ascending
//   - [Analyzer.CoursesByInstructor]: independent and co-taught titles per instructor
//   - [Analyzer.TopCourses]: first k distinct titles ranked by hours or participants
//   - [Analyzer.SearchCourses]: titles matching a subject substring and two thresholds
//   - [Analyzer.RecommendCourses]: ten titles closest to a demographic profile
//
// Deduplication always keeps the first occurrence after the query's sort, so
// a title that appears several times is reported at its best-ranked position.
//
// # Error Handling
//
// Dataset failures surface as *course.FileAccessError or
// *course.MalformedRecordError; bad query parameters as *InvalidArgumentError.
// [MapError] turns any of them into a [UserMessage] with a support code.
package analyzer
