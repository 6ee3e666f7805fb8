// Package course parses the online course dataset into typed records.
//
// The dataset is a comma-separated file with a single header row followed by
// one row per course offering. Free-text columns (title, instructors, subject)
// may be wrapped in double quotes and contain literal commas; quotes are never
// escaped inside a quoted segment.
//
// # Parsing
//
// [ParseLine] converts one raw line into a [Record]. Any field that fails to
// parse rejects the whole row with a [*MalformedRecordError]; [Load] stops at
// the first rejected row, so a dataset is either loaded completely or not at
// all.
//
// # Catalog
//
// Parsing registers every course number and every unaffiliated instructor
// name into a [Catalog]. Instructor tokens carrying a parenthetical
// affiliation, e.g. "Jane Doe (Guest)", are not registered as instructors but
// still count toward whether a course has a single instructor of record.
package course
