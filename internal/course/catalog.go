package course

import (
	"sort"
	"strings"
	"sync"
)

// Catalog accumulates the distinct course numbers and instructor names seen
// while parsing. It is safe for concurrent use; parsing the same dataset
// again leaves it unchanged.
type Catalog struct {
	mu            sync.RWMutex
	courseNumbers map[string]struct{}
	instructors   map[string]struct{}
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		courseNumbers: make(map[string]struct{}),
		instructors:   make(map[string]struct{}),
	}
}

// Register adds the record's course number and every instructor token that
// is not an affiliation annotation. Blank tokens register as "".
func (c *Catalog) Register(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.courseNumbers[r.CourseNumber] = struct{}{}
	for _, tok := range splitInstructors(r.Instructors) {
		if isAffiliation(tok) {
			continue
		}
		c.instructors[strings.TrimSpace(tok)] = struct{}{}
	}
}

// Instructors returns the registered instructor names, sorted.
func (c *Catalog) Instructors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.instructors)
}

// CourseNumbers returns the registered course numbers, sorted.
func (c *Catalog) CourseNumbers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.courseNumbers)
}

// Counts returns the number of distinct course numbers and instructors.
func (c *Catalog) Counts() (courseNumbers, instructors int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.courseNumbers), len(c.instructors)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
