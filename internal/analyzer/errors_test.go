package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/JonMunkholm/coursestats/internal/course"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil", nil, "ERR000"},
		{"invalid argument", &InvalidArgumentError{Arg: "k", Value: 0, Reason: "must be at least 1"}, "ARG001"},
		{"wrapped invalid argument", fmt.Errorf("top courses: %w", &InvalidArgumentError{Arg: "by"}), "ARG001"},
		{"malformed record", &course.MalformedRecordError{Line: 4, Reason: "row has 3 columns, expected 23"}, "VAL001"},
		{"file access", fmt.Errorf("load records: %w", &course.FileAccessError{Path: "x.csv", Err: os.ErrNotExist}), "FILE001"},
		{"cancelled", fmt.Errorf("load: %w", context.Canceled), "REQ001"},
		{"deadline", context.DeadlineExceeded, "REQ002"},
		{"unknown", errors.New("boom"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			assert.Equal(t, tt.wantCode, msg.Code)
			assert.NotEmpty(t, msg.Message)
			assert.NotEmpty(t, msg.Action)
		})
	}
}

func TestMapError_FileAccessHidesPath(t *testing.T) {
	err := &course.FileAccessError{Path: "/secret/location/courses.csv", Err: os.ErrPermission}
	msg := MapError(err)
	assert.NotContains(t, msg.Message, "/secret")
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_argument", errorKind(&InvalidArgumentError{}))
	assert.Equal(t, "malformed_record", errorKind(&course.MalformedRecordError{}))
	assert.Equal(t, "file_access", errorKind(&course.FileAccessError{Err: os.ErrNotExist}))
	assert.Equal(t, "other", errorKind(errors.New("x")))
}
