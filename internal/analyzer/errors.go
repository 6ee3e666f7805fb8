package analyzer

// errors.go defines query argument errors and maps every error a query can
// return to a user-facing message with a support code.
//
// Codes:
//
//	FILE001 - Dataset unavailable: the dataset file is missing or unreadable
//	          Action: Check DATASET_PATH and file permissions
//	VAL001  - Malformed record: a dataset row failed to parse
//	          Action: Fix the reported line and column in the dataset
//	ARG001  - Invalid argument: a query parameter is out of range
//	          Action: Correct the parameter and retry
//	REQ001  - Request cancelled
//	REQ002  - Request timeout
//	ERR000  - Unknown error: check server logs for the technical error

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/coursestats/internal/course"
)

// InvalidArgumentError reports a query parameter outside its allowed values.
type InvalidArgumentError struct {
	Arg    string
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v: %s", e.Arg, e.Value, e.Reason)
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a query error into a UserMessage. The first matching
// error kind wins; unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return defaultMessage
	}

	var (
		argErr       *InvalidArgumentError
		malformedErr *course.MalformedRecordError
		fileErr      *course.FileAccessError
	)
	switch {
	case errors.As(err, &argErr):
		return UserMessage{
			Message: argErr.Error(),
			Action:  "Correct the parameter and retry",
			Code:    "ARG001",
		}
	case errors.As(err, &malformedErr):
		return UserMessage{
			Message: malformedErr.Error(),
			Action:  "Fix the reported line and column in the dataset",
			Code:    "VAL001",
		}
	case errors.As(err, &fileErr):
		return UserMessage{
			Message: "Course dataset is unavailable",
			Action:  "Check DATASET_PATH and file permissions",
			Code:    "FILE001",
		}
	case errors.Is(err, context.Canceled):
		return UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		}
	}
	return defaultMessage
}
