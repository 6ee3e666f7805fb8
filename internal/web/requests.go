package web

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
)

// Query parameter structs. The query tag names the parameter in error
// messages; validate carries the HTTP-level bounds.

type topCoursesRequest struct {
	K  int    `query:"k" validate:"min=1,max=10000"`
	By string `query:"by" validate:"oneof=hours participants"`
}

type searchCoursesRequest struct {
	Subject    string  `query:"subject" validate:"max=256"`
	MinAudited float64 `query:"minAudited"`
	MaxHours   float64 `query:"maxHours"`
}

type recommendRequest struct {
	Age      int `query:"age" validate:"min=0,max=150"`
	Gender   int `query:"gender" validate:"oneof=0 1"`
	Bachelor int `query:"bachelor" validate:"oneof=0 1"`
}

type batchesRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("query"); name != "" {
				return name
			}
			return f.Name
		})
	})
	return validate
}

// validateRequest checks req and reports the first failing field as an
// *analyzer.InvalidArgumentError.
func validateRequest(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &analyzer.InvalidArgumentError{
			Arg:    fe.Field(),
			Value:  fe.Value(),
			Reason: describeTag(fe.Tag(), fe.Param()),
		}
	}
	return fmt.Errorf("validate request: %w", err)
}

func describeTag(tag, param string) string {
	switch tag {
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "required":
		return "is required"
	default:
		return "failed " + tag + " check"
	}
}

func parseTopCourses(q url.Values) (topCoursesRequest, error) {
	req := topCoursesRequest{K: 10, By: "hours"}
	if err := queryInt(q, "k", &req.K); err != nil {
		return req, err
	}
	if v := q.Get("by"); v != "" {
		req.By = v
	}
	return req, validateRequest(req)
}

func parseSearchCourses(q url.Values) (searchCoursesRequest, error) {
	req := searchCoursesRequest{
		Subject:    q.Get("subject"),
		MinAudited: 0,
		MaxHours:   math.MaxFloat64,
	}
	if err := queryFloat(q, "minAudited", &req.MinAudited); err != nil {
		return req, err
	}
	if err := queryFloat(q, "maxHours", &req.MaxHours); err != nil {
		return req, err
	}
	return req, validateRequest(req)
}

func parseRecommend(q url.Values) (recommendRequest, error) {
	var req recommendRequest
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"age", &req.Age},
		{"gender", &req.Gender},
		{"bachelor", &req.Bachelor},
	} {
		if q.Get(p.name) == "" {
			return req, &analyzer.InvalidArgumentError{Arg: p.name, Value: "", Reason: "is required"}
		}
		if err := queryInt(q, p.name, p.dst); err != nil {
			return req, err
		}
	}
	return req, validateRequest(req)
}

func parseBatches(q url.Values) (batchesRequest, error) {
	req := batchesRequest{Limit: 20}
	if err := queryInt(q, "limit", &req.Limit); err != nil {
		return req, err
	}
	return req, validateRequest(req)
}

// queryInt sets *dst from the named parameter when present.
func queryInt(q url.Values, name string, dst *int) error {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return &analyzer.InvalidArgumentError{Arg: name, Value: v, Reason: "must be an integer"}
	}
	*dst = i
	return nil
}

// queryFloat sets *dst from the named parameter when present. NaN is
// rejected because it compares false against every threshold.
func queryFloat(q url.Values, name string, dst *float64) error {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return &analyzer.InvalidArgumentError{Arg: name, Value: v, Reason: "must be a number"}
	}
	*dst = f
	return nil
}
