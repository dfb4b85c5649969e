package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxBrandNameLength bounds the brand name of an audit request
const MaxBrandNameLength = 200

// ErrValidation matches every *ValidationError with errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports an invalid audit request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for validation errors
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks an audit request before any platform is queried
func (r AuditRequest) Validate() error {
	name := strings.TrimSpace(r.BrandName)
	if name == "" {
		return &ValidationError{Field: "brand_name", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(name) > MaxBrandNameLength {
		return &ValidationError{Field: "brand_name", Message: fmt.Sprintf("must be at most %d characters", MaxBrandNameLength)}
	}

	if r.URL != "" {
		u, err := url.Parse(r.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
		}
	}

	for i, fact := range r.Facts {
		if strings.TrimSpace(fact.Key) == "" || strings.TrimSpace(fact.Value) == "" {
			return &ValidationError{Field: fmt.Sprintf("facts[%d]", i), Message: "key and value are required"}
		}
	}

	return nil
}
