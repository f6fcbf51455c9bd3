package services

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"clementus360/focusflow/types"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxSessionLabel      = 50
	maxSessionSeconds    = 24 * 60 * 60
)

type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() *types.AppError {
	if len(f) == 0 {
		return nil
	}
	return types.ValidationError(f)
}

func validateTitle(errs fieldErrors, title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		errs.add("title", "Title is required")
	case utf8.RuneCountInString(title) > maxTitleLength:
		errs.add("title", "Title must be at most 200 characters")
	}
	return title
}

func validateDescription(errs fieldErrors, description string) string {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		errs.add("description", "Description must be at most 2000 characters")
	}
	return description
}

func validateEnum(errs fieldErrors, field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		errs.add(field, field+" must be one of: "+strings.Join(allowed, ", "))
	}
}

// ParseDueDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates (UTC midnight).
func ParseDueDate(value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

func validateDueDate(errs fieldErrors, value string) *time.Time {
	due, ok := ParseDueDate(value)
	if !ok {
		errs.add("dueDate", "Due date must be a date (YYYY-MM-DD) or RFC3339 timestamp")
	}
	return due
}

func validateSessionType(errs fieldErrors, t string) string {
	t = strings.TrimSpace(t)
	switch {
	case t == "":
		errs.add("type", "Session type is required")
	case utf8.RuneCountInString(t) > maxSessionLabel:
		errs.add("type", "Session type must be at most 50 characters")
	}
	return t
}

func validateDuration(errs fieldErrors, seconds int) {
	if seconds <= 0 || seconds > maxSessionSeconds {
		errs.add("duration", "Duration must be between 1 second and 24 hours")
	}
}
