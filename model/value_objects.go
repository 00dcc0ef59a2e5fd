// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateRange represents a date range value object.
type DateRange struct {
	from time.Time
	to   time.Time
}

// NewDateRange creates a new date range value object.
func NewDateRange(fromStr, toStr string) (*DateRange, error) {
	var fromTime, toTime time.Time
	var err error

	// Process from parameter
	if fromStr != "" {
		fromTime, err = parseDateTime(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
	} else {
		// Set default value
		defaultFrom, _ := getDefaultDateRange()
		fromTime = defaultFrom
	}

	// Process to parameter
	if toStr != "" {
		toTime, err = parseDateTime(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
	} else {
		// Set default value
		_, defaultTo := getDefaultDateRange()
		toTime = defaultTo
	}

	// Normalize from time to beginning of day (00:00:00)
	fromTime = normalizeToBeginOfDay(fromTime)
	// Normalize to time to end of day (23:59:59.999999999)
	toTime = normalizeToEndOfDay(toTime)

	return &DateRange{from: fromTime, to: toTime}, nil
}

// From returns the start date.
func (d *DateRange) From() time.Time {
	return d.from
}

// To returns the end date.
func (d *DateRange) To() time.Time {
	return d.to
}

// getDefaultDateRange calculates the default date range for the latest week + 52 weeks.
func getDefaultDateRange() (time.Time, time.Time) {
	now := time.Now()
	weekday := int(now.Weekday())
	latestWeekStart := now.AddDate(0, 0, -weekday)
	defaultFrom := latestWeekStart.AddDate(0, 0, -52*7)
	return defaultFrom, now
}

// normalizeToBeginOfDay normalizes time to beginning of day (00:00:00).
func normalizeToBeginOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// normalizeToEndOfDay normalizes time to end of day (23:59:59.999999999).
func normalizeToEndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// parseDateTime parses date string with flexible format support.
func parseDateTime(dateStr string) (time.Time, error) {
	// Try RFC3339 format first (with time)
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, nil
	}

	// Try date-only format (YYYY-MM-DD)
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date")
}

// SortOrder represents a list sort order value object.
type SortOrder struct {
	desc bool
}

// NewSortOrder creates a sort order from a query string value.
// Accepted values are "asc" and "desc"; empty defaults to descending
// (newest first), matching the list views.
func NewSortOrder(s string) (*SortOrder, error) {
	switch strings.ToLower(s) {
	case "", "desc":
		return &SortOrder{desc: true}, nil
	case "asc":
		return &SortOrder{desc: false}, nil
	default:
		return nil, fmt.Errorf("invalid sort parameter: must be asc or desc")
	}
}

// IsDesc reports whether the order is descending.
func (o *SortOrder) IsDesc() bool {
	return o.desc
}

// ProjectFilter represents an optional project filter value object.
// An empty or "all" value means no filtering.
type ProjectFilter struct {
	id *uuid.UUID
}

// NewProjectFilter creates a project filter from a query string value.
func NewProjectFilter(s string) (*ProjectFilter, error) {
	if s == "" || s == "all" {
		return &ProjectFilter{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}
	return &ProjectFilter{id: &id}, nil
}

// ID returns the filtered project ID, or nil when unfiltered.
func (f *ProjectFilter) ID() *uuid.UUID {
	return f.id
}

// AllProjects returns the filter that selects every project.
func AllProjects() ProjectFilter {
	return ProjectFilter{}
}

// FilterByProject returns the filter that selects one project.
func FilterByProject(id uuid.UUID) ProjectFilter {
	return ProjectFilter{id: &id}
}

// IsAll reports whether the filter selects all projects.
func (f *ProjectFilter) IsAll() bool {
	return f.id == nil
}

// Key returns a stable string form usable as a cache key.
func (f *ProjectFilter) Key() string {
	if f.id == nil {
		return "all"
	}
	return f.id.String()
}
