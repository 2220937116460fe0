// Package validation holds the shared input checks the workers run before
// touching any store.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidateUserID checks that a user id is a well-formed UUID. The check runs
// before any store query so malformed ids never reach PostgreSQL.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("userId is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("userId is not a valid UUID: %s", userID)
	}
	return nil
}

// ValidateTimeRange checks the analytics window token, accepting empty as the
// caller's default.
func ValidateTimeRange(timeRange string) error {
	switch timeRange {
	case "", "week", "month", "year", "all":
		return nil
	default:
		return fmt.Errorf("timeRange must be one of week, month, year, all: got %q", timeRange)
	}
}

// ValidatePeriod checks the trend bucket granularity token.
func ValidatePeriod(period string) error {
	switch period {
	case "", "day", "month":
		return nil
	default:
		return fmt.Errorf("period must be day or month: got %q", period)
	}
}

// NormalizePage clamps a page number to at least 1. Zero and negative pages
// read as the first page rather than erroring.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// NormalizeLimit clamps a page size into [1, max], substituting def when the
// caller sent nothing.
func NormalizeLimit(limit, def, max int) int {
	if limit == 0 {
		limit = def
	}
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
