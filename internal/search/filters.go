// Package search builds validated query filters for user collection
// endpoints. All supplied criteria are conjunctive: a record must match
// every filter to be returned.
package search

import (
	"errors"
	"time"

	"github.com/accountd/accountd/internal/model"
)

// Validation errors returned by Build
var (
	ErrInvalidDateFormat = errors.New("dates must be valid calendar dates in YYYY-MM-DD format")
	ErrInvalidDateRange  = errors.New("start_date must not be after end_date")
	ErrInvalidRole       = errors.New("unknown role filter")
)

const dateLayout = "2006-01-02"

// Params are the raw, untrusted query parameters of a search request.
// Empty strings mean "filter not supplied".
type Params struct {
	Nickname  string
	Email     string
	Role      string
	StartDate string
	EndDate   string
}

// Filter is a validated, normalized set of search criteria ready for the
// repository layer.
type Filter struct {
	Nickname string
	Email    string
	Role     model.Role

	// Creation-date window. CreatedBefore is exclusive: it points at the
	// start of the day after the requested end date, so the range is
	// inclusive of both calendar days.
	HasDateRange  bool
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// IsZero reports whether no criteria were supplied at all.
func (f Filter) IsZero() bool {
	return f.Nickname == "" && f.Email == "" && f.Role == "" && !f.HasDateRange
}

// Build validates raw parameters and produces a Filter.
//
// Date bounds must be supplied together. Parsing uses strict calendar
// validation: "2025-14-32" is rejected even though it matches the pattern.
func Build(p Params) (Filter, error) {
	f := Filter{
		Nickname: p.Nickname,
		Email:    p.Email,
	}

	if p.Role != "" {
		role, err := model.ParseRole(p.Role)
		if err != nil {
			return Filter{}, ErrInvalidRole
		}
		f.Role = role
	}

	if p.StartDate == "" && p.EndDate == "" {
		return f, nil
	}
	// Both bounds or neither.
	if p.StartDate == "" || p.EndDate == "" {
		return Filter{}, ErrInvalidDateFormat
	}

	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return Filter{}, ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return Filter{}, ErrInvalidDateFormat
	}
	if start.After(end) {
		return Filter{}, ErrInvalidDateRange
	}

	f.HasDateRange = true
	f.CreatedAfter = start
	f.CreatedBefore = end.AddDate(0, 0, 1)
	return f, nil
}
