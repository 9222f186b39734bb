package search

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/model"
)

func TestBuildFieldFilters(t *testing.T) {
	f, err := Build(Params{Nickname: "otter", Email: "otter@example.com", Role: "manager"})
	require.NoError(t, err)

	assert.Equal(t, "otter", f.Nickname)
	assert.Equal(t, "otter@example.com", f.Email)
	assert.Equal(t, model.RoleManager, f.Role)
	assert.False(t, f.HasDateRange)
}

func TestBuildEmptyParams(t *testing.T) {
	f, err := Build(Params{})
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestBuildInvalidRole(t *testing.T) {
	_, err := Build(Params{Role: "SUPERUSER"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestBuildDateRange(t *testing.T) {
	f, err := Build(Params{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	require.NoError(t, err)

	require.True(t, f.HasDateRange)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), f.CreatedAfter)
	// End bound is exclusive and points at the next day, so records created
	// any time on the end date still match.
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), f.CreatedBefore)
}

func TestBuildSingleDayRange(t *testing.T) {
	f, err := Build(Params{StartDate: "2025-06-15", EndDate: "2025-06-15"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), f.CreatedBefore)
}

func TestBuildDateErrors(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{"start only", Params{StartDate: "2025-01-01"}, ErrInvalidDateFormat},
		{"end only", Params{EndDate: "2025-01-31"}, ErrInvalidDateFormat},
		{"bad month", Params{StartDate: "2025-14-01", EndDate: "2025-14-28"}, ErrInvalidDateFormat},
		{"bad day", Params{StartDate: "2025-02-30", EndDate: "2025-03-01"}, ErrInvalidDateFormat},
		{"wrong layout", Params{StartDate: "01/02/2025", EndDate: "01/03/2025"}, ErrInvalidDateFormat},
		{"not a date", Params{StartDate: "yesterday", EndDate: "today"}, ErrInvalidDateFormat},
		{"inverted range", Params{StartDate: "2025-03-01", EndDate: "2025-02-01"}, ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.params)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}
