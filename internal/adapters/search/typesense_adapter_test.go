package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
)

func TestBuildFilterBy(t *testing.T) {
	minority := true
	minRating := 4.0

	tests := []struct {
		name     string
		params   repositories.SearchParams
		expected string
	}{
		{
			name:     "empty params produce no filter",
			params:   repositories.SearchParams{},
			expected: "",
		},
		{
			name: "statuses only",
			params: repositories.SearchParams{
				Statuses: []entities.BusinessStatus{entities.BusinessStatusVerified, entities.BusinessStatusPendingReview},
			},
			expected: "status:=[VERIFIED,PENDING_REVIEW]",
		},
		{
			name: "all filters combined",
			params: repositories.SearchParams{
				Statuses:      []entities.BusinessStatus{entities.BusinessStatusVerified},
				Categories:    []string{"Restaurant"},
				City:          "Atlanta",
				MinorityOwned: &minority,
				MinRating:     &minRating,
			},
			expected: "status:=[VERIFIED] && categories:=[Restaurant] && city:=Atlanta && is_minority_owned:=true && average_rating:>=4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildFilterBy(tt.params))
		})
	}
}
