package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeGeocodeError(t *testing.T) {
	tests := []struct {
		status  Status
		message string
		want    string
	}{
		{StatusEmptyQuery, "No query provided", "Please enter a location to search"},
		{StatusZeroResults, "", "No results found for that location"},
		{StatusRequestDenied, "The provided API key is invalid.", "Location service unavailable. Please try again later."},
		{StatusInvalidRequest, "", "Invalid location format. Please try a different search."},
		{StatusOverQueryLimit, "", "Location service is busy. Please try again in a moment."},
		{StatusNetworkError, "dial tcp: connection refused", "Network error. Please check your connection and try again."},
		{"SOMETHING_NEW", "provider exploded", "provider exploded"},
		{StatusUnknownError, "", genericGeocodeError},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := HumanizeGeocodeError(GeocodeResponse{Status: tt.status, ErrorMessage: tt.message})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanizeGeocodeError_OK(t *testing.T) {
	assert.Empty(t, HumanizeGeocodeError(GeocodeResponse{OK: true, Status: StatusOK}))
}
