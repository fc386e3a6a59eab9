package models

import "testing"

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{JobStatusQueued, JobStatusProcessing, true},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		// A queue retry re-enters processing from failed.
		{JobStatusFailed, JobStatusProcessing, true},

		// Completed is terminal; no backward or skipping moves.
		{JobStatusQueued, JobStatusCompleted, false},
		{JobStatusQueued, JobStatusFailed, false},
		{JobStatusProcessing, JobStatusQueued, false},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusCompleted, JobStatusQueued, false},
		{JobStatusFailed, JobStatusCompleted, false},
		{JobStatusFailed, JobStatusQueued, false},
		{"", JobStatusProcessing, false},
	}

	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
