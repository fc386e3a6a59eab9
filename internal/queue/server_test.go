package queue

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	delay := exponentialBackoff(2 * time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		// Defensive clamp for out-of-range attempt counts.
		{0, 2 * time.Second},
	}

	for _, tt := range tests {
		if got := delay(tt.attempt, nil, nil); got != tt.want {
			t.Errorf("delay(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
