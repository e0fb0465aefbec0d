package entities

import (
	"testing"
	"time"
)

func TestHorizon_Buckets(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		days       int
		bucketDays int
		expected   int
	}{
		{"twelve weekly buckets", 84, 7, 12},
		{"partial last bucket rounds up", 80, 7, 12},
		{"daily buckets", 10, 1, 10},
		{"single bucket", 3, 7, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHorizon(start, start.AddDate(0, 0, tc.days), tc.bucketDays)
			if err != nil {
				t.Fatalf("Expected valid horizon: %v", err)
			}
			if got := h.Buckets(); got != tc.expected {
				t.Errorf("Expected %d buckets, got %d", tc.expected, got)
			}
		})
	}
}

func TestHorizon_BucketOf(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	h, err := NewHorizon(start, start.AddDate(0, 0, 84), 7)
	if err != nil {
		t.Fatalf("Expected valid horizon: %v", err)
	}

	testCases := []struct {
		name     string
		date     time.Time
		expected int
	}{
		{"horizon start", start, 0},
		{"last day of first bucket", start.AddDate(0, 0, 6), 0},
		{"first day of second bucket", start.AddDate(0, 0, 7), 1},
		{"mid horizon", start.AddDate(0, 0, 30), 4},
		{"one day before start", start.AddDate(0, 0, -1), -1},
		{"full bucket before start", start.AddDate(0, 0, -7), -1},
		{"eight days before start", start.AddDate(0, 0, -8), -2},
		{"past the end", start.AddDate(0, 0, 84), 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.BucketOf(tc.date); got != tc.expected {
				t.Errorf("Expected bucket %d for %s, got %d", tc.expected, tc.date.Format("2006-01-02"), got)
			}
		})
	}
}

func TestHorizon_DaylightSavingBoundary(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("Expected timezone database: %v", err)
	}

	// DST starts 2026-03-08; the first week has only 167 elapsed hours
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	h, err := NewHorizon(start, start.AddDate(0, 0, 28), 7)
	if err != nil {
		t.Fatalf("Expected valid horizon: %v", err)
	}

	if got := h.Buckets(); got != 4 {
		t.Errorf("Expected 4 buckets across the DST change, got %d", got)
	}
	if got := h.BucketOf(start.AddDate(0, 0, 7)); got != 1 {
		t.Errorf("Expected day 7 in bucket 1 across the DST change, got %d", got)
	}
	if got := h.BucketOf(start.AddDate(0, 0, 14)); got != 2 {
		t.Errorf("Expected day 14 in bucket 2, got %d", got)
	}
	if got := h.BucketOf(start.AddDate(0, 0, 6)); got != 0 {
		t.Errorf("Expected day 6 in bucket 0, got %d", got)
	}
}

func TestHorizon_StartOf(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	h, err := NewHorizon(start, start.AddDate(0, 0, 84), 7)
	if err != nil {
		t.Fatalf("Expected valid horizon: %v", err)
	}

	if got := h.StartOf(0); !got.Equal(start) {
		t.Errorf("Expected bucket 0 to start at horizon start, got %s", got)
	}
	if got := h.StartOf(3); !got.Equal(start.AddDate(0, 0, 21)) {
		t.Errorf("Expected bucket 3 to start 21 days in, got %s", got)
	}
	if got := h.StartOf(-1); !got.Equal(start.AddDate(0, 0, -7)) {
		t.Errorf("Expected bucket -1 to start 7 days before horizon, got %s", got)
	}
}

func TestNewHorizon_Validation(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if _, err := NewHorizon(start, start, 7); err == nil {
		t.Error("Expected error for end equal to start")
	}
	if _, err := NewHorizon(start, start.AddDate(0, 0, -7), 7); err == nil {
		t.Error("Expected error for end before start")
	}
	if _, err := NewHorizon(start, start.AddDate(0, 0, 7), 0); err == nil {
		t.Error("Expected error for zero bucket days")
	}
}
