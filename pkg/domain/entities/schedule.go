package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Horizon defines the planning window and its bucket granularity
type Horizon struct {
	Start      time.Time
	End        time.Time
	BucketDays int
}

// NewHorizon creates a validated Horizon
func NewHorizon(start, end time.Time, bucketDays int) (Horizon, error) {
	if !end.After(start) {
		return Horizon{}, fmt.Errorf("horizon end %v must be after start %v", end, start)
	}
	if bucketDays < 1 {
		return Horizon{}, fmt.Errorf("bucket days must be at least 1, got %d", bucketDays)
	}
	return Horizon{Start: start, End: end, BucketDays: bucketDays}, nil
}

// Buckets returns the number of time buckets in the horizon
func (h Horizon) Buckets() int {
	days := calendarDays(h.Start, h.End)
	if days <= 0 {
		return 0
	}
	return (days + h.BucketDays - 1) / h.BucketDays
}

// BucketOf returns the bucket index containing t. The result is negative
// for dates before the horizon start and may exceed Buckets()-1 for dates
// past the end; callers clamp as needed.
func (h Horizon) BucketOf(t time.Time) int {
	days := calendarDays(h.Start, t)
	if days < 0 {
		// integer division truncates toward zero; force floor behavior
		return (days - h.BucketDays + 1) / h.BucketDays
	}
	return days / h.BucketDays
}

// calendarDays counts whole calendar days from a to b. Dates are compared
// by their calendar day, so a daylight saving shift inside the span does
// not skew the count.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// StartOf returns the start date of bucket i
func (h Horizon) StartOf(i int) time.Time {
	return h.Start.AddDate(0, 0, i*h.BucketDays)
}

// TimeFence partitions the horizon into frozen, slushy and free zones
type TimeFence struct {
	// FrozenPeriods counts buckets from the horizon start in which only
	// customer orders are planned
	FrozenPeriods int
	// SlushyPeriods counts buckets after the frozen zone in which demand
	// is the larger of forecast and orders
	SlushyPeriods int
}

// MasterScheduleLine carries independent demand for one item and bucket
type MasterScheduleLine struct {
	ItemID      ItemID
	PeriodStart time.Time
	ForecastQty decimal.Decimal
	OrderQty    decimal.Decimal
}

// MasterSchedule owns the demand lines and fence configuration for a horizon
type MasterSchedule struct {
	Horizon Horizon
	Fence   TimeFence
	Lines   []*MasterScheduleLine
}

// ScheduledReceipt represents open supply (a purchase or production order
// already in flight) due within the horizon
type ScheduledReceipt struct {
	ItemID   ItemID
	DueDate  time.Time
	Quantity decimal.Decimal
}
