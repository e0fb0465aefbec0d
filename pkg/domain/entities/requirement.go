package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Requirement is the netting result for one item and time bucket. Records
// are created fresh by each planning run and never mutated afterward.
type Requirement struct {
	ItemID            ItemID
	Period            int
	PeriodStart       time.Time
	GrossRequirement  decimal.Decimal
	ScheduledReceipts decimal.Decimal
	// ProjectedOnHand is the balance at the end of the bucket, after
	// receipts and gross demand are applied
	ProjectedOnHand decimal.Decimal
	SafetyStock     decimal.Decimal
	NetRequirement  decimal.Decimal
	PlannedReceipt  decimal.Decimal
	// PlannedRelease is the quantity released in this bucket to cover a
	// later bucket's planned receipt
	PlannedRelease decimal.Decimal
}
