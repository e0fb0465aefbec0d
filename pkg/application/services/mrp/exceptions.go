package mrp

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// DetectorConfig tunes the netting exception rules
type DetectorConfig struct {
	Horizon     entities.Horizon
	CurrentDate time.Time
	// ExcessMultiple of average gross requirement above which projected
	// on hand is considered excess
	ExcessMultiple decimal.Decimal
	// ExcessPeriods is the consecutive-bucket streak required before an
	// ExcessInventory exception is raised
	ExcessPeriods int
}

// Detector flags netting anomalies over a completed requirement and order
// set. Exceptions are informational and never block the run.
type Detector struct {
	cfg   DetectorConfig
	items map[entities.ItemID]*entities.Item
}

// NewDetector creates a detector over the run's item master
func NewDetector(cfg DetectorConfig, items map[entities.ItemID]*entities.Item) *Detector {
	return &Detector{cfg: cfg, items: items}
}

// Detect runs all rules and returns the combined exception list
func (d *Detector) Detect(requirements []*entities.Requirement, orders []*entities.PlannedOrder) []*entities.MrpException {
	var exceptions []*entities.MrpException
	exceptions = append(exceptions, d.detectPastDue(orders)...)
	exceptions = append(exceptions, d.detectUnfulfillable(requirements)...)
	exceptions = append(exceptions, d.detectExcessInventory(requirements)...)
	return exceptions
}

// detectPastDue flags orders whose computed release date precedes the
// plan's current date. Netting clamps the release bucket but keeps the
// real date, so these are flagged rather than silently moved.
func (d *Detector) detectPastDue(orders []*entities.PlannedOrder) []*entities.MrpException {
	var exceptions []*entities.MrpException
	for _, order := range orders {
		if order.CarriedForward {
			continue
		}
		if order.ReleaseDate.Before(d.cfg.CurrentDate) {
			exceptions = append(exceptions, entities.NewMrpException(
				entities.PastDue,
				entities.SeverityWarning,
				order.ItemID,
				order.ReleasePeriod,
				fmt.Sprintf("planned release %s precedes plan date %s",
					order.ReleaseDate.Format("2006-01-02"), d.cfg.CurrentDate.Format("2006-01-02")),
			))
		}
	}
	return exceptions
}

// detectUnfulfillable flags net requirements due sooner than the item's
// lead time allows any release at or after the current date
func (d *Detector) detectUnfulfillable(requirements []*entities.Requirement) []*entities.MrpException {
	var exceptions []*entities.MrpException
	for _, req := range requirements {
		if !req.NetRequirement.IsPositive() {
			continue
		}
		item, known := d.items[req.ItemID]
		if !known {
			continue
		}
		earliestReceipt := d.cfg.CurrentDate.AddDate(0, 0, item.LeadTimeDays)
		if req.PeriodStart.Before(earliestReceipt) {
			exceptions = append(exceptions, entities.NewMrpException(
				entities.Unfulfillable,
				entities.SeverityCritical,
				req.ItemID,
				req.Period,
				fmt.Sprintf("net requirement of %s due %s is inside the %d day lead time",
					req.NetRequirement, req.PeriodStart.Format("2006-01-02"), item.LeadTimeDays),
			))
		}
	}
	return exceptions
}

// detectExcessInventory flags projected on hand exceeding a multiple of
// the item's average gross requirement for a consecutive streak of buckets
func (d *Detector) detectExcessInventory(requirements []*entities.Requirement) []*entities.MrpException {
	byItem := make(map[entities.ItemID][]*entities.Requirement)
	order := make([]entities.ItemID, 0)
	for _, req := range requirements {
		if _, seen := byItem[req.ItemID]; !seen {
			order = append(order, req.ItemID)
		}
		byItem[req.ItemID] = append(byItem[req.ItemID], req)
	}

	var exceptions []*entities.MrpException
	for _, itemID := range order {
		reqs := byItem[itemID]

		total := decimal.Zero
		for _, req := range reqs {
			total = total.Add(req.GrossRequirement)
		}
		if total.IsZero() {
			continue
		}
		average := total.Div(decimal.NewFromInt(int64(len(reqs))))
		threshold := average.Mul(d.cfg.ExcessMultiple)

		streak := 0
		for _, req := range reqs {
			if req.ProjectedOnHand.GreaterThan(threshold) {
				streak++
				if streak == d.cfg.ExcessPeriods {
					first := req.Period - d.cfg.ExcessPeriods + 1
					exceptions = append(exceptions, entities.NewMrpException(
						entities.ExcessInventory,
						entities.SeverityInfo,
						itemID,
						first,
						fmt.Sprintf("projected on hand above %s (%s x average gross) for %d consecutive periods",
							threshold.Round(2), d.cfg.ExcessMultiple, d.cfg.ExcessPeriods),
					))
					break
				}
			} else {
				streak = 0
			}
		}
	}
	return exceptions
}
