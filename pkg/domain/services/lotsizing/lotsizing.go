// Package lotsizing converts net requirements into order quantities. All
// policies are pure: identical inputs always produce identical outputs.
package lotsizing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/planwerk/mrp/pkg/domain/entities"
)

// Context carries the item parameters and lookahead a policy may need
type Context struct {
	// FixedLotSize is required by FixedOrderQuantity
	FixedLotSize decimal.Decimal
	// SupplyPeriods is the forward window for PeriodsOfSupply
	SupplyPeriods int
	// Lookahead returns the net requirement n buckets past the current
	// one; PeriodsOfSupply uses it to fold future demand into one order
	Lookahead func(n int) decimal.Decimal
}

// Result is the sized order and the number of forward buckets it covers
type Result struct {
	OrderQuantity decimal.Decimal
	// PeriodsCovered is at least 1; PeriodsOfSupply consumes the covered
	// buckets so they are not planned twice
	PeriodsCovered int
}

// Compute sizes an order for a positive net requirement under the given
// policy
func Compute(policy entities.LotSizePolicy, net decimal.Decimal, ctx Context) (Result, error) {
	if net.IsNegative() {
		return Result{}, fmt.Errorf("net requirement cannot be negative, got %s", net)
	}

	switch policy {
	case entities.LotForLot:
		return Result{OrderQuantity: net, PeriodsCovered: 1}, nil

	case entities.FixedOrderQuantity:
		if !ctx.FixedLotSize.IsPositive() {
			return Result{}, fmt.Errorf("fixed order quantity policy requires a positive lot size, got %s", ctx.FixedLotSize)
		}
		if net.IsZero() {
			return Result{OrderQuantity: decimal.Zero, PeriodsCovered: 1}, nil
		}
		// smallest multiple of the lot size covering the net requirement
		lots := net.Div(ctx.FixedLotSize).Ceil()
		return Result{OrderQuantity: lots.Mul(ctx.FixedLotSize), PeriodsCovered: 1}, nil

	case entities.PeriodsOfSupply:
		if ctx.SupplyPeriods < 1 {
			return Result{}, fmt.Errorf("periods of supply policy requires at least 1 period, got %d", ctx.SupplyPeriods)
		}
		total := net
		if ctx.Lookahead != nil {
			for n := 1; n < ctx.SupplyPeriods; n++ {
				total = total.Add(ctx.Lookahead(n))
			}
		}
		return Result{OrderQuantity: total, PeriodsCovered: ctx.SupplyPeriods}, nil

	default:
		return Result{}, fmt.Errorf("unknown lot sizing policy: %d", policy)
	}
}
