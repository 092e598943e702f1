package services

import (
	"fmt"
	"math"

	"github.com/dineflow/pos-backend/models"
)

// BillLine is one billable order line fed into the tax engine.
type BillLine struct {
	MenuID     uint
	Name       string
	Quantity   int
	UnitPrice  float64
	Total      float64
	Components []TaxRate
}

// TaxRate is one tax component attached to a line's tax group.
type TaxRate struct {
	Code string
	Rate float64
}

// BillOptions carries the billing flags for one compute pass.
type BillOptions struct {
	OrderType           string
	ApplyServiceCharge  bool
	RemoveServiceCharge bool
	RemoveGst           bool
	CustomerGstin       string
	ServiceChargeRate   float64
}

// TaxLine is one aggregated component of the resulting breakdown.
type TaxLine struct {
	Code          string
	Rate          float64
	TaxableAmount float64
	Amount        float64
}

// BillBreakdown is the fully itemized result of one compute pass.
type BillBreakdown struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	Taxes          []TaxLine
	TotalTax       float64
	ServiceCharge  float64
	RoundOff       float64
	GrandTotal     float64
}

// Round2 rounds a money value to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeBill produces the itemized breakdown for the given lines. The
// discount is distributed pro-rata across lines before any tax is computed,
// so every component is charged on the discounted share, never on the gross
// price. The grand total is rounded to the nearest rupee and the fractional
// remainder becomes RoundOff. Pure function, no I/O.
func ComputeBill(lines []BillLine, discountAmount float64, opts BillOptions) (BillBreakdown, error) {
	var bd BillBreakdown

	for _, line := range lines {
		bd.Subtotal += line.Total
	}
	bd.Subtotal = Round2(bd.Subtotal)

	if discountAmount > bd.Subtotal {
		discountAmount = bd.Subtotal
	}
	if discountAmount < 0 {
		discountAmount = 0
	}
	bd.DiscountAmount = Round2(discountAmount)
	bd.TaxableAmount = Round2(bd.Subtotal - bd.DiscountAmount)

	if opts.RemoveGst && opts.CustomerGstin == "" {
		return BillBreakdown{}, ErrMissingGstinForTaxRemoval
	}

	// Aggregate component amounts across all lines, each computed on the
	// line's discounted share. The same code at different rates (CGST 2.5 on
	// food, CGST 9 on beverages) stays as separate breakdown lines.
	index := make(map[string]int)
	for _, line := range lines {
		share := line.Total
		if bd.Subtotal > 0 {
			share = line.Total - discountAmount*line.Total/bd.Subtotal
		}
		share = Round2(share)
		for _, comp := range line.Components {
			amount := Round2(share * comp.Rate / 100)
			key := fmt.Sprintf("%s@%g", comp.Code, comp.Rate)
			i, ok := index[key]
			if !ok {
				index[key] = len(bd.Taxes)
				bd.Taxes = append(bd.Taxes, TaxLine{Code: comp.Code, Rate: comp.Rate})
				i = index[key]
			}
			bd.Taxes[i].TaxableAmount = Round2(bd.Taxes[i].TaxableAmount + share)
			bd.Taxes[i].Amount = Round2(bd.Taxes[i].Amount + amount)
		}
	}

	if !opts.RemoveGst {
		for _, t := range bd.Taxes {
			bd.TotalTax += t.Amount
		}
		bd.TotalTax = Round2(bd.TotalTax)
	}

	// Service charge applies to the dine-in taxable amount only.
	if opts.ApplyServiceCharge && !opts.RemoveServiceCharge && opts.OrderType == models.OrderTypeDineIn {
		bd.ServiceCharge = Round2(bd.TaxableAmount * opts.ServiceChargeRate)
	}

	raw := bd.TaxableAmount + bd.TotalTax + bd.ServiceCharge
	bd.GrandTotal = math.Round(raw)
	bd.RoundOff = Round2(bd.GrandTotal - raw)

	return bd, nil
}
