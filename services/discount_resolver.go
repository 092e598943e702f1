package services

import (
	"time"

	"github.com/dineflow/pos-backend/models"
)

// ResolveManualDiscount computes the amount of a manually entered discount
// against the order subtotal. Flat values are clamped so the result never
// drives the taxable amount below zero.
func ResolveManualDiscount(discountType string, value, subtotal float64) (float64, error) {
	switch discountType {
	case models.DiscountFlat:
		amount := value
		if amount > subtotal {
			amount = subtotal
		}
		if amount < 0 {
			amount = 0
		}
		return Round2(amount), nil
	case models.DiscountPercentage:
		return Round2(subtotal * value / 100), nil
	default:
		return 0, ErrInvalidDiscountType
	}
}

// ResolveCodeDiscount validates a discount-code definition against the order
// and computes the resulting amount: min(subtotal*rate/100, maxCap). The
// existing discounts are checked so the same code is attached at most once.
func ResolveCodeDiscount(def *models.DiscountCode, subtotal float64, existing []models.Discount, now time.Time) (float64, error) {
	if def == nil || !def.Usable(now) {
		return 0, ErrInvalidDiscountCode
	}
	for _, d := range existing {
		if d.Code != nil && *d.Code == def.Code {
			return 0, ErrDuplicateDiscountCode
		}
		if d.Type == models.DiscountCodeType {
			// Exactly one code per order.
			return 0, ErrDuplicateDiscountCode
		}
	}
	if subtotal < def.MinOrder {
		return 0, ErrMinOrderNotMet
	}
	amount := subtotal * def.Rate / 100
	if def.MaxCap > 0 && amount > def.MaxCap {
		amount = def.MaxCap
	}
	return Round2(amount), nil
}

// SumDiscounts folds every discount attached to the order into the single
// amount the tax engine consumes, capped at the subtotal.
func SumDiscounts(discounts []models.Discount, subtotal float64) float64 {
	var total float64
	for _, d := range discounts {
		total += d.Amount
	}
	if total > subtotal {
		total = subtotal
	}
	return Round2(total)
}
