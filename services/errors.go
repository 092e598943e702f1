package services

import "errors"

// Caller-facing billing errors; controllers map these to 4xx responses.
var (
	ErrMissingGstinForTaxRemoval = errors.New("customer GSTIN is required to remove GST")
	ErrMinOrderNotMet            = errors.New("order subtotal is below the discount code minimum")
	ErrDuplicateDiscountCode     = errors.New("discount code already applied to this order")
	ErrInvalidDiscountCode       = errors.New("invalid or expired discount code")
	ErrInvalidDiscountType       = errors.New("unknown discount type")
)
