package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dineflow/pos-backend/models"
)

func TestResolveManualDiscount(t *testing.T) {
	amount, err := ResolveManualDiscount(models.DiscountFlat, 50, 300)
	assert.NoError(t, err)
	assert.Equal(t, 50.0, amount)

	// Flat values never push the taxable amount below zero.
	amount, err = ResolveManualDiscount(models.DiscountFlat, 500, 300)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, amount)

	amount, err = ResolveManualDiscount(models.DiscountFlat, -20, 300)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, amount)

	amount, err = ResolveManualDiscount(models.DiscountPercentage, 10, 250)
	assert.NoError(t, err)
	assert.Equal(t, 25.0, amount)

	_, err = ResolveManualDiscount("loyalty", 10, 250)
	assert.ErrorIs(t, err, ErrInvalidDiscountType)
}

func TestResolveCodeDiscount(t *testing.T) {
	now := time.Now()
	def := &models.DiscountCode{
		Code:     "SAVE10",
		Rate:     10,
		MaxCap:   20,
		MinOrder: 100,
		IsActive: true,
	}

	amount, err := ResolveCodeDiscount(def, 150, nil, now)
	assert.NoError(t, err)
	assert.Equal(t, 15.0, amount)

	// Cap kicks in above 200.
	amount, err = ResolveCodeDiscount(def, 500, nil, now)
	assert.NoError(t, err)
	assert.Equal(t, 20.0, amount)

	_, err = ResolveCodeDiscount(def, 80, nil, now)
	assert.ErrorIs(t, err, ErrMinOrderNotMet)

	code := "SAVE10"
	existing := []models.Discount{{Type: models.DiscountCodeType, Code: &code, Amount: 15}}
	_, err = ResolveCodeDiscount(def, 150, existing, now)
	assert.ErrorIs(t, err, ErrDuplicateDiscountCode)

	// One code per order, even a different one.
	other := "WELCOME5"
	existing = []models.Discount{{Type: models.DiscountCodeType, Code: &other, Amount: 5}}
	_, err = ResolveCodeDiscount(def, 150, existing, now)
	assert.ErrorIs(t, err, ErrDuplicateDiscountCode)

	def.IsActive = false
	_, err = ResolveCodeDiscount(def, 150, nil, now)
	assert.ErrorIs(t, err, ErrInvalidDiscountCode)

	def.IsActive = true
	expired := now.Add(-time.Hour)
	def.ExpiresAt = &expired
	_, err = ResolveCodeDiscount(def, 150, nil, now)
	assert.ErrorIs(t, err, ErrInvalidDiscountCode)
}

func TestSumDiscountsCappedAtSubtotal(t *testing.T) {
	discounts := []models.Discount{{Amount: 120}, {Amount: 250}}
	assert.Equal(t, 300.0, SumDiscounts(discounts, 300))
	assert.Equal(t, 370.0, SumDiscounts(discounts, 500))
}
