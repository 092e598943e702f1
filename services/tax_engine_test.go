package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dineflow/pos-backend/models"
)

func gstLine(total float64, rate float64) BillLine {
	half := rate / 2
	return BillLine{
		MenuID:    1,
		Name:      "Paneer Tikka",
		Quantity:  2,
		UnitPrice: total / 2,
		Total:     total,
		Components: []TaxRate{
			{Code: "CGST", Rate: half},
			{Code: "SGST", Rate: half},
		},
	}
}

func TestComputeBillTaxOnDiscountedAmount(t *testing.T) {
	lines := []BillLine{gstLine(339.00, 5)}

	bd, err := ComputeBill(lines, 33.90, BillOptions{OrderType: models.OrderTypeDineIn})
	assert.NoError(t, err)

	assert.Equal(t, 339.00, bd.Subtotal)
	assert.Equal(t, 33.90, bd.DiscountAmount)
	assert.Equal(t, 305.10, bd.TaxableAmount)

	// 2.5% of 305.10, never of the gross 339.00.
	assert.Len(t, bd.Taxes, 2)
	assert.Equal(t, 7.63, bd.Taxes[0].Amount)
	assert.Equal(t, 7.63, bd.Taxes[1].Amount)
	assert.Equal(t, 15.26, bd.TotalTax)
	assert.Equal(t, 0.0, bd.ServiceCharge)

	assert.Equal(t, 320.0, bd.GrandTotal)
	assert.Equal(t, -0.36, bd.RoundOff)
}

func TestComputeBillServiceChargeDineInOnly(t *testing.T) {
	lines := []BillLine{gstLine(339.00, 5)}
	opts := BillOptions{
		OrderType:          models.OrderTypeDineIn,
		ApplyServiceCharge: true,
		ServiceChargeRate:  0.10,
	}

	bd, err := ComputeBill(lines, 33.90, opts)
	assert.NoError(t, err)
	assert.Equal(t, 30.51, bd.ServiceCharge)
	assert.Equal(t, 351.0, bd.GrandTotal)
	assert.Equal(t, 0.13, bd.RoundOff)

	opts.OrderType = models.OrderTypeTakeaway
	bd, err = ComputeBill(lines, 33.90, opts)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, bd.ServiceCharge)
}

func TestComputeBillRemoveGstRequiresGstin(t *testing.T) {
	lines := []BillLine{gstLine(339.00, 5)}

	_, err := ComputeBill(lines, 0, BillOptions{
		OrderType: models.OrderTypeDineIn,
		RemoveGst: true,
	})
	assert.ErrorIs(t, err, ErrMissingGstinForTaxRemoval)

	bd, err := ComputeBill(lines, 0, BillOptions{
		OrderType:     models.OrderTypeDineIn,
		RemoveGst:     true,
		CustomerGstin: "29ABCDE1234F1Z5",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, bd.TotalTax)
	// Component rows keep their amounts so the removal is reversible.
	assert.Equal(t, 8.48, bd.Taxes[0].Amount)
	assert.Equal(t, 339.0, bd.GrandTotal)
}

func TestComputeBillDiscountClampedToSubtotal(t *testing.T) {
	lines := []BillLine{gstLine(339.00, 5)}

	bd, err := ComputeBill(lines, 500, BillOptions{OrderType: models.OrderTypeDineIn})
	assert.NoError(t, err)
	assert.Equal(t, 339.00, bd.DiscountAmount)
	assert.Equal(t, 0.0, bd.TaxableAmount)
	assert.Equal(t, 0.0, bd.GrandTotal)

	bd, err = ComputeBill(lines, -10, BillOptions{OrderType: models.OrderTypeDineIn})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, bd.DiscountAmount)
}

func TestComputeBillProRataAcrossRates(t *testing.T) {
	lines := []BillLine{
		{Name: "Thali", Quantity: 1, UnitPrice: 200, Total: 200,
			Components: []TaxRate{{Code: "CGST", Rate: 2.5}, {Code: "SGST", Rate: 2.5}}},
		{Name: "Cold Coffee", Quantity: 1, UnitPrice: 100, Total: 100,
			Components: []TaxRate{{Code: "CGST", Rate: 9}, {Code: "SGST", Rate: 9}}},
	}

	bd, err := ComputeBill(lines, 30, BillOptions{OrderType: models.OrderTypeTakeaway})
	assert.NoError(t, err)

	// Discount splits 20/10 by line weight; the same code at two rates stays
	// as separate breakdown lines.
	assert.Len(t, bd.Taxes, 4)
	assert.Equal(t, 180.0, bd.Taxes[0].TaxableAmount)
	assert.Equal(t, 4.5, bd.Taxes[0].Amount)
	assert.Equal(t, 90.0, bd.Taxes[2].TaxableAmount)
	assert.Equal(t, 8.1, bd.Taxes[2].Amount)
	assert.Equal(t, 25.2, bd.TotalTax)
	assert.Equal(t, 295.0, bd.GrandTotal)
	assert.Equal(t, -0.2, bd.RoundOff)
}

func TestComputeBillEmptyOrder(t *testing.T) {
	bd, err := ComputeBill(nil, 0, BillOptions{OrderType: models.OrderTypeDineIn})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, bd.Subtotal)
	assert.Equal(t, 0.0, bd.GrandTotal)
}
