package usecase

import (
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(price, original float64, qty int) domain.CartLine {
	return domain.CartLine{Quantity: qty, Product: domain.Product{Price: price, OriginalPrice: original}}
}

func TestSummarizeShippingThreshold(t *testing.T) {
	p := DefaultPricing()

	atThreshold := p.Summarize([]domain.CartLine{line(499, 499, 1)})
	assert.True(t, atThreshold.Shipping.Equal(decimal.NewFromInt(40)), "499 is not above the threshold")
	assert.True(t, atThreshold.GrandTotal.Equal(decimal.NewFromInt(539)))

	above := p.Summarize([]domain.CartLine{line(499.5, 499.5, 1)})
	assert.True(t, above.Shipping.IsZero())
	assert.True(t, above.GrandTotal.Equal(decimal.RequireFromString("499.5")))
}

func TestSummarizeEmptyCart(t *testing.T) {
	s := DefaultPricing().Summarize(nil)
	assert.Zero(t, s.TotalItems)
	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.Shipping.IsZero())
	assert.True(t, s.GrandTotal.IsZero())
}

func TestSummarizeSavingsNeverNegative(t *testing.T) {
	// original below price is inconsistent data; savings clamps at zero
	s := DefaultPricing().Summarize([]domain.CartLine{line(120, 100, 2)})
	assert.True(t, s.Savings.IsZero())
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(240)))
}

func TestSummarizeMissingOriginalPrice(t *testing.T) {
	s := DefaultPricing().Summarize([]domain.CartLine{line(80, 0, 3)})
	assert.True(t, s.OriginalSubtotal.Equal(decimal.NewFromInt(240)))
	assert.True(t, s.Savings.IsZero())
}

func TestSummarizeAvoidsFloatDrift(t *testing.T) {
	s := NewPricing(499, 40).Summarize([]domain.CartLine{line(0.1, 0.1, 1), line(0.2, 0.2, 1)})
	assert.Equal(t, "0.3", s.Subtotal.String())
}
