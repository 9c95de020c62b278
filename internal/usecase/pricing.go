package usecase

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Pricing holds the shipping rule applied to every cart summary.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromInt(499),
		ShippingFee:           decimal.NewFromInt(40),
	}
}

func NewPricing(freeShippingThreshold, shippingFee float64) Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		ShippingFee:           decimal.NewFromFloat(shippingFee),
	}
}

type CartSummary struct {
	TotalItems       int             `json:"total_items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	OriginalSubtotal decimal.Decimal `json:"original_subtotal"`
	Savings          decimal.Decimal `json:"savings"`
	Shipping         decimal.Decimal `json:"shipping"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// Summarize derives the order summary of lines. Shipping is waived when the
// subtotal is strictly above the threshold; an empty cart ships for free.
func (p Pricing) Summarize(lines []domain.CartLine) CartSummary {
	s := CartSummary{
		Subtotal:         decimal.Zero,
		OriginalSubtotal: decimal.Zero,
		Savings:          decimal.Zero,
		Shipping:         decimal.Zero,
	}
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		original := line.Product.OriginalPrice
		if original <= 0 {
			original = line.Product.Price
		}
		s.TotalItems += line.Quantity
		s.Subtotal = s.Subtotal.Add(decimal.NewFromFloat(line.Product.Price).Mul(qty))
		s.OriginalSubtotal = s.OriginalSubtotal.Add(decimal.NewFromFloat(original).Mul(qty))
	}

	if s.OriginalSubtotal.GreaterThan(s.Subtotal) {
		s.Savings = s.OriginalSubtotal.Sub(s.Subtotal)
	}
	if len(lines) > 0 && !s.Subtotal.GreaterThan(p.FreeShippingThreshold) {
		s.Shipping = p.ShippingFee
	}
	s.GrandTotal = s.Subtotal.Add(s.Shipping)
	return s
}
