package domain

import (
	"context"
	"math"
	"time"
)

type Product struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Brand              string    `json:"brand"`
	Description        string    `json:"description,omitempty"`
	ImageURL           string    `json:"image_url,omitempty"`
	Price              float64   `json:"price"`
	OriginalPrice      float64   `json:"original_price"`
	DiscountPercentage int       `json:"discount_percentage"`
	Rating             float64   `json:"rating"`
	ReviewCount        int       `json:"review_count"`
	StockQuantity      int       `json:"stock_quantity"`
	CategoryID         string    `json:"category_id,omitempty"`
	CategoryName       string    `json:"category_name,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ProductQuery narrows what the backend returns. Empty fields do not filter.
type ProductQuery struct {
	CategoryID string
	ActiveOnly bool
	IDs        []string
}

type ProductRepository interface {
	FetchProducts(ctx context.Context, q ProductQuery) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
}

type CategoryRepository interface {
	FetchCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// Normalize fills the derived pricing fields the backend may leave empty:
// a missing original price falls back to the price, and a missing discount
// percentage is derived from (original - price) / original.
func (p *Product) Normalize() {
	if p.OriginalPrice <= 0 {
		p.OriginalPrice = p.Price
	}
	if p.DiscountPercentage == 0 && p.OriginalPrice > p.Price {
		p.DiscountPercentage = int(math.Floor((p.OriginalPrice - p.Price) / p.OriginalPrice * 100))
	}
}

// PricingConsistent checks price <= original price and that the stored
// discount matches the two prices within one percentage point.
func (p Product) PricingConsistent() bool {
	if p.OriginalPrice == 0 {
		return true
	}
	if p.Price > p.OriginalPrice {
		return false
	}
	expected := (p.OriginalPrice - p.Price) / p.OriginalPrice * 100
	return math.Abs(expected-float64(p.DiscountPercentage)) <= 1
}
