package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FilterCriteria selects products from a loaded catalog. Zero values accept
// everything: nil price bounds, empty brand and rating sets, empty query.
type FilterCriteria struct {
	MinPrice *float64  `json:"min_price,omitempty"`
	MaxPrice *float64  `json:"max_price,omitempty"`
	Brands   []string  `json:"brands,omitempty"`
	Ratings  []float64 `json:"ratings,omitempty"`
	Query    string    `json:"query,omitempty"`
}

// Key renders the criteria as a canonical string, insensitive to the order
// of the brand and rating sets. Used to memoize filter results.
func (c FilterCriteria) Key() string {
	var b strings.Builder
	if c.MinPrice != nil {
		b.WriteString(strconv.FormatFloat(*c.MinPrice, 'f', -1, 64))
	}
	b.WriteByte('|')
	if c.MaxPrice != nil {
		b.WriteString(strconv.FormatFloat(*c.MaxPrice, 'f', -1, 64))
	}
	b.WriteByte('|')

	brands := make([]string, len(c.Brands))
	for i, brand := range c.Brands {
		brands[i] = strings.ToLower(brand)
	}
	sort.Strings(brands)
	b.WriteString(strings.Join(brands, ","))
	b.WriteByte('|')

	ratings := append([]float64(nil), c.Ratings...)
	sort.Float64s(ratings)
	for i, r := range ratings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(r, 'f', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(c.Query)))
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects non-finite or negative bounds and an inverted price range.
func (c FilterCriteria) Validate() error {
	if c.MinPrice != nil && !finite(*c.MinPrice) {
		return fmt.Errorf("min price must be a finite number: %w", ErrValidation)
	}
	if c.MaxPrice != nil && !finite(*c.MaxPrice) {
		return fmt.Errorf("max price must be a finite number: %w", ErrValidation)
	}
	if c.MinPrice != nil && *c.MinPrice < 0 {
		return fmt.Errorf("min price cannot be negative: %w", ErrValidation)
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		return fmt.Errorf("max price cannot be negative: %w", ErrValidation)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return fmt.Errorf("min price %.2f is above max price %.2f: %w", *c.MinPrice, *c.MaxPrice, ErrValidation)
	}
	for _, r := range c.Ratings {
		if !finite(r) || r < 0 || r > 5 {
			return fmt.Errorf("rating threshold %.1f out of range: %w", r, ErrValidation)
		}
	}
	return nil
}

type SortKey string

const (
	// SortRelevance keeps the order the backend returned.
	SortRelevance  SortKey = ""
	SortPopularity SortKey = "popularity"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRating     SortKey = "rating"
	SortDiscount   SortKey = "discount"
	SortName       SortKey = "name"
	SortNewest     SortKey = "newest"
)

// ParseSortKey accepts the canonical keys plus the aliases used by the
// storefront pages (price-low, price_high, ...).
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance":
		return SortRelevance, nil
	case "popularity", "popular":
		return SortPopularity, nil
	case "price_asc", "price-asc", "price_low", "price-low":
		return SortPriceAsc, nil
	case "price_desc", "price-desc", "price_high", "price-high":
		return SortPriceDesc, nil
	case "rating":
		return SortRating, nil
	case "discount":
		return SortDiscount, nil
	case "name":
		return SortName, nil
	case "newest":
		return SortNewest, nil
	default:
		return SortRelevance, fmt.Errorf("unknown sort key %q: %w", s, ErrValidation)
	}
}
