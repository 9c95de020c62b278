package usecase

import (
	"sort"
	"strings"

	"storefront/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ApplyFilters returns the products that pass every predicate of c, ordered
// by key. The input slice is never modified. Sorting is stable, so products
// the key cannot tell apart keep their input order.
func ApplyFilters(products []domain.Product, c domain.FilterCriteria, key domain.SortKey) []domain.Product {
	brands := make(map[string]struct{}, len(c.Brands))
	for _, b := range c.Brands {
		brands[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !inPriceRange(p, c.MinPrice, c.MaxPrice) {
			continue
		}
		if !brandAccepted(p, brands) {
			continue
		}
		if !ratingAccepted(p, c.Ratings) {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, key)
	return out
}

func inPriceRange(p domain.Product, lo, hi *float64) bool {
	if lo != nil && p.Price < *lo {
		return false
	}
	if hi != nil && p.Price > *hi {
		return false
	}
	return true
}

func brandAccepted(p domain.Product, brands map[string]struct{}) bool {
	if len(brands) == 0 {
		return true
	}
	_, ok := brands[strings.ToLower(p.Brand)]
	return ok
}

// Thresholds are OR'ed: a product passes when it reaches any selected one.
func ratingAccepted(p domain.Product, thresholds []float64) bool {
	if len(thresholds) == 0 {
		return true
	}
	for _, t := range thresholds {
		if p.Rating >= t {
			return true
		}
	}
	return false
}

func matchesQuery(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Brand, p.Description, p.CategoryName} {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	var less func(a, b domain.Product) bool

	switch key {
	case domain.SortPopularity:
		less = func(a, b domain.Product) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ReviewCount > b.ReviewCount
		}
	case domain.SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.Price < b.Price }
	case domain.SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.Price > b.Price }
	case domain.SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case domain.SortDiscount:
		less = func(a, b domain.Product) bool { return a.DiscountPercentage > b.DiscountPercentage }
	case domain.SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case domain.SortName:
		// collate.Collator keeps internal buffers and is not safe to share.
		col := collate.New(language.English, collate.IgnoreCase)
		less = func(a, b domain.Product) bool { return col.CompareString(a.Name, b.Name) < 0 }
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}
