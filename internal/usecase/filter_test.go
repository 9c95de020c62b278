package usecase

import (
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func sampleCatalog() []domain.Product {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{ID: "p1", Name: "iPhone 15", Brand: "Apple", Price: 79900, OriginalPrice: 89900, DiscountPercentage: 11, Rating: 4.6, ReviewCount: 1200, CreatedAt: base},
		{ID: "p2", Name: "Galaxy S24", Brand: "Samsung", Price: 74999, OriginalPrice: 79999, DiscountPercentage: 6, Rating: 4.4, ReviewCount: 800, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "p3", Name: "air max", Brand: "Nike", Price: 8995, OriginalPrice: 12995, DiscountPercentage: 30, Rating: 4.1, ReviewCount: 300, CreatedAt: base.Add(24 * time.Hour), Description: "Running shoes"},
		{ID: "p4", Name: "Ultraboost", Brand: "Adidas", Price: 12999, OriginalPrice: 17999, DiscountPercentage: 27, Rating: 3.4, ReviewCount: 90, CreatedAt: base.Add(72 * time.Hour), CategoryName: "Fashion"},
		{ID: "p5", Name: "WH-1000XM5", Brand: "Sony", Price: 29990, OriginalPrice: 34990, DiscountPercentage: 14, Rating: 4.6, ReviewCount: 2500, CreatedAt: base.Add(-24 * time.Hour)},
	}
}

func TestApplyFiltersPriceMaxKeepsOrder(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Price: 50},
		{ID: "b", Price: 150},
		{ID: "c", Price: 90},
	}

	got := ApplyFilters(products, domain.FilterCriteria{MaxPrice: ptr(100)}, domain.SortRelevance)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestApplyFiltersPriceBoundsInclusive(t *testing.T) {
	products := []domain.Product{{ID: "a", Price: 100}, {ID: "b", Price: 200}, {ID: "c", Price: 300}}

	got := ApplyFilters(products, domain.FilterCriteria{MinPrice: ptr(100), MaxPrice: ptr(200)}, domain.SortRelevance)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	products := sampleCatalog()
	before := ids(products)

	_ = ApplyFilters(products, domain.FilterCriteria{}, domain.SortPriceAsc)
	assert.Equal(t, before, ids(products))
}

func TestApplyFiltersBrandSet(t *testing.T) {
	got := ApplyFilters(sampleCatalog(), domain.FilterCriteria{Brands: []string{"apple", "Sony"}}, domain.SortRelevance)
	assert.Equal(t, []string{"p1", "p5"}, ids(got))
}

func TestApplyFiltersRatingThresholdsAreOred(t *testing.T) {
	catalog := sampleCatalog()

	high := ApplyFilters(catalog, domain.FilterCriteria{Ratings: []float64{4.5}}, domain.SortRelevance)
	assert.Equal(t, []string{"p1", "p5"}, ids(high))

	// 4.5 OR 4 behaves like the looser bound
	both := ApplyFilters(catalog, domain.FilterCriteria{Ratings: []float64{4.5, 4}}, domain.SortRelevance)
	assert.Equal(t, []string{"p1", "p2", "p3", "p5"}, ids(both))
}

func TestApplyFiltersTextQuery(t *testing.T) {
	catalog := sampleCatalog()

	assert.Equal(t, []string{"p3"}, ids(ApplyFilters(catalog, domain.FilterCriteria{Query: "RUNNING"}, "")))
	assert.Equal(t, []string{"p2"}, ids(ApplyFilters(catalog, domain.FilterCriteria{Query: "samsung"}, "")))
	assert.Equal(t, []string{"p4"}, ids(ApplyFilters(catalog, domain.FilterCriteria{Query: "fashion"}, "")))
	assert.Len(t, ApplyFilters(catalog, domain.FilterCriteria{Query: "  "}, ""), len(catalog))
}

func TestApplyFiltersPredicatesAreAnded(t *testing.T) {
	c := domain.FilterCriteria{
		MaxPrice: ptr(50000),
		Brands:   []string{"Nike", "Adidas", "Sony"},
		Ratings:  []float64{4},
		Query:    "a",
	}
	got := ApplyFilters(sampleCatalog(), c, domain.SortRelevance)
	assert.Equal(t, []string{"p3"}, ids(got))
}

func TestApplyFiltersEmptyResultIsNotNil(t *testing.T) {
	got := ApplyFilters(sampleCatalog(), domain.FilterCriteria{Query: "no such product"}, domain.SortName)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyFiltersSortKeys(t *testing.T) {
	catalog := sampleCatalog()

	cases := []struct {
		key  domain.SortKey
		want []string
	}{
		{domain.SortPriceAsc, []string{"p3", "p4", "p5", "p2", "p1"}},
		{domain.SortPriceDesc, []string{"p1", "p2", "p5", "p4", "p3"}},
		{domain.SortRating, []string{"p1", "p5", "p2", "p3", "p4"}},
		{domain.SortPopularity, []string{"p5", "p1", "p2", "p3", "p4"}},
		{domain.SortDiscount, []string{"p3", "p4", "p5", "p1", "p2"}},
		{domain.SortNewest, []string{"p4", "p2", "p3", "p1", "p5"}},
		{domain.SortName, []string{"p3", "p2", "p1", "p4", "p5"}},
		{domain.SortRelevance, []string{"p1", "p2", "p3", "p4", "p5"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			assert.Equal(t, tc.want, ids(ApplyFilters(catalog, domain.FilterCriteria{}, tc.key)))
		})
	}
}

func TestApplyFiltersPriceAscIsReverseOfDesc(t *testing.T) {
	catalog := sampleCatalog()
	asc := ids(ApplyFilters(catalog, domain.FilterCriteria{}, domain.SortPriceAsc))
	desc := ids(ApplyFilters(catalog, domain.FilterCriteria{}, domain.SortPriceDesc))

	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestApplyFiltersStableOnTies(t *testing.T) {
	products := []domain.Product{
		{ID: "first", Price: 10, Rating: 4},
		{ID: "second", Price: 10, Rating: 4},
		{ID: "third", Price: 5, Rating: 4},
	}

	assert.Equal(t, []string{"third", "first", "second"}, ids(ApplyFilters(products, domain.FilterCriteria{}, domain.SortPriceAsc)))
	assert.Equal(t, []string{"first", "second", "third"}, ids(ApplyFilters(products, domain.FilterCriteria{}, domain.SortRating)))
}

func TestApplyFiltersSubsetWithoutBrandOrRating(t *testing.T) {
	catalog := sampleCatalog()
	got := ApplyFilters(catalog, domain.FilterCriteria{MinPrice: ptr(10000), Query: "o"}, domain.SortPriceAsc)

	require.LessOrEqual(t, len(got), len(catalog))
	known := map[string]bool{}
	for _, p := range catalog {
		known[p.ID] = true
	}
	for i, p := range got {
		assert.True(t, known[p.ID])
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Price, p.Price)
		}
	}
}
