package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductNormalize(t *testing.T) {
	p := Product{Price: 750, OriginalPrice: 1000}
	p.Normalize()
	assert.Equal(t, 25, p.DiscountPercentage)
	assert.True(t, p.PricingConsistent())

	noOriginal := Product{Price: 120}
	noOriginal.Normalize()
	assert.Equal(t, 120.0, noOriginal.OriginalPrice)
	assert.Equal(t, 0, noOriginal.DiscountPercentage)

	stored := Product{Price: 50, OriginalPrice: 100, DiscountPercentage: 40}
	stored.Normalize()
	assert.Equal(t, 40, stored.DiscountPercentage, "stored discount is kept")
	assert.False(t, stored.PricingConsistent())
}

func TestProductPricingConsistent(t *testing.T) {
	assert.False(t, Product{Price: 200, OriginalPrice: 100}.PricingConsistent())
	assert.True(t, Product{Price: 99, OriginalPrice: 0}.PricingConsistent())
	assert.True(t, Product{Price: 666, OriginalPrice: 1000, DiscountPercentage: 33}.PricingConsistent())
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"":           SortRelevance,
		"popularity": SortPopularity,
		"price-low":  SortPriceAsc,
		"price_high": SortPriceDesc,
		"Rating":     SortRating,
		"discount":   SortDiscount,
		"name":       SortName,
		"newest":     SortNewest,
	}
	for in, want := range cases {
		got, err := ParseSortKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortKey("cheapest-first")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFilterCriteriaKeyIgnoresSetOrder(t *testing.T) {
	a := FilterCriteria{Brands: []string{"Sony", "apple"}, Ratings: []float64{4, 3}, Query: " Phone "}
	b := FilterCriteria{Brands: []string{"Apple", "sony"}, Ratings: []float64{3, 4}, Query: "phone"}
	assert.Equal(t, a.Key(), b.Key())

	limit := 100.0
	c := FilterCriteria{MaxPrice: &limit}
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, []string{"Sony", "apple"}, a.Brands, "Key must not reorder the caller's slice")
}

func TestFilterCriteriaValidate(t *testing.T) {
	lo, hi, neg := 500.0, 100.0, -1.0
	assert.ErrorIs(t, FilterCriteria{MinPrice: &lo, MaxPrice: &hi}.Validate(), ErrValidation)
	assert.ErrorIs(t, FilterCriteria{MinPrice: &neg}.Validate(), ErrValidation)
	assert.ErrorIs(t, FilterCriteria{Ratings: []float64{6}}.Validate(), ErrValidation)
	assert.NoError(t, FilterCriteria{MinPrice: &hi, MaxPrice: &lo}.Validate())

	nan, inf := math.NaN(), math.Inf(1)
	assert.ErrorIs(t, FilterCriteria{MinPrice: &nan}.Validate(), ErrValidation)
	assert.ErrorIs(t, FilterCriteria{MaxPrice: &inf}.Validate(), ErrValidation)
	assert.ErrorIs(t, FilterCriteria{Ratings: []float64{4, nan}}.Validate(), ErrValidation)
	assert.ErrorIs(t, FilterCriteria{Ratings: []float64{math.Inf(-1)}}.Validate(), ErrValidation)
}

func TestSessionAuthenticated(t *testing.T) {
	var anon *Session
	assert.False(t, anon.Authenticated())
	assert.False(t, (&Session{}).Authenticated())
	assert.True(t, (&Session{UserID: "u1"}).Authenticated())
}
