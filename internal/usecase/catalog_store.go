package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrLoadSuperseded is returned by CatalogStore.Load when a newer load
// started before this one finished. The older result is discarded.
var ErrLoadSuperseded = errors.New("catalog load superseded by a newer load")

// Facets summarises the loaded products for the filter panel.
type Facets struct {
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
	InStock    int      `json:"in_stock"`
	OutOfStock int      `json:"out_of_stock"`
	Brands     []string `json:"brands"`
}

type viewMemo struct {
	key        string
	sort       domain.SortKey
	generation uint64
	result     []domain.Product
}

// CatalogStore holds the products and categories fetched for one view.
// Only the most recently started Load may publish its result.
type CatalogStore struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger

	mu         sync.RWMutex
	ticket     uint64
	generation uint64
	products   []domain.Product
	categories []domain.Category
	memo       *viewMemo
}

func NewCatalogStore(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, logger *logrus.Logger) *CatalogStore {
	return &CatalogStore{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		log:          logger,
		products:     []domain.Product{},
		categories:   []domain.Category{},
	}
}

// Load fetches categories and the products matching q and replaces the
// store contents. A load whose context ends first, or which is overtaken by
// a later Load, leaves the store untouched.
func (s *CatalogStore) Load(ctx context.Context, q domain.ProductQuery) error {
	s.mu.Lock()
	s.ticket++
	ticket := s.ticket
	s.mu.Unlock()

	categories, err := s.categoryRepo.FetchCategories(ctx)
	if err != nil {
		s.log.Errorf("Use Case: Failed to fetch categories: %v", err)
		return fmt.Errorf("could not load categories: %w", err)
	}
	products, err := s.productRepo.FetchProducts(ctx, q)
	if err != nil {
		s.log.Errorf("Use Case: Failed to fetch products (category=%q): %v", q.CategoryID, err)
		return fmt.Errorf("could not load products: %w", err)
	}
	if err := ctx.Err(); err != nil {
		s.log.Warnf("Use Case: Discarding catalog load %d: %v", ticket, err)
		return err
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	loaded := make([]domain.Product, 0, len(products))
	for _, p := range products {
		p.Normalize()
		if p.CategoryName == "" && p.CategoryID != "" {
			p.CategoryName = names[p.CategoryID]
		}
		loaded = append(loaded, p)
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.ticket {
		s.log.Warnf("Use Case: Discarding catalog load %d, load %d is newer", ticket, s.ticket)
		return ErrLoadSuperseded
	}
	s.products = loaded
	s.categories = categories
	s.generation++
	s.memo = nil
	s.log.Infof("Use Case: Catalog loaded %d products, %d categories (generation %d)", len(loaded), len(categories), s.generation)
	return nil
}

func (s *CatalogStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *CatalogStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.products...)
}

func (s *CatalogStore) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...)
}

// View filters and sorts the loaded products. The last result is memoized
// per (criteria, sort key, generation).
func (s *CatalogStore) View(criteria domain.FilterCriteria, key domain.SortKey) ([]domain.Product, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	ck := criteria.Key()

	s.mu.RLock()
	if m := s.memo; m != nil && m.key == ck && m.sort == key && m.generation == s.generation {
		out := append([]domain.Product{}, m.result...)
		s.mu.RUnlock()
		return out, nil
	}
	products, generation := s.products, s.generation
	s.mu.RUnlock()

	result := ApplyFilters(products, criteria, key)

	s.mu.Lock()
	if generation == s.generation {
		s.memo = &viewMemo{key: ck, sort: key, generation: generation, result: result}
	}
	s.mu.Unlock()
	return append([]domain.Product{}, result...), nil
}

// Brands lists the distinct brands of the loaded products, sorted by name.
func (s *CatalogStore) Brands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return brandsOf(s.products)
}

func (s *CatalogStore) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := Facets{Brands: brandsOf(s.products)}
	for i, p := range s.products {
		if i == 0 || p.Price < f.MinPrice {
			f.MinPrice = p.Price
		}
		if p.Price > f.MaxPrice {
			f.MaxPrice = p.Price
		}
		if p.InStock() {
			f.InStock++
		} else {
			f.OutOfStock++
		}
	}
	return f
}

func brandsOf(products []domain.Product) []string {
	seen := map[string]bool{}
	brands := []string{}
	for _, p := range products {
		b := strings.TrimSpace(p.Brand)
		if b == "" || seen[strings.ToLower(b)] {
			continue
		}
		seen[strings.ToLower(b)] = true
		brands = append(brands, b)
	}
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(brands, func(i, j int) bool {
		return c.CompareString(brands[i], brands[j]) < 0
	})
	return brands
}
