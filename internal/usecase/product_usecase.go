package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// BrowseRequest describes one product listing view.
type BrowseRequest struct {
	CategoryID      string
	Criteria        domain.FilterCriteria
	Sort            domain.SortKey
	IncludeInactive bool
}

type ProductUseCase interface {
	Browse(ctx context.Context, req BrowseRequest) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Facets(ctx context.Context, categoryID string) (Facets, error)
	// Featured returns the most popular active products. A zero limit means
	// DefaultFeaturedLimit.
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
}

const (
	DefaultFeaturedLimit = 8
	MaxFeaturedLimit     = 50
)

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		log:          logger,
	}
}

func (uc *productUseCase) Browse(ctx context.Context, req BrowseRequest) ([]domain.Product, error) {
	if err := req.Criteria.Validate(); err != nil {
		uc.log.Warnf("Use Case: Rejected product filter %q: %v", req.Criteria.Key(), err)
		return nil, err
	}

	store := NewCatalogStore(uc.productRepo, uc.categoryRepo, uc.log)
	q := domain.ProductQuery{CategoryID: req.CategoryID, ActiveOnly: !req.IncludeInactive}
	if err := store.Load(ctx, q); err != nil {
		return nil, err
	}

	products, err := store.View(req.Criteria, req.Sort)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Browse category=%q sort=%q returned %d products", req.CategoryID, req.Sort, len(products))
	return products, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		uc.log.Warn("Use Case: Attempted to get product with empty ID")
		return nil, fmt.Errorf("product id cannot be empty: %w", domain.ErrValidation)
	}

	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %s: %v", id, err)
		return nil, err
	}
	product.Normalize()

	if product.CategoryName == "" && product.CategoryID != "" {
		category, err := uc.categoryRepo.GetCategoryByID(ctx, product.CategoryID)
		switch {
		case err == nil:
			product.CategoryName = category.Name
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warnf("Use Case: Product %s references missing category %s", id, product.CategoryID)
		default:
			return nil, fmt.Errorf("could not load category of product %s: %w", id, err)
		}
	}
	return product, nil
}

func (uc *productUseCase) Facets(ctx context.Context, categoryID string) (Facets, error) {
	store := NewCatalogStore(uc.productRepo, uc.categoryRepo, uc.log)
	if err := store.Load(ctx, domain.ProductQuery{CategoryID: categoryID, ActiveOnly: true}); err != nil {
		return Facets{}, err
	}
	return store.Facets(), nil
}

func (uc *productUseCase) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit == 0 {
		limit = DefaultFeaturedLimit
	}
	if limit < 0 || limit > MaxFeaturedLimit {
		return nil, fmt.Errorf("featured limit must be between 1 and %d, got %d: %w", MaxFeaturedLimit, limit, domain.ErrValidation)
	}

	store := NewCatalogStore(uc.productRepo, uc.categoryRepo, uc.log)
	if err := store.Load(ctx, domain.ProductQuery{ActiveOnly: true}); err != nil {
		return nil, err
	}
	products := ApplyFilters(store.Products(), domain.FilterCriteria{}, domain.SortPopularity)
	if len(products) > limit {
		products = products[:limit]
	}
	uc.log.Infof("Use Case: Featured %d products (limit %d)", len(products), limit)
	return products, nil
}
