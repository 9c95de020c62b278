package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	// CategoryProducts returns the category with its active products, filtered
	// and sorted like a regular listing. Without a sort key the products are
	// ordered by popularity.
	CategoryProducts(ctx context.Context, id string, criteria domain.FilterCriteria, key domain.SortKey) (*domain.Category, []domain.Product, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	products     ProductUseCase
	log          *logrus.Logger
}

func NewCategoryUseCase(cRepo domain.CategoryRepository, products ProductUseCase, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: cRepo,
		products:     products,
		log:          logger,
	}
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := uc.categoryRepo.FetchCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	uc.log.Infof("Use Case: Listed %d categories", len(categories))
	return categories, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		uc.log.Warn("Use Case: Attempted to get category with empty ID")
		return nil, fmt.Errorf("category id cannot be empty: %w", domain.ErrValidation)
	}
	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %s: %v", id, err)
		return nil, err
	}
	return category, nil
}

func (uc *categoryUseCase) CategoryProducts(ctx context.Context, id string, criteria domain.FilterCriteria, key domain.SortKey) (*domain.Category, []domain.Product, error) {
	category, err := uc.GetCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if key == domain.SortRelevance {
		key = domain.SortPopularity
	}
	products, err := uc.products.Browse(ctx, BrowseRequest{CategoryID: category.ID, Criteria: criteria, Sort: key})
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}
