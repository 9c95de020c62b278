package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, icon FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, translate(err, "categories")
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			r.log.Errorf("Repository: Failed to scan category row: %v", err)
			return nil, translate(err, "category row")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "categories")
	}
	return categories, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, icon FROM categories WHERE id = $1`
	c := &domain.Category{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Icon); err != nil {
		r.log.Warnf("Repository: Category with ID %s not found: %v", id, err)
		return nil, translate(err, fmt.Sprintf("category %s", id))
	}
	return c, nil
}
