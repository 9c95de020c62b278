package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `
        p.id, p.name, p.brand, p.description, p.image_url,
        p.price, COALESCE(p.original_price, 0), p.discount_percentage,
        p.rating, p.review_count, p.stock_quantity,
        COALESCE(p.category_id, ''), COALESCE(c.name, ''), p.is_active, p.created_at`

const productFrom = `
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Description,
		&p.ImageURL,
		&p.Price,
		&p.OriginalPrice,
		&p.DiscountPercentage,
		&p.Rating,
		&p.ReviewCount,
		&p.StockQuantity,
		&p.CategoryID,
		&p.CategoryName,
		&p.IsActive,
		&p.CreatedAt,
	)
}

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) FetchProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	if q.ActiveOnly {
		where = append(where, "p.is_active = TRUE")
	}
	if q.CategoryID != "" {
		args = append(args, q.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if len(q.IDs) > 0 {
		args = append(args, pq.Array(q.IDs))
		where = append(where, fmt.Sprintf("p.id = ANY($%d)", len(args)))
	}

	query := "SELECT" + productColumns + productFrom
	if len(where) > 0 {
		query += "\n        WHERE " + strings.Join(where, " AND ")
	}
	query += "\n        ORDER BY p.created_at DESC, p.id"

	r.log.Debugf("Repository: Fetching products (category=%q, active_only=%t, ids=%d)", q.CategoryID, q.ActiveOnly, len(q.IDs))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to query products: %v", err)
		return nil, translate(err, "products")
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, translate(err, "product row")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error iterating product rows: %v", err)
		return nil, translate(err, "products")
	}

	r.log.Infof("Repository: Fetched %d products", len(products))
	return products, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := "SELECT" + productColumns + productFrom + "\n        WHERE p.id = $1"

	product := &domain.Product{}
	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), product); err != nil {
		r.log.Warnf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, translate(err, fmt.Sprintf("product %s", id))
	}
	r.log.Infof("Repository: Product retrieved successfully with ID: %s", id)
	return product, nil
}
