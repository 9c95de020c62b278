package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) FetchCartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	query := `
        SELECT ct.id, ct.user_id, ct.product_id, ct.quantity,` + productColumns + `
        FROM cart ct
        JOIN products p ON p.id = ct.product_id
        LEFT JOIN categories c ON c.id = p.category_id
        WHERE ct.user_id = $1
        ORDER BY ct.created_at, ct.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to query cart of user %s: %v", userID, err)
		return nil, translate(err, "cart")
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		p := &l.Product
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity,
			&p.ID, &p.Name, &p.Brand, &p.Description, &p.ImageURL,
			&p.Price, &p.OriginalPrice, &p.DiscountPercentage,
			&p.Rating, &p.ReviewCount, &p.StockQuantity,
			&p.CategoryID, &p.CategoryName, &p.IsActive, &p.CreatedAt,
		); err != nil {
			r.log.Errorf("Repository: Failed to scan cart row: %v", err)
			return nil, translate(err, "cart row")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "cart")
	}
	r.log.Debugf("Repository: Fetched %d cart lines for user %s", len(lines), userID)
	return lines, nil
}

func (r *postgresCartRepository) FindCartLine(ctx context.Context, userID, productID string) (*domain.CartLine, error) {
	query := `SELECT id, user_id, product_id, quantity FROM cart WHERE user_id = $1 AND product_id = $2`
	l := &domain.CartLine{}
	if err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity); err != nil {
		return nil, translate(err, fmt.Sprintf("cart line for product %s", productID))
	}
	return l, nil
}

func (r *postgresCartRepository) UpsertCartLine(ctx context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("cart quantity must be at least 1: %w", domain.ErrValidation)
	}
	query := `
        INSERT INTO cart (user_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
        RETURNING id, quantity`

	l := &domain.CartLine{UserID: userID, ProductID: productID}
	if err := r.db.QueryRowContext(ctx, query, userID, productID, quantity).Scan(&l.ID, &l.Quantity); err != nil {
		r.log.Errorf("Repository: Failed to upsert cart line (user %s, product %s): %v", userID, productID, err)
		return nil, translate(err, fmt.Sprintf("cart line for product %s", productID))
	}
	r.log.Infof("Repository: Cart line %s set to quantity %d", l.ID, l.Quantity)
	return l, nil
}

func (r *postgresCartRepository) DeleteCartLine(ctx context.Context, userID, lineID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete cart line %s: %v", lineID, err)
		return translate(err, fmt.Sprintf("cart line %s", lineID))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return translate(err, fmt.Sprintf("cart line %s", lineID))
	}
	if affected == 0 {
		r.log.Warnf("Repository: Cart line %s not found for user %s", lineID, userID)
		return fmt.Errorf("cart line %s not found: %w", lineID, domain.ErrNotFound)
	}
	r.log.Infof("Repository: Cart line %s deleted", lineID)
	return nil
}
