package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresWishlistRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresWishlistRepository(db *sql.DB, logger *logrus.Logger) domain.WishlistRepository {
	return &postgresWishlistRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresWishlistRepository) FetchWishlist(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product_id FROM wishlist WHERE user_id = $1 ORDER BY created_at, product_id`, userID)
	if err != nil {
		r.log.Errorf("Repository: Failed to query wishlist of user %s: %v", userID, err)
		return nil, translate(err, "wishlist")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "wishlist row")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "wishlist")
	}
	return ids, nil
}

func (r *postgresWishlistRepository) AddWishlistEntry(ctx context.Context, userID, productID string) error {
	query := `
        INSERT INTO wishlist (user_id, product_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, product_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		r.log.Errorf("Repository: Failed to add product %s to wishlist of user %s: %v", productID, userID, err)
		return translate(err, fmt.Sprintf("wishlist entry for product %s", productID))
	}
	return nil
}

func (r *postgresWishlistRepository) RemoveWishlistEntry(ctx context.Context, userID, productID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		r.log.Errorf("Repository: Failed to remove product %s from wishlist of user %s: %v", productID, userID, err)
		return translate(err, fmt.Sprintf("wishlist entry for product %s", productID))
	}
	return nil
}
