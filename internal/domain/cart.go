package domain

import "context"

// CartLine is one product and its quantity in a user's cart. Product holds
// the snapshot joined at fetch time and is used for totals.
type CartLine struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

type CartRepository interface {
	FetchCartLines(ctx context.Context, userID string) ([]CartLine, error)
	// FindCartLine returns ErrNotFound when the user has no line for productID.
	FindCartLine(ctx context.Context, userID, productID string) (*CartLine, error)
	// UpsertCartLine sets the absolute quantity of the (user, product) line,
	// creating it when absent.
	UpsertCartLine(ctx context.Context, userID, productID string, quantity int) (*CartLine, error)
	DeleteCartLine(ctx context.Context, userID, lineID string) error
}

type WishlistRepository interface {
	FetchWishlist(ctx context.Context, userID string) ([]string, error)
	// AddWishlistEntry succeeds when the entry already exists.
	AddWishlistEntry(ctx context.Context, userID, productID string) error
	// RemoveWishlistEntry succeeds when the entry is absent.
	RemoveWishlistEntry(ctx context.Context, userID, productID string) error
}
