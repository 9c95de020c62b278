package usecase

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// Wishlist is the set of product ids the session's user saved. Like Cart, it
// only changes by re-reading the backend after a confirmed write.
type Wishlist struct {
	repo    domain.WishlistRepository
	session *domain.Session
	log     *logrus.Logger

	mu  sync.RWMutex
	ids []string
	set map[string]struct{}
}

func NewWishlist(repo domain.WishlistRepository, session *domain.Session, logger *logrus.Logger) *Wishlist {
	return &Wishlist{
		repo:    repo,
		session: session,
		log:     logger,
		ids:     []string{},
		set:     map[string]struct{}{},
	}
}

func (w *Wishlist) Load(ctx context.Context) error {
	if !w.session.Authenticated() {
		w.replace(nil)
		return nil
	}
	return w.refresh(ctx)
}

func (w *Wishlist) refresh(ctx context.Context) error {
	ids, err := w.repo.FetchWishlist(ctx, w.session.UserID)
	if err != nil {
		w.log.Errorf("Use Case: Failed to fetch wishlist for user %s: %v", w.session.UserID, err)
		return fmt.Errorf("could not load wishlist: %w", err)
	}
	w.replace(ids)
	return nil
}

func (w *Wishlist) replace(ids []string) {
	set := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		ordered = append(ordered, id)
	}

	w.mu.Lock()
	w.ids = ordered
	w.set = set
	w.mu.Unlock()
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.set[productID]
	return ok
}

// ProductIDs returns the saved ids in backend order.
func (w *Wishlist) ProductIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string{}, w.ids...)
}

func (w *Wishlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ids)
}

func (w *Wishlist) check(action, productID string) error {
	if !w.session.Authenticated() {
		w.log.Warnf("Use Case: Rejected wishlist %s for anonymous visitor", action)
		return fmt.Errorf("wishlist %s: %w", action, domain.ErrNotAuthenticated)
	}
	if productID == "" {
		return fmt.Errorf("product id cannot be empty: %w", domain.ErrValidation)
	}
	return nil
}

// Add saves productID. Adding a saved product succeeds without duplicating it.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	if err := w.check("add", productID); err != nil {
		return err
	}
	w.log.Infof("Use Case: Adding product %s to wishlist of user %s", productID, w.session.UserID)
	if err := w.repo.AddWishlistEntry(ctx, w.session.UserID, productID); err != nil {
		w.log.Errorf("Use Case: Failed to add product %s to wishlist: %v", productID, err)
		return fmt.Errorf("could not add product %s to wishlist: %w", productID, err)
	}
	return w.refresh(ctx)
}

// Remove drops productID. Removing an absent product succeeds.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	if err := w.check("remove", productID); err != nil {
		return err
	}
	w.log.Infof("Use Case: Removing product %s from wishlist of user %s", productID, w.session.UserID)
	if err := w.repo.RemoveWishlistEntry(ctx, w.session.UserID, productID); err != nil {
		w.log.Errorf("Use Case: Failed to remove product %s from wishlist: %v", productID, err)
		return fmt.Errorf("could not remove product %s from wishlist: %w", productID, err)
	}
	return w.refresh(ctx)
}

// Toggle adds productID when absent and removes it otherwise. It reports
// whether the product is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	if w.Contains(productID) {
		if err := w.Remove(ctx, productID); err != nil {
			return true, err
		}
	} else {
		if err := w.Add(ctx, productID); err != nil {
			return false, err
		}
	}
	return w.Contains(productID), nil
}

type WishlistUseCase interface {
	Open(ctx context.Context, session *domain.Session) (*Wishlist, error)
	// Products loads the saved products in wishlist order. Products that no
	// longer exist are skipped.
	Products(ctx context.Context, wishlist *Wishlist) ([]domain.Product, error)
}

type wishlistUseCase struct {
	repo        domain.WishlistRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewWishlistUseCase(repo domain.WishlistRepository, productRepo domain.ProductRepository, logger *logrus.Logger) WishlistUseCase {
	return &wishlistUseCase{
		repo:        repo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *wishlistUseCase) Open(ctx context.Context, session *domain.Session) (*Wishlist, error) {
	w := NewWishlist(uc.repo, session, uc.log)
	if err := w.Load(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (uc *wishlistUseCase) Products(ctx context.Context, wishlist *Wishlist) ([]domain.Product, error) {
	ids := wishlist.ProductIDs()
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	products, err := uc.productRepo.FetchProducts(ctx, domain.ProductQuery{IDs: ids})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to fetch %d wishlist products: %v", len(ids), err)
		return nil, fmt.Errorf("could not load wishlist products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.Normalize()
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	uc.log.Infof("Use Case: Hydrated %d of %d wishlist products", len(out), len(ids))
	return out, nil
}
