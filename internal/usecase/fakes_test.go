package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryBackend is an in-memory stand-in for the BaaS covering products,
// categories, cart lines and wishlist entries. failWith makes every call
// fail until cleared.
type memoryBackend struct {
	mu         sync.Mutex
	products   map[string]domain.Product
	order      []string
	categories []domain.Category
	lines      map[string]domain.CartLine
	lineSeq    int
	wishlist   map[string][]string
	failWith   error
	calls      int
}

func newMemoryBackend(products ...domain.Product) *memoryBackend {
	b := &memoryBackend{
		products: map[string]domain.Product{},
		lines:    map[string]domain.CartLine{},
		wishlist: map[string][]string{},
	}
	for _, p := range products {
		b.products[p.ID] = p
		b.order = append(b.order, p.ID)
	}
	return b
}

func (b *memoryBackend) enter() error {
	b.mu.Lock()
	b.calls++
	if b.failWith != nil {
		b.mu.Unlock()
		return b.failWith
	}
	return nil
}

func (b *memoryBackend) FetchProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range q.IDs {
		wanted[id] = true
	}
	out := []domain.Product{}
	for _, id := range b.order {
		p := b.products[id]
		if q.ActiveOnly && !p.IsActive {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *memoryBackend) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (b *memoryBackend) FetchCategories(context.Context) ([]domain.Category, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	return append([]domain.Category{}, b.categories...), nil
}

func (b *memoryBackend) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	for _, c := range b.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
}

func (b *memoryBackend) FetchCartLines(_ context.Context, userID string) ([]domain.CartLine, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	out := []domain.CartLine{}
	for _, l := range b.lines {
		if l.UserID == userID {
			l.Product = b.products[l.ProductID]
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *memoryBackend) FindCartLine(_ context.Context, userID, productID string) (*domain.CartLine, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if l.UserID == userID && l.ProductID == productID {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("cart line for product %s: %w", productID, domain.ErrNotFound)
}

func (b *memoryBackend) UpsertCartLine(_ context.Context, userID, productID string, quantity int) (*domain.CartLine, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if _, ok := b.products[productID]; !ok {
		return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	for id, l := range b.lines {
		if l.UserID == userID && l.ProductID == productID {
			l.Quantity = quantity
			b.lines[id] = l
			return &l, nil
		}
	}
	b.lineSeq++
	l := domain.CartLine{ID: fmt.Sprintf("line-%d", b.lineSeq), UserID: userID, ProductID: productID, Quantity: quantity}
	b.lines[l.ID] = l
	return &l, nil
}

func (b *memoryBackend) DeleteCartLine(_ context.Context, userID, lineID string) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.mu.Unlock()
	l, ok := b.lines[lineID]
	if !ok || l.UserID != userID {
		return fmt.Errorf("cart line %s: %w", lineID, domain.ErrNotFound)
	}
	delete(b.lines, lineID)
	return nil
}

func (b *memoryBackend) FetchWishlist(_ context.Context, userID string) ([]string, error) {
	if err := b.enter(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	return append([]string{}, b.wishlist[userID]...), nil
}

func (b *memoryBackend) AddWishlistEntry(_ context.Context, userID, productID string) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.mu.Unlock()
	for _, id := range b.wishlist[userID] {
		if id == productID {
			return nil
		}
	}
	b.wishlist[userID] = append(b.wishlist[userID], productID)
	return nil
}

func (b *memoryBackend) RemoveWishlistEntry(_ context.Context, userID, productID string) error {
	if err := b.enter(); err != nil {
		return err
	}
	defer b.mu.Unlock()
	kept := b.wishlist[userID][:0]
	for _, id := range b.wishlist[userID] {
		if id != productID {
			kept = append(kept, id)
		}
	}
	b.wishlist[userID] = kept
	return nil
}

func (b *memoryBackend) lineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
