package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Cart aggregates the line items of the session's user. Every mutation is
// written to the backend first and the lines are then re-read, so the
// in-memory state only ever holds a backend snapshot.
type Cart struct {
	repo    domain.CartRepository
	session *domain.Session
	pricing Pricing
	log     *logrus.Logger

	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewCart(repo domain.CartRepository, session *domain.Session, pricing Pricing, logger *logrus.Logger) *Cart {
	return &Cart{
		repo:    repo,
		session: session,
		pricing: pricing,
		log:     logger,
		lines:   []domain.CartLine{},
	}
}

// Load replaces the lines with the backend's current state. An anonymous
// cart is always empty.
func (c *Cart) Load(ctx context.Context) error {
	if !c.session.Authenticated() {
		c.mu.Lock()
		c.lines = []domain.CartLine{}
		c.mu.Unlock()
		return nil
	}
	return c.refresh(ctx)
}

func (c *Cart) refresh(ctx context.Context) error {
	lines, err := c.repo.FetchCartLines(ctx, c.session.UserID)
	if err != nil {
		c.log.Errorf("Use Case: Failed to fetch cart lines for user %s: %v", c.session.UserID, err)
		return fmt.Errorf("could not load cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}

	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()
	c.log.Debugf("Use Case: Cart refreshed for user %s (%d lines)", c.session.UserID, len(lines))
	return nil
}

func (c *Cart) requireSession(action string) error {
	if !c.session.Authenticated() {
		c.log.Warnf("Use Case: Rejected cart %s for anonymous visitor", action)
		return fmt.Errorf("cart %s: %w", action, domain.ErrNotAuthenticated)
	}
	return nil
}

// AddItem puts quantity units of productID in the cart. An existing line for
// the product is incremented instead of duplicated.
func (c *Cart) AddItem(ctx context.Context, productID string, quantity int) error {
	if err := c.requireSession("add"); err != nil {
		return err
	}
	if productID == "" {
		return fmt.Errorf("product id cannot be empty: %w", domain.ErrValidation)
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d: %w", quantity, domain.ErrValidation)
	}

	target := quantity
	existing, err := c.repo.FindCartLine(ctx, c.session.UserID, productID)
	switch {
	case err == nil:
		target = existing.Quantity + quantity
	case errors.Is(err, domain.ErrNotFound):
	default:
		c.log.Errorf("Use Case: Failed to look up cart line for product %s: %v", productID, err)
		return fmt.Errorf("could not add product %s to cart: %w", productID, err)
	}

	c.log.Infof("Use Case: Setting product %s quantity to %d for user %s", productID, target, c.session.UserID)
	if _, err := c.repo.UpsertCartLine(ctx, c.session.UserID, productID, target); err != nil {
		c.log.Errorf("Use Case: Failed to upsert cart line for product %s: %v", productID, err)
		return fmt.Errorf("could not add product %s to cart: %w", productID, err)
	}
	return c.refresh(ctx)
}

// SetQuantity changes the quantity of a line. Zero removes the line.
func (c *Cart) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	if err := c.requireSession("update"); err != nil {
		return err
	}
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative, got %d: %w", quantity, domain.ErrValidation)
	}
	if quantity == 0 {
		return c.RemoveItem(ctx, lineID)
	}

	line, ok := c.line(lineID)
	if !ok {
		c.log.Warnf("Use Case: Cart line %s not found for user %s", lineID, c.session.UserID)
		return fmt.Errorf("cart line %s: %w", lineID, domain.ErrNotFound)
	}

	c.log.Infof("Use Case: Updating cart line %s quantity %d -> %d", lineID, line.Quantity, quantity)
	if _, err := c.repo.UpsertCartLine(ctx, c.session.UserID, line.ProductID, quantity); err != nil {
		c.log.Errorf("Use Case: Failed to update cart line %s: %v", lineID, err)
		return fmt.Errorf("could not update cart line %s: %w", lineID, err)
	}
	return c.refresh(ctx)
}

func (c *Cart) RemoveItem(ctx context.Context, lineID string) error {
	if err := c.requireSession("remove"); err != nil {
		return err
	}
	if lineID == "" {
		return fmt.Errorf("cart line id cannot be empty: %w", domain.ErrValidation)
	}

	c.log.Infof("Use Case: Removing cart line %s for user %s", lineID, c.session.UserID)
	if err := c.repo.DeleteCartLine(ctx, c.session.UserID, lineID); err != nil {
		c.log.Warnf("Use Case: Failed to remove cart line %s: %v", lineID, err)
		return fmt.Errorf("could not remove cart line %s: %w", lineID, err)
	}
	return c.refresh(ctx)
}

func (c *Cart) line(lineID string) (domain.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.CartLine{}, c.lines...)
}

func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of price x quantity. Original prices are ignored.
func (c *Cart) TotalPrice() decimal.Decimal {
	return c.Summary().Subtotal
}

func (c *Cart) Summary() CartSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pricing.Summarize(c.lines)
}

type CartUseCase interface {
	// Open returns the session's cart loaded from the backend.
	Open(ctx context.Context, session *domain.Session) (*Cart, error)
}

type cartUseCase struct {
	repo    domain.CartRepository
	pricing Pricing
	log     *logrus.Logger
}

func NewCartUseCase(repo domain.CartRepository, pricing Pricing, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		repo:    repo,
		pricing: pricing,
		log:     logger,
	}
}

func (uc *cartUseCase) Open(ctx context.Context, session *domain.Session) (*Cart, error) {
	cart := NewCart(uc.repo, session, uc.pricing, uc.log)
	if err := cart.Load(ctx); err != nil {
		return nil, err
	}
	return cart, nil
}
