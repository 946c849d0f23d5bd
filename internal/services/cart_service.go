package services

import (
	"context"
	"fmt"
	"time"

	"evspare/internal/cart"
	"evspare/internal/metrics"
	"evspare/internal/models"
	"evspare/internal/repositories"
)

// CartService keeps one cart per session.
type CartService struct {
	store    cart.Store
	products repositories.ProductRepository
	now      func() time.Time
}

func NewCartService(store cart.Store, products repositories.ProductRepository) *CartService {
	return &CartService{store: store, products: products, now: time.Now}
}

// Get returns the session's cart; a new session has an empty one.
func (s *CartService) Get(ctx context.Context, sess *models.Session) (*cart.Cart, error) {
	if err := requireActor(sess); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, sess.ID)
}

// Add puts qty units of an active product in the cart.
func (s *CartService) Add(ctx context.Context, sess *models.Session, productID string, qty int) (*cart.Cart, error) {
	if err := requireActor(sess); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, repoErr(err, "product "+productID)
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	c, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	inCart := 0
	for _, it := range c.Lines {
		if it.ProductID == productID {
			inCart = it.Quantity
		}
	}
	if inCart+qty > p.StockQuantity {
		return nil, fmt.Errorf("%w: %s (available %d)", ErrInsufficientStock, p.Name, p.StockQuantity)
	}

	c.AddQuantity(p, qty)
	if err := s.save(ctx, sess, c); err != nil {
		return nil, err
	}
	metrics.CartOperationsTotal.WithLabelValues("add").Inc()
	return c, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, sess *models.Session, productID string, qty int) (*cart.Cart, error) {
	if err := requireActor(sess); err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if qty > 0 {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, repoErr(err, "product "+productID)
		}
		if qty > p.StockQuantity {
			return nil, fmt.Errorf("%w: %s (available %d)", ErrInsufficientStock, p.Name, p.StockQuantity)
		}
	}
	if !c.UpdateQuantity(productID, qty) {
		return nil, fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	if err := s.save(ctx, sess, c); err != nil {
		return nil, err
	}
	metrics.CartOperationsTotal.WithLabelValues("update").Inc()
	return c, nil
}

// Remove drops a product from the cart.
func (s *CartService) Remove(ctx context.Context, sess *models.Session, productID string) (*cart.Cart, error) {
	if err := requireActor(sess); err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if !c.Remove(productID) {
		return nil, fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	if err := s.save(ctx, sess, c); err != nil {
		return nil, err
	}
	metrics.CartOperationsTotal.WithLabelValues("remove").Inc()
	return c, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sess *models.Session) error {
	if err := requireActor(sess); err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("clear").Inc()
	return s.store.Delete(ctx, sess.ID)
}

// save keeps the cart no longer than the session that owns it.
func (s *CartService) save(ctx context.Context, sess *models.Session, c *cart.Cart) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrNotAuthenticated
	}
	return s.store.Save(ctx, sess.ID, c, ttl)
}
