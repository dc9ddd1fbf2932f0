package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// InventoryService moves stock in and out. Every change is a single
// conditional update in the repository.
type InventoryService struct {
	repo     repositories.SweetRepository
	cache    cache.Cache
	events   *event.Dispatcher
	lowStock int
}

func NewInventoryService(repo repositories.SweetRepository, c cache.Cache, events *event.Dispatcher, lowStock int) *InventoryService {
	if c == nil {
		c = cache.Nop{}
	}
	return &InventoryService{repo: repo, cache: c, events: events, lowStock: lowStock}
}

// ParseQuantity converts a decoded quantity to a positive whole number.
func ParseQuantity(v *Number) (int, error) {
	if v == nil {
		return 0, ErrInvalidQuantity
	}
	n, ok := v.Int()
	if !ok || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// Purchase removes quantity units of a sweet and returns its new state.
func (s *InventoryService) Purchase(ctx context.Context, id string, quantity int) (models.Sweet, error) {
	if quantity <= 0 {
		metrics.InventoryOperations.WithLabelValues("purchase", "invalid").Inc()
		return models.Sweet{}, ErrInvalidQuantity
	}

	sweet, err := s.repo.Decrement(ctx, id, quantity)
	if err != nil {
		return models.Sweet{}, s.fail("purchase", "Error purchasing sweet", err)
	}
	s.succeeded(ctx, "purchase", EventPurchased, sweet, quantity)

	if sweet.Quantity <= s.lowStock {
		metrics.LowStockEvents.Inc()
		s.dispatch(ctx, event.Event{Name: EventLowStock, Payload: StockChange{Sweet: sweet, Quantity: quantity}})
	}
	return sweet, nil
}

// Restock adds quantity units of a sweet and returns its new state.
func (s *InventoryService) Restock(ctx context.Context, id string, quantity int) (models.Sweet, error) {
	if quantity <= 0 {
		metrics.InventoryOperations.WithLabelValues("restock", "invalid").Inc()
		return models.Sweet{}, ErrInvalidQuantity
	}

	sweet, err := s.repo.Increment(ctx, id, quantity)
	if err != nil {
		return models.Sweet{}, s.fail("restock", "Error restocking sweet", err)
	}
	s.succeeded(ctx, "restock", EventRestocked, sweet, quantity)
	return sweet, nil
}

func (s *InventoryService) fail(op, message string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		metrics.InventoryOperations.WithLabelValues(op, "not_found").Inc()
		return ErrSweetNotFound
	case errors.Is(err, repositories.ErrInsufficientStock):
		metrics.InventoryOperations.WithLabelValues(op, "insufficient_stock").Inc()
		return ErrInsufficientStock
	default:
		metrics.InventoryOperations.WithLabelValues(op, "error").Inc()
		return apperr.Wrap(apperr.Internal, message, err)
	}
}

func (s *InventoryService) succeeded(ctx context.Context, op, name string, sweet models.Sweet, quantity int) {
	metrics.InventoryOperations.WithLabelValues(op, "ok").Inc()
	metrics.InventoryUnits.WithLabelValues(op).Add(float64(quantity))
	invalidate(ctx, s.cache)
	s.dispatch(ctx, event.Event{Name: name, Payload: StockChange{Sweet: sweet, Quantity: quantity}})
}

func (s *InventoryService) dispatch(ctx context.Context, e event.Event) {
	if s.events != nil {
		s.events.Dispatch(ctx, e)
	}
}
