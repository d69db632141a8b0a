// Package orders places and reads back customer orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/judyrop/storefront/checkout"
	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/store"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrUnknownProduct  = errors.New("product not found or inactive")
	ErrInvalidPayment  = errors.New("invalid payment details")
	ErrNotFound        = errors.New("order not found")
)

const maxQuantity = 1000

type ItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type PlaceRequest struct {
	Items         []ItemRequest `json:"items"`
	PaymentMethod string        `json:"paymentMethod"`
	CardBrand     *string       `json:"cardBrand"`
	CardLast4     *string       `json:"cardLast4"`
}

// Recorder observes placed orders.
type Recorder interface {
	OrderPlaced(paymentMethod string, totalCents int64)
}

type Service struct {
	store    *store.Store
	recorder Recorder
	now      func() time.Time
}

func NewService(s *store.Store, recorder Recorder) *Service {
	return &Service{store: s, recorder: recorder, now: func() time.Time { return time.Now().UTC() }}
}

// Place prices the items from the catalog and stores the order in one
// transaction. Client-sent prices are never trusted.
func (s *Service) Place(ctx context.Context, userID uuid.UUID, req PlaceRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := validatePayment(req); err != nil {
		return nil, err
	}

	// Merge repeated products, keeping first-seen order.
	var ids []uuid.UUID
	quantities := make(map[uuid.UUID]int, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
		if quantities[it.ProductID] > maxQuantity {
			return nil, ErrInvalidQuantity
		}
	}

	order := &models.Order{
		UserID:        userID,
		CreatedAt:     s.now(),
		PaymentMethod: req.PaymentMethod,
	}
	if req.PaymentMethod == models.PaymentCard {
		order.CardBrand = req.CardBrand
		order.CardLast4 = req.CardLast4
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		products, err := tx.Products.FindActiveByIDs(ctx, ids)
		if err != nil {
			return err
		}
		lines := make([]checkout.Line, 0, len(ids))
		for pos, id := range ids {
			p, ok := products[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
			}
			q := quantities[id]
			order.Items = append(order.Items, models.OrderItem{
				Position:       pos,
				ProductID:      p.ID,
				ProductName:    p.Name,
				UnitPriceCents: p.PriceCents,
				Quantity:       q,
			})
			lines = append(lines, checkout.Line{PriceCents: p.PriceCents, Quantity: q})
		}
		order.TotalCents = checkout.TotalCents(lines)
		return tx.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.OrderPlaced(order.PaymentMethod, order.TotalCents)
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.store.Orders.ListByUser(ctx, userID)
}

// Get hides other users' orders behind ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders.FindForUser(ctx, orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return order, err
}

func validatePayment(req PlaceRequest) error {
	switch req.PaymentMethod {
	case models.PaymentCash:
		if req.CardBrand != nil || req.CardLast4 != nil {
			return fmt.Errorf("%w: card details are not accepted for cash orders", ErrInvalidPayment)
		}
	case models.PaymentCard:
		if req.CardBrand != nil && !checkout.IsKnownBrand(*req.CardBrand) {
			return fmt.Errorf("%w: unknown card brand %q", ErrInvalidPayment, *req.CardBrand)
		}
		if req.CardLast4 != nil {
			last4 := *req.CardLast4
			if len(last4) != 4 || checkout.DigitsOnly(last4) != last4 {
				return fmt.Errorf("%w: cardLast4 must be exactly 4 digits", ErrInvalidPayment)
			}
		}
	default:
		return fmt.Errorf("%w: paymentMethod must be Card or Cash", ErrInvalidPayment)
	}
	return nil
}
