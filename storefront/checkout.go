package storefront

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/judyrop/storefront/checkout"
	"github.com/judyrop/storefront/orders"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrEmptyCart     = errors.New("your cart is empty")
)

const loginRequiredMessage = "You must be logged in to place an order. Please log in and try again."

// OrderSnapshot is the confirmation record kept under LastOrderKey.
type OrderSnapshot struct {
	OrderID       uuid.UUID        `json:"orderId"`
	CreatedAt     time.Time        `json:"createdAt"`
	TotalCents    int64            `json:"totalCents"`
	Items         []CartItem       `json:"items"`
	Address       checkout.Address `json:"address"`
	PaymentMethod string           `json:"paymentMethod"`
}

// Checkout validates form, places the order for the cart contents, stores
// the confirmation snapshot and clears the cart. Form errors come back as
// *checkout.ValidationError.
func Checkout(ctx context.Context, sess *Session, cart *Cart, form checkout.Form) (uuid.UUID, error) {
	if sess.Token() == "" {
		return uuid.Nil, ErrLoginRequired
	}
	if cart.IsEmpty() {
		return uuid.Nil, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return uuid.Nil, err
	}

	items := cart.Items()
	total := cart.TotalCents()
	payment := form.PaymentDetails()
	req := orders.PlaceRequest{
		Items:         make([]orders.ItemRequest, 0, len(items)),
		PaymentMethod: payment.PaymentMethod,
		CardBrand:     payment.CardBrand,
		CardLast4:     payment.CardLast4,
	}
	for _, it := range items {
		req.Items = append(req.Items, orders.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	orderID, err := sess.Client().PlaceOrder(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}

	snapshot := OrderSnapshot{
		OrderID:       orderID,
		CreatedAt:     time.Now().UTC(),
		TotalCents:    total,
		Items:         items,
		Address:       form.Address,
		PaymentMethod: payment.PaymentMethod,
	}
	if err := cart.store.Set(LastOrderKey, snapshot); err != nil {
		return orderID, err
	}
	if err := cart.Clear(); err != nil {
		return orderID, err
	}
	return orderID, nil
}

// LastOrder returns the most recent confirmation snapshot, or nil.
func LastOrder(s *LocalStore) (*OrderSnapshot, error) {
	var snap OrderSnapshot
	ok, err := s.Get(LastOrderKey, &snap)
	if err != nil || !ok {
		return nil, err
	}
	return &snap, nil
}

// FriendlyError turns authentication failures into a login prompt and
// leaves every other message as is.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if errors.Is(err, ErrLoginRequired) || strings.Contains(msg, "401") || strings.Contains(strings.ToLower(msg), "auth") {
		return loginRequiredMessage
	}
	return msg
}
