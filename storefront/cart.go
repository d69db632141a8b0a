package storefront

import (
	"github.com/google/uuid"

	"github.com/judyrop/storefront/catalog"
	"github.com/judyrop/storefront/checkout"
)

// CartItem is one cart line, priced at the moment it was added.
type CartItem struct {
	ProductID  uuid.UUID `json:"productId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	ImageURL   *string   `json:"imageUrl"`
	Quantity   int       `json:"quantity"`
}

func (i CartItem) LineTotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// Cart is the shopping cart persisted under CartKey.
type Cart struct {
	store *LocalStore
	items []CartItem
}

// LoadCart reads the cart from local state. A missing cart is empty.
func LoadCart(s *LocalStore) (*Cart, error) {
	c := &Cart{store: s}
	if _, err := s.Get(CartKey, &c.items); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cart) Save() error {
	items := c.items
	if items == nil {
		items = []CartItem{}
	}
	return c.store.Set(CartKey, items)
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) index(id uuid.UUID) int {
	for i, it := range c.items {
		if it.ProductID == id {
			return i
		}
	}
	return -1
}

// Add puts qty units of p in the cart, merging with an existing line.
// A non-positive qty adds one unit.
func (c *Cart) Add(p catalog.ProductView, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity += qty
	} else {
		c.items = append(c.items, CartItem{
			ProductID:  p.ID,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			ImageURL:   p.ImageURL,
			Quantity:   qty,
		})
	}
	return c.Save()
}

// SetQuantity replaces a line's quantity; qty <= 0 removes the line.
func (c *Cart) SetQuantity(id uuid.UUID, qty int) error {
	if qty <= 0 {
		return c.Remove(id)
	}
	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = qty
	return c.Save()
}

func (c *Cart) Remove(id uuid.UUID) error {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.Save()
}

func (c *Cart) Clear() error {
	c.items = nil
	return c.Save()
}

func (c *Cart) TotalCents() int64 {
	lines := make([]checkout.Line, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, checkout.Line{PriceCents: it.PriceCents, Quantity: it.Quantity})
	}
	return checkout.TotalCents(lines)
}
