package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"

	PaymentCard = "Card"
	PaymentCash = "Cash"
)

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:200;not null" json:"name"`
	Slug string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

// Product prices are integer cents.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description *string   `json:"description"`
	PriceCents  int64     `gorm:"not null" json:"priceCents"`
	ImageURL    *string   `gorm:"column:image_url" json:"imageUrl"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"categoryId"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Order keeps only the card brand and last four digits, never the full number.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"userId"`
	User          *User       `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	TotalCents    int64       `gorm:"not null" json:"totalCents"`
	CreatedAt     time.Time   `gorm:"index" json:"createdAt"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	PaymentMethod string      `gorm:"size:16;not null" json:"paymentMethod"`
	CardBrand     *string     `gorm:"size:32" json:"cardBrand"`
	CardLast4     *string     `gorm:"size:4;column:card_last4" json:"cardLast4"`
}

// OrderItem snapshots the product name and unit price at purchase time.
type OrderItem struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position       int       `gorm:"not null" json:"-"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Product        *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	ProductName    string    `gorm:"size:200;not null" json:"productName"`
	UnitPriceCents int64     `gorm:"not null" json:"unitPriceCents"`
	Quantity       int       `gorm:"not null" json:"quantity"`
}

// LineTotalCents is the unit price times the quantity.
func (i OrderItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return nil
}

// All lists every model in migration order.
func All() []any {
	return []any{&Category{}, &Product{}, &User{}, &Order{}, &OrderItem{}}
}
