// Package checkout validates checkout forms and derives the card details
// that may be stored with an order. Only the brand and the last four digits
// ever leave a Form.
package checkout

import (
	"strings"

	"github.com/judyrop/storefront/models"
)

const (
	BrandVisa       = "Visa"
	BrandMastercard = "Mastercard"
	BrandAmex       = "Amex"
	BrandGeneric    = "Card"

	MinCardDigits = 12
)

// ValidationError names the first field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Address is the shipping address collected at checkout.
type Address struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Line1    string `json:"line1"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// Card holds free-text card input. Expiry and CVC are not parsed.
type Card struct {
	Name   string
	Number string
	Expiry string
	CVC    string
}

type Form struct {
	Address       Address
	PaymentMethod string
	Card          Card
}

// PaymentDetails is the card data allowed to reach the order endpoint.
type PaymentDetails struct {
	PaymentMethod string  `json:"paymentMethod"`
	CardBrand     *string `json:"cardBrand"`
	CardLast4     *string `json:"cardLast4"`
}

func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectBrand looks only at the leading digit.
func DetectBrand(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case strings.HasPrefix(digits, "5"):
		return BrandMastercard
	case strings.HasPrefix(digits, "3"):
		return BrandAmex
	default:
		return BrandGeneric
	}
}

func IsKnownBrand(brand string) bool {
	switch brand {
	case BrandVisa, BrandMastercard, BrandAmex, BrandGeneric:
		return true
	}
	return false
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Validate returns the first failing field in form order, or nil.
func (f Form) Validate() error {
	switch {
	case blank(f.Address.FullName):
		return invalid("fullName", "Full name is required.")
	case blank(f.Address.Email):
		return invalid("email", "Email is required.")
	case blank(f.Address.Line1):
		return invalid("line1", "Address line is required.")
	case blank(f.Address.City):
		return invalid("city", "City is required.")
	case blank(f.Address.Country):
		return invalid("country", "Country is required.")
	}

	switch f.PaymentMethod {
	case models.PaymentCash:
		return nil
	case models.PaymentCard:
	default:
		return invalid("paymentMethod", "Please choose a payment method.")
	}

	switch {
	case len(DigitsOnly(f.Card.Number)) < MinCardDigits:
		return invalid("cardNumber", "Please enter a valid card number.")
	case blank(f.Card.Expiry):
		return invalid("cardExpiry", "Expiry is required.")
	case blank(f.Card.CVC):
		return invalid("cardCvc", "CVC is required.")
	case blank(f.Card.Name):
		return invalid("cardName", "Name on card is required.")
	}
	return nil
}

// PaymentDetails drops everything but the brand and last four digits.
func (f Form) PaymentDetails() PaymentDetails {
	details := PaymentDetails{PaymentMethod: f.PaymentMethod}
	if f.PaymentMethod != models.PaymentCard {
		return details
	}
	digits := DigitsOnly(f.Card.Number)
	if len(digits) > 0 {
		brand := DetectBrand(digits)
		details.CardBrand = &brand
	}
	if len(digits) >= 4 {
		last4 := digits[len(digits)-4:]
		details.CardLast4 = &last4
	}
	return details
}

// Line is one cart entry priced in cents.
type Line struct {
	PriceCents int64
	Quantity   int
}

func TotalCents(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.PriceCents * int64(l.Quantity)
	}
	return total
}
