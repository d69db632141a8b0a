package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Address: Address{
			FullName: "Ana Beridze",
			Email:    "ana@example.com",
			Line1:    "1 Rustaveli Ave",
			City:     "Tbilisi",
			Country:  "Georgia",
		},
		PaymentMethod: "Card",
		Card: Card{
			Name:   "ANA BERIDZE",
			Number: "4111 1111 1111 1111",
			Expiry: "12/29",
			CVC:    "123",
		},
	}
}

func TestDetectBrand(t *testing.T) {
	cases := map[string]string{
		"4111111111111111": "Visa",
		"5500000000000004": "Mastercard",
		"340000000000009":  "Amex",
		"6011000000000004": "Card",
		"":                 "Card",
	}
	for digits, want := range cases {
		assert.Equal(t, want, DetectBrand(digits), digits)
	}
	assert.Equal(t, "Card", DetectBrand(DigitsOnly("abcd")))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "4111111111111111", DigitsOnly("4111-1111 1111-1111"))
	assert.Equal(t, "", DigitsOnly("letters only"))
}

func TestValidateRequiredAddressFields(t *testing.T) {
	blankers := map[string]func(*Form){
		"fullName": func(f *Form) { f.Address.FullName = "   " },
		"email":    func(f *Form) { f.Address.Email = "" },
		"line1":    func(f *Form) { f.Address.Line1 = "\t" },
		"city":     func(f *Form) { f.Address.City = "" },
		"country":  func(f *Form) { f.Address.Country = " " },
	}
	for field, blankOut := range blankers {
		t.Run(field, func(t *testing.T) {
			f := validForm()
			blankOut(&f)
			err := f.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestValidateReportsFirstFailure(t *testing.T) {
	f := validForm()
	f.Address.City = ""
	f.Address.FullName = ""
	assert.EqualError(t, f.Validate(), "Full name is required.")
}

func TestValidateCard(t *testing.T) {
	f := validForm()
	assert.NoError(t, f.Validate())

	f.Card.Number = "4111-1111-111"
	assert.EqualError(t, f.Validate(), "Please enter a valid card number.")

	f = validForm()
	f.Card.Number = "4111 1111 1111"
	assert.NoError(t, f.Validate(), "12 digits is enough")

	f = validForm()
	f.Card.Expiry = ""
	assert.EqualError(t, f.Validate(), "Expiry is required.")

	f = validForm()
	f.Card.CVC = " "
	assert.EqualError(t, f.Validate(), "CVC is required.")

	f = validForm()
	f.Card.Name = ""
	assert.EqualError(t, f.Validate(), "Name on card is required.")
}

func TestValidateCashSkipsCard(t *testing.T) {
	f := validForm()
	f.PaymentMethod = "Cash"
	f.Card = Card{}
	assert.NoError(t, f.Validate())

	f.PaymentMethod = "Bitcoin"
	assert.Error(t, f.Validate())
}

func TestPaymentDetailsKeepsOnlyBrandAndLast4(t *testing.T) {
	f := validForm()
	f.Card.Number = "5500 0000 0000 0004"

	d := f.PaymentDetails()
	assert.Equal(t, "Card", d.PaymentMethod)
	require.NotNil(t, d.CardBrand)
	require.NotNil(t, d.CardLast4)
	assert.Equal(t, "Mastercard", *d.CardBrand)
	assert.Equal(t, "0004", *d.CardLast4)

	f.PaymentMethod = "Cash"
	d = f.PaymentDetails()
	assert.Nil(t, d.CardBrand)
	assert.Nil(t, d.CardLast4)
}

func TestTotalCents(t *testing.T) {
	assert.Equal(t, int64(0), TotalCents(nil))
	assert.Equal(t, int64(4999*2+899), TotalCents([]Line{{4999, 2}, {899, 1}}))
}
