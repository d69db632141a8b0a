package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/store"
	"github.com/judyrop/storefront/store/storetest"
)

type recorded struct {
	method string
	total  int64
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) OrderPlaced(method string, total int64) {
	f.calls = append(f.calls, recorded{method, total})
}

type fixture struct {
	svc      *Service
	store    *store.Store
	recorder *fakeRecorder
	user     models.User
	bear     models.Product
	blocks   models.Product
	hidden   models.Product
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.NewStore(t)

	toys := models.Category{Name: "Toys", Slug: "toys"}
	require.NoError(t, s.Categories.Create(ctx, &toys))
	f := &fixture{
		store:    s,
		recorder: &fakeRecorder{},
		user:     models.User{Email: "shopper@example.com", PasswordHash: "x", Role: models.RoleCustomer},
		bear:     models.Product{Name: "Bear", PriceCents: 1999, IsActive: true, CategoryID: toys.ID},
		blocks:   models.Product{Name: "Blocks", PriceCents: 4999, IsActive: true, CategoryID: toys.ID},
		hidden:   models.Product{Name: "Hidden", PriceCents: 100, IsActive: false, CategoryID: toys.ID},
	}
	require.NoError(t, s.Users.Create(ctx, &f.user))
	require.NoError(t, s.Products.Create(ctx, &f.bear))
	require.NoError(t, s.Products.Create(ctx, &f.blocks))
	require.NoError(t, s.Products.Create(ctx, &f.hidden))
	f.svc = NewService(s, f.recorder)
	return f
}

func TestPlaceComputesTotalFromSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Place(ctx, f.user.ID, PlaceRequest{
		Items: []ItemRequest{
			{ProductID: f.blocks.ID, Quantity: 2},
			{ProductID: f.bear.ID, Quantity: 1},
			{ProductID: f.blocks.ID, Quantity: 1},
		},
		PaymentMethod: "Card",
		CardBrand:     strPtr("Visa"),
		CardLast4:     strPtr("1111"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4999*3+1999), order.TotalCents)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Blocks", order.Items[0].ProductName)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, int64(4999), order.Items[0].UnitPriceCents)

	assert.Equal(t, []recorded{{"Card", 4999*3 + 1999}}, f.recorder.calls)

	got, err := f.svc.Get(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, got.TotalCents)
	assert.Equal(t, "1111", *got.CardLast4)
	assert.Equal(t, "Visa", *got.CardBrand)
}

func TestPlaceRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		req  PlaceRequest
		want error
	}{
		"empty": {
			req:  PlaceRequest{PaymentMethod: "Cash"},
			want: ErrEmptyOrder,
		},
		"zero quantity": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 0}}, PaymentMethod: "Cash"},
			want: ErrInvalidQuantity,
		},
		"merged lines over the limit": {
			req: PlaceRequest{Items: []ItemRequest{
				{ProductID: f.bear.ID, Quantity: maxQuantity},
				{ProductID: f.bear.ID, Quantity: maxQuantity},
			}, PaymentMethod: "Cash"},
			want: ErrInvalidQuantity,
		},
		"inactive product": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.hidden.ID, Quantity: 1}}, PaymentMethod: "Cash"},
			want: ErrUnknownProduct,
		},
		"unknown product": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: uuid.New(), Quantity: 1}}, PaymentMethod: "Cash"},
			want: ErrUnknownProduct,
		},
		"full card number as last4": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Card", CardLast4: strPtr("4111111111111111")},
			want: ErrInvalidPayment,
		},
		"letters in last4": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Card", CardLast4: strPtr("12a4")},
			want: ErrInvalidPayment,
		},
		"unknown brand": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Card", CardBrand: strPtr("Diners")},
			want: ErrInvalidPayment,
		},
		"card data with cash": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Cash", CardLast4: strPtr("1111")},
			want: ErrInvalidPayment,
		},
		"unknown method": {
			req:  PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Mock"},
			want: ErrInvalidPayment,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Place(ctx, f.user.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected orders leave nothing behind")
	assert.Empty(t, f.recorder.calls)
}

func TestCashOrderHasNoCardData(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Place(context.Background(), f.user.ID, PlaceRequest{
		Items:         []ItemRequest{{ProductID: f.bear.ID, Quantity: 2}},
		PaymentMethod: "Cash",
	})
	require.NoError(t, err)
	assert.Nil(t, order.CardBrand)
	assert.Nil(t, order.CardLast4)
	assert.Equal(t, int64(3998), order.TotalCents)
}

func TestListAndGetAreScopedToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	times := []time.Time{time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	f.svc.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}

	first, err := f.svc.Place(ctx, f.user.ID, PlaceRequest{Items: []ItemRequest{{ProductID: f.bear.ID, Quantity: 1}}, PaymentMethod: "Cash"})
	require.NoError(t, err)
	second, err := f.svc.Place(ctx, f.user.ID, PlaceRequest{Items: []ItemRequest{{ProductID: f.blocks.ID, Quantity: 1}}, PaymentMethod: "Cash"})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	other := models.User{Email: "other@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, f.store.Users.Create(ctx, &other))
	_, err = f.svc.Get(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
