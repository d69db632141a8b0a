package store_test

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

func strPtr(s string) *string { return &s }

func createCategory(t *testing.T, s *store.Store, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug}
	require.NoError(t, s.Categories.Create(context.Background(), &c))
	return c
}

func createProduct(t *testing.T, s *store.Store, name string, price int64, active bool, categoryID uuid.UUID) models.Product {
	t.Helper()
	p := models.Product{Name: name, PriceCents: price, IsActive: active, CategoryID: categoryID}
	require.NoError(t, s.Products.Create(context.Background(), &p))
	return p
}

func TestCategoriesOrderedByName(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()
	createCategory(t, s, "Toys", "toys")
	createCategory(t, s, "Books", "books")
	createCategory(t, s, "Electronics", "electronics")

	got, err := s.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Books", got[0].Name)
	assert.Equal(t, "Electronics", got[1].Name)
	assert.Equal(t, "Toys", got[2].Name)
	for _, c := range got {
		assert.NotEmpty(t, c.Slug)
		assert.NotEqual(t, uuid.Nil, c.ID)
	}
}

func TestCategorySlugIsUnique(t *testing.T) {
	s := storetest.NewStore(t)
	createCategory(t, s, "Toys", "toys")

	err := s.Categories.Create(context.Background(), &models.Category{Name: "More toys", Slug: "toys"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCategoryDeleteIsRestricted(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()
	toys := createCategory(t, s, "Toys", "toys")
	empty := createCategory(t, s, "Empty", "empty")
	createProduct(t, s, "Bear", 1999, true, toys.ID)

	assert.ErrorIs(t, s.Categories.Delete(ctx, toys.ID), store.ErrInUse)
	assert.NoError(t, s.Categories.Delete(ctx, empty.ID))
	assert.ErrorIs(t, s.Categories.Delete(ctx, empty.ID), store.ErrNotFound)
}

func TestProductsActiveOnly(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()
	toys := createCategory(t, s, "Toys", "toys")
	bear := createProduct(t, s, "Bear", 1999, true, toys.ID)
	hidden := createProduct(t, s, "Hidden", 100, false, toys.ID)
	blocks := createProduct(t, s, "Blocks", 4999, true, toys.ID)

	list, err := s.Products.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bear.ID, list[0].ID)
	assert.Equal(t, blocks.ID, list[1].ID)
	require.NotNil(t, list[0].Category)
	assert.Equal(t, "toys", list[0].Category.Slug)

	_, err = s.Products.FindActive(ctx, hidden.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Products.FindActive(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Products.FindActive(ctx, bear.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), got.PriceCents)

	byID, err := s.Products.FindActiveByIDs(ctx, []uuid.UUID{bear.ID, hidden.ID})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Contains(t, byID, bear.ID)
}

func TestProductRequiresExistingCategory(t *testing.T) {
	s := storetest.NewStore(t)

	p := models.Product{Name: "Orphan", PriceCents: 1, IsActive: true, CategoryID: uuid.New()}
	assert.Error(t, s.Products.Create(context.Background(), &p))
}

func TestUsers(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()

	u := models.User{Email: "a@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, s.Users.Create(ctx, &u))
	assert.ErrorIs(t, s.Users.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: "y", Role: models.RoleCustomer}), store.ErrDuplicate)

	found, err := s.Users.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, s.Users.UpdateRole(ctx, u.ID, models.RoleAdmin))
	found, err = s.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.Role)

	_, err = s.Users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrdersScopedToUser(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()
	toys := createCategory(t, s, "Toys", "toys")
	bear := createProduct(t, s, "Bear", 1999, true, toys.ID)
	blocks := createProduct(t, s, "Blocks", 4999, true, toys.ID)

	alice := models.User{Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	bob := models.User{Email: "bob@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, s.Users.Create(ctx, &alice))
	require.NoError(t, s.Users.Create(ctx, &bob))

	older := models.Order{
		UserID:        alice.ID,
		TotalCents:    1999,
		CreatedAt:     time.Now().UTC().Add(-time.Hour),
		PaymentMethod: models.PaymentCash,
		Items:         []models.OrderItem{{Position: 0, ProductID: bear.ID, ProductName: "Bear", UnitPriceCents: 1999, Quantity: 1}},
	}
	require.NoError(t, s.Orders.Create(ctx, &older))

	newer := models.Order{
		UserID:        alice.ID,
		TotalCents:    4999*2 + 1999,
		PaymentMethod: models.PaymentCard,
		CardBrand:     strPtr("Visa"),
		CardLast4:     strPtr("1111"),
		Items: []models.OrderItem{
			{Position: 0, ProductID: blocks.ID, ProductName: "Blocks", UnitPriceCents: 4999, Quantity: 2},
			{Position: 1, ProductID: bear.ID, ProductName: "Bear", UnitPriceCents: 1999, Quantity: 1},
		},
	}
	require.NoError(t, s.Orders.Create(ctx, &newer))

	list, err := s.Orders.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	require.Len(t, list[0].Items, 2)
	assert.Equal(t, "Blocks", list[0].Items[0].ProductName)
	assert.Equal(t, "Bear", list[0].Items[1].ProductName)

	got, err := s.Orders.FindForUser(ctx, newer.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "1111", *got.CardLast4)

	_, err = s.Orders.FindForUser(ctx, newer.ID, bob.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	none, err := s.Orders.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransactionRollsBack(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *store.Store) error {
		require.NoError(t, tx.Categories.Create(ctx, &models.Category{Name: "Toys", Slug: "toys"}))
		return tx.Categories.Create(ctx, &models.Category{Name: "Toys again", Slug: "toys"})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	n, err := s.Categories.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedCatalog(t *testing.T) {
	s := storetest.NewStore(t)
	ctx := context.Background()

	seeded, err := s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	products, err := s.Products.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.NoError(t, s.Ping(ctx))
}
