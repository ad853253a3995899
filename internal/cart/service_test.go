package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/imagestore"
	"github.com/wichananm65/storefront-backend/internal/product"
)

func seedCatalog() *product.InMemoryRepository {
	return product.NewInMemoryRepository([]product.Product{
		{
			ID: 1, Name: "Slim Jeans", Price: decimal.NewFromInt(50),
			Colors: []product.Variant{
				{ColorName: "Indigo", Sizes: []string{"M", "L"}, SeamSizes: []string{"30", "32"}, Stock: 5,
					Photos: imagestore.Images{{PublicID: "p/indigo", URL: "https://img.test/indigo.jpg"}}},
				{ColorName: "Black", Sizes: []string{"L"}, SeamSizes: []string{"34"}, Stock: 2},
			},
		},
		{ID: 2, Name: "Tee", Price: decimal.NewFromInt(15), Colors: []product.Variant{{ColorName: "White", Stock: 10}}},
	})
}

func newTestService(store Store, catalog Catalog) *Service {
	return NewService(store, catalog, zerolog.Nop())
}

func TestSelector_NormalizesStringsAndNumbers(t *testing.T) {
	var req struct {
		A Selector `json:"a"`
		B Selector `json:"b"`
		C Selector `json:"c"`
		D Selector `json:"d"`
		E Selector `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a":32,"b":" 32 ","c":null,"d":"undefined","e":32.50}`), &req)
	require.NoError(t, err)
	assert.Equal(t, Selector("32"), req.A)
	assert.Equal(t, req.A, req.B)
	assert.Equal(t, Selector(""), req.C)
	assert.Equal(t, Selector(""), req.D)
	assert.Equal(t, Selector("32.5"), req.E)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &req))
}

func TestAdd_FreshKeyAppendsLine(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	c, err := svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 1, Size: "M", SeamSize: "30", ColorName: "Indigo"})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	c, err = svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 1, Size: "L", SeamSize: "30", ColorName: "Indigo"})
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestAdd_RepeatedKeySumsQuantity(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 2, Size: "M", SeamSize: "32", ColorName: "Indigo"})
	require.NoError(t, err)

	var seam Selector
	require.NoError(t, json.Unmarshal([]byte(`32`), &seam))
	c, err := svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 3, Size: " M", SeamSize: seam, ColorName: "Indigo "})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAdd_Validation(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	cases := []struct {
		name string
		in   AddInput
		kind error
	}{
		{"zero quantity", AddInput{ProductID: 1, Quantity: 0, ColorName: "Indigo"}, apperr.ErrValidation},
		{"missing color", AddInput{ProductID: 1, Quantity: 1}, apperr.ErrValidation},
		{"missing product", AddInput{Quantity: 1, ColorName: "Indigo"}, apperr.ErrValidation},
		{"unknown product", AddInput{ProductID: 99, Quantity: 1, ColorName: "Indigo"}, apperr.ErrNotFound},
		{"unknown color", AddInput{ProductID: 1, Quantity: 1, ColorName: "Pink"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, 7, tc.in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, AddInput{ProductID: 2, Quantity: 1, ColorName: "White"})
	require.NoError(t, err)

	key := NewKey(2, "", "null", "White")
	c, err := svc.UpdateQuantity(ctx, 7, key, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, 7, NewKey(2, "XL", "", "White"), 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c, err = svc.Remove(ctx, 7, key)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = svc.Remove(ctx, 7, key)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearByProductIDs_RemovesEveryVariant(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	for _, in := range []AddInput{
		{ProductID: 1, Quantity: 1, Size: "M", ColorName: "Indigo"},
		{ProductID: 1, Quantity: 1, Size: "L", ColorName: "Black"},
		{ProductID: 2, Quantity: 1, ColorName: "White"},
	} {
		_, err := svc.Add(ctx, 7, in)
		require.NoError(t, err)
	}

	c, err := svc.ClearByProductIDs(ctx, 7, []int{1})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].ProductID)
}

func TestFetch_PopulatesAndPrunesOrphans(t *testing.T) {
	catalog := seedCatalog()
	store := NewInMemoryStore()
	svc := newTestService(store, catalog)
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 2, Size: "M", SeamSize: "30", ColorName: "Indigo"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, AddInput{ProductID: 2, Quantity: 1, ColorName: "White"})
	require.NoError(t, err)
	require.NoError(t, catalog.Delete(ctx, 2))

	views, err := svc.Fetch(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, "Slim Jeans", v.Name)
	require.NotNil(t, v.ImageURL)
	assert.Equal(t, "https://img.test/indigo.jpg", *v.ImageURL)
	assert.Equal(t, []string{"Indigo", "Black"}, v.ColorOptions)
	// options belong to the selected Indigo variant, not the Black one
	assert.Equal(t, []string{"M", "L"}, v.SizeOptions)
	assert.Equal(t, []string{"30", "32"}, v.SeamSizeOptions)
	require.NotNil(t, v.Stock)
	assert.Equal(t, 5, *v.Stock)
	require.NotNil(t, v.SelectedSize)
	assert.Equal(t, "M", *v.SelectedSize)
	assert.Equal(t, 2, v.Quantity)

	stored, err := store.Load(ctx, 7, KindCart)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}

func TestFetch_ImageFallsBackToProductThenNil(t *testing.T) {
	svc := newTestService(NewInMemoryStore(), seedCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, AddInput{ProductID: 1, Quantity: 1, ColorName: "Black"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, AddInput{ProductID: 2, Quantity: 1, ColorName: "White"})
	require.NoError(t, err)

	views, err := svc.Fetch(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].ImageURL)
	assert.Equal(t, "https://img.test/indigo.jpg", *views[0].ImageURL)
	assert.Nil(t, views[1].ImageURL)
	assert.Nil(t, views[1].SelectedSize)
}

// staleStore fails the first n saves as if another request had won the race.
type staleStore struct {
	*InMemoryStore
	failures int
}

func (s *staleStore) Save(ctx context.Context, c Container) (Container, error) {
	if s.failures > 0 {
		s.failures--
		return Container{}, ErrStale
	}
	return s.InMemoryStore.Save(ctx, c)
}

func TestMutate_RetriesStaleSaves(t *testing.T) {
	store := &staleStore{InMemoryStore: NewInMemoryStore(), failures: 2}
	svc := newTestService(store, seedCatalog())

	c, err := svc.Add(context.Background(), 7, AddInput{ProductID: 2, Quantity: 1, ColorName: "White"})
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	store.failures = maxAttempts
	_, err = svc.Add(context.Background(), 7, AddInput{ProductID: 2, Quantity: 1, ColorName: "White"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestInMemoryStore_RejectsStaleVersion(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	a, _ := store.Load(ctx, 1, KindCart)
	b, _ := store.Load(ctx, 1, KindCart)

	_, err := store.Save(ctx, a)
	require.NoError(t, err)
	_, err = store.Save(ctx, b)
	assert.ErrorIs(t, err, ErrStale)
}
