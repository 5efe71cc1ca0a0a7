package shop

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
	"github.com/mmeshcher/shop-pos/internal/storage"
)

func seedProducts(t *testing.T, e *Engine, items ...model.ProductInput) []model.Product {
	t.Helper()
	out := make([]model.Product, 0, len(items))
	for _, in := range items {
		p, err := e.AddProduct(context.Background(), in)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestLowStock(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	price := decimal.NewFromInt(1)
	seedProducts(t, e,
		model.ProductInput{Name: "A", Price: price, Quantity: 0},
		model.ProductInput{Name: "B", Price: price, Quantity: 1},
		model.ProductInput{Name: "C", Price: price, Quantity: 20},
		model.ProductInput{Name: "D", Price: price, Quantity: 21},
	)

	low := e.LowStock()
	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, model.StockStatusOutOfStock, low[0].Status)
	assert.Equal(t, model.StockStatusLow, low[2].Status)
}

func TestSearchProducts(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	price := decimal.NewFromInt(1)
	seedProducts(t, e,
		model.ProductInput{Name: "Coca Cola", Price: price, Quantity: 5},
		model.ProductInput{Name: "Pepsi", Price: price, Quantity: 5},
		model.ProductInput{Name: "cola zero", Price: price, Quantity: 0},
	)

	assert.Len(t, e.SearchProducts("COLA"), 2)
	assert.Len(t, e.SearchProducts(""), 3)
	assert.Empty(t, e.SearchProducts("fanta"))
}

func TestSaleSuggestions(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	price := decimal.NewFromInt(1)
	for i := 0; i < 10; i++ {
		seedProducts(t, e, model.ProductInput{Name: fmt.Sprintf("Juice %d", i), Price: price, Quantity: 3})
	}
	seedProducts(t, e, model.ProductInput{Name: "Juice empty", Price: price, Quantity: 0})

	assert.Empty(t, e.SaleSuggestions(""))
	assert.Empty(t, e.SaleSuggestions("   "))

	got := e.SaleSuggestions("juice")
	require.Len(t, got, MaxSuggestions)
	for _, p := range got {
		assert.Positive(t, p.Quantity)
	}
	assert.Empty(t, e.SaleSuggestions("empty"), "out of stock is not suggested")
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	seedProducts(t, e, model.ProductInput{Name: "Cola", Price: decimal.NewFromInt(5), Quantity: 10})

	snap := e.Snapshot()
	snap.Products[0].Quantity = 999

	assert.Equal(t, 10, e.Products()[0].Quantity)
}

func TestProductAndUserLookup(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())

	_, err := e.Product("missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = e.User("missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	admin := e.Users()[0]
	got, err := e.User(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminUsername, got.Username)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, storage.NewMemoryStore())

	res := e.Execute(ctx, AddProduct{Input: model.ProductInput{Name: "Cola", Price: decimal.NewFromInt(5), Quantity: 10}})
	require.True(t, res.OK(), "%v", res.Err)
	p, ok := res.Value.(model.Product)
	require.True(t, ok)

	res = e.Execute(ctx, AddSale{Input: SaleInput{ProductID: p.ID, QuantitySold: 3, PaymentMethod: model.PaymentCash, SoldBy: staff()}})
	require.NoError(t, res.Err)
	sale, ok := res.Value.(model.Sale)
	require.True(t, ok)
	assert.True(t, sale.Amount.Equal(decimal.NewFromInt(15)))

	qty := 50
	res = e.Execute(ctx, UpdateProduct{ID: p.ID, Patch: model.ProductPatch{Quantity: &qty}})
	require.NoError(t, res.Err)

	res = e.Execute(ctx, AddUser{Input: model.UserInput{Name: "Kofi", Username: "kofi", Password: "secret1", Role: model.RoleStaff}})
	require.NoError(t, res.Err)
	kofi := res.Value.(model.CurrentUser)

	res = e.Execute(ctx, AddUser{Input: model.UserInput{Name: "Kofi", Username: "kofi", Password: "secret1", Role: model.RoleStaff}})
	require.ErrorIs(t, res.Err, repository.ErrUserExists)
	assert.Nil(t, res.Value)

	name := "Kofi M."
	res = e.Execute(ctx, UpdateUser{ID: kofi.ID, Patch: model.UserPatch{Name: &name}})
	require.NoError(t, res.Err)

	require.NoError(t, e.Execute(ctx, DeleteUser{ID: kofi.ID}).Err)
	require.NoError(t, e.Execute(ctx, DeleteProduct{ID: p.ID}).Err)

	assert.Empty(t, e.Products())
	assert.Len(t, e.Sales(), 1)
}

type unknownCommand struct{}

func (unknownCommand) Kind() string { return "unknown" }

func TestExecute_UnknownCommand(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStore())
	res := e.Execute(context.Background(), unknownCommand{})
	require.Error(t, res.Err)
}
