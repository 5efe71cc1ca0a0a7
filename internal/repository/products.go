package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/storage"
	"github.com/mmeshcher/shop-pos/internal/validation"
)

// ProductStore хранит каталог товаров в блобе products.
type ProductStore struct {
	items collection[model.Product]
	newID IDGenerator
}

// NewProductStore создаёт хранилище товаров.
func NewProductStore(s storage.Store, newID IDGenerator) *ProductStore {
	return &ProductStore{
		items: collection[model.Product]{store: s, key: storage.KeyProducts},
		newID: newID,
	}
}

// Ensure создаёт пустой каталог, если его ещё нет.
func (ps *ProductStore) Ensure(ctx context.Context) error {
	return ps.items.ensure(ctx)
}

// List возвращает товары в порядке создания.
func (ps *ProductStore) List(ctx context.Context) ([]model.Product, error) {
	return ps.items.load(ctx)
}

// Create проверяет данные, присваивает идентификатор и сохраняет новый товар.
func (ps *ProductStore) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	if err := validation.Product(&in); err != nil {
		return model.Product{}, err
	}

	items, err := ps.items.load(ctx)
	if err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		ID:       ps.newID(),
		Name:     in.Name,
		Price:    in.Price,
		Quantity: in.Quantity,
		Category: in.Category,
	}
	if err := ps.items.save(ctx, append(items, p)); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Update применяет частичное изменение к товару.
func (ps *ProductStore) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	items, err := ps.items.load(ctx)
	if err != nil {
		return model.Product{}, err
	}

	idx := indexOfProduct(items, id)
	if idx < 0 {
		return model.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	merged := patch.Apply(items[idx])
	in := model.ProductInput{Name: merged.Name, Price: merged.Price, Quantity: merged.Quantity, Category: merged.Category}
	if err := validation.Product(&in); err != nil {
		return model.Product{}, err
	}
	merged.Name, merged.Category = in.Name, in.Category

	items[idx] = merged
	if err := ps.items.save(ctx, items); err != nil {
		return model.Product{}, err
	}
	return merged, nil
}

// Delete удаляет товар. Отсутствующий идентификатор не считается ошибкой.
func (ps *ProductStore) Delete(ctx context.Context, id string) error {
	items, err := ps.items.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOfProduct(items, id)
	if idx < 0 {
		return nil
	}
	return ps.items.save(ctx, append(items[:idx], items[idx+1:]...))
}

// PrepareDecrement вычисляет товар с остатком max(0, quantity-n) и закодированный каталог,
// ничего не записывая. Запись выполняет вызывающий вместе с журналом продаж.
func (ps *ProductStore) PrepareDecrement(ctx context.Context, id string, n int) (model.Product, storage.Entry, error) {
	items, err := ps.items.load(ctx)
	if err != nil {
		return model.Product{}, storage.Entry{}, err
	}

	idx := indexOfProduct(items, id)
	if idx < 0 {
		return model.Product{}, storage.Entry{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	items[idx].Quantity = max(0, items[idx].Quantity-n)

	e, err := ps.items.entry(items)
	if err != nil {
		return model.Product{}, storage.Entry{}, err
	}
	return items[idx], e, nil
}

func indexOfProduct(items []model.Product, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
