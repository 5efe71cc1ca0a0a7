package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/storage"
)

// SaleStore хранит журнал продаж. Журнал только дополняется.
type SaleStore struct {
	items collection[model.Sale]
	newID IDGenerator
}

// NewSaleStore создаёт хранилище продаж.
func NewSaleStore(s storage.Store, newID IDGenerator) *SaleStore {
	return &SaleStore{
		items: collection[model.Sale]{store: s, key: storage.KeySales},
		newID: newID,
	}
}

// Ensure создаёт пустой журнал, если его ещё нет.
func (ss *SaleStore) Ensure(ctx context.Context) error {
	return ss.items.ensure(ctx)
}

// List возвращает продажи в порядке записи.
func (ss *SaleStore) List(ctx context.Context) ([]model.Sale, error) {
	return ss.items.load(ctx)
}

// Create добавляет продажу в журнал. Дата берётся из записи.
func (ss *SaleStore) Create(ctx context.Context, rec model.SaleRecord) (model.Sale, error) {
	sale, e, err := ss.PrepareAppend(ctx, rec)
	if err != nil {
		return model.Sale{}, err
	}
	if err := ss.items.store.Set(ctx, e.Key, e.Value); err != nil {
		return model.Sale{}, fmt.Errorf("save %s: %w", e.Key, err)
	}
	return sale, nil
}

// PrepareAppend строит новую продажу и закодированный журнал с ней, ничего не записывая.
func (ss *SaleStore) PrepareAppend(ctx context.Context, rec model.SaleRecord) (model.Sale, storage.Entry, error) {
	items, err := ss.items.load(ctx)
	if err != nil {
		return model.Sale{}, storage.Entry{}, err
	}

	sale := model.Sale{
		ID:            ss.newID(),
		ProductID:     rec.ProductID,
		ProductName:   rec.ProductName,
		UnitPrice:     rec.UnitPrice,
		QuantitySold:  rec.QuantitySold,
		Amount:        rec.Amount,
		PaymentMethod: rec.PaymentMethod,
		SoldByID:      rec.SoldByID,
		SoldBy:        rec.SoldBy,
		Date:          rec.Date,
	}

	e, err := ss.items.entry(append(items, sale))
	if err != nil {
		return model.Sale{}, storage.Entry{}, err
	}
	return sale, e, nil
}
