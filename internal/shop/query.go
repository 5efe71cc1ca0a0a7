package shop

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
)

// MaxSuggestions это максимальное число подсказок при вводе продажи.
const MaxSuggestions = 8

// Snapshot возвращает копию всех коллекций.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Snapshot{
		Products: slices.Clone(e.snap.Products),
		Sales:    slices.Clone(e.snap.Sales),
		Users:    slices.Clone(e.snap.Users),
	}
}

// Products возвращает товары со статусом остатка в порядке создания.
func (e *Engine) Products() []model.ProductView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views(e.snap.Products, func(model.Product) bool { return true })
}

// Product возвращает товар по идентификатору.
func (e *Engine) Product(id string) (model.ProductView, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := findProduct(e.snap.Products, id)
	if !ok {
		return model.ProductView{}, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	return p.View(), nil
}

// Sales возвращает журнал продаж в порядке записи.
func (e *Engine) Sales() []model.Sale {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return slices.Clone(e.snap.Sales)
}

// Users возвращает пользователей без хешей паролей.
func (e *Engine) Users() []model.CurrentUser {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]model.CurrentUser, 0, len(e.snap.Users))
	for _, u := range e.snap.Users {
		out = append(out, u.Current())
	}
	return out
}

// User возвращает пользователя по идентификатору.
func (e *Engine) User(id string) (model.CurrentUser, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	u, ok := findUser(e.snap.Users, id)
	if !ok {
		return model.CurrentUser{}, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return u.Current(), nil
}

// LowStock возвращает товары с низким или нулевым остатком.
func (e *Engine) LowStock() []model.ProductView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views(e.snap.Products, func(p model.Product) bool {
		return p.Status() != model.StockStatusInStock
	})
}

// SearchProducts ищет товары по подстроке имени без учёта регистра.
// Пустой запрос возвращает все товары.
func (e *Engine) SearchProducts(query string) []model.ProductView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	return views(e.snap.Products, func(p model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	})
}

// SaleSuggestions подбирает товары в наличии для кассы. Пустой запрос не даёт подсказок.
func (e *Engine) SaleSuggestions(query string) []model.ProductView {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.ProductView{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := views(e.snap.Products, func(p model.Product) bool {
		return p.Quantity > 0 && strings.Contains(strings.ToLower(p.Name), q)
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func views(items []model.Product, keep func(model.Product) bool) []model.ProductView {
	out := make([]model.ProductView, 0, len(items))
	for _, p := range items {
		if keep(p) {
			out = append(out, p.View())
		}
	}
	return out
}
