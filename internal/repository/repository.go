// Package repository содержит хранилища сущностей магазина поверх адаптера storage.
// Каждое хранилище владеет одной коллекцией и сохраняет её целиком при каждом изменении.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmeshcher/shop-pos/internal/storage"
)

var (
	// ErrNotFound возвращается, если сущность с указанным идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrUserExists возвращается при попытке занять уже существующий логин.
	ErrUserExists = errors.New("user already exists")
)

// IDGenerator выдаёт новые уникальные идентификаторы.
type IDGenerator func() string

// UUIDGenerator возвращает генератор UUIDv7: идентификаторы упорядочены по времени создания.
func UUIDGenerator() IDGenerator {
	return func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
}

type collection[T any] struct {
	store storage.Store
	key   string
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) entry(items []T) (storage.Entry, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return storage.Entry{Key: c.key, Value: data}, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	e, err := c.entry(items)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, e.Key, e.Value); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

// ensure записывает пустую коллекцию, если блоб ещё не существует.
func (c collection[T]) ensure(ctx context.Context) error {
	_, err := c.store.Get(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return c.save(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", c.key, err)
	}
	return nil
}
