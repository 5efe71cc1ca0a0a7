package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/storage"
)

// UserChanges содержит изменения учётной записи. Пароль передаётся уже захешированным.
type UserChanges struct {
	Name         *string
	Username     *string
	PasswordHash []byte
	Role         *model.Role
}

// UserStore хранит учётные записи в блобе users.
type UserStore struct {
	items collection[model.User]
	newID IDGenerator
}

// NewUserStore создаёт хранилище пользователей.
func NewUserStore(s storage.Store, newID IDGenerator) *UserStore {
	return &UserStore{
		items: collection[model.User]{store: s, key: storage.KeyUsers},
		newID: newID,
	}
}

// Seed записывает единственного пользователя admin, если коллекция пуста.
func (us *UserStore) Seed(ctx context.Context, admin model.User) error {
	items, err := us.items.load(ctx)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}
	if admin.ID == "" {
		admin.ID = us.newID()
	}
	return us.items.save(ctx, []model.User{admin})
}

// List возвращает пользователей в порядке создания.
func (us *UserStore) List(ctx context.Context) ([]model.User, error) {
	return us.items.load(ctx)
}

// FindByUsername ищет пользователя по логину.
func (us *UserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	items, err := us.items.load(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range items {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

// Create сохраняет нового пользователя. Уникальность логина проверяет вызывающий.
func (us *UserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	items, err := us.items.load(ctx)
	if err != nil {
		return model.User{}, err
	}
	u.ID = us.newID()
	if err := us.items.save(ctx, append(items, u)); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Update применяет изменения к пользователю.
func (us *UserStore) Update(ctx context.Context, id string, ch UserChanges) (model.User, error) {
	items, err := us.items.load(ctx)
	if err != nil {
		return model.User{}, err
	}

	idx := indexOfUser(items, id)
	if idx < 0 {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	u := items[idx]
	if ch.Name != nil {
		u.Name = *ch.Name
	}
	if ch.Username != nil {
		u.Username = *ch.Username
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = ch.PasswordHash
	}
	if ch.Role != nil {
		u.Role = *ch.Role
	}

	items[idx] = u
	if err := us.items.save(ctx, items); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Delete удаляет пользователя. Отсутствующий идентификатор не считается ошибкой.
func (us *UserStore) Delete(ctx context.Context, id string) error {
	items, err := us.items.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOfUser(items, id)
	if idx < 0 {
		return nil
	}
	return us.items.save(ctx, append(items[:idx], items[idx+1:]...))
}

func indexOfUser(items []model.User, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
