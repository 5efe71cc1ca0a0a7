// Package auth проверяет учётные данные и хранит текущую сессию в блобе session.
//
// Блоб session один на всё хранилище и отражает только последний вход. HTTP API
// авторизует запросы подписанным cookie, а блоб служит записью о последнем входе.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
	"github.com/mmeshcher/shop-pos/internal/storage"
	"github.com/mmeshcher/shop-pos/internal/validation"
)

// ErrInvalidCredentials возвращается при неверном логине или пароле.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserSource ищет пользователя по логину.
type UserSource interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// Gate выполняет вход и выход пользователя.
type Gate struct {
	store storage.Store
	users UserSource
}

// NewGate создаёт Gate поверх хранилища сессии и источника пользователей.
func NewGate(store storage.Store, users UserSource) *Gate {
	return &Gate{store: store, users: users}
}

// Login проверяет логин и пароль и сохраняет сессию.
func (g *Gate) Login(ctx context.Context, username, password string) (model.CurrentUser, error) {
	if err := validation.Credentials(username, password); err != nil {
		return model.CurrentUser{}, err
	}

	u, err := g.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return model.CurrentUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.CurrentUser{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return model.CurrentUser{}, ErrInvalidCredentials
	}

	current := u.Current()
	data, err := json.Marshal(current)
	if err != nil {
		return model.CurrentUser{}, fmt.Errorf("encode session: %w", err)
	}
	if err := g.store.Set(ctx, storage.KeySession, data); err != nil {
		return model.CurrentUser{}, fmt.Errorf("save session: %w", err)
	}
	return current, nil
}

// Logout удаляет сессию, если она принадлежит userID. Сессия другого пользователя
// остаётся на месте: блоб отражает последний вход, а не каждого вошедшего.
func (g *Gate) Logout(ctx context.Context, userID string) error {
	current, err := g.Session(ctx)
	if err != nil {
		return err
	}
	if current == nil || userID == "" || current.ID != userID {
		return nil
	}
	if err := g.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Session возвращает пользователя сохранённой сессии или nil, если входа не было.
func (g *Gate) Session(ctx context.Context) (*model.CurrentUser, error) {
	data, err := g.store.Get(ctx, storage.KeySession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var current model.CurrentUser
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &current, nil
}
