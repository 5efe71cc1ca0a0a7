// Package shop реализует движок состояния магазина: единственный источник истины
// для товаров, продаж и пользователей.
//
// Движок держит в памяти снимок трёх коллекций. Все команды выполняются под одной
// блокировкой записи, сначала пишут в хранилище и только после успешной записи
// обновляют снимок. Если запись не удалась, снимок остаётся прежним.
package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
	"github.com/mmeshcher/shop-pos/internal/storage"
	"github.com/mmeshcher/shop-pos/internal/validation"
)

// ErrWrongPassword возвращается, если текущий пароль при смене не совпал.
// Является ошибкой валидации.
var ErrWrongPassword = validation.New("current", "Current password is incorrect.")

// ErrNotInitialized возвращается командами, вызванными до Init.
var ErrNotInitialized = errors.New("shop engine is not initialized")

// Snapshot это копия всех коллекций магазина.
type Snapshot struct {
	Products []model.Product
	Sales    []model.Sale
	Users    []model.User
}

// SaleInput содержит данные продажи, пришедшие от кассы.
type SaleInput struct {
	ProductID     string              `json:"productId"`
	QuantitySold  int                 `json:"quantitySold"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	SoldBy        model.CurrentUser   `json:"-"`
}

// Engine это агрегат магазина.
type Engine struct {
	mu    sync.RWMutex
	store storage.Store

	products *repository.ProductStore
	sales    *repository.SaleStore
	users    *repository.UserStore

	snap  Snapshot
	ready bool

	log           *zap.Logger
	now           func() time.Time
	newID         repository.IDGenerator
	rec           Recorder
	cost          int
	version       string
	adminPassword string
}

// New создаёт движок поверх хранилища. Перед использованием нужно вызвать Init.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		log:           zap.NewNop(),
		now:           time.Now,
		newID:         repository.UUIDGenerator(),
		rec:           nopRecorder{},
		cost:          bcrypt.DefaultCost,
		version:       DefaultDataVersion,
		adminPassword: DefaultAdminPassword,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.products = repository.NewProductStore(store, e.newID)
	e.sales = repository.NewSaleStore(store, e.newID)
	e.users = repository.NewUserStore(store, e.newID)
	return e
}

// UserStore возвращает хранилище пользователей для проверки учётных данных.
func (e *Engine) UserStore() *repository.UserStore {
	return e.users
}

// Init сверяет версию данных, при необходимости очищает коллекции, создаёт
// администратора и загружает снимок.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.migrateVersion(ctx); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(e.adminPassword), e.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := model.User{
		Name:         DefaultAdminName,
		Username:     DefaultAdminUsername,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := e.users.Seed(ctx, admin); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := e.products.Ensure(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := e.sales.Ensure(ctx); err != nil {
		return fmt.Errorf("seed sales: %w", err)
	}

	snap, err := e.load(ctx)
	if err != nil {
		return err
	}
	e.snap = snap
	e.ready = true

	e.log.Info("shop state loaded",
		zap.Int("products", len(snap.Products)),
		zap.Int("sales", len(snap.Sales)),
		zap.Int("users", len(snap.Users)),
		zap.String("version", e.version),
	)
	return nil
}

func (e *Engine) migrateVersion(ctx context.Context) error {
	data, err := e.store.Get(ctx, storage.KeyVersion)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read version: %w", err)
	}

	var stored string
	if err == nil {
		if jerr := json.Unmarshal(data, &stored); jerr != nil {
			stored = ""
		}
	}
	if stored == e.version {
		return nil
	}

	e.log.Warn("data version changed, clearing stored collections",
		zap.String("stored", stored),
		zap.String("current", e.version),
	)
	for _, key := range []string{storage.KeyUsers, storage.KeyProducts, storage.KeySales, storage.KeySession} {
		if err := e.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}

	v, err := json.Marshal(e.version)
	if err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	if err := e.store.Set(ctx, storage.KeyVersion, v); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	return nil
}

func (e *Engine) load(ctx context.Context) (Snapshot, error) {
	products, err := e.products.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sales, err := e.sales.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	users, err := e.users.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Products: products, Sales: sales, Users: users}, nil
}

// AddProduct создаёт товар.
func (e *Engine) AddProduct(ctx context.Context, in model.ProductInput) (p model.Product, err error) {
	defer e.observe("add_product", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return model.Product{}, ErrNotInitialized
	}

	p, err = e.products.Create(ctx, in)
	if err != nil {
		return model.Product{}, err
	}
	e.snap.Products = append(e.snap.Products, p)
	return p, nil
}

// UpdateProduct частично изменяет товар.
func (e *Engine) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (p model.Product, err error) {
	defer e.observe("update_product", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return model.Product{}, ErrNotInitialized
	}

	p, err = e.products.Update(ctx, id, patch)
	if err != nil {
		return model.Product{}, err
	}
	e.snap.Products = replaceProduct(e.snap.Products, p)
	return p, nil
}

// DeleteProduct удаляет товар. Продажи этого товара не меняются.
func (e *Engine) DeleteProduct(ctx context.Context, id string) (err error) {
	defer e.observe("delete_product", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrNotInitialized
	}

	if err := e.products.Delete(ctx, id); err != nil {
		return err
	}
	e.snap.Products = slices.DeleteFunc(slices.Clone(e.snap.Products), func(p model.Product) bool {
		return p.ID == id
	})
	return nil
}

// RecordSale записывает продажу и уменьшает остаток товара. Обе записи выполняются
// вместе: после возврата без ошибки снимок содержит и продажу, и новый остаток.
// Продажа сверх остатка разрешена, остаток обнуляется.
func (e *Engine) RecordSale(ctx context.Context, in SaleInput) (s model.Sale, err error) {
	defer e.observe("add_sale", &err)

	if err := validation.Sale(in.QuantitySold, in.PaymentMethod); err != nil {
		return model.Sale{}, err
	}
	if in.SoldBy.ID == "" {
		return model.Sale{}, validation.New("soldBy", "Seller is required.")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return model.Sale{}, ErrNotInitialized
	}

	before, ok := findProduct(e.snap.Products, in.ProductID)
	if !ok {
		return model.Sale{}, fmt.Errorf("product %s: %w", in.ProductID, repository.ErrNotFound)
	}

	product, productEntry, err := e.products.PrepareDecrement(ctx, in.ProductID, in.QuantitySold)
	if err != nil {
		return model.Sale{}, err
	}

	sale, saleEntry, err := e.sales.PrepareAppend(ctx, model.SaleRecord{
		ProductID:     product.ID,
		ProductName:   product.Name,
		UnitPrice:     product.Price,
		QuantitySold:  in.QuantitySold,
		Amount:        product.Price.Mul(decimal.NewFromInt(int64(in.QuantitySold))),
		PaymentMethod: in.PaymentMethod,
		SoldByID:      in.SoldBy.ID,
		SoldBy:        in.SoldBy.Name,
		Date:          e.now(),
	})
	if err != nil {
		return model.Sale{}, err
	}

	if err := storage.SetAll(ctx, e.store, saleEntry, productEntry); err != nil {
		e.log.Error("record sale failed", zap.String("product", in.ProductID), zap.Error(err))
		return model.Sale{}, fmt.Errorf("record sale: %w", err)
	}

	e.snap.Sales = append(e.snap.Sales, sale)
	e.snap.Products = replaceProduct(e.snap.Products, product)

	if in.QuantitySold > before.Quantity {
		e.rec.Oversell()
		e.log.Warn("sale exceeds stock, quantity clamped",
			zap.String("product", product.ID),
			zap.Int("stock", before.Quantity),
			zap.Int("sold", in.QuantitySold),
		)
	}
	e.rec.Sale(sale.PaymentMethod, sale.Amount)
	return sale, nil
}

// AddUser создаёт пользователя. Логин должен быть уникальным.
func (e *Engine) AddUser(ctx context.Context, in model.UserInput) (u model.CurrentUser, err error) {
	defer e.observe("add_user", &err)

	if err := validation.User(&in); err != nil {
		return model.CurrentUser{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return model.CurrentUser{}, ErrNotInitialized
	}

	if usernameTaken(e.snap.Users, in.Username, "") {
		return model.CurrentUser{}, fmt.Errorf("username %q: %w", in.Username, repository.ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), e.cost)
	if err != nil {
		return model.CurrentUser{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := e.users.Create(ctx, model.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		return model.CurrentUser{}, err
	}
	e.snap.Users = append(e.snap.Users, created)
	return created.Current(), nil
}

// UpdateUser частично изменяет пользователя. Пустой пароль в патче оставляет прежний.
func (e *Engine) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (u model.CurrentUser, err error) {
	defer e.observe("update_user", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return model.CurrentUser{}, ErrNotInitialized
	}

	if _, ok := findUser(e.snap.Users, id); !ok {
		return model.CurrentUser{}, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}

	ch, err := e.userChanges(patch)
	if err != nil {
		return model.CurrentUser{}, err
	}
	if ch.Username != nil && usernameTaken(e.snap.Users, *ch.Username, id) {
		return model.CurrentUser{}, fmt.Errorf("username %q: %w", *ch.Username, repository.ErrUserExists)
	}

	updated, err := e.users.Update(ctx, id, ch)
	if err != nil {
		return model.CurrentUser{}, err
	}
	e.snap.Users = replaceUser(e.snap.Users, updated)
	return updated.Current(), nil
}

func (e *Engine) userChanges(patch model.UserPatch) (repository.UserChanges, error) {
	var ch repository.UserChanges
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return ch, validation.New("name", "Name is required.")
		}
		ch.Name = &name
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return ch, validation.New("username", "Username is required.")
		}
		ch.Username = &username
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return ch, validation.New("role", "Role must be admin or staff.")
		}
		role := *patch.Role
		ch.Role = &role
	}
	if patch.Password != nil && strings.TrimSpace(*patch.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), e.cost)
		if err != nil {
			return ch, fmt.Errorf("hash password: %w", err)
		}
		ch.PasswordHash = hash
	}
	return ch, nil
}

// DeleteUser удаляет пользователя. Продажи пользователя не меняются.
func (e *Engine) DeleteUser(ctx context.Context, id string) (err error) {
	defer e.observe("delete_user", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrNotInitialized
	}

	if err := e.users.Delete(ctx, id); err != nil {
		return err
	}
	e.snap.Users = slices.DeleteFunc(slices.Clone(e.snap.Users), func(u model.User) bool {
		return u.ID == id
	})
	return nil
}

// ChangePassword меняет пароль пользователя после проверки текущего.
func (e *Engine) ChangePassword(ctx context.Context, userID, current, next, confirm string) (err error) {
	defer e.observe("change_password", &err)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrNotInitialized
	}

	u, ok := findUser(e.snap.Users, userID)
	if !ok {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)) != nil {
		return ErrWrongPassword
	}
	if err := validation.NewPassword(next, confirm); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), e.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	updated, err := e.users.Update(ctx, userID, repository.UserChanges{PasswordHash: hash})
	if err != nil {
		return err
	}
	e.snap.Users = replaceUser(e.snap.Users, updated)
	return nil
}

func (e *Engine) observe(kind string, err *error) {
	e.rec.Command(kind, Outcome(*err))
}

// Outcome классифицирует результат команды для метрик и логов.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, validation.ErrInvalid):
		return "invalid"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrUserExists):
		return "conflict"
	default:
		return "error"
	}
}

func findProduct(items []model.Product, id string) (model.Product, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func findUser(items []model.User, id string) (model.User, bool) {
	for _, u := range items {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func usernameTaken(items []model.User, username, exceptID string) bool {
	for _, u := range items {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}
	return false
}

// replaceProduct возвращает новый срез, чтобы ранее выданные копии снимка не менялись.
func replaceProduct(items []model.Product, p model.Product) []model.Product {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == p.ID {
			out[i] = p
		}
	}
	return out
}

func replaceUser(items []model.User, u model.User) []model.User {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == u.ID {
			out[i] = u
		}
	}
	return out
}
