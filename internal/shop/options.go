package shop

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/repository"
)

// DefaultDataVersion это версия данных. При её смене сохранённые коллекции очищаются.
const DefaultDataVersion = "2.0.0"

// Учётная запись администратора, создаваемая при пустой коллекции пользователей.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminName     = "Administrator"
	DefaultAdminPassword = "admin123"
)

// Recorder принимает события движка для метрик.
type Recorder interface {
	Command(kind, outcome string)
	Sale(method model.PaymentMethod, amount decimal.Decimal)
	Oversell()
}

type nopRecorder struct{}

func (nopRecorder) Command(string, string)                    {}
func (nopRecorder) Sale(model.PaymentMethod, decimal.Decimal) {}
func (nopRecorder) Oversell()                                 {}

// Option настраивает Engine.
type Option func(*Engine)

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock задаёт источник текущего времени. Используется для даты продажи.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator задаёт генератор идентификаторов для всех коллекций.
func WithIDGenerator(gen repository.IDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithRecorder задаёт приёмник метрик.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithBcryptCost задаёт стоимость хеширования паролей.
func WithBcryptCost(cost int) Option {
	return func(e *Engine) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			e.cost = cost
		}
	}
}

// WithDataVersion задаёт версию данных.
func WithDataVersion(v string) Option {
	return func(e *Engine) {
		if v != "" {
			e.version = v
		}
	}
}

// WithAdminPassword задаёт пароль администратора по умолчанию.
func WithAdminPassword(p string) Option {
	return func(e *Engine) {
		if p != "" {
			e.adminPassword = p
		}
	}
}
