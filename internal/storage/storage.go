// Package storage реализует адаптер хранения: именованные JSON-блобы коллекций
// магазина поверх разных драйверов (память, SQLite, PostgreSQL, Redis, S3).
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Ключи коллекций.
const (
	KeyUsers    = "users"
	KeyProducts = "products"
	KeySales    = "sales"
	KeySession  = "session"
	KeyVersion  = "version"
)

var (
	// ErrNotFound возвращается, если блоб с указанным ключом отсутствует.
	ErrNotFound = errors.New("storage: key not found")
	// ErrRollback входит в ошибку SetAll, если после неудачной записи не удалось вернуть
	// прежние значения: ключи в хранилище могут расходиться.
	ErrRollback = errors.New("storage: rollback failed")
)

// Store описывает хранилище блобов по ключу. Атомарность между ключами не гарантируется.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry это пара ключ/значение для пакетной записи.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher реализуется драйверами, умеющими атомарно записать несколько ключей.
type Batcher interface {
	SetMany(ctx context.Context, entries ...Entry) error
}

// SetAll записывает все entries так, что читатель видит либо все новые значения, либо ни одного.
// Если драйвер не реализует Batcher, ключи пишутся последовательно, а при ошибке уже записанные
// ключи возвращаются к прежним значениям. Сбой отката добавляется к ошибке как ErrRollback.
func SetAll(ctx context.Context, s Store, entries ...Entry) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, entries...)
	}

	type previous struct {
		key    string
		value  []byte
		absent bool
	}
	prev := make([]previous, 0, len(entries))
	for _, e := range entries {
		v, err := s.Get(ctx, e.Key)
		switch {
		case errors.Is(err, ErrNotFound):
			prev = append(prev, previous{key: e.Key, absent: true})
		case err != nil:
			return fmt.Errorf("read %s: %w", e.Key, err)
		default:
			prev = append(prev, previous{key: e.Key, value: v})
		}
	}

	for i, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			writeErr := fmt.Errorf("write %s: %w", e.Key, err)
			var rollbackErrs []error
			for j := i - 1; j >= 0; j-- {
				p := prev[j]
				var rbErr error
				if p.absent {
					rbErr = s.Delete(ctx, p.key)
				} else {
					rbErr = s.Set(ctx, p.key, p.value)
				}
				if rbErr != nil {
					rollbackErrs = append(rollbackErrs, fmt.Errorf("%w: restore %s: %w", ErrRollback, p.key, rbErr))
				}
			}
			return errors.Join(append([]error{writeErr}, rollbackErrs...)...)
		}
	}
	return nil
}

// Driver определяет реализацию хранилища.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverS3       Driver = "s3"
)

// Config содержит параметры всех драйверов; используется только секция выбранного.
type Config struct {
	Driver      Driver
	SQLitePath  string
	DatabaseURI string
	Redis       RedisConfig
	S3          S3Config
}

// Open создаёт хранилище выбранного драйвера. Пустой драйвер означает SQLite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(cfg.SQLitePath)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURI)
	case DriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
