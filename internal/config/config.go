// Package config содержит логику чтения конфигурации сервиса магазина.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mmeshcher/shop-pos/internal/storage"
)

// Config содержит параметры конфигурации сервиса магазина.
type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	StorageDriver string `env:"STORAGE_DRIVER"`
	DatabaseURI   string `env:"DATABASE_URI"`
	SQLitePath    string `env:"SQLITE_PATH"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"shop:"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3Prefix          string `env:"S3_PREFIX" envDefault:"shop/"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	AuthSecret    string `env:"AUTH_SECRET"`
	DataVersion   string `env:"DATA_VERSION" envDefault:"2.0.0"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envStorageDriver := cfg.StorageDriver
	envDatabaseURI := cfg.DatabaseURI
	envSQLitePath := cfg.SQLitePath

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.StorageDriver, "s", string(storage.DriverSQLite), "storage driver: memory, sqlite, postgres, redis, s3")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "postgres database URI")
	flag.StringVar(&cfg.SQLitePath, "f", "shop.db", "sqlite database file")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envStorageDriver != "" {
		cfg.StorageDriver = envStorageDriver
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSQLitePath != "" {
		cfg.SQLitePath = envSQLitePath
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}

// Storage возвращает параметры хранилища для выбранного драйвера.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:      storage.Driver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		DatabaseURI: c.DatabaseURI,
		Redis: storage.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
		S3: storage.S3Config{
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			Endpoint:        c.S3Endpoint,
			Prefix:          c.S3Prefix,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			PathStyle:       c.S3PathStyle,
		},
	}
}
