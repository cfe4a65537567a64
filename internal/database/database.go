// Пакет database — слой PostgreSQL SPEED API: пул подключений pgxpool,
// схема через golang-migrate (embedded SQL) и readiness-проверка БД
// для /health/ready.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/gospeed/internal/config"
)

// Миграции вкомпилированы в бинарь: деплой не зависит от внешних файлов.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect создаёт пул подключений к PostgreSQL и проверяет его ping-ом.
// Закрытие пула — обязанность вызывающего.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено",
		slog.String("database", cfg.DatabaseURL()),
		slog.String("sslmode", cfg.DBSSLMode),
	)
	return pool, nil
}

// Migrate приводит схему БД к актуальной версии.
// URL подключения собирает config (см. Config.MigrateURL), сами миграции
// читаются из embedded FS через iofs.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	upErr := m.Up()
	version, dirty, _ := m.Version()

	switch {
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.Debug("Схема БД актуальна", slog.Uint64("version", uint64(version)))
	case upErr != nil:
		return fmt.Errorf("ошибка применения миграций: %w", upErr)
	default:
		logger.Info("Миграции применены",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty),
		)
	}
	return nil
}

// ReadinessChecker — проверка готовности PostgreSQL для /health/ready.
// Реализует интерфейс handlers.ReadinessChecker.
type ReadinessChecker struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewReadinessChecker создаёт проверку готовности PostgreSQL.
// timeout ограничивает ping (SPEED_DB_READY_TIMEOUT).
func NewReadinessChecker(pool *pgxpool.Pool, timeout time.Duration) *ReadinessChecker {
	return &ReadinessChecker{pool: pool, timeout: timeout}
}

// CheckReady проверяет подключение к PostgreSQL через ping пула.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
