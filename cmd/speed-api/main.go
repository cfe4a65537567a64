// Точка входа SPEED API — сервиса каталога статей о практиках разработки ПО.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает репозитории, сервисы и уведомления, проверяет OpenAPI контракт,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/gospeed/internal/api/contract"
	"github.com/bigkaa/gospeed/internal/api/handlers"
	"github.com/bigkaa/gospeed/internal/api/middleware"
	"github.com/bigkaa/gospeed/internal/config"
	"github.com/bigkaa/gospeed/internal/database"
	"github.com/bigkaa/gospeed/internal/notify"
	"github.com/bigkaa/gospeed/internal/repository"
	"github.com/bigkaa/gospeed/internal/server"
	"github.com/bigkaa/gospeed/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("SPEED API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Проверка встроенного OpenAPI контракта
	if _, err := contract.Load(); err != nil {
		logger.Error("Некорректный OpenAPI контракт", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 6. Repository
	articleRepo := repository.NewArticleRepository(pool)

	// 7. Уведомления: SMTP при настроенном хосте, иначе только лог.
	// Поверх — подавление повторных жалоб на одну статью.
	var notifier notify.Notifier
	if cfg.MailEnabled() {
		mailer, mailErr := notify.NewMailer(cfg, logger)
		if mailErr != nil {
			logger.Error("Ошибка создания SMTP-клиента", slog.String("error", mailErr.Error()))
			os.Exit(1)
		}
		notifier = mailer
		logger.Info("Уведомления по SMTP включены",
			slog.String("host", cfg.SMTPHost),
			slog.Int("port", cfg.SMTPPort),
		)
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Warn("SPEED_SMTP_HOST не задан, уведомления только логируются")
	}
	notifier = notify.NewDedup(notifier, cfg.NotifyDedupSize, cfg.NotifyDedupTTL, logger)

	// 8. Services
	articleSvc := service.NewArticleService(articleRepo, notifier, logger)
	searchSvc := service.NewSearchService(articleRepo, cfg.SearchLimit, logger)

	// 9. Readiness checker и handlers
	pgChecker := database.NewReadinessChecker(pool, cfg.DBReadyTimeout)
	healthHandler := handlers.NewHealthHandler(pgChecker)
	apiHandler := handlers.NewAPIHandler(articleSvc, searchSvc, healthHandler, logger)

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"speed-api",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		cfg.DephealthIsEntry,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 11. HTTP-сервер с middleware (метрики, логирование)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 12. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("SPEED API остановлен")
}
