// Пакет service — бизнес-логика SPEED API.
// ArticleService — жизненный цикл статьи: создание, чтение со счётчиком
// просмотров, workflow статусов, жалобы, удаление.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/domain/status"
	"github.com/bigkaa/gospeed/internal/notify"
	"github.com/bigkaa/gospeed/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrNotFound — статья не найдена.
	ErrNotFound = errors.New("статья не найдена")
	// ErrInvalidID — идентификатор не является корректным UUID.
	// Запрос с таким ID не доходит до хранилища.
	ErrInvalidID = errors.New("некорректный формат идентификатора статьи")
	// ErrInvalidStatus — значение статуса вне допустимого множества.
	ErrInvalidStatus = errors.New("недопустимое значение статуса")
)

// Prometheus-метрики жизненного цикла статей.
var (
	articleViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speed_article_views_total",
		Help: "Количество просмотров детальных карточек статей.",
	})
	articlesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speed_articles_created_total",
		Help: "Количество созданных статей (включая пакетную загрузку).",
	})
	statusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speed_status_transitions_total",
		Help: "Количество применённых переходов статуса по целевому статусу.",
	}, []string{"target"})
)

// NewArticle — библиографические поля, принимаемые от пользователя.
// Статус, счётчик просмотров и дата внесения намеренно отсутствуют:
// они выставляются сервисом и не принимаются от вызывающего.
type NewArticle struct {
	JournalName string
	Authors     []string
	PubYear     int
	Volume      string
	Number      string
	Pages       string
	Link        string
	SEPractice  string
	Summary     string
	Perspective string
}

// ArticleService — сервис жизненного цикла статьи.
type ArticleService struct {
	repo     repository.ArticleRepository
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewArticleService создаёт сервис жизненного цикла.
func NewArticleService(
	repo repository.ArticleRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
) *ArticleService {
	return &ArticleService{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "article_service")),
	}
}

// GetByID возвращает статью по ID, атомарно инкрементируя счётчик
// просмотров. Счётчик увеличивается на каждом успешном чтении,
// включая просмотры модераторов.
func (s *ArticleService) GetByID(ctx context.Context, id string) (*model.Article, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByIDIncrement(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение статьи: %w", err)
	}

	articleViewsTotal.Inc()
	return a, nil
}

// UpdateStatus выполняет переход статуса модерации.
// Недопустимое значение статуса всегда отклоняется явно (ErrInvalidStatus),
// запрос не доходит до хранилища. Возвращает true, если переход применён;
// false — статья не найдена или её текущий статус не допускает переход.
func (s *ArticleService) UpdateStatus(ctx context.Context, id, targetStr string, reason *string) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}

	target, err := status.Parse(targetStr)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidStatus, err)
	}

	applied, err := s.repo.UpdateStatus(ctx, id, target, reason, status.AllowedFrom(target))
	if err != nil {
		return false, fmt.Errorf("обновление статуса: %w", err)
	}

	if applied {
		statusTransitionsTotal.WithLabelValues(string(target)).Inc()
		s.logger.Info("Статус статьи изменён",
			slog.String("article_id", id),
			slog.String("status", string(target)),
		)
	}
	return applied, nil
}

// Report переводит статью в Reported из любого состояния и уведомляет
// аналитика. Ошибка отправки уведомления логируется и не влияет на результат.
func (s *ArticleService) Report(ctx context.Context, id, reason string) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}

	applied, err := s.repo.UpdateStatus(ctx, id, status.StatusReported, &reason,
		status.AllowedFrom(status.StatusReported))
	if err != nil {
		return false, fmt.Errorf("регистрация жалобы: %w", err)
	}
	if !applied {
		return false, nil
	}

	statusTransitionsTotal.WithLabelValues(string(status.StatusReported)).Inc()

	if err := s.notifier.ArticleReported(ctx, id, reason); err != nil {
		s.logger.Error("Не удалось отправить уведомление о жалобе",
			slog.String("article_id", id),
			slog.String("error", err.Error()),
		)
	}
	return true, nil
}

// Create создаёт статью. Статус, счётчик просмотров и дата внесения
// выставляются сервисом независимо от входных данных. Модератор
// уведомляется best-effort: создание успешно даже без письма.
func (s *ArticleService) Create(ctx context.Context, input NewArticle) (*model.Article, error) {
	a := stamp(input)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("создание статьи: %w", err)
	}

	articlesCreatedTotal.Inc()
	s.logger.Info("Статья создана",
		slog.String("article_id", a.ArticleID),
		slog.String("journal", a.JournalName),
	)

	if err := s.notifier.ArticleSubmitted(ctx, a); err != nil {
		s.logger.Error("Не удалось отправить уведомление о новой статье",
			slog.String("article_id", a.ArticleID),
			slog.String("error", err.Error()),
		)
	}
	return a, nil
}

// CreateMany создаёт пакет статей с тем же штампованием каждого элемента.
// Модератор получает одну сводку на весь пакет.
func (s *ArticleService) CreateMany(ctx context.Context, inputs []NewArticle) ([]*model.Article, error) {
	articles := make([]*model.Article, 0, len(inputs))
	for _, input := range inputs {
		articles = append(articles, stamp(input))
	}

	if err := s.repo.CreateMany(ctx, articles); err != nil {
		return nil, fmt.Errorf("пакетное создание статей: %w", err)
	}

	for range articles {
		articlesCreatedTotal.Inc()
	}
	s.logger.Info("Пакет статей создан", slog.Int("count", len(articles)))

	if len(articles) > 0 {
		if err := s.notifier.BatchSubmitted(ctx, len(articles)); err != nil {
			s.logger.Error("Не удалось отправить уведомление о пакетной загрузке",
				slog.Int("count", len(articles)),
				slog.String("error", err.Error()),
			)
		}
	}
	return articles, nil
}

// DeleteByID удаляет статью. false — статьи с таким ID не было
// (surface переводит это в not-found ответ).
func (s *ArticleService) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("удаление статьи: %w", err)
	}
	if deleted {
		s.logger.Info("Статья удалена", slog.String("article_id", id))
	}
	return deleted, nil
}

// ListByStatus возвращает все статьи с указанным статусом
// (очереди модерации: pending, shortlisted, rejected, reported).
func (s *ArticleService) ListByStatus(ctx context.Context, statusStr string) ([]*model.Article, error) {
	st, err := status.Parse(statusStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, err)
	}

	articles, err := s.repo.ListByStatus(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("выборка статей по статусу: %w", err)
	}
	return articles, nil
}

// stamp собирает model.Article из пользовательских полей,
// принудительно выставляя начальный статус, нулевой счётчик и DOE.
func stamp(input NewArticle) *model.Article {
	authors := input.Authors
	if authors == nil {
		authors = []string{}
	}
	return &model.Article{
		JournalName: input.JournalName,
		Authors:     authors,
		PubYear:     input.PubYear,
		Volume:      input.Volume,
		Number:      input.Number,
		Pages:       input.Pages,
		Link:        input.Link,
		SEPractice:  input.SEPractice,
		Summary:     input.Summary,
		Perspective: input.Perspective,
		Status:      status.Initial,
		Impressions: 0,
		DOE:         time.Now().UTC(),
	}
}

// validateID проверяет формат UUID до обращения к хранилищу.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
