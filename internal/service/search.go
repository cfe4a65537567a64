package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/repository"
)

// Prometheus-метрики публичного поиска.
var (
	searchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speed_search_total",
		Help: "Количество выполненных поисковых запросов.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "speed_search_duration_seconds",
		Help:    "Длительность поисковых запросов.",
		Buckets: prometheus.DefBuckets,
	})
)

// SearchFilters — критерии публичного поиска. Все поля опциональны,
// пустой запрос возвращает каталог одобренных статей (в пределах лимита).
type SearchFilters struct {
	// Query — подстрока без учёта регистра. Совпадение по журналу,
	// любому из авторов или SE-практике.
	Query string
	// SEPractice — точные значения практик (логическое ИЛИ внутри списка).
	SEPractice []string
	// Perspective — точные значения перспектив.
	Perspective []string
	// AfterPubYear / BeforePubYear — границы года публикации (включительно).
	AfterPubYear  *int
	BeforePubYear *int
}

// SearchService — публичный поиск по одобренным статьям.
// Записи с другими статусами наружу не видны ни при каких фильтрах.
type SearchService struct {
	repo     repository.ArticleRepository
	maxLimit int
	logger   *slog.Logger
}

// NewSearchService создаёт сервис поиска. maxLimit — жёсткий потолок
// размера выдачи, запросить больше нельзя.
func NewSearchService(repo repository.ArticleRepository, maxLimit int, logger *slog.Logger) *SearchService {
	return &SearchService{
		repo:     repo,
		maxLimit: maxLimit,
		logger:   logger.With(slog.String("component", "search_service")),
	}
}

// Search выполняет поиск по одобренным статьям.
func (s *SearchService) Search(ctx context.Context, filters SearchFilters) ([]*model.Article, error) {
	params := repository.SearchParams{
		SEPractice:    filters.SEPractice,
		Perspective:   filters.Perspective,
		AfterPubYear:  filters.AfterPubYear,
		BeforePubYear: filters.BeforePubYear,
		Limit:         s.maxLimit,
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		params.Query = &q
	}

	start := time.Now()
	articles, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("поиск статей: %w", err)
	}

	searchTotal.Inc()
	searchDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("Поиск выполнен",
		slog.Int("found", len(articles)),
		slog.Bool("has_query", params.Query != nil),
	)
	return articles, nil
}
