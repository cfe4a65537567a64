// handler.go — основной обработчик API SPEED.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/service"
)

// ArticleLifecycle — операции жизненного цикла статьи, нужные обработчикам.
// Узкий интерфейс упрощает подмену сервиса в тестах.
type ArticleLifecycle interface {
	GetByID(ctx context.Context, id string) (*model.Article, error)
	UpdateStatus(ctx context.Context, id, target string, reason *string) (bool, error)
	Report(ctx context.Context, id, reason string) (bool, error)
	Create(ctx context.Context, input service.NewArticle) (*model.Article, error)
	CreateMany(ctx context.Context, inputs []service.NewArticle) ([]*model.Article, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Article, error)
}

// ArticleSearcher — публичный поиск по одобренным статьям.
type ArticleSearcher interface {
	Search(ctx context.Context, filters service.SearchFilters) ([]*model.Article, error)
}

// APIHandler — основной обработчик API SPEED.
type APIHandler struct {
	articles ArticleLifecycle
	search   ArticleSearcher
	health   *HealthHandler
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	articles ArticleLifecycle,
	search ArticleSearcher,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		articles: articles,
		search:   search,
		health:   health,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
