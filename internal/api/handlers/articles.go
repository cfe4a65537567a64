// articles.go — обработчики /api/v1/articles endpoints.
// CRUD статей, очереди модерации, workflow статусов, жалобы.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gospeed/internal/api/errors"
	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/domain/status"
	"github.com/bigkaa/gospeed/internal/service"
)

// articleDTO — представление статьи в API.
// Имена полей повторяют исторический формат SPEED (PascalCase),
// идентификатор передаётся как id.
type articleDTO struct {
	ID          string   `json:"id"`
	JournalName string   `json:"JournalName"`
	Authors     []string `json:"Authors"`
	PubYear     int      `json:"PubYear"`
	Volume      string   `json:"Volume,omitempty"`
	Number      string   `json:"Number,omitempty"`
	Pages       string   `json:"Pages,omitempty"`
	Link        string   `json:"Link,omitempty"`
	SEPractice  string   `json:"SEPractice"`
	Summary     string   `json:"Summary,omitempty"`
	Perspective string   `json:"Perspective,omitempty"`
	Status      string   `json:"Status"`
	Reason      *string  `json:"Reason,omitempty"`
	Impressions int      `json:"Impressions"`
	DOE         string   `json:"DOE"`
}

// newArticleDTO — библиографические поля при создании статьи.
// Status, Impressions и DOE от клиента не принимаются.
type newArticleDTO struct {
	JournalName string   `json:"JournalName"`
	Authors     []string `json:"Authors"`
	PubYear     int      `json:"PubYear"`
	Volume      string   `json:"Volume"`
	Number      string   `json:"Number"`
	Pages       string   `json:"Pages"`
	Link        string   `json:"Link"`
	SEPractice  string   `json:"SEPractice"`
	Summary     string   `json:"Summary"`
	Perspective string   `json:"Perspective"`
}

// updateStatusRequest — тело PUT /api/v1/articles/article.
type updateStatusRequest struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// reportRequest — тело POST /api/v1/articles/report/{id}.
type reportRequest struct {
	Reason string `json:"reason"`
}

// ackResponse — подтверждение операции в историческом формате SPEED:
// {"status": "Success"} либо {"status": "Failed", "message": "..."}.
type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func mapArticle(a *model.Article) articleDTO {
	return articleDTO{
		ID:          a.ArticleID,
		JournalName: a.JournalName,
		Authors:     a.Authors,
		PubYear:     a.PubYear,
		Volume:      a.Volume,
		Number:      a.Number,
		Pages:       a.Pages,
		Link:        a.Link,
		SEPractice:  a.SEPractice,
		Summary:     a.Summary,
		Perspective: a.Perspective,
		Status:      string(a.Status),
		Reason:      a.Reason,
		Impressions: a.Impressions,
		DOE:         a.DOE.UTC().Format(time.RFC3339),
	}
}

func mapArticles(articles []*model.Article) []articleDTO {
	result := make([]articleDTO, 0, len(articles))
	for _, a := range articles {
		result = append(result, mapArticle(a))
	}
	return result
}

func toNewArticle(dto newArticleDTO) service.NewArticle {
	return service.NewArticle{
		JournalName: dto.JournalName,
		Authors:     dto.Authors,
		PubYear:     dto.PubYear,
		Volume:      dto.Volume,
		Number:      dto.Number,
		Pages:       dto.Pages,
		Link:        dto.Link,
		SEPractice:  dto.SEPractice,
		Summary:     dto.Summary,
		Perspective: dto.Perspective,
	}
}

// ListApproved — GET /api/v1/articles.
// Возвращает одобренные статьи (публичный каталог).
func (h *APIHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListByStatus(r.Context(), string(status.StatusApproved))
	if err != nil {
		h.logger.Error("Ошибка выборки одобренных статей", "error", err)
		apierrors.InternalError(w, "Ошибка получения списка статей")
		return
	}
	writeJSON(w, http.StatusOK, mapArticles(articles))
}

// ListByStatus — GET /api/v1/articles/{status}.
// Очереди модерации: pending, shortlisted, rejected, reported.
func (h *APIHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	st, err := status.ParseFold(chi.URLParam(r, "status"))
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	articles, err := h.articles.ListByStatus(r.Context(), string(st))
	if err != nil {
		h.logger.Error("Ошибка выборки статей по статусу", "status", string(st), "error", err)
		apierrors.InternalError(w, "Ошибка получения списка статей")
		return
	}
	writeJSON(w, http.StatusOK, mapArticles(articles))
}

// GetArticle — GET /api/v1/articles/article?id=<uuid>.
// Возвращает статью и инкрементирует счётчик просмотров.
func (h *APIHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		apierrors.ValidationError(w, "Параметр id обязателен")
		return
	}

	a, err := h.articles.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Статья не найдена")
		default:
			h.logger.Error("Ошибка получения статьи", "article_id", id, "error", err)
			apierrors.InternalError(w, "Ошибка получения статьи")
		}
		return
	}
	writeJSON(w, http.StatusOK, mapArticle(a))
}

// UpdateStatus — PUT /api/v1/articles/article.
// Тело: {id, status, reason?}. Недопустимый статус отклоняется явно (400).
func (h *APIHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if req.ID == "" {
		apierrors.ValidationError(w, "Поле id обязательно")
		return
	}

	applied, err := h.articles.UpdateStatus(r.Context(), req.ID, req.Status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidStatus):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка обновления статуса", "article_id", req.ID, "error", err)
			apierrors.InternalError(w, "Ошибка обновления статуса")
		}
		return
	}

	if !applied {
		writeJSON(w, http.StatusOK, ackResponse{
			Status:  "Failed",
			Message: "Статья не найдена или переход статуса не разрешён",
		})
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "Success"})
}

// ReportArticle — POST /api/v1/articles/report/{id}.
// Тело: {reason}. Переводит статью в Reported из любого статуса.
func (h *APIHandler) ReportArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if req.Reason == "" {
		apierrors.ValidationError(w, "Поле reason обязательно")
		return
	}

	applied, err := h.articles.Report(r.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка регистрации жалобы", "article_id", id, "error", err)
			apierrors.InternalError(w, "Ошибка регистрации жалобы")
		}
		return
	}
	if !applied {
		apierrors.NotFound(w, "Статья не найдена")
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "Success"})
}

// CreateArticle — POST /api/v1/articles.
// Создаёт статью со статусом Pending независимо от входных данных.
func (h *APIHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req newArticleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if req.JournalName == "" {
		apierrors.ValidationError(w, "Поле JournalName обязательно")
		return
	}

	a, err := h.articles.Create(r.Context(), toNewArticle(req))
	if err != nil {
		h.logger.Error("Ошибка создания статьи", "error", err)
		apierrors.InternalError(w, "Ошибка создания статьи")
		return
	}
	writeJSON(w, http.StatusCreated, mapArticle(a))
}

// CreateArticles — POST /api/v1/articles/add-all.
// Пакетное создание: каждый элемент получает Pending и нулевой счётчик.
func (h *APIHandler) CreateArticles(w http.ResponseWriter, r *http.Request) {
	var req []newArticleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	inputs := make([]service.NewArticle, 0, len(req))
	for _, dto := range req {
		inputs = append(inputs, toNewArticle(dto))
	}

	articles, err := h.articles.CreateMany(r.Context(), inputs)
	if err != nil {
		h.logger.Error("Ошибка пакетного создания статей", "count", len(req), "error", err)
		apierrors.InternalError(w, "Ошибка пакетного создания статей")
		return
	}
	writeJSON(w, http.StatusCreated, mapArticles(articles))
}

// DeleteArticle — DELETE /api/v1/articles?id=<uuid>.
// 404, если статья не существовала.
func (h *APIHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		apierrors.ValidationError(w, "Параметр id обязателен")
		return
	}

	deleted, err := h.articles.DeleteByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка удаления статьи", "article_id", id, "error", err)
			apierrors.InternalError(w, "Ошибка удаления статьи")
		}
		return
	}
	if !deleted {
		apierrors.NotFound(w, "Статья не найдена")
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "Success", Message: "Статья удалена"})
}
