// search.go — обработчик публичного поиска POST /api/v1/articles/search.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/bigkaa/gospeed/internal/api/errors"
	"github.com/bigkaa/gospeed/internal/service"
)

// searchRequest — тело запроса поиска: {query, filters}.
// Все поля опциональны, пустой запрос возвращает каталог одобренных статей.
type searchRequest struct {
	Query   string `json:"query"`
	Filters struct {
		SEPractice    []string `json:"SEPractice"`
		Perspective   []string `json:"Perspective"`
		AfterPubYear  *int     `json:"AfterPubYear"`
		BeforePubYear *int     `json:"BeforePubYear"`
	} `json:"filters"`
}

// SearchArticles — POST /api/v1/articles/search.
// Ищет только среди одобренных статей, выдача ограничена жёстким лимитом.
func (h *APIHandler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.Filters.AfterPubYear != nil && *req.Filters.AfterPubYear < 0 {
		apierrors.ValidationError(w, "AfterPubYear должен быть неотрицательным")
		return
	}
	if req.Filters.BeforePubYear != nil && *req.Filters.BeforePubYear < 0 {
		apierrors.ValidationError(w, "BeforePubYear должен быть неотрицательным")
		return
	}

	articles, err := h.search.Search(r.Context(), service.SearchFilters{
		Query:         req.Query,
		SEPractice:    req.Filters.SEPractice,
		Perspective:   req.Filters.Perspective,
		AfterPubYear:  req.Filters.AfterPubYear,
		BeforePubYear: req.Filters.BeforePubYear,
	})
	if err != nil {
		h.logger.Error("Ошибка поиска статей", "error", err)
		apierrors.InternalError(w, "Ошибка поиска статей")
		return
	}
	writeJSON(w, http.StatusOK, mapArticles(articles))
}
