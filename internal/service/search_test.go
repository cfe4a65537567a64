package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/repository"
)

// --- Тесты SearchService ---

// TestSearchService_Search проверяет передачу фильтров в repository
// и применение жёсткого лимита выдачи.
func TestSearchService_Search(t *testing.T) {
	articles := []*model.Article{
		{ArticleID: "a-1", JournalName: "IEEE Software"},
		{ArticleID: "a-2", JournalName: "ACM TOSEM"},
	}

	repo := &mockArticleRepo{
		searchFn: func(_ context.Context, params repository.SearchParams) ([]*model.Article, error) {
			if params.Limit != 30 {
				t.Errorf("Limit = %d, ожидался 30", params.Limit)
			}
			if params.Query == nil || *params.Query != "agile" {
				t.Errorf("Query = %v, ожидался 'agile'", params.Query)
			}
			if len(params.SEPractice) != 1 || params.SEPractice[0] != "Code Review" {
				t.Errorf("SEPractice = %v", params.SEPractice)
			}
			return articles, nil
		},
	}
	svc := NewSearchService(repo, 30, slog.Default())

	result, err := svc.Search(context.Background(), SearchFilters{
		Query:      "agile",
		SEPractice: []string{"Code Review"},
	})
	if err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("len(result) = %d, ожидался 2", len(result))
	}
}

// TestSearchService_Search_EmptyQuery проверяет, что пустая и пробельная
// строка запроса не превращается в подстрочный фильтр.
func TestSearchService_Search_EmptyQuery(t *testing.T) {
	repo := &mockArticleRepo{
		searchFn: func(_ context.Context, params repository.SearchParams) ([]*model.Article, error) {
			if params.Query != nil {
				t.Errorf("Query = %v, ожидался nil", params.Query)
			}
			return nil, nil
		},
	}
	svc := NewSearchService(repo, 30, slog.Default())

	if _, err := svc.Search(context.Background(), SearchFilters{Query: "   "}); err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
}

// TestSearchService_Search_YearBounds проверяет передачу границ года.
func TestSearchService_Search_YearBounds(t *testing.T) {
	after, before := 2015, 2020
	repo := &mockArticleRepo{
		searchFn: func(_ context.Context, params repository.SearchParams) ([]*model.Article, error) {
			if params.AfterPubYear == nil || *params.AfterPubYear != 2015 {
				t.Errorf("AfterPubYear = %v, ожидался 2015", params.AfterPubYear)
			}
			if params.BeforePubYear == nil || *params.BeforePubYear != 2020 {
				t.Errorf("BeforePubYear = %v, ожидался 2020", params.BeforePubYear)
			}
			return nil, nil
		},
	}
	svc := NewSearchService(repo, 30, slog.Default())

	_, err := svc.Search(context.Background(), SearchFilters{
		AfterPubYear:  &after,
		BeforePubYear: &before,
	})
	if err != nil {
		t.Fatalf("Search ошибка: %v", err)
	}
}
