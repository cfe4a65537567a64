package repository

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/gospeed/internal/config"
	"github.com/bigkaa/gospeed/internal/database"
	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/domain/status"

	"github.com/jackc/pgx/v5/pgxpool"
)

// --- Тесты buildSearchWhere ---

// TestBuildSearchWhere_Empty проверяет базовый предикат без фильтров:
// выборка всегда ограничена одобренными статьями.
func TestBuildSearchWhere_Empty(t *testing.T) {
	where, args := buildSearchWhere(SearchParams{}, 1)

	if !strings.Contains(where, "status = $1") {
		t.Errorf("where = %q, ожидалось содержание 'status = $1'", where)
	}
	if len(args) != 1 {
		t.Errorf("args count = %d, ожидался 1", len(args))
	}
	if args[0] != "Approved" {
		t.Errorf("args[0] = %v, ожидался 'Approved'", args[0])
	}
}

// TestBuildSearchWhere_Query проверяет текстовый поиск:
// OR по журналу, практике и любому автору, шаблон %...%.
func TestBuildSearchWhere_Query(t *testing.T) {
	query := "agile"
	where, args := buildSearchWhere(SearchParams{Query: &query}, 1)

	if !strings.Contains(where, "journal_name ILIKE $2") {
		t.Errorf("where = %q, ожидался journal_name ILIKE $2", where)
	}
	if !strings.Contains(where, "se_practice ILIKE $3") {
		t.Errorf("where = %q, ожидался se_practice ILIKE $3", where)
	}
	if !strings.Contains(where, "unnest(authors)") {
		t.Errorf("where = %q, ожидался поиск по unnest(authors)", where)
	}
	if len(args) != 4 {
		t.Fatalf("args count = %d, ожидался 4 (status + 3 шаблона)", len(args))
	}
	for i := 1; i <= 3; i++ {
		if args[i] != "%agile%" {
			t.Errorf("args[%d] = %v, ожидался '%%agile%%'", i, args[i])
		}
	}
}

// TestBuildSearchWhere_EscapesWildcards проверяет, что спецсимволы ILIKE
// в пользовательском запросе экранируются: "100%" ищется как буквальная
// подстрока, а не как wildcard.
func TestBuildSearchWhere_EscapesWildcards(t *testing.T) {
	query := `100%_co\de`
	_, args := buildSearchWhere(SearchParams{Query: &query}, 1)

	if len(args) != 4 {
		t.Fatalf("args count = %d, ожидался 4", len(args))
	}
	want := `%100\%\_co\\de%`
	for i := 1; i <= 3; i++ {
		if args[i] != want {
			t.Errorf("args[%d] = %v, ожидался %q", i, args[i], want)
		}
	}
}

// TestBuildSearchWhere_EmptyQueryIgnored проверяет, что пустая строка
// запроса не добавляет текстовый фильтр.
func TestBuildSearchWhere_EmptyQueryIgnored(t *testing.T) {
	query := ""
	where, args := buildSearchWhere(SearchParams{Query: &query}, 1)

	if strings.Contains(where, "ILIKE") {
		t.Errorf("where = %q, текстовый фильтр не ожидался", where)
	}
	if len(args) != 1 {
		t.Errorf("args count = %d, ожидался 1", len(args))
	}
}

// TestBuildSearchWhere_Filters проверяет структурные фильтры.
func TestBuildSearchWhere_Filters(t *testing.T) {
	after, before := 2015, 2020
	params := SearchParams{
		SEPractice:    []string{"TDD", "Code Review"},
		Perspective:   []string{"Support"},
		AfterPubYear:  &after,
		BeforePubYear: &before,
	}
	where, args := buildSearchWhere(params, 1)

	if !strings.Contains(where, "se_practice = ANY($2)") {
		t.Errorf("where = %q, ожидался se_practice = ANY($2)", where)
	}
	if !strings.Contains(where, "perspective = ANY($3)") {
		t.Errorf("where = %q, ожидался perspective = ANY($3)", where)
	}
	if !strings.Contains(where, "pub_year >= $4") {
		t.Errorf("where = %q, ожидался pub_year >= $4", where)
	}
	if !strings.Contains(where, "pub_year <= $5") {
		t.Errorf("where = %q, ожидался pub_year <= $5", where)
	}
	if len(args) != 5 {
		t.Errorf("args count = %d, ожидался 5", len(args))
	}
}

// TestBuildSearchWhere_AllCombined проверяет сквозную нумерацию
// $-параметров при полном наборе фильтров.
func TestBuildSearchWhere_AllCombined(t *testing.T) {
	query := "pair programming"
	after := 2018
	params := SearchParams{
		Query:        &query,
		SEPractice:   []string{"Pair Programming"},
		AfterPubYear: &after,
	}
	where, args := buildSearchWhere(params, 1)

	// status=$1, query=$2..$4, se_practice=$5, pub_year=$6
	if !strings.Contains(where, "se_practice = ANY($5)") {
		t.Errorf("where = %q, ожидался se_practice = ANY($5)", where)
	}
	if !strings.Contains(where, "pub_year >= $6") {
		t.Errorf("where = %q, ожидался pub_year >= $6", where)
	}
	if len(args) != 6 {
		t.Errorf("args count = %d, ожидался 6", len(args))
	}
}

// --- Интеграционные тесты (testcontainers) ---

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool; контейнер и пул закрываются через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("speed_test"),
		postgres.WithUsername("speed"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("SPEED_DB_HOST", host)
	os.Setenv("SPEED_DB_PORT", port.Port())
	os.Setenv("SPEED_DB_NAME", "speed_test")
	os.Setenv("SPEED_DB_USER", "speed")
	os.Setenv("SPEED_DB_PASSWORD", "test-password")
	os.Setenv("SPEED_DB_SSL_MODE", "disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// newPendingArticle — тестовая статья в начальном состоянии.
func newPendingArticle(journal string, year int) *model.Article {
	return &model.Article{
		JournalName: journal,
		Authors:     []string{"Smith, J.", "Петров П.П."},
		PubYear:     year,
		Volume:      "12",
		Number:      "3",
		Pages:       "45-67",
		Link:        "https://doi.org/10.0000/example",
		SEPractice:  "TDD",
		Summary:     "Исследование влияния TDD на качество кода",
		Perspective: "Support",
		Status:      status.Initial,
		Impressions: 0,
		DOE:         time.Now().UTC(),
	}
}

func TestArticleCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewArticleRepository(pool)

	a := newPendingArticle("IEEE Software", 2023)

	// Create
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if a.ArticleID == "" {
		t.Fatal("ArticleID не сгенерирован")
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// GetByIDIncrement
	got, err := repo.GetByIDIncrement(ctx, a.ArticleID)
	if err != nil {
		t.Fatalf("GetByIDIncrement() ошибка: %v", err)
	}
	if got.JournalName != "IEEE Software" {
		t.Errorf("JournalName = %q, хотели %q", got.JournalName, "IEEE Software")
	}
	if len(got.Authors) != 2 {
		t.Errorf("Authors = %v, хотели 2 элемента", got.Authors)
	}
	if got.Status != status.StatusPending {
		t.Errorf("Status = %q, хотели Pending", got.Status)
	}

	// DeleteByID
	deleted, err := repo.DeleteByID(ctx, a.ArticleID)
	if err != nil {
		t.Fatalf("DeleteByID() ошибка: %v", err)
	}
	if !deleted {
		t.Error("deleted = false, хотели true")
	}

	// Повторное удаление — false
	deleted, err = repo.DeleteByID(ctx, a.ArticleID)
	if err != nil {
		t.Fatalf("повторный DeleteByID() ошибка: %v", err)
	}
	if deleted {
		t.Error("повторное удаление: deleted = true, хотели false")
	}
}

// TestArticleImpressions проверяет, что N чтений дают Impressions = N.
func TestArticleImpressions(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewArticleRepository(pool)

	a := newPendingArticle("ACM TOSEM", 2022)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	const reads = 5
	var last *model.Article
	for i := 0; i < reads; i++ {
		var err error
		last, err = repo.GetByIDIncrement(ctx, a.ArticleID)
		if err != nil {
			t.Fatalf("GetByIDIncrement() #%d ошибка: %v", i+1, err)
		}
	}

	if last.Impressions != reads {
		t.Errorf("Impressions = %d, хотели %d", last.Impressions, reads)
	}
}

// TestArticleUpdateStatus проверяет guarded-переход:
// обновление срабатывает только из разрешённого исходного статуса.
func TestArticleUpdateStatus(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewArticleRepository(pool)

	a := newPendingArticle("IEEE TSE", 2021)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	// Pending → Approved разрешён
	applied, err := repo.UpdateStatus(ctx, a.ArticleID, status.StatusApproved, nil,
		status.AllowedFrom(status.StatusApproved))
	if err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}
	if !applied {
		t.Fatal("Pending → Approved: applied = false, хотели true")
	}

	// Approved → Shortlisted запрещён (Shortlisted достижим только из Pending)
	applied, err = repo.UpdateStatus(ctx, a.ArticleID, status.StatusShortlisted, nil,
		status.AllowedFrom(status.StatusShortlisted))
	if err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}
	if applied {
		t.Error("Approved → Shortlisted: applied = true, хотели false")
	}

	// Жалоба переводит в Reported из любого статуса, с причиной
	reason := "Spam"
	applied, err = repo.UpdateStatus(ctx, a.ArticleID, status.StatusReported, &reason,
		status.AllowedFrom(status.StatusReported))
	if err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}
	if !applied {
		t.Fatal("Approved → Reported: applied = false, хотели true")
	}

	got, err := repo.GetByIDIncrement(ctx, a.ArticleID)
	if err != nil {
		t.Fatalf("GetByIDIncrement() ошибка: %v", err)
	}
	if got.Status != status.StatusReported {
		t.Errorf("Status = %q, хотели Reported", got.Status)
	}
	if got.Reason == nil || *got.Reason != "Spam" {
		t.Errorf("Reason = %v, хотели 'Spam'", got.Reason)
	}
}

// TestArticleSearch проверяет публичный поиск: только одобренные,
// текстовый OR-фильтр, границы года, лимит выдачи.
func TestArticleSearch(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewArticleRepository(pool)

	approved := newPendingArticle("Journal of Agile Methods", 2019)
	pending := newPendingArticle("Agile Quarterly", 2019)
	for _, a := range []*model.Article{approved, pending} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create() ошибка: %v", err)
		}
	}
	if _, err := repo.UpdateStatus(ctx, approved.ArticleID, status.StatusApproved, nil,
		status.AllowedFrom(status.StatusApproved)); err != nil {
		t.Fatalf("UpdateStatus() ошибка: %v", err)
	}

	// Текстовый запрос: находит только одобренную
	query := "agile"
	found, err := repo.Search(ctx, SearchParams{Query: &query, Limit: 30})
	if err != nil {
		t.Fatalf("Search() ошибка: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("len(found) = %d, хотели 1 (только одобренная)", len(found))
	}
	if found[0].ArticleID != approved.ArticleID {
		t.Errorf("найдена не та статья: %s", found[0].ArticleID)
	}

	// Поиск по автору
	query = "петров"
	found, err = repo.Search(ctx, SearchParams{Query: &query, Limit: 30})
	if err != nil {
		t.Fatalf("Search() по автору ошибка: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("поиск по автору: len(found) = %d, хотели 1", len(found))
	}

	// Противоречивые границы года — пустая выдача
	after, before := 2020, 2019
	found, err = repo.Search(ctx, SearchParams{AfterPubYear: &after, BeforePubYear: &before, Limit: 30})
	if err != nil {
		t.Fatalf("Search() с границами ошибка: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("противоречивые границы: len(found) = %d, хотели 0", len(found))
	}

	// Лимит выдачи
	found, err = repo.Search(ctx, SearchParams{Limit: 1})
	if err != nil {
		t.Fatalf("Search() с лимитом ошибка: %v", err)
	}
	if len(found) > 1 {
		t.Errorf("лимит: len(found) = %d, хотели <= 1", len(found))
	}
}

// TestArticleCreateMany проверяет пакетную вставку.
func TestArticleCreateMany(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewArticleRepository(pool)

	batch := []*model.Article{
		newPendingArticle("Batch Journal 1", 2020),
		newPendingArticle("Batch Journal 2", 2021),
		newPendingArticle("Batch Journal 3", 2022),
	}
	if err := repo.CreateMany(ctx, batch); err != nil {
		t.Fatalf("CreateMany() ошибка: %v", err)
	}

	for i, a := range batch {
		if a.ArticleID == "" {
			t.Errorf("batch[%d].ArticleID не сгенерирован", i)
		}
		if a.CreatedAt.IsZero() {
			t.Errorf("batch[%d].CreatedAt не установлен", i)
		}
	}

	pending, err := repo.ListByStatus(ctx, status.StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus() ошибка: %v", err)
	}
	if len(pending) < 3 {
		t.Errorf("len(pending) = %d, хотели >= 3", len(pending))
	}
}
