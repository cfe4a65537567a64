package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/gospeed/internal/domain/model"
	"github.com/bigkaa/gospeed/internal/domain/status"
)

// articleColumns — список столбцов таблицы articles для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const articleColumns = `article_id, journal_name, authors, pub_year, volume, number,
	pages, link, se_practice, summary, perspective, status, reason, impressions,
	doe, created_at, updated_at`

// SearchParams — параметры публичного поиска по одобренным статьям.
// Все опциональные поля — указатели, nil = фильтр не применяется.
// Базовый предикат status = 'Approved' добавляется всегда.
type SearchParams struct {
	// Query — подстрочный поиск (case-insensitive) по журналу,
	// любому автору и практике; пустая строка = без текстового фильтра
	Query *string
	// SEPractice — статья должна относиться к одной из указанных практик
	SEPractice []string
	// Perspective — статья должна иметь одну из указанных позиций
	Perspective []string
	// AfterPubYear — год публикации >= границы
	AfterPubYear *int
	// BeforePubYear — год публикации <= границы
	BeforePubYear *int
	// Limit — количество результатов (сервис ограничивает сверху)
	Limit int
}

// ArticleRepository — интерфейс доступа к таблице articles.
type ArticleRepository interface {
	// Create вставляет новую статью, генерируя UUID.
	// ArticleID, CreatedAt и UpdatedAt заполняются на месте.
	Create(ctx context.Context, a *model.Article) error
	// CreateMany вставляет пакет статей одним batch-запросом.
	CreateMany(ctx context.Context, articles []*model.Article) error
	// GetByIDIncrement атомарно инкрементирует счётчик просмотров
	// и возвращает запись после инкремента.
	GetByIDIncrement(ctx context.Context, articleID string) (*model.Article, error)
	// UpdateStatus выполняет guarded-переход статуса: обновление срабатывает
	// только если текущий статус входит в allowedFrom. Возвращает true,
	// если строка была изменена (false — не найдена или переход недопустим).
	UpdateStatus(ctx context.Context, articleID string, target status.Status, reason *string, allowedFrom []status.Status) (bool, error)
	// DeleteByID удаляет запись. Возвращает true, если строка была удалена.
	DeleteByID(ctx context.Context, articleID string) (bool, error)
	// ListByStatus возвращает все записи с указанным статусом.
	ListByStatus(ctx context.Context, st status.Status) ([]*model.Article, error)
	// Search выполняет поиск по одобренным статьям с фильтрами.
	Search(ctx context.Context, params SearchParams) ([]*model.Article, error)
}

// articleRepo — реализация ArticleRepository через pgx.
type articleRepo struct {
	db DBTX
}

// NewArticleRepository создаёт репозиторий статей.
func NewArticleRepository(db DBTX) ArticleRepository {
	return &articleRepo{db: db}
}

// insertQuery — общий INSERT для Create и CreateMany.
const insertQuery = `
	INSERT INTO articles (article_id, journal_name, authors, pub_year, volume, number,
		pages, link, se_practice, summary, perspective, status, reason, impressions, doe)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING created_at, updated_at`

// insertArgs собирает аргументы INSERT в порядке insertQuery.
func insertArgs(a *model.Article) []any {
	return []any{
		a.ArticleID, a.JournalName, a.Authors, a.PubYear, a.Volume, a.Number,
		a.Pages, a.Link, a.SEPractice, a.Summary, a.Perspective,
		string(a.Status), a.Reason, a.Impressions, a.DOE,
	}
}

// Create вставляет новую статью. UUID генерируется на стороне адаптера —
// идентификатор неизменяем и не принимается от вызывающего.
func (r *articleRepo) Create(ctx context.Context, a *model.Article) error {
	a.ArticleID = uuid.NewString()

	err := r.db.QueryRow(ctx, insertQuery, insertArgs(a)...).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка вставки статьи: %w", err)
	}
	return nil
}

// CreateMany вставляет пакет статей одним pgx.Batch (один round-trip).
// Per-item результаты не возвращаются: первая ошибка прерывает пакет.
func (r *articleRepo) CreateMany(ctx context.Context, articles []*model.Article) error {
	if len(articles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range articles {
		a.ArticleID = uuid.NewString()
		batch.Queue(insertQuery, insertArgs(a)...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, a := range articles {
		if err := results.QueryRow().Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("ошибка пакетной вставки статьи %s: %w", a.ArticleID, err)
		}
	}
	return nil
}

// GetByIDIncrement атомарно инкрементирует impressions и возвращает запись.
// UPDATE ... RETURNING исключает гонку между чтением и инкрементом.
func (r *articleRepo) GetByIDIncrement(ctx context.Context, articleID string) (*model.Article, error) {
	query := fmt.Sprintf(`
		UPDATE articles
		SET impressions = impressions + 1, updated_at = now()
		WHERE article_id = $1
		RETURNING %s`, articleColumns)

	a, err := scanArticle(r.db.QueryRow(ctx, query, articleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статьи: %w", err)
	}
	return a, nil
}

// UpdateStatus — guarded-переход статуса. Условие status = ANY(allowedFrom)
// делает переход атомарным: конкурентное обновление проигрывает по guard'у,
// а не затирается last-write-wins.
func (r *articleRepo) UpdateStatus(ctx context.Context, articleID string, target status.Status, reason *string, allowedFrom []status.Status) (bool, error) {
	query := `
		UPDATE articles
		SET status = $2, reason = $3, updated_at = now()
		WHERE article_id = $1 AND status = ANY($4)`

	tag, err := r.db.Exec(ctx, query, articleID, string(target), reason, status.Strings(allowedFrom))
	if err != nil {
		return false, fmt.Errorf("ошибка обновления статуса статьи: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID удаляет запись. false — строки с таким ID не было.
func (r *articleRepo) DeleteByID(ctx context.Context, articleID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE article_id = $1`, articleID)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления статьи: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByStatus возвращает все записи с указанным статусом,
// новые записи первыми.
func (r *articleRepo) ListByStatus(ctx context.Context, st status.Status) ([]*model.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE status = $1 ORDER BY doe DESC`, articleColumns)

	rows, err := r.db.Query(ctx, query, string(st))
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки статей по статусу: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// Search выполняет поиск по одобренным статьям с динамическими фильтрами.
func (r *articleRepo) Search(ctx context.Context, params SearchParams) ([]*model.Article, error) {
	where, args := buildSearchWhere(params, 1)
	argNum := len(args) + 1

	query := fmt.Sprintf(
		`SELECT %s FROM articles %s LIMIT $%d`,
		articleColumns, where, argNum,
	)
	args = append(args, params.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска статей: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// likeEscaper экранирует спецсимволы шаблона ILIKE, чтобы пользовательский
// запрос сопоставлялся как буквальная подстрока ("100%" не становится wildcard).
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchWhere строит WHERE-условие и аргументы для поиска статей.
// startArg — номер первого $-параметра (для корректной нумерации).
// Первое условие всегда ограничивает выборку одобренными статьями.
func buildSearchWhere(params SearchParams, startArg int) (whereClause string, args []any) {
	var conditions []string
	argNum := startArg

	// Публичный поиск видит только одобренные статьи
	conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
	args = append(args, string(status.StatusApproved))
	argNum++

	// Текстовый запрос: OR по журналу, любому автору и практике (ILIKE подстрока)
	if params.Query != nil && *params.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(journal_name ILIKE $%d OR se_practice ILIKE $%d
				OR EXISTS (SELECT 1 FROM unnest(authors) AS author WHERE author ILIKE $%d))`,
			argNum, argNum+1, argNum+2,
		))
		pattern := "%" + likeEscaper.Replace(*params.Query) + "%"
		args = append(args, pattern, pattern, pattern)
		argNum += 3
	}

	// Фильтр по множеству практик
	if len(params.SEPractice) > 0 {
		conditions = append(conditions, fmt.Sprintf("se_practice = ANY($%d)", argNum))
		args = append(args, params.SEPractice)
		argNum++
	}

	// Фильтр по множеству позиций
	if len(params.Perspective) > 0 {
		conditions = append(conditions, fmt.Sprintf("perspective = ANY($%d)", argNum))
		args = append(args, params.Perspective)
		argNum++
	}

	// Нижняя граница года публикации
	if params.AfterPubYear != nil {
		conditions = append(conditions, fmt.Sprintf("pub_year >= $%d", argNum))
		args = append(args, *params.AfterPubYear)
		argNum++
	}

	// Верхняя граница года публикации
	if params.BeforePubYear != nil {
		conditions = append(conditions, fmt.Sprintf("pub_year <= $%d", argNum))
		args = append(args, *params.BeforePubYear)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanArticle сканирует одну строку в model.Article.
func scanArticle(row pgx.Row) (*model.Article, error) {
	a := &model.Article{}
	var st string
	err := row.Scan(
		&a.ArticleID, &a.JournalName, &a.Authors, &a.PubYear, &a.Volume, &a.Number,
		&a.Pages, &a.Link, &a.SEPractice, &a.Summary, &a.Perspective, &st, &a.Reason,
		&a.Impressions, &a.DOE, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = status.Status(st)
	return a, nil
}

// scanArticles сканирует все строки результата.
func scanArticles(rows pgx.Rows) ([]*model.Article, error) {
	var result []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования статьи: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
