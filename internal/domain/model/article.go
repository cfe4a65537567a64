// Пакет model — доменные модели SPEED.
// Article — маппинг таблицы articles (библиографические записи
// об исследованиях практик программной инженерии).
package model

import (
	"time"

	"github.com/bigkaa/gospeed/internal/domain/status"
)

// Article — библиографическая запись в базе SPEED.
// ArticleID и DOE неизменяемы после создания. Impressions изменяется
// только атомарным инкрементом при чтении записи по ID.
type Article struct {
	// ArticleID — UUID записи (генерируется при вставке)
	ArticleID string
	// JournalName — название журнала / издания
	JournalName string
	// Authors — список авторов
	Authors []string
	// PubYear — год публикации
	PubYear int
	// Volume — том журнала
	Volume string
	// Number — номер выпуска
	Number string
	// Pages — страницы
	Pages string
	// Link — ссылка на публикацию (DOI или URL)
	Link string
	// SEPractice — исследуемая практика (TDD, Agile и т.п.)
	SEPractice string
	// Summary — краткое описание заявленного результата
	Summary string
	// Perspective — позиция статьи к практике (Support/Neutral/Reject)
	Perspective string
	// Status — статус модерации (Pending/Approved/Rejected/Shortlisted/Reported)
	Status status.Status
	// Reason — обоснование последнего изменения статуса (опционально)
	Reason *string
	// Impressions — счётчик просмотров детальной карточки
	Impressions int
	// DOE — дата внесения записи (date of entry), ставится один раз
	DOE time.Time
	// CreatedAt — время создания строки
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления строки
	UpdatedAt time.Time
}
