// Пакет notify — уведомления модерации по электронной почте.
//
// Получатель определяется ролью: новые статьи уходят модератору,
// жалобы — аналитику. Адреса задаются конфигурацией, не кодом.
// Отправка — best-effort: сервисный слой логирует ошибки отправки
// и никогда не возвращает их вызывающему.
package notify

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gospeed/internal/domain/model"
)

// Prometheus-метрики уведомлений.
var (
	notifySentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speed_notifications_sent_total",
		Help: "Количество успешно отправленных уведомлений по типам.",
	}, []string{"kind"})
	notifyFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speed_notifications_failed_total",
		Help: "Количество неудачных отправок уведомлений по типам.",
	}, []string{"kind"})
)

// Типы уведомлений (лейбл kind в метриках).
const (
	kindSubmitted = "submitted"
	kindBatch     = "batch_submitted"
	kindReported  = "reported"
)

// Notifier — порт исходящих уведомлений модерации.
type Notifier interface {
	// ArticleSubmitted уведомляет модератора о новой статье.
	ArticleSubmitted(ctx context.Context, a *model.Article) error
	// BatchSubmitted уведомляет модератора о пакетной загрузке.
	BatchSubmitted(ctx context.Context, count int) error
	// ArticleReported уведомляет аналитика о жалобе на статью.
	ArticleReported(ctx context.Context, articleID, reason string) error
}
