package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gospeed/internal/domain/model"
)

// Метрика подавленных дубликатов.
var notifySuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "speed_notifications_suppressed_total",
	Help: "Количество подавленных повторных уведомлений о жалобах.",
})

// Dedup — декоратор Notifier, подавляющий повторные уведомления
// о жалобах на одну и ту же статью в пределах TTL-окна.
// Несколько жалоб на одну статью за короткое время — штатная ситуация
// (одна и та же статья открыта у многих пользователей), аналитику
// достаточно одного письма.
//
// Окно — expirable LRU (hashicorp/golang-lru/v2): per-instance,
// без внешнего состояния.
type Dedup struct {
	inner  Notifier
	seen   *expirable.LRU[string, time.Time]
	logger *slog.Logger
}

// NewDedup оборачивает Notifier TTL-окном подавления жалоб.
// maxSize — максимальное количество отслеживаемых статей,
// ttl — длительность окна подавления.
func NewDedup(inner Notifier, maxSize int, ttl time.Duration, logger *slog.Logger) *Dedup {
	return &Dedup{
		inner:  inner,
		seen:   expirable.NewLRU[string, time.Time](maxSize, nil, ttl),
		logger: logger.With(slog.String("component", "notify_dedup")),
	}
}

// ArticleSubmitted передаётся без изменений: уведомления о создании
// не дедуплицируются (каждая статья создаётся один раз).
func (d *Dedup) ArticleSubmitted(ctx context.Context, a *model.Article) error {
	return d.inner.ArticleSubmitted(ctx, a)
}

// BatchSubmitted передаётся без изменений.
func (d *Dedup) BatchSubmitted(ctx context.Context, count int) error {
	return d.inner.BatchSubmitted(ctx, count)
}

// ArticleReported подавляет повторные жалобы на ту же статью внутри TTL.
func (d *Dedup) ArticleReported(ctx context.Context, articleID, reason string) error {
	if _, ok := d.seen.Get(articleID); ok {
		notifySuppressedTotal.Inc()
		d.logger.Debug("Повторная жалоба подавлена",
			slog.String("article_id", articleID),
		)
		return nil
	}

	if err := d.inner.ArticleReported(ctx, articleID, reason); err != nil {
		return err
	}

	d.seen.Add(articleID, time.Now())
	return nil
}
