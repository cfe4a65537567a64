package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/wneessen/go-mail"

	"github.com/bigkaa/gospeed/internal/config"
	"github.com/bigkaa/gospeed/internal/domain/model"
)

// Шаблоны писем. Тело — plain text, разметка не требуется.
var (
	submittedTmpl = template.Must(template.New("submitted").Parse(
		`Поступила новая статья на модерацию.

ID:       {{.ArticleID}}
Журнал:   {{.JournalName}}
Авторы:   {{.AuthorsJoined}}
Год:      {{.PubYear}}
Практика: {{.SEPractice}}

Статья ожидает решения в очереди Pending.
`))

	batchTmpl = template.Must(template.New("batch").Parse(
		`Пакетная загрузка: {{.Count}} новых статей добавлено в очередь Pending.
`))

	reportedTmpl = template.Must(template.New("reported").Parse(
		`На статью поступила жалоба.

ID:      {{.ArticleID}}
Причина: {{.Reason}}

Статья переведена в статус Reported и скрыта из публичного поиска.
`))
)

// Mailer — SMTP-реализация Notifier через go-mail.
type Mailer struct {
	client    *mail.Client
	from      string
	moderator string
	analyst   string
	logger    *slog.Logger
}

// NewMailer создаёт SMTP-отправитель уведомлений.
// Аутентификация включается только при заданном SPEED_SMTP_USER.
func NewMailer(cfg *config.Config, logger *slog.Logger) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания SMTP-клиента: %w", err)
	}

	return &Mailer{
		client:    client,
		from:      cfg.SMTPFrom,
		moderator: cfg.NotifyModeratorEmail,
		analyst:   cfg.NotifyAnalystEmail,
		logger:    logger.With(slog.String("component", "mailer")),
	}, nil
}

// ArticleSubmitted отправляет модератору уведомление о новой статье.
func (m *Mailer) ArticleSubmitted(ctx context.Context, a *model.Article) error {
	body, err := render(submittedTmpl, struct {
		*model.Article
		AuthorsJoined string
	}{a, strings.Join(a.Authors, ", ")})
	if err != nil {
		return err
	}
	return m.send(ctx, kindSubmitted, m.moderator, "SPEED: новая статья на модерации", body)
}

// BatchSubmitted отправляет модератору сводку пакетной загрузки.
func (m *Mailer) BatchSubmitted(ctx context.Context, count int) error {
	body, err := render(batchTmpl, struct{ Count int }{count})
	if err != nil {
		return err
	}
	return m.send(ctx, kindBatch, m.moderator, "SPEED: пакетная загрузка статей", body)
}

// ArticleReported отправляет аналитику уведомление о жалобе.
func (m *Mailer) ArticleReported(ctx context.Context, articleID, reason string) error {
	body, err := render(reportedTmpl, struct{ ArticleID, Reason string }{articleID, reason})
	if err != nil {
		return err
	}
	return m.send(ctx, kindReported, m.analyst, "SPEED: жалоба на статью", body)
}

// send формирует и отправляет письмо, обновляя метрики.
func (m *Mailer) send(ctx context.Context, kind, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		notifyFailedTotal.WithLabelValues(kind).Inc()
		return fmt.Errorf("некорректный адрес отправителя %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		notifyFailedTotal.WithLabelValues(kind).Inc()
		return fmt.Errorf("некорректный адрес получателя %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		notifyFailedTotal.WithLabelValues(kind).Inc()
		return fmt.Errorf("ошибка отправки письма: %w", err)
	}

	notifySentTotal.WithLabelValues(kind).Inc()
	m.logger.Debug("Уведомление отправлено",
		slog.String("kind", kind),
		slog.String("to", to),
	)
	return nil
}

// render выполняет шаблон в строку.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("ошибка рендеринга шаблона письма: %w", err)
	}
	return buf.String(), nil
}

// LogNotifier — заглушка без SMTP: уведомления только логируются.
// Используется, когда SPEED_SMTP_HOST не задан.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier создаёт логирующую заглушку Notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notify_log"))}
}

// ArticleSubmitted логирует событие вместо отправки письма.
func (n *LogNotifier) ArticleSubmitted(_ context.Context, a *model.Article) error {
	n.logger.Info("SMTP не настроен, уведомление о новой статье пропущено",
		slog.String("article_id", a.ArticleID),
	)
	return nil
}

// BatchSubmitted логирует событие вместо отправки письма.
func (n *LogNotifier) BatchSubmitted(_ context.Context, count int) error {
	n.logger.Info("SMTP не настроен, уведомление о пакетной загрузке пропущено",
		slog.Int("count", count),
	)
	return nil
}

// ArticleReported логирует событие вместо отправки письма.
func (n *LogNotifier) ArticleReported(_ context.Context, articleID, _ string) error {
	n.logger.Info("SMTP не настроен, уведомление о жалобе пропущено",
		slog.String("article_id", articleID),
	)
	return nil
}
