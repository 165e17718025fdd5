package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/sports-registry/queue"
)

// Типы сообщений realtime-хаба.
const (
	MsgSportsChanged        = "SPORTS_CHANGED"
	MsgOrganizationsChanged = "ORGANIZATIONS_CHANGED"
	MsgBuildingsChanged     = "BUILDINGS_CHANGED"
	MsgPeopleChanged        = "PEOPLE_CHANGED"
	MsgCompetitionsChanged  = "COMPETITIONS_CHANGED"
)

type Broadcaster interface {
	Broadcast(room, msgType string, payload interface{})
}

type EventPublisher interface {
	Publish(ctx context.Context, event queue.EntityEvent) error
}

type ReportCache interface {
	Key(name string, args ...interface{}) string
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// Notifier выполняет побочные эффекты успешной записи: сброс кеша отчётов,
// рассылку по хабу и публикацию события. Ошибки только логируются.
type Notifier struct {
	hub    Broadcaster
	events EventPublisher
	cache  ReportCache
	logger *slog.Logger
}

func NewNotifier(hub Broadcaster, events EventPublisher, cache ReportCache, logger *slog.Logger) *Notifier {
	return &Notifier{hub: hub, events: events, cache: cache, logger: logger}
}

func (n *Notifier) Changed(ctx context.Context, room, msgType string, event queue.EntityEvent) {
	if n == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if n.cache != nil {
		if err := n.cache.Invalidate(ctx); err != nil && n.logger != nil {
			n.logger.WarnContext(ctx, "failed to invalidate report cache", slog.String("entity", event.Entity), slog.Any("error", err))
		}
	}
	if n.hub != nil {
		n.hub.Broadcast(room, msgType, event)
	}
	if n.events != nil {
		// Publisher сам логирует ошибку.
		_ = n.events.Publish(ctx, event)
	}
}
