// Package queue публикует доменные события в RabbitMQ и пишет их в журнал аудита.
package queue

import "time"

const EventsQueueName = "registry.events"

// Действия над сущностями.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityEvent is published after a successful write to the registry.
type EntityEvent struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ID         int       `json:"id"`
	Name       string    `json:"name,omitempty"`
	ActorID    int       `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
