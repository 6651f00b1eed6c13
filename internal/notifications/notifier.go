// Package notifications publishes repository events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types published on EventsChannel.
const (
	EventCommentSubmitted = "comment.submitted"
	EventCommentModerated = "comment.moderated"
	EventCitationAdded    = "citation.added"
)

// EventsChannel carries every repository event.
const EventsChannel = "thesisrepo:events"

// Event is the JSON envelope of a published message.
type Event struct {
	Type       string    `json:"type"`
	ThesisID   uint      `json:"thesis_id"`
	ActorID    uint      `json:"actor_id,omitempty"`
	ResourceID uint      `json:"resource_id,omitempty"`
	Data       any       `json:"data,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEvent stamps ev and publishes it on EventsChannel. A nil client is a
// no-op.
func (n *Notifier) PublishEvent(ctx context.Context, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, EventsChannel, payload).Err()
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
