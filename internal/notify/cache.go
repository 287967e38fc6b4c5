package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/model"
)

// ErrNotInLocalCache is returned when a patch targets a notification the
// cache doesn't hold. The remote write has already happened by then.
var ErrNotInLocalCache = errors.New("notification not in local cache")

// Cache holds the notifications addressed to the current actor.
//
// Thread-safety: local state is mutex-guarded; the mutex is never held
// across a remote call.
type Cache struct {
	client *api.Client
	logger *slog.Logger

	mu            sync.Mutex
	actor         string
	notifications []model.Notification
	loading       bool
	lastErr       string
}

// New creates an empty notification cache.
func New(client *api.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, logger: logger}
}

// SetActor re-points the cache at a new actor identity.
func (c *Cache) SetActor(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = id
}

// Notifications returns a copy of the cached list.
func (c *Cache) Notifications() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Notification(nil), c.notifications...)
}

// UnreadCount derives the number of unread notifications from the
// cached list.
func (c *Cache) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.notifications {
		if n.Unread {
			count++
		}
	}
	return count
}

// LastError returns the message recorded by the most recent failed
// operation, empty after a success.
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loading reports whether an operation is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Refresh fetches the actor's notifications and replaces the cached
// list. With onlyUnread set the server filters out read entries.
func (c *Cache) Refresh(ctx context.Context, onlyUnread bool) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointListNotifications, map[string]any{
		"recipient":  c.currentActor(),
		"onlyUnread": onlyUnread,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	notifications, err := model.NotificationsFromDocuments(result.Data)
	if err != nil {
		return c.fail(err.Error())
	}

	c.mu.Lock()
	c.notifications = notifications
	c.mu.Unlock()
	return nil
}

// MarkRead clears the unread flag of one notification, remote first.
func (c *Cache) MarkRead(ctx context.Context, notificationID string) error {
	result := c.client.Call(ctx, api.EndpointMarkRead, map[string]any{
		"notification": notificationID,
		"actor":        c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == notificationID {
			c.notifications[i].Unread = false
			return nil
		}
	}
	return ErrNotInLocalCache
}

// Delete removes one notification, remote first.
func (c *Cache) Delete(ctx context.Context, notificationID string) error {
	result := c.client.Call(ctx, api.EndpointDeleteNotification, map[string]any{
		"notification": notificationID,
		"actor":        c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == notificationID {
			c.notifications = append(c.notifications[:i], c.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotInLocalCache
}

func (c *Cache) currentActor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actor
}

func (c *Cache) begin() {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Cache) end() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

func (c *Cache) fail(message string) error {
	c.mu.Lock()
	c.lastErr = message
	c.mu.Unlock()
	c.logger.Warn("notification operation failed", "err", message)
	return errors.New(message)
}
