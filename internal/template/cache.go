package template

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/model"
)

// Application is the outcome of expanding a template onto an event.
type Application struct {
	// Applied is the number of duties the expansion emitted.
	Applied int `json:"applied"`
	// ID identifies the application on the server side.
	ID string `json:"application"`
}

// Cache holds the templates owned by the current actor.
//
// Thread-safety: local state is mutex-guarded; the mutex is never held
// across a remote call.
type Cache struct {
	client *api.Client
	logger *slog.Logger

	mu        sync.Mutex
	actor     string
	templates []model.Template
	loading   bool
	lastErr   string
}

// New creates an empty template cache.
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

// Templates returns a copy of the cached template list.
func (c *Cache) Templates() []model.Template {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Template(nil), c.templates...)
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

// List fetches the templates owned by the current actor and replaces the
// cached list.
func (c *Cache) List(ctx context.Context) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointListTemplates, map[string]any{
		"owner": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	templates, err := model.TemplatesFromDocuments(result.Data)
	if err != nil {
		return c.fail(err.Error())
	}

	c.mu.Lock()
	c.templates = templates
	c.mu.Unlock()
	return nil
}

// Create writes a new template, then reloads the owner's list.
func (c *Cache) Create(ctx context.Context, title string, members, standardDuties []string) error {
	result := c.client.Call(ctx, api.EndpointCreateTemplate, map[string]any{
		"owner":          c.currentActor(),
		"title":          title,
		"members":        members,
		"standardDuties": standardDuties,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.List(ctx)
}

// Update rewrites the supplied fields of a template, then reloads. An
// empty title and nil slices are left unchanged; an empty non-nil slice
// clears the corresponding list.
func (c *Cache) Update(ctx context.Context, templateID, title string, members, standardDuties []string) error {
	payload := map[string]any{
		"template": templateID,
		"owner":    c.currentActor(),
	}
	if title != "" {
		payload["title"] = title
	}
	if members != nil {
		payload["members"] = members
	}
	if standardDuties != nil {
		payload["standardDuties"] = standardDuties
	}

	result := c.client.Call(ctx, api.EndpointUpdateTemplate, payload)
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.List(ctx)
}

// Delete removes a template, then reloads the owner's list.
func (c *Cache) Delete(ctx context.Context, templateID string) error {
	result := c.client.Call(ctx, api.EndpointDeleteTemplate, map[string]any{
		"template": templateID,
		"owner":    c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.List(ctx)
}

// ApplyToEvent expands a template into concrete duties on the target
// event. It returns what the server reports and nothing more: the duty
// cache is NOT refreshed here — the caller reloads duties for the event
// when it wants to see them.
func (c *Cache) ApplyToEvent(ctx context.Context, templateID, eventID string) (Application, error) {
	result := c.client.Call(ctx, api.EndpointApplyTemplate, map[string]any{
		"template": templateID,
		"event":    eventID,
		"actor":    c.currentActor(),
	})
	if !result.OK() {
		return Application{}, c.fail(result.Err)
	}

	var application Application
	if err := result.Decode(&application); err != nil {
		return Application{}, c.fail(err.Error())
	}
	return application, nil
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
	c.logger.Warn("template operation failed", "err", message)
	return errors.New(message)
}
