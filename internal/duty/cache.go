package duty

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/model"
)

// ErrNoCurrentEvent is returned by operations that need a working event
// context before any was established.
var ErrNoCurrentEvent = errors.New("no current event set")

// ErrNotInLocalCache is returned when a confirmed mutation targets a duty
// the cache doesn't hold. The remote write (if any) already succeeded;
// only the local patch was skipped. Distinct from a server rejection so
// callers can decide how to treat it.
var ErrNotInLocalCache = errors.New("duty not in local cache")

// Clock supplies the stamps written into locally patched duties.
// testutil.FixedClock implements it for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// Cache holds the duties of the current event plus the archive overlay.
//
// Thread-safety: local state is mutex-guarded; the mutex is never held
// across a remote call. Overlapping operations interleave between a call
// and its synchronous patch; the last-applied patch wins.
type Cache struct {
	client *api.Client
	logger *slog.Logger
	clock  Clock

	mu       sync.Mutex
	actor    string
	current  *model.Event
	archived map[string]map[string]bool
	loading  bool
	lastErr  string
}

// New creates an empty duty cache.
func New(client *api.Client, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		client:   client,
		logger:   logger,
		clock:    systemClock{},
		archived: make(map[string]map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetActor re-points the cache at a new actor identity. Called by the
// session cache on login and restore, before any dependent remote call.
func (c *Cache) SetActor(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = id
}

// SetCurrentEvent establishes the working context. All duty operations
// implicitly target this event unless they take a duty id directly.
func (c *Cache) SetCurrentEvent(ev model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := ev
	copied.Duties = append([]model.Duty(nil), ev.Duties...)
	c.current = &copied
}

// CurrentEvent returns a copy of the working event, if one is set.
func (c *Cache) CurrentEvent() (model.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return model.Event{}, false
	}
	ev := *c.current
	ev.Duties = append([]model.Duty(nil), c.current.Duties...)
	return ev, true
}

// Duties returns a copy of the current event's duty list.
func (c *Cache) Duties() []model.Duty {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return append([]model.Duty(nil), c.current.Duties...)
}

// Open returns the current event's duties with status Open. Derived views
// do not consult archive marks; archiving is a separate visibility
// concern layered on by callers.
func (c *Cache) Open() []model.Duty { return c.byStatus(model.StatusOpen) }

// Assigned returns the current event's duties with status Assigned.
func (c *Cache) Assigned() []model.Duty { return c.byStatus(model.StatusAssigned) }

// Done returns the current event's duties with status Done.
func (c *Cache) Done() []model.Duty { return c.byStatus(model.StatusDone) }

func (c *Cache) byStatus(status model.DutyStatus) []model.Duty {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	var out []model.Duty
	for _, d := range c.current.Duties {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// LastError returns the message recorded by the most recent failed remote
// operation, empty after a success.
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loading reports whether an operation is in flight. Single-slot: two
// overlapping operations overwrite each other's flag.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LoadForEvent fetches the duties for an event, maps the documents, and
// attaches the result to the current event context. Archive marks are
// untouched — a reload never clears them.
func (c *Cache) LoadForEvent(ctx context.Context, eventID string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointGetEventDuties, map[string]any{"event": eventID})
	if !result.OK() {
		return c.fail(result.Err)
	}
	duties, err := model.DutiesFromDocuments(result.Data)
	if err != nil {
		return c.fail(err.Error())
	}

	c.mu.Lock()
	if c.current != nil {
		c.current.Duties = duties
	}
	c.mu.Unlock()
	return nil
}

// Add writes a new duty, then appends a locally constructed entity with
// status Open — no re-fetch. When an assignee is supplied, an assign call
// is chained on the new id immediately.
func (c *Cache) Add(ctx context.Context, title, dueAt, assignee string) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return ErrNoCurrentEvent
	}
	eventID := c.current.ID
	actor := c.actor
	c.mu.Unlock()

	c.begin()
	defer c.end()

	due, err := model.ParseInstant(dueAt)
	if err != nil {
		return c.fail(err.Error())
	}

	result := c.client.Call(ctx, api.EndpointAddDuty, map[string]any{
		"event": eventID,
		"actor": actor,
		"title": title,
		"dueAt": due,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	var payload struct {
		Duty string `json:"duty"`
	}
	if err := result.Decode(&payload); err != nil {
		return c.fail(err.Error())
	}
	if payload.Duty == "" {
		return c.fail("duty creation returned no id")
	}

	created := model.Duty{
		ID:        payload.Duty,
		Title:     title,
		DueAt:     due,
		Status:    model.StatusOpen,
		Event:     eventID,
		UpdatedAt: model.Canonical(c.clock.Now()),
	}
	c.mu.Lock()
	if c.current != nil && c.current.ID == eventID {
		c.current.Duties = append(c.current.Duties, created)
	}
	c.mu.Unlock()
	c.logger.Debug("duty added", "duty", created.ID, "event", eventID)

	if assignee != "" {
		return c.Assign(ctx, created.ID, assignee)
	}
	return nil
}

// Assign assigns a duty, then patches status, assignee, and the updated
// stamp on the in-memory copy.
func (c *Cache) Assign(ctx context.Context, dutyID, assignee string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointAssignDuty, map[string]any{
		"duty":     dutyID,
		"actor":    c.currentActor(),
		"assignee": assignee,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.patch(dutyID, func(d *model.Duty) {
		d.Status = model.StatusAssigned
		d.Assignee = assignee
	})
}

// Unassign clears a duty's assignee and returns it to Open.
func (c *Cache) Unassign(ctx context.Context, dutyID string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointUnassignDuty, map[string]any{
		"duty":  dutyID,
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.patch(dutyID, func(d *model.Duty) {
		d.Status = model.StatusOpen
		d.Assignee = ""
	})
}

// MarkDone moves a duty to Done. The assignee is untouched.
func (c *Cache) MarkDone(ctx context.Context, dutyID string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointMarkDone, map[string]any{
		"duty":  dutyID,
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.patch(dutyID, func(d *model.Duty) {
		d.Status = model.StatusDone
	})
}

// Reopen returns a duty to Open. Only the status and the updated stamp
// change; the assignee recorded by an earlier assign is unaffected.
func (c *Cache) Reopen(ctx context.Context, dutyID string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointReOpen, map[string]any{
		"duty":  dutyID,
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.patch(dutyID, func(d *model.Duty) {
		d.Status = model.StatusOpen
	})
}

// Update rewrites a duty's title and/or due instant. Empty arguments are
// left unchanged; only supplied fields are sent and patched.
func (c *Cache) Update(ctx context.Context, dutyID, title, dueAt string) error {
	c.begin()
	defer c.end()

	payload := map[string]any{
		"duty":  dutyID,
		"actor": c.currentActor(),
	}
	due := ""
	if title != "" {
		payload["title"] = title
	}
	if dueAt != "" {
		parsed, err := model.ParseInstant(dueAt)
		if err != nil {
			return c.fail(err.Error())
		}
		due = parsed
		payload["dueAt"] = due
	}

	result := c.client.Call(ctx, api.EndpointUpdateDuty, payload)
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.patch(dutyID, func(d *model.Duty) {
		if title != "" {
			d.Title = title
		}
		if due != "" {
			d.DueAt = due
		}
	})
}

// Delete removes the duty remotely and drops it from the current event's
// list the moment the call succeeds. Its archive mark, if any, is left
// behind; marks are cleared only by direct manipulation.
func (c *Cache) Delete(ctx context.Context, dutyID string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointDeleteDuty, map[string]any{
		"duty":  dutyID,
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ErrNotInLocalCache
	}
	kept := c.current.Duties[:0]
	found := false
	for _, d := range c.current.Duties {
		if d.ID == dutyID {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	c.current.Duties = kept
	if !found {
		return ErrNotInLocalCache
	}
	return nil
}

func (c *Cache) currentActor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actor
}

// patch applies fn to the matching duty in the current event and stamps
// its updated instant. Missing context or duty yields ErrNotInLocalCache.
func (c *Cache) patch(dutyID string, fn func(*model.Duty)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ErrNotInLocalCache
	}
	for i := range c.current.Duties {
		if c.current.Duties[i].ID == dutyID {
			fn(&c.current.Duties[i])
			c.current.Duties[i].UpdatedAt = model.Canonical(c.clock.Now())
			return nil
		}
	}
	return ErrNotInLocalCache
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
	c.logger.Warn("duty operation failed", "err", message)
	return errors.New(message)
}
