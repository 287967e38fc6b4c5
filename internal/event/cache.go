package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/model"
)

// Cache holds the events visible to the current actor.
//
// Thread-safety: local state is mutex-guarded; the mutex is never held
// across a remote call, so overlapping operations interleave only between
// a call and its synchronous patch. The last-applied patch wins — LoadMine
// de-duplicates by event id specifically so overlapping loads cannot leave
// duplicate entries.
type Cache struct {
	client *api.Client
	logger *slog.Logger

	mu      sync.Mutex
	actor   string
	events  []model.Event
	roles   map[string]model.Role
	members map[string][]model.Member
	loading bool
	lastErr string
}

// New creates an empty event cache.
func New(client *api.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client:  client,
		logger:  logger,
		roles:   make(map[string]model.Role),
		members: make(map[string][]model.Member),
	}
}

// SetActor re-points the cache at a new actor identity. Called by the
// session cache on login and restore, before any dependent remote call.
func (c *Cache) SetActor(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actor = id
}

// Events returns a copy of the cached event list.
func (c *Cache) Events() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Event(nil), c.events...)
}

// Role returns the actor's role for an event, if known.
func (c *Cache) Role(eventID string) (model.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.roles[eventID]
	return role, ok
}

// Members returns a copy of the cached membership list for an event.
func (c *Cache) Members(eventID string) []model.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Member(nil), c.members[eventID]...)
}

// LastError returns the message recorded by the most recent failed
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

// LoadMine fetches the (event id, role) pairs visible to the current actor
// and then each event's full document. A failure fetching an individual
// document omits that event instead of failing the whole load. The final
// list replaces the cache's events after de-duplication by id.
func (c *Cache) LoadMine(ctx context.Context) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointGetUserEvents, map[string]any{
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	var rows []struct {
		Event string     `json:"event"`
		Role  model.Role `json:"role"`
	}
	if err := result.Decode(&rows); err != nil {
		return c.fail(err.Error())
	}

	loaded := make([]model.Event, 0, len(rows))
	roles := make(map[string]model.Role, len(rows))
	for _, row := range rows {
		roles[row.Event] = row.Role

		fetched := c.client.Call(ctx, api.EndpointGetEvent, map[string]any{"event": row.Event})
		if !fetched.OK() {
			c.logger.Debug("skipping unreadable event", "event", row.Event, "err", fetched.Err)
			continue
		}
		doc, err := model.DocumentFromRaw(fetched.Data)
		if err != nil {
			c.logger.Debug("skipping malformed event document", "event", row.Event, "err", err)
			continue
		}
		loaded = append(loaded, model.EventFromDocument(doc))
	}

	c.mu.Lock()
	for id, role := range roles {
		c.roles[id] = role
	}
	c.events = dedupeByID(loaded)
	c.mu.Unlock()
	return nil
}

// Create writes a new event, fetches its document, and inserts it at the
// front of the list. The creating actor's Organizer role is recorded
// locally without a round trip. An entry with the same id left behind by
// an overlapping load is replaced, not duplicated.
func (c *Cache) Create(ctx context.Context, title, startsAt, endsAt string) error {
	c.begin()
	defer c.end()

	starts, err := model.ParseInstant(startsAt)
	if err != nil {
		return c.fail(err.Error())
	}
	ends, err := model.ParseInstant(endsAt)
	if err != nil {
		return c.fail(err.Error())
	}

	result := c.client.Call(ctx, api.EndpointCreateEvent, map[string]any{
		"actor":    c.currentActor(),
		"title":    title,
		"startsAt": model.TaggedDate(starts),
		"endsAt":   model.TaggedDate(ends),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	var payload struct {
		Event string `json:"event"`
	}
	if err := result.Decode(&payload); err != nil {
		return c.fail(err.Error())
	}
	if payload.Event == "" {
		return c.fail("event creation returned no id")
	}

	fetched := c.client.Call(ctx, api.EndpointGetEvent, map[string]any{"event": payload.Event})
	if !fetched.OK() {
		return c.fail(fetched.Err)
	}
	doc, err := model.DocumentFromRaw(fetched.Data)
	if err != nil {
		return c.fail(err.Error())
	}
	created := model.EventFromDocument(doc)

	c.mu.Lock()
	c.insertOrReplace(created)
	c.roles[created.ID] = model.RoleOrganizer
	c.mu.Unlock()
	return nil
}

// LoadMembers fetches the authoritative membership list for an event.
func (c *Cache) LoadMembers(ctx context.Context, eventID string) error {
	result := c.client.Call(ctx, api.EndpointGetEventMembers, map[string]any{"event": eventID})
	if !result.OK() {
		return c.fail(result.Err)
	}
	list, err := model.MembersFromDocuments(result.Data)
	if err != nil {
		return c.fail(err.Error())
	}

	c.mu.Lock()
	c.members[eventID] = list
	c.mu.Unlock()
	return nil
}

// Invite adds a member. Membership is always re-fetched after the write;
// the server is the source of truth for role assignment.
func (c *Cache) Invite(ctx context.Context, eventID, invitee string, role model.Role) error {
	result := c.client.Call(ctx, api.EndpointInvite, map[string]any{
		"event":   eventID,
		"actor":   c.currentActor(),
		"invitee": invitee,
		"role":    string(role),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.LoadMembers(ctx, eventID)
}

// RemoveMember removes a member, then re-fetches membership.
func (c *Cache) RemoveMember(ctx context.Context, eventID, member string) error {
	result := c.client.Call(ctx, api.EndpointRemoveMember, map[string]any{
		"event":  eventID,
		"actor":  c.currentActor(),
		"member": member,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}
	return c.LoadMembers(ctx, eventID)
}

// SetActive flips the event's active flag. The flag is the entire
// mutation, so the local patch after confirmation needs no reload.
func (c *Cache) SetActive(ctx context.Context, eventID string, flag bool) error {
	result := c.client.Call(ctx, api.EndpointSetActive, map[string]any{
		"event":  eventID,
		"actor":  c.currentActor(),
		"active": flag,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	c.mu.Lock()
	for i := range c.events {
		if c.events[i].ID == eventID {
			c.events[i].Active = flag
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// Delete removes the event remotely, then removes the event and its
// member/role entries from local state in one step. Local removal is not
// conditional on a follow-up read.
func (c *Cache) Delete(ctx context.Context, eventID string) error {
	result := c.client.Call(ctx, api.EndpointDeleteEvent, map[string]any{
		"event": eventID,
		"actor": c.currentActor(),
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	c.mu.Lock()
	kept := c.events[:0]
	for _, ev := range c.events {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	c.events = kept
	delete(c.members, eventID)
	delete(c.roles, eventID)
	c.mu.Unlock()
	return nil
}

func (c *Cache) currentActor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actor
}

// insertOrReplace puts ev at the front of the list, or overwrites an
// existing entry with the same id in place. Guards against a race with an
// overlapping load that already inserted the event.
func (c *Cache) insertOrReplace(ev model.Event) {
	for i := range c.events {
		if c.events[i].ID == ev.ID {
			c.events[i] = ev
			return
		}
	}
	c.events = append([]model.Event{ev}, c.events...)
}

// dedupeByID collapses duplicate event ids, last write wins, keeping the
// position of the first occurrence.
func dedupeByID(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	index := make(map[string]int, len(events))
	for _, ev := range events {
		if at, seen := index[ev.ID]; seen {
			out[at] = ev
			continue
		}
		index[ev.ID] = len(out)
		out = append(out, ev)
	}
	return out
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
	c.logger.Warn("event operation failed", "err", message)
	return errors.New(message)
}
