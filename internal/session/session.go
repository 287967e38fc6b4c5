package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/emilian8/crew-call-frontend/internal/api"
)

// Persisted keys. These are the only two values that survive a process
// restart; absence of either means the session starts anonymous.
const (
	keyToken = "crewcall_token"
	keyActor = "crewcall_userId"
)

// Credentials is the durable key/value store for the persisted session
// values. Implemented by store.Store and testutil.MemoryKV.
type Credentials interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// ActorSink receives the actor id whenever the session identity changes.
// Every domain cache registers as a sink.
type ActorSink interface {
	SetActor(id string)
}

// Cache is the session cache. It has exactly two states: anonymous (no
// credential) and authenticated (credential + actor id).
//
// Thread-safety: local state is mutex-guarded; the mutex is never held
// across a remote call or across sink propagation.
type Cache struct {
	client *api.Client
	creds  Credentials
	logger *slog.Logger

	mu      sync.Mutex
	token   string
	actorID string
	email   string
	loading bool
	lastErr string
	success string

	sinks      []ActorSink
	afterLogin func(ctx context.Context)
}

// New creates an anonymous session cache. Call Restore to pick up a
// persisted identity from a previous process.
func New(client *api.Client, creds Credentials, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, creds: creds, logger: logger}
}

// RegisterSink adds a dependent cache to the propagation list. Sinks are
// notified in registration order, synchronously, before any dependent
// remote call is issued.
func (c *Cache) RegisterSink(sink ActorSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sink)
}

// SetAfterLogin installs the hook run after a successful login's
// propagation, typically the event cache's initial load.
func (c *Cache) SetAfterLogin(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterLogin = fn
}

// Credential implements api.CredentialSource.
func (c *Cache) Credential() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// Authenticated reports whether the cache holds a credential.
func (c *Cache) Authenticated() bool {
	_, ok := c.Credential()
	return ok
}

// ActorID returns the current actor id, empty while anonymous.
func (c *Cache) ActorID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actorID
}

// Email returns the display email recorded at the last login or
// registration.
func (c *Cache) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

// LastError returns the message recorded by the most recent failed
// operation, empty after a success.
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SuccessMessage returns the confirmation recorded by the most recent
// successful registration.
func (c *Cache) SuccessMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success
}

// Loading reports whether an operation is in flight. Single-slot: two
// overlapping operations overwrite each other's flag.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Login authenticates the actor. On success the credential and actor id
// are persisted, the identity is propagated to every registered sink, and
// the after-login hook runs the initial event load. On any failure the
// session stays anonymous and the message lands in the error slot.
func (c *Cache) Login(ctx context.Context, email, password string) error {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointLogin, map[string]any{
		"email":    email,
		"password": password,
	})
	if !result.OK() {
		return c.fail(result.Err)
	}

	var payload struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := result.Decode(&payload); err != nil {
		return c.fail(err.Error())
	}
	if payload.Token == "" || payload.UserID == "" {
		return c.fail("Log In Failed")
	}

	c.mu.Lock()
	c.token = payload.Token
	c.actorID = payload.UserID
	c.email = email
	sinks := append([]ActorSink(nil), c.sinks...)
	after := c.afterLogin
	c.mu.Unlock()

	c.persist(payload.Token, payload.UserID)

	// Identity must reach every dependent cache before any of them can
	// issue a remote call for the new actor.
	for _, sink := range sinks {
		sink.SetActor(payload.UserID)
	}
	c.logger.Info("logged in", "actor", payload.UserID)

	if after != nil {
		after(ctx)
	}
	return nil
}

// Register creates an account. Success is signaled only when the response
// explicitly marks creation as true; authentication state never changes.
func (c *Cache) Register(ctx context.Context, email, password string) (bool, error) {
	c.begin()
	defer c.end()

	result := c.client.Call(ctx, api.EndpointCreateAccount, map[string]any{
		"email":    email,
		"password": password,
	})
	if !result.OK() {
		return false, c.fail(result.Err)
	}

	var payload struct {
		Created bool   `json:"created"`
		Message string `json:"message"`
	}
	if err := result.Decode(&payload); err != nil {
		return false, c.fail(err.Error())
	}
	if !payload.Created {
		return false, c.fail("Registration failed")
	}

	message := payload.Message
	if message == "" {
		message = "Account created, please log in"
	}
	c.mu.Lock()
	c.success = message
	c.email = email
	c.mu.Unlock()
	return true, nil
}

// Logout clears the credential, the actor id, and their persisted copies.
// Other caches keep their entities; they are stale until the next login
// propagates a fresh identity and reloads.
func (c *Cache) Logout() {
	c.mu.Lock()
	c.token = ""
	c.actorID = ""
	c.mu.Unlock()

	if err := c.creds.Delete(keyToken); err != nil {
		c.logger.Warn("clearing persisted token", "err", err)
	}
	if err := c.creds.Delete(keyActor); err != nil {
		c.logger.Warn("clearing persisted actor id", "err", err)
	}
	c.logger.Info("logged out")
}

// Restore re-establishes the authenticated state from the persisted
// credential and actor id, if both exist, and re-propagates the identity.
// Without the propagation the other caches would keep a previous default
// actor and corrupt every subsequent call.
func (c *Cache) Restore() {
	token, haveToken, err := c.creds.Get(keyToken)
	if err != nil {
		c.logger.Warn("reading persisted token", "err", err)
		return
	}
	actorID, haveActor, err := c.creds.Get(keyActor)
	if err != nil {
		c.logger.Warn("reading persisted actor id", "err", err)
		return
	}
	if !haveToken || !haveActor {
		return
	}

	c.mu.Lock()
	c.token = token
	c.actorID = actorID
	sinks := append([]ActorSink(nil), c.sinks...)
	c.mu.Unlock()

	for _, sink := range sinks {
		sink.SetActor(actorID)
	}
	c.logger.Info("session restored", "actor", actorID)
}

func (c *Cache) persist(token, actorID string) {
	// Persistence failures degrade to an in-memory session; the login
	// itself already succeeded.
	if err := c.creds.Set(keyToken, token); err != nil {
		c.logger.Warn("persisting token", "err", err)
	}
	if err := c.creds.Set(keyActor, actorID); err != nil {
		c.logger.Warn("persisting actor id", "err", err)
	}
}

func (c *Cache) begin() {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.success = ""
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
	c.logger.Warn("session operation failed", "err", message)
	return errors.New(message)
}

var _ api.CredentialSource = (*Cache)(nil)

// String renders the state for logs without leaking the credential.
func (c *Cache) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return "session(anonymous)"
	}
	return fmt.Sprintf("session(actor=%s)", c.actorID)
}
