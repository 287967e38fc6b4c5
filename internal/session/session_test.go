package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/testutil"
)

type recordingSink struct {
	actors []string
}

func (r *recordingSink) SetActor(id string) {
	r.actors = append(r.actors, id)
}

func newTestCache(t *testing.T) (*Cache, *testutil.ScriptServer, *testutil.MemoryKV) {
	t.Helper()
	server := testutil.NewScriptServer(t)
	kv := testutil.NewMemoryKV()

	var cache *Cache
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: server.URL(),
		Credentials: api.CredentialFunc(func() (string, bool) {
			if cache == nil {
				return "", false
			}
			return cache.Credential()
		}),
	})
	require.NoError(t, err)
	cache = New(client, kv, nil)
	return cache, server, kv
}

func TestLogin_Success(t *testing.T) {
	cache, server, kv := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"token":"t1","userId":"U1"}`)

	sink := &recordingSink{}
	cache.RegisterSink(sink)

	var afterLoginActors []string
	cache.SetAfterLogin(func(ctx context.Context) {
		// Propagation must be complete by the time the hook runs.
		afterLoginActors = append([]string(nil), sink.actors...)
	})

	require.NoError(t, cache.Login(context.Background(), "a@x.com", "pw"))

	assert.True(t, cache.Authenticated())
	assert.Equal(t, "U1", cache.ActorID())
	assert.Equal(t, "a@x.com", cache.Email())
	assert.Empty(t, cache.LastError())
	assert.Equal(t, []string{"U1"}, sink.actors)
	assert.Equal(t, []string{"U1"}, afterLoginActors)

	token, ok, err := kv.Get("crewcall_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
	actor, ok, err := kv.Get("crewcall_userId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "U1", actor)

	call, ok := server.LastCall(api.EndpointLogin)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", call.Payload["email"])
	assert.Equal(t, "pw", call.Payload["password"])
}

func TestLogin_BusinessError(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"error":"bad credentials"}`)

	err := cache.Login(context.Background(), "a@x.com", "wrong")

	require.Error(t, err)
	assert.False(t, cache.Authenticated())
	assert.Equal(t, "bad credentials", cache.LastError())
}

func TestLogin_TransportError(t *testing.T) {
	cache, server, kv := newTestCache(t)
	server.RespondStatus(api.EndpointLogin, http.StatusInternalServerError, "server exploded")

	sink := &recordingSink{}
	cache.RegisterSink(sink)

	err := cache.Login(context.Background(), "a@x.com", "pw")

	require.Error(t, err)
	assert.Equal(t, "HTTP 500: server exploded", cache.LastError())
	assert.False(t, cache.Authenticated())
	assert.Empty(t, sink.actors, "no propagation on failure")
	_, ok, _ := kv.Get("crewcall_token")
	assert.False(t, ok, "nothing persisted on failure")
}

func TestLogin_MissingFieldsStaysAnonymous(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"token":"t1"}`)

	err := cache.Login(context.Background(), "a@x.com", "pw")

	require.Error(t, err)
	assert.Equal(t, "Log In Failed", cache.LastError())
	assert.False(t, cache.Authenticated())
}

func TestLogin_PropagatesToAllSinksBeforeHook(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"token":"t1","userId":"U1"}`)

	first := &recordingSink{}
	second := &recordingSink{}
	cache.RegisterSink(first)
	cache.RegisterSink(second)

	require.NoError(t, cache.Login(context.Background(), "a@x.com", "pw"))

	assert.Equal(t, []string{"U1"}, first.actors)
	assert.Equal(t, []string{"U1"}, second.actors)
}

func TestRegister_Created(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointCreateAccount, `{"created":true,"message":"welcome"}`)

	created, err := cache.Register(context.Background(), "a@x.com", "pw")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "welcome", cache.SuccessMessage())
	assert.False(t, cache.Authenticated(), "registration never authenticates")
}

func TestRegister_NotCreated(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointCreateAccount, `{"created":false}`)

	created, err := cache.Register(context.Background(), "a@x.com", "pw")

	require.Error(t, err)
	assert.False(t, created)
	assert.Equal(t, "Registration failed", cache.LastError())
}

func TestRegister_DefaultMessage(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointCreateAccount, `{"created":true}`)

	created, err := cache.Register(context.Background(), "a@x.com", "pw")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Account created, please log in", cache.SuccessMessage())
}

func TestLogout_ClearsStateAndPersistedCopies(t *testing.T) {
	cache, server, kv := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"token":"t1","userId":"U1"}`)
	require.NoError(t, cache.Login(context.Background(), "a@x.com", "pw"))

	cache.Logout()

	assert.False(t, cache.Authenticated())
	assert.Empty(t, cache.ActorID())
	_, ok, _ := kv.Get("crewcall_token")
	assert.False(t, ok)
	_, ok, _ = kv.Get("crewcall_userId")
	assert.False(t, ok)
}

func TestRestore_BothKeysPresent(t *testing.T) {
	cache, _, kv := newTestCache(t)
	require.NoError(t, kv.Set("crewcall_token", "t9"))
	require.NoError(t, kv.Set("crewcall_userId", "U9"))

	sink := &recordingSink{}
	cache.RegisterSink(sink)

	cache.Restore()

	assert.True(t, cache.Authenticated())
	assert.Equal(t, "U9", cache.ActorID())
	assert.Equal(t, []string{"U9"}, sink.actors)
}

func TestRestore_MissingKeyStaysAnonymous(t *testing.T) {
	cache, _, kv := newTestCache(t)
	require.NoError(t, kv.Set("crewcall_token", "t9"))

	sink := &recordingSink{}
	cache.RegisterSink(sink)

	cache.Restore()

	assert.False(t, cache.Authenticated())
	assert.Empty(t, sink.actors)
}

func TestCredentialAttachedToSubsequentCalls(t *testing.T) {
	cache, server, _ := newTestCache(t)
	server.Respond(api.EndpointLogin, `{"token":"t1","userId":"U1"}`)
	require.NoError(t, cache.Login(context.Background(), "a@x.com", "pw"))

	// The login call itself went out without a token.
	loginCall, ok := server.LastCall(api.EndpointLogin)
	require.True(t, ok)
	assert.NotContains(t, loginCall.Payload, "token")

	token, ok := cache.Credential()
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
}
