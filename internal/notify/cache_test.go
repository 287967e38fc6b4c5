package notify

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilian8/crew-call-frontend/internal/api"
	"github.com/emilian8/crew-call-frontend/internal/model"
	"github.com/emilian8/crew-call-frontend/internal/testutil"
)

const notificationDocs = `[
	{"_id":"N1","recipient":"U1","subject":"Invited","body":"You were invited to Gala","createdAt":"2025-01-01T09:00:00Z","unread":true},
	{"_id":"N2","recipient":"U1","subject":"Assigned","body":"Setup is yours","createdAt":"2025-01-01T10:00:00Z","unread":false}
]`

func newTestCache(t *testing.T) (*Cache, *testutil.ScriptServer) {
	t.Helper()
	server := testutil.NewScriptServer(t)
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL()})
	require.NoError(t, err)

	cache := New(client, nil)
	cache.SetActor("U1")
	return cache, server
}

func TestRefresh(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)

	require.NoError(t, cache.Refresh(context.Background(), false))

	notifications := cache.Notifications()
	require.Len(t, notifications, 2)
	assert.Equal(t, model.Notification{
		ID:        "N1",
		Recipient: "U1",
		Subject:   "Invited",
		Body:      "You were invited to Gala",
		CreatedAt: "2025-01-01T09:00:00Z",
		Unread:    true,
	}, notifications[0])

	call, ok := server.LastCall(api.EndpointListNotifications)
	require.True(t, ok)
	assert.Equal(t, "U1", call.Payload["recipient"])
	assert.Equal(t, false, call.Payload["onlyUnread"])
}

func TestRefresh_OnlyUnread(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, `[]`)

	require.NoError(t, cache.Refresh(context.Background(), true))

	call, ok := server.LastCall(api.EndpointListNotifications)
	require.True(t, ok)
	assert.Equal(t, true, call.Payload["onlyUnread"])
}

func TestRefresh_ReplacesList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))

	server.Respond(api.EndpointListNotifications, `[]`)
	require.NoError(t, cache.Refresh(context.Background(), false))

	assert.Empty(t, cache.Notifications())
}

func TestRefresh_ServerErrorKeepsList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))

	server.RespondStatus(api.EndpointListNotifications, http.StatusInternalServerError, "server exploded")
	err := cache.Refresh(context.Background(), false)

	require.Error(t, err)
	assert.Equal(t, "HTTP 500: server exploded", cache.LastError())
	assert.Len(t, cache.Notifications(), 2, "a failed refresh never clobbers the list")
}

func TestUnreadCount(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))

	assert.Equal(t, 1, cache.UnreadCount())
}

func TestMarkRead(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))
	server.Respond(api.EndpointMarkRead, `{}`)

	require.NoError(t, cache.MarkRead(context.Background(), "N1"))

	assert.Equal(t, 0, cache.UnreadCount())
	call, ok := server.LastCall(api.EndpointMarkRead)
	require.True(t, ok)
	assert.Equal(t, "N1", call.Payload["notification"])
	assert.Equal(t, "U1", call.Payload["actor"])
}

func TestMarkRead_NotHeldLocally(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointMarkRead, `{}`)

	err := cache.MarkRead(context.Background(), "N-elsewhere")

	assert.ErrorIs(t, err, ErrNotInLocalCache)
	assert.Empty(t, cache.LastError(), "distinct from a server rejection")
	require.Len(t, server.Calls(api.EndpointMarkRead), 1, "the remote write still happened")
}

func TestMarkRead_ServerErrorKeepsFlag(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))
	server.Respond(api.EndpointMarkRead, `{"error":"not permitted"}`)

	err := cache.MarkRead(context.Background(), "N1")

	require.Error(t, err)
	assert.Equal(t, "not permitted", cache.LastError())
	assert.Equal(t, 1, cache.UnreadCount())
}

func TestDelete(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListNotifications, notificationDocs)
	require.NoError(t, cache.Refresh(context.Background(), false))
	server.Respond(api.EndpointDeleteNotification, `{}`)

	require.NoError(t, cache.Delete(context.Background(), "N1"))

	notifications := cache.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, "N2", notifications[0].ID)

	call, ok := server.LastCall(api.EndpointDeleteNotification)
	require.True(t, ok)
	assert.Equal(t, "N1", call.Payload["notification"])
	assert.Equal(t, "U1", call.Payload["actor"])
}

func TestDelete_NotHeldLocally(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointDeleteNotification, `{}`)

	err := cache.Delete(context.Background(), "N-elsewhere")

	assert.ErrorIs(t, err, ErrNotInLocalCache)
	require.Len(t, server.Calls(api.EndpointDeleteNotification), 1)
}
