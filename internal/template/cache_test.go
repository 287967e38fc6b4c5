package template

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

const templateDocT1 = `{"_id":"T1","owner":"U1","title":"Concert crew","members":["U2","U3"],"standardDuties":["Setup","Teardown"]}`

func newTestCache(t *testing.T) (*Cache, *testutil.ScriptServer) {
	t.Helper()
	server := testutil.NewScriptServer(t)
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL()})
	require.NoError(t, err)

	cache := New(client, nil)
	cache.SetActor("U1")
	return cache, server
}

func TestList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListTemplates, `[`+templateDocT1+`]`)

	require.NoError(t, cache.List(context.Background()))

	templates := cache.Templates()
	require.Len(t, templates, 1)
	assert.Equal(t, model.Template{
		ID:             "T1",
		Owner:          "U1",
		Title:          "Concert crew",
		Members:        []string{"U2", "U3"},
		StandardDuties: []string{"Setup", "Teardown"},
	}, templates[0])

	call, ok := server.LastCall(api.EndpointListTemplates)
	require.True(t, ok)
	assert.Equal(t, "U1", call.Payload["owner"])
}

func TestList_ServerError(t *testing.T) {
	cache, server := newTestCache(t)
	server.RespondStatus(api.EndpointListTemplates, http.StatusInternalServerError, "server exploded")

	err := cache.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, "HTTP 500: server exploded", cache.LastError())
	assert.Empty(t, cache.Templates())
}

func TestCreate_ReloadsFullList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointCreateTemplate, `{"template":"T1"}`)
	server.Respond(api.EndpointListTemplates, `[`+templateDocT1+`]`)

	require.NoError(t, cache.Create(context.Background(), "Concert crew", []string{"U2", "U3"}, []string{"Setup", "Teardown"}))

	require.Len(t, cache.Templates(), 1)
	assert.Equal(t, "T1", cache.Templates()[0].ID)

	call, ok := server.LastCall(api.EndpointCreateTemplate)
	require.True(t, ok)
	assert.Equal(t, "U1", call.Payload["owner"])
	assert.Equal(t, "Concert crew", call.Payload["title"])
	require.Len(t, server.Calls(api.EndpointListTemplates), 1, "every write is followed by a reload")
}

func TestCreate_ErrorSkipsReload(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointCreateTemplate, `{"error":"title already taken"}`)

	err := cache.Create(context.Background(), "Concert crew", nil, nil)

	require.Error(t, err)
	assert.Equal(t, "title already taken", cache.LastError())
	assert.Empty(t, server.Calls(api.EndpointListTemplates))
}

func TestUpdate_SendsOnlySuppliedFields(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointUpdateTemplate, `{}`)
	server.Respond(api.EndpointListTemplates, `[`+templateDocT1+`]`)

	require.NoError(t, cache.Update(context.Background(), "T1", "Festival crew", nil, nil))

	call, ok := server.LastCall(api.EndpointUpdateTemplate)
	require.True(t, ok)
	assert.Equal(t, "T1", call.Payload["template"])
	assert.Equal(t, "Festival crew", call.Payload["title"])
	assert.NotContains(t, call.Payload, "members")
	assert.NotContains(t, call.Payload, "standardDuties")
}

func TestUpdate_EmptySliceClearsList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointUpdateTemplate, `{}`)
	server.Respond(api.EndpointListTemplates, `[]`)

	require.NoError(t, cache.Update(context.Background(), "T1", "", []string{}, nil))

	call, ok := server.LastCall(api.EndpointUpdateTemplate)
	require.True(t, ok)
	assert.Equal(t, []any{}, call.Payload["members"], "non-nil empty slice is an explicit clear")
	assert.NotContains(t, call.Payload, "title")
}

func TestDelete_ReloadsFullList(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointListTemplates, `[`+templateDocT1+`]`)
	require.NoError(t, cache.List(context.Background()))

	server.Respond(api.EndpointDeleteTemplate, `{}`)
	server.Respond(api.EndpointListTemplates, `[]`)
	require.NoError(t, cache.Delete(context.Background(), "T1"))

	assert.Empty(t, cache.Templates())
}

func TestApplyToEvent(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointApplyTemplate, `{"applied":4,"application":"A1"}`)

	application, err := cache.ApplyToEvent(context.Background(), "T1", "E1")

	require.NoError(t, err)
	assert.Equal(t, Application{Applied: 4, ID: "A1"}, application)

	call, ok := server.LastCall(api.EndpointApplyTemplate)
	require.True(t, ok)
	assert.Equal(t, "T1", call.Payload["template"])
	assert.Equal(t, "E1", call.Payload["event"])
	assert.Equal(t, "U1", call.Payload["actor"])
	assert.Empty(t, server.Calls(api.EndpointGetEventDuties), "applying never refreshes duties by itself")
}

func TestApplyToEvent_ServerError(t *testing.T) {
	cache, server := newTestCache(t)
	server.Respond(api.EndpointApplyTemplate, `{"error":"template not found"}`)

	_, err := cache.ApplyToEvent(context.Background(), "T-missing", "E1")

	require.Error(t, err)
	assert.Equal(t, "template not found", cache.LastError())
}

func TestSetActor_RedirectsSubsequentCalls(t *testing.T) {
	cache, server := newTestCache(t)
	server.RespondAlways(api.EndpointListTemplates, `[]`)

	require.NoError(t, cache.List(context.Background()))
	cache.SetActor("U2")
	require.NoError(t, cache.List(context.Background()))

	calls := server.Calls(api.EndpointListTemplates)
	require.Len(t, calls, 2)
	assert.Equal(t, "U1", calls[0].Payload["owner"])
	assert.Equal(t, "U2", calls[1].Payload["owner"])
}
