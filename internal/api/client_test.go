package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCredentials struct {
	token string
}

func (s staticCredentials) Credential() (string, bool) {
	return s.token, s.token != ""
}

func newTestClient(t *testing.T, handler http.HandlerFunc, creds CredentialSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL, Credentials: creds})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("empty base URL rejected", func(t *testing.T) {
		_, err := NewClient(ClientConfig{})
		require.Error(t, err)
	})

	t.Run("trailing slash stripped", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://localhost:8000/api/"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", client.baseURL)
	})

	t.Run("invalid base URL rejected", func(t *testing.T) {
		_, err := NewClient(ClientConfig{BaseURL: "://bad"})
		require.Error(t, err)
	})
}

func TestCall_Success(t *testing.T) {
	var gotPath, gotContentType, gotAccept, gotRequestID string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"duty":"D1"}`))
	}, nil)

	result := client.Call(context.Background(), EndpointAddDuty, map[string]any{
		"event": "E1",
		"title": "Setup",
	})

	require.True(t, result.OK(), "unexpected error: %s", result.Err)
	assert.Equal(t, "/DutyRoster/addDuty", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "application/json", gotAccept)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "E1", gotBody["event"])
	assert.JSONEq(t, `{"duty":"D1"}`, string(result.Data))
}

func TestCall_AttachesCredential(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}, staticCredentials{token: "t1"})

	payload := map[string]any{"event": "E1"}
	result := client.Call(context.Background(), EndpointGetEvent, payload)

	require.True(t, result.OK())
	assert.Equal(t, "t1", gotBody["token"])
	// The caller's map is copied, not mutated.
	assert.NotContains(t, payload, "token")
}

func TestCall_OmitsAbsentCredential(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}, staticCredentials{})

	result := client.Call(context.Background(), EndpointLogin, map[string]any{"email": "a@x.com"})

	require.True(t, result.OK())
	assert.NotContains(t, gotBody, "token")
}

func TestCall_HTTPErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server exploded"))
	}, nil)

	result := client.Call(context.Background(), EndpointAddDuty, nil)

	require.False(t, result.OK())
	assert.Equal(t, "HTTP 500: server exploded", result.Err)
	assert.Nil(t, result.Data)
}

func TestCall_BusinessError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"not an organizer"}`))
	}, nil)

	result := client.Call(context.Background(), EndpointInvite, nil)

	require.False(t, result.OK())
	assert.Equal(t, "not an organizer", result.Err)
}

func TestCall_EmptyErrorFieldIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"","duty":"D1"}`))
	}, nil)

	result := client.Call(context.Background(), EndpointAddDuty, nil)

	require.True(t, result.OK())
}

func TestCall_ListBodyPassesThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"D1"}]`))
	}, nil)

	result := client.Call(context.Background(), EndpointGetEventDuties, nil)

	require.True(t, result.OK())
	assert.JSONEq(t, `[{"_id":"D1"}]`, string(result.Data))
}

func TestCall_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)
	server.Close() // Guarantee a connection failure.

	result := client.Call(context.Background(), EndpointLogin, nil)

	require.False(t, result.OK())
	assert.Contains(t, result.Err, "network error")
}

func TestResult_Decode(t *testing.T) {
	t.Run("success payload", func(t *testing.T) {
		result := okResult([]byte(`{"duty":"D1"}`))
		var payload struct {
			Duty string `json:"duty"`
		}
		require.NoError(t, result.Decode(&payload))
		assert.Equal(t, "D1", payload.Duty)
	})

	t.Run("decoding an error result fails", func(t *testing.T) {
		result := errResult("boom")
		var out map[string]any
		require.Error(t, result.Decode(&out))
	})
}
