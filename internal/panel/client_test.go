package panel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second, nil)
}

func TestClientAuthHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Account{ID: "u1"})
	})

	account, err := c.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", account.ID)
}

func TestClientListServers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/accounts/u1/servers", r.URL.Path)
		json.NewEncoder(w).Encode([]Server{
			{ID: "s1", Name: "lobby", Status: "running"},
			{ID: "s2", Name: "forge", Status: "stopped"},
		})
	})

	servers, err := c.ListServers(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "lobby", servers[0].Name)
}

func TestClientAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no such server"})
	})

	_, err := c.GetServer(context.Background(), "nope")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "no such server", apiErr.Message)
}

func TestClientListEventsSince(t *testing.T) {
	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("since"))
		json.NewEncoder(w).Encode([]Event{{ID: "e1", Type: "server.start"}})
	})

	events, err := c.ListEvents(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "server.start", events[0].Type)
}

func TestClientVerifyCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds["username"])
		json.NewEncoder(w).Encode(Account{ID: "u1", Username: "alice", Admin: true})
	})

	account, err := c.VerifyCredentials(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.True(t, account.Admin)
}

func TestClientContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.GetAccount(ctx, "u1")
	assert.Error(t, err)
}
