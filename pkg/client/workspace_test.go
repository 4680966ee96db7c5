package client

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

func TestResolveWorkspace_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Workspace{
			Profile: &Profile{ID: "p-1", Name: "Dana", Email: "dana@user.test"},
			Company: &Company{ID: "c-1", Name: "Acme Vision", AdminEmail: "dana@user.test"},
			IsAdmin: true,
		})
	}))
	defer server.Close()

	c := New(server.URL, WithToken("test-token"))
	workspace, err := c.ResolveWorkspace(context.Background(), time.Second, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, workspace.IsAdmin)
	assert.Equal(t, "Acme Vision", workspace.Company.Name)
}

// A stalled server loses the race against the primary timer; the caller gets
// a timeout in roughly the primary duration, not the transport's.
func TestResolveWorkspace_PrimaryTimeoutWins(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := New(server.URL)
	start := time.Now()
	workspace, err := c.ResolveWorkspace(context.Background(), 20*time.Millisecond, 5*time.Second)
	elapsed := time.Since(start)

	assert.Nil(t, workspace)
	assert.ErrorIs(t, err, ErrHydrationTimeout)
	assert.Less(t, elapsed, time.Second)
}

func TestResolveWorkspace_CallerCancelWins(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	c := New(server.URL)
	workspace, err := c.ResolveWorkspace(ctx, time.Minute, time.Minute)
	assert.Nil(t, workspace)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPendingRequestsAndDecisions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/workspace-requests/pending":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"requests": []JoinRequest{
					{ID: "r-1", CompanyName: "Acme Vision", Status: "email_sent"},
				},
				"count": 1,
			})
		case "/v1/workspace-requests/approve":
			var body struct {
				Token string `json:"token"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "tok-1", body.Token)
			_ = json.NewEncoder(w).Encode(DecisionResult{
				Success:   true,
				Message:   "Request approved. The user now belongs to Acme Vision.",
				CompanyID: "c-1",
				EmailSent: true,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(server.URL, WithToken("test-token"))

	requests, err := c.PendingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Acme Vision", requests[0].CompanyName)

	decision, err := c.ApproveRequest(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, decision.Success)
	assert.Equal(t, "c-1", decision.CompanyID)
}

func TestDecisionConflictSurfacesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ALREADY_PROCESSED","message":"This request has already been handled"}}`))
	}))
	defer server.Close()

	c := New(server.URL)
	decision, err := c.RejectRequest(context.Background(), "tok-1")
	assert.Nil(t, decision)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ALREADY_PROCESSED", apiErr.Code)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}
