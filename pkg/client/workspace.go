package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrHydrationTimeout reports that the workspace could not be resolved before
// either hydration timer fired.
var ErrHydrationTimeout = errors.New("client: workspace hydration timed out")

// Profile mirrors the server's profile payload.
type Profile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      *string `json:"role"`
	CompanyID *string `json:"company_id"`
}

// Company mirrors the server's company payload.
type Company struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AdminEmail string `json:"admin_email"`
}

// Workspace is the hydrated caller identity returned by /v1/me.
type Workspace struct {
	Profile *Profile `json:"profile"`
	Company *Company `json:"company,omitempty"`
	IsAdmin bool     `json:"is_admin"`
}

// Me fetches the caller's workspace once.
func (c *Client) Me(ctx context.Context) (*Workspace, error) {
	var workspace Workspace
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &workspace); err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ResolveWorkspace hydrates the caller's workspace under two independent
// timers: a primary timeout tuned for interactive use and a longer safety net
// in case the transport stalls past its own deadlines. Whichever fires first
// wins, so a caller is never blocked longer than the shorter of the two.
func (c *Client) ResolveWorkspace(ctx context.Context, primary, safetyNet time.Duration) (*Workspace, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		workspace *Workspace
		err       error
	}
	resultCh := make(chan result, 1)
	go func() {
		workspace, err := c.Me(fetchCtx)
		resultCh <- result{workspace: workspace, err: err}
	}()

	primaryTimer := time.NewTimer(primary)
	defer primaryTimer.Stop()
	safetyTimer := time.NewTimer(safetyNet)
	defer safetyTimer.Stop()

	select {
	case res := <-resultCh:
		return res.workspace, res.err
	case <-primaryTimer.C:
		return nil, fmt.Errorf("%w after %s", ErrHydrationTimeout, primary)
	case <-safetyTimer.C:
		return nil, fmt.Errorf("%w after %s", ErrHydrationTimeout, safetyNet)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// JoinRequest mirrors the server's join request payload.
type JoinRequest struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CompanyName string `json:"company_name"`
	AdminEmail  string `json:"admin_email"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// CreateJoinRequestResult reports the stored request id and whether the admin
// email actually went out.
type CreateJoinRequestResult struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	EmailSent bool   `json:"email_sent"`
}

// CreateJoinRequest asks to join the workspace owned by adminEmail.
func (c *Client) CreateJoinRequest(ctx context.Context, companyName, adminEmail string) (*CreateJoinRequestResult, error) {
	body := map[string]string{
		"company_name": companyName,
		"admin_email":  adminEmail,
	}
	var out CreateJoinRequestResult
	if err := c.do(ctx, http.MethodPost, "/v1/workspace-requests", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingRequests lists join requests addressed to the caller's email.
func (c *Client) PendingRequests(ctx context.Context) ([]JoinRequest, error) {
	var out struct {
		Requests []JoinRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/workspace-requests/pending", nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// DecisionResult reports the outcome of an approve or reject call.
type DecisionResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CompanyID string `json:"company_id,omitempty"`
	EmailSent bool   `json:"email_sent"`
}

// ApproveRequest approves a pending join request by its capability token.
func (c *Client) ApproveRequest(ctx context.Context, token string) (*DecisionResult, error) {
	return c.decide(ctx, "/v1/workspace-requests/approve", token)
}

// RejectRequest rejects a pending join request by its capability token.
func (c *Client) RejectRequest(ctx context.Context, token string) (*DecisionResult, error) {
	return c.decide(ctx, "/v1/workspace-requests/reject", token)
}

func (c *Client) decide(ctx context.Context, path, token string) (*DecisionResult, error) {
	body := map[string]string{"token": token}
	var out DecisionResult
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
