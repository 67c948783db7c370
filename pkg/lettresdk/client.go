// Package lettresdk holds the wire types of the workspace API together with
// a thin client for the routes consumed by scripts and the web front-end.
package lettresdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a decoded non-2xx API response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("lettre api: %s (%d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("lettre api: %s (%d)", e.Code, e.StatusCode)
}

// Client talks to a workspace service instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendSenderConfirmation invokes POST /api/expediteur/send-mail.
func (c *Client) SendSenderConfirmation(ctx context.Context, req SendMailRequest) (SendMailResponse, error) {
	var resp SendMailResponse
	err := c.postJSON(ctx, "/api/expediteur/send-mail", req, &resp)
	return resp, err
}

// ConsumeSenderToken invokes POST /api/expediteur/consume-token.
func (c *Client) ConsumeSenderToken(ctx context.Context, req ConsumeTokenRequest) (ConsumeTokenResponse, error) {
	var resp ConsumeTokenResponse
	err := c.postJSON(ctx, "/api/expediteur/consume-token", req, &resp)
	return resp, err
}

// RequestRecovery invokes POST /api/compte/recovery.
func (c *Client) RequestRecovery(ctx context.Context, req RecoveryRequest) (SuccessResponse, error) {
	var resp SuccessResponse
	err := c.postJSON(ctx, "/api/compte/recovery", req, &resp)
	return resp, err
}

// AcceptInvitation invokes POST /api/team/invitations/accept.
func (c *Client) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (AcceptInvitationResponse, error) {
	var resp AcceptInvitationResponse
	err := c.postJSON(ctx, "/api/team/invitations/accept", req, &resp)
	return resp, err
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "server_error"}
		var body ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Description = body.ErrorDescription
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
