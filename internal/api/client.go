// Package api is the JSON-over-HTTP client for a Ledgerdesk server. It is
// the only place that knows about wire paths and status codes; everything
// above it works with typed values and structured errors.
package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// CloudBaseURL is the hosted Ledgerdesk endpoint used by "reset to cloud".
const CloudBaseURL = "https://app.ledgerdesk.io"

const requestTimeout = 15 * time.Second

// Client talks to one Ledgerdesk server.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a client for the given base URL (scheme://host[:port]).
func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the server base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.base
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetBaseURL repoints the client at a different server, used after the
// connection screen validates a new host.
func (c *Client) SetBaseURL(base string) {
	c.base = base
}

// errorBody is the error envelope the server returns on non-2xx statuses.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one JSON request. A nil in sends no body; a nil out discards
// the response body.
func (c *Client) do(ctx context.Context, op errors.Op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.E(op, errors.KindUnknown, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return errors.E(op, errors.KindUnknown, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(op, err)
	}
	defer resp.Body.Close()

	logger.Component("api").Debug("request completed", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return c.statusError(op, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.E(op, errors.KindNetwork, "malformed server response", err)
		}
	}
	return nil
}

func (c *Client) transportError(op errors.Op, err error) error {
	var ue *url.Error
	if stderrors.As(err, &ue) && ue.Timeout() {
		return errors.E(op, errors.KindTimeout, err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.E(op, errors.KindCancelled, err)
	}
	return errors.E(op, errors.KindNetwork, err)
}

func (c *Client) statusError(op errors.Op, resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := eb.Error
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.E(op, errors.KindAuth, msg)
	case resp.StatusCode == http.StatusNotFound:
		return errors.E(op, errors.KindNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return errors.E(op, errors.KindConflict, msg)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		return errors.E(op, errors.KindValidation, msg)
	default:
		return errors.E(op, errors.KindNetwork, fmt.Errorf("server returned %s", resp.Status))
	}
}

// Handshake probes the server before authentication. It is the "validate
// server connection" call: a reachable Ledgerdesk server answers with its
// identity.
func (c *Client) Handshake(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.do(ctx, "api.Handshake", http.MethodGet, "/api/v1/handshake", nil, &info)
	return info, err
}

// Login exchanges credentials for an authenticated session.
func (c *Client) Login(ctx context.Context, email, password string) (AuthSession, error) {
	var out AuthSession
	in := map[string]string{"email": email, "password": password}
	err := c.do(ctx, "api.Login", http.MethodPost, "/api/v1/auth/login", in, &out)
	if errors.Is(err, errors.KindAuth) {
		return out, errors.InvalidCredentials()
	}
	return out, err
}

// Register creates an account and returns an authenticated session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthSession, error) {
	var out AuthSession
	err := c.do(ctx, "api.Register", http.MethodPost, "/api/v1/auth/register", req, &out)
	return out, err
}

// RequestPasswordReset asks the server to mail a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	in := map[string]string{"email": email}
	return c.do(ctx, "api.RequestPasswordReset", http.MethodPost, "/api/v1/auth/forgot-password", in, nil)
}

// ResetPassword sets a new password using a mailed reset code.
func (c *Client) ResetPassword(ctx context.Context, code, newPassword string) error {
	in := map[string]string{"code": code, "password": newPassword}
	return c.do(ctx, "api.ResetPassword", http.MethodPost, "/api/v1/auth/reset-password", in, nil)
}

// ChangePassword changes the password of the authenticated user.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	in := map[string]string{"current_password": current, "new_password": updated}
	return c.do(ctx, "api.ChangePassword", http.MethodPost, "/api/v1/account/password", in, nil)
}

// SendVerificationEmail asks the server to re-send the verification mail.
func (c *Client) SendVerificationEmail(ctx context.Context) error {
	return c.do(ctx, "api.SendVerificationEmail", http.MethodPost, "/api/v1/account/verify-email/send", nil, nil)
}

// VerifyEmail confirms the account email with a mailed code.
func (c *Client) VerifyEmail(ctx context.Context, code string) error {
	in := map[string]string{"code": code}
	return c.do(ctx, "api.VerifyEmail", http.MethodPost, "/api/v1/account/verify-email", in, nil)
}

// CurrentUser fetches the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, "api.CurrentUser", http.MethodGet, "/api/v1/account", nil, &out)
	return out, err
}

// UpdateProfile updates mutable account fields.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var out User
	err := c.do(ctx, "api.UpdateProfile", http.MethodPatch, "/api/v1/account", update, &out)
	return out, err
}

// Sessions lists the device sessions holding valid tokens.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := c.do(ctx, "api.Sessions", http.MethodGet, "/api/v1/account/sessions", nil, &out)
	return out, err
}

// RevokeSession invalidates one device session.
func (c *Client) RevokeSession(ctx context.Context, id string) error {
	return c.do(ctx, "api.RevokeSession", http.MethodDelete, "/api/v1/account/sessions/"+url.PathEscape(id), nil, nil)
}

// RevokeOtherSessions invalidates every session except the current one.
func (c *Client) RevokeOtherSessions(ctx context.Context) error {
	return c.do(ctx, "api.RevokeOtherSessions", http.MethodPost, "/api/v1/account/sessions/revoke-others", nil, nil)
}

// SearchCompanies queries the external company registry through the server.
func (c *Client) SearchCompanies(ctx context.Context, query string) ([]CompanyMatch, error) {
	var out []CompanyMatch
	path := "/api/v1/registry/search?q=" + url.QueryEscape(query)
	err := c.do(ctx, "api.SearchCompanies", http.MethodGet, path, nil, &out)
	return out, err
}

// CreateTenant creates a workspace.
func (c *Client) CreateTenant(ctx context.Context, req CreateTenantRequest) (Tenant, error) {
	var out Tenant
	err := c.do(ctx, "api.CreateTenant", http.MethodPost, "/api/v1/tenants", req, &out)
	return out, err
}

// Tenants lists the workspaces the user belongs to.
func (c *Client) Tenants(ctx context.Context) ([]Tenant, error) {
	var out []Tenant
	err := c.do(ctx, "api.Tenants", http.MethodGet, "/api/v1/tenants", nil, &out)
	return out, err
}

// Documents lists documents for the active tenant, filtered by status.
func (c *Client) Documents(ctx context.Context, tenantID, status string) ([]Document, error) {
	var out []Document
	path := fmt.Sprintf("/api/v1/tenants/%s/documents?status=%s", url.PathEscape(tenantID), url.QueryEscape(status))
	err := c.do(ctx, "api.Documents", http.MethodGet, path, nil, &out)
	return out, err
}

// DecideDocument records an approve/reject verdict for one document.
func (c *Client) DecideDocument(ctx context.Context, tenantID string, d Decision) error {
	path := fmt.Sprintf("/api/v1/tenants/%s/documents/%s/decision", url.PathEscape(tenantID), url.PathEscape(d.DocumentID))
	return c.do(ctx, "api.DecideDocument", http.MethodPost, path, d, nil)
}
