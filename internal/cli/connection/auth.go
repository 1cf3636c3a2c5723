package connection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yndnr/authclient/internal/core/domain"
	"github.com/yndnr/authclient/internal/telemetry/logger"
	"github.com/yndnr/authclient/internal/telemetry/metric"
)

// API paths.
const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathUsers    = "/users"
)

// AuthClient performs the authentication API calls. Every failure it
// returns is a *domain.AuthError.
type AuthClient struct {
	hc      *HTTPClient
	metrics *metric.Registry
	logger  logger.Logger
}

// NewAuthClient creates an AuthClient. metrics may be nil.
func NewAuthClient(hc *HTTPClient, metrics *metric.Registry, log logger.Logger) *AuthClient {
	if log == nil {
		log = logger.Default()
	}
	return &AuthClient{hc: hc, metrics: metrics, logger: log}
}

// errorBody is the failure body shape shared by all endpoints.
type errorBody struct {
	Msg           string   `json:"msg"`
	Error         string   `json:"error,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type,omitempty"`
	User      *domain.User `json:"user"`
}

type registerResponse struct {
	Msg  string       `json:"msg,omitempty"`
	User *domain.User `json:"user"`
}

// Login exchanges credentials for a session.
func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	resp, err := c.call("login", func() (*Response, error) {
		return c.hc.Post(ctx, PathLogin, creds, "")
	})
	if err != nil {
		return domain.Session{}, err
	}
	if !resp.OK() {
		return domain.Session{}, c.observe("login", rejected(resp, domain.MsgLoginFailed))
	}

	var body loginResponse
	if err := resp.Decode(&body); err != nil || body.Token == "" || !validUser(body.User) {
		return domain.Session{}, c.observe("login", malformed(resp, domain.MsgLoginFailed, err))
	}

	c.logger.Debug("login accepted", "username", body.User.Username, "token_type", body.TokenType)
	c.observe("login", nil)
	return domain.Session{Token: body.Token, User: *body.User}, nil
}

// Register creates an account. bearer must belong to an admin on servers
// that enforce it; the 403 is reported as Forbidden.
func (c *AuthClient) Register(ctx context.Context, req domain.RegistrationRequest, bearer string) (domain.User, error) {
	req.Role = domain.ParseRole(string(req.Role))

	resp, err := c.call("register", func() (*Response, error) {
		return c.hc.Post(ctx, PathRegister, req, bearer)
	})
	if err != nil {
		return domain.User{}, err
	}
	if !resp.OK() {
		return domain.User{}, c.observe("register", classifyRegister(resp))
	}

	var body registerResponse
	if err := resp.Decode(&body); err != nil || !validUser(body.User) {
		return domain.User{}, c.observe("register", malformed(resp, domain.MsgRegisterFailed, err))
	}
	c.observe("register", nil)
	return *body.User, nil
}

// ListUsers returns all accounts.
func (c *AuthClient) ListUsers(ctx context.Context, bearer string) ([]domain.User, error) {
	resp, err := c.call("list_users", func() (*Response, error) {
		return c.hc.Get(ctx, PathUsers, bearer)
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.observe("list_users", classifyAdmin(resp, domain.MsgListUsersFailed))
	}

	var users []domain.User
	if err := resp.Decode(&users); err != nil {
		return nil, c.observe("list_users", malformed(resp, domain.MsgListUsersFailed, err))
	}
	for i := range users {
		users[i].Role = domain.ParseRole(string(users[i].Role))
	}
	c.observe("list_users", nil)
	return users, nil
}

// DeleteUser removes the account with the given ID.
func (c *AuthClient) DeleteUser(ctx context.Context, bearer string, id int64) error {
	path := fmt.Sprintf("%s/%d", PathUsers, id)
	resp, err := c.call("delete_user", func() (*Response, error) {
		return c.hc.Delete(ctx, path, bearer)
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return c.observe("delete_user", classifyAdmin(resp, domain.MsgDeleteUserFailed))
	}
	c.observe("delete_user", nil)
	return nil
}

// call runs send and records it under op. Transport failures come back
// already classified as NetworkUnavailable.
func (c *AuthClient) call(op string, send func() (*Response, error)) (*Response, error) {
	start := time.Now()
	resp, err := send()
	c.metrics.ObserveRequest(op, outcome(resp, err), time.Since(start))
	if err != nil {
		c.logger.Warn("server unreachable", "op", op, "error", err)
		return nil, domain.NetworkUnavailable(err)
	}
	return resp, nil
}

// observe logs a classified failure. It returns ae for chaining.
func (c *AuthClient) observe(op string, ae *domain.AuthError) error {
	if ae == nil {
		return nil
	}
	c.logger.Debug("request rejected", "op", op, "kind", ae.Kind, "status", ae.Status, "message", ae.Message)
	return ae
}

func outcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return "network_error"
	case resp.OK():
		return "ok"
	default:
		return fmt.Sprintf("%dxx", resp.StatusCode/100)
	}
}

// classifyRegister maps a non-2xx register response to an AuthError.
func classifyRegister(resp *Response) *domain.AuthError {
	body := errorBodyOf(resp)
	switch resp.StatusCode {
	case http.StatusConflict:
		return domain.Conflict(body.Msg)
	case http.StatusBadRequest:
		return domain.Validation(resp.StatusCode, body.Msg, body.MissingFields)
	case http.StatusForbidden:
		return domain.Forbidden()
	default:
		return domain.Rejected(resp.StatusCode, body.Msg, domain.MsgRegisterFailed)
	}
}

// classifyAdmin maps failures of the admin-only endpoints.
func classifyAdmin(resp *Response, fallback string) *domain.AuthError {
	if resp.StatusCode == http.StatusForbidden {
		return domain.Forbidden()
	}
	return domain.Rejected(resp.StatusCode, errorBodyOf(resp).Msg, fallback)
}

func rejected(resp *Response, fallback string) *domain.AuthError {
	return domain.Rejected(resp.StatusCode, errorBodyOf(resp).Msg, fallback)
}

// malformed reports a 2xx response whose body is unusable.
func malformed(resp *Response, fallback string, cause error) *domain.AuthError {
	ae := domain.Rejected(resp.StatusCode, "", fallback)
	if cause == nil {
		cause = fmt.Errorf("response missing required fields")
	}
	ae.Cause = cause
	return ae
}

// errorBodyOf decodes a failure body. Missing or non-JSON bodies yield
// the zero value.
func errorBodyOf(resp *Response) errorBody {
	var body errorBody
	if len(resp.Body) > 0 {
		_ = resp.Decode(&body)
	}
	return body
}

// validUser normalizes u's role in place and reports whether u is usable.
func validUser(u *domain.User) bool {
	if u == nil {
		return false
	}
	u.Role = domain.ParseRole(string(u.Role))
	return u.Username != "" && u.Role.Valid()
}
