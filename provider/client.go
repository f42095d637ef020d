package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/arvoredigital/portaria"
)

// Provider REST endpoint paths.
const (
	signUpPath    = "/auth/v1/signup"
	passwordGrant = "/auth/v1/token?grant_type=password"
	pkceGrant     = "/auth/v1/token?grant_type=pkce"
	recoverPath   = "/auth/v1/recover"
	userPath      = "/auth/v1/user"
	logoutPath    = "/auth/v1/logout"
	resendPath    = "/auth/v1/resend"
)

// A Config provides the required values for constructing a Factory.
type Config struct {
	// BaseURL is the root URL of the provider project, e.g.
	// https://myproject.supabase.co
	BaseURL string

	// AnonKey is the provider's publishable API key,
	// sent on every call and used as the bearer for anonymous calls.
	AnonKey string

	// JWTSecret verifies provider-issued access tokens locally.
	JWTSecret string
}

func validateConfig(c Config) error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("%w: BaseURL is not valid: %s", portaria.ErrBadConfig, err)
	}

	if c.AnonKey == "" {
		return fmt.Errorf(`%w: AnonKey cannot be ""`, portaria.ErrBadConfig)
	}

	return nil
}

// A Factory produces Clients scoped to a single request.
//
// The underlying HTTP client is safe for concurrent use and shared;
// what must not be shared are the request-bound session tokens,
// so every handler asks the Factory for its own Client.
type Factory struct {
	baseURL   string
	anonKey   string
	jwtSecret []byte
	http      *retryablehttp.Client
}

// NewFactory constructs a Factory from the Config.
//
// Transport errors and provider 5xx responses are retried a small
// number of times. 4xx responses - including 429 - are never retried:
// the provider's rate limiting must surface to the caller untouched.
func NewFactory(cfg Config) (*Factory, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.Logger = nil
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			return true, nil
		}

		return resp.StatusCode >= http.StatusInternalServerError, nil
	}

	return &Factory{
		baseURL:   cfg.BaseURL,
		anonKey:   cfg.AnonKey,
		jwtSecret: []byte(cfg.JWTSecret),
		http:      c,
	}, nil
}

// Anonymous constructs a Client carrying no session,
// for flows available to unauthenticated requests.
func (f *Factory) Anonymous() Client { return &httpClient{f: f, bearer: f.anonKey} }

// WithAccessToken constructs a Client bound to the session
// identified by the access token.
func (f *Factory) WithAccessToken(token string) Client {
	if token == "" {
		return f.Anonymous()
	}

	return &httpClient{f: f, bearer: token}
}

// httpClient implements Client against the provider's REST surface.
type httpClient struct {
	f      *Factory
	bearer string
}

func (c *httpClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := recoverPath
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *httpClient) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, passwordGrant, body, &s)
	return s, err
}

func (c *httpClient) SignUp(ctx context.Context, params SignUpParams) error {
	path := signUpPath
	if params.EmailRedirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(params.EmailRedirectTo)
	}

	body := map[string]any{
		"email":    params.Email,
		"password": params.Password,
	}
	if params.Metadata != nil {
		body["data"] = params.Metadata
	}

	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *httpClient) UpdateUser(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, userPath, body, nil)
}

func (c *httpClient) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, logoutPath, nil, nil)
}

func (c *httpClient) Resend(ctx context.Context, typ ResendType, email string) error {
	body := map[string]string{"type": string(typ), "email": email}
	return c.do(ctx, http.MethodPost, resendPath, body, nil)
}

func (c *httpClient) GetUser(ctx context.Context) (portaria.User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, userPath, nil, &payload); err != nil {
		return portaria.User{}, err
	}

	return payload.user(), nil
}

func (c *httpClient) ExchangeCodeForSession(ctx context.Context, code string) (Session, error) {
	var s Session
	body := map[string]string{"auth_code": code}
	err := c.do(ctx, http.MethodPost, pkceGrant, body, &s)
	return s, err
}

// userPayload is the provider's wire shape for a user.
type userPayload struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

func (p userPayload) user() portaria.User {
	return portaria.User{
		ID:               p.ID,
		Email:            p.Email,
		EmailConfirmedAt: p.EmailConfirmedAt,
		Metadata:         p.UserMetadata,
	}
}

// errPayload covers both error shapes the provider responds with.
type errPayload struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (p errPayload) message() string {
	switch {
	case p.Msg != "":
		return p.Msg
	case p.Message != "":
		return p.Message
	default:
		return p.ErrorDescription
	}
}

// do executes one round trip to the provider,
// decoding a 2xx body into out and any other status into an *Error.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		buf = new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("%w: cannot encode request body: %s", portaria.ErrUnexpected, err)
		}
	}

	var rawBody any
	if buf != nil {
		rawBody = buf
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.f.baseURL+path, rawBody)
	if err != nil {
		return fmt.Errorf("%w: cannot build request: %s", portaria.ErrUnexpected, err)
	}

	req.Header.Set("apikey", c.f.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.f.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: provider call failed: %s", portaria.ErrUnexpected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errPayload
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &Error{Status: resp.StatusCode, Message: payload.message()}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: cannot decode provider response: %s", portaria.ErrBadFormat, err)
		}
	}

	return nil
}
