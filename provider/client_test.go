package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria/provider"
)

func newFactory(t *testing.T, srvURL string) *provider.Factory {
	t.Helper()
	f, err := provider.NewFactory(provider.Config{
		BaseURL:   srvURL,
		AnonKey:   "anon-key",
		JWTSecret: "super-secret",
	})
	require.Nil(t, err)

	return f
}

func TestNewFactory(t *testing.T) {
	// Arrange + Act
	_, err := provider.NewFactory(provider.Config{BaseURL: "not a url", AnonKey: "k"})

	// Assert
	require.NotNil(t, err)

	// Arrange + Act
	_, err = provider.NewFactory(provider.Config{BaseURL: "https://example.com"})

	// Assert
	require.NotNil(t, err)

	// Arrange + Act
	f, err := provider.NewFactory(provider.Config{BaseURL: "https://example.com", AnonKey: "k"})

	// Assert
	require.Nil(t, err)
	require.NotNil(t, f)
}

func TestClientSignUp(t *testing.T) {
	// Arrange
	var gotPath, gotRedirect, gotAuth, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRedirect = r.URL.Query().Get("redirect_to")
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		require.Nil(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).Anonymous()

	// Act
	err := client.SignUp(context.Background(), provider.SignUpParams{
		Email:           "ana@example.com",
		Password:        "Secret1!",
		EmailRedirectTo: "https://app.example.com/auth/sign-up/callback",
		Metadata:        map[string]any{"name": "Ana"},
	})

	// Assert
	require.Nil(t, err)
	require.Equal(t, "/auth/v1/signup", gotPath)
	require.Equal(t, "https://app.example.com/auth/sign-up/callback", gotRedirect)
	require.Equal(t, "Bearer anon-key", gotAuth)
	require.Equal(t, "anon-key", gotKey)
	require.Equal(t, "ana@example.com", gotBody["email"])
	require.Equal(t, map[string]any{"name": "Ana"}, gotBody["data"])
}

func TestClientSignInWithPassword(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).Anonymous()

	// Act
	s, err := client.SignInWithPassword(context.Background(), "ana@example.com", "Secret1!")

	// Assert
	require.Nil(t, err)
	require.Equal(t, "at", s.AccessToken)
	require.Equal(t, "rt", s.RefreshToken)
}

func TestClientGetUser(t *testing.T) {
	// Arrange
	confirmed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 "b5bd4b60-4e95-4a29-a29e-2dbcc8db61a2",
			"email":              "ana@example.com",
			"email_confirmed_at": confirmed,
			"user_metadata":      map[string]any{"name": "Ana"},
		})
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).WithAccessToken("user-token")

	// Act
	u, err := client.GetUser(context.Background())

	// Assert
	require.Nil(t, err)
	require.Equal(t, "ana@example.com", u.Email)
	require.Equal(t, "Ana", u.Name())
	require.True(t, u.HasAccess())
}

func TestClientRateLimitedNotRetried(t *testing.T) {
	// Arrange
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":429,"msg":"over_email_send_rate_limit"}`))
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).Anonymous()

	// Act
	err := client.ResetPasswordForEmail(context.Background(), "ana@example.com", "")

	// Assert
	require.NotNil(t, err)
	require.True(t, provider.IsRateLimited(err))
	require.Equal(t, "over_email_send_rate_limit", provider.MessageOf(err))
	require.Equal(t, 1, calls)
}

func TestClientErrorShapes(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"invalid","error_description":"New password should be different from the old password."}`))
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).WithAccessToken("user-token")

	// Act
	err := client.UpdateUser(context.Background(), "Secret1!")

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, provider.StatusOf(err))
	require.Equal(t, "New password should be different from the old password.", provider.MessageOf(err))
}

func TestClientExchangeCodeForSession(t *testing.T) {
	// Arrange
	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.Nil(t, json.NewDecoder(r.Body).Decode(&body))
		gotCode = body["auth_code"]
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt"}`))
	}))
	defer srv.Close()

	client := newFactory(t, srv.URL).Anonymous()

	// Act
	s, err := client.ExchangeCodeForSession(context.Background(), "one-time-code")

	// Assert
	require.Nil(t, err)
	require.Equal(t, "one-time-code", gotCode)
	require.Equal(t, "at", s.AccessToken)
}

func TestParseAccessToken(t *testing.T) {
	// Arrange
	f := newFactory(t, "https://example.com")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, provider.AccessClaims{
		Email: "ana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "b5bd4b60-4e95-4a29-a29e-2dbcc8db61a2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("super-secret"))
	require.Nil(t, err)

	// Act
	claims, err := f.ParseAccessToken(signed)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "ana@example.com", claims.Email)
	require.Equal(t, "b5bd4b60-4e95-4a29-a29e-2dbcc8db61a2", claims.Subject)

	// Arrange: expired token
	token = jwt.NewWithClaims(jwt.SigningMethodHS256, provider.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err = token.SignedString([]byte("super-secret"))
	require.Nil(t, err)

	// Act
	_, err = f.ParseAccessToken(signed)

	// Assert
	require.NotNil(t, err)
}
