package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/http/middleware"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/provider"
)

func sessionRequest(t *testing.T, loggedIn bool) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/dashboard", nil)

	s, err := session.NewStub(loggedIn).GetSession(r)
	require.Nil(t, err)

	ctx := context.WithValue(r.Context(), portaria.SessionKey, s)
	return w, r.WithContext(ctx)
}

func TestCurrentUser(t *testing.T) {
	d := resp.NewResponder(resp.WithRootUrl("https://example.com"))
	confirmed := time.Now()

	t.Run("NoTokensPassesThrough", func(t *testing.T) {
		// Arrange
		var sawUser bool
		loader := func(context.Context, string) (portaria.User, error) {
			t.Fatal("loader should not be called without tokens")
			return portaria.User{}, nil
		}
		h := middleware.CurrentUser(d, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawUser = r.Context().Value(portaria.CurrentUserKey).(portaria.User)
		}))
		w, r := sessionRequest(t, false)

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.False(t, sawUser)
	})

	t.Run("TokensLoadUser", func(t *testing.T) {
		// Arrange
		var gotToken string
		loader := func(_ context.Context, token string) (portaria.User, error) {
			gotToken = token
			return portaria.User{ID: "abc", Email: "ana@example.com", EmailConfirmedAt: &confirmed}, nil
		}

		var got portaria.User
		h := middleware.CurrentUser(d, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = r.Context().Value(portaria.CurrentUserKey).(portaria.User)
		}))
		w, r := sessionRequest(t, true)

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, "stub-access", gotToken)
		require.Equal(t, "ana@example.com", got.Email)
		require.Equal(t, "no-store", w.Header().Get("Cache-control"))
	})

	t.Run("StaleTokensDropAndPassThrough", func(t *testing.T) {
		// Arrange
		loader := func(context.Context, string) (portaria.User, error) {
			return portaria.User{}, &provider.Error{Status: http.StatusUnauthorized, Message: "invalid JWT"}
		}

		var sawUser bool
		h := middleware.CurrentUser(d, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, sawUser = r.Context().Value(portaria.CurrentUserKey).(portaria.User)
		}))
		w, r := sessionRequest(t, true)

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.False(t, sawUser)
	})

	t.Run("ProviderOutage", func(t *testing.T) {
		// Arrange
		loader := func(context.Context, string) (portaria.User, error) {
			return portaria.User{}, errors.New("dial tcp: connection refused")
		}
		h := middleware.CurrentUser(d, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		w, r := sessionRequest(t, true)
		r.Header.Set("Accept", "application/json")

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequireAuthed(t *testing.T) {
	confirmed := time.Now()
	adpt := middleware.RequireAuthed("/auth/sign-in", "/auth/sign-out")

	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard?tab=a", nil)

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		require.Equal(t, "/auth/sign-in?next=%2Fdashboard%3Ftab%3Da", w.Header().Get("Location"))
	})

	t.Run("UnauthenticatedJson", func(t *testing.T) {
		// Arrange
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.Header.Set("Accept", "application/json")

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		// Arrange
		called := false
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		u := portaria.User{ID: "abc", EmailConfirmedAt: &confirmed}
		r = r.WithContext(context.WithValue(r.Context(), portaria.CurrentUserKey, u))

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.True(t, called)
	})
}

func TestRequireUnauthed(t *testing.T) {
	confirmed := time.Now()
	adpt := middleware.RequireUnauthed()

	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		called := false
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.True(t, called)
	})

	t.Run("ConfirmedGoesHome", func(t *testing.T) {
		// Arrange
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
		u := portaria.User{ID: "abc", EmailConfirmedAt: &confirmed}
		r = r.WithContext(context.WithValue(r.Context(), portaria.CurrentUserKey, u))

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		require.Equal(t, "/dashboard", w.Header().Get("Location"))
	})

	t.Run("UnconfirmedAlsoGoesHome", func(t *testing.T) {
		// Arrange: a session without a confirmed email is still a session.
		h := adpt(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
		u := portaria.User{ID: "abc", Email: "ana@example.com"}
		r = r.WithContext(context.WithValue(r.Context(), portaria.CurrentUserKey, u))

		// Act
		h.ServeHTTP(w, r)

		// Assert
		require.Equal(t, http.StatusTemporaryRedirect, w.Code)
		require.Equal(t, "/dashboard", w.Header().Get("Location"))
	})
}
