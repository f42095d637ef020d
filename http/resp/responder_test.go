package resp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/logger"
)

type testLogger struct {
	b *bytes.Buffer
}

func newLogger() testLogger                                  { return testLogger{bytes.NewBuffer(nil)} }
func (tl testLogger) Debug(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Error(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Fatal(msg string, _ *logger.LogContext) { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Info(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) Warn(msg string, _ *logger.LogContext)  { fmt.Fprint(tl.b, msg) }
func (tl testLogger) LogLevel() logger.LogLevel              { return logger.LogLevelDebug }

func newRequest(t *testing.T, loggedIn bool) (*httptest.ResponseRecorder, *http.Request, session.Session) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/test", nil)

	s, err := session.NewStub(loggedIn).GetSession(r)
	require.Nil(t, err)

	ctx := context.WithValue(r.Context(), portaria.SessionKey, s)
	return w, r.WithContext(ctx), s
}

func TestResponderJson(t *testing.T) {
	// Arrange
	d := resp.NewResponder(resp.WithLogger(newLogger()))
	w, r, _ := newRequest(t, false)

	// Act
	err := d.Json(w, r, resp.Data(map[string]any{"ok": true}))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))

	var body map[string]any
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, map[string]any{"ok": true}, body["data"])

	// Arrange: currentUser is elided on non-2xx codes.
	w, r, _ = newRequest(t, false)

	// Act
	err = d.Json(w, r,
		resp.Code(http.StatusUnprocessableEntity),
		resp.User(portaria.User{Email: "ana@example.com"}),
		resp.Data(map[string]any{"error": "nope"}),
	)

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body = nil
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotContains(t, body, "currentUser")
}

func TestResponderJsonCurrentUser(t *testing.T) {
	// Arrange
	d := resp.NewResponder(resp.WithLogger(newLogger()))
	w, r, _ := newRequest(t, true)
	u := portaria.User{ID: "abc", Email: "ana@example.com"}
	ctx := context.WithValue(r.Context(), portaria.CurrentUserKey, u)

	// Act
	err := d.Json(w, r.WithContext(ctx), resp.CurrentUser())

	// Assert
	require.Nil(t, err)
	var body map[string]any
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	cu, ok := body["currentUser"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ana@example.com", cu["email"])
}

func TestResponderRedirect(t *testing.T) {
	d := resp.NewResponder(
		resp.WithLogger(newLogger()),
		resp.WithRootUrl("https://example.com"),
	)

	for _, tc := range []struct {
		name string
		opts []resp.Fn
		code int
		loc  string
	}{
		{"Default", []resp.Fn{resp.Url("/dashboard")}, http.StatusFound, "/dashboard"},
		{"ToRoot", nil, http.StatusFound, "https://example.com"},
		{"ClientErrBecomesSeeOther", []resp.Fn{resp.Url("/auth/sign-in"), resp.Code(http.StatusUnauthorized)}, http.StatusSeeOther, "/auth/sign-in"},
		{"ServerErrBecomesTemporary", []resp.Fn{resp.Url("/auth/sign-in"), resp.Code(http.StatusInternalServerError)}, http.StatusTemporaryRedirect, "/auth/sign-in"},
		{"Param", []resp.Fn{resp.Url("/auth/verify-email"), resp.Param("email", "a@b.com")}, http.StatusFound, "/auth/verify-email?email=a%40b.com"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w, r, _ := newRequest(t, false)

			// Act
			err := d.Redirect(w, r, tc.opts...)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.loc, w.Header().Get("Location"))
		})
	}
}

func TestResponderRedirectWithFlash(t *testing.T) {
	// Arrange
	d := resp.NewResponder(
		resp.WithLogger(newLogger()),
		resp.WithRootUrl("https://example.com"),
	)
	w, r, s := newRequest(t, false)
	f := session.Flash{Class: session.FlashSuccess, Msg: session.PasswordUpdatedMsg}

	// Act
	err := d.Redirect(w, r, resp.Url("/auth/sign-in"), resp.Flash(f))

	// Assert
	require.Nil(t, err)
	require.Equal(t, []session.Flash{f}, s.Flashes(w, r))
}

func TestResponderGenericErr(t *testing.T) {
	// Arrange
	d := resp.NewResponder(
		resp.WithLogger(newLogger()),
		resp.WithRootUrl("https://example.com"),
		resp.WithContactErrMsg("Erro inesperado. Fale com o suporte."),
	)
	w, r, s := newRequest(t, false)

	// Act
	err := d.Redirect(w, r, resp.GenericErr(errors.New("boom")))

	// Assert
	require.Nil(t, err)
	fs := s.Flashes(w, r)
	require.Len(t, fs, 1)
	require.Equal(t, session.FlashError, fs[0].Class)
	require.Equal(t, "Erro inesperado. Fale com o suporte.", fs[0].Msg)
}

// captureLogger records the last LogContext handed to Error or Warn.
type captureLogger struct {
	testLogger
	last *logger.LogContext
}

func (cl *captureLogger) Error(msg string, ctx *logger.LogContext) {
	cl.last = ctx
	cl.testLogger.Error(msg, ctx)
}

func (cl *captureLogger) Warn(msg string, ctx *logger.LogContext) {
	cl.last = ctx
	cl.testLogger.Warn(msg, ctx)
}

func TestResponderFnLogContext(t *testing.T) {
	// Arrange
	l := &captureLogger{testLogger: newLogger()}
	d := resp.NewResponder(resp.WithLogger(l), resp.WithRootUrl("https://example.com"))
	w, r, _ := newRequest(t, false)
	boom := errors.New("boom")

	// Act
	err := d.Redirect(w, r, resp.Url("/auth/sign-in"), resp.Err(boom))

	// Assert: the logged context carries the error and the request.
	require.Nil(t, err)
	require.NotNil(t, l.last)
	require.ErrorIs(t, l.last.Error, boom)
	require.Same(t, r, l.last.Request)

	// Arrange
	w, r, s := newRequest(t, false)

	// Act
	err = d.Redirect(w, r, resp.Url("/auth/sign-in"), resp.Warn("cuidado"))

	// Assert: Warn logs with the request attached and still flashes.
	require.Nil(t, err)
	require.NotNil(t, l.last)
	require.Same(t, r, l.last.Request)
	require.Contains(t, l.b.String(), "cuidado")
	require.Len(t, s.Flashes(w, r), 1)
}

func TestResponderErr(t *testing.T) {
	// Arrange
	d := resp.NewResponder(resp.WithLogger(newLogger()))
	w, r, _ := newRequest(t, false)

	// Act
	d.Err(w, r, errors.New("boom"))

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "boom")
}
