package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/provider"
)

// The User defines attributes about a user in the context of middleware.
type User interface {
	HasAccess() bool
	HomePath() string
}

// A UserLoader retrieves the User an access token identifies.
type UserLoader func(ctx context.Context, accessToken string) (portaria.User, error)

// CurrentUser pulls the provider tokens out of the session stored in the *http.Request.Context
// and exchanges the access token for the User it identifies,
// storing that User under portaria.CurrentUserKey.
//
// A request with no tokens passes through unauthenticated;
// access control middlewares determine whether that's acceptable for the endpoint.
//
// A request whose tokens the provider no longer recognizes
// has them dropped from the session and also passes through unauthenticated.
//
// A *resp.Responder is needed to handle cases where session state cannot be updated.
func CurrentUser(d *resp.Responder, loader UserLoader) Adapter {
	if d == nil || loader == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := r.Context().Value(portaria.SessionKey).(session.Session)
			if !ok {
				handleErr(w, r, http.StatusUnauthorized, d, nil)
				return
			}

			tokens, err := s.Tokens()
			if err != nil {
				// NOTE: there are no tokens in the session,
				// request may be accessing an unauthenticated endpoint,
				// maybe not, something for access control middlewares to determine
				handler.ServeHTTP(w, r)
				return
			}

			user, err := loader(r.Context(), tokens.Access)
			if err != nil {
				if provider.IsUnauthorized(err) {
					if err := s.DeregisterTokens(w, r); err != nil {
						handleErr(w, r, http.StatusInternalServerError, d, err)
						return
					}

					handler.ServeHTTP(w, r)
					return
				}

				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			if err := s.ResetExpiry(w, r); err != nil {
				s.Delete(w, r) // NOTE: ignore delete error
				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), portaria.CurrentUserKey, user)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// RequireUnauthed returns a middleware.Adapter that checks whether a user is authenticated
// and requires they not be authenticated.
// When they are not authenticated, RequireUnauthed hands off to the next part of the middleware chain.
//
// Authenticated means a User is set in the request context under portaria.CurrentUserKey.
//
// When the User is authenticated, and the request's "Accept" header has "application/json" in it,
// RequireUnauthed writes 400 to the client.
// If the request does not have that value in its header,
// RequireUnauthed redirects to the User's HomePath.
func RequireUnauthed() Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cu, ok := r.Context().Value(portaria.CurrentUserKey).(User); ok {
				if acceptsJson(r.Header) {
					w.WriteHeader(http.StatusBadRequest)
					return
				}

				http.Redirect(w, r, cu.HomePath(), http.StatusTemporaryRedirect)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// RequireAuthed returns a middleware.Adapter that checks whether a User is authenticated,
// and requires they be authenticated.
// When the User is authenticated, then RequireAuthed hands off to the next part of the middleware chain.
//
// Authenticated means a User is set in the request context under portaria.CurrentUserKey.
//
// When the User is not authenticated, and the request's "Accept" header has "application/json" in it,
// RequireAuthed writes 401 to the client.
// If the request does not have that value in its header,
// RequireAuthed redirects to the provided login URL.
//
// The URL originally requested is appended as a "next" query param
// when the request method is GET and the endpoint is not the logoff URL.
func RequireAuthed(loginUrl, logoffUrl string) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(portaria.CurrentUserKey).(User); !ok {
				if acceptsJson(r.Header) {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}

				u := loginUrl
				if r.Method == http.MethodGet && r.URL.Path != logoffUrl {
					u += "?next=" + url.QueryEscape(r.URL.String())
				}

				http.Redirect(w, r, u, http.StatusTemporaryRedirect)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// acceptsJson asserts whether the request accepts JSON or not.
func acceptsJson(header http.Header) bool {
	for _, v := range header.Values("Accept") {
		if strings.Contains(v, "application/json") {
			return true
		}
	}

	return false
}

// handleErr helps CurrentUser error paths by writing responses reflecting the
// "Accept" type of the *http.Request.
func handleErr(w http.ResponseWriter, r *http.Request, code int, d *resp.Responder, err error) {
	if acceptsJson(r.Header) {
		d.Json(w, r, resp.Err(err), resp.Code(code))
		return
	}

	d.Redirect(w, r, resp.Err(err))
}
