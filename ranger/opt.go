package ranger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/router"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/logger"
	"github.com/arvoredigital/portaria/provider"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithSessionStore is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithRouter is an example of the second.
// An unexported field on the passed in *Ranger
// is updated only when the closure it returns is called.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithBaseURL parses the provided string into the base URL
// the portaria app builds its absolute links off of.
func WithBaseURL(u string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return nil, fmt.Errorf("base URL is not valid: %s", err)
		}

		rng.url = parsed
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using base URL %s", parsed), nil)
		}

		return nil, nil
	}
}

// WithContext exposes the provided context.Context to the portaria app.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctx = ctx
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using context %T", ctx), nil)
		}

		return nil, nil
	}
}

// WithEnv casts the provided string into a valid Environment,
// or, reads from the ENVIRONMENT environment variable a valid Environment.
//
// If both fail, the default Environment is set to Development.
func WithEnv(envVar string) RangerOption {
	e := portaria.Environment(strings.ToUpper(envVar))
	err := e.Valid()
	if err == nil {
		return func(rng *Ranger) (OptFollowup, error) {
			rng.env = e
			if setupLog != nil {
				setupLog.Debug(fmt.Sprintf("using env %s", e), nil)
			}

			return nil, nil
		}
	}

	return func(rng *Ranger) (OptFollowup, error) {
		rng.env = portaria.EnvVarOrEnv(environmentEnvVar, portaria.Development)
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using env %s", rng.env), nil)
		}

		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the portaria app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		if setupLog == nil {
			setupLog = l
		}

		setupLog.Debug(fmt.Sprintf("using logger %T", l), nil)

		return nil, nil
	}
}

// WithProviderFactory exposes the *provider.Factory to the portaria app.
//
// WithProviderFactory assumes the Factory was constructed with a valid
// provider configuration.
func WithProviderFactory(f *provider.Factory) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.clients = f
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using provider factory %T", f), nil)
		}

		return nil, nil
	}
}

// WithResponder constructs a followup option that, when called,
// exposes the *resp.Responder to the portaria app.
func WithResponder(r *resp.Responder) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.Responder = r
			if setupLog != nil {
				setupLog.Debug("using responder", nil)
			}

			return nil
		}, nil
	}
}

// WithRouter constructs a followup option that, when called,
// exposes the *router.Router to the portaria app.
func WithRouter(r *router.Router) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.srv == nil {
				rng.srv = defaultServer(rng.ctx)
			}

			rng.Router = r
			rng.srv.Handler = r

			if setupLog != nil {
				setupLog.Debug(fmt.Sprintf("using router %T", r), nil)
				setupLog.Debug(fmt.Sprintf("using server %T", rng.srv), nil)
			}

			return nil
		}, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the portaria app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.sessions = store
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using session store %T", store), nil)
		}

		return nil, nil
	}
}

// WithServer exposes the *http.Server to the portaria app.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		old := rng.srv
		rng.srv = s

		if old != nil {
			rng.srv.Handler = old.Handler
		}

		return nil, nil
	}
}
