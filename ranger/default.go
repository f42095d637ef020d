package ranger

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/http/middleware"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/router"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/logger"
	"github.com/arvoredigital/portaria/provider"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar  = "APP_TITLE"
	ContactUsEnvVar = "CONTACT_US_EMAIL"
	defaultAppTitle = "portaria"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Provider defaults
	ProviderAnonKeyEnvVar   = "PROVIDER_ANON_KEY"
	ProviderJWTSecretEnvVar = "PROVIDER_JWT_SECRET"
	ProviderURLEnvVar       = "PROVIDER_URL"

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionRedisPassEnvVar  = "SESSION_REDIS_PASSWORD"
	sessionRedisURIEnvVar   = "SESSION_REDIS_URI"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// setupLog captures configuration chatter while a *Ranger boots.
// The first logger to come online claims it.
var setupLog logger.Logger

// defaultOpts is the baseline configuration New applies
// before any user supplied RangerOption.
func defaultOpts() []RangerOption {
	return []RangerOption{
		WithContext(context.Background()),
		WithEnv(os.Getenv(environmentEnvVar)),
		defaultLoggerOpt(),
		defaultBaseURLOpt(),
		defaultSessionStoreOpt(),
		defaultProviderFactoryOpt(),
		defaultResponderOpt(),
		defaultRouterOpt(),
	}
}

// defaultLoggerOpt constructs the app logger off the LOG_LEVEL env var.
//
// logger.New upgrades to a SentryLogger on its own when SENTRY_DSN is set.
func defaultLoggerOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		args := []logger.LoggerOptFn{logger.WithEnv(rng.env.String())}
		if lvl := logger.NewLogLevel(os.Getenv(logLevelEnvVar)); lvl != logger.LogLevelUnk {
			args = append(args, logger.WithLevel(lvl))
		}

		l := logger.New(args...)
		rng.l = l
		if setupLog == nil {
			setupLog = l
		}

		return nil, nil
	}
}

// defaultBaseURLOpt reads the BASE_URL env var,
// falling back to http://localhost:3000.
func defaultBaseURLOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.url = portaria.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)

		return nil, nil
	}
}

// defaultSessionStoreOpt constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStoreOpt relies on these env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - SESSION_REDIS_URI, SESSION_REDIS_PASSWORD
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
// When SESSION_REDIS_URI is set, sessions are backed by Redis instead of cookies.
func defaultSessionStoreOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		store, err := defaultSessionStore(rng.env, portaria.EnvVarOrString(AppTitleEnvVar, defaultAppTitle))
		if err != nil {
			return nil, err
		}

		rng.sessions = store

		return nil, nil
	}
}

func defaultSessionStore(env portaria.Environment, appName string) (session.SessionStorer, error) {
	appName = strings.ToLower(appName)
	appName = regexp.MustCompile(`[,':]`).ReplaceAllString(appName, "")
	appName = regexp.MustCompile(`\s`).ReplaceAllString(appName, "-")

	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: "portaria-" + appName,
	}

	args := []session.ServiceOpt{
		session.WithMaxAge(3600 * 24 * 7),
		session.WithCookie(),
	}
	if uri := os.Getenv(sessionRedisURIEnvVar); uri != "" {
		args[1] = session.WithRedis(uri, os.Getenv(sessionRedisPassEnvVar))
	}

	return session.NewStoreService(cfg, args...)
}

// defaultProviderFactoryOpt constructs the *provider.Factory off the
// PROVIDER_URL, PROVIDER_ANON_KEY and PROVIDER_JWT_SECRET env vars.
//
// Environments that can run on stubbed services skip construction when
// PROVIDER_URL is unset; tests supply their own Clients.
func defaultProviderFactoryOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if os.Getenv(ProviderURLEnvVar) == "" && rng.env.CanUseServiceStub() {
			if setupLog != nil {
				setupLog.Debug("no provider configured, skipping factory", nil)
			}

			return nil, nil
		}

		f, err := provider.NewFactory(provider.Config{
			BaseURL:   os.Getenv(ProviderURLEnvVar),
			AnonKey:   os.Getenv(ProviderAnonKeyEnvVar),
			JWTSecret: os.Getenv(ProviderJWTSecretEnvVar),
		})
		if err != nil {
			return nil, err
		}

		rng.clients = f

		return nil, nil
	}
}

// defaultResponderOpt configures the [*resp.Responder] to be used by http.Handlers.
//
// A followup: the Responder needs the logger and base URL settled first.
func defaultResponderOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			args := []resp.ResponderOptFn{
				resp.WithLogger(rng.l),
				resp.WithRootUrl(rng.url.String()),
			}
			if contact := os.Getenv(ContactUsEnvVar); contact != "" {
				args = append(args, resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, contact)))
			}

			rng.Responder = resp.NewResponder(args...)

			return nil
		}, nil
	}
}

// defaultRouterOpt constructs a [*router.Router] to be used by the web server,
// unless WithRouter already supplied one.
//
// A followup: the router needs the environment, logger and server settled first.
func defaultRouterOpt() RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.Router == nil {
				rng.Router = router.New(rng.env, middleware.LogRequest(rng.l))
			}

			if rng.srv == nil {
				rng.srv = defaultServer(rng.ctx)
			}

			rng.srv.Handler = rng.Router

			return nil
		}, nil
	}
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := portaria.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  portaria.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  portaria.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: portaria.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}
