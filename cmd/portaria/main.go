package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/actions"
	"github.com/arvoredigital/portaria/auth"
	"github.com/arvoredigital/portaria/http/middleware"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/provider"
	"github.com/arvoredigital/portaria/ranger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	rng, err := ranger.New()
	if err != nil {
		return err
	}

	clients := rng.EmitProviderFactory()
	if clients == nil {
		return fmt.Errorf(
			"%w: provider is not configured, set %s and %s",
			ranger.ErrBadConfig, ranger.ProviderURLEnvVar, ranger.ProviderAnonKeyEnvVar,
		)
	}

	// The client app may be served from its own origin.
	origin := portaria.EnvVarOrString("CLIENT_ORIGIN", rng.EmitBaseURL().String())

	l := rng.EmitLogger()
	rng.OnEveryRequest(
		middleware.RateLimit(middleware.NewVisitors()),
		middleware.ForceHTTPS(rng.EmitEnv()),
		middleware.CORS(origin),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(l),
		middleware.IdempotentKeyed(nil, nil),
		middleware.InjectSession(rng.EmitSessionStore()),
		middleware.CurrentUser(rng.Responder, loadUser(clients)),
	)

	dispatcher, err := actions.NewDispatcher(rng.EmitBaseURL(), l)
	if err != nil {
		return err
	}

	h, err := auth.NewHandler(clients, dispatcher, rng.Responder, l)
	if err != nil {
		return err
	}

	h.RegisterRoutes(rng.Router)
	rng.HandleNotFound(notFound(rng))

	return rng.Guide()
}

// notFound answers unmatched routes with a JSON 404.
func notFound(rng *ranger.Ranger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := rng.Json(w, r,
			resp.Code(http.StatusNotFound),
			resp.Data(map[string]any{"error": "Página não encontrada."}),
		)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

// loadUser fetches the user owning the access token from the provider.
//
// The token is verified locally first so an expired or tampered session
// drops without a provider round trip. Account state - notably the email
// confirmation timestamp - still comes from GetUser.
func loadUser(clients *provider.Factory) middleware.UserLoader {
	return func(ctx context.Context, accessToken string) (portaria.User, error) {
		if _, err := clients.ParseAccessToken(accessToken); errors.Is(err, portaria.ErrNotValid) {
			return portaria.User{}, &provider.Error{
				Status:  http.StatusUnauthorized,
				Message: "access token did not verify",
			}
		}

		return clients.WithAccessToken(accessToken).GetUser(ctx)
	}
}
