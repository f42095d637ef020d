package actions

import (
	"fmt"
	"net/url"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/logger"
	"github.com/arvoredigital/portaria/provider"
)

// Messages translated from provider error codes; confer package schema
// for validation messages.
const (
	MsgTooManyAttempts      = "Muitas tentativas. Aguarde alguns minutos."
	MsgBadCredentials       = "Email ou senha incorretos"
	MsgPasswordReuse        = "A nova senha deve ser diferente da senha atual."
	MsgUpdatePasswordFailed = "Erro ao atualizar senha. Tente novamente."
	MsgUnexpected           = "Erro inesperado. Tente novamente."
)

// Routes the provider redirects back to after emailed links are followed.
const (
	resetCallbackPath  = "/auth/reset-password/callback"
	signUpCallbackPath = "/auth/sign-up/callback"
)

// A Dispatcher executes the authentication flows.
//
// Every method follows the same contract: re-validate the untrusted
// request server-side, call the provider, translate the outcome into a
// Result. Methods are total - provider failures come back as Results,
// never as panics - and hold no state across calls; the provider Client
// is passed in per call because it is scoped to one HTTP request.
type Dispatcher struct {
	baseURL *url.URL
	l       logger.Logger
}

// NewDispatcher constructs a Dispatcher.
//
// baseURL is the site root the provider's emailed links redirect back to.
func NewDispatcher(baseURL *url.URL, l logger.Logger) (*Dispatcher, error) {
	if baseURL == nil {
		return nil, fmt.Errorf("%w: baseURL cannot be nil", portaria.ErrBadConfig)
	}

	if l == nil {
		l = logger.New()
	}

	return &Dispatcher{baseURL: baseURL, l: l}, nil
}

// callbackURL builds an absolute URL under the site root.
func (d *Dispatcher) callbackURL(path string) string {
	return d.baseURL.JoinPath(path).String()
}

// translate maps a provider error onto the flow-independent Results.
// ok reports whether the error was handled;
// flows layer their specific translations on top.
func (d *Dispatcher) translate(err error) (Result, bool) {
	if provider.IsRateLimited(err) {
		return fail(MsgTooManyAttempts), true
	}

	if provider.StatusOf(err) != 0 {
		return fail(provider.MessageOf(err)), true
	}

	return Result{}, false
}

// unexpected logs a non-provider failure and genericizes it.
func (d *Dispatcher) unexpected(op string, err error) Result {
	d.l.Error(op+" failed", &logger.LogContext{Error: err})
	return fail(MsgUnexpected)
}
