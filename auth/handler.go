package auth

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/arvoredigital/portaria"
	"github.com/arvoredigital/portaria/actions"
	"github.com/arvoredigital/portaria/http/req"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/router"
	"github.com/arvoredigital/portaria/http/session"
	"github.com/arvoredigital/portaria/logger"
	"github.com/arvoredigital/portaria/provider"
	"github.com/arvoredigital/portaria/schema"
)

// Paths the handlers route between.
const (
	DashboardPath      = "/dashboard"
	ForgotPasswordPath = "/auth/forgot-password"
	ResetCallbackPath  = "/auth/reset-password/callback"
	ResetPasswordPath  = "/auth/reset-password"
	ResendPath         = "/auth/verify-email/resend"
	SignInPath         = "/auth/sign-in"
	SignOutPath        = "/auth/sign-out"
	SignUpPath         = "/auth/sign-up"
	SignUpCallbackPath = "/auth/sign-up/callback"
	VerifyEmailPath    = "/auth/verify-email"
)

// A ClientSource scopes provider Clients to a request.
//
// provider.Factory implements ClientSource.
type ClientSource interface {
	Anonymous() provider.Client
	WithAccessToken(token string) provider.Client
}

// A Handler owns the HTTP surface of the authentication flows.
//
// Handlers stay thin: they parse the request, hand it to the actions
// Dispatcher, and write the Result back through the notification adapter.
type Handler struct {
	clients    ClientSource
	dispatcher *actions.Dispatcher
	d          *resp.Responder
	l          logger.Logger
	parser     *req.Parser
}

// NewHandler constructs a Handler from its collaborators.
func NewHandler(
	clients ClientSource,
	dispatcher *actions.Dispatcher,
	d *resp.Responder,
	l logger.Logger,
) (*Handler, error) {
	if clients == nil || dispatcher == nil || d == nil {
		return nil, fmt.Errorf("%w: clients, dispatcher and responder are all required", portaria.ErrBadConfig)
	}

	if l == nil {
		l = logger.New()
	}

	return &Handler{
		clients:    clients,
		dispatcher: dispatcher,
		d:          d,
		l:          l,
		parser:     req.NewParser(),
	}, nil
}

// RegisterRoutes places every auth route on the router with its gate:
// the sign-in, sign-up and forgot-password screens require an
// unauthenticated visitor; the dashboard and sign-out require a user;
// verify-email and the reset flow apply their own rules.
func (h *Handler) RegisterRoutes(r *router.Router) {
	r.UnauthedRoutes([]router.Route{
		{Path: SignInPath, Method: http.MethodGet, Handler: h.Page},
		{Path: SignInPath, Method: http.MethodPost, Handler: h.SignIn},
		{Path: SignUpPath, Method: http.MethodGet, Handler: h.Page},
		{Path: SignUpPath, Method: http.MethodPost, Handler: h.SignUp},
		{Path: ForgotPasswordPath, Method: http.MethodGet, Handler: h.Page},
		{Path: ForgotPasswordPath, Method: http.MethodPost, Handler: h.ForgotPassword},
	})

	r.HandleRoutes([]router.Route{
		{Path: VerifyEmailPath, Method: http.MethodGet, Handler: h.VerifyEmail},
		{Path: ResendPath, Method: http.MethodPost, Handler: h.ResendConfirmation},
		{Path: ResetPasswordPath, Method: http.MethodGet, Handler: h.Page},
		{Path: ResetPasswordPath, Method: http.MethodPost, Handler: h.UpdatePassword},
		{Path: ResetCallbackPath, Method: http.MethodGet, Handler: h.ResetPasswordCallback},
	})

	r.AuthedRoutes(SignInPath, SignOutPath, []router.Route{
		{Path: DashboardPath, Method: http.MethodGet, Handler: h.Dashboard},
		{Path: SignOutPath, Method: http.MethodPost, Handler: h.SignOut},
	})
}

// Page serves the state an auth screen needs: pending flashes, and the
// current user when one is signed in.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	flashes := h.popFlashes(w, r)
	h.d.Json(w, r,
		resp.Data(map[string]any{"flashes": flashes}),
		resp.CurrentUser(),
	)
}

// Dashboard serves the signed-in landing screen.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	flashes := h.popFlashes(w, r)
	if err := h.d.Json(w, r,
		resp.Data(map[string]any{"flashes": flashes}),
		resp.CurrentUser(),
	); err != nil {
		h.d.Err(w, r, err)
	}
}

// SignIn verifies credentials and, on success, stores the provider
// session tokens in the app session before sending the user home.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var data schema.SignIn
	if err := h.parser.Parse(r, &data); err != nil {
		h.notify(w, r, actions.Result{Error: schema.MsgInvalidData}, notification{}, SignInPath)
		return
	}

	sess, res := h.dispatcher.SignIn(r.Context(), h.clients.Anonymous(), data)
	if res.Success {
		if err := h.registerTokens(w, r, sess); err != nil {
			h.d.Redirect(w, r, resp.Url(SignInPath), resp.GenericErr(err))
			return
		}
	}

	h.notify(w, r, res, notification{redirect: DashboardPath}, SignInPath)
}

// SignUp creates the account and sends the user to the verify-email
// screen carrying the address the confirmation went to.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var data schema.SignUp
	if err := h.parser.Parse(r, &data); err != nil {
		h.notify(w, r, actions.Result{Error: schema.MsgInvalidData}, notification{}, SignUpPath)
		return
	}

	res := h.dispatcher.SignUp(r.Context(), h.clients.Anonymous(), data)

	verify := VerifyEmailPath + "?email=" + url.QueryEscape(data.Email)
	h.notify(w, r, res, notification{redirect: verify}, SignUpPath)
}

// ForgotPassword triggers the reset email and reports that it was sent.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var data schema.ForgotPassword
	if err := h.parser.Parse(r, &data); err != nil {
		h.notify(w, r, actions.Result{Error: schema.MsgInvalidData}, notification{}, ForgotPasswordPath)
		return
	}

	res := h.dispatcher.ForgotPassword(r.Context(), h.clients.Anonymous(), data)

	n := notification{
		redirect: ForgotPasswordPath,
		flash:    &session.Flash{Class: session.FlashSuccess, Msg: session.LinkSentMsg},
	}
	h.notify(w, r, res, n, ForgotPasswordPath)
}

// VerifyEmail serves the confirmation-pending screen.
//
// Without an email to display there is nothing to confirm, so the
// visitor goes back to sign-up. A visitor whose account is already
// confirmed goes straight to the dashboard.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.d.Redirect(w, r, resp.Url(SignUpPath))
		return
	}

	if u, err := h.d.CurrentUser(r.Context()); err == nil && u.HasAccess() {
		h.d.Redirect(w, r, resp.Url(DashboardPath))
		return
	}

	flashes := h.popFlashes(w, r)
	h.d.Json(w, r, resp.Data(map[string]any{"email": email, "flashes": flashes}))
}

// ResendConfirmation re-triggers the confirmation email for the address
// shown on the verify-email screen.
func (h *Handler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var data schema.ForgotPassword // shares the single email field
	if err := h.parser.Parse(r, &data); err != nil {
		h.notify(w, r, actions.Result{Error: schema.MsgInvalidData}, notification{}, SignUpPath)
		return
	}

	res := h.dispatcher.ResendConfirmation(r.Context(), h.clients.Anonymous(), data.Email)

	back := VerifyEmailPath + "?email=" + url.QueryEscape(data.Email)
	n := notification{
		redirect: back,
		flash:    &session.Flash{Class: session.FlashSuccess, Msg: session.ConfirmationResentMsg},
	}
	h.notify(w, r, res, n, back)
}

// UpdatePassword sets the new password for the session established by
// the reset callback. Success terminates that session and requires a
// fresh sign-in.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var data schema.UpdatePassword
	if err := h.parser.Parse(r, &data); err != nil {
		h.notify(w, r, actions.Result{Error: schema.MsgInvalidData}, notification{}, ResetPasswordPath)
		return
	}

	res := h.dispatcher.UpdatePassword(r.Context(), h.client(r), data)
	if res.Success {
		if s, err := h.d.Session(r.Context()); err == nil {
			if err := s.DeregisterTokens(w, r); err != nil {
				h.l.Error("failed dropping tokens after password update", &logger.LogContext{Error: err, Request: r})
			}
		}
	}

	n := notification{
		redirect: SignInPath,
		flash:    &session.Flash{Class: session.FlashSuccess, Msg: session.PasswordUpdatedMsg},
	}
	h.notify(w, r, res, n, ResetPasswordPath)
}

// ResetPasswordCallback lands the emailed reset link.
//
// When a one-time code is present it is exchanged for a session so the
// reset screen can update the password. The redirect to the reset
// screen happens regardless; a failed or absent exchange surfaces there
// as a failed update, not here.
func (h *Handler) ResetPasswordCallback(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("code"); code != "" {
		sess, err := h.clients.Anonymous().ExchangeCodeForSession(r.Context(), code)
		if err != nil {
			h.l.Warn("reset code exchange failed", &logger.LogContext{Error: err, Request: r})
		} else if err := h.registerTokens(w, r, sess); err != nil {
			h.l.Error("failed storing exchanged tokens", &logger.LogContext{Error: err, Request: r})
		}
	}

	h.d.Redirect(w, r, resp.Url(ResetPasswordPath))
}

// SignOut revokes the provider session and drops it from the app session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	res := h.dispatcher.SignOut(r.Context(), h.client(r))

	if s, err := h.d.Session(r.Context()); err == nil {
		if err := s.DeregisterTokens(w, r); err != nil {
			h.l.Error("failed dropping tokens on sign-out", &logger.LogContext{Error: err, Request: r})
		}
	}

	n := notification{
		redirect: SignInPath,
		flash:    &session.Flash{Class: session.FlashInfo, Msg: session.SignedOutMsg},
	}
	h.notify(w, r, res, n, SignInPath)
}

// client scopes a provider Client to the tokens in the request's
// session, falling back to an anonymous Client when there are none.
func (h *Handler) client(r *http.Request) provider.Client {
	s, err := h.d.Session(r.Context())
	if err != nil {
		return h.clients.Anonymous()
	}

	tokens, err := s.Tokens()
	if err != nil {
		return h.clients.Anonymous()
	}

	return h.clients.WithAccessToken(tokens.Access)
}

// registerTokens stores the provider session tokens in the app session.
func (h *Handler) registerTokens(w http.ResponseWriter, r *http.Request, sess provider.Session) error {
	s, err := h.d.Session(r.Context())
	if err != nil {
		return err
	}

	return s.RegisterTokens(w, r, session.Tokens{Access: sess.AccessToken, Refresh: sess.RefreshToken})
}

// popFlashes drains pending flashes, tolerating requests with no session.
func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []session.Flash {
	s, err := h.d.Session(r.Context())
	if err != nil {
		return nil
	}

	return s.Flashes(w, r)
}
