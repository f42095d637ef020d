package actions

import (
	"context"
	"net/http"

	"github.com/arvoredigital/portaria/provider"
	"github.com/arvoredigital/portaria/schema"
)

// ForgotPassword asks the provider to email a password reset link
// pointing back at the reset callback route.
func (d *Dispatcher) ForgotPassword(ctx context.Context, client provider.Client, req schema.ForgotPassword) Result {
	if fe := schema.Check(&req); fe != nil {
		return failField(fe.Field, fe.Msg)
	}

	err := client.ResetPasswordForEmail(ctx, req.Email, d.callbackURL(resetCallbackPath))
	if err == nil {
		return ok()
	}

	if res, handled := d.translate(err); handled {
		return res
	}

	return d.unexpected("forgot-password", err)
}

// SignIn verifies credentials against the provider.
//
// On success the provider Session returns alongside the Result so the
// caller can register it in the app session. Any credential failure
// collapses into one generic message: the flow never reveals whether the
// email or the password was wrong.
func (d *Dispatcher) SignIn(ctx context.Context, client provider.Client, req schema.SignIn) (provider.Session, Result) {
	if fe := schema.Check(&req); fe != nil {
		return provider.Session{}, fail(schema.MsgInvalidData)
	}

	s, err := client.SignInWithPassword(ctx, req.Email, req.Password)
	if err == nil {
		return s, ok()
	}

	if provider.IsRateLimited(err) {
		return provider.Session{}, fail(MsgTooManyAttempts)
	}

	if provider.StatusOf(err) != 0 {
		return provider.Session{}, fail(MsgBadCredentials)
	}

	return provider.Session{}, d.unexpected("sign-in", err)
}

// SignUp creates the account with the lowercased email, attaches the
// display name as profile metadata and points the confirmation email at
// the sign-up callback route.
func (d *Dispatcher) SignUp(ctx context.Context, client provider.Client, req schema.SignUp) Result {
	if fe := schema.Check(&req); fe != nil {
		return failField(fe.Field, fe.Msg)
	}

	err := client.SignUp(ctx, provider.SignUpParams{
		Email:           req.Email,
		Password:        req.Password,
		EmailRedirectTo: d.callbackURL(signUpCallbackPath),
		Metadata:        map[string]any{"name": req.Name},
	})
	if err == nil {
		return ok()
	}

	if res, handled := d.translate(err); handled {
		return res
	}

	return d.unexpected("sign-up", err)
}

// UpdatePassword sets a new password for the authenticated session and,
// on success, signs that session out so the user logs in again.
func (d *Dispatcher) UpdatePassword(ctx context.Context, client provider.Client, req schema.UpdatePassword) Result {
	if fe := schema.Check(&req); fe != nil {
		return failField(fe.Field, fe.Msg)
	}

	if err := client.UpdateUser(ctx, req.Password); err != nil {
		if provider.IsRateLimited(err) {
			return fail(MsgTooManyAttempts)
		}

		if provider.StatusOf(err) == http.StatusUnprocessableEntity {
			return failField("password", MsgPasswordReuse)
		}

		return fail(MsgUpdatePasswordFailed)
	}

	if err := client.SignOut(ctx); err != nil {
		// The password did change; a lingering session is the lesser problem.
		d.l.Warn("sign-out after password update failed", nil)
	}

	return ok()
}

// ResendConfirmation re-triggers the sign-up confirmation email.
func (d *Dispatcher) ResendConfirmation(ctx context.Context, client provider.Client, email string) Result {
	if email == "" {
		return failField("email", schema.MsgEmailRequired)
	}

	err := client.Resend(ctx, provider.ResendSignUp, email)
	if err == nil {
		return ok()
	}

	if res, handled := d.translate(err); handled {
		return res
	}

	return d.unexpected("resend-confirmation", err)
}

// SignOut revokes the provider session.
func (d *Dispatcher) SignOut(ctx context.Context, client provider.Client) Result {
	err := client.SignOut(ctx)
	if err == nil {
		return ok()
	}

	if res, handled := d.translate(err); handled {
		return res
	}

	return d.unexpected("sign-out", err)
}
