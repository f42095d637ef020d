package actions_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria/actions"
	"github.com/arvoredigital/portaria/provider"
	"github.com/arvoredigital/portaria/schema"
)

func newDispatcher(t *testing.T) *actions.Dispatcher {
	t.Helper()
	base, err := url.Parse("https://app.example.com")
	require.Nil(t, err)

	d, err := actions.NewDispatcher(base, nil)
	require.Nil(t, err)

	return d
}

func rateLimited() error {
	return &provider.Error{Status: http.StatusTooManyRequests, Message: "over_request_rate_limit"}
}

func TestForgotPassword(t *testing.T) {
	d := newDispatcher(t)

	// Arrange: invalid input never reaches the provider.
	called := false
	stub := &provider.Stub{
		ResetPasswordForEmailFn: func(ctx context.Context, email, redirectTo string) error {
			called = true
			return nil
		},
	}

	// Act
	res := d.ForgotPassword(context.Background(), stub, schema.ForgotPassword{Email: ""})

	// Assert
	require.False(t, called)
	require.False(t, res.Success)
	require.Equal(t, "email", res.Field)
	require.Equal(t, schema.MsgEmailRequired, res.Error)

	// Arrange: success carries the reset callback URL.
	var gotEmail, gotRedirect string
	stub.ResetPasswordForEmailFn = func(ctx context.Context, email, redirectTo string) error {
		gotEmail, gotRedirect = email, redirectTo
		return nil
	}

	// Act
	res = d.ForgotPassword(context.Background(), stub, schema.ForgotPassword{Email: "ana@example.com"})

	// Assert
	require.True(t, res.Success)
	require.Equal(t, "ana@example.com", gotEmail)
	require.Equal(t, "https://app.example.com/auth/reset-password/callback", gotRedirect)

	// Arrange: 429 translates to the cooldown message.
	stub.ResetPasswordForEmailFn = func(context.Context, string, string) error { return rateLimited() }

	// Act
	res = d.ForgotPassword(context.Background(), stub, schema.ForgotPassword{Email: "ana@example.com"})

	// Assert
	require.Equal(t, actions.MsgTooManyAttempts, res.Error)
	require.Zero(t, res.Field)

	// Arrange: other provider errors pass through verbatim.
	stub.ResetPasswordForEmailFn = func(context.Context, string, string) error {
		return &provider.Error{Status: http.StatusBadRequest, Message: "email address invalid"}
	}

	// Act
	res = d.ForgotPassword(context.Background(), stub, schema.ForgotPassword{Email: "ana@example.com"})

	// Assert
	require.Equal(t, "email address invalid", res.Error)
}

func TestSignInCollapsesCredentialErrors(t *testing.T) {
	d := newDispatcher(t)

	for _, tc := range []struct {
		name string
		err  error
	}{
		{"UnknownEmail", &provider.Error{Status: http.StatusBadRequest, Message: "user not found"}},
		{"WrongPassword", &provider.Error{Status: http.StatusBadRequest, Message: "invalid login credentials"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			stub := &provider.Stub{
				SignInWithPasswordFn: func(context.Context, string, string) (provider.Session, error) {
					return provider.Session{}, tc.err
				},
			}

			// Act
			_, res := d.SignIn(context.Background(), stub, schema.SignIn{
				Email:    "ana@example.com",
				Password: "whatever",
			})

			// Assert: the message never distinguishes which credential was wrong.
			require.False(t, res.Success)
			require.Equal(t, actions.MsgBadCredentials, res.Error)
			require.Zero(t, res.Field)
		})
	}
}

func TestSignIn(t *testing.T) {
	d := newDispatcher(t)

	// Arrange: validation failure stays generic with no field.
	_, res := d.SignIn(context.Background(), &provider.Stub{}, schema.SignIn{})

	// Assert
	require.Equal(t, schema.MsgInvalidData, res.Error)
	require.Zero(t, res.Field)

	// Arrange: success returns the provider session.
	stub := &provider.Stub{
		SignInWithPasswordFn: func(context.Context, string, string) (provider.Session, error) {
			return provider.Session{AccessToken: "at", RefreshToken: "rt"}, nil
		},
	}

	// Act
	s, res := d.SignIn(context.Background(), stub, schema.SignIn{Email: "ana@example.com", Password: "x"})

	// Assert
	require.True(t, res.Success)
	require.Equal(t, "at", s.AccessToken)

	// Arrange: 429 still yields the cooldown message, not bad credentials.
	stub.SignInWithPasswordFn = func(context.Context, string, string) (provider.Session, error) {
		return provider.Session{}, rateLimited()
	}

	// Act
	_, res = d.SignIn(context.Background(), stub, schema.SignIn{Email: "ana@example.com", Password: "x"})

	// Assert
	require.Equal(t, actions.MsgTooManyAttempts, res.Error)
}

func TestSignUp(t *testing.T) {
	d := newDispatcher(t)

	// Arrange
	var got provider.SignUpParams
	stub := &provider.Stub{
		SignUpFn: func(ctx context.Context, params provider.SignUpParams) error {
			got = params
			return nil
		},
	}

	// Act
	res := d.SignUp(context.Background(), stub, schema.SignUp{
		Name:            "Ana",
		Email:           "Foo@Bar.COM",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	})

	// Assert: lowercased email, metadata and callback URL all reach the provider.
	require.True(t, res.Success)
	require.Equal(t, "foo@bar.com", got.Email)
	require.Equal(t, map[string]any{"name": "Ana"}, got.Metadata)
	require.Equal(t, "https://app.example.com/auth/sign-up/callback", got.EmailRedirectTo)

	// Arrange: first validation issue only, attributed by field order.
	res = d.SignUp(context.Background(), stub, schema.SignUp{Email: "nope", Password: "weak"})

	// Assert
	require.Equal(t, "name", res.Field)
	require.Equal(t, schema.MsgNameRequired, res.Error)

	// Arrange + Act: 429 cooldown.
	stub.SignUpFn = func(context.Context, provider.SignUpParams) error { return rateLimited() }
	res = d.SignUp(context.Background(), stub, schema.SignUp{
		Name: "Ana", Email: "ana@example.com", Password: "Secret1!", ConfirmPassword: "Secret1!",
	})

	// Assert
	require.Equal(t, actions.MsgTooManyAttempts, res.Error)
}

func TestUpdatePassword(t *testing.T) {
	d := newDispatcher(t)

	// Arrange
	signedOut := false
	stub := &provider.Stub{
		SignOutFn: func(context.Context) error {
			signedOut = true
			return nil
		},
	}

	// Act
	res := d.UpdatePassword(context.Background(), stub, schema.UpdatePassword{
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	})

	// Assert: success always terminates the session.
	require.True(t, res.Success)
	require.True(t, signedOut)

	// Arrange: 422 means the new password matched the old one.
	signedOut = false
	stub.UpdateUserFn = func(context.Context, string) error {
		return &provider.Error{Status: http.StatusUnprocessableEntity, Message: "same password"}
	}

	// Act
	res = d.UpdatePassword(context.Background(), stub, schema.UpdatePassword{
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	})

	// Assert
	require.Equal(t, "password", res.Field)
	require.Equal(t, actions.MsgPasswordReuse, res.Error)
	require.False(t, signedOut)

	// Arrange + Act: 429 cooldown.
	stub.UpdateUserFn = func(context.Context, string) error { return rateLimited() }
	res = d.UpdatePassword(context.Background(), stub, schema.UpdatePassword{
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	})

	// Assert
	require.Equal(t, actions.MsgTooManyAttempts, res.Error)

	// Arrange + Act: any other failure genericizes to the retry message.
	stub.UpdateUserFn = func(context.Context, string) error { return errors.New("boom") }
	res = d.UpdatePassword(context.Background(), stub, schema.UpdatePassword{
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	})

	// Assert
	require.Equal(t, actions.MsgUpdatePasswordFailed, res.Error)

	// Arrange + Act: mismatched confirmation is attributed to confirmPassword.
	res = d.UpdatePassword(context.Background(), stub, schema.UpdatePassword{
		Password:        "Secret1!",
		ConfirmPassword: "Other1!a",
	})

	// Assert
	require.Equal(t, "confirmPassword", res.Field)
	require.Equal(t, schema.MsgPasswordMismatch, res.Error)
}

func TestResendConfirmation(t *testing.T) {
	d := newDispatcher(t)

	// Arrange
	var gotType provider.ResendType
	var gotEmail string
	stub := &provider.Stub{
		ResendFn: func(ctx context.Context, typ provider.ResendType, email string) error {
			gotType, gotEmail = typ, email
			return nil
		},
	}

	// Act
	res := d.ResendConfirmation(context.Background(), stub, "ana@example.com")

	// Assert
	require.True(t, res.Success)
	require.Equal(t, provider.ResendSignUp, gotType)
	require.Equal(t, "ana@example.com", gotEmail)

	// Act + Assert: missing email short-circuits.
	res = d.ResendConfirmation(context.Background(), stub, "")
	require.Equal(t, "email", res.Field)
}

func TestDispatcherUnexpectedErrorsAreTotal(t *testing.T) {
	d := newDispatcher(t)

	// Arrange: a transport failure, not a provider response.
	stub := &provider.Stub{
		ResetPasswordForEmailFn: func(context.Context, string, string) error {
			return errors.New("dial tcp: connection refused")
		},
	}

	// Act
	res := d.ForgotPassword(context.Background(), stub, schema.ForgotPassword{Email: "ana@example.com"})

	// Assert
	require.False(t, res.Success)
	require.Equal(t, actions.MsgUnexpected, res.Error)
}
