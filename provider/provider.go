package provider

import (
	"context"

	"github.com/arvoredigital/portaria"
)

// The Client wraps every operation portaria consumes from the external
// auth provider. The provider owns credential storage, token issuance,
// rate limiting and email delivery; a Client only maps requests onto
// the provider's REST surface.
//
// A Client is scoped to a single HTTP request and must not be shared;
// confer Factory.
type Client interface {
	// ResetPasswordForEmail asks the provider to send a password reset
	// email linking back to redirectTo.
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error

	// SignInWithPassword verifies credentials and establishes a session.
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)

	// SignUp creates an account and triggers the confirmation email.
	SignUp(ctx context.Context, params SignUpParams) error

	// UpdateUser sets a new password for the authenticated session.
	UpdateUser(ctx context.Context, password string) error

	// SignOut revokes the authenticated session.
	SignOut(ctx context.Context) error

	// Resend re-triggers a confirmation email of the given type.
	Resend(ctx context.Context, typ ResendType, email string) error

	// GetUser fetches the user owning the authenticated session.
	GetUser(ctx context.Context) (portaria.User, error)

	// ExchangeCodeForSession swaps a one-time code for a session.
	ExchangeCodeForSession(ctx context.Context, code string) (Session, error)
}

// A Session is the pair of opaque tokens the provider issues.
// portaria only carries them; it never inspects the refresh token
// and reads the access token solely through Factory.ParseAccessToken.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// SignUpParams collects everything the sign-up flow hands the provider.
type SignUpParams struct {
	Email    string
	Password string

	// EmailRedirectTo is the URL the confirmation email links back to.
	EmailRedirectTo string

	// Metadata is attached to the account as profile metadata.
	Metadata map[string]any
}

// A ResendType names which confirmation email Resend re-triggers.
type ResendType string

const (
	ResendSignUp ResendType = "signup"
)
