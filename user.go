package portaria

import "time"

// AccessState is a string representation of the broadest, general access
// a User has to a portaria application.
type AccessState string

const (
	AccessGranted     AccessState = "granted"
	AccessVerifyEmail AccessState = "verify-email"
)

// String stringifies the AccessState.
//
// String implements fmt.Stringer.
func (as AccessState) String() string { return string(as) }

// A User is the core entity that interacts with a portaria application.
//
// The application never stores Users itself.
// A User is observed from the external auth provider:
// credentials, email confirmation and session issuance all live there.
// This type carries only what route gating and rendering need.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"emailConfirmedAt,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// AccessState derives the User's access from whether the provider
// confirmed their email address.
func (u User) AccessState() AccessState {
	if u.EmailConfirmedAt == nil || u.EmailConfirmedAt.IsZero() {
		return AccessVerifyEmail
	}

	return AccessGranted
}

// HasAccess asserts whether the User's properties give it general
// access to the portaria application.
func (u User) HasAccess() bool { return u.AccessState() == AccessGranted }

// HomePath returns the relative URL path designated
// as the default resource the User can access.
//
// Any authenticated User lands on the dashboard;
// confirming the email address gates features, not the session.
func (u User) HomePath() string { return "/dashboard" }

// Name pulls the display name out of the profile metadata
// attached at sign-up.
func (u User) Name() string {
	name, _ := u.Metadata["name"].(string)
	return name
}

// GetID retrieves the provider's identifier for the User.
//
// GetID partially implements logger.LogUser.
func (u User) GetID() string { return u.ID }

// GetEmail retrieves the email address of the User.
//
// GetEmail partially implements logger.LogUser.
func (u User) GetEmail() string { return u.Email }
