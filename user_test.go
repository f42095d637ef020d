package portaria_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria"
)

func TestUserAccessState(t *testing.T) {
	// Arrange
	u := portaria.User{ID: "b5bd4b60-4e95-4a29-a29e-2dbcc8db61a2", Email: "ana@example.com"}

	// Act + Assert
	require.Equal(t, portaria.AccessVerifyEmail, u.AccessState())
	require.False(t, u.HasAccess())

	// A pending confirmation limits access, not where home is.
	require.Equal(t, "/dashboard", u.HomePath())

	// Arrange
	now := time.Now()
	u.EmailConfirmedAt = &now

	// Act + Assert
	require.Equal(t, portaria.AccessGranted, u.AccessState())
	require.True(t, u.HasAccess())
	require.Equal(t, "/dashboard", u.HomePath())
}

func TestUserName(t *testing.T) {
	// Arrange
	u := portaria.User{Metadata: map[string]any{"name": "Ana"}}

	// Act + Assert
	require.Equal(t, "Ana", u.Name())
	require.Zero(t, portaria.User{}.Name())
}
