package auth_test

import (
	"net/http"
	"testing"

	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginSuccess verifies a registered user can log in and use the token.
func TestLoginSuccess(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	created := signupUser(t, client, "alice@example.com", "Alice", "Passw0rd!", "")

	session, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, created.User.ID, session.User.ID)

	me, err := client.Me(t.Context(), session.Token)
	require.NoError(t, err)
	require.Equal(t, created.User.ID, me.User.ID)
}

// TestLoginCaseInsensitiveEmail verifies the email casing used at login
// does not have to match the casing used at signup.
func TestLoginCaseInsensitiveEmail(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	created := signupUser(t, client, "Bob@Example.com", "Bob", "Passw0rd!", "")

	session, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "bob@example.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	require.Equal(t, created.User.ID, session.User.ID)
}

// TestLoginInvalidCredentials verifies wrong password and unknown email
// fail with the same status and message.
func TestLoginInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	signupUser(t, client, "carol@example.com", "Carol", "Passw0rd!", "")

	_, wrongPassword := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "carol@example.com",
		Password: "wrong",
	})
	assertAPIError(t, wrongPassword, http.StatusUnauthorized, "Invalid email or password")

	_, unknownEmail := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Passw0rd!",
	})
	assertAPIError(t, unknownEmail, http.StatusUnauthorized, "Invalid email or password")

	require.Equal(t, wrongPassword.Error(), unknownEmail.Error(),
		"Login failures should be indistinguishable")
}

// TestLoginMissingFields verifies incomplete requests are rejected.
func TestLoginMissingFields(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	_, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email: "carol@example.com",
	})
	assertAPIError(t, err, http.StatusBadRequest, "Email and password are required")
}
