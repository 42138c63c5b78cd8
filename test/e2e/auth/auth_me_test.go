package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestMeReturnsCurrentUser verifies /auth/me resolves the bearer token.
func TestMeReturnsCurrentUser(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	session := signupUser(t, client, "alice@example.com", "Alice", "Passw0rd!", "ADMIN")

	me, err := client.Me(t.Context(), session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, me.User.ID)
	require.Equal(t, "alice@example.com", me.User.Email)
	require.Equal(t, "ADMIN", me.User.Role)
	require.NotNil(t, me.User.CreatedAt, "Me response should include createdAt")
}

// TestMeRequiresToken verifies the endpoint rejects unauthenticated requests.
func TestMeRequiresToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	_, err := client.Me(t.Context(), "")
	assertAPIError(t, err, http.StatusUnauthorized, "Authentication required")
}

// TestMeRejectsGarbageToken verifies malformed tokens are rejected.
func TestMeRejectsGarbageToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)

	_, err := client.Me(t.Context(), "not-a-token")
	assertAPIError(t, err, http.StatusUnauthorized, "Invalid or expired token")
}

// TestMeNeverExposesPasswordHash reads the raw response body and checks no
// password material leaks through any endpoint.
func TestMeNeverExposesPasswordHash(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewClient(baseURL)
	session := signupUser(t, client, "bob@example.com", "Bob", "Passw0rd!", "")

	req, err := http.NewRequest(http.MethodGet, baseURL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(body), "password")
	require.NotContains(t, string(body), "argon2")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(body, &parsed))
	user, ok := parsed["user"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, user, "id")
	require.Contains(t, user, "email")
}
