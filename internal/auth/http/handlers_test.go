package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/karhulabs/authd/internal/auth/service"
	"github.com/karhulabs/authd/internal/auth/store/drivers/sqlite"
	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/karhulabs/authd/pkg/cryptox"
	"github.com/karhulabs/authd/pkg/httpx"
	"github.com/karhulabs/authd/pkg/jwtx"
	"github.com/karhulabs/authd/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "authd-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	// Rate limits are strict by default; loosen them so tests can hammer
	// the endpoints from one address.
	httpx.StrictLimit = httpx.RateLimitConfig{
		RequestsPerWindow: 1000,
		Window:            time.Minute,
		Burst:             1000,
	}

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*httptest.Server, *jwtx.HS256) {
	t.Helper()

	dbFile := filepath.Join(t.TempDir(), "auth-test.db")
	st, err := sqlite.NewStore("file:" + dbFile + "?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "authd-test")
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "authd", Env: "test", Level: "error", Format: "text"})

	router := NewRouter(signer, "test", "", st, logger)
	router.AuthService = &service.AuthService{
		Store:      st,
		Signer:     signer,
		Issuer:     "authd-test",
		SessionTTL: jwtx.DefaultSessionTTL,
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, signer
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeInto(t, resp, &body)
	return body.Error
}

func TestAuthFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// Signup creates the user with the default role.
	resp := postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{
		Email:    "a@b.com",
		Name:     "A",
		Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created authsdk.SessionResponse
	decodeInto(t, resp, &created)
	require.NotEmpty(t, created.Token)
	require.Equal(t, "USER", created.User.Role)
	require.Equal(t, "a@b.com", created.User.Email)

	// Immediate second signup with the same email fails with 400.
	resp = postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{
		Email:    "a@b.com",
		Name:     "A",
		Password: "secret1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "User with this email already exists", errorMessage(t, resp))

	// Wrong password fails with 401.
	resp = postJSON(t, srv.URL+"/auth/login", authsdk.LoginRequest{
		Email:    "a@b.com",
		Password: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid email or password", errorMessage(t, resp))

	// Correct password succeeds.
	resp = postJSON(t, srv.URL+"/auth/login", authsdk.LoginRequest{
		Email:    "a@b.com",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loggedIn authsdk.SessionResponse
	decodeInto(t, resp, &loggedIn)
	require.NotEmpty(t, loggedIn.Token)

	// The token resolves to the same user via /auth/me.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)

	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me authsdk.MeResponse
	decodeInto(t, meResp, &me)
	require.Equal(t, created.User.ID, me.User.ID)
	require.NotNil(t, me.User.CreatedAt)
}

func TestSignup_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{Email: "a@b.com"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Email, name, and password are required", errorMessage(t, resp))
	})

	t.Run("bad role", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{
			Email:    "a@b.com",
			Name:     "A",
			Password: "secret1",
			Role:     "ROOT",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Role must be either USER or ADMIN", errorMessage(t, resp))
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/auth/signup", "application/json",
			bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestLogin_DoesNotLeakWhichFieldWasWrong(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{
		Email:    "a@b.com",
		Name:     "A",
		Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	wrongPassword := postJSON(t, srv.URL+"/auth/login", authsdk.LoginRequest{
		Email:    "a@b.com",
		Password: "wrong",
	})
	unknownEmail := postJSON(t, srv.URL+"/auth/login", authsdk.LoginRequest{
		Email:    "nobody@b.com",
		Password: "secret1",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	require.Equal(t, errorMessage(t, wrongPassword), errorMessage(t, unknownEmail))
}

func TestResponses_NeverExposePasswordHash(t *testing.T) {
	srv, signer := newTestServer(t)

	resp := postJSON(t, srv.URL+"/auth/signup", authsdk.SignupRequest{
		Email:    "a@b.com",
		Name:     "A",
		Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]any
	decodeInto(t, resp, &raw)

	user, ok := raw["user"].(map[string]any)
	require.True(t, ok)
	for field := range user {
		require.NotContains(t, field, "password")
		require.NotContains(t, field, "hash")
	}

	// Same for /auth/me.
	token, err := signer.Sign(jwtx.NewSessionClaims(
		user["id"].(string), "a@b.com", "USER", time.Hour, "authd-test", time.Now()))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var meRaw map[string]any
	decodeInto(t, meResp, &meRaw)
	meUser, ok := meRaw["user"].(map[string]any)
	require.True(t, ok)
	for field := range meUser {
		require.NotContains(t, field, "password")
		require.NotContains(t, field, "hash")
	}
}

func TestMe_Unauthorized(t *testing.T) {
	srv, signer := newTestServer(t)

	t.Run("no token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/auth/me")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims(
			"u1", "a@b.com", "USER", time.Hour, "authd-test", time.Now().Add(-2*time.Hour)))
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token for a deleted subject is 404", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewSessionClaims(
			"01JGONEUSER00000000000000", "gone@b.com", "USER", time.Hour, "authd-test", time.Now()))
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "User not found", errorMessage(t, resp))
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/livez")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health authsdk.HealthResponse
	decodeInto(t, resp, &health)
	require.Equal(t, "ok", health.Status)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ready authsdk.HealthResponse
	decodeInto(t, resp, &ready)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}
