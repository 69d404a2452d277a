package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mkobayashi/summarize-portal/identity"
	"github.com/mkobayashi/summarize-portal/internal/config"
	"github.com/mkobayashi/summarize-portal/internal/metrics"
	"github.com/mkobayashi/summarize-portal/server"
	"github.com/mkobayashi/summarize-portal/sessions"
	"github.com/mkobayashi/summarize-portal/summarizer"
	"github.com/mkobayashi/summarize-portal/summarizer/summarizerfakes"
)

type testConfig struct {
	config.EnvVars
	config.Serving
}

type serverFixture struct {
	srv     *server.Server
	flow    *summarizerfakes.FakeAuthFlow
	invoker *summarizerfakes.FakeInvoker
}

func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	flow := summarizerfakes.NewFakeAuthFlow()
	invoker := summarizerfakes.NewFakeInvoker()

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"name":  "Taro Yamada",
		"nonce": "fake-nonce",
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	flow.ExchangeTokenSet.IDToken = idToken

	registry := prometheus.NewRegistry()
	svc := summarizer.New(
		sessions.NewInMemoryRepo(),
		flow,
		identity.NewUnverified(zerolog.Nop()),
		invoker,
		metrics.New(registry),
		zerolog.Nop(),
	)

	cfg := testConfig{
		EnvVars: config.EnvVars{
			Port:        "3000",
			AppName:     "Summarize Portal",
			Environment: "TEST",
		},
	}

	srv, err := server.New(cfg, svc, registry, zerolog.Nop())
	require.NoError(t, err)

	return &serverFixture{srv: srv, flow: flow, invoker: invoker}
}

// do runs a request against the server, carrying the session cookie forward
func (f *serverFixture) do(t *testing.T, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func TestIndexHandler(t *testing.T) {
	f := setupServerFixture(t)

	w := f.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Summarize Portal")

	t.Run("mints a session cookie on first contact", func(t *testing.T) {
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "summarize_session", cookies[0].Name)
		require.NotEmpty(t, cookies[0].Value)
		require.True(t, cookies[0].HttpOnly)
	})
}

func TestSummarizeHandler(t *testing.T) {
	t.Run("blank input redirects back with a visible error", func(t *testing.T) {
		f := setupServerFixture(t)

		w := f.do(t, http.MethodPost, "/summarize", "text=", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)

		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/", location.Path)
		require.NotEmpty(t, location.Query().Get("error"))
	})

	t.Run("unauthenticated submission redirects to the provider", func(t *testing.T) {
		f := setupServerFixture(t)

		w := f.do(t, http.MethodPost, "/summarize", "text=Hello", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)

		location := w.Header().Get("Location")
		require.True(t, strings.HasPrefix(location, "https://provider.example.com/oidc/v1/authorize"))
		require.Contains(t, location, "state=fake-state")
	})
}

func TestCallbackRoundTrip(t *testing.T) {
	f := setupServerFixture(t)

	// Submit while unauthenticated: the action parks and the user is
	// bounced to the provider
	submit := f.do(t, http.MethodPost, "/summarize", "text=Hello", nil)
	require.Equal(t, http.StatusSeeOther, submit.Code)
	cookies := submit.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The provider redirects back with a code and the original state
	callback := f.do(t, http.MethodGet, "/oauth/callback?code=auth-code-1&state=fake-state", "", cookies)
	require.Equal(t, http.StatusSeeOther, callback.Code)
	require.Equal(t, "/", callback.Header().Get("Location"))

	// The parked action ran exactly once and the result is on the page
	require.Equal(t, 1, f.invoker.CallCount())
	home := f.do(t, http.MethodGet, "/", "", cookies)
	require.Equal(t, http.StatusOK, home.Code)
	require.Contains(t, home.Body.String(), "fake summary")
	require.Contains(t, home.Body.String(), "Taro Yamada")

	t.Run("replaying the callback fails", func(t *testing.T) {
		replay := f.do(t, http.MethodGet, "/oauth/callback?code=auth-code-1&state=fake-state", "", cookies)
		require.Equal(t, http.StatusSeeOther, replay.Code)

		location, err := url.Parse(replay.Header().Get("Location"))
		require.NoError(t, err)
		require.NotEmpty(t, location.Query().Get("error"))
		require.Equal(t, 1, f.invoker.CallCount())
	})

	t.Run("logout clears the session and expires the cookie", func(t *testing.T) {
		logout := f.do(t, http.MethodPost, "/logout", "", cookies)
		require.Equal(t, http.StatusSeeOther, logout.Code)

		expired := logout.Result().Cookies()
		require.Len(t, expired, 1)
		require.Equal(t, -1, expired[0].MaxAge)

		home := f.do(t, http.MethodGet, "/", "", cookies)
		require.NotContains(t, home.Body.String(), "fake summary")
		require.NotContains(t, home.Body.String(), "Taro Yamada")
	})
}

func TestCallbackHandler_ProviderError(t *testing.T) {
	f := setupServerFixture(t)

	submit := f.do(t, http.MethodPost, "/summarize", "text=Hello", nil)
	cookies := submit.Result().Cookies()

	w := f.do(t, http.MethodGet, "/oauth/callback?error=access_denied", "", cookies)
	require.Equal(t, http.StatusSeeOther, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.Query().Get("error"), "access_denied")
	require.Equal(t, 0, f.invoker.CallCount())
}

func TestSampleAndClearHandlers(t *testing.T) {
	f := setupServerFixture(t)

	sample := f.do(t, http.MethodPost, "/sample", "", nil)
	require.Equal(t, http.StatusSeeOther, sample.Code)
	cookies := sample.Result().Cookies()

	home := f.do(t, http.MethodGet, "/", "", cookies)
	require.Contains(t, home.Body.String(), "Data Engineering Design Patterns")

	clear := f.do(t, http.MethodPost, "/clear", "", cookies)
	require.Equal(t, http.StatusSeeOther, clear.Code)

	home = f.do(t, http.MethodGet, "/", "", cookies)
	require.NotContains(t, home.Body.String(), "Data Engineering Design Patterns")
}
