package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/go-plaid-link/aggregator"
	"github.com/jrsteele09/go-plaid-link/aggregator/fakeaggregator"
	"github.com/jrsteele09/go-plaid-link/identity"
	"github.com/jrsteele09/go-plaid-link/internal/config"
	"github.com/jrsteele09/go-plaid-link/server"
	"github.com/jrsteele09/go-plaid-link/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testFixture holds all test dependencies
type testFixture struct {
	aggregator *fakeaggregator.FakeClient
	sessions   *sessions.InMemoryRepo
	server     *httptest.Server
	client     *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return setupTestFixtureWithRepo(t, func(repo *sessions.InMemoryRepo) sessions.Repo { return repo })
}

// setupTestFixtureWithRepo lets a test wrap the session repo the server uses
func setupTestFixtureWithRepo(t *testing.T, wrap func(*sessions.InMemoryRepo) sessions.Repo) *testFixture {
	t.Helper()

	t.Setenv("LOGIN_USERNAME", "")
	t.Setenv("LOGIN_PASSWORD", "")
	cfg := config.FromFile(nil)

	provider, err := identity.NewStaticProvider(cfg.GetLoginUsername(), cfg.GetLoginPassword())
	require.NoError(t, err)

	agg := fakeaggregator.NewFakeClient()
	repo := sessions.NewInMemoryRepo()

	srv, err := server.New(cfg, server.Dependencies{
		Sessions:   wrap(repo),
		Identity:   provider,
		Aggregator: agg,
	}, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testFixture{
		aggregator: agg,
		sessions:   repo,
		server:     ts,
		client:     &http.Client{Jar: jar},
	}
}

func (f *testFixture) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	status, body := f.do(t, http.MethodPost, server.RouteLogin, `{"username":"user_good","password":"pass_good"}`)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"message":"Login successful"}`, body)
}

func (f *testFixture) exchange(t *testing.T) (int, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"publicToken": f.aggregator.IssuePublicToken()})
	require.NoError(t, err)
	return f.do(t, http.MethodPost, server.RouteExchangePublicToken, string(payload))
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)

	f.login(t)
	require.Equal(t, 1, f.sessions.Len())

	cookies := f.client.Jar.Cookies(mustParseURL(t, f.server.URL))
	require.Len(t, cookies, 1)
	require.Equal(t, "session", cookies[0].Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	pairs := []string{
		`{"username":"user_good","password":"wrong"}`,
		`{"username":"someone","password":"pass_good"}`,
		`{"username":"","password":""}`,
		`{}`,
	}
	for _, body := range pairs {
		t.Run(body, func(t *testing.T) {
			f := setupTestFixture(t)

			status, resp := f.do(t, http.MethodPost, server.RouteLogin, body)
			require.Equal(t, http.StatusUnauthorized, status)
			require.JSONEq(t, `{"error":"Invalid credentials"}`, resp)
			require.Zero(t, f.sessions.Len(), "no session established")
		})
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, server.RouteLogin, `not json`)
	require.Equal(t, http.StatusInternalServerError, status)

	var envelope server.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	require.NotEmpty(t, envelope.Error)
	require.Equal(t, "invalid_request", envelope.Type)
	require.Equal(t, "server", envelope.Module)
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	status1, body1 := f.do(t, http.MethodPost, server.RouteLogout, "")
	status2, body2 := f.do(t, http.MethodPost, server.RouteLogout, "")

	require.Equal(t, http.StatusOK, status1)
	require.Equal(t, status1, status2)
	require.JSONEq(t, `{"message":"Logout successful"}`, body1)
	require.JSONEq(t, body1, body2)
	require.Zero(t, f.sessions.Len(), "no residual session state")
}

// deleteRecordingRepo keeps a copy of every session as it was when deleted
type deleteRecordingRepo struct {
	*sessions.InMemoryRepo
	mu      sync.Mutex
	deleted []sessions.UserSession
}

func (r *deleteRecordingRepo) Delete(sessionID string) error {
	if session, err := r.Get(sessionID); err == nil {
		r.mu.Lock()
		r.deleted = append(r.deleted, session)
		r.mu.Unlock()
	}
	return r.InMemoryRepo.Delete(sessionID)
}

func TestLogout_ClearsCredentialBeforeDelete(t *testing.T) {
	var recorder *deleteRecordingRepo
	f := setupTestFixtureWithRepo(t, func(repo *sessions.InMemoryRepo) sessions.Repo {
		recorder = &deleteRecordingRepo{InMemoryRepo: repo}
		return recorder
	})
	f.login(t)
	status, _ := f.exchange(t)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, server.RouteLogout, "")
	require.Equal(t, http.StatusOK, status)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.NotEmpty(t, recorder.deleted)
	last := recorder.deleted[len(recorder.deleted)-1]
	require.Empty(t, last.AccessToken)
	require.Empty(t, last.ItemID)
}

func TestLogout_WithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, server.RouteLogout, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"message":"Logout successful"}`, body)
}

func TestTransactions_NotLinked(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"error":"Access token not found"}`, body)

	f.login(t)
	status, body = f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"error":"Access token not found"}`, body)
	require.Empty(t, f.aggregator.TransactionQueries)
}

func TestLinkFlow(t *testing.T) {
	f := setupTestFixture(t)
	f.aggregator.Transactions = []aggregator.TransactionRecord{
		json.RawMessage(`{"transaction_id":"t1","amount":4.33,"name":"Starbucks"}`),
		json.RawMessage(`{"transaction_id":"t2","amount":89.4,"name":"SparkFun"}`),
	}
	f.login(t)

	status, body := f.do(t, http.MethodPost, server.RouteCreateLinkToken, "")
	require.Equal(t, http.StatusOK, status)
	var linkToken map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &linkToken))
	require.NotEmpty(t, linkToken["link_token"])
	require.Equal(t, "user_good", f.aggregator.LinkRequests[0].ClientUserID)

	status, body = f.exchange(t)
	require.Equal(t, http.StatusOK, status)
	var exchanged map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &exchanged))
	require.NotEmpty(t, exchanged["item_id"])
	require.NotContains(t, exchanged, "access_token")

	accessTokens := f.aggregator.AccessTokens()
	require.Len(t, accessTokens, 1)
	require.NotContains(t, body, accessTokens[0], "access token never reaches the client")

	status, body = f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[
		{"transaction_id":"t1","amount":4.33,"name":"Starbucks"},
		{"transaction_id":"t2","amount":89.4,"name":"SparkFun"}
	]`, body)
	require.Equal(t, accessTokens[0], f.aggregator.TransactionQueries[0].AccessToken)
	require.True(t, f.aggregator.TransactionQueries[0].IncludeEnhancedCategory)
}

func TestLinkFlow_Guest(t *testing.T) {
	f := setupTestFixture(t)

	status, _ := f.do(t, http.MethodPost, server.RouteCreateLinkToken, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, sessions.GuestUserID, f.aggregator.LinkRequests[0].ClientUserID)

	status, _ = f.exchange(t)
	require.Equal(t, http.StatusOK, status)

	status, body := f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, body)
}

func TestLinkFlow_SurvivesLogin(t *testing.T) {
	f := setupTestFixture(t)

	status, _ := f.exchange(t)
	require.Equal(t, http.StatusOK, status)
	f.login(t)
	require.Equal(t, 1, f.sessions.Len(), "previous session replaced")

	status, _ = f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusOK, status)
}

func TestLogout_ClearsAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	status, _ := f.exchange(t)
	require.Equal(t, http.StatusOK, status)

	f.do(t, http.MethodPost, server.RouteLogout, "")

	status, body := f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"error":"Access token not found"}`, body)
}

func TestCreateLinkToken_UpstreamFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.aggregator.LinkTokenErr = aggregator.UpstreamError("INVALID_REQUEST", "INVALID_FIELD", "secret must be a properly formatted, non-empty string", nil)
	f.login(t)

	status, body := f.do(t, http.MethodPost, server.RouteCreateLinkToken, "")
	require.Equal(t, http.StatusInternalServerError, status)

	var envelope server.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	require.Equal(t, "secret must be a properly formatted, non-empty string", envelope.Error)
	require.Equal(t, "INVALID_REQUEST", envelope.Type)
	require.Equal(t, "aggregator", envelope.Module)

	require.Empty(t, f.aggregator.AccessTokens())
	status, _ = f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusUnauthorized, status, "no partial credential written")
}

func TestExchangePublicToken_InvalidToken(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	status, body := f.do(t, http.MethodPost, server.RouteExchangePublicToken, `{"publicToken":"public-sandbox-unknown"}`)
	require.Equal(t, http.StatusInternalServerError, status)

	var envelope server.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	require.NotEmpty(t, envelope.Error)
	require.Equal(t, "INVALID_INPUT", envelope.Type)
	require.Equal(t, "aggregator", envelope.Module)

	status, _ = f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestExchangePublicToken_MissingToken(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, server.RouteExchangePublicToken, `{}`)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Contains(t, body, "publicToken is required")
	require.Zero(t, f.aggregator.ExchangeCalls)
}

func TestTransactions_UpstreamFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	status, _ := f.exchange(t)
	require.Equal(t, http.StatusOK, status)
	f.aggregator.TransactionsErr = aggregator.UpstreamError("ITEM_ERROR", "ITEM_LOGIN_REQUIRED", "the login details of this item have changed", nil)

	status, body := f.do(t, http.MethodGet, server.RouteTransactions, "")
	require.Equal(t, http.StatusInternalServerError, status)
	require.JSONEq(t, `{"error":"the login details of this item have changed","type":"ITEM_ERROR","module":"aggregator"}`, body)
}

func TestInvalidCookieIgnored(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+server.RouteTransactions, nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "session", Value: "forged"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFavicon(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodGet, server.RouteFavicon, "")
	require.Equal(t, http.StatusNoContent, status)
	require.Empty(t, body)
}

func TestIndex(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodGet, server.RouteIndex, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, server.RouteTransactions)
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupTestFixture(t)

	status, _ := f.do(t, http.MethodGet, server.RouteLogin, "")
	require.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestUnknownRoute(t *testing.T) {
	f := setupTestFixture(t)

	status, _ := f.do(t, http.MethodGet, "/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodOptions, "/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+server.RouteTransactions, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8080")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
