//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/relaydesk/relaydesk/internal/api/handlers"
	"github.com/relaydesk/relaydesk/internal/classify"
	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
	"github.com/relaydesk/relaydesk/internal/repository"
	"github.com/relaydesk/relaydesk/internal/server"
	"github.com/relaydesk/relaydesk/internal/service"
	"github.com/relaydesk/relaydesk/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testAPIKey = "rk_e2e_key"

const generalKB = `Question,Answer
How long does delivery take?,Delivery takes 3-5 business days.
How do I reset my password?,Use the password reset link on the sign-in page.
What is your return policy?,Items can be returned within 30 days of purchase.
`

const seniorKB = `Question,Answer
Can I get compensation for a damaged product?,Yes. A specialist will arrange compensation within 2 business days.
How do I escalate a complaint?,Complaints are reviewed by the senior support team within 24 hours.
`

// E2EEnv holds all resources needed for end-to-end tests
type E2EEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Store      *kb.Store
	Decisions  *repository.DecisionLogRepository
	ServerURL  string
	HTTPClient *http.Client
	closeFns   []func()
}

// SetupE2EEnv starts Postgres, loads both knowledge tiers from disk, and
// serves the full router over HTTP.
func SetupE2EEnv(t *testing.T) *E2EEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	dir := t.TempDir()
	generalPath := filepath.Join(dir, "general.csv")
	seniorPath := filepath.Join(dir, "senior.csv")
	if err := os.WriteFile(generalPath, []byte(generalKB), 0o644); err != nil {
		t.Fatalf("failed to write general kb: %v", err)
	}
	if err := os.WriteFile(seniorPath, []byte(seniorKB), 0o644); err != nil {
		t.Fatalf("failed to write senior kb: %v", err)
	}

	store := kb.NewStore()
	general, err := kb.LoadFile(generalPath, domain.TierGeneral)
	if err != nil {
		t.Fatalf("failed to load general kb: %v", err)
	}
	store.Set(domain.TierGeneral, general)

	senior, err := kb.LoadFile(seniorPath, domain.TierSenior)
	if err != nil {
		t.Fatalf("failed to load senior kb: %v", err)
	}
	store.Set(domain.TierSenior, senior)

	classifier, err := classify.New(classify.DefaultRules())
	if err != nil {
		t.Fatalf("failed to build classifier: %v", err)
	}

	router := service.NewRouter(store, classifier, nil)
	decisions := repository.NewDecisionLogRepository(pool)

	cfg := server.RouterConfig{
		AuthValidator: service.NewStaticKeyValidator([]string{testAPIKey}),
		QueryHandler:  handlers.NewQueryHandler(router, nil, decisions),
		KBHandler:     handlers.NewKBHandler(store, router),
		TopicsHandler: handlers.NewTopicsHandler(classifier),
		HealthHandler: handlers.NewHealthHandler(store, "e2e"),
	}

	srv := httptest.NewServer(server.NewRouter(cfg))

	env := &E2EEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Store:      store,
		Decisions:  decisions,
		ServerURL:  srv.URL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	env.closeFns = append(env.closeFns,
		srv.Close,
		pool.Close,
		func() { _ = pgC.Terminate(ctx) },
	)
	return env
}

// Cleanup tears down the server and containers
func (env *E2EEnv) Cleanup() {
	for i := len(env.closeFns) - 1; i >= 0; i-- {
		env.closeFns[i]()
	}
}

// Truncate wipes the decision log between subtests
func (env *E2EEnv) Truncate() {
	if err := testutil.TruncateAll(env.Ctx, env.Pool); err != nil {
		env.T.Fatalf("failed to truncate tables: %v", err)
	}
}

// APIResponse mirrors the server envelope
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (env *E2EEnv) request(method, path string, body any, apiKey string) (*APIResponse, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.ServerURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("bad response body %q: %w", respBody, err)
	}
	return &apiResp, resp.StatusCode, nil
}

// Get performs an authenticated GET request
func (env *E2EEnv) Get(path string) (*APIResponse, int, error) {
	return env.request(http.MethodGet, path, nil, testAPIKey)
}

// Post performs an authenticated POST request
func (env *E2EEnv) Post(path string, body any) (*APIResponse, int, error) {
	return env.request(http.MethodPost, path, body, testAPIKey)
}

// PostUnauthenticated performs a POST request without credentials
func (env *E2EEnv) PostUnauthenticated(path string, body any) (*APIResponse, int, error) {
	return env.request(http.MethodPost, path, body, "")
}
