//go:build bdd

package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/quaylabs/exchangekit/internal/crypto"
	"github.com/quaylabs/exchangekit/internal/exchange"
	"github.com/quaylabs/exchangekit/internal/prefs"
	"github.com/quaylabs/exchangekit/internal/publisher"
	"github.com/quaylabs/exchangekit/internal/server"
)

// bddContext holds per-scenario state.
type bddContext struct {
	upstream    *httptest.Server
	ts          *httptest.Server
	store       *publisher.Store
	preferences *prefs.Store
	client      *exchange.Client

	// last HTTP response from the facade
	lastStatus int
	lastBody   []byte
}

func (b *bddContext) reset() {
	if b.ts != nil {
		b.ts.Close()
	}
	if b.client != nil {
		b.client.Close()
	}
	if b.store != nil {
		b.store.Close()
	}
	if b.preferences != nil {
		b.preferences.Close()
	}
	if b.upstream != nil {
		b.upstream.Close()
	}
	*b = bddContext{}
}

// fakeExchange serves the handful of upstream endpoints the scenarios touch.
// The token endpoint accepts only the code "good-code".
func fakeExchange() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostFormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"access_token":"bdd-access","refresh_token":"bdd-refresh"}`)
	})
	mux.HandleFunc("/oauth-api/v1/revoke-token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":true}`)
	})
	mux.HandleFunc("/oauth-api/v1/balance", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"000000","data":[{"asset":"BTC","free":"0.25"},{"asset":"BAT","free":"150.0"}]}`)
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"65000.10"}`)
	})
	mux.HandleFunc("/api/v3/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"BTCUSDT","volume":"1234.5"}`)
	})
	return httptest.NewServer(mux)
}

// ── Given steps ─────────────────────────────────────────────────────

func (b *bddContext) theServerIsRunning() error {
	if b.ts != nil {
		return nil // already running
	}

	b.upstream = fakeExchange()

	store, err := publisher.NewStore(":memory:")
	if err != nil {
		return fmt.Errorf("NewStore: %w", err)
	}
	preferences, err := prefs.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open prefs: %w", err)
	}
	sealer, err := crypto.NewSealer("bdd-seal-secret")
	if err != nil {
		return fmt.Errorf("NewSealer: %w", err)
	}

	cfg := exchange.DefaultConfig("bdd-client-id")
	cfg.OAuthHost = b.upstream.URL
	cfg.APIHost = b.upstream.URL
	client := exchange.NewClient(cfg, exchange.NewTokenStore(preferences, sealer))

	srvCfg := &server.Config{AdminToken: testAdminToken}
	ts := httptest.NewServer(server.NewRouter(store, client, srvCfg))

	b.ts = ts
	b.store = store
	b.preferences = preferences
	b.client = client
	return nil
}

func (b *bddContext) theStoredPublisherRecordsAre(table *godog.Table) error {
	return b.iReplaceThePublisherRecordsWith(table)
}

// ── When steps ──────────────────────────────────────────────────────

func (b *bddContext) iReplaceThePublisherRecordsWith(table *godog.Table) error {
	var list []map[string]any
	for _, row := range table.Rows[1:] { // skip header
		status, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return fmt.Errorf("status column: %w", err)
		}
		excluded, err := strconv.ParseBool(row.Cells[2].Value)
		if err != nil {
			return fmt.Errorf("excluded column: %w", err)
		}
		list = append(list, map[string]any{
			"publisher_key": row.Cells[0].Value,
			"status":        status,
			"excluded":      excluded,
			"address":       row.Cells[3].Value,
		})
	}
	body, _ := json.Marshal(map[string]any{"publishers": list})
	return b.adminRequest("PUT", "/v1/publishers", body)
}

func (b *bddContext) iGET(path string) error {
	resp, err := http.Get(b.ts.URL + path)
	if err != nil {
		return err
	}
	b.lastBody, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	b.lastStatus = resp.StatusCode
	return nil
}

func (b *bddContext) iPOSTToWithJSON(path string, jsonDoc *godog.DocString) error {
	resp, err := http.Post(b.ts.URL+path, "application/json", strings.NewReader(jsonDoc.Content))
	if err != nil {
		return err
	}
	b.lastBody, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	b.lastStatus = resp.StatusCode
	return nil
}

func (b *bddContext) iPUTWithoutAdminToken(path string) error {
	req, err := http.NewRequest("PUT", b.ts.URL+path, strings.NewReader(`{"publishers":[]}`))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	b.lastBody, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	b.lastStatus = resp.StatusCode
	return nil
}

func (b *bddContext) iConnectWithAuthorizationCode(code string) error {
	// The verifier pairs with the authorization URL, so fetch one first.
	if err := b.iGET("/v1/oauth/url"); err != nil {
		return err
	}
	if b.lastStatus != http.StatusOK {
		return fmt.Errorf("auth URL request: status %d", b.lastStatus)
	}
	body, _ := json.Marshal(map[string]string{"code": code})
	return b.iPOSTToWithJSON("/v1/oauth/exchange", &godog.DocString{Content: string(body)})
}

// ── Then steps ──────────────────────────────────────────────────────

func (b *bddContext) theResponseStatusShouldBe(expected int) error {
	if b.lastStatus != expected {
		return fmt.Errorf("expected status %d, got %d (body: %s)", expected, b.lastStatus, b.lastBody)
	}
	return nil
}

func (b *bddContext) theResponseJSONShouldBe(key, expected string) error {
	var m map[string]interface{}
	if err := json.Unmarshal(b.lastBody, &m); err != nil {
		return fmt.Errorf("parse response JSON: %w", err)
	}
	val, ok := m[key]
	if !ok {
		return fmt.Errorf("key %q not found in response", key)
	}
	if fmt.Sprint(val) != expected {
		return fmt.Errorf("expected %q = %q, got %q", key, expected, val)
	}
	return nil
}

func (b *bddContext) theAuthorizationURLShouldIncludeAPKCEChallenge() error {
	var m struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b.lastBody, &m); err != nil {
		return fmt.Errorf("parse response JSON: %w", err)
	}
	for _, param := range []string{"code_challenge=", "code_challenge_method=S256", "client_id=bdd-client-id"} {
		if !strings.Contains(m.URL, param) {
			return fmt.Errorf("authorization URL missing %q: %s", param, m.URL)
		}
	}
	return nil
}

func (b *bddContext) theStoredAccessTokenShouldBe(expected string) error {
	if got := b.client.Tokens().AccessToken(); got != expected {
		return fmt.Errorf("expected access token %q, got %q", expected, got)
	}
	return nil
}

func (b *bddContext) adminRequest(method, path string, body []byte) error {
	req, err := http.NewRequest(method, b.ts.URL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	b.lastBody, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	b.lastStatus = resp.StatusCode
	return nil
}

// ── Suite runner ────────────────────────────────────────────────────

func TestBDD(t *testing.T) {
	b := &bddContext{}

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				b.reset()
				return ctx, nil
			})

			// Given
			sc.Step(`^the server is running$`, b.theServerIsRunning)
			sc.Step(`^the stored publisher records are:$`, b.theStoredPublisherRecordsAre)

			// When
			sc.Step(`^I replace the publisher records with:$`, b.iReplaceThePublisherRecordsWith)
			sc.Step(`^I GET "([^"]*)"$`, b.iGET)
			sc.Step(`^I POST to "([^"]*)" with JSON:$`, b.iPOSTToWithJSON)
			sc.Step(`^I PUT "([^"]*)" without an admin token$`, b.iPUTWithoutAdminToken)
			sc.Step(`^I connect with authorization code "([^"]*)"$`, b.iConnectWithAuthorizationCode)

			// Then
			sc.Step(`^the response status should be (\d+)$`, b.theResponseStatusShouldBe)
			sc.Step(`^the response JSON "([^"]*)" should be "([^"]*)"$`, b.theResponseJSONShouldBe)
			sc.Step(`^the authorization URL should include a PKCE challenge$`, b.theAuthorizationURLShouldIncludeAPKCEChallenge)
			sc.Step(`^the stored access token should be "([^"]*)"$`, b.theStoredAccessTokenShouldBe)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("BDD tests failed")
	}

	// Final cleanup
	b.reset()
}

func init() {
	// Suppress Gin debug output during BDD tests
	os.Setenv("GIN_MODE", "release")
}
