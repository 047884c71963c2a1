package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quaylabs/exchangekit/internal/crypto"
	"github.com/quaylabs/exchangekit/internal/exchange"
	"github.com/quaylabs/exchangekit/internal/prefs"
	"github.com/quaylabs/exchangekit/internal/publisher"
	"github.com/quaylabs/exchangekit/internal/server"
)

const testAdminToken = "test-admin-token-1234567890"

// setupTestServer wires the full facade over in-memory stores and a fake
// upstream exchange served by the given handler.
func setupTestServer(t *testing.T, upstream http.HandlerFunc) (*httptest.Server, *exchange.Client) {
	t.Helper()

	fake := httptest.NewServer(upstream)
	t.Cleanup(fake.Close)

	store, err := publisher.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	preferences, err := prefs.Open(":memory:")
	if err != nil {
		t.Fatalf("prefs.Open: %v", err)
	}
	t.Cleanup(func() { preferences.Close() })

	sealer, err := crypto.NewSealer("integration-test-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	cfg := exchange.DefaultConfig("test-client-id")
	cfg.OAuthHost = fake.URL
	cfg.APIHost = fake.URL
	client := exchange.NewClient(cfg, exchange.NewTokenStore(preferences, sealer))
	t.Cleanup(client.Close)

	srvCfg := &server.Config{AdminToken: testAdminToken}
	ts := httptest.NewServer(server.NewRouter(store, client, srvCfg))
	t.Cleanup(ts.Close)

	return ts, client
}

func adminRequest(method, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	return http.DefaultClient.Do(req)
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /: status %d, want 200", resp.StatusCode)
	}
}

func TestPublisherRoundTrip(t *testing.T) {
	ts, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	body, _ := json.Marshal(map[string]any{
		"publishers": []map[string]any{
			{
				"publisher_key": "ledger.example",
				"status":        2,
				"excluded":      false,
				"address":       "0dcef367-6eb4-4752-8775-8d0345b970f7",
				"banner": map[string]string{
					"publisher_key": "ledger.example",
					"title":         "Ledger Example",
				},
			},
			{"publisher_key": "example.org", "status": 1, "excluded": true},
		},
	})
	resp, err := adminRequest("PUT", ts.URL+"/v1/publishers", body)
	if err != nil {
		t.Fatalf("PUT /v1/publishers: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /v1/publishers: status %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/publishers/ledger.example")
	if err != nil {
		t.Fatalf("GET /v1/publishers/ledger.example: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/publishers/ledger.example: status %d, want 200", resp.StatusCode)
	}

	var info publisher.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode publisher: %v", err)
	}
	if info.PublisherKey != "ledger.example" || info.Status != publisher.StatusVerified {
		t.Fatalf("unexpected publisher record: %+v", info)
	}
	if info.Banner == nil || info.Banner.Title != "Ledger Example" {
		t.Fatalf("banner not round-tripped: %+v", info.Banner)
	}
}

func TestPublisherLookupMissing(t *testing.T) {
	ts, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	resp, err := http.Get(ts.URL + "/v1/publishers/nobody.example")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET missing publisher: status %d, want 404", resp.StatusCode)
	}
}

func TestPublisherReplaceRequiresAdminToken(t *testing.T) {
	ts, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	req, _ := http.NewRequest("PUT", ts.URL+"/v1/publishers", strings.NewReader(`{"publishers":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("PUT without token: status %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest("PUT", ts.URL+"/v1/publishers", strings.NewReader(`{"publishers":[]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("PUT with wrong token: status %d, want 401", resp.StatusCode)
	}
}

func TestOAuthConnectFlow(t *testing.T) {
	ts, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			if r.ParseForm() != nil || r.PostFormValue("code") != "valid-code" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"access_token":"it-access","refresh_token":"it-refresh"}`)
		case "/oauth-api/v1/revoke-token":
			fmt.Fprint(w, `{"status":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// Authorization URL first so the client holds a PKCE verifier.
	resp, err := http.Get(ts.URL + "/v1/oauth/url")
	if err != nil {
		t.Fatalf("GET /v1/oauth/url: %v", err)
	}
	var urlResp struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&urlResp); err != nil {
		t.Fatalf("decode url response: %v", err)
	}
	resp.Body.Close()
	if !strings.Contains(urlResp.URL, "code_challenge=") {
		t.Fatalf("authorization URL missing challenge: %s", urlResp.URL)
	}

	body, _ := json.Marshal(map[string]string{"code": "valid-code"})
	resp, err = http.Post(ts.URL+"/v1/oauth/exchange", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/oauth/exchange: %v", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /v1/oauth/exchange: status %d, body %s", resp.StatusCode, respBody)
	}
	if got := client.Tokens().AccessToken(); got != "it-access" {
		t.Fatalf("access token = %q, want %q", got, "it-access")
	}

	resp, err = http.Post(ts.URL+"/v1/oauth/revoke", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /v1/oauth/revoke: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /v1/oauth/revoke: status %d, want 200", resp.StatusCode)
	}
	if got := client.Tokens().AccessToken(); got != "" {
		t.Fatalf("access token after revoke = %q, want empty", got)
	}
}

func TestOAuthExchangeRejectedCode(t *testing.T) {
	ts, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	body, _ := json.Marshal(map[string]string{"code": "bogus"})
	resp, err := http.Post(ts.URL+"/v1/oauth/exchange", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("POST rejected code: status %d, want 502", resp.StatusCode)
	}
	if got := client.Tokens().AccessToken(); got != "" {
		t.Fatalf("access token = %q, want empty", got)
	}
}

func TestMarketEndpoints(t *testing.T) {
	ts, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			fmt.Fprintf(w, `{"symbol":%q,"price":"42000.55"}`, r.URL.Query().Get("symbol"))
		case "/api/v3/ticker/24hr":
			fmt.Fprintf(w, `{"symbol":%q,"volume":"987.6"}`, r.URL.Query().Get("symbol"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	resp, err := http.Get(ts.URL + "/v1/market/price/BTCUSDT")
	if err != nil {
		t.Fatalf("GET price: %v", err)
	}
	var priceResp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		t.Fatalf("decode price: %v", err)
	}
	resp.Body.Close()
	if priceResp.Price != "42000.55" || priceResp.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected price response: %+v", priceResp)
	}

	resp, err = http.Get(ts.URL + "/v1/market/volume/ETHUSDT")
	if err != nil {
		t.Fatalf("GET volume: %v", err)
	}
	var volResp struct {
		Volume string `json:"volume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&volResp); err != nil {
		t.Fatalf("decode volume: %v", err)
	}
	resp.Body.Close()
	if volResp.Volume != "987.6" {
		t.Fatalf("unexpected volume response: %+v", volResp)
	}
}
