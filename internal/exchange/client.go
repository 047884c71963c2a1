package exchange

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quaylabs/exchangekit/internal/logx"
	"golang.org/x/oauth2"
)

// Client talks to the exchange's OAuth and public API hosts on behalf of the
// widget. Every operation is asynchronous: it dispatches one HTTP request,
// tracked in an owned set of in-flight handles, and completes through a
// callback invoked exactly once with parsed fields or zero defaults.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens *TokenStore

	mu        sync.Mutex
	nextID    uint64
	inflight  map[uint64]context.CancelFunc
	verifier  string
	challenge string
	authCode  string
}

// NewClient builds a client over the given config and token store.
func NewClient(cfg Config, tokens *TokenStore) *Client {
	return &Client{
		cfg: cfg,
		// No cookie jar: requests neither send nor store cookies.
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   tokens,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Tokens exposes the underlying token store.
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

// Close cancels all in-flight requests. Their callbacks still fire, with
// failure defaults.
func (c *Client) Close() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.inflight))
	for _, cancel := range c.inflight {
		cancels = append(cancels, cancel)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// SetAuthCode stores the one-time authorization code received on the OAuth
// redirect, to be consumed by the next ExchangeCode call.
func (c *Client) SetAuthCode(code string) {
	c.mu.Lock()
	c.authCode = code
	c.mu.Unlock()
}

// AuthCodeURL generates a fresh PKCE verifier/challenge pair and assembles
// the authorization URL for it. The pair is retained only for the token
// exchange that follows.
func (c *Client) AuthCodeURL() (string, error) {
	verifier, err := newCodeVerifier()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.verifier = verifier
	c.challenge = codeChallenge(verifier)
	c.mu.Unlock()

	conf := &oauth2.Config{
		ClientID:    c.cfg.ClientID,
		RedirectURL: c.cfg.RedirectURI,
		Scopes:      []string{c.cfg.Scope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.cfg.oauthURL(pathAuthorize),
			TokenURL:  c.cfg.oauthURL(pathAccessToken),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return conf.AuthCodeURL("", oauth2.S256ChallengeOption(verifier)), nil
}

// clearPKCE drops the verifier/challenge pair.
func (c *Client) clearPKCE() {
	c.mu.Lock()
	c.verifier = ""
	c.challenge = ""
	c.mu.Unlock()
}

// response carries a completed request back to its completion handler.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status <= 299
}

// do dispatches one request. postData, when non-empty, is sent as an
// application/x-www-form-urlencoded body. Caching is bypassed and cookies are
// never sent or stored. A transport-level failure is retried once (network
// change semantics); HTTP error statuses are not retried. onDone is invoked
// exactly once, on the request's goroutine, after the handle is released.
func (c *Client) do(method, rawURL, postData string, onDone func(response)) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.inflight[id] = cancel
	c.mu.Unlock()

	go func() {
		resp := c.roundTrip(ctx, method, rawURL, postData)

		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		cancel()

		onDone(resp)
	}()
}

func (c *Client) roundTrip(ctx context.Context, method, rawURL, postData string) response {
	resp, err := c.send(ctx, method, rawURL, postData)
	if err != nil {
		var netErr net.Error
		retriable := errors.As(err, &netErr) && ctx.Err() == nil
		if !retriable {
			logx.Debugf("exchange request failed: %s %s: %v", method, rawURL, err)
			return response{status: -1}
		}
		logx.Debugf("exchange request retrying after network error: %s %s: %v", method, rawURL, err)
		if resp, err = c.send(ctx, method, rawURL, postData); err != nil {
			logx.Debugf("exchange request failed after retry: %s %s: %v", method, rawURL, err)
			return response{status: -1}
		}
	}
	return resp
}

func (c *Client) send(ctx context.Context, method, rawURL, postData string) (response, error) {
	var body io.Reader
	if postData != "" {
		body = strings.NewReader(postData)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	if postData != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return response{}, err
	}
	return response{status: res.StatusCode, body: payload}, nil
}
