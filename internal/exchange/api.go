package exchange

import (
	"net/http"
	"net/url"

	"github.com/quaylabs/exchangekit/internal/logx"
	"github.com/quaylabs/exchangekit/internal/prefs"
)

// ExchangeCode trades the pending one-time authorization code (see
// SetAuthCode) for a token pair. The code is cleared as soon as it is read
// into the request, whatever the outcome. On a 2xx response the parsed pair
// is stored; onDone reports whether a non-empty access token resulted.
func (c *Client) ExchangeCode(onDone func(valid bool)) {
	c.mu.Lock()
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", c.authCode)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("code_verifier", c.verifier)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	c.authCode = ""
	c.mu.Unlock()

	c.do(http.MethodPost, c.cfg.oauthURL(pathAccessToken), form.Encode(), func(r response) {
		var access string
		if r.ok() {
			var refresh string
			access, refresh = parseTokens(r.body)
			if access != "" {
				if err := c.tokens.Save(access, refresh); err != nil {
					logx.Errorf("could not store exchange tokens: %v", err)
				}
			}
		}
		onDone(access != "")
	})
}

// GetAccountBalances fetches per-asset free balances. On failure the callback
// gets an empty map and ok=false.
func (c *Client) GetAccountBalances(onDone func(balances map[string]string, ok bool)) {
	u := c.cfg.oauthURL(pathBalances) + "?" + url.Values{
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodGet, u, "", func(r response) {
		balances := map[string]string{}
		if r.ok() {
			if err := parseBalances(r.body, balances); err != nil {
				logx.Debugf("could not parse balances: %v", err)
			}
		}
		onDone(balances, r.ok())
	})
}

// GetTickerPrice fetches the last price for a symbol pair. Default: "0.00".
func (c *Client) GetTickerPrice(symbolPair string, onDone func(price string)) {
	u := c.cfg.apiURL(pathTickerPrice) + "?" + url.Values{"symbol": {symbolPair}}.Encode()
	c.do(http.MethodGet, u, "", func(r response) {
		price := "0.00"
		if r.ok() {
			if p, err := parseTickerPrice(r.body); err == nil {
				price = p
			}
		}
		onDone(price)
	})
}

// GetTickerVolume fetches the 24h volume for a symbol pair. Default: "0".
func (c *Client) GetTickerVolume(symbolPair string, onDone func(volume string)) {
	u := c.cfg.apiURL(pathTickerVolume) + "?" + url.Values{"symbol": {symbolPair}}.Encode()
	c.do(http.MethodGet, u, "", func(r response) {
		volume := "0"
		if r.ok() {
			if v, err := parseTickerVolume(r.body); err == nil {
				volume = v
			}
		}
		onDone(volume)
	})
}

// GetConvertQuote requests a conversion quote. All fields default to empty on
// failure.
func (c *Client) GetConvertQuote(from, to, amount string, onDone func(id, price, fee, total string)) {
	u := c.cfg.oauthURL(pathConvertQuote) + "?" + url.Values{
		"fromAsset":    {from},
		"toAsset":      {to},
		"baseAsset":    {from},
		"amount":       {amount},
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodPost, u, "", func(r response) {
		var q quote
		if r.ok() {
			if err := parseQuote(r.body, &q); err != nil {
				logx.Debugf("could not parse convert quote: %v", err)
			}
		}
		onDone(q.ID, q.Price, q.Fee, q.Total)
	})
}

// GetDepositInfo fetches the deposit address, tag and explorer URL for a
// symbol.
func (c *Client) GetDepositInfo(symbol string, onDone func(address, tag, depositURL string, ok bool)) {
	u := c.cfg.oauthURL(pathDepositInfo) + "?" + url.Values{
		"coin":         {symbol},
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodGet, u, "", func(r response) {
		var d deposit
		if r.ok() {
			if err := parseDepositInfo(r.body, &d); err != nil {
				logx.Debugf("could not parse deposit info: %v", err)
			}
		}
		onDone(d.Address, d.Tag, d.URL, r.ok())
	})
}

// ConfirmConvert executes a previously quoted conversion.
func (c *Client) ConfirmConvert(quoteID string, onDone func(ok bool, message string)) {
	u := c.cfg.oauthURL(pathConvertConfirm) + "?" + url.Values{
		"quoteId":      {quoteID},
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodPost, u, "", func(r response) {
		var ok bool
		var message string
		if r.ok() {
			ok, message = parseConfirmStatus(r.body)
		}
		onDone(ok, message)
	})
}

// GetConvertAssets fetches the assets each held asset can convert into.
func (c *Client) GetConvertAssets(onDone func(assets map[string][]string)) {
	u := c.cfg.oauthURL(pathConvertAssets) + "?" + url.Values{
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodGet, u, "", func(r response) {
		assets := map[string][]string{}
		if r.ok() {
			if err := parseConvertAssets(r.body, assets); err != nil {
				logx.Debugf("could not parse convert assets: %v", err)
			}
		}
		onDone(assets)
	})
}

// RevokeToken revokes the current access token. On success the PKCE pair is
// dropped and empty tokens are persisted in place of the revoked pair.
func (c *Client) RevokeToken(onDone func(ok bool)) {
	u := c.cfg.oauthURL(pathRevokeToken) + "?" + url.Values{
		"access_token": {c.tokens.AccessToken()},
	}.Encode()
	c.do(http.MethodPost, u, "", func(r response) {
		ok := false
		if r.ok() {
			ok = parseRevokeStatus(r.body)
		}
		if ok {
			c.clearPKCE()
			if err := c.tokens.Clear(); err != nil {
				logx.Errorf("could not clear exchange tokens: %v", err)
			}
		}
		onDone(ok)
	})
}

// ServingTLD returns the exchange top-level domain for the stored country
// preference: "us" for United States profiles, "com" otherwise.
func ServingTLD(p *prefs.Store) string {
	code, err := p.Get(prefs.KeyCountryCode)
	if err != nil {
		logx.Warnf("could not read country preference: %v", err)
		return "com"
	}
	if code == "US" {
		return "us"
	}
	return "com"
}
