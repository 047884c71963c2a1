package exchange

// Endpoint paths on the authentication host.
const (
	pathAccessToken    = "/oauth/token"
	pathAuthorize      = "/en/oauth/authorize"
	pathBalances       = "/oauth-api/v1/balance"
	pathConvertQuote   = "/oauth-api/v1/get-quote"
	pathConvertConfirm = "/oauth-api/v1/convert"
	pathConvertAssets  = "/oauth-api/v1/convert-asset-info"
	pathDepositInfo    = "/oauth-api/v1/get-charge-address"
	pathRevokeToken    = "/oauth-api/v1/revoke-token"
)

// Endpoint paths on the public API host.
const (
	pathTickerPrice  = "/api/v3/ticker/price"
	pathTickerVolume = "/api/v3/ticker/24hr"
)

// Config is the immutable client configuration: exchange hosts, OAuth client
// identity and requested scopes. Tests substitute the hosts with an
// httptest server.
type Config struct {
	ClientID    string
	OAuthHost   string
	APIHost     string
	RedirectURI string
	Scope       string
}

// DefaultConfig returns the production exchange endpoints for clientID.
func DefaultConfig(clientID string) Config {
	return Config{
		ClientID:    clientID,
		OAuthHost:   "https://accounts.binance.com",
		APIHost:     "https://api.binance.com",
		RedirectURI: "com.quaylabs.exchangekit://authorization",
		Scope:       "user:email,user:address,asset:balance,asset:ocbs",
	}
}

func (c Config) oauthURL(path string) string {
	return c.OAuthHost + path
}

func (c Config) apiURL(path string) string {
	return c.APIHost + path
}
