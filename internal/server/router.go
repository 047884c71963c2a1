package server

import (
	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/exchange"
	"github.com/quaylabs/exchangekit/internal/publisher"
	"github.com/quaylabs/exchangekit/internal/server/handler"
)

// NewRouter creates and configures the Gin router with all routes.
func NewRouter(store *publisher.Store, client *exchange.Client, cfg *Config) *gin.Engine {
	r := gin.Default()

	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	admin := AdminAuth(cfg.AdminToken)

	v1 := r.Group("/v1")
	{
		// OAuth connect flow
		v1.GET("/oauth/url", handler.HandleAuthURL(client))
		v1.POST("/oauth/exchange", handler.HandleExchangeCode(client))
		v1.POST("/oauth/revoke", handler.HandleRevokeToken(client))

		// Account
		v1.GET("/account/balances", handler.HandleBalances(client))
		v1.GET("/account/deposit/:symbol", handler.HandleDepositInfo(client))

		// Public market data
		v1.GET("/market/price/:pair", handler.HandleTickerPrice(client))
		v1.GET("/market/volume/:pair", handler.HandleTickerVolume(client))

		// Convert
		v1.POST("/convert/quote", handler.HandleConvertQuote(client))
		v1.POST("/convert/confirm", handler.HandleConfirmConvert(client))
		v1.GET("/convert/assets", handler.HandleConvertAssets(client))

		// Publisher records (refreshed by the rewards backend)
		v1.PUT("/publishers", admin, handler.HandleReplacePublishers(store))
		v1.GET("/publishers/:key", handler.HandleGetPublisher(store))
	}

	return r
}
