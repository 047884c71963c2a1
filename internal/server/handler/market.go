package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/exchange"
)

// HandleTickerPrice handles GET /v1/market/price/:pair.
func HandleTickerPrice(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		pair := c.Param("pair")

		done := make(chan string, 1)
		client.GetTickerPrice(pair, func(price string) { done <- price })

		c.JSON(http.StatusOK, gin.H{"symbol": pair, "price": <-done})
	}
}

// HandleTickerVolume handles GET /v1/market/volume/:pair.
func HandleTickerVolume(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		pair := c.Param("pair")

		done := make(chan string, 1)
		client.GetTickerVolume(pair, func(volume string) { done <- volume })

		c.JSON(http.StatusOK, gin.H{"symbol": pair, "volume": <-done})
	}
}
