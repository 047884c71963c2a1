package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/exchange"
)

// HandleAuthURL handles GET /v1/oauth/url.
func HandleAuthURL(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authURL, err := client.AuthCodeURL()
		if err != nil {
			log.Printf("AuthCodeURL error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build authorization URL"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": authURL})
	}
}

type exchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// HandleExchangeCode handles POST /v1/oauth/exchange.
func HandleExchangeCode(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req exchangeCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		client.SetAuthCode(req.Code)

		done := make(chan bool, 1)
		client.ExchangeCode(func(valid bool) { done <- valid })

		if !<-done {
			c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "connected"})
	}
}

// HandleRevokeToken handles POST /v1/oauth/revoke.
func HandleRevokeToken(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := make(chan bool, 1)
		client.RevokeToken(func(ok bool) { done <- ok })

		if !<-done {
			c.JSON(http.StatusBadGateway, gin.H{"error": "token revocation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
	}
}
