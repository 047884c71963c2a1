package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/exchange"
)

// HandleBalances handles GET /v1/account/balances.
func HandleBalances(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		type result struct {
			balances map[string]string
			ok       bool
		}
		done := make(chan result, 1)
		client.GetAccountBalances(func(balances map[string]string, ok bool) {
			done <- result{balances, ok}
		})

		r := <-done
		if !r.ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch balances"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"balances": r.balances})
	}
}

// HandleDepositInfo handles GET /v1/account/deposit/:symbol.
func HandleDepositInfo(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")

		type result struct {
			address, tag, url string
			ok                bool
		}
		done := make(chan result, 1)
		client.GetDepositInfo(symbol, func(address, tag, url string, ok bool) {
			done <- result{address, tag, url, ok}
		})

		r := <-done
		if !r.ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch deposit info"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"address": r.address,
			"tag":     r.tag,
			"url":     r.url,
		})
	}
}
