package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/exchange"
)

type convertQuoteRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// HandleConvertQuote handles POST /v1/convert/quote.
func HandleConvertQuote(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req convertQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		type result struct {
			id, price, fee, total string
		}
		done := make(chan result, 1)
		client.GetConvertQuote(req.From, req.To, req.Amount, func(id, price, fee, total string) {
			done <- result{id, price, fee, total}
		})

		r := <-done
		if r.id == "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch quote"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"quote_id": r.id,
			"price":    r.price,
			"fee":      r.fee,
			"total":    r.total,
		})
	}
}

type confirmConvertRequest struct {
	QuoteID string `json:"quote_id" binding:"required"`
}

// HandleConfirmConvert handles POST /v1/convert/confirm.
func HandleConfirmConvert(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req confirmConvertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		type result struct {
			ok      bool
			message string
		}
		done := make(chan result, 1)
		client.ConfirmConvert(req.QuoteID, func(ok bool, message string) {
			done <- result{ok, message}
		})

		r := <-done
		if !r.ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": "conversion failed", "message": r.message})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "converted"})
	}
}

// HandleConvertAssets handles GET /v1/convert/assets.
func HandleConvertAssets(client *exchange.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := make(chan map[string][]string, 1)
		client.GetConvertAssets(func(assets map[string][]string) { done <- assets })

		c.JSON(http.StatusOK, gin.H{"assets": <-done})
	}
}
