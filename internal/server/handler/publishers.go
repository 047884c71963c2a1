package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quaylabs/exchangekit/internal/publisher"
)

type replacePublishersRequest struct {
	Publishers []*publisher.Info `json:"publishers"`
}

// HandleReplacePublishers handles PUT /v1/publishers. The incoming list
// replaces every stored record in a single transaction.
func HandleReplacePublishers(store *publisher.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req replacePublishersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		done := make(chan error, 1)
		store.ReplaceAll(req.Publishers, func(err error) { done <- err })

		if err := <-done; err != nil {
			log.Printf("ReplaceAll error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replace publisher records"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "replaced", "count": len(req.Publishers)})
	}
}

// HandleGetPublisher handles GET /v1/publishers/:key.
func HandleGetPublisher(store *publisher.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")

		done := make(chan *publisher.Info, 1)
		store.GetByKey(key, func(info *publisher.Info) { done <- info })

		info := <-done
		if info == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "publisher not found"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
