package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"npcforge/internal/character"
	"npcforge/internal/chat"
	"npcforge/internal/discovery"
	"npcforge/internal/normalize"
	apperrors "npcforge/pkg/errors"
)

// newRouter wires the HTTP API over the store, the discovery engine and
// the chat service
func newRouter(log *zap.Logger, store *character.Store, engine *discovery.Engine, chatSvc *chat.Service) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "characters": store.Len()})
	})

	api := router.Group("/api")
	{
		// Register (or replace) a character
		api.POST("/characters", func(c *gin.Context) {
			var raw map[string]interface{}
			if err := c.ShouldBindJSON(&raw); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			name, _ := raw["name"].(string)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
				return
			}

			created, err := store.Create(name, normalize.Payload(raw))
			if err != nil {
				log.Error("Failed to register character", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register character"})
				return
			}

			c.JSON(http.StatusCreated, created)
		})

		// List characters
		api.GET("/characters", func(c *gin.Context) {
			c.JSON(http.StatusOK, store.Snapshot())
		})

		// Fetch one character by id or name
		api.GET("/characters/:ref", func(c *gin.Context) {
			found, err := store.Get(c.Param("ref"))
			if err != nil {
				respondStoreError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, found)
		})

		// Shallow metadata update
		api.PUT("/characters/:ref", func(c *gin.Context) {
			var raw map[string]interface{}
			if err := c.ShouldBindJSON(&raw); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			updated, err := store.UpdateMetadata(c.Param("ref"), normalize.PartialPayload(raw))
			if err != nil {
				respondStoreError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, updated)
		})

		// Remove a character
		api.DELETE("/characters/:ref", func(c *gin.Context) {
			if err := store.Remove(c.Param("ref")); err != nil {
				respondStoreError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "removed"})
		})

		// Chat with a character
		api.POST("/characters/:ref/chat", func(c *gin.Context) {
			var req struct {
				Message string `json:"message" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result, err := chatSvc.RunTurn(c.Request.Context(), c.Param("ref"), req.Message)
			if err != nil {
				if apperrors.IsNotFound(err) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
					return
				}
				log.Error("Failed to run turn", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Pairwise relationship lookup
		api.GET("/relationships", func(c *gin.Context) {
			a := c.Query("a")
			b := c.Query("b")
			if a == "" || b == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "a and b query parameters are required"})
				return
			}
			c.JSON(http.StatusOK, engine.RelationshipBetween(a, b))
		})

		// Full relationship network for one character
		api.GET("/characters/:ref/network", func(c *gin.Context) {
			report, err := engine.Network(c.Param("ref"))
			if err != nil {
				respondStoreError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, report)
		})

		// Population-wide discovery
		api.GET("/relationships/discover", func(c *gin.Context) {
			c.JSON(http.StatusOK, engine.DiscoverAll())
		})
	}

	return router
}

func respondStoreError(c *gin.Context, log *zap.Logger, err error) {
	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		return
	}
	log.Error("Store operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
