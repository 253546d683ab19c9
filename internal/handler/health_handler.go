package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	documentMirrors []string
	graphqlGroups   []string
}

func NewHealthHandler(documentMirrors, graphqlGroups []string) *HealthHandler {
	return &HealthHandler{documentMirrors: documentMirrors, graphqlGroups: graphqlGroups}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
		"configuredEndpoints": gin.H{
			"documentHost":  h.documentMirrors,
			"graphqlGroups": h.graphqlGroups,
		},
	})
}
