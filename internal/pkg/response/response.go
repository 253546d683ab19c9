package response

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/worldlore/lorekeeper/internal/pkg/errors"
)

// Upstream writes the uniform envelope used for failed remote calls.
func Upstream(c *gin.Context, err *appErr.UpstreamError) {
	c.JSON(502, gin.H{
		"error":  "upstream failure",
		"status": err.Status,
		"note":   err.Note,
	})
}

func Invalid(c *gin.Context, msg string) {
	c.JSON(400, gin.H{"error": msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(404, gin.H{"error": msg})
}

func Internal(c *gin.Context) {
	c.JSON(500, gin.H{"error": "internal error"})
}
