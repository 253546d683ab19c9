package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/worldlore/lorekeeper/internal/gateway"
	"github.com/worldlore/lorekeeper/internal/pkg/response"
)

// GatewayHandler exposes the upstream gateway operations to the
// presentation layer.
type GatewayHandler struct {
	gateway *gateway.Gateway
}

func NewGatewayHandler(gw *gateway.Gateway) *GatewayHandler {
	return &GatewayHandler{gateway: gw}
}

func (h *GatewayHandler) CanonicalDocument(c *gin.Context) {
	text, err := h.gateway.GetCanonicalDocument(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, "text/markdown; charset=utf-8", []byte(text))
}

func (h *GatewayHandler) ListProposals(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}
	page, err := h.gateway.ListOpenProposals(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(200, page)
}

func (h *GatewayHandler) ProposalFiles(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.Invalid(c, "proposal number must be an integer")
		return
	}
	files, err := h.gateway.ListProposalFiles(c.Request.Context(), number)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(200, files)
}

func (h *GatewayHandler) RawContent(c *gin.Context) {
	text, err := h.gateway.GetRawContent(c.Request.Context(), c.Query("url"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(200, "text/plain; charset=utf-8", []byte(text))
}

// intQuery parses an optional integer query parameter, writing a 400
// response and returning ok=false when the value is unparseable.
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	value := c.Query(name)
	if value == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		response.Invalid(c, name+" must be an integer")
		return 0, false
	}
	return parsed, true
}
