package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/worldlore/lorekeeper/internal/graphql"
	"github.com/worldlore/lorekeeper/internal/pkg/response"
)

// MirrorHeader names the mirror that answered a forwarded request.
const MirrorHeader = "X-Lore-Mirror"

type GraphQLHandler struct {
	forwarder *graphql.Forwarder
}

func NewGraphQLHandler(f *graphql.Forwarder) *GraphQLHandler {
	return &GraphQLHandler{forwarder: f}
}

// Forward relays the request body to the first healthy mirror of the
// named group and echoes that mirror's status and body verbatim.
func (h *GraphQLHandler) Forward(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Invalid(c, "unreadable request body")
		return
	}
	result, err := h.forwarder.Forward(c.Request.Context(), c.Param("group"), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header(MirrorHeader, result.Mirror)
	c.Data(result.Status, "application/json; charset=utf-8", result.Body)
}
