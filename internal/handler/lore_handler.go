package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/worldlore/lorekeeper/internal/lore"
	"github.com/worldlore/lorekeeper/internal/markdown"
	"github.com/worldlore/lorekeeper/internal/model"
	"github.com/worldlore/lorekeeper/internal/service"
)

// LoreHandler serves the merged lore index built by the aggregation
// service.
type LoreHandler struct {
	lore *service.LoreService
}

func NewLoreHandler(svc *service.LoreService) *LoreHandler {
	return &LoreHandler{lore: svc}
}

func (h *LoreHandler) Index(c *gin.Context) {
	idx, err := h.lore.Ensure(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(200, indexPayload(idx))
}

func (h *LoreHandler) Refresh(c *gin.Context) {
	idx, err := h.lore.Refresh(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(200, gin.H{"sections": idx.Len()})
}

func (h *LoreHandler) Search(c *gin.Context) {
	idx, err := h.lore.Search(c.Request.Context(), c.Query("q"), c.Query("tag"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(200, indexPayload(idx))
}

func (h *LoreHandler) Section(c *gin.Context) {
	section, err := h.lore.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if c.Query("format") != "html" {
		c.JSON(200, section)
		return
	}

	rendered := make([]string, 0, len(section.Chunks))
	for _, chunk := range section.Chunks {
		html, err := markdown.RenderHTML(chunk)
		if err != nil {
			handleError(c, err)
			return
		}
		rendered = append(rendered, html)
	}
	c.JSON(200, gin.H{"section": section, "html_chunks": rendered})
}

func (h *LoreHandler) Related(c *gin.Context) {
	related, err := h.lore.Related(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if related == nil {
		related = []model.RelatedSection{}
	}
	c.JSON(200, related)
}

// indexPayload preserves key order, which gin's JSON encoding of a
// plain map would not.
func indexPayload(idx *lore.Index) gin.H {
	return gin.H{
		"keys":     idx.Keys(),
		"sections": idx.Sections(),
	}
}
