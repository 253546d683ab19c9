package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/worldlore/lorekeeper/internal/middleware"
)

type RouterDeps struct {
	Gateway *GatewayHandler
	GraphQL *GraphQLHandler
	Lore    *LoreHandler
	Health  *HealthHandler

	// GraphQLWindow throttles the passthrough; zero disables it.
	GraphQLWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Health.Health)

	api.GET("/canonical-document", deps.Gateway.CanonicalDocument)
	api.GET("/proposals", deps.Gateway.ListProposals)
	api.GET("/proposals/:number/files", deps.Gateway.ProposalFiles)
	api.GET("/raw-content", deps.Gateway.RawContent)

	gql := api.Group("")
	gql.Use(middleware.RateLimit(deps.GraphQLWindow))
	gql.POST("/graphql/:group", deps.GraphQL.Forward)

	api.GET("/lore/index", deps.Lore.Index)
	api.POST("/lore/refresh", deps.Lore.Refresh)
	api.GET("/lore/search", deps.Lore.Search)
	api.GET("/lore/sections/:id", deps.Lore.Section)
	api.GET("/lore/sections/:id/related", deps.Lore.Related)
}
