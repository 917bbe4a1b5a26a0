// This file defines the module that encapsulates assignment setup and
// operator route registration.
package assignment

import (
	apphttp "ticketcrm_backend/internal/http"
	"ticketcrm_backend/platform/logger"
	"ticketcrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the assignment bounded context module implementing http.Module.
type Module struct {
	engine  *Engine
	handler *Handler
}

// NewModule creates and initializes the assignment module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	cursor := NewRedisCursorStore(redisClient)
	engine := NewEngine(repo, cursor, log)
	handler := NewHandler(engine, repo, val)

	return &Module{
		engine:  engine,
		handler: handler,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assignment"
}

// Engine exposes the rule engine for the ingestion pipeline.
func (m *Module) Engine() *Engine {
	return m.engine
}

// RegisterRoutes mounts the operator endpoints on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rules := ctx.Admin.Group("/assignment-rules")
	rules.GET("", m.handler.HandleListRules)
	rules.GET("/active", m.handler.HandleListActiveRules)
	rules.POST("/test", m.handler.HandleTestRules)
	rules.GET("/stats", m.handler.HandleStats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
