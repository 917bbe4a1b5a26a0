// This file defines the module that encapsulates webhook setup and route
// registration.
package webhook

import (
	"ticketcrm_backend/internal/events"
	apphttp "ticketcrm_backend/internal/http"
	"ticketcrm_backend/platform/config"
	"ticketcrm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the webhook module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, matcher InventoryMatcher, engine AssignmentEngine, leadRepo LeadStore, bus events.Bus, cfg config.MetaWebhookConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, matcher, engine, leadRepo, bus, log)
	handler := NewHandler(service, cfg, log)

	return &Module{handler: handler}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the Meta webhook endpoints. Both are public: the
// GET handshake is token-checked, the POST delivery is signature-checked.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhooks")
	group.GET("/leads", m.handler.HandleVerification)
	group.POST("/leads", m.handler.HandleLeadEvent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
