package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"ticketcrm_backend/platform/config"
	"ticketcrm_backend/platform/httpkit"
	"ticketcrm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// ackBody is the acknowledgment Meta expects on the webhook endpoint.
const ackBody = "EVENT_RECEIVED"

// maxPayloadBytes caps the inbound payload size. Real leadgen envelopes
// are a few KB.
const maxPayloadBytes = 1 << 20

// Handler handles the Meta webhook HTTP surface.
type Handler struct {
	service *Service
	cfg     config.MetaWebhookConfig
	log     *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, cfg config.MetaWebhookConfig, log *logger.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, log: log}
}

// HandleVerification answers Meta's subscription handshake.
// GET /api/v1/webhooks/leads
func (h *Handler) HandleVerification(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if !VerifyChallenge(h.cfg.GetMetaVerifyToken(), mode, token) {
		h.log.WebhookRejected("verify token mismatch", c.ClientIP())
		c.Status(http.StatusForbidden)
		return
	}

	c.String(http.StatusOK, challenge)
}

// HandleLeadEvent ingests a signed leadgen delivery. Only a bad signature
// (401) or a persistence failure (500) produce a non-2xx response; every
// other condition is acknowledged so the platform does not retry-storm.
// POST /api/v1/webhooks/leads
func (h *Handler) HandleLeadEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unable to read request body", nil)
		return
	}

	if err := VerifySignature(h.cfg.GetMetaAppSecret(), body, c.GetHeader(SignatureHeader)); err != nil {
		h.log.WebhookRejected("invalid signature", c.ClientIP())
		httpkit.Error(c, http.StatusUnauthorized, "invalid signature", nil)
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Signed but unparseable. Retrying will not help, so acknowledge
		// and leave the evidence in the logs.
		h.log.Warn("unparseable webhook payload, acknowledging", "error", err)
		c.String(http.StatusOK, ackBody)
		return
	}

	// Processing must survive the caller disconnecting mid-request;
	// Meta's delivery timeout is shorter than a slow pipeline run.
	ctx := context.WithoutCancel(c.Request.Context())

	if err := h.service.ProcessEnvelope(ctx, envelope); err != nil {
		h.log.Error("webhook event processing failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "event processing failed", nil)
		return
	}

	c.String(http.StatusOK, ackBody)
}
