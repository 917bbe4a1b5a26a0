package assignment

import (
	"net/http"
	"time"

	"ticketcrm_backend/internal/attribution"
	"ticketcrm_backend/internal/leads"
	"ticketcrm_backend/platform/httpkit"
	"ticketcrm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const rfc3339Millis = "2006-01-02T15:04:05.000Z"

// Handler serves the operator-facing assignment rule endpoints.
type Handler struct {
	engine *Engine
	repo   *Repository
	val    *validator.Validator
}

// NewHandler creates a new assignment handler.
func NewHandler(engine *Engine, repo *Repository, val *validator.Validator) *Handler {
	return &Handler{engine: engine, repo: repo, val: val}
}

// RuleResponse is the operator view of one rule.
type RuleResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Priority    int         `json:"priority"`
	Active      bool        `json:"active"`
	Conditions  []Condition `json:"conditions"`
	Assignees   []Assignee  `json:"assignees"`
	Strategy    string      `json:"strategy"`
	UsageCount  int         `json:"usageCount"`
	LastUsedAt  *string     `json:"lastUsedAt,omitempty"`
	CreatedBy   string      `json:"createdBy,omitempty"`
}

// HandleListRules lists every rule regardless of active state.
// GET /api/v1/admin/assignment-rules
func (h *Handler) HandleListRules(c *gin.Context) {
	rules, err := h.repo.ListRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toRuleResponses(rules))
}

// HandleListActiveRules lists the active rules in evaluation order.
// GET /api/v1/admin/assignment-rules/active
func (h *Handler) HandleListActiveRules(c *gin.Context) {
	rules, err := h.repo.GetActiveRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toRuleResponses(rules))
}

// TestRuleRequest carries the hypothetical lead attributes for a dry run.
type TestRuleRequest struct {
	Channel       string `json:"channel" validate:"required,max=50"`
	Category      string `json:"category" validate:"max=200"`
	Event         string `json:"event" validate:"max=200"`
	EventInterest string `json:"eventInterest" validate:"max=200"`
	City          string `json:"city" validate:"max=100"`
	Country       string `json:"country" validate:"max=100"`
	PartySize     string `json:"partySize" validate:"max=10"`
	Source        string `json:"source" validate:"max=50"`
}

// TestRuleResponse reports which rule would claim the hypothetical lead.
type TestRuleResponse struct {
	Matched     bool       `json:"matched"`
	RuleID      *uuid.UUID `json:"ruleId,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Reason      string     `json:"reason"`
	EvaluatedAt string     `json:"evaluatedAt"`
}

// HandleTestRules dry-runs the rule set against a hypothetical lead. No
// cursor or usage counter moves, so operators can probe freely.
// POST /api/v1/admin/assignment-rules/test
func (h *Handler) HandleTestRules(c *gin.Context) {
	var req TestRuleRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	category := req.Category
	lead := leads.Lead{
		Channel:       attribution.Channel(req.Channel),
		EventName:     req.Event,
		EventInterest: req.EventInterest,
		City:          req.City,
		Country:       req.Country,
		PartySize:     req.PartySize,
		Source:        req.Source,
	}
	if category != "" {
		lead.CategoryName = &category
	}

	decision, err := h.engine.Preview(c.Request.Context(), lead)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, TestRuleResponse{
		Matched:     decision.RuleID != nil,
		RuleID:      decision.RuleID,
		AssignedTo:  decision.AssignedTo,
		Reason:      decision.Reason,
		EvaluatedAt: decision.EvaluatedAt.Format(rfc3339Millis),
	})
}

// StatsResponse summarizes rule counts and usage.
type StatsResponse struct {
	TotalRules    int     `json:"totalRules"`
	ActiveRules   int     `json:"activeRules"`
	InactiveRules int     `json:"inactiveRules"`
	TotalUsage    int     `json:"totalUsage"`
	MostUsedRule  *string `json:"mostUsedRule,omitempty"`
}

// HandleStats reports rule set statistics.
// GET /api/v1/admin/assignment-rules/stats
func (h *Handler) HandleStats(c *gin.Context) {
	stats, err := h.repo.GetStats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, StatsResponse{
		TotalRules:    stats.TotalRules,
		ActiveRules:   stats.ActiveRules,
		InactiveRules: stats.InactiveRules,
		TotalUsage:    stats.TotalUsage,
		MostUsedRule:  stats.MostUsedRule,
	})
}

func toRuleResponses(rules []Rule) []RuleResponse {
	result := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		result[i] = toRuleResponse(rule)
	}
	return result
}

func toRuleResponse(rule Rule) RuleResponse {
	resp := RuleResponse{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Priority:    rule.Priority,
		Active:      rule.Active,
		Conditions:  rule.Conditions,
		Assignees:   rule.Assignees,
		Strategy:    rule.Strategy,
		UsageCount:  rule.UsageCount,
		CreatedBy:   rule.CreatedBy,
	}
	if resp.Conditions == nil {
		resp.Conditions = []Condition{}
	}
	if resp.Assignees == nil {
		resp.Assignees = []Assignee{}
	}
	if rule.LastUsedAt != nil {
		formatted := rule.LastUsedAt.UTC().Format(time.RFC3339)
		resp.LastUsedAt = &formatted
	}
	return resp
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}
