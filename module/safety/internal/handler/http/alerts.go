package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

type alertService interface {
	CreateAlert(ctx context.Context, sender domain.Member, alertType domain.AlertType, message string, priority int) (*domain.Alert, error)
	ResolveAlert(ctx context.Context, callerID, alertID string) error
	Alerts() []domain.Alert
	ActiveAlerts() []domain.Alert
}

type createAlertRequest struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

type AlertHandler struct {
	alertSvc alertService
}

func NewAlertHandler(alertSvc alertService) *AlertHandler {
	return &AlertHandler{alertSvc: alertSvc}
}

func (h *AlertHandler) Register(r *gin.RouterGroup) {
	r.POST("/alerts", h.CreateAlert)
	r.POST("/alerts/:alert_id/resolve", h.ResolveAlert)
	r.GET("/alerts", h.ListAlerts)
	r.GET("/alerts/active", h.ListActiveAlerts)
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	sender, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alert, err := h.alertSvc.CreateAlert(c.Request.Context(), sender, domain.AlertType(req.Type), req.Message, req.Priority)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, alert)
	case errors.Is(err, domain.ErrCommunityRequired),
		errors.Is(err, domain.ErrLocationRequired),
		errors.Is(err, domain.ErrInvalidAlert):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
	}
}

func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	caller, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	if err := h.alertSvc.ResolveAlert(c.Request.Context(), caller.ID, c.Param("alert_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alertSvc.Alerts())
}

func (h *AlertHandler) ListActiveAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alertSvc.ActiveAlerts())
}
