package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

type patrolService interface {
	StartPatrol(ctx context.Context, guard domain.Member) (*domain.PatrolSession, error)
	EndPatrol(ctx context.Context, guardID string) (*domain.PatrolSession, error)
	ActiveSession(guardID string) (*domain.PatrolSession, bool)
	RecentSessions() []domain.PatrolSession
}

type PatrolHandler struct {
	patrolSvc patrolService
}

func NewPatrolHandler(patrolSvc patrolService) *PatrolHandler {
	return &PatrolHandler{patrolSvc: patrolSvc}
}

func (h *PatrolHandler) Register(r *gin.RouterGroup) {
	r.POST("/patrol/start", h.StartPatrol)
	r.POST("/patrol/end", h.EndPatrol)
	r.GET("/patrol/active", h.ActiveSession)
	r.GET("/patrol/recent", h.RecentSessions)
}

func (h *PatrolHandler) StartPatrol(c *gin.Context) {
	guard, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	session, err := h.patrolSvc.StartPatrol(c.Request.Context(), guard)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, domain.ErrCommunityRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start patrol"})
	}
}

func (h *PatrolHandler) EndPatrol(c *gin.Context) {
	guard, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	session, err := h.patrolSvc.EndPatrol(c.Request.Context(), guard.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, domain.ErrNoActivePatrol):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end patrol"})
	}
}

func (h *PatrolHandler) ActiveSession(c *gin.Context) {
	guard, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	session, ok := h.patrolSvc.ActiveSession(guard.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active patrol"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *PatrolHandler) RecentSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.patrolSvc.RecentSessions())
}
