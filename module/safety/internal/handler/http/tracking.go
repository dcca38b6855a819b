package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

type trackerService interface {
	StartTracking(ctx context.Context, memberID string)
	StopTracking(memberID string)
	CurrentLocation(memberID string) (domain.LocationSample, bool)
	History(memberID string) []domain.LocationSample
	ClearHistory(ctx context.Context, memberID string)
}

type geofenceService interface {
	SetGeofence(memberID string, fence *domain.Geofence)
	Geofence(memberID string) *domain.Geofence
	CheckStatus(memberID string, sample domain.LocationSample) domain.GeofenceStatus
}

type setGeofenceRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	Name         string  `json:"name"`
}

type TrackingHandler struct {
	trackerSvc  trackerService
	geofenceSvc geofenceService
}

func NewTrackingHandler(trackerSvc trackerService, geofenceSvc geofenceService) *TrackingHandler {
	return &TrackingHandler{trackerSvc: trackerSvc, geofenceSvc: geofenceSvc}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.POST("/tracking/start", h.StartTracking)
	r.POST("/tracking/stop", h.StopTracking)
	r.GET("/location/current", h.CurrentLocation)
	r.GET("/location/history", h.History)
	r.DELETE("/location/history", h.ClearHistory)
	r.PUT("/geofence", h.SetGeofence)
	r.DELETE("/geofence", h.ClearGeofence)
	r.GET("/geofence/status", h.GeofenceStatus)
}

func (h *TrackingHandler) StartTracking(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}
	h.trackerSvc.StartTracking(c.Request.Context(), member.ID)
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) StopTracking(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}
	h.trackerSvc.StopTracking(member.ID)
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) CurrentLocation(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	sample, ok := h.trackerSvc.CurrentLocation(member.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location yet"})
		return
	}
	c.JSON(http.StatusOK, sample)
}

func (h *TrackingHandler) History(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.trackerSvc.History(member.ID))
}

func (h *TrackingHandler) ClearHistory(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}
	h.trackerSvc.ClearHistory(c.Request.Context(), member.ID)
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) SetGeofence(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	var req setGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RadiusMeters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius_meters must be positive"})
		return
	}

	h.geofenceSvc.SetGeofence(member.ID, &domain.Geofence{
		Center:       domain.GeoPoint{Lat: req.Latitude, Lon: req.Longitude},
		RadiusMeters: req.RadiusMeters,
		Active:       true,
		Name:         req.Name,
	})
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) ClearGeofence(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}
	h.geofenceSvc.SetGeofence(member.ID, nil)
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) GeofenceStatus(c *gin.Context) {
	member, ok := memberFromHeaders(c)
	if !ok {
		return
	}

	fence := h.geofenceSvc.Geofence(member.ID)
	if fence == nil {
		c.JSON(http.StatusOK, gin.H{"status": domain.GeofenceUnknown})
		return
	}

	sample, ok := h.trackerSvc.CurrentLocation(member.ID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": domain.GeofenceUnknown, "geofence": fence})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   h.geofenceSvc.CheckStatus(member.ID, sample),
		"geofence": fence,
	})
}
