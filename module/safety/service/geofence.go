package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/publisher"
)

const earthRadiusMeters = 6371000

// GeofenceService evaluates tracked positions against a per-member circular
// boundary. Entry/exit toasts are edge-triggered: they fire on a status
// change relative to the previous evaluated sample, never while steady-state
// inside or outside. The first evaluation after activation establishes the
// baseline silently.
type GeofenceService struct {
	mu       sync.Mutex
	notifier publisher.NotificationPublisher
	fences   map[string]*fenceState
}

type fenceState struct {
	fence      *domain.Geofence
	insideLast *bool
}

func NewGeofenceService(notifier publisher.NotificationPublisher) *GeofenceService {
	return &GeofenceService{
		notifier: notifier,
		fences:   make(map[string]*fenceState),
	}
}

// SetGeofence activates a geofence for a member, or deactivates it when fence
// is nil. Either way the edge-trigger baseline is reset.
func (s *GeofenceService) SetGeofence(memberID string, fence *domain.Geofence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fence == nil {
		delete(s.fences, memberID)
		return
	}
	s.fences[memberID] = &fenceState{fence: fence}
}

func (s *GeofenceService) Geofence(memberID string) *domain.Geofence {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.fences[memberID]
	if st == nil {
		return nil
	}
	f := *st.fence
	return &f
}

// CheckStatus evaluates one sample. Returns GeofenceUnknown while no active
// geofence is configured for the member.
func (s *GeofenceService) CheckStatus(memberID string, sample domain.LocationSample) domain.GeofenceStatus {
	s.mu.Lock()
	st := s.fences[memberID]
	if st == nil || !st.fence.Active {
		s.mu.Unlock()
		return domain.GeofenceUnknown
	}

	dist := haversine(sample.Lat, sample.Lon, st.fence.Center.Lat, st.fence.Center.Lon)
	inside := dist <= st.fence.RadiusMeters

	prev := st.insideLast
	st.insideLast = &inside
	name := st.fence.Name
	s.mu.Unlock()

	if prev != nil && *prev != inside {
		s.notifyTransition(memberID, name, inside)
	}

	if inside {
		return domain.GeofenceInside
	}
	return domain.GeofenceOutside
}

// HandleSample lets the tracker feed the evaluator directly.
func (s *GeofenceService) HandleSample(memberID string, sample domain.LocationSample) {
	s.CheckStatus(memberID, sample)
}

func (s *GeofenceService) notifyTransition(memberID, name string, inside bool) {
	area := name
	if area == "" {
		area = "the area"
	}
	verb := "left"
	if inside {
		verb = "entered"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	toast := &domain.Toast{
		Message:   fmt.Sprintf("%s %s %s", memberID, verb, area),
		Severity:  domain.ToastInfo,
		Timestamp: time.Now().Unix(),
	}
	if err := s.notifier.PublishToast(ctx, toast); err != nil {
		log.Printf("geofence toast for %s: %v", memberID, err)
	}
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
