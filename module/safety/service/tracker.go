package service

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/cache"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
)

const (
	// SyntheticFixInterval is how often the fallback generator produces a
	// perturbed sample when the live position source is unavailable.
	SyntheticFixInterval = 10 * time.Second

	// syntheticDriftDegrees bounds the random walk of the fallback
	// generator, roughly 50m per step.
	syntheticDriftDegrees = 0.0005

	persistTimeout = 5 * time.Second
)

// WatchHandle cancels a live position watch.
type WatchHandle interface {
	Cancel()
}

// PositionSource delivers live position fixes for a member. Implementations
// must tolerate permission denial by reporting it through onError; the
// tracker absorbs it into the synthetic fallback.
type PositionSource interface {
	Watch(memberID string, onFix func(domain.LocationSample), onError func(error)) (WatchHandle, error)
}

// SampleSink receives every accepted sample. The geofence evaluator and the
// patrol session manager attach here.
type SampleSink interface {
	HandleSample(memberID string, sample domain.LocationSample)
}

// TrackerService samples member positions continuously. Each accepted fix
// becomes the member's current location, joins a bounded FIFO history, is
// persisted fire-and-forget to the member's profile row, and the history
// snapshot is written to the per-user cache so it survives restarts.
type TrackerService struct {
	mu       sync.Mutex
	source   PositionSource
	profiles database.ProfileRepository
	cache    cache.HistoryCache
	sinks    []SampleSink
	slots    map[string]*trackerSlot

	// syntheticInterval is shortened by tests.
	syntheticInterval time.Duration
}

type trackerSlot struct {
	tracking  bool
	handle    WatchHandle
	stopSynth chan struct{}
	current   *domain.LocationSample
	history   []domain.LocationSample
}

func NewTrackerService(source PositionSource, profiles database.ProfileRepository, historyCache cache.HistoryCache) *TrackerService {
	return &TrackerService{
		source:            source,
		profiles:          profiles,
		cache:             historyCache,
		slots:             make(map[string]*trackerSlot),
		syntheticInterval: SyntheticFixInterval,
	}
}

// AddSink attaches a downstream consumer of accepted samples. Sinks must be
// attached before tracking starts.
func (s *TrackerService) AddSink(sink SampleSink) {
	s.sinks = append(s.sinks, sink)
}

// StartTracking begins continuous sampling for the member. Calling it while
// already tracking is a no-op. A position source failure is not an error:
// the synthetic generator takes over so downstream stays source-agnostic.
func (s *TrackerService) StartTracking(ctx context.Context, memberID string) {
	s.mu.Lock()
	slot := s.slots[memberID]
	if slot != nil && slot.tracking {
		s.mu.Unlock()
		return
	}
	if slot == nil {
		slot = &trackerSlot{}
		s.slots[memberID] = slot
	}
	slot.tracking = true
	s.mu.Unlock()

	s.restoreHistory(ctx, memberID, slot)

	handle, err := s.source.Watch(memberID,
		func(sample domain.LocationSample) { s.ingest(memberID, sample) },
		func(err error) { s.fallback(memberID, err) },
	)
	if err != nil {
		s.fallback(memberID, err)
		return
	}

	s.mu.Lock()
	slot.handle = handle
	s.mu.Unlock()
}

// StopTracking releases the watch handle and the synthetic generator. Safe
// to call when not tracking; no further samples are produced afterwards.
func (s *TrackerService) StopTracking(memberID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[memberID]
	if slot == nil || !slot.tracking {
		return
	}
	slot.tracking = false
	if slot.handle != nil {
		slot.handle.Cancel()
		slot.handle = nil
	}
	if slot.stopSynth != nil {
		close(slot.stopSynth)
		slot.stopSynth = nil
	}
}

// CurrentLocation returns the member's latest accepted sample.
func (s *TrackerService) CurrentLocation(memberID string) (domain.LocationSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[memberID]
	if slot == nil || slot.current == nil {
		return domain.LocationSample{}, false
	}
	return *slot.current, true
}

// History returns up to the most recent MaxHistorySamples samples in
// chronological order.
func (s *TrackerService) History(memberID string) []domain.LocationSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[memberID]
	if slot == nil {
		return nil
	}
	out := make([]domain.LocationSample, len(slot.history))
	copy(out, slot.history)
	return out
}

// ClearHistory drops the in-memory history and the cached copy. The current
// location is kept.
func (s *TrackerService) ClearHistory(ctx context.Context, memberID string) {
	s.mu.Lock()
	if slot := s.slots[memberID]; slot != nil {
		slot.history = nil
	}
	s.mu.Unlock()

	if err := s.cache.Remove(ctx, memberID); err != nil {
		log.Printf("clear cached history for %s: %v", memberID, err)
	}
}

// ingest is the single accept path shared by live fixes and synthetic ones.
func (s *TrackerService) ingest(memberID string, sample domain.LocationSample) {
	s.mu.Lock()
	slot := s.slots[memberID]
	if slot == nil || !slot.tracking {
		s.mu.Unlock()
		return
	}
	slot.current = &sample
	slot.history = append(slot.history, sample)
	if len(slot.history) > domain.MaxHistorySamples {
		slot.history = slot.history[len(slot.history)-domain.MaxHistorySamples:]
	}
	snapshot := make([]domain.LocationSample, len(slot.history))
	copy(snapshot, slot.history)
	s.mu.Unlock()

	s.persist(memberID, sample, snapshot)

	for _, sink := range s.sinks {
		sink.HandleSample(memberID, sample)
	}
}

// persist is fire-and-forget: failures are logged, never retried, never
// surfaced to the sampling path.
func (s *TrackerService) persist(memberID string, sample domain.LocationSample, history []domain.LocationSample) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.profiles.UpdateLastLocation(ctx, memberID, sample); err != nil {
		log.Printf("persist last location for %s: %v", memberID, err)
	}
	if err := s.cache.Set(ctx, memberID, history); err != nil {
		log.Printf("cache history for %s: %v", memberID, err)
	}
}

func (s *TrackerService) restoreHistory(ctx context.Context, memberID string, slot *trackerSlot) {
	samples, err := s.cache.Get(ctx, memberID)
	if err != nil {
		log.Printf("restore history for %s: %v", memberID, err)
		return
	}
	if len(samples) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(slot.history) == 0 {
		slot.history = samples
		last := samples[len(samples)-1]
		slot.current = &last
	}
}

// fallback switches the member to the synthetic generator. Permission denial
// and source outages land here and are absorbed silently.
func (s *TrackerService) fallback(memberID string, cause error) {
	s.mu.Lock()
	slot := s.slots[memberID]
	if slot == nil || !slot.tracking || slot.stopSynth != nil {
		s.mu.Unlock()
		return
	}
	if slot.handle != nil {
		slot.handle.Cancel()
		slot.handle = nil
	}
	stop := make(chan struct{})
	slot.stopSynth = stop
	s.mu.Unlock()

	log.Printf("position source unavailable for %s (%v), using synthetic fixes", memberID, cause)

	go func() {
		ticker := time.NewTicker(s.syntheticInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if sample, ok := s.nextSynthetic(memberID); ok {
					s.ingest(memberID, sample)
				}
			case <-stop:
				return
			}
		}
	}()
}

// nextSynthetic perturbs the last known position by a small random delta.
// Without any last known position there is nothing to perturb yet.
func (s *TrackerService) nextSynthetic(memberID string) (domain.LocationSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[memberID]
	if slot == nil || slot.current == nil {
		return domain.LocationSample{}, false
	}
	return domain.LocationSample{
		Lat:       slot.current.Lat + (rand.Float64()-0.5)*syntheticDriftDegrees,
		Lon:       slot.current.Lon + (rand.Float64()-0.5)*syntheticDriftDegrees,
		Timestamp: time.Now(),
	}, true
}
