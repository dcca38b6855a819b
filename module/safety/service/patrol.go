package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
)

// PatrolService owns the lifecycle of patrol sessions: at most one active
// session per guard, an append-only route while active, and a
// most-recent-first list of completed sessions.
type PatrolService struct {
	mu     sync.Mutex
	repo   database.PatrolRepository
	active map[string]*domain.PatrolSession
	recent []domain.PatrolSession
}

const recentSessionsLimit = 20

func NewPatrolService(repo database.PatrolRepository) *PatrolService {
	return &PatrolService{
		repo:   repo,
		active: make(map[string]*domain.PatrolSession),
	}
}

// Refresh seeds the recent-sessions list from the backend. Called once when
// the community scope is established.
func (s *PatrolService) Refresh(ctx context.Context, communityID string) error {
	sessions, err := s.repo.ListRecent(ctx, communityID, recentSessionsLimit)
	if err != nil {
		return fmt.Errorf("load patrol sessions: %w", err)
	}

	s.mu.Lock()
	s.recent = sessions
	s.mu.Unlock()
	return nil
}

// StartPatrol creates a new active session for the guard. If one is already
// active it is returned as-is: double-starting is guarded against, not an
// error. The new row is written once; on write failure no session is kept
// and the caller may retry.
func (s *PatrolService) StartPatrol(ctx context.Context, guard domain.Member) (*domain.PatrolSession, error) {
	if guard.CommunityID == "" {
		return nil, domain.ErrCommunityRequired
	}

	s.mu.Lock()
	if existing := s.active[guard.ID]; existing != nil {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	session := &domain.PatrolSession{
		ID:          uuid.NewString(),
		GuardID:     guard.ID,
		GuardName:   guard.DisplayName,
		CommunityID: guard.CommunityID,
		StartTime:   time.Now(),
		Status:      domain.PatrolActive,
		Route:       []domain.LocationSample{},
	}

	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("start patrol: %w", err)
	}

	s.mu.Lock()
	s.active[guard.ID] = session
	s.mu.Unlock()
	return session, nil
}

// UpdateRoute appends a sample to the guard's active route. No-op without an
// active session. The backing row is written through once per sample;
// failures are logged and the in-memory route keeps the sample.
// TotalDistance is not recomputed here.
func (s *PatrolService) UpdateRoute(guardID string, sample domain.LocationSample) {
	s.mu.Lock()
	session := s.active[guardID]
	if session == nil {
		s.mu.Unlock()
		return
	}
	session.Route = append(session.Route, sample)
	route := make([]domain.LocationSample, len(session.Route))
	copy(route, session.Route)
	sessionID := session.ID
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.UpdateRoute(ctx, sessionID, route); err != nil {
		log.Printf("persist route for patrol %s: %v", sessionID, err)
	}
}

// HandleSample lets the tracker feed the active route directly.
func (s *PatrolService) HandleSample(memberID string, sample domain.LocationSample) {
	s.UpdateRoute(memberID, sample)
}

// EndPatrol completes the guard's active session. Fails when none is active.
// On backend failure the session stays active locally so the caller can
// retry; nothing is partially mutated.
func (s *PatrolService) EndPatrol(ctx context.Context, guardID string) (*domain.PatrolSession, error) {
	s.mu.Lock()
	session := s.active[guardID]
	s.mu.Unlock()
	if session == nil {
		return nil, domain.ErrNoActivePatrol
	}

	now := time.Now()
	if err := s.repo.Complete(ctx, session.ID, now); err != nil {
		return nil, fmt.Errorf("end patrol: %w", err)
	}

	s.mu.Lock()
	session.Status = domain.PatrolCompleted
	session.EndTime = &now
	delete(s.active, guardID)
	s.recent = append([]domain.PatrolSession{*session}, s.recent...)
	s.mu.Unlock()
	return session, nil
}

// ActiveSession returns the guard's active session, if any.
func (s *PatrolService) ActiveSession(guardID string) (*domain.PatrolSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.active[guardID]
	if session == nil {
		return nil, false
	}
	copied := *session
	return &copied, true
}

// RecentSessions lists completed sessions, most recent first.
func (s *PatrolService) RecentSessions() []domain.PatrolSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PatrolSession, len(s.recent))
	copy(out, s.recent)
	return out
}
