package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
)

var _ database.PatrolRepository = (*PatrolRepo)(nil)

// PatrolRepo stores sessions with the recorded route as a jsonb column.
type PatrolRepo struct {
	db *sql.DB
}

func NewPatrolRepo(db *sql.DB) *PatrolRepo {
	return &PatrolRepo{db: db}
}

func (r *PatrolRepo) Insert(ctx context.Context, s *domain.PatrolSession) error {
	route, err := json.Marshal(s.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO patrol_sessions (id, guard_id, community_id, start_time, status, route_data, missed_awake_checks, total_distance)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.GuardID, s.CommunityID, s.StartTime, string(s.Status), route, s.MissedAwakeChecks, s.TotalDistance,
	)
	return err
}

func (r *PatrolRepo) UpdateRoute(ctx context.Context, sessionID string, routeSamples []domain.LocationSample) error {
	route, err := json.Marshal(routeSamples)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE patrol_sessions SET route_data = $2 WHERE id = $1`,
		sessionID, route,
	)
	return err
}

func (r *PatrolRepo) Complete(ctx context.Context, sessionID string, endTime time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE patrol_sessions SET status = 'completed', end_time = $2 WHERE id = $1`,
		sessionID, endTime,
	)
	return err
}

func (r *PatrolRepo) ListRecent(ctx context.Context, communityID string, limit int) ([]domain.PatrolSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, guard_id, community_id, start_time, end_time, status, route_data, missed_awake_checks, total_distance
		 FROM patrol_sessions WHERE community_id = $1 ORDER BY start_time DESC LIMIT $2`,
		communityID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PatrolSession
	for rows.Next() {
		var (
			s       domain.PatrolSession
			status  string
			endTime sql.NullTime
			route   []byte
		)
		if err := rows.Scan(&s.ID, &s.GuardID, &s.CommunityID, &s.StartTime, &endTime, &status,
			&route, &s.MissedAwakeChecks, &s.TotalDistance); err != nil {
			return nil, err
		}
		s.Status = domain.PatrolStatus(status)
		if endTime.Valid {
			t := endTime.Time
			s.EndTime = &t
		}
		if len(route) > 0 {
			if err := json.Unmarshal(route, &s.Route); err != nil {
				return nil, fmt.Errorf("unmarshal route for %s: %w", s.ID, err)
			}
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
