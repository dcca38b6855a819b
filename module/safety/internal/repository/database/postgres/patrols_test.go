package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

func TestPatrolInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	start := time.Unix(1715000000, 0)
	mock.ExpectExec(`INSERT INTO patrol_sessions`).
		WithArgs("p1", "guard-1", "community-1", start, "active", []byte("[]"), 0, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPatrolRepo(db)
	err = repo.Insert(context.Background(), &domain.PatrolSession{
		ID:          "p1",
		GuardID:     "guard-1",
		CommunityID: "community-1",
		StartTime:   start,
		Status:      domain.PatrolActive,
		Route:       []domain.LocationSample{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateRoute_MarshalsSamples(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	samples := []domain.LocationSample{{Lat: 6.5244, Lon: 3.3792, Timestamp: ts}}
	route, _ := json.Marshal(samples)

	mock.ExpectExec(`UPDATE patrol_sessions SET route_data = (.+) WHERE id = (.+)`).
		WithArgs("p1", route).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPatrolRepo(db)
	if err := repo.UpdateRoute(context.Background(), "p1", samples); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestComplete_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	end := time.Unix(1715009000, 0)
	mock.ExpectExec(`UPDATE patrol_sessions SET status = 'completed', end_time = (.+) WHERE id = (.+)`).
		WithArgs("p1", end).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPatrolRepo(db)
	if err := repo.Complete(context.Background(), "p1", end); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestComplete_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	end := time.Unix(1715009000, 0)
	mock.ExpectExec(`UPDATE patrol_sessions SET status = 'completed'`).
		WithArgs("p1", end).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewPatrolRepo(db)
	if err := repo.Complete(context.Background(), "p1", end); err == nil {
		t.Fatal("expected error")
	}
}

func TestListRecent_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	start := time.Unix(1715000000, 0)
	end := time.Unix(1715009000, 0)
	route, _ := json.Marshal([]domain.LocationSample{{Lat: 6.52, Lon: 3.37, Timestamp: start}})

	cols := []string{"id", "guard_id", "community_id", "start_time", "end_time", "status", "route_data", "missed_awake_checks", "total_distance"}
	rows := sqlmock.NewRows(cols).
		AddRow("p2", "guard-1", "community-1", start.Add(time.Hour), nil, "active", []byte("[]"), 0, 0.0).
		AddRow("p1", "guard-1", "community-1", start, end, "completed", route, 2, 1520.5)

	mock.ExpectQuery(`SELECT (.+) FROM patrol_sessions WHERE community_id = (.+) ORDER BY start_time DESC LIMIT (.+)`).
		WithArgs("community-1", 20).
		WillReturnRows(rows)

	repo := NewPatrolRepo(db)
	results, err := repo.ListRecent(context.Background(), "community-1", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(results))
	}

	active := results[0]
	if active.Status != domain.PatrolActive || active.EndTime != nil {
		t.Errorf("unexpected active session: %+v", active)
	}
	done := results[1]
	if done.Status != domain.PatrolCompleted || done.EndTime == nil || !done.EndTime.Equal(end) {
		t.Errorf("unexpected completed session: %+v", done)
	}
	if len(done.Route) != 1 || done.Route[0].Lat != 6.52 {
		t.Errorf("expected route restored, got %+v", done.Route)
	}
	if done.MissedAwakeChecks != 2 || done.TotalDistance != 1520.5 {
		t.Errorf("unexpected counters: %+v", done)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListRecent_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "guard_id", "community_id", "start_time", "end_time", "status", "route_data", "missed_awake_checks", "total_distance"}
	mock.ExpectQuery(`SELECT (.+) FROM patrol_sessions`).
		WithArgs("community-1", 20).
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewPatrolRepo(db)
	results, err := repo.ListRecent(context.Background(), "community-1", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 sessions, got %d", len(results))
	}
}
