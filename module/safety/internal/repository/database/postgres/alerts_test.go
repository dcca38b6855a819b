package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

func TestAlertInsert_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003456, 0)
	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs("a1", "member-1", "community-1", "panic", 1, 6.5244, 3.3792, "help", false, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAlertRepo(db)
	err = repo.Insert(context.Background(), &domain.Alert{
		ID:          "a1",
		SenderID:    "member-1",
		CommunityID: "community-1",
		Type:        domain.AlertPanic,
		Priority:    1,
		Location:    domain.GeoPoint{Lat: 6.5244, Lon: 3.3792},
		Message:     "help",
		CreatedAt:   ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAlertInsert_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO alerts`).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewAlertRepo(db)
	err = repo.Insert(context.Background(), &domain.Alert{ID: "a1", Type: domain.AlertPanic})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAlertResolve_OnlyUnresolvedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003600, 0)
	mock.ExpectExec(`UPDATE alerts SET resolved = TRUE, resolved_by = (.+), resolved_at = (.+) WHERE id = (.+) AND resolved = FALSE`).
		WithArgs("a1", "member-2", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAlertRepo(db)
	if err := repo.Resolve(context.Background(), "a1", "member-2", ts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAlertResolve_AlreadyResolvedIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ts := time.Unix(1715003600, 0)
	mock.ExpectExec(`UPDATE alerts SET resolved = TRUE`).
		WithArgs("a1", "member-3", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAlertRepo(db)
	if err := repo.Resolve(context.Background(), "a1", "member-3", ts); err != nil {
		t.Fatalf("second resolve must not error: %v", err)
	}
}

func TestListByCommunity_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	created := time.Unix(1715003456, 0)
	resolvedAt := time.Unix(1715003999, 0)
	cols := []string{"id", "sender_id", "community_id", "type", "priority", "latitude", "longitude", "message", "resolved", "resolved_by", "resolved_at", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("a2", "member-1", "community-1", "emergency", 2, 6.53, 3.38, "", false, nil, nil, created.Add(time.Minute)).
		AddRow("a1", "member-1", "community-1", "panic", 1, 6.52, 3.37, "help", true, "member-2", resolvedAt, created)

	mock.ExpectQuery(`SELECT (.+) FROM alerts WHERE community_id = (.+) ORDER BY created_at DESC`).
		WithArgs("community-1").
		WillReturnRows(rows)

	repo := NewAlertRepo(db)
	results, err := repo.ListByCommunity(context.Background(), "community-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(results))
	}

	open := results[0]
	if open.ID != "a2" || open.Resolved || open.ResolvedBy != "" || open.ResolvedAt != nil {
		t.Errorf("unexpected open alert: %+v", open)
	}
	closed := results[1]
	if !closed.Resolved || closed.ResolvedBy != "member-2" {
		t.Errorf("unexpected resolved alert: %+v", closed)
	}
	if closed.ResolvedAt == nil || !closed.ResolvedAt.Equal(resolvedAt) {
		t.Errorf("expected resolved_at %v, got %v", resolvedAt, closed.ResolvedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListByCommunity_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "sender_id", "community_id", "type", "priority", "latitude", "longitude", "message", "resolved", "resolved_by", "resolved_at", "created_at"}
	mock.ExpectQuery(`SELECT (.+) FROM alerts`).
		WithArgs("community-1").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewAlertRepo(db)
	results, err := repo.ListByCommunity(context.Background(), "community-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 alerts, got %d", len(results))
	}
}

func TestListByCommunity_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT (.+) FROM alerts`).
		WithArgs("community-1").
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewAlertRepo(db)
	if _, err := repo.ListByCommunity(context.Background(), "community-1"); err == nil {
		t.Fatal("expected error")
	}
}
