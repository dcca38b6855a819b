package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
)

var _ database.AlertRepository = (*AlertRepo)(nil)

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Insert(ctx context.Context, a *domain.Alert) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (id, sender_id, community_id, type, priority, latitude, longitude, message, resolved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.SenderID, a.CommunityID, string(a.Type), a.Priority,
		a.Location.Lat, a.Location.Lon, a.Message, a.Resolved, a.CreatedAt,
	)
	return err
}

// Resolve only touches unresolved rows, so a second resolve of the same
// alert keeps the first caller's resolved_by and resolved_at.
func (r *AlertRepo) Resolve(ctx context.Context, alertID, resolvedBy string, resolvedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET resolved = TRUE, resolved_by = $2, resolved_at = $3 WHERE id = $1 AND resolved = FALSE`,
		alertID, resolvedBy, resolvedAt,
	)
	return err
}

func (r *AlertRepo) ListByCommunity(ctx context.Context, communityID string) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender_id, community_id, type, priority, latitude, longitude, message, resolved, resolved_by, resolved_at, created_at
		 FROM alerts WHERE community_id = $1 ORDER BY created_at DESC`,
		communityID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Alert
	for rows.Next() {
		var (
			a          domain.Alert
			alertType  string
			resolvedBy sql.NullString
			resolvedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.SenderID, &a.CommunityID, &alertType, &a.Priority,
			&a.Location.Lat, &a.Location.Lon, &a.Message, &a.Resolved, &resolvedBy, &resolvedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = domain.AlertType(alertType)
		if resolvedBy.Valid {
			a.ResolvedBy = resolvedBy.String
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			a.ResolvedAt = &t
		}
		results = append(results, a)
	}
	return results, rows.Err()
}
