package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/internal/repository/database"
)

var _ database.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) UpdateLastLocation(ctx context.Context, memberID string, sample domain.LocationSample) error {
	loc, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE profiles SET last_location = $2 WHERE id = $1`,
		memberID, loc,
	)
	return err
}

func (r *ProfileRepo) DisplayName(ctx context.Context, memberID string) (string, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT display_name FROM profiles WHERE id = $1`,
		memberID,
	)
	var name string
	if err := row.Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}
