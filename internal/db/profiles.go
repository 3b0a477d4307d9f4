package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/introbird/internal/types"
)

const profileColumns = `first_name, last_name, email, address, bio_text, resume_summary_text`

// GetProfile returns the stored profile for userID, or types.ErrProfileNotFound.
func (db *DB) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`,
		userID,
	)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// SaveProfile upserts the non-nil fields of update and returns the stored profile.
func (db *DB) SaveProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error) {
	if update == nil {
		update = &types.Profile{}
	}
	row := db.pool.QueryRow(ctx,
		`INSERT INTO user_profiles (user_id, `+profileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		   first_name = COALESCE(EXCLUDED.first_name, user_profiles.first_name),
		   last_name = COALESCE(EXCLUDED.last_name, user_profiles.last_name),
		   email = COALESCE(EXCLUDED.email, user_profiles.email),
		   address = COALESCE(EXCLUDED.address, user_profiles.address),
		   bio_text = COALESCE(EXCLUDED.bio_text, user_profiles.bio_text),
		   resume_summary_text = COALESCE(EXCLUDED.resume_summary_text, user_profiles.resume_summary_text),
		   updated_at = NOW()
		 RETURNING `+profileColumns,
		userID, update.FirstName, update.LastName, update.Email, update.Address, update.BioText, update.ResumeSummaryText,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

// DeleteProfile removes a user's profile. Deleting a missing profile is not an error.
func (db *DB) DeleteProfile(ctx context.Context, userID string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var p types.Profile
	if err := row.Scan(&p.FirstName, &p.LastName, &p.Email, &p.Address, &p.BioText, &p.ResumeSummaryText); err != nil {
		return nil, err
	}
	return &p, nil
}
