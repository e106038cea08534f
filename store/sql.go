// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veato-app/veato-server/models"
)

// SQL persists documents as JSON text rows over database/sql. The queries
// use only $N placeholders and portable DDL types, so the same code runs
// against sqlite (default, also used by tests) and postgres.
type SQL struct {
	DB *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{DB: db}
}

func (s *SQL) Get(ctx context.Context, id string) (models.Poll, int64, error) {
	var doc string
	var version int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT doc, version FROM poll_doc WHERE id = $1`, id,
	).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, 0, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, 0, fmt.Errorf("reading poll %s: %w", id, err)
	}

	var p models.Poll
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return models.Poll{}, 0, fmt.Errorf("decoding poll %s: %w", id, err)
	}
	return p, version, nil
}

func (s *SQL) Create(ctx context.Context, p models.Poll) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding poll %s: %w", p.ID, err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO poll_doc (id, doc, version) VALUES ($1, $2, 1)`,
		p.ID, string(doc),
	)
	if err != nil {
		if exists, checkErr := s.pollExists(ctx, p.ID); checkErr == nil && exists {
			return ErrAlreadyExists
		}
		return fmt.Errorf("creating poll %s: %w", p.ID, err)
	}
	return nil
}

// Update writes p back only if the stored version still equals
// expectedVersion, bumping the version on success.
func (s *SQL) Update(ctx context.Context, p models.Poll, expectedVersion int64) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding poll %s: %w", p.ID, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE poll_doc SET doc = $1, version = version + 1 WHERE id = $2 AND version = $3`,
		string(doc), p.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating poll %s: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating poll %s: %w", p.ID, err)
	}
	if affected == 0 {
		if exists, checkErr := s.pollExists(ctx, p.ID); checkErr == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *SQL) pollExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM poll_doc WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SQLTeams implements TeamStore over the same database handle.
type SQLTeams struct {
	DB *sql.DB
}

func NewSQLTeams(db *sql.DB) *SQLTeams {
	return &SQLTeams{DB: db}
}

func (s *SQLTeams) Get(ctx context.Context, id string) (models.Team, error) {
	var doc string
	err := s.DB.QueryRowContext(ctx,
		`SELECT doc FROM team_doc WHERE id = $1`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, ErrNotFound
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("reading team %s: %w", id, err)
	}

	var t models.Team
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return models.Team{}, fmt.Errorf("decoding team %s: %w", id, err)
	}
	return t, nil
}

func (s *SQLTeams) Save(ctx context.Context, t models.Team) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding team %s: %w", t.ID, err)
	}

	// Portable upsert: update first, insert when nothing matched.
	res, err := s.DB.ExecContext(ctx,
		`UPDATE team_doc SET doc = $1 WHERE id = $2`, string(doc), t.ID,
	)
	if err != nil {
		return fmt.Errorf("saving team %s: %w", t.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return nil
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO team_doc (id, doc) VALUES ($1, $2)`, t.ID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving team %s: %w", t.ID, err)
	}
	return nil
}

// SQLProfiles implements ProfileDirectory over the same database handle.
type SQLProfiles struct {
	DB *sql.DB
}

func NewSQLProfiles(db *sql.DB) *SQLProfiles {
	return &SQLProfiles{DB: db}
}

// Constraints resolves each user in order. Users without a stored profile
// get empty constraints rather than an error, matching how new members
// join teams before filling out preferences.
func (s *SQLProfiles) Constraints(ctx context.Context, userIDs []string) ([]models.MemberConstraints, error) {
	members := make([]models.MemberConstraints, 0, len(userIDs))
	for _, userID := range userIDs {
		var doc string
		err := s.DB.QueryRowContext(ctx,
			`SELECT doc FROM user_profile WHERE user_id = $1`, userID,
		).Scan(&doc)
		if errors.Is(err, sql.ErrNoRows) {
			members = append(members, models.MemberConstraints{UserID: userID})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading profile %s: %w", userID, err)
		}

		var c models.RawConstraints
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decoding profile %s: %w", userID, err)
		}
		members = append(members, models.MemberConstraints{UserID: userID, Constraints: c})
	}
	return members, nil
}

func (s *SQLProfiles) Save(ctx context.Context, userID string, c models.RawConstraints) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", userID, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE user_profile SET doc = $1 WHERE user_id = $2`, string(doc), userID,
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", userID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return nil
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO user_profile (user_id, doc) VALUES ($1, $2)`, userID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", userID, err)
	}
	return nil
}
