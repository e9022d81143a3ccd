package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// InsertUser persists a new user after schema validation.
func (s *SQLiteStore) InsertUser(ctx context.Context, u model.User) error {
	if err := validateUser(u); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)",
		u.ID, u.Name, u.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.ID, err)
	}
	return nil
}

// FindUserByName returns the earliest-created user with the given name.
// Names are not unique at the schema level; the first match is treated
// as canonical. Returns (nil, nil) when no user matches.
func (s *SQLiteStore) FindUserByName(
	ctx context.Context,
	name string,
) (*model.User, error) {
	var (
		u         model.User
		createdAt time.Time
	)

	err := s.db.QueryRowxContext(ctx,
		"SELECT id, name, created_at FROM users WHERE name = ? ORDER BY created_at LIMIT 1",
		name,
	).Scan(&u.ID, &u.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by name: %w", err)
	}

	u.CreatedAt = createdAt
	return &u, nil
}
