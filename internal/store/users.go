package store

import (
	"context"
	"fmt"
	"strings"
)

const userColumns = `id, name, email, token_hash, created_on`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.TokenHash, at(&u.CreatedOn))
	return u, err
}

// CreateUser registers a user. A duplicate email is ErrConflict.
func (s *Store) CreateUser(ctx context.Context, name, email, tokenHash string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || tokenHash == "" {
		return User{}, fmt.Errorf("name, email and token hash are required")
	}

	now := s.now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO users(name, email, token_hash, created_on) VALUES(?, ?, ?, ?)`,
		name, email, tokenHash, ts(now))
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return User{ID: id, Name: name, Email: email, TokenHash: tokenHash, CreatedOn: now}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, classify(err))
	}
	return u, nil
}

// UserByTokenHash resolves an API token hash to its user.
func (s *Store) UserByTokenHash(ctx context.Context, tokenHash string) (User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db,
		`SELECT `+userColumns+` FROM users WHERE token_hash = ?`, tokenHash))
	if err != nil {
		return User{}, fmt.Errorf("user by token: %w", classify(err))
	}
	return u, nil
}
