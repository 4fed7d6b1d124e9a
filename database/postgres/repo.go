// Package postgres implements bucketgate.UserRepo using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bucketgate"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables bucketgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Users}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Get(ctx context.Context, username string) (bucketgate.User, error) {
	query := fmt.Sprintf(`
		SELECT username, password_hash, salt, created_at, updated_at
		FROM %s
		WHERE username = $1
	`, r.tableName)

	var u bucketgate.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.Username, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bucketgate.User{}, bucketgate.ErrNotFound
		}
		return bucketgate.User{}, fmt.Errorf("get: %w", err)
	}

	return u, nil
}

func (r *Repo) Upsert(ctx context.Context, u bucketgate.User) (bucketgate.User, bool, error) {
	if u.Username == "" {
		return bucketgate.User{}, false, fmt.Errorf("upsert: %w: username cannot be empty", bucketgate.ErrInvalidInput)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (username, password_hash, salt)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
			salt = EXCLUDED.salt,
			updated_at = NOW()
		RETURNING username, password_hash, salt, created_at, updated_at,
			(xmax = 0) AS inserted
	`, r.tableName)

	var out bucketgate.User
	var inserted bool

	err := r.pool.QueryRow(ctx, query, u.Username, u.PasswordHash, u.Salt).Scan(
		&out.Username, &out.PasswordHash, &out.Salt, &out.CreatedAt, &out.UpdatedAt, &inserted,
	)
	if err != nil {
		return bucketgate.User{}, false, fmt.Errorf("upsert: %w", err)
	}

	return out, inserted, nil
}

func (r *Repo) Delete(ctx context.Context, username string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, r.tableName)

	tag, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return bucketgate.ErrNotFound
	}

	return nil
}

func (r *Repo) List(ctx context.Context) ([]bucketgate.User, error) {
	query := fmt.Sprintf(`
		SELECT username, password_hash, salt, created_at, updated_at
		FROM %s
		ORDER BY username
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	users := []bucketgate.User{}
	for rows.Next() {
		var u bucketgate.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return users, nil
}
