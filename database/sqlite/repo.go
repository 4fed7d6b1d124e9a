// Package sqlite implements bucketgate.UserRepo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/bucketgate"
)

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables bucketgate.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(tables.Users)}, nil
}

func (r *Repo) Get(ctx context.Context, username string) (bucketgate.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT username, password_hash, salt, created_at, updated_at
		FROM %s
		WHERE username = ?`, r.tableName)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return bucketgate.User{}, false, fmt.Errorf("upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt string
	checkQuery := fmt.Sprintf(`SELECT created_at FROM %s WHERE username = ?`, r.tableName) //nolint:gosec // table name is validated
	err = tx.QueryRowContext(ctx, checkQuery, u.Username).Scan(&createdAt)
	isInsert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isInsert {
		return bucketgate.User{}, false, fmt.Errorf("upsert: check existing: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	hash := hex.EncodeToString(u.PasswordHash)
	salt := hex.EncodeToString(u.Salt)

	if isInsert {
		createdAt = now
		insertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`INSERT INTO %s (username, password_hash, salt, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`, r.tableName)
		if _, err = tx.ExecContext(ctx, insertQuery, u.Username, hash, salt, now, now); err != nil {
			return bucketgate.User{}, false, fmt.Errorf("upsert: insert: %w", err)
		}
	} else {
		updateQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`UPDATE %s SET password_hash = ?, salt = ?, updated_at = ? WHERE username = ?`, r.tableName)
		if _, err = tx.ExecContext(ctx, updateQuery, hash, salt, now, u.Username); err != nil {
			return bucketgate.User{}, false, fmt.Errorf("upsert: update: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return bucketgate.User{}, false, fmt.Errorf("upsert: commit: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, now)

	return u, isInsert, nil
}

func (r *Repo) Delete(ctx context.Context, username string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE username = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return bucketgate.ErrNotFound
	}

	return nil
}

func (r *Repo) List(ctx context.Context) ([]bucketgate.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT username, password_hash, salt, created_at, updated_at
		FROM %s
		ORDER BY username`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []bucketgate.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows error: %w", err)
	}

	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (bucketgate.User, error) {
	var u bucketgate.User
	var hash, salt, createdAt, updatedAt string

	if err := s.Scan(&u.Username, &hash, &salt, &createdAt, &updatedAt); err != nil {
		return bucketgate.User{}, err
	}

	var err error
	if u.PasswordHash, err = hex.DecodeString(hash); err != nil {
		return bucketgate.User{}, fmt.Errorf("decode password_hash: %w", err)
	}
	if u.Salt, err = hex.DecodeString(salt); err != nil {
		return bucketgate.User{}, fmt.Errorf("decode salt: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return bucketgate.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return bucketgate.User{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return u, nil
}
