// Package userdb stores principals and their durable sessions in sqlite.
package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrebq/turnstile/auth"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type (
	DB struct {
		db *sql.DB
	}
)

var (
	_ auth.Directory = (*DB)(nil)
)

func openDatabase(ctx context.Context, file string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, fmt.Errorf("unable to create directory to store %v, cause %w", file, err)
	}
	connstr := fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database %v, cause %v", file, err)
	}
	return conn, nil
}

// Open opens (or creates) the database at file and makes sure every table
// exists.
func Open(ctx context.Context, file string) (*DB, error) {
	conn, err := openDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	d := &DB{db: conn}
	err = d.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init database %v, cause %v", file, err)
	}
	return d, nil
}

// AddUser stores a new principal with a fresh random id.
func (d *DB) AddUser(ctx context.Context, email string, passwordHash []byte) (auth.Principal, error) {
	p := auth.Principal{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	_, err := d.db.ExecContext(ctx, `insert into users(user_id, email, email_hash64, hashed_password) values (?, ?, ?, ?)`,
		p.ID, p.Email, emailHash(email), p.PasswordHash)
	if isUniqueViolation(err) {
		return auth.Principal{}, DuplicateEmail{Email: email}
	} else if err != nil {
		return auth.Principal{}, fmt.Errorf("unable to add user, cause %w", err)
	}
	return p, nil
}

// FindPrincipals implements auth.Directory. Finding nothing returns an
// empty slice, not ErrNotFound.
func (d *DB) FindPrincipals(ctx context.Context, c auth.Criteria) ([]auth.Principal, error) {
	query, args, err := lookupQuery(c)
	if err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to find users, cause %w", err)
	}
	defer rows.Close()
	var out []auth.Principal
	for rows.Next() {
		var p auth.Principal
		err = rows.Scan(&p.ID, &p.Email, &p.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user, cause %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func lookupQuery(c auth.Criteria) (string, []interface{}, error) {
	const cols = `select u.user_id, u.email, u.hashed_password from users u`
	set := 0
	for _, v := range []string{c.Email, c.ID, c.SessionToken, c.ResetToken} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", nil, ErrInvalidCriteria
	}
	switch {
	case c.Email != "":
		return cols + ` where u.email_hash64 = ? and u.email = ?`, []interface{}{emailHash(c.Email), c.Email}, nil
	case c.ID != "":
		return cols + ` where u.user_id = ?`, []interface{}{c.ID}, nil
	case c.SessionToken != "":
		return cols + ` inner join user_sessions s on s.user_id = u.user_id where s.session_id = ?`, []interface{}{c.SessionToken}, nil
	default:
		return cols + ` where u.reset_token = ?`, []interface{}{c.ResetToken}, nil
	}
}

// UpdatePassword replaces the hash and clears any pending reset token.
func (d *DB) UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error {
	res, err := d.db.ExecContext(ctx, `update users set hashed_password = ?, reset_token = null where user_id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("unable to update password of %v, cause %w", userID, err)
	}
	return expectOne(res)
}

// SetResetToken stores token for userID, an empty token clears it.
func (d *DB) SetResetToken(ctx context.Context, userID, token string) error {
	var val interface{}
	if token != "" {
		val = token
	}
	res, err := d.db.ExecContext(ctx, `update users set reset_token = ? where user_id = ?`, val, userID)
	if err != nil {
		return fmt.Errorf("unable to set reset token of %v, cause %w", userID, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func emailHash(email string) int64 {
	return int64(xxhash.Sum64String(email))
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (d *DB) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id text not null primary key,
			email text not null unique,
			email_hash64 integer not null,
			hashed_password blob not null,
			reset_token text unique
		)`,
		`create index if not exists idx_users_email_hash64
			on users(email_hash64)
		`,
		`create table if not exists user_sessions(
			session_id text not null primary key,
			user_id text not null,
			created_at integer not null
		)`,
		`create index if not exists idx_user_sessions_created_at
			on user_sessions(created_at)
		`,
	} {
		_, err := d.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
