package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andrebq/turnstile/session"
)

var (
	_ session.Records = (*DB)(nil)
)

func (d *DB) Put(ctx context.Context, id string, e session.Entry) error {
	_, err := d.db.ExecContext(ctx, `insert into user_sessions(session_id, user_id, created_at) values (?, ?, ?)`,
		id, e.PrincipalID, session.UnixNanos(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("unable to store session for user %v, cause %w", e.PrincipalID, err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, id string) (session.Entry, error) {
	var e session.Entry
	var created int64
	err := d.db.QueryRowContext(ctx, `select user_id, created_at from user_sessions where session_id = ?`, id).Scan(&e.PrincipalID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Entry{}, session.ErrNotFound
	} else if err != nil {
		return session.Entry{}, fmt.Errorf("unable to load session, cause %w", err)
	}
	e.CreatedAt = session.FromUnixNanos(created)
	return e, nil
}

func (d *DB) Delete(ctx context.Context, id string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `delete from user_sessions where session_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("unable to delete session, cause %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeSessions deletes sessions created before the given instant and
// returns how many were removed.
func (d *DB) PurgeSessions(ctx context.Context, createdBefore time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `delete from user_sessions where created_at < ?`, createdBefore.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("unable to purge sessions, cause %w", err)
	}
	return res.RowsAffected()
}
