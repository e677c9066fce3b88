package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/portal/internal/fnstub/store"
	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored. Fixed width keeps them sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; queueing in database/sql beats
	// SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) Get(ctx context.Context, username string) (store.User, error) {
	var (
		u                    store.User
		passwordSetAt, added string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT username, password_hash, password_set_at, totp_secret, created_at
		FROM users WHERE username = ?`, username,
	).Scan(&u.Username, &u.PasswordHash, &passwordSetAt, &u.TOTPSecret, &added)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, err
	}

	if u.PasswordSetAt, err = parseTime(passwordSetAt); err != nil {
		return store.User{}, err
	}
	if u.CreatedAt, err = parseTime(added); err != nil {
		return store.User{}, err
	}
	return u, nil
}

func (r *usersRepo) SetPassword(ctx context.Context, username, hash string, setAt time.Time) error {
	ts := formatTime(setAt)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, password_set_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			password_set_at = excluded.password_set_at`,
		username, hash, ts, ts,
	)
	return err
}

func (r *usersRepo) SetTOTPSecret(ctx context.Context, username, secret string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, totp_secret, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			totp_secret = excluded.totp_secret`,
		username, secret, formatTime(at),
	)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
