package pgstore

import (
	"context"
	"errors"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// poolIface is the subset of *pgxpool.Pool the store needs.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id::text, name, email, password_hash, is_verified,
	verify_otp, COALESCE(verify_otp_expires_at, to_timestamp(0)),
	reset_otp, COALESCE(reset_otp_expires_at, to_timestamp(0)),
	created_at, updated_at`

// Store is a PostgreSQL-backed user store.
type Store struct {
	pool poolIface
	now  func() time.Time
}

// New returns a Store over pool.
func New(pool poolIface) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Open connects a pgx pool to dsn and pings it.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return pool, nil
}

func scanUser(row pgx.Row) (otpAuth.UserRecord, error) {
	var u otpAuth.UserRecord
	err := row.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified,
		&u.VerifyOTP.Code, &u.VerifyOTP.ExpiresAt,
		&u.ResetOTP.Code, &u.ResetOTP.ExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return otpAuth.UserRecord{}, err
	}
	normalizeChallenge(&u.VerifyOTP)
	normalizeChallenge(&u.ResetOTP)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// normalizeChallenge maps the epoch placeholder of an empty slot back to the
// zero value.
func normalizeChallenge(c *otpAuth.OTPChallenge) {
	if !c.Outstanding() {
		c.Clear()
		return
	}
	c.ExpiresAt = c.ExpiresAt.UTC()
}

func expiry(c otpAuth.OTPChallenge) *time.Time {
	if !c.Outstanding() {
		return nil
	}
	t := c.ExpiresAt.UTC()
	return &t
}

// FindByEmail loads a record by its normalized email.
func (s *Store) FindByEmail(ctx context.Context, email string) (otpAuth.UserRecord, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	if err != nil {
		return otpAuth.UserRecord{}, oops.With("operation", "find user by email").Wrap(err)
	}
	return u, nil
}

// FindByID loads a record by id. Ids that are not UUIDs are reported as
// unknown.
func (s *Store) FindByID(ctx context.Context, userID string) (otpAuth.UserRecord, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	if err != nil {
		return otpAuth.UserRecord{}, oops.With("operation", "find user by id").With("user_id", userID).Wrap(err)
	}
	return u, nil
}

// Create inserts a new unverified account.
func (s *Store) Create(ctx context.Context, in otpAuth.CreateUserInput) (otpAuth.UserRecord, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, in.Name, in.Email, in.PasswordHash, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return otpAuth.UserRecord{}, otpAuth.ErrAccountExists
		}
		return otpAuth.UserRecord{}, oops.With("operation", "create user").Wrap(err)
	}

	return otpAuth.UserRecord{
		UserID:       id.String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update locks the row, applies mutate and writes the result back in the
// same transaction.
func (s *Store) Update(ctx context.Context, userID string, mutate func(*otpAuth.UserRecord) error) (otpAuth.UserRecord, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return otpAuth.UserRecord{}, oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	u, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	if err != nil {
		return otpAuth.UserRecord{}, oops.With("operation", "lock user").With("user_id", userID).Wrap(err)
	}

	if err := mutate(&u); err != nil {
		return otpAuth.UserRecord{}, err
	}
	u.UserID = userID

	_, err = tx.Exec(ctx,
		`UPDATE users SET name = $2, password_hash = $3, is_verified = $4,
		 verify_otp = $5, verify_otp_expires_at = $6,
		 reset_otp = $7, reset_otp_expires_at = $8, updated_at = $9
		 WHERE id = $1`,
		id, u.Name, u.PasswordHash, u.IsVerified,
		u.VerifyOTP.Code, expiry(u.VerifyOTP),
		u.ResetOTP.Code, expiry(u.ResetOTP), u.UpdatedAt.UTC())
	if err != nil {
		return otpAuth.UserRecord{}, oops.With("operation", "update user").With("user_id", userID).Wrap(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return otpAuth.UserRecord{}, oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return u, nil
}

var _ otpAuth.UserStore = (*Store)(nil)
