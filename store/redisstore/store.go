package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "otpauth"
	maxRetries    = 8
)

var (
	// ErrRedisUnavailable wraps transport and encoding failures.
	ErrRedisUnavailable = errors.New("redisstore: redis unavailable")
	// ErrContention is returned when an optimistic transaction kept losing races.
	ErrContention = errors.New("redisstore: too much contention")
)

// Store is a Redis-backed user store.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides time.Now for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store over client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{redis: client, prefix: defaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type challenge struct {
	Code      string `json:"code,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

type record struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"pw"`
	IsVerified   bool      `json:"verified"`
	VerifyOTP    challenge `json:"verify_otp"`
	ResetOTP     challenge `json:"reset_otp"`
	CreatedAt    int64     `json:"created_at"`
	UpdatedAt    int64     `json:"updated_at"`
}

func toChallenge(c otpAuth.OTPChallenge) challenge {
	if !c.Outstanding() {
		return challenge{}
	}
	return challenge{Code: c.Code, ExpiresAt: c.ExpiresAt.UnixMilli()}
}

func (c challenge) domain() otpAuth.OTPChallenge {
	if c.Code == "" {
		return otpAuth.OTPChallenge{}
	}
	return otpAuth.OTPChallenge{Code: c.Code, ExpiresAt: time.UnixMilli(c.ExpiresAt).UTC()}
}

func encode(u otpAuth.UserRecord) ([]byte, error) {
	return json.Marshal(record{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsVerified:   u.IsVerified,
		VerifyOTP:    toChallenge(u.VerifyOTP),
		ResetOTP:     toChallenge(u.ResetOTP),
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	})
}

func decode(data []byte) (otpAuth.UserRecord, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return otpAuth.UserRecord{}, fmt.Errorf("%w: decode record: %v", ErrRedisUnavailable, err)
	}
	return otpAuth.UserRecord{
		UserID:       r.UserID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsVerified:   r.IsVerified,
		VerifyOTP:    r.VerifyOTP.domain(),
		ResetOTP:     r.ResetOTP.domain(),
		CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(r.UpdatedAt).UTC(),
	}, nil
}

func (s *Store) userKey(id string) string {
	return s.prefix + ":user:" + id
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + email
}

// FindByID loads a record by id.
func (s *Store) FindByID(ctx context.Context, userID string) (otpAuth.UserRecord, error) {
	return s.load(ctx, s.redis, userID)
}

// FindByEmail resolves the email index and loads the record.
func (s *Store) FindByEmail(ctx context.Context, email string) (otpAuth.UserRecord, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	if err != nil {
		return otpAuth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.load(ctx, s.redis, id)
}

func (s *Store) load(ctx context.Context, c redis.Cmdable, id string) (otpAuth.UserRecord, error) {
	data, err := c.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return otpAuth.UserRecord{}, otpAuth.ErrUserNotFound
	}
	if err != nil {
		return otpAuth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decode(data)
}

// Create stores a new record and claims its email in one transaction.
func (s *Store) Create(ctx context.Context, in otpAuth.CreateUserInput) (otpAuth.UserRecord, error) {
	now := s.now().UTC()
	u := otpAuth.UserRecord{
		UserID:       uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	data, err := encode(u)
	if err != nil {
		return otpAuth.UserRecord{}, fmt.Errorf("%w: encode record: %v", ErrRedisUnavailable, err)
	}

	emailKey := s.emailKey(in.Email)
	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, emailKey).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return otpAuth.ErrAccountExists
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, s.userKey(u.UserID), data, 0)
				pipe.Set(ctx, emailKey, u.UserID, 0)
				return nil
			})
			return err
		}, emailKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, otpAuth.ErrAccountExists) {
			return otpAuth.UserRecord{}, err
		}
		if err != nil {
			return otpAuth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		return u, nil
	}
	return otpAuth.UserRecord{}, ErrContention
}

type mutateError struct{ err error }

func (e mutateError) Error() string { return e.err.Error() }

// Update applies mutate under WATCH on the record key. If another client
// writes the record between the read and EXEC, the transaction is retried
// with a fresh read.
func (s *Store) Update(ctx context.Context, userID string, mutate func(*otpAuth.UserRecord) error) (otpAuth.UserRecord, error) {
	key := s.userKey(userID)

	for i := 0; i < maxRetries; i++ {
		var updated otpAuth.UserRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			u, err := s.load(ctx, tx, userID)
			if err != nil {
				return err
			}

			if err := mutate(&u); err != nil {
				return mutateError{err: err}
			}
			// Identity fields belong to the store.
			u.UserID = userID

			data, err := encode(u)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err != nil {
				return err
			}
			updated = u
			return nil
		}, key)

		var me mutateError
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.As(err, &me):
			return otpAuth.UserRecord{}, me.err
		case errors.Is(err, otpAuth.ErrUserNotFound), errors.Is(err, ErrRedisUnavailable):
			return otpAuth.UserRecord{}, err
		default:
			return otpAuth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return otpAuth.UserRecord{}, ErrContention
}

var _ otpAuth.UserStore = (*Store)(nil)
