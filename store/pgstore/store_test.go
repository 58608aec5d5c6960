package pgstore

import (
	"context"
	"errors"
	"testing"
	"time"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "6f1c0b7e-2a4d-4a59-9b1e-0d1c9a7a2f10"

var (
	epoch   = time.Unix(0, 0).UTC()
	created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	columns = []string{
		"id", "name", "email", "password_hash", "is_verified",
		"verify_otp", "verify_otp_expires_at", "reset_otp", "reset_otp_expires_at",
		"created_at", "updated_at",
	}
)

func userRow(verifyCode string, verifyExp time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(columns).AddRow(
		testID, "Ann", "ann@x.com", "hash", false,
		verifyCode, verifyExp, "", epoch,
		created, created,
	)
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	s := New(mock)
	s.now = func() time.Time { return created }
	return s, mock
}

func TestFindByEmail(t *testing.T) {
	exp := created.Add(10 * time.Minute)
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      otpAuth.UserRecord
		wantErr   error
		errMsg    string
	}{
		{
			name: "found with outstanding verify challenge",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ann@x.com").
					WillReturnRows(userRow("123456", exp))
			},
			want: otpAuth.UserRecord{
				UserID:       testID,
				Name:         "Ann",
				Email:        "ann@x.com",
				PasswordHash: "hash",
				VerifyOTP:    otpAuth.OTPChallenge{Code: "123456", ExpiresAt: exp},
				CreatedAt:    created,
				UpdatedAt:    created,
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ann@x.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: otpAuth.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("ann@x.com").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			got, err := s.FindByEmail(context.Background(), "ann@x.com")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestFindByIDRejectsMalformedID(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, otpAuth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDEmptyChallengesAreZero(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(userRow("", epoch))

	got, err := s.FindByID(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, otpAuth.OTPChallenge{}, got.VerifyOTP)
	assert.Equal(t, otpAuth.OTPChallenge{}, got.ResetOTP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "Ann", "ann@x.com", "hash", created, created).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "email taken",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "Ann", "ann@x.com", "hash", created, created).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: otpAuth.ErrAccountExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			u, err := s.Create(context.Background(), otpAuth.CreateUserInput{
				Name: "Ann", Email: "ann@x.com", PasswordHash: "hash",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, u.UserID)
				assert.False(t, u.IsVerified)
				assert.Equal(t, created, u.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUpdateCommitsMutation(t *testing.T) {
	s, mock := newMockStore(t)
	exp := created.Add(10 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(userRow("", epoch))
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(pgxmock.AnyArg(), "Ann", "hash", false,
			"", pgxmock.AnyArg(), "654321", &exp, created).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, err := s.Update(context.Background(), testID, func(u *otpAuth.UserRecord) error {
		u.ResetOTP = otpAuth.OTPChallenge{Code: "654321", ExpiresAt: exp}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "654321", got.ResetOTP.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMutateErrorRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(userRow("", epoch))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), testID, func(*otpAuth.UserRecord) error { return boom })
	assert.Same(t, boom, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), testID, func(*otpAuth.UserRecord) error {
		t.Fatal("mutate must not run for a missing user")
		return nil
	})
	assert.ErrorIs(t, err, otpAuth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
