package otpAuth

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrMissingFields, KindValidation},
		{ErrInvalidEmail, KindValidation},
		{ErrWeakPassword, KindValidation},
		{ErrAlreadyVerified, KindValidation},
		{ErrOTPNoChallenge, KindValidation},
		{ErrOTPMismatch, KindValidation},
		{ErrOTPExpired, KindValidation},
		{ErrAccountExists, KindConflict},
		{ErrInvalidCredentials, KindUnauthorized},
		{ErrUnauthorized, KindUnauthorized},
		{ErrUserNotFound, KindNotFound},
		{&RateLimitError{Class: RateLogin}, KindRateLimited},
		{fmt.Errorf("wrapped: %w", ErrUserNotFound), KindNotFound},
		{ErrStoreUnavailable, KindInternal},
		{errors.New("boom"), KindInternal},
		{nil, KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStoreErrorWrapsOnlyUnknownErrors(t *testing.T) {
	if err := storeError("op", ErrUserNotFound); err != ErrUserNotFound {
		t.Fatalf("taxonomy errors must pass through, got %v", err)
	}
	err := storeError("op", errors.New("dial tcp: refused"))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if storeError("op", nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
