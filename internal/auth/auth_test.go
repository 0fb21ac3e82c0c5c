package auth

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/jakehorton1228-droid/habit-tracker/internal/errors"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("hash must not equal the password")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair("user-1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	claims, err := m.Verify(pair.Access, TypeAccess)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q, want user-1", claims.UserID)
	}

	if _, err := m.Verify(pair.Refresh, TypeRefresh); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	pair, err := m.IssuePair("user-1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	// A refresh token must not pass as an access token, and vice versa.
	if _, err := m.Verify(pair.Refresh, TypeAccess); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
	if _, err := m.Verify(pair.Access, TypeRefresh); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	expired, err := m.issue("user-1", TypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(expired, TypeAccess); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected token expired, got %v", err)
	}
}

func TestVerifyRejectsForged(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	other := NewTokenManager("other-secret", time.Minute, time.Hour)

	pair, err := other.IssuePair("user-1")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if _, err := m.Verify(pair.Access, TypeAccess); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
	if _, err := m.Verify("not.a.token", TypeAccess); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected token invalid for garbage, got %v", err)
	}
}
