package auth

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestHMACValidator(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	v, err := NewHMACValidator(HMACValidatorConfig{
		Secret: "webhook-secret",
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewHMACValidator: %v", err)
	}
	body := []byte(`{"reference":"PAY-1","status":"SUCCESS"}`)
	timestamp := strconv.FormatInt(now.Unix(), 10)

	t.Run("valid signature", func(t *testing.T) {
		if err := v.Verify(v.Sign(timestamp, body), timestamp, body); err != nil {
			t.Errorf("Verify: %v", err)
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		if err := v.Verify("", timestamp, body); !errors.Is(err, ErrSignatureMissing) {
			t.Errorf("err = %v, want ErrSignatureMissing", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := v.Sign(timestamp, body)
		if err := v.Verify(sig, timestamp, []byte(`{"reference":"PAY-1","status":"FAILED"}`)); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("err = %v, want ErrSignatureInvalid", err)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(now.Add(-time.Hour).Unix(), 10)
		if err := v.Verify(v.Sign(old, body), old, body); !errors.Is(err, ErrSignatureExpired) {
			t.Errorf("err = %v, want ErrSignatureExpired", err)
		}
	})

	t.Run("garbage timestamp", func(t *testing.T) {
		if err := v.Verify(v.Sign("soon", body), "soon", body); !errors.Is(err, ErrSignatureExpired) {
			t.Errorf("err = %v, want ErrSignatureExpired", err)
		}
	})

	t.Run("signature for other timestamp", func(t *testing.T) {
		other := strconv.FormatInt(now.Add(time.Minute).Unix(), 10)
		if err := v.Verify(v.Sign(other, body), timestamp, body); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("err = %v, want ErrSignatureInvalid", err)
		}
	})
}
