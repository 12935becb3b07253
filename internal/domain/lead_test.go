package domain

import (
	"testing"
	"time"
)

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry string
		want   bool
	}{
		{"future expiry is live", "2026-08-30 12:00:00", false},
		{"past expiry is expired", "2026-08-27 12:00:00", true},
		{"blank expiry fails closed", "", true},
		{"malformed expiry fails closed", "not-a-date", true},
		{"wrong layout fails closed", "2026-08-30T12:00:00Z", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := &Lead{ESignatureExpiry: tc.expiry}
			if got := lead.TokenExpired(now); got != tc.want {
				t.Errorf("TokenExpired(%q) = %v, want %v", tc.expiry, got, tc.want)
			}
		})
	}
}

func TestIsSigned(t *testing.T) {
	if (&Lead{}).IsSigned() {
		t.Error("lead without signed_at must not count as signed")
	}
	if !(&Lead{SignedAt: "2026-08-01 10:00:00"}).IsSigned() {
		t.Error("lead with signed_at must count as signed")
	}
}
