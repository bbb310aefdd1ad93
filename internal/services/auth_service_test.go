package services

import (
	"errors"
	"testing"
	"time"
)

func newAuth(t *testing.T) *DashboardAuthService {
	t.Helper()
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewDashboardAuthService("admin", hash, func(subject string, ttl time.Duration) (string, error) {
		return "token:" + subject + ":" + ttl.String(), nil
	}, time.Hour)
	svc.now = func() time.Time { return time.Unix(0, 0).UTC() }
	return svc
}

func TestDashboardLogin(t *testing.T) {
	svc := newAuth(t)
	res, err := svc.Login(LoginRequest{Username: " admin ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "token:admin:1h0m0s" || !res.ExpiresAt.Equal(time.Unix(3600, 0)) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDashboardLoginRejects(t *testing.T) {
	svc := newAuth(t)
	cases := []struct {
		req  LoginRequest
		code ErrorCode
	}{
		{LoginRequest{Username: "admin", Password: "123"}, ErrorUnauthorized},
		{LoginRequest{Username: "root", Password: "correct horse"}, ErrorUnauthorized},
		{LoginRequest{Username: "admin"}, ErrorInvalid},
		{LoginRequest{Password: "correct horse"}, ErrorInvalid},
	}
	for _, tc := range cases {
		_, err := svc.Login(tc.req)
		if code, ok := ErrorCodeOf(err); !ok || code != tc.code {
			t.Fatalf("%+v: want %s, got %v", tc.req, tc.code, err)
		}
	}
}

func TestDashboardLoginDisabledWithoutHash(t *testing.T) {
	svc := NewDashboardAuthService("admin", nil, nil, 0)
	if svc.Enabled() || svc.TokenTTL() != 12*time.Hour {
		t.Fatalf("unexpected defaults")
	}
	_, err := svc.Login(LoginRequest{Username: "admin", Password: "123"})
	if code, _ := ErrorCodeOf(err); code != ErrorUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestDashboardLoginSignerError(t *testing.T) {
	hash, _ := HashPassword("pw")
	boom := errors.New("signer down")
	svc := NewDashboardAuthService("admin", hash, func(string, time.Duration) (string, error) { return "", boom }, time.Minute)
	if _, err := svc.Login(LoginRequest{Username: "admin", Password: "pw"}); !errors.Is(err, boom) {
		t.Fatalf("want signer error, got %v", err)
	}
}

func TestHashPasswordRequiresValue(t *testing.T) {
	if _, err := HashPassword("  "); err == nil {
		t.Fatalf("blank password should be rejected")
	}
}
