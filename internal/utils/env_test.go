package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	const key = "_CLIMA_TEST_SAFEENV"
	t.Setenv(key, "")
	if got := SafeEnv(key, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv(key, "   ")
	if got := SafeEnv(key, "fallback"); got != "fallback" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
	t.Setenv(key, " value ")
	if got := SafeEnv(key, "fallback"); got != "value" {
		t.Fatalf("expected 'value', got %q", got)
	}
}
