package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	t.Setenv("SEMAFORO_TEST_KEY", "value")
	if got := SafeEnv("SEMAFORO_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("got %q", got)
	}
	if got := SafeEnv("SEMAFORO_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
}
