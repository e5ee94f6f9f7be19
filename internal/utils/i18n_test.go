package utils

import "testing"

func TestT(t *testing.T) {
	if got := T("en", "session.not_found"); got != "session not found" {
		t.Errorf("got %q", got)
	}
	if got := T("fr", "session.not_found"); got != "sesión no encontrada" {
		t.Errorf("fallback to spanish: got %q", got)
	}
	if got := T("es", "missing.key"); got != "missing.key" {
		t.Errorf("unknown key returns key: got %q", got)
	}
}
