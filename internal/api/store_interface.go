package api

import (
	"time"

	"github.com/animovital/semaforo/internal/services"
)

// Store aggregates the persistence surface the router wires into services.
// Both the in-memory store and the SQLite store satisfy it.
type Store interface {
	services.SessionStore
	services.LeadStore
	services.AnalyticsStore
	services.AuthStore

	// DeleteExpiredSessions removes sessions that were opened before cutoff
	// and never completed, together with their answers. Returns the number
	// of sessions removed.
	DeleteExpiredSessions(cutoff time.Time) (int, error)
}

var _ Store = (*memoryStore)(nil)
