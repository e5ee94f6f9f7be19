package api

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/animovital/semaforo/internal/services"
)

// memoryStore is the in-process Store used in development and tests.
type memoryStore struct {
	mu           sync.RWMutex
	sessions     map[string]*services.Session
	answers      map[string]map[int]*services.AnswerRow
	screenings   map[string]*services.Screening
	leads        map[string]*services.Lead
	usersByEmail map[string]*services.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions:     map[string]*services.Session{},
		answers:      map[string]map[int]*services.AnswerRow{},
		screenings:   map[string]*services.Screening{},
		leads:        map[string]*services.Lead{},
		usersByEmail: map[string]*services.User{},
	}
}

func cloneSession(s *services.Session) *services.Session {
	cp := *s
	cp.Answers = make(map[int]int, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

func (m *memoryStore) InsertSession(s *services.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *memoryStore) GetSession(id string) (*services.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *memoryStore) UpdateSession(s *services.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *memoryStore) UpsertAnswer(row *services.AnswerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answers[row.SessionID] == nil {
		m.answers[row.SessionID] = map[int]*services.AnswerRow{}
	}
	cp := *row
	m.answers[row.SessionID][row.QuestionID] = &cp
	return nil
}

func (m *memoryStore) InsertScreening(sc *services.Screening) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	m.screenings[sc.SessionID] = &cp
	return nil
}

func (m *memoryStore) GetScreening(sessionID string) (*services.Screening, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.screenings[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

func (m *memoryStore) InsertLead(l *services.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.leads[l.ID] = &cp
	return nil
}

func (m *memoryStore) MarkLeadDelivered(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leads[id]; ok {
		l.Delivered = true
	}
	return nil
}

func (m *memoryStore) ListLeads() ([]*services.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*services.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (m *memoryStore) ListScreenings() ([]*services.Screening, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*services.Screening, 0, len(m.screenings))
	for _, sc := range m.screenings {
		cp := *sc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) ListAnswerRows() ([]*services.AnswerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*services.AnswerRow
	for _, rows := range m.answers {
		for _, r := range rows {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionID == out[j].SessionID {
			return out[i].QuestionID < out[j].QuestionID
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

func (m *memoryStore) FindUserByEmail(email string) (*services.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) AddUser(u *services.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.usersByEmail[strings.ToLower(u.Email)] = &cp
	return nil
}

func (m *memoryStore) DeleteExpiredSessions(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if !s.Completed && s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.answers, id)
			removed++
		}
	}
	return removed, nil
}

// NewMemoryStore exposes the in-memory store for main and tests.
func NewMemoryStore() Store { return newMemoryStore() }
