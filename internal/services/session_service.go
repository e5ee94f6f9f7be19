package services

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Session is the explicit per-attempt state object: current question index and
// accumulated answers. It is owned by exactly one questionnaire attempt and is
// never shared across attempts.
type Session struct {
	ID           string
	Name         string
	Email        string
	UserAgent    string
	Index        int
	Answers      map[int]int // question id -> latest raw value (upsert)
	Completed    bool
	SafetyFlag   bool
	SafetyAnswer string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Screening is the persisted outcome of a completed session: the one-shot log
// row the rest of the system reads.
type Screening struct {
	SessionID        string
	TotalScore       int
	Stress           int
	Mood             int
	CognitiveControl int
	Band             Band
	EffectiveBand    Band
	SafetyAlert      bool
	Priority         string
	Recommendation   string
	TriageType       string
	CreatedAt        time.Time
}

// SessionStore abstracts persistence for the session workflow. UpsertAnswer
// keeps the per-answer trail that analytics and exports read; last write per
// (session, question) wins.
type SessionStore interface {
	InsertSession(s *Session) error
	GetSession(id string) (*Session, error)
	UpdateSession(s *Session) error
	UpsertAnswer(row *AnswerRow) error
	InsertScreening(sc *Screening) error
	GetScreening(sessionID string) (*Screening, error)
}

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted rejects answers and navigation after completion.
	ErrSessionCompleted = errors.New("session already completed")
)

// SessionService drives a questionnaire attempt: answer upserts, linear
// navigation and finalization into a Screening.
type SessionService struct {
	store   SessionStore
	catalog *Catalog
	now     func() time.Time
	idGen   func() string
}

func NewSessionService(store SessionStore, catalog *Catalog) *SessionService {
	return &SessionService{
		store:   store,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
		idGen:   func() string { return "s" + shortID(12) },
	}
}

// Open starts a fresh session. Name and email are optional lead-capture
// fields collected by the welcome screen.
func (s *SessionService) Open(name, email, userAgent string) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        s.idGen(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		UserAgent: userAgent,
		Answers:   map[int]int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertSession(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) Get(id string) (*Session, error) {
	sess, err := s.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Answer records a value for a question, replacing any prior answer for the
// same id. It does not advance the index; navigation is a separate call.
func (s *SessionService) Answer(sessionID string, questionID, value int) (*Session, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Completed {
		return nil, ErrSessionCompleted
	}
	if _, ok := s.catalog.ByID(questionID); !ok {
		return nil, NewNotFoundError("question not found")
	}
	if value < 0 || value > MaxAnswerValue {
		return nil, ErrInvalidAnswerValue
	}
	if sess.Answers == nil {
		sess.Answers = map[int]int{}
	}
	now := s.now()
	sess.Answers[questionID] = value
	sess.UpdatedAt = now
	if err := s.store.UpdateSession(sess); err != nil {
		return nil, err
	}
	row := &AnswerRow{
		SessionID:   sess.ID,
		QuestionID:  questionID,
		RawValue:    value,
		SubmittedAt: now.Format(time.RFC3339),
	}
	if err := s.store.UpsertAnswer(row); err != nil {
		return nil, err
	}
	return sess, nil
}

// Next advances the question index, stopping at the last question.
func (s *SessionService) Next(sessionID string) (*Session, error) {
	return s.move(sessionID, 1)
}

// Previous moves the question index back, stopping at the first question.
func (s *SessionService) Previous(sessionID string) (*Session, error) {
	return s.move(sessionID, -1)
}

func (s *SessionService) move(sessionID string, delta int) (*Session, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Completed {
		return nil, ErrSessionCompleted
	}
	idx := sess.Index + delta
	if idx < 0 {
		idx = 0
	}
	if max := s.catalog.Len() - 1; idx > max {
		idx = max
	}
	if idx != sess.Index {
		sess.Index = idx
		sess.UpdatedAt = s.now()
		if err := s.store.UpdateSession(sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// AnswerSet returns the session's answers as a slice ordered by question id,
// the shape the scoring engine consumes.
func (sess *Session) AnswerSet() []Answer {
	ids := make([]int, 0, len(sess.Answers))
	for id := range sess.Answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Answer, 0, len(ids))
	for _, id := range ids {
		out = append(out, Answer{QuestionID: id, Value: sess.Answers[id]})
	}
	return out
}

// Complete consumes the answer set, scores it and persists the Screening.
// Completing twice returns the stored result without rescoring.
func (s *SessionService) Complete(sessionID string, safetyFlag bool, safetyAnswer string) (*Result, *Session, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Completed {
		res, err := s.Result(sessionID)
		return res, sess, err
	}
	res, err := Score(s.catalog, sess.AnswerSet(), safetyFlag)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	sess.Completed = true
	sess.SafetyFlag = safetyFlag
	sess.SafetyAnswer = safetyAnswer
	sess.UpdatedAt = now
	if err := s.store.UpdateSession(sess); err != nil {
		return nil, nil, err
	}
	sc := &Screening{
		SessionID:        sess.ID,
		TotalScore:       res.TotalScore,
		Stress:           res.CategoryScores.Stress,
		Mood:             res.CategoryScores.Mood,
		CognitiveControl: res.CategoryScores.CognitiveControl,
		Band:             res.Band,
		EffectiveBand:    res.EffectiveBand,
		SafetyAlert:      res.SafetyAlert,
		Priority:         res.Triage.Priority,
		Recommendation:   res.Triage.Recommendation,
		TriageType:       res.Triage.Type,
		CreatedAt:        now,
	}
	if err := s.store.InsertScreening(sc); err != nil {
		return nil, nil, err
	}
	return res, sess, nil
}

// Result reconstructs the Result of a completed session from its Screening.
func (s *SessionService) Result(sessionID string) (*Result, error) {
	sc, err := s.store.GetScreening(sessionID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, NewNotFoundError("result not available")
	}
	return &Result{
		TotalScore: sc.TotalScore,
		CategoryScores: CategoryScores{
			Stress:           sc.Stress,
			Mood:             sc.Mood,
			CognitiveControl: sc.CognitiveControl,
		},
		Band:          sc.Band,
		EffectiveBand: sc.EffectiveBand,
		SafetyAlert:   sc.SafetyAlert,
		Triage:        Triage{Priority: sc.Priority, Recommendation: sc.Recommendation, Type: sc.TriageType},
	}, nil
}

// DetailedAnswers joins a session's answers with their catalog entries for
// the narrative generator.
func (s *SessionService) DetailedAnswers(sess *Session) []DetailedAnswer {
	out := make([]DetailedAnswer, 0, len(sess.Answers))
	for _, a := range sess.AnswerSet() {
		q, ok := s.catalog.ByID(a.QuestionID)
		if !ok {
			continue
		}
		out = append(out, DetailedAnswer{
			QuestionID: q.ID,
			Stem:       q.Stem("es"),
			Category:   q.Category,
			Value:      a.Value,
			Reversed:   q.Reversed,
		})
	}
	return out
}
