package db

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/animovital/semaforo/internal/services"
)

// SQLiteStore is the durable Store backed by a single SQLite file. It is used
// whenever a database path is configured; development and tests default to
// the in-memory store.
type SQLiteStore struct {
	conn *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent requests.
	conn.SetMaxOpenConns(1)
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

func (s *SQLiteStore) InsertSession(sess *services.Session) error {
	_, err := s.conn.Exec(
		`INSERT INTO sessions (id, name, email, user_agent, idx, completed, safety_flag, safety_answer, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Email, sess.UserAgent, sess.Index,
		boolToInt(sess.Completed), boolToInt(sess.SafetyFlag), sess.SafetyAnswer,
		sess.CreatedAt, sess.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) GetSession(id string) (*services.Session, error) {
	row := s.conn.QueryRow(
		`SELECT id, name, email, user_agent, idx, completed, safety_flag, safety_answer, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	sess := &services.Session{}
	var completed, safetyFlag int
	err := row.Scan(&sess.ID, &sess.Name, &sess.Email, &sess.UserAgent, &sess.Index,
		&completed, &safetyFlag, &sess.SafetyAnswer, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Completed = completed != 0
	sess.SafetyFlag = safetyFlag != 0
	sess.Answers, err = s.sessionAnswers(id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStore) sessionAnswers(sessionID string) (map[int]int, error) {
	rows, err := s.conn.Query(`SELECT question_id, raw_value FROM answers WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]int{}
	for rows.Next() {
		var qid, val int
		if err := rows.Scan(&qid, &val); err != nil {
			return nil, err
		}
		out[qid] = val
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateSession(sess *services.Session) error {
	_, err := s.conn.Exec(
		`UPDATE sessions SET name = ?, email = ?, user_agent = ?, idx = ?, completed = ?,
		 safety_flag = ?, safety_answer = ?, updated_at = ? WHERE id = ?`,
		sess.Name, sess.Email, sess.UserAgent, sess.Index, boolToInt(sess.Completed),
		boolToInt(sess.SafetyFlag), sess.SafetyAnswer, sess.UpdatedAt, sess.ID,
	)
	return err
}

func (s *SQLiteStore) UpsertAnswer(row *services.AnswerRow) error {
	_, err := s.conn.Exec(
		`INSERT INTO answers (session_id, question_id, raw_value, submitted_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, question_id) DO UPDATE SET raw_value = excluded.raw_value, submitted_at = excluded.submitted_at`,
		row.SessionID, row.QuestionID, row.RawValue, row.SubmittedAt,
	)
	return err
}

func (s *SQLiteStore) InsertScreening(sc *services.Screening) error {
	_, err := s.conn.Exec(
		`INSERT INTO screenings (session_id, total_score, stress, mood, cognitive_control, band, effective_band, safety_alert, priority, recommendation, triage_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.SessionID, sc.TotalScore, sc.Stress, sc.Mood, sc.CognitiveControl,
		string(sc.Band), string(sc.EffectiveBand), boolToInt(sc.SafetyAlert),
		sc.Priority, sc.Recommendation, sc.TriageType, sc.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) GetScreening(sessionID string) (*services.Screening, error) {
	row := s.conn.QueryRow(
		`SELECT session_id, total_score, stress, mood, cognitive_control, band, effective_band, safety_alert, priority, recommendation, triage_type, created_at
		 FROM screenings WHERE session_id = ?`, sessionID)
	sc, err := scanScreening(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func scanScreening(scan func(dest ...any) error) (*services.Screening, error) {
	sc := &services.Screening{}
	var band, effective string
	var safety int
	err := scan(&sc.SessionID, &sc.TotalScore, &sc.Stress, &sc.Mood, &sc.CognitiveControl,
		&band, &effective, &safety, &sc.Priority, &sc.Recommendation, &sc.TriageType, &sc.CreatedAt)
	if err != nil {
		return nil, err
	}
	sc.Band = services.Band(band)
	sc.EffectiveBand = services.Band(effective)
	sc.SafetyAlert = safety != 0
	return sc, nil
}

func (s *SQLiteStore) ListScreenings() ([]*services.Screening, error) {
	rows, err := s.conn.Query(
		`SELECT session_id, total_score, stress, mood, cognitive_control, band, effective_band, safety_alert, priority, recommendation, triage_type, created_at
		 FROM screenings ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*services.Screening
	for rows.Next() {
		sc, err := scanScreening(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListAnswerRows() ([]*services.AnswerRow, error) {
	rows, err := s.conn.Query(
		`SELECT session_id, question_id, raw_value, submitted_at FROM answers ORDER BY session_id, question_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*services.AnswerRow
	for rows.Next() {
		r := &services.AnswerRow{}
		if err := rows.Scan(&r.SessionID, &r.QuestionID, &r.RawValue, &r.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertLead(l *services.Lead) error {
	_, err := s.conn.Exec(
		`INSERT INTO leads (id, session_id, name, email, user_agent, total_score, stress, mood, cognitive_control, result_label, safety_answer, submitted_at, delivered)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SessionID, l.Name, l.Email, l.UserAgent, l.TotalScore,
		l.Stress, l.Mood, l.CognitiveControl, l.ResultLabel, l.SafetyAnswer,
		l.SubmittedAt, boolToInt(l.Delivered),
	)
	return err
}

func (s *SQLiteStore) MarkLeadDelivered(id string) error {
	_, err := s.conn.Exec(`UPDATE leads SET delivered = 1 WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ListLeads() ([]*services.Lead, error) {
	rows, err := s.conn.Query(
		`SELECT id, session_id, name, email, user_agent, total_score, stress, mood, cognitive_control, result_label, safety_answer, submitted_at, delivered
		 FROM leads ORDER BY submitted_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*services.Lead
	for rows.Next() {
		l := &services.Lead{}
		var delivered int
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Name, &l.Email, &l.UserAgent,
			&l.TotalScore, &l.Stress, &l.Mood, &l.CognitiveControl, &l.ResultLabel,
			&l.SafetyAnswer, &l.SubmittedAt, &delivered); err != nil {
			return nil, err
		}
		l.Delivered = delivered != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.conn.QueryRow(`SELECT id, email, pass_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	u := &services.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQLiteStore) AddUser(u *services.User) error {
	_, err := s.conn.Exec(`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, strings.ToLower(strings.TrimSpace(u.Email)), u.PassHash, u.CreatedAt)
	return err
}

func (s *SQLiteStore) DeleteExpiredSessions(cutoff time.Time) (int, error) {
	res, err := s.conn.Exec(`DELETE FROM sessions WHERE completed = 0 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	if _, err := s.conn.Exec(
		`DELETE FROM answers WHERE session_id NOT IN (SELECT id FROM sessions)`); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
