package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/animovital/semaforo/internal/middleware"
	"github.com/animovital/semaforo/internal/services"
	"github.com/animovital/semaforo/internal/utils"
)

// Router owns the HTTP surface and the service wiring behind it.
type Router struct {
	store     Store
	catalog   *services.Catalog
	sessions  *services.SessionService
	leads     *services.LeadService
	analytics *services.AnalyticsService
	auth      *services.AuthService
	narrator  services.NarrativeGenerator
	limiter   *middleware.RateLimiter
}

// Config carries the environment-derived knobs the router needs.
type Config struct {
	LeadWebhookURL string
	GeminiAPIKey   string
}

func NewRouter(store Store, cfg Config) *Router {
	catalog := services.DefaultCatalog()
	var narrator services.NarrativeGenerator
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		narrator = services.NewGeminiNarrator(cfg.GeminiAPIKey)
	}
	return &Router{
		store:     store,
		catalog:   catalog,
		sessions:  services.NewSessionService(store, catalog),
		leads:     services.NewLeadService(store, cfg.LeadWebhookURL),
		analytics: services.NewAnalyticsService(store, catalog),
		auth:      services.NewAuthService(store, middleware.SignToken),
		narrator:  narrator,
		limiter:   middleware.NewRateLimiter(10, 30),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questions", rt.handleQuestions)
	mux.Handle("/api/sessions", rt.limiter.Wrap(http.HandlerFunc(rt.handleSessions)))
	mux.Handle("/api/sessions/", rt.limiter.Wrap(http.HandlerFunc(rt.handleSessionScoped)))
	mux.HandleFunc("/api/auth/register", rt.handleRegister)
	mux.HandleFunc("/api/auth/login", rt.handleLogin)
	mux.Handle("/api/admin/analytics", middleware.RequireAuth(http.HandlerFunc(rt.handleAnalytics)))
	mux.Handle("/api/admin/export", middleware.RequireAuth(http.HandlerFunc(rt.handleExport)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. The session-not-found
// message is the one envelope string users actually see, so it is localized.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		locale := middleware.LocaleFromContext(r.Context())
		http.Error(w, utils.T(locale, "session.not_found"), http.StatusNotFound)
	case errors.Is(err, services.ErrSessionCompleted):
		http.Error(w, "session already completed", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidAnswerValue):
		http.Error(w, "answer value must be between 0 and 3", http.StatusBadRequest)
	case errors.Is(err, services.ErrScoreOutOfRange):
		http.Error(w, "score out of range", http.StatusInternalServerError)
	default:
		if se, ok := services.AsServiceError(err); ok {
			switch se.Code {
			case services.ErrorInvalid:
				http.Error(w, se.Message, http.StatusBadRequest)
			case services.ErrorNotFound:
				http.Error(w, se.Message, http.StatusNotFound)
			case services.ErrorConflict:
				http.Error(w, se.Message, http.StatusConflict)
			case services.ErrorUnauthorized:
				http.Error(w, se.Message, http.StatusUnauthorized)
			case services.ErrorForbidden:
				http.Error(w, se.Message, http.StatusForbidden)
			case services.ErrorTooManyRequests:
				http.Error(w, se.Message, http.StatusTooManyRequests)
			default:
				http.Error(w, se.Message, http.StatusInternalServerError)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /api/questions?lang=xx
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	type outQuestion struct {
		ID       int               `json:"id"`
		Stem     string            `json:"stem"`
		Category services.Category `json:"category"`
	}
	questions := rt.catalog.All()
	out := make([]outQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, outQuestion{ID: q.ID, Stem: q.Stem(locale), Category: q.Category})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":     out,
		"answer_labels": services.AnswerOptionLabels(locale),
	})
}

// POST /api/sessions opens a questionnaire attempt.
func (rt *Router) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	}
	sess, err := rt.sessions.Open(req.Name, req.Email, r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.sessionView(sess))
}

// Session sub-routes:
//
//	GET  /api/sessions/{id}
//	POST /api/sessions/{id}/answers
//	POST /api/sessions/{id}/next
//	POST /api/sessions/{id}/previous
//	POST /api/sessions/{id}/complete
//	GET  /api/sessions/{id}/result
func (rt *Router) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		rt.handleSessionGet(w, r, id)
	case action == "answers" && r.Method == http.MethodPost:
		rt.handleAnswer(w, r, id)
	case action == "next" && r.Method == http.MethodPost:
		rt.handleMove(w, r, id, rt.sessions.Next)
	case action == "previous" && r.Method == http.MethodPost:
		rt.handleMove(w, r, id, rt.sessions.Previous)
	case action == "complete" && r.Method == http.MethodPost:
		rt.handleComplete(w, r, id)
	case action == "result" && r.Method == http.MethodGet:
		rt.handleResult(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type sessionView struct {
	SessionID      string `json:"session_id"`
	Index          int    `json:"index"`
	TotalQuestions int    `json:"total_questions"`
	Answered       int    `json:"answered"`
	Completed      bool   `json:"completed"`
	CurrentID      int    `json:"current_question_id,omitempty"`
	CurrentAnswer  *int   `json:"current_answer,omitempty"`
}

func (rt *Router) sessionView(sess *services.Session) sessionView {
	v := sessionView{
		SessionID:      sess.ID,
		Index:          sess.Index,
		TotalQuestions: rt.catalog.Len(),
		Answered:       len(sess.Answers),
		Completed:      sess.Completed,
	}
	questions := rt.catalog.All()
	if sess.Index >= 0 && sess.Index < len(questions) {
		q := questions[sess.Index]
		v.CurrentID = q.ID
		if val, ok := sess.Answers[q.ID]; ok {
			av := val
			v.CurrentAnswer = &av
		}
	}
	return v
}

func (rt *Router) handleSessionGet(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := rt.sessions.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.sessionView(sess))
}

func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		QuestionID int `json:"question_id"`
		Value      int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := rt.sessions.Answer(id, req.QuestionID, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.sessionView(sess))
}

func (rt *Router) handleMove(w http.ResponseWriter, r *http.Request, id string, move func(string) (*services.Session, error)) {
	sess, err := move(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.sessionView(sess))
}

type resultView struct {
	SessionID string `json:"session_id"`
	*services.Result
	Narrative       *services.Narrative `json:"narrative,omitempty"`
	NarrativeSource string              `json:"narrative_source,omitempty"`
}

func (rt *Router) handleComplete(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		SafetyFlag   bool   `json:"safety_flag"`
		SafetyAnswer string `json:"safety_answer"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	res, sess, err := rt.sessions.Complete(id, req.SafetyFlag, req.SafetyAnswer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, qid := range res.UnknownQuestionIDs {
		log.Printf("api: session %s carried unknown question id %d", id, qid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()
	narrative, source := services.GenerateWithFallback(ctx, rt.narrator, services.NarrativeRequest{
		Answers: rt.sessions.DetailedAnswers(sess),
		Scores:  res.CategoryScores,
		Band:    res.EffectiveBand,
		Name:    sess.Name,
	})

	// Lead capture is best-effort and must never delay the result.
	if sess.Email != "" {
		lead := &services.Lead{
			SessionID:        sess.ID,
			Name:             sess.Name,
			Email:            sess.Email,
			UserAgent:        sess.UserAgent,
			TotalScore:       res.TotalScore,
			Stress:           res.CategoryScores.Stress,
			Mood:             res.CategoryScores.Mood,
			CognitiveControl: res.CategoryScores.CognitiveControl,
			ResultLabel:      string(res.EffectiveBand),
			SafetyAnswer:     sess.SafetyAnswer,
		}
		go func() {
			if err := rt.leads.Submit(lead); err != nil {
				log.Printf("api: lead submission for %s: %v", sess.ID, err)
			}
		}()
	}

	writeJSON(w, http.StatusOK, resultView{
		SessionID:       sess.ID,
		Result:          res,
		Narrative:       narrative,
		NarrativeSource: source,
	})
}

func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request, id string) {
	res, err := rt.sessions.Result(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultView{SessionID: id, Result: res})
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID})
}

// GET /api/admin/analytics
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	summary, err := rt.analytics.Summary()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/admin/export?format=long|summary
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "summary"
	}
	switch format {
	case "long":
		rows, err := rt.store.ListAnswerRows()
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, err := services.ExportLongCSV(rt.catalog, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=answers_long.csv")
		_, _ = w.Write(b)
	case "summary":
		screenings, err := rt.store.ListScreenings()
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, err := services.ExportSummaryCSV(screenings)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=screenings_summary.csv")
		_, _ = w.Write(b)
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}
