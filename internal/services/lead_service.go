package services

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Lead is the captured contact row for a completed screening. It is logged
// locally and forwarded to the configured spreadsheet webhook.
type Lead struct {
	ID               string
	SessionID        string
	Name             string
	Email            string
	UserAgent        string
	TotalScore       int
	Stress           int
	Mood             int
	CognitiveControl int
	ResultLabel      string
	SafetyAnswer     string
	SubmittedAt      time.Time
	Delivered        bool
}

// LeadStore persists lead rows and delivery outcomes.
type LeadStore interface {
	InsertLead(l *Lead) error
	MarkLeadDelivered(id string) error
	ListLeads() ([]*Lead, error)
}

// LeadService records leads and forwards them to an external webhook as a
// form POST. Delivery is best-effort: failures are logged, never retried, and
// never propagate to the caller's result rendering.
type LeadService struct {
	store      LeadStore
	webhookURL string
	client     *http.Client
	now        func() time.Time
	idGen      func() string
}

func NewLeadService(store LeadStore, webhookURL string) *LeadService {
	return &LeadService{
		store:      store,
		webhookURL: strings.TrimSpace(webhookURL),
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        func() time.Time { return time.Now().UTC() },
		idGen:      func() string { return "l" + shortID(12) },
	}
}

// Submit stores the lead and fires the webhook. The returned error covers
// local persistence only; webhook failures are swallowed after logging.
func (s *LeadService) Submit(lead *Lead) error {
	if lead == nil {
		return NewInvalidError("lead required")
	}
	if lead.ID == "" {
		lead.ID = s.idGen()
	}
	if lead.SubmittedAt.IsZero() {
		lead.SubmittedAt = s.now()
	}
	if err := s.store.InsertLead(lead); err != nil {
		return err
	}
	if s.webhookURL == "" {
		log.Printf("lead service: webhook not configured, lead %s stored locally only", lead.ID)
		return nil
	}
	if err := s.deliver(lead); err != nil {
		log.Printf("lead service: webhook delivery failed for %s: %v", lead.ID, err)
		return nil
	}
	if err := s.store.MarkLeadDelivered(lead.ID); err != nil {
		log.Printf("lead service: mark delivered %s: %v", lead.ID, err)
	}
	return nil
}

func (s *LeadService) deliver(lead *Lead) error {
	form := url.Values{}
	form.Set("timestamp", lead.SubmittedAt.Format(time.RFC3339))
	form.Set("nombre", lead.Name)
	form.Set("email", lead.Email)
	form.Set("sessionId", lead.SessionID)
	form.Set("userAgent", lead.UserAgent)
	form.Set("scoreTotal", strconv.Itoa(lead.TotalScore))
	form.Set("scoreEstres", strconv.Itoa(lead.Stress))
	form.Set("scoreAnimo", strconv.Itoa(lead.Mood))
	form.Set("scoreConfianza", strconv.Itoa(lead.CognitiveControl))
	if lead.ResultLabel != "" {
		form.Set("resultado", lead.ResultLabel)
	}
	form.Set("safetyQuestionAnswer", lead.SafetyAnswer)

	resp, err := s.client.PostForm(s.webhookURL, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
