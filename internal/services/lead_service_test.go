package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

type stubLeadStore struct {
	leads     []*Lead
	delivered []string
}

func (s *stubLeadStore) InsertLead(l *Lead) error {
	cp := *l
	s.leads = append(s.leads, &cp)
	return nil
}

func (s *stubLeadStore) MarkLeadDelivered(id string) error {
	s.delivered = append(s.delivered, id)
	return nil
}

func (s *stubLeadStore) ListLeads() ([]*Lead, error) { return s.leads, nil }

func sampleLead() *Lead {
	return &Lead{
		SessionID:        "s123",
		Name:             "Ana",
		Email:            "ana@example.com",
		UserAgent:        "test-agent",
		TotalScore:       14,
		Stress:           6,
		Mood:             3,
		CognitiveControl: 5,
		ResultLabel:      "yellow",
		SafetyAnswer:     "no",
	}
}

func TestLeadSubmitDeliversFormFields(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		got = r.PostForm
	}))
	defer srv.Close()

	store := &stubLeadStore{}
	svc := NewLeadService(store, srv.URL)
	if err := svc.Submit(sampleLead()); err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"nombre":               "Ana",
		"email":                "ana@example.com",
		"sessionId":            "s123",
		"userAgent":            "test-agent",
		"scoreTotal":           "14",
		"scoreEstres":          "6",
		"scoreAnimo":           "3",
		"scoreConfianza":       "5",
		"resultado":            "yellow",
		"safetyQuestionAnswer": "no",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("form field %s = %q, want %q", k, got.Get(k), v)
		}
	}
	if got.Get("timestamp") == "" {
		t.Error("timestamp missing")
	}
	if len(store.delivered) != 1 {
		t.Errorf("lead not marked delivered: %v", store.delivered)
	}
}

func TestLeadSubmitSurvivesWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &stubLeadStore{}
	svc := NewLeadService(store, srv.URL)
	if err := svc.Submit(sampleLead()); err != nil {
		t.Fatalf("webhook failure must not propagate: %v", err)
	}
	if len(store.leads) != 1 {
		t.Error("lead not stored locally")
	}
	if len(store.delivered) != 0 {
		t.Error("failed delivery must not be marked delivered")
	}
}

func TestLeadSubmitWithoutWebhook(t *testing.T) {
	store := &stubLeadStore{}
	svc := NewLeadService(store, "")
	if err := svc.Submit(sampleLead()); err != nil {
		t.Fatal(err)
	}
	if len(store.leads) != 1 || len(store.delivered) != 0 {
		t.Errorf("leads=%d delivered=%d", len(store.leads), len(store.delivered))
	}
}

func TestLeadSubmitFillsDefaults(t *testing.T) {
	store := &stubLeadStore{}
	svc := NewLeadService(store, "")
	lead := sampleLead()
	if err := svc.Submit(lead); err != nil {
		t.Fatal(err)
	}
	if lead.ID == "" {
		t.Error("id not assigned")
	}
	if lead.SubmittedAt.IsZero() || time.Since(lead.SubmittedAt) > time.Minute {
		t.Errorf("submitted at not set: %v", lead.SubmittedAt)
	}
	if err := svc.Submit(nil); err == nil {
		t.Error("nil lead must be rejected")
	}
}
