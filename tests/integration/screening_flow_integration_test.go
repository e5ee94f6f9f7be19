//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("SEMAFORO_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:8080"
}

func doPost(t *testing.T, client *http.Client, url, token string, body, out any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST %s: status %d body %s", url, resp.StatusCode, payload)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d body %s", url, resp.StatusCode, payload)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScreeningJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	var questions struct {
		Questions []struct {
			ID int `json:"id"`
		} `json:"questions"`
	}
	doGet(t, client, base+"/api/questions", "", &questions)
	if len(questions.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions.Questions))
	}

	var sess struct {
		SessionID string `json:"session_id"`
	}
	doPost(t, client, base+"/api/sessions", "", map[string]string{
		"name":  "Integration",
		"email": fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano()),
	}, &sess)
	if sess.SessionID == "" {
		t.Fatal("no session id returned")
	}

	values := []int{2, 2, 2, 1, 1, 1, 1, 1, 1, 1}
	for i, v := range values {
		doPost(t, client, base+"/api/sessions/"+sess.SessionID+"/answers", "", map[string]int{
			"question_id": questions.Questions[i].ID,
			"value":       v,
		}, nil)
		doPost(t, client, base+"/api/sessions/"+sess.SessionID+"/next", "", nil, nil)
	}

	var result struct {
		TotalScore    int    `json:"total_score"`
		Band          string `json:"band"`
		EffectiveBand string `json:"effective_band"`
		Narrative     struct {
			Interpretation string `json:"interpretation"`
		} `json:"narrative"`
	}
	doPost(t, client, base+"/api/sessions/"+sess.SessionID+"/complete", "", map[string]any{
		"safety_flag": false,
	}, &result)
	if result.TotalScore != 14 || result.Band != "yellow" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Narrative.Interpretation == "" {
		t.Error("no narrative returned")
	}

	adminEmail := fmt.Sprintf("admin_%d@example.com", time.Now().UnixNano())
	var auth struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]string{
		"email":    adminEmail,
		"password": "Secret123!",
	}, &auth)
	if auth.Token == "" {
		t.Fatal("register did not return token")
	}

	var summary struct {
		TotalScreenings int `json:"total_screenings"`
	}
	doGet(t, client, base+"/api/admin/analytics", auth.Token, &summary)
	if summary.TotalScreenings < 1 {
		t.Errorf("analytics missing the completed screening: %+v", summary)
	}
}
