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
	if v := os.Getenv("CLIMA_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

// The target server must run with CLIMA_DASHBOARD_PASSWORD set to the value
// of CLIMA_TEST_DASHBOARD_PASSWORD (default "integration").
func dashboardPassword() string {
	if v := os.Getenv("CLIMA_TEST_DASHBOARD_PASSWORD"); v != "" {
		return v
	}
	return "integration"
}

func TestSurveyJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	var questionsResp struct {
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	doRequest(t, client, http.MethodGet, base+"/api/questions?lang=pt", "", nil, &questionsResp)
	if len(questionsResp.Questions) == 0 {
		t.Fatalf("questionnaire is empty")
	}
	ratings := map[string]int{}
	for _, q := range questionsResp.Questions {
		ratings[q.ID] = 4
	}

	marker := fmt.Sprintf("integration %d", time.Now().UnixNano())
	var submitResp struct {
		Response struct {
			ID string `json:"id"`
		} `json:"response"`
		Persisted bool `json:"persisted"`
	}
	doRequest(t, client, http.MethodPost, base+"/api/responses", "", map[string]any{
		"ratings":     ratings,
		"improvement": marker,
		"goodPoints":  "",
	}, &submitResp)
	if submitResp.Response.ID == "" || !submitResp.Persisted {
		t.Fatalf("unexpected submit response: %+v", submitResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doRequest(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": dashboardPassword(),
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var summary struct {
		TotalResponses int `json:"total_responses"`
		Recent         []struct {
			ID string `json:"id"`
		} `json:"recent"`
	}
	doRequest(t, client, http.MethodGet, base+"/api/dashboard", token, nil, &summary)
	if summary.TotalResponses == 0 || len(summary.Recent) == 0 || summary.Recent[0].ID != submitResp.Response.ID {
		t.Fatalf("dashboard does not show the new response first: %+v", summary)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/api/export?format=wide", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("export status %d body %s", resp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	if !strings.Contains(string(csvData), marker) {
		t.Fatalf("export csv did not contain the submitted comment; csv=%s", csvData)
	}
}

func doRequest(t *testing.T, client *http.Client, method, url, token string, body any, out any) {
	t.Helper()
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
