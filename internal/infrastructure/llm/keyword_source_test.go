package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
)

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func sourceFor(server *httptest.Server) *KeywordSource {
	src := NewKeywordSource(config.KeywordGenConfig{
		Endpoint: server.URL,
		Model:    "test-model",
		APIKey:   "key",
	})
	src.httpClient = server.Client()
	return src
}

func TestGenerateKeywordsParsesValidSet(t *testing.T) {
	t.Parallel()

	content := `{
		"society": [{"keyword": "복지", "type": "GENERAL"}],
		"economy": [{"keyword": "금리", "type": "GENERAL"}],
		"politics": [{"keyword": "국회", "type": "GENERAL"}],
		"culture": [{"keyword": "영화", "type": "GENERAL"}],
		"it": [{"keyword": "반도체", "type": "URGENT"}]
	}`

	var gotRequest map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)
		_, _ = w.Write([]byte(completionResponse(content)))
	}))
	defer server.Close()

	src := sourceFor(server)
	date := time.Date(2025, time.July, 29, 0, 0, 0, 0, time.UTC)
	set, err := src.GenerateKeywords(context.Background(), date, []string{"경제"}, []string{"정치"})
	if err != nil {
		t.Fatalf("GenerateKeywords: %v", err)
	}

	if len(set.IT) != 1 || set.IT[0].Text != "반도체" || set.IT[0].Type != domain.KeywordUrgent {
		t.Fatalf("unexpected IT keywords: %+v", set.IT)
	}
	if len(set.Economy) != 1 || set.Economy[0].Text != "금리" {
		t.Fatalf("unexpected economy keywords: %+v", set.Economy)
	}

	messages, ok := gotRequest["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", gotRequest["messages"])
	}
}

func TestGenerateKeywordsRejectsMissingCategory(t *testing.T) {
	t.Parallel()

	content := `{
		"society": [{"keyword": "복지"}],
		"economy": [{"keyword": "금리"}],
		"politics": [{"keyword": "국회"}],
		"culture": [{"keyword": "영화"}],
		"it": []
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse(content)))
	}))
	defer server.Close()

	src := sourceFor(server)
	if _, err := src.GenerateKeywords(context.Background(), time.Now(), nil, nil); err == nil {
		t.Fatal("expected schema violation error for empty category")
	}
}

func TestGenerateKeywordsRejectsMalformedContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse("I cannot answer in JSON")))
	}))
	defer server.Close()

	src := sourceFor(server)
	if _, err := src.GenerateKeywords(context.Background(), time.Now(), nil, nil); err == nil {
		t.Fatal("expected parse error for non-JSON content")
	}
}

func TestGenerateKeywordsUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := sourceFor(server)
	if _, err := src.GenerateKeywords(context.Background(), time.Now(), nil, nil); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
