package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// KeywordSource implements ports.KeywordSource backed by OpenAI-compatible
// chat-completion APIs. The model is asked for a strict JSON keyword set; any
// schema violation surfaces as an error so the caller can fall back.
type KeywordSource struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.KeywordSource = (*KeywordSource)(nil)

// NewKeywordSource builds a client from configuration.
func NewKeywordSource(cfg config.KeywordGenConfig) *KeywordSource {
	return &KeywordSource{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// GenerateKeywords requests a fresh keyword set for date, avoiding recent
// keywords and never repeating excluded ones.
func (s *KeywordSource) GenerateKeywords(ctx context.Context, date time.Time, recent, excluded []string) (domain.KeywordSet, error) {
	if s.apiKey == "" || s.endpoint == "" || s.model == "" {
		return domain.KeywordSet{}, fmt.Errorf("keyword source misconfigured")
	}

	userPayload, err := json.Marshal(map[string]any{
		"date":            date.Format("2006-01-02"),
		"recentKeywords":  emptyIfNil(recent),
		"excludeKeywords": emptyIfNil(excluded),
	})
	if err != nil {
		return domain.KeywordSet{}, fmt.Errorf("marshal generation request: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(s.systemPrompt)},
			{"role": "user", "content": string(userPayload)},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return domain.KeywordSet{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.KeywordSet{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.KeywordSet{}, fmt.Errorf("request generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.KeywordSet{}, fmt.Errorf("generation error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return domain.KeywordSet{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return domain.KeywordSet{}, fmt.Errorf("completion has no choices")
	}

	return parseKeywordSet(completion.Choices[0].Message.Content)
}

type keywordPayload struct {
	Keyword string `json:"keyword"`
	Type    string `json:"type"`
}

type keywordSetPayload struct {
	Society  []keywordPayload `json:"society"`
	Economy  []keywordPayload `json:"economy"`
	Politics []keywordPayload `json:"politics"`
	Culture  []keywordPayload `json:"culture"`
	IT       []keywordPayload `json:"it"`
}

// parseKeywordSet validates the model output against the fixed five-category
// schema. Every category must carry at least one keyword.
func parseKeywordSet(content string) (domain.KeywordSet, error) {
	var payload keywordSetPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return domain.KeywordSet{}, fmt.Errorf("parse keyword set: %w", err)
	}

	categories := map[string][]keywordPayload{
		"society":  payload.Society,
		"economy":  payload.Economy,
		"politics": payload.Politics,
		"culture":  payload.Culture,
		"it":       payload.IT,
	}
	for name, keywords := range categories {
		if len(keywords) == 0 {
			return domain.KeywordSet{}, fmt.Errorf("keyword set missing category %s", name)
		}
		for _, kw := range keywords {
			if strings.TrimSpace(kw.Keyword) == "" {
				return domain.KeywordSet{}, fmt.Errorf("empty keyword in category %s", name)
			}
		}
	}

	return domain.KeywordSet{
		Society:  toKeywords(payload.Society),
		Economy:  toKeywords(payload.Economy),
		Politics: toKeywords(payload.Politics),
		Culture:  toKeywords(payload.Culture),
		IT:       toKeywords(payload.IT),
	}, nil
}

func toKeywords(payload []keywordPayload) []domain.Keyword {
	out := make([]domain.Keyword, 0, len(payload))
	for _, kw := range payload {
		kwType := domain.KeywordType(strings.ToUpper(strings.TrimSpace(kw.Type)))
		if kwType != domain.KeywordUrgent {
			kwType = domain.KeywordGeneral
		}
		out = append(out, domain.Keyword{Text: strings.TrimSpace(kw.Keyword), Type: kwType})
	}
	return out
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You generate daily Korean news search keywords as a JSON object with society, economy, politics, culture and it arrays of {keyword, type}."
	}
	return prompt
}
