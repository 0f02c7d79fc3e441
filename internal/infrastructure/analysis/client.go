package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// Client talks to the external content-analysis service that filters and
// scores candidate articles. Only the contract lives here; the heuristics are
// the collaborator's business.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Scorer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type candidatePayload struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	MediaName   string `json:"mediaName"`
}

type scoredPayload struct {
	Index    int    `json:"index"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// ScoreAndFilter submits the candidates and maps the response back onto them.
// Candidates the service drops are simply absent from the result; entries
// referencing an unknown index are ignored.
func (c *Client) ScoreAndFilter(ctx context.Context, candidates []domain.CandidateArticle) ([]domain.ScoredArticle, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	payload := make([]candidatePayload, len(candidates))
	for i, candidate := range candidates {
		payload[i] = candidatePayload{
			Index:       i,
			Title:       candidate.Meta.Title,
			Description: candidate.Meta.Description,
			Content:     candidate.Detail.Content,
			MediaName:   candidate.Detail.MediaName,
		}
	}

	var response struct {
		Articles []scoredPayload `json:"articles"`
	}
	if err := c.post(ctx, "/analyze", map[string]any{"articles": payload}, &response); err != nil {
		return nil, fmt.Errorf("analyze articles: %w", err)
	}

	scored := make([]domain.ScoredArticle, 0, len(response.Articles))
	for _, entry := range response.Articles {
		if entry.Index < 0 || entry.Index >= len(candidates) {
			continue
		}
		scored = append(scored, domain.ScoredArticle{
			Article:  candidates[entry.Index],
			Score:    entry.Score,
			Category: domain.NewsCategory(entry.Category),
		})
	}
	return scored, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
