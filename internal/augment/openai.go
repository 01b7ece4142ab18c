package augment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// openAISuggestor implements the Suggestor interface against the OpenAI
// chat completions API.
type openAISuggestor struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewOpenAISuggestor creates an OpenAI-backed suggestor.
func NewOpenAISuggestor(cfg Config) (Suggestor, error) {
	if cfg.APIKey == "" {
		return nil, errors.AugmentationError(errors.CodeCapabilityUnavailable, "openai", nil)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	return &openAISuggestor{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

const systemPrompt = "You are a rent payment reconciliation assistant. " +
	"You MUST respond with ONLY a valid JSON array of suggestion objects. " +
	"Do not include any explanatory text, markdown formatting, or commentary " +
	"before or after the JSON. Start your response directly with [ and end with ]."

// Suggest sends the unmatched transactions and open obligations to the model
// and parses its suggestions.
func (s *openAISuggestor) Suggest(
	ctx context.Context,
	transactions []*models.Transaction,
	obligations []*models.Obligation,
) ([]*models.MatchSuggestion, error) {
	prompt, err := s.buildPrompt(transactions, obligations)
	if err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err)
	}

	requestBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": s.temperature,
		"max_tokens":  s.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.AugmentationError(errors.CodeTimeout, "openai", err)
		}
		return nil, errors.AugmentationError(errors.CodeCapabilityUnavailable, "openai", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err)
	}

	if len(apiResponse.Choices) == 0 {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai",
			fmt.Errorf("response contained no choices"))
	}

	return parseSuggestions(apiResponse.Choices[0].Message.Content)
}

func (s *openAISuggestor) buildPrompt(
	transactions []*models.Transaction,
	obligations []*models.Obligation,
) (string, error) {
	txJSON, err := json.Marshal(toTransactionRecords(transactions))
	if err != nil {
		return "", err
	}

	oblJSON, err := json.Marshal(toObligationRecords(obligations))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Match each bank transaction to at most one rent obligation.\n\n")
	b.WriteString("Unmatched transactions:\n")
	b.Write(txJSON)
	b.WriteString("\n\nOpen obligations:\n")
	b.Write(oblJSON)
	b.WriteString("\n\nRespond with a JSON array of objects with fields ")
	b.WriteString(`"transaction_id", "obligation_id", "confidence" (integer 0-100), and "reason". `)
	b.WriteString("Only suggest pairings you have real evidence for (tenant name, amount proximity, dates, references). ")
	b.WriteString("Return [] when nothing matches.")

	return b.String(), nil
}

// parseSuggestions decodes the model output, tolerating markdown code fences
// around the JSON array.
func parseSuggestions(content string) ([]*models.MatchSuggestion, error) {
	cleaned := stripCodeFences(content)

	var records []suggestionRecord
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, errors.AugmentationError(errors.CodeBadResponse, "openai", err).
			WithContext("content", truncate(content, 200))
	}

	suggestions := make([]*models.MatchSuggestion, 0, len(records))
	for _, record := range records {
		suggestions = append(suggestions, &models.MatchSuggestion{
			TransactionID: record.TransactionID,
			ObligationID:  record.ObligationID,
			Confidence:    record.Confidence,
			Reason:        record.Reason,
			Source:        models.SourceAugmented,
		})
	}

	return suggestions, nil
}

func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}

	return strings.TrimSpace(cleaned)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
