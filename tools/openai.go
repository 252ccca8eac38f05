package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrAIDisabled = errors.New("openai api key not configured")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai error %d: %s", e.StatusCode, e.Body)
}

// OpenAIClient generates match insights through the OpenAI Responses API.
type OpenAIClient struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int
	HTTP            *http.Client
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		APIKey:          strings.TrimSpace(apiKey),
		Model:           model,
		BaseURL:         strings.TrimRight(baseURL, "/"),
		MaxOutputTokens: 400,
		HTTP:            &http.Client{Timeout: 30 * time.Second},
	}
}

type responsesRequest struct {
	Model           string `json:"model"`
	Instructions    string `json:"instructions"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"`
}

type responsesReply struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// text joins every assistant output_text block.
func (r responsesReply) text() string {
	var parts []string
	for _, item := range r.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" && strings.TrimSpace(c.Text) != "" {
				parts = append(parts, c.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Generate sends instructions + input and returns the assistant text.
func (c *OpenAIClient) Generate(ctx context.Context, instructions string, input string) (string, error) {
	if c == nil || c.APIKey == "" {
		return "", ErrAIDisabled
	}

	b, err := json.Marshal(responsesRequest{
		Model:           c.Model,
		Instructions:    instructions,
		Input:           input,
		MaxOutputTokens: c.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/responses", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed responsesReply
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	out := parsed.text()
	if out == "" {
		return "", errors.New("empty response from model")
	}
	return out, nil
}
