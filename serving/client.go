// Package serving calls the provider's model-serving invocation endpoint.
package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/mkobayashi/summarize-portal/internal/errors"
)

// summarizePrompt is the fixed instruction template the payload is embedded
// into. The portal produces Japanese summaries.
const summarizePrompt = "以下のテキストを日本語で要約してください:\n\n"

const maxTokens = 1000

// Client issues authenticated invocations against a serving endpoint.
// Single attempt per call, no retry; the caller decides whether to resubmit.
type Client struct {
	host     string
	endpoint string
	http     *http.Client
}

// NewClient creates a Client for the given workspace host and serving
// endpoint name. The timeout bounds the whole invocation.
func NewClient(host, endpoint string, timeout time.Duration) *Client {
	return &Client{
		host:     strings.TrimSuffix(host, "/"),
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invocationRequest struct {
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type invocationResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Invoke posts the text to the serving endpoint with the session's access
// token and returns the model's reply
func (c *Client) Invoke(ctx context.Context, accessToken, text string) (string, error) {
	body, err := json.Marshal(invocationRequest{
		Messages:  []chatMessage{{Role: "user", Content: summarizePrompt + text}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", &apperrors.InvocationError{Err: err}
	}

	url := fmt.Sprintf("%s/serving-endpoints/%s/invocations", c.host, c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &apperrors.InvocationError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &apperrors.InvocationError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &apperrors.InvocationError{
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(detail)),
		}
	}

	var parsed invocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &apperrors.InvocationError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &apperrors.InvocationError{Detail: "response contained no choices"}
	}
	return parsed.Choices[0].Message.Content, nil
}
