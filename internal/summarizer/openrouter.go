package summarizer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenRouterClient implements domain.Completer against the OpenRouter
// chat-completions API in streaming mode.
type OpenRouterClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

type orMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type orRequest struct {
	Model       string      `json:"model"`
	Messages    []orMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
	Stream      bool        `json:"stream"`
}

type orChunk struct {
	Choices []struct {
		Delta *struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenRouterClient(apiKey, model string, temperature float64, maxTokens int) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:      apiKey,
		baseURL:     "https://openrouter.ai/api/v1",
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// StreamChat sends one streaming completion request. Text deltas arrive on
// the content channel in order; it is closed when the stream ends. The error
// channel carries at most one error and is closed with the content channel.
func (c *OpenRouterClient) StreamChat(ctx context.Context, system, user string) (<-chan string, <-chan error) {
	content := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(content)
		defer close(errs)

		reqBody := orRequest{
			Model: c.model,
			Messages: []orMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Stream:      true,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			errs <- fmt.Errorf("failed to marshal request: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			errs <- fmt.Errorf("failed to create request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errs <- fmt.Errorf("completion request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
			errs <- fmt.Errorf("completion request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				return
			}

			var chunk orChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Error != nil {
				errs <- fmt.Errorf("completion api error: %s", chunk.Error.Message)
				return
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta != nil {
				delta := chunk.Choices[0].Delta.Content
				if delta == "" {
					continue
				}
				select {
				case content <- delta:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("completion stream interrupted: %w", err)
		}
	}()

	return content, errs
}
