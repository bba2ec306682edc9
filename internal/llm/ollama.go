// Package llm wraps the Ollama completion API used to generate answers
// grounded in retrieved context.
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
)

const promptTemplate = `Ты — умный помощник по документации. Ответь чётко и по делу, используя ТОЛЬКО приведённый ниже контекст.
Если в контексте нет ответа, напиши: "В загруженных документах ответ не найден."

Контекст:
%s

Вопрос: %s

Ответ:`

// Client calls Ollama's /api/generate endpoint.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(baseURL, model string, temperature float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate produces an answer from the assembled context and question.
// It never fails to the caller: any transport or decoding problem comes
// back as descriptive answer text, because every query response carries
// an answer field unconditionally.
func (c *Client) Generate(ctx context.Context, contextBlock, question string) string {
	prompt := fmt.Sprintf(promptTemplate, contextBlock, question)

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature},
	})
	if err != nil {
		return unreachable(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return unreachable(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unreachable(err)
	}
	if resp.StatusCode != http.StatusOK {
		return unreachable(fmt.Errorf("status %d", resp.StatusCode))
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return unreachable(err)
	}
	if apiResp.Response == "" {
		return "Ошибка генерации."
	}
	return strings.TrimSpace(apiResp.Response)
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func unreachable(err error) string {
	return fmt.Sprintf("Ошибка: Ollama не отвечает. Запущен ли он? (%v)", err)
}
