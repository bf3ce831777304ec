package openai

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/sashabaranov/go-openai"

    domai "github.com/bryanwahyu/analysis-backend/internal/domain/ai"
    "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
    "github.com/bryanwahyu/analysis-backend/internal/infra/ai/prompt"
)

const (
    maxTokens    = 2048
    defaultModel = "gpt-4o-mini"
)

type Client struct {
    *openai.Client
    Model string
}

// NewClient builds a narrator. baseURL is optional and mostly useful for
// OpenAI-compatible gateways.
func NewClient(apiKey, model, baseURL string) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = strings.TrimRight(baseURL, "/")
    }
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// Narrate implements ai.Narrator.
func (c *Client) Narrate(ctx context.Context, r *analysis.Result) (string, error) {
    model := c.Model
    if model == "" {
        model = defaultModel
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: prompt.GetReportSystemPrompt()},
            {Role: openai.ChatMessageRoleUser, Content: prompt.GetReportUserPrompt(r)},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        var apiErr *openai.APIError
        if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
            return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
        }
        return "", fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return "", errors.New("chat completion returned no choices")
    }

    return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
