package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// ChatClient implements port.ChatClient against OpenAI's chat completions
// endpoint, streaming via CreateChatCompletionStream.
type ChatClient struct {
	client  *openai.Client
	prompts *config.PromptTemplates
}

// NewChatClient creates an OpenAI-backed chat client.
func NewChatClient(cfg *config.ChatConfig, prompts *config.PromptTemplates) (*ChatClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("openai: chat api key is required")
	}
	return &ChatClient{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		prompts: prompts,
	}, nil
}

// StreamChat starts a streaming completion and adapts go-openai's stream
// object to a channel of port.StreamEvent, closing the channel once the
// provider reports completion or an error.
func (c *ChatClient) StreamChat(ctx context.Context, req port.ChatRequest) (<-chan port.StreamEvent, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	events := make(chan port.StreamEvent)
	go func() {
		defer close(events)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				events <- port.StreamEvent{Kind: port.StreamEventDone}
				return
			}
			if err != nil {
				events <- port.StreamEvent{Kind: port.StreamEventError, Err: classifyError(err)}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case events <- port.StreamEvent{Kind: port.StreamEventContent, Content: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// Summarize asks the chat model for a structured JSON summary of the
// page-marked text: title, subtitle, abstract, keywords. Callers treat
// failure as best-effort and downgrade rather than fail ingestion.
func (c *ChatClient) Summarize(ctx context.Context, pageMarkedText string) (port.SummaryResult, error) {
	const maxChars = 12000
	excerpt := pageMarkedText
	if len(excerpt) > maxChars {
		excerpt = excerpt[:maxChars]
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.prompts.SummarizationPrompt() +
				" Respond with JSON: {\"title\":\"\",\"subtitle\":\"\",\"abstract\":\"\",\"keywords\":[]}."},
			{Role: openai.ChatMessageRoleUser, Content: excerpt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return port.SummaryResult{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return port.SummaryResult{}, fmt.Errorf("openai: no summary choices returned")
	}

	var parsed struct {
		Title    string   `json:"title"`
		Subtitle string   `json:"subtitle"`
		Abstract string   `json:"abstract"`
		Keywords []string `json:"keywords"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return port.SummaryResult{}, fmt.Errorf("openai: parsing summary json: %w", err)
	}

	return port.SummaryResult{
		Title:    strings.TrimSpace(parsed.Title),
		Subtitle: strings.TrimSpace(parsed.Subtitle),
		Abstract: strings.TrimSpace(parsed.Abstract),
		Keywords: parsed.Keywords,
	}, nil
}

// ProviderName returns "openai".
func (c *ChatClient) ProviderName() string {
	return "openai"
}

var _ port.ChatClient = (*ChatClient)(nil)
