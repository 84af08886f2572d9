package assistant

import (
	"context"
	"fmt"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// Client talks to the external triage reasoning service. API credentials and
// the model name are loaded from environment variables; a missing credential
// is reported when an exchange is started, not at construction, so the
// operator can fix configuration without restarting the service.
type Client struct {
	api   *openai.Client
	model string
}

var _ triage.Assistant = (*Client)(nil)

// NewClientFromEnv constructs the assistant client from OPENAI_API_KEY,
// OPENAI_MODEL and optionally OPENAI_BASE_URL.
func NewClientFromEnv() *Client {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	var api *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			cfg.BaseURL = base
		}
		api = openai.NewClientWithConfig(cfg)
	}

	return &Client{api: api, model: model}
}

// NewClient wraps an existing API client. Used by tests to point the
// assistant at a fake server.
func NewClient(api *openai.Client, model string) *Client {
	return &Client{api: api, model: model}
}

// StartExchange establishes a fresh conversation for one patient session.
// The exchange owns its transcript: the system instruction plus every turn,
// resent wholesale on each call, so discarding the handle is a complete and
// auditable reset of the clinical context.
func (c *Client) StartExchange(ctx context.Context, language string) (triage.Conversation, error) {
	if c.api == nil {
		return nil, ErrMissingCredential
	}
	return &Exchange{
		api:   c.api,
		model: c.model,
		transcript: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction(language)},
		},
	}, nil
}

// Exchange is one live conversation. Each session holds at most one exchange
// and at most one outstanding turn.
type Exchange struct {
	api   *openai.Client
	model string

	mu         sync.Mutex
	transcript []openai.ChatCompletionMessage
}

var _ triage.Conversation = (*Exchange)(nil)

// SendTurn submits one natural-language turn and returns the classified
// outcome. The assistant reply only joins the transcript once it parses, so
// a failed turn never poisons later rounds.
func (e *Exchange) SendTurn(ctx context.Context, text string) (*triage.TurnOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	msgs := make([]openai.ChatCompletionMessage, len(e.transcript), len(e.transcript)+2)
	copy(msgs, e.transcript)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := e.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          e.model,
		Messages:       msgs,
		Temperature:    0.1,
		ResponseFormat: turnResponseFormat(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion returned no choices", ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	outcome, err := ParseTurn(content)
	if err != nil {
		return nil, err
	}

	e.transcript = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: content,
	})
	return outcome, nil
}
