package genclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = string(anthropic.ModelClaudeSonnet4_20250514)

// MaxOutputTokens bounds every completion; report sections are short.
const MaxOutputTokens = 5000

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicBackend struct {
	messages AnthropicMessager
	model    string
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// NewAnthropicBackendFromEnv is the only place a configuration error can
// surface; once constructed, calls degrade to fallbacks instead of failing.
func NewAnthropicBackendFromEnv() (*AnthropicBackend, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	model := strings.TrimSpace(os.Getenv("RADREPORT_LLM_MODEL"))
	if model == "" {
		model = DefaultModel
	}
	return &AnthropicBackend{messages: newAnthropicClient(apiKey), model: model}, nil
}

func (b *AnthropicBackend) ModelName() string { return b.model }

func (b *AnthropicBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   MaxOutputTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		// Empty content with a stop reason means the output was suppressed;
		// the finish_reason marker routes this to the content-policy fallback.
		return "", fmt.Errorf("no text content, finish_reason=%s", resp.StopReason)
	}
	return sb.String(), nil
}
