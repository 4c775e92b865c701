package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/domain"
)

// styleInstructions maps summary style presets to prompt instructions.
var styleInstructions = map[string]string{
	"brief":    "1-2 sentences",
	"medium":   "2-3 sentences",
	"detailed": "3-5 sentences",
}

// maxPromptContent caps how much article text is sent to the chat API.
const maxPromptContent = 1000

// Summarizer generates short article summaries via an OpenAI-compatible
// chat completion API.
type Summarizer struct {
	client *openai.Client
	model  string
	style  string
	logger *zap.Logger
}

// SummarizerConfig holds the summarization provider settings.
type SummarizerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Style   string // brief (default), medium, detailed
	Logger  *zap.Logger
}

// NewSummarizer creates an OpenAI-compatible summarization provider.
func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	style := cfg.Style
	if _, ok := styleInstructions[style]; !ok {
		style = "brief"
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		style:  style,
		logger: logger,
	}
}

// Summarize returns a short summary of the content. Failures are surfaced
// to the caller, which falls back to truncation; a broken summary provider
// must never sink a pipeline run.
func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant that creates concise summaries.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: s.buildPrompt(content),
			},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w: %w", domain.ErrSummaryProviderError, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrSummaryProviderError)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("Generated summary", zap.Int("length", len(summary)))
	return summary, nil
}

func (s *Summarizer) buildPrompt(content string) string {
	if runes := []rune(content); len(runes) > maxPromptContent {
		content = string(runes[:maxPromptContent])
	}
	return fmt.Sprintf(
		"Summarize the following content in %s. Focus on key insights and relevance.\n\nContent:\n%s\n\nSummary:",
		styleInstructions[s.style], content,
	)
}
