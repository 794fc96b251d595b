package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RahulJ0hn/Clarifi/internal/config"
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

const systemPrompt = "You summarize what changed on a monitored web page. " +
	"Answer in one short sentence, plain text, no preamble."

const valueLimitChars = 1500

// Describer asks a language model for a one-sentence description of a content
// change. It is an optional collaborator; callers must tolerate errors.
type Describer struct {
	client anthropic.Client
	logger zerolog.Logger
	cfg    config.AIConfig
}

// NewDescriber creates a describer, or nil when the feature is disabled.
func NewDescriber(cfg config.AIConfig, logger zerolog.Logger) (*Describer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, errorwrapper.NewValidationError("api_key", "", "required when AI is enabled")
	}

	return &Describer{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		logger: logger.With().Str("component", "ChangeDescriber").Logger(),
		cfg:    cfg,
	}, nil
}

// DescribeChange returns a one-sentence description of the difference between
// the previous and current values.
func (d *Describer) DescribeChange(ctx context.Context, monitorName, previous, current string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Monitor: %s\n\nPrevious value:\n%s\n\nCurrent value:\n%s\n\nDescribe the change.",
		monitorName, clip(previous), clip(current))

	message, err := d.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(d.cfg.Model),
		MaxTokens: int64(d.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", errorwrapper.WrapError(err, "describing change for "+monitorName)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	description := strings.TrimSpace(sb.String())
	if description == "" {
		return "", errorwrapper.NewError("model returned no text")
	}

	d.logger.Debug().Str("monitor", monitorName).Msg("Change described")
	return description, nil
}

func clip(s string) string {
	if len(s) <= valueLimitChars {
		return s
	}
	return s[:valueLimitChars] + "..."
}
