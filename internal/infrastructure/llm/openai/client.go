// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
)

const extractionPrompt = `You extract startup metric updates from news text.

The user message names a startup and contains news text about it. Report only changes
the text states as fact about that startup. Ignore other companies, rumours, and forecasts.

Allowed fields:
- totalFunding: total capital raised in USD, as a number (e.g. 300000000)
- valuation: latest post-money valuation in USD, as a number
- estimatedUsers: number of users, members, or customers, as a number
- employeeCount: number of employees, as a number
- acquisition: the startup was acquired, as {"acquirer": "...", "date": "YYYY-MM-DD"}

For each change give a confidence of "high", "medium", or "low".

Return ONLY a valid JSON object, no other text:
{"changes": [{"field": "valuation", "value": 3000000000, "confidence": "medium"}]}

Return {"changes": []} if the text contains no updates.`

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// ExtractChanges asks the model for metric changes about startupName in text.
// Items whose value cannot be read as a number or an acquisition are dropped.
func (c *Client) ExtractChanges(ctx context.Context, startupName, text string) ([]ports.ProposedChange, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Startup: %s\n\n%s", startupName, text),
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parsing changes JSON: %w (response: %s)", err, content)
	}

	changes := make([]ports.ProposedChange, 0, len(raw.Changes))
	for _, rc := range raw.Changes {
		value, ok := parseValue(rc.Value)
		if !ok {
			continue
		}
		changes = append(changes, ports.ProposedChange{
			Field:      strings.TrimSpace(rc.Field),
			Value:      value,
			Confidence: strings.ToLower(strings.TrimSpace(rc.Confidence)),
		})
	}

	return changes, nil
}

// rawResponse is the JSON structure returned by the model.
type rawResponse struct {
	Changes []rawChange `json:"changes"`
}

type rawChange struct {
	Field      string          `json:"field"`
	Value      json.RawMessage `json:"value"`
	Confidence string          `json:"confidence"`
}

// parseValue reads a number, a numeric string, or an acquisition object.
func parseValue(raw json.RawMessage) (entities.Value, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return entities.NullValue(), false
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return entities.NullValue(), false
		}
		s = strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(s))
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return entities.NullValue(), false
		}
		return entities.NumberValue(n), true
	}

	var v entities.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return entities.NullValue(), false
	}
	if a, ok := v.Acquisition(); ok && strings.TrimSpace(a.Acquirer) == "" {
		return entities.NullValue(), false
	}
	if n, ok := v.Number(); ok && (math.IsInf(n, 0) || math.IsNaN(n)) {
		return entities.NullValue(), false
	}
	return v, !v.IsNull()
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
