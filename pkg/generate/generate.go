package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/pkg/llm"
)

const (
	// DefaultTemperature keeps answers close to the retrieved facts.
	DefaultTemperature = 0.2

	wrapKey    = "items"
	schemaName = "generated_payload"
)

var (
	// ErrInvalidRequest reports a missing prompt, or a missing or malformed
	// schema on an ungrounded request.
	ErrInvalidRequest = errors.New("generate: invalid request")
	// ErrMissingCredentials means the server has no LLM client configured.
	ErrMissingCredentials = errors.New("generate: api key is not configured")
	// ErrUnparsableOutput means the model answer was not valid JSON.
	ErrUnparsableOutput = errors.New("generate: model output is not valid JSON")
)

// Request is the body of POST /api/generate.
type Request struct {
	Prompt          string          `json:"prompt"`
	Schema          json.RawMessage `json:"schema,omitempty"`
	UseGoogleSearch bool            `json:"useGoogleSearch"`
}

// Service turns generation requests into single chat completions.
type Service struct {
	client      llm.LLMClient
	model       string
	temperature float64
}

// Option customises a Service.
type Option func(*Service)

// WithModel selects a model alias from the llm config.
func WithModel(alias string) Option {
	return func(s *Service) { s.model = strings.TrimSpace(alias) }
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// NewService wraps client. A nil client yields a service that answers
// every call with ErrMissingCredentials.
func NewService(client llm.LLMClient, opts ...Option) *Service {
	s := &Service{client: client, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs one completion and returns the JSON payload with any code
// fence removed.
//
// Grounded requests enable live web search and carry no response schema.
// Ungrounded requests must name a schema; the answer is constrained to it.
// Upstream structured output only accepts object roots, so other schemas
// are wrapped under "items" and unwrapped before returning.
func (s *Service) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	if s.client == nil {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(req.Prompt) == "" {
		if req.UseGoogleSearch {
			return nil, fmt.Errorf("%w: prompt is required for search grounding", ErrInvalidRequest)
		}
		return nil, fmt.Errorf("%w: prompt and schema are required for non-search requests", ErrInvalidRequest)
	}

	temperature := s.temperature
	chatReq := &llm.ChatRequest{
		Model:       s.model,
		Messages:    []llm.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temperature,
	}

	wrapped := false
	if req.UseGoogleSearch {
		chatReq.WebSearch = true
	} else {
		schema, err := decodeSchema(req.Schema)
		if err != nil {
			return nil, err
		}
		schema, wrapped = wrapSchema(schema)
		chatReq.ResponseFormat = &llm.ResponseFormat{
			Type:   "json_schema",
			Name:   schemaName,
			Schema: schema,
		}
	}

	resp, err := s.client.Chat(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("generate: upstream call failed: %w", err)
	}

	text := llm.StripCodeFence(resp.Text())
	if text == "" || !json.Valid([]byte(text)) {
		logx.WithContext(ctx).Errorf("unparsable model output (grounded=%t): %q", req.UseGoogleSearch, resp.Text())
		return nil, ErrUnparsableOutput
	}
	if !wrapped {
		return json.RawMessage(text), nil
	}
	return unwrap([]byte(text))
}

func decodeSchema(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: prompt and schema are required for non-search requests", ErrInvalidRequest)
	}
	var schema map[string]any
	if err := json.Unmarshal(trimmed, &schema); err != nil {
		return nil, fmt.Errorf("%w: schema must be a JSON object", ErrInvalidRequest)
	}
	return normalizeTypes(schema).(map[string]any), nil
}

// normalizeTypes lowercases "type" values so schemas written with
// upper-case enum names ("ARRAY", "OBJECT") are accepted.
func normalizeTypes(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if s, ok := child.(string); ok && k == "type" {
				node[k] = strings.ToLower(s)
				continue
			}
			node[k] = normalizeTypes(child)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = normalizeTypes(child)
		}
		return node
	default:
		return v
	}
}

func wrapSchema(schema map[string]any) (map[string]any, bool) {
	if t, _ := schema["type"].(string); t == "object" {
		return schema, false
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{wrapKey: schema},
		"required":   []string{wrapKey},
	}, true
}

func unwrap(text []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		// The model answered with the bare payload.
		return json.RawMessage(trimmed), nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, ErrUnparsableOutput
	}
	items, ok := envelope[wrapKey]
	if !ok {
		return nil, ErrUnparsableOutput
	}
	return items, nil
}
