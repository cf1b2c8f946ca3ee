package generate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekata-api/pkg/llm"
)

type fakeLLM struct {
	reply string
	err   error
	last  *llm.ChatRequest
	calls int
}

func (f *fakeLLM) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: f.reply}}}}, nil
}

func (f *fakeLLM) ChatStructured(context.Context, *llm.ChatRequest, interface{}) (interface{}, error) {
	return nil, errors.New("not used")
}

func (f *fakeLLM) GetConfig() *llm.Config { return &llm.Config{} }

func (f *fakeLLM) Close() error { return nil }

const insightsSchema = `{"type":"object","properties":{"sourcing":{"type":"string"}},"required":["sourcing"]}`

func TestGenerateValidation(t *testing.T) {
	fake := &fakeLLM{reply: `{}`}
	svc := NewService(fake)

	cases := map[string]Request{
		"grounded without prompt":  {UseGoogleSearch: true},
		"ungrounded without input": {},
		"missing schema":           {Prompt: "p"},
		"null schema":              {Prompt: "p", Schema: json.RawMessage(`null`)},
		"array schema literal":     {Prompt: "p", Schema: json.RawMessage(`[1,2]`)},
		"blank prompt":             {Prompt: "   ", Schema: json.RawMessage(insightsSchema)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Zero(t, fake.calls)
}

func TestGenerateMissingCredentials(t *testing.T) {
	_, err := NewService(nil).Generate(context.Background(), Request{Prompt: "p", UseGoogleSearch: true})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGenerateGrounded(t *testing.T) {
	fake := &fakeLLM{reply: "```json\n[{\"date\":\"2024-01-01\",\"arabica_price\":1.9}]\n```"}
	svc := NewService(fake, WithModel("flash"))

	out, err := svc.Generate(context.Background(), Request{
		Prompt:          "history",
		Schema:          json.RawMessage(insightsSchema),
		UseGoogleSearch: true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2024-01-01","arabica_price":1.9}]`, string(out))

	require.NotNil(t, fake.last)
	assert.True(t, fake.last.WebSearch)
	assert.Nil(t, fake.last.ResponseFormat, "grounded requests never carry a schema")
	assert.Equal(t, "flash", fake.last.Model)
	require.NotNil(t, fake.last.Temperature)
	assert.Equal(t, DefaultTemperature, *fake.last.Temperature)
	require.Len(t, fake.last.Messages, 1)
	assert.Equal(t, "history", fake.last.Messages[0].Content)
}

func TestGenerateObjectSchema(t *testing.T) {
	fake := &fakeLLM{reply: `{"sourcing":"buy"}`}
	svc := NewService(fake, WithTemperature(0.5))

	out, err := svc.Generate(context.Background(), Request{Prompt: "insights", Schema: json.RawMessage(insightsSchema)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sourcing":"buy"}`, string(out))

	format := fake.last.ResponseFormat
	require.NotNil(t, format)
	assert.Equal(t, "json_schema", format.Type)
	schema := format.Schema.(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema["properties"], "items")
	assert.False(t, fake.last.WebSearch)
	assert.Equal(t, 0.5, *fake.last.Temperature)
}

func TestGenerateWrapsArraySchema(t *testing.T) {
	arraySchema := `{"type":"ARRAY","items":{"type":"OBJECT","properties":{"date":{"type":"STRING"}}}}`

	t.Run("unwraps envelope", func(t *testing.T) {
		fake := &fakeLLM{reply: `{"items":[{"date":"2024-01-03"}]}`}
		out, err := NewService(fake).Generate(context.Background(), Request{Prompt: "forecast", Schema: json.RawMessage(arraySchema)})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"date":"2024-01-03"}]`, string(out))

		schema := fake.last.ResponseFormat.Schema.(map[string]any)
		assert.Equal(t, "object", schema["type"])
		assert.Equal(t, []string{"items"}, schema["required"])
		inner := schema["properties"].(map[string]any)["items"].(map[string]any)
		assert.Equal(t, "array", inner["type"], "type names are normalized")
		assert.Equal(t, "object", inner["items"].(map[string]any)["type"])
	})

	t.Run("accepts bare array", func(t *testing.T) {
		fake := &fakeLLM{reply: "```\n[{\"date\":\"2024-01-03\"}]\n```"}
		out, err := NewService(fake).Generate(context.Background(), Request{Prompt: "forecast", Schema: json.RawMessage(arraySchema)})
		require.NoError(t, err)
		assert.JSONEq(t, `[{"date":"2024-01-03"}]`, string(out))
	})

	t.Run("envelope without items", func(t *testing.T) {
		fake := &fakeLLM{reply: `{"rows":[]}`}
		_, err := NewService(fake).Generate(context.Background(), Request{Prompt: "forecast", Schema: json.RawMessage(arraySchema)})
		require.ErrorIs(t, err, ErrUnparsableOutput)
	})
}

func TestGenerateUnparsableOutput(t *testing.T) {
	for _, reply := range []string{"", "The price is about two dollars.", "```json\n{broken\n```"} {
		fake := &fakeLLM{reply: reply}
		_, err := NewService(fake).Generate(context.Background(), Request{Prompt: "p", UseGoogleSearch: true})
		require.ErrorIs(t, err, ErrUnparsableOutput, "reply %q", reply)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	upstream := errors.New("quota exceeded")
	fake := &fakeLLM{err: upstream}
	_, err := NewService(fake).Generate(context.Background(), Request{Prompt: "p", UseGoogleSearch: true})
	require.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "quota exceeded")
}
