package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ Parser = (*OpenAI)(nil)

const systemPrompt = `Parse the following workout plan and extract the structured data.
If a specific number of weeks is mentioned (e.g. "10 Week Program"), use that as durationWeeks.
If not specified, default to 4 weeks.
Respond with JSON only, matching this shape:
{"name": string, "durationWeeks": integer, "days": [{"dayName": string, "focus": string,
"exercises": [{"name": string, "sets": integer, "reps": string}]}]}`

// planSchema is the strict JSON schema the model must answer with.
var planSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"name", "durationWeeks", "days"},
	"properties": map[string]any{
		"name":          map[string]any{"type": "string"},
		"durationWeeks": map[string]any{"type": "integer"},
		"days": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"dayName", "focus", "exercises"},
				"properties": map[string]any{
					"dayName": map[string]any{"type": "string"},
					"focus":   map[string]any{"type": "string"},
					"exercises": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []string{"name", "sets", "reps"},
							"properties": map[string]any{
								"name": map[string]any{"type": "string"},
								"sets": map[string]any{"type": "integer"},
								"reps": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

// planResponseFormat asks for structured output matching planSchema.
func planResponseFormat() openai.ResponseFormatJSONSchemaParam {
	return openai.ResponseFormatJSONSchemaParam{
		Type: openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
		JSONSchema: openai.F(openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   openai.F("workout_plan"),
			Schema: openai.F[any](planSchema),
			Strict: openai.F(true),
		}),
	}
}

// CompletionsService defines the interface for making chat completion calls.
// This abstraction enables testing without calling the real OpenAI API.
type CompletionsService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements Parser using OpenAI chat completions.
type OpenAI struct {
	completions CompletionsService
	model       string
}

// NewOpenAI creates a parser bound to the given model.
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		completions: client.Chat.Completions,
		model:       model,
	}
}

// ParsePlan sends the program to the model and decodes its answer. The call
// is not retried.
func (o *OpenAI) ParsePlan(ctx context.Context, in Input) (*ParsedPlan, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}

	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		}),
		Model:          openai.F(openai.ChatModel(o.model)),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](planResponseFormat()),
	})
	if err != nil {
		return nil, fmt.Errorf("plan parsing failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrUnparseable)
	}

	return decodePlan(resp.Choices[0].Message.Content)
}

// ModelName returns the chat model name.
func (o *OpenAI) ModelName() string {
	return o.model
}

func buildPrompt(in Input) (string, error) {
	var b strings.Builder
	if text := strings.TrimSpace(in.Text); text != "" {
		b.WriteString("TEXT CONTENT:\n")
		b.WriteString(text)
	}
	if in.File != nil {
		fileContent, err := fileText(in.File)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("FILE CONTENT:\n")
		b.WriteString(fileContent)
	}
	return b.String(), nil
}
