package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/askfuse/askfuse/helper"
)

const scoreSystemPrompt = "You rate how relevant a passage is to a question. " +
	"Reply with a single number between 0 and 10, nothing else."

// OpenAI is the production language model adapter
type OpenAI struct {
	client     openai.Client
	model      string
	scoreModel string
	log        *slog.Logger
}

// OpenAIOption configures the OpenAI adapter
type OpenAIOption func(*OpenAI)

// WithScoreModel sets a separate (usually cheaper) model for relevance
// scoring
func WithScoreModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		o.scoreModel = model
	}
}

// WithLogger sets the logger for the adapter
func WithLogger(log *slog.Logger) OpenAIOption {
	return func(o *OpenAI) {
		o.log = log
	}
}

// NewOpenAI creates an OpenAI-backed client. The model is used for
// synthesis; scoring uses the same model unless WithScoreModel is given.
func NewOpenAI(apiKey string, model string, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		scoreModel: model,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Model returns the synthesis model name
func (o *OpenAI) Model() string {
	return o.model
}

// Complete sends a system and user message and returns the completion text
func (o *OpenAI) Complete(ctx context.Context, system string, user string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", helper.NewError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", helper.NewError("chat completion", fmt.Errorf("no choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Score rates the relevance of a candidate passage to a question on the
// model's 0-10 scale. All failures wrap ErrScoreUnavailable.
func (o *OpenAI) Score(ctx context.Context, question string, candidate string) (float64, error) {
	user := fmt.Sprintf("Question: %s\n\nPassage:\n%s", question, candidate)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.scoreModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(scoreSystemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		o.log.Warn("Relevance scoring call failed", slog.Any("error", err))
		return 0, fmt.Errorf("%w: %v", ErrScoreUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: no choices returned", ErrScoreUnavailable)
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		o.log.Warn("Unparseable relevance score", slog.String("raw", resp.Choices[0].Message.Content))
		return 0, fmt.Errorf("%w: %v", ErrScoreUnavailable, err)
	}

	return score, nil
}

// parseScore extracts the leading numeric value from a model reply like
// "7", "7.5" or "7/10"
func parseScore(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if i := strings.IndexAny(text, "/\n "); i > 0 {
		text = text[:i]
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", raw, err)
	}
	if score < 0 || score > 10 {
		return 0, fmt.Errorf("score %v out of range", score)
	}
	return score, nil
}
