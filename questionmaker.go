package topicquiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultModel is used when no model is configured
const DefaultModel = openai.GPT4o

// ErrGenerationFailed is the only error callers see from a failed request
var ErrGenerationFailed = errors.New("quiz generation failed")

const systemPrompt = "You are a friendly and encouraging quiz-writing assistant. " +
	"Write clear multiple choice questions with exactly four options labelled A, B, C and D, " +
	"one correct answer, plausible wrong answers, and a short explanation of the correct answer."

// Generator produces a quiz for a topic
type Generator interface {
	RequestQuiz(ctx context.Context, topic string, count int) (Quiz, error)
}

// QuestionMaker generates quizzes with an OpenAI structured output request
type QuestionMaker struct {
	apiKey    string
	baseURL   string
	model     string
	llmLogDir string
	logger    *Logger

	once   sync.Once
	client *openai.Client
	schema *gojsonschema.Schema
}

// NewQuestionMaker creates a question maker. The OpenAI client is built on first use.
func NewQuestionMaker(cfg Config, logger *Logger) *QuestionMaker {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &QuestionMaker{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     model,
		llmLogDir: cfg.LLMLogDir,
		logger:    logger,
	}
}

func (qm *QuestionMaker) init() {
	qm.once.Do(func() {
		clientCfg := openai.DefaultConfig(qm.apiKey)
		if qm.baseURL != "" {
			clientCfg.BaseURL = qm.baseURL
		}
		qm.client = openai.NewClientWithConfig(clientCfg)

		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(quizSchema))
		if err != nil {
			// quizSchema is a constant; this only fires if it is edited into invalid JSON
			panic(fmt.Sprintf("invalid quiz schema: %v", err))
		}
		qm.schema = schema
	})
}

// RequestQuiz asks the model for count questions about topic. Any failure is logged
// and reported as ErrGenerationFailed.
func (qm *QuestionMaker) RequestQuiz(ctx context.Context, topic string, count int) (Quiz, error) {
	qm.init()

	requestID := uuid.NewString()
	log := qm.logger.With("request_id", requestID, "topic", topic, "count", count)
	log.Info("Generating quiz")

	prompt := buildPrompt(topic, count)

	var transcript *LLMLogger
	if qm.llmLogDir != "" {
		var err error
		transcript, err = NewLLMLogger(qm.llmLogDir, requestID, topic, count)
		if err != nil {
			// Continue without a transcript rather than failing
			log.Warn("Failed to create LLM transcript", "error", err)
		} else {
			defer transcript.Close()
			log.Debug("Writing LLM transcript", "path", transcript.Path())
			transcript.LogLLMRequest(systemPrompt, prompt)
		}
	}

	quiz, err := qm.request(ctx, prompt, transcript)
	if err != nil {
		log.Error("Quiz generation failed", "error", err)
		if transcript != nil {
			transcript.LogFailure(err)
		}
		return nil, ErrGenerationFailed
	}

	if len(quiz) != count {
		log.Warn("Quiz length differs from requested count", "requested", count, "received", len(quiz))
	}
	log.Info("Quiz generated", "questions", len(quiz))
	return quiz, nil
}

func (qm *QuestionMaker) request(ctx context.Context, prompt string, transcript *LLMLogger) (Quiz, error) {
	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:        quizSchemaName,
					Description: "A multiple choice quiz",
					Schema:      quizSchemaJSON,
					Strict:      true,
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if transcript != nil {
		transcript.LogLLMResponse(content)
	}
	qm.logger.Verbose("Raw quiz response", "content", content)

	return qm.parse(content)
}

// parse validates the payload against quizSchema and converts it to a Quiz
func (qm *QuestionMaker) parse(content string) (Quiz, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty response content")
	}

	result, err := qm.schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to validate response: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("response failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var payload quizPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	quiz := Quiz(payload.Questions)
	for i, q := range quiz {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d failed validation: %w", i+1, err)
		}
	}
	if quiz == nil {
		quiz = Quiz{}
	}
	return quiz, nil
}

func buildPrompt(topic string, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create a multiple choice quiz with exactly %d questions about: %s\n\n", count, topic))
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question has exactly four options keyed A, B, C and D\n")
	sb.WriteString("- correctAnswer is the key of the single correct option\n")
	sb.WriteString("- Wrong options should be plausible but clearly wrong\n")
	sb.WriteString("- The explanation says briefly why the correct answer is right\n")
	sb.WriteString("- Vary the position of the correct answer across questions\n")

	return sb.String()
}
