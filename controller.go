package topicquiz

import (
	"context"
	"strings"
	"sync"
)

// Recorder archives generated quizzes and scored attempts
type Recorder interface {
	RecordQuiz(ctx context.Context, topic string, quiz Quiz) (string, error)
	RecordAttempt(ctx context.Context, quizID string, answers UserAnswers, score, total int) error
}

// Controller owns the state of one quiz session and applies every transition.
// The mutex serialises transitions; the generator runs outside it.
type Controller struct {
	mu         sync.Mutex
	state      State
	generator  Generator
	configured bool
	recorder   Recorder
	logger     *Logger

	// generation identifies the current request; results for older ones are dropped
	generation uint64
	quizID     string
	wg         sync.WaitGroup
}

// NewController creates a controller in the initial Idle state. A nil generator
// means generation is not configured.
func NewController(generator Generator, logger *Logger) *Controller {
	if logger == nil {
		logger = NewNopLogger()
	}
	configured := generator != nil
	return &Controller{
		state:      NewState(configured),
		generator:  generator,
		configured: configured,
		logger:     logger,
	}
}

// SetRecorder enables archiving of quizzes and attempts
func (c *Controller) SetRecorder(r Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// Configured reports whether quiz generation is available
func (c *Controller) Configured() bool {
	return c.configured
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// View renders the current state. The scroll-to-top request is consumed here.
func (c *Controller) View() View {
	c.mu.Lock()
	s := c.state.Clone()
	c.state.ScrollTop = false
	c.mu.Unlock()
	return Render(s, c.configured)
}

// SetTopic stores the topic field as typed
func (c *Controller) SetTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Topic = topic
}

// SetNumQuestions stores the question count field, clamped to [1,10]
func (c *Controller) SetNumQuestions(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.NumQuestions = ClampQuestionCount(raw)
}

// CanGenerate reports whether the generate guard currently passes
func (c *Controller) CanGenerate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canGenerate()
}

func (c *Controller) canGenerate() bool {
	return c.configured &&
		strings.TrimSpace(c.state.Topic) != "" &&
		c.state.Phase != PhaseLoading
}

// Generate requests a quiz and waits for the result. It returns false without
// touching the state when the guard fails.
func (c *Controller) Generate(ctx context.Context) bool {
	topic, count, gen, ok := c.begin()
	if !ok {
		return false
	}
	quiz, err := c.generator.RequestQuiz(ctx, topic, count)
	c.finish(ctx, gen, topic, quiz, err)
	return true
}

// StartGenerate is Generate with the request running in the background. The
// request outlives ctx cancellation; it always runs to completion.
func (c *Controller) StartGenerate(ctx context.Context) bool {
	topic, count, gen, ok := c.begin()
	if !ok {
		return false
	}
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		quiz, err := c.generator.RequestQuiz(ctx, topic, count)
		c.finish(ctx, gen, topic, quiz, err)
	}()
	return true
}

// Wait blocks until background requests started by StartGenerate have finished
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) begin() (string, int, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canGenerate() {
		c.logger.Verbose("Generate ignored", "phase", c.state.Phase.String(), "configured", c.configured)
		return "", 0, 0, false
	}

	c.generation++
	c.quizID = ""
	c.state.enterLoading()
	return strings.TrimSpace(c.state.Topic), c.state.NumQuestions, c.generation, true
}

func (c *Controller) finish(ctx context.Context, gen uint64, topic string, quiz Quiz, err error) {
	c.mu.Lock()
	if c.stale(gen) {
		c.mu.Unlock()
		c.logger.Info("Dropping stale quiz result", "topic", topic)
		return
	}
	recorder := c.recorder
	c.mu.Unlock()

	var quizID string
	if err == nil && len(quiz) > 0 && recorder != nil {
		id, rerr := recorder.RecordQuiz(ctx, topic, quiz)
		if rerr != nil {
			c.logger.Warn("Failed to archive quiz", "topic", topic, "error", rerr)
		}
		quizID = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Reset may have landed while the quiz was being archived
	if c.stale(gen) {
		c.logger.Info("Dropping stale quiz result", "topic", topic, "quiz_id", quizID)
		return
	}

	switch {
	case err != nil:
		c.logger.Warn("Quiz generation failed", "topic", topic, "error", err)
		c.state.enterIdle(MsgGenerationFailed)
	case len(quiz) == 0:
		c.logger.Warn("Generated quiz was empty", "topic", topic)
		c.state.enterIdle(MsgEmptyQuiz)
	default:
		c.quizID = quizID
		c.state.enterDisplaying(quiz)
		c.logger.Info("Quiz ready", "topic", topic, "questions", len(quiz))
	}
}

func (c *Controller) stale(gen uint64) bool {
	return gen != c.generation || c.state.Phase != PhaseLoading
}

// SelectAnswer records key as the answer to question i. It is ignored unless a
// quiz is displayed and not yet submitted.
func (c *Controller) SelectAnswer(i int, key OptionKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseDisplaying || !key.Valid() {
		return false
	}
	if i < 0 || i >= len(c.state.Quiz) {
		return false
	}
	k := key
	c.state.Answers[i] = &k
	return true
}

// Submit scores the answers
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.state.Phase != PhaseDisplaying {
		c.mu.Unlock()
		return false
	}
	c.state.enterSubmitted()
	score, total := c.state.Score, len(c.state.Quiz)
	answers := c.state.Answers.Clone()
	quizID, recorder := c.quizID, c.recorder
	c.mu.Unlock()

	c.logger.Info("Quiz submitted", "score", score, "total", total)

	if recorder != nil && quizID != "" {
		if err := recorder.RecordAttempt(ctx, quizID, answers, score, total); err != nil {
			c.logger.Warn("Failed to archive attempt", "quiz_id", quizID, "error", err)
		}
	}
	return true
}

// Reset returns to the initial defaults. A request still in flight is left to
// finish and its result is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.quizID = ""
	c.state.reset(c.configured)
}
