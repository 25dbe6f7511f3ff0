package topicquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes a transcript of one quiz generation request to its own file
type LLMLogger struct {
	file      *os.File
	mu        sync.Mutex
	requestID string
}

// NewLLMLogger creates the transcript file <dir>/<requestID>.log
func NewLLMLogger(dir, requestID, topic string, count int) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", requestID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:      file,
		requestID: requestID,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Request ID: %s\n", requestID)
	logger.Logf("Topic: %s\n", topic)
	logger.Logf("Number of Questions: %d\n", count)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Path returns the transcript file name
func (ll *LLMLogger) Path() string {
	return ll.file.Name()
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs the prompts sent to the model
func (ll *LLMLogger) LogLLMRequest(system, prompt string) {
	ll.Logf("=== LLM REQUEST ===\n")
	ll.Logf("System:\n%s\n", system)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("===================\n\n")
}

// LogLLMResponse logs the raw model output
func (ll *LLMLogger) LogLLMResponse(response string) {
	ll.Logf("=== LLM RESPONSE ===\n")
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("====================\n\n")
}

// LogFailure records why the request did not produce a quiz
func (ll *LLMLogger) LogFailure(err error) {
	ll.Logf("FAILED: %v\n", err)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.writef("=== Quiz Generation Complete ===\n")
	ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	err := ll.file.Close()
	ll.file = nil
	return err
}
