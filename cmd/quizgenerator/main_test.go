package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"topicquiz"
)

type cannedGenerator struct {
	quiz   topicquiz.Quiz
	err    error
	topics []string
}

func (g *cannedGenerator) RequestQuiz(ctx context.Context, topic string, count int) (topicquiz.Quiz, error) {
	g.topics = append(g.topics, topic)
	return g.quiz, g.err
}

func twoQuestions() topicquiz.Quiz {
	opts := topicquiz.Options{A: "Paris", B: "Rome", C: "Madrid", D: "Berlin"}
	return topicquiz.Quiz{
		{Question: "Capital of France?", Options: opts, CorrectAnswer: topicquiz.OptionA, Explanation: "Paris."},
		{Question: "Capital of Italy?", Options: opts, CorrectAnswer: topicquiz.OptionB, Explanation: "Rome."},
	}
}

func TestGenerate(t *testing.T) {
	c := topicquiz.NewController(&cannedGenerator{quiz: twoQuestions()}, nil)
	quiz, errMsg := generate(context.Background(), c, "Capitals", 2)
	if errMsg != "" || len(quiz) != 2 {
		t.Fatalf("Expected 2 questions, got %d (%q)", len(quiz), errMsg)
	}

	c = topicquiz.NewController(&cannedGenerator{err: errors.New("boom")}, nil)
	if _, errMsg := generate(context.Background(), c, "Capitals", 2); errMsg != topicquiz.MsgGenerationFailed {
		t.Errorf("Expected generic failure, got %q", errMsg)
	}

	if _, errMsg := generate(context.Background(), c, "   ", 2); errMsg == "" {
		t.Error("Expected blank topic to be refused")
	}
}

func TestPlayerRound(t *testing.T) {
	gen := &cannedGenerator{quiz: twoQuestions()}
	var out bytes.Buffer
	p := &player{
		c:   topicquiz.NewController(gen, nil),
		in:  bufio.NewScanner(strings.NewReader("a\nx\nc\nn\n")),
		out: &out,
	}

	p.play(context.Background(), "Capitals", 2)

	text := out.String()
	for _, want := range []string{
		"Capital of France?",
		"Please enter A, B, C, or D",
		"Score: 1/2 (50%)",
		topicquiz.MsgMid,
		"❌ C) Madrid",
		"💡 Rome.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if len(gen.topics) != 1 {
		t.Errorf("Expected one generation, got %d", len(gen.topics))
	}
}

func TestPlayerAnotherRound(t *testing.T) {
	gen := &cannedGenerator{quiz: twoQuestions()}
	var out bytes.Buffer
	p := &player{
		c:   topicquiz.NewController(gen, nil),
		in:  bufio.NewScanner(strings.NewReader("a\nb\ny\nRivers\n\n\n\nn\n")),
		out: &out,
	}

	p.play(context.Background(), "Capitals", 2)

	if len(gen.topics) != 2 || gen.topics[1] != "Rivers" {
		t.Errorf("Expected second round on Rivers, got %v", gen.topics)
	}
	if !strings.Contains(out.String(), topicquiz.MsgPerfect) {
		t.Error("Expected perfect score message for first round")
	}
}
