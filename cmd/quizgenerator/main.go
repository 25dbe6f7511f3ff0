package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"topicquiz"
)

func main() {
	var (
		topic        = flag.String("topic", topicquiz.DefaultTopic, "Quiz topic")
		numQuestions = flag.Int("questions", topicquiz.DefaultNumQuestions, "Number of questions to generate (1-10)")
		outputFile   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey       = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	cfg := topicquiz.ConfigFromEnv()
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	topicquiz.SetVerbose(*verbose || cfg.Verbose)

	logger, err := topicquiz.NewLogger(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.Configured() {
		logger.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
	}

	c := topicquiz.NewController(topicquiz.NewQuestionMaker(cfg, logger), logger)
	ctx := context.Background()

	if *playMode {
		p := &player{c: c, in: bufio.NewScanner(os.Stdin), out: os.Stdout}
		p.play(ctx, *topic, *numQuestions)
		return
	}

	quiz, errMsg := generate(ctx, c, *topic, *numQuestions)
	if errMsg != "" {
		logger.Fatal("Failed to generate quiz", "reason", errMsg)
	}

	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		logger.Fatal("Failed to marshal quiz", "error", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			logger.Fatal("Failed to write output file", "error", err)
		}
		logger.Info("Quiz saved", "path", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

// generate runs the generate transition and returns the quiz or the user-facing error
func generate(ctx context.Context, c *topicquiz.Controller, topic string, count int) (topicquiz.Quiz, string) {
	c.SetTopic(topic)
	c.SetNumQuestions(strconv.Itoa(count))

	if !c.Generate(ctx) {
		return nil, "topic is empty"
	}

	state := c.Snapshot()
	if state.Phase != topicquiz.PhaseDisplaying {
		return nil, state.Error
	}
	return state.Quiz, ""
}

// player drives the controller from a terminal
type player struct {
	c   *topicquiz.Controller
	in  *bufio.Scanner
	out io.Writer
}

func (p *player) play(ctx context.Context, topic string, count int) {
	for {
		fmt.Fprintf(p.out, "🎯 Generating a %d question quiz on: %s\n", count, topic)
		fmt.Fprintln(p.out, "⏳ This may take a moment...")
		fmt.Fprintln(p.out)

		if _, errMsg := generate(ctx, p.c, topic, count); errMsg != "" {
			fmt.Fprintf(p.out, "❌ %s\n", errMsg)
		} else {
			p.answerAll()
			p.c.Submit(ctx)
			p.showResults()
		}

		if !p.confirm("Create another quiz? (y/N): ") {
			return
		}
		p.c.Reset()

		state := p.c.Snapshot()
		topic = p.prompt(fmt.Sprintf("Topic [%s]: ", state.Topic), state.Topic)
		count = topicquiz.ClampQuestionCount(p.prompt(fmt.Sprintf("Questions [%d]: ", state.NumQuestions), strconv.Itoa(state.NumQuestions)))
	}
}

func (p *player) answerAll() {
	view := p.c.View()
	for _, card := range view.Cards {
		fmt.Fprintf(p.out, "Question %d/%d:\n%s\n\n", card.Number, len(view.Cards), card.Question)
		for _, opt := range card.Options {
			fmt.Fprintf(p.out, "%s) %s\n", opt.Key, opt.Text)
		}
		fmt.Fprintln(p.out)

		for {
			fmt.Fprint(p.out, "Your answer (A/B/C/D, blank to skip): ")
			if !p.in.Scan() {
				return
			}
			line := strings.TrimSpace(p.in.Text())
			if line == "" {
				break
			}
			ev, err := topicquiz.ParseSelectEvent(strconv.Itoa(card.Index), line)
			if err == nil {
				p.c.SelectAnswer(ev.Index, ev.Key)
				break
			}
			fmt.Fprintln(p.out, "Please enter A, B, C, or D")
		}
		fmt.Fprintln(p.out)
	}
}

func (p *player) showResults() {
	view := p.c.View()
	if view.Summary == nil {
		return
	}

	fmt.Fprintln(p.out, strings.Repeat("─", 50))
	fmt.Fprintf(p.out, "🎉 Score: %d/%d (%d%%)\n", view.Summary.Score, view.Summary.Total, view.Summary.Percent)
	fmt.Fprintf(p.out, "%s\n\n", view.Summary.Message)

	for _, card := range view.Cards {
		fmt.Fprintf(p.out, "%d. %s\n", card.Number, card.Question)
		for _, opt := range card.Options {
			switch {
			case opt.Correct:
				fmt.Fprintf(p.out, "  ✅ %s) %s\n", opt.Key, opt.Text)
			case opt.Incorrect:
				fmt.Fprintf(p.out, "  ❌ %s) %s\n", opt.Key, opt.Text)
			}
		}
		if card.Explanation != "" {
			fmt.Fprintf(p.out, "  💡 %s\n", card.Explanation)
		}
		fmt.Fprintln(p.out)
	}
}

func (p *player) prompt(label, def string) string {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		return def
	}
	if v := strings.TrimSpace(p.in.Text()); v != "" {
		return v
	}
	return def
}

func (p *player) confirm(label string) bool {
	answer := strings.ToLower(p.prompt(label, "n"))
	return answer == "y" || answer == "yes"
}
