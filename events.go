package topicquiz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// EventKind names a user action
type EventKind string

const (
	EventTopicChanged EventKind = "topic_changed"
	EventCountChanged EventKind = "count_changed"
	EventGenerate     EventKind = "generate"
	EventSelectAnswer EventKind = "select_answer"
	EventSubmit       EventKind = "submit"
	EventReset        EventKind = "reset"
)

// Event is a raw user action bound for the controller
type Event struct {
	Kind  EventKind
	Value string    // topic text or question count field
	Index int       // question index for EventSelectAnswer
	Key   OptionKey // option for EventSelectAnswer
	// Background runs EventGenerate without waiting for the result
	Background bool
}

// ParseSelectEvent builds an EventSelectAnswer from form values
func ParseSelectEvent(index, key string) (Event, error) {
	i, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil || i < 0 {
		return Event{}, fmt.Errorf("invalid question index: %q", index)
	}
	k, err := ParseOptionKey(key)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventSelectAnswer, Index: i, Key: k}, nil
}

// Dispatch applies an event. It reports whether the state changed; guarded
// events that do not apply return false.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (bool, error) {
	c.logger.Verbose("Dispatch", "event", string(ev.Kind))

	switch ev.Kind {
	case EventTopicChanged:
		c.SetTopic(ev.Value)
		return true, nil
	case EventCountChanged:
		c.SetNumQuestions(ev.Value)
		return true, nil
	case EventGenerate:
		if ev.Background {
			return c.StartGenerate(ctx), nil
		}
		return c.Generate(ctx), nil
	case EventSelectAnswer:
		return c.SelectAnswer(ev.Index, ev.Key), nil
	case EventSubmit:
		return c.Submit(ctx), nil
	case EventReset:
		c.Reset()
		return true, nil
	}
	return false, fmt.Errorf("unknown event: %q", ev.Kind)
}
