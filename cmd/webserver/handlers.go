package main

import (
	"errors"
	"fmt"
	"net/http"

	"topicquiz"

	"github.com/go-chi/chi/v5"
)

const historyLimit = 20

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)

	s.render(w, "home", map[string]interface{}{
		"View":       c.View(),
		"Configured": c.Configured(),
		"Archive":    s.db != nil,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	events := []topicquiz.Event{
		{Kind: topicquiz.EventTopicChanged, Value: r.FormValue("topic")},
		{Kind: topicquiz.EventCountChanged, Value: r.FormValue("num_questions")},
	}
	for _, ev := range events {
		if _, err := c.Dispatch(r.Context(), ev); err != nil {
			s.logger.Error("Dispatch failed", "event", string(ev.Kind), "error", err)
		}
	}

	if !c.CanGenerate() {
		s.logger.Debug("Generate refused", "configured", c.Configured())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if _, err := c.Dispatch(r.Context(), topicquiz.Event{Kind: topicquiz.EventGenerate, Background: true}); err != nil {
		s.logger.Error("Dispatch failed", "event", string(topicquiz.EventGenerate), "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	ev, err := topicquiz.ParseSelectEvent(r.FormValue("index"), r.FormValue("key"))
	if err != nil {
		http.Error(w, "Invalid answer", http.StatusBadRequest)
		return
	}

	if _, err := c.Dispatch(r.Context(), ev); err != nil {
		s.logger.Error("Dispatch failed", "event", string(ev.Kind), "error", err)
	}

	http.Redirect(w, r, fmt.Sprintf("/#q%d", ev.Index+1), http.StatusSeeOther)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.dispatchAndRedirect(w, r, topicquiz.Event{Kind: topicquiz.EventSubmit})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.dispatchAndRedirect(w, r, topicquiz.Event{Kind: topicquiz.EventReset})
}

func (s *Server) dispatchAndRedirect(w http.ResponseWriter, r *http.Request, ev topicquiz.Event) {
	c := s.controller(w, r)
	if _, err := c.Dispatch(r.Context(), ev); err != nil {
		s.logger.Error("Dispatch failed", "event", string(ev.Kind), "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.NotFound(w, r)
		return
	}

	attempts, err := s.db.GetAttempts(r.Context(), historyLimit)
	if err != nil {
		s.logger.Error("Failed to get attempts", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	s.render(w, "history", map[string]interface{}{
		"Attempts": attempts,
		"Archive":  true,
	})
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.NotFound(w, r)
		return
	}

	attempt, state, err := s.db.LoadAttempt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, topicquiz.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("Failed to load attempt", "error", err)
		http.Error(w, "Failed to load attempt", http.StatusInternalServerError)
		return
	}

	s.render(w, "attempt", map[string]interface{}{
		"Attempt": attempt,
		"View":    topicquiz.Render(state, false),
		"Archive": true,
	})
}
