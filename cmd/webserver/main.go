package main

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"topicquiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName  = "quiz-session"
	sessionIDKey = "sid"

	// sessionMaxAge bounds both the cookie and the in-memory controller
	sessionMaxAge = 24 * time.Hour
	sweepInterval = 10 * time.Minute
)

// quizSession is the in-memory side of a browser session
type quizSession struct {
	controller *topicquiz.Controller
	lastSeen   time.Time
}

type Server struct {
	logger    *topicquiz.Logger
	generator topicquiz.Generator
	db        *topicquiz.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template

	mu          sync.RWMutex
	controllers map[string]*quizSession
	now         func() time.Time
}

func main() {
	cfg := topicquiz.ConfigFromEnv()
	topicquiz.SetVerbose(cfg.Verbose)

	logger, err := topicquiz.NewLogger(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var generator topicquiz.Generator
	if cfg.Configured() {
		generator = topicquiz.NewQuestionMaker(cfg, logger)
	} else {
		logger.Warn("OPENAI_API_KEY is not set, quiz generation is disabled")
	}

	var db *topicquiz.DB
	if cfg.DBPath != "" {
		db, err = topicquiz.OpenDB(cfg.DBPath)
		if err != nil {
			logger.Fatal("Failed to open database", "path", cfg.DBPath, "error", err)
		}
		defer db.CloseDB()

		if err := db.CreateTables(); err != nil {
			logger.Fatal("Failed to create tables", "error", err)
		}
	}

	server, err := NewServer(logger, generator, db, []byte(cfg.SessionSecret))
	if err != nil {
		logger.Fatal("Failed to load templates", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go server.sweepSessions(context.Background(), sweepInterval)

	logger.Info("Starting server", "port", cfg.Port, "configured", cfg.Configured(), "archive", db != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server stopped", "error", err)
	}
}

// NewServer wires the handlers. A nil generator disables generation; a nil db
// disables the archive.
func NewServer(logger *topicquiz.Logger, generator topicquiz.Generator, db *topicquiz.DB, secret []byte) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		logger:      logger,
		generator:   generator,
		db:          db,
		store:       store,
		templates:   templates,
		controllers: make(map[string]*quizSession),
		now:         time.Now,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Post("/generate", s.handleGenerate)
	r.Post("/answer", s.handleAnswer)
	r.Post("/submit", s.handleSubmit)
	r.Post("/reset", s.handleReset)
	r.Get("/history", s.handleHistory)
	r.Get("/history/{id}", s.handleAttempt)

	return r
}

func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"history", "templates/history.html"},
		{"attempt", "templates/attempt.html"},
	}

	for _, tmpl := range templateFiles {
		t, err := template.New(tmpl.name).ParseFS(templateFS, "templates/base.html", "templates/results.html", tmpl.file)
		if err != nil {
			return nil, err
		}
		templates[tmpl.name] = t
	}
	return templates, nil
}

// controller returns the state machine bound to the browser session, creating
// both on first visit
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *topicquiz.Controller {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with another secret; start over with a fresh session
		s.logger.Debug("Discarding unreadable session", "error", err)
	}

	sid, _ := session.Values[sessionIDKey].(string)
	if sid == "" {
		sid = uuid.NewString()
		session.Values[sessionIDKey] = sid
		if err := session.Save(r, w); err != nil {
			s.logger.Error("Session save error", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	qs, ok := s.controllers[sid]
	if !ok {
		c := topicquiz.NewController(s.generator, s.logger.With("session_id", sid))
		if s.db != nil {
			c.SetRecorder(s.db)
		}
		qs = &quizSession{controller: c}
		s.controllers[sid] = qs
	}
	qs.lastSeen = s.now()
	return qs.controller
}

// evictIdle drops sessions not seen for longer than the cookie lifetime.
// Sessions with a request in flight are kept.
func (s *Server) evictIdle() int {
	cutoff := s.now().Add(-sessionMaxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for sid, qs := range s.controllers {
		if qs.lastSeen.After(cutoff) || qs.controller.Snapshot().Loading() {
			continue
		}
		delete(s.controllers, sid)
		evicted++
	}
	return evicted
}

func (s *Server) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(); n > 0 {
				s.logger.Info("Evicted idle sessions", "count", n)
			}
		}
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.Error("Template error", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
