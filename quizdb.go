package topicquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when an archived quiz or attempt does not exist
var ErrNotFound = errors.New("not found")

// DB is the optional quiz archive
type DB struct {
	db *sql.DB
}

// DBQuiz represents a generated quiz in the database
type DBQuiz struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	NumQuestions int       `json:"num_questions"`
	CreatedAt    time.Time `json:"created_at"`
}

// DBQuestion represents a question in the database
type DBQuestion struct {
	ID            string `json:"id"`
	QuizID        string `json:"quiz_id"`
	QuestionNum   int    `json:"question_num"`
	Text          string `json:"text"`
	Options       string `json:"options"` // JSON object with keys A-D
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// DBAttempt is one scored submission of a quiz
type DBAttempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	Topic       string    `json:"topic"`
	Answers     string    `json:"answers"` // JSON object index -> key
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Percent returns the attempt score as a rounded percentage
func (a DBAttempt) Percent() int {
	return Percent(a.Score, a.Total)
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite serialises writers; one connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			explanation TEXT,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			answers TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			submitted_at DATETIME NOT NULL,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordQuiz stores a generated quiz and its questions and returns the quiz ID
func (db *DB) RecordQuiz(ctx context.Context, topic string, quiz Quiz) (string, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	quizID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO quizzes (id, topic, num_questions, created_at) VALUES (?, ?, ?, ?)",
		quizID, topic, len(quiz), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create quiz: %w", err)
	}

	for i, q := range quiz {
		optionsJSON, err := OptionsToJSON(q.Options)
		if err != nil {
			return "", err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO questions (id, quiz_id, question_num, text, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?, ?)",
			uuid.NewString(), quizID, i+1, q.Question, optionsJSON, string(q.CorrectAnswer), q.Explanation,
		)
		if err != nil {
			return "", fmt.Errorf("failed to create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit quiz: %w", err)
	}
	return quizID, nil
}

// RecordAttempt stores a scored submission
func (db *DB) RecordAttempt(ctx context.Context, quizID string, answers UserAnswers, score, total int) error {
	answersJSON, err := AnswersToJSON(answers)
	if err != nil {
		return err
	}
	_, err = db.db.ExecContext(ctx,
		"INSERT INTO attempts (id, quiz_id, answers, score, total, submitted_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), quizID, answersJSON, score, total, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetQuiz retrieves a quiz by ID
func (db *DB) GetQuiz(ctx context.Context, id string) (*DBQuiz, error) {
	var quiz DBQuiz
	err := db.db.QueryRowContext(ctx,
		"SELECT id, topic, num_questions, created_at FROM quizzes WHERE id = ?",
		id,
	).Scan(&quiz.ID, &quiz.Topic, &quiz.NumQuestions, &quiz.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuestions retrieves all questions for a quiz
func (db *DB) GetQuestions(ctx context.Context, quizID string) ([]DBQuestion, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, quiz_id, question_num, text, options, correct_answer, explanation FROM questions WHERE quiz_id = ? ORDER BY question_num",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []DBQuestion
	for rows.Next() {
		var question DBQuestion
		err := rows.Scan(&question.ID, &question.QuizID, &question.QuestionNum, &question.Text, &question.Options, &question.CorrectAnswer, &question.Explanation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// LoadQuiz rebuilds a Quiz from the archive
func (db *DB) LoadQuiz(ctx context.Context, quizID string) (Quiz, error) {
	rows, err := db.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz := make(Quiz, 0, len(rows))
	for _, row := range rows {
		options, err := JSONToOptions(row.Options)
		if err != nil {
			return nil, err
		}
		quiz = append(quiz, Question{
			Question:      row.Text,
			Options:       options,
			CorrectAnswer: OptionKey(row.CorrectAnswer),
			Explanation:   row.Explanation,
		})
	}
	return quiz, nil
}

// GetAttempts retrieves the most recent attempts, optionally limited by count
func (db *DB) GetAttempts(ctx context.Context, limit int) ([]DBAttempt, error) {
	query := `SELECT a.id, a.quiz_id, q.topic, a.answers, a.score, a.total, a.submitted_at
		FROM attempts a JOIN quizzes q ON q.id = a.quiz_id
		ORDER BY a.submitted_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}
	defer rows.Close()

	var attempts []DBAttempt
	for rows.Next() {
		var a DBAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.Topic, &a.Answers, &a.Score, &a.Total, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}

	return attempts, nil
}

// GetAttempt retrieves one attempt by ID
func (db *DB) GetAttempt(ctx context.Context, id string) (*DBAttempt, error) {
	var a DBAttempt
	err := db.db.QueryRowContext(ctx,
		`SELECT a.id, a.quiz_id, q.topic, a.answers, a.score, a.total, a.submitted_at
		FROM attempts a JOIN quizzes q ON q.id = a.quiz_id
		WHERE a.id = ?`,
		id,
	).Scan(&a.ID, &a.QuizID, &a.Topic, &a.Answers, &a.Score, &a.Total, &a.SubmittedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: attempt %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return &a, nil
}

// LoadAttempt rebuilds an archived attempt as a submitted state, ready to render
func (db *DB) LoadAttempt(ctx context.Context, id string) (*DBAttempt, State, error) {
	attempt, err := db.GetAttempt(ctx, id)
	if err != nil {
		return nil, State{}, err
	}

	stored, err := db.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, State{}, err
	}

	quiz, err := db.LoadQuiz(ctx, stored.ID)
	if err != nil {
		return nil, State{}, err
	}

	answers, err := JSONToAnswers(attempt.Answers, len(quiz))
	if err != nil {
		return nil, State{}, err
	}

	return attempt, ArchivedState(stored.Topic, quiz, answers), nil
}

// OptionsToJSON converts options to a JSON string
func OptionsToJSON(options Options) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions converts a JSON string to options
func JSONToOptions(optionsJSON string) (Options, error) {
	var options Options
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return Options{}, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}

// AnswersToJSON converts the answered slots to a JSON object; unanswered slots are omitted
func AnswersToJSON(answers UserAnswers) (string, error) {
	picked := lo.MapEntries(
		lo.PickBy(answers, func(_ int, key *OptionKey) bool { return key != nil }),
		func(i int, key *OptionKey) (string, OptionKey) { return fmt.Sprint(i), *key },
	)
	data, err := json.Marshal(picked)
	if err != nil {
		return "", fmt.Errorf("failed to marshal answers: %w", err)
	}
	return string(data), nil
}

// JSONToAnswers is the inverse of AnswersToJSON for a quiz of n questions.
// Indices outside the quiz and invalid keys are dropped.
func JSONToAnswers(answersJSON string, n int) (UserAnswers, error) {
	var picked map[string]string
	if err := json.Unmarshal([]byte(answersJSON), &picked); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}

	answers := NewUserAnswers(n)
	for k, v := range picked {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			continue
		}
		key, err := ParseOptionKey(v)
		if err != nil {
			continue
		}
		answers[i] = &key
	}
	return answers, nil
}
