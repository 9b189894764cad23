package quizapp

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// BankDB is a read-only connection to a generated quiz database
type BankDB struct {
	db *sql.DB
}

// DBQuiz represents a quiz row in the database
type DBQuiz struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	NumQuestions int       `json:"num_questions"`
	Difficulty   string    `json:"difficulty"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"` // "generating", "ready", "completed"
}

// DBQuestion represents a question row in the database
type DBQuestion struct {
	QuestionNum   int
	Text          string
	Options       string // JSON array of strings
	CorrectAnswer int    // 0-based index into Options
}

// OpenBankDB opens the database at dbPath in read-only mode
func OpenBankDB(dbPath string) (*BankDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &BankDB{db: db}, nil
}

// Close closes the database connection
func (bdb *BankDB) Close() error {
	return bdb.db.Close()
}

// ListQuizzes returns the completed quizzes, newest first
func (bdb *BankDB) ListQuizzes() ([]DBQuiz, error) {
	rows, err := bdb.db.Query(
		"SELECT id, topic, num_questions, difficulty, created_at, status FROM quizzes WHERE status = 'completed' ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []DBQuiz
	for rows.Next() {
		var quiz DBQuiz
		if err := rows.Scan(&quiz.ID, &quiz.Topic, &quiz.NumQuestions, &quiz.Difficulty, &quiz.CreatedAt, &quiz.Status); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// LoadBank reads the questions of quizID in question order and converts them into a bank
func (bdb *BankDB) LoadBank(quizID string) (*Bank, error) {
	rows, err := bdb.db.Query(
		"SELECT question_num, text, options, correct_answer FROM questions WHERE quiz_id = ? ORDER BY question_num",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var row DBQuestion
		if err := rows.Scan(&row.QuestionNum, &row.Text, &row.Options, &row.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q, err := row.toQuestion()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	VerboseLog("Loaded %d questions for quiz %s", len(questions), quizID)
	b, err := NewBank(questions)
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	return b, nil
}

// toQuestion labels options A, B, C... in stored order
func (row DBQuestion) toQuestion() (Question, error) {
	var options []string
	if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
		return Question{}, fmt.Errorf("failed to unmarshal options for question %d: %w", row.QuestionNum, err)
	}
	if len(options) > 26 {
		return Question{}, fmt.Errorf("%w: question %d has %d options", ErrInvalidQuestion, row.QuestionNum, len(options))
	}

	q := Question{
		ID:      row.QuestionNum,
		Text:    row.Text,
		Choices: make(map[string]string, len(options)),
	}
	for i, option := range options {
		q.Choices[choiceKey(i)] = option
	}
	if row.CorrectAnswer >= 0 && row.CorrectAnswer < len(options) {
		q.Answer = choiceKey(row.CorrectAnswer)
	}
	return q, nil
}

func choiceKey(i int) string {
	return string(rune('A' + i))
}

// BankSource says where the question bank comes from
type BankSource struct {
	File   string // YAML or JSON bank file
	DB     string // generated quiz database
	QuizID string // quiz to import from DB; newest completed when empty
}

// OpenBank loads the bank from the database, a file or the bundled default, in that order
func OpenBank(src BankSource) (*Bank, error) {
	switch {
	case src.DB != "":
		bdb, err := OpenBankDB(src.DB)
		if err != nil {
			return nil, err
		}
		defer bdb.Close()

		quizID := src.QuizID
		if quizID == "" {
			quizzes, err := bdb.ListQuizzes()
			if err != nil {
				return nil, err
			}
			if len(quizzes) == 0 {
				return nil, fmt.Errorf("no completed quizzes in %s: %w", src.DB, ErrEmptyBank)
			}
			quizID = quizzes[0].ID
		}
		return bdb.LoadBank(quizID)
	case src.File != "":
		return LoadBankFile(src.File)
	default:
		return DefaultBank(), nil
	}
}
