package quizapp

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeQuizDB creates a database in the generator's schema
func writeQuizDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE quizzes (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			source_material TEXT,
			difficulty TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'generating'
		)`,
		`CREATE TABLE questions (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer INTEGER NOT NULL,
			explanation TEXT
		)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	now := time.Now()
	quizzes := []struct {
		id     string
		status string
		at     time.Time
	}{
		{"old", "completed", now.Add(-time.Hour)},
		{"new", "completed", now},
		{"wip", "generating", now.Add(time.Hour)},
	}
	for _, q := range quizzes {
		_, err := db.Exec(
			"INSERT INTO quizzes (id, topic, num_questions, source_material, difficulty, created_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
			q.id, "topic "+q.id, 2, "", "easy", q.at, q.status,
		)
		require.NoError(t, err)
	}

	questions := []struct {
		id, quiz string
		num      int
		text     string
		options  string
		correct  int
	}{
		{"n2", "new", 2, "Second", `["x","y","z"]`, 2},
		{"n1", "new", 1, "First", `["p","q"]`, 0},
		{"o1", "old", 1, "Old one", `["a","b"]`, 1},
	}
	for _, q := range questions {
		_, err := db.Exec(
			"INSERT INTO questions (id, quiz_id, question_num, text, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?, ?)",
			q.id, q.quiz, q.num, q.text, q.options, q.correct, "",
		)
		require.NoError(t, err)
	}
	return path
}

func TestBankDB_ListQuizzes(t *testing.T) {
	bdb, err := OpenBankDB(writeQuizDB(t))
	require.NoError(t, err)
	defer bdb.Close()

	quizzes, err := bdb.ListQuizzes()
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	assert.Equal(t, "new", quizzes[0].ID)
	assert.Equal(t, "old", quizzes[1].ID)
}

func TestBankDB_LoadBank(t *testing.T) {
	bdb, err := OpenBankDB(writeQuizDB(t))
	require.NoError(t, err)
	defer bdb.Close()

	b, err := bdb.LoadBank("new")
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	first := b.At(0)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "First", first.Text)
	assert.Equal(t, map[string]string{"A": "p", "B": "q"}, first.Choices)
	assert.Equal(t, "A", first.Answer)

	second := b.At(1)
	assert.Equal(t, []string{"A", "B", "C"}, second.Keys())
	assert.Equal(t, "C", second.Answer)

	_, err = bdb.LoadBank("missing")
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestDBQuestion_ToQuestion(t *testing.T) {
	_, err := DBQuestion{QuestionNum: 1, Options: "not json"}.toQuestion()
	assert.Error(t, err)

	q, err := DBQuestion{QuestionNum: 1, Text: "t", Options: `["a"]`, CorrectAnswer: 5}.toQuestion()
	require.NoError(t, err)
	assert.Empty(t, q.Answer)
	assert.ErrorIs(t, q.validate(), ErrInvalidQuestion)
}

func TestOpenBank(t *testing.T) {
	dbPath := writeQuizDB(t)

	b, err := OpenBank(BankSource{DB: dbPath})
	require.NoError(t, err)
	assert.Equal(t, "First", b.At(0).Text, "newest completed quiz")

	b, err = OpenBank(BankSource{DB: dbPath, QuizID: "old"})
	require.NoError(t, err)
	assert.Equal(t, "Old one", b.At(0).Text)

	b, err = OpenBank(BankSource{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBank().Len(), b.Len())

	_, err = OpenBank(BankSource{File: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}
