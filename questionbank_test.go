package quizapp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBank_Validation(t *testing.T) {
	choices := map[string]string{"A": "one", "B": "two"}

	tests := []struct {
		name      string
		questions []Question
		wantErr   error
	}{
		{name: "empty", questions: nil, wantErr: ErrEmptyBank},
		{
			name:      "answer not a choice",
			questions: []Question{{ID: 1, Text: "q", Choices: choices, Answer: "C"}},
			wantErr:   ErrInvalidQuestion,
		},
		{
			name:      "no choices",
			questions: []Question{{ID: 1, Text: "q", Answer: "A"}},
			wantErr:   ErrInvalidQuestion,
		},
		{
			name: "duplicate id",
			questions: []Question{
				{ID: 1, Text: "q", Choices: choices, Answer: "A"},
				{ID: 1, Text: "r", Choices: choices, Answer: "B"},
			},
			wantErr: ErrInvalidQuestion,
		},
		{
			name: "valid",
			questions: []Question{
				{ID: 7, Text: "q", Choices: choices, Answer: "A"},
				{ID: 3, Text: "r", Choices: choices, Answer: "B"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBank(tt.questions)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.questions), b.Len())
			assert.Equal(t, 7, b.At(0).ID, "bank keeps the given order")
			assert.Equal(t, 3, b.At(1).ID)
		})
	}
}

func TestNewBank_CopiesChoices(t *testing.T) {
	choices := map[string]string{"A": "one", "B": "two"}
	b, err := NewBank([]Question{{ID: 1, Text: "q", Choices: choices, Answer: "A"}})
	require.NoError(t, err)

	choices["A"] = "changed"
	assert.Equal(t, "one", b.At(0).Choices["A"])

	q := b.At(0)
	q.Choices["Z"] = "injected"
	assert.False(t, b.At(0).HasChoice("Z"))

	all := b.Questions()
	all[0].Choices["Y"] = "injected"
	assert.False(t, b.At(0).HasChoice("Y"))
}

func TestQuestion_Keys(t *testing.T) {
	q := Question{Choices: map[string]string{"C": "c", "A": "a", "D": "d", "B": "b"}}
	assert.Equal(t, []string{"A", "B", "C", "D"}, q.Keys())
	assert.True(t, q.HasChoice("D"))
	assert.False(t, q.HasChoice("E"))
}

func TestBank_Score(t *testing.T) {
	b := DefaultBank()

	all := make(map[int]string)
	for _, q := range b.Questions() {
		all[q.ID] = q.Answer
	}

	tests := []struct {
		name    string
		answers map[int]string
		want    int
	}{
		{name: "unanswered", answers: map[int]string{}, want: 0},
		{name: "all correct", answers: all, want: b.Len()},
		{name: "one wrong one right", answers: map[int]string{1: "B", 2: "A"}, want: 1},
		{name: "unknown ids ignored", answers: map[int]string{99: "A"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Score(tt.answers))
		})
	}
}

func TestParseBank(t *testing.T) {
	yamlDoc := []byte(`
questions:
  - id: 1
    question: Two plus two?
    choices: {A: "3", B: "4"}
    answer: B
`)
	jsonDoc := []byte(`{"questions":[{"id":1,"question":"Two plus two?","choices":{"A":"3","B":"4"},"answer":"B"}]}`)

	for format, data := range map[string][]byte{"yaml": yamlDoc, "json": jsonDoc} {
		t.Run(format, func(t *testing.T) {
			b, err := ParseBank(data, format)
			require.NoError(t, err)
			require.Equal(t, 1, b.Len())
			q := b.At(0)
			assert.Equal(t, "Two plus two?", q.Text)
			assert.Equal(t, "B", q.Answer)
			assert.Equal(t, "4", q.Choices["B"])
		})
	}

	_, err := ParseBank(jsonDoc, "toml")
	assert.Error(t, err)

	_, err = ParseBank([]byte("{"), "json")
	assert.Error(t, err)
}

func TestLoadBankFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
questions:
  - id: 4
    question: Capital of France?
    choices: {A: Paris, B: Rome}
    answer: A
`), 0o644))

	b, err := LoadBankFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, b.At(0).ID)

	_, err = LoadBankFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultBank(t *testing.T) {
	b := DefaultBank()
	assert.Equal(t, 5, b.Len())
	for _, q := range b.Questions() {
		assert.True(t, q.HasChoice(q.Answer), "question %d", q.ID)
	}
}
