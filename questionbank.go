package quizapp

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBankYAML []byte

// Bank is the ordered, read-only list of questions a quiz runs through
type Bank struct {
	questions []Question
}

// bankFile is the on-disk structure of a bank (YAML or JSON)
type bankFile struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// NewBank validates questions and returns them as a bank in the given order
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}

	b := &Bank{questions: make([]Question, len(questions))}
	seen := make(map[int]bool, len(questions))
	for i, q := range questions {
		if err := q.validate(); err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrInvalidQuestion, q.ID)
		}
		b.questions[i] = q.clone()
		seen[q.ID] = true
	}
	return b, nil
}

// ParseBank decodes a bank document; format is "yaml" or "json"
func ParseBank(data []byte, format string) (*Bank, error) {
	var file bankFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse yaml bank: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse json bank: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported bank format %q", format)
	}
	return NewBank(file.Questions)
}

// LoadBankFile reads a .yaml, .yml or .json bank file
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank file %s: %w", path, err)
	}
	b, err := ParseBank(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// DefaultBank returns the bank bundled with the binary
func DefaultBank() *Bank {
	b, err := ParseBank(defaultBankYAML, "yaml")
	if err != nil {
		panic(fmt.Sprintf("bundled question bank: %v", err))
	}
	return b
}

// Len returns the number of questions
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns a copy of the question at position i
func (b *Bank) At(i int) Question {
	return b.questions[i].clone()
}

// Questions returns a copy of all questions in bank order
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// Score counts the questions whose recorded answer is the correct key.
// Unanswered questions never count.
func (b *Bank) Score(answers map[int]string) int {
	score := 0
	for _, q := range b.questions {
		if key, ok := answers[q.ID]; ok && key == q.Answer {
			score++
		}
	}
	return score
}
