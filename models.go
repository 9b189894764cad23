package quizapp

import (
	"errors"
	"fmt"
	"sort"
)

// QuestionSeconds is the countdown every question starts with
const QuestionSeconds = 90

var (
	ErrEmptyBank       = errors.New("question bank is empty")
	ErrInvalidQuestion = errors.New("invalid question")
	ErrNotInQuiz       = errors.New("no quiz in progress")
	ErrUnknownChoice   = errors.New("unknown choice")
	ErrStale           = errors.New("quiz has moved on")
)

// Question represents a single multiple choice question
type Question struct {
	ID      int               `json:"id" yaml:"id"`
	Text    string            `json:"question" yaml:"question"`
	Choices map[string]string `json:"choices" yaml:"choices"`
	Answer  string            `json:"answer" yaml:"answer"` // key into Choices
}

// Keys returns the choice keys in display order
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Choices))
	for k := range q.Choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasChoice reports whether key labels one of the question's choices
func (q Question) HasChoice(key string) bool {
	_, ok := q.Choices[key]
	return ok
}

// clone returns q with its own Choices map
func (q Question) clone() Question {
	choices := make(map[string]string, len(q.Choices))
	for k, v := range q.Choices {
		choices[k] = v
	}
	q.Choices = choices
	return q
}

func (q Question) validate() error {
	if len(q.Choices) == 0 {
		return fmt.Errorf("%w: question %d has no choices", ErrInvalidQuestion, q.ID)
	}
	if !q.HasChoice(q.Answer) {
		return fmt.Errorf("%w: question %d answer %q is not a choice", ErrInvalidQuestion, q.ID, q.Answer)
	}
	return nil
}

// View is the screen currently shown
type View string

const (
	ViewHome   View = "home"
	ViewQuiz   View = "quiz"
	ViewResult View = "result"
)

// Cause names the event that produced a snapshot
type Cause string

const (
	CauseInit    Cause = "init"
	CauseStart   Cause = "start"
	CauseAnswer  Cause = "answer"
	CauseAdvance Cause = "advance"
	CauseRetreat Cause = "retreat"
	CauseTick    Cause = "tick"
	CauseExpire  Cause = "expire"
)

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	View      View      `json:"view"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Remaining int       `json:"remaining"`
	Score     int       `json:"score"`
	HighScore int       `json:"high_score"`
	Question  *Question `json:"question,omitempty"` // only set in the quiz view
	Selected  string    `json:"selected,omitempty"`
	Cause     Cause     `json:"cause"`
	Seq       uint64    `json:"seq"` // increases with every state change
}

// IsLast reports whether the current question is the final one
func (s Snapshot) IsLast() bool {
	return s.Index == s.Total-1
}

// Clock formats the remaining time as M:SS
func (s Snapshot) Clock() string {
	return fmt.Sprintf("%d:%02d", s.Remaining/60, s.Remaining%60)
}

// Finished reports whether this snapshot is the transition into the result view
func (s Snapshot) Finished() bool {
	return s.View == ViewResult && (s.Cause == CauseAdvance || s.Cause == CauseExpire)
}
