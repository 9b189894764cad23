package quizapp

import (
	"sync"

	"go.uber.org/zap"
)

// Controller owns the quiz session: the current view, question index,
// countdown, answers, score and the high score for the process lifetime.
type Controller struct {
	mu sync.Mutex

	bank    *Bank
	ticks   TickSource
	seconds int

	view      View
	index     int
	remaining int
	answers   map[int]string
	score     int
	highScore int

	seq        uint64 // bumped on every committed change
	epoch      uint64 // bumped on every countdown (re)arm
	cancelTick func()

	listeners []func(Snapshot)
}

// Option configures a Controller
type Option func(*Controller)

// WithTickSource replaces the one-second ticker
func WithTickSource(ts TickSource) Option {
	return func(c *Controller) {
		c.ticks = ts
	}
}

// WithQuestionSeconds overrides the per-question countdown
func WithQuestionSeconds(seconds int) Option {
	return func(c *Controller) {
		if seconds > 0 {
			c.seconds = seconds
		}
	}
}

// NewController creates a controller on the home view
func NewController(bank *Bank, opts ...Option) *Controller {
	c := &Controller{
		bank:    bank,
		ticks:   EverySecond,
		seconds: QuestionSeconds,
		view:    ViewHome,
		answers: make(map[int]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.remaining = c.seconds
	return c
}

// OnChange registers a listener called after every state change.
// Listeners run outside the controller lock and may call back into it.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(CauseInit)
}

// Answers returns a copy of the answer record
func (c *Controller) Answers() map[int]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]string, len(c.answers))
	for id, key := range c.answers {
		out[id] = key
	}
	return out
}

// StartQuiz enters the quiz at the first question with a clean answer record
func (c *Controller) StartQuiz() {
	c.mu.Lock()
	c.index = 0
	c.answers = make(map[int]string)
	c.score = 0
	c.remaining = c.seconds
	c.view = ViewQuiz
	c.rearmLocked()
	VerboseLog("Quiz started with %d questions", c.bank.Len())
	c.commit(CauseStart)
}

// Retry starts a fresh quiz from the result view
func (c *Controller) Retry() {
	c.StartQuiz()
}

// SelectAnswer records key for the current question, replacing any earlier choice
func (c *Controller) SelectAnswer(key string) error {
	return c.selectAnswer(-1, key)
}

// SelectAnswerAt is SelectAnswer that fails with ErrStale unless index is current
func (c *Controller) SelectAnswerAt(index int, key string) error {
	return c.selectAnswer(index, key)
}

func (c *Controller) selectAnswer(index int, key string) error {
	c.mu.Lock()
	if err := c.checkLocked(index); err != nil {
		c.mu.Unlock()
		return err
	}
	q := c.bank.At(c.index)
	if !q.HasChoice(key) {
		c.mu.Unlock()
		return ErrUnknownChoice
	}
	c.answers[q.ID] = key
	VerboseLog("Question %d answered %s", q.ID, key)
	c.commit(CauseAnswer)
	return nil
}

// Advance moves to the next question, or scores the quiz on the last one.
// It does nothing outside the quiz view.
func (c *Controller) Advance() {
	_ = c.advance(-1)
}

// AdvanceFrom is Advance that fails with ErrStale unless index is current
func (c *Controller) AdvanceFrom(index int) error {
	return c.advance(index)
}

func (c *Controller) advance(index int) error {
	c.mu.Lock()
	if err := c.checkLocked(index); err != nil {
		c.mu.Unlock()
		if index < 0 {
			return nil
		}
		return err
	}
	c.advanceLocked()
	c.commit(CauseAdvance)
	return nil
}

// Retreat moves to the previous question. It does nothing on the first question.
func (c *Controller) Retreat() {
	_ = c.retreat(-1)
}

// RetreatFrom is Retreat that fails with ErrStale unless index is current
func (c *Controller) RetreatFrom(index int) error {
	return c.retreat(index)
}

func (c *Controller) retreat(index int) error {
	c.mu.Lock()
	if err := c.checkLocked(index); err != nil {
		c.mu.Unlock()
		if index < 0 {
			return nil
		}
		return err
	}
	if c.index == 0 {
		c.mu.Unlock()
		return nil
	}
	c.index--
	c.remaining = c.seconds
	c.rearmLocked()
	c.commit(CauseRetreat)
	return nil
}

// Close releases the countdown subscription
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickLocked()
}

// checkLocked verifies the quiz view and, when index >= 0, the current index
func (c *Controller) checkLocked(index int) error {
	if c.view != ViewQuiz {
		if index >= 0 {
			return ErrStale
		}
		return ErrNotInQuiz
	}
	if index >= 0 && index != c.index {
		return ErrStale
	}
	return nil
}

func (c *Controller) advanceLocked() {
	if c.index < c.bank.Len()-1 {
		c.index++
		c.remaining = c.seconds
		c.rearmLocked()
		return
	}

	c.stopTickLocked()
	c.score = c.bank.Score(c.answers)
	if c.score > c.highScore {
		c.highScore = c.score
	}
	c.view = ViewResult
	logger.Info("Quiz finished",
		zap.Int("score", c.score),
		zap.Int("high_score", c.highScore),
		zap.Int("questions", c.bank.Len()))
}

// tick handles one countdown tick from the subscription armed at epoch
func (c *Controller) tick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.view != ViewQuiz {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.commit(CauseTick)
		return
	}
	VerboseLog("Time ran out on question %d", c.index+1)
	c.advanceLocked()
	c.commit(CauseExpire)
}

// rearmLocked replaces the countdown subscription with a fresh one
func (c *Controller) rearmLocked() {
	c.stopTickLocked()
	c.epoch++
	epoch := c.epoch
	c.cancelTick = c.ticks.Subscribe(func() { c.tick(epoch) })
}

func (c *Controller) stopTickLocked() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
	// invalidate any tick already in flight
	c.epoch++
}

// commit snapshots the state, releases the lock and notifies listeners
func (c *Controller) commit(cause Cause) {
	c.seq++
	snap := c.snapshotLocked(cause)
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (c *Controller) snapshotLocked(cause Cause) Snapshot {
	snap := Snapshot{
		View:      c.view,
		Index:     c.index,
		Total:     c.bank.Len(),
		Remaining: c.remaining,
		Score:     c.score,
		HighScore: c.highScore,
		Cause:     cause,
		Seq:       c.seq,
	}
	if c.view == ViewQuiz {
		q := c.bank.At(c.index)
		snap.Question = &q
		snap.Selected = c.answers[q.ID]
	}
	return snap
}
