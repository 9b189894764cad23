package quizapp

import (
	"sync"
	"time"
)

// TickSource hands out scoped tick subscriptions. fn is called once per tick
// until cancel is called. cancel must be safe to call more than once and
// must not wait for an in-flight fn.
type TickSource interface {
	Subscribe(fn func()) (cancel func())
}

// IntervalTicks ticks on a time.Ticker
type IntervalTicks struct {
	Interval time.Duration
}

// EverySecond drives the question countdown
var EverySecond = IntervalTicks{Interval: time.Second}

func (t IntervalTicks) Subscribe(fn func()) func() {
	ticker := time.NewTicker(t.Interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// done may have closed while waiting on the ticker
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
