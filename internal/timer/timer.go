// Package timer is a countdown or stopwatch driven by the frame loop.
package timer

import (
	"fmt"
	"time"
)

// Timer counts whole seconds up or down. It has no goroutine: the owner
// calls Advance once per frame with the frame duration.
type Timer struct {
	duration   int // seconds; 0 with countUp means no limit
	countUp    bool
	onTick     func(string)
	onComplete func()

	value   int           // seconds shown: remaining, or counted when counting up
	carry   time.Duration // sub-second remainder
	elapsed time.Duration
	running bool
	done    bool
}

// New creates a stopped timer. Callbacks may be nil. duration is truncated
// to whole seconds.
func New(duration time.Duration, countUp bool, onTick func(string), onComplete func()) *Timer {
	t := &Timer{
		duration:   int(duration / time.Second),
		countUp:    countUp,
		onTick:     onTick,
		onComplete: onComplete,
	}
	t.value = t.initial()
	return t
}

func (t *Timer) initial() int {
	if t.countUp {
		return 0
	}
	return t.duration
}

// Start runs the timer from its current value. A countdown with no time
// left completes at once.
func (t *Timer) Start() {
	if t.done {
		return
	}
	if !t.countUp && t.value <= 0 {
		t.finish()
		return
	}
	t.running = true
}

func (t *Timer) finish() {
	t.running = false
	t.done = true
	t.carry = 0
	if t.onComplete != nil {
		t.onComplete()
	}
}

// Stop pauses the timer.
func (t *Timer) Stop() { t.running = false }

// Resume restarts a stopped timer.
func (t *Timer) Resume() {
	if !t.running {
		t.Start()
	}
}

// Reset stops the timer, restores its initial value and reports it through
// the tick callback.
func (t *Timer) Reset() {
	t.running = false
	t.done = false
	t.value = t.initial()
	t.carry = 0
	t.elapsed = 0
	t.tick()
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool { return t.running }

// Done reports whether the timer reached its limit.
func (t *Timer) Done() bool { return t.done }

// Advance adds dt of running time, firing one tick per whole second crossed.
func (t *Timer) Advance(dt time.Duration) {
	if !t.running || dt <= 0 {
		return
	}
	t.elapsed += dt
	t.carry += dt
	for t.carry >= time.Second && t.running {
		t.carry -= time.Second
		if t.countUp {
			t.value++
		} else {
			t.value--
		}
		t.tick()
		if t.reachedLimit() {
			t.finish()
		}
	}
}

func (t *Timer) reachedLimit() bool {
	if t.countUp {
		return t.duration > 0 && t.value >= t.duration
	}
	return t.value <= 0
}

func (t *Timer) tick() {
	if t.onTick != nil {
		t.onTick(Format(t.value))
	}
}

// Remaining is the time left before completion. A stopwatch has none.
func (t *Timer) Remaining() time.Duration {
	if t.countUp {
		if t.duration == 0 {
			return 0
		}
		return time.Duration(t.duration-t.value) * time.Second
	}
	return time.Duration(t.value) * time.Second
}

// Elapsed is the running time since the last reset.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// ElapsedFormatted is Elapsed as m:ss.
func (t *Timer) ElapsedFormatted() string { return Format(int(t.elapsed / time.Second)) }

// Display is the current value as m:ss.
func (t *Timer) Display() string { return Format(t.value) }

// Format renders seconds as m:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
