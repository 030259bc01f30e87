// Package cooking implements the guided cooking-mode step sequencer. A
// Session is a mutex-guarded state machine over an immutable instruction
// list; it owns no goroutines and no clock. The transport layer delivers
// commands, injects one Tick per second, and receives the resulting
// events through the Events sink.
package cooking

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mealcraft/mealcraft-api/internal/models"
)

// Events receives session output. Implementations must not call back into
// the session; they run under its lock.
type Events interface {
	// Narrate speaks the given text to the cook.
	Narrate(text string)
	// CancelNarration stops any in-flight narration.
	CancelNarration()
	// StepChanged reports the new 1-based step and the total step count.
	StepChanged(step, total int)
	// TimerTick reports the remaining seconds on the step timer.
	TimerTick(remaining int)
	// Haptic requests a vibration pulse on timer expiry.
	Haptic()
	// Completed reports that the cook finished the recipe.
	Completed()
	// ExitRequested reports that the cook asked to leave mid-session.
	ExitRequested()
}

// NopEvents is an Events implementation that discards everything. Useful
// for headless sessions and tests.
type NopEvents struct{}

func (NopEvents) Narrate(string)       {}
func (NopEvents) CancelNarration()     {}
func (NopEvents) StepChanged(int, int) {}
func (NopEvents) TimerTick(int)        {}
func (NopEvents) Haptic()              {}
func (NopEvents) Completed()           {}
func (NopEvents) ExitRequested()       {}

// ErrNotLastStep is returned when Complete is called before the final step.
var ErrNotLastStep = errors.New("recipe can only be completed on the final step")

// noTimer marks a step without a countdown.
const noTimer = -1

// Session drives a cook through a recipe's instructions.
type Session struct {
	mu        sync.Mutex
	recipe    *models.Recipe
	events    Events
	step      int // 0-based index into recipe.Instructions
	remaining int // seconds left on the step timer, noTimer when none
	paused    bool
	muted     bool
	done      bool
}

// NewSession creates a session positioned before the first step. Call
// Start to enter step one. A nil events sink falls back to NopEvents.
func NewSession(recipe *models.Recipe, events Events) *Session {
	if events == nil {
		events = NopEvents{}
	}
	return &Session{
		recipe:    recipe,
		events:    events,
		remaining: noTimer,
	}
}

// Start enters the first step, narrating it and arming its timer.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterStep(0)
}

// Next advances to the following step. On the last step it is a no-op.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.step >= s.total()-1 {
		return
	}
	s.enterStep(s.step + 1)
}

// Prev moves back one step. On the first step it is a no-op.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.step <= 0 {
		return
	}
	s.enterStep(s.step - 1)
}

// Pause suspends narration and the countdown.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.paused {
		return
	}
	s.paused = true
	s.events.CancelNarration()
}

// Resume lifts a pause. The current narration is not replayed; the
// countdown picks up where it stopped.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Mute silences narration and cancels any in flight.
func (s *Session) Mute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.muted {
		return
	}
	s.muted = true
	s.events.CancelNarration()
}

// Unmute re-enables narration and re-narrates the current step.
func (s *Session) Unmute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.muted {
		return
	}
	s.muted = false
	s.narrateCurrent()
}

// Repeat re-narrates the current step.
func (s *Session) Repeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.narrateCurrent()
}

// Complete finishes the session. It only succeeds on the final step.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	if s.step != s.total()-1 {
		return ErrNotLastStep
	}
	s.done = true
	s.events.CancelNarration()
	s.events.Completed()
	return nil
}

// RequestExit asks the cook to confirm leaving. The session stays live
// until ConfirmExit.
func (s *Session) RequestExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.events.ExitRequested()
}

// ConfirmExit discards the session.
func (s *Session) ConfirmExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.events.CancelNarration()
}

// Tick advances the step timer by one second. Ticks are ignored while
// paused, after completion, and on steps without a timer. When the timer
// reaches zero the session emits a haptic pulse and auto-advances, except
// on the final step.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.paused || s.remaining <= 0 {
		return
	}

	s.remaining--
	s.events.TimerTick(s.remaining)

	if s.remaining == 0 {
		s.events.Haptic()
		if s.step < s.total()-1 {
			s.enterStep(s.step + 1)
		}
	}
}

// Step returns the current 1-based step number.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step + 1
}

// Remaining returns the seconds left on the step timer, or -1 when the
// step has none.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Muted reports whether narration is muted.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Done reports whether the session has been completed or exited.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) total() int {
	return len(s.recipe.Instructions)
}

// enterStep moves to the given step index, clamped to the instruction
// list. Any in-flight narration is cancelled, the timer is re-armed from
// the step's duration, and the step is narrated unless muted or paused.
func (s *Session) enterStep(i int) {
	if s.total() == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > s.total()-1 {
		i = s.total() - 1
	}

	s.events.CancelNarration()
	s.step = i

	inst := s.recipe.Instructions[i]
	if inst.Duration > 0 {
		s.remaining = inst.Duration * 60
	} else {
		s.remaining = noTimer
	}

	s.events.StepChanged(i+1, s.total())
	s.narrateCurrent()
}

// narrateCurrent speaks the current step unless muted or paused.
func (s *Session) narrateCurrent() {
	if s.muted || s.paused || s.done || s.total() == 0 {
		return
	}
	inst := s.recipe.Instructions[s.step]
	s.events.Narrate(fmt.Sprintf("Step %d. %s", s.step+1, inst.Description))
}
