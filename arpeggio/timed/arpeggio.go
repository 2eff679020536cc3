// Package timed implements the wall-clock arpeggio variant: each step
// carries a Duration that elapses before it sounds, counted from the
// previous step's onset (the first step's wait is the gap as the cycle
// wraps from the last step back to it), and
// the accompanying Player drives it from a dedicated worker goroutine
// instead of clock ticks.
package timed

import (
	"strings"
	"time"

	"github.com/davidlang42/midi-arpeggiator/arperr"
	"github.com/davidlang42/midi-arpeggiator/model"
)

type timedStep struct {
	wait time.Duration
	step model.Step
}

// Arpeggio is a cyclic sequence of steps, each with a wall-clock wait
// duration that elapses before it sounds, counted from the previous
// step's onset.
type Arpeggio struct {
	steps []timedStep
}

// NoteOnset pairs a note with the instant it was struck.
type NoteOnset struct {
	At   time.Time
	Note model.NoteDetails
}

// FromOnsets builds a timed Arpeggio with one step per note, using the
// press-to-press intervals as each step's wait, with a final wrap from
// the last note back to finish (the instant the recording ended).
func FromOnsets(notes []NoteOnset, finish time.Time) (*Arpeggio, error) {
	if len(notes) == 0 {
		return nil, arperr.ErrEmptyArpeggio
	}
	steps := make([]timedStep, len(notes))
	prev := notes[0].At
	for i, n := range notes {
		steps[i] = timedStep{wait: n.At.Sub(prev), step: model.NewStep(n.Note)}
		prev = n.At
	}
	steps[0].wait = finish.Sub(prev)
	return &Arpeggio{steps: steps}, nil
}

// FirstNote returns the highest pitch of the first step. It panics if
// the arpeggio has no steps or the first step is empty; callers must
// never construct such an arpeggio for transposition.
func (a *Arpeggio) FirstNote() uint8 {
	if len(a.steps) == 0 {
		panic("arpeggio must have at least one step")
	}
	note, ok := a.steps[0].step.HighestNote()
	if !ok {
		panic("arpeggio did not contain any notes")
	}
	return note
}

// Transpose returns a copy transposed by (to - from) semitones.
func (a *Arpeggio) Transpose(from, to uint8) *Arpeggio {
	delta := int(to) - int(from)
	steps := make([]timedStep, len(a.steps))
	for i, ts := range a.steps {
		steps[i] = timedStep{wait: ts.wait, step: ts.step.Transpose(delta)}
	}
	return &Arpeggio{steps: steps}
}

func (a *Arpeggio) bpm() float64 {
	var period time.Duration
	for _, ts := range a.steps {
		period += ts.wait
	}
	if period <= 0 {
		return 0
	}
	return float64(len(a.steps)) / period.Seconds() * 60.0
}

// String renders the arpeggio the way the teacher logs musical state:
// the steps joined by commas. Waits and tempo are not included.
func (a *Arpeggio) String() string {
	if len(a.steps) == 0 {
		return "-"
	}
	parts := make([]string, len(a.steps))
	for i, ts := range a.steps {
		parts[i] = ts.step.String()
	}
	return strings.Join(parts, ",")
}
