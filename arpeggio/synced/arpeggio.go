// Package synced implements the clock-driven arpeggio variant: each
// step carries a tick count measured in MIDI clock ticks, and the
// accompanying Player advances exactly once per play_tick call.
package synced

import (
	"strings"

	"github.com/davidlang42/midi-arpeggiator/arperr"
	"github.com/davidlang42/midi-arpeggiator/model"
)

type timedStep struct {
	ticks int
	step  model.Step
}

// Arpeggio is a cyclic sequence of steps, each with a tick count, plus
// the total ticks of one full cycle and a finish-pattern policy bit.
type Arpeggio struct {
	steps       []timedStep
	totalTicks  int
	finishSteps bool
}

// FromSteps builds a synced Arpeggio from a uniform step list: the
// step count determines a uniform ticks-per-step, saturating to 1 when
// the step count is at least TicksPerBeat.
func FromSteps(steps []model.Step, finishSteps bool) (*Arpeggio, error) {
	if len(steps) == 0 {
		return nil, arperr.ErrEmptyArpeggio
	}
	ticksPerStep := 1
	if len(steps) < model.TicksPerBeat {
		ticksPerStep = model.TicksPerBeat / len(steps)
	}
	ts := make([]timedStep, len(steps))
	for i, s := range steps {
		ts[i] = timedStep{ticks: ticksPerStep, step: s}
	}
	return &Arpeggio{steps: ts, totalTicks: ticksPerStep * len(steps), finishSteps: finishSteps}, nil
}

// FromStepsAtRate builds a synced Arpeggio with an explicit uniform
// ticks-per-step, for callers that derive the rate themselves (e.g. one
// beat per step) rather than fitting the whole sequence into one beat.
func FromStepsAtRate(steps []model.Step, ticksPerStep int, finishSteps bool) (*Arpeggio, error) {
	if len(steps) == 0 {
		return nil, arperr.ErrEmptyArpeggio
	}
	if ticksPerStep < 1 {
		ticksPerStep = 1
	}
	ts := make([]timedStep, len(steps))
	for i, s := range steps {
		ts[i] = timedStep{ticks: ticksPerStep, step: s}
	}
	return &Arpeggio{steps: ts, totalTicks: ticksPerStep * len(steps), finishSteps: finishSteps}, nil
}

// NoteTiming pairs a note with the number of ticks elapsed since the
// previous note (or since the start of the beat, for the first note).
type NoteTiming struct {
	TicksSinceLast int
	Note           model.NoteDetails
}

// FromNotes builds a synced Arpeggio with one single-note step per
// note, preceded by an empty (rest) step lasting the first note's
// TicksSinceLast; each note's step lasts the next note's TicksSinceLast,
// and the last note's step lasts ticksAfterLastNote before the cycle
// wraps. Notes are not grouped into chords.
func FromNotes(notes []NoteTiming, ticksAfterLastNote int, finishSteps bool) (*Arpeggio, error) {
	if len(notes) == 0 {
		return nil, arperr.ErrEmptyArpeggio
	}
	steps := make([]timedStep, 0, len(notes)+1)
	next := model.Step{}
	totalTicks := ticksAfterLastNote
	for _, nt := range notes {
		steps = append(steps, timedStep{ticks: nt.TicksSinceLast, step: next})
		next = model.NewStep(nt.Note)
		totalTicks += nt.TicksSinceLast
	}
	steps = append(steps, timedStep{ticks: ticksAfterLastNote, step: next})
	return &Arpeggio{steps: steps, totalTicks: totalTicks, finishSteps: finishSteps}, nil
}

// FirstNote returns the highest pitch among the earliest non-empty
// step. It panics if the arpeggio contains no notes anywhere; callers
// must never construct such an arpeggio for transposition.
func (a *Arpeggio) FirstNote() uint8 {
	for _, ts := range a.steps {
		if note, ok := ts.step.HighestNote(); ok {
			return note
		}
	}
	panic("arpeggio did not contain any notes")
}

// Transpose returns a copy of the arpeggio with every step transposed
// by (to - from) semitones.
func (a *Arpeggio) Transpose(from, to uint8) *Arpeggio {
	delta := int(to) - int(from)
	steps := make([]timedStep, len(a.steps))
	for i, ts := range a.steps {
		steps[i] = timedStep{ticks: ts.ticks, step: ts.step.Transpose(delta)}
	}
	return &Arpeggio{steps: steps, totalTicks: a.totalTicks, finishSteps: a.finishSteps}
}

// String renders the arpeggio the way the teacher renders musical state
// for log lines: the steps joined by commas. Step durations are not
// included.
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
