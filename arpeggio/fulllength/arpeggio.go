// Package fulllength implements the full-length arpeggio variant: every
// held note is tracked in a fixed pitch bitmap rather than as a step
// list, and the accompanying Player sweeps across that bitmap one
// semitone at a time in Pattern order, landing only on pitches that are
// currently held.
package fulllength

import (
	"fmt"
	"strings"

	"github.com/davidlang42/midi-arpeggiator/model"
)

// noteMax mirrors the original engine's pitch table size: pitch 127 is
// never addressable, a quirk carried forward rather than silently fixed.
const noteMax = 127

// Arpeggio is a bitmap of currently-held pitches (with their trigger
// velocity), swept in Pattern order at a fixed ticks-per-step rate.
type Arpeggio struct {
	channel      uint8
	notes        [noteMax]*uint8
	ticksPerStep int
	pattern      model.Pattern
}

// New builds an arpeggio holding a single note, with ticksPerStep
// derived from notesPerBeat (TicksPerBeat / notesPerBeat).
func New(channel, pitch, velocity uint8, notesPerBeat int, pattern model.Pattern) *Arpeggio {
	a := &Arpeggio{
		channel:      channel,
		ticksPerStep: model.TicksPerBeat / notesPerBeat,
		pattern:      pattern,
	}
	a.NoteOn(pitch, velocity)
	return a
}

// NoteOn marks pitch as held at velocity. A pitch of 127 is silently
// ignored, matching the original table's bounds.
func (a *Arpeggio) NoteOn(pitch, velocity uint8) {
	if int(pitch) >= noteMax {
		return
	}
	v := velocity
	a.notes[pitch] = &v
}

// NoteOff clears pitch from the held set.
func (a *Arpeggio) NoteOff(pitch uint8) {
	if int(pitch) >= noteMax {
		return
	}
	a.notes[pitch] = nil
}

// String renders the currently-held pitches followed by the step rate.
func (a *Arpeggio) String() string {
	var b strings.Builder
	for i := 0; i < noteMax; i++ {
		if a.notes[i] != nil {
			fmt.Fprintf(&b, "%d ", i)
		}
	}
	fmt.Fprintf(&b, "@%dticks/step", a.ticksPerStep)
	return b.String()
}
