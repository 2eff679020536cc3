// Package mode implements the nine arpeggiator mode state machines: the
// layer that turns held/recorded notes and clock ticks into running
// Players. Every mode implements Arpeggiator and is instantiated fresh
// by New whenever the dispatcher's settings snapshot changes.
package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// RawSink is the output handle passed to New: every mode needs
// model.Sink for Player-driven note traffic, and passthrough
// additionally needs Send for forwarding non-note messages verbatim.
type RawSink interface {
	model.Sink
	Send(msg midi.Message) error
}

// Arpeggiator is one mode's live state machine.
type Arpeggiator interface {
	// Process handles a single inbound message (already filtered by
	// the settings router and status signal).
	Process(msg midi.Message, settings model.Settings, signal status.Signal) error
	// StopArpeggios force-stops every Player the mode currently owns,
	// guaranteeing a note-off for everything it has sounded.
	StopArpeggios() error
	// CountArpeggios reports how many arpeggios the mode currently has
	// running, for status reporting. Passthrough owns no Players and
	// always reports 1.
	CountArpeggios() int
}

// New instantiates the Arpeggiator named by settings.Mode. sink is the
// shared output handle every Player and passthrough path writes to.
func New(settings model.Settings, sink RawSink) Arpeggiator {
	switch settings.Mode {
	case model.RepeatRecorder:
		return newRepeatRecorder(sink)
	case model.TimedPedalRecorder:
		return newPedalRecorderTimed(sink)
	case model.PressHold:
		return newPressHold(sink, settings)
	case model.MutatingHold:
		return newMutatingHold(sink, settings)
	case model.SyncedPedalRecorder:
		return newPedalRecorderSynced(sink)
	case model.EvenMutator:
		return newEvenMutator(sink, settings)
	case model.PrerecordedSets:
		return newPrerecordedSets(sink, settings.Presets)
	case model.TriggeredChords:
		return newTriggeredChords(sink, settings.Presets)
	default:
		return newPassthrough(sink)
	}
}

// stepsForHeldNotes turns a held-note list into steps per the active
// Settings: an explicit fixed step count wins, then a fixed
// notes-per-step budget (rounded up to whole steps), and otherwise one
// step per note.
func stepsForHeldNotes(notes []model.NoteDetails, settings model.Settings) ([]model.Step, error) {
	steps := len(notes)
	switch {
	case settings.FixedSteps != nil:
		steps = *settings.FixedSteps
	case settings.FixedNotesPerStep != nil && *settings.FixedNotesPerStep > 0:
		perStep := *settings.FixedNotesPerStep
		steps = (len(notes) + perStep - 1) / perStep
	}
	if steps == 0 {
		steps = 1
	}
	return settings.Pattern.Of(notes, steps)
}
