// Package status implements the external status-signal contract: a
// sink the dispatcher notifies of settings changes, running-arpeggio
// counts, and beat resets, and which can also observe (and optionally
// consume) MIDI clock ticks as they pass through the dispatcher.
//
// Visual indicators (an LED strip driven per-tick) are an out-of-scope
// external collaborator; only the text-log signal used for local
// debugging is implemented here.
package status

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

// Signal is the contract the dispatcher drives after the settings
// router and before the active mode.
type Signal interface {
	UpdateSettings(settings model.Settings)
	UpdateCount(arpeggios int)
	ResetBeat()
	WaitingForMIDIConnect()
	WaitingForMIDIDisconnect()
	WaitingForMIDIClock()
	// PassthroughMIDI lets the signal observe every message that
	// reaches it; returning ok=false consumes the message.
	PassthroughMIDI(msg midi.Message) (out midi.Message, ok bool)
}

// TextLog is a Signal that logs state transitions as lines to the
// configured writer, mirroring the teacher's direct-to-stdout REPL
// feedback style rather than the headless slog pipeline used by the
// dispatcher and transport layers.
type TextLog struct {
	Writer func(format string, args ...any)

	haveSettings bool
	lastSettings model.Settings
	haveCount    bool
	lastCount    int
}

// NewTextLog builds a TextLog that writes through fmt.Printf-shaped
// write. Passing nil installs a no-op writer.
func NewTextLog(write func(format string, args ...any)) *TextLog {
	if write == nil {
		write = func(string, ...any) {}
	}
	return &TextLog{Writer: write}
}

func (t *TextLog) UpdateSettings(settings model.Settings) {
	if t.haveSettings && settingsEqual(t.lastSettings, settings) {
		return
	}
	t.haveSettings = true
	t.lastSettings = settings
	t.Writer("settings: mode=%s pattern=%s finish=%v\n", settings.Mode, settings.Pattern, settings.FinishPattern)
}

func (t *TextLog) UpdateCount(arpeggios int) {
	if t.haveCount && t.lastCount == arpeggios {
		return
	}
	t.haveCount = true
	t.lastCount = arpeggios
	t.Writer("arpeggio count: %d\n", arpeggios)
}

func (t *TextLog) ResetBeat() {
	t.Writer("** reset beat **\n")
}

func (t *TextLog) WaitingForMIDIConnect() {
	t.Writer("waiting for MIDI device to connect...\n")
}

func (t *TextLog) WaitingForMIDIDisconnect() {
	t.Writer("waiting for MIDI device to disconnect...\n")
}

func (t *TextLog) WaitingForMIDIClock() {
	t.Writer("waiting for MIDI clock...\n")
}

// PassthroughMIDI never consumes; the text log only observes.
func (t *TextLog) PassthroughMIDI(msg midi.Message) (midi.Message, bool) {
	return msg, true
}

func settingsEqual(a, b model.Settings) bool {
	if a.Mode != b.Mode || a.FinishPattern != b.FinishPattern || a.Pattern != b.Pattern {
		return false
	}
	if (a.FixedVelocity == nil) != (b.FixedVelocity == nil) {
		return false
	}
	if a.FixedVelocity != nil && *a.FixedVelocity != *b.FixedVelocity {
		return false
	}
	if (a.FixedSteps == nil) != (b.FixedSteps == nil) {
		return false
	}
	if a.FixedSteps != nil && *a.FixedSteps != *b.FixedSteps {
		return false
	}
	if (a.FixedNotesPerStep == nil) != (b.FixedNotesPerStep == nil) {
		return false
	}
	if a.FixedNotesPerStep != nil && *a.FixedNotesPerStep != *b.FixedNotesPerStep {
		return false
	}
	if len(a.DoubleNotes) != len(b.DoubleNotes) {
		return false
	}
	for i := range a.DoubleNotes {
		if a.DoubleNotes[i] != b.DoubleNotes[i] {
			return false
		}
	}
	if len(a.Presets) != len(b.Presets) {
		return false
	}
	return true
}
