package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/fulllength"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// startThresholdTicks is the pre-roll before a freshly-started bitmap
// starts sweeping: it lets a chord struck within a couple of ticks of
// each other all land in the bitmap before playback begins.
const startThresholdTicks = 2

// evenMutatorState distinguishes an arpeggio still in its pre-roll
// window from one already sweeping.
type evenMutatorState int

const (
	evenMutatorNone evenMutatorState = iota
	evenMutatorStarting
	evenMutatorPlaying
)

// evenMutator: a full-length bitmap arpeggio that mutates in place.
// A short pre-roll after the first note-on lets a chord land together
// before the sweep begins; every note-on/off after that mutates the
// live bitmap directly.
type evenMutator struct {
	sink     model.Sink
	settings model.Settings
	state    evenMutatorState
	starting *fulllength.Arpeggio
	countdown int
	player   *fulllength.Player
}

func newEvenMutator(sink model.Sink, settings model.Settings) *evenMutator {
	return &evenMutator{sink: sink, settings: settings}
}

func notesPerBeat(settings model.Settings) int {
	if settings.FixedSteps != nil && *settings.FixedSteps > 0 {
		return *settings.FixedSteps
	}
	return 4
}

func (e *evenMutator) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	e.settings = settings
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		velocity := vel
		if settings.FixedVelocity != nil {
			velocity = *settings.FixedVelocity
		}
		switch e.state {
		case evenMutatorPlaying:
			e.player.NoteOn(key, velocity)
		case evenMutatorStarting:
			e.starting.NoteOn(key, velocity)
		case evenMutatorNone:
			e.starting = fulllength.New(ch, key, velocity, notesPerBeat(settings), settings.Pattern)
			e.countdown = startThresholdTicks
			e.state = evenMutatorStarting
		}
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		switch e.state {
		case evenMutatorPlaying:
			e.player.NoteOff(key)
		case evenMutatorStarting:
			e.starting.NoteOff(key)
		}
		return nil
	}
	if msg.Is(midi.TimingClockMsg) {
		return e.tick(signal)
	}
	if msg.Is(midi.ResetMsg) {
		return e.StopArpeggios()
	}
	return nil
}

func (e *evenMutator) tick(signal status.Signal) error {
	switch e.state {
	case evenMutatorPlaying:
		alive, err := e.player.PlayTick()
		if err != nil {
			return err
		}
		if !alive {
			e.player = nil
			e.state = evenMutatorNone
		}
	case evenMutatorStarting:
		if e.countdown == 0 {
			e.player = fulllength.NewPlayer(e.starting, e.sink)
			e.starting = nil
			e.state = evenMutatorPlaying
			signal.ResetBeat()
		} else {
			e.countdown--
		}
	}
	return nil
}

func (e *evenMutator) StopArpeggios() error {
	switch e.state {
	case evenMutatorPlaying:
		p := e.player
		e.player = nil
		e.state = evenMutatorNone
		return p.ForceStop()
	case evenMutatorStarting:
		e.starting = nil
		e.state = evenMutatorNone
	}
	return nil
}

func (e *evenMutator) CountArpeggios() int {
	if e.state == evenMutatorNone {
		return 0
	}
	return 1
}
