package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// triggeredChords: presets sound immediately (no sweep, no tick
// dependency) the instant the held set exactly matches their trigger
// set. A sounding preset stops on the next note-off; a further note-on
// that breaks the match does not stop it. Because matching is exact,
// two presets with disjoint triggers never match at the same time.
type triggeredChords struct {
	sink     model.Sink
	presets  []model.Preset
	held     map[uint8]bool
	playing  map[int]bool
}

func newTriggeredChords(sink model.Sink, presets []model.Preset) *triggeredChords {
	return &triggeredChords{
		sink:    sink,
		presets: presets,
		held:    make(map[uint8]bool),
		playing: make(map[int]bool),
	}
}

func (t *triggeredChords) heldPitches() []uint8 {
	pitches := make([]uint8, 0, len(t.held))
	for pitch := range t.held {
		pitches = append(pitches, pitch)
	}
	return pitches
}

func (t *triggeredChords) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		t.held[key] = true
		held := t.heldPitches()
		for i, preset := range t.presets {
			if t.playing[i] {
				continue
			}
			if preset.IsTriggeredBy(held) {
				t.playing[i] = true
				for _, note := range preset.Steps {
					velocity := note.Velocity
					if settings.FixedVelocity != nil {
						velocity = *settings.FixedVelocity
					}
					if err := t.sink.NoteOn(note.Channel, note.Pitch, velocity); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		delete(t.held, key)
		held := t.heldPitches()
		for i, preset := range t.presets {
			if !t.playing[i] {
				continue
			}
			if !preset.IsTriggeredBy(held) {
				delete(t.playing, i)
				for _, note := range preset.Steps {
					if err := t.sink.NoteOff(note.Channel, note.Pitch, note.Velocity); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if msg.Is(midi.ResetMsg) {
		t.held = make(map[uint8]bool)
		return t.StopArpeggios()
	}
	return nil
}

func (t *triggeredChords) StopArpeggios() error {
	for i, preset := range t.presets {
		if !t.playing[i] {
			continue
		}
		delete(t.playing, i)
		for _, note := range preset.Steps {
			if err := t.sink.NoteOff(note.Channel, note.Pitch, note.Velocity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *triggeredChords) CountArpeggios() int {
	return len(t.playing)
}
