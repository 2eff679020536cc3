package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// passthrough forwards note/CC/pressure/pitch-bend traffic unchanged
// (applying fixed-velocity override and note doubling when configured)
// and drops program/bank-select and all system-realtime/SysEx traffic.
type passthrough struct {
	sink RawSink
}

func newPassthrough(sink RawSink) *passthrough {
	return &passthrough{sink: sink}
}

func (p *passthrough) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		return p.sendNote(ch, key, vel, settings, true)
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		return p.sendNote(ch, key, vel, settings, false)
	}
	var prog uint8
	if msg.GetProgramChange(&ch, &prog) {
		return nil
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		if cc == 0 || cc == 32 {
			return nil
		}
		return p.sink.Send(msg)
	}
	if isSystemRealtimeOrSysEx(msg) {
		return nil
	}
	// Aftertouch, channel pressure, pitch-bend: forward unchanged.
	return p.sink.Send(msg)
}

func isSystemRealtimeOrSysEx(msg midi.Message) bool {
	return msg.Is(midi.TimingClockMsg) ||
		msg.Is(midi.StartMsg) ||
		msg.Is(midi.ContinueMsg) ||
		msg.Is(midi.StopMsg) ||
		msg.Is(midi.ActiveSenseMsg) ||
		msg.Is(midi.ResetMsg) ||
		msg.Is(midi.SysExMsg)
}

func (p *passthrough) sendNote(ch, key, vel uint8, settings model.Settings, on bool) error {
	note := model.NewNoteDetails(ch, key, vel, settings.FixedVelocity)
	if on {
		if err := p.sink.NoteOn(note.Channel, note.Pitch, note.Velocity); err != nil {
			return err
		}
	} else if err := p.sink.NoteOff(note.Channel, note.Pitch, note.Velocity); err != nil {
		return err
	}
	for _, offset := range settings.DoubleNotes {
		pitch := int(note.Pitch) + offset
		if pitch < 0 || pitch > 127 {
			continue
		}
		if on {
			if err := p.sink.NoteOn(note.Channel, uint8(pitch), note.Velocity); err != nil {
				return err
			}
		} else if err := p.sink.NoteOff(note.Channel, uint8(pitch), note.Velocity); err != nil {
			return err
		}
	}
	return nil
}

func (p *passthrough) StopArpeggios() error { return nil }

func (p *passthrough) CountArpeggios() int { return 1 }
