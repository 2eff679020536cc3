package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/timed"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

const damperPedalCC = 64

// pedalRecorderTimed: record a phrase while the sustain pedal is held,
// then loop it in its original key; subsequent note-ons transpose a
// fresh instance keyed by the triggering pitch.
type pedalRecorderTimed struct {
	sink      model.Sink
	pedal     bool
	recording []timed.NoteOnset
	thruNotes map[uint8]model.NoteDetails
	players   map[uint8]*timed.Player
	recorded  *timed.Arpeggio
}

func newPedalRecorderTimed(sink model.Sink) *pedalRecorderTimed {
	return &pedalRecorderTimed{
		sink:      sink,
		thruNotes: make(map[uint8]model.NoteDetails),
		players:   make(map[uint8]*timed.Player),
	}
}

func (pr *pedalRecorderTimed) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	var ch, cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) && cc == damperPedalCC {
		if val >= 64 {
			pr.recorded = nil
			if err := pr.forceStopAll(); err != nil {
				return err
			}
			pr.pedal = true
			pr.recording = nil
			return nil
		}
		pr.pedal = false
		for pitch, note := range pr.thruNotes {
			delete(pr.thruNotes, pitch)
			if err := pr.sink.NoteOff(note.Channel, note.Pitch, note.Velocity); err != nil {
				return err
			}
		}
		if len(pr.recording) > 0 {
			finish := nowFunc()
			onsets := pr.recording
			pr.recording = nil
			arp, err := timed.FromOnsets(onsets, finish)
			if err != nil {
				return err
			}
			pr.recorded = arp
			original := arp.FirstNote()
			transposed := arp.Transpose(original, original)
			pr.players[original] = timed.NewPlayer(transposed, pr.sink, settings.DoubleNotes)
			signal.ResetBeat()
		}
		return nil
	}
	var key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		note := model.NewNoteDetails(ch, key, vel, settings.FixedVelocity)
		if pr.pedal {
			if err := pr.sink.NoteOn(note.Channel, note.Pitch, note.Velocity); err != nil {
				return err
			}
			pr.thruNotes[key] = note
			pr.recording = append(pr.recording, timed.NoteOnset{At: nowFunc(), Note: note})
			return nil
		}
		if _, playing := pr.players[key]; playing {
			return nil
		}
		if pr.recorded != nil {
			original := pr.recorded.FirstNote()
			transposed := pr.recorded.Transpose(original, key)
			pr.players[key] = timed.NewPlayer(transposed, pr.sink, settings.DoubleNotes)
		}
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		if pr.pedal {
			if note, ok := pr.thruNotes[key]; ok {
				delete(pr.thruNotes, key)
				return pr.sink.NoteOff(note.Channel, note.Pitch, note.Velocity)
			}
			return nil
		}
		if p, ok := pr.players[key]; ok {
			delete(pr.players, key)
			return p.GracefulStop()
		}
		return nil
	}
	if msg.Is(midi.ResetMsg) {
		pr.recording = nil
		pr.pedal = false
		return pr.forceStopAll()
	}
	return nil
}

func (pr *pedalRecorderTimed) forceStopAll() error {
	var firstErr error
	for pitch, p := range pr.players {
		delete(pr.players, pitch)
		if err := p.EnsureStopped(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (pr *pedalRecorderTimed) StopArpeggios() error {
	return pr.forceStopAll()
}

func (pr *pedalRecorderTimed) CountArpeggios() int {
	return len(pr.players)
}
