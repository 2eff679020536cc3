package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/synced"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// interOnsetThresholdMs groups recorded notes into chords: notes struck
// within this many milliseconds of the step's first note join that
// step rather than starting a new one.
const interOnsetThresholdMs = 50

// pedalRecorderSynced behaves like pedalRecorderTimed but quantizes the
// recorded phrase onto the MIDI clock: notes within interOnsetThresholdMs
// of each other become one chorded step, and the whole phrase is
// stretched to fill one beat per step.
type pedalRecorderSynced struct {
	sink      model.Sink
	pedal     bool
	recording []recordedOnset
	thruNotes map[uint8]model.NoteDetails
	players   map[uint8]*synced.Player
	recorded  *synced.Arpeggio
}

type recordedOnset struct {
	atMs int64
	note model.NoteDetails
}

func newPedalRecorderSynced(sink model.Sink) *pedalRecorderSynced {
	return &pedalRecorderSynced{
		sink:      sink,
		thruNotes: make(map[uint8]model.NoteDetails),
		players:   make(map[uint8]*synced.Player),
	}
}

func (pr *pedalRecorderSynced) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
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
			recording := pr.recording
			pr.recording = nil
			arp, err := buildQuantizedArpeggio(recording, settings.FinishPattern)
			if err != nil {
				return err
			}
			pr.recorded = arp
			original := arp.FirstNote()
			transposed := arp.Transpose(original, original)
			pr.players[original] = synced.NewPlayer(transposed, pr.sink, settings.DoubleNotes)
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
			pr.recording = append(pr.recording, recordedOnset{atMs: nowMs(), note: note})
			return nil
		}
		if _, playing := pr.players[key]; playing {
			return nil
		}
		if pr.recorded != nil {
			original := pr.recorded.FirstNote()
			transposed := pr.recorded.Transpose(original, key)
			pr.players[key] = synced.NewPlayer(transposed, pr.sink, settings.DoubleNotes)
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
			return pr.stopKeyed(p, key)
		}
		return nil
	}
	if msg.Is(midi.TimingClockMsg) {
		return pr.tick()
	}
	if msg.Is(midi.ResetMsg) {
		pr.recording = nil
		pr.pedal = false
		return pr.forceStopAll()
	}
	return nil
}

func (pr *pedalRecorderSynced) stopKeyed(p *synced.Player, key uint8) error {
	delete(pr.players, key)
	return p.ForceStop()
}

func (pr *pedalRecorderSynced) tick() error {
	for pitch, p := range pr.players {
		alive, err := p.PlayTick()
		if err != nil {
			return err
		}
		if !alive {
			delete(pr.players, pitch)
		}
	}
	return nil
}

func (pr *pedalRecorderSynced) forceStopAll() error {
	var firstErr error
	for pitch, p := range pr.players {
		delete(pr.players, pitch)
		if err := p.ForceStop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (pr *pedalRecorderSynced) StopArpeggios() error {
	return pr.forceStopAll()
}

func (pr *pedalRecorderSynced) CountArpeggios() int {
	return len(pr.players)
}

// buildQuantizedArpeggio groups notes whose onset is within
// interOnsetThresholdMs of the step's first note into one chorded step,
// then stretches the result to one beat per step.
func buildQuantizedArpeggio(recording []recordedOnset, finishPattern bool) (*synced.Arpeggio, error) {
	var steps []model.Step
	var current []model.NoteDetails
	var stepStart int64
	for i, r := range recording {
		if i == 0 || r.atMs-stepStart > interOnsetThresholdMs {
			if len(current) > 0 {
				steps = append(steps, model.NewStepFromNotes(current))
			}
			current = nil
			stepStart = r.atMs
		}
		current = append(current, r.note)
	}
	if len(current) > 0 {
		steps = append(steps, model.NewStepFromNotes(current))
	}
	return synced.FromStepsAtRate(steps, model.TicksPerBeat, finishPattern)
}

func nowMs() int64 {
	return nowFunc().UnixMilli()
}
