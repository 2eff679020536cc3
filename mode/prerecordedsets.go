package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/synced"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// prerecordedSets: the held-note set is matched against the preset
// table; an exact match starts that preset's recorded step sequence at
// its own tick rate. No transposition or pattern expansion is applied,
// the steps play exactly as recorded.
type prerecordedSets struct {
	sink    model.Sink
	presets []model.Preset
	held    map[uint8]bool
	player  *synced.Player
}

func newPrerecordedSets(sink model.Sink, presets []model.Preset) *prerecordedSets {
	return &prerecordedSets{sink: sink, presets: presets, held: make(map[uint8]bool)}
}

func (s *prerecordedSets) heldPitches() []uint8 {
	pitches := make([]uint8, 0, len(s.held))
	for pitch := range s.held {
		pitches = append(pitches, pitch)
	}
	return pitches
}

func (s *prerecordedSets) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		s.held[key] = true
		return s.checkTrigger(signal)
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		delete(s.held, key)
		return s.checkTrigger(signal)
	}
	if msg.Is(midi.TimingClockMsg) {
		return s.tick()
	}
	if msg.Is(midi.ResetMsg) {
		s.held = make(map[uint8]bool)
		return s.StopArpeggios()
	}
	return nil
}

func (s *prerecordedSets) checkTrigger(signal status.Signal) error {
	held := s.heldPitches()
	for _, preset := range s.presets {
		if preset.IsTriggeredBy(held) {
			if s.player != nil {
				if err := s.player.ForceStop(); err != nil {
					return err
				}
			}
			arp, err := synced.FromStepsAtRate(preset.StepsAsSteps(), preset.TicksPerStep, false)
			if err != nil {
				return err
			}
			s.player = synced.NewPlayer(arp, s.sink, nil)
			signal.ResetBeat()
			return nil
		}
	}
	if s.player != nil {
		s.player.Stop()
	}
	return nil
}

func (s *prerecordedSets) tick() error {
	if s.player == nil {
		return nil
	}
	alive, err := s.player.PlayTick()
	if err != nil {
		return err
	}
	if !alive {
		s.player = nil
	}
	return nil
}

func (s *prerecordedSets) StopArpeggios() error {
	if s.player == nil {
		return nil
	}
	p := s.player
	s.player = nil
	return p.ForceStop()
}

func (s *prerecordedSets) CountArpeggios() int {
	if s.player == nil {
		return 0
	}
	return 1
}
