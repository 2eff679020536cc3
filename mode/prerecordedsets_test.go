package mode

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

func testPresets() []model.Preset {
	return []model.Preset{
		{
			Name:         "fifth",
			Trigger:      []uint8{60, 67},
			Steps:        []model.NoteDetails{{Channel: 0, Pitch: 60, Velocity: 100}, {Channel: 0, Pitch: 67, Velocity: 100}},
			TicksPerStep: 6,
		},
	}
}

func TestPrerecordedSetsStartsOnExactTriggerMatch(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	s := newPrerecordedSets(sink, testPresets())
	settings := model.Settings{}

	s.Process(midi.NoteOn(0, 60, 100), settings, signal)
	if s.CountArpeggios() != 0 {
		t.Fatalf("a partial trigger set should not start a preset")
	}
	if err := s.Process(midi.NoteOn(0, 67, 100), settings, signal); err != nil {
		t.Fatal(err)
	}
	if s.CountArpeggios() != 1 {
		t.Fatalf("expected the preset to start once its full trigger set is held")
	}
	if signal.resets != 1 {
		t.Errorf("expected one beat reset, got %d", signal.resets)
	}
}

func TestPrerecordedSetsStopsWhenTriggerSetBreaks(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	s := newPrerecordedSets(sink, testPresets())
	settings := model.Settings{}

	s.Process(midi.NoteOn(0, 60, 100), settings, signal)
	s.Process(midi.NoteOn(0, 67, 100), settings, signal)
	if err := s.Process(midi.NoteOffVelocity(0, 60, 0), settings, signal); err != nil {
		t.Fatal(err)
	}
	if s.player == nil || !s.player.ShouldStop() {
		t.Error("expected the running preset to be marked for graceful stop once its trigger set broke")
	}
}

func TestPrerecordedSetsForceStopEmitsTerminalOff(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	s := newPrerecordedSets(sink, testPresets())
	settings := model.Settings{}

	s.Process(midi.NoteOn(0, 60, 100), settings, signal)
	s.Process(midi.NoteOn(0, 67, 100), settings, signal)
	if err := s.StopArpeggios(); err != nil {
		t.Fatalf("StopArpeggios: %v", err)
	}
	if sink.offCount() == 0 {
		t.Error("expected a terminal note-off")
	}
}
