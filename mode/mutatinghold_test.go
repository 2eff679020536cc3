package mode

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

func TestMutatingHoldStartsOnFirstTickAfterNoteOn(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	m := newMutatingHold(sink, model.Settings{})
	settings := model.Settings{}

	m.Process(midi.NoteOn(0, 60, 100), settings, signal)
	if m.CountArpeggios() != 0 {
		t.Fatalf("expected no player before the first tick")
	}
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if m.CountArpeggios() != 1 {
		t.Fatalf("expected a player after the first tick")
	}
	if signal.resets != 1 {
		t.Errorf("expected one beat reset, got %d", signal.resets)
	}
	if sink.onCount() != 1 {
		t.Errorf("expected one note-on emitted, got %d", sink.onCount())
	}
}

func TestMutatingHoldRebuildsWithoutResettingBeatOnAddedNote(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	m := newMutatingHold(sink, model.Settings{})
	settings := model.Settings{}

	m.Process(midi.NoteOn(0, 60, 100), settings, signal)
	m.Process(clockTick, settings, signal)
	m.Process(midi.NoteOn(0, 64, 100), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if signal.resets != 1 {
		t.Errorf("adding a note to an already-running arpeggio should not reset the beat, resets=%d", signal.resets)
	}
}

func TestMutatingHoldStopsGracefullyWhenHeldSetEmpties(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	m := newMutatingHold(sink, model.Settings{})
	settings := model.Settings{}

	m.Process(midi.NoteOn(0, 60, 100), settings, signal)
	m.Process(clockTick, settings, signal)
	m.Process(midi.NoteOffVelocity(0, 60, 0), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if m.player == nil {
		t.Fatal("expected the player to still be draining its final cycle")
	}
	if !m.player.ShouldStop() {
		t.Error("expected the player to be marked for graceful stop")
	}
}

func TestMutatingHoldPartialReleaseOfAChordDoesNotRebuildThePlayer(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	m := newMutatingHold(sink, model.Settings{})
	settings := model.Settings{}

	m.Process(midi.NoteOn(0, 60, 100), settings, signal)
	m.Process(midi.NoteOn(0, 64, 100), settings, signal)
	m.Process(midi.NoteOn(0, 67, 100), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	player := m.player
	if player == nil {
		t.Fatal("expected a running player after the first tick")
	}

	m.Process(midi.NoteOffVelocity(0, 64, 0), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if m.changed {
		t.Error("releasing one note of a still-held chord must not mark the arpeggio changed")
	}
	if m.player != player {
		t.Error("releasing one note of a still-held chord must not rebuild the player")
	}

	m.Process(midi.NoteOffVelocity(0, 67, 0), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if m.player != player {
		t.Error("releasing a second note, while one is still held, must not rebuild the player")
	}

	m.Process(midi.NoteOffVelocity(0, 60, 0), settings, signal)
	if err := m.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if !player.ShouldStop() {
		t.Error("releasing the last held note must mark the player for graceful stop")
	}
}

func TestMutatingHoldForceStopClearsPlayer(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	m := newMutatingHold(sink, model.Settings{})
	settings := model.Settings{}

	m.Process(midi.NoteOn(0, 60, 100), settings, signal)
	m.Process(clockTick, settings, signal)
	if err := m.StopArpeggios(); err != nil {
		t.Fatalf("StopArpeggios: %v", err)
	}
	if m.CountArpeggios() != 0 {
		t.Errorf("expected no players after StopArpeggios")
	}
}
