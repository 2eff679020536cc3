package mode

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

func TestEvenMutatorPreRollAccumulatesChordBeforePlaying(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	e := newEvenMutator(sink, model.Settings{})
	settings := model.Settings{}

	e.Process(midi.NoteOn(0, 60, 100), settings, signal)
	if e.state != evenMutatorStarting {
		t.Fatalf("expected starting state after first note-on")
	}
	e.Process(midi.NoteOn(0, 64, 100), settings, signal)

	for i := 0; i < startThresholdTicks; i++ {
		e.Process(clockTick, settings, signal)
		if e.state != evenMutatorStarting {
			t.Fatalf("expected still starting at pre-roll tick %d", i)
		}
	}
	if err := e.Process(clockTick, settings, signal); err != nil {
		t.Fatal(err)
	}
	if e.state != evenMutatorPlaying {
		t.Fatalf("expected playing state once the pre-roll elapsed")
	}
	if signal.resets != 1 {
		t.Errorf("expected exactly one beat reset, got %d", signal.resets)
	}
}

func TestEvenMutatorMutatesBitmapInPlaceOnceSweeping(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	e := newEvenMutator(sink, model.Settings{})
	settings := model.Settings{}

	e.Process(midi.NoteOn(0, 60, 100), settings, signal)
	for i := 0; i <= startThresholdTicks; i++ {
		e.Process(clockTick, settings, signal)
	}
	if e.state != evenMutatorPlaying {
		t.Fatalf("expected playing state")
	}
	if err := e.Process(midi.NoteOn(0, 64, 100), settings, signal); err != nil {
		t.Fatal(err)
	}
	if e.player == nil {
		t.Fatal("expected a live player")
	}
}

func TestEvenMutatorStopArpeggiosFromStartingStateIsSilent(t *testing.T) {
	sink := &fakeSink{}
	signal := &fakeSignal{}
	e := newEvenMutator(sink, model.Settings{})
	settings := model.Settings{}

	e.Process(midi.NoteOn(0, 60, 100), settings, signal)
	if err := e.StopArpeggios(); err != nil {
		t.Fatalf("StopArpeggios: %v", err)
	}
	if e.CountArpeggios() != 0 {
		t.Errorf("expected no arpeggios after stopping from the starting state")
	}
}
