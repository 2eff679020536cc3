package mode

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

func TestPassthroughForwardsNotesWithFixedVelocityOverride(t *testing.T) {
	sink := &fakeRawSink{}
	p := newPassthrough(sink)
	fixed := uint8(80)
	settings := model.Settings{FixedVelocity: &fixed}

	if err := p.Process(midi.NoteOn(0, 60, 30), settings, &fakeSignal{}); err != nil {
		t.Fatal(err)
	}
	if sink.onCount() != 1 || sink.ons[0][2] != 80 {
		t.Errorf("expected fixed velocity override, got %v", sink.ons)
	}
}

func TestPassthroughDoublesNotes(t *testing.T) {
	sink := &fakeRawSink{}
	p := newPassthrough(sink)
	settings := model.Settings{DoubleNotes: []int{12}}

	if err := p.Process(midi.NoteOn(0, 60, 100), settings, &fakeSignal{}); err != nil {
		t.Fatal(err)
	}
	if sink.onCount() != 2 {
		t.Fatalf("expected original plus one doubled note-on, got %d", sink.onCount())
	}
}

func TestPassthroughDropsBankSelectAndProgramChange(t *testing.T) {
	sink := &fakeRawSink{}
	p := newPassthrough(sink)
	settings := model.Settings{}

	p.Process(midi.ControlChange(0, 0, 5), settings, &fakeSignal{})
	p.Process(midi.ProgramChange(0, 3), settings, &fakeSignal{})
	if len(sink.sent) != 0 {
		t.Errorf("expected bank-select and program-change to be dropped, got %v", sink.sent)
	}
}

func TestPassthroughForwardsOtherControlChanges(t *testing.T) {
	sink := &fakeRawSink{}
	p := newPassthrough(sink)
	settings := model.Settings{}

	if err := p.Process(midi.ControlChange(0, 1, 64), settings, &fakeSignal{}); err != nil {
		t.Fatal(err)
	}
	if len(sink.sent) != 1 {
		t.Errorf("expected mod-wheel CC to forward, got %d", len(sink.sent))
	}
}

func TestPassthroughDropsTimingClock(t *testing.T) {
	sink := &fakeRawSink{}
	p := newPassthrough(sink)
	settings := model.Settings{}

	p.Process(clockTick, settings, &fakeSignal{})
	if len(sink.sent) != 0 {
		t.Errorf("expected timing clock to be dropped, got %v", sink.sent)
	}
}
