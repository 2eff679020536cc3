package settings

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

func u8p(v uint8) *uint8 { return &v }

func TestWraparoundRoutingSelectsByFlattenedIndex(t *testing.T) {
	r := NewRouter([]Record{
		{Settings: model.Settings{Mode: model.Passthrough}},
		{Settings: model.Settings{Mode: model.PressHold}},
		{Settings: model.Settings{Mode: model.MutatingHold}},
	})
	r.PassthroughMIDI(midi.ControlChange(channel1, 0, 0))
	r.PassthroughMIDI(midi.ControlChange(channel1, 32, 0))
	r.PassthroughMIDI(midi.ProgramChange(channel1, 1)) // index 1 % 3 == 1
	if got := r.Get().Mode; got != model.PressHold {
		t.Errorf("Get().Mode = %v, want PressHold", got)
	}
}

func TestSpecificRoutingFallsBackOnMiss(t *testing.T) {
	r := NewRouter([]Record{
		{Msb: u8p(0), Lsb: u8p(0), Pc: u8p(1), Settings: model.Settings{Mode: model.PressHold}},
	})
	r.PassthroughMIDI(midi.ControlChange(channel1, 0, 0))
	r.PassthroughMIDI(midi.ControlChange(channel1, 32, 0))
	r.PassthroughMIDI(midi.ProgramChange(channel1, 5)) // no matching pc
	if got := r.Get().Mode; got != model.Passthrough {
		t.Errorf("Get().Mode = %v, want Passthrough fallback on miss", got)
	}
}

func TestSpecificRoutingMatchesOnePcIndexed(t *testing.T) {
	r := NewRouter([]Record{
		{Msb: u8p(0), Lsb: u8p(0), Pc: u8p(1), Settings: model.Settings{Mode: model.PressHold}},
	})
	r.PassthroughMIDI(midi.ControlChange(channel1, 0, 0))
	r.PassthroughMIDI(midi.ControlChange(channel1, 32, 0))
	r.PassthroughMIDI(midi.ProgramChange(channel1, 0)) // wire value 0 == file's 1-based pc 1
	if got := r.Get().Mode; got != model.PressHold {
		t.Errorf("Get().Mode = %v, want PressHold", got)
	}
}

func TestRouterConsumesBankAndProgramMessages(t *testing.T) {
	r := NewRouter(nil)
	if _, ok := r.PassthroughMIDI(midi.ControlChange(channel1, 0, 5)); ok {
		t.Error("expected CC0 on channel 1 to be consumed")
	}
	if _, ok := r.PassthroughMIDI(midi.ControlChange(channel1, 32, 5)); ok {
		t.Error("expected CC32 on channel 1 to be consumed")
	}
	if _, ok := r.PassthroughMIDI(midi.ProgramChange(channel1, 0)); ok {
		t.Error("expected Program Change on channel 1 to be consumed")
	}
}

func TestRouterPassesOtherMessagesUnchanged(t *testing.T) {
	r := NewRouter(nil)
	msg := midi.NoteOn(channel1, 60, 100)
	out, ok := r.PassthroughMIDI(msg)
	if !ok {
		t.Fatal("expected note-on to pass through")
	}
	if string(out) != string(msg) {
		t.Error("expected passthrough message to be bit-identical")
	}
}

func TestRouterIgnoresBankSelectOnOtherChannels(t *testing.T) {
	r := NewRouter(nil)
	if _, ok := r.PassthroughMIDI(midi.ControlChange(1, 0, 5)); !ok {
		t.Error("expected CC0 on channel 2 to pass through untouched")
	}
}
