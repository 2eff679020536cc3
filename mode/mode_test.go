package mode

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

// fakeSink records NoteOn/NoteOff calls for assertion, and fakeRawSink
// additionally records Send calls for passthrough coverage.
type fakeSink struct {
	mu    sync.Mutex
	ons   [][3]uint8
	offs  [][3]uint8
}

func (f *fakeSink) NoteOn(channel, pitch, velocity uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ons = append(f.ons, [3]uint8{channel, pitch, velocity})
	return nil
}

func (f *fakeSink) NoteOff(channel, pitch, velocity uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offs = append(f.offs, [3]uint8{channel, pitch, velocity})
	return nil
}

func (f *fakeSink) onCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ons)
}

func (f *fakeSink) offCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offs)
}

type fakeRawSink struct {
	fakeSink
	sent []midi.Message
}

func (f *fakeRawSink) Send(msg midi.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

// fakeSignal records ResetBeat calls; every other Signal method is a
// no-op, since modes only ever call ResetBeat directly.
type fakeSignal struct {
	resets int
}

func (f *fakeSignal) UpdateSettings(model.Settings) {}

func (f *fakeSignal) ResetBeat() {
	f.resets++
}

func (f *fakeSignal) UpdateCount(int)                {}
func (f *fakeSignal) WaitingForMIDIConnect()          {}
func (f *fakeSignal) WaitingForMIDIDisconnect()       {}
func (f *fakeSignal) WaitingForMIDIClock()            {}
func (f *fakeSignal) PassthroughMIDI(msg midi.Message) (midi.Message, bool) {
	return msg, true
}

var clockTick = midi.Message{0xF8}
var resetMsg = midi.Message{0xFF}
