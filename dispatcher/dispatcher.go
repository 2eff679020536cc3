// Package dispatcher implements the single-threaded event loop that
// turns a stream of inbound MIDI messages into mode-driven output: it
// owns the currently-active mode, hot-swaps it whenever the settings
// router reports a change, and keeps the status signal informed.
package dispatcher

import (
	"context"
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/mode"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/settings"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// Receiver lets an additional collaborator observe (and optionally
// consume) every message ahead of the settings router, mirroring the
// teacher's chain-of-responsibility filters.
type Receiver interface {
	PassthroughMIDI(msg midi.Message) (out midi.Message, ok bool)
}

// Reader is the blocking message source the dispatcher drains; the
// transport package's Read function satisfies it through FuncReader.
type Reader interface {
	Read(ctx context.Context, queue <-chan midi.Message) (midi.Message, error)
}

// FuncReader adapts a plain function (transport.Read's shape) to Reader.
type FuncReader func(ctx context.Context, queue <-chan midi.Message) (midi.Message, error)

func (f FuncReader) Read(ctx context.Context, queue <-chan midi.Message) (midi.Message, error) {
	return f(ctx, queue)
}

// MultiArpeggiator is the dispatcher's main loop: it owns the active
// mode and reinstantiates it whenever the settings router reports a
// new Settings snapshot.
type MultiArpeggiator struct {
	reader   Reader
	queue    <-chan midi.Message
	sink     mode.RawSink
	router   *settings.Router
	signal   status.Signal
	receivers []Receiver

	settings model.Settings
	active   mode.Arpeggiator
}

// New builds a dispatcher with its active mode pre-instantiated from
// the router's current settings.
func New(reader Reader, queue <-chan midi.Message, sink mode.RawSink, router *settings.Router, signal status.Signal, receivers ...Receiver) *MultiArpeggiator {
	current := router.Get()
	return &MultiArpeggiator{
		reader:    reader,
		queue:     queue,
		sink:      sink,
		router:    router,
		signal:    signal,
		receivers: receivers,
		settings:  current,
		active:    mode.New(current, sink),
	}
}

// Run drains the queue until ctx is cancelled or a transport error
// ends the loop. Every iteration is: extra receivers, then the
// settings router, then a settings-change check (tearing down and
// reinstantiating the active mode), then the status signal, then the
// active mode, then an updated arpeggio count.
func (d *MultiArpeggiator) Run(ctx context.Context) error {
	for {
		msg, err := d.reader.Read(ctx, d.queue)
		if err != nil {
			return err
		}
		if err := d.handle(msg); err != nil {
			return err
		}
	}
}

func (d *MultiArpeggiator) handle(msg midi.Message) error {
	ok := true
	for _, r := range d.receivers {
		msg, ok = r.PassthroughMIDI(msg)
		if !ok {
			break
		}
	}
	if ok {
		msg, ok = d.router.PassthroughMIDI(msg)
	}

	d.signal.UpdateSettings(d.router.Get())
	next := d.router.Get()
	if settingsChanged(d.settings, next) {
		if err := d.active.StopArpeggios(); err != nil {
			return err
		}
		d.settings = next
		d.active = mode.New(next, d.sink)
		d.signal.UpdateCount(d.active.CountArpeggios())
	}

	if !ok {
		return nil
	}
	msg, ok = d.signal.PassthroughMIDI(msg)
	if !ok {
		return nil
	}
	if err := d.active.Process(msg, d.settings, d.signal); err != nil {
		return err
	}
	d.signal.UpdateCount(d.active.CountArpeggios())
	return nil
}

// SelectSettings chooses a settings-table entry by index directly,
// bypassing bank-select/program-change resolution — the affordance the
// console uses to simulate a physical controller. It only updates the
// router; the active mode is swapped on the dispatcher's own goroutine
// the next time handle observes the change, preserving the invariant
// that mode state is touched from a single goroutine.
func (d *MultiArpeggiator) SelectSettings(index int) error {
	_, err := d.router.SelectIndex(index)
	return err
}

// Status reports the active mode and its running arpeggio count, for
// the console's "status" command.
func (d *MultiArpeggiator) Status() string {
	return fmt.Sprintf("mode=%s arpeggios=%d", d.settings.Mode, d.active.CountArpeggios())
}

// settingsChanged reports whether any field the active mode depends on
// differs; a mode swap discards all running Players, so this must be
// conservative rather than mode-specific.
func settingsChanged(a, b model.Settings) bool {
	if a.Mode != b.Mode || a.FinishPattern != b.FinishPattern || a.Pattern != b.Pattern {
		return true
	}
	if !intPtrEqual(a.FixedSteps, b.FixedSteps) || !intPtrEqual(a.FixedNotesPerStep, b.FixedNotesPerStep) {
		return true
	}
	if !u8PtrEqual(a.FixedVelocity, b.FixedVelocity) {
		return true
	}
	if len(a.DoubleNotes) != len(b.DoubleNotes) {
		return true
	}
	for i := range a.DoubleNotes {
		if a.DoubleNotes[i] != b.DoubleNotes[i] {
			return true
		}
	}
	if len(a.Presets) != len(b.Presets) {
		return true
	}
	return false
}

func intPtrEqual(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func u8PtrEqual(a, b *uint8) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
