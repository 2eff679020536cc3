package synced

import (
	"fmt"

	"github.com/davidlang42/midi-arpeggiator/arperr"
	"github.com/davidlang42/midi-arpeggiator/model"
)

// Player drives a synced Arpeggio one MIDI clock tick at a time.
type Player struct {
	sink      model.Sink
	doubling  []int
	arpeggio  *Arpeggio
	step      int
	lastStep  *model.Step // detached copy, used after change_arpeggio or once the owning arpeggio is replaced
	waitTicks int
	shouldStop bool
}

// NewPlayer starts a Player at step 0 of the given arpeggio, emitting
// onto sink. doubling, when non-nil, lists semitone offsets applied to
// every note-on/off this player emits, in addition to the original
// pitch.
func NewPlayer(arpeggio *Arpeggio, sink model.Sink, doubling []int) *Player {
	return &Player{sink: sink, doubling: doubling, arpeggio: arpeggio}
}

func (p *Player) emitSink() model.Sink {
	if len(p.doubling) == 0 {
		return p.sink
	}
	return &doublingSink{inner: p.sink, offsets: p.doubling}
}

func (p *Player) lastStepOff() error {
	if p.lastStep != nil {
		return p.lastStep.SendOff(p.emitSink())
	}
	return nil
}

// PlayTick is invoked exactly once per inbound MIDI clock tick. It
// returns true if the player is still live, false once it has emitted
// its terminal note-off.
func (p *Player) PlayTick() (bool, error) {
	if len(p.arpeggio.steps) == 0 {
		return false, nil
	}
	if p.shouldStop && !p.arpeggio.finishSteps {
		if err := p.lastStepOff(); err != nil {
			return false, err
		}
		return false, nil
	}
	if p.waitTicks == 0 {
		if err := p.lastStepOff(); err != nil {
			return false, err
		}
		if p.shouldStop && p.step == 0 {
			return false, nil
		}
		ts := p.arpeggio.steps[p.step]
		if err := ts.step.SendOn(p.emitSink()); err != nil {
			return false, err
		}
		stepCopy := ts.step
		p.lastStep = &stepCopy
		if p.step == len(p.arpeggio.steps)-1 {
			p.step = 0
		} else {
			p.step++
		}
		p.waitTicks = ts.ticks
	}
	p.waitTicks--
	return true, nil
}

// ChangeArpeggio installs a replacement arpeggio while preserving
// phase: the ticks elapsed since the current cycle started are computed
// from the old arpeggio's step index and wait counter, then the new
// arpeggio's step containing that position is found, the remaining wait
// is set to the ticks left in it, and the step index is set to the step
// after it. The cycle position is kept; the next step-on falls on the
// new arpeggio's next step boundary, which differs from the old one
// when the two arpeggios' step lengths differ.
func (p *Player) ChangeArpeggio(next *Arpeggio) error {
	if len(next.steps) == 0 {
		return arperr.ErrEmptyArpeggio
	}
	var ticksSinceStart int
	if p.step == 0 {
		ticksSinceStart = p.arpeggio.totalTicks
	} else {
		for i := 0; i < p.step; i++ {
			ticksSinceStart += p.arpeggio.steps[i].ticks
		}
	}
	ticksSinceStart -= p.waitTicks

	p.arpeggio = next
	p.step = 0
	for ticksSinceStart > p.arpeggio.steps[p.step].ticks {
		ticksSinceStart -= p.arpeggio.steps[p.step].ticks
		if p.step == len(p.arpeggio.steps)-1 {
			p.step = 0
		} else {
			p.step++
		}
	}
	p.waitTicks = p.arpeggio.steps[p.step].ticks - ticksSinceStart
	if p.step == len(p.arpeggio.steps)-1 {
		p.step = 0
	} else {
		p.step++
	}
	return nil
}

// Stop requests a graceful stop: if the arpeggio is configured to
// finish its pattern, playback continues until the cycle wraps back to
// step 0.
func (p *Player) Stop() {
	p.shouldStop = true
}

// ShouldStop reports whether a graceful stop has been requested.
func (p *Player) ShouldStop() bool {
	return p.shouldStop
}

// ForceStop zeroes the wait counter and step so the very next PlayTick
// emits the final note-off and returns false. A caller that sees
// PlayTick still return true after this is an invariant violation.
func (p *Player) ForceStop() error {
	p.step = 0
	p.waitTicks = 0
	p.shouldStop = true
	alive, err := p.PlayTick()
	if err != nil {
		return err
	}
	if alive {
		return fmt.Errorf("%w", arperr.ErrForceStopInvariant)
	}
	return nil
}

// doublingSink wraps a Sink, emitting the original note plus one copy
// per configured semitone offset, dropping any offset pitch outside
// 0..127.
type doublingSink struct {
	inner   model.Sink
	offsets []int
}

func (d *doublingSink) NoteOn(channel, pitch, velocity uint8) error {
	if err := d.inner.NoteOn(channel, pitch, velocity); err != nil {
		return err
	}
	for _, off := range d.offsets {
		p := int(pitch) + off
		if p < 0 || p > 127 {
			continue
		}
		if err := d.inner.NoteOn(channel, uint8(p), velocity); err != nil {
			return err
		}
	}
	return nil
}

func (d *doublingSink) NoteOff(channel, pitch, velocity uint8) error {
	if err := d.inner.NoteOff(channel, pitch, velocity); err != nil {
		return err
	}
	for _, off := range d.offsets {
		p := int(pitch) + off
		if p < 0 || p > 127 {
			continue
		}
		if err := d.inner.NoteOff(channel, uint8(p), velocity); err != nil {
			return err
		}
	}
	return nil
}
