package fulllength

import (
	"github.com/davidlang42/midi-arpeggiator/arperr"
	"github.com/davidlang42/midi-arpeggiator/model"
)

// Player drives a full-length Arpeggio one MIDI clock tick at a time,
// sweeping the bitmap in Pattern order and sounding only held pitches.
type Player struct {
	sink       model.Sink
	arpeggio   *Arpeggio
	lastNote   int
	waitTicks  int
	shouldStop bool
}

// NewPlayer starts a Player positioned at the top of the pitch table
// (pitch 126), so the first PlayTick call wraps round onto the lowest
// held note under Pattern::Up, or sweeps down from pitch 125 under
// Pattern::Down; a held 126 is reached last in that first descending
// sweep.
func NewPlayer(arpeggio *Arpeggio, sink model.Sink) *Player {
	return &Player{sink: sink, arpeggio: arpeggio, lastNote: noteMax - 1}
}

// NoteOn adds a held pitch to the underlying arpeggio.
func (p *Player) NoteOn(pitch, velocity uint8) {
	p.arpeggio.NoteOn(pitch, velocity)
}

// NoteOff removes a held pitch from the underlying arpeggio.
func (p *Player) NoteOff(pitch uint8) {
	p.arpeggio.NoteOff(pitch)
}

func (p *Player) lastNoteOff() error {
	return p.sink.NoteOff(p.arpeggio.channel, uint8(p.lastNote), 0)
}

func (p *Player) nextNoteOn(next int, velocity uint8) error {
	p.lastNote = next
	return p.sink.NoteOn(p.arpeggio.channel, uint8(next), velocity)
}

// PlayTick is invoked once per inbound MIDI clock tick. It returns true
// while the player is still live; it returns false once no pitches
// remain held or a force/graceful stop has taken effect.
func (p *Player) PlayTick() (bool, error) {
	if p.shouldStop {
		if err := p.lastNoteOff(); err != nil {
			return false, err
		}
		return false, nil
	}
	if p.waitTicks == 0 {
		next := p.lastNote
		for {
			switch p.arpeggio.pattern {
			case model.Up:
				if next == noteMax-1 {
					next = 0
				} else {
					next++
				}
			case model.Down:
				if next == 0 {
					next = noteMax - 1
				} else {
					next--
				}
			}
			if v := p.arpeggio.notes[next]; v != nil {
				if err := p.lastNoteOff(); err != nil {
					return false, err
				}
				if err := p.nextNoteOn(next, *v); err != nil {
					return false, err
				}
				break
			}
			if next == p.lastNote {
				if err := p.lastNoteOff(); err != nil {
					return false, err
				}
				return false, nil
			}
		}
		p.waitTicks = p.arpeggio.ticksPerStep
	}
	p.waitTicks--
	return true, nil
}

// Stop requests a stop; the next PlayTick emits the terminal note-off
// and reports the player as no longer live. The full-length variant has
// no finish-pattern mode, so graceful and immediate stop coincide.
func (p *Player) Stop() {
	p.shouldStop = true
}

// ForceStop is equivalent to Stop followed by an immediate PlayTick; it
// returns arperr.ErrForceStopInvariant if the player unexpectedly
// reports itself still alive afterward.
func (p *Player) ForceStop() error {
	p.shouldStop = true
	p.waitTicks = 0
	alive, err := p.PlayTick()
	if err != nil {
		return err
	}
	if alive {
		return arperr.ErrForceStopInvariant
	}
	return nil
}
