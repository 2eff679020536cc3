package mode

import (
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/synced"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// pressHoldDebounceMs is how long a struck chord must sit before it
// freezes into a running arpeggio, checked against wall-clock time on
// every incoming timing clock tick.
const pressHoldDebounceMs = 50

// pressHold: strike a chord; after a brief debounce the chord is frozen
// into an arpeggio and plays until every note of the triggering set is
// released (sustain pedal defers release).
type pressHold struct {
	sink           model.Sink
	settings       model.Settings
	held           map[uint8]heldNote
	pedal          bool
	deferredRelease map[uint8]bool
	running        []pressHoldArp
}

type pressHoldArp struct {
	notes  map[uint8]bool
	player *synced.Player
}

func newPressHold(sink model.Sink, settings model.Settings) *pressHold {
	return &pressHold{
		sink:            sink,
		settings:        settings,
		held:            make(map[uint8]heldNote),
		deferredRelease: make(map[uint8]bool),
	}
}

func (p *pressHold) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	p.settings = settings
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		if p.deferredRelease[key] {
			delete(p.deferredRelease, key)
		}
		p.held[key] = heldNote{at: nowFunc(), note: model.NewNoteDetails(ch, key, vel, settings.FixedVelocity)}
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		if p.pedal {
			p.deferredRelease[key] = true
			return nil
		}
		return p.release(key)
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) && cc == damperPedalCC {
		if val >= 64 {
			p.pedal = true
		} else {
			p.pedal = false
			for key := range p.deferredRelease {
				delete(p.deferredRelease, key)
				if err := p.release(key); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if msg.Is(midi.TimingClockMsg) {
		return p.tick(signal)
	}
	if msg.Is(midi.ResetMsg) {
		p.held = make(map[uint8]heldNote)
		p.deferredRelease = make(map[uint8]bool)
		p.pedal = false
		return p.StopArpeggios()
	}
	return nil
}

func (p *pressHold) release(key uint8) error {
	delete(p.held, key)
	for i := range p.running {
		if p.running[i].notes[key] {
			delete(p.running[i].notes, key)
			if len(p.running[i].notes) == 0 {
				p.running[i].player.Stop()
			}
		}
	}
	return nil
}

func (p *pressHold) tick(signal status.Signal) error {
	if len(p.held) > 0 {
		earliest := earliestHeldAt(p.held)
		if nowFunc().Sub(earliest).Milliseconds() > pressHoldDebounceMs {
			notes := make([]model.NoteDetails, 0, len(p.held))
			noteSet := make(map[uint8]bool, len(p.held))
			for pitch, h := range p.held {
				notes = append(notes, h.note)
				noteSet[pitch] = true
			}
			p.held = make(map[uint8]heldNote)
			steps, err := stepsForHeldNotes(notes, p.settings)
			if err != nil {
				return err
			}
			arp, err := synced.FromSteps(steps, p.settings.FinishPattern)
			if err != nil {
				return err
			}
			player := synced.NewPlayer(arp, p.sink, p.settings.DoubleNotes)
			p.running = append(p.running, pressHoldArp{notes: noteSet, player: player})
			signal.ResetBeat()
		}
	}
	i := 0
	for i < len(p.running) {
		alive, err := p.running[i].player.PlayTick()
		if err != nil {
			return err
		}
		if !alive {
			p.running = append(p.running[:i], p.running[i+1:]...)
		} else {
			i++
		}
	}
	return nil
}

func earliestHeldAt(held map[uint8]heldNote) (earliest time.Time) {
	first := true
	for _, h := range held {
		if first || h.at.Before(earliest) {
			earliest = h.at
			first = false
		}
	}
	return earliest
}

func (p *pressHold) StopArpeggios() error {
	var firstErr error
	for _, r := range p.running {
		if err := r.player.ForceStop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.running = nil
	return firstErr
}

func (p *pressHold) CountArpeggios() int {
	return len(p.running)
}
