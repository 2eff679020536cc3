// Package settings implements the settings router: the dispatcher
// interceptor that consumes Bank-Select/Program-Change traffic on
// channel 1 and resolves it to an active model.Settings record, plus
// the on-disk settings-file format that supplies the lookup table.
package settings

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/model"
)

// channel1 is gomidi's 0-indexed representation of MIDI channel 1.
const channel1 = 0

// Strategy selects how (msb, lsb, pc) resolves to a table entry.
type Strategy int

const (
	// Wraparound flattens (msb, lsb, pc) into a single index modulo
	// the table length.
	Wraparound Strategy = iota
	// Specific looks up an exact (msb, lsb, pc) match, falling back to
	// the passthrough default on a miss.
	Specific
)

// Record is one entry of a settings file: a Settings value, optionally
// addressed by an explicit (msb, lsb, pc) key for Specific routing.
type Record struct {
	Msb *uint8 `json:"msb,omitempty"`
	Lsb *uint8 `json:"lsb,omitempty"`
	Pc  *uint8 `json:"pc,omitempty"`
	model.Settings
}

// Router is a MidiReceiver-shaped interceptor: PassthroughMIDI consumes
// CC0, CC32, and Program Change on channel 1, updating the active
// Settings; every other message passes through untouched. A mutex
// guards current/msb/lsb since the optional console selects settings
// from its own goroutine while the dispatcher reads them from its own.
type Router struct {
	strategy Strategy
	table    []Record

	mu       sync.Mutex
	msb, lsb uint8
	current  model.Settings
}

// NewRouter infers the routing strategy from the table: if any record
// carries an explicit (msb, lsb, pc) key, Specific routing is used;
// otherwise the table is addressed by Wraparound.
func NewRouter(table []Record) *Router {
	strategy := Wraparound
	for _, r := range table {
		if r.Msb != nil || r.Lsb != nil || r.Pc != nil {
			strategy = Specific
			break
		}
	}
	return &Router{strategy: strategy, table: table}
}

// Get returns the currently active settings snapshot.
func (r *Router) Get() model.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// PassthroughMIDI consumes Bank-Select MSB/LSB and Program Change on
// channel 1; all other messages pass through bit-identical.
func (r *Router) PassthroughMIDI(msg midi.Message) (midi.Message, bool) {
	var ch, cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		if ch == channel1 {
			switch cc {
			case 0:
				r.mu.Lock()
				r.msb = val
				r.mu.Unlock()
				return nil, false
			case 32:
				r.mu.Lock()
				r.lsb = val
				r.mu.Unlock()
				return nil, false
			}
		}
		return msg, true
	}
	var prog uint8
	if msg.GetProgramChange(&ch, &prog) {
		if ch == channel1 {
			r.mu.Lock()
			r.current = r.resolve(r.msb, r.lsb, prog)
			r.mu.Unlock()
			return nil, false
		}
		return msg, true
	}
	return msg, true
}

// SelectIndex directly installs the table entry at index as the
// current Settings, bypassing bank-select/program-change resolution —
// the console's simulated-controller affordance.
func (r *Router) SelectIndex(index int) (model.Settings, error) {
	if index < 0 || index >= len(r.table) {
		return model.Settings{}, fmt.Errorf("settings index %d out of range (table has %d entries)", index, len(r.table))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = r.table[index].Settings
	return r.current, nil
}

func (r *Router) resolve(msb, lsb, pc uint8) model.Settings {
	switch r.strategy {
	case Specific:
		for _, rec := range r.table {
			if rec.Msb != nil && *rec.Msb == msb &&
				rec.Lsb != nil && *rec.Lsb == lsb &&
				rec.Pc != nil && *rec.Pc == pc+1 { // pc is stored 1-based per the file format
				return rec.Settings
			}
		}
		return model.Settings{}
	default:
		if len(r.table) == 0 {
			return model.Settings{}
		}
		index := (int(msb)<<14 | int(lsb)<<7 | int(pc)) % len(r.table)
		return r.table[index].Settings
	}
}
