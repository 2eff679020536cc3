package mode

import (
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/timed"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

type heldNote struct {
	at   time.Time
	note model.NoteDetails
}

// repeatRecorder: the user plays a short motif; re-pressing the last
// released pitch marks the end of the motif and starts it looping at
// the tempo implied by that gesture.
type repeatRecorder struct {
	sink         model.Sink
	held         map[uint8]heldNote
	lastReleased *heldNote
	players      map[uint8]*timed.Player
}

func newRepeatRecorder(sink model.Sink) *repeatRecorder {
	return &repeatRecorder{
		sink:    sink,
		held:    make(map[uint8]heldNote),
		players: make(map[uint8]*timed.Player),
	}
}

func (r *repeatRecorder) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		now := nowFunc()
		if r.lastReleased != nil && r.lastReleased.note.Pitch == key {
			onsets := make([]timed.NoteOnset, 0, len(r.held)+1)
			onsets = append(onsets, timed.NoteOnset{At: r.lastReleased.at, Note: r.lastReleased.note})
			for _, h := range r.held {
				onsets = append(onsets, timed.NoteOnset{At: h.at, Note: h.note})
			}
			sort.Slice(onsets, func(i, j int) bool { return onsets[i].At.Before(onsets[j].At) })
			r.held = make(map[uint8]heldNote)
			r.lastReleased = nil
			arp, err := timed.FromOnsets(onsets, now)
			if err != nil {
				return err
			}
			r.players[key] = timed.NewPlayer(arp, r.sink, settings.DoubleNotes)
			return nil
		}
		r.held[key] = heldNote{at: now, note: model.NewNoteDetails(ch, key, vel, settings.FixedVelocity)}
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		if p, ok := r.players[key]; ok {
			delete(r.players, key)
			return p.GracefulStop()
		}
		if h, ok := r.held[key]; ok {
			delete(r.held, key)
			r.lastReleased = &h
		} else {
			r.lastReleased = nil
		}
		return nil
	}
	if msg.Is(midi.ResetMsg) {
		r.held = make(map[uint8]heldNote)
		r.lastReleased = nil
		return r.StopArpeggios()
	}
	return nil
}

func (r *repeatRecorder) StopArpeggios() error {
	var firstErr error
	for pitch, p := range r.players {
		delete(r.players, pitch)
		if err := p.EnsureStopped(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *repeatRecorder) CountArpeggios() int {
	return len(r.players)
}

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now
