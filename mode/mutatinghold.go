package mode

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/davidlang42/midi-arpeggiator/arpeggio/synced"
	"github.com/davidlang42/midi-arpeggiator/model"
	"github.com/davidlang42/midi-arpeggiator/status"
)

// mutatingHold: the held-note set is live. Every tick, if notes were
// added since the last tick, the running arpeggio is rebuilt in place
// (preserving phase) rather than waiting for a debounce. Releasing some
// of the held notes does not rebuild it; only releasing all of them
// takes effect, stopping the player.
type mutatingHold struct {
	sink     model.Sink
	settings model.Settings
	held     []model.NoteDetails
	changed  bool
	player   *synced.Player
}

func newMutatingHold(sink model.Sink, settings model.Settings) *mutatingHold {
	return &mutatingHold{sink: sink, settings: settings}
}

func (m *mutatingHold) Process(msg midi.Message, settings model.Settings, signal status.Signal) error {
	m.settings = settings
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		m.held = append(m.held, model.NewNoteDetails(ch, key, vel, settings.FixedVelocity))
		m.changed = true
		return nil
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		i := 0
		for i < len(m.held) {
			if m.held[i].Pitch == key {
				m.held = append(m.held[:i], m.held[i+1:]...)
			} else {
				i++
			}
		}
		if len(m.held) == 0 {
			m.changed = true
		}
		return nil
	}
	if msg.Is(midi.TimingClockMsg) {
		return m.tick(signal)
	}
	if msg.Is(midi.ResetMsg) {
		m.held = nil
		m.changed = false
		if m.player != nil {
			err := m.player.ForceStop()
			m.player = nil
			return err
		}
		return nil
	}
	return nil
}

// don't rebuild while the player is already mid graceful-stop: a
// rebuild there would resurrect an arpeggio the user just released.
func (m *mutatingHold) tick(signal status.Signal) error {
	if m.changed && (m.player == nil || !m.player.ShouldStop()) {
		m.changed = false
		if len(m.held) == 0 {
			if m.player != nil {
				m.player.Stop()
			}
		} else {
			steps, err := stepsForHeldNotes(m.held, m.settings)
			if err != nil {
				return err
			}
			arp, err := synced.FromSteps(steps, m.settings.FinishPattern)
			if err != nil {
				return err
			}
			if m.player != nil {
				if err := m.player.ChangeArpeggio(arp); err != nil {
					return err
				}
			} else {
				m.player = synced.NewPlayer(arp, m.sink, m.settings.DoubleNotes)
				signal.ResetBeat()
			}
		}
	}
	if m.player != nil {
		alive, err := m.player.PlayTick()
		if err != nil {
			return err
		}
		if !alive {
			m.player = nil
		}
	}
	return nil
}

func (m *mutatingHold) StopArpeggios() error {
	if m.player == nil {
		return nil
	}
	err := m.player.ForceStop()
	m.player = nil
	return err
}

func (m *mutatingHold) CountArpeggios() int {
	if m.player == nil {
		return 0
	}
	return 1
}
