package model

import "fmt"

// Sink is anything that can emit a note-on/note-off pair. The transport
// package's output queue handle and the arpeggio packages' note-doubling
// wrappers both implement it, so Step stays decoupled from how messages
// are actually framed and written.
type Sink interface {
	NoteOn(channel, pitch, velocity uint8) error
	NoteOff(channel, pitch, velocity uint8) error
}

// Step is an ordered bag of notes that sound simultaneously. An empty
// step is a legal rest.
type Step struct {
	Notes []NoteDetails
}

// NewStep builds a step from a single note.
func NewStep(note NoteDetails) Step {
	return Step{Notes: []NoteDetails{note}}
}

// NewStepFromNotes builds a step from a slice of notes, taking ownership
// of the slice.
func NewStepFromNotes(notes []NoteDetails) Step {
	return Step{Notes: notes}
}

// String renders a step the way the original engine logged one:
// "[n1,n2,...]" for multi-note steps, the bare pitch for a single note,
// "[]" for a rest.
func (s Step) String() string {
	switch len(s.Notes) {
	case 0:
		return "[]"
	case 1:
		return fmt.Sprintf("%d", s.Notes[0].Pitch)
	default:
		out := "["
		for i, n := range s.Notes {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf("%d", n.Pitch)
		}
		return out + "]"
	}
}

// SendOn emits a note-on for every note in the step.
func (s Step) SendOn(sink Sink) error {
	for _, n := range s.Notes {
		if err := sink.NoteOn(n.Channel, n.Pitch, n.Velocity); err != nil {
			return err
		}
	}
	return nil
}

// SendOff emits a note-off for every note in the step.
func (s Step) SendOff(sink Sink) error {
	for _, n := range s.Notes {
		if err := sink.NoteOff(n.Channel, n.Pitch, n.Velocity); err != nil {
			return err
		}
	}
	return nil
}

// HighestNote returns the highest pitch among the step's notes, or
// false if the step is empty.
func (s Step) HighestNote() (uint8, bool) {
	if len(s.Notes) == 0 {
		return 0, false
	}
	highest := s.Notes[0].Pitch
	for _, n := range s.Notes[1:] {
		if n.Pitch > highest {
			highest = n.Pitch
		}
	}
	return highest, true
}

// Transpose remaps every note's pitch by delta semitones. Notes whose
// transposed pitch leaves the 0..127 range are dropped, never clamped;
// channel and velocity are preserved. Transposing an empty step yields
// an empty step.
func (s Step) Transpose(delta int) Step {
	out := make([]NoteDetails, 0, len(s.Notes))
	for _, n := range s.Notes {
		newPitch := int(n.Pitch) + delta
		if newPitch < 0 || newPitch > 127 {
			continue
		}
		out = append(out, NoteDetails{Channel: n.Channel, Pitch: uint8(newPitch), Velocity: n.Velocity})
	}
	return Step{Notes: out}
}
