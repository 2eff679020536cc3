package model

import (
	"sort"

	"github.com/davidlang42/midi-arpeggiator/arperr"
)

// Pattern is a note ordering used to turn a held pitch set into an
// ordered sequence of steps.
type Pattern int

const (
	Up Pattern = iota
	Down
)

// String matches the teacher's terse Stringer style used for logging.
func (p Pattern) String() string {
	switch p {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Of expands notes into exactly steps Steps, per the pattern's ordering.
// It sorts notes ascending (Up) or descending (Down), expands the note
// list by repeating interior notes in reverse until there are at least
// enough notes for one per step, then distributes notes left-to-right
// giving the first (n mod steps) steps one extra note each.
func (p Pattern) Of(notes []NoteDetails, steps int) ([]Step, error) {
	if steps == 0 {
		return nil, arperr.ErrZeroSteps
	}
	if len(notes) == 0 {
		return nil, arperr.ErrZeroNotes
	}
	ordered := make([]NoteDetails, len(notes))
	copy(ordered, notes)
	switch p {
	case Up:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Pitch < ordered[j].Pitch })
	case Down:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Pitch > ordered[j].Pitch })
	}

	for len(ordered) < steps {
		ordered = expand(ordered)
	}

	notesPerStep := len(ordered) / steps
	remainder := len(ordered) % steps

	result := make([]Step, steps)
	idx := 0
	for i := 0; i < steps; i++ {
		count := notesPerStep
		if i < remainder {
			count++
		}
		result[i] = NewStepFromNotes(append([]NoteDetails(nil), ordered[idx:idx+count]...))
		idx += count
	}
	return result, nil
}

// expand appends a reversed repetition of the interior notes: if there
// is one note it is repeated once, if there are two they are both
// repeated, otherwise every note except the first and last is repeated
// in reverse order.
func expand(notes []NoteDetails) []NoteDetails {
	n := len(notes)
	var lo, hi int
	switch n {
	case 1:
		lo, hi = 0, 1
	case 2:
		lo, hi = 0, 2
	default:
		lo, hi = 1, n-1
	}
	for i := hi - 1; i >= lo; i-- {
		notes = append(notes, notes[i])
	}
	return notes
}
