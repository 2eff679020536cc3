// Package model holds the timing-free musical value types shared by
// every arpeggio variant: NoteDetails, Step and Pattern. Timing belongs
// to the arpeggio packages, not here.
package model

// NoteDetails describes a single sounding note: its channel, pitch and
// velocity. Channel is the zero-based wire value 0..15 (MIDI channels
// 1..16), as gomidi uses it; Pitch and Velocity are 0..127.
type NoteDetails struct {
	Channel  uint8
	Pitch    uint8
	Velocity uint8
}

// NewNoteDetails builds a NoteDetails from a raw note-on, applying the
// settings' fixed velocity override (saturating at 127) when present.
func NewNoteDetails(channel, pitch, velocity uint8, fixedVelocity *uint8) NoteDetails {
	v := velocity
	if fixedVelocity != nil {
		if *fixedVelocity > 127 {
			v = 127
		} else {
			v = *fixedVelocity
		}
	}
	return NoteDetails{Channel: channel, Pitch: pitch, Velocity: v}
}
