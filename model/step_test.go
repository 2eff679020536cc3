package model

import "testing"

type recordingSink struct {
	ons  []NoteDetails
	offs []NoteDetails
}

func (r *recordingSink) NoteOn(channel, pitch, velocity uint8) error {
	r.ons = append(r.ons, NoteDetails{Channel: channel, Pitch: pitch, Velocity: velocity})
	return nil
}

func (r *recordingSink) NoteOff(channel, pitch, velocity uint8) error {
	r.offs = append(r.offs, NoteDetails{Channel: channel, Pitch: pitch, Velocity: velocity})
	return nil
}

func TestStepSendOnOff(t *testing.T) {
	s := NewStepFromNotes([]NoteDetails{{Channel: 1, Pitch: 60, Velocity: 100}, {Channel: 1, Pitch: 64, Velocity: 90}})
	sink := &recordingSink{}
	if err := s.SendOn(sink); err != nil {
		t.Fatalf("SendOn error: %v", err)
	}
	if err := s.SendOff(sink); err != nil {
		t.Fatalf("SendOff error: %v", err)
	}
	if len(sink.ons) != 2 || len(sink.offs) != 2 {
		t.Fatalf("expected 2 ons and 2 offs, got %d/%d", len(sink.ons), len(sink.offs))
	}
}

func TestStepHighestNote(t *testing.T) {
	empty := Step{}
	if _, ok := empty.HighestNote(); ok {
		t.Error("empty step should have no highest note")
	}
	s := NewStepFromNotes([]NoteDetails{{Pitch: 60}, {Pitch: 72}, {Pitch: 64}})
	highest, ok := s.HighestNote()
	if !ok || highest != 72 {
		t.Errorf("HighestNote() = %d,%v want 72,true", highest, ok)
	}
}

func TestStepTransposeDropsOutOfRange(t *testing.T) {
	s := NewStep(NoteDetails{Channel: 1, Pitch: 70, Velocity: 100})
	out := s.Transpose(60)
	if len(out.Notes) != 0 {
		t.Errorf("expected transpose to drop out-of-range note, got %v", out)
	}

	s2 := NewStep(NoteDetails{Channel: 1, Pitch: 60, Velocity: 100})
	out2 := s2.Transpose(60)
	if len(out2.Notes) != 1 || out2.Notes[0].Pitch != 120 {
		t.Errorf("expected transpose(+60) of 60 to yield 120, got %v", out2)
	}
}

func TestStepTransposeIsGroupAction(t *testing.T) {
	s := NewStepFromNotes([]NoteDetails{{Pitch: 10}, {Pitch: 100}, {Pitch: 60}})
	a, b := 5, 10
	left := s.Transpose(a).Transpose(b)
	right := s.Transpose(a + b)
	if len(left.Notes) != len(right.Notes) {
		t.Fatalf("transpose(a).transpose(b) len=%d, transpose(a+b) len=%d", len(left.Notes), len(right.Notes))
	}
	for i := range left.Notes {
		if left.Notes[i].Pitch != right.Notes[i].Pitch {
			t.Errorf("mismatch at %d: %d vs %d", i, left.Notes[i].Pitch, right.Notes[i].Pitch)
		}
	}
}

func TestStepTransposeEmptyStaysEmpty(t *testing.T) {
	out := Step{}.Transpose(5)
	if len(out.Notes) != 0 {
		t.Errorf("expected empty step to remain empty, got %v", out)
	}
}
