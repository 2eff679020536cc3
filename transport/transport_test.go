package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"
)

func TestRewriteZeroVelocityNoteOnBecomesNoteOff(t *testing.T) {
	msg := midi.NoteOn(0, 60, 0)
	out := rewriteZeroVelocityNoteOn(msg)
	var ch, key, vel uint8
	if !out.GetNoteOff(&ch, &key, &vel) {
		t.Fatalf("expected a note-off, got %v", out)
	}
	if key != 60 {
		t.Errorf("key = %d, want 60", key)
	}
}

func TestRewriteLeavesNonZeroVelocityNoteOnUnchanged(t *testing.T) {
	msg := midi.NoteOn(0, 60, 100)
	out := rewriteZeroVelocityNoteOn(msg)
	if string(out) != string(msg) {
		t.Error("expected a non-zero-velocity note-on to pass through unchanged")
	}
}

func TestClockRelevantFiltersToTimingClockByDefault(t *testing.T) {
	c := &Clock{}
	if !c.relevant(midi.Message{0xF8}) {
		t.Error("expected TimingClock to be relevant")
	}
	if c.relevant(midi.NoteOn(0, 60, 100)) {
		t.Error("expected note-on to be filtered out when control sharing is disabled")
	}
}

func TestClockRelevantSharesControlMessagesWhenConfigured(t *testing.T) {
	c := &Clock{shareControlMessages: true}
	if !c.relevant(midi.ControlChange(0, 0, 5)) {
		t.Error("expected control change to be relevant when sharing is enabled")
	}
	if c.relevant(midi.NoteOn(0, 60, 100)) {
		t.Error("expected note-on to remain irrelevant even with sharing enabled")
	}
}

func TestReadReturnsClosedErrorWhenQueueDrained(t *testing.T) {
	queue := make(chan midi.Message)
	close(queue)
	_, err := Read(context.Background(), queue)
	if err == nil {
		t.Fatal("expected an error reading from a closed queue")
	}
}

func TestReadRespectsContextCancellation(t *testing.T) {
	queue := make(chan midi.Message)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, queue)
	if err == nil {
		t.Fatal("expected a context cancellation error")
	}
}

func TestOutputEnqueueFailsAfterSendError(t *testing.T) {
	o := newOutput(nil, func(midi.Message) error { return errors.New("device unplugged") })
	go o.writeLoop()

	if err := o.Enqueue(midi.NoteOn(0, 60, 100)); err != nil {
		t.Fatalf("first enqueue should succeed, got %v", err)
	}
	// Give the writer goroutine a chance to observe the send failure
	// and close done.
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case <-o.done:
			goto closed
		default:
			time.Sleep(time.Millisecond)
		}
	}
closed:
	if err := o.Enqueue(midi.NoteOn(0, 64, 100)); err == nil {
		t.Error("expected backpressure error once the writer goroutine has exited")
	}
}
