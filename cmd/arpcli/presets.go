package main

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ticksPerQuarterNote matches the resolution used elsewhere in the
// pack's smf writers (icco-genidi's sequencer).
const ticksPerQuarterNote = 960

// dumpWindow bounds how long smfDumper records before writing the file
// and falling quiet; it's a one-shot debug capture, not a logger.
const dumpWindow = 30 * time.Second

// smfDumper is a dispatcher.Receiver that observes (never consumes)
// every message passing through the dispatcher and, once, writes the
// first dumpWindow's worth of note traffic to a .mid file for offline
// inspection of whatever a mode actually produced. Gated behind
// -dump-smf; not part of the realtime signal path.
type smfDumper struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	start   time.Time
	done    bool
	events  []dumpedEvent
}

type dumpedEvent struct {
	at  time.Duration
	msg midi.Message
}

func newSMFDumper(path string, logger *slog.Logger) *smfDumper {
	return &smfDumper{path: path, logger: logger}
}

// PassthroughMIDI never consumes; it only samples note-on/off traffic
// into the in-memory buffer until the capture window closes, then
// writes the file exactly once.
func (d *smfDumper) PassthroughMIDI(msg midi.Message) (midi.Message, bool) {
	var ch, key, vel uint8
	isNote := msg.GetNoteOn(&ch, &key, &vel) || msg.GetNoteOff(&ch, &key, &vel)
	if !isNote {
		return msg, true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return msg, true
	}
	if d.start.IsZero() {
		d.start = time.Now()
	}
	elapsed := time.Since(d.start)
	d.events = append(d.events, dumpedEvent{at: elapsed, msg: append(midi.Message(nil), msg...)})
	if elapsed >= dumpWindow {
		d.done = true
		events := d.events
		go d.write(events)
	}
	return msg, true
}

func (d *smfDumper) write(events []dumpedEvent) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track smf.Track
	var lastTick uint32
	for _, ev := range events {
		tick := uint32(ev.at.Seconds() * 2 * ticksPerQuarterNote) // 120bpm reference clock
		delta := tick - lastTick
		track.Add(delta, ev.msg)
		lastTick = tick
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		d.logger.Error("building smf dump track", "error", err)
		return
	}

	f, err := os.Create(d.path)
	if err != nil {
		d.logger.Error("creating smf dump file", "path", d.path, "error", err)
		return
	}
	defer f.Close()
	if _, err := s.WriteTo(f); err != nil {
		d.logger.Error("writing smf dump file", "path", d.path, "error", err)
		return
	}
	d.logger.Info("wrote smf dump", "path", d.path, "events", len(events))
}
