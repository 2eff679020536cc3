package timed

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/davidlang42/midi-arpeggiator/model"
)

// Player drives a timed Arpeggio from a dedicated worker goroutine,
// sleeping between steps by wall-clock duration rather than waiting on
// clock ticks.
type Player struct {
	arpeggio   *Arpeggio
	sink       model.Sink
	doubling   []int
	shouldStop atomic.Bool
	stopChan   chan struct{}
	stoppedChan chan struct{}
	err        error
}

// NewPlayer spawns the worker goroutine and returns at once, without
// waiting for the worker to begin running, matching the teacher's
// Start-spawns-a-goroutine convention.
func NewPlayer(arpeggio *Arpeggio, sink model.Sink, doubling []int) *Player {
	p := &Player{
		arpeggio:    arpeggio,
		sink:        sink,
		doubling:    doubling,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Player) emitSink() model.Sink {
	if len(p.doubling) == 0 {
		return p.sink
	}
	return &doublingSink{inner: p.sink, offsets: p.doubling}
}

func (p *Player) run() {
	defer close(p.stoppedChan)
	defer func() {
		if r := recover(); r != nil {
			p.err = fmt.Errorf("timed player worker panicked: %v", r)
		}
	}()

	sink := p.emitSink()
	i := 0
	for {
		if p.shouldStop.Load() && i == 0 {
			return
		}
		ts := p.arpeggio.steps[i]
		if err := ts.step.SendOn(sink); err != nil {
			p.err = err
			return
		}
		next := i + 1
		if next == len(p.arpeggio.steps) {
			next = 0
		}
		select {
		case <-p.stopChan:
			ts.step.SendOff(sink)
			return
		case <-time.After(p.arpeggio.steps[next].wait):
		}
		if err := ts.step.SendOff(sink); err != nil {
			p.err = err
			return
		}
		if p.shouldStop.Load() && next == 0 {
			return
		}
		i = next
	}
}

// doublingSink wrapper, adapted from the synced package so both player
// variants apply note doubling identically.
type doublingSink struct {
	inner   model.Sink
	offsets []int
}

func (d *doublingSink) NoteOn(channel, pitch, velocity uint8) error {
	if err := d.inner.NoteOn(channel, pitch, velocity); err != nil {
		return err
	}
	for _, off := range d.offsets {
		p := int(pitch) + off
		if p < 0 || p > 127 {
			continue
		}
		if err := d.inner.NoteOn(channel, uint8(p), velocity); err != nil {
			return err
		}
	}
	return nil
}

func (d *doublingSink) NoteOff(channel, pitch, velocity uint8) error {
	if err := d.inner.NoteOff(channel, pitch, velocity); err != nil {
		return err
	}
	for _, off := range d.offsets {
		p := int(pitch) + off
		if p < 0 || p > 127 {
			continue
		}
		if err := d.inner.NoteOff(channel, uint8(p), velocity); err != nil {
			return err
		}
	}
	return nil
}

// Stop signals the worker to end gracefully, finishing the current
// cycle before it exits. It does not block; call GracefulStop or
// EnsureStopped to wait.
func (p *Player) Stop() {
	p.shouldStop.Store(true)
}

// GracefulStop signals the worker to end and blocks until it has
// exited, but never interrupts an in-progress step: the worker plays
// on, each step for its full recorded duration, until the cycle wraps
// back to step 0; it checks shouldStop after each step-off and at the
// top of its loop. Use this for a note-off that should let the playing
// steps finish naturally.
func (p *Player) GracefulStop() error {
	p.shouldStop.Store(true)
	<-p.stoppedChan
	return p.err
}

// EnsureStopped signals an immediate stop, interrupting any in-progress
// wait, and blocks until the worker goroutine has exited. It surfaces
// either a transport send error or a recovered worker panic. Reserve
// this for genuine force-stop call sites (CC64 rising edge, Reset);
// a plain note-off should use GracefulStop instead.
func (p *Player) EnsureStopped() error {
	p.shouldStop.Store(true)
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
	<-p.stoppedChan
	return p.err
}
