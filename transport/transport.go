// Package transport wraps gitlab.com/gomidi/midi/v2's real device I/O
// into the reader/writer goroutine shape spec'd for the engine: one
// goroutine per input/clock port feeding a shared bounded queue, and
// one goroutine draining the output queue onto the wire. It is the only
// package that imports gitlab.com/gomidi/midi/v2/drivers directly.
package transport

import (
	"context"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // auto-register the RtMIDI backend

	"github.com/davidlang42/midi-arpeggiator/arperr"
)

// queueCapacity bounds the single-consumer input queue shared by every
// reader goroutine, matching spec's "bounded-capacity single-consumer
// queue" resource policy.
const queueCapacity = 256

// ListPorts mirrors the teacher's midi.ListPorts, generalized to report
// both directions (device discovery itself stays an external concern;
// this is only the naming contract cmd/arpcli uses to print a menu).
func ListPorts() (in, out []string, err error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("listing MIDI input ports: %w", err)
	}
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("listing MIDI output ports: %w", err)
	}
	for _, p := range ins {
		in = append(in, p.String())
	}
	for _, p := range outs {
		out = append(out, p.String())
	}
	return in, out, nil
}

// Input wraps a single opened input port, framing its byte stream into
// midi.Message values delivered on a shared queue.
type Input struct {
	port  drivers.In
	stop  func()
	queue chan midi.Message
}

// OpenInput opens portIndex and starts its reader goroutine immediately,
// pushing every received message onto queue. queue is shared with an
// optional Clock reader so messages from either source merge at the
// dispatcher's single blocking read.
func OpenInput(portIndex int, queue chan midi.Message) (*Input, error) {
	port, err := midi.InPort(portIndex)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI input port %d: %w", portIndex, err)
	}
	in := &Input{port: port, queue: queue}
	stop, err := port.Listen(in.onMessage, drivers.ListenConfig{})
	if err != nil {
		return nil, fmt.Errorf("listening on MIDI input port %d: %w", portIndex, err)
	}
	in.stop = stop
	return in, nil
}

func (in *Input) onMessage(data []byte, timestampms int32) {
	msg := midi.Message(data)
	msg = rewriteZeroVelocityNoteOn(msg)
	select {
	case in.queue <- msg:
	default:
		// queue full: drop rather than block the driver's callback
		// thread, per the bounded-capacity policy.
	}
}

// rewriteZeroVelocityNoteOn turns a note-on with velocity 0 into an
// explicit note-off, per the device contract.
func rewriteZeroVelocityNoteOn(msg midi.Message) midi.Message {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) && vel == 0 {
		return midi.NoteOffVelocity(ch, key, 0)
	}
	return msg
}

// Close stops the reader goroutine and closes the port.
func (in *Input) Close() error {
	if in.stop != nil {
		in.stop()
	}
	return in.port.Close()
}

// Clock wraps a second input port used only as a clock source: it
// filters to TimingClock (and, if shareControlMessages is set, CC and
// Program Change) before pushing onto the shared queue.
type Clock struct {
	port                 drivers.In
	stop                 func()
	queue                chan midi.Message
	shareControlMessages bool
}

// OpenClock opens portIndex as a dedicated clock source.
func OpenClock(portIndex int, queue chan midi.Message, shareControlMessages bool) (*Clock, error) {
	port, err := midi.InPort(portIndex)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI clock port %d: %w", portIndex, err)
	}
	c := &Clock{port: port, queue: queue, shareControlMessages: shareControlMessages}
	stop, err := port.Listen(c.onMessage, drivers.ListenConfig{})
	if err != nil {
		return nil, fmt.Errorf("listening on MIDI clock port %d: %w", portIndex, err)
	}
	c.stop = stop
	return c, nil
}

func (c *Clock) onMessage(data []byte, timestampms int32) {
	msg := midi.Message(data)
	if !c.relevant(msg) {
		return
	}
	select {
	case c.queue <- msg:
	default:
	}
}

func (c *Clock) relevant(msg midi.Message) bool {
	if msg.Is(midi.TimingClockMsg) {
		return true
	}
	if !c.shareControlMessages {
		return false
	}
	var a, b, d uint8
	return msg.GetControlChange(&a, &b, &d) || msg.GetProgramChange(&a, &b)
}

func (c *Clock) Close() error {
	if c.stop != nil {
		c.stop()
	}
	return c.port.Close()
}

// Output wraps a single opened output port and the goroutine that
// drains its send queue onto the wire, in send-call order.
type Output struct {
	port  drivers.Out
	send  func(msg midi.Message) error
	queue chan midi.Message
	done  chan struct{}
}

// OpenOutput opens portIndex and starts its writer goroutine.
func OpenOutput(portIndex int) (*Output, error) {
	port, err := midi.OutPort(portIndex)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI output port %d: %w", portIndex, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("creating MIDI sender for port %d: %w", portIndex, err)
	}
	o := newOutput(port, send)
	go o.writeLoop()
	return o, nil
}

// newOutput builds an Output around an already-resolved port/sender
// pair, split out from OpenOutput so tests can inject a fake sender
// without a real MIDI driver.
func newOutput(port drivers.Out, send func(midi.Message) error) *Output {
	return &Output{
		port:  port,
		send:  send,
		queue: make(chan midi.Message, queueCapacity),
		done:  make(chan struct{}),
	}
}

func (o *Output) writeLoop() {
	defer close(o.done)
	for msg := range o.queue {
		if err := o.send(msg); err != nil {
			return
		}
	}
}

// Enqueue pushes a raw message onto the output queue. It returns
// arperr.ErrOutputBackpressure if the queue's receiver has gone away
// (the writer goroutine already exited after a send failure).
func (o *Output) Enqueue(msg midi.Message) error {
	select {
	case <-o.done:
		return arperr.ErrOutputBackpressure
	default:
	}
	select {
	case o.queue <- msg:
		return nil
	case <-o.done:
		return arperr.ErrOutputBackpressure
	}
}

// NoteOn implements model.Sink by enqueueing a note-on message.
func (o *Output) NoteOn(channel, pitch, velocity uint8) error {
	return o.Enqueue(midi.NoteOn(channel, pitch, velocity))
}

// NoteOff implements model.Sink by enqueueing a note-off message.
func (o *Output) NoteOff(channel, pitch, velocity uint8) error {
	return o.Enqueue(midi.NoteOffVelocity(channel, pitch, velocity))
}

// Send enqueues an arbitrary raw message, used by the passthrough mode
// to forward aftertouch, CC, channel pressure, and pitch-bend traffic
// that model.Sink has no vocabulary for.
func (o *Output) Send(msg midi.Message) error {
	return o.Enqueue(msg)
}

// Close drains the queue and closes the port.
func (o *Output) Close() error {
	close(o.queue)
	<-o.done
	return o.port.Close()
}

// Read blocks until a message is available on queue or ctx is
// cancelled, matching the dispatcher's single suspension point.
func Read(ctx context.Context, queue <-chan midi.Message) (midi.Message, error) {
	select {
	case msg, ok := <-queue:
		if !ok {
			return nil, arperr.ErrTransportClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
