// Package arperr defines the sentinel error taxonomy shared by the
// transport, player and dispatcher layers, so callers can distinguish
// recoverable protocol noise from fatal transport and invariant failures
// with errors.Is instead of string matching.
package arperr

import "errors"

var (
	// ErrTransportClosed is returned by transport.Read once the inbound
	// queue it drains has been closed.
	ErrTransportClosed = errors.New("midi transport closed")

	// ErrOutputBackpressure is returned by any emission path (Step,
	// Player) when the output queue's receiver has gone away.
	ErrOutputBackpressure = errors.New("midi output queue has no receiver")

	// ErrForceStopInvariant is returned when a Player's force_stop is
	// followed by a play_tick call that still reports itself alive,
	// which indicates a bug in the player implementation rather than a
	// recoverable runtime condition.
	ErrForceStopInvariant = errors.New("player reported alive after force stop")

	// ErrEmptyArpeggio is returned by arpeggio constructors invoked with
	// zero steps or zero notes; callers must not construct such
	// arpeggios, this is a programming error surfaced as an error
	// rather than a panic at the outermost construction boundary.
	ErrEmptyArpeggio = errors.New("arpeggio must have at least one step")

	// ErrZeroSteps is returned by pattern expansion when asked to
	// generate zero steps.
	ErrZeroSteps = errors.New("cannot generate a pattern with zero steps")

	// ErrZeroNotes is returned by pattern expansion when asked to
	// expand zero notes.
	ErrZeroNotes = errors.New("cannot generate a pattern from zero notes")

	// ErrPlayerStuck names the case of a force-stopped player that does
	// not settle within the expected number of ticks. No function in
	// this module returns it.
	ErrPlayerStuck = errors.New("player did not settle after force stop")
)
