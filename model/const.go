package model

// TicksPerBeat is the standard MIDI timing-clock resolution: 24 pulses
// per quarter note (24 PPQN).
const TicksPerBeat = 24
