package hub75host

import (
	"periph.io/x/conn/v3/physic"

	"github.com/Winkelkatze/ledmatrix/dmaring"
)

// Mock is an in-memory Collaborator for tests and for
// cmd/ledmatrixctl -dry-run. It never touches hardware; IsIdle reports
// false after every Send until a test calls SetIdle(true). Unlike GenericEngine it keeps
// the logical rings it was last given and mutates them directly on
// Retarget, so tests can inspect the same hand-off behavior a real
// collaborator must reproduce in its own backing memory.
type Mock struct {
	Installs  []MockInstall
	Sends     []dmaring.RingPos
	Retargets []MockRetarget

	rings []dmaring.Ring
	idle  bool
}

// MockRetarget records one call to Retarget.
type MockRetarget struct {
	Pos    dmaring.RingPos
	Target dmaring.RingPos
}

// MockInstall records one call to Install.
type MockInstall struct {
	Pins PinMap
	Freq physic.Frequency
}

// NewMock returns a Mock starting in the idle state.
func NewMock() *Mock {
	return &Mock{idle: true}
}

func (m *Mock) Install(pins PinMap, freq physic.Frequency) error {
	m.Installs = append(m.Installs, MockInstall{Pins: pins, Freq: freq})
	return nil
}

func (m *Mock) Send(rings []dmaring.Ring, first dmaring.RingPos) error {
	m.Sends = append(m.Sends, first)
	m.rings = rings
	m.idle = false
	return nil
}

// Retarget rewrites the Next field of the descriptor at pos in the rings
// most recently passed to Send, mirroring what a real collaborator must
// do to its own backing memory.
func (m *Mock) Retarget(pos, target dmaring.RingPos) error {
	m.Retargets = append(m.Retargets, MockRetarget{Pos: pos, Target: target})
	m.rings[pos.Buffer][pos.Index].Next = target
	return nil
}

// IsIdle reports true for a new Mock; each Send makes it report false
// until a test calls SetIdle(true), as a real engine is never idle
// immediately after Send returns.
func (m *Mock) IsIdle() bool {
	return m.idle
}

// SetIdle lets a test simulate the peripheral reaching tx_idle.
func (m *Mock) SetIdle(idle bool) {
	m.idle = idle
}

var _ Collaborator = (*Mock)(nil)
