// Package hub75host defines the external parallel-DMA peripheral
// collaborator the core depends on, and provides two implementations:
// Mock, for tests and dry runs, and BCM283x, backed by periph.io/x/host/v3
// for Raspberry-Pi-class boards.
package hub75host

import (
	"periph.io/x/conn/v3/physic"

	"github.com/Winkelkatze/ledmatrix/dmaring"
)

// PinMap carries the fixed bus-position-to-GPIO-number mapping the
// collaborator must program into the peripheral's mux. Bit order follows
// the stream word layout: ColorPins are bus bits 0..5 (or 0..2 for
// single-channel), OEPin is bit 8, LatPin is bit 9, RowPins are bits
// 10..10+a-1 in ascending weight.
type PinMap struct {
	ColorPins []int
	RowPins   []int
	OEPin     int
	LatPin    int
	ClkPin    int
}

// Collaborator is the parallel-DMA peripheral driver boundary: pin mux
// and clock installation, beginning a transfer from a descriptor, and
// polling for idle. The core never calls any platform package directly;
// it only ever holds a Collaborator.
type Collaborator interface {
	// Install configures the GPIO mux per pins, the output clock to
	// freq, and a 16-bit parallel sample width.
	Install(pins PinMap, freq physic.Frequency) error
	// Send marshals every buffer's ring (indexed by dmaring.RingPos.Buffer)
	// into real hardware descriptors in DMA-reachable memory and begins
	// streaming from the descriptor at first; the engine follows each
	// descriptor's Next indefinitely. A later hand-off between the rings
	// passed here must go through Retarget, not a fresh Send, or the
	// engine keeps chasing the chain it was already given.
	Send(rings []dmaring.Ring, first dmaring.RingPos) error
	// Retarget atomically rewrites the Next field of the descriptor at
	// pos, in the same physical memory Send marshaled, to target. This
	// is how hub75's double-buffer hand-off (spec §4.4) reaches the
	// memory the engine is actually reading, not just the logical
	// dmaring.Ring Go slice.
	Retarget(pos, target dmaring.RingPos) error
	// IsIdle reports whether the engine has stopped transferring.
	IsIdle() bool
}
