// Package dmaring defines the DMA descriptor ring record shared by the
// core (which builds and mutates it) and the host collaborator (which
// marshals it into real hardware descriptors and starts the engine).
// It is its own package so hub75 and hub75host can both depend on it
// without depending on each other.
package dmaring

import "github.com/Winkelkatze/ledmatrix/hub75mem"

// RingPos addresses one descriptor by (buffer, index). A single-buffer
// Dev only ever uses Buffer 0; a double-buffered Dev uses Next to link
// across buffers during hand-off, which a bare ring-local index cannot
// express.
type RingPos struct {
	Buffer int
	Index  int
}

// Descriptor mirrors the hardware DMA descriptor record: a transfer of
// Length bytes starting at offset Offset within Buf, chained to the
// descriptor at Next. Buf is kept as the owning hub75mem.Mem, not a bare
// []byte, so a Collaborator can always recover a bus address via
// Buf.PhysAddr()+Offset when marshaling real hardware descriptors.
type Descriptor struct {
	Buf    hub75mem.Mem
	Offset int
	Length int
	Owner  uint8
	Next   RingPos
}

// BusAddr returns the bus address the DMA engine should read Length
// bytes from.
func (d Descriptor) BusAddr() uint64 {
	return d.Buf.PhysAddr() + uint64(d.Offset)
}

// Ring is a closed cycle of descriptors.
type Ring []Descriptor
