package hub75

import (
	"github.com/Winkelkatze/ledmatrix/dmaring"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

// Descriptor, Ring, and RingPos are re-exported from dmaring so callers
// of this package never need to import it directly.
type (
	Descriptor = dmaring.Descriptor
	Ring       = dmaring.Ring
	RingPos    = dmaring.RingPos
)

// StreamBuffer is the D-subimage byte buffer described in spec §3: D
// contiguous bitplanes of SubimageStride bytes each, held in DMA-capable
// memory.
type StreamBuffer struct {
	Mem hub75mem.Mem
}

// Bytes returns the raw backing bytes.
func (sb StreamBuffer) Bytes() []byte {
	return sb.Mem.Bytes()
}

// bufferPair is one (StreamBuffer, Ring) owned by Dev; k of them exist
// depending on DoubleBuffer.
type bufferPair struct {
	Stream StreamBuffer
	Ring   Ring
}
