package hub75

import (
	"github.com/Winkelkatze/ledmatrix/geometry"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

// LMax is the platform DMA transfer-length limit: a 12-bit word-aligned
// field, so the largest representable length is 2^12 - 4.
const LMax = 4092

// segmentsFor returns seg = ceil(subimageStride / LMax), the number of
// descriptors needed to cover one full bitplane transfer.
func segmentsFor(subimageStride int) int {
	return (subimageStride + LMax - 1) / LMax
}

// buildRing implements spec §4.3: lay out N = (2^D-1)*seg descriptors
// over sb, time-interleaving bitplanes so plane l appears 2^l times for
// l < D-1 and plane D-1 fills every remaining slot (2^(D-1) times).
// bufferIdx is stamped into every Next so the ring is self-contained
// until a hand-off (see handoff in buffer.go) retargets its tail.
func buildRing(mem hub75mem.Mem, g *geometry.Geometry, bufferIdx int) Ring {
	seg := segmentsFor(g.SubimageStride)
	numSlots := (1 << uint(g.ColorDepth)) - 1
	n := numSlots * seg

	planeOfSlot := make([]int, numSlots)
	for i := range planeOfSlot {
		planeOfSlot[i] = -1
	}

	for l := 0; l < g.ColorDepth-1; l++ {
		count := 1 << uint(l)
		for k := 0; k < count; k++ {
			slot := (numSlots*k)/count + numSlots/(2*count)
			slot %= numSlots
			for planeOfSlot[slot] != -1 {
				slot = (slot + 1) % numSlots
			}
			planeOfSlot[slot] = l
		}
	}
	last := g.ColorDepth - 1
	for i, p := range planeOfSlot {
		if p == -1 {
			planeOfSlot[i] = last
		}
	}

	ring := make(Ring, n)
	for slot := 0; slot < numSlots; slot++ {
		plane := planeOfSlot[slot]
		planeBase := plane * g.SubimageStride
		remaining := g.SubimageStride
		offset := 0
		for s := 0; s < seg; s++ {
			length := remaining
			if length > LMax {
				length = LMax
			}
			idx := slot*seg + s
			ring[idx] = Descriptor{
				Buf:    mem,
				Offset: planeBase + offset,
				Length: length,
				Owner:  1,
				Next:   RingPos{Buffer: bufferIdx, Index: idx + 1},
			}
			offset += length
			remaining -= length
		}
	}
	ring[n-1].Next = RingPos{Buffer: bufferIdx, Index: 0}
	return ring
}
