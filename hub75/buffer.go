package hub75

import "github.com/Winkelkatze/ledmatrix/hub75host"

// handoff implements spec §4.4's double-buffer hand-off: rewrite the
// tail Next of both rings to point at newFront's first descriptor. This
// updates both the logical dmaring.Ring Go slice and, through collab,
// the physical descriptor memory the DMA engine is actually chasing —
// collab.Retarget is the single pointer-width store the engine observes
// atomically, either the old or the new target, never torn.
func handoff(collab hub75host.Collaborator, buffers []bufferPair, newFront int) error {
	target := RingPos{Buffer: newFront, Index: 0}
	for i := range buffers {
		ring := buffers[i].Ring
		tail := RingPos{Buffer: i, Index: len(ring) - 1}
		ring[len(ring)-1].Next = target
		if err := collab.Retarget(tail, target); err != nil {
			return err
		}
	}
	return nil
}
