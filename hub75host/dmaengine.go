package hub75host

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/physic"

	"github.com/Winkelkatze/ledmatrix/dmaring"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

// controlBlockSize is the BCM283x DMA control block layout: transferInfo,
// sourceAddr, destAddr, transferLen, stride, nextCB, two reserved words.
// See simokawa-periph/host/bcm283x/dma.go's controlBlock for the
// authoritative field order; this mirrors it.
const controlBlockSize = 32

const (
	cbOffTransferInfo = 0
	cbOffSourceAddr   = 4
	cbOffDestAddr     = 8
	cbOffTransferLen  = 12
	cbOffStride       = 16
	cbOffNextCB       = 20
)

// tiPeriphMapPWM selects PWM as the DMA destination peripheral and
// tiSrcInc enables source increment, matching how a parallel-bus-over-PWM transfer is
// wired on BCM283x.
const tiPeriphMapPWM = 5 << 16
const tiSrcInc = 1 << 8
const tiDestDReq = 1 << 6
const tiWaitResp = 1 << 3

// Registers abstracts the small set of DMA-channel and clock registers
// Start, Idle and ConfigureClock touch. A real binding backs this with an mmap'd peripheral register
// window (as periph's host/bcm283x does internally); tests back it with
// an in-memory stand-in.
type Registers interface {
	SetConblkAddr(busAddr uint32)
	SetActive(active bool)
	IsActive() bool
	SetClockDivisor(div uint32)
}

// GenericEngine is a DMAEngine that marshals every buffer's dmaring.Ring
// into chained BCM283x-style control blocks in one DMA-capable memory
// region and drives one channel through Registers. It is the one
// concrete, wireable implementation of DMAEngine this module ships; a
// board-specific build backed by real mmap'd registers implements
// Registers instead of reimplementing GenericEngine.
//
// Control blocks for every buffer are marshaled together by Start so
// that a later Retarget — which patches a single control block's nextCB
// field in place — can redirect the chain the engine is actually
// chasing from one buffer's descriptors into another's, matching
// dmaring.Ring's logical Next mutation.
type GenericEngine struct {
	alloc hub75mem.Allocator
	regs  Registers

	cbMem      hub75mem.Mem
	bufferBase []int // cbMem control-block slot where buffer i's ring begins
}

// slotFor returns the control-block slot index for pos.
func (e *GenericEngine) slotFor(pos dmaring.RingPos) int {
	return e.bufferBase[pos.Buffer] + pos.Index
}

// NewGenericEngine returns a GenericEngine allocating control-block
// storage through alloc and driving regs.
func NewGenericEngine(alloc hub75mem.Allocator, regs Registers) *GenericEngine {
	return &GenericEngine{alloc: alloc, regs: regs}
}

func (e *GenericEngine) ConfigureClock(freq physic.Frequency) error {
	// The PWM clock runs at a fixed oscillator frequency divided by an
	// integer; periph's host/bcm283x programs the same divisor field
	// when driving WS2812B-style streams.
	const oscillator = 19200 * physic.KiloHertz
	div := uint32(oscillator / freq)
	if div == 0 {
		div = 1
	}
	e.regs.SetClockDivisor(div)
	return nil
}

func (e *GenericEngine) Start(rings []dmaring.Ring, first dmaring.RingPos) error {
	if e.cbMem != nil {
		_ = e.cbMem.Close()
	}
	total := 0
	for _, r := range rings {
		total += len(r)
	}
	size := total * controlBlockSize
	mem, err := e.alloc.Alloc(size)
	if err != nil {
		return fmt.Errorf("hub75host: allocate control blocks: %w", err)
	}
	e.cbMem = mem
	e.bufferBase = make([]int, len(rings))
	running := 0
	for i, r := range rings {
		e.bufferBase[i] = running
		running += len(r)
	}

	base := mem.PhysAddr()
	buf := mem.Bytes()
	for bufIdx, ring := range rings {
		for i, d := range ring {
			slot := e.bufferBase[bufIdx] + i
			off := slot * controlBlockSize
			binary.LittleEndian.PutUint32(buf[off+cbOffTransferInfo:], tiPeriphMapPWM|tiSrcInc|tiDestDReq|tiWaitResp)
			binary.LittleEndian.PutUint32(buf[off+cbOffSourceAddr:], uint32(d.BusAddr()))
			binary.LittleEndian.PutUint32(buf[off+cbOffDestAddr:], 0) // PWM FIFO register, board-specific
			binary.LittleEndian.PutUint32(buf[off+cbOffTransferLen:], uint32(d.Length))
			binary.LittleEndian.PutUint32(buf[off+cbOffStride:], 0)
			nextOff := e.slotFor(d.Next) * controlBlockSize
			binary.LittleEndian.PutUint32(buf[off+cbOffNextCB:], uint32(base)+uint32(nextOff))
		}
	}

	firstOff := e.slotFor(first) * controlBlockSize
	e.regs.SetConblkAddr(uint32(base) + uint32(firstOff))
	e.regs.SetActive(true)
	return nil
}

// Retarget rewrites the nextCB field of the control block at pos to
// point at target's control block, in place, in the same cbMem Start
// marshaled. This is the single in-place store hub75's double-buffer
// hand-off depends on: the engine, mid-stream, eventually reads the new
// value the next time it fetches that control block's next-pointer.
func (e *GenericEngine) Retarget(pos, target dmaring.RingPos) error {
	if e.cbMem == nil {
		return fmt.Errorf("hub75host: Retarget called before Start")
	}
	base := e.cbMem.PhysAddr()
	buf := e.cbMem.Bytes()
	off := e.slotFor(pos)*controlBlockSize + cbOffNextCB
	nextOff := e.slotFor(target) * controlBlockSize
	binary.LittleEndian.PutUint32(buf[off:], uint32(base)+uint32(nextOff))
	return nil
}

func (e *GenericEngine) Idle() bool {
	return !e.regs.IsActive()
}

var _ DMAEngine = (*GenericEngine)(nil)
