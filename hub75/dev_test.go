package hub75

import (
	"errors"
	"testing"

	"github.com/Winkelkatze/ledmatrix/decode"
	"github.com/Winkelkatze/ledmatrix/geometry"
	"github.com/Winkelkatze/ledmatrix/hub75host"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

func testConfig(doubleBuffer bool) geometry.Config {
	return geometry.Config{
		ColorPins:    []int{0, 1, 2, 3, 4, 5},
		RowPins:      []int{10, 11},
		OEPin:        20, LatPin: 21, ClkPin: 22,
		Width:        32,
		ColorDepth:   2,
		DoubleBuffer: doubleBuffer,
	}
}

func TestOpenInstallsAndSends(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(false), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	if len(collab.Installs) != 1 {
		t.Fatalf("Installs = %d, want 1", len(collab.Installs))
	}
	if len(collab.Sends) != 1 {
		t.Fatalf("Sends = %d, want 1", len(collab.Sends))
	}
}

func TestShowRejectsWrongSize(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(false), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	err = dev.Show(make([]byte, 3), decode.RGB565, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Show with bad size: err = %v, want ErrInvalidArgument", err)
	}
}

func TestShowSingleBufferInPlace(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(false), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	g := dev.geometry
	fb := make([]byte, decode.RGB565.FrameSize(g.Width, g.Height))
	for i := range fb {
		fb[i] = 0xFF
	}
	if err := dev.Show(fb, decode.RGB565, nil); err != nil {
		t.Fatalf("Show: %v", err)
	}
	// In-place: the single ring's buffer now holds nonzero color bytes.
	buf := dev.buffers[0].Stream.Bytes()
	var anyNonZero bool
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != 0 {
			anyNonZero = true
			break
		}
	}
	if !anyNonZero {
		t.Errorf("expected at least one nonzero color byte after Show")
	}
}

// TestDoubleBufferHandoff matches spec §8 invariant 6: after Show, both
// rings' tail Next point at the current front buffer's first descriptor.
func TestDoubleBufferHandoff(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(true), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	g := dev.geometry
	fbA := make([]byte, decode.RGB565.FrameSize(g.Width, g.Height))
	fbB := make([]byte, decode.RGB565.FrameSize(g.Width, g.Height))
	for i := range fbB {
		fbB[i] = 0xFF
	}

	writtenTo := dev.backbuffer
	if err := dev.Show(fbA, decode.RGB565, nil); err != nil {
		t.Fatalf("Show(fbA): %v", err)
	}
	checkTailsPointAt(t, dev, writtenTo)

	writtenTo = dev.backbuffer
	if err := dev.Show(fbB, decode.RGB565, nil); err != nil {
		t.Fatalf("Show(fbB): %v", err)
	}
	checkTailsPointAt(t, dev, writtenTo)
}

func checkTailsPointAt(t *testing.T, dev *Dev, buffer int) {
	t.Helper()
	want := RingPos{Buffer: buffer, Index: 0}
	for i, bp := range dev.buffers {
		got := bp.Ring[len(bp.Ring)-1].Next
		if got != want {
			t.Fatalf("ring %d tail Next = %+v, want %+v", i, got, want)
		}
	}
}

func TestSetBrightnessPreservesColorBytes(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(false), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dev.Close()

	g := dev.geometry
	fb := make([]byte, decode.RGB565.FrameSize(g.Width, g.Height))
	for i := range fb {
		fb[i] = 0xAA
	}
	if err := dev.Show(fb, decode.RGB565, nil); err != nil {
		t.Fatalf("Show: %v", err)
	}
	before := append([]byte(nil), dev.buffers[0].Stream.Bytes()...)

	if err := dev.SetBrightness(5); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	after := dev.buffers[0].Stream.Bytes()
	for i := 0; i < len(after); i += 2 {
		if after[i] != before[i] {
			t.Fatalf("color byte at %d changed: %#x -> %#x", i, before[i], after[i])
		}
	}
}

func TestOperationsFailWhenNotInitialized(t *testing.T) {
	var dev Dev
	if err := dev.Show(nil, decode.RGB565, nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Show: err = %v, want ErrNotInitialized", err)
	}
	if err := dev.SetBrightness(0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetBrightness: err = %v, want ErrNotInitialized", err)
	}
	if err := dev.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Stop: err = %v, want ErrNotInitialized", err)
	}
	if err := dev.Resume(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Resume: err = %v, want ErrNotInitialized", err)
	}
}

func TestStopSendsSafeWordAndWaitsIdle(t *testing.T) {
	collab := hub75host.NewMock()
	dev, err := Open(testConfig(false), collab, hub75mem.HeapAllocator{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	collab.SetIdle(true)
	if err := dev.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(collab.Sends) != 2 { // Open's initial Send plus Stop's safe word
		t.Fatalf("Sends = %d, want 2", len(collab.Sends))
	}
}
