package dmaring

import (
	"testing"

	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

func TestDescriptorBusAddr(t *testing.T) {
	var a hub75mem.HeapAllocator
	mem, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer mem.Close()

	d := Descriptor{Buf: mem, Offset: 16, Length: 8}
	if want := mem.PhysAddr() + 16; d.BusAddr() != want {
		t.Errorf("BusAddr() = %d, want %d", d.BusAddr(), want)
	}
}

func TestRingIsASlice(t *testing.T) {
	var a hub75mem.HeapAllocator
	mem, err := a.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer mem.Close()

	r := Ring{
		{Buf: mem, Offset: 0, Length: 16, Next: RingPos{Buffer: 0, Index: 1}},
		{Buf: mem, Offset: 16, Length: 16, Next: RingPos{Buffer: 0, Index: 0}},
	}
	if len(r) != 2 {
		t.Fatalf("len(r) = %d, want 2", len(r))
	}
	if r[len(r)-1].Next != (RingPos{Buffer: 0, Index: 0}) {
		t.Errorf("ring does not close on itself: last.Next = %+v", r[len(r)-1].Next)
	}
}
