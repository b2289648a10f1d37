package hub75mem

import "unsafe"

// uintptrOf returns the numeric address of p. Used only to synthesize a
// stand-in bus address for heap-backed Mem; never a real physical
// address.
func uintptrOf(p *byte) uintptr {
	return uintptr(unsafe.Pointer(p))
}
