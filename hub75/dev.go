// Package hub75 lays out and drives the DMA descriptor ring that
// refreshes a HUB75 panel: it encodes stream words, builds the
// time-interleaved descriptor ring, manages single/double buffering, and
// exposes the lifecycle operations a caller drives a panel with.
package hub75

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/Winkelkatze/ledmatrix/decode"
	"github.com/Winkelkatze/ledmatrix/geometry"
	"github.com/Winkelkatze/ledmatrix/hub75host"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
)

// MetricsRecorder is the optional observability hook. A nil
// MetricsRecorder is a documented no-op; Dev never requires one.
type MetricsRecorder interface {
	FrameShown()
	BrightnessSet(v int)
	HandoffDone()
}

// Dev is the single owning value returned by Open. It wraps the
// validated geometry together with one or two (stream buffer, ring)
// pairs and the external collaborator driving the parallel-DMA engine.
type Dev struct {
	geometry *geometry.Geometry
	collab   hub75host.Collaborator
	alloc    hub75mem.Allocator
	log      zerolog.Logger
	metrics  MetricsRecorder

	buffers    []bufferPair
	backbuffer int // index of the writable buffer

	monoColor [3]byte
	open      bool
}

// Option configures optional Dev behavior.
type Option func(*Dev)

// WithLogger attaches a structured logger for lifecycle diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dev) { d.log = logger }
}

// WithMetrics attaches a MetricsRecorder. Pass nil (the default) to
// disable metrics entirely.
func WithMetrics(m MetricsRecorder) Option {
	return func(d *Dev) { d.metrics = m }
}

// Open implements spec §4.5's init: validates cfg, allocates and
// initializes one or two buffer pairs, installs the collaborator, and
// starts streaming from the front buffer.
func Open(cfg geometry.Config, collab hub75host.Collaborator, alloc hub75mem.Allocator, opts ...Option) (*Dev, error) {
	g, err := geometry.Configure(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	d := &Dev{
		geometry: g,
		collab:   collab,
		alloc:    alloc,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	numBuffers := 1
	if g.DoubleBuffer {
		numBuffers = 2
	}
	buffers := make([]bufferPair, numBuffers)
	for i := 0; i < numBuffers; i++ {
		bp, err := newBufferPair(g, alloc, i)
		if err != nil {
			for j := 0; j < i; j++ {
				_ = buffers[j].Stream.Mem.Close()
			}
			return nil, err
		}
		buffers[i] = bp
	}
	d.buffers = buffers

	front := 0
	if g.DoubleBuffer {
		d.backbuffer = 1
	}

	pins := hub75host.PinMap{
		ColorPins: g.ColorPins,
		RowPins:   g.RowPins,
		OEPin:     g.OEPin,
		LatPin:    g.LatPin,
		ClkPin:    g.ClkPin,
	}
	freq := physic.Frequency(g.ClockSpeedKHz) * physic.KiloHertz
	if err := collab.Install(pins, freq); err != nil {
		d.closeBuffers()
		return nil, &DriverError{Op: "install", Err: err}
	}
	if err := collab.Send(d.rings(), RingPos{Buffer: front, Index: 0}); err != nil {
		d.closeBuffers()
		return nil, &DriverError{Op: "send", Err: err}
	}

	d.open = true
	d.log.Info().Int("width", g.Width).Int("height", g.Height).Int("depth", g.ColorDepth).Msg("hub75: opened")
	return d, nil
}

func newBufferPair(g *geometry.Geometry, alloc hub75mem.Allocator, idx int) (bufferPair, error) {
	mem, err := alloc.Alloc(g.ColorDepth * g.SubimageStride)
	if err != nil {
		return bufferPair{}, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	writeControl(mem.Bytes(), g)
	ring := buildRing(mem, g, idx)
	return bufferPair{Stream: StreamBuffer{Mem: mem}, Ring: ring}, nil
}

func (d *Dev) closeBuffers() {
	for i := range d.buffers {
		_ = d.buffers[i].Stream.Mem.Close()
	}
	d.buffers = nil
}

func (d *Dev) front() int {
	if len(d.buffers) == 1 {
		return 0
	}
	return 1 - d.backbuffer
}

// rings returns every buffer's ring, indexed by buffer number, so the
// collaborator can marshal all of them into DMA-reachable memory at
// once — a hand-off only retargets one tail pointer and never re-sends.
func (d *Dev) rings() []Ring {
	rings := make([]Ring, len(d.buffers))
	for i := range d.buffers {
		rings[i] = d.buffers[i].Ring
	}
	return rings
}

// Show implements spec §4.5's show: validates fb's size against mode,
// optionally updates the mono tint, writes color bytes into the
// backbuffer, and performs the double-buffer hand-off.
func (d *Dev) Show(fb []byte, mode decode.Mode, monoColor *[3]byte) error {
	if !d.open {
		return ErrNotInitialized
	}
	g := d.geometry
	want := mode.FrameSize(g.Width, g.Height)
	if len(fb) != want {
		return fmt.Errorf("%w: framebuffer is %d bytes, want %d for %v at %dx%d", ErrInvalidArgument, len(fb), want, mode, g.Width, g.Height)
	}
	if monoColor != nil {
		d.monoColor = *monoColor
	}

	back := d.backbuffer
	writeColors(d.buffers[back].Stream.Bytes(), fb, decode.For(mode), g, d.monoColor)

	if g.DoubleBuffer {
		if err := handoff(d.collab, d.buffers, back); err != nil {
			return &DriverError{Op: "retarget", Err: err}
		}
		d.backbuffer = d.front()
		if d.metrics != nil {
			d.metrics.HandoffDone()
		}
	}
	if d.metrics != nil {
		d.metrics.FrameShown()
	}
	return nil
}

// SetBrightness implements spec §4.5's set_brightness: clamps v,
// re-derives B, and re-runs writeControl on every buffer. This
// intentionally bypasses double buffering; brightness writes are assumed
// infrequent and accept tearing.
func (d *Dev) SetBrightness(v int) error {
	if !d.open {
		return ErrNotInitialized
	}
	g := d.geometry
	if v < 0 {
		v = 0
	} else if v > g.Width-2 {
		v = g.Width - 2
	}
	newGeom := *g
	newGeom.Brightness = v + 1
	d.geometry = &newGeom
	for i := range d.buffers {
		writeControl(d.buffers[i].Stream.Bytes(), d.geometry)
	}
	if d.metrics != nil {
		d.metrics.BrightnessSet(v)
	}
	return nil
}

// Stop implements spec §4.5's stop: sends a single "safe word" descriptor
// blanking the panel, then busy-waits for the collaborator to report
// idle. There is no timeout, matching the source behavior (spec §5, §9).
func (d *Dev) Stop() error {
	if !d.open {
		return ErrNotInitialized
	}
	safeMem, err := d.alloc.Alloc(2)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	defer safeMem.Close()

	ctrl := byte(ctrlBitOE)
	if d.geometry.Invert {
		ctrl = ^ctrl
	}
	buf := safeMem.Bytes()
	buf[0] = 0
	buf[1] = ctrl

	safeRing := Ring{{Buf: safeMem, Offset: 0, Length: 2, Owner: 1, Next: RingPos{Buffer: 0, Index: 0}}}
	if err := d.collab.Send([]Ring{safeRing}, RingPos{Buffer: 0, Index: 0}); err != nil {
		return &DriverError{Op: "send-stop", Err: err}
	}
	for !d.collab.IsIdle() {
	}
	return nil
}

// Resume implements spec §4.5's resume: re-marshals every buffer's ring
// (Stop's safe-word descriptor replaced whatever the collaborator had
// previously marshaled) and restarts DMA from the current front buffer.
func (d *Dev) Resume() error {
	if !d.open {
		return ErrNotInitialized
	}
	front := d.front()
	if err := d.collab.Send(d.rings(), RingPos{Buffer: front, Index: 0}); err != nil {
		return &DriverError{Op: "send-resume", Err: err}
	}
	return nil
}

// Close implements spec §4.5's deinit: stops the running transfer, frees
// all stream data, and leaves the Dev unusable for any further
// operation except a repeated Close.
func (d *Dev) Close() error {
	if !d.open {
		return nil
	}
	err := d.Stop()
	d.closeBuffers()
	d.open = false
	d.log.Info().Msg("hub75: closed")
	return err
}
