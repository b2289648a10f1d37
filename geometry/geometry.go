// Package geometry validates panel parameters and derives the fixed
// geometry that every other package in this module reads but never
// mutates.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every validation failure in this
// package so callers can match it with errors.Is.
var ErrInvalidArgument = errors.New("geometry: invalid argument")

// Config holds the user-facing panel parameters, mirroring the
// programmatic surface of init(...).
type Config struct {
	// ColorPins is [R1,G1,B1,R2,G2,B2], or just [R1,G1,B1] when
	// SingleChannel is set.
	ColorPins []int
	// RowPins is 1..6 row-address pin indices, LSB first.
	RowPins []int
	OEPin   int
	LatPin  int
	ClkPin  int

	Width int

	// ColorDepth is the number of BCM bitplanes. Zero means "use the
	// default of 4".
	ColorDepth int

	// ClockSpeedKHz must fall in [313, 40000]. Zero means "use the
	// default of 2500".
	ClockSpeedKHz int

	Invert        bool
	DoubleBuffer  bool
	ColumnSwap    bool
	SingleChannel bool

	// Brightness is 0..Width-2, nil meaning "use the default of
	// Width-2" (never blank except the first two column ticks).
	Brightness *int
}

// Geometry is the validated, derived panel geometry. Every field is set
// once by Configure and never mutated afterward.
type Geometry struct {
	Width         int
	RowAddressBits int
	Rows          int
	Height        int
	SingleChannel bool
	ColorDepth    int
	ClockSpeedKHz int
	Invert        bool
	DoubleBuffer  bool
	ColumnSwap    bool

	// Brightness is the stored value B, already offset by one from the
	// user-facing brightness (B = user + 1), satisfying B in [1, W-1].
	Brightness int

	ColorPins []int
	RowPins   []int
	OEPin     int
	LatPin    int
	ClkPin    int

	// SubimageStride is the byte size of one bitplane: 2*Width*Rows.
	SubimageStride int
}

const (
	defaultColorDepth    = 4
	defaultClockSpeedKHz = 2500
	minClockSpeedKHz     = 313
	maxClockSpeedKHz     = 40000
)

// Configure validates cfg and returns the derived Geometry, or a wrapped
// ErrInvalidArgument describing the first violation found.
func Configure(cfg Config) (*Geometry, error) {
	if cfg.Width <= 0 || cfg.Width%2 != 0 {
		return nil, fmt.Errorf("%w: width %d must be even and positive", ErrInvalidArgument, cfg.Width)
	}

	a := len(cfg.RowPins)
	if a < 1 || a > 6 {
		return nil, fmt.Errorf("%w: row pin count %d must be in [1, 6]", ErrInvalidArgument, a)
	}

	wantColorPins := 6
	if cfg.SingleChannel {
		wantColorPins = 3
	}
	if len(cfg.ColorPins) != wantColorPins {
		return nil, fmt.Errorf("%w: got %d color pins, want %d for single_channel=%v", ErrInvalidArgument, len(cfg.ColorPins), wantColorPins, cfg.SingleChannel)
	}

	if err := checkDistinctPins(cfg); err != nil {
		return nil, err
	}

	depth := cfg.ColorDepth
	if depth == 0 {
		depth = defaultColorDepth
	}
	if depth < 1 || depth > 8 {
		return nil, fmt.Errorf("%w: color depth %d must be in [1, 8]", ErrInvalidArgument, depth)
	}

	clockKHz := cfg.ClockSpeedKHz
	if clockKHz == 0 {
		clockKHz = defaultClockSpeedKHz
	}
	if clockKHz < minClockSpeedKHz || clockKHz > maxClockSpeedKHz {
		return nil, fmt.Errorf("%w: clock speed %d kHz must be in [%d, %d]", ErrInvalidArgument, clockKHz, minClockSpeedKHz, maxClockSpeedKHz)
	}

	userBrightness := cfg.Width - 2
	if cfg.Brightness != nil {
		userBrightness = *cfg.Brightness
	}
	if userBrightness < 0 || userBrightness > cfg.Width-2 {
		return nil, fmt.Errorf("%w: brightness %d must be in [0, %d]", ErrInvalidArgument, userBrightness, cfg.Width-2)
	}

	rows := 1 << uint(a)
	height := rows
	if !cfg.SingleChannel {
		height = 2 * rows
	}

	g := &Geometry{
		Width:          cfg.Width,
		RowAddressBits: a,
		Rows:           rows,
		Height:         height,
		SingleChannel:  cfg.SingleChannel,
		ColorDepth:     depth,
		ClockSpeedKHz:  clockKHz,
		Invert:         cfg.Invert,
		DoubleBuffer:   cfg.DoubleBuffer,
		ColumnSwap:     cfg.ColumnSwap,
		Brightness:     userBrightness + 1,
		ColorPins:      append([]int(nil), cfg.ColorPins...),
		RowPins:        append([]int(nil), cfg.RowPins...),
		OEPin:          cfg.OEPin,
		LatPin:         cfg.LatPin,
		ClkPin:         cfg.ClkPin,
		SubimageStride: 2 * cfg.Width * rows,
	}
	return g, nil
}

func checkDistinctPins(cfg Config) error {
	seen := make(map[int]string, len(cfg.ColorPins)+len(cfg.RowPins)+3)
	mark := func(pin int, name string) error {
		if other, ok := seen[pin]; ok {
			return fmt.Errorf("%w: pin %d used for both %s and %s", ErrInvalidArgument, pin, other, name)
		}
		seen[pin] = name
		return nil
	}
	for i, p := range cfg.ColorPins {
		if err := mark(p, fmt.Sprintf("color[%d]", i)); err != nil {
			return err
		}
	}
	for i, p := range cfg.RowPins {
		if err := mark(p, fmt.Sprintf("row[%d]", i)); err != nil {
			return err
		}
	}
	if err := mark(cfg.OEPin, "oe"); err != nil {
		return err
	}
	if err := mark(cfg.LatPin, "lat"); err != nil {
		return err
	}
	if err := mark(cfg.ClkPin, "clk"); err != nil {
		return err
	}
	return nil
}
