package hub75host

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/Winkelkatze/ledmatrix/dmaring"
)

// BCM283x is a Collaborator backed by periph.io/x/host/v3 for
// Raspberry-Pi-class (BCM283x) boards. It configures the row-address and
// OE/LAT GPIOs as outputs during Install — the color/clock bus itself is
// driven by the SoC's parallel DMA engine, which this package does not
// reimplement; Send/IsIdle delegate to that engine through the
// DMAEngine it is constructed with.
type BCM283x struct {
	engine DMAEngine

	oe  gpio.PinOut
	lat gpio.PinOut
	row []gpio.PinOut
}

// DMAEngine is the low-level hook into the SoC's parallel-DMA hardware:
// the part of "the DMA peripheral driver" this module still treats as an
// external collaborator (installation is out of scope for the core). A
// real implementation marshals rings into chained BCM283x control blocks
// in DMA-reachable memory the way periph's host/bcm283x package does,
// and programs a DMA channel + PWM/clock pair to consume them starting
// at first; this module only needs the operations below, including
// Retarget for in-place hand-off between already-marshaled rings.
type DMAEngine interface {
	ConfigureClock(freq physic.Frequency) error
	Start(rings []dmaring.Ring, first dmaring.RingPos) error
	Retarget(pos, target dmaring.RingPos) error
	Idle() bool
}

// NewBCM283x returns a BCM283x Collaborator driving the given row-address
// and OE/LAT GPIO pin names (as accepted by gpioreg.ByName, e.g. "GPIO4")
// and delegating bus-master control to engine.
func NewBCM283x(engine DMAEngine, oeName, latName string, rowNames []string) (*BCM283x, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hub75host: periph host init: %w", err)
	}
	oe := gpioreg.ByName(oeName)
	if oe == nil {
		return nil, fmt.Errorf("hub75host: unknown OE pin %q", oeName)
	}
	lat := gpioreg.ByName(latName)
	if lat == nil {
		return nil, fmt.Errorf("hub75host: unknown LAT pin %q", latName)
	}
	row := make([]gpio.PinOut, len(rowNames))
	for i, name := range rowNames {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("hub75host: unknown row pin %q", name)
		}
		row[i] = p
	}
	return &BCM283x{engine: engine, oe: oe, lat: lat, row: row}, nil
}

// Install drives OE high (blanked) and LAT low at rest, then hands the
// clock frequency to the DMA engine. The color bus pin numbers in pins
// are not muxed here: on BCM283x the parallel color/clock bus is driven
// directly by the PWM/DMA peripheral's dedicated ALT function, not
// bit-banged GPIO, so only OE/LAT/row need individual pin objects.
func (b *BCM283x) Install(pins PinMap, freq physic.Frequency) error {
	if err := b.oe.Out(gpio.High); err != nil {
		return fmt.Errorf("hub75host: drive OE: %w", err)
	}
	if err := b.lat.Out(gpio.Low); err != nil {
		return fmt.Errorf("hub75host: drive LAT: %w", err)
	}
	for i, p := range b.row {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("hub75host: drive row pin %d: %w", i, err)
		}
	}
	if err := b.engine.ConfigureClock(freq); err != nil {
		return fmt.Errorf("hub75host: configure clock: %w", err)
	}
	return nil
}

func (b *BCM283x) Send(rings []dmaring.Ring, first dmaring.RingPos) error {
	if err := b.engine.Start(rings, first); err != nil {
		return fmt.Errorf("hub75host: start DMA: %w", err)
	}
	return nil
}

// Retarget delegates to the DMA engine so a hand-off reaches the real
// control-block memory the engine is chasing, not just the logical ring.
func (b *BCM283x) Retarget(pos, target dmaring.RingPos) error {
	if err := b.engine.Retarget(pos, target); err != nil {
		return fmt.Errorf("hub75host: retarget DMA: %w", err)
	}
	return nil
}

func (b *BCM283x) IsIdle() bool {
	return b.engine.Idle()
}

var _ Collaborator = (*BCM283x)(nil)
