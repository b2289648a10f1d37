// ledmatrixctl drives a HUB75 panel with a generated test pattern. It is
// a smoke-test and demo harness, not a production display server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/image/colornames"

	"github.com/Winkelkatze/ledmatrix/decode"
	"github.com/Winkelkatze/ledmatrix/geometry"
	"github.com/Winkelkatze/ledmatrix/hub75"
	"github.com/Winkelkatze/ledmatrix/hub75host"
	"github.com/Winkelkatze/ledmatrix/hub75mem"
	"github.com/Winkelkatze/ledmatrix/hub75metrics"
)

func parsePins(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	pins := make([]int, len(parts))
	for i, p := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &pins[i]); err != nil {
			return nil, fmt.Errorf("invalid pin %q: %w", p, err)
		}
	}
	return pins, nil
}

func monoColorBytes(name string) ([3]byte, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return [3]byte{}, fmt.Errorf("unknown color name %q", name)
	}
	r, g, b, _ := c.RGBA()
	return [3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)}, nil
}

func checkerboardRGB565(width, height int) []byte {
	fb := make([]byte, width*height*2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v uint16
			if (x/4+y/4)%2 == 0 {
				v = 0xFFFF
			}
			idx := (y*width + x) * 2
			fb[idx] = byte(v)
			fb[idx+1] = byte(v >> 8)
		}
	}
	return fb
}

func mainImpl() error {
	colorPinsFlag := flag.String("color-pins", "0,1,2,3,4,5", "comma-separated R1,G1,B1,R2,G2,B2 pin numbers")
	rowPinsFlag := flag.String("row-pins", "6,7,8,9", "comma-separated row-address pin numbers, LSB first")
	oePin := flag.Int("oe-pin", 10, "output-enable pin")
	latPin := flag.Int("lat-pin", 11, "latch pin")
	clkPin := flag.Int("clk-pin", 12, "clock pin")
	width := flag.Int("width", 64, "panel width")
	depth := flag.Int("depth", 4, "BCM color depth")
	invert := flag.Bool("invert", false, "invert color and control signals")
	doubleBuffer := flag.Bool("double-buffer", true, "use double buffering")
	monoColorName := flag.String("mono-color", "white", "tint used for GS8/MONO_HLSB modes")
	dryRun := flag.Bool("dry-run", true, "use an in-memory mock instead of real hardware")
	frames := flag.Int("frames", 1, "number of test frames to show before exiting")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logLevel := zerolog.InfoLevel
	if *verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel).With().Timestamp().Logger()

	colorPins, err := parsePins(*colorPinsFlag)
	if err != nil {
		return err
	}
	rowPins, err := parsePins(*rowPinsFlag)
	if err != nil {
		return err
	}
	mono, err := monoColorBytes(*monoColorName)
	if err != nil {
		return err
	}

	cfg := geometry.Config{
		ColorPins:    colorPins,
		RowPins:      rowPins,
		OEPin:        *oePin,
		LatPin:       *latPin,
		ClkPin:       *clkPin,
		Width:        *width,
		ColorDepth:   *depth,
		Invert:       *invert,
		DoubleBuffer: *doubleBuffer,
		ColumnSwap:   true,
	}

	var collab hub75host.Collaborator
	if *dryRun {
		collab = hub75host.NewMock()
		logger.Info().Msg("dry run: using in-memory mock collaborator")
	} else {
		return errors.New("real hardware collaborator requires board-specific Registers wiring; rerun with -dry-run")
	}

	recorder := hub75metrics.New(prometheus.DefaultRegisterer)

	dev, err := hub75.Open(cfg, collab, hub75mem.HeapAllocator{},
		hub75.WithLogger(logger),
		hub75.WithMetrics(recorder),
	)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer dev.Close()

	g, err := geometry.Configure(cfg)
	if err != nil {
		return err
	}
	fb := checkerboardRGB565(g.Width, g.Height)
	for i := 0; i < *frames; i++ {
		if err := dev.Show(fb, decode.RGB565, &mono); err != nil {
			return fmt.Errorf("show: %w", err)
		}
		logger.Debug().Int("frame", i).Msg("shown")
		time.Sleep(16 * time.Millisecond)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintln(os.Stderr, "ledmatrixctl:", err)
		os.Exit(1)
	}
}
