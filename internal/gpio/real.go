//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads button lines from actual hardware using the Linux GPIO
// character device. All lines are held in a single request so one Read
// samples them together.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
	n     int
}

// NewRealReader requests cfg.Lines as inputs on cfg.Chip.
func NewRealReader(cfg Config) (*RealReader, error) {
	if len(cfg.Lines) == 0 {
		return nil, errors.New("gpio: no lines configured")
	}
	name := cfg.chip()

	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer("button-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, biasOption(cfg.Bias)}
	if cfg.ActiveLow {
		// The kernel inverts the value so Read reports 1 for pressed.
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	lines, err := chip.RequestLines(cfg.Lines, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request lines %v: %w", cfg.Lines, err)
	}

	return &RealReader{
		chip:  chip,
		lines: lines,
		n:     len(cfg.Lines),
	}, nil
}

func biasOption(b Bias) gpiocdev.LineReqOption {
	switch b {
	case BiasUp:
		return gpiocdev.WithPullUp
	case BiasDown:
		return gpiocdev.WithPullDown
	default:
		return gpiocdev.WithBiasDisabled
	}
}

// Read returns the logical level of every line.
func (r *RealReader) Read() ([]int, error) {
	values := make([]int, r.n)
	if err := r.lines.Values(values); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return values, nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults)
// before closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure lines: %w", err))
		}
		if err := r.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lines: %w", err))
		}
	}

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
