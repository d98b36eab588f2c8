//go:build !linux

package gpio

import (
	"fmt"
	"runtime"
)

// RealReader is not available on non-Linux platforms; the GPIO character
// device only exists there.
type RealReader struct {
	cfg Config
}

// NewRealReader returns an error naming the lines that could not be requested.
func NewRealReader(cfg Config) (*RealReader, error) {
	return nil, fmt.Errorf("gpio: %s lines %v: character device not supported on %s", cfg.chip(), cfg.Lines, runtime.GOOS)
}

func (r *RealReader) Read() ([]int, error) {
	return nil, fmt.Errorf("gpio: read %v: not supported on %s", r.cfg.Lines, runtime.GOOS)
}

func (r *RealReader) Close() error {
	return nil
}
