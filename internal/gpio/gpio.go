// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the levels of a set of button lines.
type Reader interface {
	// Read returns one logical value per line, in the order the lines were
	// requested: 1 = pressed, 0 = released. Active-low inversion has
	// already been applied.
	Read() ([]int, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO chip on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Bias selects the line's internal pull resistor.
type Bias string

const (
	BiasNone Bias = "none"
	BiasUp   Bias = "up"
	BiasDown Bias = "down"
)

// Config describes the lines to request.
type Config struct {
	Chip  string
	Lines []int // line offsets (BCM numbering on a Pi)
	// ActiveLow marks a line that reads low when the button is pressed,
	// the usual wiring with a pull-up and a switch to ground.
	ActiveLow bool
	Bias      Bias
}

// chip returns the configured chip name, falling back to DefaultChip.
func (c Config) chip() string {
	if c.Chip == "" {
		return DefaultChip
	}
	return c.Chip
}
