//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/stopwatch/internal/logic"
)

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard(pins Pins, post PostFunc) (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (b *RealBoard) Read() (logic.Buttons, error) {
	return logic.Buttons{}, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (b *RealBoard) Write(out logic.Outputs) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealBoard) Close() error {
	return nil
}
