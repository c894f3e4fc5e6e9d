//go:build !wasm

package serial

import (
	"fmt"
	"os"
	"sync"

	"github.com/tarm/serial"
)

// Console is a write-only debug console on a serial device
type Console struct {
	mu     sync.Mutex
	port   *serial.Port
	device string
}

var _ Port = (*Console)(nil)

// Open opens the console device described by cfg
func Open(cfg *Config) (*Console, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, fmt.Errorf("console device cannot be empty")
	}

	port, err := serial.OpenPort(&serial.Config{Name: cfg.Device, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open console %s: %w", cfg.Device, err)
	}
	return &Console{port: port, device: cfg.Device}, nil
}

// Device returns the path the console was opened on
func (c *Console) Device() string {
	return c.device
}

// Write sends b to the device. It fails with os.ErrClosed after Close.
func (c *Console) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return 0, fmt.Errorf("console %s: %w", c.device, os.ErrClosed)
	}
	return c.port.Write(b)
}

// Flush is a no-op. tarm/serial's Flush discards unsent output, and Write
// already blocks until the driver has taken the data.
func (c *Console) Flush() error {
	return nil
}

// Close releases the device. Closing twice is harmless.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}
