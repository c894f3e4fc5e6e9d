// Package serial carries clock debug output to a serial console, so a
// host run can be watched on the same adapter a board would print to.
package serial

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Port is the write side of a console
type Port interface {
	io.WriteCloser

	// Flush pushes buffered output to the device
	Flush() error
}

// Config holds serial console settings
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the console
	Baud int
}

// DefaultConfig returns the usual debug console settings
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   115200,
	}
}

// DebugWriter returns a function suitable for core.SetDebugWriter that
// writes each message as one CRLF terminated line to p. Write errors are
// logged once and then suppressed until a write succeeds again.
func DebugWriter(p Port, log logrus.FieldLogger) func(string) {
	var (
		mu     sync.Mutex
		failed bool
	)
	return func(msg string) {
		mu.Lock()
		defer mu.Unlock()

		_, err := io.WriteString(p, msg+"\r\n")
		if err == nil {
			err = p.Flush()
		}
		switch {
		case err != nil && !failed:
			log.WithError(err).Warn("Debug console write failed")
			failed = true
		case err == nil:
			failed = false
		}
	}
}
