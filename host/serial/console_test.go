//go:build !wasm

package serial

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := Open(DefaultConfig("")); err == nil {
		t.Error("Expected error for empty device")
	}

	missing := filepath.Join(t.TempDir(), "ttyMISSING")
	_, err := Open(DefaultConfig(missing))
	if err == nil {
		t.Fatal("Expected error for missing device")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("Error does not name the device: %v", err)
	}
}

func TestClosedConsoleRejectsWrites(t *testing.T) {
	c := &Console{device: "/dev/ttyTEST"}
	if err := c.Close(); err != nil {
		t.Fatalf("Close of closed console: %v", err)
	}

	n, err := c.Write([]byte("late\r\n"))
	if n != 0 || !errors.Is(err, os.ErrClosed) {
		t.Errorf("Write after Close = %d, %v; want os.ErrClosed", n, err)
	}
	if err := c.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if c.Device() != "/dev/ttyTEST" {
		t.Errorf("Device() = %q", c.Device())
	}
}
