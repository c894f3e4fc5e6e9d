package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"ztimer/board"
	"ztimer/convert"
	"ztimer/core"
)

const sample = `
name: bench
clocks:
  - name: usec
    source: mock
    frequency: 1000000
  - name: msec
    lower: usec
    frequency: 1000
    adjust_sleep: 1
  - name: fast
    lower: usec
    frequency: 4000000
    strategy: shift
  - name: lptim
    source: mock
    frequency: 32768
    width: 16
    on_demand: true
    adjust_clock_start: 3
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	want := &Config{
		Name: "bench",
		Clocks: []ClockConfig{
			{Name: "usec", Source: SourceMock, Frequency: 1000000, Width: 32},
			{Name: "msec", Source: SourceConvert, Frequency: 1000, Lower: "usec", Strategy: "auto", AdjustSleep: 1},
			{Name: "fast", Source: SourceConvert, Frequency: 4000000, Lower: "usec", Strategy: "shift"},
			{Name: "lptim", Source: SourceMock, Frequency: 32768, Width: 16, OnDemand: true, AdjustClockStart: 3},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	if _, err := LoadConfig([]byte("clocks: [")); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Clocks) != 4 {
		t.Errorf("Expected 4 clocks, got %d", len(cfg.Clocks))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Clocks: []ClockConfig{
			{Name: "usec", Source: SourceHost, Frequency: 1000000, Width: 40},
			{Name: "usec", Source: SourceHost, Frequency: 1000000, Width: 32},
			{Name: "msec", Source: SourceConvert, Frequency: 1000, Lower: "later", Strategy: "auto"},
			{Name: "later", Source: SourceHost, Width: 32},
			{Name: "odd", Source: SourceConvert, Frequency: 3, Lower: "usec", Strategy: "exact"},
			{Name: "gpio", Source: "pio", Frequency: 1},
		},
	}

	err := cfg.Validate()
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Expected multierror, got %v", err)
	}
	// width, duplicate, lower order, frequency, strategy, source
	if len(merr.Errors) != 6 {
		t.Errorf("Expected 6 problems, got %d: %v", len(merr.Errors), err)
	}
}

func TestValidateEmpty(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Error("Expected error for config without clocks")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestBuildMockTree(t *testing.T) {
	cfg, err := LoadConfig([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	reg := board.NewRegistry()
	b, err := Build(cfg, reg, log)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"usec", "msec", "fast", "lptim"}, reg.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if n := len(hook.AllEntries()); n != 4 {
		t.Errorf("Expected a log entry per clock, got %d", n)
	}
	if _, ok := b.Converted["msec"].Converter().(*convert.MulDiv); !ok {
		t.Errorf("msec uses %T, want muldiv", b.Converted["msec"].Converter())
	}
	if _, ok := b.Converted["fast"].Converter().(*convert.Shift); !ok {
		t.Errorf("fast uses %T, want shift", b.Converted["fast"].Converter())
	}
	if got := reg.MustClock("lptim").MaxValue(); got != 0xffff {
		t.Errorf("lptim MaxValue() = %#x, want 0xffff", got)
	}

	fired := false
	reg.MustClock("msec").Set(&core.Entry{Callback: func(any) { fired = true }}, 5)
	b.Mocks["usec"].Advance(4999)
	if fired {
		t.Fatal("msec timer fired early")
	}
	b.Mocks["usec"].Advance(1)
	if !fired {
		t.Error("msec timer did not fire after 5000 usec")
	}
}

func TestBuildRejectsInvalid(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := &Config{Clocks: []ClockConfig{{Name: "x", Source: SourceMock, Width: 8}}}
	if _, err := Build(cfg, board.NewRegistry(), log); err == nil {
		t.Error("Expected validation error")
	}
}

func TestBuildDefaultHostTree(t *testing.T) {
	log, _ := test.NewNullLogger()
	reg := board.NewRegistry()
	b, err := Build(DefaultConfig(), reg, log)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Hosts) != 2 || len(b.Converted) != 2 {
		t.Errorf("Unexpected tree: %d host, %d converted", len(b.Hosts), len(b.Converted))
	}
	if b.Hosts["lptim"].Running() {
		t.Error("On-demand lptim should not run without users")
	}
	if info, ok := reg.Info(board.Sec); !ok || info.Lower != board.Msec {
		t.Errorf("sec info = %+v, %v", info, ok)
	}
}
