package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"ztimer/board"
	"ztimer/convert"
	"ztimer/core"
	"ztimer/host/hostclock"
	"ztimer/mock"
)

// Board is a built clock tree. Backends are kept by name so callers can
// drive mock clocks and inspect converters.
type Board struct {
	Name      string
	Registry  *board.Registry
	Hosts     map[string]*hostclock.Backend
	Mocks     map[string]*mock.Mock
	Converted map[string]*convert.Clock
}

// Build validates cfg and creates its clocks in order, registering each
// in reg
func Build(cfg *Config, reg *board.Registry, log logrus.FieldLogger) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Board{
		Name:      cfg.Name,
		Registry:  reg,
		Hosts:     make(map[string]*hostclock.Backend),
		Mocks:     make(map[string]*mock.Mock),
		Converted: make(map[string]*convert.Clock),
	}

	for _, cc := range cfg.Clocks {
		clock, detail, err := b.build(cc)
		if err != nil {
			return nil, fmt.Errorf("clock %s: %w", cc.Name, err)
		}

		info := board.Info{
			Name:      cc.Name,
			Frequency: cc.Frequency,
			Lower:     cc.Lower,
			Clock:     clock,
		}
		if err := reg.Register(info); err != nil {
			return nil, err
		}

		log.WithFields(logrus.Fields{
			"clock":     cc.Name,
			"source":    cc.Source,
			"frequency": cc.Frequency,
			"max":       clock.MaxValue(),
			"detail":    detail,
		}).Debug("Clock ready")
	}

	return b, nil
}

func (b *Board) build(cc ClockConfig) (*core.Clock, string, error) {
	coreCfg := core.Config{
		Name:             cc.Name,
		AdjustSet:        cc.AdjustSet,
		AdjustSleep:      cc.AdjustSleep,
		AdjustClockStart: cc.AdjustClockStart,
		OnDemand:         cc.OnDemand,
	}

	switch cc.Source {
	case SourceHost:
		h := hostclock.New(cc.Frequency, cc.Width, coreCfg)
		b.Hosts[cc.Name] = h
		return h.Clock(), fmt.Sprintf("%d-bit", cc.Width), nil

	case SourceMock:
		m := mock.New(cc.Width, coreCfg)
		b.Mocks[cc.Name] = m
		return m.Clock(), fmt.Sprintf("%d-bit", cc.Width), nil

	case SourceConvert:
		lower, ok := b.Registry.Info(cc.Lower)
		if !ok {
			return nil, "", fmt.Errorf("lower clock %s not built", cc.Lower)
		}
		strategy, err := convert.ParseStrategy(cc.Strategy)
		if err != nil {
			return nil, "", err
		}
		if strategy == convert.StrategyAuto {
			strategy = convert.Choose(cc.Frequency, lower.Frequency)
		}
		c, err := convert.Build(lower.Clock, strategy, cc.Frequency, lower.Frequency, coreCfg)
		if err != nil {
			return nil, "", err
		}
		b.Converted[cc.Name] = c
		return c.Clock(), string(strategy) + " from " + cc.Lower, nil
	}

	return nil, "", fmt.Errorf("unknown source %q", cc.Source)
}
