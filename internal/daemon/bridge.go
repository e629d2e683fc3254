// Package daemon wires the leader service and validator into a single
// object the host daemon owns for the lifetime of the migration
// window. It is the Go counterpart of the original daemon's
// t_temp_consensus wiring object.
package daemon

import (
	"context"

	cometlog "github.com/cometbft/cometbft/libs/log"

	"github.com/xcash-project/xcash-temp-consensus/internal/chaincore"
	"github.com/xcash-project/xcash-temp-consensus/internal/config"
	"github.com/xcash-project/xcash-temp-consensus/internal/leaderservice"
	"github.com/xcash-project/xcash-temp-consensus/internal/validator"
)

// Bridge owns the leader service and/or validator for one daemon
// process, built once at startup from CLI-derived configuration and
// held for the process's lifetime.
type Bridge struct {
	enabled  bool
	isLeader bool

	leader    *leaderservice.Service
	validator *validator.Validator
}

// New builds a Bridge. When cfg.Enabled is false, Run and Stop are
// no-ops and IsEnabled reports false: this mirrors t_temp_consensus's
// "Phase 2: service runs but doesn't generate blocks yet" stub mode
// for a disabled subsystem, generalized to also cover "on but not
// leader" (validator only).
func New(cfg config.Config, core chaincore.ChainCore, logger cometlog.Logger) (*Bridge, error) {
	b := &Bridge{enabled: cfg.Enabled, isLeader: cfg.IsLeader}
	if !cfg.Enabled {
		return b, nil
	}

	slotDuration := config.SlotDurationFor(cfg.Dev)

	if cfg.IsLeader {
		leaderCfg, err := config.BuildLeaderConfig(cfg, slotDuration)
		if err != nil {
			return nil, err
		}
		b.leader = leaderservice.New(core, leaderCfg, logger)
	}

	validatorCfg := config.BuildValidatorConfig(cfg)
	b.validator = validator.New(validatorCfg, logger)

	return b, nil
}

// IsEnabled reports whether the temp-consensus subsystem is active at
// all for this process.
func (b *Bridge) IsEnabled() bool { return b.enabled }

// IsLeader reports whether this process is configured to produce
// blocks, as opposed to only validating them.
func (b *Bridge) IsLeader() bool { return b.isLeader }

// Validator returns the Bridge's Validator, or nil if the subsystem is
// disabled.
func (b *Bridge) Validator() *validator.Validator { return b.validator }

// Run starts the leader service's slot loop, if this process is
// configured as leader. It is a no-op (returning nil) when disabled or
// running in validator-only mode.
func (b *Bridge) Run(_ context.Context) error {
	if b.leader == nil {
		return nil
	}
	return b.leader.Start()
}

// Stop halts the leader service's slot loop, if running. It is a
// no-op otherwise.
func (b *Bridge) Stop() {
	if b.leader == nil {
		return
	}
	b.leader.Stop()
}
