// Package leaderservice implements the slot-driven leader block
// generation loop: wake at each slot boundary, request a template,
// stamp it with slot metadata, sign it, and submit it. This is the
// algorithmic heart of the temporary consensus subsystem.
package leaderservice

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	cometlog "github.com/cometbft/cometbft/libs/log"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/chaincore"
	"github.com/xcash-project/xcash-temp-consensus/internal/config"
	"github.com/xcash-project/xcash-temp-consensus/internal/keys"
	"github.com/xcash-project/xcash-temp-consensus/internal/leaderblock"
	"github.com/xcash-project/xcash-temp-consensus/internal/metrics"
	"github.com/xcash-project/xcash-temp-consensus/internal/slot"
	"github.com/xcash-project/xcash-temp-consensus/internal/xerrors"
)

// Clock abstracts wall-clock time and sleeping so the slot loop can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// realClock is the production Clock, backed by the standard library.
type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// tickInterval is the sleep granularity between stop-flag checks,
// bounding cancellation latency to one tick.
const tickInterval = time.Second

// backoffOnUnexpectedError is the pause after an uncaught exception
// surfaces from a single loop iteration.
const backoffOnUnexpectedError = 5 * time.Second

// Service runs the slot loop for one leader identity against one
// ChainCore. The zero value is not usable; construct with New.
type Service struct {
	core   chaincore.ChainCore
	cfg    config.LeaderConfig
	logger cometlog.Logger
	clock  Clock

	running           atomic.Bool
	stopRequested     atomic.Bool
	lastGeneratedSlot atomic.Uint64

	wg sync.WaitGroup
}

// Option configures optional Service fields.
type Option func(*Service)

// WithClock overrides the Service's Clock, used by tests.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New constructs a Service for cfg against core, logging through
// logger.With("module", "leader").
func New(core chaincore.ChainCore, cfg config.LeaderConfig, logger cometlog.Logger, opts ...Option) *Service {
	s := &Service{
		core:   core,
		cfg:    cfg,
		logger: logger.With("module", "leader"),
		clock:  realClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRunning reports whether the slot loop is currently active.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// NextSlotTimestamp rounds now up to the next slot boundary.
func (s *Service) NextSlotTimestamp(now uint64) slot.Timestamp {
	return slot.Next(now, s.cfg.SlotDuration)
}

// IsSlotBoundary reports whether ts sits on a slot boundary.
func (s *Service) IsSlotBoundary(ts uint64) bool {
	return slot.IsBoundary(ts, s.cfg.SlotDuration)
}

// Start launches the slot loop in a background goroutine. It fails
// with xerrors.ErrAlreadyRunning if the service is already running.
func (s *Service) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return xerrors.ErrAlreadyRunning
	}
	s.stopRequested.Store(false)
	s.logger.Info("starting leader service", "leader_id", s.cfg.LeaderID, "slot_duration", s.cfg.SlotDuration)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return nil
}

// Stop raises the stop flag and blocks until the worker goroutine has
// exited. Stop is idempotent: calling it when the service is not
// running is a no-op.
func (s *Service) Stop() {
	if !s.running.Load() {
		return
	}
	s.stopRequested.Store(true)
	s.wg.Wait()
	s.running.Store(false)
	s.logger.Info("leader service stopped")
}

func (s *Service) loop() {
	s.logger.Info("leader service loop started")
	for !s.stopRequested.Load() {
		s.runOneIteration()
	}
	s.logger.Info("leader service loop exiting")
}

// runOneIteration implements one pass of the slot loop's state
// machine, matching spec.md §4.1 step by step. Any panic surfacing
// from generateBlock is treated as an unexpected exception: it is
// demoted to a failed slot with a backoff, never allowed to tear the
// loop down.
func (s *Service) runOneIteration() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unexpected panic in leader service loop", "recovered", r)
			s.sleepWithStopCheck(backoffOnUnexpectedError)
		}
	}()

	now := uint64(s.clock.Now().Unix())
	next := s.NextSlotTimestamp(now)

	if uint64(next) <= s.lastGeneratedSlot.Load() {
		s.clock.Sleep(tickInterval)
		return
	}

	if !s.waitUntil(uint64(next)) {
		return // stop requested while waiting
	}

	s.logger.Info("generating block for slot", "slot", uint64(next))
	metrics.SlotsAttempted.Inc()

	if err := s.generateBlock(next); err != nil {
		s.logger.Error("failed to generate block for slot", "slot", uint64(next), "err", err)
		metrics.SlotsFailed.Inc()
	} else {
		s.lastGeneratedSlot.Store(uint64(next))
		metrics.SlotsSucceeded.Inc()
		metrics.LastGeneratedSlot.Set(float64(next))
		s.logger.Info("block generated successfully for slot", "slot", uint64(next))
	}

	s.clock.Sleep(tickInterval)
}

// waitUntil sleeps in tickInterval increments until now >= target,
// checking the stop flag between every tick. It returns false if the
// stop flag was raised before the target was reached.
func (s *Service) waitUntil(target uint64) bool {
	for uint64(s.clock.Now().Unix()) < target {
		if s.stopRequested.Load() {
			return false
		}
		s.clock.Sleep(tickInterval)
	}
	return !s.stopRequested.Load()
}

func (s *Service) sleepWithStopCheck(d time.Duration) {
	elapsed := time.Duration(0)
	for elapsed < d {
		if s.stopRequested.Load() {
			return
		}
		s.clock.Sleep(tickInterval)
		elapsed += tickInterval
	}
}

// generateBlock is the algorithmic heart described in spec.md §4.1:
// reserve space, stamp timestamp/nonce, strip the placeholder,
// canonicalize, sign, embed LeaderInfo, canonicalize again, verify the
// codec round trip, pre-flight size check, and submit.
func (s *Service) generateBlock(slotTS slot.Timestamp) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tmpl, err := s.core.GetBlockTemplate(ctx, s.cfg.PayoutAddress, leaderblock.ReservePlaceholder())
	if err != nil {
		return xerrors.NewSlotError(xerrors.TemplateUnavailable, "get_block_template: %v", err)
	}

	bl := tmpl.Block.Clone()
	bl.Timestamp = uint64(slotTS)
	if !s.cfg.EnablePoW {
		bl.Nonce = slot.DeterministicNonce(s.cfg.LeaderID, slotTS)
	}
	bl.MinerTxExtra = leaderblock.StripPlaceholders(bl.MinerTxExtra)

	// Canonicalize before signing so the signature covers the exact
	// bytes the validator will reconstruct on the other end.
	canon, err := blockmodel.Canonicalize(bl)
	if err != nil {
		return xerrors.NewSlotError(xerrors.CodecRoundTripFailure, "canonicalizing pre-signature image: %v", err)
	}

	signingHash := blockmodel.Hash(canon)
	sig := keys.Sign(s.cfg.KeyPair, signingHash[:])

	signed := leaderblock.InsertLeaderInfo(canon, s.cfg.LeaderID, sig)

	finalBlock, err := blockmodel.Canonicalize(signed)
	if err != nil {
		return xerrors.NewSlotError(xerrors.CodecRoundTripFailure, "canonicalizing final block: %v", err)
	}

	if _, _, verr := leaderblock.ExtractAndReconstruct(finalBlock); verr != nil {
		return xerrors.NewSlotError(xerrors.CodecRoundTripFailure, "codec round trip on reparsed block failed: %v", verr)
	}

	serialized := finalBlock.Serialize()
	ok, err := s.core.CheckIncomingBlockSize(ctx, serialized)
	if err != nil {
		return xerrors.NewSlotError(xerrors.SizeTooLarge, "check_incoming_block_size: %v", err)
	}
	if !ok {
		return xerrors.NewSlotError(xerrors.SizeTooLarge, "block exceeds size limit (%d bytes)", len(serialized))
	}

	accepted, err := s.core.HandleBlockFound(ctx, finalBlock)
	if err != nil {
		return xerrors.NewSlotError(xerrors.CoreRejected, "handle_block_found: %v", err)
	}
	if !accepted {
		return xerrors.NewSlotError(xerrors.CoreRejected, "chain core rejected the block")
	}

	return nil
}
