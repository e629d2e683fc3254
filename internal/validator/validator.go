// Package validator implements the accept/reject decision procedure
// described in spec.md §4.3: given an incoming block, decide whether
// its embedded LeaderInfo entry proves it came from an authorized
// leader, without ever trusting anything in the block itself as the
// source of the public key it is checked against.
package validator

import (
	"crypto/ed25519"
	"fmt"

	cometlog "github.com/cometbft/cometbft/libs/log"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/config"
	"github.com/xcash-project/xcash-temp-consensus/internal/keys"
	"github.com/xcash-project/xcash-temp-consensus/internal/leaderblock"
	"github.com/xcash-project/xcash-temp-consensus/internal/metrics"
	"github.com/xcash-project/xcash-temp-consensus/internal/xerrors"
)

// Validator holds the immutable configuration the accept/reject
// decision consults: whether the hook is even active, an optional
// pinned leader for the current migration window, and the compile-time
// seed allow-list.
type Validator struct {
	cfg    config.ValidatorConfig
	logger cometlog.Logger
}

// New constructs a Validator from cfg, logging through
// logger.With("module", "validator").
func New(cfg config.ValidatorConfig, logger cometlog.Logger) *Validator {
	return &Validator{cfg: cfg, logger: logger.With("module", "validator")}
}

// Validate decides whether bl, arriving at height, came from an
// authorized leader. accepted reports the decision; reason explains
// it either way: when accepted is false it is the concrete rejection
// cause callers should log and count by; when accepted is true it
// distinguishes an enforcement bypass (RejectDisabled for the hook
// being off or a genesis block, RejectMisprovisioned for an allow-list
// slot whose pubkey has not been provisioned yet) from an ordinary,
// fully-verified acceptance, which carries no reason.
func (v *Validator) Validate(bl blockmodel.Block, height uint64) (accepted bool, reason xerrors.RejectReason) {
	if !v.cfg.Enabled {
		v.logger.Debug("validator disabled, accepting block unconditionally", "height", height)
		return true, xerrors.RejectDisabled
	}

	if height == 0 {
		v.logger.Debug("genesis block, bypassing leader validation", "height", height)
		return true, xerrors.RejectDisabled
	}

	info, signingHash, err := leaderblock.ExtractAndReconstruct(bl)
	if err != nil {
		v.reject(height, xerrors.RejectMissingMetadata, "no LeaderInfo entry found: %v", err)
		return false, xerrors.RejectMissingMetadata
	}

	slotIdx := config.FindSeedSlotIn(v.cfg.AllowList, info.LeaderID)
	if slotIdx < 0 {
		v.reject(height, xerrors.RejectUnauthorizedLeader, "leader_id %q is not on the allow-list", info.LeaderID)
		return false, xerrors.RejectUnauthorizedLeader
	}

	pub, provisioned := config.LookupPubkeyIn(v.cfg.AllowList, slotIdx)
	if !provisioned {
		v.logger.Info("allow-list slot has no provisioned pubkey, skipping signature check (dev mode)",
			"height", height, "leader_id", info.LeaderID, "slot", slotIdx)
		metrics.BlocksAccepted.Inc()
		return true, xerrors.RejectMisprovisioned
	}

	if v.cfg.ExpectedLeaderID != "" && v.cfg.ExpectedLeaderID != info.LeaderID {
		v.reject(height, xerrors.RejectLeaderMismatch,
			"leader_id %q does not match pinned leader %q", info.LeaderID, v.cfg.ExpectedLeaderID)
		return false, xerrors.RejectLeaderMismatch
	}

	if !v.verify(pub, signingHash, info.Signature) {
		v.reject(height, xerrors.RejectBadSignature, "ed25519 verification failed for leader_id %q", info.LeaderID)
		return false, xerrors.RejectBadSignature
	}

	v.logger.Debug("block accepted", "height", height, "leader_id", info.LeaderID)
	metrics.BlocksAccepted.Inc()
	return true, xerrors.RejectNone
}

func (v *Validator) verify(pub ed25519.PublicKey, signingHash [32]byte, sig [64]byte) bool {
	return keys.Verify(pub, signingHash[:], sig)
}

func (v *Validator) reject(height uint64, reason xerrors.RejectReason, format string, args ...interface{}) {
	v.logger.Info("block rejected", "height", height, "reason", reason.String(), "detail", fmt.Sprintf(format, args...))
	metrics.BlocksRejected.WithLabelValues(reason.String()).Inc()
}
