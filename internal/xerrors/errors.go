// Package xerrors defines the typed error families surfaced by the
// temporary leader consensus subsystem. Errors are grouped by where
// they are raised (startup, slot loop, validator) so callers can
// react to a whole category without string matching.
package xerrors

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by the leader service's Start when
// called while a slot loop is already active.
var ErrAlreadyRunning = errors.New("temp consensus: leader service is already running")

// ConfigError signals a fatal misconfiguration discovered at startup:
// a missing flag, a malformed secret key, a pubkey mismatch, or an
// unauthorized delegate address. The daemon must refuse to run.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("temp consensus config error: %s", e.Reason)
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// SlotError is the family of errors that fail a single slot without
// tearing down the leader service's loop.
type SlotError struct {
	Kind   SlotErrorKind
	Reason string
}

// SlotErrorKind enumerates the non-fatal ways a slot can fail.
type SlotErrorKind int

const (
	// TemplateUnavailable means the chain core could not produce a
	// block template for the requested slot.
	TemplateUnavailable SlotErrorKind = iota
	// SizeTooLarge means the pre-flight size check rejected the block.
	SizeTooLarge
	// CoreRejected means the chain core refused the finished block.
	CoreRejected
	// SigningFailure means the Ed25519 signing step failed.
	SigningFailure
	// CodecRoundTripFailure means the codec did not round-trip the
	// freshly inserted LeaderInfo entry.
	CodecRoundTripFailure
)

func (k SlotErrorKind) String() string {
	switch k {
	case TemplateUnavailable:
		return "template_unavailable"
	case SizeTooLarge:
		return "size_too_large"
	case CoreRejected:
		return "core_rejected"
	case SigningFailure:
		return "signing_failure"
	case CodecRoundTripFailure:
		return "codec_round_trip_failure"
	default:
		return "unknown"
	}
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot failed (%s): %s", e.Kind, e.Reason)
}

// NewSlotError builds a SlotError of the given kind.
func NewSlotError(kind SlotErrorKind, format string, args ...interface{}) *SlotError {
	return &SlotError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// RejectReason enumerates why the validator refused a block. It never
// causes a crash; the validator returns false and the caller consults
// this for logging.
type RejectReason int

const (
	// RejectNone is the zero value: an ordinary, fully-verified
	// acceptance with no reason attached.
	RejectNone RejectReason = iota
	// RejectDisabled means the validator hook is off, or the block is
	// the genesis block.
	RejectDisabled
	// RejectMissingMetadata means no LeaderInfo entry was found.
	RejectMissingMetadata
	// RejectUnauthorizedLeader means leader_id is not on the allow-list.
	RejectUnauthorizedLeader
	// RejectLeaderMismatch means leader_id didn't match the pinned
	// expected leader.
	RejectLeaderMismatch
	// RejectBadSignature means Ed25519 verification failed.
	RejectBadSignature
	// RejectMisprovisioned means the allow-list pubkey slot is empty.
	RejectMisprovisioned
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectDisabled:
		return "validator_disabled"
	case RejectMissingMetadata:
		return "missing_metadata"
	case RejectUnauthorizedLeader:
		return "unauthorized_leader"
	case RejectLeaderMismatch:
		return "leader_mismatch"
	case RejectBadSignature:
		return "bad_signature"
	case RejectMisprovisioned:
		return "misprovisioned_pubkey"
	default:
		return "unknown"
	}
}
