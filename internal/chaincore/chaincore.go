// Package chaincore declares the capability interface the leader
// service and validator use to talk to the external chain core. Per
// the design notes, the leader service holds a non-owning reference
// to this interface and calls it synchronously; the core never calls
// back except through the validator hook, which is injected the other
// direction entirely (see internal/validator).
package chaincore

import (
	"context"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
)

// ChainCore is the external chain core's surface as seen by this
// subsystem: get a block template, check a candidate's size, and
// submit a finished block. Real implementations wrap the daemon's
// in-process block-template builder; this package only declares the
// contract.
type ChainCore interface {
	// GetBlockTemplate requests a template for payoutAddress, passing
	// extraNonce as the placeholder blob that must be reserved in the
	// coinbase extra during weight/reward sizing.
	GetBlockTemplate(ctx context.Context, payoutAddress string, extraNonce []byte) (Template, error)

	// CheckIncomingBlockSize performs the pre-flight size check
	// against a fully serialized candidate block.
	CheckIncomingBlockSize(ctx context.Context, serialized []byte) (bool, error)

	// HandleBlockFound submits a finished, signed block. The boolean
	// return is the core's accept/reject decision.
	HandleBlockFound(ctx context.Context, bl blockmodel.Block) (bool, error)
}

// Template is the response to a GetBlockTemplate call.
type Template struct {
	Block          blockmodel.Block
	Difficulty     uint64
	Height         uint64
	ExpectedReward uint64
}
