package chaincore

import (
	"context"
	"errors"
	"sync"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
)

var _ ChainCore = (*Fake)(nil)

// Fake is an in-memory ChainCore used by tests. It hands back a fresh
// template on every call (with the requested extra_nonce bytes copied
// as-is into the coinbase extra, without an extra-nonce tag or length
// prefix, so an all-zero placeholder reads as padding entries), tracks
// submitted blocks, and lets tests inject failures for template,
// size-check, and submission calls.
type Fake struct {
	mu sync.Mutex

	NextHeight     uint64
	NextDifficulty uint64
	NextReward     uint64
	MaxBlockBytes  int

	TemplateErr error
	SizeErr     error
	SubmitErr   error
	RejectSize  bool
	RejectBlock bool

	Submitted []blockmodel.Block
}

// NewFake returns a Fake seeded with reasonable defaults.
func NewFake() *Fake {
	return &Fake{
		NextHeight:     1,
		NextDifficulty: 1,
		NextReward:     1000,
		MaxBlockBytes:  1 << 20,
	}
}

func (f *Fake) GetBlockTemplate(_ context.Context, payoutAddress string, extraNonce []byte) (Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TemplateErr != nil {
		return Template{}, f.TemplateErr
	}

	var prev [blockmodel.PrevIDSize]byte
	bl := blockmodel.Block{
		MajorVersion: 1,
		MinorVersion: 0,
		Timestamp:    0,
		PrevID:       prev,
		Nonce:        0,
		MinerTxExtra: append([]byte(nil), extraNonce...),
		OpaqueBody:   []byte("coinbase-to:" + payoutAddress),
	}
	return Template{
		Block:          bl,
		Difficulty:     f.NextDifficulty,
		Height:         f.NextHeight,
		ExpectedReward: f.NextReward,
	}, nil
}

func (f *Fake) CheckIncomingBlockSize(_ context.Context, serialized []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SizeErr != nil {
		return false, f.SizeErr
	}
	if f.RejectSize {
		return false, nil
	}
	if f.MaxBlockBytes > 0 && len(serialized) > f.MaxBlockBytes {
		return false, nil
	}
	return true, nil
}

func (f *Fake) HandleBlockFound(_ context.Context, bl blockmodel.Block) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return false, f.SubmitErr
	}
	if f.RejectBlock {
		return false, nil
	}
	f.Submitted = append(f.Submitted, bl.Clone())
	f.NextHeight++
	return true, nil
}

// ErrTemplateUnavailable is a canned error tests can assign to
// TemplateErr.
var ErrTemplateUnavailable = errors.New("chaincore: template unavailable")
