package validator_test

import (
	"crypto/ed25519"
	"testing"

	cometlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"

	"github.com/xcash-project/xcash-temp-consensus/internal/blockmodel"
	"github.com/xcash-project/xcash-temp-consensus/internal/config"
	"github.com/xcash-project/xcash-temp-consensus/internal/leaderblock"
	"github.com/xcash-project/xcash-temp-consensus/internal/validator"
	"github.com/xcash-project/xcash-temp-consensus/internal/xerrors"
)

func genKey(t *testing.T, seedByte byte) (ed25519.PrivateKey, ed25519.PublicKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = seedByte
	priv := ed25519.NewKeyFromSeed(seed)
	return priv, priv.Public().(ed25519.PublicKey)
}

// signedBlock builds a block whose LeaderInfo entry was produced the
// same way the leader service produces one: sign the pre-signature
// image, then embed the (leaderID, signature) pair.
func signedBlock(t *testing.T, leaderID string, priv ed25519.PrivateKey) blockmodel.Block {
	t.Helper()
	var prev [blockmodel.PrevIDSize]byte
	bl := blockmodel.Block{
		MajorVersion: 1,
		Timestamp:    12345,
		PrevID:       prev,
		OpaqueBody:   []byte("body"),
	}

	signingHash, err := leaderblock.SigningHash(bl)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, signingHash[:])
	var sigArr [64]byte
	copy(sigArr[:], sig)

	signed := leaderblock.InsertLeaderInfo(bl, leaderID, sigArr)
	canon, err := blockmodel.Canonicalize(signed)
	require.NoError(t, err)
	return canon
}

func TestValidateBypassesGenesisBlock(t *testing.T) {
	cfg := config.ValidatorConfig{Enabled: true}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := blockmodel.Block{MajorVersion: 1}
	accepted, reason := v.Validate(bl, 0)
	require.True(t, accepted)
	require.Equal(t, xerrors.RejectDisabled, reason)
}

func TestValidateBypassesWhenDisabled(t *testing.T) {
	cfg := config.ValidatorConfig{Enabled: false}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := blockmodel.Block{MajorVersion: 1}
	accepted, reason := v.Validate(bl, 42)
	require.True(t, accepted)
	require.Equal(t, xerrors.RejectDisabled, reason)
}

func TestValidateMissingMetadataRejected(t *testing.T) {
	cfg := config.ValidatorConfig{Enabled: true}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := blockmodel.Block{MajorVersion: 1}
	accepted, reason := v.Validate(bl, 42)
	require.False(t, accepted)
	require.Equal(t, xerrors.RejectMissingMetadata, reason)
}

func TestValidateAcceptsAuthorizedLeader(t *testing.T) {
	priv, pub := genKey(t, 0x01)
	cfg := config.ValidatorConfig{
		Enabled: true,
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAleaderone", Pubkey: pub},
			{Address: "XCAleadertwo"},
			{Address: "XCAleaderthree"},
			{Address: "XCAleaderfour"},
		},
	}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := signedBlock(t, "XCAleaderone", priv)
	accepted, reason := v.Validate(bl, 42)
	require.True(t, accepted)
	require.Equal(t, xerrors.RejectReason(0), reason)
}

func TestValidateRejectsUnauthorizedLeader(t *testing.T) {
	priv, _ := genKey(t, 0x02)
	cfg := config.ValidatorConfig{
		Enabled: true,
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAleaderone"},
			{Address: "XCAleadertwo"},
			{Address: "XCAleaderthree"},
			{Address: "XCAleaderfour"},
		},
	}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := signedBlock(t, "XCAsomeoutsider", priv)
	accepted, reason := v.Validate(bl, 42)
	require.False(t, accepted)
	require.Equal(t, xerrors.RejectUnauthorizedLeader, reason)
}

func TestValidateRejectsMismatchedPinnedLeader(t *testing.T) {
	priv, pub := genKey(t, 0x03)
	cfg := config.ValidatorConfig{
		Enabled:          true,
		ExpectedLeaderID: "XCAleadertwo",
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAleaderone", Pubkey: pub},
			{Address: "XCAleadertwo", Pubkey: pub},
			{Address: "XCAleaderthree"},
			{Address: "XCAleaderfour"},
		},
	}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := signedBlock(t, "XCAleaderone", priv)
	accepted, reason := v.Validate(bl, 42)
	require.False(t, accepted)
	require.Equal(t, xerrors.RejectLeaderMismatch, reason)
}

func TestValidateRejectsBadSignature(t *testing.T) {
	_, pub := genKey(t, 0x04)
	wrongPriv, _ := genKey(t, 0x05)
	cfg := config.ValidatorConfig{
		Enabled: true,
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAleaderone", Pubkey: pub},
			{Address: "XCAleadertwo"},
			{Address: "XCAleaderthree"},
			{Address: "XCAleaderfour"},
		},
	}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := signedBlock(t, "XCAleaderone", wrongPriv)
	accepted, reason := v.Validate(bl, 42)
	require.False(t, accepted)
	require.Equal(t, xerrors.RejectBadSignature, reason)
}

func TestValidateSkipsMisprovisionedSlotInDevMode(t *testing.T) {
	priv, _ := genKey(t, 0x06)
	cfg := config.ValidatorConfig{
		Enabled: true,
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAleaderone"},
			{Address: "XCAleadertwo"},
			{Address: "XCAleaderthree"},
			{Address: "XCAleaderfour"},
		},
	}
	v := validator.New(cfg, cometlog.NewNopLogger())

	bl := signedBlock(t, "XCAleaderone", priv)
	accepted, reason := v.Validate(bl, 42)
	require.True(t, accepted)
	require.Equal(t, xerrors.RejectMisprovisioned, reason)
}

func TestValidateUsesConfigSnapshotNotGlobalAllowList(t *testing.T) {
	// Regression test: two Validator instances built from different
	// ValidatorConfig snapshots must behave independently, even though
	// both read from the same immutable config.SeedAllowList compile-
	// time constant elsewhere in the tree. Neither snapshot here
	// matches config.SeedAllowList.
	priv, pub := genKey(t, 0x07)
	allowed := config.ValidatorConfig{
		Enabled: true,
		AllowList: [config.NumSeeds]config.SeedIdentity{
			{Address: "XCAonlyhere", Pubkey: pub},
			{}, {}, {},
		},
	}
	empty := config.ValidatorConfig{Enabled: true}

	bl := signedBlock(t, "XCAonlyhere", priv)

	vAllowed := validator.New(allowed, cometlog.NewNopLogger())
	accepted, _ := vAllowed.Validate(bl, 42)
	require.True(t, accepted)

	vEmpty := validator.New(empty, cometlog.NewNopLogger())
	accepted, reason := vEmpty.Validate(bl, 42)
	require.False(t, accepted)
	require.Equal(t, xerrors.RejectUnauthorizedLeader, reason)
}
