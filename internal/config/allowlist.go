package config

import "crypto/ed25519"

// SeedIdentity is one compile-time member of the leader allow-list: a
// textual wallet address paired with the Ed25519 public key that
// address is authorized to sign blocks with.
type SeedIdentity struct {
	Address string
	Pubkey  ed25519.PublicKey
}

// NumSeeds is the fixed size of the allow-list (N=4 per spec).
const NumSeeds = 4

// SeedAllowList is the compile-time set of authorized leader
// identities. Real deployments populate the pubkey bytes once the
// operator has run `derive-pubkey` against each delegate's secret
// key and pasted the result back in; until then a slot's pubkey is
// left empty and verification against that slot is skipped in
// development mode (see LookupPubkey).
var SeedAllowList = [NumSeeds]SeedIdentity{
	{Address: "XCA1seedidentityoneplaceholderaddressxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"},
	{Address: "XCA2seedidentitytwoplaceholderaddressxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"},
	{Address: "XCA3seedidentitythreeplaceholderaddressxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"},
	{Address: "XCA4seedidentityfourplaceholderaddressxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"},
}

// FindSeedSlot returns the compile-time allow-list index for address,
// or -1 if address is not a member. This consults the package-level
// SeedAllowList directly, which is appropriate for startup-time checks
// (BuildLeaderConfig) that must always bind to the compile-time
// constants regardless of which ValidatorConfig snapshot exists. Code
// that already holds an immutable allow-list snapshot — the validator,
// in particular — should use FindSeedSlotIn instead.
func FindSeedSlot(address string) int {
	return FindSeedSlotIn(SeedAllowList, address)
}

// FindSeedSlotIn returns the index of address within list, or -1 if
// address is not a member.
func FindSeedSlotIn(list [NumSeeds]SeedIdentity, address string) int {
	for i, s := range list {
		if s.Address == address {
			return i
		}
	}
	return -1
}

// LookupPubkey returns the pubkey for compile-time allow-list slot i.
// See FindSeedSlot for why this consults the package-level
// SeedAllowList directly rather than a caller-held snapshot.
func LookupPubkey(slot int) (ed25519.PublicKey, bool) {
	return LookupPubkeyIn(SeedAllowList, slot)
}

// LookupPubkeyIn returns the pubkey for slot i within list. The second
// return value is false when the slot's constant has never been
// provisioned (empty pubkey) — this is the documented development
// mode where verification against that slot is skipped.
func LookupPubkeyIn(list [NumSeeds]SeedIdentity, slot int) (ed25519.PublicKey, bool) {
	if slot < 0 || slot >= len(list) {
		return nil, false
	}
	pub := list[slot].Pubkey
	if len(pub) != ed25519.PublicKeySize {
		return nil, false
	}
	return pub, true
}
