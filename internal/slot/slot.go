// Package slot implements the pure slot-arithmetic helpers shared by
// the leader service and anything that needs to reason about slot
// boundaries: rounding a wall-clock time up to the next slot, checking
// whether a timestamp already sits on a boundary, and deriving the
// deterministic coinbase nonce used when proof-of-work is disabled.
package slot

import (
	"fmt"
	"strconv"

	"github.com/xcash-project/xcash-temp-consensus/internal/fasthash"
)

// Duration is a slot length in seconds. Production uses 300 (5
// minutes); dev/test deployments use 30.
type Duration uint64

const (
	// ProdDuration is the production slot length.
	ProdDuration Duration = 300
	// DevDuration is the dev/test slot length.
	DevDuration Duration = 30
)

// Timestamp is a UNIX-second instant that is a multiple of a
// Duration. The zero value is not itself a valid slot (no block is
// producible at UNIX time 0 in this subsystem), it just means "no
// slot generated yet".
type Timestamp uint64

// Next rounds now up to the next multiple of d. If now already sits on
// a boundary, Next returns now unchanged, matching next_slot_timestamp
// == now on a boundary.
func Next(now uint64, d Duration) Timestamp {
	dv := uint64(d)
	remainder := now % dv
	if remainder == 0 {
		return Timestamp(now)
	}
	return Timestamp(now + (dv - remainder))
}

// IsBoundary reports whether ts sits on a slot boundary for d.
func IsBoundary(ts uint64, d Duration) bool {
	return ts%uint64(d) == 0
}

// DeterministicNonce derives the coinbase nonce used when
// proof-of-work is disabled: the first four bytes, little-endian, of
// fast_hash(leader_id || decimal(slot_timestamp)).
func DeterministicNonce(leaderID string, ts Timestamp) uint32 {
	data := fmt.Sprintf("%s%s", leaderID, strconv.FormatUint(uint64(ts), 10))
	return fasthash.FirstU32LE(fasthash.Sum([]byte(data)))
}
