// Package hash computes structural keys for reified type descriptors.
//
// A key is the SHA-256 digest of a frozen, versioned serialization of the
// descriptor's shape: its class identity and the ids and projection
// variance of its (already canonical) type arguments. The registry uses
// the key as its interning table key.
package hash

import "crypto/sha256"

// Key is the structural hash of a descriptor shape.
type Key [32]byte

// Sum computes the key of a shape.
func Sum(s Shape) Key {
	return sha256.Sum256(Serialize(s))
}
