// Package reify implements runtime descriptors for reified generic types.
//
// This package contains:
//   - Variance tags for type argument positions
//   - Nominal class identities and a name table for them
//   - Canonical, interned descriptors for concrete instantiations
//   - A registry that owns descriptor ids and parent links
//   - The variance-aware instance/subtype checker and cast helpers
package reify
