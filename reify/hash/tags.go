package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the descriptor shape serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// every shape key recorded in a snapshot.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing shape keys.
const HashVersion byte = 1

const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	TagDescriptor byte = 0x01
	TagClass      byte = 0x02 // class serial follows
	TagStar       byte = 0x03 // star projection, no class
	TagArg        byte = 0x04 // argument id + variance

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagDescriptor, TagClass, TagStar, TagArg,
}
