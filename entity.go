package becs

import (
	"fmt"
)

// EntityID is a stable handle identifying a logical entity.
// The Index is dense and reused after destruction; the Version is bumped
// once per reuse of an index, so a stale handle to a recycled slot never
// matches the live entity occupying it.
type EntityID struct {
	Index   uint32 // Dense slot index, recycled after destroy.
	Version uint32 // Incremented each time the index is recycled.
}

// Raw returns the packed 64-bit encoding of the handle, with the index in
// the low 32 bits and the version in the high 32 bits. The packed form and
// the (Index, Version) pair are two spellings of the same identity.
func (id EntityID) Raw() uint64 {
	return uint64(id.Index) | uint64(id.Version)<<32
}

// IDFromRaw unpacks a handle previously produced by Raw.
func IDFromRaw(raw uint64) EntityID {
	return EntityID{
		Index:   uint32(raw),
		Version: uint32(raw >> 32),
	}
}

// Less orders handles by their packed encoding. The ordering is useful for
// deterministic iteration and for detecting reuse (a recycled handle for the
// same index sorts after the original); it says nothing else about entity age.
func (id EntityID) Less(other EntityID) bool {
	return id.Raw() < other.Raw()
}

// String returns the handle in index.version form for logging.
func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Version)
}
