package becs

import (
	"unsafe"
)

// componentStore is the per-type sparse table mapping entity index to a
// component record. Slots are addressed by raw index; presence is tracked
// by the owning Manager's per-entity Bitmask, and the Manager clears every
// slot for an index before recycling it, so a slot never leaks a previous
// owner's record.
type componentStore struct {
	slots []unsafe.Pointer
}

// ensure grows the table to cover the given index.
func (s *componentStore) ensure(index uint32) {
	for uint32(len(s.slots)) <= index {
		s.slots = append(s.slots, nil)
	}
}

// put stores a record pointer at the given index.
// The caller must have called ensure for the index.
func (s *componentStore) put(index uint32, ptr unsafe.Pointer) {
	s.slots[index] = ptr
}

// at returns the record pointer at the given index, or nil if the table
// does not cover it.
func (s *componentStore) at(index uint32) unsafe.Pointer {
	if uint32(len(s.slots)) <= index {
		return nil
	}
	return s.slots[index]
}

// clear drops the record at the given index.
func (s *componentStore) clear(index uint32) {
	if uint32(len(s.slots)) > index {
		s.slots[index] = nil
	}
}

// reset drops every record in the table.
func (s *componentStore) reset() {
	for i := range s.slots {
		s.slots[i] = nil
	}
	s.slots = s.slots[:0]
}
