package input

import "github.com/roach88/recon/internal/ir"

// Slots holds at most one file per slot.
//
// Set replaces the previous occupant in one step; there is no undo and no
// error for replacing. The zero value is two empty slots.
type Slots struct {
	current  *ir.InputFile
	previous *ir.InputFile
}

// Set stores file in slot and reports whether a prior file was replaced.
func (s *Slots) Set(slot ir.SlotID, file ir.InputFile) (replaced bool) {
	f := file
	switch slot {
	case ir.SlotCurrent:
		replaced = s.current != nil
		s.current = &f
	case ir.SlotPrevious:
		replaced = s.previous != nil
		s.previous = &f
	}
	return replaced
}

// Get returns the file in slot, if present.
func (s *Slots) Get(slot ir.SlotID) (ir.InputFile, bool) {
	var f *ir.InputFile
	switch slot {
	case ir.SlotCurrent:
		f = s.current
	case ir.SlotPrevious:
		f = s.previous
	}
	if f == nil {
		return ir.InputFile{}, false
	}
	return *f, true
}

// Present reports whether slot holds a file.
func (s *Slots) Present(slot ir.SlotID) bool {
	_, ok := s.Get(slot)
	return ok
}

// Missing lists the empty slots in declaration order.
func (s *Slots) Missing() []ir.SlotID {
	var missing []ir.SlotID
	for _, slot := range ir.Slots {
		if !s.Present(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Ref returns the metadata of the file in slot, or nil when empty.
func (s *Slots) Ref(slot ir.SlotID) *ir.FileRef {
	f, ok := s.Get(slot)
	if !ok {
		return nil
	}
	ref := f.Ref()
	return &ref
}
