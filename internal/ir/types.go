package ir

import "fmt"

// SlotID identifies one of the two required input positions.
type SlotID string

const (
	// SlotCurrent holds the current-period dataset.
	SlotCurrent SlotID = "current"
	// SlotPrevious holds the previous-period dataset.
	SlotPrevious SlotID = "previous"
)

// Slots lists every slot in declaration order.
var Slots = []SlotID{SlotCurrent, SlotPrevious}

// Valid reports whether s names a known slot.
func (s SlotID) Valid() bool {
	return s == SlotCurrent || s == SlotPrevious
}

// ParseSlot converts user input ("current", "previous") to a SlotID.
func ParseSlot(s string) (SlotID, error) {
	slot := SlotID(s)
	if !slot.Valid() {
		return "", fmt.Errorf("unknown slot %q: must be %q or %q", s, SlotCurrent, SlotPrevious)
	}
	return slot, nil
}

// InputFile is an admitted file occupying a slot.
//
// Data is the opaque binary blob; the client never inspects it beyond the
// declared media type. Digest is the hex SHA-256 of Data (see FileDigest).
type InputFile struct {
	Name      string
	MediaType string
	Data      []byte
	Digest    string
}

// Ref returns the metadata view of the file without its contents.
func (f InputFile) Ref() FileRef {
	return FileRef{
		Name:      f.Name,
		MediaType: f.MediaType,
		Size:      int64(len(f.Data)),
		Digest:    f.Digest,
	}
}

// FileRef describes an input file for snapshots and journals.
type FileRef struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Digest    string `json:"digest"`
}

// SubmitRequest is the single outbound submission: both files plus a label.
type SubmitRequest struct {
	AttemptID string
	Current   InputFile
	Previous  InputFile
	Label     string
}

// Role is the semantic role of a generated artifact.
type Role string

const (
	// RolePrimary is the processed current-period dataset.
	RolePrimary Role = "primary"
	// RoleSecondary is the previous-period returns dataset.
	RoleSecondary Role = "secondary"
	// RoleSummary is the pivot summary dataset.
	RoleSummary Role = "summary"
)

// Roles lists every artifact role in contract order.
var Roles = []Role{RolePrimary, RoleSecondary, RoleSummary}
