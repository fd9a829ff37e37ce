package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainEvent = "recon/event/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FileDigest returns the plain hex SHA-256 of a file's contents.
// It is not domain separated so it matches `sha256sum` output.
func FileDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EventID computes the content-addressed ID of a journal event.
// The ID covers the workflow, attempt, kind, state, seq and attributes.
func EventID(workflowID string, ev Event) (string, error) {
	obj := ev.CanonicalMap()
	obj["workflow_id"] = workflowID

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is like EventID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventID(workflowID string, ev Event) string {
	id, err := EventID(workflowID, ev)
	if err != nil {
		panic(err)
	}
	return id
}
