// Package ir holds the shared vocabulary of the recon client.
//
// This package contains plain types and the canonical encoding used for
// journal records. All other internal packages import ir; ir imports nothing
// internal.
//
// Key design constraints:
//   - Exactly two input slots exist: SlotCurrent and SlotPrevious
//   - Artifact roles are fixed by the server contract: primary, secondary, summary
//   - All JSON tags use snake_case
//   - Journal ordering uses logical clocks (seq), never wall-clock timestamps
package ir
