package diarize

import (
	"call-audit-go/internal/types"
)

// Canonical role tags. The diarizer is the only place roles are minted, so
// a real speaker-attribution backend can be swapped in without touching the
// pipeline.
const (
	RoleAgent    = "agent"
	RoleCustomer = "customer"
)

// AssignRoles labels each segment with a speaker role. The placeholder
// implementation alternates agent/customer in segment order; timing and
// text pass through untouched.
func AssignRoles(segments []types.TranscriptSegment) []types.TranscriptSegment {
	roles := [2]string{RoleAgent, RoleCustomer}
	out := make([]types.TranscriptSegment, 0, len(segments))
	for i, seg := range segments {
		seg.Speaker = roles[i%2]
		out = append(out, seg)
	}
	return out
}
