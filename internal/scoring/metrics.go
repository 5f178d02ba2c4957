package scoring

import (
	"sort"
	"strings"
	"unicode/utf8"

	"call-audit-go/internal/diarize"
	"call-audit-go/internal/types"
)

// speechRateBase is reported for a role that produced words but no
// measurable speaking time (e.g. zero-length segments).
const speechRateBase = 120.0

// ComputeOperational derives deterministic audio-level statistics from the
// segment sequence alone. It stays available when the rubric oracle is
// down and never fails: an empty sequence yields zeroed metrics.
func ComputeOperational(segments []types.TranscriptSegment) types.OperationalMetrics {
	metrics := types.OperationalMetrics{
		SpeechRateWpm: map[string]float64{},
		Interruptions: map[string]int{
			interruptionKey(diarize.RoleAgent):    0,
			interruptionKey(diarize.RoleCustomer): 0,
		},
	}
	if len(segments) == 0 {
		return metrics
	}

	sorted := make([]types.TranscriptSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	span := sorted[len(sorted)-1].End - sorted[0].Start
	for _, seg := range sorted {
		if seg.End-sorted[0].Start > span {
			span = seg.End - sorted[0].Start
		}
	}

	if span > 0 {
		voiced := unionLength(sorted)
		overlap := overlapLength(sorted)
		metrics.SilencePct = clampPct(100 * (span - voiced) / span)
		metrics.OverlapPct = clampPct(100 * overlap / span)
	}

	words := map[string]int{}
	speaking := map[string]float64{}
	for _, seg := range sorted {
		words[seg.Speaker] += countWords(seg.Text)
		if seg.End > seg.Start {
			speaking[seg.Speaker] += seg.End - seg.Start
		}
	}
	for role, n := range words {
		if n == 0 {
			metrics.SpeechRateWpm[role] = 0
			continue
		}
		if speaking[role] > 0 {
			metrics.SpeechRateWpm[role] = float64(n) / (speaking[role] / 60.0)
		} else {
			metrics.SpeechRateWpm[role] = speechRateBase
		}
	}

	// A segment starting before the previous different-speaker segment
	// ends counts as an interruption by the later speaker.
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Speaker != prev.Speaker && cur.Start < prev.End {
			metrics.Interruptions[interruptionKey(cur.Speaker)]++
		}
	}

	return metrics
}

// unionLength is the total voiced time: the measure of the union of all
// segment intervals.
func unionLength(sorted []types.TranscriptSegment) float64 {
	var total, curStart, curEnd float64
	curStart, curEnd = sorted[0].Start, sorted[0].End
	for _, seg := range sorted[1:] {
		if seg.Start > curEnd {
			total += curEnd - curStart
			curStart, curEnd = seg.Start, seg.End
			continue
		}
		if seg.End > curEnd {
			curEnd = seg.End
		}
	}
	total += curEnd - curStart
	if total < 0 {
		return 0
	}
	return total
}

// overlapLength sums the pairwise intersections of segment intervals.
func overlapLength(sorted []types.TranscriptSegment) float64 {
	var total float64
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Start >= sorted[i].End {
				break
			}
			end := sorted[i].End
			if sorted[j].End < end {
				end = sorted[j].End
			}
			if d := end - sorted[j].Start; d > 0 {
				total += d
			}
		}
	}
	return total
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func interruptionKey(role string) string {
	if role == "" {
		return "byUnknown"
	}
	// Title-case the first rune, not the first byte, so non-ASCII role
	// labels from a future diarizer survive intact.
	r, size := utf8.DecodeRuneInString(role)
	return "by" + strings.ToUpper(string(r)) + role[size:]
}

func clampPct(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
