package lbox

import "fmt"

// Reset zeroes all counters, for callers that want per-document
// rather than per-process totals.
func (s *Stats) Reset() { *s = Stats{} }

// String renders a one-line summary, the lightweight equivalent of
// the per-session counts fuzzylboxstats.py's FuzzyLboxStats prints
// after a run, without that harness's replace-and-reparse machinery.
func (s Stats) String() string {
	return fmt.Sprintf(
		"candidates: history=%d stack=%d line=%d | accepted: %d (history=%d stack=%d line=%d)",
		s.HistoryCandidates, s.StackCandidates, s.LineCandidates,
		s.Accepted, s.AcceptedFromHistory, s.AcceptedFromStack, s.AcceptedFromLine,
	)
}
