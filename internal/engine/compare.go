package engine

import (
	"sort"

	"github.com/piwi3910/CutFlow/internal/model"
)

// Less orders two candidates under the active optimization priority.
// Placing more tiles always wins; the priority only decides whether waste
// or cut count breaks ties first. Later keys prefer fewer sheets, a large
// consolidated leftover, and shorter total cut length.
func Less(a, b *Candidate, priority model.OptimizationPriority) bool {
	if len(a.NoFit) != len(b.NoFit) {
		return len(a.NoFit) < len(b.NoFit)
	}
	switch priority {
	case model.PriorityLeastCuts:
		if a.CutCount() != b.CutCount() {
			return a.CutCount() < b.CutCount()
		}
		if a.TotalWastedArea() != b.TotalWastedArea() {
			return a.TotalWastedArea() < b.TotalWastedArea()
		}
	default:
		if a.TotalWastedArea() != b.TotalWastedArea() {
			return a.TotalWastedArea() < b.TotalWastedArea()
		}
		if a.CutCount() != b.CutCount() {
			return a.CutCount() < b.CutCount()
		}
	}
	if len(a.Sheets) != len(b.Sheets) {
		return len(a.Sheets) < len(b.Sheets)
	}
	if a.BiggestOpenArea() != b.BiggestOpenArea() {
		return a.BiggestOpenArea() > b.BiggestOpenArea()
	}
	return a.TotalCutLength() < b.TotalCutLength()
}

// SortCandidates stable-sorts a slice best-first. Stability keeps merge
// results independent of arrival order for equal candidates.
func SortCandidates(cands []*Candidate, priority model.OptimizationPriority) {
	sort.SliceStable(cands, func(i, j int) bool {
		return Less(cands[i], cands[j], priority)
	})
}

// DedupBySignature removes candidates whose signature already appeared,
// keeping the first occurrence. The input order is preserved.
func DedupBySignature(cands []*Candidate) []*Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := cands[:0]
	for _, c := range cands {
		sig := c.Signature()
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, c)
	}
	return out
}
