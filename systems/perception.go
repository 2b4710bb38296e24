package systems

import (
	"container/heap"

	"github.com/mlange-42/ark/ecs"
)

// ScanMode selects how many detections ScanSurroundings returns.
type ScanMode uint8

const (
	// ScanAll returns every candidate in range.
	ScanAll ScanMode = iota
	// ScanNearest returns only the closest candidate.
	ScanNearest
)

// Detection is one perceived agent. Order is the candidate's position in the
// scanned input and breaks distance ties.
type Detection struct {
	Distance float64
	Order    int
	Agent    ecs.Entity
}

// less orders by distance, then input order.
func (d Detection) less(o Detection) bool {
	if d.Distance != o.Distance {
		return d.Distance < o.Distance
	}
	return d.Order < o.Order
}

// detectionHeap is a min-heap of detections.
type detectionHeap []Detection

func (h detectionHeap) Len() int           { return len(h) }
func (h detectionHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h detectionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *detectionHeap) Push(x any) { *h = append(*h, x.(Detection)) }

func (h *detectionHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	*h = old[:n-1]
	return d
}

// ScanSurroundings returns the candidates within self's effective scan range
// (base range × active state's scan modifier, inclusive), nearest first. Self
// and terminal agents are skipped. Candidates at equal distance keep their
// input order. In ScanNearest mode at most one detection is returned.
func (w *World) ScanSurroundings(self ecs.Entity, candidates []ecs.Entity, mode ScanMode) []Detection {
	origin := w.Position(self)
	rangeLimit := w.ScanRange(self)

	h := make(detectionHeap, 0, len(candidates))
	for i, c := range candidates {
		if c == self || w.IsTerminal(c) {
			continue
		}
		d := origin.DistanceTo(w.Position(c))
		if d > rangeLimit {
			continue
		}
		heap.Push(&h, Detection{Distance: d, Order: i, Agent: c})
	}

	if h.Len() == 0 {
		return nil
	}
	if mode == ScanNearest {
		return []Detection{heap.Pop(&h).(Detection)}
	}

	out := make([]Detection, 0, h.Len())
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(Detection))
	}
	return out
}

// Nearest is ScanSurroundings in ScanNearest mode, returning the detection
// and whether one was found.
func (w *World) Nearest(self ecs.Entity, candidates []ecs.Entity) (Detection, bool) {
	found := w.ScanSurroundings(self, candidates, ScanNearest)
	if len(found) == 0 {
		return Detection{}, false
	}
	return found[0], true
}
