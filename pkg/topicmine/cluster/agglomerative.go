package cluster

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
)

// Linkage selects how the distance between two clusters is derived from
// the distances between their members
type Linkage string

const (
	LinkageWard     Linkage = "ward"
	LinkageAverage  Linkage = "average"
	LinkageComplete Linkage = "complete"
	LinkageSingle   Linkage = "single"
)

// ParseLinkage validates a linkage name
func ParseLinkage(s string) (Linkage, error) {
	switch l := Linkage(s); l {
	case LinkageWard, LinkageAverage, LinkageComplete, LinkageSingle:
		return l, nil
	case "":
		return LinkageWard, nil
	default:
		return "", fmt.Errorf("cluster: unknown linkage %q: %w", s, internalerr.ErrInvalidConfig)
	}
}

// Agglomerative is bottom-up hierarchical clustering over Euclidean distance
type Agglomerative struct {
	Linkage Linkage
}

// Fit merges the closest pair of clusters until k remain and returns one label
// per vector. Labels are numbered 0..k-1 in order of first appearance. Ties
// between equally close pairs go to the pair with the lowest indexes.
func (a Agglomerative) Fit(ctx context.Context, vectors [][]float64, k int) ([]int, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("cluster: no vectors: %w", internalerr.ErrInvalidInput)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("cluster: k=%d outside [1, %d]: %w", k, n, internalerr.ErrInvalidInput)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("cluster: vector %d has dimension %d, want %d: %w", i, len(v), dim, internalerr.ErrInvalidInput)
		}
		if !finite(v) {
			return nil, fmt.Errorf("cluster: vector %d has non-finite values: %w", i, internalerr.ErrInvalidInput)
		}
	}
	linkage := a.Linkage
	if linkage == "" {
		linkage = LinkageWard
	}

	// Ward works on squared distances so its Lance-Williams update is exact.
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(vectors[i], vectors[j], 2)
			if linkage == LinkageWard {
				d *= d
			}
			dist.SetSym(i, j, d)
		}
	}

	members := make([][]int, n)
	active := make([]int, n)
	for i := range members {
		members[i] = []int{i}
		active[i] = i
	}

	for len(active) > k {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cluster: %w", err)
		}

		bi, bj := -1, -1
		best := math.Inf(1)
		for x := 0; x < len(active); x++ {
			for y := x + 1; y < len(active); y++ {
				if d := dist.At(active[x], active[y]); d < best {
					best, bi, bj = d, x, y
				}
			}
		}
		if bi == -1 {
			return nil, fmt.Errorf("cluster: no finite distance left with %d clusters: %w", len(active), internalerr.ErrInvalidInput)
		}

		i, j := active[bi], active[bj]
		ni, nj := float64(len(members[i])), float64(len(members[j]))
		for _, c := range active {
			if c == i || c == j {
				continue
			}
			nk := float64(len(members[c]))
			dist.SetSym(i, c, update(linkage, dist.At(i, c), dist.At(j, c), best, ni, nj, nk))
		}
		members[i] = append(members[i], members[j]...)
		members[j] = nil
		active = append(active[:bj], active[bj+1:]...)
	}

	raw := make([]int, n)
	for _, c := range active {
		for _, idx := range members[c] {
			raw[idx] = c
		}
	}
	return relabel(raw), nil
}

// update is the Lance-Williams recurrence for the distance between cluster k
// and the union of clusters i and j.
func update(l Linkage, dik, djk, dij, ni, nj, nk float64) float64 {
	switch l {
	case LinkageSingle:
		return math.Min(dik, djk)
	case LinkageComplete:
		return math.Max(dik, djk)
	case LinkageAverage:
		return (ni*dik + nj*djk) / (ni + nj)
	default:
		return ((ni+nk)*dik + (nj+nk)*djk - nk*dij) / (ni + nj + nk)
	}
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func relabel(raw []int) []int {
	next := 0
	seen := make(map[int]int)
	out := make([]int, len(raw))
	for i, r := range raw {
		id, ok := seen[r]
		if !ok {
			id = next
			seen[r] = id
			next++
		}
		out[i] = id
	}
	return out
}
