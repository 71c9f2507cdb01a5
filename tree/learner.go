package tree

import (
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// Params controls tree growth.
type Params struct {
	// NumLeaves is the maximum number of leaves per tree.
	NumLeaves int

	// MinExamplesPerLeaf is the minimum number of rows in each child of a split.
	MinExamplesPerLeaf int

	// FeatureFraction is the share of features considered by each tree.
	FeatureFraction float64

	// Lambda is the L2 penalty on leaf values.
	Lambda float64

	// MinGainToSplit is the smallest gain a split must achieve.
	MinGainToSplit float64

	// MaxDepth limits depth when positive.
	MaxDepth int
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.NumLeaves < 2:
		return errors.NewValidationError("num_leaves", "must be at least 2", p.NumLeaves)
	case p.MinExamplesPerLeaf < 1:
		return errors.NewValidationError("min_examples_per_leaf", "must be at least 1", p.MinExamplesPerLeaf)
	case !(p.FeatureFraction > 0 && p.FeatureFraction <= 1):
		return errors.NewValidationError("feature_fraction", "must be in (0, 1]", p.FeatureFraction)
	case p.Lambda < 0:
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	case p.MinGainToSplit < 0:
		return errors.NewValidationError("min_gain_to_split", "must be non-negative", p.MinGainToSplit)
	case p.MaxDepth < 0:
		return errors.NewValidationError("max_depth", "must be non-negative", p.MaxDepth)
	}
	return nil
}

// Learner grows trees over a fixed binned training matrix. A Learner is
// read-only after construction, so one instance may grow trees from several
// goroutines.
type Learner struct {
	params Params
	mapper *BinMapper
	binned *Binned
}

// NewLearner creates a Learner for data binned by mapper.
func NewLearner(mapper *BinMapper, binned *Binned, params Params) (*Learner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if binned.Features() != mapper.NumFeatures() {
		return nil, errors.NewDimensionError("NewLearner", mapper.NumFeatures(), binned.Features(), 1)
	}
	return &Learner{params: params, mapper: mapper, binned: binned}, nil
}

type histBin struct {
	grad  float64
	hess  float64
	count int
}

// histogram is indexed by feature then bin; unsampled features are nil.
type histogram [][]histBin

type splitInfo struct {
	feature   int
	bin       int
	gain      float64
	leftGrad  float64
	leftHess  float64
	leftCount int
}

type leaf struct {
	node    int
	indices []int
	grad    float64
	hess    float64
	hist    histogram
	best    splitInfo
}

// Grow builds one tree on the rows in indices. grad and hess are indexed
// by row. rng drives feature sampling.
//
// Growth is best-first: the open leaf with the highest gain is split until
// NumLeaves is reached or no leaf has a split with positive gain of at
// least MinGainToSplit.
func (l *Learner) Grow(indices []int, grad, hess []float64, rng *rand.Rand) *Tree {
	features := l.sampleFeatures(rng)

	root := &leaf{node: 0, indices: indices}
	for _, i := range indices {
		root.grad += grad[i]
		root.hess += hess[i]
	}
	root.hist = l.buildHistogram(indices, grad, hess, features)
	root.best = l.findBestSplit(root.hist, root.grad, root.hess, features)

	t := &Tree{Nodes: []Node{{
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  l.leafValue(root.grad, root.hess),
		Count:      len(indices),
	}}}
	open := []*leaf{root}

	for len(open) < l.params.NumLeaves {
		pick := -1
		for k, lf := range open {
			if !l.canSplit(t, lf) {
				continue
			}
			if pick < 0 || lf.best.gain > open[pick].best.gain {
				pick = k
			}
		}
		if pick < 0 {
			break
		}

		lf := open[pick]
		left, right := l.split(t, lf, grad, hess, features)
		open[pick] = left
		open = append(open, right)
	}

	t.NumLeaves = len(open)
	return t
}

func (l *Learner) canSplit(t *Tree, lf *leaf) bool {
	if lf.best.gain <= 0 || lf.best.gain < l.params.MinGainToSplit {
		return false
	}
	if l.params.MaxDepth > 0 && t.Nodes[lf.node].Depth >= l.params.MaxDepth {
		return false
	}
	return true
}

func (l *Learner) split(t *Tree, lf *leaf, grad, hess []float64, features []int) (*leaf, *leaf) {
	s := lf.best
	col := l.binned.bins[s.feature]

	var leftIdx, rightIdx []int
	for _, i := range lf.indices {
		if int(col[i]) <= s.bin {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	left := &leaf{indices: leftIdx, grad: s.leftGrad, hess: s.leftHess}
	right := &leaf{indices: rightIdx, grad: lf.grad - s.leftGrad, hess: lf.hess - s.leftHess}

	// Build the smaller child's histogram directly; the larger is parent minus smaller.
	small, large := left, right
	if len(rightIdx) < len(leftIdx) {
		small, large = right, left
	}
	small.hist = l.buildHistogram(small.indices, grad, hess, features)
	large.hist = subtractHistogram(lf.hist, small.hist)
	lf.hist = nil

	depth := t.Nodes[lf.node].Depth + 1
	left.node = len(t.Nodes)
	right.node = left.node + 1
	t.Nodes = append(t.Nodes,
		Node{LeftChild: -1, RightChild: -1, LeafValue: l.leafValue(left.grad, left.hess), Count: len(leftIdx), Depth: depth},
		Node{LeftChild: -1, RightChild: -1, LeafValue: l.leafValue(right.grad, right.hess), Count: len(rightIdx), Depth: depth},
	)

	parent := &t.Nodes[lf.node]
	parent.LeftChild = left.node
	parent.RightChild = right.node
	parent.SplitFeature = s.feature
	parent.Threshold = l.mapper.Threshold(s.feature, s.bin)
	parent.Gain = s.gain
	parent.LeafValue = 0

	left.best = l.findBestSplit(left.hist, left.grad, left.hess, features)
	right.best = l.findBestSplit(right.hist, right.grad, right.hess, features)
	return left, right
}

func (l *Learner) sampleFeatures(rng *rand.Rand) []int {
	n := l.mapper.NumFeatures()
	k := int(math.Ceil(l.params.FeatureFraction * float64(n)))
	if k >= n || rng == nil {
		all := make([]int, n)
		for j := range all {
			all[j] = j
		}
		return all
	}
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)[:k]
	// keep ascending order so ties resolve the same way as without sampling
	sort.Ints(perm)
	return perm
}

func (l *Learner) buildHistogram(indices []int, grad, hess []float64, features []int) histogram {
	h := make(histogram, l.mapper.NumFeatures())
	for _, j := range features {
		bins := make([]histBin, l.mapper.NumBins(j))
		col := l.binned.bins[j]
		for _, i := range indices {
			b := &bins[col[i]]
			b.grad += grad[i]
			b.hess += hess[i]
			b.count++
		}
		h[j] = bins
	}
	return h
}

func subtractHistogram(parent, sibling histogram) histogram {
	out := make(histogram, len(parent))
	for j := range parent {
		if parent[j] == nil {
			continue
		}
		bins := make([]histBin, len(parent[j]))
		for b := range bins {
			bins[b] = histBin{
				grad:  parent[j][b].grad - sibling[j][b].grad,
				hess:  parent[j][b].hess - sibling[j][b].hess,
				count: parent[j][b].count - sibling[j][b].count,
			}
		}
		out[j] = bins
	}
	return out
}

func (l *Learner) findBestSplit(h histogram, totalGrad, totalHess float64, features []int) splitInfo {
	best := splitInfo{feature: -1}
	total := 0
	if len(features) > 0 {
		for _, b := range h[features[0]] {
			total += b.count
		}
	}
	minLeaf := l.params.MinExamplesPerLeaf
	if total < 2*minLeaf {
		return best
	}

	for _, j := range features {
		bins := h[j]
		var lg, lh float64
		lc := 0
		for b := 0; b < len(bins)-1; b++ {
			lg += bins[b].grad
			lh += bins[b].hess
			lc += bins[b].count
			if lc < minLeaf {
				continue
			}
			if total-lc < minLeaf {
				break
			}
			gain := l.splitGain(lg, lh, totalGrad-lg, totalHess-lh, totalGrad, totalHess)
			if gain > best.gain {
				best = splitInfo{feature: j, bin: b, gain: gain, leftGrad: lg, leftHess: lh, leftCount: lc}
			}
		}
	}
	return best
}

func (l *Learner) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := l.params.Lambda
	const minHess = 1e-16
	if leftHess+lambda < minHess || rightHess+lambda < minHess {
		return 0
	}
	gain := 0.5 * (leftGrad*leftGrad/(leftHess+lambda) +
		rightGrad*rightGrad/(rightHess+lambda) -
		totalGrad*totalGrad/(totalHess+lambda))
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return 0
	}
	return gain
}

func (l *Learner) leafValue(grad, hess float64) float64 {
	denom := hess + l.params.Lambda
	if math.Abs(denom) < 1e-10 {
		return 0
	}
	return -grad / denom
}
