package tree

import "math"

// Node is one entry of a Tree's node array. Leaves have LeftChild and
// RightChild set to -1.
type Node struct {
	LeftChild  int
	RightChild int

	// Split information (internal nodes)
	SplitFeature int
	Threshold    float64 // rows with value <= Threshold or NaN go left
	Gain         float64

	// Leaf information
	LeafValue float64
	Count     int
	Depth     int
}

// IsLeaf reports whether n is a terminal node.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is a binary regression tree stored as a flat node array with the
// root at index 0.
type Tree struct {
	Nodes     []Node
	NumLeaves int
}

// Predict returns the leaf value reached by row.
func (t *Tree) Predict(row []float64) float64 {
	n := &t.Nodes[0]
	for !n.IsLeaf() {
		v := row[n.SplitFeature]
		if math.IsNaN(v) || v <= n.Threshold {
			n = &t.Nodes[n.LeftChild]
		} else {
			n = &t.Nodes[n.RightChild]
		}
	}
	return n.LeafValue
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	depth := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() && t.Nodes[i].Depth > depth {
			depth = t.Nodes[i].Depth
		}
	}
	return depth
}

// AddGainImportance adds each split's gain to dst[feature].
func (t *Tree) AddGainImportance(dst []float64) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if !n.IsLeaf() {
			dst[n.SplitFeature] += n.Gain
		}
	}
}
