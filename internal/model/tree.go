package model

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// minGain is the smallest impurity decrease worth splitting on.
const minGain = 1e-12

// treeNode is one node of a fitted classification tree. Leaves have
// Feature == -1 and carry the positive-class fraction in Value.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v,omitempty"`
}

// cartTree is a CART binary classification tree stored as a flat node
// slice; node 0 is the root.
type cartTree struct {
	Nodes []treeNode `json:"nodes"`
}

// treeGrower holds the shared state for growing one tree.
type treeGrower struct {
	x          *mat.Dense
	y          []float64
	mtry       int
	minLeaf    int
	rng        *rand.Rand
	nodes      []treeNode
	importance []float64 // summed impurity decrease per feature, nil if untracked
}

// grow builds a tree over the given record indices and returns it.
func (g *treeGrower) grow(idx []int) cartTree {
	g.nodes = g.nodes[:0]
	g.build(idx)
	return cartTree{Nodes: append([]treeNode(nil), g.nodes...)}
}

// build appends the subtree over idx and returns its root node index.
func (g *treeGrower) build(idx []int) int {
	pos := 0
	for _, i := range idx {
		if g.y[i] == 1 {
			pos++
		}
	}
	value := float64(pos) / float64(len(idx))

	self := len(g.nodes)
	g.nodes = append(g.nodes, treeNode{Feature: -1, Value: value})

	if len(idx) <= g.minLeaf || pos == 0 || pos == len(idx) {
		return self
	}

	feat, thresh, gain := g.bestSplit(idx, pos)
	if gain <= minGain {
		return self
	}
	if g.importance != nil {
		g.importance[feat] += gain * float64(len(idx))
	}

	var left, right []int
	for _, i := range idx {
		if g.x.At(i, feat) <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := g.build(left)
	r := g.build(right)
	g.nodes[self] = treeNode{Feature: feat, Threshold: thresh, Left: l, Right: r, Value: value}
	return self
}

// bestSplit scans a random subset of mtry features for the split with the
// largest gini impurity decrease.
func (g *treeGrower) bestSplit(idx []int, pos int) (feature int, threshold, gain float64) {
	_, p := g.x.Dims()
	n := len(idx)
	parent := gini(pos, n-pos)

	feature = -1
	candidates := g.rng.Perm(p)[:g.mtry]

	type pair struct {
		v     float64
		label float64
	}
	pairs := make([]pair, n)

	for _, f := range candidates {
		for i, rec := range idx {
			pairs[i] = pair{v: g.x.At(rec, f), label: g.y[rec]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		leftPos, leftN := 0, 0
		for i := 0; i < n-1; i++ {
			leftN++
			if pairs[i].label == 1 {
				leftPos++
			}
			if pairs[i].v == pairs[i+1].v {
				continue
			}
			rightN := n - leftN
			rightPos := pos - leftPos
			wg := parent -
				(float64(leftN)/float64(n))*gini(leftPos, leftN-leftPos) -
				(float64(rightN)/float64(n))*gini(rightPos, rightN-rightPos)
			if wg > gain {
				gain = wg
				feature = f
				threshold = (pairs[i].v + pairs[i+1].v) / 2
			}
		}
	}
	return feature, threshold, gain
}

// predict walks the tree for one record of x and returns the leaf's
// positive-class fraction.
func (t *cartTree) predict(x *mat.Dense, row int) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x.At(row, node.Feature) <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

func gini(pos, neg int) float64 {
	n := pos + neg
	if n == 0 {
		return 0
	}
	pp := float64(pos) / float64(n)
	pn := float64(neg) / float64(n)
	return 1 - pp*pp - pn*pn
}
